// Package spotify provides a client for the batch lookup endpoints of the
// Spotify Web API.
//
// The client performs exactly one HTTP request per call and classifies the
// outcome so that a ratelimit.Requester can decide what to do with it:
//
//   - HTTP 429 becomes a *ratelimit.RateLimitedError carrying the
//     Retry-After hint
//   - other 4xx responses and undecodable bodies are marked permanent
//   - transport errors and 5xx responses are returned as retryable errors
//
// # Batch Lookups
//
//	client := spotify.NewClient(settings.APIBaseURL, spotify.StaticToken(token))
//	tracks, err := client.Tracks(ctx, []string{"4uLU6hMCjMI75M1A2tKUQC"})
//	for id, track := range tracks {
//	    fmt.Println(id, track.DurationMinutes())
//	}
//
// IDs the API does not know are simply absent from the returned map.
//
// # Authentication
//
// The client does not run an OAuth flow. It asks a TokenSource for a
// bearer token on every request; StaticToken serves a token obtained
// elsewhere.
package spotify
