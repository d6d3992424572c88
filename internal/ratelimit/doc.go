// Package ratelimit wraps outbound API calls with pacing, rate-limit
// handling and exponential backoff.
//
// # Requester
//
// A Requester is built once from a Config and shared by every worker:
//
//	r := ratelimit.New(settings.ToRequesterConfig(), ratelimit.WithLogger(log))
//	tracks, err := ratelimit.Execute(ctx, r, func(ctx context.Context) (map[string]model.Track, error) {
//	    return client.Tracks(ctx, batch)
//	})
//
// # Retry Policy
//
// Execute treats errors in three groups:
//
//   - *RateLimitedError (HTTP 429): sleep for the server's Retry-After hint,
//     or Config.DefaultRetryWait when there is none, then retry.
//   - Permanent errors (see Permanent) and context cancellation: returned
//     immediately.
//   - Anything else: sleep BaseDelay * 2^attempt, then retry.
//
// After Config.MaxRetries retries the call fails with
// *RateLimitExceededError or *TransientNetworkError. Execute never returns
// a zero value in place of an error.
//
// # Pacing
//
// Independent calls are spaced at least Config.RequestDelay apart using a
// token bucket from golang.org/x/time/rate. Retries of the same call are not
// paced; they already sleep.
package ratelimit
