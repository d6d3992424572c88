// Package http provides the HTTP client shared by the Spotify API client
// and the artwork downloader.
//
// The Client in this package handles:
//   - User-Agent and extra request headers
//   - Timeout handling
//   - Raw responses for callers that interpret status codes themselves
//   - Image downloads with progress tracking
//
// # Basic Usage
//
//	client := http.NewClient("spotify-enrich/1.0", 30*time.Second)
//
//	// Raw response, status not checked
//	resp, err := client.Do(ctx, "GET", url, header)
//
//	// Body of a 200 response
//	data, err := client.Get(ctx, imageURL)
//
// # Progress Tracking
//
// The ProgressWriter type can be used to wrap any io.Writer for progress tracking:
//
//	pw := &http.ProgressWriter{
//	    Writer:   file,
//	    Total:    contentLength,
//	    OnUpdate: func(written, total int64) { /* update UI */ },
//	}
package http
