// Package app assembles the enrichment pipeline from settings: HTTP
// client, requester, Spotify client, cache and metrics. Both binaries
// build on it.
package app
