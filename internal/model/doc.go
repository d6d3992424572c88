// Package model defines the core data structures used throughout
// the enrichment pipeline.
//
// # Track and Artist
//
// Track and Artist hold the subset of Spotify attributes this module
// enriches rows with. They are the values stored in the cache, so their
// msgpack tags define the on-disk payload:
//
//	track := model.Track{ID: "4uLU6hMCjMI75M1A2tKUQC", DurationMs: 213573}
//	fmt.Println(track.DurationMinutes()) // 3.56
//
// # Outcomes
//
// Every identifier passed to the enricher ends up with an Outcome whose
// Status tells "found" apart from "missing" (the provider has no such
// entity) and "failed" (the request gave up):
//
//	switch outcome.Status {
//	case model.StatusFound:
//	    use(outcome.Value)
//	case model.StatusMissing, model.StatusFailed:
//	    leave the row blank
//	}
//
// # Batching
//
// Dedupe and Chunk prepare identifier lists for batch endpoints:
//
//	batches := model.Chunk(model.Dedupe(ids), 20)
package model
