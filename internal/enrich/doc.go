// Package enrich provides the batch orchestration that attaches Spotify
// attributes to lists of track and artist IDs.
//
// # Enricher
//
// The Enricher coordinates a lookup run:
//
//  1. Deduplicate the IDs, keeping the first occurrence
//  2. Split them into batches no larger than the configured batch size
//  3. Serve each batch from the cache or fetch it through the rate-limited
//     requester, on a bounded worker pool
//  4. Merge the batches into one outcome per ID
//
// # Basic Usage
//
//	enricher := enrich.NewEnricher(settings, client, requester,
//	    enrich.WithCache(c),
//	    enrich.WithProgress(func(event enrich.ProgressEvent) {
//	        fmt.Println(event.Message)
//	    }),
//	)
//
//	result, err := enricher.Tracks(ctx, ids)
//	if err != nil {
//	    log.Fatal(err) // only context cancellation ends a run early
//	}
//	fmt.Println(result.Summary)
//
// # Partial Failure
//
// A batch that gives up marks its IDs failed and leaves every other batch
// alone. Missing means the provider answered but had nothing usable for
// the ID.
//
// # Tables
//
// EnrichTable runs the lookups a FieldSet needs for the IDs in a table and
// writes the results into new columns of each row.
package enrich
