// Package table reads and writes the CSV play history the enricher works
// on.
//
// A Table keeps the header and rows as strings. Columns are addressed by
// name; Set adds a column on first use so enrichment can append its
// output next to the original data:
//
//	tbl, err := table.ReadFile("plays.csv")
//	ids, err := tbl.Column("Spotify ID")
//	tbl.Set(0, "duration_ms", "213573")
//	err = tbl.WriteFile("plays_enriched.csv")
package table
