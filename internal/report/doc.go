// Package report computes listening statistics from an enriched play
// table and renders them for the terminal.
//
//	tbl, _ := table.ReadFile("plays_enriched.csv")
//	r, err := report.Build(tbl, report.DefaultOptions())
//	r.Render(os.Stdout)
//
// Every row is one play. Minutes come from the duration_min column, so
// plays that could not be enriched count towards play totals but not
// towards minutes.
package report
