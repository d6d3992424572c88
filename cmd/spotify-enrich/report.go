package main

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/husaker/spotify-data-viz/internal/config"
	"github.com/husaker/spotify-data-viz/internal/report"
	"github.com/husaker/spotify-data-viz/internal/table"
)

// reportFlags are shared by the commands that read an enriched table.
type reportFlags struct {
	input string
	top   int
	from  string
	to    string
}

func (f *reportFlags) register(cmd *cobra.Command, defaultTop int) {
	cmd.Flags().StringVarP(&f.input, "input", "i", "", "Enriched CSV (required)")
	cmd.Flags().IntVar(&f.top, "top", defaultTop, "Number of entries in each top list")
	cmd.Flags().StringVar(&f.from, "from", "", "Only count plays on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "Only count plays on or before this date (YYYY-MM-DD)")
	cmd.MarkFlagRequired("input")
}

// load reads the table and builds report options from the settings and
// flags.
func (f *reportFlags) load(settings *config.Settings) (*table.Table, report.Options, error) {
	opts := report.DefaultOptions()
	opts.IDColumn = settings.TrackIDColumn
	opts.Top = f.top

	if f.from != "" {
		t, ok := report.ParseDate(f.from)
		if !ok {
			return nil, opts, errors.Newf("invalid --from date %q", f.from)
		}
		opts.From = t
	}
	if f.to != "" {
		t, ok := report.ParseDate(f.to)
		if !ok {
			return nil, opts, errors.Newf("invalid --to date %q", f.to)
		}
		opts.To = t
	}

	tbl, err := table.ReadFile(f.input)
	if err != nil {
		return nil, opts, err
	}
	return tbl, opts, nil
}

func reportCmd(opts *globalOptions) *cobra.Command {
	var flags reportFlags

	cmd := &cobra.Command{
		Use:     "report",
		Short:   "Print listening statistics for an enriched CSV",
		Example: "  spotify-enrich report --input plays-enriched.csv --top 10 --from 2024-01-01",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := opts.settings()
			if err != nil {
				return err
			}
			tbl, reportOpts, err := flags.load(settings)
			if err != nil {
				return err
			}
			r, err := report.Build(tbl, reportOpts)
			if err != nil {
				return err
			}
			return r.Render(cmd.OutOrStdout())
		},
	}
	flags.register(cmd, 5)

	return cmd
}
