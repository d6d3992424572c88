package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/husaker/spotify-data-viz/internal/app"
	"github.com/husaker/spotify-data-viz/internal/enrich"
	"github.com/husaker/spotify-data-viz/internal/table"
)

func enrichCmd(opts *globalOptions) *cobra.Command {
	var (
		input   string
		output  string
		fields  string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Add Spotify data to a play-history CSV",
		Example: "  spotify-enrich enrich --input plays.csv\n" +
			"  spotify-enrich enrich --input plays.csv --output out.csv --fields duration,genres",
		RunE: func(cmd *cobra.Command, args []string) error {
			fieldSet, err := enrich.ParseFields(fields)
			if err != nil {
				return err
			}
			settings, err := opts.settings()
			if err != nil {
				return err
			}
			if output == "" {
				output = table.DerivedPath(input, "-enriched")
			}

			tbl, err := table.ReadFile(input)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := app.New(ctx, settings, opts.logger())
			if err != nil {
				return err
			}
			defer func() {
				if err := a.Close(); err != nil {
					a.Logger.Warn("%v", err)
				}
			}()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "♫ Enriching %d rows from %s (%s)\n", tbl.Len(), input, fieldSet)

			e := a.Enricher(enrich.WithProgress(func(ev enrich.ProgressEvent) {
				if ev.Level == enrich.LevelVerbose && !verbose {
					return
				}
				fmt.Fprintln(out, progressPrefix(ev.Level)+ev.Message)
			}))

			result, err := e.EnrichTable(ctx, tbl, fieldSet)
			if err != nil {
				return errors.Wrap(err, "enriching")
			}
			if err := tbl.WriteFile(output); err != nil {
				return errors.Wrapf(err, "writing %s", output)
			}

			fmt.Fprintf(out, "✨ Complete! %s\n", result.Summary())
			fmt.Fprintf(out, "   Written to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Input CSV (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output CSV (default <input>-enriched.csv)")
	cmd.Flags().StringVar(&fields, "fields", "", "Comma-separated fields: duration, cover, artist_image, genres (default all)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show per-batch progress")
	cmd.MarkFlagRequired("input")

	return cmd
}

func progressPrefix(level enrich.ProgressLevel) string {
	switch level {
	case enrich.LevelError:
		return "✗ "
	case enrich.LevelWarning:
		return "! "
	case enrich.LevelSuccess:
		return "✓ "
	case enrich.LevelInfo:
		return "› "
	default:
		return "  "
	}
}
