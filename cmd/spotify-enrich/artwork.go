package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/husaker/spotify-data-viz/internal/app"
	"github.com/husaker/spotify-data-viz/internal/report"
)

func artworkCmd(opts *globalOptions) *cobra.Command {
	var (
		flags reportFlags
		dir   string
		size  int
	)

	cmd := &cobra.Command{
		Use:     "artwork",
		Short:   "Download images of the top artists and tracks",
		Example: "  spotify-enrich artwork --input plays-enriched.csv --dir thumbs --size 150",
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

			// image downloads never go through the API cache
			settings.EnableCache = false
			a, err := app.New(cmd.Context(), settings, opts.logger())
			if err != nil {
				return err
			}
			defer a.Close()

			items := app.ArtworkFromReport(r)
			n, err := a.SaveArtwork(cmd.Context(), items, dir, size)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %d of %d images to %s\n", n, len(items), dir)
			return nil
		},
	}
	flags.register(cmd, 5)
	cmd.Flags().StringVar(&dir, "dir", "artwork", "Output directory")
	cmd.Flags().IntVar(&size, "size", 150, "Thumbnail size in pixels; 0 keeps the original image")

	return cmd
}
