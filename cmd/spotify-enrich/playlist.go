package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	ioutils "github.com/husaker/spotify-data-viz/internal/ioutils"
	"github.com/husaker/spotify-data-viz/internal/playlist"
	"github.com/husaker/spotify-data-viz/internal/report"
)

func playlistCmd(opts *globalOptions) *cobra.Command {
	var (
		flags  reportFlags
		output string
		format string
		title  string
	)

	cmd := &cobra.Command{
		Use:     "playlist",
		Short:   "Write a playlist of the most played tracks",
		Example: "  spotify-enrich playlist --input plays-enriched.csv --output top.m3u --top 25",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = filepath.Ext(output)
			}
			pf, err := playlist.ParseFormat(format)
			if err != nil {
				return err
			}
			if output == "" {
				output = "top-tracks" + pf.Extension()
			}

			settings, err := opts.settings()
			if err != nil {
				return err
			}
			tbl, reportOpts, err := flags.load(settings)
			if err != nil {
				return err
			}
			tracks, err := report.TopTracks(tbl, reportOpts, flags.top)
			if err != nil {
				return err
			}
			if title == "" {
				title = fmt.Sprintf("Top %d", flags.top)
			}

			pl := playlist.FromTracks(title, tracks)
			content := playlist.NewCreator(pf, true).Create(pl)
			if err := ioutils.WriteFile(output, []byte(content)); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d tracks to %s\n", len(pl.Entries), output)
			return nil
		},
	}
	flags.register(cmd, 25)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Playlist file (default top-tracks.<format>)")
	cmd.Flags().StringVar(&format, "format", "", "m3u, pls or wpl (default from the output extension)")
	cmd.Flags().StringVar(&title, "title", "", "Playlist title")

	return cmd
}
