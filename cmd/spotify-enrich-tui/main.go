package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/husaker/spotify-data-viz/internal/config"
	"github.com/husaker/spotify-data-viz/internal/tui"
)

func main() {
	var configPath string

	cmd := &cobra.Command{
		Use:          "spotify-enrich-tui",
		Short:        "Interactive enrichment of a play-history CSV",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := config.DefaultSettings()
			if configPath != "" {
				var err error
				settings, err = config.Load(configPath)
				if err != nil {
					return err
				}
			}
			settings.ApplyEnv()
			return tui.Run(settings)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "Path to a JSON or YAML settings file")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
