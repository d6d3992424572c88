package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/husaker/spotify-data-viz/internal/config"
	"github.com/husaker/spotify-data-viz/internal/logger"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath  string
	cacheDir    string
	noCache     bool
	logLevel    string
	metricsFile string
	token       string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "spotify-enrich",
		Short:         "Enrich Spotify listening history with track and artist data",
		Long:          "Looks up durations, covers, artist images and genres for a play-history CSV, and builds reports and playlists from the result.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to a JSON or YAML settings file")
	flags.StringVar(&opts.cacheDir, "cache-dir", "", "Cache directory (overrides config)")
	flags.BoolVar(&opts.noCache, "no-cache", false, "Disable the response cache")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error, none")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file on exit")
	flags.StringVar(&opts.token, "token", "", "Spotify access token (default $"+config.EnvAccessToken+")")

	rootCmd.AddCommand(
		enrichCmd(opts),
		cacheCmd(opts),
		reportCmd(opts),
		playlistCmd(opts),
		artworkCmd(opts),
	)

	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if ctx.Err() != nil {
			fmt.Fprintln(os.Stderr, "Cancelled.")
			stop()
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// settings loads the config file, then applies the environment and flags.
func (o *globalOptions) settings() (*config.Settings, error) {
	settings := config.DefaultSettings()
	if o.configPath != "" {
		var err error
		settings, err = config.Load(o.configPath)
		if err != nil {
			return nil, err
		}
	}
	settings.ApplyEnv()

	if o.cacheDir != "" {
		settings.CacheDir = o.cacheDir
	}
	if o.noCache {
		settings.EnableCache = false
	}
	if o.metricsFile != "" {
		settings.MetricsFile = o.metricsFile
	}
	if o.token != "" {
		settings.AccessToken = o.token
	}
	return settings, nil
}

func (o *globalOptions) logger() logger.Logger {
	level := logger.GetLevelFromEnv()
	if o.logLevel != "" {
		if l, ok := logger.ParseLevel(o.logLevel); ok {
			level = l
		}
	}
	return logger.NewConsoleLogger(os.Stderr, level)
}
