package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/husaker/spotify-data-viz/internal/app"
	"github.com/husaker/spotify-data-viz/internal/cache"
)

func cacheCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the response cache",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List cache entries with size and age",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withCache(cmd, opts, func(c *cache.Cache) error {
					entries, err := c.ListEntries(cmd.Context())
					if err != nil {
						return err
					}
					out := cmd.OutOrStdout()
					if len(entries) == 0 {
						fmt.Fprintln(out, "Cache is empty.")
						return nil
					}

					w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
					fmt.Fprintln(w, "KEY\tSIZE\tAGE\tEXPIRED")
					var total, expired int
					for _, e := range entries {
						total += e.Size
						if e.Expired {
							expired++
						}
						fmt.Fprintf(w, "%s\t%s\t%s\t%v\n", e.Key, formatBytes(e.Size), e.Age.Truncate(time.Second), e.Expired)
					}
					w.Flush()
					fmt.Fprintf(out, "\n%d entries, %d expired, %s total\n", len(entries), expired, formatBytes(total))
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every cache entry",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withCache(cmd, opts, func(c *cache.Cache) error {
					n, err := c.ClearAll(cmd.Context())
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries.\n", n)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "prune",
			Short: "Remove expired cache entries",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withCache(cmd, opts, func(c *cache.Cache) error {
					n, err := c.DeleteExpired(cmd.Context())
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Removed %d expired entries.\n", n)
					return nil
				})
			},
		},
	)

	return cmd
}

// withCache opens the configured store regardless of --no-cache.
func withCache(cmd *cobra.Command, opts *globalOptions, fn func(*cache.Cache) error) error {
	settings, err := opts.settings()
	if err != nil {
		return err
	}
	settings.EnableCache = true
	if err := settings.Validate(); err != nil {
		return err
	}

	c, err := app.OpenCache(cmd.Context(), settings, opts.logger(), nil)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c)
}

func formatBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
