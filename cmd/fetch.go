package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/osm-audit/internal/fetcher"
	"github.com/sells-group/osm-audit/internal/resilience"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch URL",
	Short: "Download and unpack an OSM extract",
	Long: `Downloads an extract over http(s) or ftp into fetch.dir and unpacks .zip,
.bz2 and .gz archives. Prints the path of the resulting .osm file, which can
be passed to the other commands with --input.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		dir, _ := cmd.Flags().GetString("dir")
		if dir == "" {
			dir = cfg.Fetch.Dir
		}

		retry := resilience.DefaultRetryConfig()
		retry.MaxAttempts = cfg.Fetch.MaxAttempts

		path, err := fetcher.Fetch(ctx, args[0], dir, fetcher.Options{
			UserAgent:     cfg.Fetch.UserAgent,
			Timeout:       time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
			RatePerSecond: cfg.Fetch.RatePerSecond,
			Retry:         retry,
		})
		if err != nil {
			return eris.Wrap(err, "fetch")
		}

		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	fetchCmd.Flags().String("dir", "", "destination directory (default: fetch.dir)")
	rootCmd.AddCommand(fetchCmd)
}
