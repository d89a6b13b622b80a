package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/osm-audit/internal/loader"
	"github.com/sells-group/osm-audit/internal/store"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load converted documents into the document store",
	Long: `Reads the newline-delimited documents written by convert and inserts them
into the configured store (SQLite by default, PostgreSQL/PostGIS with
store.driver=postgres) under the named collection.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return eris.Wrap(err, "load: open store")
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "load: migrate")
		}

		showStatus, _ := cmd.Flags().GetBool("status")
		if showStatus {
			return printLoadStatus(ctx, cmd.OutOrStdout(), st)
		}

		file, _ := cmd.Flags().GetString("file")
		if file == "" {
			file = cfg.Output.Documents
			if cfg.Output.Dir != "" && !filepath.IsAbs(file) {
				file = filepath.Join(cfg.Output.Dir, file)
			}
		}
		collection, _ := cmd.Flags().GetString("collection")
		if collection == "" {
			collection = cfg.Store.Collection
		}

		log := zap.L().With(zap.String("command", "load"))
		log.Info("loading documents",
			zap.String("file", file),
			zap.String("driver", cfg.Store.Driver),
			zap.String("collection", collection),
			zap.Int("batch_size", cfg.Store.BatchSize),
		)

		n, err := loader.LoadFile(ctx, st, file, loader.Options{
			Collection: collection,
			BatchSize:  cfg.Store.BatchSize,
		})
		if err != nil {
			return eris.Wrapf(err, "load: %d documents inserted before failure", n)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "loaded %d documents into %s\n", n, collection)
		return nil
	},
}

func init() {
	loadCmd.Flags().String("file", "", "documents file to load (default: output.documents)")
	loadCmd.Flags().String("collection", "", "target collection (default: store.collection)")
	loadCmd.Flags().Bool("status", false, "show stored document counts and exit")
	rootCmd.AddCommand(loadCmd)
}

// printLoadStatus displays stored document counts per collection and kind.
func printLoadStatus(ctx context.Context, w io.Writer, st store.DocumentStore) error {
	counts, err := st.CountDocuments(ctx)
	if err != nil {
		return eris.Wrap(err, "load: get status")
	}

	if len(counts) == 0 {
		fmt.Fprintln(w, "No documents loaded yet")
		return nil
	}

	fmt.Fprintf(w, "%-20s %-10s %12s\n", "Collection", "Kind", "Documents")
	fmt.Fprintln(w, strings.Repeat("-", 44))

	for _, c := range counts {
		fmt.Fprintf(w, "%-20s %-10s %12d\n", c.Collection, c.Kind, c.Count)
	}

	return nil
}
