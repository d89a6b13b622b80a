package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sells-group/osm-audit/internal/pipeline"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Append node and way records as JSON documents",
	Long: `Streams the extract and appends one JSON document per node or way to
output.documents (default osm.json). Existing content is kept, so repeated
runs accumulate.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		opts, err := runOptions(cmd)
		if err != nil {
			return err
		}
		if out, _ := cmd.Flags().GetString("out"); out != "" {
			opts.DocumentsOutput = out
		}

		return runModes(ctx, cmd, []pipeline.Mode{pipeline.ModeConvert}, opts)
	},
}

func init() {
	convertCmd.Flags().String("out", "", "path of the documents file (default: from config)")
	rootCmd.AddCommand(convertCmd)
}
