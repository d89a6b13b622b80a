package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sells-group/osm-audit/internal/pipeline"
)

var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Rewrite address tags into a cleaned copy of the extract",
	Long: `Loads the extract, normalises addr:country, addr:state and addr:postcode
tag values and writes the result to output.fixed (default output_v1.osm).
Postcode tags that do not end in a ZIP or ZIP+4 code are removed.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		opts, err := runOptions(cmd)
		if err != nil {
			return err
		}
		if out, _ := cmd.Flags().GetString("out"); out != "" {
			opts.FixedOutput = out
		}

		return runModes(ctx, cmd, []pipeline.Mode{pipeline.ModeFix}, opts)
	},
}

func init() {
	fixCmd.Flags().String("out", "", "path of the cleaned extract (default: from config)")
	rootCmd.AddCommand(fixCmd)
}
