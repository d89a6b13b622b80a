package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/osm-audit/internal/audit"
	"github.com/sells-group/osm-audit/internal/config"
	"github.com/sells-group/osm-audit/internal/pipeline"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "osm-audit",
	Short: "Audit, clean and convert OpenStreetMap XML extracts",
	Long: `Streams an OpenStreetMap XML extract and either audits its node and way
records (structure, tag-key counts, unique sub-tag values), rewrites address
tags into a cleaned copy, or converts records into newline-delimited JSON
documents that can be loaded into a document store.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().String("input", "", "path to the OSM XML extract (default: from config)")
	rootCmd.PersistentFlags().String("output-dir", "", "directory for reports and outputs (default: from config)")
}

// runOptions builds pipeline options from config, overridden by flags.
func runOptions(cmd *cobra.Command) (pipeline.Options, error) {
	input, _ := cmd.Flags().GetString("input")
	if input == "" {
		input = cfg.Input
	}
	if input == "" {
		return pipeline.Options{}, eris.New("--input or OSMAUDIT_INPUT is required")
	}

	outDir, _ := cmd.Flags().GetString("output-dir")
	if outDir == "" {
		outDir = cfg.Output.Dir
	}

	opts := pipeline.DefaultOptions(input)
	opts.OutputDir = outDir
	opts.Reports = pipeline.ReportNames{
		NodeCounts: cfg.Output.NodeCounts,
		WayCounts:  cfg.Output.WayCounts,
		NodeValues: cfg.Output.NodeValues,
		WayValues:  cfg.Output.WayValues,
	}
	opts.FixedOutput = cfg.Output.Fixed
	opts.DocumentsOutput = cfg.Output.Documents
	opts.Diagnostics = cmd.OutOrStdout()
	return opts, nil
}

// printResult writes a one-line summary of a run per output.
func printResult(cmd *cobra.Command, res *pipeline.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d nodes, %d ways", res.Mode, res.Records[audit.KindNode], res.Records[audit.KindWay])
	switch res.Mode {
	case pipeline.ModeFix:
		fmt.Fprintf(out, ", %d tags rewritten, %d dropped", res.Rewritten, res.Dropped)
	case pipeline.ModeConvert:
		fmt.Fprintf(out, ", %d documents", res.Documents)
	default:
		fmt.Fprintf(out, ", %d structural mismatches", res.Mismatches)
	}
	fmt.Fprintln(out)
	for _, path := range res.Outputs {
		fmt.Fprintf(out, "  wrote %s\n", path)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
