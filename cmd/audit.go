package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/osm-audit/internal/pipeline"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit node and way records and write tag reports",
	Long: `Streams the extract, prints a diagnostic for every node or way whose
attributes differ from the expected set, and writes per-kind reports.

--pass count   tag-key frequency tables (node-tag-count.txt, way-tag-count.txt)
--pass values  unique values for address sub-tags
--pass all     both, as two independent passes over the input`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		pass, _ := cmd.Flags().GetString("pass")
		modes, err := auditModes(pass)
		if err != nil {
			return err
		}

		opts, err := runOptions(cmd)
		if err != nil {
			return err
		}

		return runModes(ctx, cmd, modes, opts)
	},
}

func init() {
	auditCmd.Flags().String("pass", "all", "audit pass to run: count, values or all")
	rootCmd.AddCommand(auditCmd)
}

// auditModes maps a --pass value to the audit modes to run in order.
func auditModes(pass string) ([]pipeline.Mode, error) {
	if pass == "all" {
		return []pipeline.Mode{pipeline.ModeAuditCount, pipeline.ModeAuditValues}, nil
	}
	mode, err := pipeline.ParseMode(pass)
	if err != nil {
		return nil, err
	}
	if !mode.IsAudit() {
		return nil, eris.Errorf("audit: unknown pass %q", pass)
	}
	return []pipeline.Mode{mode}, nil
}

// runModes runs each mode as its own pass and prints its summary.
func runModes(ctx context.Context, cmd *cobra.Command, modes []pipeline.Mode, opts pipeline.Options) error {
	for _, mode := range modes {
		log := zap.L().With(zap.String("command", cmd.Name()), zap.Stringer("mode", mode))
		log.Info("starting run", zap.String("input", opts.Input))

		res, err := pipeline.Run(ctx, mode, opts)
		if err != nil {
			return eris.Wrapf(err, "%s", mode)
		}
		printResult(cmd, res)
	}
	return nil
}
