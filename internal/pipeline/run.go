package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
)

// Run executes a single run in the given mode.
func Run(ctx context.Context, mode Mode, opts Options) (*Result, error) {
	if opts.Input == "" {
		return nil, eris.New("pipeline: input path is required")
	}

	switch mode {
	case ModeAuditCount, ModeAuditValues:
		return RunAudit(ctx, mode, opts)
	case ModeFix:
		return RunFix(ctx, opts)
	case ModeConvert:
		return RunConvert(ctx, opts)
	default:
		return nil, eris.Errorf("pipeline: unsupported mode %d", int(mode))
	}
}
