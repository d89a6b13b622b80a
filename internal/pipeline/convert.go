package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/osm-audit/internal/audit"
	"github.com/sells-group/osm-audit/internal/document"
	"github.com/sells-group/osm-audit/internal/osmxml"
)

// RunConvert streams the extract and appends one document per node and way
// to the documents output. Documents are written as soon as they are built.
func RunConvert(ctx context.Context, opts Options) (res *Result, err error) {
	log := zap.L().With(
		zap.String("component", "pipeline.convert"),
		zap.String("input", opts.Input),
	)

	out := opts.outputPath(opts.DocumentsOutput)
	w, err := document.OpenWriter(out)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			res, err = nil, cerr
		}
	}()

	res = newResult(ModeConvert)
	err = scanRecords(ctx, opts.Input, res, func(_ audit.Kind, el *osmxml.Element) error {
		return w.Write(document.FromElement(el))
	})
	if err != nil {
		return nil, err
	}

	res.Documents = w.Count()
	res.Outputs = append(res.Outputs, out)

	log.Info("convert complete",
		zap.Int("documents", res.Documents),
		zap.String("output", out),
	)
	return res, nil
}
