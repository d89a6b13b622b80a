package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/osm-audit/internal/audit"
	"github.com/sells-group/osm-audit/internal/osmxml"
	"github.com/sells-group/osm-audit/internal/report"
)

// RunAudit streams the extract once for the given audit pass and writes
// that pass's reports. Each call uses fresh tables; the two passes never
// share statistics.
func RunAudit(ctx context.Context, mode Mode, opts Options) (*Result, error) {
	if !mode.IsAudit() {
		return nil, eris.Errorf("pipeline: %s is not an audit pass", mode)
	}

	log := zap.L().With(
		zap.String("component", "pipeline.audit"),
		zap.String("pass", mode.String()),
		zap.String("input", opts.Input),
	)

	agg := audit.NewAggregator()
	res := newResult(mode)

	err := scanRecords(ctx, opts.Input, res, func(kind audit.Kind, el *osmxml.Element) error {
		if m := audit.AuditStructure(opts.Diagnostics, el, audit.ExpectedAttributes(kind)); !m.Empty() {
			res.Mismatches++
		}

		for _, tag := range el.Descendants(osmxml.KindTag) {
			key := tag.Get(osmxml.AttrKey)
			if mode == ModeAuditCount {
				agg.RecordKey(kind, key)
				continue
			}
			agg.RecordValue(kind, key, tag.Get(osmxml.AttrValue))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, kind := range audit.Kinds {
		var path string
		if mode == ModeAuditCount {
			path = opts.outputPath(opts.Reports.counts(kind))
			if err := report.WriteCounts(agg.Counts(kind), path); err != nil {
				return nil, err
			}
		} else {
			path = opts.outputPath(opts.Reports.values(kind))
			if err := report.WriteUniqueValues(agg.Values(kind), path); err != nil {
				return nil, err
			}
		}
		res.Outputs = append(res.Outputs, path)
	}

	log.Info("audit pass complete",
		zap.Int("nodes", res.Records[audit.KindNode]),
		zap.Int("ways", res.Records[audit.KindWay]),
		zap.Int("structure_mismatches", res.Mismatches),
		zap.Strings("reports", res.Outputs),
	)
	return res, nil
}
