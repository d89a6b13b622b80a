package pipeline

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/osm-audit/internal/audit"
	"github.com/sells-group/osm-audit/internal/normalize"
	"github.com/sells-group/osm-audit/internal/osmxml"
)

// RunFix loads the whole extract, normalises address tags on every node and
// way, and writes the full tree to the fixed output. Memory use is
// proportional to the extract size, unlike the streaming modes.
//
// Postcode tags without a trailing ZIP code have their attributes cleared
// (normalize.OutcomeDropped) and are written as <tag />; the count is
// reported in Result.Dropped.
func RunFix(ctx context.Context, opts Options) (*Result, error) {
	log := zap.L().With(
		zap.String("component", "pipeline.fix"),
		zap.String("input", opts.Input),
	)

	root, err := readTree(opts.Input)
	if err != nil {
		return nil, err
	}

	res := newResult(ModeFix)
	if err := fixRecords(ctx, root, res, log); err != nil {
		return nil, err
	}

	out := opts.outputPath(opts.FixedOutput)
	if err := writeTree(out, root); err != nil {
		return nil, err
	}
	res.Outputs = append(res.Outputs, out)

	log.Info("fix complete",
		zap.Int("nodes", res.Records[audit.KindNode]),
		zap.Int("ways", res.Records[audit.KindWay]),
		zap.Int("rewritten", res.Rewritten),
		zap.Int("dropped", res.Dropped),
		zap.String("output", out),
	)
	return res, nil
}

func readTree(path string) (*osmxml.Element, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	return osmxml.ReadTree(f)
}

func writeTree(path string, root *osmxml.Element) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "pipeline: create %s", path)
	}
	if err := osmxml.WriteTree(f, root); err != nil {
		f.Close() //nolint:errcheck
		return eris.Wrapf(err, "pipeline: write %s", path)
	}
	return eris.Wrapf(f.Close(), "pipeline: close %s", path)
}

// fixRecords visits records in document order, including the root itself.
func fixRecords(ctx context.Context, el *osmxml.Element, res *Result, log *zap.Logger) error {
	if err := ctx.Err(); err != nil {
		return eris.Wrap(err, "pipeline: cancelled")
	}

	if kind, ok := audit.KindOf(el); ok {
		res.Records[kind]++
		fixTags(el, res, log)
	}

	for _, c := range el.Children {
		if err := fixRecords(ctx, c, res, log); err != nil {
			return err
		}
	}
	return nil
}

// fixTags rewrites tag values in place. Dropped tags are cleared, not
// removed, and serialise as an empty <tag />.
func fixTags(record *osmxml.Element, res *Result, log *zap.Logger) {
	for _, tag := range record.Descendants(osmxml.KindTag) {
		key := tag.Get(osmxml.AttrKey)
		value := tag.Get(osmxml.AttrValue)

		fixed, outcome := normalize.FixTag(key, value)
		switch outcome {
		case normalize.OutcomeRewritten:
			tag.SetAttr(osmxml.AttrValue, fixed)
			res.Rewritten++
		case normalize.OutcomeDropped:
			tag.Clear()
			res.Dropped++
			log.Debug("clearing tag",
				zap.String("record", record.ID()),
				zap.String("key", key),
				zap.String("value", value),
			)
		}
	}
}
