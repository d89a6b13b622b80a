package pipeline

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/osm-audit/internal/audit"
	"github.com/sells-group/osm-audit/internal/osmxml"
)

// scanRecords streams every node and way of path through fn. Parse errors
// are returned as *osmxml.ParseError.
func scanRecords(ctx context.Context, path string, res *Result, fn func(audit.Kind, *osmxml.Element) error) error {
	s, closer, err := osmxml.Open(path)
	if err != nil {
		return err
	}
	defer closer.Close() //nolint:errcheck

	for s.Scan() {
		if err := ctx.Err(); err != nil {
			return eris.Wrap(err, "pipeline: cancelled")
		}

		el := s.Element()
		kind, ok := audit.KindOf(el)
		if !ok {
			continue
		}
		res.Records[kind]++

		if err := fn(kind, el); err != nil {
			return err
		}
	}
	if err := s.Err(); err != nil {
		return err
	}
	return nil
}
