// Package loader bulk-loads newline-delimited document files into a
// document store.
package loader

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/osm-audit/internal/resilience"
	"github.com/sells-group/osm-audit/internal/store"
)

// DefaultBatchSize is the number of documents inserted per store call.
const DefaultBatchSize = 1000

// maxLineSize bounds a single encoded document.
const maxLineSize = 64 << 20

// Options configures a load.
type Options struct {
	Collection string
	BatchSize  int
	// Retry governs re-sending a batch after a transient store error.
	// The zero value uses resilience defaults.
	Retry resilience.RetryConfig
}

// LoadFile opens path and loads it with Load.
func LoadFile(ctx context.Context, st store.DocumentStore, path string, opts Options) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, eris.Wrapf(err, "loader: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	return Load(ctx, st, f, opts)
}

// Load reads one document per line from r and inserts them into
// opts.Collection in batches. Blank lines are skipped. A line that does not
// decode stops the load; documents from earlier batches stay inserted.
func Load(ctx context.Context, st store.DocumentStore, r io.Reader, opts Options) (int64, error) {
	if opts.Collection == "" {
		return 0, eris.New("loader: collection is required")
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	log := zap.L().With(
		zap.String("component", "loader"),
		zap.String("collection", opts.Collection),
	)

	retry := opts.Retry
	if retry.OnRetry == nil {
		retry.OnRetry = resilience.RetryLogger("loader", "insert batch")
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var (
		total  int64
		lineNo int
		batch  = make([]store.Record, 0, batchSize)
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := resilience.DoVal(ctx, retry, func(ctx context.Context) (int64, error) {
			return st.InsertDocuments(ctx, opts.Collection, batch)
		})
		total += n
		if err != nil {
			return eris.Wrapf(err, "loader: insert batch ending at line %d", lineNo)
		}
		log.Debug("batch inserted", zap.Int64("rows", n), zap.Int64("total", total))
		batch = batch[:0]
		return nil
	}

	for sc.Scan() {
		lineNo++
		line := sc.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return total, eris.Wrap(err, "loader: cancelled")
		}

		rec, err := store.NewRecord(line)
		if err != nil {
			return total, eris.Wrapf(err, "loader: line %d", lineNo)
		}
		batch = append(batch, rec)

		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	if err := sc.Err(); err != nil {
		return total, eris.Wrapf(err, "loader: read line %d", lineNo+1)
	}
	if err := flush(); err != nil {
		return total, err
	}

	log.Info("load complete", zap.Int("lines", lineNo), zap.Int64("documents", total))
	return total, nil
}
