package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/osm-audit/internal/resilience"
	"github.com/sells-group/osm-audit/internal/store"
)

// recordingStore captures batches without a database.
type recordingStore struct {
	batches [][]store.Record
	failAt  int
	// busy fails this many calls with a transient error first.
	busy int
}

func (s *recordingStore) Migrate(context.Context) error { return nil }

func (s *recordingStore) InsertDocuments(_ context.Context, _ string, recs []store.Record) (int64, error) {
	if s.busy > 0 {
		s.busy--
		return 0, errors.New("database is locked")
	}
	if s.failAt > 0 && len(s.batches)+1 == s.failAt {
		return 0, errors.New("disk full")
	}
	s.batches = append(s.batches, append([]store.Record(nil), recs...))
	return int64(len(recs)), nil
}

func (s *recordingStore) CountDocuments(context.Context) ([]store.CollectionCount, error) {
	return nil, nil
}

func (s *recordingStore) Close() error { return nil }

const sampleDocs = `{"xml_tag_type":"node","id":"1","lat":"41.9","lon":"-87.6"}
{"xml_tag_type":"node","id":"2","lat":"41.8","lon":"-87.5"}

{"xml_tag_type":"way","id":"3","xml_nd":[{"xml_tag_type":"nd","ref":"1"},{"xml_tag_type":"nd","ref":"2"}]}
`

func TestLoad_Batches(t *testing.T) {
	st := &recordingStore{}

	n, err := Load(context.Background(), st, strings.NewReader(sampleDocs), Options{Collection: "osm", BatchSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	require.Len(t, st.batches, 2)
	assert.Len(t, st.batches[0], 2)
	assert.Len(t, st.batches[1], 1)
	assert.Equal(t, "3", st.batches[1][0].OSMID)
	assert.Equal(t, "way", st.batches[1][0].Kind)
}

func TestLoad_DefaultBatchSize(t *testing.T) {
	st := &recordingStore{}

	n, err := Load(context.Background(), st, strings.NewReader(sampleDocs), Options{Collection: "osm"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Len(t, st.batches, 1)
}

func TestLoad_Empty(t *testing.T) {
	st := &recordingStore{}

	n, err := Load(context.Background(), st, strings.NewReader("\n\n"), Options{Collection: "osm"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	assert.Empty(t, st.batches)
}

func TestLoad_MalformedLine(t *testing.T) {
	st := &recordingStore{}
	input := sampleDocs + "{\"xml_tag_type\":\n"

	n, err := Load(context.Background(), st, strings.NewReader(input), Options{Collection: "osm", BatchSize: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loader: line 5")
	assert.Equal(t, int64(2), n)
}

func TestLoad_InsertError(t *testing.T) {
	st := &recordingStore{failAt: 2}

	n, err := Load(context.Background(), st, strings.NewReader(sampleDocs), Options{Collection: "osm", BatchSize: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, int64(2), n)
}

func TestLoad_RequiresCollection(t *testing.T) {
	_, err := Load(context.Background(), &recordingStore{}, strings.NewReader(sampleDocs), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collection is required")
}

func TestLoad_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, &recordingStore{}, strings.NewReader(sampleDocs), Options{Collection: "osm"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context canceled")
}

func TestLoadFile_SQLite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "osm.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleDocs), 0o644))

	st, err := store.NewSQLite(filepath.Join(dir, "osm.db"))
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))

	n, err := LoadFile(context.Background(), st, path, Options{Collection: "chicago"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	counts, err := st.CountDocuments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []store.CollectionCount{
		{Collection: "chicago", Kind: "node", Count: 2},
		{Collection: "chicago", Kind: "way", Count: 1},
	}, counts)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(context.Background(), &recordingStore{}, filepath.Join(t.TempDir(), "nope.json"), Options{Collection: "osm"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loader: open")
}

func TestLoad_RetriesTransientInsert(t *testing.T) {
	st := &recordingStore{busy: 1}
	opts := Options{
		Collection: "osm",
		Retry:      resilience.RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond},
	}

	n, err := Load(context.Background(), st, strings.NewReader(sampleDocs), opts)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Len(t, st.batches, 1)
}

func TestLoad_GivesUpAfterRetries(t *testing.T) {
	st := &recordingStore{busy: 5}
	opts := Options{
		Collection: "osm",
		Retry:      resilience.RetryConfig{MaxAttempts: 2, InitialBackoff: time.Millisecond},
	}

	n, err := Load(context.Background(), st, strings.NewReader(sampleDocs), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")
	assert.Equal(t, int64(0), n)
	assert.Equal(t, 3, st.busy)
}
