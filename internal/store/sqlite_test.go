package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func mustRecord(t *testing.T, line string) Record {
	t.Helper()
	rec, err := NewRecord([]byte(line))
	require.NoError(t, err)
	return rec
}

func TestSQLite_WALMode(t *testing.T) {
	st := newTestSQLiteStore(t)

	var mode string
	require.NoError(t, st.db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestSQLite_MigrateIdempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	assert.NoError(t, st.Migrate(context.Background()))
}

func TestSQLite_InsertAndCount(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	recs := []Record{
		mustRecord(t, `{"xml_tag_type":"node","id":"1","lat":"41.9","lon":"-87.6"}`),
		mustRecord(t, `{"xml_tag_type":"node","id":"2","lat":"41.8","lon":"-87.5"}`),
		mustRecord(t, `{"xml_tag_type":"way","id":"3"}`),
	}
	n, err := st.InsertDocuments(ctx, "chicago", recs)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = st.InsertDocuments(ctx, "other", recs[:1])
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	counts, err := st.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, []CollectionCount{
		{Collection: "chicago", Kind: "node", Count: 2},
		{Collection: "chicago", Kind: "way", Count: 1},
		{Collection: "other", Kind: "node", Count: 1},
	}, counts)
}

func TestSQLite_StoresBodyAndCoordinates(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	rec := mustRecord(t, `{"xml_tag_type":"node","id":"7","lat":"41.5","lon":"-87.25"}`)
	_, err := st.InsertDocuments(ctx, "osm", []Record{rec})
	require.NoError(t, err)

	var body, osmID string
	var lon, lat float64
	err = st.db.QueryRowContext(ctx,
		`SELECT body, osm_id, lon, lat FROM documents WHERE id = ?`, rec.ID.String()).
		Scan(&body, &osmID, &lon, &lat)
	require.NoError(t, err)
	assert.JSONEq(t, string(rec.Body), body)
	assert.Equal(t, "7", osmID)
	assert.InDelta(t, -87.25, lon, 1e-9)
	assert.InDelta(t, 41.5, lat, 1e-9)
}

func TestSQLite_InsertEmpty(t *testing.T) {
	st := newTestSQLiteStore(t)
	n, err := st.InsertDocuments(context.Background(), "osm", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestSQLite_DuplicateIDRollsBack(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	rec := mustRecord(t, `{"xml_tag_type":"node","id":"1"}`)
	_, err := st.InsertDocuments(ctx, "osm", []Record{mustRecord(t, `{"xml_tag_type":"node","id":"0"}`), rec, rec})
	require.Error(t, err)

	counts, err := st.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestSQLite_CountEmpty(t *testing.T) {
	st := newTestSQLiteStore(t)
	counts, err := st.CountDocuments(context.Background())
	require.NoError(t, err)
	assert.Empty(t, counts)
}
