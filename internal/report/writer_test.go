package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/osm-audit/internal/audit"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestWriteCounts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node-tag-count.txt")
	rows := []audit.KeyCount{{Key: "highway", Count: 12}, {Key: "addr:street", Count: 3}}

	require.NoError(t, WriteCounts(rows, path))
	assert.Equal(t, "highway   12\naddr:street   3\n", readFile(t, path))
}

func TestWriteCounts_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "way-tag-count.txt")
	require.NoError(t, os.WriteFile(path, []byte("stale content that is longer\n"), 0o644))

	require.NoError(t, WriteCounts([]audit.KeyCount{{Key: "name", Count: 1}}, path))
	assert.Equal(t, "name   1\n", readFile(t, path))
}

func TestWriteCounts_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, WriteCounts(nil, path))
	assert.Equal(t, "", readFile(t, path))
}

func TestWriteUniqueValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node-subtags-unique-values.txt")
	table := audit.NewUniquenessTable()
	table.Add("addr:state", "FL")
	table.Add("addr:state", "Florida")
	table.Touch("addr:street")
	table.Add("addr:city", "Miami")

	require.NoError(t, WriteUniqueValues(table, path))
	assert.Equal(t,
		"addr:state:\n    FL\n    Florida\naddr:street:\naddr:city:\n    Miami\n",
		readFile(t, path))
}

func TestWriters_Idempotent(t *testing.T) {
	dir := t.TempDir()
	agg := audit.NewAggregator()
	for _, k := range []string{"b", "a", "b", "c"} {
		agg.RecordKey(audit.KindNode, k)
	}
	agg.RecordValue(audit.KindNode, "addr:city", "Miami")
	agg.RecordValue(audit.KindNode, "addr:state", "FL")

	first := filepath.Join(dir, "first.txt")
	second := filepath.Join(dir, "second.txt")
	require.NoError(t, WriteCounts(agg.Counts(audit.KindNode), first))
	require.NoError(t, WriteCounts(agg.Counts(audit.KindNode), second))
	assert.Equal(t, readFile(t, first), readFile(t, second))

	require.NoError(t, WriteUniqueValues(agg.Values(audit.KindNode), first))
	require.NoError(t, WriteUniqueValues(agg.Values(audit.KindNode), second))
	assert.Equal(t, readFile(t, first), readFile(t, second))
}

func TestWriteCounts_BadPath(t *testing.T) {
	err := WriteCounts(nil, filepath.Join(t.TempDir(), "missing", "x.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "report: create")
}
