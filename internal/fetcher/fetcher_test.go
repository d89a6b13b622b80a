package fetcher

import (
	"archive/zip"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const extract = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6"><node id="1" lat="1" lon="2"/></osm>
`

func writeGzip(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func TestUnpack_Plain(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chicago.osm")
	require.NoError(t, os.WriteFile(path, []byte(extract), 0o644))

	got, err := Unpack(path, dir)
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestUnpack_Missing(t *testing.T) {
	_, err := Unpack(filepath.Join(t.TempDir(), "nope.osm"), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetcher: stat")
}

func TestUnpack_Gzip(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	path := filepath.Join(src, "chicago.osm.gz")
	writeGzip(t, path, extract)

	got, err := Unpack(path, dest)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "chicago.osm"), got)

	data, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Equal(t, extract, string(data))
}

func TestUnpack_Bzip2Corrupt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chicago.osm.bz2")
	require.NoError(t, os.WriteFile(path, []byte("not bzip2"), 0o644))

	_, err := Unpack(path, dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetcher: decompress")
}

func TestUnpack_ZipSingleOSM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metro.zip")
	writeZip(t, path, map[string]string{"chicago.osm": extract, "README.txt": "readme"})

	dest := t.TempDir()
	got, err := Unpack(path, dest)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "chicago.osm"), got)
	assert.FileExists(t, got)
}

func TestUnpack_ZipIntoWorkingDir(t *testing.T) {
	dir := t.TempDir()
	writeZip(t, filepath.Join(dir, "metro.zip"), map[string]string{"miami.osm": extract})
	chdir(t, dir)

	got, err := Unpack("metro.zip", ".")
	require.NoError(t, err)
	assert.Equal(t, "miami.osm", got)

	data, err := os.ReadFile(filepath.Join(dir, "miami.osm"))
	require.NoError(t, err)
	assert.Equal(t, extract, string(data))
}

func TestExtractZIPEntry_RejectsEscapingPath(t *testing.T) {
	dir := t.TempDir()
	writeZip(t, filepath.Join(dir, "evil.zip"), map[string]string{"../evil.osm": extract})
	chdir(t, dir)

	r, err := zip.OpenReader("evil.zip")
	require.NoError(t, err)
	defer r.Close() //nolint:errcheck
	require.Len(t, r.File, 1)

	_, err = extractZIPEntry(r.File[0], ".")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "illegal zip path")
}

func TestUnpack_ZipWithoutOSM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metro.zip")
	writeZip(t, path, map[string]string{"a.txt": "x"})

	_, err := Unpack(path, dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected exactly 1 .osm file")
}

func TestUnpack_ZipSlip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "evil.zip")
	writeZip(t, path, map[string]string{"../evil.osm": extract})

	_, err := Unpack(path, t.TempDir())
	require.Error(t, err)
}

func TestFetch_HTTPGzip(t *testing.T) {
	src := filepath.Join(t.TempDir(), "chicago.osm.gz")
	writeGzip(t, src, extract)
	payload, err := os.ReadFile(src)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "extracts")
	got, err := Fetch(context.Background(), srv.URL+"/metro/chicago.osm.gz", dest, testOptions())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "chicago.osm"), got)

	data, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Equal(t, extract, string(data))
}

func TestFetch_LocalPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chicago.osm")
	require.NoError(t, os.WriteFile(path, []byte(extract), 0o644))

	got, err := Fetch(context.Background(), path, dir, testOptions())
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestFetch_UnsupportedScheme(t *testing.T) {
	_, err := Fetch(context.Background(), "s3://bucket/chicago.osm", t.TempDir(), testOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported scheme "s3"`)
}

func TestFetch_NoFileName(t *testing.T) {
	_, err := Fetch(context.Background(), "https://example.org/", t.TempDir(), testOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot derive a file name")
}

// chdir changes the working directory for the duration of the test,
// restoring the previous directory on cleanup (equivalent to testing.T.Chdir).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(prev)) })
}
