package fetcher

import (
	"archive/zip"
	"compress/bzip2"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Unpack turns a downloaded extract into a plain XML file in destDir.
// .zip archives must hold exactly one .osm file; .bz2 and .gz files are
// decompressed next to the archive name without its suffix. Anything else
// is returned unchanged.
func Unpack(path, destDir string) (string, error) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return extractSingleOSM(path, destDir)
	case strings.HasSuffix(lower, ".bz2"):
		return decompress(path, destDir, ".bz2", func(r io.Reader) (io.Reader, error) {
			return bzip2.NewReader(r), nil
		})
	case strings.HasSuffix(lower, ".gz"):
		return decompress(path, destDir, ".gz", func(r io.Reader) (io.Reader, error) {
			return gzip.NewReader(r)
		})
	default:
		if _, err := os.Stat(path); err != nil {
			return "", eris.Wrapf(err, "fetcher: stat %s", path)
		}
		return path, nil
	}
}

func decompress(path, destDir, suffix string, open func(io.Reader) (io.Reader, error)) (string, error) {
	in, err := os.Open(path)
	if err != nil {
		return "", eris.Wrapf(err, "fetcher: open %s", path)
	}
	defer in.Close() //nolint:errcheck

	r, err := open(in)
	if err != nil {
		return "", eris.Wrapf(err, "fetcher: read %s", path)
	}

	base := filepath.Base(path)
	dest := filepath.Join(destDir, base[:len(base)-len(suffix)])
	if err := writeFile(dest, r); err != nil {
		return "", eris.Wrapf(err, "fetcher: decompress %s", path)
	}
	return dest, nil
}

// extractSingleOSM extracts the only .osm entry of a zip archive.
func extractSingleOSM(zipPath, destDir string) (string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", eris.Wrap(err, "fetcher: open zip")
	}
	defer r.Close() //nolint:errcheck

	var found []*zip.File
	for _, f := range r.File {
		if !f.FileInfo().IsDir() && strings.HasSuffix(strings.ToLower(f.Name), ".osm") {
			found = append(found, f)
		}
	}
	if len(found) != 1 {
		return "", eris.Errorf("fetcher: expected exactly 1 .osm file in %s, got %d", zipPath, len(found))
	}
	return extractZIPEntry(found[0], destDir)
}

// extractZIPEntry writes f under destDir, rejecting paths that escape it.
func extractZIPEntry(f *zip.File, destDir string) (string, error) {
	destPath := filepath.Join(destDir, f.Name)
	rel, err := filepath.Rel(destDir, destPath)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", eris.Errorf("fetcher: illegal zip path %q", f.Name)
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return "", eris.Wrap(err, "fetcher: create parent directory")
	}

	rc, err := f.Open()
	if err != nil {
		return "", eris.Wrap(err, "fetcher: open zip entry")
	}
	defer rc.Close() //nolint:errcheck

	if err := writeFile(destPath, rc); err != nil {
		return "", eris.Wrap(err, "fetcher: extract zip entry")
	}
	return destPath, nil
}

func writeFile(path string, r io.Reader) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close() //nolint:errcheck
		return err
	}
	return out.Close()
}
