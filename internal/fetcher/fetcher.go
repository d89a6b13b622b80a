// Package fetcher downloads OSM extracts over HTTP(S) or FTP and unpacks
// compressed archives to a plain .osm file.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/osm-audit/internal/resilience"
)

// Fetcher retrieves a remote resource.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// Options configures Fetch.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	// RatePerSecond limits requests per host. Zero means DefaultRate.
	RatePerSecond float64
	Retry         resilience.RetryConfig
}

// Fetch downloads rawURL into destDir and unpacks it. It returns the path of
// the extract ready for parsing. Plain paths and file:// URLs are unpacked in
// place without downloading.
func Fetch(ctx context.Context, rawURL, destDir string, opts Options) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", eris.Wrapf(err, "fetcher: parse %s", rawURL)
	}

	var f Fetcher
	switch u.Scheme {
	case "http", "https":
		f = NewHTTPFetcher(opts)
	case "ftp":
		f = NewFTPFetcher(FTPOptions{Timeout: opts.Timeout})
	case "", "file":
		return Unpack(u.Path, destDir)
	default:
		return "", eris.Errorf("fetcher: unsupported scheme %q", u.Scheme)
	}

	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		return "", eris.Errorf("fetcher: cannot derive a file name from %s", rawURL)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", eris.Wrap(err, "fetcher: create destination")
	}
	dest := filepath.Join(destDir, name)

	n, err := DownloadToFile(ctx, f, rawURL, dest)
	if err != nil {
		return "", err
	}
	zap.L().Info("fetcher: downloaded extract",
		zap.String("url", rawURL),
		zap.String("path", dest),
		zap.Int64("bytes", n),
	)

	return Unpack(dest, destDir)
}

// DownloadToFile streams url from f into path. Returns bytes written.
func DownloadToFile(ctx context.Context, f Fetcher, rawURL, path string) (int64, error) {
	body, err := f.Download(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	defer body.Close() //nolint:errcheck

	file, err := os.Create(path)
	if err != nil {
		return 0, eris.Wrap(err, "fetcher: create file")
	}
	defer file.Close() //nolint:errcheck

	n, err := io.Copy(file, body)
	if err != nil {
		return n, eris.Wrap(err, "fetcher: write file")
	}
	return n, nil
}
