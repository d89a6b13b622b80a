package document

import (
	"bufio"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
)

// Writer appends documents to a newline-delimited JSON file. Existing
// content is never truncated, so repeated runs accumulate; rotate the file
// between runs to avoid duplicates.
type Writer struct {
	f     *os.File
	buf   *bufio.Writer
	enc   *json.Encoder
	count int
}

// OpenWriter opens path for appending, creating it if needed.
func OpenWriter(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, eris.Wrapf(err, "document: open %s", path)
	}
	buf := bufio.NewWriter(f)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	return &Writer{f: f, buf: buf, enc: enc}, nil
}

// Write appends doc as one compact line.
func (w *Writer) Write(doc Document) error {
	if err := w.enc.Encode(doc); err != nil {
		return eris.Wrap(err, "document: encode")
	}
	w.count++
	return nil
}

// Count returns the documents written through this Writer.
func (w *Writer) Count() int {
	return w.count
}

// Close flushes buffered documents and closes the file.
func (w *Writer) Close() error {
	flushErr := w.buf.Flush()
	closeErr := w.f.Close()
	if flushErr != nil {
		return eris.Wrap(flushErr, "document: flush")
	}
	return eris.Wrap(closeErr, "document: close")
}
