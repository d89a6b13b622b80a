// Package report writes tag statistics as flat text files.
package report

import (
	"bufio"
	"fmt"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/osm-audit/internal/audit"
)

// WriteCounts writes one "{key}   {count}" line per row in the given order,
// overwriting path.
func WriteCounts(rows []audit.KeyCount, path string) error {
	return writeFile(path, func(w *bufio.Writer) {
		for _, r := range rows {
			fmt.Fprintf(w, "%s   %d\n", r.Key, r.Count)
		}
	})
}

// WriteUniqueValues writes each key followed by its values indented four
// spaces, overwriting path.
func WriteUniqueValues(table *audit.UniquenessTable, path string) error {
	return writeFile(path, func(w *bufio.Writer) {
		for _, key := range table.Keys() {
			fmt.Fprintf(w, "%s:\n", key)
			for _, v := range table.Values(key) {
				fmt.Fprintf(w, "    %s\n", v)
			}
		}
	})
}

// writeFile relies on bufio.Writer keeping the first write error; Flush
// returns it.
func writeFile(path string, fill func(*bufio.Writer)) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "report: create %s", path)
	}

	w := bufio.NewWriter(f)
	fill(w)
	if err := w.Flush(); err != nil {
		f.Close() //nolint:errcheck
		return eris.Wrapf(err, "report: write %s", path)
	}
	return eris.Wrapf(f.Close(), "report: close %s", path)
}
