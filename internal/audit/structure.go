// Package audit checks record structure and aggregates tag statistics for
// OSM extracts.
package audit

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sells-group/osm-audit/internal/osmxml"
)

var expectedAttributes = map[Kind][]string{
	KindNode: {"id", "lat", "lon", "version", "changeset", "user", "uid", "timestamp"},
	KindWay:  {"id", "version", "changeset", "user", "uid", "timestamp"},
}

// ExpectedAttributes returns the attribute set a record of kind should carry.
// "visible" is deliberately absent.
func ExpectedAttributes(kind Kind) map[string]struct{} {
	set := make(map[string]struct{}, len(expectedAttributes[kind]))
	for _, a := range expectedAttributes[kind] {
		set[a] = struct{}{}
	}
	return set
}

// Mismatch is the advisory result of a structure check.
type Mismatch struct {
	ID       string
	Found    int
	Expected int
	Missing  []string
	Extra    []string
}

// CountDiffers reports whether the attribute count is off.
func (m Mismatch) CountDiffers() bool {
	return m.Found != m.Expected
}

// Empty reports whether the element matched the expected set exactly.
func (m Mismatch) Empty() bool {
	return !m.CountDiffers() && len(m.Missing) == 0 && len(m.Extra) == 0
}

// AuditStructure compares the attributes of el against expected and writes
// human-readable diagnostics to w. It never fails: write errors on w are
// ignored and the mismatch is returned for the caller to tally.
func AuditStructure(w io.Writer, el *osmxml.Element, expected map[string]struct{}) Mismatch {
	present := make(map[string]struct{}, len(el.Attrs))
	for _, a := range el.Attrs {
		present[a.Key] = struct{}{}
	}

	m := Mismatch{
		ID:       el.ID(),
		Found:    len(present),
		Expected: len(expected),
		Missing:  difference(expected, present),
		Extra:    difference(present, expected),
	}

	if w == nil {
		return m
	}
	if m.CountDiffers() {
		fmt.Fprintf(w, "Element %s does not have the right number of attributes. Found: %d, Expected %d\n",
			m.ID, m.Found, m.Expected)
	}
	if len(m.Missing) > 0 {
		fmt.Fprintf(w, "Missing tags: %s\n", strings.Join(m.Missing, ","))
	}
	if len(m.Extra) > 0 {
		fmt.Fprintf(w, "Extra tags: %s\n", strings.Join(m.Extra, ","))
	}
	return m
}

// difference returns a - b, sorted.
func difference(a, b map[string]struct{}) []string {
	var out []string
	for k := range a {
		if _, ok := b[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
