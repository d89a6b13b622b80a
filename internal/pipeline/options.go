package pipeline

import (
	"io"
	"path/filepath"

	"github.com/sells-group/osm-audit/internal/audit"
)

// ReportNames are the audit report file names.
type ReportNames struct {
	NodeCounts string
	WayCounts  string
	NodeValues string
	WayValues  string
}

// DefaultReportNames returns the standard report file names.
func DefaultReportNames() ReportNames {
	return ReportNames{
		NodeCounts: "node-tag-count.txt",
		WayCounts:  "way-tag-count.txt",
		NodeValues: "node-subtags-unique-values.txt",
		WayValues:  "way-subtags-unique-values.txt",
	}
}

func (r ReportNames) counts(kind audit.Kind) string {
	if kind == audit.KindWay {
		return r.WayCounts
	}
	return r.NodeCounts
}

func (r ReportNames) values(kind audit.Kind) string {
	if kind == audit.KindWay {
		return r.WayValues
	}
	return r.NodeValues
}

// Options configures a run.
type Options struct {
	Input     string
	OutputDir string
	Reports   ReportNames
	// FixedOutput is the rewritten extract written by fix mode.
	FixedOutput string
	// DocumentsOutput is the newline-delimited file convert mode appends to.
	DocumentsOutput string
	// Diagnostics receives structural audit lines. Nil discards them.
	Diagnostics io.Writer
}

// DefaultOptions returns options with the standard output names.
func DefaultOptions(input string) Options {
	return Options{
		Input:           input,
		Reports:         DefaultReportNames(),
		FixedOutput:     "output_v1.osm",
		DocumentsOutput: "osm.json",
	}
}

// outputPath resolves name against OutputDir unless it is absolute.
func (o Options) outputPath(name string) string {
	if o.OutputDir == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(o.OutputDir, name)
}

// Result summarises a completed run.
type Result struct {
	Mode       Mode
	Records    map[audit.Kind]int
	Mismatches int
	// Rewritten and Dropped count tag values changed or removed in fix mode.
	Rewritten int
	Dropped   int
	Documents int
	Outputs   []string
}

func newResult(mode Mode) *Result {
	return &Result{Mode: mode, Records: make(map[audit.Kind]int, len(audit.Kinds))}
}
