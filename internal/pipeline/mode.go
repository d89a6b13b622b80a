// Package pipeline drives the audit, fix and convert runs over an OSM extract.
package pipeline

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Mode selects what a run does.
type Mode int

const (
	// ModeAuditCount counts tag keys per record kind (first audit pass).
	ModeAuditCount Mode = iota + 1
	// ModeAuditValues samples address tag values (second audit pass).
	ModeAuditValues
	// ModeFix normalises address values and rewrites the whole extract.
	// It holds the full document in memory.
	ModeFix
	// ModeConvert appends one JSON document per record to the documents file.
	ModeConvert
)

var modeNames = map[Mode]string{
	ModeAuditCount:  "count",
	ModeAuditValues: "values",
	ModeFix:         "fix",
	ModeConvert:     "convert",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}

// ParseMode parses a mode name as printed by String.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return 0, eris.Errorf("pipeline: unknown mode %q", s)
}

// IsAudit reports whether m is one of the two audit passes.
func (m Mode) IsAudit() bool {
	return m == ModeAuditCount || m == ModeAuditValues
}
