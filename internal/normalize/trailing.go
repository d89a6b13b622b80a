// Package normalize rewrites address tag values and samples street types.
package normalize

import "regexp"

// TrailingExtractor pulls a pattern anchored at the end of a value. When the
// pattern has a capture group the first group is returned, otherwise the
// whole match.
type TrailingExtractor struct {
	re *regexp.Regexp
}

// NewTrailingExtractor compiles pattern, which must end with $.
func NewTrailingExtractor(pattern string) *TrailingExtractor {
	return &TrailingExtractor{re: regexp.MustCompile(pattern)}
}

// Extract returns the trailing match of s.
func (x *TrailingExtractor) Extract(s string) (string, bool) {
	m := x.re.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	if len(m) > 1 {
		return m[1], true
	}
	return m[0], true
}

var (
	// StreetType matches the last whitespace-delimited word, optionally
	// period-terminated ("Avenue", "St.").
	StreetType = NewTrailingExtractor(`(?i)\b\S+\.?$`)

	// Postcode matches a US ZIP or ZIP+4 at the end of the value.
	Postcode = NewTrailingExtractor(`.*(\d{5}(?:-\d{4})?)$`)
)
