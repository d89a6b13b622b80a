package normalize

// Address tag keys.
const (
	KeyStreet   = "addr:street"
	KeyCity     = "addr:city"
	KeyState    = "addr:state"
	KeyPostcode = "addr:postcode"
	KeyCountry  = "addr:country"
)

// Outcome describes what FixTag did to a value.
type Outcome int

const (
	// OutcomeUnchanged means the value was left as is.
	OutcomeUnchanged Outcome = iota
	// OutcomeRewritten means the value was replaced.
	OutcomeRewritten
	// OutcomeDropped means the value could not be normalised and the tag
	// must be removed. Only postcodes produce this outcome.
	OutcomeDropped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeRewritten:
		return "rewritten"
	case OutcomeDropped:
		return "dropped"
	default:
		return "unknown"
	}
}

var countryFixes = map[string]string{
	"USA": "US",
}

// Exact match: "FL" is already canonical and is not listed.
var stateFixes = map[string]string{
	"florida": "Florida",
	"F":       "Florida",
	"fl":      "Florida",
	"Fl":      "Florida",
	"FL.":     "Florida",
}

// FixCountry maps known country spellings to the canonical code.
func FixCountry(v string) (string, Outcome) {
	return lookup(countryFixes, v)
}

// FixState maps known state spellings to the canonical name.
func FixState(v string) (string, Outcome) {
	return lookup(stateFixes, v)
}

// FixPostcode reduces v to its trailing 5 or 9 digit ZIP code. Values
// without one are dropped.
func FixPostcode(v string) (string, Outcome) {
	code, ok := Postcode.Extract(v)
	if !ok {
		return "", OutcomeDropped
	}
	if code == v {
		return v, OutcomeUnchanged
	}
	return code, OutcomeRewritten
}

// FixTag normalises the value of a single tag. Keys other than country,
// state and postcode are returned unchanged.
func FixTag(key, value string) (string, Outcome) {
	switch key {
	case KeyCountry:
		return FixCountry(value)
	case KeyState:
		return FixState(value)
	case KeyPostcode:
		return FixPostcode(value)
	default:
		return value, OutcomeUnchanged
	}
}

func lookup(table map[string]string, v string) (string, Outcome) {
	if fixed, ok := table[v]; ok {
		return fixed, OutcomeRewritten
	}
	return v, OutcomeUnchanged
}
