package audit

import (
	"github.com/sells-group/osm-audit/internal/normalize"
	"github.com/sells-group/osm-audit/internal/osmxml"
)

// Kind is a record kind understood by the auditor.
type Kind string

const (
	KindNode Kind = osmxml.KindNode
	KindWay  Kind = osmxml.KindWay
)

// Kinds lists the record kinds in report order.
var Kinds = []Kind{KindNode, KindWay}

// KindOf maps an element to its record kind.
func KindOf(el *osmxml.Element) (Kind, bool) {
	switch el.Kind() {
	case osmxml.KindNode:
		return KindNode, true
	case osmxml.KindWay:
		return KindWay, true
	default:
		return "", false
	}
}

// sampledKeys are the keys whose values are collected in the value pass.
var sampledKeys = map[string]struct{}{
	normalize.KeyStreet:   {},
	normalize.KeyCity:     {},
	normalize.KeyState:    {},
	normalize.KeyPostcode: {},
	normalize.KeyCountry:  {},
}

// IsSampled reports whether values of key are collected.
func IsSampled(key string) bool {
	_, ok := sampledKeys[key]
	return ok
}

// Aggregator holds the per-kind frequency and uniqueness tables of one run.
// Construct a new one for every run.
type Aggregator struct {
	counts map[Kind]*FrequencyTable
	values map[Kind]*UniquenessTable
}

// NewAggregator returns an Aggregator with empty tables for every kind.
func NewAggregator() *Aggregator {
	a := &Aggregator{
		counts: make(map[Kind]*FrequencyTable, len(Kinds)),
		values: make(map[Kind]*UniquenessTable, len(Kinds)),
	}
	for _, k := range Kinds {
		a.counts[k] = NewFrequencyTable()
		a.values[k] = NewUniquenessTable()
	}
	return a
}

// RecordKey counts one occurrence of a tag key on a record of kind.
func (a *Aggregator) RecordKey(kind Kind, key string) {
	a.counts[kind].Increment(key)
}

// RecordValue samples the value of a tag. Keys outside the sampled set are
// ignored and false is returned. For addr:street only the trailing street
// type is stored, and nothing is stored if none is found.
func (a *Aggregator) RecordValue(kind Kind, key, raw string) bool {
	if !IsSampled(key) {
		return false
	}
	table := a.values[kind]
	if key != normalize.KeyStreet {
		table.Add(key, raw)
		return true
	}

	table.Touch(key)
	if streetType, ok := normalize.StreetType.Extract(raw); ok {
		table.Add(key, streetType)
	}
	return true
}

// Counts returns the sorted frequency rows for kind.
func (a *Aggregator) Counts(kind Kind) []KeyCount {
	return a.counts[kind].Sorted()
}

// Frequency returns the frequency table for kind.
func (a *Aggregator) Frequency(kind Kind) *FrequencyTable {
	return a.counts[kind]
}

// Values returns the uniqueness table for kind.
func (a *Aggregator) Values(kind Kind) *UniquenessTable {
	return a.values[kind]
}
