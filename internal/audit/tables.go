package audit

import "sort"

// KeyCount is one row of a frequency report.
type KeyCount struct {
	Key   string
	Count int
}

// FrequencyTable counts tag key occurrences.
type FrequencyTable struct {
	counts map[string]int
}

// NewFrequencyTable returns an empty table.
func NewFrequencyTable() *FrequencyTable {
	return &FrequencyTable{counts: make(map[string]int)}
}

// Increment adds one occurrence of key.
func (f *FrequencyTable) Increment(key string) {
	f.counts[key]++
}

// Count returns the occurrences of key.
func (f *FrequencyTable) Count(key string) int {
	return f.counts[key]
}

// Len returns the number of distinct keys.
func (f *FrequencyTable) Len() int {
	return len(f.counts)
}

// Sorted returns the rows by descending count, ties broken by ascending key.
func (f *FrequencyTable) Sorted() []KeyCount {
	rows := make([]KeyCount, 0, len(f.counts))
	for k, c := range f.counts {
		rows = append(rows, KeyCount{Key: k, Count: c})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Key < rows[j].Key
	})
	return rows
}

// UniquenessTable maps tag keys to the distinct values seen for them. Keys
// and values iterate in first-seen order.
type UniquenessTable struct {
	keys   []string
	values map[string]*valueSet
}

type valueSet struct {
	order []string
	seen  map[string]struct{}
}

// NewUniquenessTable returns an empty table.
func NewUniquenessTable() *UniquenessTable {
	return &UniquenessTable{values: make(map[string]*valueSet)}
}

// Touch registers key without adding a value.
func (u *UniquenessTable) Touch(key string) {
	if _, ok := u.values[key]; ok {
		return
	}
	u.keys = append(u.keys, key)
	u.values[key] = &valueSet{seen: make(map[string]struct{})}
}

// Add records value under key. Duplicates are ignored.
func (u *UniquenessTable) Add(key, value string) {
	u.Touch(key)
	set := u.values[key]
	if _, ok := set.seen[value]; ok {
		return
	}
	set.seen[value] = struct{}{}
	set.order = append(set.order, value)
}

// Keys returns the keys in first-seen order.
func (u *UniquenessTable) Keys() []string {
	return append([]string(nil), u.keys...)
}

// Values returns the distinct values of key in first-seen order.
func (u *UniquenessTable) Values(key string) []string {
	set, ok := u.values[key]
	if !ok {
		return nil
	}
	return append([]string(nil), set.order...)
}
