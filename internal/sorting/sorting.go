// Package sorting orders generic table rows by a selected column.
package sorting

import (
	"slices"
	"strings"
)

// Direction is the sort direction of a column.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// ParseDirection maps "desc" (any case) to Descending and everything else to Ascending.
func ParseDirection(raw string) Direction {
	if strings.EqualFold(strings.TrimSpace(raw), "desc") {
		return Descending
	}
	return Ascending
}

// Record is one row keyed by field name. Values are strings, numbers or nil.
type Record map[string]any

// State is the selected column and direction. An empty Key means unsorted.
type State struct {
	Key       string
	Direction Direction
}

// Sorted reports whether a column is selected.
func (s State) Sorted() bool {
	return s.Key != ""
}

// Toggle returns the state after the user selects key.
func (s State) Toggle(key string) State {
	if s.Key == key {
		if s.Direction == Ascending {
			s.Direction = Descending
		} else {
			s.Direction = Ascending
		}
		return s
	}
	return State{Key: key, Direction: Ascending}
}

// Sort returns records ordered by state using a fresh Korean collator.
func Sort(records []Record, state State) []Record {
	return sortWith(newCollator(), records, state)
}

func sortWith(c *collator, records []Record, state State) []Record {
	out := slices.Clone(records)
	if out == nil {
		out = []Record{}
	}
	if !state.Sorted() {
		return out
	}
	slices.SortStableFunc(out, func(a, b Record) int {
		return compareValues(c, a[state.Key], b[state.Key], state.Direction)
	})
	return out
}

// compareValues orders two column values. Missing values always sink to the end.
func compareValues(c *collator, a, b any, dir Direction) int {
	aMissing, bMissing := a == nil, b == nil
	switch {
	case aMissing && bMissing:
		return 0
	case aMissing:
		return 1
	case bMissing:
		return -1
	}

	if as, ok := a.(string); ok {
		bs, ok := b.(string)
		if !ok {
			return 0
		}
		result := c.compare(as, bs)
		if dir == Descending {
			return -result
		}
		return result
	}

	an, aok := toFloat(a)
	bn, bok := toFloat(b)
	if !aok || !bok {
		return 0
	}
	if dir == Descending {
		an, bn = bn, an
	}
	switch {
	case an < bn:
		return -1
	case an > bn:
		return 1
	default:
		return 0
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
