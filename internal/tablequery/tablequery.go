// Package tablequery implements the in-memory view engine behind every
// admin table: per-field text filters plus a single active sort column,
// applied to an arbitrary record slice without touching the source data.
package tablequery

import "strings"

type Direction string

const (
	DirectionNone Direction = ""
	Ascending     Direction = "asc"
	Descending    Direction = "desc"
)

// SortSpec is the single active sort column. The zero value means "no
// sort"; Key and Direction are always set or cleared together.
type SortSpec struct {
	Key       string    `json:"key"`
	Direction Direction `json:"direction"`
}

func (s SortSpec) Active() bool {
	return s.Key != "" && s.Direction != DirectionNone
}

// FilterSet maps field name to free-text filter. A field is either absent
// or carries a non-empty filter; see SetFieldFilter.
type FilterSet map[string]string

// SetFieldFilter returns a copy of filters with the field set to value.
// An empty or whitespace-only value removes the key entirely, so callers
// checking "are any filters active" never see phantom empty entries.
func SetFieldFilter(filters FilterSet, field, value string) FilterSet {
	next := make(FilterSet, len(filters)+1)
	for k, v := range filters {
		next[k] = v
	}
	if strings.TrimSpace(value) == "" {
		delete(next, field)
		return next
	}
	next[field] = value
	return next
}

// ToggleSort cycles the sort state for a column header activation:
// unsorted -> ascending -> descending -> unsorted on the same field, and
// switching to another field always restarts at ascending.
func ToggleSort(current SortSpec, field string) SortSpec {
	if current.Key != field {
		return SortSpec{Key: field, Direction: Ascending}
	}
	switch current.Direction {
	case Ascending:
		return SortSpec{Key: field, Direction: Descending}
	case Descending:
		return SortSpec{}
	default:
		return SortSpec{Key: field, Direction: Ascending}
	}
}
