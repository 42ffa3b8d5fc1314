package tablequery

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// FieldFunc resolves a record field by name. It returns nil for missing
// values; otherwise a string, bool, numeric, time.Time or decimal value.
type FieldFunc[T any] func(rec T, field string) interface{}

// Engine applies FilterSet and SortSpec to record slices of one shape.
// Records are opaque; all field access goes through the FieldFunc, so no
// reflection is involved.
type Engine[T any] struct {
	field    FieldFunc[T]
	triState map[string]bool
}

// NewEngine builds an engine for one record shape. triStateFields names
// the boolean-or-null fields (e.g. the data verification flag) that are
// filtered with the fixed ok/error/pendiente vocabulary instead of
// substring matching.
func NewEngine[T any](field FieldFunc[T], triStateFields ...string) *Engine[T] {
	ts := make(map[string]bool, len(triStateFields))
	for _, f := range triStateFields {
		ts[f] = true
	}
	return &Engine[T]{field: field, triState: ts}
}

// View applies filters then sort. When no filter is active and no sort
// column is set, the input slice is returned as-is.
func (e *Engine[T]) View(records []T, filters FilterSet, spec SortSpec) []T {
	if len(filters) == 0 && !spec.Active() {
		return records
	}
	return e.ApplySort(e.ApplyFilters(records, filters), spec)
}

// ApplyFilters keeps the records matching every active field filter.
func (e *Engine[T]) ApplyFilters(records []T, filters FilterSet) []T {
	if len(filters) == 0 {
		return records
	}
	out := make([]T, 0, len(records))
	for _, rec := range records {
		if e.matches(rec, filters) {
			out = append(out, rec)
		}
	}
	return out
}

func (e *Engine[T]) matches(rec T, filters FilterSet) bool {
	for field, raw := range filters {
		value := e.field(rec, field)
		if e.triState[field] {
			if !matchTriState(value, raw) {
				return false
			}
			continue
		}
		if !matchText(value, raw) {
			return false
		}
	}
	return true
}

// ApplySort returns a stably sorted copy of records. Missing values sort
// after every present value in both directions: the null check sits
// outside the descending negation on purpose, so rows with no data stay
// at the bottom of the table either way.
func (e *Engine[T]) ApplySort(records []T, spec SortSpec) []T {
	if !spec.Active() {
		return records
	}
	coll := collate.New(language.Spanish, collate.Loose)
	out := make([]T, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		a := e.field(out[i], spec.Key)
		b := e.field(out[j], spec.Key)
		if a == nil || b == nil {
			if a == nil && b == nil {
				return false
			}
			return b == nil
		}
		cmp := compareValues(coll, a, b)
		if spec.Direction == Descending {
			cmp = -cmp
		}
		return cmp < 0
	})
	return out
}
