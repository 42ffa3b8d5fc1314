package tablequery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID       int
	Name     string
	Amount   *float64
	Verified *bool
}

func amount(v float64) *float64 { return &v }
func verified(v bool) *bool     { return &v }

func rowField(r row, field string) interface{} {
	switch field {
	case "id":
		return r.ID
	case "name":
		return r.Name
	case "amount":
		if r.Amount == nil {
			return nil
		}
		return *r.Amount
	case "verified":
		if r.Verified == nil {
			return nil
		}
		return *r.Verified
	}
	return nil
}

func newRowEngine() *Engine[row] {
	return NewEngine(rowField, "verified")
}

func ids(rows []row) []int {
	out := make([]int, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}

func TestSetFieldFilterRemovesEmptyValues(t *testing.T) {
	filters := FilterSet{"name": "ana"}

	filters = SetFieldFilter(filters, "amount", "100")
	assert.Equal(t, FilterSet{"name": "ana", "amount": "100"}, filters)

	filters = SetFieldFilter(filters, "name", "")
	_, present := filters["name"]
	assert.False(t, present, "empty value must remove the key, not store an empty string")

	filters = SetFieldFilter(filters, "amount", "   ")
	assert.Empty(t, filters)

	// Clearing a field that was never set is a no-op.
	filters = SetFieldFilter(filters, "ghost", " ")
	assert.Empty(t, filters)
}

func TestToggleSortCycle(t *testing.T) {
	spec := SortSpec{}

	spec = ToggleSort(spec, "amount")
	assert.Equal(t, SortSpec{Key: "amount", Direction: Ascending}, spec)

	spec = ToggleSort(spec, "amount")
	assert.Equal(t, SortSpec{Key: "amount", Direction: Descending}, spec)

	spec = ToggleSort(spec, "amount")
	assert.Equal(t, SortSpec{}, spec, "third activation returns to unsorted")
	assert.False(t, spec.Active())
}

func TestToggleSortSwitchingFieldsResetsToAscending(t *testing.T) {
	spec := SortSpec{Key: "amount", Direction: Ascending}
	spec = ToggleSort(spec, "date")
	assert.Equal(t, SortSpec{Key: "date", Direction: Ascending}, spec)

	spec = SortSpec{Key: "amount", Direction: Descending}
	spec = ToggleSort(spec, "date")
	assert.Equal(t, SortSpec{Key: "date", Direction: Ascending}, spec,
		"new field never inherits the previous direction")
}

func TestFilterIsCaseInsensitiveSubstringWithTrim(t *testing.T) {
	e := newRowEngine()
	records := []row{
		{ID: 1, Name: "Ana"},
		{ID: 2, Name: "Beto"},
		{ID: 3, Name: "Susana"},
	}
	got := e.ApplyFilters(records, FilterSet{"name": "  AN "})
	assert.Equal(t, []int{1, 3}, ids(got))
}

func TestFilterIdempotence(t *testing.T) {
	e := newRowEngine()
	records := []row{
		{ID: 1, Name: "Ana", Amount: amount(100)},
		{ID: 2, Name: "Beto"},
		{ID: 3, Name: "ana", Amount: amount(50)},
	}
	filters := FilterSet{"name": "an"}

	once := e.ApplyFilters(records, filters)
	twice := e.ApplyFilters(once, filters)
	assert.Equal(t, once, twice)
}

func TestFilterMonotonicity(t *testing.T) {
	e := newRowEngine()
	records := []row{
		{ID: 1, Name: "Ana", Amount: amount(100)},
		{ID: 2, Name: "Anabel", Amount: amount(200)},
		{ID: 3, Name: "Beto", Amount: amount(100)},
	}
	base := e.ApplyFilters(records, FilterSet{"name": "an"})
	narrowed := e.ApplyFilters(records, FilterSet{"name": "an", "amount": "200"})
	assert.LessOrEqual(t, len(narrowed), len(base),
		"adding a filter field can only shrink the result")
}

func TestNilFieldMatchesOnlyPendingTokens(t *testing.T) {
	e := newRowEngine()
	records := []row{
		{ID: 1, Name: "Ana", Amount: amount(100)},
		{ID: 2, Name: "Beto"},
	}

	got := e.ApplyFilters(records, FilterSet{"amount": "pendiente"})
	assert.Equal(t, []int{2}, ids(got))

	got = e.ApplyFilters(records, FilterSet{"amount": "100"})
	assert.Equal(t, []int{1}, ids(got), "a nil amount is excluded by a numeric filter")
}

func TestTriStateVocabulary(t *testing.T) {
	e := newRowEngine()
	records := []row{
		{ID: 1, Verified: verified(true)},
		{ID: 2, Verified: verified(false)},
		{ID: 3},
	}

	cases := []struct {
		token string
		want  []int
	}{
		{"ok", []int{1}},
		{"true", []int{1}},
		{"VALIDADO", []int{1}},
		{"error", []int{2}},
		{"false", []int{2}},
		{"datos incorrectos", []int{2}},
		{"datosincorrectos", []int{2}},
		{"pendiente", []int{3}},
		{"null", []int{3}},
		{"undefined", []int{3}},
		{"xyz", []int{1, 2, 3}}, // unknown tokens fail open
	}
	for _, tc := range cases {
		got := e.ApplyFilters(records, FilterSet{"verified": tc.token})
		assert.Equalf(t, tc.want, ids(got), "token %q", tc.token)
	}
}

func TestSortPlacesNullsLastInBothDirections(t *testing.T) {
	e := newRowEngine()
	records := []row{
		{ID: 1, Amount: amount(1)},
		{ID: 2},
		{ID: 3, Amount: amount(2)},
	}

	asc := e.ApplySort(records, SortSpec{Key: "amount", Direction: Ascending})
	assert.Equal(t, []int{1, 3, 2}, ids(asc))

	desc := e.ApplySort(records, SortSpec{Key: "amount", Direction: Descending})
	assert.Equal(t, []int{3, 1, 2}, ids(desc), "nulls stay last even when descending")
}

func TestSortStability(t *testing.T) {
	e := newRowEngine()
	records := []row{
		{ID: 1, Name: "Zamora", Amount: amount(100)},
		{ID: 2, Name: "Acosta", Amount: amount(100)},
		{ID: 3, Name: "Molina", Amount: amount(100)},
		{ID: 4, Name: "Rojas", Amount: amount(50)},
	}

	asc := e.ApplySort(records, SortSpec{Key: "amount", Direction: Ascending})
	assert.Equal(t, []int{4, 1, 2, 3}, ids(asc))

	desc := e.ApplySort(records, SortSpec{Key: "amount", Direction: Descending})
	assert.Equal(t, []int{1, 2, 3, 4}, ids(desc), "ties keep input order in both directions")
}

func TestSortUsesSpanishCollation(t *testing.T) {
	e := newRowEngine()
	records := []row{
		{ID: 1, Name: "ozuna"},
		{ID: 2, Name: "Ñandú"},
		{ID: 3, Name: "nata"},
	}
	got := e.ApplySort(records, SortSpec{Key: "name", Direction: Ascending})
	assert.Equal(t, []int{3, 2, 1}, ids(got), "ñ sorts between n and o in Spanish")
}

func TestSortDoesNotMutateInput(t *testing.T) {
	e := newRowEngine()
	records := []row{
		{ID: 2, Amount: amount(200)},
		{ID: 1, Amount: amount(100)},
	}
	_ = e.ApplySort(records, SortSpec{Key: "amount", Direction: Ascending})
	assert.Equal(t, []int{2, 1}, ids(records))
}

func TestViewFastPathReturnsInputSlice(t *testing.T) {
	e := newRowEngine()
	records := []row{{ID: 1}, {ID: 2}}
	got := e.View(records, nil, SortSpec{})
	require.Len(t, got, 2)
	assert.Same(t, &records[0], &got[0], "no filter and no sort returns the source slice")
}

func TestFilteredThenSortedView(t *testing.T) {
	e := newRowEngine()
	records := []row{
		{ID: 1, Name: "Ana", Amount: amount(100)},
		{ID: 2, Name: "Beto"},
		{ID: 3, Name: "ana", Amount: amount(50)},
	}

	filtered := e.ApplyFilters(records, FilterSet{"name": "an"})
	assert.Equal(t, []int{1, 3}, ids(filtered))

	spec := ToggleSort(SortSpec{}, "amount")
	got := e.ApplySort(filtered, spec)
	assert.Equal(t, []int{3, 1}, ids(got))
}
