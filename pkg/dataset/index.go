package dataset

import (
	"math"
	"sort"
)

// Index is the read-only view over a loaded Dataset. It maps slugs to records
// and holds the canonical name-sorted order used for previous/next navigation.
// An Index is never mutated after NewIndex returns, so it can be shared freely
// between goroutines.
type Index struct {
	columns []string
	bySlug  map[string]Record
	// ordered holds the records sorted by name; order holds just their names.
	ordered  []Record
	order    []string
	position map[string]int
}

// NewIndex builds an Index from ds. When two names collapse to the same slug,
// the record loaded later wins the slug lookup.
func NewIndex(ds *Dataset) *Index {
	idx := &Index{
		bySlug:   make(map[string]Record),
		position: make(map[string]int),
	}
	if ds == nil {
		return idx
	}
	idx.columns = append([]string(nil), ds.Columns...)

	for _, rec := range ds.Records {
		idx.bySlug[Slugify(rec.Name)] = rec
	}

	idx.ordered = append([]Record(nil), ds.Records...)
	sort.SliceStable(idx.ordered, func(i, j int) bool {
		return idx.ordered[i].Name < idx.ordered[j].Name
	})
	idx.order = make([]string, len(idx.ordered))
	for i, rec := range idx.ordered {
		idx.order[i] = rec.Name
		// Duplicate names navigate from their first position.
		if _, seen := idx.position[rec.Name]; !seen {
			idx.position[rec.Name] = i
		}
	}
	return idx
}

// Len returns the number of records in the index.
func (idx *Index) Len() int {
	return len(idx.order)
}

// Columns returns the numeric measure columns in header order.
func (idx *Index) Columns() []string {
	return append([]string(nil), idx.columns...)
}

// HasColumn reports whether column is one of the dataset's measures.
func (idx *Index) HasColumn(column string) bool {
	for _, c := range idx.columns {
		if c == column {
			return true
		}
	}
	return false
}

// Lookup returns the record whose name slugifies to slug.
func (idx *Index) Lookup(slug string) (Record, bool) {
	rec, ok := idx.bySlug[slug]
	return rec, ok
}

// Order returns the record names in canonical (name-sorted) order.
func (idx *Index) Order() []string {
	return append([]string(nil), idx.order...)
}

// Neighbors returns the names before and after name in canonical order,
// wrapping around at both ends. ok is false if name is not in the index.
func (idx *Index) Neighbors(name string) (prev, next string, ok bool) {
	pos, ok := idx.position[name]
	if !ok {
		return "", "", false
	}
	n := len(idx.order)
	prev = idx.order[(pos-1+n)%n]
	next = idx.order[(pos+1)%n]
	return prev, next, true
}

// Ranked returns every record sorted by column, highest first. Equal values
// keep canonical order and NaN values sort last.
func (idx *Index) Ranked(column string) []Record {
	ranked := append([]Record(nil), idx.ordered...)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i].Measure(column), ranked[j].Measure(column)
		if math.IsNaN(a) {
			return false
		}
		if math.IsNaN(b) {
			return true
		}
		return a > b
	})
	return ranked
}
