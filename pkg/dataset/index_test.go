package dataset

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustParse(t *testing.T, rows ...string) *Dataset {
	t.Helper()
	ds, err := ParseCSV(strings.NewReader(drinksHeader+strings.Join(rows, "\n")), Options{NameColumn: DefaultNameColumn})
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}
	return ds
}

func sampleIndex(t *testing.T) *Index {
	t.Helper()
	return NewIndex(mustParse(t,
		"Namibia,376,1,3,6.8",
		"Aland,10,20,30,1.5",
		"Zimbabwe,5,1,1,0.1",
		"Czech Republic,361,134,170,11.8",
		"Antigua & Barbuda,102,45,132,4.9",
	))
}

func TestIndex_SlugRoundTrip(t *testing.T) {
	idx := sampleIndex(t)
	for _, name := range idx.Order() {
		rec, ok := idx.Lookup(Slugify(name))
		if !ok {
			t.Errorf("no record for slug of %q", name)
			continue
		}
		if rec.Name != name {
			t.Errorf("Lookup(Slugify(%q)) returned %q", name, rec.Name)
		}
	}
	if _, ok := idx.Lookup("not-a-real-place"); ok {
		t.Error("unknown slug should not resolve")
	}
}

func TestIndex_Order(t *testing.T) {
	idx := sampleIndex(t)
	want := []string{"Aland", "Antigua & Barbuda", "Czech Republic", "Namibia", "Zimbabwe"}
	if diff := cmp.Diff(want, idx.Order()); diff != "" {
		t.Errorf("canonical order mismatch (-want +got):\n%s", diff)
	}
	if idx.Len() != len(want) {
		t.Errorf("Len() = %d, want %d", idx.Len(), len(want))
	}
}

func TestIndex_NeighborsAreCyclic(t *testing.T) {
	idx := sampleIndex(t)
	order := idx.Order()

	for _, name := range order {
		prev, next, ok := idx.Neighbors(name)
		if !ok {
			t.Fatalf("Neighbors(%q) not found", name)
		}
		if p, _, _ := idx.Neighbors(next); p != name {
			t.Errorf("prev(next(%q)) = %q", name, p)
		}
		if _, n, _ := idx.Neighbors(prev); n != name {
			t.Errorf("next(prev(%q)) = %q", name, n)
		}
	}

	first, last := order[0], order[len(order)-1]
	if _, next, _ := idx.Neighbors(last); next != first {
		t.Errorf("next(last) = %q, want %q", next, first)
	}
	if prev, _, _ := idx.Neighbors(first); prev != last {
		t.Errorf("prev(first) = %q, want %q", prev, last)
	}

	if _, _, ok := idx.Neighbors("Atlantis"); ok {
		t.Error("Neighbors should report unknown names")
	}
}

func TestIndex_NeighborsSingleRecord(t *testing.T) {
	idx := NewIndex(mustParse(t, "Aland,10,20,30,1.5"))
	prev, next, ok := idx.Neighbors("Aland")
	if !ok || prev != "Aland" || next != "Aland" {
		t.Errorf("single record should neighbour itself, got %q %q %v", prev, next, ok)
	}
}

func TestIndex_TwoRowExample(t *testing.T) {
	idx := NewIndex(mustParse(t, "Aland,10,20,30,1.5", "Zimbabwe,5,1,1,0.1"))

	if diff := cmp.Diff([]string{"Aland", "Zimbabwe"}, idx.Order()); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	rec, ok := idx.Lookup("zimbabwe")
	if !ok {
		t.Fatal("zimbabwe not found")
	}
	prev, _, _ := idx.Neighbors(rec.Name)
	if Slugify(prev) != "aland" {
		t.Errorf("previous of Zimbabwe should be aland, got %q", Slugify(prev))
	}
	ranked := idx.Ranked("beer_servings")
	if ranked[0].Name != "Aland" || ranked[1].Name != "Zimbabwe" {
		t.Errorf("beer ranking wrong: %s, %s", ranked[0].Name, ranked[1].Name)
	}
}

func TestIndex_Ranked(t *testing.T) {
	idx := NewIndex(mustParse(t,
		"Namibia,376,1,3,6.8",
		"Aland,10,20,30,1.5",
		"Unknownland,n/a,0,0,0",
		"Zimbabwe,10,1,1,0.1",
		"Czech Republic,361,134,170,11.8",
	))

	for _, col := range idx.Columns() {
		ranked := idx.Ranked(col)
		if len(ranked) != idx.Len() {
			t.Fatalf("Ranked(%s) returned %d records, want %d", col, len(ranked), idx.Len())
		}
		for i := 1; i < len(ranked); i++ {
			a, b := ranked[i-1].Measure(col), ranked[i].Measure(col)
			if math.IsNaN(b) {
				continue
			}
			if math.IsNaN(a) || a < b {
				t.Errorf("Ranked(%s) not non-increasing at %d: %v then %v", col, i, a, b)
			}
		}
	}

	var names []string
	for _, rec := range idx.Ranked("beer_servings") {
		names = append(names, rec.Name)
	}
	// Ties keep canonical order; NaN sorts last.
	want := []string{"Namibia", "Czech Republic", "Aland", "Zimbabwe", "Unknownland"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("beer ranking mismatch (-want +got):\n%s", diff)
	}
}

func TestIndex_SlugCollisionLastWins(t *testing.T) {
	idx := NewIndex(mustParse(t,
		"Saint Lucia,171,71,315,10.1",
		"Saint-Lucia,1,1,1,1",
	))
	rec, ok := idx.Lookup("saint-lucia")
	if !ok {
		t.Fatal("expected collided slug to resolve")
	}
	if rec.Name != "Saint-Lucia" {
		t.Errorf("expected later record to shadow earlier, got %q", rec.Name)
	}
	if idx.Len() != 2 {
		t.Errorf("both records should stay in canonical order, got %d", idx.Len())
	}
}

func TestIndex_Empty(t *testing.T) {
	for _, idx := range []*Index{NewIndex(nil), NewIndex(&Dataset{})} {
		if idx.Len() != 0 {
			t.Errorf("expected empty index, got %d", idx.Len())
		}
		if _, _, ok := idx.Neighbors("anything"); ok {
			t.Error("empty index should have no neighbours")
		}
		if got := idx.Ranked("beer_servings"); len(got) != 0 {
			t.Errorf("expected empty ranking, got %d", len(got))
		}
	}
}

func BenchmarkNewIndex(b *testing.B) {
	var sb strings.Builder
	sb.WriteString(drinksHeader)
	for i := 0; i < 200; i++ {
		fmt.Fprintf(&sb, "Country %03d,%d,%d,%d,%d.5\n", i, i, 200-i, i%7, i%13)
	}
	ds, err := ParseCSV(strings.NewReader(sb.String()), Options{})
	if err != nil {
		b.Fatalf("ParseCSV failed: %v", err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = NewIndex(ds)
	}
}
