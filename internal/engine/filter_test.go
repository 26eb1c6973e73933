package engine

import "testing"

func TestFilterSubset(t *testing.T) {
	idx := mustLoad(t, sampleCSV)

	sub := FilterSubset(idx, []string{"Israel", "Atlantis"})
	if got := sub.Countries(); len(got) != 1 || got[0] != "Israel" {
		t.Fatalf("Expected only Israel, got %v", got)
	}
	if sub.Len() != 3 {
		t.Errorf("Expected 3 rows, got %d", sub.Len())
	}
	if sub.HasCountry("United States") {
		t.Error("United States should be filtered out")
	}
	if len(idx.Countries()) != 3 || idx.Len() != 6 {
		t.Error("Source index was modified")
	}
	if len(sub.Fields()) != len(idx.Fields()) {
		t.Error("Header not carried over")
	}
}

func TestFilterSubsetIdempotent(t *testing.T) {
	idx := mustLoad(t, sampleCSV)
	allow := []string{"Israel", "United States"}

	once := FilterSubset(idx, allow)
	twice := FilterSubset(once, allow)

	if once.Len() != twice.Len() {
		t.Fatalf("Row count changed: %d vs %d", once.Len(), twice.Len())
	}
	for _, c := range once.Countries() {
		a, b, _ := once.Span(c)
		x, y, _ := twice.Span(c)
		if a != x || b != y || once.Rows(c) != twice.Rows(c) {
			t.Errorf("%s differs after second filter", c)
		}
	}
	for k, rec := range once.rows {
		other, ok := twice.rows[k]
		if !ok {
			t.Fatalf("Row %v lost", k)
		}
		for i := range rec.values {
			if rec.values[i] != other.values[i] {
				t.Errorf("Row %v field %d differs", k, i)
			}
		}
	}
}

func TestFilterSubsetEmptyAllowList(t *testing.T) {
	idx := mustLoad(t, sampleCSV)
	sub := FilterSubset(idx, nil)
	if sub.Len() != 0 || len(sub.Countries()) != 0 {
		t.Errorf("Expected empty index, got %d rows", sub.Len())
	}
}
