package hnsw

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/meet447/surgedb/internal/metric"
	"github.com/meet447/surgedb/internal/store"
)

func newTestIndex(t *testing.T, dimension int) (*Index, *store.Store) {
	t.Helper()
	s := store.New(dimension)
	idx, err := New(&Config{
		Dimension:      dimension,
		M:              8,
		EfConstruction: 64,
		EfSearch:       32,
		ML:             1.0 / 2.0,
		Metric:         metric.Euclidean,
		RandomSeed:     1,
	}, s, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	return idx, s
}

func insertVector(t *testing.T, idx *Index, s *store.Store, id string, vector []float32) uint32 {
	t.Helper()
	slot, err := s.Append(id, vector, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := idx.Insert(slot, vector); err != nil {
		t.Fatal(err)
	}
	return slot
}

func TestInsertAndSearchFindsExactMatch(t *testing.T) {
	idx, s := newTestIndex(t, 2)
	insertVector(t, idx, s, "a", []float32{0, 0})
	insertVector(t, idx, s, "b", []float32{10, 10})
	insertVector(t, idx, s, "c", []float32{5, 5})

	results, err := idx.Search([]float32{0, 0}, 1, 32, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].ID != "a" {
		t.Fatalf("results = %+v, want single exact match on a", results)
	}
}

func TestSearchReturnsKNearest(t *testing.T) {
	idx, s := newTestIndex(t, 1)
	for i := 0; i < 20; i++ {
		insertVector(t, idx, s, string(rune('a'+i)), []float32{float32(i)})
	}

	results, err := idx.Search([]float32{10}, 3, 32, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Distance < results[i-1].Distance {
			t.Fatalf("results not sorted by distance: %+v", results)
		}
	}
}

func TestSearchEmptyIndexErrors(t *testing.T) {
	idx, _ := newTestIndex(t, 2)
	if _, err := idx.Search([]float32{0, 0}, 1, 10, nil); err == nil {
		t.Fatal("expected error searching empty index")
	}
}

func TestSearchDimensionMismatchErrors(t *testing.T) {
	idx, s := newTestIndex(t, 2)
	insertVector(t, idx, s, "a", []float32{0, 0})
	if _, err := idx.Search([]float32{0, 0, 0}, 1, 10, nil); err == nil {
		t.Fatal("expected error on dimension mismatch")
	}
}

func TestDeleteRemovesFromResults(t *testing.T) {
	idx, s := newTestIndex(t, 1)
	insertVector(t, idx, s, "a", []float32{0})
	slotB := insertVector(t, idx, s, "b", []float32{1})
	insertVector(t, idx, s, "c", []float32{2})

	if err := idx.Delete(slotB); err != nil {
		t.Fatal(err)
	}
	if err := s.Tombstone(slotB); err != nil {
		t.Fatal(err)
	}

	results, err := idx.Search([]float32{1}, 3, 32, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range results {
		if r.ID == "b" {
			t.Fatalf("deleted node still present in results: %+v", results)
		}
	}
}

func TestDeleteEntryPointPromotesReplacement(t *testing.T) {
	idx, s := newTestIndex(t, 1)
	slotA := insertVector(t, idx, s, "a", []float32{0})
	insertVector(t, idx, s, "b", []float32{1})
	insertVector(t, idx, s, "c", []float32{2})

	entry := idx.entryPoint
	if err := idx.Delete(entry); err != nil {
		t.Fatal(err)
	}
	if idx.entryPoint == entry {
		t.Fatal("expected a new entry point after deleting the old one")
	}
	if !idx.hasEntry {
		t.Fatal("expected index to still have an entry point")
	}
	_ = slotA
}

func TestDeleteLastNodeClearsEntry(t *testing.T) {
	idx, s := newTestIndex(t, 1)
	slot := insertVector(t, idx, s, "a", []float32{0})
	if err := idx.Delete(slot); err != nil {
		t.Fatal(err)
	}
	if idx.hasEntry {
		t.Fatal("expected no entry point once the graph is empty")
	}
	if idx.Size() != 0 {
		t.Fatalf("Size() = %d, want 0", idx.Size())
	}
}

func TestFilteredSearchExcludesNonMatchingButStaysConnected(t *testing.T) {
	idx, s := newTestIndex(t, 1)
	for i := 0; i < 30; i++ {
		slot, err := s.Append(string(rune('a'+i)), []float32{float32(i)}, map[string]interface{}{"even": i%2 == 0})
		if err != nil {
			t.Fatal(err)
		}
		if err := idx.Insert(slot, []float32{float32(i)}); err != nil {
			t.Fatal(err)
		}
	}

	f := evenFilter{}
	results, err := idx.Search([]float32{15}, 5, 32, f)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 5 {
		t.Fatalf("len(results) = %d, want 5", len(results))
	}
	for _, r := range results {
		if even, _ := r.Metadata["even"].(bool); !even {
			t.Fatalf("non-matching result admitted: %+v", r)
		}
	}
}

type evenFilter struct{}

func (evenFilter) Match(metadata map[string]interface{}) bool {
	even, _ := metadata["even"].(bool)
	return even
}
func (evenFilter) Validate() error { return nil }
func (evenFilter) String() string  { return "even" }

func TestRandomInsertDeleteDoesNotPanic(t *testing.T) {
	idx, s := newTestIndex(t, 4)
	rng := rand.New(rand.NewSource(7))
	var slots []uint32

	for i := 0; i < 200; i++ {
		vec := []float32{rng.Float32(), rng.Float32(), rng.Float32(), rng.Float32()}
		slot, err := s.Append(randID(i), vec, nil)
		if err != nil {
			t.Fatal(err)
		}
		if err := idx.Insert(slot, vec); err != nil {
			t.Fatal(err)
		}
		slots = append(slots, slot)

		if i > 0 && i%7 == 0 {
			victim := slots[rng.Intn(len(slots))]
			if _, ok := s.Get(victim); ok {
				idx.Delete(victim)
				s.Tombstone(victim)
			}
		}
	}

	if _, err := idx.Search([]float32{0.5, 0.5, 0.5, 0.5}, 10, 32, nil); err != nil {
		t.Fatal(err)
	}
}

func randID(i int) string {
	return "id-" + strconv.Itoa(i)
}
