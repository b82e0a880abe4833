package store

import (
	"math"
	"testing"
)

func TestAppendAndGet(t *testing.T) {
	s := New(3)
	slot, err := s.Append("a", []float32{1, 2, 3}, map[string]interface{}{"k": "v"})
	if err != nil {
		t.Fatal(err)
	}
	r, ok := s.Get(slot)
	if !ok || r.ID != "a" {
		t.Fatalf("Get(%d) = %v, %v", slot, r, ok)
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
}

func TestAppendDuplicateID(t *testing.T) {
	s := New(2)
	if _, err := s.Append("a", []float32{1, 2}, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Append("a", []float32{3, 4}, nil); err == nil {
		t.Fatal("expected error inserting duplicate id")
	}
}

func TestValidateDimensionMismatch(t *testing.T) {
	s := New(3)
	if err := s.Validate([]float32{1, 2}); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func TestValidateNonFinite(t *testing.T) {
	s := New(1)
	if err := s.Validate([]float32{float32(math.Inf(1))}); err == nil {
		t.Fatal("expected non-finite value error")
	}
}

func TestTombstoneAndSlotReuse(t *testing.T) {
	s := New(2)
	slotA, _ := s.Append("a", []float32{1, 1}, nil)
	if err := s.Tombstone(slotA); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", s.Len())
	}
	if _, ok := s.Get(slotA); ok {
		t.Fatal("expected tombstoned slot to be absent")
	}
	if _, ok := s.Lookup("a"); ok {
		t.Fatal("expected id mapping to be removed")
	}

	slotB, err := s.Append("b", []float32{2, 2}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if slotB != slotA {
		t.Fatalf("expected slot reuse: got %d, want %d", slotB, slotA)
	}
}

func TestReplaceInPlace(t *testing.T) {
	s := New(2)
	slot, _ := s.Append("a", []float32{1, 1}, map[string]interface{}{"v": 1})
	if err := s.Replace(slot, []float32{9, 9}, nil, map[string]interface{}{"v": 2}); err != nil {
		t.Fatal(err)
	}
	r, _ := s.Get(slot)
	if r.Vector[0] != 9 {
		t.Fatalf("Replace did not update vector: %v", r.Vector)
	}
}

func TestTombstoneUnknownSlot(t *testing.T) {
	s := New(1)
	if err := s.Tombstone(42); err == nil {
		t.Fatal("expected error tombstoning out-of-range slot")
	}
}

func TestEachSkipsTombstoned(t *testing.T) {
	s := New(1)
	slotA, _ := s.Append("a", []float32{1}, nil)
	s.Append("b", []float32{2}, nil)
	s.Tombstone(slotA)

	seen := 0
	s.Each(func(slot uint32, r *Record) { seen++ })
	if seen != 1 {
		t.Fatalf("Each visited %d records, want 1", seen)
	}
}
