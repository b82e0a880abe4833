// Package store holds the raw and quantized vector bytes for a collection in
// an arena with a free list, keeping internal slot indices stable across
// deletes so the HNSW graph can reference them directly.
package store

import (
	"fmt"

	"github.com/meet447/surgedb/internal/metric"
)

// Record is one vector entry. Either Vector or Compressed is populated,
// never both. A quantized collection stores raw records until its quantizer
// is trained and compressed records from then on.
type Record struct {
	ID         string
	Vector     []float32
	Compressed []byte
	Metadata   map[string]interface{}
	tombstoned bool
}

// Store is an arena of Records addressed by a stable InternalIndex. Deleting
// a record tombstones its slot and returns the slot to a free list for reuse
// by a later insert; it is never compacted, so indices handed out earlier
// never change meaning.
type Store struct {
	dimension int
	records   []Record
	freeList  []uint32
	idToSlot  map[string]uint32
	live      int
}

// New creates an empty store for vectors of the given dimension.
func New(dimension int) *Store {
	return &Store{
		dimension: dimension,
		idToSlot:  make(map[string]uint32),
	}
}

// Dimension returns the fixed vector dimension this store validates against.
func (s *Store) Dimension() int { return s.dimension }

// Len returns the number of live (non-tombstoned) records.
func (s *Store) Len() int { return s.live }

// Validate checks that a raw vector matches the store's dimension and holds
// only finite values.
func (s *Store) Validate(vector []float32) error {
	if len(vector) != s.dimension {
		return fmt.Errorf("store: vector dimension %d does not match collection dimension %d", len(vector), s.dimension)
	}
	if !metric.Finite(vector) {
		return fmt.Errorf("store: vector contains non-finite values")
	}
	return nil
}

// Lookup resolves an external ID to its internal slot index.
func (s *Store) Lookup(id string) (uint32, bool) {
	slot, ok := s.idToSlot[id]
	return slot, ok
}

// Get returns the record at slot, or false if the slot is out of range or
// tombstoned.
func (s *Store) Get(slot uint32) (*Record, bool) {
	if int(slot) >= len(s.records) {
		return nil, false
	}
	r := &s.records[slot]
	if r.tombstoned {
		return nil, false
	}
	return r, true
}

// GetByID resolves id to its record in one call.
func (s *Store) GetByID(id string) (uint32, *Record, bool) {
	slot, ok := s.idToSlot[id]
	if !ok {
		return 0, nil, false
	}
	r, ok := s.Get(slot)
	return slot, r, ok
}

// Append allocates a slot for a new raw-vector record, reusing a tombstoned
// slot from the free list when one is available.
func (s *Store) Append(id string, vector []float32, metadata map[string]interface{}) (uint32, error) {
	return s.append(id, Record{ID: id, Vector: vector, Metadata: metadata})
}

// AppendCompressed allocates a slot for a new quantized-vector record.
func (s *Store) AppendCompressed(id string, compressed []byte, metadata map[string]interface{}) (uint32, error) {
	return s.append(id, Record{ID: id, Compressed: compressed, Metadata: metadata})
}

func (s *Store) append(id string, rec Record) (uint32, error) {
	if _, exists := s.idToSlot[id]; exists {
		return 0, fmt.Errorf("store: id %q already exists", id)
	}

	var slot uint32
	if n := len(s.freeList); n > 0 {
		slot = s.freeList[n-1]
		s.freeList = s.freeList[:n-1]
		s.records[slot] = rec
	} else {
		slot = uint32(len(s.records))
		s.records = append(s.records, rec)
	}

	s.idToSlot[id] = slot
	s.live++
	return slot, nil
}

// Replace overwrites the vector and metadata of an existing live record in
// place, keeping its slot (used by upsert so the HNSW graph need not move
// the node).
func (s *Store) Replace(slot uint32, vector []float32, compressed []byte, metadata map[string]interface{}) error {
	r, ok := s.Get(slot)
	if !ok {
		return fmt.Errorf("store: slot %d is not live", slot)
	}
	r.Vector = vector
	r.Compressed = compressed
	r.Metadata = metadata
	return nil
}

// Tombstone marks a live slot deleted, frees its memory, removes its ID
// mapping, and returns the slot to the free list for reuse.
func (s *Store) Tombstone(slot uint32) error {
	r, ok := s.Get(slot)
	if !ok {
		return fmt.Errorf("store: slot %d is not live", slot)
	}
	delete(s.idToSlot, r.ID)
	s.records[slot] = Record{tombstoned: true}
	s.freeList = append(s.freeList, slot)
	s.live--
	return nil
}

// Each iterates every live record along with its slot, in slot order.
func (s *Store) Each(fn func(slot uint32, r *Record)) {
	for i := range s.records {
		if s.records[i].tombstoned {
			continue
		}
		fn(uint32(i), &s.records[i])
	}
}

// MemoryUsage returns the approximate bytes held by raw and compressed
// vector payloads and metadata pointers across all live records.
func (s *Store) MemoryUsage() int64 {
	var usage int64
	for i := range s.records {
		if s.records[i].tombstoned {
			continue
		}
		usage += int64(len(s.records[i].Vector) * 4)
		usage += int64(len(s.records[i].Compressed))
		usage += 48
	}
	return usage
}
