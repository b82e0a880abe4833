// Package cache provides a small byte-budgeted LRU cache used to avoid
// re-decompressing the same quantized vector each time HNSW neighbor
// selection, Collection.Get or the search re-rank needs it.
package cache

import (
	"container/list"
	"sync"
)

// Decoder is a byte-budgeted LRU cache of decoded ([]float32) vectors, keyed
// by InternalIndex. It never changes search semantics: a miss just falls
// back to the quantizer's Decompress, so the cache is purely an optimization.
type Decoder struct {
	capacity int64
	size     int64

	mu    sync.Mutex
	items map[uint32]*list.Element
	order *list.List
}

type entry struct {
	key   uint32
	value []float32
	size  int64
}

// NewDecoder creates a decode cache with the given capacity in bytes.
// A non-positive capacity disables caching (Get always misses, Put is a no-op).
func NewDecoder(capacityBytes int64) *Decoder {
	return &Decoder{
		capacity: capacityBytes,
		items:    make(map[uint32]*list.Element),
		order:    list.New(),
	}
}

// Get returns the cached decoded vector for idx, if present.
func (d *Decoder) Get(idx uint32) ([]float32, bool) {
	if d.capacity <= 0 {
		return nil, false
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	elem, ok := d.items[idx]
	if !ok {
		return nil, false
	}
	d.order.MoveToFront(elem)
	return elem.Value.(*entry).value, true
}

// Put stores a decoded vector for idx, evicting least-recently-used entries
// as needed to stay within capacity.
func (d *Decoder) Put(idx uint32, vector []float32) {
	if d.capacity <= 0 {
		return
	}
	size := int64(len(vector) * 4)
	if size > d.capacity {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if elem, ok := d.items[idx]; ok {
		old := elem.Value.(*entry)
		d.size += size - old.size
		old.value = vector
		old.size = size
		d.order.MoveToFront(elem)
		d.evict()
		return
	}

	for d.size+size > d.capacity && d.order.Len() > 0 {
		d.removeOldest()
	}

	e := &entry{key: idx, value: vector, size: size}
	elem := d.order.PushFront(e)
	d.items[idx] = elem
	d.size += size
}

// Invalidate removes idx from the cache (used on delete/upsert/slot reuse).
func (d *Decoder) Invalidate(idx uint32) {
	if d.capacity <= 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if elem, ok := d.items[idx]; ok {
		d.remove(elem)
	}
}

// Len returns the number of cached entries.
func (d *Decoder) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.items)
}

func (d *Decoder) evict() {
	for d.size > d.capacity && d.order.Len() > 0 {
		d.removeOldest()
	}
}

func (d *Decoder) removeOldest() {
	elem := d.order.Back()
	if elem != nil {
		d.remove(elem)
	}
}

func (d *Decoder) remove(elem *list.Element) {
	e := elem.Value.(*entry)
	delete(d.items, e.key)
	d.order.Remove(elem)
	d.size -= e.size
}
