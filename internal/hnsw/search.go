package hnsw

import (
	"container/heap"

	"github.com/meet447/surgedb/internal/filter"
	"github.com/meet447/surgedb/internal/metric"
)

// searchLevel runs a single-layer beam search from entry, returning up to ef
// candidates ordered closest-first. When f is non-nil, nodes that fail
// f.Match are still expanded (so the walk stays connected) but are excluded
// from the returned candidate set.
func (idx *Index) searchLevel(query []float32, entry uint32, ef int, level int, f filter.Filter) []Candidate {
	visited := make(map[uint32]bool)

	entryDist, ok := idx.distanceToQuery(query, entry)
	if !ok {
		return nil
	}
	visited[entry] = true

	candidates := &minHeap{{Slot: entry, Distance: entryDist}} // frontier to explore
	heap.Init(candidates)

	var best maxHeap // admitted results, farthest-first, capped at ef
	if idx.matches(entry, f) {
		best = append(best, Candidate{Slot: entry, Distance: entryDist})
		heap.Init(&best)
	}

	for candidates.Len() > 0 {
		current := heap.Pop(candidates).(Candidate)

		if len(best) >= ef && current.Distance > best.top().Distance {
			break
		}

		n := idx.nodes[current.Slot]
		if n == nil || level >= len(n.links) {
			continue
		}

		unvisited := make([]uint32, 0, len(n.links[level]))
		for _, neighborSlot := range n.links[level] {
			if visited[neighborSlot] {
				continue
			}
			visited[neighborSlot] = true
			unvisited = append(unvisited, neighborSlot)
		}

		distances, ok := idx.distancesToQuery(query, unvisited)
		for i, neighborSlot := range unvisited {
			if !ok[i] {
				continue
			}
			neighborDist := distances[i]

			admit := len(best) < ef || neighborDist < best.top().Distance
			if !admit {
				continue
			}

			heap.Push(candidates, Candidate{Slot: neighborSlot, Distance: neighborDist})

			if idx.matches(neighborSlot, f) {
				heap.Push(&best, Candidate{Slot: neighborSlot, Distance: neighborDist})
				if len(best) > ef {
					heap.Pop(&best)
				}
			}
		}
	}

	result := make([]Candidate, len(best))
	for i := len(best) - 1; i >= 0; i-- {
		result[i] = heap.Pop(&best).(Candidate)
	}
	return result
}

func (idx *Index) matches(slot uint32, f filter.Filter) bool {
	if f == nil {
		return true
	}
	rec, ok := idx.store.Get(slot)
	if !ok {
		return false
	}
	return f.Match(rec.Metadata)
}

// distanceToQuery computes the distance from query to the vector stored at
// slot: directly against the raw vector when the record holds one, and
// through the quantizer's DistanceToQuery over the compressed bytes
// otherwise. The decode cache is not consulted.
func (idx *Index) distanceToQuery(query []float32, slot uint32) (float32, bool) {
	rec, ok := idx.store.Get(slot)
	if !ok {
		return 0, false
	}
	if rec.Vector != nil {
		return idx.distFn(query, rec.Vector), true
	}
	if rec.Compressed != nil && idx.quantizer != nil {
		d, err := idx.quantizer.DistanceToQuery(rec.Compressed, query)
		if err != nil {
			return 0, false
		}
		return d, true
	}
	return 0, false
}

// distancesToQuery batches distanceToQuery across slots. For the unquantized
// path it threads through metric.Many, the only batch distance entry point
// hot loops are meant to call; quantized slots fall back to one
// quantizer.DistanceToQuery call apiece, since Many operates on raw
// []float32 vectors only.
func (idx *Index) distancesToQuery(query []float32, slots []uint32) ([]float32, []bool) {
	distances := make([]float32, len(slots))
	ok := make([]bool, len(slots))

	if idx.quantizer == nil {
		vectors := make([][]float32, 0, len(slots))
		positions := make([]int, 0, len(slots))
		for i, slot := range slots {
			rec, found := idx.store.Get(slot)
			if !found || rec.Vector == nil {
				continue
			}
			vectors = append(vectors, rec.Vector)
			positions = append(positions, i)
		}
		computed := metric.Many(idx.distFn, query, vectors, nil)
		for j, pos := range positions {
			distances[pos] = computed[j]
			ok[pos] = true
		}
		return distances, ok
	}

	for i, slot := range slots {
		d, found := idx.distanceToQuery(query, slot)
		distances[i] = d
		ok[i] = found
	}
	return distances, ok
}

// vectorAt returns the best available representation of slot's vector,
// decoding and caching a quantized vector if necessary. Used for
// construction-time and pruning distance computations between two graph
// nodes, where both sides may be quantized.
func (idx *Index) vectorAt(slot uint32) ([]float32, bool) {
	rec, ok := idx.store.Get(slot)
	if !ok {
		return nil, false
	}
	if rec.Vector != nil {
		return rec.Vector, true
	}
	if rec.Compressed == nil || idx.quantizer == nil {
		return nil, false
	}
	if idx.decode != nil {
		if cached, hit := idx.decode.Get(slot); hit {
			return cached, true
		}
	}
	decoded, err := idx.quantizer.Decompress(rec.Compressed)
	if err != nil {
		return nil, false
	}
	if idx.decode != nil {
		idx.decode.Put(slot, decoded)
	}
	return decoded, true
}

func (idx *Index) distanceBetween(slotA, slotB uint32) (float32, bool) {
	va, ok := idx.vectorAt(slotA)
	if !ok {
		return 0, false
	}
	vb, ok := idx.vectorAt(slotB)
	if !ok {
		return 0, false
	}
	return idx.distFn(va, vb), true
}
