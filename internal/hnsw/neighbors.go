package hnsw

import "sort"

// selectNeighbors applies the diversity heuristic from the HNSW paper
// (Malkov & Yashunin, algorithm 4): among candidates closer than the query,
// greedily keep a candidate only if it is not closer to an already-kept
// candidate than it is to the query. This avoids link lists that cluster
// around a single direction and keeps the graph navigable, at the cost of
// sometimes choosing a farther candidate over a nearer but redundant one.
func (idx *Index) selectNeighbors(candidates []Candidate, m int) []Candidate {
	if len(candidates) <= m {
		return candidates
	}

	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Distance < sorted[j].Distance })

	selected := make([]Candidate, 0, m)
	for _, c := range sorted {
		if len(selected) >= m {
			break
		}

		keep := true
		for _, s := range selected {
			d, ok := idx.distanceBetween(c.Slot, s.Slot)
			if ok && d < c.Distance {
				keep = false
				break
			}
		}
		if keep {
			selected = append(selected, c)
		}
	}

	// A very directional cluster can starve the heuristic down to fewer than
	// m neighbors; fill any remaining slots from the closest leftovers so a
	// node is never under-connected purely because of the diversity rule.
	if len(selected) < m {
		for _, c := range sorted {
			if len(selected) >= m {
				break
			}
			if containsSlot(selected, c.Slot) {
				continue
			}
			selected = append(selected, c)
		}
	}

	return selected
}

func containsSlot(cs []Candidate, slot uint32) bool {
	for _, c := range cs {
		if c.Slot == slot {
			return true
		}
	}
	return false
}

// maxDegree returns the link-list cap for level: the configured M, doubled
// at level 0 where the graph carries most of the traffic and benefits from
// extra redundancy.
func (idx *Index) maxDegree(level int) int {
	if level == 0 {
		return idx.cfg.M * 2
	}
	return idx.cfg.M
}

// pruneLinks re-selects slot's neighbor list at level down to maxDegree
// using the same diversity heuristic, called after a new bidirectional link
// pushes a neighbor over its cap.
func (idx *Index) pruneLinks(slot uint32, level int) {
	n := idx.nodes[slot]
	if n == nil || level >= len(n.links) {
		return
	}
	maxM := idx.maxDegree(level)
	if len(n.links[level]) <= maxM {
		return
	}

	candidates := make([]Candidate, 0, len(n.links[level]))
	for _, neighborSlot := range n.links[level] {
		d, ok := idx.distanceBetween(slot, neighborSlot)
		if !ok {
			continue
		}
		candidates = append(candidates, Candidate{Slot: neighborSlot, Distance: d})
	}

	selected := idx.selectNeighbors(candidates, maxM)
	newLinks := make([]uint32, len(selected))
	for i, c := range selected {
		newLinks[i] = c.Slot
	}
	n.links[level] = newLinks
}
