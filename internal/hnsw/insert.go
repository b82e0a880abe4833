package hnsw

// insertNode wires a freshly allocated node into an already non-empty graph:
// greedy single-best descent down to the node's own level, then a full
// efConstruction beam search and diversity-heuristic linking at each level
// from there down to 0.
func (idx *Index) insertNode(slot uint32, n *node, vector []float32) error {
	ep := idx.entryPoint

	for level := idx.maxLevel; level > n.level; level-- {
		candidates := idx.searchLevel(vector, ep, 1, level, nil)
		if len(candidates) > 0 {
			ep = candidates[0].Slot
		}
	}

	for level := min(n.level, idx.maxLevel); level >= 0; level-- {
		candidates := idx.searchLevel(vector, ep, idx.cfg.EfConstruction, level, nil)
		selected := idx.selectNeighbors(candidates, idx.cfg.M)

		idx.connect(slot, selected, level)

		for _, c := range selected {
			idx.pruneLinks(c.Slot, level)
		}

		if len(selected) > 0 {
			ep = selected[0].Slot
		}
	}

	return nil
}

// connect adds a bidirectional link between slot and each of neighbors at
// level. It is a no-op for a neighbor above the level its own node reaches
// (can happen when the node was itself promoted to entry point before
// slot's own higher levels were visited).
func (idx *Index) connect(slot uint32, neighbors []Candidate, level int) {
	n := idx.nodes[slot]
	for _, c := range neighbors {
		n.links[level] = append(n.links[level], c.Slot)

		neighborNode := idx.nodes[c.Slot]
		if neighborNode == nil || level >= len(neighborNode.links) {
			continue
		}
		neighborNode.links[level] = append(neighborNode.links[level], slot)
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
