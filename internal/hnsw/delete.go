package hnsw

import "fmt"

// Delete tombstones slot's graph node and strips it from every link list
// that references it. It does not repair neighbor degree: a deleted node's
// neighbors simply end up with fewer links until the graph is rebuilt or
// they happen to gain new ones through later inserts.
func (idx *Index) Delete(slot uint32) error {
	if int(slot) >= len(idx.nodes) || idx.nodes[slot] == nil || idx.nodes[slot].tombstoned {
		return fmt.Errorf("hnsw: slot %d has no live node", slot)
	}
	n := idx.nodes[slot]

	// pruneLinks can drop a link from one side only, so a node may still
	// list slot without slot listing it back: scan every node, not just
	// slot's own neighbors.
	for other := range idx.nodes {
		for level := 0; level <= n.level; level++ {
			idx.unlink(uint32(other), slot, level)
		}
	}

	var topLinks []uint32
	if n.level < len(n.links) {
		topLinks = n.links[n.level]
	}
	n.tombstoned = true
	n.links = nil
	idx.size--

	if idx.decode != nil {
		idx.decode.Invalidate(slot)
	}

	if idx.entryPoint == slot {
		idx.promoteEntryPoint(slot, topLinks)
	}
	return nil
}

func (idx *Index) unlink(fromSlot, toSlot uint32, level int) {
	if int(fromSlot) >= len(idx.nodes) || idx.nodes[fromSlot] == nil {
		return
	}
	from := idx.nodes[fromSlot]
	if level >= len(from.links) {
		return
	}
	links := from.links[level]
	for i, l := range links {
		if l == toSlot {
			links[i] = links[len(links)-1]
			from.links[level] = links[:len(links)-1]
			return
		}
	}
}

// promoteEntryPoint picks a replacement entry point after deleting the
// current one: the first live ex-neighbor in topLinks (the deleted node's
// links at its own top level), or, when none is left, the live node with
// the highest level, excluding excludeSlot.
func (idx *Index) promoteEntryPoint(excludeSlot uint32, topLinks []uint32) {
	for _, s := range topLinks {
		if nb := idx.nodes[s]; s != excludeSlot && nb != nil && !nb.tombstoned {
			idx.entryPoint = s
			idx.maxLevel = nb.level
			return
		}
	}

	bestSlot := uint32(0)
	bestLevel := -1
	found := false

	for slot, n := range idx.nodes {
		if n == nil || n.tombstoned || uint32(slot) == excludeSlot {
			continue
		}
		if n.level > bestLevel {
			bestLevel = n.level
			bestSlot = uint32(slot)
			found = true
		}
	}

	if !found {
		idx.hasEntry = false
		idx.entryPoint = 0
		idx.maxLevel = 0
		return
	}
	idx.entryPoint = bestSlot
	idx.maxLevel = bestLevel
}
