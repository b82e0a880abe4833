// Package hnsw implements a Hierarchical Navigable Small World graph for
// approximate nearest-neighbor search over vectors held in an external
// store, with optional scalar quantization and decode caching.
package hnsw

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/meet447/surgedb/internal/cache"
	"github.com/meet447/surgedb/internal/filter"
	"github.com/meet447/surgedb/internal/metric"
	"github.com/meet447/surgedb/internal/quant"
	"github.com/meet447/surgedb/internal/store"
)

// Config holds the tunable parameters of an HNSW graph.
type Config struct {
	Dimension      int
	M              int // max bidirectional links per node above level 0
	EfConstruction int // candidate list size while building
	EfSearch       int // default candidate list size while searching
	ML             float64
	Metric         metric.Kind
	RandomSeed     int64
}

func (c *Config) validate() error {
	if c.Dimension <= 0 {
		return fmt.Errorf("hnsw: dimension must be positive")
	}
	if c.M <= 0 {
		return fmt.Errorf("hnsw: M must be positive")
	}
	if c.EfConstruction <= 0 {
		return fmt.Errorf("hnsw: EfConstruction must be positive")
	}
	if c.EfSearch <= 0 {
		return fmt.Errorf("hnsw: EfSearch must be positive")
	}
	if c.ML <= 0 {
		return fmt.Errorf("hnsw: ML must be positive")
	}
	return nil
}

// Result is one search hit.
type Result struct {
	Slot     uint32
	ID       string
	Distance float32
	Metadata map[string]interface{}
}

// Index is an HNSW graph over vectors addressed by the InternalIndex slots
// of an external store.Store. Callers are expected to serialize access the
// same way the owning collection serializes access to its store: Index does
// not take its own lock.
type Index struct {
	cfg       *Config
	distFn    metric.Func
	store     *store.Store
	quantizer *quant.Scalar
	decode    *cache.Decoder

	nodes      []*node
	hasEntry   bool
	entryPoint uint32
	maxLevel   int
	size       int

	rng *rand.Rand
}

// New creates an empty HNSW index backed by s. quantizer and decode may be
// nil when the collection carries no quantization.
func New(cfg *Config, s *store.Store, quantizer *quant.Scalar, decode *cache.Decoder) (*Index, error) {
	if cfg == nil {
		return nil, fmt.Errorf("hnsw: config cannot be nil")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	distFn, err := metric.Get(cfg.Metric)
	if err != nil {
		return nil, err
	}
	return &Index{
		cfg:       cfg,
		distFn:    distFn,
		store:     s,
		quantizer: quantizer,
		decode:    decode,
		rng:       rand.New(rand.NewSource(cfg.RandomSeed)),
	}, nil
}

// Size returns the number of live nodes in the graph.
func (idx *Index) Size() int { return idx.size }

// MemoryUsage returns the approximate bytes held by the graph's link lists.
func (idx *Index) MemoryUsage() int64 {
	var usage int64
	for _, n := range idx.nodes {
		if n == nil || n.tombstoned {
			continue
		}
		for _, l := range n.links {
			usage += int64(len(l) * 4)
		}
		usage += 40
	}
	return usage
}

// Insert adds slot (already present in the backing store) to the graph,
// using vector for distance computation during construction. vector is the
// raw, uncompressed form even when the store holds a quantized copy of slot,
// since construction-time distance quality matters more than its cost.
func (idx *Index) Insert(slot uint32, vector []float32) error {
	level := idx.generateLevel()
	n := newNode(level)

	for int(slot) >= len(idx.nodes) {
		idx.nodes = append(idx.nodes, nil)
	}
	idx.nodes[slot] = n
	idx.size++

	if !idx.hasEntry {
		idx.hasEntry = true
		idx.entryPoint = slot
		idx.maxLevel = level
		return nil
	}

	if err := idx.insertNode(slot, n, vector); err != nil {
		idx.nodes[slot] = nil
		idx.size--
		return err
	}

	if level > idx.maxLevel {
		idx.entryPoint = slot
		idx.maxLevel = level
	}
	return nil
}

// Search returns up to k nearest neighbors of query. When f is non-nil, a
// candidate is admitted to the result set only if f.Match(metadata) is true
// -- the graph still walks through non-matching nodes to keep the beam
// search navigable, it just never returns them.
func (idx *Index) Search(query []float32, k, ef int, f filter.Filter) ([]Result, error) {
	if !idx.hasEntry {
		return nil, fmt.Errorf("hnsw: index is empty")
	}
	if len(query) != idx.cfg.Dimension {
		return nil, fmt.Errorf("hnsw: query dimension %d does not match index dimension %d", len(query), idx.cfg.Dimension)
	}
	if ef < k {
		ef = k
	}
	if ef < idx.cfg.EfSearch {
		ef = idx.cfg.EfSearch
	}

	ep := idx.entryPoint
	for level := idx.maxLevel; level > 0; level-- {
		candidates := idx.searchLevel(query, ep, 1, level, nil)
		if len(candidates) > 0 {
			ep = candidates[0].Slot
		}
	}

	candidates := idx.searchLevel(query, ep, ef, 0, f)

	results := make([]Result, 0, min(k, len(candidates)))
	for i, c := range candidates {
		if i >= k {
			break
		}
		rec, ok := idx.store.Get(c.Slot)
		if !ok {
			continue
		}
		results = append(results, Result{
			Slot:     c.Slot,
			ID:       rec.ID,
			Distance: c.Distance,
			Metadata: rec.Metadata,
		})
	}
	return results, nil
}

// generateLevel draws a node's level as floor(-ln(U) * ML), the
// exponential-decay distribution HNSW uses so the layer sizes shrink
// geometrically. The level is capped at 32.
func (idx *Index) generateLevel() int {
	u := 1 - idx.rng.Float64() // in (0, 1], so the log is finite
	level := int(math.Floor(-math.Log(u) * idx.cfg.ML))
	if level > 32 {
		level = 32
	}
	return level
}
