package vectorlite

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/meet447/surgedb/internal/cache"
	"github.com/meet447/surgedb/internal/filter"
	"github.com/meet447/surgedb/internal/hnsw"
	"github.com/meet447/surgedb/internal/metric"
	"github.com/meet447/surgedb/internal/obs"
	"github.com/meet447/surgedb/internal/quant"
	"github.com/meet447/surgedb/internal/store"
)

// Collection is a named set of same-dimension vectors with an HNSW index
// over them. A single RWMutex guards its store, graph, and id map as one
// unit: every public method takes it for the duration of the operation, so
// the store and graph are never observed in a state that reflects only one
// side of an insert/delete.
type Collection struct {
	mu      sync.RWMutex
	name    string
	config  *CollectionConfig
	distFn  metric.Func
	store   *store.Store
	index   *hnsw.Index
	quant   *quant.Scalar
	decode  *cache.Decoder
	metrics *obs.Metrics
	closed  bool
}

func newCollection(name string, metrics *obs.Metrics, opts ...CollectionOption) (*Collection, error) {
	config := defaultCollectionConfig()
	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, wrapError(InvalidConfig, "applying collection option", err)
		}
	}
	if err := config.validate(); err != nil {
		return nil, err
	}

	distFn, err := metric.Get(config.Metric)
	if err != nil {
		return nil, wrapError(InvalidConfig, "resolving distance metric", err)
	}

	s := store.New(config.Dimension)

	var quantizer *quant.Scalar
	var decode *cache.Decoder
	if config.Quantization != nil {
		quantizer, err = quant.NewScalar(&quant.Config{
			Kind:           config.Quantization.Kind,
			Metric:         config.Metric,
			TrainingWindow: config.Quantization.TrainingWindow,
		})
		if err != nil {
			return nil, wrapError(InvalidConfig, "constructing quantizer", err)
		}
		decode = cache.NewDecoder(config.DecodeCacheBytes)
	}

	idx, err := hnsw.New(&hnsw.Config{
		Dimension:      config.Dimension,
		M:              config.M,
		EfConstruction: config.EfConstruction,
		EfSearch:       config.EfSearch,
		ML:             config.ML,
		Metric:         config.Metric,
		RandomSeed:     config.RandomSeed,
	}, s, quantizer, decode)
	if err != nil {
		return nil, wrapError(InvalidConfig, "constructing hnsw index", err)
	}

	return &Collection{
		name:    name,
		config:  config,
		distFn:  distFn,
		store:   s,
		index:   idx,
		quant:   quantizer,
		decode:  decode,
		metrics: metrics,
	}, nil
}

// Insert adds a new vector. It fails with DuplicateID if id already exists;
// use Upsert to replace an existing vector.
func (c *Collection) Insert(id string, vector []float32, metadata map[string]interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return newError(StorageIO, "collection is closed")
	}
	if _, exists := c.store.Lookup(id); exists {
		return newError(DuplicateID, fmt.Sprintf("id %q already exists", id))
	}
	return c.insertLocked(id, vector, metadata)
}

// Upsert inserts id if it doesn't exist, or replaces its vector and
// metadata in place (same InternalIndex slot, same graph position)
// otherwise.
func (c *Collection) Upsert(id string, vector []float32, metadata map[string]interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return newError(StorageIO, "collection is closed")
	}
	slot, exists := c.store.Lookup(id)
	if !exists {
		return c.insertLocked(id, vector, metadata)
	}

	if err := c.store.Validate(vector); err != nil {
		return wrapError(DimensionMismatch, "validating vector", err)
	}

	var compressed []byte
	raw := vector
	if c.quant != nil && c.quant.IsTrained() {
		var err error
		compressed, err = c.quant.Compress(vector)
		if err != nil {
			return wrapError(StorageIO, "compressing vector", err)
		}
		raw = nil
	}
	if err := c.store.Replace(slot, raw, compressed, metadata); err != nil {
		return wrapError(StorageIO, "replacing vector", err)
	}
	if c.decode != nil {
		c.decode.Invalidate(slot)
	}
	if c.metrics != nil {
		c.metrics.VectorUpserts.Inc()
	}
	return nil
}

// UpsertBatch upserts each entry independently: the batch as a whole is not
// atomic, and a failure on one entry does not prevent the rest from
// applying. The returned slice has one error per entry, in order (nil for
// entries that succeeded).
func (c *Collection) UpsertBatch(entries []VectorEntry) []error {
	errs := make([]error, len(entries))
	for i, e := range entries {
		errs[i] = c.Upsert(e.ID, e.Vector, e.Metadata)
	}
	return errs
}

func (c *Collection) insertLocked(id string, vector []float32, metadata map[string]interface{}) error {
	if err := c.store.Validate(vector); err != nil {
		return wrapError(DimensionMismatch, "validating vector", err)
	}

	var slot uint32
	var err error
	if c.quant != nil {
		c.quant.Observe(vector)
		if c.quant.IsTrained() {
			var compressed []byte
			compressed, err = c.quant.Compress(vector)
			if err != nil {
				return wrapError(StorageIO, "compressing vector", err)
			}
			slot, err = c.store.AppendCompressed(id, compressed, metadata)
		} else {
			slot, err = c.store.Append(id, vector, metadata)
		}
	} else {
		slot, err = c.store.Append(id, vector, metadata)
	}
	if err != nil {
		return wrapError(StorageIO, "appending to store", err)
	}

	if err := c.index.Insert(slot, vector); err != nil {
		c.store.Tombstone(slot)
		return wrapError(StorageIO, "inserting into index", err)
	}

	if c.metrics != nil {
		c.metrics.VectorInserts.Inc()
	}
	return nil
}

// Delete removes id from the collection.
func (c *Collection) Delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return newError(StorageIO, "collection is closed")
	}
	slot, ok := c.store.Lookup(id)
	if !ok {
		return newError(VectorNotFound, fmt.Sprintf("id %q not found", id))
	}

	if err := c.index.Delete(slot); err != nil {
		return wrapError(StorageIO, "deleting from index", err)
	}
	if err := c.store.Tombstone(slot); err != nil {
		return wrapError(StorageIO, "tombstoning store slot", err)
	}
	if c.decode != nil {
		c.decode.Invalidate(slot)
	}
	if c.metrics != nil {
		c.metrics.VectorDeletes.Inc()
	}
	return nil
}

// Get returns the vector entry for id, decompressing it first if the
// collection is quantized.
func (c *Collection) Get(id string) (*VectorEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	slot, rec, ok := c.store.GetByID(id)
	if !ok {
		return nil, false
	}
	vector, _ := c.vectorFor(slot, rec)
	return &VectorEntry{ID: rec.ID, Vector: vector, Metadata: rec.Metadata}, true
}

// List returns the ids of every live vector in the collection.
func (c *Collection) List() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, 0, c.store.Len())
	c.store.Each(func(slot uint32, r *store.Record) {
		ids = append(ids, r.ID)
	})
	return ids
}

// quantRerankWidth is the multiple of k that the quantized search path
// widens ef to, so at least k*quantRerankWidth candidates come back from the
// graph walk and pass through rerank before truncating to k.
const quantRerankWidth = 2

// Search returns the k nearest neighbors of query, optionally restricted to
// records matching f.
func (c *Collection) Search(query []float32, k int, f filter.Filter) (*SearchResults, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	start := time.Now()
	results, err := c.searchLocked(query, k, f)
	if c.metrics != nil {
		c.metrics.SearchLatency.Observe(time.Since(start).Seconds())
		if err != nil {
			c.metrics.SearchErrors.Inc()
		} else {
			c.metrics.SearchQueries.Inc()
		}
	}
	if err != nil {
		return nil, err
	}
	return &SearchResults{Hits: results, Took: time.Since(start)}, nil
}

func (c *Collection) searchLocked(query []float32, k int, f filter.Filter) ([]*SearchHit, error) {
	if c.closed {
		return nil, newError(StorageIO, "collection is closed")
	}
	if k <= 0 {
		return nil, newError(InvalidConfig, "k must be positive")
	}
	if c.store.Len() == 0 {
		return nil, newError(EmptyIndex, "collection has no vectors")
	}
	if err := c.store.Validate(query); err != nil {
		return nil, wrapError(DimensionMismatch, "validating query vector", err)
	}

	ef := c.config.EfSearch
	if ef < k {
		ef = k
	}
	quantized := c.quant != nil && c.quant.IsTrained()
	if quantized && ef < k*quantRerankWidth {
		ef = k * quantRerankWidth
	}

	raw, err := c.index.Search(query, ef, ef, f)
	if err != nil {
		return nil, wrapError(StorageIO, "searching index", err)
	}

	if quantized {
		c.rerank(query, raw)
	}
	if len(raw) > k {
		raw = raw[:k]
	}

	hits := make([]*SearchHit, len(raw))
	for i, r := range raw {
		hits[i] = &SearchHit{ID: r.ID, Distance: r.Distance, Metadata: r.Metadata}
	}
	return hits, nil
}

// rerank re-scores each candidate against the vector vectorFor returns for
// it, then re-sorts ascending. A record stored compressed keeps no raw
// vector, so that is its decoded vector: the same values the graph walk
// already scored it with. The re-score does not recover precision lost to
// quantization.
func (c *Collection) rerank(query []float32, results []hnsw.Result) {
	for i := range results {
		rec, ok := c.store.Get(results[i].Slot)
		if !ok {
			continue
		}
		vector, ok := c.vectorFor(results[i].Slot, rec)
		if !ok {
			continue
		}
		results[i].Distance = c.distFn(query, vector)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Distance < results[j].Distance })
}

func (c *Collection) vectorFor(slot uint32, rec *store.Record) ([]float32, bool) {
	if rec.Vector != nil {
		return rec.Vector, true
	}
	if rec.Compressed == nil || c.quant == nil {
		return nil, false
	}
	if c.decode != nil {
		if cached, hit := c.decode.Get(slot); hit {
			return cached, true
		}
	}
	decoded, err := c.quant.Decompress(rec.Compressed)
	if err != nil {
		return nil, false
	}
	if c.decode != nil {
		c.decode.Put(slot, decoded)
	}
	return decoded, true
}

// Stats returns a snapshot of the collection's size and configuration.
func (c *Collection) Stats() *CollectionStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return &CollectionStats{
		Name:             c.name,
		VectorCount:      c.store.Len(),
		Dimension:        c.config.Dimension,
		Metric:           c.config.Metric.String(),
		MemoryUsageBytes: c.store.MemoryUsage() + c.index.MemoryUsage(),
		Quantized:        c.quant != nil,
		QuantizerTrained: c.quant != nil && c.quant.IsTrained(),
	}
}

// Close marks the collection closed; further operations return an error.
func (c *Collection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}
