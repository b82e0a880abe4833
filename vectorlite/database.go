// Package vectorlite is an embeddable, in-memory vector database: named
// collections of fixed-dimension vectors, each backed by an HNSW
// approximate-nearest-neighbor index with optional scalar quantization and
// metadata filtering.
package vectorlite

import (
	"fmt"
	"sync"

	"github.com/meet447/surgedb/internal/obs"
)

// Database owns a set of named collections and their shared configuration.
type Database struct {
	mu          sync.RWMutex
	collections map[string]*Collection
	metrics     *obs.Metrics
	config      *Config
	closed      bool
}

// New creates a Database with the given options.
func New(opts ...Option) (*Database, error) {
	config := &Config{
		MetricsEnabled: true,
		MaxCollections: 100,
	}
	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, wrapError(InvalidConfig, "applying database option", err)
		}
	}

	var metrics *obs.Metrics
	if config.MetricsEnabled {
		metrics = obs.NewMetrics()
	}

	return &Database{
		collections: make(map[string]*Collection),
		metrics:     metrics,
		config:      config,
	}, nil
}

// CreateCollection creates and registers a new collection under name.
func (db *Database) CreateCollection(name string, opts ...CollectionOption) (*Collection, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return nil, newError(StorageIO, "database is closed")
	}
	if _, exists := db.collections[name]; exists {
		return nil, newError(DuplicateCollection, fmt.Sprintf("collection %q already exists", name))
	}
	if len(db.collections) >= db.config.MaxCollections {
		return nil, newError(InvalidConfig, fmt.Sprintf("database already holds the configured maximum of %d collections", db.config.MaxCollections))
	}

	c, err := newCollection(name, db.metrics, opts...)
	if err != nil {
		return nil, err
	}
	db.collections[name] = c
	return c, nil
}

// GetCollection retrieves a previously created collection by name.
func (db *Database) GetCollection(name string) (*Collection, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if db.closed {
		return nil, newError(StorageIO, "database is closed")
	}
	c, ok := db.collections[name]
	if !ok {
		return nil, newError(CollectionNotFound, fmt.Sprintf("collection %q not found", name))
	}
	return c, nil
}

// ListCollections returns the names of every registered collection.
func (db *Database) ListCollections() []string {
	db.mu.RLock()
	defer db.mu.RUnlock()

	names := make([]string, 0, len(db.collections))
	for name := range db.collections {
		names = append(names, name)
	}
	return names
}

// DeleteCollection removes a collection and closes it.
func (db *Database) DeleteCollection(name string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	c, ok := db.collections[name]
	if !ok {
		return newError(CollectionNotFound, fmt.Sprintf("collection %q not found", name))
	}
	delete(db.collections, name)
	return c.Close()
}

// Stats returns a snapshot of every collection's size and configuration.
func (db *Database) Stats() *DatabaseStats {
	db.mu.RLock()
	defer db.mu.RUnlock()

	stats := &DatabaseStats{
		CollectionCount: len(db.collections),
		Collections:     make(map[string]*CollectionStats, len(db.collections)),
	}
	for name, c := range db.collections {
		cs := c.Stats()
		stats.Collections[name] = cs
		stats.MemoryUsageBytes += cs.MemoryUsageBytes
	}
	return stats
}

// Close closes every collection and marks the database closed.
func (db *Database) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return nil
	}
	for _, c := range db.collections {
		c.Close()
	}
	db.closed = true
	return nil
}
