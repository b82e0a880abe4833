package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/meet447/surgedb/internal/metric"
	"github.com/meet447/surgedb/internal/quant"
	"github.com/meet447/surgedb/vectorlite"
)

const version = "0.1.0"

type server struct {
	db        *vectorlite.Database
	startedAt time.Time
}

func newServer(addr string, maxCollections int, metricsEnabled bool) (*server, error) {
	db, err := vectorlite.New(
		vectorlite.WithMetrics(metricsEnabled),
		vectorlite.WithMaxCollections(maxCollections),
	)
	if err != nil {
		return nil, err
	}
	return &server{db: db, startedAt: time.Now()}, nil
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("POST /collections", s.handleCreateCollection)
	mux.HandleFunc("GET /collections", s.handleListCollections)
	mux.HandleFunc("DELETE /collections/{name}", s.handleDeleteCollection)
	mux.HandleFunc("POST /collections/{name}/vectors", s.handleInsertVector)
	mux.HandleFunc("POST /collections/{name}/upsert", s.handleUpsertVector)
	mux.HandleFunc("POST /collections/{name}/vectors/batch", s.handleUpsertBatch)
	mux.HandleFunc("GET /collections/{name}/vectors", s.handleListVectors)
	mux.HandleFunc("GET /collections/{name}/vectors/{id}", s.handleGetVector)
	mux.HandleFunc("DELETE /collections/{name}/vectors/{id}", s.handleDeleteVector)
	mux.HandleFunc("POST /collections/{name}/search", s.handleSearch)
	return mux
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":          "OK",
		"version":         version,
		"uptime_seconds":  time.Since(s.startedAt).Seconds(),
		"memory_usage_mb": float64(s.db.Stats().MemoryUsageBytes) / (1 << 20),
	})
}

func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"uptime_seconds": time.Since(s.startedAt).Seconds(),
		"database":       s.db.Stats(),
	})
}

type createCollectionRequest struct {
	Name           string                  `json:"name"`
	Dimensions     int                     `json:"dimensions"`
	DistanceMetric string                  `json:"distance_metric"`
	Quantization   *quantizationWireConfig `json:"quantization"`
}

type quantizationWireConfig struct {
	Enabled        bool `json:"enabled"`
	TrainingWindow int  `json:"training_window"`
}

func (s *server) handleCreateCollection(w http.ResponseWriter, r *http.Request) {
	var req createCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	opts := []vectorlite.CollectionOption{vectorlite.WithDimension(req.Dimensions)}
	if req.DistanceMetric != "" {
		m, err := metric.ParseKind(req.DistanceMetric)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		opts = append(opts, vectorlite.WithMetric(m))
	}
	if req.Quantization != nil && req.Quantization.Enabled {
		opts = append(opts, vectorlite.WithQuantization(req.Quantization.TrainingWindow))
	}

	if _, err := s.db.CreateCollection(req.Name, opts...); err != nil {
		writeVectorliteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "Created")
}

func (s *server) handleListCollections(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.db.ListCollections())
}

func (s *server) handleDeleteCollection(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := s.db.DeleteCollection(name); err != nil {
		writeVectorliteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "Deleted")
}

type vectorWireEntry struct {
	ID       string                 `json:"id"`
	Vector   []float32              `json:"vector"`
	Metadata map[string]interface{} `json:"metadata"`
}

func (s *server) handleInsertVector(w http.ResponseWriter, r *http.Request) {
	c, ok := s.collection(w, r.PathValue("name"))
	if !ok {
		return
	}
	var entry vectorWireEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := c.Insert(entry.ID, entry.Vector, entry.Metadata); err != nil {
		writeVectorliteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "Inserted")
}

func (s *server) handleUpsertVector(w http.ResponseWriter, r *http.Request) {
	c, ok := s.collection(w, r.PathValue("name"))
	if !ok {
		return
	}
	var entry vectorWireEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := c.Upsert(entry.ID, entry.Vector, entry.Metadata); err != nil {
		writeVectorliteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "Upserted")
}

func (s *server) handleUpsertBatch(w http.ResponseWriter, r *http.Request) {
	c, ok := s.collection(w, r.PathValue("name"))
	if !ok {
		return
	}
	var req struct {
		Vectors []vectorWireEntry `json:"vectors"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries := make([]vectorlite.VectorEntry, len(req.Vectors))
	for i, v := range req.Vectors {
		entries[i] = vectorlite.VectorEntry{ID: v.ID, Vector: v.Vector, Metadata: v.Metadata}
	}
	errs := c.UpsertBatch(entries)

	count := 0
	for _, err := range errs {
		if err == nil {
			count++
		}
	}
	writeJSON(w, http.StatusOK, count)
}

func (s *server) handleListVectors(w http.ResponseWriter, r *http.Request) {
	c, ok := s.collection(w, r.PathValue("name"))
	if !ok {
		return
	}

	offset := parseIntDefault(r.URL.Query().Get("offset"), 0)
	limit := parseIntDefault(r.URL.Query().Get("limit"), 10)
	if limit > 100 {
		limit = 100
	}
	if limit < 0 {
		limit = 0
	}

	ids := c.List()
	if offset > len(ids) {
		offset = len(ids)
	}
	end := offset + limit
	if end > len(ids) {
		end = len(ids)
	}
	writeJSON(w, http.StatusOK, ids[offset:end])
}

func (s *server) handleGetVector(w http.ResponseWriter, r *http.Request) {
	c, ok := s.collection(w, r.PathValue("name"))
	if !ok {
		return
	}
	entry, found := c.Get(r.PathValue("id"))
	if !found {
		writeError(w, http.StatusNotFound, "vector not found")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *server) handleDeleteVector(w http.ResponseWriter, r *http.Request) {
	c, ok := s.collection(w, r.PathValue("name"))
	if !ok {
		return
	}
	if err := c.Delete(r.PathValue("id")); err != nil {
		writeVectorliteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "Deleted")
}

type searchRequest struct {
	Vector []float32       `json:"vector"`
	K      int             `json:"k"`
	Filter json.RawMessage `json:"filter"`
}

func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	c, ok := s.collection(w, r.PathValue("name"))
	if !ok {
		return
	}
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	f, err := parseFilter(req.Filter)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	results, err := c.Search(req.Vector, req.K, f)
	if err != nil {
		writeVectorliteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results.Hits)
}

func (s *server) collection(w http.ResponseWriter, name string) (*vectorlite.Collection, bool) {
	c, err := s.db.GetCollection(name)
	if err != nil {
		writeVectorliteError(w, err)
		return nil, false
	}
	return c, true
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeVectorliteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if ve, ok := err.(*vectorlite.Error); ok {
		switch ve.Kind {
		case vectorlite.DimensionMismatch, vectorlite.InvalidConfig, vectorlite.DuplicateID, vectorlite.DuplicateCollection, vectorlite.EmptyIndex:
			status = http.StatusBadRequest
		case vectorlite.VectorNotFound, vectorlite.CollectionNotFound:
			status = http.StatusNotFound
		}
	}
	writeError(w, status, err.Error())
}
