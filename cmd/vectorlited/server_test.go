package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer(t *testing.T) *server {
	t.Helper()
	s, err := newServer(":0", 10, false)
	if err != nil {
		t.Fatalf("newServer: %v", err)
	}
	return s
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServerHealth(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s.routes(), http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestServerCollectionLifecycle(t *testing.T) {
	s := newTestServer(t)
	h := s.routes()

	rec := doJSON(t, h, http.MethodPost, "/collections", map[string]interface{}{
		"name": "docs", "dimensions": 3,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("create collection: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodPost, "/collections", map[string]interface{}{
		"name": "docs", "dimensions": 3,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate create: expected 400, got %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/collections", nil)
	var names []string
	json.Unmarshal(rec.Body.Bytes(), &names)
	if len(names) != 1 || names[0] != "docs" {
		t.Fatalf("expected [docs], got %v", names)
	}

	rec = doJSON(t, h, http.MethodPost, "/collections/docs/vectors", map[string]interface{}{
		"id": "a", "vector": []float32{1, 0, 0},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("insert vector: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodPost, "/collections/docs/search", map[string]interface{}{
		"vector": []float32{1, 0, 0}, "k": 1,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("search: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var hits []struct {
		ID string `json:"id"`
	}
	json.Unmarshal(rec.Body.Bytes(), &hits)
	if len(hits) != 1 || hits[0].ID != "a" {
		t.Fatalf("expected hit 'a', got %v", hits)
	}

	rec = doJSON(t, h, http.MethodDelete, "/collections/docs/vectors/a", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete vector: expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodDelete, "/collections/docs", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete collection: expected 200, got %d", rec.Code)
	}
}

func TestServerCollectionNotFound(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s.routes(), http.MethodGet, "/collections/missing/vectors/a", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
