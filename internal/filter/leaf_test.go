package filter

import "testing"

func metadataSample() map[string]interface{} {
	return map[string]interface{}{
		"category": "electronics",
		"price":    42.5,
		"tags":     []interface{}{"sale", "new"},
	}
}

func TestEqMatch(t *testing.T) {
	f := NewEq("category", "electronics")
	if !f.Match(metadataSample()) {
		t.Fatal("expected match")
	}
	if NewEq("category", "books").Match(metadataSample()) {
		t.Fatal("expected no match")
	}
	if NewEq("missing", "x").Match(metadataSample()) {
		t.Fatal("expected no match on missing path")
	}
}

func TestEqValidate(t *testing.T) {
	if err := (&Eq{Path: ""}).Validate(); err == nil {
		t.Fatal("expected validation error for empty path")
	}
}

func TestInMatch(t *testing.T) {
	f := NewIn("category", []interface{}{"books", "electronics"})
	if !f.Match(metadataSample()) {
		t.Fatal("expected match")
	}
	if NewIn("category", []interface{}{"books"}).Match(metadataSample()) {
		t.Fatal("expected no match")
	}
}

func TestInValidate(t *testing.T) {
	if err := (&In{Path: "x"}).Validate(); err == nil {
		t.Fatal("expected validation error for empty values")
	}
}

func TestRangeMatch(t *testing.T) {
	f := NewRange("price", nil, float64(40), nil, float64(50))
	if !f.Match(metadataSample()) {
		t.Fatal("expected match within [40,50]")
	}
	f2 := NewRange("price", nil, float64(43), nil, nil)
	if f2.Match(metadataSample()) {
		t.Fatal("expected no match, price below gte bound")
	}
}

func TestRangeExclusiveBounds(t *testing.T) {
	f := NewRange("price", float64(42.5), nil, nil, nil)
	if f.Match(metadataSample()) {
		t.Fatal("expected no match, gt is exclusive")
	}
}

func TestRangeValidate(t *testing.T) {
	if err := (&Range{Path: "price"}).Validate(); err == nil {
		t.Fatal("expected validation error when no bound is specified")
	}
}

func TestExistsMatch(t *testing.T) {
	if !NewExists("category").Match(metadataSample()) {
		t.Fatal("expected category to exist")
	}
	if NewExists("missing").Match(metadataSample()) {
		t.Fatal("expected missing path to not exist")
	}
}
