package filter

import "testing"

func TestAndRequiresEveryChild(t *testing.T) {
	metadata := map[string]interface{}{"category": "electronics", "price": 42.5}
	f := NewAnd(NewEq("category", "electronics"), NewRange("price", nil, float64(50), nil, nil))
	if f.Match(metadata) {
		t.Fatal("expected no match, price below gte bound")
	}

	f2 := NewAnd(NewEq("category", "electronics"), NewRange("price", nil, float64(40), nil, nil))
	if !f2.Match(metadata) {
		t.Fatal("expected match")
	}
}

func TestOrAnyMatch(t *testing.T) {
	metadata := map[string]interface{}{"category": "books"}
	f := NewOr(NewEq("category", "electronics"), NewEq("category", "books"))
	if !f.Match(metadata) {
		t.Fatal("expected match on second child")
	}
	f2 := NewOr(NewEq("category", "electronics"), NewEq("category", "toys"))
	if f2.Match(metadata) {
		t.Fatal("expected no match")
	}
}

func TestNotNegates(t *testing.T) {
	metadata := map[string]interface{}{"category": "books"}
	f := NewNot(NewEq("category", "electronics"))
	if !f.Match(metadata) {
		t.Fatal("expected NOT to match")
	}
}

func TestAndOrValidateEmpty(t *testing.T) {
	if err := (&And{}).Validate(); err == nil {
		t.Fatal("expected error for empty AND")
	}
	if err := (&Or{}).Validate(); err == nil {
		t.Fatal("expected error for empty OR")
	}
}

func TestNestedCompound(t *testing.T) {
	metadata := map[string]interface{}{"category": "electronics", "price": 42.5, "tags": []interface{}{"sale"}}
	f := NewAnd(
		NewOr(NewEq("category", "electronics"), NewEq("category", "books")),
		NewNot(NewIn("category", []interface{}{"toys"})),
		NewExists("tags"),
	)
	if !f.Match(metadata) {
		t.Fatal("expected nested compound to match")
	}
}
