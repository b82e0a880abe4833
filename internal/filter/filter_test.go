package filter

import "testing"

func TestLookupDotPath(t *testing.T) {
	metadata := map[string]interface{}{
		"user": map[string]interface{}{
			"name": "alice",
			"tags": []interface{}{"a", "b", "c"},
		},
	}

	v, ok := lookup(metadata, "user.name")
	if !ok || v != "alice" {
		t.Fatalf("lookup(user.name) = %v, %v", v, ok)
	}

	v, ok = lookup(metadata, "user.tags.1")
	if !ok || v != "b" {
		t.Fatalf("lookup(user.tags.1) = %v, %v", v, ok)
	}

	if _, ok := lookup(metadata, "user.tags.9"); ok {
		t.Fatal("expected out-of-range array index to miss")
	}
	if _, ok := lookup(metadata, "user.missing"); ok {
		t.Fatal("expected missing key to miss")
	}
	if _, ok := lookup(nil, "a"); ok {
		t.Fatal("expected nil metadata to miss")
	}
}

func TestCompareNumericCrossType(t *testing.T) {
	c, ok := compare(int(3), float64(3.5))
	if !ok || c != -1 {
		t.Fatalf("compare(3, 3.5) = %d, %v", c, ok)
	}
}

func TestValuesEqualCrossNumericType(t *testing.T) {
	if !valuesEqual(int(7), float64(7)) {
		t.Fatal("expected int(7) == float64(7)")
	}
	if valuesEqual("7", 7) {
		t.Fatal("did not expect string(7) == int(7)")
	}
}
