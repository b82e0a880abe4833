package metric

import "testing"

func TestEuclidean(t *testing.T) {
	a := []float32{0, 0, 0}
	b := []float32{1, 0, 0}
	fn, err := Get(Euclidean)
	if err != nil {
		t.Fatal(err)
	}
	if got := fn(a, b); got != 1.0 {
		t.Errorf("euclidean(a,b) = %v, want 1.0", got)
	}
}

func TestCosineZeroVector(t *testing.T) {
	fn, _ := Get(Cosine)
	if got := fn([]float32{0, 0}, []float32{1, 1}); got != 1.0 {
		t.Errorf("cosine with zero vector = %v, want 1.0", got)
	}
}

func TestCosineOrdering(t *testing.T) {
	fn, _ := Get(Cosine)
	x := []float32{1, 0}
	y := []float32{0, 1}
	z := []float32{1, 1}
	q := []float32{2, 0}

	dx := fn(q, x)
	dz := fn(q, z)
	dy := fn(q, y)

	if !(dx < dz && dz < dy) {
		t.Errorf("expected dist(x) < dist(z) < dist(y), got %v %v %v", dx, dz, dy)
	}
	if dx > 1e-6 {
		t.Errorf("dist(q,x) = %v, want ~0", dx)
	}
}

func TestDotNegated(t *testing.T) {
	fn, _ := Get(Dot)
	a := []float32{1, 2, 3}
	b := []float32{1, 2, 3}
	if got := fn(a, b); got >= 0 {
		t.Errorf("dot(a,a) = %v, want negative (closer=more similar)", got)
	}
}

func TestMany(t *testing.T) {
	fn, _ := Get(Euclidean)
	q := []float32{0, 0}
	vs := [][]float32{{1, 0}, {0, 2}, {0, 0}}
	out := Many(fn, q, vs, nil)
	want := []float32{1, 4, 0}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("Many[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestFinite(t *testing.T) {
	if !Finite([]float32{1, 2, 3}) {
		t.Error("expected finite vector to be reported finite")
	}
	if Finite([]float32{1, float32(inf())}) {
		t.Error("expected vector with inf to be reported non-finite")
	}
}

func inf() float64 {
	var zero float64
	return 1 / zero
}
