// Package quant implements optional scalar quantization of vectors.
package quant

import (
	"fmt"
	"sync"

	"github.com/meet447/surgedb/internal/metric"
)

// DefaultTrainingWindow is the number of raw inserts used to calibrate the
// scalar quantizer before it freezes its per-dimension parameters.
const DefaultTrainingWindow = 1024

// Kind identifies a quantization codec.
type Kind int

const (
	// None performs no quantization; the vector store keeps only raw vectors.
	None Kind = iota
	// U8Scalar quantizes each dimension independently to a byte.
	U8Scalar
)

// Config configures the scalar quantizer.
type Config struct {
	Kind Kind
	// Metric is the collection's configured distance metric. DistanceToQuery
	// scores candidates under this metric rather than assuming Euclidean, so
	// a quantized Cosine or Dot collection's beam search ranks candidates the
	// same way its final re-rank does.
	Metric metric.Kind
	// TrainingWindow is the number of inserts used to learn per-dimension
	// min/scale parameters. Defaults to DefaultTrainingWindow when zero.
	TrainingWindow int
}

func (c *Config) window() int {
	if c.TrainingWindow <= 0 {
		return DefaultTrainingWindow
	}
	return c.TrainingWindow
}

// Scalar implements per-dimension affine u8 quantization:
//
//	q = round(clamp((x - min) / scale, 0, 255))
//	x' = min + scale * q
//
// Parameters are learned from the first TrainingWindow inserts and then
// frozen for the life of the collection, per spec.
type Scalar struct {
	mu sync.RWMutex

	window     int
	dimension  int
	trained    bool
	metricKind metric.Kind
	distFn     metric.Func

	mins   []float32
	scales []float32

	training [][]float32
}

// NewScalar creates an untrained scalar quantizer for the given Config.
func NewScalar(cfg *Config) (*Scalar, error) {
	if cfg == nil {
		return nil, fmt.Errorf("quant: config cannot be nil")
	}
	if cfg.Kind != U8Scalar {
		return nil, fmt.Errorf("quant: unsupported quantization kind: %v", cfg.Kind)
	}
	distFn, err := metric.Get(cfg.Metric)
	if err != nil {
		return nil, fmt.Errorf("quant: %w", err)
	}
	return &Scalar{window: cfg.window(), metricKind: cfg.Metric, distFn: distFn}, nil
}

// Observe feeds a raw vector into the calibration window. Once TrainingWindow
// vectors have been observed, the quantizer trains and freezes. Before that
// point Observe behaves as identity: Compress/Decompress are unavailable and
// callers should keep using the raw vector (IsTrained reports false).
func (s *Scalar) Observe(vector []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.trained {
		return
	}

	cp := make([]float32, len(vector))
	copy(cp, vector)
	s.training = append(s.training, cp)

	if len(s.training) >= s.window {
		s.train()
	}
}

func (s *Scalar) train() {
	dim := len(s.training[0])
	mins := make([]float32, dim)
	maxs := make([]float32, dim)
	copy(mins, s.training[0])
	copy(maxs, s.training[0])

	for _, v := range s.training[1:] {
		for d := 0; d < dim; d++ {
			if v[d] < mins[d] {
				mins[d] = v[d]
			}
			if v[d] > maxs[d] {
				maxs[d] = v[d]
			}
		}
	}

	scales := make([]float32, dim)
	for d := 0; d < dim; d++ {
		r := maxs[d] - mins[d]
		if r == 0 {
			scales[d] = 1
		} else {
			scales[d] = r / 255.0
		}
	}

	s.dimension = dim
	s.mins = mins
	s.scales = scales
	s.trained = true
	s.training = nil
}

// IsTrained reports whether calibration has completed.
func (s *Scalar) IsTrained() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.trained
}

// Compress encodes a raw vector into quantized bytes, one byte per dimension.
func (s *Scalar) Compress(vector []float32) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.trained {
		return nil, fmt.Errorf("quant: quantizer not yet trained")
	}
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("quant: vector dimension %d does not match trained dimension %d", len(vector), s.dimension)
	}

	out := make([]byte, s.dimension)
	for d, x := range vector {
		v := (x - s.mins[d]) / s.scales[d]
		if v < 0 {
			v = 0
		} else if v > 255 {
			v = 255
		}
		out[d] = byte(v + 0.5)
	}
	return out, nil
}

// Decompress decodes quantized bytes back into an approximate raw vector.
func (s *Scalar) Decompress(data []byte) ([]float32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.trained {
		return nil, fmt.Errorf("quant: quantizer not yet trained")
	}
	out := make([]float32, s.dimension)
	for d := range out {
		out[d] = s.mins[d] + s.scales[d]*float32(data[d])
	}
	return out, nil
}

// DistanceToQuery computes an approximate distance, under the quantizer's
// configured metric, from a compressed vector to a raw query vector. For
// Euclidean this accumulates directly over the quantized bytes without
// fully decompressing; Cosine and Dot need the full decoded vector to form
// a norm or dot product, so those fall back to decoding first.
func (s *Scalar) DistanceToQuery(compressed []byte, query []float32) (float32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.trained {
		return 0, fmt.Errorf("quant: quantizer not yet trained")
	}
	if len(query) != s.dimension {
		return 0, fmt.Errorf("quant: query dimension %d does not match trained dimension %d", len(query), s.dimension)
	}

	if s.metricKind == metric.Euclidean {
		var sum float32
		for d, q := range query {
			x := s.mins[d] + s.scales[d]*float32(compressed[d])
			diff := q - x
			sum += diff * diff
		}
		return sum, nil
	}

	decoded := make([]float32, s.dimension)
	for d := range decoded {
		decoded[d] = s.mins[d] + s.scales[d]*float32(compressed[d])
	}
	return s.distFn(query, decoded), nil
}

// Dimension returns the trained dimension, or 0 if untrained.
func (s *Scalar) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimension
}

// CompressionRatio returns the compression factor achieved (32 bits -> 8 bits
// per dimension once trained).
func (s *Scalar) CompressionRatio() float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.trained {
		return 0
	}
	return 4.0
}

// MemoryUsage returns the approximate bytes held by the quantizer's own
// parameters (not the compressed vectors it produces, which live in the
// vector store).
func (s *Scalar) MemoryUsage() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.mins)*4 + len(s.scales)*4)
}
