package vectorlite

import (
	"math"

	"github.com/meet447/surgedb/internal/metric"
	"github.com/meet447/surgedb/internal/quant"
)

// Config holds database-wide configuration.
type Config struct {
	MetricsEnabled bool
	MaxCollections int
}

// Option configures a Database at construction time.
type Option func(*Config) error

// WithMetrics enables or disables Prometheus metrics collection.
func WithMetrics(enabled bool) Option {
	return func(c *Config) error {
		c.MetricsEnabled = enabled
		return nil
	}
}

// WithMaxCollections caps how many collections a Database will hold.
func WithMaxCollections(max int) Option {
	return func(c *Config) error {
		if max <= 0 {
			return newError(InvalidConfig, "max collections must be positive")
		}
		c.MaxCollections = max
		return nil
	}
}

// QuantizationConfig configures optional scalar quantization for a collection.
type QuantizationConfig struct {
	Kind           quant.Kind
	TrainingWindow int
}

// CollectionConfig holds collection-specific configuration.
type CollectionConfig struct {
	Dimension int
	Metric    metric.Kind

	M              int
	EfConstruction int
	EfSearch       int
	ML             float64
	RandomSeed     int64

	Quantization     *QuantizationConfig
	DecodeCacheBytes int64
}

func defaultCollectionConfig() *CollectionConfig {
	return &CollectionConfig{
		Dimension:        768,
		Metric:           metric.Cosine,
		M:                32,
		EfConstruction:   200,
		EfSearch:         50,
		ML:               1.0 / math.Log(2.0),
		DecodeCacheBytes: 64 << 20,
	}
}

func (c *CollectionConfig) validate() error {
	if c.Dimension <= 0 {
		return newError(InvalidConfig, "dimension must be positive")
	}
	if c.M <= 0 {
		return newError(InvalidConfig, "M must be positive")
	}
	if c.EfConstruction <= 0 {
		return newError(InvalidConfig, "EfConstruction must be positive")
	}
	if c.EfSearch <= 0 {
		return newError(InvalidConfig, "EfSearch must be positive")
	}
	if c.ML <= 0 {
		return newError(InvalidConfig, "ML must be positive")
	}
	return nil
}

// CollectionOption configures a Collection at creation time.
type CollectionOption func(*CollectionConfig) error

// WithDimension sets the vector dimension for the collection.
func WithDimension(dim int) CollectionOption {
	return func(c *CollectionConfig) error {
		if dim <= 0 {
			return newError(InvalidConfig, "dimension must be positive")
		}
		c.Dimension = dim
		return nil
	}
}

// WithMetric sets the distance metric for the collection.
func WithMetric(m metric.Kind) CollectionOption {
	return func(c *CollectionConfig) error {
		c.Metric = m
		return nil
	}
}

// WithHNSW configures the HNSW graph's build and search parameters.
func WithHNSW(m, efConstruction, efSearch int) CollectionOption {
	return func(c *CollectionConfig) error {
		if m <= 0 || efConstruction <= 0 || efSearch <= 0 {
			return newError(InvalidConfig, "HNSW parameters must be positive")
		}
		c.M = m
		c.EfConstruction = efConstruction
		c.EfSearch = efSearch
		return nil
	}
}

// WithRandomSeed fixes the HNSW level-generation RNG seed, for reproducible
// graph construction in tests.
func WithRandomSeed(seed int64) CollectionOption {
	return func(c *CollectionConfig) error {
		c.RandomSeed = seed
		return nil
	}
}

// WithQuantization enables scalar quantization, calibrated over the first
// trainingWindow raw inserts. A non-positive trainingWindow falls back to
// quant.DefaultTrainingWindow.
func WithQuantization(trainingWindow int) CollectionOption {
	return func(c *CollectionConfig) error {
		c.Quantization = &QuantizationConfig{
			Kind:           quant.U8Scalar,
			TrainingWindow: trainingWindow,
		}
		return nil
	}
}

// WithDecodeCacheBytes sets the byte budget of the quantized-vector decode
// cache. Ignored when the collection carries no quantization.
func WithDecodeCacheBytes(bytes int64) CollectionOption {
	return func(c *CollectionConfig) error {
		c.DecodeCacheBytes = bytes
		return nil
	}
}
