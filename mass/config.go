package mass

import (
	"strconv"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"github.com/23skdu/supermass/internal/errors"
	"github.com/23skdu/supermass/internal/fft"
	"github.com/23skdu/supermass/internal/pool"
)

// EnvPrefix is the default environment variable prefix read by LoadConfig.
const EnvPrefix = "SUPERMASS"

// Config validation errors. Each matches ErrInvalidInput.
var (
	ErrInvalidWorkers          = errors.NewConfigurationError("mass.config", "workers must be auto or a positive integer")
	ErrInvalidAllocator        = errors.NewConfigurationError("mass.config", "allocator must be default or pooled")
	ErrInvalidMinChunkOffsets  = errors.NewConfigurationError("mass.config", "min_chunk_offsets must be positive")
	ErrInvalidMaxTransformSize = errors.NewConfigurationError("mass.config", "max_transform_size must be at least 2")
)

// WorkerCount is the number of chunks a profile is split into. The zero
// value selects the count automatically from the logical CPU count and the
// problem size.
type WorkerCount int

// Auto selects the worker count from the problem size.
const Auto WorkerCount = 0

// Workers returns a fixed worker count.
func Workers(n int) WorkerCount {
	return WorkerCount(n)
}

// IsAuto reports whether the count is chosen automatically.
func (w WorkerCount) IsAuto() bool {
	return w == Auto
}

func (w WorkerCount) String() string {
	if w.IsAuto() {
		return "auto"
	}
	return strconv.Itoa(int(w))
}

// Decode implements envconfig.Decoder.
func (w *WorkerCount) Decode(value string) error {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "auto") {
		*w = Auto
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return ErrInvalidWorkers
	}
	*w = WorkerCount(n)
	return nil
}

// AllocatorKind selects how FFT scratch buffers are obtained. It never
// changes results.
type AllocatorKind = pool.Kind

const (
	AllocatorDefault = pool.KindDefault
	AllocatorPooled  = pool.KindPooled
)

// Config controls a Searcher.
type Config struct {
	// ExactDistance selects true z-normalized distances. When false the
	// squared distance is returned, which has the same minimum.
	ExactDistance bool `envconfig:"EXACT_DISTANCE" default:"true"`

	Workers   WorkerCount   `envconfig:"WORKERS" default:"auto"`
	Allocator AllocatorKind `envconfig:"ALLOCATOR" default:"default"`

	// MinChunkOffsets is the smallest number of window starts an
	// automatically sized chunk is given.
	MinChunkOffsets int `envconfig:"MIN_CHUNK_OFFSETS" default:"4096"`

	// MaxTransformSize bounds the FFT length of a single chunk. Larger
	// transforms fail with ErrResourceExhausted.
	MaxTransformSize int  `envconfig:"MAX_TRANSFORM_SIZE" default:"1073741824"`
	PowerOfTwoFFT    bool `envconfig:"POWER_OF_TWO_FFT" default:"false"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() Config {
	return Config{
		ExactDistance:    true,
		Workers:          Auto,
		Allocator:        AllocatorDefault,
		MinChunkOffsets:  4096,
		MaxTransformSize: fft.DefaultMaxSize,
		PowerOfTwoFFT:    false,
	}
}

// LoadConfig reads a Config from environment variables named
// <prefix>_<FIELD>. An empty prefix uses EnvPrefix.
func LoadConfig(prefix string) (Config, error) {
	if prefix == "" {
		prefix = EnvPrefix
	}
	var cfg Config
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return Config{}, errors.NewConfigurationError("mass.config", err.Error()).WithContext("prefix", prefix)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate validates the configuration and returns an error if invalid
func (c Config) Validate() error {
	if c.Workers < 0 {
		return ErrInvalidWorkers
	}
	if c.Allocator != AllocatorDefault && c.Allocator != AllocatorPooled {
		return ErrInvalidAllocator
	}
	if c.MinChunkOffsets <= 0 {
		return ErrInvalidMinChunkOffsets
	}
	if c.MaxTransformSize < 2 {
		return ErrInvalidMaxTransformSize
	}
	return nil
}

func (c Config) fftOptions() []fft.Option {
	opts := []fft.Option{fft.WithMaxSize(c.MaxTransformSize)}
	if c.PowerOfTwoFFT {
		opts = append(opts, fft.WithPowerOfTwo())
	}
	return opts
}
