package mass

import (
	"testing"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateConfig_Valid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestValidateConfig_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"negative workers", func(c *Config) { c.Workers = -1 }, ErrInvalidWorkers},
		{"unknown allocator", func(c *Config) { c.Allocator = "arena" }, ErrInvalidAllocator},
		{"zero min chunk", func(c *Config) { c.MinChunkOffsets = 0 }, ErrInvalidMinChunkOffsets},
		{"tiny transform", func(c *Config) { c.MaxTransformSize = 1 }, ErrInvalidMaxTransformSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrInvalidInput)

			_, err = New(cfg, zerolog.Nop())
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestWorkerCount_Decode(t *testing.T) {
	var w WorkerCount
	require.NoError(t, w.Decode("auto"))
	assert.True(t, w.IsAuto())
	assert.Equal(t, "auto", w.String())

	require.NoError(t, w.Decode(" 6 "))
	assert.Equal(t, Workers(6), w)
	assert.Equal(t, "6", w.String())

	require.NoError(t, w.Decode("AUTO"))
	assert.Equal(t, Auto, w)

	assert.ErrorIs(t, w.Decode("0"), ErrInvalidWorkers)
	assert.ErrorIs(t, w.Decode("many"), ErrInvalidWorkers)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_EnvVars(t *testing.T) {
	t.Setenv("SUPERMASS_EXACT_DISTANCE", "false")
	t.Setenv("SUPERMASS_WORKERS", "3")
	t.Setenv("SUPERMASS_ALLOCATOR", "pooled")
	t.Setenv("SUPERMASS_MIN_CHUNK_OFFSETS", "128")
	t.Setenv("SUPERMASS_MAX_TRANSFORM_SIZE", "65536")
	t.Setenv("SUPERMASS_POWER_OF_TWO_FFT", "true")

	cfg, err := LoadConfig(EnvPrefix)
	require.NoError(t, err)
	assert.False(t, cfg.ExactDistance)
	assert.Equal(t, Workers(3), cfg.Workers)
	assert.Equal(t, AllocatorPooled, cfg.Allocator)
	assert.Equal(t, 128, cfg.MinChunkOffsets)
	assert.Equal(t, 65536, cfg.MaxTransformSize)
	assert.True(t, cfg.PowerOfTwoFFT)
}

func TestLoadConfig_CustomPrefix(t *testing.T) {
	t.Setenv("MASSTEST_WORKERS", "auto")
	t.Setenv("MASSTEST_ALLOCATOR", "pooled")

	var raw Config
	require.NoError(t, envconfig.Process("MASSTEST", &raw))
	assert.Equal(t, Auto, raw.Workers)

	cfg, err := LoadConfig("MASSTEST")
	require.NoError(t, err)
	assert.Equal(t, AllocatorPooled, cfg.Allocator)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("SUPERMASS_WORKERS", "-2")
	_, err := LoadConfig("")
	assert.ErrorIs(t, err, ErrInvalidInput)

	t.Setenv("SUPERMASS_WORKERS", "2")
	t.Setenv("SUPERMASS_ALLOCATOR", "arena")
	_, err = LoadConfig("")
	assert.ErrorIs(t, err, ErrInvalidAllocator)
}
