package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"

	"github.com/23skdu/supermass/internal/logging"
	"github.com/23skdu/supermass/internal/profile"
	"github.com/23skdu/supermass/internal/series"
	"github.com/23skdu/supermass/internal/simd"
	"github.com/23skdu/supermass/mass"
)

// Exit codes
const (
	exitOK           = 0
	exitFailure      = 1
	exitUsage        = 2
	exitVerifyFailed = 3
)

// verifyTolerance is the largest relative deviation of a squared distance
// from the brute force value accepted by -verify.
const verifyTolerance = 1e-6

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// Output is the JSON document written to stdout.
type Output struct {
	Series     string       `json:"series"`
	Query      string       `json:"query"`
	N          int          `json:"n"`
	M          int          `json:"m"`
	Mode       string       `json:"mode"`
	Workers    string       `json:"workers"`
	DurationMS float64      `json:"duration_ms"`
	Best       *mass.Match  `json:"best,omitempty"`
	Profile    []float64    `json:"profile,omitempty"`
	Matches    []mass.Match `json:"matches,omitempty"`
	OutPath    string       `json:"out,omitempty"`
	Verify     *Verify      `json:"verify,omitempty"`
}

// Verify reports the comparison against the brute force profile.
type Verify struct {
	MaxDeviation       float64 `json:"max_deviation"`
	SentinelMismatches int     `json:"sentinel_mismatches"`
	Passed             bool    `json:"passed"`
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := ParseOptions(args, stderr)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return exitUsage
	}

	if err := loadEnvFile(opts.EnvFile); err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return exitUsage
	}

	logCfg := logging.DefaultConfig()
	if err := envconfig.Process(mass.EnvPrefix, &logCfg); err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return exitUsage
	}
	logCfg.Output = stderr
	logger, err := logging.NewLogger(logCfg)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return exitUsage
	}

	cfg, err := mass.LoadConfig(mass.EnvPrefix)
	if err != nil {
		logger.Error().Err(err).Msg("Invalid configuration")
		return exitUsage
	}

	features := simd.GetCPUFeatures()
	logger.Info().
		Str("implementation", simd.GetImplementation()).
		Int("logical_cpus", simd.LogicalCPUs()).
		Bool("avx2", features.HasAVX2).
		Str("workers", cfg.Workers.String()).
		Str("allocator", string(cfg.Allocator)).
		Bool("exact", cfg.ExactDistance).
		Msg("Starting supermass")

	out, code := execute(opts, cfg, logger)
	if code != exitOK && out == nil {
		return code
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Error().Err(err).Msg("Failed to write output")
		return exitFailure
	}
	return code
}

func execute(opts Options, cfg mass.Config, logger zerolog.Logger) (*Output, int) {
	ts, err := series.Load(opts.SeriesPath)
	if err != nil {
		logger.Error().Err(err).Str("path", opts.SeriesPath).Msg("Failed to load series")
		return nil, exitFailure
	}
	qs, err := series.Load(opts.QueryPath)
	if err != nil {
		logger.Error().Err(err).Str("path", opts.QueryPath).Msg("Failed to load query")
		return nil, exitFailure
	}

	searcher, err := mass.New(cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create searcher")
		return nil, exitUsage
	}

	values, query := ts.Values(), qs.Values()
	mode := profile.Exact
	if !cfg.ExactDistance {
		mode = profile.Pseudo
	}
	out := &Output{
		Series:  ts.Name,
		Query:   qs.Name,
		N:       len(values),
		M:       len(query),
		Mode:    mode.String(),
		Workers: cfg.Workers.String(),
	}

	start := time.Now()
	if opts.Batch > 0 {
		matches, err := searcher.Batch(values, query, opts.Batch, opts.Top)
		if err != nil {
			logger.Error().Err(err).Msg("Batch search failed")
			return nil, exitFailure
		}
		out.DurationMS = float64(time.Since(start).Microseconds()) / 1000
		out.Matches = matches
		out.Best = &matches[0]
		return out, exitOK
	}

	dist, err := searcher.Profile(values, query)
	if err != nil {
		logger.Error().Err(err).Msg("Profile computation failed")
		return nil, exitFailure
	}
	out.DurationMS = float64(time.Since(start).Microseconds()) / 1000
	if idx := simd.ArgMin(dist); idx >= 0 {
		out.Best = &mass.Match{Index: idx, Distance: dist[idx]}
	}

	code := exitOK
	if opts.Verify {
		v, err := verifyProfile(values, query, dist, mode)
		if err != nil {
			logger.Error().Err(err).Msg("Verification failed")
			return nil, exitFailure
		}
		out.Verify = v
		if !v.Passed {
			logger.Warn().Float64("max_deviation", v.MaxDeviation).Msg("Profile deviates from brute force")
			code = exitVerifyFailed
		}
	}

	if opts.OutPath != "" {
		if err := writeProfile(opts.OutPath, dist); err != nil {
			logger.Error().Err(err).Str("path", opts.OutPath).Msg("Failed to write profile")
			return nil, exitFailure
		}
		out.OutPath = opts.OutPath
		logger.Info().Str("path", opts.OutPath).Int("rows", len(dist)).Msg("Profile written")
		return out, code
	}

	out.Profile = dist
	return out, code
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func writeProfile(path string, dist []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := series.WriteProfileParquet(f, dist); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// verifyProfile compares a profile with the brute force computation.
// Squared distances are compared so that rounding near zero is not
// magnified by the square root.
func verifyProfile(values, query, dist []float64, mode profile.Mode) (*Verify, error) {
	want, err := profile.Naive(values, query, mode)
	if err != nil {
		return nil, err
	}

	v := &Verify{Passed: true}
	for i := range want {
		if (want[i] == mass.Sentinel) != (dist[i] == mass.Sentinel) {
			v.SentinelMismatches++
			continue
		}
		if want[i] == mass.Sentinel {
			continue
		}
		w, g := want[i], dist[i]
		if mode == profile.Exact {
			w, g = w*w, g*g
		}
		dev := math.Abs(w-g) / math.Max(1, math.Abs(w))
		if dev > v.MaxDeviation {
			v.MaxDeviation = dev
		}
	}
	if v.MaxDeviation > verifyTolerance || v.SentinelMismatches > 0 {
		v.Passed = false
	}
	return v, nil
}
