package main

import (
	"errors"
	"flag"
	"io"
)

// Option validation errors
var (
	ErrMissingSeries = errors.New("-series is required")
	ErrMissingQuery  = errors.New("-query is required")
	ErrInvalidBatch  = errors.New("-batch must be positive")
	ErrInvalidTop    = errors.New("-top must be positive")
	ErrTopNeedsBatch = errors.New("-top requires -batch")
	ErrOutWithBatch  = errors.New("-out writes a full profile and cannot be combined with -batch")
)

// Options holds the command line options
type Options struct {
	SeriesPath string
	QueryPath  string
	Batch      int
	Top        int
	OutPath    string
	Verify     bool
	EnvFile    string
}

// ParseOptions parses command line arguments. Errors are reported on output.
func ParseOptions(args []string, output io.Writer) (Options, error) {
	var opts Options
	fs := flag.NewFlagSet("supermass", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.SeriesPath, "series", "", "Time series file (.csv, .parquet or .arrow)")
	fs.StringVar(&opts.QueryPath, "query", "", "Query file (.csv, .parquet or .arrow)")
	fs.IntVar(&opts.Batch, "batch", 0, "Batch size; when set only the best match per batch is reported")
	fs.IntVar(&opts.Top, "top", 1, "Number of batch matches to report (with -batch)")
	fs.StringVar(&opts.OutPath, "out", "", "Write the distance profile to this Parquet file instead of stdout")
	fs.BoolVar(&opts.Verify, "verify", false, "Check the profile against a brute force computation")
	fs.StringVar(&opts.EnvFile, "env", ".env", "Optional file of SUPERMASS_* variables to load")

	if err := fs.Parse(args); err != nil {
		return Options{}, err
	}

	topSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "top" {
			topSet = true
		}
	})
	if topSet && opts.Batch == 0 {
		return Options{}, ErrTopNeedsBatch
	}
	return opts, ValidateOptions(&opts)
}

// ValidateOptions validates the options and returns an error if invalid
func ValidateOptions(opts *Options) error {
	if opts.SeriesPath == "" {
		return ErrMissingSeries
	}
	if opts.QueryPath == "" {
		return ErrMissingQuery
	}
	if opts.Batch < 0 {
		return ErrInvalidBatch
	}
	if opts.Top < 1 {
		return ErrInvalidTop
	}
	if opts.Batch > 0 && opts.OutPath != "" {
		return ErrOutWithBatch
	}
	return nil
}
