package mass

import (
	"github.com/23skdu/supermass/internal/errors"
)

var (
	// ErrInvalidInput matches every error caused by a violated precondition:
	// empty or non-finite inputs, a query longer than the series, bad batch
	// parameters or an invalid Config.
	ErrInvalidInput = errors.ErrInvalidInput

	// ErrResourceExhausted matches failures to obtain scratch memory,
	// including transforms larger than Config.MaxTransformSize.
	ErrResourceExhausted = errors.ErrResourceExhausted
)

// Error is the concrete type of errors returned by this package.
type Error = errors.StructuredError
