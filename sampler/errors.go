package sampler

import (
	"errors"
	"fmt"

	"github.com/hupe1980/nestgo/internal/loop"
)

var (
	// ErrInvalidConfig is the sentinel wrapped by every ConfigError.
	ErrInvalidConfig = errors.New("invalid sampler configuration")

	// ErrBracketModeUnsupported is returned when a non-perfect slice bracket is requested.
	ErrBracketModeUnsupported = errors.New("only the perfect slice bracket is implemented")

	// ErrDimensionMismatch is returned when a point does not match the model's dimensionality.
	ErrDimensionMismatch = errors.New("point dimension does not match model")

	// ErrEmptyCollection is returned when a seed point is requested from an empty window.
	ErrEmptyCollection = errors.New("sample collection is empty")

	// ErrIterationCap is returned when a sampling loop exhausts its iteration cap.
	// It is retryable: resample with a fresh key.
	ErrIterationCap = loop.ErrIterationCap
)

// ConfigError reports an invalid constructor argument. It is fatal and
// raised at construction, never at sampling time.
type ConfigError struct {
	Field  string
	Reason string
	cause  error
}

// NewConfigError returns a ConfigError for field.
func NewConfigError(field, reason string) *ConfigError {
	return &ConfigError{Field: field, Reason: reason}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid sampler configuration: %s %s", e.Field, e.Reason)
}

// Is reports ErrInvalidConfig as a match.
func (e *ConfigError) Is(target error) bool { return target == ErrInvalidConfig }

// Unwrap returns the underlying cause, if any.
func (e *ConfigError) Unwrap() error { return e.cause }

// WithCause attaches an underlying error.
func (e *ConfigError) WithCause(err error) *ConfigError {
	e.cause = err
	return e
}

// IsRetryable reports whether err is a sampling failure that may succeed
// with a fresh key.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrIterationCap)
}
