package nestgo

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/hupe1980/nestgo/ellipsoid"
	"github.com/hupe1980/nestgo/sampler"
)

var (
	// ErrInvalidConfig is returned when the engine configuration is invalid.
	// Configuration errors are fatal and raised at construction.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrSamplingFailed is returned when an invocation exhausted its
	// iteration cap. It is retryable with a fresh key.
	ErrSamplingFailed = errors.New("sampling failed")

	// ErrNoLivePoints is returned when the front window is empty.
	ErrNoLivePoints = errors.New("no live points")
)

// ErrInvalidOption indicates an invalid sampler argument.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidOption struct {
	Field  string
	Reason string
	cause  error
}

func (e *ErrInvalidOption) Error() string {
	return fmt.Sprintf("invalid option %s: %s", e.Field, e.Reason)
}

// Is reports ErrInvalidConfig as a match.
func (e *ErrInvalidOption) Is(target error) bool { return target == ErrInvalidConfig }

func (e *ErrInvalidOption) Unwrap() error { return e.cause }

// IsRetryable reports whether err may succeed when retried with a fresh key.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrSamplingFailed) || sampler.IsRetryable(err)
}

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var ce *sampler.ConfigError
	if errors.As(err, &ce) {
		return &ErrInvalidOption{Field: ce.Field, Reason: ce.Reason, cause: err}
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if errors.Is(err, ellipsoid.ErrUnsupportedMethod) {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if errors.Is(err, sampler.ErrIterationCap) {
		return fmt.Errorf("%w: %w", ErrSamplingFailed, err)
	}
	if errors.Is(err, sampler.ErrEmptyCollection) || errors.Is(err, ellipsoid.ErrNoPoints) {
		return fmt.Errorf("%w: %w", ErrNoLivePoints, err)
	}

	return err
}
