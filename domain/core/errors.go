package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidExposure = fmt.Errorf("%w: exposure series", ErrInvalidInput)
	ErrInvalidSurvivor = fmt.Errorf("%w: survivor series", ErrInvalidInput)
	ErrInvalidSample   = fmt.Errorf("%w: empirical sample", ErrInvalidInput)

	// Configuration errors
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrUnknownDistribution  = fmt.Errorf("%w: unknown distribution", ErrInvalidConfiguration)
	ErrUnknownSubmodel      = fmt.Errorf("%w: unknown submodel", ErrInvalidConfiguration)
	ErrInvalidResolution    = fmt.Errorf("%w: resolution", ErrInvalidConfiguration)

	// Parameter errors
	ErrInvalidParameters = errors.New("invalid parameter vector")

	// Computation errors
	ErrComputationFailed = errors.New("computation failed")
	ErrSamplingFailed    = fmt.Errorf("%w: threshold sampling", ErrComputationFailed)
	ErrSurvivalFailed    = fmt.Errorf("%w: survival probabilities", ErrComputationFailed)
	ErrLikelihoodFailed  = fmt.Errorf("%w: log-likelihood", ErrComputationFailed)
)

// NewValidationError builds a plain validation error for a named field
func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w: validation failed for %s: %s", ErrInvalidInput, field, reason)
}

// Error checking helpers
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration)
}

func IsParameterError(err error) bool {
	return errors.Is(err, ErrInvalidParameters)
}

func IsComputationError(err error) bool {
	return errors.Is(err, ErrComputationFailed)
}
