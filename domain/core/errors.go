package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound      = errors.New("resource not found")
	ErrRunNotFound   = fmt.Errorf("%w: run", ErrNotFound)
	ErrMotifNotFound = fmt.Errorf("%w: motif", ErrNotFound)

	// Scoring outcomes
	ErrNoHits                     = errors.New("no region within outer window")
	ErrDegenerateNullDistribution = errors.New("no null samples share the sign of the enrichment score")
	ErrEmptyNullDistribution      = errors.New("null distribution is empty")

	// Validation errors
	ErrInvalidWindow      = errors.New("invalid distance window")
	ErrInvalidParameter   = errors.New("invalid engine parameter")
	ErrUnsortedPValues    = errors.New("results not sorted by ascending p-value")
	ErrMalformedRegionRow = errors.New("malformed region record")

	// Determinism errors
	ErrNonDeterministic = errors.New("non-deterministic result")
	ErrSeedMismatch     = errors.New("seed mismatch")
)

// Error constructors with context
func NewRunNotFoundError(id RunID) error {
	return fmt.Errorf("%w with id %s", ErrRunNotFound, id)
}

func NewNoHitsError(motif MotifID) error {
	return fmt.Errorf("%w: motif %s", ErrNoHits, motif)
}

func NewDegenerateNullError(motif MotifID, actualES float64, samples int) error {
	return fmt.Errorf("%w: motif %s (es=%g, %d samples)", ErrDegenerateNullDistribution, motif, actualES, samples)
}

func NewParameterError(field string, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidParameter, field, reason)
}

func NewRegionRowError(source string, line int, reason string) error {
	return fmt.Errorf("%w: %s line %d: %s", ErrMalformedRegionRow, source, line, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsSkippable reports whether a per-motif error means "nothing to score"
// rather than a failure.
func IsSkippable(err error) bool {
	return errors.Is(err, ErrNoHits)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidWindow) ||
		errors.Is(err, ErrInvalidParameter) ||
		errors.Is(err, ErrUnsortedPValues) ||
		errors.Is(err, ErrMalformedRegionRow)
}

func IsDeterminismError(err error) bool {
	return errors.Is(err, ErrNonDeterministic) ||
		errors.Is(err, ErrSeedMismatch)
}
