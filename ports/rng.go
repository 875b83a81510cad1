package ports

import (
	"context"
	"math/rand"

	"tfea/domain/core"
)

// RNGPort provides seeded random number generation for deterministic operations
type RNGPort interface {
	// SeededStream creates a deterministic random number generator for a named operation
	SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error)

	// MotifStream creates the permutation RNG for one motif. The stream depends
	// only on the motif and base seed, so results do not change with worker
	// scheduling or motif order.
	MotifStream(ctx context.Context, motif core.MotifID, baseSeed int64) (*rand.Rand, error)

	// ValidateSeed checks that the motif stream for seed starts with the
	// expected draws, wrapping core.ErrSeedMismatch otherwise
	ValidateSeed(ctx context.Context, motif core.MotifID, seed int64, expected []float64) error
}
