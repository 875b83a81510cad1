package rng

import (
	"context"
	"fmt"
	"math/rand"

	"tfea/domain/core"
)

// SeededAdapter implements ports.RNGPort with math/rand sources derived from
// a base seed and a name.
type SeededAdapter struct{}

// NewSeededAdapter creates an RNG adapter
func NewSeededAdapter() *SeededAdapter {
	return &SeededAdapter{}
}

// SeededStream creates a deterministic random number generator for a named operation
func (a *SeededAdapter) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if name != "" {
		seed = int64(hashString(name)) + seed
	}
	return rand.New(rand.NewSource(seed)), nil
}

// MotifStream derives the motif's permutation stream from the base seed
func (a *SeededAdapter) MotifStream(ctx context.Context, motif core.MotifID, baseSeed int64) (*rand.Rand, error) {
	if motif == "" {
		return nil, fmt.Errorf("motif stream requires a motif ID")
	}
	return a.SeededStream(ctx, "permutation:"+motif.String(), baseSeed)
}

// ValidateSeed checks that the motif stream starts with the expected Float64 draws
func (a *SeededAdapter) ValidateSeed(ctx context.Context, motif core.MotifID, seed int64, expected []float64) error {
	r, err := a.MotifStream(ctx, motif, seed)
	if err != nil {
		return err
	}
	for i, want := range expected {
		if got := r.Float64(); got != want {
			return fmt.Errorf("%w: motif %s draw %d = %v, expected %v", core.ErrSeedMismatch, motif, i, got, want)
		}
	}
	return nil
}

// hashString creates a simple hash for deterministic seeding (djb2)
func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c)
	}
	return hash
}
