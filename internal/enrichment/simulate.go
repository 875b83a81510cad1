package enrichment

import (
	"context"
	"math"
	"math/rand"

	"golang.org/x/sync/errgroup"
)

// Simulator builds permutation null distributions
type Simulator struct {
	permutations int
	workers      int
}

// NewSimulator creates a simulator running the given number of trials,
// with up to workers trials in flight (values below 1 mean sequential).
func NewSimulator(permutations, workers int) *Simulator {
	if workers < 1 {
		workers = 1
	}
	return &Simulator{
		permutations: permutations,
		workers:      workers,
	}
}

// Permutations returns the number of trials per motif
func (s *Simulator) Permutations() int {
	return s.permutations
}

// Simulate shuffles the increments once per trial and records each trial's
// extreme running-sum deviation. base is never modified. Trial seeds are
// drawn from rng up front, so the output only depends on rng's state and
// not on the worker count.
func (s *Simulator) Simulate(ctx context.Context, base []float64, rng *rand.Rand) ([]float64, error) {
	seeds := make([]int64, s.permutations)
	for i := range seeds {
		seeds[i] = rng.Int63()
	}

	null := make([]float64, s.permutations)

	if s.workers == 1 {
		shuffled := make([]float64, len(base))
		for i, seed := range seeds {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			null[i] = trial(base, shuffled, seed)
		}
		return null, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, seed := range seeds {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			null[i] = trial(base, make([]float64, len(base)), seed)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return null, nil
}

// trial copies base into buf, shuffles it with its own source and returns
// the extreme deviation of the shuffled order.
func trial(base, buf []float64, seed int64) float64 {
	copy(buf, base)
	r := rand.New(rand.NewSource(seed))
	r.Shuffle(len(buf), func(i, j int) {
		buf[i], buf[j] = buf[j], buf[i]
	})
	return extremum(buf)
}

// extremum returns the larger-magnitude of the running maximum (from 0 up)
// and running minimum (from 0 down); the maximum wins ties.
func extremum(steps []float64) float64 {
	eval, maxPos, minNeg := 0.0, 0.0, 0.0
	for _, step := range steps {
		eval += step
		if eval > maxPos {
			maxPos = eval
		}
		if eval < minNeg {
			minNeg = eval
		}
	}

	if math.Abs(minNeg) > math.Abs(maxPos) {
		return minNeg
	}
	return maxPos
}
