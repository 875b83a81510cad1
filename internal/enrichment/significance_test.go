package enrichment

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tfea/domain/core"
)

func TestNormalizedScore(t *testing.T) {
	nes, err := NormalizedScore(0.6, []float64{0.2, 0.4, -0.9})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, nes, 1e-12)

	nes, err = NormalizedScore(-0.6, []float64{0.2, -0.3, -0.9})
	require.NoError(t, err)
	assert.InDelta(t, -1.0, nes, 1e-12)
}

func TestNormalizedScoreDegenerate(t *testing.T) {
	_, err := NormalizedScore(0.5, []float64{-0.1, -0.2})
	assert.True(t, errors.Is(err, core.ErrDegenerateNullDistribution))

	_, err = NormalizedScore(-0.5, []float64{0.1, 0, 0.2})
	assert.True(t, errors.Is(err, core.ErrDegenerateNullDistribution))

	_, err = NormalizedScore(0.5, nil)
	assert.True(t, errors.Is(err, core.ErrDegenerateNullDistribution))
}

func TestTwoTailedPValue(t *testing.T) {
	null := []float64{-1, 1, -1, 1}

	p, err := TwoTailedPValue(0, null)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, p, 1e-12)

	p, err = TwoTailedPValue(1.959964, null)
	require.NoError(t, err)
	assert.InDelta(t, 0.025, p, 1e-6)

	// Symmetric around the mean.
	lower, err := TwoTailedPValue(-1.959964, null)
	require.NoError(t, err)
	assert.InDelta(t, p, lower, 1e-12)
}

func TestTwoTailedPValueDegenerateInputs(t *testing.T) {
	_, err := TwoTailedPValue(0.3, nil)
	assert.True(t, errors.Is(err, core.ErrEmptyNullDistribution))

	p, err := TwoTailedPValue(0.3, []float64{0.3, 0.3})
	require.NoError(t, err)
	assert.Equal(t, 0.5, p)

	p, err = TwoTailedPValue(0.9, []float64{0.3, 0.3})
	require.NoError(t, err)
	assert.Equal(t, 0.0, p)
}

func TestTwoTailedPValueRoundingNoiseIsZeroWidth(t *testing.T) {
	ulp := math.Nextafter(1, 2) - 1
	null := []float64{1, 1 - ulp, 1 + ulp, 1, 1 - ulp}

	p, err := TwoTailedPValue(1-ulp, null)
	require.NoError(t, err)
	assert.Equal(t, 0.5, p)

	negated := make([]float64, len(null))
	for i, x := range null {
		negated[i] = -x
	}
	p, err = TwoTailedPValue(-1-ulp, negated)
	require.NoError(t, err)
	assert.Equal(t, 0.5, p)

	p, err = TwoTailedPValue(0.999, null)
	require.NoError(t, err)
	assert.Equal(t, 0.0, p)
}

func TestPValueAndNESInvariants(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(2024))
	sim := NewSimulator(200, 1)

	for round := 0; round < 30; round++ {
		n := 10 + rng.Intn(100)
		distances := make([]float64, n)
		for i := range distances {
			distances[i] = rng.Float64() * 1500
		}
		profile, err := Transform(regionsAt(distances...), defaultWindow)
		require.NoError(t, err)

		_, actualES := RunningSum(profile)
		null, err := sim.Simulate(ctx, profile.Increments(), rng)
		require.NoError(t, err)

		p, err := TwoTailedPValue(actualES, null)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 0.5)

		nes, err := NormalizedScore(actualES, null)
		if errors.Is(err, core.ErrDegenerateNullDistribution) {
			continue
		}
		require.NoError(t, err)
		if actualES != 0 {
			assert.Equal(t, math.Signbit(actualES), math.Signbit(nes), "round %d: es=%v nes=%v", round, actualES, nes)
		}
	}
}

func TestSummarize(t *testing.T) {
	summary := Summarize([]float64{-2, -1, 1, 2})
	assert.Equal(t, 4, summary.Samples)
	assert.InDelta(t, 0.0, summary.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(2.5), summary.StdDev, 1e-12)
	assert.Equal(t, -2.0, summary.Min)
	assert.Equal(t, 2.0, summary.Max)
	assert.Equal(t, 2.0, summary.Percentile99)

	empty := Summarize(nil)
	assert.Equal(t, 0, empty.Samples)
}
