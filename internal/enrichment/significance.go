package enrichment

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"tfea/domain/core"
	"tfea/domain/enrichment"
)

// NormalizedScore divides the enrichment score by the mean of the null
// samples sharing its sign. A score of exactly 0 is treated as positive.
// It returns core.ErrDegenerateNullDistribution when no sample shares the sign.
func NormalizedScore(actualES float64, null []float64) (float64, error) {
	negative := actualES < 0

	subset := make([]float64, 0, len(null))
	for _, x := range null {
		if (negative && x < 0) || (!negative && x > 0) {
			subset = append(subset, x)
		}
	}
	if len(subset) == 0 {
		return 0, core.ErrDegenerateNullDistribution
	}

	mu, err := stats.Mean(subset)
	if err != nil {
		return 0, err
	}

	if negative {
		return -(actualES / mu), nil
	}
	return actualES / mu, nil
}

// zeroWidthTolerance is the relative spread below which a null is treated as
// a single point
const zeroWidthTolerance = 1e-12

// TwoTailedPValue evaluates the normal CDF fitted to the whole null at the
// enrichment score and returns min(p, 1-p), always within [0, 0.5].
func TwoTailedPValue(actualES float64, null []float64) (float64, error) {
	if len(null) == 0 {
		return 0, core.ErrEmptyNullDistribution
	}

	mu, err := stats.Mean(null)
	if err != nil {
		return 0, err
	}
	// Population standard deviation, matching numpy's default.
	sigma, err := stats.StandardDeviation(null)
	if err != nil {
		return 0, err
	}

	// A zero-width null: the score either sits on it or is infinitely far.
	// Width and distance are compared relative to the mean so rounding noise
	// from summation order counts as zero.
	tolerance := zeroWidthTolerance * math.Max(1, math.Abs(mu))
	if sigma <= tolerance || math.IsNaN(sigma) {
		if math.Abs(actualES-mu) <= tolerance {
			return 0.5, nil
		}
		return 0, nil
	}

	p := distuv.Normal{Mu: mu, Sigma: sigma}.CDF(actualES)
	return math.Min(p, 1-p), nil
}

// Summarize describes a null distribution for reports. Percentiles are taken
// over absolute sample values.
func Summarize(null []float64) enrichment.NullSummary {
	summary := enrichment.NullSummary{Samples: len(null)}
	if len(null) == 0 {
		return summary
	}

	summary.Mean, _ = stats.Mean(null)
	summary.StdDev, _ = stats.StandardDeviation(null)
	summary.Min, _ = stats.Min(null)
	summary.Max, _ = stats.Max(null)

	magnitudes := make([]float64, len(null))
	for i, x := range null {
		magnitudes[i] = math.Abs(x)
	}
	summary.Percentile95 = percentileOrMax(magnitudes, 95)
	summary.Percentile99 = percentileOrMax(magnitudes, 99)

	return summary
}

// percentileOrMax falls back to the maximum when the sample is too small
// for the requested percentile.
func percentileOrMax(data []float64, percent float64) float64 {
	if v, err := stats.Percentile(data, percent); err == nil && !math.IsNaN(v) {
		return v
	}
	v, _ := stats.Max(data)
	return v
}
