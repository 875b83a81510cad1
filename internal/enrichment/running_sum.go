package enrichment

import (
	"math"
	"sort"

	"tfea/domain/enrichment"
)

// RankOrder returns the contributions sorted by ascending rank. The sort is
// stable, so duplicate ranks keep arrival order; callers should not rely on
// that order since ranks are expected to be unique.
func RankOrder(contributions []enrichment.Contribution) []enrichment.Contribution {
	ordered := make([]enrichment.Contribution, len(contributions))
	copy(ordered, contributions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Rank < ordered[j].Rank
	})
	return ordered
}

// RunningSum walks the contributions in rank order and returns the
// cumulative sequence together with the enrichment score, the entry of
// largest magnitude.
func RunningSum(p *Profile) ([]float64, float64) {
	ordered := RankOrder(p.Contributions)
	cumulative := make([]float64, len(ordered))

	eval := 0.0
	for i, c := range ordered {
		eval += p.Increment(c)
		cumulative[i] = eval
	}

	return cumulative, MaxAbs(cumulative)
}

// MaxAbs returns the element with the largest absolute value, the first one
// on ties. It returns 0 for an empty slice.
func MaxAbs(values []float64) float64 {
	best := 0.0
	for i, v := range values {
		if i == 0 || math.Abs(v) > math.Abs(best) {
			best = v
		}
	}
	return best
}
