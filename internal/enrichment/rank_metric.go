package enrichment

import (
	"math"
	"sort"

	"tfea/domain/enrichment"
)

// UnderflowLogMagnitude replaces log10 of a p-value that has no finite
// logarithm (p <= 0).
const UnderflowLogMagnitude = 500.0

// SignedLogPValue returns -log10(p) for regions with increased signal and
// log10(p) otherwise, clamped to ±UnderflowLogMagnitude when p underflowed.
func SignedLogPValue(pvalue, foldChangeSign float64) float64 {
	up := foldChangeSign > 0
	logp := math.Log10(pvalue)
	if math.IsInf(logp, 0) || math.IsNaN(logp) {
		if up {
			return UnderflowLogMagnitude
		}
		return -UnderflowLogMagnitude
	}
	if up {
		return -logp
	}
	return logp
}

// BuildTrace assembles the plotting sequences for one scored motif.
func BuildTrace(p *Profile, cumulative, null []float64, pvalueCutoff float64) enrichment.Trace {
	regions := make([]enrichment.RegionHit, len(p.Included))
	copy(regions, p.Included)
	sort.SliceStable(regions, func(i, j int) bool {
		return regions[i].Rank < regions[j].Rank
	})

	trace := enrichment.Trace{
		Cumulative: cumulative,
		Null:       null,
		RankMetric: make([]float64, len(regions)),
		Scatter:    make([]enrichment.ScatterPoint, len(regions)),
	}
	for i, region := range regions {
		trace.RankMetric[i] = SignedLogPValue(region.PValue, region.FoldChangeSign)
		trace.Scatter[i] = enrichment.ScatterPoint{
			Rank:        region.Rank,
			Distance:    region.Distance,
			Significant: region.PValue < pvalueCutoff,
		}
	}
	return trace
}
