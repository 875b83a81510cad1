package enrichment

import (
	"fmt"
	"sort"

	"tfea/domain/core"
	"tfea/domain/enrichment"
)

// SortByPValue orders results by ascending p-value in place. Ties keep their
// existing order.
func SortByPValue(results []enrichment.Result) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].PValue < results[j].PValue
	})
}

// CorrectFDR assigns fdr_i = p_i * n / (i+1) in input order and flags
// results with fdr_i < cutoff. It never reorders: results must already be
// sorted by ascending p-value (see SortByPValue) for the values to be a
// Benjamini-Hochberg correction, and unsorted input is rejected with
// core.ErrUnsortedPValues. The input slice is not modified.
func CorrectFDR(results []enrichment.Result, cutoff float64) ([]enrichment.Result, error) {
	for i := 1; i < len(results); i++ {
		if results[i].PValue < results[i-1].PValue {
			return nil, fmt.Errorf("%w: %s (p=%g) follows %s (p=%g)", core.ErrUnsortedPValues,
				results[i].MotifID, results[i].PValue, results[i-1].MotifID, results[i-1].PValue)
		}
	}

	total := float64(len(results))
	corrected := make([]enrichment.Result, len(results))
	for i, res := range results {
		res.FDR = res.PValue * total / float64(i+1)
		res.Significant = res.FDR < cutoff
		corrected[i] = res
	}
	return corrected, nil
}
