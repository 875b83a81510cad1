package enrichment

import (
	"time"

	"tfea/domain/core"
)

// RegionHit is one ranked region evaluated against a single motif
type RegionHit struct {
	Rank           int     `json:"rank"`             // 1 = most differentially active
	Distance       float64 `json:"distance"`         // region center to nearest motif occurrence
	PValue         float64 `json:"pvalue"`           // differential-signal significance
	FoldChangeSign float64 `json:"fold_change_sign"` // > 0 means increased signal
}

// MotifRegions groups the regions supplied for one motif, in arrival order
type MotifRegions struct {
	MotifID core.MotifID `json:"motif_id"`
	Regions []RegionHit  `json:"regions"`
}

// HitKind classifies a region relative to the inner and outer windows
type HitKind int

const (
	HitExcluded HitKind = iota
	HitClose
	HitMiss
)

func (k HitKind) String() string {
	switch k {
	case HitClose:
		return "close"
	case HitMiss:
		return "miss"
	default:
		return "excluded"
	}
}

// Contribution is the signed value a region adds to the running sum.
// Close hits carry exp(-distance) and are normalized later; misses carry
// the resolved miss value.
type Contribution struct {
	Rank  int     `json:"rank"`
	Kind  HitKind `json:"kind"`
	Value float64 `json:"value"`
}

// NullSummary describes a motif's permutation null distribution
type NullSummary struct {
	Samples      int     `json:"samples" db:"null_samples"`
	Mean         float64 `json:"mean" db:"null_mean"`
	StdDev       float64 `json:"std_dev" db:"null_std_dev"`
	Min          float64 `json:"min" db:"null_min"`
	Max          float64 `json:"max" db:"null_max"`
	Percentile95 float64 `json:"percentile_95" db:"null_p95"` // of |sample|
	Percentile99 float64 `json:"percentile_99" db:"null_p99"` // of |sample|
}

// Result is the scored outcome for one motif. FDR and Significant are
// filled in by the FDR corrector.
type Result struct {
	MotifID     core.MotifID `json:"motif_id"`
	ActualES    float64      `json:"es"`
	NES         float64      `json:"nes"`
	PValue      float64      `json:"pvalue"`
	FDR         float64      `json:"fdr"`
	Significant bool         `json:"significant"`
	Hits        int          `json:"hits"`
	Misses      int          `json:"misses"`
	Null        NullSummary  `json:"null"`
}

// ScatterPoint is one in-window region on the rank/distance plane
type ScatterPoint struct {
	Rank        int     `json:"rank"`
	Distance    float64 `json:"distance"`
	Significant bool    `json:"significant"` // region p-value below the p-value cutoff
}

// Trace carries the per-motif sequences consumed by plotting and reporting.
type Trace struct {
	MotifID    core.MotifID   `json:"motif_id"`
	Cumulative []float64      `json:"cumulative"`  // running sum in rank order
	Null       []float64      `json:"null"`        // one sample per permutation
	RankMetric []float64      `json:"rank_metric"` // signed log10 p-value in rank order
	Scatter    []ScatterPoint `json:"scatter"`     // in rank order
}

// Failure records a motif that could not be scored
type Failure struct {
	MotifID core.MotifID `json:"motif_id"`
	Reason  string       `json:"reason"`
}

// Run is the persisted outcome of scoring every motif of one input set.
// Results are sorted by ascending p-value.
type Run struct {
	ID          core.RunID     `json:"run_id"`
	Name        string         `json:"name"`
	CreatedAt   time.Time      `json:"created_at"`
	Seed        int64          `json:"seed"`
	Params      Params         `json:"params"`
	ParamsHash  core.Hash      `json:"params_hash"`
	Fingerprint core.Hash      `json:"fingerprint"`
	RuntimeMs   int64          `json:"runtime_ms"`
	Results     []Result       `json:"results"`
	Skipped     []core.MotifID `json:"skipped"`
	Failed      []Failure      `json:"failed"`
}

// SignificantResults returns the results flagged by the FDR corrector
func (r *Run) SignificantResults() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Significant {
			out = append(out, res)
		}
	}
	return out
}

// MotifCount returns the number of motifs the run attempted
func (r *Run) MotifCount() int {
	return len(r.Results) + len(r.Skipped) + len(r.Failed)
}
