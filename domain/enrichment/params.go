package enrichment

import (
	"fmt"

	"tfea/domain/core"
)

// Default engine parameters
const (
	DefaultInnerWindow  = 150.0
	DefaultOuterWindow  = 1500.0
	DefaultPermutations = 1000
	DefaultFDRCutoff    = 0.1
	DefaultPValueCutoff = 0.01
)

// Params are the run-wide engine settings
type Params struct {
	InnerWindow  float64 `json:"inner_window"`  // h: close-hit threshold
	OuterWindow  float64 `json:"outer_window"`  // H: exclusion threshold
	Permutations int     `json:"permutations"`  // N null samples per motif
	TrialWorkers int     `json:"trial_workers"` // parallel permutation trials per motif
	FDRCutoff    float64 `json:"fdr_cutoff"`
	PValueCutoff float64 `json:"pvalue_cutoff"` // marks significant regions in traces
}

// DefaultParams returns the settings TFEA ships with
func DefaultParams() Params {
	return Params{
		InnerWindow:  DefaultInnerWindow,
		OuterWindow:  DefaultOuterWindow,
		Permutations: DefaultPermutations,
		TrialWorkers: 1,
		FDRCutoff:    DefaultFDRCutoff,
		PValueCutoff: DefaultPValueCutoff,
	}
}

// Validate checks 0 < h < H and the remaining numeric ranges
func (p Params) Validate() error {
	if !(p.InnerWindow > 0 && p.InnerWindow < p.OuterWindow) {
		return fmt.Errorf("%w: need 0 < inner (%g) < outer (%g)", core.ErrInvalidWindow, p.InnerWindow, p.OuterWindow)
	}
	if p.Permutations <= 0 {
		return core.NewParameterError("permutations", "must be positive")
	}
	if p.TrialWorkers < 0 {
		return core.NewParameterError("trial_workers", "must not be negative")
	}
	if p.FDRCutoff <= 0 {
		return core.NewParameterError("fdr_cutoff", "must be positive")
	}
	if p.PValueCutoff < 0 || p.PValueCutoff > 1 {
		return core.NewParameterError("pvalue_cutoff", "must be within [0, 1]")
	}
	return nil
}

// Fingerprint hashes the parameters that change numeric output
func (p Params) Fingerprint() core.Hash {
	return core.ComputeParamsHash(map[string]interface{}{
		"inner_window":  p.InnerWindow,
		"outer_window":  p.OuterWindow,
		"permutations":  p.Permutations,
		"fdr_cutoff":    p.FDRCutoff,
		"pvalue_cutoff": p.PValueCutoff,
	})
}
