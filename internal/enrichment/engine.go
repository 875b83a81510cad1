package enrichment

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"tfea/domain/core"
	"tfea/domain/enrichment"
	"tfea/internal"
)

// Analysis is the scored outcome of one motif plus its plotting trace
type Analysis struct {
	Result enrichment.Result
	Trace  enrichment.Trace
}

// Engine scores motifs: transform, running sum, permutation null and
// significance. It holds no per-motif state and is safe for concurrent use.
type Engine struct {
	params    enrichment.Params
	window    Window
	simulator *Simulator
	logger    *internal.Logger
}

// NewEngine validates params and creates an engine
func NewEngine(params enrichment.Params, logger *internal.Logger) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Engine{
		params:    params,
		window:    Window{Inner: params.InnerWindow, Outer: params.OuterWindow},
		simulator: NewSimulator(params.Permutations, params.TrialWorkers),
		logger:    logger.WithComponent("Engine"),
	}, nil
}

// Params returns the engine settings
func (e *Engine) Params() enrichment.Params {
	return e.params
}

// Analyze scores one motif. It returns an error wrapping core.ErrNoHits when
// no region is within the outer window, and one wrapping
// core.ErrDegenerateNullDistribution when NES cannot be normalized.
func (e *Engine) Analyze(ctx context.Context, motif core.MotifID, regions []enrichment.RegionHit, rng *rand.Rand) (*Analysis, error) {
	profile, err := Transform(regions, e.window)
	if err != nil {
		if errors.Is(err, core.ErrNoHits) {
			return nil, core.NewNoHitsError(motif)
		}
		return nil, err
	}

	cumulative, actualES := RunningSum(profile)

	null, err := e.simulator.Simulate(ctx, profile.Increments(), rng)
	if err != nil {
		return nil, fmt.Errorf("simulating null for motif %s: %w", motif, err)
	}

	nes, err := NormalizedScore(actualES, null)
	if err != nil {
		if errors.Is(err, core.ErrDegenerateNullDistribution) {
			return nil, core.NewDegenerateNullError(motif, actualES, len(null))
		}
		return nil, fmt.Errorf("normalizing motif %s: %w", motif, err)
	}

	pvalue, err := TwoTailedPValue(actualES, null)
	if err != nil {
		return nil, fmt.Errorf("p-value for motif %s: %w", motif, err)
	}

	e.logger.Debug("%s: es=%.4f nes=%.4f p=%.3g (hits=%d misses=%d)",
		motif, actualES, nes, pvalue, profile.Hits, profile.Negatives)

	trace := BuildTrace(profile, cumulative, null, e.params.PValueCutoff)
	trace.MotifID = motif

	return &Analysis{
		Result: enrichment.Result{
			MotifID:  motif,
			ActualES: actualES,
			NES:      nes,
			PValue:   pvalue,
			Hits:     profile.Hits,
			Misses:   profile.Negatives,
			Null:     Summarize(null),
		},
		Trace: trace,
	}, nil
}

// Correct sorts results by ascending p-value and applies the FDR cutoff
// configured on the engine.
func (e *Engine) Correct(results []enrichment.Result) ([]enrichment.Result, error) {
	sorted := make([]enrichment.Result, len(results))
	copy(sorted, results)
	SortByPValue(sorted)
	return CorrectFDR(sorted, e.params.FDRCutoff)
}
