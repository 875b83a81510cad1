package app

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"tfea/domain/core"
	"tfea/domain/enrichment"
	"tfea/internal"
	engine "tfea/internal/enrichment"
	apperrors "tfea/internal/errors"
	"tfea/ports"
)

// EnrichmentService scores every motif of a region source and applies the
// FDR correction across them
type EnrichmentService struct {
	engine  *engine.Engine
	rngPort ports.RNGPort
	runRepo ports.RunRepository // optional
	workers int
	logger  *internal.Logger
}

// BatchRequest defines the inputs for one scoring run
type BatchRequest struct {
	RunID      core.RunID // optional, will be generated if empty
	Name       string
	Source     ports.RegionSource
	Seed       int64
	KeepTraces bool // retain per-motif plotting sequences in the report
}

// BatchReport contains the persisted run plus optional traces
type BatchReport struct {
	Run    *enrichment.Run
	Traces map[core.MotifID]*enrichment.Trace
}

// NewEnrichmentService creates an enrichment service. runRepo may be nil;
// workers below 1 means one worker per CPU.
func NewEnrichmentService(eng *engine.Engine, rngPort ports.RNGPort, runRepo ports.RunRepository, workers int, logger *internal.Logger) *EnrichmentService {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &EnrichmentService{
		engine:  eng,
		rngPort: rngPort,
		runRepo: runRepo,
		workers: workers,
		logger:  logger.WithComponent("EnrichmentService"),
	}
}

type motifOutcome struct {
	motif    core.MotifID
	analysis *engine.Analysis
	err      error
}

// Run scores all motifs concurrently. Per-motif failures are recorded in the
// run and never abort other motifs; only cancellation or a source listing
// error fails the whole run.
func (s *EnrichmentService) Run(ctx context.Context, req BatchRequest) (*BatchReport, error) {
	startTime := time.Now()
	if req.Source == nil {
		return nil, apperrors.InvalidInput("region source is required")
	}

	runID := req.RunID
	if runID == "" {
		runID = core.NewRunID()
	}

	motifs, err := req.Source.Motifs(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list motifs")
	}
	s.logger.Info("run %s: scoring %d motifs with %d workers", runID, len(motifs), s.workers)

	outcomes := make([]motifOutcome, len(motifs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, motif := range motifs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			analysis, err := s.scoreMotif(gctx, req.Source, motif, req.Seed)
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}
			outcomes[i] = motifOutcome{motif: motif, analysis: analysis, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("run %s cancelled: %w", runID, err)
	}

	params := s.engine.Params()
	run := &enrichment.Run{
		ID:         runID,
		Name:       req.Name,
		CreatedAt:  startTime.UTC(),
		Seed:       req.Seed,
		Params:     params,
		ParamsHash: params.Fingerprint(),
		Skipped:    []core.MotifID{},
		Failed:     []enrichment.Failure{},
	}
	report := &BatchReport{Run: run}
	if req.KeepTraces {
		report.Traces = make(map[core.MotifID]*enrichment.Trace)
	}

	scored := make([]enrichment.Result, 0, len(outcomes))
	for _, outcome := range outcomes {
		switch {
		case outcome.err == nil:
			scored = append(scored, outcome.analysis.Result)
			if req.KeepTraces {
				trace := outcome.analysis.Trace
				report.Traces[outcome.motif] = &trace
			}
		case core.IsSkippable(outcome.err):
			s.logger.Debug("skipping %s: %v", outcome.motif, outcome.err)
			run.Skipped = append(run.Skipped, outcome.motif)
		default:
			s.logger.Warn("motif %s failed: %v", outcome.motif, outcome.err)
			run.Failed = append(run.Failed, enrichment.Failure{MotifID: outcome.motif, Reason: outcome.err.Error()})
		}
	}

	run.Results, err = s.engine.Correct(scored)
	if err != nil {
		return nil, apperrors.Wrap(err, "FDR correction failed")
	}
	run.Fingerprint = fingerprint(run)
	run.RuntimeMs = time.Since(startTime).Milliseconds()

	s.logger.Info("run %s: %d scored, %d significant, %d skipped, %d failed in %dms",
		runID, len(run.Results), len(run.SignificantResults()), len(run.Skipped), len(run.Failed), run.RuntimeMs)

	if s.runRepo != nil {
		if err := s.runRepo.SaveRun(ctx, run); err != nil {
			return nil, apperrors.Wrapf(err, "failed to persist run %s", runID)
		}
	}

	return report, nil
}

func (s *EnrichmentService) scoreMotif(ctx context.Context, source ports.RegionSource, motif core.MotifID, seed int64) (*engine.Analysis, error) {
	regions, err := source.Regions(ctx, motif)
	if err != nil {
		return nil, fmt.Errorf("loading regions for %s: %w", motif, err)
	}
	rng, err := s.rngPort.MotifStream(ctx, motif, seed)
	if err != nil {
		return nil, fmt.Errorf("rng stream for %s: %w", motif, err)
	}
	return s.engine.Analyze(ctx, motif, regions, rng)
}

// streamCheckDraws is how many leading draws Verify compares per motif stream
const streamCheckDraws = 8

// Verify replays a scored request without persisting it. It fails with
// core.ErrSeedMismatch when a motif stream is not repeatable and with
// core.ErrNonDeterministic when the replay fingerprint differs from want.
func (s *EnrichmentService) Verify(ctx context.Context, req BatchRequest, want core.Hash) error {
	if req.Source == nil {
		return apperrors.InvalidInput("region source is required")
	}
	motifs, err := req.Source.Motifs(ctx)
	if err != nil {
		return apperrors.Wrap(err, "failed to list motifs")
	}
	for _, motif := range motifs {
		if err := s.checkStream(ctx, motif, req.Seed); err != nil {
			return err
		}
	}

	replay := *s
	replay.runRepo = nil
	req.RunID = ""
	req.KeepTraces = false
	report, err := replay.Run(ctx, req)
	if err != nil {
		return err
	}
	if !report.Run.Fingerprint.Equals(want) {
		return fmt.Errorf("%w: fingerprint %s, replay %s", core.ErrNonDeterministic, want, report.Run.Fingerprint)
	}
	s.logger.Info("replay of %d motifs matched fingerprint %s", len(motifs), want)
	return nil
}

func (s *EnrichmentService) checkStream(ctx context.Context, motif core.MotifID, seed int64) error {
	rng, err := s.rngPort.MotifStream(ctx, motif, seed)
	if err != nil {
		return fmt.Errorf("rng stream for %s: %w", motif, err)
	}
	expected := make([]float64, streamCheckDraws)
	for i := range expected {
		expected[i] = rng.Float64()
	}
	return s.rngPort.ValidateSeed(ctx, motif, seed, expected)
}

// GetRun loads a persisted run
func (s *EnrichmentService) GetRun(ctx context.Context, id core.RunID) (*enrichment.Run, error) {
	if s.runRepo == nil {
		return nil, apperrors.Unavailable("run storage is not configured")
	}
	run, err := s.runRepo.GetRun(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, apperrors.WithCode(apperrors.CodeNotFound, err)
		}
		return nil, apperrors.Wrapf(err, "failed to load run %s", id)
	}
	return run, nil
}

// ListRuns returns the most recent persisted runs
func (s *EnrichmentService) ListRuns(ctx context.Context, limit int) ([]ports.RunSummary, error) {
	if s.runRepo == nil {
		return nil, apperrors.Unavailable("run storage is not configured")
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return s.runRepo.ListRuns(ctx, limit)
}

// fingerprint hashes parameters, seed and scored values so identical seeded
// runs can be compared across machines.
func fingerprint(run *enrichment.Run) core.Hash {
	rows := make([]string, 0, len(run.Results)+len(run.Skipped)+1)
	rows = append(rows, fmt.Sprintf("seed=%d", run.Seed))
	for _, r := range run.Results {
		rows = append(rows, fmt.Sprintf("%s\t%.12g\t%.12g\t%.12g\t%.12g", r.MotifID, r.ActualES, r.NES, r.PValue, r.FDR))
	}
	for _, motif := range run.Skipped {
		rows = append(rows, "skipped\t"+motif.String())
	}
	return core.ComputeResultsHash(run.ParamsHash, rows)
}
