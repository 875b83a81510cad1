package app

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tfea/adapters/regions"
	"tfea/adapters/rng"
	"tfea/domain/core"
	"tfea/domain/enrichment"
	"tfea/internal"
	engine "tfea/internal/enrichment"
	apperrors "tfea/internal/errors"
	"tfea/ports"
)

type fakeRunRepository struct {
	mu   sync.Mutex
	runs map[core.RunID]*enrichment.Run
	err  error
}

func newFakeRunRepository() *fakeRunRepository {
	return &fakeRunRepository{runs: make(map[core.RunID]*enrichment.Run)}
}

func (f *fakeRunRepository) SaveRun(ctx context.Context, run *enrichment.Run) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.runs[run.ID] = run
	return nil
}

func (f *fakeRunRepository) GetRun(ctx context.Context, id core.RunID) (*enrichment.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	run, ok := f.runs[id]
	if !ok {
		return nil, core.NewRunNotFoundError(id)
	}
	return run, nil
}

func (f *fakeRunRepository) ListRuns(ctx context.Context, limit int) ([]ports.RunSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []ports.RunSummary
	for _, run := range f.runs {
		out = append(out, ports.RunSummary{ID: run.ID, Name: run.Name, Motifs: run.MotifCount()})
	}
	return out, nil
}

// brokenSource fails for one motif and delegates the rest
type brokenSource struct {
	ports.RegionSource
	broken core.MotifID
}

func (b brokenSource) Motifs(ctx context.Context) ([]core.MotifID, error) {
	motifs, err := b.RegionSource.Motifs(ctx)
	return append(motifs, b.broken), err
}

func (b brokenSource) Regions(ctx context.Context, motif core.MotifID) ([]enrichment.RegionHit, error) {
	if motif == b.broken {
		return nil, errors.New("truncated file")
	}
	return b.RegionSource.Regions(ctx, motif)
}

func motifRegions(id core.MotifID, closeEvery int, n int) enrichment.MotifRegions {
	hits := make([]enrichment.RegionHit, n)
	for i := range hits {
		distance := 800.0
		if closeEvery > 0 && i%closeEvery == 0 {
			distance = 10
		}
		hits[i] = enrichment.RegionHit{Rank: i + 1, Distance: distance, PValue: 0.01, FoldChangeSign: 1}
	}
	return enrichment.MotifRegions{MotifID: id, Regions: hits}
}

func topLoaded(id core.MotifID, n int) enrichment.MotifRegions {
	m := motifRegions(id, 0, n)
	for i := 0; i < n/4; i++ {
		m.Regions[i].Distance = 1
	}
	return m
}

// driftingRNG reseeds every motif stream it hands out
type driftingRNG struct {
	*rng.SeededAdapter
	calls atomic.Int64
}

func (d *driftingRNG) MotifStream(ctx context.Context, motif core.MotifID, baseSeed int64) (*rand.Rand, error) {
	return d.SeededAdapter.MotifStream(ctx, motif, baseSeed+d.calls.Add(1))
}

func newTestService(t *testing.T, workers int, repo ports.RunRepository) *EnrichmentService {
	t.Helper()
	return newTestServiceWith(t, workers, repo, rng.NewSeededAdapter(), nil)
}

func newTestServiceWith(t *testing.T, workers int, repo ports.RunRepository, rngPort ports.RNGPort, mutate func(p *enrichment.Params)) *EnrichmentService {
	t.Helper()
	params := enrichment.DefaultParams()
	params.Permutations = 300
	params.FDRCutoff = 0.05
	if mutate != nil {
		mutate(&params)
	}
	logger := internal.NewLogger(internal.LogLevelError)
	eng, err := engine.NewEngine(params, logger)
	require.NoError(t, err)
	return NewEnrichmentService(eng, rngPort, repo, workers, logger)
}

func testSource(t *testing.T) ports.RegionSource {
	t.Helper()
	source, err := regions.NewMemorySource([]enrichment.MotifRegions{
		motifRegions("UNIFORM", 7, 140),
		topLoaded("TOP", 160),
		{MotifID: "FAR", Regions: []enrichment.RegionHit{{Rank: 1, Distance: 5000}, {Rank: 2, Distance: 9000}}},
	})
	require.NoError(t, err)
	return brokenSource{RegionSource: source, broken: "BROKEN"}
}

func TestEnrichmentServiceRun(t *testing.T) {
	repo := newFakeRunRepository()
	service := newTestService(t, 4, repo)

	report, err := service.Run(context.Background(), BatchRequest{Name: "test", Source: testSource(t), Seed: 42, KeepTraces: true})
	require.NoError(t, err)
	run := report.Run

	require.Len(t, run.Results, 2)
	assert.Equal(t, []core.MotifID{"FAR"}, run.Skipped)
	require.Len(t, run.Failed, 1)
	assert.Equal(t, core.MotifID("BROKEN"), run.Failed[0].MotifID)
	assert.Contains(t, run.Failed[0].Reason, "truncated file")
	assert.Equal(t, 4, run.MotifCount())

	// Sorted by p-value, the enriched motif first.
	assert.Equal(t, core.MotifID("TOP"), run.Results[0].MotifID)
	assert.LessOrEqual(t, run.Results[0].PValue, run.Results[1].PValue)
	assert.True(t, run.Results[0].Significant)
	assert.InDelta(t, run.Results[0].PValue*2, run.Results[0].FDR, 1e-12)

	assert.Contains(t, report.Traces, core.MotifID("TOP"))
	assert.NotContains(t, report.Traces, core.MotifID("FAR"))
	assert.False(t, run.Fingerprint.IsEmpty())

	stored, err := service.GetRun(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, run, stored)
}

func TestEnrichmentServiceDeterministicAcrossWorkers(t *testing.T) {
	ctx := context.Background()

	a, err := newTestService(t, 1, nil).Run(ctx, BatchRequest{Source: testSource(t), Seed: 7})
	require.NoError(t, err)
	b, err := newTestService(t, 8, nil).Run(ctx, BatchRequest{Source: testSource(t), Seed: 7})
	require.NoError(t, err)
	c, err := newTestService(t, 8, nil).Run(ctx, BatchRequest{Source: testSource(t), Seed: 8})
	require.NoError(t, err)

	assert.Equal(t, a.Run.Fingerprint, b.Run.Fingerprint)
	assert.Equal(t, a.Run.Results, b.Run.Results)
	assert.NotEqual(t, a.Run.Fingerprint, c.Run.Fingerprint)
	assert.Nil(t, a.Traces)
}

func TestEnrichmentServiceRequiresSource(t *testing.T) {
	_, err := newTestService(t, 1, nil).Run(context.Background(), BatchRequest{})
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
}

func TestEnrichmentServiceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestService(t, 2, nil).Run(ctx, BatchRequest{Source: testSource(t), Seed: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEnrichmentServicePersistFailure(t *testing.T) {
	repo := newFakeRunRepository()
	repo.err = errors.New("connection refused")

	_, err := newTestService(t, 2, repo).Run(context.Background(), BatchRequest{Source: testSource(t), Seed: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestEnrichmentServiceWithoutRepository(t *testing.T) {
	service := newTestService(t, 1, nil)

	_, err := service.GetRun(context.Background(), core.NewRunID())
	assert.Equal(t, apperrors.CodeUnavailable, apperrors.GetCode(err))
	_, err = service.ListRuns(context.Background(), 10)
	assert.Equal(t, apperrors.CodeUnavailable, apperrors.GetCode(err))
}

func TestEnrichmentServiceGetRunNotFound(t *testing.T) {
	service := newTestService(t, 1, newFakeRunRepository())

	_, err := service.GetRun(context.Background(), core.NewRunID())
	assert.Equal(t, apperrors.CodeNotFound, apperrors.GetCode(err))
}

func TestEnrichmentServiceDegenerateNullRecordedAsFailure(t *testing.T) {
	// With a 1000bp inner window every region of UNDERFLOW is a close hit
	// whose exp(-d) underflows, so the running sum and the null stay at 0.
	service := newTestServiceWith(t, 2, nil, rng.NewSeededAdapter(), func(p *enrichment.Params) {
		p.InnerWindow = 1000
	})
	source, err := regions.NewMemorySource([]enrichment.MotifRegions{
		motifRegions("UNDERFLOW", 0, 40),
		topLoaded("TOP", 80),
	})
	require.NoError(t, err)

	report, err := service.Run(context.Background(), BatchRequest{Source: source, Seed: 3})
	require.NoError(t, err)
	run := report.Run

	require.Len(t, run.Results, 1)
	assert.Equal(t, core.MotifID("TOP"), run.Results[0].MotifID)
	assert.Empty(t, run.Skipped)
	require.Len(t, run.Failed, 1)
	assert.Equal(t, core.MotifID("UNDERFLOW"), run.Failed[0].MotifID)
	assert.Contains(t, run.Failed[0].Reason, core.ErrDegenerateNullDistribution.Error())
	assert.Contains(t, run.Failed[0].Reason, "UNDERFLOW")
}

func TestEnrichmentServiceVerify(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRunRepository()
	service := newTestService(t, 4, repo)
	req := BatchRequest{Name: "verify", Source: testSource(t), Seed: 11}

	report, err := service.Run(ctx, req)
	require.NoError(t, err)
	require.Len(t, repo.runs, 1)

	require.NoError(t, service.Verify(ctx, req, report.Run.Fingerprint))
	assert.Len(t, repo.runs, 1, "replay must not persist")

	err = service.Verify(ctx, req, core.NewHash([]byte("other run")))
	assert.True(t, errors.Is(err, core.ErrNonDeterministic))
	assert.True(t, core.IsDeterminismError(err))
	assert.Equal(t, apperrors.CodeNonDeterministic, apperrors.GetCode(err))
}

func TestEnrichmentServiceVerifyUnrepeatableStream(t *testing.T) {
	ctx := context.Background()
	service := newTestServiceWith(t, 2, nil, &driftingRNG{SeededAdapter: rng.NewSeededAdapter()}, nil)
	req := BatchRequest{Source: testSource(t), Seed: 5}

	report, err := service.Run(ctx, req)
	require.NoError(t, err)

	err = service.Verify(ctx, req, report.Run.Fingerprint)
	assert.True(t, errors.Is(err, core.ErrSeedMismatch))
}

func TestEnrichmentServiceVerifyRequiresSource(t *testing.T) {
	err := newTestService(t, 1, nil).Verify(context.Background(), BatchRequest{}, "")
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
}
