package testkit

import (
	"context"
	"sort"
	"sync"

	"tfea/adapters/rng"
	"tfea/app"
	"tfea/domain/core"
	"tfea/domain/enrichment"
	"tfea/internal"
	engine "tfea/internal/enrichment"
	"tfea/ports"
)

// TestKit wires an engine, RNG and in-memory run storage for tests and demos
type TestKit struct {
	Params enrichment.Params
	Engine *engine.Engine
	RNG    *rng.SeededAdapter
	Runs   *InMemoryRunRepository
	Logger *internal.Logger
}

// NewTestKit creates a kit with default parameters and the given number
// of permutations; quiet logging
func NewTestKit(permutations int) (*TestKit, error) {
	params := enrichment.DefaultParams()
	params.Permutations = permutations
	return NewTestKitWithParams(params)
}

// NewTestKitWithParams creates a kit with explicit engine parameters
func NewTestKitWithParams(params enrichment.Params) (*TestKit, error) {
	logger := internal.NewLogger(internal.LogLevelError)
	eng, err := engine.NewEngine(params, logger)
	if err != nil {
		return nil, err
	}
	return &TestKit{
		Params: params,
		Engine: eng,
		RNG:    rng.NewSeededAdapter(),
		Runs:   NewInMemoryRunRepository(),
		Logger: logger,
	}, nil
}

// Service returns an enrichment service; persist attaches the in-memory
// run repository
func (k *TestKit) Service(workers int, persist bool) *app.EnrichmentService {
	var repo ports.RunRepository
	if persist {
		repo = k.Runs
	}
	return app.NewEnrichmentService(k.Engine, k.RNG, repo, workers, k.Logger)
}

// InMemoryRunRepository implements ports.RunRepository with in-memory storage
type InMemoryRunRepository struct {
	runs map[core.RunID]*enrichment.Run
	mu   sync.RWMutex
}

func NewInMemoryRunRepository() *InMemoryRunRepository {
	return &InMemoryRunRepository{runs: make(map[core.RunID]*enrichment.Run)}
}

func (s *InMemoryRunRepository) SaveRun(ctx context.Context, run *enrichment.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
	return nil
}

func (s *InMemoryRunRepository) GetRun(ctx context.Context, id core.RunID) (*enrichment.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, exists := s.runs[id]
	if !exists {
		return nil, core.NewRunNotFoundError(id)
	}
	return run, nil
}

// ListRuns returns runs newest first
func (s *InMemoryRunRepository) ListRuns(ctx context.Context, limit int) ([]ports.RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]ports.RunSummary, 0, len(s.runs))
	for _, run := range s.runs {
		summaries = append(summaries, ports.RunSummary{
			ID:          run.ID,
			Name:        run.Name,
			CreatedAt:   run.CreatedAt,
			Motifs:      len(run.Results),
			Significant: len(run.SignificantResults()),
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	if limit > 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}
