package ports

import (
	"context"
	"time"

	"tfea/domain/core"
	"tfea/domain/enrichment"
)

// RunRepository persists scored runs
type RunRepository interface {
	SaveRun(ctx context.Context, run *enrichment.Run) error
	GetRun(ctx context.Context, id core.RunID) (*enrichment.Run, error)
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)
}

// RunSummary is a run row without per-motif results
type RunSummary struct {
	ID          core.RunID `json:"run_id" db:"id"`
	Name        string     `json:"name" db:"name"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	Motifs      int        `json:"motifs" db:"motifs"`
	Significant int        `json:"significant" db:"significant"`
}
