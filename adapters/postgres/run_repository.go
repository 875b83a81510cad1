package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"tfea/domain/core"
	"tfea/domain/enrichment"
	"tfea/ports"
)

// RunRepository stores scored runs in PostgreSQL
type RunRepository struct {
	db *sqlx.DB
}

var _ ports.RunRepository = (*RunRepository)(nil)

// NewRunRepository creates a new run repository
func NewRunRepository(db *sqlx.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Connect opens and pings a PostgreSQL connection pool
func Connect(ctx context.Context, url string, maxOpenConns int, connMaxLifetime time.Duration) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	return db, nil
}

// EnsureSchema applies pending migrations
func (r *RunRepository) EnsureSchema(ctx context.Context) error {
	migrator, err := NewMigrator(r.db)
	if err != nil {
		return err
	}
	if _, err := migrator.Up(ctx); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

type runRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	CreatedAt   time.Time `db:"created_at"`
	Seed        int64     `db:"seed"`
	Params      []byte    `db:"params"`
	ParamsHash  string    `db:"params_hash"`
	Fingerprint string    `db:"fingerprint"`
	RuntimeMs   int64     `db:"runtime_ms"`
	Skipped     []byte    `db:"skipped"`
	Failed      []byte    `db:"failed"`
}

type resultRow struct {
	Position    int     `db:"position"`
	MotifID     string  `db:"motif_id"`
	ActualES    float64 `db:"actual_es"`
	NES         float64 `db:"nes"`
	PValue      float64 `db:"p_value"`
	FDR         float64 `db:"fdr"`
	Significant bool    `db:"significant"`
	Hits        int     `db:"hits"`
	Misses      int     `db:"misses"`
	enrichment.NullSummary
}

// SaveRun inserts the run and its results in one transaction
func (r *RunRepository) SaveRun(ctx context.Context, run *enrichment.Run) error {
	params, err := json.Marshal(run.Params)
	if err != nil {
		return fmt.Errorf("failed to marshal params: %w", err)
	}
	skipped, err := json.Marshal(run.Skipped)
	if err != nil {
		return fmt.Errorf("failed to marshal skipped motifs: %w", err)
	}
	failed, err := json.Marshal(run.Failed)
	if err != nil {
		return fmt.Errorf("failed to marshal failed motifs: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tfea_runs (
			id, name, created_at, seed, params, params_hash,
			fingerprint, runtime_ms, skipped, failed
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		run.ID.String(), run.Name, run.CreatedAt, run.Seed, params, run.ParamsHash.String(),
		run.Fingerprint.String(), run.RuntimeMs, skipped, failed,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for i, res := range run.Results {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO tfea_results (
				run_id, position, motif_id, actual_es, nes, p_value, fdr, significant,
				hits, misses, null_samples, null_mean, null_std_dev, null_min, null_max,
				null_p95, null_p99
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
			run.ID.String(), i, res.MotifID.String(), res.ActualES, res.NES, res.PValue, res.FDR, res.Significant,
			res.Hits, res.Misses, res.Null.Samples, res.Null.Mean, res.Null.StdDev, res.Null.Min, res.Null.Max,
			res.Null.Percentile95, res.Null.Percentile99,
		)
		if err != nil {
			return fmt.Errorf("failed to insert result for %s: %w", res.MotifID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// GetRun loads a run with its results in stored order
func (r *RunRepository) GetRun(ctx context.Context, id core.RunID) (*enrichment.Run, error) {
	var row runRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, name, created_at, seed, params, params_hash,
			   fingerprint, runtime_ms, skipped, failed
		FROM tfea_runs
		WHERE id = $1`, id.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.NewRunNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	run := &enrichment.Run{
		ID:          core.RunID(row.ID),
		Name:        row.Name,
		CreatedAt:   row.CreatedAt,
		Seed:        row.Seed,
		ParamsHash:  core.Hash(row.ParamsHash),
		Fingerprint: core.Hash(row.Fingerprint),
		RuntimeMs:   row.RuntimeMs,
	}
	if err := json.Unmarshal(row.Params, &run.Params); err != nil {
		return nil, fmt.Errorf("failed to unmarshal params: %w", err)
	}
	if err := json.Unmarshal(row.Skipped, &run.Skipped); err != nil {
		return nil, fmt.Errorf("failed to unmarshal skipped motifs: %w", err)
	}
	if err := json.Unmarshal(row.Failed, &run.Failed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal failed motifs: %w", err)
	}

	var rows []resultRow
	err = r.db.SelectContext(ctx, &rows, `
		SELECT position, motif_id, actual_es, nes, p_value, fdr, significant, hits, misses,
			   null_samples, null_mean, null_std_dev, null_min, null_max, null_p95, null_p99
		FROM tfea_results
		WHERE run_id = $1
		ORDER BY position`, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get results: %w", err)
	}

	run.Results = make([]enrichment.Result, len(rows))
	for i, row := range rows {
		run.Results[i] = enrichment.Result{
			MotifID:     core.MotifID(row.MotifID),
			ActualES:    row.ActualES,
			NES:         row.NES,
			PValue:      row.PValue,
			FDR:         row.FDR,
			Significant: row.Significant,
			Hits:        row.Hits,
			Misses:      row.Misses,
			Null:        row.NullSummary,
		}
	}

	return run, nil
}

// ListRuns returns the newest runs with result counts
func (r *RunRepository) ListRuns(ctx context.Context, limit int) ([]ports.RunSummary, error) {
	var summaries []ports.RunSummary
	err := r.db.SelectContext(ctx, &summaries, `
		SELECT r.id, r.name, r.created_at,
			   COUNT(res.position) AS motifs,
			   COUNT(res.position) FILTER (WHERE res.significant) AS significant
		FROM tfea_runs r
		LEFT JOIN tfea_results res ON res.run_id = r.id
		GROUP BY r.id, r.name, r.created_at
		ORDER BY r.created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return summaries, nil
}
