package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"tfea/domain/core"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migration is one versioned schema change, named NNN_description.sql
type Migration struct {
	Version string
	Name    string
	SQL     string
}

// MigrationStatus reports whether a migration has been applied
type MigrationStatus struct {
	Version   string     `db:"version"`
	Name      string     `db:"-"`
	Applied   bool       `db:"-"`
	AppliedAt *time.Time `db:"applied_at"`
}

// Migrator applies the embedded migrations in version order
type Migrator struct {
	db         *sqlx.DB
	migrations []Migration
}

// NewMigrator creates a migrator over the embedded migration files
func NewMigrator(db *sqlx.DB) (*Migrator, error) {
	migrations, err := loadMigrations(migrationFiles, "migrations")
	if err != nil {
		return nil, err
	}
	return &Migrator{db: db, migrations: migrations}, nil
}

func loadMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}

	var migrations []Migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		version, name, ok := strings.Cut(strings.TrimSuffix(entry.Name(), ".sql"), "_")
		if !ok {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", entry.Name(), err)
		}
		migrations = append(migrations, Migration{Version: version, Name: name, SQL: string(data)})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// Migrations returns the known migrations in version order
func (m *Migrator) Migrations() []Migration {
	return m.migrations
}

// Up applies every pending migration, each in its own transaction, and
// returns the versions applied
func (m *Migrator) Up(ctx context.Context) ([]string, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	var done []string
	for _, migration := range m.migrations {
		if _, ok := applied[migration.Version]; ok {
			continue
		}
		if err := m.apply(ctx, migration); err != nil {
			return done, fmt.Errorf("failed to apply migration %s: %w", migration.Version, err)
		}
		done = append(done, migration.Version)
	}
	return done, nil
}

// Status lists every known migration with its applied time
func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	statuses := make([]MigrationStatus, len(m.migrations))
	for i, migration := range m.migrations {
		statuses[i] = MigrationStatus{Version: migration.Version, Name: migration.Name}
		if at, ok := applied[migration.Version]; ok {
			statuses[i].Applied = true
			statuses[i].AppliedAt = &at
		}
	}
	return statuses, nil
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			checksum TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

func (m *Migrator) appliedVersions(ctx context.Context) (map[string]time.Time, error) {
	var rows []MigrationStatus
	if err := m.db.SelectContext(ctx, &rows, "SELECT version, applied_at FROM schema_migrations"); err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}

	applied := make(map[string]time.Time, len(rows))
	for _, row := range rows {
		var at time.Time
		if row.AppliedAt != nil {
			at = *row.AppliedAt
		}
		applied[row.Version] = at
	}
	return applied, nil
}

func (m *Migrator) apply(ctx context.Context, migration Migration) error {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, migration.SQL); err != nil {
		return fmt.Errorf("failed to execute migration SQL: %w", err)
	}

	checksum := core.NewHash([]byte(migration.SQL))
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, checksum) VALUES ($1, $2)",
		migration.Version, checksum.String()); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	return tx.Commit()
}
