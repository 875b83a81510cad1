package container

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"tfea/adapters/postgres"
	"tfea/adapters/rng"
	"tfea/app"
	"tfea/internal"
	"tfea/internal/config"
	engine "tfea/internal/enrichment"
	"tfea/internal/errors"
	"tfea/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB *sqlx.DB

	// Repositories (nil when persistence is disabled)
	RunRepo ports.RunRepository

	// Scoring components
	RNG               ports.RNGPort
	Engine            *engine.Engine
	EnrichmentService *app.EnrichmentService
}

// New creates a container with the in-memory components. Persistence is
// attached later by ConnectDatabase or InitWithDatabase.
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
	eng, err := engine.NewEngine(cfg.Engine.Params(), logger)
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err)
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
		RNG:    rng.NewSeededAdapter(),
		Engine: eng,
	}
	c.initServices()

	return c, nil
}

// ConnectDatabase opens the configured database and attaches the run
// repository. An empty DATABASE_URL leaves persistence disabled.
func (c *Container) ConnectDatabase(ctx context.Context) error {
	if c.Config.Database.URL == "" {
		c.Logger.Info("DATABASE_URL not set, run persistence disabled")
		return nil
	}

	db, err := postgres.Connect(ctx, c.Config.Database.URL, c.Config.Database.MaxOpenConns, c.Config.Database.ConnMaxLifetime)
	if err != nil {
		return errors.DatabaseError("failed to connect to database", err)
	}
	if err := c.InitWithDatabase(ctx, db); err != nil {
		db.Close()
		return err
	}
	return nil
}

// InitWithDatabase initializes components that require database access
func (c *Container) InitWithDatabase(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}

	if err := db.PingContext(ctx); err != nil {
		return errors.DatabaseError("database ping failed", err)
	}

	repo := postgres.NewRunRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return errors.DatabaseError("schema setup failed", err)
	}

	c.DB = db
	c.RunRepo = repo
	c.initServices()

	c.Logger.Info("run persistence enabled")
	return nil
}

func (c *Container) initServices() {
	c.EnrichmentService = app.NewEnrichmentService(c.Engine, c.RNG, c.RunRepo, c.Config.Engine.Workers, c.Logger)
}

// Shutdown releases the database connection
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
