package container

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tfea/domain/enrichment"
	"tfea/internal/config"
	"tfea/internal/errors"
)

func testConfig() *config.Config {
	params := enrichment.DefaultParams()
	return &config.Config{
		Engine: config.EngineConfig{
			InnerWindow:  params.InnerWindow,
			OuterWindow:  params.OuterWindow,
			Permutations: 100,
			FDRCutoff:    params.FDRCutoff,
			PValueCutoff: params.PValueCutoff,
			Seed:         42,
			Workers:      2,
			TrialWorkers: 1,
		},
		LogLevel: "ERROR",
	}
}

func TestNew(t *testing.T) {
	c, err := New(testConfig())
	require.NoError(t, err)

	assert.NotNil(t, c.Engine)
	assert.NotNil(t, c.RNG)
	assert.NotNil(t, c.EnrichmentService)
	assert.Nil(t, c.RunRepo)
	assert.Equal(t, 100, c.Engine.Params().Permutations)
	assert.NoError(t, c.Shutdown(context.Background()))
}

func TestNew_Errors(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	cfg := testConfig()
	cfg.Engine.InnerWindow = cfg.Engine.OuterWindow
	_, err = New(cfg)
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestConnectDatabase_Disabled(t *testing.T) {
	c, err := New(testConfig())
	require.NoError(t, err)

	require.NoError(t, c.ConnectDatabase(context.Background()))
	assert.Nil(t, c.DB)
	assert.Nil(t, c.RunRepo)
}

func TestInitWithDatabase(t *testing.T) {
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	mock.ExpectPing()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT version, applied_at FROM schema_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"version", "applied_at"}).
			AddRow("001", time.Now()).
			AddRow("002", time.Now()))
	mock.ExpectClose()

	c, err := New(testConfig())
	require.NoError(t, err)
	before := c.EnrichmentService

	require.NoError(t, c.InitWithDatabase(context.Background(), sqlx.NewDb(mockDB, "postgres")))
	assert.NotNil(t, c.RunRepo)
	assert.NotSame(t, before, c.EnrichmentService)

	require.NoError(t, c.Shutdown(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInitWithDatabase_PingFailure(t *testing.T) {
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer mockDB.Close()

	mock.ExpectPing().WillReturnError(assert.AnError)

	c, err := New(testConfig())
	require.NoError(t, err)

	err = c.InitWithDatabase(context.Background(), sqlx.NewDb(mockDB, "postgres"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeDatabaseError, errors.GetCode(err))
	assert.Nil(t, c.RunRepo)
}
