package config

import (
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"tfea/domain/enrichment"
	"tfea/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Engine   EngineConfig
	Database DatabaseConfig
	Server   ServerConfig
	Paths    PathConfig
	LogLevel string
}

// EngineConfig holds the run-wide scoring parameters
type EngineConfig struct {
	InnerWindow  float64
	OuterWindow  float64
	Permutations int
	FDRCutoff    float64
	PValueCutoff float64
	Seed         int64
	Workers      int // motifs scored concurrently
	TrialWorkers int // permutation trials per motif run concurrently
}

// DatabaseConfig holds database connection settings. An empty URL disables persistence.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// ServerConfig holds API server settings
type ServerConfig struct {
	Port            string
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
}

// PathConfig holds file system paths
type PathConfig struct {
	RegionDir     string
	RegionPattern string
	OutputDir     string
	RunName       string
}

// Load reads an optional .env file, then configuration from environment
// variables, and validates it
func Load() (*Config, error) {
	// Missing .env is fine; variables may come from the environment.
	_ = godotenv.Load()
	return FromEnv()
}

// LoadFile reads variables from the given env file before loading
func LoadFile(path string) (*Config, error) {
	if err := godotenv.Load(path); err != nil {
		return nil, errors.Wrapf(errors.ConfigInvalid(err.Error()), "failed to read env file %s", path)
	}
	return FromEnv()
}

// FromEnv builds the configuration from the current environment
func FromEnv() (*Config, error) {
	engineConfig, err := loadEngineConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load engine configuration")
	}

	config := &Config{
		Engine:   *engineConfig,
		Database: *loadDatabaseConfig(),
		Server:   *loadServerConfig(),
		Paths:    *loadPathConfig(),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Params converts the engine settings into scoring parameters
func (c EngineConfig) Params() enrichment.Params {
	return enrichment.Params{
		InnerWindow:  c.InnerWindow,
		OuterWindow:  c.OuterWindow,
		Permutations: c.Permutations,
		TrialWorkers: c.TrialWorkers,
		FDRCutoff:    c.FDRCutoff,
		PValueCutoff: c.PValueCutoff,
	}
}

func loadEngineConfig() (*EngineConfig, error) {
	cfg := &EngineConfig{}
	var err error

	if cfg.InnerWindow, err = getEnvFloat("TFEA_INNER_WINDOW", enrichment.DefaultInnerWindow); err != nil {
		return nil, err
	}
	if cfg.OuterWindow, err = getEnvFloat("TFEA_OUTER_WINDOW", enrichment.DefaultOuterWindow); err != nil {
		return nil, err
	}
	if cfg.Permutations, err = getEnvInt("TFEA_PERMUTATIONS", enrichment.DefaultPermutations); err != nil {
		return nil, err
	}
	if cfg.FDRCutoff, err = getEnvFloat("TFEA_FDR_CUTOFF", enrichment.DefaultFDRCutoff); err != nil {
		return nil, err
	}
	if cfg.PValueCutoff, err = getEnvFloat("TFEA_PVAL_CUTOFF", enrichment.DefaultPValueCutoff); err != nil {
		return nil, err
	}
	seed, err := getEnvInt("TFEA_SEED", 42)
	if err != nil {
		return nil, err
	}
	cfg.Seed = int64(seed)
	if cfg.Workers, err = getEnvInt("TFEA_WORKERS", runtime.NumCPU()); err != nil {
		return nil, err
	}
	if cfg.TrialWorkers, err = getEnvInt("TFEA_TRIAL_WORKERS", 1); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		URL:             getEnvOrDefault("DATABASE_URL", ""),
		MaxOpenConns:    getEnvIntOrDefault("DB_MAX_OPEN_CONNS", 10),
		ConnMaxLifetime: getEnvDurationOrDefault("DB_CONN_MAX_LIFETIME", 30*time.Minute),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:            getEnvOrDefault("PORT", "8080"),
		ShutdownTimeout: getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", 15*time.Second),
		MaxBodyBytes:    int64(getEnvIntOrDefault("MAX_BODY_BYTES", 64<<20)),
	}
}

func loadPathConfig() *PathConfig {
	return &PathConfig{
		RegionDir:     getEnvOrDefault("TFEA_REGION_DIR", ""),
		RegionPattern: getEnvOrDefault("TFEA_REGION_PATTERN", "*.bed"),
		OutputDir:     getEnvOrDefault("TFEA_OUTPUT_DIR", "./tfea_output"),
		RunName:       getEnvOrDefault("TFEA_RUN_NAME", "tfea"),
	}
}

// Validate checks the configuration; flag overrides call it again
func (c *Config) Validate() error {
	return validateConfig(c)
}

func validateConfig(config *Config) error {
	if err := config.Engine.Params().Validate(); err != nil {
		return errors.Wrap(errors.ConfigInvalid(err.Error()), "invalid engine parameters")
	}
	if config.Engine.Workers < 1 {
		return errors.ConfigInvalid("TFEA_WORKERS must be at least 1")
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	if config.Server.MaxBodyBytes <= 0 {
		return errors.ConfigInvalid("MAX_BODY_BYTES must be positive")
	}
	if strings.TrimSpace(config.Paths.OutputDir) == "" {
		return errors.ConfigInvalid("TFEA_OUTPUT_DIR is required")
	}
	return nil
}

// Helper functions for environment variable parsing

// getEnvFloat and getEnvInt reject malformed engine values instead of
// silently falling back, since they change the statistics.
func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, errors.ConfigInvalid(key + " must be a number, got " + strconv.Quote(value))
	}
	return f, nil
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.ConfigInvalid(key + " must be an integer, got " + strconv.Quote(value))
	}
	return i, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
