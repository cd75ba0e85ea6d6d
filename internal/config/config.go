// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/aristath/megasena/internal/domain"
	"github.com/aristath/megasena/internal/modules/history"
	"github.com/joho/godotenv"
)

// Sampling strategies understood by the generator
const (
	SamplingUniform = "uniform"
	SamplingSpread  = "spread"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for all databases (always absolute)
	LogLevel string
	Port     int
	DevMode  bool

	// DatasetPath is a CSV file merged into history.db on every reload (optional)
	DatasetPath string
	DatasetS3   *DatasetS3Config

	ReloadSchedule      string // cron with seconds, empty disables the job
	MaintenanceSchedule string

	Engine EngineConfig
}

// DatasetS3Config locates a CSV snapshot in an S3-compatible bucket
type DatasetS3Config struct {
	Endpoint       string
	Region         string
	Bucket         string
	Key            string
	AccessKey      string
	SecretKey      string
	UseSSL         bool
	ForcePathStyle bool
}

// ToS3Config converts config.DatasetS3Config to history.S3Config
func (c *DatasetS3Config) ToS3Config() history.S3Config {
	return history.S3Config{
		Endpoint:       c.Endpoint,
		Region:         c.Region,
		Bucket:         c.Bucket,
		Key:            c.Key,
		AccessKey:      c.AccessKey,
		SecretKey:      c.SecretKey,
		UseSSL:         c.UseSSL,
		ForcePathStyle: c.ForcePathStyle,
	}
}

// EngineConfig tunes combination generation. It can be read from a TOML file
// (ENGINE_CONFIG_FILE); ENGINE_* variables override file values.
type EngineConfig struct {
	MaxQuantity       int           `toml:"max_quantity"`
	DefaultQuantity   int           `toml:"default_quantity"`
	HotWindow         int           `toml:"hot_window"`
	ColdWindow        int           `toml:"cold_window"`
	AttemptBudget     int           `toml:"attempt_budget_per_slot"`
	MaxEmptyQuadrants int           `toml:"max_empty_quadrants"`
	Sampling          string        `toml:"sampling"`
	Workers           int           `toml:"workers"`
	Timeout           time.Duration `toml:"timeout"`
	Seed              *uint64       `toml:"random_seed"`
	Exclude           []int         `toml:"exclude"`
}

// DefaultEngineConfig returns the engine defaults
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MaxQuantity:       10,
		DefaultQuantity:   10,
		HotWindow:         10,
		ColdWindow:        10,
		AttemptBudget:     500,
		MaxEmptyQuadrants: 2,
		Sampling:          SamplingSpread,
		Workers:           1,
	}
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("MEGASENA_DATA_DIR", "./data")

	// Always resolve to absolute path
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	engine, err := loadEngineConfig(getEnv("ENGINE_CONFIG_FILE", ""))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataDir:             absDataDir,
		Port:                getEnvAsInt("MEGASENA_PORT", 8080),
		DevMode:             getEnvAsBool("DEV_MODE", false),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		DatasetPath:         getEnv("DATASET_PATH", ""),
		DatasetS3:           loadDatasetS3Config(),
		ReloadSchedule:      getEnv("RELOAD_SCHEDULE", "0 30 21 * * TUE,THU,SAT"), // after the evening draws
		MaintenanceSchedule: getEnv("MAINTENANCE_SCHEDULE", "0 0 3 * * *"),
		Engine:              engine,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks ranges and combinations of settings
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.DatasetS3 != nil && c.DatasetS3.Bucket != "" && c.DatasetS3.Key == "" {
		return fmt.Errorf("DATASET_S3_KEY is required when DATASET_S3_BUCKET is set")
	}
	return c.Engine.Validate()
}

// Validate checks the engine settings
func (e *EngineConfig) Validate() error {
	if e.MaxQuantity < 1 {
		return fmt.Errorf("max_quantity must be at least 1, got %d", e.MaxQuantity)
	}
	if e.DefaultQuantity < 1 || e.DefaultQuantity > e.MaxQuantity {
		return fmt.Errorf("default_quantity must be in [1,%d], got %d", e.MaxQuantity, e.DefaultQuantity)
	}
	if e.HotWindow < 1 {
		return fmt.Errorf("hot_window must be at least 1, got %d", e.HotWindow)
	}
	if e.ColdWindow < 0 {
		return fmt.Errorf("cold_window must not be negative, got %d", e.ColdWindow)
	}
	if e.AttemptBudget < 1 {
		return fmt.Errorf("attempt_budget_per_slot must be at least 1, got %d", e.AttemptBudget)
	}
	if e.MaxEmptyQuadrants < 0 || e.MaxEmptyQuadrants >= domain.QuadrantCount {
		return fmt.Errorf("max_empty_quadrants must be in [0,%d], got %d", domain.QuadrantCount-1, e.MaxEmptyQuadrants)
	}
	if e.Sampling != SamplingUniform && e.Sampling != SamplingSpread {
		return fmt.Errorf("unknown sampling %q", e.Sampling)
	}
	if e.Workers < 1 || e.Workers > 64 {
		return fmt.Errorf("workers must be in [1,64], got %d", e.Workers)
	}
	if e.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}

	seen := make(map[int]bool, len(e.Exclude))
	for _, n := range e.Exclude {
		if !domain.InRange(n) {
			return fmt.Errorf("exclude: %w: %d", domain.ErrOutOfRange, n)
		}
		seen[n] = true
	}
	if domain.MaxNumber-len(seen) < domain.PickSize {
		return fmt.Errorf("exclude leaves fewer than %d numbers", domain.PickSize)
	}

	return nil
}

// loadEngineConfig applies defaults, then the TOML file, then ENGINE_* overrides
func loadEngineConfig(path string) (EngineConfig, error) {
	engine := DefaultEngineConfig()

	if path != "" {
		if _, err := toml.DecodeFile(path, &engine); err != nil {
			return engine, fmt.Errorf("failed to read engine config %s: %w", path, err)
		}
	}

	engine.MaxQuantity = getEnvAsInt("ENGINE_MAX_QUANTITY", engine.MaxQuantity)
	engine.DefaultQuantity = getEnvAsInt("ENGINE_DEFAULT_QUANTITY", engine.DefaultQuantity)
	engine.HotWindow = getEnvAsInt("ENGINE_HOT_WINDOW", engine.HotWindow)
	engine.ColdWindow = getEnvAsInt("ENGINE_COLD_WINDOW", engine.ColdWindow)
	engine.AttemptBudget = getEnvAsInt("ENGINE_ATTEMPT_BUDGET", engine.AttemptBudget)
	engine.MaxEmptyQuadrants = getEnvAsInt("ENGINE_MAX_EMPTY_QUADRANTS", engine.MaxEmptyQuadrants)
	engine.Sampling = getEnv("ENGINE_SAMPLING", engine.Sampling)
	engine.Workers = getEnvAsInt("ENGINE_WORKERS", engine.Workers)
	engine.Timeout = getEnvAsDuration("ENGINE_TIMEOUT", engine.Timeout)

	if value := os.Getenv("ENGINE_RANDOM_SEED"); value != "" {
		seed, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return engine, fmt.Errorf("invalid ENGINE_RANDOM_SEED %q: %w", value, err)
		}
		engine.Seed = &seed
	}

	if value := os.Getenv("ENGINE_EXCLUDE"); value != "" {
		exclude, err := parseIntList(value)
		if err != nil {
			return engine, fmt.Errorf("invalid ENGINE_EXCLUDE: %w", err)
		}
		engine.Exclude = exclude
	}

	return engine, nil
}

func loadDatasetS3Config() *DatasetS3Config {
	return &DatasetS3Config{
		Endpoint:       getEnv("DATASET_S3_ENDPOINT", ""),
		Region:         getEnv("DATASET_S3_REGION", "us-east-1"),
		Bucket:         getEnv("DATASET_S3_BUCKET", ""),
		Key:            getEnv("DATASET_S3_KEY", ""),
		AccessKey:      getEnv("DATASET_S3_ACCESS_KEY", ""),
		SecretKey:      getEnv("DATASET_S3_SECRET_KEY", ""),
		UseSSL:         getEnvAsBool("DATASET_S3_USE_SSL", true),
		ForcePathStyle: getEnvAsBool("DATASET_S3_FORCE_PATH_STYLE", false),
	}
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func parseIntList(s string) ([]int, error) {
	var out []int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", field)
		}
		out = append(out, n)
	}
	return out, nil
}
