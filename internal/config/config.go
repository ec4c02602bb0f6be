package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Extraction    ExtractionConfig
	OCR           OCRConfig
	Categorizer   CategorizerConfig
	Server        ServerConfig
	Observability ObservabilityConfig
	LogLevel      string
}

type ExtractionConfig struct {
	ReferenceYear       int
	NormalizeTableDates bool
	ColumnGap           float64
	RowGranularity      float64
	Currency            string
	// ExtraNoise adds summary-line keywords for statements the built-in set misses.
	ExtraNoise []string
}

type OCRConfig struct {
	Enabled  bool
	DPI      int
	Language string
	Timeout  time.Duration
}

type CategorizerConfig struct {
	Threshold  int
	Categories []string
	Backend    string
	Path       string
	DSN        string
}

type ServerConfig struct {
	Addr        string
	BodyLimitMB int
}

type ObservabilityConfig struct {
	MetricsEnabled bool
}

// Vocabulary store backends.
const (
	BackendYAML     = "yaml"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// DefaultCategories is the closed category set offered for corrections.
var DefaultCategories = []string{
	"Food & Dining", "Groceries", "Shopping", "Travel", "Fuel",
	"Bills & Utilities", "Entertainment", "Health", "Transfers",
}

// Load reads configuration from the environment, after loading a .env file
// from the working directory when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Extraction: ExtractionConfig{
			ReferenceYear:       getEnvAsInt("LEDGER_REFERENCE_YEAR", time.Now().Year()),
			NormalizeTableDates: getEnvAsBool("LEDGER_NORMALIZE_TABLE_DATES", false),
			ColumnGap:           getEnvAsFloat("LEDGER_SPATIAL_COLUMN_GAP", 20),
			RowGranularity:      getEnvAsFloat("LEDGER_SPATIAL_ROW_GRANULARITY", 1),
			Currency:            getEnv("LEDGER_CURRENCY", "INR"),
		},
		OCR: OCRConfig{
			Enabled:  getEnvAsBool("OCR_ENABLED", true),
			DPI:      getEnvAsInt("OCR_DPI", 300),
			Language: getEnv("OCR_LANGUAGE", "eng"),
			Timeout:  getEnvAsDuration("OCR_TIMEOUT", 2*time.Minute),
		},
		Categorizer: CategorizerConfig{
			Threshold:  getEnvAsInt("LEDGER_FUZZY_THRESHOLD", 80),
			Categories: getEnvAsList("LEDGER_CATEGORIES", DefaultCategories),
			Backend:    strings.ToLower(getEnv("VOCAB_BACKEND", BackendYAML)),
			Path:       getEnv("VOCAB_PATH", "vendor_categories.yaml"),
			DSN:        getEnv("VOCAB_DSN", ""),
		},
		Server: ServerConfig{
			Addr:        getEnv("SERVER_ADDR", ":8080"),
			BodyLimitMB: getEnvAsInt("SERVER_BODY_LIMIT_MB", 32),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and backend requirements.
func (c *Config) Validate() error {
	if c.Categorizer.Threshold < 0 || c.Categorizer.Threshold > 100 {
		return fmt.Errorf("LEDGER_FUZZY_THRESHOLD must be between 0 and 100, got %d", c.Categorizer.Threshold)
	}
	if len(c.Categorizer.Categories) == 0 {
		return errors.New("LEDGER_CATEGORIES must name at least one category")
	}
	switch c.Categorizer.Backend {
	case BackendYAML, BackendSQLite:
		if c.Categorizer.Path == "" {
			return fmt.Errorf("VOCAB_PATH is required for the %s backend", c.Categorizer.Backend)
		}
	case BackendPostgres:
		if c.Categorizer.DSN == "" {
			return errors.New("VOCAB_DSN is required for the postgres backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown VOCAB_BACKEND %q", c.Categorizer.Backend)
	}
	if c.Extraction.ColumnGap <= 0 || c.Extraction.RowGranularity <= 0 {
		return errors.New("spatial column gap and row granularity must be positive")
	}
	if c.OCR.Timeout <= 0 {
		return errors.New("OCR_TIMEOUT must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated value, dropping blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return append([]string(nil), defaultValue...)
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
