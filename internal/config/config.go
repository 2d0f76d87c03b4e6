package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the environment-derived settings shared by the functions.
type Config struct {
	ProjectID             string
	MaterialsBucket       string
	DocumentsCollection   string
	CoursesCollection     string
	ConvertServiceBaseURL string
	ConvertTimeout        time.Duration

	// StrictTransitions makes the record manager reject status writes that
	// are not legal successors of the current status. Off by default: the
	// conversion service is trusted to write legal values.
	StrictTransitions bool

	// UseMemoryStores swaps Firestore and GCS for in-memory stores so the
	// materials API can run locally without emulators.
	UseMemoryStores bool
}

// Load reads configuration from the environment. A .env file is honored for
// local runs; in GCP the variables come from the function deployment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	cfg := &Config{
		ProjectID:             GetEnv("PROJECT_ID", ""),
		MaterialsBucket:       GetEnv("MATERIALS_BUCKET", ""),
		DocumentsCollection:   GetEnv("DOCUMENTS_COLLECTION", "documents"),
		CoursesCollection:     GetEnv("COURSES_COLLECTION", "courses"),
		ConvertServiceBaseURL: GetEnv("FILE_CONVERSION_SERVICE_BASE_URL", "http://localhost:8000"),
		ConvertTimeout:        time.Duration(getEnvInt("CONVERT_TIMEOUT_SECONDS", 10)) * time.Second,
		StrictTransitions:     getEnvBool("STRICT_STATUS_TRANSITIONS", false),
		UseMemoryStores:       getEnvBool("USE_MEMORY_STORES", false),
	}

	if cfg.UseMemoryStores {
		return cfg, nil
	}
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}
	if cfg.MaterialsBucket == "" {
		return nil, fmt.Errorf("MATERIALS_BUCKET environment variable must be set")
	}
	return cfg, nil
}

// GetEnv reads an environment variable or returns a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("Ignoring non-integer environment variable", "key", key, "value", raw)
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		slog.Warn("Ignoring non-boolean environment variable", "key", key, "value", raw)
		return fallback
	}
	return v
}
