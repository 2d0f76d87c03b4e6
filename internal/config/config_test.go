package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PROJECT_ID", "test-project")
	t.Setenv("MATERIALS_BUCKET", "test-bucket")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "documents", cfg.DocumentsCollection)
	assert.Equal(t, "courses", cfg.CoursesCollection)
	assert.Equal(t, "http://localhost:8000", cfg.ConvertServiceBaseURL)
	assert.Equal(t, 10*time.Second, cfg.ConvertTimeout)
	assert.False(t, cfg.StrictTransitions)
}

func TestLoad_RequiresProjectAndBucket(t *testing.T) {
	t.Setenv("PROJECT_ID", "")
	t.Setenv("MATERIALS_BUCKET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_MemoryModeSkipsRequiredVars(t *testing.T) {
	t.Setenv("PROJECT_ID", "")
	t.Setenv("MATERIALS_BUCKET", "")
	t.Setenv("USE_MEMORY_STORES", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.UseMemoryStores)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PROJECT_ID", "p")
	t.Setenv("MATERIALS_BUCKET", "b")
	t.Setenv("CONVERT_TIMEOUT_SECONDS", "30")
	t.Setenv("STRICT_STATUS_TRANSITIONS", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.ConvertTimeout)
	assert.True(t, cfg.StrictTransitions)
}

func TestGetEnvFallbacks(t *testing.T) {
	t.Setenv("CONVERT_TIMEOUT_SECONDS", "not-a-number")
	assert.Equal(t, 10, getEnvInt("CONVERT_TIMEOUT_SECONDS", 10))

	t.Setenv("STRICT_STATUS_TRANSITIONS", "yep")
	assert.False(t, getEnvBool("STRICT_STATUS_TRANSITIONS", false))

	assert.Equal(t, "fallback", GetEnv("DEFINITELY_NOT_SET_ANYWHERE", "fallback"))
}
