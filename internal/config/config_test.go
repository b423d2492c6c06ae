package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		prev, had := os.LookupEnv(k)
		os.Unsetenv(k)
		t.Cleanup(func() {
			if had {
				os.Setenv(k, prev)
			}
		})
	}
}

func TestLoad_AppliesDefaultsWhenEnvUnset(t *testing.T) {
	clearEnv(t, "SERVER_PORT", "DB_HOST", "LLM_EMBEDDING_DIM", "BACKGROUND_LOOP_PERIOD")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 1536, cfg.LLM.EmbeddingDim)
	assert.Equal(t, 5*time.Minute, cfg.Pipeline.BackgroundLoopPeriod)
}

func TestLoad_EnvironmentOverridesDefault(t *testing.T) {
	clearEnv(t, "SERVER_PORT")
	os.Setenv("SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
}
