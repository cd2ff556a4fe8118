package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, "mistral-large-latest", cfg.Oracle.Model)
	assert.Equal(t, 30, cfg.Oracle.TimeoutSeconds)
	assert.Equal(t, "yt-dlp", cfg.Tools.YtDlpPath)
	assert.Equal(t, 32, cfg.Media.CacheCapacity)
	assert.Equal(t, 300, cfg.Media.SearchMaxSeconds)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SCOREBOT_SERVER_PORT", "9999")
	t.Setenv("SCOREBOT_ORACLE_MODEL", "mistral-small-latest")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "mistral-small-latest", cfg.Oracle.Model)
}

func TestLoadResolvesEnvRefs(t *testing.T) {
	t.Setenv("TEST_ORACLE_KEY", "sk-secret")
	t.Setenv("SCOREBOT_ORACLE_API_KEY", "${TEST_ORACLE_KEY}")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sk-secret", cfg.Oracle.APIKey)
}
