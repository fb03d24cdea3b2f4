package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfig_Embedded(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GOOGLE_GEMINI_API_KEY", "test-key")

	cfg, err := InitConfig()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.HTTPPort)
	assert.Equal(t, 60*time.Second, cfg.Server.Timeout)
	assert.Equal(t, "https://nominatim.openstreetmap.org", cfg.Geocoding.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Geocoding.Timeout)
	assert.Equal(t, "Paris", cfg.Geocoding.FallbackCity)
	assert.InDelta(t, 48.8566, cfg.Geocoding.FallbackLat, 1e-9)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.Model)
	assert.Equal(t, "test-key", cfg.LLM.APIKey)
	assert.False(t, cfg.Repositories.Postgres.Enabled)
}
