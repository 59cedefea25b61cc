package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, found, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 0.6, cfg.MinConfidence)
	assert.Equal(t, []string{"campaign_name", "creative_type"}, cfg.DefaultSegments)
	assert.Equal(t, DefaultStrategyTemplate, cfg.Creative.StrategyTemplate)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("min_confidence: 0.7\nbrand_name: Acme\ndefault_window_days: 14\n"), 0o644))

	cfg, found, err := Load(path)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 0.7, cfg.MinConfidence)
	assert.Equal(t, "Acme", cfg.BrandName)
	assert.Equal(t, 14, cfg.DefaultWindowDays)
	assert.Equal(t, "undergarments", cfg.ProductCategory)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("MIN_CONFIDENCE", "0.5")
	t.Setenv("DATA_PATH", "/tmp/ads.csv")

	cfg, _, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.MinConfidence)
	assert.Equal(t, "/tmp/ads.csv", cfg.DataPath)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("min_confidence: 1.5\n"), 0o644))
	_, _, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	t.Setenv("MIN_CONFIDENCE", "high")
	_, _, err = Load("")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("min_confidence: [\n"), 0o644))
	_, _, err := Load(path)
	assert.Error(t, err)
}
