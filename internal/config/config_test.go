package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfig_Defaults(t *testing.T) {
	conf, err := GetConfig()
	require.NoError(t, err)

	assert.Equal(t, "info", conf.AppConfig.LogLevel)
	assert.Equal(t, "element_maps", conf.CatalogConfig.Dir)
	assert.Equal(t, 80, conf.CatalogConfig.MinScore)
	assert.False(t, conf.BrowserConfig.Enabled)
	assert.True(t, conf.BrowserConfig.Headless)
}

func TestGetConfig_FromEnv(t *testing.T) {
	t.Setenv("CATALOG_DIR", "/tmp/maps")
	t.Setenv("CATALOG_MIN_SCORE", "70")
	t.Setenv("LOG_LEVEL", "debug")

	conf, err := GetConfig()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/maps", conf.CatalogConfig.Dir)
	assert.Equal(t, 70, conf.CatalogConfig.MinScore)
	assert.Equal(t, "debug", conf.AppConfig.LogLevel)
}

func TestGetConfig_InvalidValue(t *testing.T) {
	t.Setenv("CATALOG_MIN_SCORE", "high")

	_, err := GetConfig()
	assert.Error(t, err)
}
