package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_CreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)

	_, err = os.Stat(path)
	require.NoError(t, err, "default config file should have been written")

	reloaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, config, reloaded)
}

func TestLoadConfig_JSONCAndPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{
		// only override what differs from the defaults
		"server_config": {
			"server_addr": ":9999",
			"log_level": "debug",
		},
		"data_config": {"database_fallback": true},
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", config.Server.ServerAddr)
	assert.Equal(t, "debug", config.Server.LogLevel)
	assert.Equal(t, DefaultServerConfig().TemplateDir, config.Server.TemplateDir)
	assert.True(t, config.Data.DatabaseFallback)
	assert.Equal(t, DefaultDataConfig().CSVPath, config.Data.CSVPath)
	assert.Equal(t, DefaultCategories(), config.Categories)
}

func TestLoadConfig_NullSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server_config": null, "data_config": null}`), 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultServerConfig(), config.Server)
	assert.Equal(t, DefaultDataConfig(), config.Data)

	require.NoError(t, os.WriteFile(path, []byte("// nothing configured\nnull\n"), 0644))
	config, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server_config": `), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"Error":   slog.LevelError,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for input, want := range tests {
		assert.Equal(t, want, parseLogLevel(input), "level %q", input)
	}
}
