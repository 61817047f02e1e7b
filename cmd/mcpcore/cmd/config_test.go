package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestLoadConfig_Defaults(t *testing.T) {
	resetViper(t)
	initViper("")
	cfg := loadConfig()
	assert.Equal(t, 120*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	resetViper(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "mcpcore.yaml")
	assert.NoError(t, os.WriteFile(path, []byte("log_level: debug\nrequest_timeout: 5s\n"), 0644))

	initViper(path)
	cfg := loadConfig()
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	resetViper(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "mcpcore.yaml")
	assert.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0644))

	t.Setenv("MCPCORE_LOG_LEVEL", "warn")
	initViper(path)
	cfg := loadConfig()
	assert.Equal(t, "warn", cfg.LogLevel)
}
