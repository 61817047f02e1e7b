package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the CLI's own settings, independent of whatever config an MCP
// server under test reads. Viper resolves it with the corpus's usual
// precedence: flags, then MCPCORE_-prefixed environment variables, then
// mcpcore.yaml, then these defaults.
//
// Grounded on Sentinel-Gate's internal/config loader: an explicit-extension
// config file search plus viper.AutomaticEnv with a dotted-key replacer.
type Config struct {
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	LogLevel       string        `mapstructure:"log_level"`
}

// defaultConfig mirrors client.DefaultRequestTimeout without importing the
// client package here, so cmd/config stays usable for flag defaults before
// any subcommand is selected.
func defaultConfig() Config {
	return Config{
		RequestTimeout: 120 * time.Second,
		LogLevel:       "info",
	}
}

// initViper wires up the mcpcore.yaml/.yml search and MCPCORE_ environment
// overrides. If configFile is empty, it searches the current directory and
// $HOME/.mcpcore for an explicit-extension config file, avoiding a name
// collision with the mcpcore binary itself.
func initViper(configFile string) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else if found := findConfigFile(); found != "" {
		viper.SetConfigFile(found)
	} else {
		viper.SetConfigName("mcpcore")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("MCPCORE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	_ = viper.BindEnv("request_timeout")
	_ = viper.BindEnv("log_level")

	viper.SetDefault("request_timeout", defaultConfig().RequestTimeout)
	viper.SetDefault("log_level", defaultConfig().LogLevel)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "mcpcore: failed to read config file: %v\n", err)
		}
	}
}

func findConfigFile() string {
	home, _ := os.UserHomeDir()
	for _, dir := range []string{".", filepath.Join(home, ".mcpcore")} {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, "mcpcore"+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

func loadConfig() Config {
	cfg := defaultConfig()
	_ = viper.Unmarshal(&cfg)
	return cfg
}
