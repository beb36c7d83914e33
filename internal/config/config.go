// Package config handles the loading and management of application configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Paths struct {
	Database string `mapstructure:"database"`
	LogsFile string `mapstructure:"logs_file"`
}

// Generator holds defaults for the third-party paths generator.
type Generator struct {
	Input     string `mapstructure:"input"`
	Output    string `mapstructure:"output"`
	ArrayName string `mapstructure:"array_name"`
	CountName string `mapstructure:"count_name"`
}

// Testing holds defaults for the test report shim.
type Testing struct {
	GoBin        string `mapstructure:"go_bin"`
	Expectations string `mapstructure:"expectations"`
	Record       bool   `mapstructure:"record"`
}

type Config struct {
	LogLevel  string    `mapstructure:"log_level"`
	Paths     Paths     `mapstructure:"paths"`
	Generator Generator `mapstructure:"generator"`
	Testing   Testing   `mapstructure:"testing"`
}

var C Config

// getDefaultConfigDir returns the default configuration directory for the application.
func getDefaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		panic("unable to determine user config dir")
	}
	return filepath.Join(dir, "buildshim")
}

// getDefaultDataDir returns the default data directory for the application.
func getDefaultDataDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		panic("unable to determine user cache dir")
	}
	return filepath.Join(dir, "buildshim")
}

// DefaultConfig returns the default configuration file content as a string.
func DefaultConfig() string {
	return fmt.Sprintf(`# buildshim configuration file
# Values can be overridden by BSHIM_* environment variables or command-line flags.

paths:
  database: %s
  logs_file: %s

generator:
  input: tools/rewriting/ThirdPartyPaths.txt
  output: ThirdPartyPaths.cpp
  array_name: MOZ_THIRD_PARTY_PATHS
  count_name: MOZ_THIRD_PARTY_PATHS_COUNT

testing:
  go_bin: go
  expectations: ""
  record: true

log_level: info
`, filepath.Join(getDefaultDataDir(), "history.db"),
		filepath.Join(getDefaultDataDir(), "logs", "buildshim.log"))
}

func ConfigFile() string {
	return filepath.Join(getDefaultConfigDir(), "config.yaml")
}

// Load reads configuration from file and environment variables into the Config struct.
func Load(configFilePath ...string) error {
	dataDir := getDefaultDataDir()
	viper.SetDefault("log_level", "info")
	viper.SetDefault("paths.database", filepath.Join(dataDir, "history.db"))
	viper.SetDefault("paths.logs_file", "")
	viper.SetDefault("generator.input", filepath.Join("tools", "rewriting", "ThirdPartyPaths.txt"))
	viper.SetDefault("generator.output", "ThirdPartyPaths.cpp")
	viper.SetDefault("generator.array_name", "MOZ_THIRD_PARTY_PATHS")
	viper.SetDefault("generator.count_name", "MOZ_THIRD_PARTY_PATHS_COUNT")
	viper.SetDefault("testing.go_bin", "go")
	viper.SetDefault("testing.expectations", "")
	viper.SetDefault("testing.record", true)

	viper.SetEnvPrefix("BSHIM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.AddConfigPath(getDefaultConfigDir())
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if len(configFilePath) > 0 && configFilePath[0] != "" {
		viper.SetConfigFile(configFilePath[0])
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", configFilePath[0], err)
		}
	} else if err := viper.ReadInConfig(); err != nil {
		// A missing default config file is fine.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return viper.Unmarshal(&C)
}
