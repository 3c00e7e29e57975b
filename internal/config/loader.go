// Package config provides configuration loading for multiplex.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// InitViper initializes Viper with the configuration file and
// environment variables. If configFile is empty, it searches for
// multiplex.yaml/.yml in standard locations. The search requires an
// explicit YAML extension to avoid matching a "multiplex" binary
// sitting next to it, which Viper's built-in SetConfigName would
// otherwise match (same base name, no extension).
func InitViper(configFile string) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else if found := findConfigFile(); found != "" {
		viper.SetConfigFile(found)
	} else {
		// No config file found in any standard location. Set
		// name/type without search paths so ReadInConfig returns
		// ConfigFileNotFoundError (handled gracefully by callers).
		viper.SetConfigName("multiplex")
		viper.SetConfigType("yaml")
	}

	// Environment variable support: MULTIPLEX_SERVER_ADDR, etc.
	viper.SetEnvPrefix("MULTIPLEX")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	bindNestedEnvKeys()
}

// findConfigFile searches standard locations for a multiplex config
// file with an explicit YAML extension (.yaml or .yml).
func findConfigFile() string {
	home, _ := os.UserHomeDir()
	paths := []string{
		".",
		filepath.Join(home, ".multiplex"),
	}
	if runtime.GOOS == "windows" {
		if pd := os.Getenv("ProgramData"); pd != "" {
			paths = append(paths, filepath.Join(pd, "multiplex"))
		}
	} else {
		paths = append(paths, "/etc/multiplex")
	}
	return findConfigFileInPaths(paths)
}

// findConfigFileInPaths searches the given directories for
// multiplex.yaml or .yml, returning the first match.
func findConfigFileInPaths(paths []string) string {
	for _, dir := range paths {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, "multiplex"+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// bindNestedEnvKeys binds the recognised config keys for environment
// variable support.
func bindNestedEnvKeys() {
	_ = viper.BindEnv("server.addr")
	_ = viper.BindEnv("server.key")
	_ = viper.BindEnv("server.cert")
	_ = viper.BindEnv("server.pfx")
	_ = viper.BindEnv("server.minVersion")
	_ = viper.BindEnv("server.maxVersion")

	_ = viper.BindEnv("log.mute")

	// router.routes and router.seperators are structured/array
	// values; embedders configure these via file, not env vars.
}

// LoadConfig reads the configuration file, applies environment
// overrides, sets defaults and returns the Config. It does not
// validate; callers should call cfg.Validate() once any programmatic
// overrides have been applied.
func LoadConfig() (*Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - continue with env vars only.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.SetDefaults()
	return &cfg, nil
}

// ConfigFileUsed returns the path to the configuration file that was
// loaded, or an empty string if no config file was found.
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}
