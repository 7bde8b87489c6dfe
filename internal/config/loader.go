package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"mdb/pkg/logging"
)

const (
	userConfigDir  = ".config/mdb"
	configFileName = "config.yaml"

	// EnvBackendURL overrides backendURL.
	EnvBackendURL = "MDB_BACKEND_URL"

	// EnvTokenStore overrides tokenStore.
	EnvTokenStore = "MDB_TOKEN_STORE"
)

// lookupEnv is replaced in tests.
var lookupEnv = os.LookupEnv

// GetDefaultConfigPath returns ~/.config/mdb.
func GetDefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

// LoadConfig loads config.yaml from configPath on top of the defaults,
// applies environment overrides and validates the result.
func LoadConfig(configPath string) (Config, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	config := GetDefaultConfig()

	data, err := os.ReadFile(configFilePath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return Config{}, &ConfigurationError{
				FilePath:    configFilePath,
				ErrorType:   ErrorTypeParse,
				Message:     "malformed YAML",
				Details:     err.Error(),
				Suggestions: []string{"Check indentation and that durations are written like 10s"},
				Err:         err,
			}
		}
		logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	case errors.Is(err, os.ErrNotExist):
		logging.Debug("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
	default:
		return Config{}, &ConfigurationError{
			FilePath:  configFilePath,
			ErrorType: ErrorTypeIO,
			Message:   "cannot read configuration file",
			Details:   err.Error(),
			Err:       err,
		}
	}

	applyEnv(&config)

	config.TokenDir = expandHome(config.TokenDir)
	config.CookieFile = expandHome(config.CookieFile)
	config.BackendURL = strings.TrimSuffix(strings.TrimSpace(config.BackendURL), "/")
	config.TokenStore = strings.ToLower(strings.TrimSpace(config.TokenStore))

	if err := config.Validate(); err != nil {
		return Config{}, &ConfigurationError{
			FilePath:    configFilePath,
			ErrorType:   ErrorTypeValidation,
			Message:     "invalid configuration",
			Details:     err.Error(),
			Suggestions: []string{fmt.Sprintf("Fix the listed fields in %s or unset %s/%s", configFilePath, EnvBackendURL, EnvTokenStore)},
			Err:         err,
		}
	}
	return config, nil
}

func applyEnv(config *Config) {
	if v, ok := lookupEnv(EnvBackendURL); ok && v != "" {
		logging.Debug("ConfigLoader", "Using %s=%s", EnvBackendURL, v)
		config.BackendURL = v
	}
	if v, ok := lookupEnv(EnvTokenStore); ok && v != "" {
		logging.Debug("ConfigLoader", "Using %s=%s", EnvTokenStore, v)
		config.TokenStore = v
	}
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
}
