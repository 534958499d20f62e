package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cloo-solutions/lexcorpus/internal/service"
)

const (
	envAPIKey = "LEXCORPUS_API_KEY"
	envAPIURL = "LEXCORPUS_API_URL"

	defaultAPIURL = "http://localhost:8080"
)

// GlobalConfig is the credential file written by "lexcorpus auth login".
type GlobalConfig struct {
	APIKey string `json:"api_key"`
	APIURL string `json:"api_url"`
}

var getConfigDirFunc = defaultGetConfigDir

func defaultGetConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "lexcorpus"), nil
}

// GetConfigPath returns the full path to the config.json file
func GetConfigPath() (string, error) {
	dir, err := getConfigDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadGlobalConfig returns nil, nil when no config file exists.
func LoadGlobalConfig() (*GlobalConfig, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg GlobalConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &cfg, nil
}

// SaveGlobalConfig writes cfg with 0600 permissions.
func SaveGlobalConfig(cfg *GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	dir, err := getConfigDirFunc()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "config.json"), data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// DeleteGlobalConfig removes the config file. A missing file is not an error.
func DeleteGlobalConfig() error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete config file: %w", err)
	}
	return nil
}

// IsValidAPIKey reports whether key looks like a key from "lexcorpusd apikey generate".
func IsValidAPIKey(key string) bool {
	return service.IsValidAPIToken(key)
}

// CredentialSource names where the effective credentials came from.
type CredentialSource string

const (
	SourceFlag         CredentialSource = "flag"
	SourceEnv          CredentialSource = "env"
	SourceGlobalConfig CredentialSource = "global_config"
	SourceNone         CredentialSource = "none"
)

// Credentials are the resolved API key and base URL.
type Credentials struct {
	APIKey string
	APIURL string
	Source CredentialSource
}

// ResolveCredentials applies the cascade flag -> env -> global config for the
// key and URL independently. The URL falls back to localhost; the key may stay
// empty because the server only requires one when API_KEY is set.
func ResolveCredentials(flagKey, flagURL string) (Credentials, error) {
	creds := Credentials{APIKey: flagKey, APIURL: flagURL, Source: SourceNone}
	if flagKey != "" {
		creds.Source = SourceFlag
	}

	if creds.APIKey == "" {
		if v := os.Getenv(envAPIKey); v != "" {
			creds.APIKey = v
			creds.Source = SourceEnv
		}
	}
	if creds.APIURL == "" {
		creds.APIURL = os.Getenv(envAPIURL)
	}

	if creds.APIKey == "" || creds.APIURL == "" {
		global, err := LoadGlobalConfig()
		if err != nil {
			return creds, err
		}
		if global != nil {
			if creds.APIKey == "" && global.APIKey != "" {
				creds.APIKey = global.APIKey
				creds.Source = SourceGlobalConfig
			}
			if creds.APIURL == "" {
				creds.APIURL = global.APIURL
			}
		}
	}

	if creds.APIURL == "" {
		creds.APIURL = defaultAPIURL
	}
	return creds, nil
}
