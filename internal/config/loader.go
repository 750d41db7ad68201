package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Load loads config from the default path (~/.postpilot/config.json).
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return LoadFromFile(filepath.Join(home, ".postpilot", "config.json"))
}

// LoadOrDefault loads config from path (or the default path when path is
// empty), falling back to defaults plus env overrides when no config
// file exists yet.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, ".postpilot", "config.json")
	}
	cfg, err := LoadFromFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = DefaultConfig()
		applyEnvOverrides(cfg)
		expandDataDir(cfg)
		return cfg, nil
	}
	return cfg, err
}

// LoadFromFile loads config from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file %s: %w", path, err)
	}
	defer f.Close()
	return LoadFromReader(f)
}

// LoadFromReader loads config from an io.Reader, applying defaults and env overrides.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()

	if err := json.NewDecoder(r).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnvOverrides(cfg)
	expandDataDir(cfg)

	return cfg, nil
}

// applyEnvOverrides applies POSTPILOT_-prefixed environment variable overrides.
func applyEnvOverrides(cfg *Config) {
	envMap := map[string]*string{
		"POSTPILOT_PROVIDERS_OPENAI_APIKEY":    &cfg.Providers.OpenAI.APIKey,
		"POSTPILOT_PROVIDERS_ANTHROPIC_APIKEY": &cfg.Providers.Anthropic.APIKey,
		"POSTPILOT_GENERATE_MODEL":             &cfg.Generate.Model,
		"POSTPILOT_TWITTER_APIKEY":             &cfg.Twitter.APIKey,
		"POSTPILOT_TWITTER_APISECRET":          &cfg.Twitter.APISecret,
		"POSTPILOT_TWITTER_ACCESSTOKEN":        &cfg.Twitter.AccessToken,
		"POSTPILOT_TWITTER_ACCESSSECRET":       &cfg.Twitter.AccessSecret,
		"POSTPILOT_TWITTER_BEARERTOKEN":        &cfg.Twitter.BearerToken,
		"POSTPILOT_GATEWAY_URL":                &cfg.Gateway.URL,
		"POSTPILOT_DATADIR":                    &cfg.DataDir,
	}

	for env, ptr := range envMap {
		if val := os.Getenv(env); val != "" {
			*ptr = val
		}
	}
}

// expandDataDir expands a leading ~ in the data dir path.
func expandDataDir(cfg *Config) {
	dir := cfg.DataDir
	if len(dir) >= 2 && dir[0] == '~' && dir[1] == '/' {
		home, err := os.UserHomeDir()
		if err == nil {
			cfg.DataDir = filepath.Join(home, dir[2:])
		}
	}
}
