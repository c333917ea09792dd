package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

type Config struct {
	GeminiAPIKey string `json:"gemini_api_key"`
	GitHubToken  string `json:"github_token"`
	Language     string `json:"language"`
	AIModel      string `json:"ai_model"`
	PlansRepo    string `json:"plans_repo,omitempty"`
	UseStack     bool   `json:"use_stack"`
	MaxDiffBytes int    `json:"max_diff_bytes"`
	PathFile     string `json:"path_file"`
}

const (
	defaultLang         = "en"
	defaultAIModel      = "gemini-1.5-flash"
	defaultUseStack     = true
	defaultMaxDiffBytes = 200_000
)

// LoadConfig reads the configuration from path. When path is a directory,
// the file lives at <path>/.erk/config.json and is created with defaults on
// first run.
func LoadConfig(path string) (*Config, error) {
	var configPath string

	if filepath.Ext(path) == ".json" {
		configPath = path
	} else {
		configDir := filepath.Join(path, ".erk")
		configPath = filepath.Join(configDir, "config.json")

		if _, err := os.Stat(configDir); os.IsNotExist(err) {
			if err := os.MkdirAll(configDir, 0755); err != nil {
				return nil, fmt.Errorf("error creating config directory: %w", err)
			}
		}
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return createDefaultConfig(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error decoding config file: %w", err)
	}
	config.PathFile = configPath

	applyDefaults(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("loaded configuration is not valid: %w", err)
	}

	return &config, nil
}

func createDefaultConfig(path string) (*Config, error) {
	config := &Config{
		Language:     defaultLang,
		AIModel:      defaultAIModel,
		UseStack:     defaultUseStack,
		MaxDiffBytes: defaultMaxDiffBytes,
		PathFile:     path,
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error encoding default config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("error saving default config: %w", err)
	}

	return config, nil
}

// SaveConfig persists the configuration back to its PathFile.
func SaveConfig(config *Config) error {
	if err := validateConfig(config); err != nil {
		return fmt.Errorf("configuration to save is not valid: %w", err)
	}

	if config.PathFile == "" {
		return errors.New("config file path is not set")
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}

	if err := os.WriteFile(config.PathFile, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

func applyDefaults(config *Config) {
	if config.Language == "" {
		config.Language = defaultLang
	}
	if config.AIModel == "" {
		config.AIModel = defaultAIModel
	}
	if config.MaxDiffBytes == 0 {
		config.MaxDiffBytes = defaultMaxDiffBytes
	}
}

func validateConfig(config *Config) error {
	if config.Language == "" {
		return errors.New("language must not be empty")
	}
	if config.MaxDiffBytes <= 0 {
		return errors.New("max_diff_bytes must be positive")
	}
	return nil
}
