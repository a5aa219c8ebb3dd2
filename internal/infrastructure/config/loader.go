package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadRoutingFile loads a RoutingFile from a YAML file on disk.
// It reads the file, parses the YAML content, and validates the result.
// Returns an error if the file cannot be read, parsed, or fails validation.
func LoadRoutingFile(path string) (*RoutingFile, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	return LoadRoutingFileFromBytes(data)
}

// LoadRoutingFileFromBytes parses YAML bytes into a RoutingFile.
// This is the in-memory override path for embedding callers and tests.
func LoadRoutingFileFromBytes(data []byte) (*RoutingFile, error) {
	if len(data) == 0 {
		return nil, errors.New("config data is empty")
	}

	cfg := &RoutingFile{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// SaveRoutingFile writes a RoutingFile to a YAML file, creating parent
// directories if needed.
func SaveRoutingFile(path string, cfg *RoutingFile) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(cleanPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file %q: %w", path, err)
	}

	return nil
}
