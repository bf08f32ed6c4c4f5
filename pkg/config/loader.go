package config

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	httputil "github.com/lepinkainen/newsfeed/pkg/http"
)

// LoaderConfig represents configuration loading options
type LoaderConfig struct {
	RemoteURL         string
	LocalPath         string
	Timeout           time.Duration
	FallbackToDefault bool
}

// DefaultLoaderConfig returns default loader configuration
func DefaultLoaderConfig() *LoaderConfig {
	return &LoaderConfig{
		Timeout:           10 * time.Second,
		FallbackToDefault: true,
	}
}

// LoadFromURLWithFallback loads configuration from URL with local fallback.
// It reports whether anything was loaded into target.
func LoadFromURLWithFallback(ctx context.Context, config *LoaderConfig, target any) (bool, error) {
	var errs []error

	if config.RemoteURL != "" {
		err := loadFromURL(ctx, config.RemoteURL, config.Timeout, target)
		if err == nil {
			return true, nil
		}
		errs = append(errs, err)
	}

	if config.LocalPath != "" {
		err := loadFromFile(config.LocalPath, target)
		if err == nil {
			return true, nil
		}
		errs = append(errs, err)
	}

	if !config.FallbackToDefault && len(errs) > 0 {
		return false, fmt.Errorf("failed to load configuration from URL and local file: %w", errs[len(errs)-1])
	}

	return false, nil
}

// loadFromURL loads configuration from a remote URL using shared HTTP utilities
func loadFromURL(ctx context.Context, url string, timeout time.Duration, target any) error {
	httpConfig := httputil.DefaultConfig()
	httpConfig.Timeout = timeout

	client := httputil.NewClient(httpConfig)
	data, err := client.Fetch(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("failed to fetch config from URL: %w", err)
	}

	if err := decode(url, data, target); err != nil {
		return fmt.Errorf("failed to decode configuration: %w", err)
	}

	return nil
}

// loadFromFile loads configuration from a local JSON or YAML file
func loadFromFile(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", path, err)
	}

	return decode(path, data, target)
}

func decode(name string, data []byte, target any) error {
	switch detectFormat(name, data) {
	case "json":
		if err := json.Unmarshal(data, target); err != nil {
			return fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, target); err != nil {
			return fmt.Errorf("failed to parse YAML: %w", err)
		}
	}
	return nil
}

// detectFormat picks json or yaml from the file extension, then from the content.
func detectFormat(path string, data []byte) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return "json"
	}
	return "yaml"
}
