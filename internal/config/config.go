// Package config loads the application configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/lepinkainen/newsfeed/pkg/filesystem"
	httputil "github.com/lepinkainen/newsfeed/pkg/http"
	"github.com/lepinkainen/newsfeed/pkg/urlutils"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "config.yaml"

// DefaultSources are read when the configuration does not list any.
var DefaultSources = []string{
	"https://newsapi.org/v2/top-headlines?sources=reuters,bbc-news,cnn",
	"https://www.hs.fi/rss/tuoreimmat.xml",
	"https://www.is.fi/rss/tuoreimmat.xml",
	"https://feeds.yle.fi/uutiset/v1/recent.rss?publisherIds=YLE_UUTISET",
	"https://feeds.kauppalehti.fi/rss/main",
}

// Config holds the central application configuration
type Config struct {
	Sources []string `mapstructure:"sources"` // Source URLs in display order

	DateFormat             string `mapstructure:"date_format"`              // strftime pattern for publish times
	UpdateFrequencySeconds int    `mapstructure:"update_frequency_seconds"` // Seconds between refreshes
	PerSourceLimit         int    `mapstructure:"per_source_limit"`         // Articles read from each source
	DisplayLimit           int    `mapstructure:"display_limit"`            // Articles kept overall, 0 keeps all
	FetchTimeoutSeconds    int    `mapstructure:"fetch_timeout_seconds"`    // Timeout per source
	Concurrency            int    `mapstructure:"concurrency"`              // Sources fetched in parallel

	UserAgent    string `mapstructure:"user_agent"`
	DialectsFile string `mapstructure:"dialects_file"` // Local path or URL of the dialect table
	APIKeyEnv    string `mapstructure:"api_key_env"`   // Environment variable holding the newsapi.org key
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("sources", DefaultSources)
	v.SetDefault("date_format", "%d.%m.%Y %H:%M:%S")
	v.SetDefault("update_frequency_seconds", 300)
	v.SetDefault("per_source_limit", 10)
	v.SetDefault("display_limit", 0)
	v.SetDefault("fetch_timeout_seconds", 5)
	v.SetDefault("concurrency", 4)
	v.SetDefault("user_agent", httputil.DefaultUserAgent)
	v.SetDefault("dialects_file", "")
	v.SetDefault("api_key_env", "NEWSAPI_ORG_KEY")
}

// Default returns the configuration used when no file is present.
func Default() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling defaults: %w", err)
	}
	return &config, nil
}

// LoadConfig loads the configuration from a file. A missing file is not an error;
// the defaults are used instead.
func LoadConfig(path string) (*Config, error) {
	path = resolvePath(path)

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &config, nil
}

// resolvePath returns path as is when it exists or is absolute, and otherwise the
// same name next to the executable if that exists.
func resolvePath(path string) string {
	if path == "" {
		path = DefaultPath
	}
	if filepath.IsAbs(path) {
		return path
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	if execPath, err := filesystem.GetDefaultPath(path); err == nil {
		if _, err := os.Stat(execPath); err == nil {
			return execPath
		}
	}
	return path
}

// Validate checks the configuration for values the application cannot run with.
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return errors.New("at least one source is required")
	}
	for _, source := range c.Sources {
		if !urlutils.IsValidURL(source) {
			return fmt.Errorf("invalid source URL %q", source)
		}
	}
	if c.UpdateFrequencySeconds <= 0 {
		return fmt.Errorf("update_frequency_seconds must be positive, got %d", c.UpdateFrequencySeconds)
	}
	if c.PerSourceLimit < 0 {
		return fmt.Errorf("per_source_limit must not be negative, got %d", c.PerSourceLimit)
	}
	if c.DisplayLimit < 0 {
		return fmt.Errorf("display_limit must not be negative, got %d", c.DisplayLimit)
	}
	if c.FetchTimeoutSeconds <= 0 {
		return fmt.Errorf("fetch_timeout_seconds must be positive, got %d", c.FetchTimeoutSeconds)
	}
	return nil
}

// UpdateInterval is the time between scheduled refreshes.
func (c *Config) UpdateInterval() time.Duration {
	return time.Duration(c.UpdateFrequencySeconds) * time.Second
}

// FetchTimeout is the time one source may take.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// SaveConfig writes the configuration to path as YAML.
func SaveConfig(config *Config, path string) error {
	if path == "" {
		path = DefaultPath
	}
	if err := filesystem.EnsureDirectoryExists(path); err != nil {
		return err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("sources", config.Sources)
	v.Set("date_format", config.DateFormat)
	v.Set("update_frequency_seconds", config.UpdateFrequencySeconds)
	v.Set("per_source_limit", config.PerSourceLimit)
	v.Set("display_limit", config.DisplayLimit)
	v.Set("fetch_timeout_seconds", config.FetchTimeoutSeconds)
	v.Set("concurrency", config.Concurrency)
	v.Set("user_agent", config.UserAgent)
	v.Set("dialects_file", config.DialectsFile)
	v.Set("api_key_env", config.APIKeyEnv)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}
