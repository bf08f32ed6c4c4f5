// Package config loads the source dialect table.
package config

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lepinkainen/newsfeed/configs"
)

// NameSplit describes a split-and-take rule for feed titles.
type NameSplit struct {
	Delimiter string `json:"delimiter" yaml:"delimiter"`
	Index     int    `json:"index" yaml:"index"`
}

// DialectConfig maps one or more domains to an adapter kind and its parameters.
type DialectConfig struct {
	Domains    []string   `json:"domains" yaml:"domains"`
	Kind       string     `json:"kind" yaml:"kind"`
	NameSplit  *NameSplit `json:"name_split,omitempty" yaml:"name_split,omitempty"`
	DateFormat string     `json:"date_format,omitempty" yaml:"date_format,omitempty"`
	Credential string     `json:"credential,omitempty" yaml:"credential,omitempty"`
}

// DialectTable is the full domain -> dialect configuration.
type DialectTable struct {
	Dialects []DialectConfig `json:"dialects" yaml:"dialects"`
}

// Validate checks that every entry names a kind and at least one domain, and that
// no domain is listed twice.
func (t *DialectTable) Validate() error {
	seen := make(map[string]bool)
	for i, d := range t.Dialects {
		if d.Kind == "" {
			return fmt.Errorf("dialect %d: kind is required", i)
		}
		if len(d.Domains) == 0 {
			return fmt.Errorf("dialect %d (%s): at least one domain is required", i, d.Kind)
		}
		for _, domain := range d.Domains {
			domain = strings.ToLower(strings.TrimSpace(domain))
			if domain == "" {
				return fmt.Errorf("dialect %d (%s): empty domain", i, d.Kind)
			}
			if seen[domain] {
				return fmt.Errorf("dialect %d (%s): domain %s is listed twice", i, d.Kind, domain)
			}
			seen[domain] = true
		}
		if d.NameSplit != nil && d.NameSplit.Delimiter == "" {
			return fmt.Errorf("dialect %d (%s): name_split needs a delimiter", i, d.Kind)
		}
	}
	return nil
}

// DefaultDialects returns the dialect table embedded in the binary.
func DefaultDialects() (*DialectTable, error) {
	data, err := configs.EmbeddedConfigs.ReadFile(configs.DefaultDialectsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded dialects: %w", err)
	}

	var table DialectTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse embedded dialects: %w", err)
	}
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("embedded dialects: %w", err)
	}
	return &table, nil
}

// LoadDialects loads the dialect table from location, which may be a local file
// or an http(s) URL. An empty location, or one that cannot be read, falls back to
// the embedded table. A table that loads but does not validate is an error.
func LoadDialects(ctx context.Context, location string) (*DialectTable, error) {
	if location == "" {
		return DefaultDialects()
	}

	loader := DefaultLoaderConfig()
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		loader.RemoteURL = location
	} else {
		loader.LocalPath = location
	}

	var table DialectTable
	loaded, err := LoadFromURLWithFallback(ctx, loader, &table)
	if err != nil {
		return nil, err
	}
	if !loaded {
		slog.Warn("Dialect table not available, using built-in table", "location", location)
		return DefaultDialects()
	}

	if len(table.Dialects) == 0 {
		return nil, fmt.Errorf("dialect table %s has no dialects", location)
	}
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("dialect table %s: %w", location, err)
	}

	slog.Debug("Loaded dialect table", "location", location, "dialects", len(table.Dialects))
	return &table, nil
}
