// Package configs provides embedded configuration files for newsfeed.
package configs

import "embed"

// DefaultDialectsFile is the name of the built-in dialect table.
const DefaultDialectsFile = "sources.yaml"

// EmbeddedConfigs exposes embedded configuration files for read-only access.
//
//go:embed *.yaml
var EmbeddedConfigs embed.FS
