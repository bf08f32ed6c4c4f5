// Package credentials looks up API keys for sources that need them.
package credentials

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// NewsAPIKey is the variable holding the newsapi.org key.
const NewsAPIKey = "NEWSAPI_ORG_KEY"

// Env reads credentials from the process environment.
type Env struct{}

// Lookup returns the named value. Empty values count as missing.
func (Env) Lookup(name string) (string, bool) {
	value, ok := os.LookupEnv(name)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// Static serves credentials from a fixed map.
type Static map[string]string

// Lookup returns the named value. Empty values count as missing.
func (s Static) Lookup(name string) (string, bool) {
	value, ok := s[name]
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// Lookup resolves a credential by name.
type Lookup interface {
	Lookup(name string) (string, bool)
}

// Renamed reads some credentials under a different name, so a key can live in
// a variable of the user's choosing.
type Renamed struct {
	Source Lookup
	Names  map[string]string
}

// Lookup maps name through Names and asks Source.
func (r Renamed) Lookup(name string) (string, bool) {
	if renamed, ok := r.Names[name]; ok && renamed != "" {
		name = renamed
	}
	return r.Source.Lookup(name)
}

// LoadDotEnv loads variables from the given .env files into the environment.
// Variables that are already set win. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				slog.Debug("No env file found", "path", path)
				continue
			}
			return fmt.Errorf("failed to load env file %s: %w", path, err)
		}
		slog.Debug("Loaded env file", "path", path)
	}
	return nil
}
