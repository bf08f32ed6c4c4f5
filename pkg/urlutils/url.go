// Package urlutils provides URL helpers for source and article links.
package urlutils

import (
	"fmt"
	"net/url"
)

// IsValidURL reports whether urlStr is an absolute URL with a host.
func IsValidURL(urlStr string) bool {
	u, err := url.Parse(urlStr)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// ResolveURL resolves a relative URL against a base URL.
// Absolute URLs, and any URL when base is empty, are returned unchanged.
func ResolveURL(baseURL, relativeURL string) (string, error) {
	rel, err := url.Parse(relativeURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", relativeURL, err)
	}
	if rel.IsAbs() || baseURL == "" {
		return relativeURL, nil
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}

	return base.ResolveReference(rel).String(), nil
}
