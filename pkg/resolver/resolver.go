// Package resolver maps source URLs to the adapter that understands them.
package resolver

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/lepinkainen/newsfeed/pkg/adapter"
	"github.com/lepinkainen/newsfeed/pkg/config"
	"github.com/lepinkainen/newsfeed/pkg/textnorm"
)

// Resolution is the adapter and dialect chosen for one source.
type Resolution struct {
	Domain  string
	Dialect adapter.Dialect
	Adapter adapter.Adapter
	// Known is false when the domain is not in the dialect table and the generic RSS adapter is used.
	Known bool
}

// Resolver holds one adapter per configured domain, all built up front.
type Resolver struct {
	byDomain map[string]Resolution
	fallback Resolution
}

// Domain returns the part of sourceURL between the second and third slash, or "" if there is none.
func Domain(sourceURL string) string {
	parts := strings.SplitN(sourceURL, "/", 4)
	if len(parts) < 3 {
		return ""
	}
	return parts[2]
}

// New builds adapters for every dialect in table. defaultLayout is the Go layout
// used by dialects without their own date format.
func New(table *config.DialectTable, registry *adapter.Registry, deps adapter.Deps, defaultLayout string) (*Resolver, error) {
	if registry == nil {
		registry = adapter.DefaultRegistry
	}
	if defaultLayout == "" {
		defaultLayout = textnorm.DefaultLayout
	}

	fallbackDialect := adapter.Dialect{Kind: adapter.KindRSS, Layout: defaultLayout}
	fallback, err := registry.Create(fallbackDialect, deps)
	if err != nil {
		return nil, fmt.Errorf("failed to create fallback adapter: %w", err)
	}

	r := &Resolver{
		byDomain: make(map[string]Resolution),
		fallback: Resolution{Dialect: fallbackDialect, Adapter: fallback},
	}

	if table == nil {
		return r, nil
	}

	for i, dc := range table.Dialects {
		dialect, err := toDialect(dc, defaultLayout)
		if err != nil {
			return nil, fmt.Errorf("dialect %d (%s): %w", i, dc.Kind, err)
		}

		a, err := registry.Create(dialect, deps)
		if err != nil {
			return nil, fmt.Errorf("dialect %d (%s): %w", i, dc.Kind, err)
		}

		for _, domain := range dc.Domains {
			key := normalizeDomain(domain)
			if _, exists := r.byDomain[key]; exists {
				return nil, fmt.Errorf("domain %s is configured twice", key)
			}
			r.byDomain[key] = Resolution{Domain: key, Dialect: dialect, Adapter: a, Known: true}
		}
	}

	return r, nil
}

// Resolve picks the adapter for sourceURL. Unknown domains get the generic RSS
// adapter without name cleanup.
func (r *Resolver) Resolve(sourceURL string) Resolution {
	domain := normalizeDomain(Domain(sourceURL))
	if res, ok := r.byDomain[domain]; ok {
		return res
	}

	res := r.fallback
	res.Domain = domain
	return res
}

// Domains lists the configured domains in sorted order.
func (r *Resolver) Domains() []string {
	return slices.Sorted(maps.Keys(r.byDomain))
}

func toDialect(dc config.DialectConfig, defaultLayout string) (adapter.Dialect, error) {
	layout := defaultLayout
	if dc.DateFormat != "" {
		l, err := textnorm.LayoutFromStrftime(dc.DateFormat)
		if err != nil {
			return adapter.Dialect{}, err
		}
		layout = l
	}

	dialect := adapter.Dialect{
		Kind:           dc.Kind,
		Layout:         layout,
		CredentialName: dc.Credential,
	}
	if dc.NameSplit != nil {
		dialect.Cleanup = adapter.SplitTake(dc.NameSplit.Delimiter, dc.NameSplit.Index)
	}
	return dialect, nil
}

func normalizeDomain(domain string) string {
	return strings.ToLower(strings.TrimSpace(domain))
}
