// Package aggregator merges the articles of all configured sources into one
// time-ordered list.
package aggregator

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lepinkainen/newsfeed/pkg/feedtypes"
	"github.com/lepinkainen/newsfeed/pkg/resolver"
)

// ErrRefreshInProgress is returned when Refresh is called while another refresh is running.
var ErrRefreshInProgress = errors.New("refresh already in progress")

// ErrSourceStatus is returned for sources that answer with a non-ok status payload.
var ErrSourceStatus = errors.New("source returned an error status")

// Fetcher downloads a raw document.
type Fetcher interface {
	Fetch(ctx context.Context, url string, headers map[string]string) ([]byte, error)
}

// SourceResolver picks the adapter for a source URL.
type SourceResolver interface {
	Resolve(sourceURL string) resolver.Resolution
}

// Config holds aggregator settings
type Config struct {
	Sources []string
	// PerSourceLimit and OverallLimit are used by Latest when it has to refresh on its own.
	PerSourceLimit int
	OverallLimit   int
	// FetchTimeout bounds each source separately. Zero means no extra timeout.
	FetchTimeout time.Duration
	// Concurrency is the number of sources fetched at once. Zero or less means all of them.
	Concurrency int
}

// State is one published snapshot. It must not be modified.
type State struct {
	Articles    []feedtypes.Article
	RefreshedAt time.Time
}

// SourceResult describes how one source did in the last refresh.
type SourceResult struct {
	URL      string
	Domain   string
	Name     string
	Articles int
	Err      string
	Duration time.Duration
}

// Failed reports whether the source contributed nothing because of an error.
func (r SourceResult) Failed() bool {
	return r.Err != ""
}

// Aggregator owns the merged article list. Refresh is the only writer; readers
// get snapshots that are replaced as a whole.
type Aggregator struct {
	config   Config
	resolver SourceResolver
	fetcher  Fetcher

	state      atomic.Pointer[State]
	stats      atomic.Pointer[[]SourceResult]
	refreshing atomic.Bool
}

// New creates an aggregator over the configured sources.
func New(config Config, resolver SourceResolver, fetcher Fetcher) *Aggregator {
	config.Sources = slices.Clone(config.Sources)
	return &Aggregator{
		config:   config,
		resolver: resolver,
		fetcher:  fetcher,
	}
}

// Refresh fetches every source, merges the results oldest first and keeps the
// overallLimit most recent articles (all when overallLimit <= 0). It reports whether
// the published list changed. Failing sources contribute no articles. If every
// source fails the previous list is kept.
func (a *Aggregator) Refresh(ctx context.Context, perSourceLimit, overallLimit int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if !a.refreshing.CompareAndSwap(false, true) {
		return false, ErrRefreshInProgress
	}
	defer a.refreshing.Store(false)

	start := time.Now()
	results := make([]SourceResult, len(a.config.Sources))
	fetched := make([][]feedtypes.Article, len(a.config.Sources))

	// Source errors are recorded in results and never returned, so one failure
	// does not cancel the others.
	var g errgroup.Group
	if a.config.Concurrency > 0 {
		g.SetLimit(a.config.Concurrency)
	}
	for i, sourceURL := range a.config.Sources {
		g.Go(func() error {
			fetched[i], results[i] = a.fetchSource(ctx, sourceURL, perSourceLimit)
			return nil
		})
	}
	_ = g.Wait()

	a.stats.Store(&results)

	failed := 0
	var merged []feedtypes.Article
	for i, articles := range fetched {
		if results[i].Failed() {
			failed++
		}
		merged = append(merged, articles...)
	}

	previous := a.state.Load()
	if len(a.config.Sources) > 0 && failed == len(a.config.Sources) {
		slog.Warn("All sources failed, keeping previous articles", "sources", failed)
		if previous == nil {
			a.state.Store(&State{RefreshedAt: time.Now()})
		}
		return false, nil
	}

	slices.SortStableFunc(merged, func(x, y feedtypes.Article) int {
		return cmp.Compare(x.PublishedAtTimestamp, y.PublishedAtTimestamp)
	})
	if overallLimit > 0 && len(merged) > overallLimit {
		merged = slices.Clone(merged[len(merged)-overallLimit:])
	}

	var previousArticles []feedtypes.Article
	if previous != nil {
		previousArticles = previous.Articles
	}
	changed := !slices.Equal(previousArticles, merged)

	a.state.Store(&State{Articles: merged, RefreshedAt: time.Now()})

	slog.Debug("Refresh complete",
		"sources", len(a.config.Sources),
		"failed", failed,
		"articles", len(merged),
		"changed", changed,
		"duration", time.Since(start))

	return changed, nil
}

func (a *Aggregator) fetchSource(ctx context.Context, sourceURL string, limit int) ([]feedtypes.Article, SourceResult) {
	start := time.Now()
	res := a.resolver.Resolve(sourceURL)
	result := SourceResult{URL: sourceURL, Domain: res.Domain}

	articles, err := a.readSource(ctx, res, sourceURL, limit)
	result.Duration = time.Since(start)
	if err != nil {
		slog.Warn("Source failed", "url", sourceURL, "kind", res.Dialect.Kind, "error", err)
		result.Err = err.Error()
		return nil, result
	}

	result.Articles = len(articles)
	if len(articles) > 0 {
		result.Name = articles[0].Source.Name
	}
	slog.Debug("Source fetched", "url", sourceURL, "articles", len(articles), "duration", result.Duration)
	return articles, result
}

func (a *Aggregator) readSource(ctx context.Context, res resolver.Resolution, sourceURL string, limit int) ([]feedtypes.Article, error) {
	req, err := res.Adapter.Request(sourceURL, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	if a.config.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.FetchTimeout)
		defer cancel()
	}

	raw, err := a.fetcher.Fetch(ctx, req.URL, req.Headers)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}

	resp, err := res.Adapter.Parse(raw, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to parse: %w", err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%w: %s (%s) %s", ErrSourceStatus, resp.Status, resp.Code, resp.Message)
	}

	return resp.Articles, nil
}

// Latest returns the limit most recent articles, oldest first, or all of them when
// limit <= 0. If no refresh has run yet it runs one first.
func (a *Aggregator) Latest(ctx context.Context, limit int) []feedtypes.Article {
	if a.state.Load() == nil {
		if _, err := a.Refresh(ctx, a.config.PerSourceLimit, a.config.OverallLimit); err != nil {
			slog.Debug("Initial refresh skipped", "error", err)
		}
	}

	articles := a.Snapshot().Articles
	if limit > 0 && len(articles) > limit {
		articles = articles[len(articles)-limit:]
	}
	return articles
}

// Snapshot returns a copy of the current state. Before the first refresh it is empty.
func (a *Aggregator) Snapshot() State {
	s := a.state.Load()
	if s == nil {
		return State{}
	}
	return State{Articles: slices.Clone(s.Articles), RefreshedAt: s.RefreshedAt}
}

// Refreshed reports whether at least one refresh has completed.
func (a *Aggregator) Refreshed() bool {
	return a.state.Load() != nil
}

// Stats returns the per-source outcome of the last refresh, in source order.
func (a *Aggregator) Stats() []SourceResult {
	s := a.stats.Load()
	if s == nil {
		return nil
	}
	return slices.Clone(*s)
}

// Sources returns the configured source URLs.
func (a *Aggregator) Sources() []string {
	return slices.Clone(a.config.Sources)
}
