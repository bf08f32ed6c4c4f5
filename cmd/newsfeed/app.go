package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/lepinkainen/newsfeed/internal/config"
	"github.com/lepinkainen/newsfeed/internal/credentials"
	"github.com/lepinkainen/newsfeed/pkg/adapter"
	"github.com/lepinkainen/newsfeed/pkg/aggregator"
	dialects "github.com/lepinkainen/newsfeed/pkg/config"
	httputil "github.com/lepinkainen/newsfeed/pkg/http"
	"github.com/lepinkainen/newsfeed/pkg/resolver"
	"github.com/lepinkainen/newsfeed/pkg/scheduler"
	"github.com/lepinkainen/newsfeed/pkg/textnorm"
)

// app is the wired object graph shared by all commands.
type app struct {
	config     *config.Config
	resolver   *resolver.Resolver
	aggregator *aggregator.Aggregator
}

// newApp builds transport, resolver and aggregator from the configuration.
func newApp(ctx context.Context, cfg *config.Config, creds adapter.CredentialLookup) (*app, error) {
	layout, err := textnorm.LayoutFromStrftime(cfg.DateFormat)
	if err != nil {
		return nil, err
	}

	table, err := dialects.LoadDialects(ctx, cfg.DialectsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load dialects: %w", err)
	}

	if cfg.APIKeyEnv != "" && cfg.APIKeyEnv != credentials.NewsAPIKey {
		creds = credentials.Renamed{
			Source: creds,
			Names:  map[string]string{credentials.NewsAPIKey: cfg.APIKeyEnv},
		}
	}

	res, err := resolver.New(table, nil, adapter.Deps{Credentials: creds, UserAgent: cfg.UserAgent}, layout)
	if err != nil {
		return nil, fmt.Errorf("failed to build resolver: %w", err)
	}

	client := httputil.NewClient(&httputil.ClientConfig{
		Timeout:     cfg.FetchTimeout(),
		UserAgent:   cfg.UserAgent,
		Headers:     map[string]string{},
		MaxBodySize: httputil.DefaultMaxBodySize,
	})

	agg := aggregator.New(aggregator.Config{
		Sources:        cfg.Sources,
		PerSourceLimit: cfg.PerSourceLimit,
		OverallLimit:   cfg.DisplayLimit,
		FetchTimeout:   cfg.FetchTimeout(),
		Concurrency:    cfg.Concurrency,
	}, res, client)

	return &app{config: cfg, resolver: res, aggregator: agg}, nil
}

// refresh is the scheduler's refresh function.
func (a *app) refresh(ctx context.Context) (bool, error) {
	return a.aggregator.Refresh(ctx, a.config.PerSourceLimit, a.config.DisplayLimit)
}

func (a *app) scheduler() *scheduler.Scheduler {
	return scheduler.New(scheduler.Config{Interval: a.config.UpdateInterval()}, a.refresh)
}

// printSources writes how each configured source is resolved.
func (a *app) printSources(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DOMAIN\tKIND\tKNOWN\tNAME CLEANUP\tURL")
	for _, source := range a.config.Sources {
		res := a.resolver.Resolve(source)
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\t%s\n",
			res.Domain, res.Dialect.Kind, res.Known, describeCleanup(res.Dialect.Cleanup), source)
	}
	return tw.Flush()
}

func describeCleanup(c adapter.NameCleanup) string {
	if c.Kind != adapter.CleanupSplit {
		return "-"
	}
	return fmt.Sprintf("split %q [%d]", c.Delimiter, c.Index)
}
