// Package main provides the CLI entry point for newsfeed.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lepinkainen/newsfeed/internal/config"
	"github.com/lepinkainen/newsfeed/internal/credentials"
	"github.com/lepinkainen/newsfeed/pkg/filesystem"
	"github.com/lepinkainen/newsfeed/pkg/preview"
)

// CLI structure
var CLI struct {
	Config  string `help:"Configuration file path" default:"config.yaml"`
	Debug   bool   `help:"Enable debug logging" default:"false"`
	LogFile string `help:"Log file used while the interactive view runs (default: newsfeed.log next to the binary)"`
	EnvFile string `help:"Dotenv file with API keys" default:".env"`

	Limit     int           `help:"Articles kept overall, 0 keeps all (overrides display_limit)" default:"-1"`
	PerSource int           `help:"Articles read from each source (overrides per_source_limit)" default:"-1"`
	Interval  time.Duration `help:"Time between refreshes (overrides update_frequency_seconds)"`

	Run struct{} `cmd:"" default:"1" help:"Show the latest headlines and keep them up to date."`

	List struct{} `cmd:"" help:"Fetch all sources once and print the headlines."`

	Sources struct{} `cmd:"" help:"Show how each configured source is read."`

	InitConfig struct {
		Force bool `help:"Overwrite an existing configuration file"`
	} `cmd:"init-config" help:"Write a configuration file with the default settings."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("newsfeed"),
		kong.Description("Terminal news headline aggregator."),
	)

	// Configure logging level based on debug flag
	level := slog.LevelWarn
	if CLI.Debug {
		level = slog.LevelDebug
	}
	slog.SetLogLoggerLevel(level)

	if err := credentials.LoadDotEnv(CLI.EnvFile); err != nil {
		slog.Warn("Failed to load env file", "path", CLI.EnvFile, "error", err)
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch ctx.Command() {
	case "run":
		err = runInteractive(runCtx, level)
	case "list":
		err = runList(runCtx)
	case "sources":
		err = runSources(runCtx)
	case "init-config":
		err = initConfig(CLI.Config, CLI.InitConfig.Force)
	default:
		panic(ctx.Command())
	}

	if err != nil {
		slog.Error("Command failed", "command", ctx.Command(), "error", err)
		stop()
		os.Exit(1)
	}
}

// overrides are the CLI flags that replace configuration values when set.
type overrides struct {
	Limit     int
	PerSource int
	Interval  time.Duration
}

func (o overrides) apply(cfg *config.Config) {
	if o.Limit >= 0 {
		cfg.DisplayLimit = o.Limit
	}
	if o.PerSource >= 0 {
		cfg.PerSourceLimit = o.PerSource
	}
	if o.Interval > 0 {
		cfg.UpdateFrequencySeconds = max(1, int(o.Interval/time.Second))
	}
}

// setup loads the configuration and wires the application.
func setup(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig(CLI.Config)
	if err != nil {
		return nil, err
	}
	overrides{Limit: CLI.Limit, PerSource: CLI.PerSource, Interval: CLI.Interval}.apply(cfg)

	slog.Debug("Loaded configuration", "sources", len(cfg.Sources), "interval", cfg.UpdateInterval())
	return newApp(ctx, cfg, credentials.Env{})
}

// runInteractive starts the scheduler and the TUI. Logs go to a file so they
// do not draw over the alternate screen.
func runInteractive(ctx context.Context, level slog.Level) error {
	logFile, err := filesystem.OpenLogFile(CLI.LogFile)
	if err != nil {
		return err
	}
	defer logFile.Close()
	slog.SetDefault(slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: level})))

	a, err := setup(ctx)
	if err != nil {
		return err
	}

	sched := a.scheduler()
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer func() {
		sched.Stop()
		sched.Wait()
	}()

	err = preview.Run(ctx, a.aggregator, sched, a.config.DisplayLimit)
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func runList(ctx context.Context) error {
	a, err := setup(ctx)
	if err != nil {
		return err
	}

	articles := a.aggregator.Latest(ctx, a.config.DisplayLimit)
	if err := preview.PrintList(os.Stdout, articles); err != nil {
		return err
	}
	return preview.PrintStats(os.Stderr, a.aggregator.Stats())
}

func runSources(ctx context.Context) error {
	a, err := setup(ctx)
	if err != nil {
		return err
	}
	return a.printSources(os.Stdout)
}

// initConfig writes the default configuration to path.
func initConfig(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists, use --force to overwrite", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to check %s: %w", path, err)
		}
	}

	cfg, err := config.Default()
	if err != nil {
		return err
	}
	if err := config.SaveConfig(cfg, path); err != nil {
		return err
	}

	fmt.Printf("Wrote %s\n", path)
	return nil
}
