package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/assetpipe/internal/config"
	"git.home.luguber.info/inful/assetpipe/internal/events"
	"git.home.luguber.info/inful/assetpipe/internal/fingerprint"
	"git.home.luguber.info/inful/assetpipe/internal/gitmeta"
	"git.home.luguber.info/inful/assetpipe/internal/history"
	"git.home.luguber.info/inful/assetpipe/internal/lifecycle"
	"git.home.luguber.info/inful/assetpipe/internal/metrics"
	"git.home.luguber.info/inful/assetpipe/internal/version"
	"git.home.luguber.info/inful/assetpipe/internal/watch"
)

var CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"assetpipe.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `help:"Print version and exit"`

	Publish struct {
		Output string `short:"o" help:"Override the build output directory"`
	} `cmd:"" help:"Publish the build output once and exit"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Watch struct {
		Output string `short:"o" help:"Override the build output directory"`
	} `cmd:"" help:"Watch the build output and republish on changes"`

	History struct {
		Limit int    `short:"n" help:"Number of records to show" default:"10"`
		Cycle string `help:"Show records for one cycle ID"`
	} `cmd:"" help:"Show recent publish cycles"`
}

func main() {
	ctx := kong.Parse(&CLI, kong.Vars{"version": version.Version})

	switch ctx.Command() {
	case "publish":
		cfg := loadConfig()
		if CLI.Publish.Output != "" {
			cfg.Output = CLI.Publish.Output
		}
		if err := runPublish(cfg); err != nil {
			slog.Error("Publish failed", "error", err)
			os.Exit(1)
		}
	case "init":
		cfg := &config.Config{}
		cfg.SetupLogging(CLI.Verbose)
		slog.Info("Initializing configuration", "path", CLI.Config, "force", CLI.Init.Force)
		if err := config.Init(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", "error", err)
			os.Exit(1)
		}
	case "watch":
		cfg := loadConfig()
		if CLI.Watch.Output != "" {
			cfg.Output = CLI.Watch.Output
		}
		if err := runWatch(cfg); err != nil {
			slog.Error("Watch failed", "error", err)
			os.Exit(1)
		}
	case "history":
		cfg := loadConfig()
		if err := runHistory(cfg, CLI.History.Limit, CLI.History.Cycle); err != nil {
			slog.Error("History failed", "error", err)
			os.Exit(1)
		}
	}
}

func loadConfig() *config.Config {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	cfg.SetupLogging(CLI.Verbose)
	return cfg
}

func runPublish(cfg *config.Config) error {
	hooks, cleanup, err := finalizeHooks(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	cycle := &lifecycle.Cycle{Config: cfg}
	runner := lifecycle.NewRunner(lifecycle.DefaultStages(hooks...)...)
	if err := runner.Run(context.Background(), cycle); err != nil {
		return err
	}

	if cycle.Skipped {
		return nil
	}
	slog.Info("Publish complete",
		slog.String("cycle_id", cycle.Result.CycleID),
		slog.Int("uploaded", cycle.Result.Uploaded),
		slog.Int("cache_hits", cycle.Result.CacheHits),
		slog.Duration("duration", cycle.Result.Duration))
	return nil
}

func runWatch(cfg *config.Config) error {
	hooks, cleanup, err := finalizeHooks(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	recorder := newRecorder(cfg)

	runCycle := func(ctx context.Context) error {
		cycle := &lifecycle.Cycle{Config: cfg, Recorder: recorder}
		runner := lifecycle.NewRunner(lifecycle.DefaultStages(hooks...)...)
		return runner.Run(ctx, cycle)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Publish once up front so a watch session never starts stale.
	if err := runCycle(ctx); err != nil {
		slog.Error("Initial publish failed", "error", err)
	}

	watcher, err := watch.NewWatcher(cfg.Output, cfg.Watch.Debounce, runCycle)
	if err != nil {
		return err
	}
	watcher.Ignore(cfg.Manifest.FileName())
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer watcher.Stop()

	if cfg.Watch.RepublishInterval > 0 {
		scheduler, err := watch.NewScheduler(runCycle)
		if err != nil {
			return err
		}
		if err := scheduler.Start(ctx, cfg.Watch.RepublishInterval); err != nil {
			return err
		}
		defer scheduler.Stop() //nolint:errcheck // shutdown on exit
	}

	<-ctx.Done()
	slog.Info("Shutting down")
	return nil
}

func runHistory(cfg *config.Config, limit int, cycleID string) error {
	if !cfg.History.Enabled {
		return fmt.Errorf("history is not enabled in the configuration")
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	var records []history.Record
	if cycleID != "" {
		records, err = store.ByCycleID(ctx, cycleID)
	} else {
		records, err = store.Recent(ctx, limit)
	}
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("no publish records")
		return nil
	}
	for _, r := range records {
		commit := r.Commit
		if len(commit) > 8 {
			commit = commit[:8]
		}
		fmt.Printf("%s  %s  commit=%s uploaded=%d cache_hits=%d duration=%s\n",
			r.FinishedAt.Format(time.RFC3339), r.CycleID, commit,
			r.Uploaded, r.CacheHits, time.Duration(r.DurationMS)*time.Millisecond)
	}
	return nil
}

// finalizeHooks wires the optional post-publish collaborators: history
// recording and NATS notification. The returned cleanup closes them.
func finalizeHooks(cfg *config.Config) ([]func(context.Context, *lifecycle.Cycle) error, func(), error) {
	var hooks []func(context.Context, *lifecycle.Cycle) error
	var closers []func()

	meta := describeRepo(cfg.Output)

	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { store.Close() })
		hooks = append(hooks, func(ctx context.Context, cycle *lifecycle.Cycle) error {
			r := cycle.Result
			return store.Append(ctx, history.Record{
				CycleID:     r.CycleID,
				Commit:      meta.Commit,
				Uploaded:    r.Uploaded,
				CacheHits:   r.CacheHits,
				LeftLocal:   r.LeftLocal,
				DurationMS:  r.Duration.Milliseconds(),
				ManifestSum: fingerprint.Sum(r.ManifestJSON),
				URLs:        r.URLs,
			})
		})
	}

	if cfg.Events.Enabled {
		notifier, err := events.NewNotifier(cfg.Events.URL, cfg.Events.Subject)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, notifier.Close)
		hooks = append(hooks, func(_ context.Context, cycle *lifecycle.Cycle) error {
			r := cycle.Result
			return notifier.Publish(events.PublishEvent{
				CycleID:     r.CycleID,
				Commit:      meta.Commit,
				Uploaded:    r.Uploaded,
				CacheHits:   r.CacheHits,
				ManifestSum: fingerprint.Sum(r.ManifestJSON),
				URLs:        r.URLs,
			})
		})
	}

	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}
	return hooks, cleanup, nil
}

func describeRepo(dir string) gitmeta.Meta {
	meta, err := gitmeta.Describe(dir)
	if err != nil {
		slog.Debug("No repository metadata", "error", err)
		return gitmeta.Meta{}
	}
	return *meta
}

func newRecorder(cfg *config.Config) metrics.Recorder {
	if !cfg.Metrics.Enabled {
		return metrics.NoopRecorder{}
	}
	reg := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(reg)
	metrics.NewServer(cfg.Metrics.Listen, reg)
	return recorder
}
