package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/assetpipe/internal/asset"
	"git.home.luguber.info/inful/assetpipe/internal/config"
	"git.home.luguber.info/inful/assetpipe/internal/metrics"
	"git.home.luguber.info/inful/assetpipe/internal/publish"
	"git.home.luguber.info/inful/assetpipe/internal/retry"
	"git.home.luguber.info/inful/assetpipe/internal/rewrite"
	"git.home.luguber.info/inful/assetpipe/internal/uploadcache"
	"git.home.luguber.info/inful/assetpipe/internal/uploader"
)

// InitStage resolves the upload collaborator from configuration and loads
// the persisted upload cache.
type InitStage struct{}

func (InitStage) Name() StageName           { return StageInit }
func (InitStage) Dependencies() []StageName { return nil }

func (InitStage) Execute(_ context.Context, cycle *Cycle) error {
	cfg := cycle.Config

	if cycle.Upload == nil {
		up, err := resolveUploader(cfg)
		if err != nil {
			return err
		}
		cycle.Upload = up
	}
	if cycle.Cache == nil {
		cycle.Cache = uploadcache.LoadFromDir(cfg.Output)
	}
	if cycle.Recorder == nil {
		cycle.Recorder = metrics.NoopRecorder{}
	}
	return nil
}

func resolveUploader(cfg *config.Config) (uploader.Func, error) {
	policy := retry.DefaultPolicy()
	if cfg.Upload.Retries > 0 {
		policy = retry.NewPolicy(retry.BackoffLinear, 0, 0, cfg.Upload.Retries)
	}

	switch {
	case cfg.Upload.S3 != nil:
		s3, err := uploader.NewS3(uploader.S3Config{
			Endpoint:      cfg.Upload.S3.Endpoint,
			Region:        cfg.Upload.S3.Region,
			AccessKey:     cfg.Upload.S3.AccessKey,
			SecretKey:     cfg.Upload.S3.SecretKey,
			Bucket:        cfg.Upload.S3.Bucket,
			UseSSL:        cfg.Upload.S3.UseSSL,
			Prefix:        cfg.Upload.S3.Prefix,
			PublicBaseURL: cfg.Upload.S3.PublicBaseURL,
		})
		if err != nil {
			return nil, err
		}
		return uploader.Retrying(s3.Upload, policy), nil
	case cfg.Upload.Dir != nil:
		dir, err := uploader.NewDir(cfg.Upload.Dir.Path, cfg.Upload.Dir.BaseURL)
		if err != nil {
			return nil, err
		}
		return dir.Upload, nil
	default:
		return nil, fmt.Errorf("no upload target configured")
	}
}

// ValidateStage enforces the configuration veto and the production-mode
// gate: a non-empty shared base path fails the build outright, and outside
// production mode the whole cycle is a no-op.
type ValidateStage struct{}

func (ValidateStage) Name() StageName           { return StageValidate }
func (ValidateStage) Dependencies() []StageName { return []StageName{StageInit} }

func (ValidateStage) Execute(_ context.Context, cycle *Cycle) error {
	if err := cycle.Config.Validate(); err != nil {
		return err
	}
	if !cycle.Config.IsProduction() {
		slog.Info("Not in production mode, skipping publish")
		return ErrSkipCycle
	}
	return nil
}

// PreOptimizeRewriteStage neutralizes the base-path token in each declared
// entry script before anything else reads them. This mirrors the host hook
// that runs before minification, which would restructure the token's
// syntactic pattern.
type PreOptimizeRewriteStage struct{}

func (PreOptimizeRewriteStage) Name() StageName { return StagePreOptimizeRewrite }
func (PreOptimizeRewriteStage) Dependencies() []StageName {
	return []StageName{StageValidate}
}

func (PreOptimizeRewriteStage) Execute(_ context.Context, cycle *Cycle) error {
	for _, name := range cycle.Config.Entries {
		path := filepath.Join(cycle.Config.Output, filepath.FromSlash(name))
		data, err := os.ReadFile(path) //nolint:gosec // entry names come from config
		if err != nil {
			return fmt.Errorf("read entry %s: %w", name, err)
		}

		rewritten, changed := rewrite.NeutralizeBasePath(data)
		if !changed {
			continue
		}
		if err := os.WriteFile(path, rewritten, 0644); err != nil { //nolint:gosec // build outputs are public
			return fmt.Errorf("rewrite entry %s: %w", name, err)
		}
		slog.Debug("Neutralized base path", slog.String("entry", name))
	}
	return nil
}

// CollectStage scans the build output directory and classifies its files.
type CollectStage struct{}

func (CollectStage) Name() StageName { return StageCollect }
func (CollectStage) Dependencies() []StageName {
	return []StageName{StagePreOptimizeRewrite}
}

func (CollectStage) Execute(_ context.Context, cycle *Cycle) error {
	assets, err := asset.Scan(cycle.Config.Output)
	if err != nil {
		return err
	}
	cycle.Assets = assets
	cycle.Classification = asset.Classify(assets, cycle.Config.Entries)
	return nil
}

// PublishStage runs the phased publish orchestrator.
type PublishStage struct{}

func (PublishStage) Name() StageName           { return StagePublish }
func (PublishStage) Dependencies() []StageName { return []StageName{StageCollect} }

func (PublishStage) Execute(ctx context.Context, cycle *Cycle) error {
	cfg := cycle.Config

	manifestPath := ""
	if cfg.Manifest.Enabled {
		manifestPath = filepath.Join(cfg.Output, cfg.Manifest.FileName())
	}

	orch, err := publish.New(publish.Options{
		OutputDir:      cfg.Output,
		Upload:         cycle.Upload,
		Cache:          cycle.Cache,
		KeepLocalFiles: cfg.KeepLocalFiles,
		ManifestPath:   manifestPath,
		Recorder:       cycle.Recorder,
	})
	if err != nil {
		return err
	}

	result, err := orch.Run(ctx, cycle.Classification)
	cycle.Result = result
	return err
}

// FinalizeStage runs post-publish hooks: history recording, event
// notification, whatever the caller registered.
type FinalizeStage struct {
	Hooks []func(context.Context, *Cycle) error
}

func (FinalizeStage) Name() StageName           { return StageFinalize }
func (FinalizeStage) Dependencies() []StageName { return []StageName{StagePublish} }

func (f FinalizeStage) Execute(ctx context.Context, cycle *Cycle) error {
	for _, hook := range f.Hooks {
		if err := hook(ctx, cycle); err != nil {
			return err
		}
	}
	return nil
}

// DefaultStages returns the standard lifecycle with the given finalize
// hooks.
func DefaultStages(finalizeHooks ...func(context.Context, *Cycle) error) []Stage {
	return []Stage{
		InitStage{},
		ValidateStage{},
		PreOptimizeRewriteStage{},
		CollectStage{},
		PublishStage{},
		FinalizeStage{Hooks: finalizeHooks},
	}
}
