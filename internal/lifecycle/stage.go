// Package lifecycle models the host build hooks as an explicit ordered state
// machine: Init → Validate → PreOptimizeRewrite → Collect → Publish →
// Finalize. Keeping the ordering here, behind stage dependencies, means the
// publish package's phase-barrier logic stays independent of any particular
// host's hook names.
package lifecycle

import (
	"context"

	"git.home.luguber.info/inful/assetpipe/internal/asset"
	"git.home.luguber.info/inful/assetpipe/internal/config"
	"git.home.luguber.info/inful/assetpipe/internal/metrics"
	"git.home.luguber.info/inful/assetpipe/internal/publish"
	"git.home.luguber.info/inful/assetpipe/internal/uploadcache"
	"git.home.luguber.info/inful/assetpipe/internal/uploader"
)

// StageName identifies a lifecycle stage.
type StageName string

const (
	StageInit               StageName = "init"
	StageValidate           StageName = "validate"
	StagePreOptimizeRewrite StageName = "pre_optimize_rewrite"
	StageCollect            StageName = "collect"
	StagePublish            StageName = "publish"
	StageFinalize           StageName = "finalize"
)

// Stage is one step of the publish lifecycle.
type Stage interface {
	Name() StageName

	// Dependencies lists stages that must complete before this one runs.
	Dependencies() []StageName

	// Execute runs the stage against the shared cycle state. Returning
	// ErrSkipCycle stops the run without failing it.
	Execute(ctx context.Context, cycle *Cycle) error
}

// Cycle is the mutable state one publish cycle threads through its stages.
// It is owned by a single Runner execution; nothing here is global.
type Cycle struct {
	Config *config.Config

	// Upload is resolved from configuration during Init.
	Upload uploader.Func

	// Cache is loaded during Init and persisted by the publish phase.
	Cache *uploadcache.Cache

	// Assets and Classification are produced by the Collect stage.
	Assets         []asset.Asset
	Classification *asset.Classification

	// Result is produced by the Publish stage.
	Result *publish.Result

	// Skipped is set when the cycle ended early without error (for example
	// outside production mode).
	Skipped bool

	Recorder metrics.Recorder
}
