// Package publish sequences classification, rewriting, and uploading across
// the four asset kinds. The ordering contract is the core correctness
// property: each phase reads remote locations produced by the phases before
// it, so a phase never starts until every operation of the previous phase
// has settled.
package publish

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/assetpipe/internal/asset"
	"git.home.luguber.info/inful/assetpipe/internal/fingerprint"
	"git.home.luguber.info/inful/assetpipe/internal/logfields"
	"git.home.luguber.info/inful/assetpipe/internal/manifest"
	"git.home.luguber.info/inful/assetpipe/internal/metrics"
	"git.home.luguber.info/inful/assetpipe/internal/rewrite"
	"git.home.luguber.info/inful/assetpipe/internal/uploadcache"
	"git.home.luguber.info/inful/assetpipe/internal/uploader"
)

// URLMap maps asset names to confirmed remote locations for the current
// build only. An asset appears once it has a remote location; never before.
type URLMap map[string]string

// Options configures one Orchestrator.
type Options struct {
	// OutputDir is the build output directory assets are read from,
	// overwritten in, and deleted from.
	OutputDir string

	// Upload is the injected upload collaborator. Required.
	Upload uploader.Func

	// Cache is the persistent fingerprint→location cache. Required.
	Cache *uploadcache.Cache

	// KeepLocalFiles keeps local copies of successfully published assets.
	KeepLocalFiles bool

	// ManifestPath, when non-empty, is where the pretty-printed manifest
	// file is written at the end of the cycle.
	ManifestPath string

	Recorder metrics.Recorder
	Logger   *slog.Logger
}

// Result summarizes one publish cycle.
type Result struct {
	CycleID      string
	URLs         URLMap
	ManifestJSON []byte
	Uploaded     int
	CacheHits    int
	LeftLocal    int
	Duration     time.Duration
}

// Orchestrator drives one publish cycle. It owns the cycle's URLMap
// exclusively; construct a fresh cycle state per build by calling Run, which
// is safe to repeat on the same Orchestrator across builds in one process.
type Orchestrator struct {
	opts     Options
	recorder metrics.Recorder
	logger   *slog.Logger

	mu        sync.Mutex
	urls      URLMap
	uploaded  int
	cacheHits int
	leftLocal int
}

// New creates an Orchestrator. Upload and Cache are required.
func New(opts Options) (*Orchestrator, error) {
	if opts.Upload == nil {
		return nil, fmt.Errorf("upload collaborator is required")
	}
	if opts.Cache == nil {
		return nil, fmt.Errorf("upload cache is required")
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Orchestrator{opts: opts, recorder: opts.Recorder, logger: opts.Logger}, nil
}

// Run executes the phased publish cycle over a classified asset set:
// resources, then styles, then entries, then documents, then the manifest
// file, then cache persistence. Within a phase, assets are processed
// concurrently; a failing asset does not abandon its siblings, but the first
// error is returned at the phase barrier and later phases do not start.
func (o *Orchestrator) Run(ctx context.Context, c *asset.Classification) (*Result, error) {
	start := time.Now()
	cycleID := uuid.NewString()
	logger := o.logger.With(logfields.CycleID(cycleID))

	o.mu.Lock()
	o.urls = make(URLMap)
	o.uploaded, o.cacheHits, o.leftLocal = 0, 0, 0
	o.mu.Unlock()

	logger.Info("Starting publish cycle",
		slog.Int("resources", len(c.Resources)),
		slog.Int("styles", len(c.Styles)),
		slog.Int("entries", len(c.Entries)),
		slog.Int("documents", len(c.Documents)))

	runErr := o.runPhases(ctx, c, logger)

	// The cache persists even on failure and even with zero new uploads:
	// every successful upload so far is worth remembering, and the
	// persisted file must always equal the in-memory map afterwards.
	if err := o.opts.Cache.Persist(); err != nil {
		if runErr == nil {
			runErr = err
		} else {
			logger.Error("Cache persist failed after phase error", "error", err)
		}
	}

	result := o.buildResult(cycleID, time.Since(start))
	if runErr != nil {
		o.recorder.IncCycleOutcome("failed")
		return result, runErr
	}

	o.recorder.ObserveCycleDuration(result.Duration)
	o.recorder.IncCycleOutcome("success")
	logger.Info("Publish cycle complete",
		slog.Int("uploaded", result.Uploaded),
		slog.Int("cache_hits", result.CacheHits),
		slog.Int("left_local", result.LeftLocal),
		slog.Duration("duration", result.Duration))
	return result, nil
}

func (o *Orchestrator) runPhases(ctx context.Context, c *asset.Classification, logger *slog.Logger) error {
	if err := o.runPhase(ctx, "resource", c.Resources, o.resourceStep); err != nil {
		return err
	}
	if err := o.runPhase(ctx, "style", c.Styles, o.styleStep); err != nil {
		return err
	}

	// Entries embed the manifest as it stands after the style phase; their
	// own remote locations are not part of it.
	entryManifest, err := manifest.Build(o.urlsSnapshot(), false)
	if err != nil {
		return err
	}
	entryStep := func(ctx context.Context, a asset.Asset) error {
		return o.publishRewritten(ctx, a, rewrite.InjectManifest(a.Data, entryManifest), asset.KindEntry)
	}
	if err := o.runPhase(ctx, "entry", c.Entries, entryStep); err != nil {
		return err
	}

	// Documents see the final URLMap and manifest. They are never uploaded:
	// the origin serves them directly, so they are only rewritten in place.
	finalURLs := o.urlsSnapshot()
	docManifest, err := manifest.Build(finalURLs, false)
	if err != nil {
		return err
	}
	docStep := func(_ context.Context, a asset.Asset) error {
		return o.overwriteLocal(a.Name, rewrite.Document(a.Data, a.Name, finalURLs, docManifest))
	}
	if err := o.runPhase(ctx, "document", c.Documents, docStep); err != nil {
		return err
	}

	if o.opts.ManifestPath != "" {
		if err := manifest.Write(o.opts.ManifestPath, finalURLs); err != nil {
			return err
		}
		logger.Debug("Wrote manifest file", slog.String("path", o.opts.ManifestPath))
	}
	return nil
}

// runPhase processes one phase's assets concurrently and blocks until every
// step has settled. Siblings of a failing asset run to completion; the first
// error (in asset order) is returned at the barrier.
func (o *Orchestrator) runPhase(ctx context.Context, phase string, assets []asset.Asset, step func(context.Context, asset.Asset) error) error {
	if len(assets) == 0 {
		return nil
	}
	start := time.Now()

	errs := make([]error, len(assets))
	var wg sync.WaitGroup
	for i, a := range assets {
		wg.Add(1)
		go func(i int, a asset.Asset) {
			defer wg.Done()
			errs[i] = step(ctx, a)
		}(i, a)
	}
	wg.Wait()

	elapsed := time.Since(start)
	o.recorder.ObservePhaseDuration(phase, elapsed)
	o.logger.Debug("Phase settled",
		logfields.Phase(phase),
		logfields.DurationMS(float64(elapsed)/float64(time.Millisecond)))
	for _, err := range errs {
		if err != nil {
			return fmt.Errorf("%s phase: %w", phase, err)
		}
	}
	return nil
}

// resourceStep publishes a resource asset's content as-is.
func (o *Orchestrator) resourceStep(ctx context.Context, a asset.Asset) error {
	return o.publishContent(ctx, a, a.Data, asset.KindResource)
}

// styleStep rewrites a stylesheet against the resource-phase URLMap, then
// publishes the rewritten content.
func (o *Orchestrator) styleStep(ctx context.Context, a asset.Asset) error {
	rewritten := rewrite.StylesheetURLs(a.Data, a.Name, o.urlsSnapshot())
	return o.publishRewritten(ctx, a, rewritten, asset.KindStyle)
}

// publishRewritten overwrites the local copy with the rewritten content
// before uploading it, so local output and uploaded content are never
// observably inconsistent.
func (o *Orchestrator) publishRewritten(ctx context.Context, a asset.Asset, data []byte, kind asset.Kind) error {
	if err := o.overwriteLocal(a.Name, data); err != nil {
		return err
	}
	return o.publishContent(ctx, asset.Asset{Name: a.Name, Data: data}, data, kind)
}

// publishContent is the shared fingerprint→cache→upload step. A cached
// fingerprint reuses its location without calling the collaborator; an empty
// location from the collaborator leaves the asset local, which is not an
// error.
func (o *Orchestrator) publishContent(ctx context.Context, a asset.Asset, data []byte, kind asset.Kind) error {
	fp := fingerprint.Sum(data)

	if url, ok := o.opts.Cache.Lookup(fp); ok {
		o.setURL(a.Name, url)
		o.addCacheHit()
		o.recorder.IncCacheHit(kind.String())
		o.logger.Debug("Upload cache hit", logfields.Asset(a.Name), logfields.URL(url))
		return o.cleanupLocal(a.Name)
	}

	url, err := o.opts.Upload(ctx, a.Name, data, a.Ext())
	if err != nil {
		return fmt.Errorf("upload %s: %w", a.Name, err)
	}
	if url == "" {
		o.addLeftLocal()
		o.recorder.IncSkipped(kind.String())
		o.logger.Debug("Collaborator left asset local", logfields.Asset(a.Name))
		return nil
	}

	o.opts.Cache.Record(fp, url)
	o.setURL(a.Name, url)
	o.addUploaded()
	o.recorder.IncUpload(kind.String())
	o.recorder.AddUploadedBytes(len(data))
	o.logger.Debug("Uploaded asset",
		logfields.Asset(a.Name),
		logfields.Kind(kind.String()),
		logfields.Fingerprint(fp),
		logfields.URL(url))
	return o.cleanupLocal(a.Name)
}

// overwriteLocal replaces an asset's file in the output directory.
func (o *Orchestrator) overwriteLocal(name string, data []byte) error {
	path := filepath.Join(o.opts.OutputDir, filepath.FromSlash(name))
	if err := os.WriteFile(path, data, 0644); err != nil { //nolint:gosec // build outputs are public
		return fmt.Errorf("overwrite %s: %w", name, err)
	}
	return nil
}

// cleanupLocal removes a published asset's local copy unless configured to
// keep it. Assets without a remote location never reach here.
func (o *Orchestrator) cleanupLocal(name string) error {
	if o.opts.KeepLocalFiles {
		return nil
	}
	path := filepath.Join(o.opts.OutputDir, filepath.FromSlash(name))
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove local copy of %s: %w", name, err)
	}
	return nil
}

func (o *Orchestrator) urlsSnapshot() URLMap {
	o.mu.Lock()
	defer o.mu.Unlock()
	snap := make(URLMap, len(o.urls))
	for k, v := range o.urls {
		snap[k] = v
	}
	return snap
}

func (o *Orchestrator) setURL(name, url string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.urls[name] = url
}

func (o *Orchestrator) addUploaded()  { o.mu.Lock(); o.uploaded++; o.mu.Unlock() }
func (o *Orchestrator) addCacheHit()  { o.mu.Lock(); o.cacheHits++; o.mu.Unlock() }
func (o *Orchestrator) addLeftLocal() { o.mu.Lock(); o.leftLocal++; o.mu.Unlock() }

func (o *Orchestrator) buildResult(cycleID string, d time.Duration) *Result {
	o.mu.Lock()
	defer o.mu.Unlock()

	urls := make(URLMap, len(o.urls))
	for k, v := range o.urls {
		urls[k] = v
	}
	manifestJSON, err := manifest.Build(urls, false)
	if err != nil {
		// Marshal of map[string]string cannot fail; keep the result usable.
		manifestJSON = []byte("{}")
	}
	return &Result{
		CycleID:      cycleID,
		URLs:         urls,
		ManifestJSON: manifestJSON,
		Uploaded:     o.uploaded,
		CacheHits:    o.cacheHits,
		LeftLocal:    o.leftLocal,
		Duration:     d,
	}
}
