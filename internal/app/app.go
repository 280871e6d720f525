// Package app implements the application layer for imgopt.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"go.trai.ch/imgopt/internal/adapters/status"
	"go.trai.ch/imgopt/internal/adapters/watcher"
	"go.trai.ch/imgopt/internal/core/domain"
	"go.trai.ch/imgopt/internal/core/ports"
	"go.trai.ch/imgopt/internal/engine/optimizer"
	"go.trai.ch/imgopt/internal/engine/resources"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	files        ports.FileLister
	manifests    ports.ManifestFactory
	engines      ports.EngineFactory
	sitemap      ports.Sitemap
	watcher      ports.Watcher
	logger       ports.Logger
	tracer       ports.Tracer

	statusOut      io.Writer
	debounceWindow time.Duration
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	files ports.FileLister,
	manifests ports.ManifestFactory,
	engines ports.EngineFactory,
	sitemap ports.Sitemap,
	w ports.Watcher,
	log ports.Logger,
	tracer ports.Tracer,
) *App {
	return &App{
		configLoader:   loader,
		files:          files,
		manifests:      manifests,
		engines:        engines,
		sitemap:        sitemap,
		watcher:        w,
		logger:         log,
		tracer:         tracer,
		statusOut:      os.Stdout,
		debounceWindow: watcher.DefaultDebounceWindow,
	}
}

// WithStatusOutput redirects status lines, which go to stdout by default.
func (a *App) WithStatusOutput(w io.Writer) *App {
	a.statusOut = w
	return a
}

// WithDebounceWindow sets how long watch mode waits for changes to settle.
func (a *App) WithDebounceWindow(d time.Duration) *App {
	a.debounceWindow = d
	return a
}

// RunOptions configuration shared by all commands. Zero values keep the configured setting.
type RunOptions struct {
	// ConfigPath is the config file or the directory containing imgopt.yaml.
	ConfigPath string
	// BuildDir overrides the build output directory.
	BuildDir string
	// Sitemap overrides the sitemap file used by Reconcile.
	Sitemap string
	// Status overrides the status output: "linear" or "none".
	Status string
	// NoManifest disables staleness tracking for this run.
	NoManifest bool
}

// Optimize runs one optimization pass over the build directory and returns the bytes saved.
func (a *App) Optimize(ctx context.Context, opts RunOptions) (int64, error) {
	cfg, err := a.loadConfig(opts)
	if err != nil {
		return 0, err
	}

	engine, err := a.engines.New(cfg.Options.Engine)
	if err != nil {
		return 0, zerr.Wrap(err, "failed to configure engine")
	}

	saved, _, err := a.pass(ctx, cfg, engine)
	return saved, err
}

// Reconcile rewrites the configured sitemap so optimized build files are served
// directly, and writes the result to out.
func (a *App) Reconcile(_ context.Context, opts RunOptions, out io.Writer) error {
	cfg, err := a.loadConfig(opts)
	if err != nil {
		return err
	}
	if cfg.Sitemap == "" {
		return domain.ErrSitemapNotConfigured
	}

	entries, err := a.sitemap.Load(cfg.Sitemap)
	if err != nil {
		return err
	}

	// A previously reconciled sitemap already lists the manifest.
	entries = slices.DeleteFunc(entries, func(r domain.Resource) bool {
		return r.Kind == domain.KindManifest
	})

	list := resources.New(a.manifests.Open(cfg.BuildDir), cfg.Root)
	return a.sitemap.Write(out, list.Manipulate(entries, cfg.Options))
}

// Watch runs a pass, then another one whenever the build directory settles after a change.
// It returns when ctx is canceled.
func (a *App) Watch(ctx context.Context, opts RunOptions) error {
	cfg, err := a.loadConfig(opts)
	if err != nil {
		return err
	}

	engine, err := a.engines.New(cfg.Options.Engine)
	if err != nil {
		return zerr.Wrap(err, "failed to configure engine")
	}

	_, settled, err := a.pass(ctx, cfg, engine)
	if err != nil {
		return err
	}

	if err := a.watcher.Start(ctx, cfg.BuildDir); err != nil {
		return zerr.Wrap(err, "failed to start watcher")
	}
	defer func() { _ = a.watcher.Stop() }()

	batches := make(chan []string, 1)
	debouncer := watcher.NewDebouncer(a.debounceWindow, func(paths []string) {
		select {
		case batches <- paths:
		case <-ctx.Done():
		}
	})

	manifestPath := domain.ManifestPath(cfg.BuildDir)
	go func() {
		for event := range a.watcher.Events() {
			if event.Path == manifestPath {
				continue
			}
			debouncer.Add(event.Path)
		}
	}()

	a.logger.Info("watching " + cfg.BuildDir + " for changes")

	for {
		select {
		case <-ctx.Done():
			return nil
		case paths := <-batches:
			paths = changedSince(paths, settled)
			if len(paths) == 0 {
				continue
			}
			a.logger.Info(fmt.Sprintf("%d changed paths, optimizing", len(paths)))
			_, rewritten, err := a.pass(ctx, cfg, engine)
			if err != nil {
				a.logger.Error(err)
			}
			maps.Copy(settled, rewritten)
		}
	}
}

// pass enumerates the build directory and optimizes it. It also returns the
// modification times of the files the pass rewrote.
func (a *App) pass(ctx context.Context, cfg *domain.Config, engine ports.Engine) (int64, map[string]time.Time, error) {
	files, err := a.files.ListFiles(cfg.BuildDir)
	if err != nil {
		return 0, nil, err
	}

	rec := status.NewRecorder(status.New(cfg.Status, a.statusOut))
	opt := optimizer.New(engine, a.manifests.Open(cfg.BuildDir), rec, a.logger, a.tracer).WithRoot(cfg.Root)

	saved, err := opt.Optimize(ctx, files, cfg.Options)
	rewritten := rewrittenFiles(rec.Events())
	if err != nil {
		return saved, rewritten, errors.Join(domain.ErrOptimizationFailed, err)
	}
	return saved, rewritten, nil
}

// rewrittenFiles stats every file a pass replaced.
func rewrittenFiles(events []domain.StatusEvent) map[string]time.Time {
	out := make(map[string]time.Time)
	for _, e := range events {
		if e.Category != domain.StatusProcessed {
			continue
		}
		if info, err := os.Stat(e.Target); err == nil {
			out[e.Target] = info.ModTime()
		}
	}
	return out
}

// changedSince drops the paths that still carry the modification time the
// previous pass left them with.
func changedSince(paths []string, settled map[string]time.Time) []string {
	out := paths[:0]
	for _, path := range paths {
		mtime, ok := settled[path]
		if !ok {
			out = append(out, path)
			continue
		}
		info, err := os.Stat(path)
		if err != nil || !info.ModTime().Equal(mtime) {
			out = append(out, path)
		}
	}
	return out
}

// loadConfig reads the configuration and applies command line overrides.
func (a *App) loadConfig(opts RunOptions) (*domain.Config, error) {
	cfg, err := a.configLoader.Load(opts.ConfigPath)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	if opts.BuildDir != "" {
		buildDir, err := filepath.Abs(opts.BuildDir)
		if err != nil {
			return nil, zerr.Wrap(err, "failed to resolve build directory")
		}
		cfg.BuildDir = buildDir
	}
	if opts.Sitemap != "" {
		sitemap, err := filepath.Abs(opts.Sitemap)
		if err != nil {
			return nil, zerr.Wrap(err, "failed to resolve sitemap")
		}
		cfg.Sitemap = sitemap
	}
	if opts.Status != "" {
		cfg.Status = opts.Status
	}
	if opts.NoManifest {
		cfg.Options.Manifest = false
	}

	return cfg, nil
}
