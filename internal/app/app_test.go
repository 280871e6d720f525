package app_test

import (
	"bytes"
	"context"
	"errors"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/imgopt/internal/adapters/fs"
	"go.trai.ch/imgopt/internal/adapters/manifest"
	"go.trai.ch/imgopt/internal/adapters/sitemap"
	"go.trai.ch/imgopt/internal/adapters/telemetry"
	"go.trai.ch/imgopt/internal/app"
	"go.trai.ch/imgopt/internal/core/domain"
	"go.trai.ch/imgopt/internal/core/ports"
	"go.trai.ch/imgopt/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type harness struct {
	root     string
	buildDir string
	cfg      *domain.Config
	out      *bytes.Buffer

	loader  *mocks.MockConfigLoader
	engines *mocks.MockEngineFactory
	engine  *mocks.MockEngine
	watcher *mocks.MockWatcher
	logger  *mocks.MockLogger
	app     *app.App
	batches chan []string
	shrink  bool
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)

	root := t.TempDir()
	buildDir := filepath.Join(root, "build")
	require.NoError(t, os.MkdirAll(buildDir, domain.DirPerm))

	h := &harness{
		root:     root,
		buildDir: buildDir,
		cfg: &domain.Config{
			Root:     root,
			BuildDir: buildDir,
			Status:   "linear",
			Options: domain.OptimizationOptions{
				Manifest:        true,
				ImageExtensions: domain.DefaultImageExtensions(),
			},
		},
		out:     new(bytes.Buffer),
		loader:  mocks.NewMockConfigLoader(ctrl),
		engines: mocks.NewMockEngineFactory(ctrl),
		engine:  mocks.NewMockEngine(ctrl),
		watcher: mocks.NewMockWatcher(ctrl),
		logger:  mocks.NewMockLogger(ctrl),
		batches: make(chan []string, 8),
	}

	h.engine.EXPECT().Optimizable(gomock.Any()).Return(true).AnyTimes()
	h.engine.EXPECT().OptimizeBatch(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, paths []string) iter.Seq[domain.EngineResult] {
			h.batches <- slices.Clone(paths)
			return func(yield func(domain.EngineResult) bool) {
				for _, path := range paths {
					result := domain.EngineResult{Source: path}
					if h.shrink {
						result.Replacement = path + ".opt"
						assert.NoError(t, os.WriteFile(result.Replacement, []byte("c"), domain.FilePerm))
					}
					if !yield(result) {
						return
					}
				}
			}
		}).AnyTimes()

	h.app = app.New(
		h.loader,
		fs.NewBuildWalker(),
		manifest.NewFactory(h.logger),
		h.engines,
		sitemap.NewCodec(),
		h.watcher,
		h.logger,
		telemetry.NewNoOpTracer(),
	).WithStatusOutput(h.out).WithDebounceWindow(10 * time.Millisecond)

	return h
}

func (h *harness) write(t *testing.T, rel string, mtime time.Time) string {
	t.Helper()
	path := filepath.Join(h.root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
	require.NoError(t, os.WriteFile(path, []byte("content"), domain.FilePerm))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
	return path
}

func (h *harness) expectConfig(path string) {
	h.loader.EXPECT().Load(path).Return(h.cfg, nil)
}

func (h *harness) expectEngine() {
	h.engines.EXPECT().New(h.cfg.Options.Engine).Return(h.engine, nil)
}

func TestApp_Optimize(t *testing.T) {
	h := newHarness(t)
	a := h.write(t, "build/images/a.png", time.Now())
	h.write(t, "build/index.html", time.Now())

	h.expectConfig("imgopt.yaml")
	h.expectEngine()

	saved, err := h.app.Optimize(context.Background(), app.RunOptions{ConfigPath: "imgopt.yaml"})
	require.NoError(t, err)
	assert.Zero(t, saved)

	assert.Equal(t, []string{a}, <-h.batches)
	assert.Contains(t, h.out.String(), "[skipped] build/images/a.png not updated")
	assert.Contains(t, h.out.String(), "build/imageoptim.manifest.yml updated")
	assert.Contains(t, h.out.String(), "Total savings: 0 B")
	assert.FileExists(t, domain.ManifestPath(h.buildDir))
}

func TestApp_Optimize_IgnoresLeftoverScratchCopies(t *testing.T) {
	h := newHarness(t)
	a := h.write(t, "build/a.png", time.Now())
	h.write(t, "build/.a.imgopt-123.png", time.Now())

	h.expectConfig("")
	h.expectEngine()

	_, err := h.app.Optimize(context.Background(), app.RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{a}, <-h.batches)
	assert.NotContains(t, h.out.String(), "imgopt-123")

	data, err := os.ReadFile(domain.ManifestPath(h.buildDir))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "imgopt-123")
}

func TestApp_Optimize_Overrides(t *testing.T) {
	h := newHarness(t)
	other := filepath.Join(h.root, "public")
	h.write(t, "public/a.png", time.Now())

	h.expectConfig("")
	h.expectEngine()

	_, err := h.app.Optimize(context.Background(), app.RunOptions{
		BuildDir:   other,
		NoManifest: true,
		Status:     "none",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(other, "a.png")}, <-h.batches)
	assert.Empty(t, h.out.String())
	assert.NoFileExists(t, domain.ManifestPath(other))
}

func TestApp_Optimize_Errors(t *testing.T) {
	t.Run("config", func(t *testing.T) {
		h := newHarness(t)
		h.loader.EXPECT().Load("").Return(nil, errors.New("config load error"))

		_, err := h.app.Optimize(context.Background(), app.RunOptions{})
		require.ErrorContains(t, err, "failed to load configuration")
	})

	t.Run("engine", func(t *testing.T) {
		h := newHarness(t)
		h.expectConfig("")
		h.engines.EXPECT().New(gomock.Any()).Return(nil, domain.ErrUnknownBuiltin)

		_, err := h.app.Optimize(context.Background(), app.RunOptions{})
		require.ErrorContains(t, err, "failed to configure engine")
	})

	t.Run("missing build dir", func(t *testing.T) {
		h := newHarness(t)
		h.cfg.BuildDir = filepath.Join(h.root, "missing")
		h.expectConfig("")
		h.expectEngine()

		_, err := h.app.Optimize(context.Background(), app.RunOptions{})
		require.ErrorContains(t, err, domain.ErrBuildDirNotFound.Error())
	})

	t.Run("manifest write", func(t *testing.T) {
		h := newHarness(t)
		h.write(t, "build/a.png", time.Now())
		require.NoError(t, os.MkdirAll(filepath.Join(domain.ManifestPath(h.buildDir), "blocker"), domain.DirPerm))
		h.logger.EXPECT().Warn(gomock.Any()).AnyTimes()
		h.expectConfig("")
		h.expectEngine()

		_, err := h.app.Optimize(context.Background(), app.RunOptions{})
		require.ErrorIs(t, err, domain.ErrOptimizationFailed)
		assert.Contains(t, err.Error(), domain.ErrManifestWriteFailed.Error())
		assert.NotContains(t, h.out.String(), "Total savings")
	})
}

func TestApp_Reconcile(t *testing.T) {
	h := newHarness(t)
	past := time.Now().Add(-time.Hour)
	h.write(t, "source/images/a.png", past)
	h.write(t, "build/images/a.png", time.Now())
	h.write(t, "source/about.html", past)

	sitemapPath := filepath.Join(h.root, "sitemap.yaml")
	require.NoError(t, os.WriteFile(sitemapPath, []byte(`
resources:
  - path: images/a.png
    source: source/images/a.png
  - path: about.html
    source: source/about.html
`), domain.FilePerm))
	h.cfg.Sitemap = sitemapPath
	h.expectConfig("")

	var out bytes.Buffer
	require.NoError(t, h.app.Reconcile(context.Background(), app.RunOptions{}, &out))

	got, err := sitemap.NewCodec().Load(writeTemp(t, out.String()))
	require.NoError(t, err)
	assert.Equal(t, []domain.Resource{
		{Kind: domain.KindPage, DestinationPath: "images/a.png", SourcePath: filepath.Join(h.buildDir, "images", "a.png")},
		{Kind: domain.KindPage, DestinationPath: "about.html", SourcePath: "source/about.html"},
		{Kind: domain.KindManifest, DestinationPath: domain.ManifestFileName},
	}, got)
}

func TestApp_Reconcile_Twice(t *testing.T) {
	h := newHarness(t)
	h.write(t, "build/a.png", time.Now())
	h.write(t, "build/"+domain.ManifestFileName, time.Now())

	sitemapPath := filepath.Join(h.root, "sitemap.yaml")
	require.NoError(t, os.WriteFile(sitemapPath, []byte("resources:\n  - path: a.png\n"), domain.FilePerm))
	h.cfg.Sitemap = sitemapPath
	h.loader.EXPECT().Load("").Return(h.cfg, nil).Times(2)

	var first bytes.Buffer
	require.NoError(t, h.app.Reconcile(context.Background(), app.RunOptions{}, &first))
	require.NoError(t, os.WriteFile(sitemapPath, first.Bytes(), domain.FilePerm))

	var second bytes.Buffer
	require.NoError(t, h.app.Reconcile(context.Background(), app.RunOptions{}, &second))

	assert.Equal(t, first.String(), second.String())
	assert.Equal(t, 1, strings.Count(second.String(), "kind: manifest"))
}

func TestApp_Reconcile_NoSitemap(t *testing.T) {
	h := newHarness(t)
	h.expectConfig("")

	err := h.app.Reconcile(context.Background(), app.RunOptions{}, new(bytes.Buffer))
	require.ErrorIs(t, err, domain.ErrSitemapNotConfigured)
}

func TestApp_Watch(t *testing.T) {
	h := newHarness(t)
	a := h.write(t, "build/a.png", time.Now())
	h.expectConfig("")
	h.expectEngine()
	h.logger.EXPECT().Info(gomock.Any()).AnyTimes()

	events := make(chan ports.WatchEvent)
	h.watcher.EXPECT().Start(gomock.Any(), h.buildDir).Return(nil)
	h.watcher.EXPECT().Stop().Return(nil)
	h.watcher.EXPECT().Events().Return(iter.Seq[ports.WatchEvent](func(yield func(ports.WatchEvent) bool) {
		for ev := range events {
			if !yield(ev) {
				return
			}
		}
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- h.app.Watch(ctx, app.RunOptions{})
	}()

	assert.Equal(t, []string{a}, receive(t, h.batches))

	b := h.write(t, "build/b.png", time.Now())
	events <- ports.WatchEvent{Path: domain.ManifestPath(h.buildDir), Operation: ports.OpWrite}
	events <- ports.WatchEvent{Path: b, Operation: ports.OpCreate}

	// Only the new file is stale on the second pass.
	assert.Equal(t, []string{b}, receive(t, h.batches))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not return after cancel")
	}
	close(events)

	assert.Equal(t, 2, strings.Count(h.out.String(), "Total savings"))
}

func TestApp_Watch_IgnoresOwnReplacements(t *testing.T) {
	h := newHarness(t)
	h.shrink = true
	a := h.write(t, "build/a.png", time.Now())
	h.expectConfig("")
	h.expectEngine()
	h.logger.EXPECT().Info(gomock.Any()).AnyTimes()

	events := make(chan ports.WatchEvent)
	h.watcher.EXPECT().Start(gomock.Any(), h.buildDir).Return(nil)
	h.watcher.EXPECT().Stop().Return(nil)
	h.watcher.EXPECT().Events().Return(iter.Seq[ports.WatchEvent](func(yield func(ports.WatchEvent) bool) {
		for ev := range events {
			if !yield(ev) {
				return
			}
		}
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- h.app.Watch(ctx, app.RunOptions{})
	}()

	assert.Equal(t, []string{a}, receive(t, h.batches))

	// The rename over a.png is reported back by the watcher.
	events <- ports.WatchEvent{Path: a, Operation: ports.OpCreate}
	time.Sleep(100 * time.Millisecond)

	b := h.write(t, "build/b.png", time.Now())
	events <- ports.WatchEvent{Path: b, Operation: ports.OpCreate}
	assert.Equal(t, []string{b}, receive(t, h.batches))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not return after cancel")
	}
	close(events)

	assert.Equal(t, 2, strings.Count(h.out.String(), "Total savings"))
	assert.Equal(t, 2, strings.Count(h.out.String(), "smaller)"))
}

func TestApp_Watch_StartFailure(t *testing.T) {
	h := newHarness(t)
	h.expectConfig("")
	h.expectEngine()
	h.watcher.EXPECT().Start(gomock.Any(), h.buildDir).Return(errors.New("inotify exhausted"))

	err := h.app.Watch(context.Background(), app.RunOptions{})
	require.ErrorContains(t, err, "failed to start watcher")
}

func receive(t *testing.T, ch <-chan []string) []string {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for an optimization pass")
		return nil
	}
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
	return path
}
