package optimizer_test

import (
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
	"go.trai.ch/imgopt/internal/adapters/manifest"
	"go.trai.ch/imgopt/internal/adapters/status"
	"go.trai.ch/imgopt/internal/adapters/telemetry"
	"go.trai.ch/imgopt/internal/core/domain"
	"go.trai.ch/imgopt/internal/core/ports"
	"go.trai.ch/imgopt/internal/core/ports/mocks"
	"go.trai.ch/imgopt/internal/engine/optimizer"
	"go.uber.org/mock/gomock"
)

// site is a project root with a build directory inside it.
type site struct {
	root     string
	buildDir string
}

func newSite(t *testing.T) site {
	t.Helper()
	root := t.TempDir()
	buildDir := filepath.Join(root, "build")
	require.NoError(t, os.MkdirAll(buildDir, domain.DirPerm))
	return site{root: root, buildDir: buildDir}
}

func (s site) write(t *testing.T, rel string, size int, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(s.buildDir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", size)), mode))
	require.NoError(t, os.Chmod(path, mode))
	return path
}

func (s site) files(t *testing.T) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(s.buildDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && d.Name() != domain.ManifestFileName {
			files = append(files, path)
		}
		return nil
	})
	require.NoError(t, err)
	return files
}

// fakeEngine shrinks every file to ratio of its size and records the batches it receives.
type fakeEngine struct {
	t       *testing.T
	ratio   float64
	exts    []string
	batches [][]string
	fail    map[string]error
	decline map[string]bool
}

func (f *fakeEngine) mock(ctrl *gomock.Controller) *mocks.MockEngine {
	m := mocks.NewMockEngine(ctrl)
	m.EXPECT().Optimizable(gomock.Any()).DoAndReturn(func(path string) bool {
		return slices.Contains(f.exts, filepath.Ext(path))
	}).AnyTimes()
	m.EXPECT().OptimizeBatch(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, paths []string) iter.Seq[domain.EngineResult] {
			f.batches = append(f.batches, slices.Clone(paths))
			return func(yield func(domain.EngineResult) bool) {
				// Reverse order: results may arrive in any order.
				for _, path := range slices.Backward(paths) {
					if !yield(f.optimize(path)) {
						return
					}
				}
			}
		}).AnyTimes()
	return m
}

func (f *fakeEngine) optimize(path string) domain.EngineResult {
	if err, ok := f.fail[path]; ok {
		return domain.EngineResult{Source: path, Err: err}
	}
	if f.decline[path] {
		return domain.EngineResult{Source: path}
	}
	data, err := os.ReadFile(path)
	require.NoError(f.t, err)
	replacement := path + ".opt"
	require.NoError(f.t, os.WriteFile(replacement, data[:int(float64(len(data))*f.ratio)], 0o600))
	return domain.EngineResult{Source: path, Replacement: replacement}
}

func messages(events []domain.StatusEvent) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Message
	}
	return out
}

func options(manifestEnabled bool) domain.OptimizationOptions {
	return domain.OptimizationOptions{
		Manifest:        manifestEnabled,
		ImageExtensions: domain.DefaultImageExtensions(),
	}
}

func newOptimizer(s site, engine ports.Engine, m ports.Manifest, sink ports.StatusSink, log ports.Logger) *optimizer.Optimizer {
	return optimizer.New(engine, m, sink, log, telemetry.NewNoOpTracer()).WithRoot(s.root)
}

func TestOptimize_FirstAndSecondPass(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)

	s := newSite(t)
	png := s.write(t, "a.png", 1000, 0o644)
	s.write(t, "b.txt", 500, 0o644)

	engine := &fakeEngine{t: t, ratio: 0.7, exts: []string{".png"}}
	mockEngine := engine.mock(ctrl)

	// First pass
	rec := status.NewRecorder(nil)
	store := manifest.NewStore(s.buildDir, mockLogger)
	saved, err := newOptimizer(s, mockEngine, store, rec, mockLogger).Optimize(context.Background(), s.files(t), options(true))
	require.NoError(t, err)

	assert.Equal(t, int64(300), saved)
	assert.Equal(t, []string{
		"build/a.png (30.00% / 300 B smaller)",
		"fixed file mode on build/a.png file to match source",
		"build/imageoptim.manifest.yml updated",
		"Total savings: 300 B",
	}, messages(rec.Events()))
	assert.Equal(t, [][]string{{png}}, engine.batches)

	info, err := os.Stat(png)
	require.NoError(t, err)
	assert.Equal(t, int64(700), info.Size())
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
	assert.NoFileExists(t, png+".opt")

	reopened := manifest.NewStore(s.buildDir, mockLogger)
	ts, ok := reopened.Lookup("a.png")
	require.True(t, ok)
	assert.True(t, ts.Equal(info.ModTime()))
	_, ok = reopened.Lookup("b.txt")
	assert.False(t, ok)

	// Second pass over the unchanged build directory does no work.
	rec = status.NewRecorder(nil)
	saved, err = newOptimizer(s, mockEngine, manifest.NewStore(s.buildDir, mockLogger), rec, mockLogger).
		Optimize(context.Background(), s.files(t), options(true))
	require.NoError(t, err)

	assert.Zero(t, saved)
	assert.Len(t, engine.batches, 1, "engine must not be invoked")
	assert.Equal(t, []string{
		"build/imageoptim.manifest.yml updated",
		"Total savings: 0 B",
	}, messages(rec.Events()))

	after, err := os.Stat(png)
	require.NoError(t, err)
	assert.Equal(t, int64(700), after.Size())
}

func TestOptimize_Staleness(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)

	s := newSite(t)
	a := s.write(t, "a.png", 1000, 0o644)
	b := s.write(t, "b.png", 1000, 0o644)
	c := s.write(t, "c.png", 1000, 0o644)

	engine := &fakeEngine{t: t, ratio: 0.5, exts: []string{".png"}, decline: map[string]bool{a: true, b: true, c: true}}
	mockEngine := engine.mock(ctrl)

	run := func() {
		_, err := newOptimizer(s, mockEngine, manifest.NewStore(s.buildDir, mockLogger), status.NewRecorder(nil), mockLogger).
			Optimize(context.Background(), s.files(t), options(true))
		require.NoError(t, err)
	}

	run()
	require.Len(t, engine.batches, 1)
	assert.ElementsMatch(t, []string{a, b, c}, engine.batches[0], "declined files are recorded too")

	// Older timestamps are stale as well: the test is equality, not newer-than.
	older := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(b, older, older))
	newer := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(c, newer, newer))

	run()
	require.Len(t, engine.batches, 2)
	assert.ElementsMatch(t, []string{b, c}, engine.batches[1])

	run()
	assert.Len(t, engine.batches, 2)
}

func TestOptimize_ManifestDisabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockManifest := mocks.NewMockManifest(ctrl)
	mockManifest.EXPECT().Path().Return(domain.ManifestPath(filepath.Join("/site", "build"))).AnyTimes()

	s := newSite(t)
	png := s.write(t, "a.png", 1000, 0o644)

	engine := &fakeEngine{t: t, ratio: 0.9, exts: []string{".png"}, decline: map[string]bool{png: true}}
	mockEngine := engine.mock(ctrl)

	for range 2 {
		rec := status.NewRecorder(nil)
		_, err := optimizer.New(mockEngine, mockManifest, rec, mockLogger, telemetry.NewNoOpTracer()).
			Optimize(context.Background(), s.files(t), options(false))
		require.NoError(t, err)
		assert.Equal(t, domain.StatusSummary, rec.Events()[len(rec.Events())-1].Category)
		assert.Zero(t, rec.Count(domain.StatusManifest))
	}

	assert.Len(t, engine.batches, 2, "every eligible file is reprocessed")
	assert.NoFileExists(t, domain.ManifestPath(s.buildDir))
}

func TestOptimize_Eligibility(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)

	s := newSite(t)
	png := s.write(t, "images/a.png", 100, 0o644)
	s.write(t, "images/b.PNG", 100, 0o644)
	s.write(t, "images/c.gif", 100, 0o644)
	s.write(t, "images/d.webp", 100, 0o644)
	s.write(t, "index.html", 100, 0o644)

	// The engine cannot handle gif; webp is not a configured extension.
	engine := &fakeEngine{t: t, ratio: 0.5, exts: []string{".png", ".webp"}}
	mockEngine := engine.mock(ctrl)

	store := manifest.NewStore(s.buildDir, mockLogger)
	opts := options(true)
	opts.ImageExtensions = []string{".png", ".gif"}

	_, err := newOptimizer(s, mockEngine, store, status.NewRecorder(nil), mockLogger).
		Optimize(context.Background(), s.files(t), opts)
	require.NoError(t, err)

	assert.Equal(t, [][]string{{png}}, engine.batches)

	reopened := manifest.NewStore(s.buildDir, mockLogger)
	for _, id := range []string{"images/b.PNG", "images/c.gif", "images/d.webp", "index.html"} {
		_, ok := reopened.Lookup(id)
		assert.False(t, ok, id)
	}
	_, ok := reopened.Lookup("images/a.png")
	assert.True(t, ok)
}

func TestOptimize_PermissionPreservation(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)

	s := newSite(t)
	exec := s.write(t, "a.png", 1000, 0o755)
	readonly := s.write(t, "b.png", 1000, 0o600)

	engine := &fakeEngine{t: t, ratio: 0.5, exts: []string{".png"}}
	rec := status.NewRecorder(nil)
	_, err := newOptimizer(s, engine.mock(ctrl), manifest.NewStore(s.buildDir, mockLogger), rec, mockLogger).
		Optimize(context.Background(), s.files(t), options(true))
	require.NoError(t, err)

	info, err := os.Stat(exec)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	info, err = os.Stat(readonly)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// Only the file whose mode changed is reported, right after its processed line.
	events := rec.Events()
	assert.Equal(t, 1, rec.Count(domain.StatusPermission))
	for i, e := range events {
		if e.Category == domain.StatusPermission {
			require.Positive(t, i)
			assert.Equal(t, domain.StatusProcessed, events[i-1].Category)
			assert.Equal(t, exec, events[i-1].Target)
			assert.Equal(t, exec, e.Target)
		}
	}
}

func TestOptimize_DeclinesAndFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Warn(gomock.Any()).Times(1)

	s := newSite(t)
	declined := s.write(t, "a.png", 1000, 0o644)
	failed := s.write(t, "b.png", 1000, 0o644)
	grown := s.write(t, "c.jpg", 1000, 0o644)

	pngEngine := &fakeEngine{
		t: t, ratio: 0.5, exts: []string{".png"},
		decline: map[string]bool{declined: true},
		fail:    map[string]error{failed: errors.New("tool crashed")},
	}
	mockEngine := mocks.NewMockEngine(ctrl)
	mockEngine.EXPECT().Optimizable(gomock.Any()).Return(true).AnyTimes()
	mockEngine.EXPECT().OptimizeBatch(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, paths []string) iter.Seq[domain.EngineResult] {
			return func(yield func(domain.EngineResult) bool) {
				for _, path := range paths {
					r := pngEngine.optimize(path)
					if path == grown {
						// A replacement that is not smaller is discarded.
						require.NoError(t, os.WriteFile(path+".opt", []byte(strings.Repeat("y", 1200)), 0o600))
						r = domain.EngineResult{Source: path, Replacement: path + ".opt"}
					}
					if !yield(r) {
						return
					}
				}
			}
		})

	rec := status.NewRecorder(nil)
	saved, err := newOptimizer(s, mockEngine, manifest.NewStore(s.buildDir, mockLogger), rec, mockLogger).
		Optimize(context.Background(), s.files(t), options(true))
	require.NoError(t, err)

	assert.Zero(t, saved)
	assert.Equal(t, []string{
		"[skipped] build/a.png not updated",
		"[skipped] build/b.png not updated",
		"[skipped] build/c.jpg not updated",
		"build/imageoptim.manifest.yml updated",
		"Total savings: 0 B",
	}, messages(rec.Events()))
	assert.NoFileExists(t, grown+".opt")

	for _, path := range []string{declined, failed, grown} {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, int64(1000), info.Size())
	}
}

func TestOptimize_SavingsAccumulate(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)

	s := newSite(t)
	s.write(t, "a.png", 2048, 0o600)
	s.write(t, "b.png", 4096, 0o600)

	engine := &fakeEngine{t: t, ratio: 0.5, exts: []string{".png"}}
	rec := status.NewRecorder(nil)
	saved, err := newOptimizer(s, engine.mock(ctrl), manifest.NewStore(s.buildDir, mockLogger), rec, mockLogger).
		Optimize(context.Background(), s.files(t), options(true))
	require.NoError(t, err)

	assert.Equal(t, int64(3072), saved)
	assert.Equal(t, 2, rec.Count(domain.StatusProcessed))
	assert.Zero(t, rec.Count(domain.StatusPermission))

	events := rec.Events()
	assert.Equal(t, "Total savings: 3.00 KB", events[len(events)-1].Message)
	assert.Equal(t, "build/b.png (50.00% / 2.00 KB smaller)", events[0].Message)
}

func TestOptimize_ManifestWriteFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)

	s := newSite(t)
	s.write(t, "a.png", 1000, 0o644)

	mockManifest := mocks.NewMockManifest(ctrl)
	mockManifest.EXPECT().Path().Return(domain.ManifestPath(s.buildDir)).AnyTimes()
	mockManifest.EXPECT().Lookup("a.png").Return(time.Time{}, false)
	mockManifest.EXPECT().RebuildAndPersist([]string{"a.png"}).Return(domain.ErrManifestWriteFailed)

	engine := &fakeEngine{t: t, ratio: 0.5, exts: []string{".png"}}
	rec := status.NewRecorder(nil)
	saved, err := newOptimizer(s, engine.mock(ctrl), mockManifest, rec, mockLogger).
		Optimize(context.Background(), s.files(t), options(true))

	require.ErrorIs(t, err, domain.ErrManifestWriteFailed)
	assert.Equal(t, int64(500), saved)
	assert.Zero(t, rec.Count(domain.StatusSummary))
	assert.Zero(t, rec.Count(domain.StatusManifest))
}

func TestOptimize_VanishedFileIsReported(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()

	s := newSite(t)
	kept := s.write(t, "a.png", 1000, 0o644)
	gone := filepath.Join(s.buildDir, "gone.png")

	engine := &fakeEngine{t: t, ratio: 0.5, exts: []string{".png"}}
	rec := status.NewRecorder(nil)
	_, err := newOptimizer(s, engine.mock(ctrl), manifest.NewStore(s.buildDir, mockLogger), rec, mockLogger).
		Optimize(context.Background(), []string{kept, gone}, options(true))
	require.NoError(t, err)

	assert.Equal(t, [][]string{{kept}}, engine.batches)
	assert.Equal(t, 1, rec.Count(domain.StatusWarning))
	assert.Equal(t, domain.StatusWarning, rec.Events()[0].Category)
	assert.Equal(t, gone, rec.Events()[0].Target)
}

func TestOptimize_EmptyBuild(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockEngine := mocks.NewMockEngine(ctrl)

	s := newSite(t)
	rec := status.NewRecorder(nil)
	saved, err := newOptimizer(s, mockEngine, manifest.NewStore(s.buildDir, mockLogger), rec, mockLogger).
		Optimize(context.Background(), nil, options(true))
	require.NoError(t, err)

	assert.Zero(t, saved)
	assert.Equal(t, []string{
		"build/imageoptim.manifest.yml updated",
		"Total savings: 0 B",
	}, messages(rec.Events()))
	assert.FileExists(t, domain.ManifestPath(s.buildDir))
}
