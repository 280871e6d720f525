// Package optimizer implements the incremental image optimization pass.
package optimizer

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/imgopt/internal/core/domain"
	"go.trai.ch/imgopt/internal/core/ports"
	"go.trai.ch/zerr"
)

// modeMask selects the bits preserved across a replacement.
const modeMask = fs.ModePerm | fs.ModeSetuid | fs.ModeSetgid | fs.ModeSticky

// Optimizer runs one pass over the files of a build directory.
type Optimizer struct {
	engine   ports.Engine
	manifest ports.Manifest
	sink     ports.StatusSink
	logger   ports.Logger
	tracer   ports.Tracer

	buildDir string
	root     string
}

// New creates an Optimizer. The build directory is the one holding the manifest.
func New(
	engine ports.Engine,
	manifest ports.Manifest,
	sink ports.StatusSink,
	logger ports.Logger,
	tracer ports.Tracer,
) *Optimizer {
	buildDir := filepath.Dir(manifest.Path())
	return &Optimizer{
		engine:   engine,
		manifest: manifest,
		sink:     sink,
		logger:   logger,
		tracer:   tracer,
		buildDir: buildDir,
		root:     filepath.Dir(buildDir),
	}
}

// WithRoot sets the directory status messages are relative to.
// It defaults to the parent of the build directory.
func (o *Optimizer) WithRoot(root string) *Optimizer {
	o.root = root
	return o
}

// Optimize processes the stale eligible files among files and returns the bytes saved.
// Per-file problems are reported as status events. Only a manifest write failure is fatal.
func (o *Optimizer) Optimize(ctx context.Context, files []string, opts domain.OptimizationOptions) (int64, error) {
	ctx, span := o.tracer.Start(ctx, "optimize")
	defer span.End()

	eligible := o.eligible(files, opts)
	stale := o.stale(eligible, opts)
	modes, work := o.captureModes(stale)

	span.SetAttribute("imgopt.files", len(files))
	span.SetAttribute("imgopt.eligible", len(eligible))
	span.SetAttribute("imgopt.stale", len(stale))
	span.SetAttribute("imgopt.manifest", opts.Manifest)

	var savings int64
	if len(work) > 0 {
		_, batchSpan := o.tracer.Start(ctx, "engine")
		for result := range o.engine.OptimizeBatch(ctx, work) {
			mode, captured := modes[result.Source]
			savings += o.apply(result, mode, captured)
		}
		batchSpan.End()
	}
	span.SetAttribute("imgopt.saved_bytes", savings)

	if opts.Manifest {
		ids := make([]string, len(eligible))
		for i, path := range eligible {
			ids[i] = domain.ArtifactID(o.buildDir, path)
		}
		if err := o.manifest.RebuildAndPersist(ids); err != nil {
			span.RecordError(err)
			return savings, err
		}
		o.emit(domain.StatusManifest, o.manifest.Path(), o.display(o.manifest.Path())+" updated")
	}

	o.emit(domain.StatusSummary, "", "Total savings: "+domain.FormatSize(savings))
	return savings, nil
}

// eligible keeps files with a configured extension that the engine supports, in input order.
func (o *Optimizer) eligible(files []string, opts domain.OptimizationOptions) []string {
	var out []string
	for _, path := range files {
		if opts.Eligible(filepath.Ext(path)) && o.engine.Optimizable(path) {
			out = append(out, path)
		}
	}
	return out
}

// stale keeps files whose modification time differs from the recorded one.
func (o *Optimizer) stale(eligible []string, opts domain.OptimizationOptions) []string {
	if !opts.Manifest {
		return eligible
	}

	var out []string
	for _, path := range eligible {
		recorded, ok := o.manifest.Lookup(domain.ArtifactID(o.buildDir, path))
		if !ok {
			out = append(out, path)
			continue
		}
		info, err := os.Stat(path)
		if err != nil || !info.ModTime().Equal(recorded) {
			out = append(out, path)
		}
	}
	return out
}

// captureModes records the mode of every stale file before the engine touches it.
// Files that cannot be inspected are reported and left out of the work set.
func (o *Optimizer) captureModes(stale []string) (map[string]fs.FileMode, []string) {
	modes := make(map[string]fs.FileMode, len(stale))
	work := make([]string, 0, len(stale))
	for _, path := range stale {
		info, err := os.Stat(path)
		if err != nil {
			o.warn(path, zerr.With(zerr.Wrap(err, domain.ErrPermissionReadFailed.Error()), "path", path))
			continue
		}
		modes[path] = info.Mode() & modeMask
		work = append(work, path)
	}
	return modes, work
}

// apply installs a replacement or reports the decline, then restores the mode.
// It returns the bytes saved.
func (o *Optimizer) apply(result domain.EngineResult, mode fs.FileMode, captured bool) int64 {
	source := result.Source
	saved, replaced := o.replace(result)
	if !replaced {
		o.emit(domain.StatusSkipped, source, "[skipped] "+o.display(source)+" not updated")
	}
	if captured {
		o.restoreMode(source, mode)
	}
	return saved
}

func (o *Optimizer) replace(result domain.EngineResult) (int64, bool) {
	source := result.Source
	if result.Err != nil {
		o.logWarn(zerr.With(result.Err, "path", source))
		discard(result.Replacement)
		return 0, false
	}
	if !result.Replaced() {
		return 0, false
	}

	original, err := os.Stat(source)
	if err != nil {
		o.warn(source, zerr.With(zerr.Wrap(err, domain.ErrReplaceFailed.Error()), "path", source))
		discard(result.Replacement)
		return 0, false
	}
	replacement, err := os.Stat(result.Replacement)
	if err != nil {
		o.warn(source, zerr.With(zerr.Wrap(err, domain.ErrReplaceFailed.Error()), "path", source))
		return 0, false
	}
	if replacement.Size() >= original.Size() {
		discard(result.Replacement)
		return 0, false
	}

	if err := os.Rename(result.Replacement, source); err != nil {
		o.warn(source, zerr.With(zerr.Wrap(err, domain.ErrReplaceFailed.Error()), "path", source))
		discard(result.Replacement)
		return 0, false
	}

	stats := domain.NewSizeStats(original.Size(), replacement.Size())
	o.emit(domain.StatusProcessed, source, domain.ProcessedMessage(o.display(source), stats))
	return original.Size() - replacement.Size(), true
}

// restoreMode puts the pre-captured mode back if the file now differs.
func (o *Optimizer) restoreMode(path string, mode fs.FileMode) {
	info, err := os.Stat(path)
	if err != nil {
		o.warn(path, zerr.With(zerr.Wrap(err, domain.ErrPermissionReadFailed.Error()), "path", path))
		return
	}
	if info.Mode()&modeMask == mode {
		return
	}

	if err := chmod(path, mode); err != nil {
		o.warn(path, zerr.With(zerr.Wrap(err, domain.ErrPermissionRestoreFailed.Error()), "path", path))
		return
	}
	o.emit(domain.StatusPermission, path, fmt.Sprintf("fixed file mode on %s file to match source", o.display(path)))
}

// chmod changes the mode through a handle that is closed before returning.
func chmod(path string, mode fs.FileMode) error {
	f, err := os.Open(path) //nolint:gosec // Path comes from the build directory listing
	if err != nil {
		return err
	}
	chmodErr := f.Chmod(mode)
	closeErr := f.Close()
	if chmodErr != nil {
		return chmodErr
	}
	return closeErr
}

func discard(path string) {
	if path != "" {
		_ = os.Remove(path)
	}
}

// display renders path relative to the project root when it lies beneath it.
func (o *Optimizer) display(path string) string {
	if o.root == "" {
		return path
	}
	rel, err := filepath.Rel(o.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}

func (o *Optimizer) emit(category domain.StatusCategory, target, message string) {
	if o.sink == nil {
		return
	}
	o.sink.Emit(domain.StatusEvent{Category: category, Target: target, Message: message})
}

// warn reports a per-file problem both to the user and to the log.
func (o *Optimizer) warn(path string, err error) {
	o.emit(domain.StatusWarning, path, o.display(path)+": "+zerrMessage(err))
	o.logWarn(err)
}

func (o *Optimizer) logWarn(err error) {
	if o.logger != nil {
		o.logger.Warn(err.Error())
	}
}

func zerrMessage(err error) string {
	if m, ok := err.(interface{ Message() string }); ok {
		return m.Message()
	}
	return err.Error()
}
