// Package engine provides the tool-chain optimization engine.
package engine

import (
	"context"
	"io"
	"iter"
	"os"
	"path/filepath"
	"runtime"

	"go.trai.ch/imgopt/internal/core/domain"
	"go.trai.ch/imgopt/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

var _ ports.Engine = (*Engine)(nil)

// Engine runs a chain of tools over a scratch copy of each file and
// offers the copy as a replacement when it ended up smaller.
type Engine struct {
	threads int
	tools   []tool
}

// tool is a configured optimizer together with its availability on this host.
type tool struct {
	def       domain.Tool
	run       runner
	available bool
}

// Optimizable reports whether at least one available tool handles the extension of path.
func (e *Engine) Optimizable(path string) bool {
	return len(e.chain(filepath.Ext(path))) > 0
}

// OptimizeBatch optimizes paths on a bounded worker pool and yields one result per path
// in completion order.
func (e *Engine) OptimizeBatch(ctx context.Context, paths []string) iter.Seq[domain.EngineResult] {
	return func(yield func(domain.EngineResult) bool) {
		results := make(chan domain.EngineResult)
		done := make(chan struct{})
		defer close(done)

		go func() {
			defer close(results)

			g := new(errgroup.Group)
			g.SetLimit(e.threads)

		dispatch:
			for _, path := range paths {
				select {
				case <-done:
					break dispatch
				default:
				}

				g.Go(func() error {
					result := e.optimizeFile(ctx, path)
					select {
					case results <- result:
					case <-done:
						discard(result)
					}
					return nil
				})
			}

			_ = g.Wait()
		}()

		for result := range results {
			if !yield(result) {
				return
			}
		}
	}
}

// chain returns the available tools for ext in configuration order.
func (e *Engine) chain(ext string) []tool {
	if ext == "" {
		return nil
	}
	var out []tool
	for _, t := range e.tools {
		if t.available && t.def.Handles(ext) {
			out = append(out, t)
		}
	}
	return out
}

func (e *Engine) optimizeFile(ctx context.Context, path string) domain.EngineResult {
	result := domain.EngineResult{Source: path}

	chain := e.chain(filepath.Ext(path))
	if len(chain) == 0 {
		return result
	}

	info, err := os.Stat(path)
	if err != nil {
		result.Err = zerr.With(zerr.Wrap(err, domain.ErrWorkspaceFailed.Error()), "path", path)
		return result
	}

	scratch, err := copyToScratch(path)
	if err != nil {
		result.Err = zerr.With(zerr.Wrap(err, domain.ErrWorkspaceFailed.Error()), "path", path)
		return result
	}

	for _, t := range chain {
		if err := t.run(ctx, scratch); err != nil {
			_ = os.Remove(scratch)
			result.Err = zerr.With(zerr.With(zerr.Wrap(err, domain.ErrToolFailed.Error()), "tool", t.def.Name), "path", path)
			return result
		}
	}

	optimized, err := os.Stat(scratch)
	if err != nil || optimized.Size() >= info.Size() {
		_ = os.Remove(scratch)
		return result
	}

	result.Replacement = scratch
	return result
}

// copyToScratch copies path to a temp file in the same directory so the
// replacement can later be renamed over the original. The copy gets the
// permission bits of the source.
func copyToScratch(path string) (string, error) {
	src, err := os.Open(path) //nolint:gosec // Path comes from the build directory listing
	if err != nil {
		return "", err
	}
	defer src.Close() //nolint:errcheck // Read-only file

	info, err := src.Stat()
	if err != nil {
		return "", err
	}

	dst, err := os.CreateTemp(filepath.Dir(path), domain.ScratchPattern(path))
	if err != nil {
		return "", err
	}
	if err := dst.Chmod(info.Mode().Perm()); err != nil {
		_ = dst.Close()
		_ = os.Remove(dst.Name())
		return "", err
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(dst.Name())
		return "", err
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(dst.Name())
		return "", err
	}

	return dst.Name(), nil
}

// discard removes a replacement nobody will consume.
func discard(result domain.EngineResult) {
	if result.Replacement != "" {
		_ = os.Remove(result.Replacement)
	}
}

func threadCount(n int) int {
	if n > 0 {
		return n
	}
	return runtime.NumCPU()
}
