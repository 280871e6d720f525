// Package fs provides file system adapters for enumerating build output.
package fs

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/imgopt/internal/core/domain"
	"go.trai.ch/zerr"
)

// Walker lists the regular files of a build directory.
type Walker struct {
	ignores []string
}

// NewWalker creates a new Walker. Directory or file names matching any of the
// ignore patterns are skipped.
func NewWalker(ignores ...string) *Walker {
	return &Walker{ignores: ignores}
}

// NewBuildWalker creates a Walker for build output. Leftover engine scratch
// copies from an interrupted pass are not listed.
func NewBuildWalker() *Walker {
	return NewWalker(domain.ScratchGlob)
}

// ListFiles returns every regular file under root in lexical order.
// A missing root or an unreadable directory is fatal.
func (w *Walker) ListFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrBuildDirNotFound.Error()), "path", root)
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrBuildDirUnreadable.Error()), "path", root)
	}
	if !info.IsDir() {
		return nil, zerr.With(domain.ErrBuildDirNotFound, "path", root)
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if path != root && w.ignored(d) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrBuildDirUnreadable.Error()), "path", root)
	}

	return files, nil
}

// ignored reports whether an entry is excluded from the listing.
func (w *Walker) ignored(d fs.DirEntry) bool {
	name := d.Name()

	// Always skip VCS metadata
	if d.IsDir() && (name == ".git" || name == ".jj") {
		return true
	}

	for _, ignore := range w.ignores {
		if matched, _ := filepath.Match(ignore, name); matched {
			return true
		}
	}

	return false
}
