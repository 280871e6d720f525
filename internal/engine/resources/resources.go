// Package resources reconciles a site's resource list with optimized build output.
package resources

import (
	"os"
	"path/filepath"

	"go.trai.ch/imgopt/internal/core/domain"
	"go.trai.ch/imgopt/internal/core/ports"
)

// List rewrites sitemap resources to serve already optimized build files.
type List struct {
	manifest ports.Manifest
	buildDir string
	root     string
}

// New creates a List for the build directory holding manifest.
// Relative source paths are resolved against root.
func New(manifest ports.Manifest, root string) *List {
	return &List{
		manifest: manifest,
		buildDir: filepath.Dir(manifest.Path()),
		root:     root,
	}
}

// Manipulate returns resources with every up-to-date image page served from
// the build directory, followed by the manifest resource. Order is preserved.
func (l *List) Manipulate(resources []domain.Resource, opts domain.OptimizationOptions) []domain.Resource {
	out := make([]domain.Resource, 0, len(resources)+1)
	for _, r := range resources {
		if buildPath, ok := l.upToDate(r, opts); ok {
			r = r.WithSource(buildPath)
		}
		out = append(out, r)
	}
	return append(out, l.manifestResource())
}

// upToDate reports whether the build output of r is newer than its source.
func (l *List) upToDate(r domain.Resource, opts domain.OptimizationOptions) (string, bool) {
	if r.Kind != domain.KindPage || !opts.Eligible(filepath.Ext(r.DestinationPath)) {
		return "", false
	}

	buildPath := domain.ArtifactPath(l.buildDir, r.DestinationPath)
	built, err := os.Stat(buildPath)
	if err != nil {
		return "", false
	}

	if r.SourcePath == "" {
		return "", false
	}
	source, err := os.Stat(l.resolve(r.SourcePath))
	if err != nil {
		return "", false
	}

	return buildPath, built.ModTime().After(source.ModTime())
}

func (l *List) manifestResource() domain.Resource {
	r := domain.Resource{Kind: domain.KindManifest, DestinationPath: domain.ManifestFileName}
	if l.manifest.Exists() {
		r.SourcePath = l.manifest.Path()
	}
	return r
}

func (l *List) resolve(path string) string {
	if filepath.IsAbs(path) || l.root == "" {
		return path
	}
	return filepath.Join(l.root, path)
}
