package domain

import (
	"path/filepath"
	"strings"
)

const (
	// ManifestFileName is the name of the manifest file inside the build directory.
	ManifestFileName = "imageoptim.manifest.yml"

	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "imgopt.yaml"

	// DefaultBuildDir is the build output directory used when none is configured.
	DefaultBuildDir = "build"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// ScratchGlob matches the names of engine scratch copies.
	ScratchGlob = ".*" + scratchMarker + "*"

	scratchMarker = ".imgopt-"
)

// ScratchPattern returns the os.CreateTemp pattern for a scratch copy of path.
// The extension is kept because tools detect formats by name.
func ScratchPattern(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return "." + strings.TrimSuffix(base, ext) + scratchMarker + "*" + ext
}

// ManifestPath returns the location of the manifest for a build directory.
func ManifestPath(buildDir string) string {
	return filepath.Join(buildDir, ManifestFileName)
}

// ArtifactID converts a path inside buildDir into its artifact identity:
// the slash separated path relative to the build directory.
// Paths outside buildDir are returned cleaned and slash separated.
func ArtifactID(buildDir, path string) string {
	rel, err := filepath.Rel(buildDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(filepath.Clean(path))
	}
	return filepath.ToSlash(rel)
}

// ArtifactPath is the inverse of ArtifactID.
func ArtifactPath(buildDir, id string) string {
	return filepath.Join(buildDir, filepath.FromSlash(id))
}
