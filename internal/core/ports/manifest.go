package ports

import "time"

// Manifest is the persisted record of the modification time each artifact had when it was last optimized.
//
//go:generate go run go.uber.org/mock/mockgen -source=manifest.go -destination=mocks/mock_manifest.go -package=mocks
type Manifest interface {
	// Lookup returns the recorded modification time of the artifact, or false if there is no entry.
	Lookup(id string) (time.Time, bool)

	// RebuildAndPersist replaces every entry with the current modification times of ids
	// and atomically rewrites the manifest file.
	RebuildAndPersist(ids []string) error

	// Path returns the absolute location of the manifest file.
	Path() string

	// Exists reports whether the manifest file is present on disk.
	Exists() bool
}

// ManifestFactory opens the manifest of a build directory.
type ManifestFactory interface {
	// Open returns the manifest for buildDir. Loading is deferred until first use.
	Open(buildDir string) Manifest
}
