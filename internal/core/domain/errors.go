package domain

import "go.trai.ch/zerr"

var (
	// ErrBuildDirNotFound is returned when the build output directory does not exist or is not a directory.
	ErrBuildDirNotFound = zerr.New("build directory not found")

	// ErrBuildDirUnreadable is returned when the build output directory cannot be enumerated.
	ErrBuildDirUnreadable = zerr.New("failed to read build directory")

	// ErrManifestReadFailed is returned when the manifest file exists but cannot be read.
	ErrManifestReadFailed = zerr.New("failed to read manifest")

	// ErrManifestCorrupt is returned when the manifest content cannot be decoded or fails its checksum.
	ErrManifestCorrupt = zerr.New("manifest is corrupt")

	// ErrManifestMarshalFailed is returned when the manifest cannot be encoded.
	ErrManifestMarshalFailed = zerr.New("failed to marshal manifest")

	// ErrManifestWriteFailed is returned when the manifest cannot be written to disk.
	ErrManifestWriteFailed = zerr.New("failed to write manifest")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidTimeout is returned when the engine timeout is not a valid duration.
	ErrInvalidTimeout = zerr.New("invalid engine timeout, expected a duration such as '30s'")

	// ErrUnknownBuiltin is returned when a tool references a builtin optimizer that does not exist.
	ErrUnknownBuiltin = zerr.New("unknown builtin optimizer")

	// ErrToolWithoutCommand is returned when a tool defines neither a command nor a builtin.
	ErrToolWithoutCommand = zerr.New("tool must define either cmd or builtin")

	// ErrSitemapNotConfigured is returned when reconciliation runs without a sitemap file.
	ErrSitemapNotConfigured = zerr.New("no sitemap configured")

	// ErrSitemapReadFailed is returned when the sitemap file cannot be read.
	ErrSitemapReadFailed = zerr.New("failed to read sitemap")

	// ErrSitemapParseFailed is returned when the sitemap file cannot be parsed.
	ErrSitemapParseFailed = zerr.New("failed to parse sitemap")

	// ErrUnknownResourceKind is returned when a sitemap entry declares an unrecognized kind.
	ErrUnknownResourceKind = zerr.New("unknown resource kind")

	// ErrPermissionReadFailed is returned when a file's permission bits cannot be inspected.
	ErrPermissionReadFailed = zerr.New("failed to read file mode")

	// ErrPermissionRestoreFailed is returned when a file's permission bits cannot be restored.
	ErrPermissionRestoreFailed = zerr.New("failed to restore file mode")

	// ErrReplaceFailed is returned when an optimized file cannot be moved over its original.
	ErrReplaceFailed = zerr.New("failed to replace file with optimized version")

	// ErrToolFailed is returned when an external optimization tool exits unsuccessfully.
	ErrToolFailed = zerr.New("optimization tool failed")

	// ErrWorkspaceFailed is returned when the engine cannot prepare a scratch copy of a file.
	ErrWorkspaceFailed = zerr.New("failed to prepare optimization workspace")

	// ErrOptimizationFailed is returned when an optimization pass cannot complete.
	ErrOptimizationFailed = zerr.New("optimization failed")
)
