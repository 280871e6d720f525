package manifest

import "go.trai.ch/imgopt/internal/core/ports"

var _ ports.ManifestFactory = (*Factory)(nil)

// Factory opens manifests for build directories.
type Factory struct {
	logger ports.Logger
}

// NewFactory creates a Factory that reports corrupt manifests to logger.
func NewFactory(logger ports.Logger) *Factory {
	return &Factory{logger: logger}
}

// Open returns the manifest for buildDir.
func (f *Factory) Open(buildDir string) ports.Manifest {
	return NewStore(buildDir, f.logger)
}
