package domain

// Config is the resolved project configuration.
type Config struct {
	// Root is the project root all other paths are resolved against.
	Root string
	// BuildDir is the absolute path of the build output directory.
	BuildDir string
	// Sitemap is the absolute path of the sitemap file used for reconciliation. Optional.
	Sitemap string
	// Status selects the status sink: "linear" or "none".
	Status string
	// Options drives the optimization pass.
	Options OptimizationOptions
}
