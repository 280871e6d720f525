package domain

import (
	"slices"
	"time"
)

// OptimizationOptions controls a single optimization pass.
type OptimizationOptions struct {
	// Manifest enables staleness tracking. When false every eligible file is reprocessed.
	Manifest bool
	// ImageExtensions lists the file extensions (including the leading dot) eligible for optimization.
	ImageExtensions []string
	// Engine is passed through to the optimization engine unmodified.
	Engine EngineOptions
}

// Eligible reports whether ext is one of the configured image extensions.
// The match is exact and case-sensitive.
func (o OptimizationOptions) Eligible(ext string) bool {
	return ext != "" && slices.Contains(o.ImageExtensions, ext)
}

// EngineOptions is the engine-specific tuning bag.
type EngineOptions struct {
	// Threads bounds the number of files optimized concurrently. Zero means runtime.NumCPU().
	Threads int
	// Timeout bounds each external tool invocation. Zero means no timeout.
	Timeout time.Duration
	// Tools is the ordered chain of optimizers applied per extension.
	Tools []Tool
}

// Tool describes one optimizer in the engine chain.
type Tool struct {
	// Name identifies the tool in logs.
	Name string
	// Extensions restricts the tool to files with these extensions.
	Extensions []string
	// Command is the argv of an external binary. The "{file}" placeholder is replaced with the path to optimize.
	Command []string
	// Builtin selects an in-process optimizer instead of Command.
	Builtin string
}

// Handles reports whether the tool applies to files with the given extension.
func (t Tool) Handles(ext string) bool {
	return slices.Contains(t.Extensions, ext)
}

// DefaultImageExtensions are the extensions optimized when none are configured.
func DefaultImageExtensions() []string {
	return []string{".png", ".jpg", ".jpeg", ".gif", ".svg"}
}
