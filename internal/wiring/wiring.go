// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/imgopt/internal/adapters/config"
	_ "go.trai.ch/imgopt/internal/adapters/engine"
	_ "go.trai.ch/imgopt/internal/adapters/fs"
	_ "go.trai.ch/imgopt/internal/adapters/logger"
	_ "go.trai.ch/imgopt/internal/adapters/manifest"
	_ "go.trai.ch/imgopt/internal/adapters/sitemap"
	_ "go.trai.ch/imgopt/internal/adapters/telemetry"
	_ "go.trai.ch/imgopt/internal/adapters/watcher"
	// Register app nodes.
	_ "go.trai.ch/imgopt/internal/app"
)
