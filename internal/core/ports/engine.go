package ports

import (
	"context"
	"iter"

	"go.trai.ch/imgopt/internal/core/domain"
)

// Engine is the external optimization engine.
//
//go:generate go run go.uber.org/mock/mockgen -source=engine.go -destination=mocks/mock_engine.go -package=mocks
type Engine interface {
	// Optimizable reports whether the engine supports the file format of path.
	Optimizable(path string) bool

	// OptimizeBatch optimizes paths and yields exactly one result per input path.
	// Results may arrive in any order. Failures are reported per result, never by aborting the batch.
	OptimizeBatch(ctx context.Context, paths []string) iter.Seq[domain.EngineResult]
}

// EngineFactory constructs an Engine configured with engine-specific options.
type EngineFactory interface {
	New(opts domain.EngineOptions) (Engine, error)
}
