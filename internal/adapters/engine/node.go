package engine

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/imgopt/internal/adapters/logger"
	"go.trai.ch/imgopt/internal/core/ports"
)

// NodeID is the unique identifier for the engine factory Graft node.
const NodeID graft.ID = "adapter.engine"

func init() {
	graft.Register(graft.Node[ports.EngineFactory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.EngineFactory, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewFactory(log), nil
		},
	})
}
