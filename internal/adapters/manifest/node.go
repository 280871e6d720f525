package manifest

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/imgopt/internal/adapters/logger"
	"go.trai.ch/imgopt/internal/core/ports"
)

// NodeID is the unique identifier for the manifest factory Graft node.
const NodeID graft.ID = "adapter.manifest"

func init() {
	graft.Register(graft.Node[ports.ManifestFactory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.ManifestFactory, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewFactory(log), nil
		},
	})
}
