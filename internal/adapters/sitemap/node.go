package sitemap

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/imgopt/internal/core/ports"
)

// NodeID is the unique identifier for the sitemap codec Graft node.
const NodeID graft.ID = "adapter.sitemap"

func init() {
	graft.Register(graft.Node[ports.Sitemap]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Sitemap, error) {
			return NewCodec(), nil
		},
	})
}
