package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/imgopt/internal/core/ports"
)

// WalkerNodeID is the unique identifier for the file lister Graft node.
const WalkerNodeID graft.ID = "adapter.fs.walker"

func init() {
	graft.Register(graft.Node[ports.FileLister]{
		ID:        WalkerNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.FileLister, error) {
			return NewBuildWalker(), nil
		},
	})
}
