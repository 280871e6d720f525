package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/imgopt/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/imgopt/internal/adapters/engine"    //nolint:depguard // Wired in app layer
	"go.trai.ch/imgopt/internal/adapters/fs"        //nolint:depguard // Wired in app layer
	"go.trai.ch/imgopt/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/imgopt/internal/adapters/manifest"  //nolint:depguard // Wired in app layer
	"go.trai.ch/imgopt/internal/adapters/sitemap"   //nolint:depguard // Wired in app layer
	"go.trai.ch/imgopt/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/imgopt/internal/adapters/watcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/imgopt/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			fs.WalkerNodeID,
			manifest.NodeID,
			engine.NodeID,
			sitemap.NodeID,
			watcher.NodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewComponents(app, log), nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	files, err := graft.Dep[ports.FileLister](ctx)
	if err != nil {
		return nil, err
	}

	manifests, err := graft.Dep[ports.ManifestFactory](ctx)
	if err != nil {
		return nil, err
	}

	engines, err := graft.Dep[ports.EngineFactory](ctx)
	if err != nil {
		return nil, err
	}

	codec, err := graft.Dep[ports.Sitemap](ctx)
	if err != nil {
		return nil, err
	}

	w, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, files, manifests, engines, codec, w, log, tracer), nil
}
