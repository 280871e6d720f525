package wiring_test

import (
	"context"
	"testing"

	"github.com/grindlemire/graft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/imgopt/internal/adapters/logger"
	"go.trai.ch/imgopt/internal/adapters/telemetry"
	"go.trai.ch/imgopt/internal/app"
	"go.trai.ch/imgopt/internal/core/ports"
	_ "go.trai.ch/imgopt/internal/wiring"
)

// TestGraftGraph resolves the whole node graph the binary starts from.
func TestGraftGraph(t *testing.T) {
	components, results, err := graft.ExecuteFor[*app.Components](context.Background(), graft.DisableCache())
	require.NoError(t, err)
	require.NotNil(t, components)
	assert.NotNil(t, components.App)
	assert.IsType(t, &logger.Logger{}, components.Logger)

	tracer, err := graft.Result[ports.Tracer](results)
	require.NoError(t, err)
	assert.IsType(t, &telemetry.OTelTracer{}, tracer)

	for _, id := range []graft.ID{
		app.AppNodeID,
		app.ComponentsNodeID,
		logger.NodeID,
		telemetry.TracerNodeID,
	} {
		assert.Contains(t, results, id)
	}
}
