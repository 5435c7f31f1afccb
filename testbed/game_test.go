package testbed

import (
	"testing"

	"github.com/spaghettifunk/prism/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestGameRuns(t *testing.T) {
	config := engine.DefaultConfig()
	config.AssetsDir = t.TempDir()
	config.Layers = []engine.LayerConfig{
		{Name: "world", Transparent: true},
		{Name: "ui"},
	}
	config.Cameras = []engine.CameraConfig{{Name: "main", Layers: []string{"world", "ui"}}}

	tg := NewTestGame(config)
	e, err := engine.New(tg.Game)
	require.NoError(t, err)
	defer e.Shutdown()
	require.NoError(t, e.Initialize())

	// Every material falls back to its built-in config.
	assert.Len(t, e.SystemManager().MaterialSystem.Materials(), 4)

	draws, err := tg.Render(0)
	require.NoError(t, err)
	plan, err := e.Frame(draws)
	require.NoError(t, err)
	assert.Empty(t, plan.Errors)
	assert.Len(t, plan.Actions, 3)
	assert.Equal(t, len(draws), plan.DrawCallCount())

	require.NoError(t, e.Run(2))
	require.NoError(t, e.Shutdown())
	assert.Len(t, e.SystemManager().MaterialSystem.Materials(), 1)
}
