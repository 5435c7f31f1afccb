package testbed

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/prism/engine"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/components"
	"github.com/spaghettifunk/prism/engine/renderer/material"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	WorldCamera *components.Camera
	elapsed     float64

	materials []*material.Material
	draws     []engine.Draw
}

// Materials loaded from the assets directory, with an in-memory fallback
// when the file is missing.
var sceneMaterials = []*metadata.MaterialConfig{
	{
		Name:         "brick",
		ShadingModel: "blinn",
		Colours:      map[string][]float32{"diffuse": {0.8, 0.4, 0.3}},
		Floats:       map[string]float32{"shininess": 40},
	},
	{
		Name:    "glass",
		Colours: map[string][]float32{"diffuse": {0.6, 0.8, 1.0}},
		Floats:  map[string]float32{"opacity": 0.35},
		Flags:   map[string]bool{"useMetalness": true},
	},
	{
		Name:  "hud",
		Flags: map[string]bool{"useLighting": false, "useFog": false},
	},
}

func NewTestGame(config *engine.EngineConfig) *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			Config: config,
			State:  &gameState{},
		},
	}
	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnShutdown = tg.Shutdown
	return tg
}

func (g *TestGame) Initialize() error {
	core.LogDebug("TestGame Initialize fn....")

	if g.Engine == nil {
		return fmt.Errorf("the engine is not yet initialized with all the system managers")
	}
	state := g.State.(*gameState)
	sm := g.Engine.SystemManager()

	for _, cfg := range sceneMaterials {
		m, err := sm.MaterialSystem.Acquire(cfg.Name)
		if errors.Is(err, core.ErrUnknownMaterial) {
			core.LogInfo("material '%s' not found in assets, using the built-in one", cfg.Name)
			m, err = sm.MaterialSystem.AcquireFromConfig(cfg)
			if err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
		state.materials = append(state.materials, m)
	}

	cameras := g.Engine.Composition().Cameras()
	if len(cameras) == 0 {
		return fmt.Errorf("the composition has no cameras")
	}
	state.WorldCamera = cameras[0]
	state.WorldCamera.SetPosition(mgl32.Vec3{10.5, 5.0, 9.5})

	brick, glass, hud := state.materials[0], state.materials[1], state.materials[2]
	state.draws = []engine.Draw{
		{Name: "wall", Layer: "world", Material: brick},
		{Name: "skinned_statue", Layer: "world", Material: brick, Defs: material.ShaderDefSkin | material.ShaderDefUV0},
		{Name: "crowd", Layer: "world", Material: brick, Defs: material.ShaderDefInstancing | material.ShaderDefUV0},
		{Name: "window", Layer: "world", Transparent: true, Material: glass, Defs: material.ShaderDefNoShadow},
		{Name: "crosshair", Layer: "ui", Material: hud, Defs: material.ShaderDefScreenSpace | material.ShaderDefNoShadow},
	}
	return nil
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.State.(*gameState)
	state.elapsed += deltaTime
	// Slowly orbit the world camera.
	state.WorldCamera.SetEulerRotation(mgl32.Vec3{0, float32(state.elapsed * 0.5), 0})
	return nil
}

func (g *TestGame) Render(deltaTime float64) ([]engine.Draw, error) {
	return g.State.(*gameState).draws, nil
}

func (g *TestGame) Shutdown() error {
	state := g.State.(*gameState)
	for _, m := range state.materials {
		g.Engine.SystemManager().MaterialSystem.Release(m.Name)
	}
	state.materials = nil
	state.draws = nil
	return nil
}
