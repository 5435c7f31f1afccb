package engine

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/composition"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/engine/systems"
)

// BuildRenderTargets creates the render targets of the configuration by name.
func BuildRenderTargets(configs []RenderTargetConfig) map[string]*metadata.RenderTarget {
	targets := make(map[string]*metadata.RenderTarget, len(configs))
	for i, c := range configs {
		samples := c.Samples
		if samples == 0 {
			samples = 1
		}
		targets[c.Name] = &metadata.RenderTarget{
			ID:          uint32(i),
			Name:        c.Name,
			Width:       c.Width,
			Height:      c.Height,
			SampleCount: samples,
			Depth:       c.Depth,
			Stencil:     c.Stencil,
		}
	}
	return targets
}

/**
 * @brief Creates the layers and lights of the configuration, pushes their
 * sub-layers and registers the configured cameras, acquired from the camera
 * system. All opaque sub-layers come first, then the transparent ones, each
 * group in configuration order.
 */
func BuildComposition(config *EngineConfig, cameras *systems.CameraSystem, targets map[string]*metadata.RenderTarget, metrics *core.Metrics) (*composition.LayerComposition, error) {
	lights := make(map[string]*metadata.Light, len(config.Lights))
	for i, lc := range config.Lights {
		lightType, err := parseLightType(lc.Type)
		if err != nil {
			err = fmt.Errorf("light '%s': %w", lc.Name, err)
			core.LogError(err.Error())
			return nil, err
		}
		light := metadata.NewLight(lc.Name, lightType)
		light.ID = uint32(i)
		light.CastShadows = lc.CastShadows
		if lc.Mask != 0 {
			light.Mask = lc.Mask
		}
		if lc.Intensity != 0 {
			light.Intensity = lc.Intensity
		}
		if col, _ := parseColour(lc.Colour); col != nil {
			light.Colour = *col
		}
		lights[lc.Name] = light
	}

	layerIDs := make(map[string]uint32, len(config.Layers))
	layers := make([]*metadata.Layer, 0, len(config.Layers))
	for i, c := range config.Layers {
		layer := metadata.NewLayer(uint32(i+1), c.Name)
		layer.Enabled = !c.Disabled
		if c.RenderTarget != "" {
			rt, ok := targets[c.RenderTarget]
			if !ok {
				err := fmt.Errorf("%w: layer '%s' references unknown render target '%s'", core.ErrInvalidRenderTarget, c.Name, c.RenderTarget)
				core.LogError(err.Error())
				return nil, err
			}
			layer.RenderTarget = rt
		}
		layer.ClearColourBuffer = c.ClearColourBuffer
		layer.ClearDepthBuffer = c.ClearDepthBuffer
		layer.ClearStencilBuffer = c.ClearStencilBuffer
		if col, _ := parseColour4(c.ClearColour); col != nil {
			layer.ClearColour = *col
		}
		for _, name := range c.Lights {
			light, ok := lights[name]
			if !ok {
				err := fmt.Errorf("layer '%s' references unknown light '%s'", c.Name, name)
				core.LogError(err.Error())
				return nil, err
			}
			layer.AddLight(light)
		}
		layerIDs[c.Name] = layer.ID
		layers = append(layers, layer)
	}

	comp := composition.NewLayerComposition(config.Name, config.ActionPoolSize, metrics)
	comp.ClusteredLighting = config.ClusteredLighting
	for _, layer := range layers {
		comp.Push(layer, false)
	}
	for i, layer := range layers {
		if config.Layers[i].Transparent {
			comp.Push(layer, true)
		}
	}

	for _, c := range config.Cameras {
		cam, err := cameras.Acquire(c.Name)
		if err != nil {
			return nil, err
		}
		cam.Enabled = !c.Disabled
		cam.Priority = c.Priority
		cam.Layers = cam.Layers[:0]
		for _, name := range c.Layers {
			id, ok := layerIDs[name]
			if !ok {
				err := fmt.Errorf("camera '%s' references unknown layer '%s'", c.Name, name)
				core.LogError(err.Error())
				return nil, err
			}
			cam.Layers = append(cam.Layers, id)
		}
		if c.RenderTarget != "" {
			rt, ok := targets[c.RenderTarget]
			if !ok {
				err := fmt.Errorf("%w: camera '%s' references unknown render target '%s'", core.ErrInvalidRenderTarget, c.Name, c.RenderTarget)
				core.LogError(err.Error())
				return nil, err
			}
			cam.RenderTarget = rt
		}
		if col, _ := parseColour4(c.ClearColour); col != nil {
			cam.ClearColour = *col
		}
		if c.ClearColourBuffer != nil {
			cam.ClearColourBuffer = *c.ClearColourBuffer
		}
		if c.ClearDepthBuffer != nil {
			cam.ClearDepthBuffer = *c.ClearDepthBuffer
		}
		if c.ClearStencilBuffer != nil {
			cam.ClearStencilBuffer = *c.ClearStencilBuffer
		}
		cam.PostEffectsEnabled = c.PostEffects
		cam.DisablePostEffectsLayer = metadata.InvalidID
		if c.DisablePostEffectsLayer != "" {
			cam.DisablePostEffectsLayer = layerIDs[c.DisablePostEffectsLayer]
		}
		if len(c.Position) == 3 {
			cam.SetPosition(mgl32.Vec3{c.Position[0], c.Position[1], c.Position[2]})
		}
		comp.AddCamera(cam)
	}

	core.LogDebug("composition '%s' built: %d layers, %d sub-layers, %d cameras, %d lights",
		config.Name, len(layers), comp.Len(), len(config.Cameras), len(lights))
	return comp, nil
}
