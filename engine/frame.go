package engine

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/composition"
	"github.com/spaghettifunk/prism/engine/renderer/material"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

/**
 * @brief A renderable submitted for one frame.
 */
type Draw struct {
	Name string
	/** @brief Name of the layer the draw belongs to. */
	Layer       string
	Transparent bool
	/** @brief nil draws with the default material. */
	Material *material.Material
	Defs     material.ShaderDef
	/** @brief Baked lights compiled into the variant. */
	StaticLights []*metadata.Light
}

/**
 * @brief A draw resolved to a program for one pass.
 */
type DrawCall struct {
	Draw    *Draw
	Pass    metadata.ShaderPass
	Program *metadata.Program
	/** @brief The shadow casting light, shadow pass only. */
	Light *metadata.Light
}

type ActionPlan struct {
	Action      *composition.RenderAction
	Layer       *metadata.Layer
	Transparent bool
	Calls       []DrawCall
	/** @brief Shadow map renders done before the camera's first action. */
	ShadowCalls []DrawCall
}

/**
 * @brief What a frame renders, in order. Draws whose variant failed to
 * generate are left out and their errors collected.
 */
type FramePlan struct {
	Frame   uint64
	Rebuilt bool
	Actions []ActionPlan
	Errors  []error
}

func (p *FramePlan) DrawCallCount() int {
	count := 0
	for _, a := range p.Actions {
		count += len(a.Calls) + len(a.ShadowCalls)
	}
	return count
}

/**
 * @brief Runs one frame on the calling thread: applies pending asset events,
 * updates the uniforms of every material in use, updates the composition,
 * allocates missing view bind groups and resolves a program per draw and
 * pass.
 * @return An error only for configuration errors; variant failures are
 * reported in FramePlan.Errors.
 */
func (e *Engine) Frame(draws []Draw) (*FramePlan, error) {
	if e.composition == nil {
		return nil, fmt.Errorf("engine must be initialized before rendering a frame")
	}
	e.frameNumber++
	if fired := e.assetManager.DrainEvents(e.events); fired > 0 {
		core.LogDebug("frame %d: applied %d asset events", e.frameNumber, fired)
	}

	defaultMaterial := e.systemManager.MaterialSystem.DefaultMaterial
	updated := make(map[*material.Material]struct{})
	for i := range draws {
		m := draws[i].Material
		if m == nil {
			m = defaultMaterial
		}
		if _, ok := updated[m]; ok {
			continue
		}
		m.UpdateUniforms(e.scene)
		updated[m] = struct{}{}
	}

	rebuilt, err := e.composition.Update()
	if err != nil {
		return nil, err
	}

	plan := &FramePlan{Frame: e.frameNumber, Rebuilt: rebuilt}
	for _, ra := range e.composition.RenderActions() {
		if !ra.IsLayerEnabled(e.composition) {
			continue
		}
		if len(ra.ViewBindGroups) == 0 {
			ra.ViewBindGroups = append(ra.ViewBindGroups, e.newViewBindGroup())
		}
		layer, transparent := e.composition.LayerAt(ra.LayerIndex)
		ap := ActionPlan{Action: ra, Layer: layer, Transparent: transparent}

		if ra.FirstCameraUse && e.scene.LightingShadowsEnabled {
			for _, light := range ra.DirectionalLights {
				for i := range draws {
					d := &draws[i]
					if d.Transparent || d.Defs.Has(material.ShaderDefNoShadow) || !e.cameraRendersDraw(ra, d) {
						continue
					}
					if call, ok := e.resolve(plan, d, metadata.ShaderPassShadow, material.SortedLights{}); ok {
						call.Light = light
						ap.ShadowCalls = append(ap.ShadowCalls, call)
					}
				}
			}
		}

		sorted := sortedLightsOf(layer)
		for i := range draws {
			d := &draws[i]
			if d.Layer != layer.Name || d.Transparent != transparent {
				continue
			}
			if call, ok := e.resolve(plan, d, metadata.ShaderPassForward, sorted); ok {
				ap.Calls = append(ap.Calls, call)
			}
		}
		plan.Actions = append(plan.Actions, ap)
	}
	return plan, nil
}

func (e *Engine) resolve(plan *FramePlan, d *Draw, pass metadata.ShaderPass, sorted material.SortedLights) (DrawCall, bool) {
	m := d.Material
	if m == nil {
		m = e.systemManager.MaterialSystem.DefaultMaterial
	}
	program, err := m.GetShaderVariant(e.systemManager.ShaderSystem, e.scene, d.Defs, d.StaticLights, pass,
		sorted, e.viewUniformFormat, e.viewBindGroupFormat)
	if err != nil {
		plan.Errors = append(plan.Errors, err)
		return DrawCall{}, false
	}
	return DrawCall{Draw: d, Pass: pass, Program: program}, true
}

func (e *Engine) cameraRendersDraw(ra *composition.RenderAction, d *Draw) bool {
	layer := e.composition.FindLayer(d.Layer)
	return layer != nil && layer.Enabled && ra.Camera.RendersLayer(layer.ID)
}

func (e *Engine) newViewBindGroup() *metadata.BindGroup {
	bg := metadata.NewBindGroup(e.nextBindGroupID, e.viewBindGroupFormat)
	e.nextBindGroupID++
	e.liveBindGroups++
	bg.OnDestroy = func(*metadata.BindGroup) {
		e.liveBindGroups--
	}
	return bg
}

func sortedLightsOf(layer *metadata.Layer) material.SortedLights {
	var sorted material.SortedLights
	for t := metadata.LightType(0); t < metadata.LightTypeCount; t++ {
		sorted[t] = layer.SplitLights(t)
	}
	return sorted
}
