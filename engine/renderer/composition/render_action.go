package composition

import (
	"slices"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/components"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

/**
 * @brief One camera rendering one (layer, sub-layer) entry of a composition
 * in a frame. Actions are pooled by the composition and reused across
 * rebuilds.
 */
type RenderAction struct {
	/** @brief Index into the composition's layer list. */
	LayerIndex int
	/** @brief Index of the camera among the cameras rendering the layer. */
	CameraIndex int
	Camera      *components.Camera
	/** @brief The target rendered to. nil is the back buffer. */
	RenderTarget *metadata.RenderTarget
	/** @brief Set only when clustered lighting is enabled. */
	LightClusters *metadata.LightClusters

	ClearColour  bool
	ClearDepth   bool
	ClearStencil bool

	/** @brief Post effects of the camera run after this action. */
	TriggerPostprocess bool
	FirstCameraUse     bool
	LastCameraUse      bool

	// Shadow casting directional lights of the camera. The set, the list and
	// the global indices always have the same members in the same order.
	DirectionalLightsSet     map[*metadata.Light]struct{}
	DirectionalLights        []*metadata.Light
	DirectionalLightsIndices []int

	/** @brief Per view GPU bindings. Released only through Destroy. */
	ViewBindGroups []*metadata.BindGroup
}

func NewRenderAction() *RenderAction {
	return &RenderAction{
		LayerIndex:           -1,
		CameraIndex:          -1,
		DirectionalLightsSet: make(map[*metadata.Light]struct{}),
	}
}

// Reset clears the per frame state without freeing anything. The camera and
// its view bind groups are kept so a reuse for the same camera keeps them.
func (ra *RenderAction) Reset() {
	ra.LayerIndex = -1
	ra.CameraIndex = -1
	ra.RenderTarget = nil
	ra.LightClusters = nil
	ra.ClearColour = false
	ra.ClearDepth = false
	ra.ClearStencil = false
	ra.TriggerPostprocess = false
	ra.FirstCameraUse = false
	ra.LastCameraUse = false
	clear(ra.DirectionalLightsSet)
	ra.DirectionalLights = ra.DirectionalLights[:0]
	ra.DirectionalLightsIndices = ra.DirectionalLightsIndices[:0]
}

/**
 * @brief Destroys the view bind groups. Must be called before the action is
 * given to a different camera and before it is dropped.
 */
func (ra *RenderAction) Destroy() {
	for i, bg := range ra.ViewBindGroups {
		bg.Destroy()
		ra.ViewBindGroups[i] = nil
	}
	ra.ViewBindGroups = ra.ViewBindGroups[:0]
}

// IsLayerEnabled reports whether both the layer and its sub-layer are enabled.
func (ra *RenderAction) IsLayerEnabled(lc *LayerComposition) bool {
	if ra.LayerIndex < 0 || ra.LayerIndex >= len(lc.layerList) {
		return false
	}
	return lc.layerList[ra.LayerIndex].Enabled && lc.subLayerEnabled[ra.LayerIndex]
}

/**
 * @brief Collects the shadow casting directional lights that affect any of
 * the camera's layers. Each light is pushed on first sight, together with its
 * index in allLights.
 * @param cameraLayers The layers rendered by the action's camera.
 * @param dirLights Every directional light of the composition.
 * @param allLights Every light of the composition, in global order.
 */
func (ra *RenderAction) CollectDirectionalLights(cameraLayers []*metadata.Layer, dirLights []*metadata.Light, allLights []*metadata.Light) {
	for _, light := range dirLights {
		if !light.CastShadows {
			continue
		}
		if _, seen := ra.DirectionalLightsSet[light]; seen {
			continue
		}
		for _, layer := range cameraLayers {
			if !layer.HasSplitLight(metadata.LightTypeDirectional, light) {
				continue
			}
			ra.DirectionalLightsSet[light] = struct{}{}
			ra.DirectionalLights = append(ra.DirectionalLights, light)
			ra.DirectionalLightsIndices = append(ra.DirectionalLightsIndices, slices.Index(allLights, light))
			break
		}
	}
	core.Assert(len(ra.DirectionalLightsSet) == len(ra.DirectionalLights) && len(ra.DirectionalLights) == len(ra.DirectionalLightsIndices),
		"directional light set (%d), list (%d) and indices (%d) diverged",
		len(ra.DirectionalLightsSet), len(ra.DirectionalLights), len(ra.DirectionalLightsIndices))
}
