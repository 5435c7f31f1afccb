package composition

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/spaghettifunk/prism/engine/containers"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/components"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

/** @brief The default number of idle render actions kept for reuse. */
const DEFAULT_ACTION_POOL_SIZE int = 32

/**
 * @brief An ordered list of (layer, sub-layer) entries and the cameras
 * rendering them. Update turns it into the ordered render actions of a frame.
 */
type LayerComposition struct {
	Name string
	/** @brief Assign a LightClusters to every action. */
	ClusteredLighting bool

	layerList           []*metadata.Layer
	subLayerTransparent []bool
	subLayerEnabled     []bool
	cameras             []*components.Camera
	// cameras ordered by priority, rebuilt on every Update
	ordered []*components.Camera

	actions  []*RenderAction
	pool     *containers.RingQueue[*RenderAction]
	clusters *lightClusterCache

	allLights []*metadata.Light
	dirLights []*metadata.Light

	dirty     bool
	signature string
	metrics   *core.Metrics
}

type cameraTarget struct {
	camera *components.Camera
	target *metadata.RenderTarget
}

func NewLayerComposition(name string, poolSize int, metrics *core.Metrics) *LayerComposition {
	if poolSize < 1 {
		poolSize = DEFAULT_ACTION_POOL_SIZE
	}
	if metrics == nil {
		metrics = core.NewMetrics()
	}
	return &LayerComposition{
		Name:     name,
		pool:     containers.NewRingQueue[*RenderAction](poolSize),
		clusters: newLightClusterCache(),
		dirty:    true,
		metrics:  metrics,
	}
}

// Push appends a sub-layer of the layer and returns its index. Every layer
// usually appears twice, once opaque and once transparent.
func (lc *LayerComposition) Push(layer *metadata.Layer, transparent bool) int {
	if layer == nil {
		core.LogWarn("composition '%s': cannot push a nil layer", lc.Name)
		return -1
	}
	lc.layerList = append(lc.layerList, layer)
	lc.subLayerTransparent = append(lc.subLayerTransparent, transparent)
	lc.subLayerEnabled = append(lc.subLayerEnabled, true)
	lc.dirty = true
	return len(lc.layerList) - 1
}

func (lc *LayerComposition) Remove(layer *metadata.Layer, transparent bool) bool {
	i := lc.IndexOf(layer, transparent)
	if i < 0 {
		return false
	}
	lc.layerList = slices.Delete(lc.layerList, i, i+1)
	lc.subLayerTransparent = slices.Delete(lc.subLayerTransparent, i, i+1)
	lc.subLayerEnabled = slices.Delete(lc.subLayerEnabled, i, i+1)
	lc.dirty = true
	return true
}

func (lc *LayerComposition) IndexOf(layer *metadata.Layer, transparent bool) int {
	for i, l := range lc.layerList {
		if l == layer && lc.subLayerTransparent[i] == transparent {
			return i
		}
	}
	return -1
}

func (lc *LayerComposition) Len() int {
	return len(lc.layerList)
}

// LayerAt returns the layer of an entry and whether it is the transparent one.
func (lc *LayerComposition) LayerAt(index int) (*metadata.Layer, bool) {
	if index < 0 || index >= len(lc.layerList) {
		return nil, false
	}
	return lc.layerList[index], lc.subLayerTransparent[index]
}

// FindLayer returns the first layer with the given name.
func (lc *LayerComposition) FindLayer(name string) *metadata.Layer {
	for _, l := range lc.layerList {
		if l.Name == name {
			return l
		}
	}
	return nil
}

func (lc *LayerComposition) SetSubLayerEnabled(index int, enabled bool) bool {
	if index < 0 || index >= len(lc.subLayerEnabled) {
		return false
	}
	if lc.subLayerEnabled[index] != enabled {
		lc.subLayerEnabled[index] = enabled
		lc.dirty = true
	}
	return true
}

func (lc *LayerComposition) IsSubLayerEnabled(index int) bool {
	return index >= 0 && index < len(lc.subLayerEnabled) && lc.subLayerEnabled[index]
}

// AddCamera registers a camera. The layers it renders are taken from
// camera.Layers on every rebuild.
func (lc *LayerComposition) AddCamera(camera *components.Camera) {
	if camera == nil || slices.Contains(lc.cameras, camera) {
		return
	}
	lc.cameras = append(lc.cameras, camera)
	lc.dirty = true
}

func (lc *LayerComposition) RemoveCamera(camera *components.Camera) bool {
	i := slices.Index(lc.cameras, camera)
	if i < 0 {
		return false
	}
	lc.cameras = slices.Delete(lc.cameras, i, i+1)
	lc.dirty = true
	return true
}

// Cameras returns the registered cameras in the order they were added.
func (lc *LayerComposition) Cameras() []*components.Camera {
	return lc.cameras
}

// MarkDirty forces a rebuild on the next Update.
func (lc *LayerComposition) MarkDirty() {
	lc.dirty = true
}

// RenderActions returns the actions of the last successful rebuild, in
// render order.
func (lc *LayerComposition) RenderActions() []*RenderAction {
	return lc.actions
}

// Lights returns every enabled light of the enabled layers, without duplicates.
func (lc *LayerComposition) Lights() []*metadata.Light {
	return lc.allLights
}

func (lc *LayerComposition) DirectionalLights() []*metadata.Light {
	return lc.dirLights
}

// LightClusterCount includes the shared empty cluster.
func (lc *LayerComposition) LightClusterCount() int {
	return lc.clusters.count()
}

/**
 * @brief Rebuilds the render actions when the composition or anything it
 * depends on changed since the last rebuild.
 * @return true when the actions were rebuilt. An error leaves the previous
 * actions in place and the next Update retries.
 */
func (lc *LayerComposition) Update() (bool, error) {
	lc.ordered = append(lc.ordered[:0], lc.cameras...)
	sort.SliceStable(lc.ordered, func(i, j int) bool {
		return lc.ordered[i].Priority < lc.ordered[j].Priority
	})

	signature := lc.computeSignature()
	if !lc.dirty && signature == lc.signature {
		return false, nil
	}
	if err := lc.validate(); err != nil {
		err = fmt.Errorf("composition '%s': %w", lc.Name, err)
		core.LogError(err.Error())
		return false, err
	}

	lc.rebuild()
	lc.signature = signature
	lc.dirty = false
	lc.metrics.CompositionRebuilds++
	core.LogDebug("composition '%s' rebuilt: %d render actions, %d light clusters", lc.Name, len(lc.actions), lc.clusters.count())
	return true, nil
}

// Destroy releases every action, pooled ones included.
func (lc *LayerComposition) Destroy() {
	for _, ra := range lc.actions {
		ra.Destroy()
	}
	lc.actions = nil
	for !lc.pool.IsEmpty() {
		if ra, err := lc.pool.Dequeue(); err == nil {
			ra.Destroy()
		}
	}
	lc.dirty = true
}

func (lc *LayerComposition) validate() error {
	for _, cam := range lc.cameras {
		if !cam.Enabled || cam.RenderTarget == nil {
			continue
		}
		if err := cam.RenderTarget.Validate(); err != nil {
			return fmt.Errorf("%w: camera '%s': %w", core.ErrInvalidRenderTarget, cam.Name, err)
		}
	}
	for i, layer := range lc.layerList {
		if !layer.Enabled || !lc.subLayerEnabled[i] || layer.RenderTarget == nil {
			continue
		}
		if err := layer.RenderTarget.Validate(); err != nil {
			return fmt.Errorf("%w: layer '%s': %w", core.ErrInvalidRenderTarget, layer.Name, err)
		}
		for _, cam := range lc.cameras {
			if !cam.Enabled || cam.RenderTarget == nil || !cam.RendersLayer(layer.ID) {
				continue
			}
			if cam.RenderTarget.SampleCount != layer.RenderTarget.SampleCount {
				return fmt.Errorf("%w: camera '%s' target '%s' has %d samples but layer '%s' target '%s' has %d",
					core.ErrInvalidRenderTarget, cam.Name, cam.RenderTarget.Name, cam.RenderTarget.SampleCount,
					layer.Name, layer.RenderTarget.Name, layer.RenderTarget.SampleCount)
			}
		}
	}
	return nil
}

func (lc *LayerComposition) rebuild() {
	lc.collectLights()
	lc.clusters.reset()

	n := 0
	for i, layer := range lc.layerList {
		if !layer.Enabled || !lc.subLayerEnabled[i] {
			continue
		}
		cameraIndex := 0
		for _, cam := range lc.ordered {
			if !cam.Enabled || !cam.RendersLayer(layer.ID) {
				continue
			}
			ra := lc.actionAt(n, cam)
			ra.LayerIndex = i
			ra.CameraIndex = cameraIndex
			ra.Camera = cam
			ra.RenderTarget = cam.RenderTarget
			if ra.RenderTarget == nil {
				ra.RenderTarget = layer.RenderTarget
			}
			if lc.ClusteredLighting {
				ra.LightClusters = lc.clusters.forLayer(layer)
			}
			cameraIndex++
			n++
		}
	}
	lc.releaseActions(n)

	lc.markCameraUse()
	lc.applyClears()
	lc.applyPostEffects()
	lc.collectDirectionalLights()
}

// actionAt returns the action for slot n, reusing the slot's previous action
// or a pooled one. Bind groups of another camera are destroyed first.
func (lc *LayerComposition) actionAt(n int, cam *components.Camera) *RenderAction {
	var ra *RenderAction
	if n < len(lc.actions) {
		ra = lc.actions[n]
	} else {
		pooled, err := lc.pool.Dequeue()
		if err == nil {
			ra = pooled
		} else {
			ra = NewRenderAction()
			lc.metrics.RenderActionsCreated++
		}
		lc.actions = append(lc.actions, ra)
	}
	if ra.Camera != nil && ra.Camera != cam {
		ra.Destroy()
	}
	ra.Reset()
	return ra
}

func (lc *LayerComposition) releaseActions(keep int) {
	for i := keep; i < len(lc.actions); i++ {
		ra := lc.actions[i]
		ra.Destroy()
		ra.Reset()
		ra.Camera = nil
		lc.actions[i] = nil
		if err := lc.pool.Enqueue(ra); err != nil {
			core.LogDebug("composition '%s': action pool full, dropping a render action", lc.Name)
		}
	}
	lc.actions = lc.actions[:keep]
}

func (lc *LayerComposition) markCameraUse() {
	last := make(map[*components.Camera]*RenderAction, len(lc.cameras))
	for _, ra := range lc.actions {
		if _, seen := last[ra.Camera]; !seen {
			ra.FirstCameraUse = true
		}
		last[ra.Camera] = ra
	}
	for _, ra := range last {
		ra.LastCameraUse = true
	}
}

// applyClears takes clear flags from the camera on its first use of a target
// it renders to, unless the layer's own target is used because the camera has
// none. Then the layer's flags apply.
func (lc *LayerComposition) applyClears() {
	used := make(map[cameraTarget]struct{})
	for _, ra := range lc.actions {
		layer := lc.layerList[ra.LayerIndex]
		if ra.Camera.RenderTarget == nil && layer.RenderTarget != nil {
			ra.ClearColour = layer.ClearColourBuffer
			ra.ClearDepth = layer.ClearDepthBuffer
			ra.ClearStencil = layer.ClearStencilBuffer
			continue
		}
		key := cameraTarget{camera: ra.Camera, target: ra.RenderTarget}
		if _, ok := used[key]; ok {
			continue
		}
		used[key] = struct{}{}
		ra.ClearColour = ra.Camera.ClearColourBuffer
		ra.ClearDepth = ra.Camera.ClearDepthBuffer
		ra.ClearStencil = ra.Camera.ClearStencilBuffer
	}
}

// applyPostEffects marks where each camera's post effects run. Actions from
// DisablePostEffectsLayer on render to the back buffer on top of the result.
func (lc *LayerComposition) applyPostEffects() {
	for _, cam := range lc.ordered {
		if !cam.Enabled || !cam.PostEffectsEnabled {
			continue
		}
		var prev *RenderAction
		redirected := false
		for _, ra := range lc.actions {
			if ra.Camera != cam {
				continue
			}
			layer := lc.layerList[ra.LayerIndex]
			if !redirected && cam.DisablePostEffectsLayer != metadata.InvalidID && layer.ID == cam.DisablePostEffectsLayer {
				redirected = true
				if prev != nil {
					prev.TriggerPostprocess = true
				}
			}
			if redirected && ra.RenderTarget == cam.RenderTarget {
				ra.RenderTarget = nil
				ra.ClearColour = false
				ra.ClearDepth = false
				ra.ClearStencil = false
			}
			prev = ra
		}
		if !redirected && prev != nil {
			prev.TriggerPostprocess = true
		}
	}
}

// collectDirectionalLights fills the shadow lights on the first action of
// every camera, across all enabled layers the camera renders.
func (lc *LayerComposition) collectDirectionalLights() {
	cameraLayers := make([]*metadata.Layer, 0, len(lc.layerList))
	for _, ra := range lc.actions {
		if !ra.FirstCameraUse {
			continue
		}
		cameraLayers = cameraLayers[:0]
		for i, layer := range lc.layerList {
			if !layer.Enabled || !lc.subLayerEnabled[i] || !ra.Camera.RendersLayer(layer.ID) {
				continue
			}
			if !slices.Contains(cameraLayers, layer) {
				cameraLayers = append(cameraLayers, layer)
			}
		}
		ra.CollectDirectionalLights(cameraLayers, lc.dirLights, lc.allLights)
	}
}

func (lc *LayerComposition) collectLights() {
	lc.allLights = lc.allLights[:0]
	lc.dirLights = lc.dirLights[:0]
	seen := make(map[*metadata.Light]struct{})
	for i, layer := range lc.layerList {
		if !layer.Enabled || !lc.subLayerEnabled[i] {
			continue
		}
		for _, light := range layer.Lights() {
			if !light.Enabled {
				continue
			}
			if _, ok := seen[light]; ok {
				continue
			}
			seen[light] = struct{}{}
			lc.allLights = append(lc.allLights, light)
			if light.Type == metadata.LightTypeDirectional {
				lc.dirLights = append(lc.dirLights, light)
			}
		}
	}
}

// computeSignature encodes everything a rebuild reads, so changes made
// directly on layers, cameras or lights are picked up without MarkDirty.
func (lc *LayerComposition) computeSignature() string {
	var sb strings.Builder
	for i, layer := range lc.layerList {
		fmt.Fprintf(&sb, "L%p:%d:%t:%t:%t:%d:%p:%t:%t:%t",
			layer, layer.ID, lc.subLayerTransparent[i], layer.Enabled, lc.subLayerEnabled[i], layer.Version(),
			layer.RenderTarget, layer.ClearColourBuffer, layer.ClearDepthBuffer, layer.ClearStencilBuffer)
		for _, light := range layer.SplitLights(metadata.LightTypeDirectional) {
			fmt.Fprintf(&sb, ",%p:%t", light, light.CastShadows)
		}
		sb.WriteByte('|')
	}
	for _, cam := range lc.cameras {
		fmt.Fprintf(&sb, "C%p:%t:%d:%v:%p:%t:%t:%t:%t:%d|",
			cam, cam.Enabled, cam.Priority, cam.Layers, cam.RenderTarget,
			cam.ClearColourBuffer, cam.ClearDepthBuffer, cam.ClearStencilBuffer,
			cam.PostEffectsEnabled, cam.DisablePostEffectsLayer)
	}
	fmt.Fprintf(&sb, "cl:%t", lc.ClusteredLighting)
	return sb.String()
}
