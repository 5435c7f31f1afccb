package composition

import (
	"testing"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/components"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCamera(name string, priority int, layers ...uint32) *components.Camera {
	cam := components.NewCamera(name)
	cam.Priority = priority
	cam.Layers = append(cam.Layers, layers...)
	return cam
}

func newTarget(name string, samples uint32) *metadata.RenderTarget {
	return &metadata.RenderTarget{Name: name, Width: 64, Height: 64, SampleCount: samples}
}

// threeCameraComposition builds layers A, B, C rendered by cameras with
// layers [A,B], [B,C] and [C].
func threeCameraComposition(t *testing.T) (*LayerComposition, []*metadata.Layer, []*components.Camera) {
	t.Helper()
	layers := []*metadata.Layer{
		metadata.NewLayer(1, "A"),
		metadata.NewLayer(2, "B"),
		metadata.NewLayer(3, "C"),
	}
	lc := NewLayerComposition("test", 4, core.NewMetrics())
	for _, l := range layers {
		lc.Push(l, false)
	}
	cams := []*components.Camera{
		newCamera("c1", 0, 1, 2),
		newCamera("c2", 1, 2, 3),
		newCamera("c3", 2, 3),
	}
	// Added out of order, priority decides.
	lc.AddCamera(cams[2])
	lc.AddCamera(cams[0])
	lc.AddCamera(cams[1])
	return lc, layers, cams
}

func TestCompositionThreeCamerasFirstLastUse(t *testing.T) {
	lc, _, cams := threeCameraComposition(t)

	rebuilt, err := lc.Update()
	require.NoError(t, err)
	assert.True(t, rebuilt)

	actions := lc.RenderActions()
	require.Len(t, actions, 5)

	expected := []struct {
		layer       int
		camera      *components.Camera
		cameraIndex int
		first       bool
		last        bool
	}{
		{0, cams[0], 0, true, false},
		{1, cams[0], 0, false, true},
		{1, cams[1], 1, true, false},
		{2, cams[1], 0, false, true},
		{2, cams[2], 1, true, true},
	}
	for i, e := range expected {
		ra := actions[i]
		assert.Equal(t, e.layer, ra.LayerIndex, "action %d layer", i)
		assert.Same(t, e.camera, ra.Camera, "action %d camera", i)
		assert.Equal(t, e.cameraIndex, ra.CameraIndex, "action %d camera index", i)
		assert.Equal(t, e.first, ra.FirstCameraUse, "action %d first use", i)
		assert.Equal(t, e.last, ra.LastCameraUse, "action %d last use", i)
		assert.True(t, ra.IsLayerEnabled(lc))
	}
}

func TestCompositionDisabledSubLayerHasNoActions(t *testing.T) {
	layer := metadata.NewLayer(1, "world")
	lc := NewLayerComposition("test", 0, nil)
	opaque := lc.Push(layer, false)
	transparent := lc.Push(layer, true)
	for i := 0; i < 3; i++ {
		lc.AddCamera(newCamera("cam", i, 1))
	}

	require.True(t, lc.SetSubLayerEnabled(transparent, false))
	_, err := lc.Update()
	require.NoError(t, err)
	require.Len(t, lc.RenderActions(), 3)
	for _, ra := range lc.RenderActions() {
		assert.Equal(t, opaque, ra.LayerIndex)
	}

	first := lc.RenderActions()[0]
	layer.Enabled = false
	assert.False(t, first.IsLayerEnabled(lc))

	rebuilt, err := lc.Update()
	require.NoError(t, err)
	assert.True(t, rebuilt)
	assert.Empty(t, lc.RenderActions())
}

func TestCompositionUpdateOnlyWhenChanged(t *testing.T) {
	metrics := core.NewMetrics()
	lc := NewLayerComposition("test", 0, metrics)
	layer := metadata.NewLayer(1, "world")
	lc.Push(layer, false)
	cam := newCamera("main", 0, 1)
	lc.AddCamera(cam)

	rebuilt, err := lc.Update()
	require.NoError(t, err)
	assert.True(t, rebuilt)

	rebuilt, err = lc.Update()
	require.NoError(t, err)
	assert.False(t, rebuilt)
	assert.Equal(t, uint64(1), metrics.CompositionRebuilds)

	// Changes made directly on a camera are detected.
	cam.Priority = 5
	rebuilt, err = lc.Update()
	require.NoError(t, err)
	assert.True(t, rebuilt)

	layer.AddLight(metadata.NewLight("sun", metadata.LightTypeDirectional))
	rebuilt, err = lc.Update()
	require.NoError(t, err)
	assert.True(t, rebuilt)
	assert.Equal(t, uint64(3), metrics.CompositionRebuilds)
}

func TestCompositionDirectionalLights(t *testing.T) {
	lc, layers, cams := threeCameraComposition(t)

	l1 := metadata.NewLight("l1", metadata.LightTypeDirectional)
	l1.CastShadows = true
	l2 := metadata.NewLight("l2", metadata.LightTypeDirectional)
	l2.CastShadows = true
	l3 := metadata.NewLight("l3", metadata.LightTypeDirectional)
	omni := metadata.NewLight("o1", metadata.LightTypeOmni)
	omni.CastShadows = true

	layers[0].AddLight(l1)
	layers[0].AddLight(l3)
	layers[0].AddLight(omni)
	layers[1].AddLight(l2)
	layers[2].AddLight(l2)

	_, err := lc.Update()
	require.NoError(t, err)

	all := lc.Lights()
	assert.Equal(t, []*metadata.Light{l1, l3, omni, l2}, all)
	assert.Equal(t, []*metadata.Light{l1, l3, l2}, lc.DirectionalLights())

	byCamera := map[*components.Camera][]*metadata.Light{
		cams[0]: {l1, l2},
		cams[1]: {l2},
		cams[2]: {l2},
	}
	for _, ra := range lc.RenderActions() {
		if !ra.FirstCameraUse {
			assert.Empty(t, ra.DirectionalLights)
			continue
		}
		assert.Equal(t, byCamera[ra.Camera], ra.DirectionalLights)
		assertLightsConsistent(t, ra, all)
	}
}

func assertLightsConsistent(t *testing.T, ra *RenderAction, all []*metadata.Light) {
	t.Helper()
	require.Len(t, ra.DirectionalLightsSet, len(ra.DirectionalLights))
	require.Len(t, ra.DirectionalLightsIndices, len(ra.DirectionalLights))
	for i, light := range ra.DirectionalLights {
		_, ok := ra.DirectionalLightsSet[light]
		assert.True(t, ok)
		assert.Same(t, light, all[ra.DirectionalLightsIndices[i]])
	}
}

func TestCollectDirectionalLightsPushesOnce(t *testing.T) {
	a := metadata.NewLayer(1, "A")
	b := metadata.NewLayer(2, "B")
	sun := metadata.NewLight("sun", metadata.LightTypeDirectional)
	sun.CastShadows = true
	a.AddLight(sun)
	b.AddLight(sun)
	all := []*metadata.Light{metadata.NewLight("other", metadata.LightTypeSpot), sun}

	ra := NewRenderAction()
	ra.CollectDirectionalLights([]*metadata.Layer{a, b}, []*metadata.Light{sun}, all)
	ra.CollectDirectionalLights([]*metadata.Layer{a, b}, []*metadata.Light{sun}, all)
	assert.Equal(t, []*metadata.Light{sun}, ra.DirectionalLights)
	assert.Equal(t, []int{1}, ra.DirectionalLightsIndices)
	assertLightsConsistent(t, ra, all)

	ra.Reset()
	assert.Empty(t, ra.DirectionalLights)
	assert.Empty(t, ra.DirectionalLightsSet)
	assert.Empty(t, ra.DirectionalLightsIndices)
}

func TestCompositionClearPolicy(t *testing.T) {
	a := metadata.NewLayer(1, "A")
	b := metadata.NewLayer(2, "B")
	hud := metadata.NewLayer(3, "hud")
	hud.RenderTarget = newTarget("hud", 1)
	hud.ClearDepthBuffer = true

	lc := NewLayerComposition("test", 0, nil)
	lc.Push(a, false)
	lc.Push(b, false)
	lc.Push(hud, false)

	cam := newCamera("main", 0, 1, 2, 3)
	cam.RenderTarget = newTarget("main", 1)
	cam.ClearStencilBuffer = false
	lc.AddCamera(cam)
	ui := newCamera("ui", 1, 3)
	lc.AddCamera(ui)

	_, err := lc.Update()
	require.NoError(t, err)
	actions := lc.RenderActions()
	require.Len(t, actions, 4)

	// The camera owns its target: its flags apply on the first use only.
	assert.Same(t, cam.RenderTarget, actions[0].RenderTarget)
	assert.True(t, actions[0].ClearColour)
	assert.True(t, actions[0].ClearDepth)
	assert.False(t, actions[0].ClearStencil)
	assert.False(t, actions[1].ClearColour)
	assert.False(t, actions[1].ClearDepth)

	// A private camera target wins over the layer's target.
	assert.Same(t, cam, actions[2].Camera)
	assert.Same(t, cam.RenderTarget, actions[2].RenderTarget)
	assert.False(t, actions[2].ClearColour)
	assert.False(t, actions[2].ClearDepth)

	// Without a camera target the layer's target and flags apply.
	assert.Same(t, ui, actions[3].Camera)
	assert.Same(t, hud.RenderTarget, actions[3].RenderTarget)
	assert.False(t, actions[3].ClearColour)
	assert.True(t, actions[3].ClearDepth)
	assert.False(t, actions[3].ClearStencil)
}

func TestCompositionCameraTargetWinsOnFirstUse(t *testing.T) {
	hud := metadata.NewLayer(1, "hud")
	hud.RenderTarget = newTarget("hud", 1)

	lc := NewLayerComposition("test", 0, nil)
	lc.Push(hud, false)
	cam := newCamera("main", 0, 1)
	cam.RenderTarget = newTarget("main", 1)
	lc.AddCamera(cam)

	_, err := lc.Update()
	require.NoError(t, err)
	actions := lc.RenderActions()
	require.Len(t, actions, 1)
	assert.Same(t, cam.RenderTarget, actions[0].RenderTarget)
	assert.True(t, actions[0].ClearColour)
	assert.True(t, actions[0].ClearDepth)
	assert.True(t, actions[0].ClearStencil)
}

func TestCompositionOrdersCamerasByPriority(t *testing.T) {
	lc := NewLayerComposition("test", 0, nil)
	lc.Push(metadata.NewLayer(1, "world"), false)
	late := newCamera("late", 2, 1)
	early := newCamera("early", 0, 1)
	tied := newCamera("tied", 2, 1)
	lc.AddCamera(late)
	lc.AddCamera(early)
	lc.AddCamera(tied)

	_, err := lc.Update()
	require.NoError(t, err)
	actions := lc.RenderActions()
	require.Len(t, actions, 3)
	assert.Same(t, early, actions[0].Camera)
	assert.Same(t, late, actions[1].Camera)
	assert.Same(t, tied, actions[2].Camera)

	// Registration order is left alone.
	assert.Equal(t, []*components.Camera{late, early, tied}, lc.Cameras())

	early.Priority = 3
	rebuilt, err := lc.Update()
	require.NoError(t, err)
	assert.True(t, rebuilt)
	assert.Same(t, early, lc.RenderActions()[2].Camera)
}

func TestCompositionRejectsInvalidTargets(t *testing.T) {
	tests := []struct {
		name   string
		camera *metadata.RenderTarget
		layer  *metadata.RenderTarget
	}{
		{"sample count mismatch", newTarget("cam", 4), newTarget("layer", 1)},
		{"empty camera target", &metadata.RenderTarget{Name: "cam", SampleCount: 1}, nil},
		{"zero samples on layer", nil, &metadata.RenderTarget{Name: "layer", Width: 8, Height: 8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layer := metadata.NewLayer(1, "world")
			layer.RenderTarget = tt.layer
			lc := NewLayerComposition("test", 0, nil)
			lc.Push(layer, false)
			cam := newCamera("main", 0, 1)
			cam.RenderTarget = tt.camera
			lc.AddCamera(cam)

			rebuilt, err := lc.Update()
			assert.False(t, rebuilt)
			assert.ErrorIs(t, err, core.ErrInvalidRenderTarget)
			assert.Empty(t, lc.RenderActions())

			// Still failing on the next frame.
			_, err = lc.Update()
			assert.ErrorIs(t, err, core.ErrInvalidRenderTarget)
		})
	}
}

func TestCompositionPoolsActionsAndDestroysBindGroups(t *testing.T) {
	metrics := core.NewMetrics()
	lc, _, cams := threeCameraComposition(t)
	lc.metrics = metrics

	_, err := lc.Update()
	require.NoError(t, err)
	require.Len(t, lc.RenderActions(), 5)
	assert.Equal(t, uint64(5), metrics.RenderActionsCreated)

	groups := make([]*metadata.BindGroup, 5)
	for i, ra := range lc.RenderActions() {
		groups[i] = metadata.NewBindGroup(uint32(i), nil)
		ra.ViewBindGroups = append(ra.ViewBindGroups, groups[i])
	}

	// Dropping c3 releases its action to the pool.
	require.True(t, lc.RemoveCamera(cams[2]))
	_, err = lc.Update()
	require.NoError(t, err)
	require.Len(t, lc.RenderActions(), 4)
	assert.True(t, groups[4].IsDestroyed())
	for i := 0; i < 4; i++ {
		assert.False(t, groups[i].IsDestroyed(), "group %d", i)
	}

	// c1 now renders only B: slot 1 moves from c1 to c2 and is destroyed first.
	cams[0].Layers = []uint32{2}
	_, err = lc.Update()
	require.NoError(t, err)
	actions := lc.RenderActions()
	require.Len(t, actions, 3)
	assert.False(t, groups[0].IsDestroyed())
	assert.True(t, groups[1].IsDestroyed())
	assert.Empty(t, actions[1].ViewBindGroups)
	assert.False(t, groups[2].IsDestroyed())
	assert.True(t, groups[3].IsDestroyed())

	lc.AddCamera(cams[2])
	_, err = lc.Update()
	require.NoError(t, err)
	assert.Len(t, lc.RenderActions(), 4)
	assert.Equal(t, uint64(5), metrics.RenderActionsCreated)

	lc.Destroy()
	assert.True(t, groups[0].IsDestroyed())
	assert.True(t, groups[2].IsDestroyed())
	assert.Empty(t, lc.RenderActions())
}

func TestCompositionPostEffects(t *testing.T) {
	build := func(disableAt uint32) []*RenderAction {
		lc := NewLayerComposition("test", 0, nil)
		for id := uint32(1); id <= 3; id++ {
			lc.Push(metadata.NewLayer(id, "layer"), false)
		}
		cam := newCamera("main", 0, 1, 2, 3)
		cam.RenderTarget = newTarget("main", 1)
		cam.PostEffectsEnabled = true
		cam.DisablePostEffectsLayer = disableAt
		lc.AddCamera(cam)
		_, err := lc.Update()
		require.NoError(t, err)
		return lc.RenderActions()
	}

	actions := build(metadata.InvalidID)
	require.Len(t, actions, 3)
	assert.False(t, actions[0].TriggerPostprocess)
	assert.False(t, actions[1].TriggerPostprocess)
	assert.True(t, actions[2].TriggerPostprocess)
	assert.NotNil(t, actions[2].RenderTarget)

	actions = build(3)
	require.Len(t, actions, 3)
	assert.True(t, actions[1].TriggerPostprocess)
	assert.False(t, actions[2].TriggerPostprocess)
	assert.Nil(t, actions[2].RenderTarget)
	assert.False(t, actions[2].ClearColour)
	assert.False(t, actions[2].ClearDepth)
}

func TestCompositionLightClusters(t *testing.T) {
	a := metadata.NewLayer(1, "A")
	b := metadata.NewLayer(2, "B")
	c := metadata.NewLayer(3, "C")
	omni := metadata.NewLight("omni", metadata.LightTypeOmni)
	spot := metadata.NewLight("spot", metadata.LightTypeSpot)
	a.AddLight(omni)
	a.AddLight(spot)
	b.AddLight(spot)
	b.AddLight(omni)
	c.AddLight(metadata.NewLight("sun", metadata.LightTypeDirectional))

	lc := NewLayerComposition("test", 0, nil)
	lc.ClusteredLighting = true
	lc.Push(a, false)
	lc.Push(b, false)
	lc.Push(c, false)
	lc.AddCamera(newCamera("main", 0, 1, 2, 3))

	_, err := lc.Update()
	require.NoError(t, err)
	actions := lc.RenderActions()
	require.Len(t, actions, 3)

	require.NotNil(t, actions[0].LightClusters)
	assert.Same(t, actions[0].LightClusters, actions[1].LightClusters)
	assert.Len(t, actions[0].LightClusters.Lights, 2)
	assert.True(t, actions[2].LightClusters.IsEmpty())
	assert.Equal(t, 2, lc.LightClusterCount())

	lc.ClusteredLighting = false
	_, err = lc.Update()
	require.NoError(t, err)
	for _, ra := range lc.RenderActions() {
		assert.Nil(t, ra.LightClusters)
	}
}
