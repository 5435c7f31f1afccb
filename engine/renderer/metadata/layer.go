package metadata

import "github.com/go-gl/mathgl/mgl32"

/**
 * @brief A layer groups renderables and the lights affecting them. Layers
 * are referenced by identity from a composition.
 */
type Layer struct {
	ID      uint32
	Name    string
	Enabled bool
	/** @brief Optional target shared by every camera rendering this layer. */
	RenderTarget *RenderTarget

	ClearColourBuffer  bool
	ClearDepthBuffer   bool
	ClearStencilBuffer bool
	ClearColour        mgl32.Vec4

	lights      []*Light
	splitLights [LightTypeCount][]*Light
	splitSets   [LightTypeCount]map[*Light]struct{}
	// Bumped whenever the light list changes.
	version uint64
}

func NewLayer(id uint32, name string) *Layer {
	l := &Layer{
		ID:      id,
		Name:    name,
		Enabled: true,
	}
	for i := range l.splitSets {
		l.splitSets[i] = make(map[*Light]struct{})
	}
	return l
}

// AddLight adds a light to the layer. Adding the same light twice is a no-op.
func (l *Layer) AddLight(light *Light) {
	for _, existing := range l.lights {
		if existing == light {
			return
		}
	}
	l.lights = append(l.lights, light)
	l.UpdateSplitLights()
}

func (l *Layer) RemoveLight(light *Light) bool {
	for i, existing := range l.lights {
		if existing == light {
			l.lights = append(l.lights[:i], l.lights[i+1:]...)
			l.UpdateSplitLights()
			return true
		}
	}
	return false
}

func (l *Layer) Lights() []*Light {
	return l.lights
}

// UpdateSplitLights regroups enabled lights by type. Call it after toggling
// a light's Enabled flag or changing its type.
func (l *Layer) UpdateSplitLights() {
	for t := range l.splitLights {
		l.splitLights[t] = l.splitLights[t][:0]
		clear(l.splitSets[t])
	}
	for _, light := range l.lights {
		if !light.Enabled {
			continue
		}
		l.splitLights[light.Type] = append(l.splitLights[light.Type], light)
		l.splitSets[light.Type][light] = struct{}{}
	}
	l.version++
}

// SplitLights returns the enabled lights of one type in insertion order.
func (l *Layer) SplitLights(t LightType) []*Light {
	return l.splitLights[t]
}

// HasSplitLight tests membership without scanning the light list.
func (l *Layer) HasSplitLight(t LightType, light *Light) bool {
	_, ok := l.splitSets[t][light]
	return ok
}

// LocalLights returns the enabled omni and spot lights.
func (l *Layer) LocalLights() []*Light {
	local := make([]*Light, 0, len(l.splitLights[LightTypeOmni])+len(l.splitLights[LightTypeSpot]))
	local = append(local, l.splitLights[LightTypeOmni]...)
	return append(local, l.splitLights[LightTypeSpot]...)
}

func (l *Layer) Version() uint64 {
	return l.version
}
