package material

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hasParam(m *Material, name string) bool {
	_, ok := m.GetParameter(name)
	return ok
}

func TestUpdateUniformsIsIdempotent(t *testing.T) {
	lib := newFakeLibrary()
	m := cleanMaterial(t, lib)
	require.NoError(t, m.SetTexture("diffuseMap", &metadata.Texture{Name: "d"}))
	require.NoError(t, m.SetVec2("diffuseMapOffset", mgl32.Vec2{0.5, 0}))
	_, err := fetch(m, lib, metadata.NewScene(), metadata.ShaderPassForward)
	require.NoError(t, err)

	scene := metadata.NewScene()
	m.UpdateUniforms(scene)
	first := m.ActiveParameters()
	firstTable := len(m.Parameters())

	m.UpdateUniforms(scene)
	assert.Equal(t, first, m.ActiveParameters())
	assert.Equal(t, firstTable, len(m.Parameters()))
	assert.False(t, m.DirtyShader())
}

func TestUpdateUniformsNeverTouchesDirtyShader(t *testing.T) {
	m := NewStandardMaterial("dirty")
	m.UpdateUniforms(metadata.NewScene())
	assert.True(t, m.DirtyShader())
}

func TestIdentityTransformIsElided(t *testing.T) {
	m := NewStandardMaterial("identity")
	require.NoError(t, m.SetTexture("diffuseMap", &metadata.Texture{Name: "d"}))
	m.UpdateUniforms(metadata.NewScene())

	assert.True(t, hasParam(m, "texture_diffuseMap"))
	assert.False(t, hasParam(m, "texture_diffuseMapTransform0"))
	assert.False(t, hasParam(m, "texture_diffuseMapTransform1"))
}

func TestAnyTransformDeviationEmitsUniform(t *testing.T) {
	tests := []struct {
		name string
		set  func(m *Material) error
	}{
		{"tiling", func(m *Material) error { return m.SetVec2("diffuseMapTiling", mgl32.Vec2{1, 2}) }},
		{"offset", func(m *Material) error { return m.SetVec2("diffuseMapOffset", mgl32.Vec2{0.1, 0}) }},
		{"rotation", func(m *Material) error { return m.SetFloat("diffuseMapRotation", 30) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewStandardMaterial("transform")
			require.NoError(t, m.SetTexture("diffuseMap", &metadata.Texture{Name: "d"}))
			require.NoError(t, tt.set(m))
			m.UpdateUniforms(metadata.NewScene())

			assert.True(t, hasParam(m, "texture_diffuseMapTransform0"))
			assert.True(t, hasParam(m, "texture_diffuseMapTransform1"))
		})
	}
}

func TestTransformUniformValues(t *testing.T) {
	m := NewStandardMaterial("values")
	require.NoError(t, m.SetTexture("normalMap", &metadata.Texture{Name: "n"}))
	require.NoError(t, m.SetVec2("normalMapTiling", mgl32.Vec2{2, 4}))
	require.NoError(t, m.SetVec2("normalMapOffset", mgl32.Vec2{0.5, 0.25}))
	m.UpdateUniforms(metadata.NewScene())

	p0, ok := m.GetParameter("texture_normalMapTransform0")
	require.True(t, ok)
	p1, ok := m.GetParameter("texture_normalMapTransform1")
	require.True(t, ok)
	assert.InDeltaSlice(t, []float32{2, 0, 0.5}, p0.Data.([]float32), 1e-6)
	assert.InDeltaSlice(t, []float32{0, 4, 1 - 4 - 0.25}, p1.Data.([]float32), 1e-6)
}

func TestStaleParametersAreRemoved(t *testing.T) {
	m := NewStandardMaterial("cleanup")
	scene := metadata.NewScene()

	require.NoError(t, m.SetFloat("clearCoat", 0.5))
	m.UpdateUniforms(scene)
	for _, name := range []string{"material_clearCoat", "material_clearCoatGlossiness", "material_clearCoatReflectivity", "material_clearCoatBumpiness"} {
		assert.True(t, hasParam(m, name), name)
	}

	require.NoError(t, m.SetFloat("clearCoat", 0))
	m.UpdateUniforms(scene)
	for name := range m.Parameters() {
		assert.NotContains(t, name, "material_clearCoat")
	}
	assert.NotContains(t, m.ActiveParameters(), "material_clearCoat")
}

func TestClearCoatParametersOnlyWhenEnabled(t *testing.T) {
	m := NewStandardMaterial("clearcoat")
	m.UpdateUniforms(metadata.NewScene())
	for name := range m.Parameters() {
		assert.NotContains(t, name, "material_clearCoat")
	}
}

func TestSpecularWorkflowNeverEmitsMetalness(t *testing.T) {
	m := NewStandardMaterial("specular")
	require.NoError(t, m.SetBool("useMetalness", false))
	m.UpdateUniforms(metadata.NewScene())

	assert.True(t, hasParam(m, "material_specular"))
	assert.False(t, hasParam(m, "material_metalness"))
}

func TestMetalnessWorkflowEmitsMetalness(t *testing.T) {
	m := NewStandardMaterial("metal")
	require.NoError(t, m.SetBool("useMetalness", true))
	m.UpdateUniforms(metadata.NewScene())
	assert.True(t, hasParam(m, "material_metalness"))

	// A full strength metalness map needs no scalar.
	require.NoError(t, m.SetTexture("metalnessMap", &metadata.Texture{Name: "m"}))
	m.UpdateUniforms(metadata.NewScene())
	assert.False(t, hasParam(m, "material_metalness"))
}

func TestShininessDependsOnShadingModel(t *testing.T) {
	m := NewStandardMaterial("shininess")
	require.NoError(t, m.SetFloat("shininess", 50))

	m.UpdateUniforms(metadata.NewScene())
	p, _ := m.GetParameter("material_shininess")
	assert.InDelta(t, 0.5, p.Data.(float32), 1e-6)

	require.NoError(t, m.SetInt("shadingModel", int(ShadingPhong)))
	m.UpdateUniforms(metadata.NewScene())
	p, _ = m.GetParameter("material_shininess")
	assert.InDelta(t, ShininessToSpecularPower(50), p.Data.(float32), 1e-3)
}

func TestColoursAreLinearisedWithGammaCorrection(t *testing.T) {
	m := NewStandardMaterial("gamma")
	require.NoError(t, m.SetColour("diffuse", mgl32.Vec3{0.5, 0.5, 0.5}))

	scene := metadata.NewScene()
	scene.GammaCorrection = metadata.GammaNone
	m.UpdateUniforms(scene)
	p, _ := m.GetParameter("material_diffuse")
	assert.InDelta(t, 0.5, p.Data.([]float32)[0], 1e-6)

	scene.GammaCorrection = metadata.Gamma22
	m.UpdateUniforms(scene)
	p, _ = m.GetParameter("material_diffuse")
	assert.InDelta(t, 0.2176, p.Data.([]float32)[0], 1e-3)
}

func TestUniformBuffersAreReused(t *testing.T) {
	m := NewStandardMaterial("reuse")
	scene := metadata.NewScene()
	m.UpdateUniforms(scene)
	p, _ := m.GetParameter("material_diffuse")
	first := p.Data.([]float32)

	require.NoError(t, m.SetColour("diffuse", mgl32.Vec3{0.2, 0.3, 0.4}))
	m.UpdateUniforms(scene)
	p, _ = m.GetParameter("material_diffuse")
	second := p.Data.([]float32)

	assert.Same(t, &first[0], &second[0])
}

func TestUntrackedParametersSurviveUpdates(t *testing.T) {
	m := NewStandardMaterial("manual")
	m.SetParameter("custom_value", float32(3))
	m.UpdateUniforms(metadata.NewScene())
	m.UpdateUniforms(metadata.NewScene())

	assert.True(t, hasParam(m, "custom_value"))
	assert.NotContains(t, m.ActiveParameters(), "custom_value")
}
