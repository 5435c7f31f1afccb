package programs

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/material"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func optionsFor(m *material.Material, pass metadata.ShaderPass, lights material.SortedLights) material.Options {
	return material.BuildOptions(m, &material.OptionsContext{
		Scene:        metadata.NewScene(),
		ObjDefs:      material.ShaderDefUV0,
		Pass:         pass,
		SortedLights: lights,
	})
}

func TestGenerateForward(t *testing.T) {
	g := NewStandardGenerator()
	m := material.NewStandardMaterial("plain")

	p, err := g.Generate(optionsFor(m, metadata.ShaderPassForward, material.SortedLights{}), metadata.ShaderProcessingOptions{})
	require.NoError(t, err)
	assert.Equal(t, material.StandardKindName, p.Family)
	assert.Equal(t, "standard/forward", p.Name)
	assert.Contains(t, p.VertexSource, "#define PASS_FORWARD")
	assert.Contains(t, p.VertexSource, "uniform mat4 matrix_viewProjection;")
	assert.Contains(t, p.FragmentSource, "#define LIT")
	assert.Contains(t, p.FragmentSource, "#define DIFFUSE_TINT")
	assert.Contains(t, p.FragmentSource, "void evaluateLighting()")
	assert.NotContains(t, p.FragmentSource, "#define DIFFUSE_MAP")
}

func TestGenerateDepthSkipsLighting(t *testing.T) {
	g := NewStandardGenerator()
	m := material.NewStandardMaterial("depth")

	p, err := g.Generate(optionsFor(m, metadata.ShaderPassDepth, material.SortedLights{}), metadata.ShaderProcessingOptions{})
	require.NoError(t, err)
	assert.Contains(t, p.FragmentSource, "gl_FragCoord.z")
	assert.NotContains(t, p.FragmentSource, "evaluateLighting")
	assert.NotContains(t, p.FragmentSource, "#define LIT")
}

func TestGenerateMapDefines(t *testing.T) {
	g := NewStandardGenerator()
	m := material.NewStandardMaterial("mapped")
	require.NoError(t, m.SetTexture("diffuseMap", &metadata.Texture{Name: "bricks", Format: metadata.TextureFormatSRGBA8}))
	require.NoError(t, m.SetVec2("diffuseMapTiling", mgl32.Vec2{2, 2}))
	require.NoError(t, m.SetInt("diffuseMapUv", 1))

	p, err := g.Generate(optionsFor(m, metadata.ShaderPassForward, material.SortedLights{}), metadata.ShaderProcessingOptions{})
	require.NoError(t, err)
	assert.Contains(t, p.FragmentSource, "#define DIFFUSE_MAP\n")
	assert.Contains(t, p.FragmentSource, "#define DIFFUSE_MAP_UV applyTransform(vUv1, texture_diffuseMapTransform0, texture_diffuseMapTransform1)")
	assert.Contains(t, p.FragmentSource, "#define DIFFUSE_MAP_CHANNEL rgb")
	assert.Contains(t, p.FragmentSource, "uniform sampler2D texture_diffuseMap;")
	assert.Contains(t, p.FragmentSource, "uniform vec3 texture_diffuseMapTransform0;")
}

func TestGenerateLights(t *testing.T) {
	g := NewStandardGenerator()
	m := material.NewStandardMaterial("lit")
	sun := metadata.NewLight("sun", metadata.LightTypeDirectional)
	sun.CastShadows = true
	lamp := metadata.NewLight("lamp", metadata.LightTypeOmni)

	var lights material.SortedLights
	lights[metadata.LightTypeDirectional] = []*metadata.Light{sun}
	lights[metadata.LightTypeOmni] = []*metadata.Light{lamp}

	p, err := g.Generate(optionsFor(m, metadata.ShaderPassForward, lights), metadata.ShaderProcessingOptions{})
	require.NoError(t, err)
	assert.Contains(t, p.FragmentSource, "#define MAX_DIRECTIONAL_LIGHTS 1")
	assert.Contains(t, p.FragmentSource, "#define MAX_LOCAL_LIGHTS 1")
	assert.Contains(t, p.FragmentSource, "#define SHADOWS")
	assert.Contains(t, p.FragmentSource, "addDirectionalLights();")
	assert.Contains(t, p.FragmentSource, "addLocalLights();")
}

func TestGenerateRejectsUnsupported(t *testing.T) {
	g := NewStandardGenerator()

	outOfRange := material.NewStandardMaterial("uv")
	require.NoError(t, outOfRange.SetTexture("diffuseMap", &metadata.Texture{Name: "bricks"}))
	require.NoError(t, outOfRange.SetInt("diffuseMapUv", 3))

	sheen := material.NewStandardMaterial("sheen")
	require.NoError(t, sheen.SetBool("useSheen", true))
	require.NoError(t, sheen.SetInt("shadingModel", int(material.ShadingPhong)))

	refraction := optionsFor(material.NewStandardMaterial("refraction"), metadata.ShaderPassDepth, material.SortedLights{})
	refraction.Lit.Refraction = true

	tests := []struct {
		name    string
		options interface{}
		message string
	}{
		{"uv set", optionsFor(outOfRange, metadata.ShaderPassForward, material.SortedLights{}), "diffuseMapUv=3"},
		{"sheen with phong", optionsFor(sheen, metadata.ShaderPassForward, material.SortedLights{}), "useSheen"},
		{"refraction off forward", refraction, "refraction"},
		{"wrong options type", "standard", "got string"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := g.Generate(tt.options, metadata.ShaderProcessingOptions{})
			assert.Nil(t, p)
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrShaderCompilation))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestChunkOverrides(t *testing.T) {
	g := NewStandardGenerator()

	m := material.NewStandardMaterial("custom")
	m.SetChunk("diffusePS", "uniform vec3 material_diffuse;\nvoid getAlbedo() { dAlbedo = vec3(1.0, 0.0, 1.0); }\n")
	p, err := g.Generate(optionsFor(m, metadata.ShaderPassForward, material.SortedLights{}), metadata.ShaderProcessingOptions{})
	require.NoError(t, err)
	assert.Contains(t, p.FragmentSource, "dAlbedo = vec3(1.0, 0.0, 1.0);")
	assert.NotContains(t, p.FragmentSource, "dAlbedo *= material_diffuse;")

	tests := []struct {
		name, chunk, source, message string
	}{
		{"unknown name", "nopePS", "void nope() {}", "unknown chunk 'nopePS'"},
		{"unbalanced brace", "diffusePS", "void getAlbedo() { dAlbedo = vec3(1.0);", "unclosed '{'"},
		{"stray parenthesis", "diffusePS", "void getAlbedo() { dAlbedo = vec3(1.0)); }", "unexpected ')'"},
		{"blank", "diffusePS", "   \n", "is empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := material.NewStandardMaterial("bad")
			bad.SetChunk(tt.chunk, tt.source)
			_, err := g.Generate(optionsFor(bad, metadata.ShaderPassForward, material.SortedLights{}), metadata.ShaderProcessingOptions{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrShaderCompilation))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestCheckBalancedIgnoresComments(t *testing.T) {
	assert.NoError(t, checkBalanced("// {\nvoid f() { /* ( */ }\n"))
	assert.Error(t, checkBalanced("void f() { /* }"))
}

func TestViewBindGroupDeclaresBlock(t *testing.T) {
	g := NewStandardGenerator()
	m := material.NewStandardMaterial("block")
	processing := metadata.ShaderProcessingOptions{
		ViewUniformFormat: DefaultViewUniformFormat,
		ViewBindGroupFormat: &metadata.BindGroupFormat{
			Name:    "view",
			Entries: []metadata.BindGroupEntry{{Name: "ub_view", Type: metadata.BindGroupEntryUniformBuffer}},
		},
	}
	p, err := g.Generate(optionsFor(m, metadata.ShaderPassForward, material.SortedLights{}), processing)
	require.NoError(t, err)
	assert.Contains(t, p.VertexSource, "layout(std140) uniform ub_view {\n    mat4 matrix_viewProjection;\n")

	_, err = g.Generate(optionsFor(m, metadata.ShaderPassForward, material.SortedLights{}), metadata.ShaderProcessingOptions{
		ViewUniformFormat: &metadata.UniformBufferFormat{Uniforms: []metadata.UniformFormat{{Name: "view_position", Type: metadata.UniformTypeVec3, Count: 1}}},
	})
	assert.True(t, errors.Is(err, core.ErrShaderCompilation))
}

func TestDefineName(t *testing.T) {
	assert.Equal(t, "CLEAR_COAT_GLOSS", defineName("clearCoatGloss"))
	assert.Equal(t, "AO", defineName("ao"))
}
