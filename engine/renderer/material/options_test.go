package material

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func richMaterial(t *testing.T) *Material {
	t.Helper()
	m := NewStandardMaterial("rich")
	require.NoError(t, m.SetTexture("diffuseMap", &metadata.Texture{Name: "d", Format: metadata.TextureFormatSRGBA8}))
	require.NoError(t, m.SetTexture("opacityMap", &metadata.Texture{Name: "o"}))
	require.NoError(t, m.SetVec2("opacityMapTiling", mgl32.Vec2{2, 2}))
	require.NoError(t, m.SetFloat("alphaTest", 0.5))
	require.NoError(t, m.SetFloat("clearCoat", 0.3))
	require.NoError(t, m.SetBool("useMetalness", true))
	return m
}

func TestMinimalOptionsAreProjectionOfFullOptions(t *testing.T) {
	m := richMaterial(t)
	for _, pass := range []metadata.ShaderPass{metadata.ShaderPassDepth, metadata.ShaderPassShadow, metadata.ShaderPassPick} {
		ctx := &OptionsContext{Scene: metadata.NewScene(), ObjDefs: ShaderDefSkin | ShaderDefUV0, Pass: pass}

		minimal := BuildOptions(m, ctx)
		full := buildFullOptions(m, ctx)

		assert.Equal(t, full.MinimalProjection(), minimal, pass.String())
		assert.True(t, minimal.Maps[SlotOpacity].Enabled)
		assert.True(t, minimal.Maps[SlotOpacity].Transform)
		assert.True(t, minimal.Shared.Skin)
		assert.False(t, minimal.Maps[SlotDiffuse].Enabled)
		assert.Equal(t, LitOptions{}, minimal.Lit)
	}
}

func TestOpacityMapIgnoredWhenNotBlendedOrTested(t *testing.T) {
	m := NewStandardMaterial("opaque")
	require.NoError(t, m.SetTexture("opacityMap", &metadata.Texture{Name: "o"}))

	o := BuildOptions(m, &OptionsContext{Scene: metadata.NewScene(), Pass: metadata.ShaderPassForward})
	assert.False(t, o.Maps[SlotOpacity].Enabled)

	require.NoError(t, m.SetInt("blendType", int(BlendNormal)))
	o = BuildOptions(m, &OptionsContext{Scene: metadata.NewScene(), Pass: metadata.ShaderPassForward})
	assert.True(t, o.Maps[SlotOpacity].Enabled)
}

func TestEqualMaterialsProduceEqualOptions(t *testing.T) {
	a := richMaterial(t)
	b := richMaterial(t)
	b.Name = "other"
	ctx := &OptionsContext{Scene: metadata.NewScene(), Pass: metadata.ShaderPassForward}

	assert.Equal(t, BuildOptions(a, ctx), BuildOptions(b, ctx))
	assert.True(t, BuildOptions(a, ctx) == BuildOptions(b, ctx))
}

func TestSceneStateFeedsLitOptions(t *testing.T) {
	m := NewStandardMaterial("scene")
	scene := metadata.NewScene()
	scene.Fog = metadata.FogExp2
	scene.ToneMapping = metadata.ToneMapACES
	scene.EnvAtlas = &metadata.Texture{Name: "env", Type: metadata.TextureTypeRGBP}
	scene.SkyboxRotation = mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})

	o := BuildOptions(m, &OptionsContext{Scene: scene, Pass: metadata.ShaderPassForward})
	assert.Equal(t, metadata.FogExp2, o.Lit.Fog)
	assert.Equal(t, metadata.ToneMapACES, o.Lit.ToneMap)
	assert.Equal(t, ReflectionEnvAtlas, o.Lit.ReflectionSource)
	assert.Equal(t, metadata.TextureEncodingRGBP, o.Lit.ReflectionEncoding)
	assert.True(t, o.Lit.UseCubeMapRotation)

	require.NoError(t, m.SetBool("useFog", false))
	require.NoError(t, m.SetBool("useGammaTonemap", false))
	o = BuildOptions(m, &OptionsContext{Scene: scene, Pass: metadata.ShaderPassForward})
	assert.Equal(t, metadata.FogNone, o.Lit.Fog)
	assert.Equal(t, metadata.ToneMapLinear, o.Lit.ToneMap)
}

func TestClusteredLightingOnlyCompilesDirectionalLights(t *testing.T) {
	m := NewStandardMaterial("lights")
	sun := metadata.NewLight("sun", metadata.LightTypeDirectional)
	sun.CastShadows = true
	lamp := metadata.NewLight("lamp", metadata.LightTypeOmni)

	var sorted SortedLights
	sorted[metadata.LightTypeDirectional] = []*metadata.Light{sun}
	sorted[metadata.LightTypeOmni] = []*metadata.Light{lamp}

	scene := metadata.NewScene()
	forward := BuildOptions(m, &OptionsContext{Scene: scene, Pass: metadata.ShaderPassForward, SortedLights: sorted})
	assert.Equal(t, metadata.LightsShaderKey([]*metadata.Light{sun, lamp}, true), forward.Lit.Lights)

	scene.ClusteredLightingEnabled = true
	clustered := BuildOptions(m, &OptionsContext{Scene: scene, Pass: metadata.ShaderPassForward, SortedLights: sorted})
	assert.Equal(t, metadata.LightsShaderKey([]*metadata.Light{sun}, true), clustered.Lit.Lights)

	noShadow := BuildOptions(m, &OptionsContext{Scene: scene, Pass: metadata.ShaderPassForward, SortedLights: sorted, ObjDefs: ShaderDefNoShadow})
	assert.NotEqual(t, clustered.Lit.Lights, noShadow.Lit.Lights)
}

func TestOverrideHookRunsLast(t *testing.T) {
	lib := newFakeLibrary()
	m := richMaterial(t)
	var seen Options
	m.OnUpdateShader = func(o Options) Options {
		seen = o
		o.Lit.Fog = metadata.FogLinear
		return o
	}

	_, err := fetch(m, lib, metadata.NewScene(), metadata.ShaderPassForward)
	require.NoError(t, err)

	assert.True(t, seen.Lit.ClearCoat, "hook receives fully derived options")
	assert.Equal(t, metadata.FogLinear, lib.lastOptions.Lit.Fog, "hook result is used as the key")
}

func TestVariantCacheReturnsSameProgram(t *testing.T) {
	lib := newFakeLibrary()
	a := richMaterial(t)
	b := richMaterial(t)
	scene := metadata.NewScene()

	pa, err := fetch(a, lib, scene, metadata.ShaderPassForward)
	require.NoError(t, err)
	pb, err := fetch(b, lib, scene, metadata.ShaderPassForward)
	require.NoError(t, err)
	again, err := fetch(a, lib, scene, metadata.ShaderPassForward)
	require.NoError(t, err)

	assert.Same(t, pa, pb)
	assert.Same(t, pa, again)
	assert.Equal(t, 1, lib.generated)
}

func TestVariantFailureKeepsShaderDirty(t *testing.T) {
	lib := newFakeLibrary()
	lib.fail = true
	m := NewStandardMaterial("broken")

	_, err := fetch(m, lib, metadata.NewScene(), metadata.ShaderPassForward)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrShaderCompilation)
	assert.Contains(t, err.Error(), "broken")
	assert.Contains(t, err.Error(), "diffuseMapUv")
	assert.True(t, m.DirtyShader())
}
