package material

import (
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// BuildOptions derives the shader variant key of a standard material. Depth,
// shadow and pick passes take the minimal path, which runs the same shared
// and opacity steps as the full path and skips everything else.
func BuildOptions(m *Material, ctx *OptionsContext) Options {
	if ctx.Pass.IsMinimal() {
		return buildMinimalOptions(m, ctx)
	}
	return buildFullOptions(m, ctx)
}

func buildMinimalOptions(m *Material, ctx *OptionsContext) Options {
	var o Options
	o.Shared = buildSharedOptions(m, ctx)
	o.Maps[SlotOpacity] = buildOpacityMapOptions(m)
	return o
}

func buildFullOptions(m *Material, ctx *OptionsContext) Options {
	var o Options
	o.Shared = buildSharedOptions(m, ctx)
	for slot := TextureSlot(0); slot < SlotCount; slot++ {
		if slot == SlotOpacity {
			o.Maps[slot] = buildOpacityMapOptions(m)
			continue
		}
		o.Maps[slot] = buildMapOptions(m, slot)
	}
	o.Lit = buildLitOptions(m, ctx)
	return o
}

func buildSharedOptions(m *Material, ctx *OptionsContext) SharedOptions {
	return SharedOptions{
		Pass:              ctx.Pass,
		Chunks:            m.chunksKey,
		AlphaTest:         m.f(std.alphaTest) > 0,
		Instancing:        ctx.ObjDefs.Has(ShaderDefInstancing),
		Skin:              ctx.ObjDefs.Has(ShaderDefSkin),
		MorphPosition:     ctx.ObjDefs.Has(ShaderDefMorphPosition),
		MorphNormal:       ctx.ObjDefs.Has(ShaderDefMorphNormal),
		MorphTextureBased: ctx.ObjDefs.Has(ShaderDefMorphTextureBased),
		ScreenSpace:       ctx.ObjDefs.Has(ShaderDefScreenSpace),
	}
}

func buildOpacityMapOptions(m *Material) MapOptions {
	if !m.opacityMapUsed() {
		return MapOptions{}
	}
	return buildMapOptions(m, SlotOpacity)
}

func buildMapOptions(m *Material, slot TextureSlot) MapOptions {
	tex := m.mapTexture(slot)
	if tex == nil {
		return MapOptions{}
	}
	ids := std.maps[slot]
	o := MapOptions{
		Enabled:   true,
		Channel:   m.s(ids.channel),
		UV:        uint32(m.i(ids.uv)),
		Transform: !math.IsIdentityTransform(m.v2(ids.tiling), m.v2(ids.offset), m.f(ids.rotation)),
		Encoding:  tex.Encoding(),
	}
	if ids.vertexColor >= 0 && m.b(ids.vertexColor) {
		o.VertexColor = true
		o.VertexColorChannel = m.s(ids.vertexColorChannel)
	}
	if slot == SlotNormal || slot == SlotClearCoatNormal {
		o.PackedNormal = tex.Type == metadata.TextureTypeSwizzleGGGR
	}
	return o
}

func buildLitOptions(m *Material, ctx *OptionsContext) LitOptions {
	useMetalness := m.b(std.useMetalness)
	lit := LitOptions{
		UseLighting:          m.b(std.useLighting),
		ShadingModel:         ShadingModel(m.i(std.shadingModel)),
		FresnelModel:         FresnelModel(m.i(std.fresnelModel)),
		UseMetalness:         useMetalness,
		UseSpecular:          m.b(std.useSpecular) || useMetalness,
		ConserveEnergy:       m.b(std.conserveEnergy),
		TwoSidedLighting:     m.b(std.twoSidedLighting),
		OccludeSpecular:      m.b(std.occludeSpecular),
		OpacityFadesSpecular: m.b(std.opacityFadesSpecular),
		BlendType:            BlendType(m.i(std.blendType)),

		AmbientTint:       m.b(std.ambientTint),
		DiffuseTint:       m.mapTexture(SlotDiffuse) == nil || notWhite(m.c(std.diffuse)),
		SpecularTint:      m.mapTexture(SlotSpecular) == nil || notWhite(m.c(std.specular)),
		MetalnessTint:     useMetalness && (m.mapTexture(SlotMetalness) == nil || m.f(std.metalness) < 1),
		EmissiveTint:      m.mapTexture(SlotEmissive) == nil || notWhite(m.c(std.emissive)),
		EmissiveIntensity: m.f(std.emissiveIntensity) != 1,
		SheenTint:         m.b(std.useSheen) && (m.mapTexture(SlotSheen) == nil || notWhite(m.c(std.sheen))),

		ClearCoat:         m.f(std.clearCoat) > 0,
		Sheen:             m.b(std.useSheen),
		Refraction:        m.f(std.refraction) > 0,
		DynamicRefraction: m.b(std.useDynamicRefraction),
		VertexColors:      ctx.ObjDefs.Has(ShaderDefVertexColor),

		CubeMapProjection: CubeProjection(m.i(std.cubeMapProjection)),

		LightMapFromMesh: ctx.ObjDefs.Has(ShaderDefLightMap),
		DirLightMap:      ctx.ObjDefs.Has(ShaderDefDirLightMap),
		LightMapAmbient:  ctx.ObjDefs.Has(ShaderDefLightMapAmbient),
		NoShadow:         ctx.ObjDefs.Has(ShaderDefNoShadow),
	}
	applySceneOptions(&lit, m, ctx.Scene)
	applyEnvOptions(&lit, m, ctx.Scene)
	applyLightOptions(&lit, ctx)
	return lit
}

func applySceneOptions(lit *LitOptions, m *Material, scene *metadata.Scene) {
	lit.ToneMap = metadata.ToneMapLinear
	if scene == nil {
		return
	}
	if m.b(std.useFog) {
		lit.Fog = scene.Fog
	}
	if m.b(std.useGammaTonemap) {
		lit.Gamma = scene.GammaCorrection
		lit.ToneMap = scene.ToneMapping
	}
	lit.ClusteredLighting = scene.ClusteredLightingEnabled
	if lit.ClusteredLighting {
		lit.ClusteredShadows = scene.LightingShadowsEnabled
		lit.ClusteredCookies = scene.LightingCookiesEnabled
	}
}

// applyEnvOptions picks the reflection source. Material textures win over
// the scene's skybox environment.
func applyEnvOptions(lit *LitOptions, m *Material, scene *metadata.Scene) {
	if !lit.UseLighting {
		return
	}
	var envTex *metadata.Texture
	switch {
	case m.t(std.envAtlas) != nil:
		envTex = m.t(std.envAtlas)
		lit.ReflectionSource = ReflectionEnvAtlas
	case m.t(std.cubeMap) != nil:
		envTex = m.t(std.cubeMap)
		lit.ReflectionSource = ReflectionCubeMap
	case m.t(std.sphereMap) != nil:
		envTex = m.t(std.sphereMap)
		lit.ReflectionSource = ReflectionSphereMap
	case scene != nil && m.b(std.useSkybox) && scene.EnvAtlas != nil:
		envTex = scene.EnvAtlas
		lit.ReflectionSource = ReflectionEnvAtlas
		lit.SkyboxIntensity = scene.SkyboxIntensity != 1
		lit.UseCubeMapRotation = scene.HasCubeMapRotation()
	case scene != nil && m.b(std.useSkybox) && scene.Skybox != nil:
		envTex = scene.Skybox
		lit.ReflectionSource = ReflectionCubeMap
		lit.SkyboxIntensity = scene.SkyboxIntensity != 1
		lit.UseCubeMapRotation = scene.HasCubeMapRotation()
	}
	if envTex != nil {
		lit.ReflectionEncoding = envTex.Encoding()
	}
	if lit.ReflectionSource == ReflectionEnvAtlas {
		lit.AmbientSource = AmbientEnvAtlas
		lit.AmbientEncoding = lit.ReflectionEncoding
	}
}

// applyLightOptions compiles the draw's lights into the key. With clustered
// lighting only directional lights are compiled in; local lights are read
// from the clusters at runtime.
func applyLightOptions(lit *LitOptions, ctx *OptionsContext) {
	if !lit.UseLighting {
		return
	}
	shadows := !lit.NoShadow && (ctx.Scene == nil || ctx.Scene.LightingShadowsEnabled)

	var lights []*metadata.Light
	lights = append(lights, ctx.SortedLights[metadata.LightTypeDirectional]...)
	if !lit.ClusteredLighting {
		lights = append(lights, ctx.SortedLights[metadata.LightTypeOmni]...)
		lights = append(lights, ctx.SortedLights[metadata.LightTypeSpot]...)
	}
	lights = append(lights, ctx.StaticLights...)
	lit.Lights = metadata.LightsShaderKey(lights, shadows)
}
