package programs

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/spaghettifunk/prism/engine/renderer/material"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type assembler struct {
	chunks    map[string]string
	overrides map[string]string
	options   *material.Options
	sb        strings.Builder
}

func (a *assembler) chunk(name string) {
	if src, ok := a.overrides[name]; ok {
		a.sb.WriteString(src)
	} else {
		a.sb.WriteString(a.chunks[name])
	}
	if !strings.HasSuffix(a.sb.String(), "\n") {
		a.sb.WriteByte('\n')
	}
}

func (a *assembler) line(parts ...string) {
	a.sb.WriteString(strings.Join(parts, " "))
	a.sb.WriteByte('\n')
}

func (a *assembler) flush() string {
	s := a.sb.String()
	a.sb.Reset()
	return s
}

// defineName turns a camel case slot name into a define prefix, e.g.
// clearCoatGloss becomes CLEAR_COAT_GLOSS.
func defineName(name string) string {
	var sb strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) && i > 0 {
			sb.WriteByte('_')
		}
		sb.WriteRune(unicode.ToUpper(r))
	}
	return sb.String()
}

type lightCounts struct {
	directional int
	local       int
	shadows     bool
}

// countLights reads the light list compiled into the options, see
// metadata.LightsShaderKey.
func countLights(key string) lightCounts {
	var c lightCounts
	if key == "" {
		return c
	}
	for _, l := range strings.Split(key, "|") {
		fields := strings.Split(l, ":")
		if len(fields) < 2 {
			continue
		}
		if fields[0] == strconv.Itoa(int(metadata.LightTypeDirectional)) {
			c.directional++
		} else {
			c.local++
		}
		if fields[1] != "-" {
			c.shadows = true
		}
	}
	return c
}

func (a *assembler) header() string {
	o := a.options
	a.line("#define PASS_" + strings.ToUpper(o.Shared.Pass.String()))
	flags := []struct {
		on   bool
		name string
	}{
		{o.Shared.AlphaTest, "ALPHA_TEST"},
		{o.Shared.Instancing, "INSTANCING"},
		{o.Shared.Skin, "SKIN"},
		{o.Shared.MorphPosition, "MORPHING_POSITION"},
		{o.Shared.MorphNormal, "MORPHING_NORMAL"},
		{o.Shared.MorphTextureBased, "MORPHING_TEXTURE_BASED"},
		{o.Shared.ScreenSpace, "SCREENSPACE"},
	}
	for _, f := range flags {
		if f.on {
			a.line("#define", f.name)
		}
	}

	for slot, m := range o.Maps {
		if !m.Enabled {
			continue
		}
		s := material.TextureSlot(slot)
		prefix := defineName(s.String()) + "_MAP"
		uv := "vUv" + strconv.Itoa(int(m.UV))
		if m.Transform {
			uv = "applyTransform(" + uv + ", " + s.TransformUniform0() + ", " + s.TransformUniform1() + ")"
		}
		a.line("#define", prefix)
		a.line("#define", prefix+"_UV", uv)
		if m.Channel != "" {
			a.line("#define", prefix+"_CHANNEL", m.Channel)
		}
		a.line("#define", prefix+"_DECODE", "decode"+encodingSuffix(m.Encoding))
		if m.VertexColor {
			a.line("#define", defineName(s.String())+"_VERTEX_COLOR")
			a.line("#define", defineName(s.String())+"_VERTEX_COLOR_CHANNEL", m.VertexColorChannel)
		}
		if m.PackedNormal {
			a.line("#define", prefix+"_PACKED")
		}
	}

	if o.Shared.Pass != metadata.ShaderPassForward {
		return a.flush()
	}

	lit := &o.Lit
	if lit.UseLighting {
		a.line("#define LIT")
	}
	tints := []struct {
		on   bool
		name string
	}{
		{lit.AmbientTint, "AMBIENT_TINT"},
		{lit.DiffuseTint, "DIFFUSE_TINT"},
		{lit.SpecularTint, "SPECULAR_TINT"},
		{lit.MetalnessTint, "METALNESS_TINT"},
		{lit.EmissiveTint, "EMISSIVE_TINT"},
		{lit.EmissiveIntensity, "EMISSIVE_INTENSITY"},
		{lit.SheenTint, "SHEEN_TINT"},
		{lit.UseMetalness, "METALNESS"},
		{lit.ConserveEnergy, "CONSERVE_ENERGY"},
		{lit.TwoSidedLighting, "TWO_SIDED_LIGHTING"},
		{lit.OccludeSpecular, "OCCLUDE_SPECULAR"},
		{!lit.OpacityFadesSpecular, "ALPHA_FADE"},
		{lit.VertexColors, "VERTEX_COLOR"},
		{lit.LightMapFromMesh, "LIGHTMAP"},
		{lit.DirLightMap, "DIR_LIGHTMAP"},
		{lit.LightMapAmbient, "LIGHTMAP_AMBIENT"},
		{lit.SkyboxIntensity, "SKYBOX_INTENSITY"},
		{lit.UseCubeMapRotation, "CUBEMAP_ROTATION"},
		{lit.CubeMapProjection == material.CubeProjectionBox, "CUBEMAP_PROJECTION_BOX"},
		{lit.ClusteredLighting, "CLUSTERED_LIGHTS"},
		{lit.ClusteredShadows, "CLUSTERED_SHADOWS"},
		{lit.ClusteredCookies, "CLUSTERED_COOKIES"},
		{lit.FresnelModel == material.FresnelSchlick, "FRESNEL_SCHLICK"},
		{lit.ShadingModel == material.ShadingPhong, "SHADING_PHONG"},
		{lit.Gamma != metadata.GammaNone, "GAMMA_CORRECT"},
	}
	for _, f := range tints {
		if f.on {
			a.line("#define", f.name)
		}
	}
	switch lit.ToneMap {
	case metadata.ToneMapFilmic:
		a.line("#define TONEMAP_FILMIC")
	case metadata.ToneMapHejl:
		a.line("#define TONEMAP_HEJL")
	case metadata.ToneMapACES:
		a.line("#define TONEMAP_ACES")
	case metadata.ToneMapACES2:
		a.line("#define TONEMAP_ACES2")
	case metadata.ToneMapNeutral:
		a.line("#define TONEMAP_NEUTRAL")
	}
	if lit.BlendType != material.BlendNone {
		a.line("#define BLEND", strconv.Itoa(int(lit.BlendType)))
	}

	lights := countLights(lit.Lights)
	if lights.directional > 0 {
		a.line("#define MAX_DIRECTIONAL_LIGHTS", strconv.Itoa(lights.directional))
	}
	if lights.local > 0 {
		a.line("#define MAX_LOCAL_LIGHTS", strconv.Itoa(lights.local))
	}
	if lights.shadows {
		a.line("#define SHADOWS")
	}
	return a.flush()
}

func encodingSuffix(e metadata.TextureEncoding) string {
	switch e {
	case metadata.TextureEncodingSRGB:
		return "Gamma"
	case metadata.TextureEncodingRGBM:
		return "RGBM"
	case metadata.TextureEncodingRGBE:
		return "RGBE"
	case metadata.TextureEncodingRGBP:
		return "RGBP"
	default:
		return "Linear"
	}
}

func (a *assembler) vertex() string {
	o := a.options
	a.chunk("baseVS")
	switch {
	case o.Shared.Skin:
		a.chunk("skinVS")
	case o.Shared.Instancing:
		a.chunk("instancingVS")
	default:
		a.chunk("modelVS")
	}
	if o.Shared.MorphPosition || o.Shared.MorphNormal {
		a.chunk("morphVS")
	}
	a.chunk("transformVS")
	if o.Shared.Pass == metadata.ShaderPassForward && o.Lit.UseLighting {
		a.chunk("normalVS")
	}
	a.chunk("endVS")
	return a.flush()
}

func (a *assembler) samplers() {
	for slot, m := range a.options.Maps {
		if !m.Enabled {
			continue
		}
		s := material.TextureSlot(slot)
		a.line("uniform sampler2D", s.SamplerUniform()+";")
		if m.Transform {
			a.line("uniform vec3", s.TransformUniform0()+";")
			a.line("uniform vec3", s.TransformUniform1()+";")
		}
	}
}

func (a *assembler) fragment() string {
	o := a.options
	a.chunk("basePS")
	a.chunk("decodePS")
	a.chunk("uvTransformPS")
	a.samplers()
	a.chunk("opacityPS")
	if o.Shared.AlphaTest {
		a.chunk("alphaTestPS")
	}

	switch o.Shared.Pass {
	case metadata.ShaderPassPick:
		a.chunk("pickPS")
		return a.flush()
	case metadata.ShaderPassDepth, metadata.ShaderPassShadow:
		a.chunk("depthPS")
		return a.flush()
	}

	lit := &o.Lit
	a.chunk("diffusePS")
	if !lit.UseLighting {
		a.chunk("endPS")
		return a.flush()
	}
	a.chunk("normalMapPS")
	a.chunk("specularPS")
	a.chunk("glossPS")
	a.chunk("emissivePS")
	if lit.UseMetalness {
		a.chunk("metalnessPS")
	}
	if o.Maps[material.SlotAO].Enabled {
		a.chunk("aoPS")
	}
	if lit.ClearCoat {
		a.chunk("clearCoatPS")
	}
	if lit.Sheen {
		a.chunk("sheenPS")
	}
	if lit.Refraction {
		a.chunk("refractionPS")
	}

	reflection := ""
	switch lit.ReflectionSource {
	case material.ReflectionEnvAtlas:
		reflection = "reflectionEnvAtlasPS"
	case material.ReflectionCubeMap:
		reflection = "reflectionCubePS"
	case material.ReflectionSphereMap:
		reflection = "reflectionSpherePS"
	}
	if reflection != "" {
		a.line("vec3 decode(vec4 raw) { return decode" + encodingSuffix(lit.ReflectionEncoding) + "(raw); }")
		a.chunk(reflection)
	}

	lights := countLights(lit.Lights)
	if lights.directional > 0 {
		a.chunk("lightDirPS")
	}
	if lights.local > 0 && !lit.ClusteredLighting {
		a.chunk("lightLocalPS")
	}
	if lit.ClusteredLighting {
		a.chunk("clusteredLightPS")
	}
	if lights.shadows || lit.ClusteredShadows {
		a.chunk("shadowPS")
	}

	switch lit.Fog {
	case metadata.FogLinear:
		a.chunk("fogLinearPS")
	case metadata.FogExp:
		a.chunk("fogExpPS")
	case metadata.FogExp2:
		a.chunk("fogExp2PS")
	default:
		a.chunk("fogNonePS")
	}
	a.chunk("gammaPS")
	a.chunk("tonemappingPS")

	a.line("void evaluateLighting() {")
	a.line("    dDiffuseLight = vec3(0.0);")
	a.line("    dSpecularLight = vec3(0.0);")
	if lights.directional > 0 {
		a.line("    addDirectionalLights();")
	}
	if lights.local > 0 && !lit.ClusteredLighting {
		a.line("    addLocalLights();")
	}
	if lit.ClusteredLighting {
		a.line("    addClusteredLights();")
	}
	if o.Maps[material.SlotAO].Enabled {
		a.line("    applyAO();")
	}
	if lit.Refraction {
		a.line("    addRefraction();")
	}
	if reflection != "" {
		a.line("    dSpecularLight += getReflection(reflect(normalize(vPositionW - view_position), dNormalW)) * dSpecularity;")
	}
	if lit.ClearCoat {
		a.line("    getClearCoat();")
		a.line("    dSpecularLight += vec3(ccSpecularity);")
	}
	if lit.Sheen {
		a.line("    getSheen();")
		a.line("    dSpecularLight += sSpecularity * material_sheenGloss;")
	}
	a.line("}")
	a.chunk("endPS")
	return a.flush()
}
