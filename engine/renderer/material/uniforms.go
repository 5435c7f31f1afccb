package material

import (
	stdmath "math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// Sampler and transform uniform names of a slot.
func (s TextureSlot) SamplerUniform() string { return "texture_" + slotInfos[s].name + "Map" }
func (s TextureSlot) TransformUniform0() string { return "texture_" + slotInfos[s].name + "MapTransform0" }
func (s TextureSlot) TransformUniform1() string { return "texture_" + slotInfos[s].name + "MapTransform1" }

// ShininessToSpecularPower maps the 0-100 shininess to a Phong exponent.
func ShininessToSpecularPower(shininess float32) float32 {
	return float32(stdmath.Pow(2, float64(shininess)*0.01*11))
}

// ShininessToGlossiness maps the 0-100 shininess to a normalised glossiness.
func ShininessToGlossiness(shininess float32) float32 {
	return shininess * 0.01
}

func updateStandardUniforms(m *Material, scene *metadata.Scene) {
	linear := scene != nil && scene.GammaCorrection != metadata.GammaNone
	colour := func(c mgl32.Vec3) mgl32.Vec3 {
		if linear {
			return math.GammaToLinear(c)
		}
		return c
	}

	if m.b(std.ambientTint) {
		m.setUniformColour("material_ambient", colour(m.c(std.ambient)))
	}

	if m.mapTexture(SlotDiffuse) == nil || notWhite(m.c(std.diffuse)) {
		m.setUniformColour("material_diffuse", colour(m.c(std.diffuse)))
	}

	specularTint := m.mapTexture(SlotSpecular) == nil || notWhite(m.c(std.specular))
	if m.b(std.useMetalness) {
		if m.mapTexture(SlotMetalness) == nil || m.f(std.metalness) < 1 {
			m.setUniformFloat("material_metalness", m.f(std.metalness))
		}
		if specularTint {
			m.setUniformColour("material_specular", colour(m.c(std.specular)))
		}
	} else if m.b(std.useSpecular) && specularTint {
		m.setUniformColour("material_specular", colour(m.c(std.specular)))
	}

	if ShadingModel(m.i(std.shadingModel)) == ShadingPhong {
		m.setUniformFloat("material_shininess", ShininessToSpecularPower(m.f(std.shininess)))
	} else {
		m.setUniformFloat("material_shininess", ShininessToGlossiness(m.f(std.shininess)))
	}

	if m.f(std.clearCoat) > 0 {
		m.setUniformFloat("material_clearCoat", m.f(std.clearCoat))
		m.setUniformFloat("material_clearCoatGlossiness", m.f(std.clearCoatGlossiness))
		m.setUniformFloat("material_clearCoatReflectivity", m.f(std.clearCoat))
		m.setUniformFloat("material_clearCoatBumpiness", m.f(std.clearCoatBumpiness))
	}

	if m.mapTexture(SlotEmissive) == nil || notWhite(m.c(std.emissive)) {
		m.setUniformColour("material_emissive", colour(m.c(std.emissive)))
	}
	if m.f(std.emissiveIntensity) != 1 {
		m.setUniformFloat("material_emissiveIntensity", m.f(std.emissiveIntensity))
	}

	if m.f(std.refraction) > 0 {
		m.setUniformFloat("material_refraction", m.f(std.refraction))
		m.setUniformFloat("material_refractionIndex", m.f(std.refractionIdx))
	}
	if m.b(std.useDynamicRefraction) {
		m.setUniformFloat("material_thickness", m.f(std.thickness))
		m.setUniformColour("material_attenuation", colour(m.c(std.attenuation)))
		invDistance := float32(0)
		if d := m.f(std.attenuationDistance); d > 0 {
			invDistance = 1 / d
		}
		m.setUniformFloat("material_invAttenuationDistance", invDistance)
	}

	if m.b(std.useSheen) {
		if m.mapTexture(SlotSheen) == nil || notWhite(m.c(std.sheen)) {
			m.setUniformColour("material_sheen", colour(m.c(std.sheen)))
		}
		m.setUniformFloat("material_sheenGloss", m.f(std.sheenGloss))
	}

	m.setUniformFloat("material_opacity", m.f(std.opacity))
	if !m.b(std.opacityFadesSpecular) {
		m.setUniformFloat("material_alphaFade", m.f(std.alphaFade))
	}
	if m.b(std.occludeSpecular) {
		m.setUniformFloat("material_occludeSpecularIntensity", m.f(std.occludeSpecularIntensity))
	}
	if m.f(std.alphaTest) > 0 {
		m.setUniformFloat("alpha_ref", m.f(std.alphaTest))
	}

	if m.mapTexture(SlotNormal) != nil || m.mapTexture(SlotClearCoatNormal) != nil {
		m.setUniformFloat("material_bumpiness", m.f(std.bumpiness))
	}
	if m.mapTexture(SlotHeight) != nil {
		m.setUniformFloat("material_heightMapFactor", m.f(std.heightMapFactor)*0.025)
	}

	hasEnv := false
	if tex := m.t(std.envAtlas); tex != nil {
		m.setParameter("texture_envAtlas", tex)
		hasEnv = true
	}
	if tex := m.t(std.cubeMap); tex != nil {
		m.setParameter("texture_cubeMap", tex)
		hasEnv = true
	}
	if tex := m.t(std.sphereMap); tex != nil {
		m.setParameter("texture_sphereMap", tex)
		hasEnv = true
	}
	if hasEnv || (m.b(std.useSkybox) && scene != nil && (scene.EnvAtlas != nil || scene.Skybox != nil)) {
		m.setUniformFloat("material_reflectivity", m.f(std.reflectivity))
	}

	for slot := TextureSlot(0); slot < SlotCount; slot++ {
		tex := m.mapTexture(slot)
		if tex == nil {
			continue
		}
		m.setParameter(slot.SamplerUniform(), tex)

		ids := std.maps[slot]
		tiling, offset, rotation := m.v2(ids.tiling), m.v2(ids.offset), m.f(ids.rotation)
		if math.IsIdentityTransform(tiling, offset, rotation) {
			continue
		}
		row0, row1 := math.TextureTransform(tiling, offset, rotation)
		m.setUniformVec(slot.TransformUniform0(), row0[0], row0[1], row0[2])
		m.setUniformVec(slot.TransformUniform1(), row1[0], row1[1], row1[2])
	}
}
