package material

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// StandardKindName is the kind and program family of physically based materials.
const StandardKindName = "standard"

type ShadingModel int

const (
	ShadingPhong ShadingModel = iota
	ShadingBlinn
)

type FresnelModel int

const (
	FresnelNone FresnelModel = iota
	FresnelSchlick
)

type BlendType int

const (
	BlendNone BlendType = iota
	BlendNormal
	BlendAdditive
	BlendPremultiplied
)

type CubeProjection int

const (
	CubeProjectionNone CubeProjection = iota
	CubeProjectionBox
)

// TextureSlot identifies one texture map of the standard material.
type TextureSlot int

const (
	SlotDiffuse TextureSlot = iota
	SlotSpecular
	SlotEmissive
	SlotNormal
	SlotMetalness
	SlotGloss
	SlotOpacity
	SlotAO
	SlotLight
	SlotHeight
	SlotClearCoat
	SlotClearCoatGloss
	SlotClearCoatNormal
	SlotRefraction
	SlotThickness
	SlotSheen
	SlotCount
)

type slotInfo struct {
	name        string
	channel     string
	vertexColor bool
}

var slotInfos = [SlotCount]slotInfo{
	SlotDiffuse:         {"diffuse", "rgb", true},
	SlotSpecular:        {"specular", "rgb", true},
	SlotEmissive:        {"emissive", "rgb", true},
	SlotNormal:          {"normal", "", false},
	SlotMetalness:       {"metalness", "g", true},
	SlotGloss:           {"gloss", "g", true},
	SlotOpacity:         {"opacity", "a", true},
	SlotAO:              {"ao", "g", true},
	SlotLight:           {"light", "rgb", true},
	SlotHeight:          {"height", "g", false},
	SlotClearCoat:       {"clearCoat", "g", true},
	SlotClearCoatGloss:  {"clearCoatGloss", "g", true},
	SlotClearCoatNormal: {"clearCoatNormal", "", false},
	SlotRefraction:      {"refraction", "g", true},
	SlotThickness:       {"thickness", "g", true},
	SlotSheen:           {"sheen", "rgb", true},
}

func (s TextureSlot) String() string {
	if s < 0 || s >= SlotCount {
		return "invalid"
	}
	return slotInfos[s].name
}

// SlotByName resolves a slot from its name, e.g. "diffuse".
func SlotByName(name string) (TextureSlot, bool) {
	for i, info := range slotInfos {
		if info.name == name {
			return TextureSlot(i), true
		}
	}
	return SlotCount, false
}

// HasVertexColor reports whether the slot can be multiplied by a vertex colour.
func (s TextureSlot) HasVertexColor() bool {
	return slotInfos[s].vertexColor
}

// Property names of a slot, e.g. "diffuseMap", "diffuseMapTiling".
func (s TextureSlot) MapName() string { return slotInfos[s].name + "Map" }
func (s TextureSlot) ChannelName() string { return slotInfos[s].name + "MapChannel" }
func (s TextureSlot) UVName() string { return slotInfos[s].name + "MapUv" }
func (s TextureSlot) TilingName() string { return slotInfos[s].name + "MapTiling" }
func (s TextureSlot) OffsetName() string { return slotInfos[s].name + "MapOffset" }
func (s TextureSlot) RotationName() string { return slotInfos[s].name + "MapRotation" }
func (s TextureSlot) VertexColorName() string {
	return slotInfos[s].name + "VertexColor"
}
func (s TextureSlot) VertexColorChannelName() string {
	return slotInfos[s].name + "VertexColorChannel"
}

type slotIDs struct {
	tex, channel, uv, tiling, offset, rotation PropertyID
	vertexColor, vertexColorChannel          PropertyID
}

// standardIDs caches the registry ids used by the uniform and options code.
type standardIDs struct {
	maps [SlotCount]slotIDs

	diffuse, specular, emissive, ambient, sheen, attenuation PropertyID

	shininess, metalness, opacity, bumpiness, heightMapFactor  PropertyID
	emissiveIntensity, reflectivity, refraction, refractionIdx PropertyID
	thickness, attenuationDistance                            PropertyID
	clearCoat, clearCoatGlossiness, clearCoatBumpiness         PropertyID
	sheenGloss, alphaTest, alphaFade, occludeSpecularIntensity PropertyID

	useMetalness, useSpecular, useLighting, useFog, useSkybox PropertyID
	useGammaTonemap, useDynamicRefraction, useSheen           PropertyID
	twoSidedLighting, opacityFadesSpecular, occludeSpecular   PropertyID
	conserveEnergy, ambientTint                               PropertyID

	shadingModel, fresnelModel, blendType, cubeMapProjection PropertyID

	cubeMap, sphereMap, envAtlas PropertyID
}

var (
	standardOnce sync.Once
	standardKind *Kind
	std          standardIDs
)

// StandardKind returns the standard material kind, registering its property
// table on first use.
func StandardKind() *Kind {
	standardOnce.Do(func() {
		r := NewRegistry(StandardKindName)
		std = defineStandardProperties(r)
		standardKind = &Kind{
			Name:           StandardKindName,
			Family:         StandardKindName,
			Registry:       r,
			UpdateUniforms: updateStandardUniforms,
			BuildOptions:   BuildOptions,
		}
	})
	return standardKind
}

// NewStandardMaterial creates a material of the standard kind with default values.
func NewStandardMaterial(name string) *Material {
	return NewMaterial(name, StandardKind())
}

// Dirty predicates.

// uniformOnly never dirties: the value only feeds a uniform.
func uniformOnly(_, _ Value) bool { return false }

// crossesZero dirties when a feature gated on value > 0 toggles.
func crossesZero(old, new Value) bool {
	return (old.Float() > 0) != (new.Float() > 0)
}

// crossesOne dirties when a value crosses its neutral 1.
func crossesOne(old, new Value) bool {
	return (old.Float() != 1) != (new.Float() != 1)
}

func belowOne(old, new Value) bool {
	return (old.Float() < 1) != (new.Float() < 1)
}

func notWhite(c mgl32.Vec3) bool {
	return c[0] != 1 || c[1] != 1 || c[2] != 1
}

// tintChanged dirties when a colour crosses the neutral white.
func tintChanged(old, new Value) bool {
	return notWhite(old.Colour()) != notWhite(new.Colour())
}

// textureChanged dirties on presence changes or when the replacement decodes
// differently.
func textureChanged(old, new Value) bool {
	return !metadata.ShaderEquivalent(old.Texture(), new.Texture())
}

func tilingChanged(old, new Value) bool {
	return (old.Vec2() == math.IdentityTiling) != (new.Vec2() == math.IdentityTiling)
}

func offsetChanged(old, new Value) bool {
	return (old.Vec2() == math.IdentityOffset) != (new.Vec2() == math.IdentityOffset)
}

func rotationChanged(old, new Value) bool {
	return (old.Float() == 0) != (new.Float() == 0)
}

func constant(v Value) func() Value {
	return func() Value { return v }
}

func defineStandardProperties(r *Registry) standardIDs {
	var ids standardIDs

	for s := TextureSlot(0); s < SlotCount; s++ {
		info := slotInfos[s]
		sid := &ids.maps[s]
		sid.tex = r.DefineProperty(PropertyDescriptor{Name: s.MapName(), Kind: KindTexture, Default: constant(Texture(nil)), DirtiesShader: textureChanged})
		sid.channel = r.DefineProperty(PropertyDescriptor{Name: s.ChannelName(), Kind: KindString, Default: constant(Str(info.channel))})
		sid.uv = r.DefineProperty(PropertyDescriptor{Name: s.UVName(), Kind: KindInt, Default: constant(Int(0))})
		sid.tiling = r.DefineProperty(PropertyDescriptor{Name: s.TilingName(), Kind: KindVec2, Default: constant(Vec2(math.IdentityTiling)), DirtiesShader: tilingChanged})
		sid.offset = r.DefineProperty(PropertyDescriptor{Name: s.OffsetName(), Kind: KindVec2, Default: constant(Vec2(math.IdentityOffset)), DirtiesShader: offsetChanged})
		sid.rotation = r.DefineProperty(PropertyDescriptor{Name: s.RotationName(), Kind: KindFloat, Default: constant(Float(0)), DirtiesShader: rotationChanged})
		sid.vertexColor, sid.vertexColorChannel = -1, -1
		if info.vertexColor {
			sid.vertexColor = r.DefineProperty(PropertyDescriptor{Name: s.VertexColorName(), Kind: KindBool, Default: constant(Bool(false))})
			sid.vertexColorChannel = r.DefineProperty(PropertyDescriptor{Name: s.VertexColorChannelName(), Kind: KindString, Default: constant(Str(info.channel))})
		}
	}

	colour := func(name string, c mgl32.Vec3, pred DirtyPredicate) PropertyID {
		return r.DefineProperty(PropertyDescriptor{Name: name, Kind: KindColour, Default: constant(Colour(c)), DirtiesShader: pred})
	}
	ids.diffuse = colour("diffuse", mgl32.Vec3{1, 1, 1}, tintChanged)
	ids.specular = colour("specular", mgl32.Vec3{0, 0, 0}, tintChanged)
	ids.emissive = colour("emissive", mgl32.Vec3{0, 0, 0}, tintChanged)
	ids.sheen = colour("sheen", mgl32.Vec3{1, 1, 1}, tintChanged)
	ids.ambient = colour("ambient", mgl32.Vec3{0.7, 0.7, 0.7}, uniformOnly)
	ids.attenuation = colour("attenuation", mgl32.Vec3{1, 1, 1}, uniformOnly)

	float := func(name string, def float32, pred DirtyPredicate) PropertyID {
		return r.DefineProperty(PropertyDescriptor{Name: name, Kind: KindFloat, Default: constant(Float(def)), DirtiesShader: pred})
	}
	ids.shininess = r.DefineProperty(PropertyDescriptor{
		Name:          "shininess",
		Kind:          KindFloat,
		Default:       constant(Float(25)),
		DirtiesShader: uniformOnly,
		Getter: func(_ *Material, stored Value) Value {
			return Float(math.Clamp(stored.Float(), 0, 100))
		},
	})
	ids.metalness = float("metalness", 1, belowOne)
	ids.opacity = float("opacity", 1, uniformOnly)
	ids.bumpiness = float("bumpiness", 1, uniformOnly)
	ids.heightMapFactor = float("heightMapFactor", 1, uniformOnly)
	ids.emissiveIntensity = float("emissiveIntensity", 1, crossesOne)
	ids.reflectivity = float("reflectivity", 1, uniformOnly)
	ids.refraction = float("refraction", 0, crossesZero)
	ids.refractionIdx = float("refractionIndex", 1.0/1.5, uniformOnly)
	ids.thickness = float("thickness", 0, uniformOnly)
	ids.attenuationDistance = float("attenuationDistance", 0, uniformOnly)
	ids.clearCoat = float("clearCoat", 0, crossesZero)
	ids.clearCoatGlossiness = float("clearCoatGlossiness", 1, uniformOnly)
	ids.clearCoatBumpiness = float("clearCoatBumpiness", 1, uniformOnly)
	ids.sheenGloss = float("sheenGloss", 0, uniformOnly)
	ids.alphaTest = float("alphaTest", 0, crossesZero)
	ids.alphaFade = float("alphaFade", 1, uniformOnly)
	ids.occludeSpecularIntensity = float("occludeSpecularIntensity", 1, uniformOnly)

	flag := func(name string, def bool) PropertyID {
		return r.DefineProperty(PropertyDescriptor{Name: name, Kind: KindBool, Default: constant(Bool(def))})
	}
	ids.useMetalness = flag("useMetalness", false)
	ids.useSpecular = flag("useSpecular", true)
	ids.useLighting = flag("useLighting", true)
	ids.useFog = flag("useFog", true)
	ids.useSkybox = flag("useSkybox", true)
	ids.useGammaTonemap = flag("useGammaTonemap", true)
	ids.useDynamicRefraction = flag("useDynamicRefraction", false)
	ids.useSheen = flag("useSheen", false)
	ids.twoSidedLighting = flag("twoSidedLighting", false)
	ids.opacityFadesSpecular = flag("opacityFadesSpecular", true)
	ids.occludeSpecular = flag("occludeSpecular", true)
	ids.conserveEnergy = flag("conserveEnergy", true)
	ids.ambientTint = flag("ambientTint", false)

	enum := func(name string, def int) PropertyID {
		return r.DefineProperty(PropertyDescriptor{Name: name, Kind: KindInt, Default: constant(Int(def))})
	}
	ids.shadingModel = enum("shadingModel", int(ShadingBlinn))
	ids.fresnelModel = enum("fresnelModel", int(FresnelSchlick))
	ids.blendType = enum("blendType", int(BlendNone))
	ids.cubeMapProjection = enum("cubeMapProjection", int(CubeProjectionNone))

	env := func(name string) PropertyID {
		return r.DefineProperty(PropertyDescriptor{Name: name, Kind: KindTexture, Default: constant(Texture(nil)), DirtiesShader: textureChanged})
	}
	ids.cubeMap = env("cubeMap")
	ids.sphereMap = env("sphereMap")
	ids.envAtlas = env("envAtlas")

	return ids
}

// Typed accessors used by the uniform and options code.

func (m *Material) f(id PropertyID) float32 { return m.value(id).Float() }
func (m *Material) b(id PropertyID) bool { return m.value(id).Bool() }
func (m *Material) i(id PropertyID) int { return m.value(id).Int() }
func (m *Material) c(id PropertyID) mgl32.Vec3 { return m.value(id).Colour() }
func (m *Material) v2(id PropertyID) mgl32.Vec2 { return m.value(id).Vec2() }
func (m *Material) s(id PropertyID) string { return m.value(id).Str() }
func (m *Material) t(id PropertyID) *metadata.Texture { return m.value(id).Texture() }

func (m *Material) mapTexture(slot TextureSlot) *metadata.Texture {
	return m.t(std.maps[slot].tex)
}

// opacityMapUsed reports whether the opacity map is sampled at all: only
// blended or alpha tested materials read it.
func (m *Material) opacityMapUsed() bool {
	if m.mapTexture(SlotOpacity) == nil {
		return false
	}
	return BlendType(m.i(std.blendType)) != BlendNone || m.f(std.alphaTest) > 0
}
