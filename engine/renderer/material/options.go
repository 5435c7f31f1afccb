package material

import "github.com/spaghettifunk/prism/engine/renderer/metadata"

// ShaderDef is a bit mask of per draw defines such as skinning or vertex colours.
type ShaderDef uint32

const (
	ShaderDefNoShadow ShaderDef = 1 << iota
	ShaderDefSkin
	ShaderDefUV0
	ShaderDefUV1
	ShaderDefVertexColor
	ShaderDefInstancing
	ShaderDefLightMap
	ShaderDefDirLightMap
	ShaderDefScreenSpace
	ShaderDefTangents
	ShaderDefMorphPosition
	ShaderDefMorphNormal
	ShaderDefMorphTextureBased
	ShaderDefLightMapAmbient
)

func (d ShaderDef) Has(flag ShaderDef) bool {
	return d&flag != 0
}

// SortedLights holds the dynamic lights of a draw grouped by light type.
type SortedLights [metadata.LightTypeCount][]*metadata.Light

type ReflectionSource int

const (
	ReflectionNone ReflectionSource = iota
	ReflectionEnvAtlas
	ReflectionCubeMap
	ReflectionSphereMap
)

type AmbientSource int

const (
	AmbientConstant AmbientSource = iota
	AmbientEnvAtlas
)

/**
 * @brief How one texture slot is sampled.
 */
type MapOptions struct {
	Enabled bool
	Channel string
	UV      uint32
	// True when the slot carries a non identity uv transform.
	Transform          bool
	VertexColor        bool
	VertexColorChannel string
	Encoding           metadata.TextureEncoding
	PackedNormal       bool
}

/**
 * @brief Options relevant to every pass, including depth, shadow and pick.
 */
type SharedOptions struct {
	Pass metadata.ShaderPass
	// Encoded chunk overrides, see DecodeChunks.
	Chunks            string
	AlphaTest         bool
	Instancing        bool
	Skin              bool
	MorphPosition     bool
	MorphNormal       bool
	MorphTextureBased bool
	ScreenSpace       bool
}

/**
 * @brief Lighting, environment and scene options, only derived for forward passes.
 */
type LitOptions struct {
	UseLighting          bool
	ShadingModel         ShadingModel
	FresnelModel         FresnelModel
	UseMetalness         bool
	UseSpecular          bool
	ConserveEnergy       bool
	TwoSidedLighting     bool
	OccludeSpecular      bool
	OpacityFadesSpecular bool
	BlendType            BlendType

	AmbientTint       bool
	DiffuseTint       bool
	SpecularTint      bool
	MetalnessTint     bool
	EmissiveTint      bool
	EmissiveIntensity bool
	SheenTint         bool

	ClearCoat         bool
	Sheen             bool
	Refraction        bool
	DynamicRefraction bool
	VertexColors      bool

	Fog     metadata.FogType
	Gamma   metadata.GammaCorrection
	ToneMap metadata.ToneMapping

	ReflectionSource   ReflectionSource
	ReflectionEncoding metadata.TextureEncoding
	CubeMapProjection  CubeProjection
	SkyboxIntensity    bool
	UseCubeMapRotation bool
	AmbientSource      AmbientSource
	AmbientEncoding    metadata.TextureEncoding

	LightMapFromMesh bool
	DirLightMap      bool
	LightMapAmbient  bool

	ClusteredLighting bool
	ClusteredShadows  bool
	ClusteredCookies  bool
	NoShadow          bool
	// Encoded list of lights compiled into the shader, see metadata.LightsShaderKey.
	Lights string
}

/**
 * @brief The shader variant key. Comparable, so it is used directly as a
 * map key; two equal values always map to the same program.
 */
type Options struct {
	Shared SharedOptions
	Lit    LitOptions
	Maps   [SlotCount]MapOptions
}

// MinimalProjection keeps only what depth, shadow and pick passes read.
func (o Options) MinimalProjection() Options {
	var p Options
	p.Shared = o.Shared
	p.Maps[SlotOpacity] = o.Maps[SlotOpacity]
	return p
}

/**
 * @brief Per draw state used to derive options.
 */
type OptionsContext struct {
	Scene        *metadata.Scene
	ObjDefs      ShaderDef
	StaticLights []*metadata.Light
	Pass         metadata.ShaderPass
	SortedLights SortedLights
}
