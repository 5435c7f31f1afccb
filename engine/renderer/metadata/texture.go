package metadata

const (
	/** @brief The default texture name. */
	DEFAULT_TEXTURE_NAME string = "default"
	/** @brief The default normal texture name. */
	DEFAULT_NORMAL_TEXTURE_NAME string = "default_NORM"
)

type TextureReference struct {
	ReferenceCount uint64
	Handle         uint32
	AutoRelease    bool
}

/**
 * @brief Represents how the texel data is encoded.
 */
type TextureType int

const (
	/** @brief Plain texel data. */
	TextureTypeDefault TextureType = iota
	/** @brief RGB with a shared multiplier in alpha. */
	TextureTypeRGBM
	/** @brief RGB with a shared exponent in alpha. */
	TextureTypeRGBE
	/** @brief RGB with a shared power in alpha. */
	TextureTypeRGBP
	/** @brief Normal map stored as GGGR. */
	TextureTypeSwizzleGGGR
)

func (t TextureType) String() string {
	switch t {
	case TextureTypeRGBM:
		return "rgbm"
	case TextureTypeRGBE:
		return "rgbe"
	case TextureTypeRGBP:
		return "rgbp"
	case TextureTypeSwizzleGGGR:
		return "swizzleGGGR"
	default:
		return "default"
	}
}

type TextureFormat int

const (
	TextureFormatRGBA8 TextureFormat = iota
	TextureFormatSRGBA8
	TextureFormatRGB8
	TextureFormatSRGB8
	TextureFormatRGBA16F
	TextureFormatRGBA32F
	TextureFormatR32F
	TextureFormatDepth
)

// IsHDR reports whether the format stores floating point texels.
func (f TextureFormat) IsHDR() bool {
	return f == TextureFormatRGBA16F || f == TextureFormatRGBA32F || f == TextureFormatR32F
}

// IsSRGB reports whether the format applies hardware sRGB decoding.
func (f TextureFormat) IsSRGB() bool {
	return f == TextureFormatSRGBA8 || f == TextureFormatSRGB8
}

/**
 * @brief The colour encoding of a texture as seen by a shader.
 */
type TextureEncoding int

const (
	TextureEncodingLinear TextureEncoding = iota
	TextureEncodingSRGB
	TextureEncodingRGBM
	TextureEncodingRGBE
	TextureEncodingRGBP
)

func (e TextureEncoding) String() string {
	switch e {
	case TextureEncodingSRGB:
		return "srgb"
	case TextureEncodingRGBM:
		return "rgbm"
	case TextureEncodingRGBE:
		return "rgbe"
	case TextureEncodingRGBP:
		return "rgbp"
	default:
		return "linear"
	}
}

/**
 * @brief Represents a texture. The core never touches pixel data, only the
 * properties that change generated shader code.
 */
type Texture struct {
	/** @brief The unique texture identifier. */
	ID uint32
	/** @brief The texture Name. */
	Name string
	/** @brief The texel encoding type. */
	Type TextureType
	/** @brief The storage format. */
	Format TextureFormat
	/** @brief True for cube textures. */
	Cubemap bool
	/** @brief Enables seam fixing when sampling cube mip levels. */
	FixCubemapSeams bool
	Width           uint32
	Height          uint32
	/** @brief The texture Generation. Incremented every time the data is reloaded. */
	Generation uint32
	/** @brief Backend specific data. */
	InternalData interface{}
}

// Encoding derives the shader side decoding from type and format.
func (t *Texture) Encoding() TextureEncoding {
	switch t.Type {
	case TextureTypeRGBM:
		return TextureEncodingRGBM
	case TextureTypeRGBE:
		return TextureEncodingRGBE
	case TextureTypeRGBP:
		return TextureEncodingRGBP
	}
	if t.Format.IsSRGB() {
		return TextureEncodingSRGB
	}
	return TextureEncodingLinear
}

// ShaderEquivalent reports whether swapping a for b leaves generated shader
// code unchanged. A nil texture is only equivalent to another nil texture.
func ShaderEquivalent(a, b *Texture) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Type == b.Type &&
		a.Format == b.Format &&
		a.Cubemap == b.Cubemap &&
		a.FixCubemapSeams == b.FixCubemapSeams
}

/**
 * @brief Describes a texture handle in the engine configuration.
 */
type TextureConfig struct {
	Name            string `toml:"name"`
	Type            string `toml:"type"`
	Format          string `toml:"format"`
	Cubemap         bool   `toml:"cubemap"`
	FixCubemapSeams bool   `toml:"fix_cubemap_seams"`
	Width           uint32 `toml:"width"`
	Height          uint32 `toml:"height"`
}

var textureTypeNames = map[string]TextureType{
	"":            TextureTypeDefault,
	"default":     TextureTypeDefault,
	"rgbm":        TextureTypeRGBM,
	"rgbe":        TextureTypeRGBE,
	"rgbp":        TextureTypeRGBP,
	"swizzleGGGR": TextureTypeSwizzleGGGR,
}

var textureFormatNames = map[string]TextureFormat{
	"":        TextureFormatRGBA8,
	"rgba8":   TextureFormatRGBA8,
	"srgba8":  TextureFormatSRGBA8,
	"rgb8":    TextureFormatRGB8,
	"srgb8":   TextureFormatSRGB8,
	"rgba16f": TextureFormatRGBA16F,
	"rgba32f": TextureFormatRGBA32F,
	"r32f":    TextureFormatR32F,
	"depth":   TextureFormatDepth,
}

// ParseTextureType resolves a type name; the empty string is the default type.
func ParseTextureType(name string) (TextureType, bool) {
	t, ok := textureTypeNames[name]
	return t, ok
}

// ParseTextureFormat resolves a format name; the empty string is rgba8.
func ParseTextureFormat(name string) (TextureFormat, bool) {
	f, ok := textureFormatNames[name]
	return f, ok
}
