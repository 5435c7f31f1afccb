package metadata

/** @brief The name of the default material. */
const DefaultMaterialName string = "default"

/** @brief The program family used when a material file does not name one. */
const DefaultProgramFamily string = "standard"

type MaterialReference struct {
	ReferenceCount uint64
	Handle         uint32
	AutoRelease    bool
}

/**
 * @brief Texture slot configuration of a material file.
 */
type MaterialMapConfig struct {
	/** @brief Name of the texture, resolved through the texture system. */
	Texture string `toml:"texture"`
	/** @brief Channel swizzle such as "r", "g" or "rgb". Empty keeps the slot default. */
	Channel string `toml:"channel"`
	/** @brief UV set index. */
	UV uint32 `toml:"uv"`
	/** @brief Tiling, two values. Empty means (1, 1). */
	Tiling []float32 `toml:"tiling"`
	/** @brief Offset, two values. Empty means (0, 0). */
	Offset []float32 `toml:"offset"`
	/** @brief Rotation in degrees. */
	Rotation float32 `toml:"rotation"`
	/** @brief Multiply by the vertex colour. */
	VertexColor bool `toml:"vertex_color"`
}

/**
 * @brief Material configuration typically loaded from
 * a file or created in code to load a material from.
 */
type MaterialConfig struct {
	/** @brief The name of the material. */
	Name string `toml:"name"`
	/** @brief The program family used to generate shaders. */
	Shader string `toml:"shader"`
	/** @brief Indicates if the material should be automatically released when no references to it remain. */
	AutoRelease bool `toml:"auto_release"`
	/** @brief "phong" or "blinn". */
	ShadingModel string `toml:"shading_model"`
	/** @brief "none" or "schlick". */
	FresnelModel string `toml:"fresnel_model"`
	/** @brief "none", "normal", "additive", "premultiplied". */
	BlendType string `toml:"blend_type"`
	/** @brief Colour properties by name, three values each. */
	Colours map[string][]float32 `toml:"colours"`
	/** @brief Scalar properties by name. */
	Floats map[string]float32 `toml:"floats"`
	/** @brief Boolean properties by name. */
	Flags map[string]bool `toml:"flags"`
	/** @brief Texture slots by slot name, e.g. "diffuse". */
	Maps map[string]MaterialMapConfig `toml:"maps"`
	/** @brief Environment textures: "cube_map", "sphere_map", "env_atlas". */
	Environment map[string]string `toml:"environment"`
	/** @brief Chunk overrides, chunk name to chunk asset name. */
	Chunks map[string]string `toml:"chunks"`
}
