package engine

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type RenderTargetConfig struct {
	Name    string `toml:"name"`
	Width   uint32 `toml:"width"`
	Height  uint32 `toml:"height"`
	Samples uint32 `toml:"samples"`
	Depth   bool   `toml:"depth"`
	Stencil bool   `toml:"stencil"`
}

type LightConfig struct {
	Name string `toml:"name"`
	/** @brief "directional", "omni" or "spot". */
	Type        string    `toml:"type"`
	CastShadows bool      `toml:"cast_shadows"`
	Colour      []float32 `toml:"colour"`
	Intensity   float32   `toml:"intensity"`
	Mask        uint32    `toml:"mask"`
}

type LayerConfig struct {
	Name string `toml:"name"`
	/** @brief Disabled layers stay in the composition but produce no actions. */
	Disabled bool `toml:"disabled"`
	/** @brief Also push a transparent sub-layer after the opaque one. */
	Transparent        bool      `toml:"transparent"`
	RenderTarget       string    `toml:"render_target"`
	ClearColourBuffer  bool      `toml:"clear_colour_buffer"`
	ClearDepthBuffer   bool      `toml:"clear_depth_buffer"`
	ClearStencilBuffer bool      `toml:"clear_stencil_buffer"`
	ClearColour        []float32 `toml:"clear_colour"`
	Lights             []string  `toml:"lights"`
}

type CameraConfig struct {
	Name     string   `toml:"name"`
	Disabled bool     `toml:"disabled"`
	Priority int      `toml:"priority"`
	Layers   []string `toml:"layers"`
	/** @brief Private render target name, empty for the back buffer. */
	RenderTarget string    `toml:"render_target"`
	ClearColour  []float32 `toml:"clear_colour"`
	/** @brief Clear flags default to true when omitted. */
	ClearColourBuffer  *bool `toml:"clear_colour_buffer"`
	ClearDepthBuffer   *bool `toml:"clear_depth_buffer"`
	ClearStencilBuffer *bool `toml:"clear_stencil_buffer"`
	PostEffects        bool  `toml:"post_effects"`
	/** @brief Layer name from which post effects no longer apply. */
	DisablePostEffectsLayer string    `toml:"disable_post_effects_layer"`
	Position                []float32 `toml:"position"`
}

type SceneConfig struct {
	/** @brief "none", "2.2" or "srgb". */
	Gamma string `toml:"gamma"`
	/** @brief "linear", "filmic", "hejl", "aces", "aces2", "neutral" or "none". */
	ToneMapping string  `toml:"tone_mapping"`
	Exposure    float32 `toml:"exposure"`
	/** @brief "none", "linear", "exp" or "exp2". */
	Fog             string    `toml:"fog"`
	FogColour       []float32 `toml:"fog_colour"`
	FogStart        float32   `toml:"fog_start"`
	FogEnd          float32   `toml:"fog_end"`
	FogDensity      float32   `toml:"fog_density"`
	AmbientLight    []float32 `toml:"ambient_light"`
	Skybox          string    `toml:"skybox"`
	EnvAtlas        string    `toml:"env_atlas"`
	SkyboxIntensity float32   `toml:"skybox_intensity"`
	Shadows         bool      `toml:"shadows"`
	Cookies         bool      `toml:"cookies"`
}

/**
 * @brief Engine configuration, decoded from a TOML file. Every table is
 * optional; omitted values keep the defaults of DefaultConfig.
 */
type EngineConfig struct {
	Name             string `toml:"name"`
	LogLevel         string `toml:"log_level"`
	AssetsDir        string `toml:"assets_dir"`
	WatchAssets      bool   `toml:"watch_assets"`
	MaxProgramCount  uint32 `toml:"max_program_count"`
	MaxMaterialCount uint32 `toml:"max_material_count"`
	MaxTextureCount  uint32 `toml:"max_texture_count"`
	MaxCameraCount   uint16 `toml:"max_camera_count"`
	/** @brief Local lights are read from light clusters instead of compiled in. */
	ClusteredLighting bool `toml:"clustered_lighting"`
	ActionPoolSize    int  `toml:"action_pool_size"`

	Scene         SceneConfig              `toml:"scene"`
	RenderTargets []RenderTargetConfig     `toml:"render_targets"`
	Textures      []metadata.TextureConfig `toml:"textures"`
	Lights        []LightConfig            `toml:"lights"`
	Layers        []LayerConfig            `toml:"layers"`
	Cameras       []CameraConfig           `toml:"cameras"`
}

// DefaultConfig is a single world layer rendered by a single camera.
func DefaultConfig() *EngineConfig {
	return &EngineConfig{
		Name:             "Prism",
		LogLevel:         "info",
		AssetsDir:        "assets",
		MaxProgramCount:  1024,
		MaxMaterialCount: 256,
		MaxTextureCount:  512,
		MaxCameraCount:   16,
		ActionPoolSize:   32,
		Scene: SceneConfig{
			Gamma:           "2.2",
			ToneMapping:     "linear",
			Exposure:        1,
			Fog:             "none",
			FogEnd:          1000,
			SkyboxIntensity: 1,
			Shadows:         true,
		},
		Layers: []LayerConfig{
			{Name: "world", Transparent: true},
		},
		Cameras: []CameraConfig{
			{Name: "main", Layers: []string{"world"}},
		},
	}
}

/**
 * @brief Loads the configuration at path on top of DefaultConfig. Unknown
 * keys are rejected so typos do not go unnoticed.
 */
func LoadConfig(path string) (*EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("failed to read config '%s': %w", path, err)
		core.LogError(err.Error())
		return nil, err
	}
	config, err := ParseConfig(data)
	if err != nil {
		err = fmt.Errorf("config '%s': %w", path, err)
		core.LogError(err.Error())
		return nil, err
	}
	return config, nil
}

func ParseConfig(data []byte) (*EngineConfig, error) {
	config := DefaultConfig()
	// tables given in the file replace the default ones
	config.Layers = nil
	config.Cameras = nil

	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(config); err != nil {
		return nil, err
	}
	if len(config.Layers) == 0 && len(config.Cameras) == 0 {
		defaults := DefaultConfig()
		config.Layers = defaults.Layers
		config.Cameras = defaults.Cameras
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks names and cross references. Render target sizes and
// sample counts are checked again by the composition.
func (c *EngineConfig) Validate() error {
	if c.MaxProgramCount == 0 || c.MaxMaterialCount == 0 || c.MaxTextureCount == 0 || c.MaxCameraCount == 0 {
		return fmt.Errorf("max_program_count, max_material_count, max_texture_count and max_camera_count must be > 0")
	}
	if _, err := parseGamma(c.Scene.Gamma); err != nil {
		return err
	}
	if _, err := parseToneMapping(c.Scene.ToneMapping); err != nil {
		return err
	}
	if _, err := parseFog(c.Scene.Fog); err != nil {
		return err
	}
	for _, col := range [][]float32{c.Scene.FogColour, c.Scene.AmbientLight} {
		if _, err := parseColour(col); err != nil {
			return fmt.Errorf("scene: %w", err)
		}
	}

	targets := make(map[string]struct{}, len(c.RenderTargets))
	for _, rt := range c.RenderTargets {
		if err := uniqueName("render target", rt.Name, targets); err != nil {
			return err
		}
	}
	textures := make(map[string]struct{}, len(c.Textures))
	for _, t := range c.Textures {
		if err := uniqueName("texture", t.Name, textures); err != nil {
			return err
		}
	}
	for _, name := range []string{c.Scene.Skybox, c.Scene.EnvAtlas} {
		if _, ok := textures[name]; name != "" && !ok {
			return fmt.Errorf("scene references unknown texture '%s'", name)
		}
	}

	lights := make(map[string]struct{}, len(c.Lights))
	for _, l := range c.Lights {
		if err := uniqueName("light", l.Name, lights); err != nil {
			return err
		}
		if _, err := parseLightType(l.Type); err != nil {
			return fmt.Errorf("light '%s': %w", l.Name, err)
		}
		if _, err := parseColour(l.Colour); err != nil {
			return fmt.Errorf("light '%s': %w", l.Name, err)
		}
	}

	layers := make(map[string]struct{}, len(c.Layers))
	for _, l := range c.Layers {
		if err := uniqueName("layer", l.Name, layers); err != nil {
			return err
		}
		if _, ok := targets[l.RenderTarget]; l.RenderTarget != "" && !ok {
			return fmt.Errorf("layer '%s' references unknown render target '%s'", l.Name, l.RenderTarget)
		}
		if _, err := parseColour4(l.ClearColour); err != nil {
			return fmt.Errorf("layer '%s': %w", l.Name, err)
		}
		for _, light := range l.Lights {
			if _, ok := lights[light]; !ok {
				return fmt.Errorf("layer '%s' references unknown light '%s'", l.Name, light)
			}
		}
	}

	cameras := make(map[string]struct{}, len(c.Cameras))
	for _, cam := range c.Cameras {
		if err := uniqueName("camera", cam.Name, cameras); err != nil {
			return err
		}
		if len(cam.Layers) == 0 {
			return fmt.Errorf("camera '%s' renders no layers", cam.Name)
		}
		for _, layer := range cam.Layers {
			if _, ok := layers[layer]; !ok {
				return fmt.Errorf("camera '%s' references unknown layer '%s'", cam.Name, layer)
			}
		}
		if _, ok := layers[cam.DisablePostEffectsLayer]; cam.DisablePostEffectsLayer != "" && !ok {
			return fmt.Errorf("camera '%s' disables post effects at unknown layer '%s'", cam.Name, cam.DisablePostEffectsLayer)
		}
		if _, ok := targets[cam.RenderTarget]; cam.RenderTarget != "" && !ok {
			return fmt.Errorf("camera '%s' references unknown render target '%s'", cam.Name, cam.RenderTarget)
		}
		if _, err := parseColour4(cam.ClearColour); err != nil {
			return fmt.Errorf("camera '%s': %w", cam.Name, err)
		}
		if len(cam.Position) != 0 && len(cam.Position) != 3 {
			return fmt.Errorf("camera '%s': position needs 3 values, got %d", cam.Name, len(cam.Position))
		}
	}
	return nil
}

func uniqueName(kind, name string, seen map[string]struct{}) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%s without a name", kind)
	}
	if _, ok := seen[name]; ok {
		return fmt.Errorf("duplicate %s '%s'", kind, name)
	}
	seen[name] = struct{}{}
	return nil
}

// BuildScene converts the scene table. Skybox and environment textures are
// resolved by the caller.
func (c *SceneConfig) BuildScene() *metadata.Scene {
	scene := metadata.NewScene()
	scene.GammaCorrection, _ = parseGamma(c.Gamma)
	scene.ToneMapping, _ = parseToneMapping(c.ToneMapping)
	scene.Fog, _ = parseFog(c.Fog)
	scene.Exposure = c.Exposure
	scene.FogStart = c.FogStart
	scene.FogEnd = c.FogEnd
	scene.FogDensity = c.FogDensity
	if col, _ := parseColour(c.FogColour); col != nil {
		scene.FogColour = *col
	}
	if col, _ := parseColour(c.AmbientLight); col != nil {
		scene.AmbientLight = *col
	}
	scene.SkyboxIntensity = c.SkyboxIntensity
	scene.LightingShadowsEnabled = c.Shadows
	scene.LightingCookiesEnabled = c.Cookies
	return scene
}

func parseGamma(s string) (metadata.GammaCorrection, error) {
	switch strings.ToLower(s) {
	case "", "2.2":
		return metadata.Gamma22, nil
	case "none":
		return metadata.GammaNone, nil
	case "srgb":
		return metadata.GammaSRGB, nil
	}
	return metadata.GammaNone, fmt.Errorf("unknown gamma '%s'", s)
}

var toneMappingNames = map[string]metadata.ToneMapping{
	"":        metadata.ToneMapLinear,
	"linear":  metadata.ToneMapLinear,
	"filmic":  metadata.ToneMapFilmic,
	"hejl":    metadata.ToneMapHejl,
	"aces":    metadata.ToneMapACES,
	"aces2":   metadata.ToneMapACES2,
	"neutral": metadata.ToneMapNeutral,
	"none":    metadata.ToneMapNone,
}

func parseToneMapping(s string) (metadata.ToneMapping, error) {
	t, ok := toneMappingNames[strings.ToLower(s)]
	if !ok {
		return metadata.ToneMapLinear, fmt.Errorf("unknown tone mapping '%s'", s)
	}
	return t, nil
}

func parseFog(s string) (metadata.FogType, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return metadata.FogNone, nil
	case "linear":
		return metadata.FogLinear, nil
	case "exp":
		return metadata.FogExp, nil
	case "exp2":
		return metadata.FogExp2, nil
	}
	return metadata.FogNone, fmt.Errorf("unknown fog '%s'", s)
}

func parseLightType(s string) (metadata.LightType, error) {
	switch strings.ToLower(s) {
	case "directional":
		return metadata.LightTypeDirectional, nil
	case "omni", "point":
		return metadata.LightTypeOmni, nil
	case "spot":
		return metadata.LightTypeSpot, nil
	}
	return metadata.LightTypeDirectional, fmt.Errorf("unknown light type '%s'", s)
}

// parseColour returns nil for an empty slice.
func parseColour(values []float32) (*mgl32.Vec3, error) {
	if len(values) == 0 {
		return nil, nil
	}
	if len(values) != 3 {
		return nil, fmt.Errorf("colour needs 3 values, got %d", len(values))
	}
	c := mgl32.Vec3{values[0], values[1], values[2]}
	return &c, nil
}

// parseColour4 accepts rgb or rgba, alpha defaults to 1.
func parseColour4(values []float32) (*mgl32.Vec4, error) {
	switch len(values) {
	case 0:
		return nil, nil
	case 3:
		c := mgl32.Vec4{values[0], values[1], values[2], 1}
		return &c, nil
	case 4:
		c := mgl32.Vec4{values[0], values[1], values[2], values[3]}
		return &c, nil
	}
	return nil, fmt.Errorf("clear colour needs 3 or 4 values, got %d", len(values))
}
