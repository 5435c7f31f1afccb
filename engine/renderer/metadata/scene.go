package metadata

import "github.com/go-gl/mathgl/mgl32"

type FogType int

const (
	FogNone FogType = iota
	FogLinear
	FogExp
	FogExp2
)

type GammaCorrection int

const (
	GammaNone GammaCorrection = iota
	Gamma22
	GammaSRGB
)

type ToneMapping int

const (
	ToneMapLinear ToneMapping = iota
	ToneMapFilmic
	ToneMapHejl
	ToneMapACES
	ToneMapACES2
	ToneMapNeutral
	ToneMapNone
)

/**
 * @brief Scene wide state read by materials when building shader options
 * and uniforms. Read only from the point of view of the rendering core.
 */
type Scene struct {
	GammaCorrection GammaCorrection
	ToneMapping     ToneMapping
	Exposure        float32

	Fog        FogType
	FogColour  mgl32.Vec3
	FogStart   float32
	FogEnd     float32
	FogDensity float32

	Skybox          *Texture
	SkyboxRotation  mgl32.Quat
	SkyboxIntensity float32
	EnvAtlas        *Texture

	AmbientLight mgl32.Vec3

	ClusteredLightingEnabled bool
	LightingCookiesEnabled   bool
	LightingShadowsEnabled   bool
}

func NewScene() *Scene {
	return &Scene{
		GammaCorrection:        Gamma22,
		ToneMapping:            ToneMapLinear,
		Exposure:               1,
		FogColour:              mgl32.Vec3{0, 0, 0},
		FogEnd:                 1000,
		FogDensity:             0,
		SkyboxRotation:         mgl32.QuatIdent(),
		SkyboxIntensity:        1,
		AmbientLight:           mgl32.Vec3{0, 0, 0},
		LightingShadowsEnabled: true,
	}
}

// HasCubeMapRotation reports whether the skybox rotation differs from identity.
func (s *Scene) HasCubeMapRotation() bool {
	return !s.SkyboxRotation.ApproxEqual(mgl32.QuatIdent())
}
