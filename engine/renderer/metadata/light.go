package metadata

import (
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

type LightType int

const (
	LightTypeDirectional LightType = iota
	LightTypeOmni
	LightTypeSpot
	// Number of light types, used to size per-type tables.
	LightTypeCount
)

func (t LightType) String() string {
	switch t {
	case LightTypeDirectional:
		return "directional"
	case LightTypeOmni:
		return "omni"
	case LightTypeSpot:
		return "spot"
	default:
		return "unknown"
	}
}

type ShadowType int

const (
	ShadowTypePCF3 ShadowType = iota
	ShadowTypePCF5
	ShadowTypeVSM16
	ShadowTypeVSM32
)

type LightFalloff int

const (
	LightFalloffLinear LightFalloff = iota
	LightFalloffInverseSquared
)

type LightShape int

const (
	LightShapePunctual LightShape = iota
	LightShapeRect
	LightShapeDisk
	LightShapeSphere
)

/**
 * @brief A light in the scene. Lights are compared by identity, so a
 * *Light is the key for every membership test.
 */
type Light struct {
	ID          uint32
	Name        string
	Type        LightType
	Enabled     bool
	CastShadows bool
	ShadowType  ShadowType
	Falloff     LightFalloff
	Shape       LightShape
	/** @brief Bit mask matched against a mesh's mask. */
	Mask              uint32
	AffectSpecularity bool
	HasCookie         bool
	Colour            mgl32.Vec3
	Intensity         float32
}

func NewLight(name string, lightType LightType) *Light {
	return &Light{
		ID:                InvalidID,
		Name:              name,
		Type:              lightType,
		Enabled:           true,
		Mask:              1,
		AffectSpecularity: true,
		Colour:            mgl32.Vec3{1, 1, 1},
		Intensity:         1,
	}
}

// ShaderKey encodes the light properties that change generated shader code.
// With shadows false the light is encoded as non shadow casting.
func (l *Light) ShaderKey(shadows bool) string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(int(l.Type)))
	sb.WriteByte(':')
	if shadows && l.CastShadows {
		sb.WriteString(strconv.Itoa(int(l.ShadowType)))
	} else {
		sb.WriteByte('-')
	}
	sb.WriteByte(':')
	sb.WriteString(strconv.Itoa(int(l.Falloff)))
	sb.WriteByte(':')
	sb.WriteString(strconv.Itoa(int(l.Shape)))
	sb.WriteByte(':')
	sb.WriteString(strconv.FormatUint(uint64(l.Mask), 16))
	sb.WriteByte(':')
	sb.WriteString(strconv.FormatBool(l.AffectSpecularity))
	sb.WriteByte(':')
	sb.WriteString(strconv.FormatBool(l.HasCookie))
	return sb.String()
}

// LightsShaderKey encodes an ordered light list, skipping disabled lights.
func LightsShaderKey(lights []*Light, shadows bool) string {
	if len(lights) == 0 {
		return ""
	}
	keys := make([]string, 0, len(lights))
	for _, l := range lights {
		if l == nil || !l.Enabled {
			continue
		}
		keys = append(keys, l.ShaderKey(shadows))
	}
	return strings.Join(keys, "|")
}

/**
 * @brief The local (omni and spot) lights evaluated at runtime by clustered
 * lighting. One instance is shared by every render action whose layer
 * carries the same local light set.
 */
type LightClusters struct {
	ID     uint32
	Lights []*Light
}

func (c *LightClusters) IsEmpty() bool {
	return len(c.Lights) == 0
}
