package material

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type PropertyKind int

const (
	KindBool PropertyKind = iota
	KindInt
	KindFloat
	KindVec2
	KindColour
	KindString
	KindTexture
)

func (k PropertyKind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindVec2:
		return "vec2"
	case KindColour:
		return "colour"
	case KindString:
		return "string"
	case KindTexture:
		return "texture"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value holds one property value. It is a comparable value type: aggregates
// are stored inline, so assigning a Value copies it and == compares content.
// Textures are compared by handle identity.
type Value struct {
	kind PropertyKind
	b    bool
	i    int
	f    float32
	v2   mgl32.Vec2
	v3   mgl32.Vec3
	s    string
	tex  *metadata.Texture
}

func Bool(b bool) Value { return Value{kind: KindBool, b: b} }
func Int(i int) Value { return Value{kind: KindInt, i: i} }
func Float(f float32) Value { return Value{kind: KindFloat, f: f} }
func Vec2(v mgl32.Vec2) Value { return Value{kind: KindVec2, v2: v} }
func Colour(c mgl32.Vec3) Value { return Value{kind: KindColour, v3: c} }
func Str(s string) Value { return Value{kind: KindString, s: s} }
func Texture(t *metadata.Texture) Value { return Value{kind: KindTexture, tex: t} }

func (v Value) Kind() PropertyKind { return v.kind }
func (v Value) Bool() bool { return v.b }
func (v Value) Int() int { return v.i }
func (v Value) Float() float32 { return v.f }
func (v Value) Vec2() mgl32.Vec2 { return v.v2 }
func (v Value) Colour() mgl32.Vec3 { return v.v3 }
func (v Value) Str() string { return v.s }
func (v Value) Texture() *metadata.Texture { return v.tex }

func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return fmt.Sprintf("bool(%t)", v.b)
	case KindInt:
		return fmt.Sprintf("int(%d)", v.i)
	case KindFloat:
		return fmt.Sprintf("float(%g)", v.f)
	case KindVec2:
		return fmt.Sprintf("vec2(%g, %g)", v.v2[0], v.v2[1])
	case KindColour:
		return fmt.Sprintf("colour(%g, %g, %g)", v.v3[0], v.v3[1], v.v3[2])
	case KindString:
		return fmt.Sprintf("string(%q)", v.s)
	case KindTexture:
		if v.tex == nil {
			return "texture(nil)"
		}
		return fmt.Sprintf("texture(%s)", v.tex.Name)
	default:
		return "invalid"
	}
}
