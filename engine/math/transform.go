package math

import (
	stdmath "math"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	// IdentityTiling is the tiling of an untransformed texture map.
	IdentityTiling = mgl32.Vec2{1, 1}
	// IdentityOffset is the offset of an untransformed texture map.
	IdentityOffset = mgl32.Vec2{0, 0}
)

// IsIdentityTransform reports whether tiling, offset and rotation leave the
// texture coordinates untouched. Comparison is exact.
func IsIdentityTransform(tiling, offset mgl32.Vec2, rotation float32) bool {
	return tiling == IdentityTiling && offset == IdentityOffset && rotation == 0
}

// TextureTransform builds the 2x3 uv transform for a texture map and returns
// its two rows. Rotation is in degrees. The V axis is flipped so that tiling
// pivots around the top left corner of the image.
func TextureTransform(tiling, offset mgl32.Vec2, rotation float32) (mgl32.Vec3, mgl32.Vec3) {
	rs := mgl32.HomogRotate2D(mgl32.DegToRad(rotation)).Mul3(mgl32.Scale2D(tiling.X(), tiling.Y()))
	m := mgl32.Translate2D(offset.X(), 1-tiling.Y()-offset.Y()).Mul3(rs)
	return m.Row(0), m.Row(1)
}

// GammaToLinear converts a gamma space colour into linear space using the 2.2 approximation.
func GammaToLinear(c mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		float32(stdmath.Pow(float64(c.X()), 2.2)),
		float32(stdmath.Pow(float64(c.Y()), 2.2)),
		float32(stdmath.Pow(float64(c.Z()), 2.2)),
	}
}
