package components

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

/** @brief The name of the default camera. */
const DEFAULT_CAMERA_NAME string = "default"

/**
 * @brief Represents a camera that can be used for
 * a variety of things, especially rendering. Ideally,
 * these are created and managed by the camera system.
 */
type Camera struct {
	ID      uint32
	Name    string
	Enabled bool
	/** @brief Cameras render in ascending priority. */
	Priority int
	/** @brief Layer ids rendered by this camera, in no particular order. */
	Layers []uint32
	/** @brief Private render target. nil renders to the back buffer. */
	RenderTarget *metadata.RenderTarget

	ClearColour        mgl32.Vec4
	ClearColourBuffer  bool
	ClearDepthBuffer   bool
	ClearStencilBuffer bool

	PostEffectsEnabled bool
	/**
	 * @brief Layer id from which post effects no longer apply. Layers from
	 * this one on render after post processing. InvalidID disables it.
	 */
	DisablePostEffectsLayer uint32

	/**
	 * @brief The position of this camera.
	 * NOTE: Do not set this directly, use SetPosition() instead
	 * so the view matrix is recalculated when needed.
	 */
	Position mgl32.Vec3
	/** @brief The rotation of this camera using Euler angles (pitch, yaw, roll). */
	EulerRotation mgl32.Vec3
	/** @brief Internal flag used to determine when the view matrix needs to be rebuilt. */
	IsDirty    bool
	ViewMatrix mgl32.Mat4
}

type CameraLookup struct {
	ID             uint16
	ReferenceCount uint16
	Camera         *Camera
}

func NewCamera(name string) *Camera {
	camera := &Camera{Name: name}
	camera.Reset()
	return camera
}

func (c *Camera) Reset() {
	c.Enabled = true
	c.Priority = 0
	c.Layers = c.Layers[:0]
	c.RenderTarget = nil
	c.ClearColour = mgl32.Vec4{0.75, 0.75, 0.75, 1}
	c.ClearColourBuffer = true
	c.ClearDepthBuffer = true
	c.ClearStencilBuffer = true
	c.PostEffectsEnabled = false
	c.DisablePostEffectsLayer = metadata.InvalidID
	c.EulerRotation = mgl32.Vec3{}
	c.Position = mgl32.Vec3{}
	c.IsDirty = false
	c.ViewMatrix = mgl32.Ident4()
}

// RendersLayer reports whether the camera lists the layer id.
func (c *Camera) RendersLayer(layerID uint32) bool {
	for _, id := range c.Layers {
		if id == layerID {
			return true
		}
	}
	return false
}

func (c *Camera) SetPosition(position mgl32.Vec3) {
	c.Position = position
	c.IsDirty = true
}

func (c *Camera) SetEulerRotation(rotation mgl32.Vec3) {
	c.EulerRotation = rotation
	c.IsDirty = true
}

func (c *Camera) GetView() mgl32.Mat4 {
	if c.IsDirty {
		rotation := mgl32.AnglesToQuat(c.EulerRotation.X(), c.EulerRotation.Y(), c.EulerRotation.Z(), mgl32.XYZ).Mat4()
		translation := mgl32.Translate3D(c.Position.X(), c.Position.Y(), c.Position.Z())

		c.ViewMatrix = translation.Mul4(rotation).Inv()
		c.IsDirty = false
	}
	return c.ViewMatrix
}
