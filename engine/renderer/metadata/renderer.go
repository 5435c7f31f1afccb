package metadata

import "fmt"

/**
 * @brief A surface that can be rendered to. A nil *RenderTarget stands for
 * the back buffer.
 */
type RenderTarget struct {
	ID     uint32
	Name   string
	Width  uint32
	Height uint32
	/** @brief Number of samples per pixel, 1 when not multisampled. */
	SampleCount uint32
	/** @brief Optional colour attachment. */
	ColourBuffer *Texture
	Depth        bool
	Stencil      bool
	/** @brief The renderer API internal framebuffer object. */
	InternalFramebuffer interface{}
}

// Validate checks the target on its own. Cross checks against layers are
// done by the composition.
func (rt *RenderTarget) Validate() error {
	if rt.SampleCount < 1 {
		return fmt.Errorf("render target '%s' has sample count %d, must be >= 1", rt.Name, rt.SampleCount)
	}
	if rt.Width == 0 || rt.Height == 0 {
		return fmt.Errorf("render target '%s' has invalid size %dx%d", rt.Name, rt.Width, rt.Height)
	}
	return nil
}

/**
 * @brief The kind of pass a shader variant is generated for.
 */
type ShaderPass int

const (
	ShaderPassForward ShaderPass = iota
	ShaderPassDepth
	ShaderPassShadow
	ShaderPassPick
)

func (p ShaderPass) String() string {
	switch p {
	case ShaderPassForward:
		return "forward"
	case ShaderPassDepth:
		return "depth"
	case ShaderPassShadow:
		return "shadow"
	case ShaderPassPick:
		return "pick"
	default:
		return fmt.Sprintf("pass(%d)", int(p))
	}
}

// IsMinimal reports whether the pass only needs geometry, alpha and
// displacement options.
func (p ShaderPass) IsMinimal() bool {
	return p == ShaderPassDepth || p == ShaderPassShadow || p == ShaderPassPick
}
