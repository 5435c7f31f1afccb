package programs

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/material"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// StandardFamily is the program family served by StandardGenerator.
const StandardFamily = material.StandardKindName

// MaxUVSets is the number of texture coordinate sets a mesh can provide.
const MaxUVSets = 2

// DefaultViewUniformFormat is declared when the processing options carry no
// view uniform format.
var DefaultViewUniformFormat = &metadata.UniformBufferFormat{
	Uniforms: []metadata.UniformFormat{
		{Name: "matrix_viewProjection", Type: metadata.UniformTypeMat4, Count: 1},
		{Name: "view_position", Type: metadata.UniformTypeVec3, Count: 1},
	},
}

/**
 * @brief Generates programs of the standard family from material.Options.
 */
type StandardGenerator struct {
	chunks map[string]string
}

func NewStandardGenerator() *StandardGenerator {
	chunks := make(map[string]string, len(Chunks))
	for name, src := range Chunks {
		chunks[name] = src
	}
	return &StandardGenerator{chunks: chunks}
}

// Generate assembles the vertex and fragment sources of one variant. Every
// failure wraps core.ErrShaderCompilation and names the offending option.
func (g *StandardGenerator) Generate(options interface{}, processing metadata.ShaderProcessingOptions) (*metadata.Program, error) {
	o, ok := options.(material.Options)
	if !ok {
		return nil, fmt.Errorf("%w: standard programs are built from material.Options, got %T", core.ErrShaderCompilation, options)
	}
	if err := validateOptions(&o); err != nil {
		return nil, err
	}
	overrides := material.DecodeChunks(o.Shared.Chunks)
	if err := g.validateChunks(overrides); err != nil {
		return nil, err
	}
	view, err := viewDeclarations(processing)
	if err != nil {
		return nil, err
	}

	a := &assembler{chunks: g.chunks, overrides: overrides, options: &o}
	header := a.header()
	vertex := header + view + a.vertex()
	fragment := header + view + a.fragment()

	name := StandardFamily + "/" + o.Shared.Pass.String()
	return metadata.NewProgram(StandardFamily, name, vertex, fragment), nil
}

func validateOptions(o *material.Options) error {
	for slot, m := range o.Maps {
		if !m.Enabled {
			continue
		}
		s := material.TextureSlot(slot)
		if m.UV >= MaxUVSets {
			return fmt.Errorf("%w: %s=%d out of range, %d uv sets available", core.ErrShaderCompilation, s.UVName(), m.UV, MaxUVSets)
		}
		if !validChannel(m.Channel, s != material.SlotNormal && s != material.SlotClearCoatNormal) {
			return fmt.Errorf("%w: %s='%s' is not a channel swizzle", core.ErrShaderCompilation, s.ChannelName(), m.Channel)
		}
		if m.VertexColor && !validChannel(m.VertexColorChannel, true) {
			return fmt.Errorf("%w: %s='%s' is not a channel swizzle", core.ErrShaderCompilation, s.VertexColorChannelName(), m.VertexColorChannel)
		}
	}
	if o.Shared.Skin && o.Shared.Instancing {
		return fmt.Errorf("%w: skinning cannot be combined with instancing", core.ErrShaderCompilation)
	}
	if o.Lit.Sheen && o.Lit.ShadingModel == material.ShadingPhong {
		return fmt.Errorf("%w: useSheen requires blinn shading, shadingModel is phong", core.ErrShaderCompilation)
	}
	if o.Lit.Refraction && o.Shared.Pass != metadata.ShaderPassForward {
		return fmt.Errorf("%w: refraction is only supported on the forward pass, got %s", core.ErrShaderCompilation, o.Shared.Pass)
	}
	return nil
}

func validChannel(ch string, required bool) bool {
	if ch == "" {
		return !required
	}
	if len(ch) > 4 {
		return false
	}
	for _, c := range ch {
		if !strings.ContainsRune("rgba", c) {
			return false
		}
	}
	return true
}

func (g *StandardGenerator) validateChunks(overrides map[string]string) error {
	for name, src := range overrides {
		if _, ok := g.chunks[name]; !ok {
			return fmt.Errorf("%w: unknown chunk '%s'", core.ErrShaderCompilation, name)
		}
		if strings.TrimSpace(src) == "" {
			return fmt.Errorf("%w: chunk '%s' is empty", core.ErrShaderCompilation, name)
		}
		if err := checkBalanced(src); err != nil {
			return fmt.Errorf("%w: chunk '%s': %s", core.ErrShaderCompilation, name, err.Error())
		}
	}
	return nil
}

// checkBalanced verifies braces and parentheses nest, ignoring comments.
func checkBalanced(src string) error {
	var stack []rune
	line := 1
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case c == '\n':
			line++
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}
			line++
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				return fmt.Errorf("unterminated comment on line %d", line)
			}
			line += strings.Count(src[i:i+2+end], "\n")
			i += end + 3
		case c == '{' || c == '(':
			stack = append(stack, rune(c))
		case c == '}' || c == ')':
			open := '{'
			if c == ')' {
				open = '('
			}
			if len(stack) == 0 || stack[len(stack)-1] != open {
				return fmt.Errorf("unexpected '%c' on line %d", c, line)
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) > 0 {
		return fmt.Errorf("unclosed '%c'", stack[len(stack)-1])
	}
	return nil
}

func glslType(t metadata.UniformType) string {
	switch t {
	case metadata.UniformTypeVec2:
		return "vec2"
	case metadata.UniformTypeVec3:
		return "vec3"
	case metadata.UniformTypeVec4:
		return "vec4"
	case metadata.UniformTypeMat3:
		return "mat3"
	case metadata.UniformTypeMat4:
		return "mat4"
	default:
		return "float"
	}
}

// viewDeclarations declares the per view uniforms, as a block when the view
// is bound through a bind group and as loose uniforms otherwise.
func viewDeclarations(p metadata.ShaderProcessingOptions) (string, error) {
	format := p.ViewUniformFormat
	if format == nil {
		format = DefaultViewUniformFormat
	}
	found := false
	for _, u := range format.Uniforms {
		if u.Name == "matrix_viewProjection" {
			found = true
			break
		}
	}
	if !found {
		return "", fmt.Errorf("%w: view uniform format has no matrix_viewProjection", core.ErrShaderCompilation)
	}

	var sb strings.Builder
	indent := ""
	if bg := p.ViewBindGroupFormat; bg != nil {
		block := bg.Name
		for _, e := range bg.Entries {
			if e.Type == metadata.BindGroupEntryUniformBuffer {
				block = e.Name
				break
			}
		}
		sb.WriteString("layout(std140) uniform " + block + " {\n")
		indent = "    "
	}
	for _, u := range format.Uniforms {
		sb.WriteString(indent)
		if indent == "" {
			sb.WriteString("uniform ")
		}
		sb.WriteString(glslType(u.Type) + " " + u.Name)
		if u.Count > 1 {
			sb.WriteString("[" + strconv.FormatUint(uint64(u.Count), 10) + "]")
		}
		sb.WriteString(";\n")
	}
	if indent != "" {
		sb.WriteString("};\n")
	}
	return sb.String(), nil
}
