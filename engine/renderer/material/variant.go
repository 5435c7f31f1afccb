package material

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// ProgramLibrary returns the program of a family for an options value,
// generating and caching it on a miss.
type ProgramLibrary interface {
	GetProgram(family string, options interface{}, processing metadata.ShaderProcessingOptions) (*metadata.Program, error)
}

// ProgramGenerator produces a program for one options value of its family.
type ProgramGenerator interface {
	Generate(options interface{}, processing metadata.ShaderProcessingOptions) (*metadata.Program, error)
}

/**
 * @brief Resolves the shader program for this material in the given context.
 * The options hook, if any, runs after every automatic derivation. The
 * dirty shader flag is cleared only when a program was obtained.
 */
func (m *Material) GetShaderVariant(
	library ProgramLibrary,
	scene *metadata.Scene,
	objDefs ShaderDef,
	staticLights []*metadata.Light,
	pass metadata.ShaderPass,
	sortedLights SortedLights,
	viewUniformFormat *metadata.UniformBufferFormat,
	viewBindGroupFormat *metadata.BindGroupFormat,
) (*metadata.Program, error) {
	if m.kind.BuildOptions == nil {
		err := fmt.Errorf("material '%s' of kind '%s' cannot build shader options", m.Name, m.kind.Name)
		core.LogError(err.Error())
		return nil, err
	}
	ctx := &OptionsContext{
		Scene:        scene,
		ObjDefs:      objDefs,
		StaticLights: staticLights,
		Pass:         pass,
		SortedLights: sortedLights,
	}
	options := m.kind.BuildOptions(m, ctx)
	if m.OnUpdateShader != nil {
		options = m.OnUpdateShader(options)
	}

	processing := metadata.ShaderProcessingOptions{
		ViewUniformFormat:   viewUniformFormat,
		ViewBindGroupFormat: viewBindGroupFormat,
	}
	program, err := library.GetProgram(m.Family, options, processing)
	if err != nil {
		err = fmt.Errorf("material '%s' (%s pass): %w", m.Name, pass, err)
		core.LogError(err.Error())
		return nil, err
	}
	m.dirtyShader = false
	return program, nil
}
