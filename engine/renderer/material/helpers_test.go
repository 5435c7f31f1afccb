package material

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type libraryKey struct {
	family     string
	options    interface{}
	processing string
}

// fakeLibrary caches programs by key and counts generations.
type fakeLibrary struct {
	programs    map[libraryKey]*metadata.Program
	generated   int
	lastOptions Options
	fail        bool
}

func newFakeLibrary() *fakeLibrary {
	return &fakeLibrary{programs: make(map[libraryKey]*metadata.Program)}
}

func (l *fakeLibrary) GetProgram(family string, options interface{}, processing metadata.ShaderProcessingOptions) (*metadata.Program, error) {
	l.lastOptions = options.(Options)
	if l.fail {
		return nil, fmt.Errorf("%w: diffuseMapUv out of range", core.ErrShaderCompilation)
	}
	key := libraryKey{family, options, processing.Key()}
	if p, ok := l.programs[key]; ok {
		return p, nil
	}
	l.generated++
	p := metadata.NewProgram(family, fmt.Sprintf("%s-%d", family, l.generated), "", "")
	l.programs[key] = p
	return p, nil
}

func fetch(m *Material, lib ProgramLibrary, scene *metadata.Scene, pass metadata.ShaderPass) (*metadata.Program, error) {
	return m.GetShaderVariant(lib, scene, ShaderDefUV0, nil, pass, SortedLights{}, nil, nil)
}
