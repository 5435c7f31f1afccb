package material

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

/**
 * @brief A material kind binds a property table to the code that derives
 * uniforms and shader options from it.
 */
type Kind struct {
	Name string
	/** @brief Program family used by materials of this kind unless overridden. */
	Family   string
	Registry *Registry
	// Emits parameters through the tracked setters. Parameter cleanup is done by the caller.
	UpdateUniforms func(m *Material, scene *metadata.Scene)
	BuildOptions   func(m *Material, ctx *OptionsContext) Options
}

/** @brief A value bound to a shader parameter. */
type Parameter struct {
	Name string
	/** @brief float32, []float32 or *metadata.Texture. */
	Data interface{}
}

/**
 * @brief A material, which represents various properties
 * of a surface in the world such as texture, colour,
 * bumpiness, shininess and more.
 */
type Material struct {
	/** @brief The material id. */
	ID uint32
	/** @brief The material generation. Incremented every time the material is reconfigured. */
	Generation uint32
	/** @brief The material name. */
	Name string
	/** @brief Program family used to generate this material's shaders. */
	Family string
	/** @brief Called with the fully derived options; the returned value is used instead. */
	OnUpdateShader func(options Options) Options

	kind   *Kind
	values []Value

	parameters map[string]*Parameter
	// Names emitted by the last finished update pass.
	activeParams map[string]struct{}
	// Names emitted by the pass in progress.
	scratchParams map[string]struct{}
	// Backing storage for vector uniforms, reused across updates.
	uniformCache map[string][]float32

	chunks    map[string]string
	chunksKey string

	dirtyShader bool
}

func NewMaterial(name string, kind *Kind) *Material {
	return &Material{
		ID:            metadata.InvalidID,
		Name:          name,
		Family:        kind.Family,
		kind:          kind,
		values:        kind.Registry.Defaults(),
		parameters:    make(map[string]*Parameter),
		activeParams:  make(map[string]struct{}),
		scratchParams: make(map[string]struct{}),
		uniformCache:  make(map[string][]float32),
		chunks:        make(map[string]string),
		// No variant has been fetched yet.
		dirtyShader: true,
	}
}

func (m *Material) Kind() *Kind {
	return m.kind
}

// DirtyShader reports whether a property change may have invalidated the
// last fetched shader variant.
func (m *Material) DirtyShader() bool {
	return m.dirtyShader
}

// MarkShaderDirty forces the next variant fetch to be treated as stale, for
// example after a bound texture was reloaded with a different format.
func (m *Material) MarkShaderDirty() {
	m.dirtyShader = true
}

func (m *Material) lookup(name string, kind PropertyKind) (*PropertyDescriptor, error) {
	d, ok := m.kind.Registry.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", core.ErrUnknownProperty, m.kind.Name, name)
	}
	if d.Kind != kind {
		return nil, fmt.Errorf("%w: %s.%s is %s, got %s", core.ErrPropertyKind, m.kind.Name, name, d.Kind, kind)
	}
	return d, nil
}

// Get returns a snapshot of the named property. Mutating the result never
// affects the material.
func (m *Material) Get(name string) (Value, error) {
	d, ok := m.kind.Registry.Lookup(name)
	if !ok {
		return Value{}, fmt.Errorf("%w: %s.%s", core.ErrUnknownProperty, m.kind.Name, name)
	}
	return m.value(d.id), nil
}

// Set stores a value, marking the shader dirty when the value differs and
// the property's predicate says the change affects generated code.
func (m *Material) Set(name string, v Value) error {
	d, err := m.lookup(name, v.Kind())
	if err != nil {
		core.LogError(err.Error())
		return err
	}
	m.setValue(d.id, v)
	return nil
}

func (m *Material) value(id PropertyID) Value {
	d := m.kind.Registry.Descriptor(id)
	if d.Getter != nil {
		return d.Getter(m, m.values[id])
	}
	return m.values[id]
}

func (m *Material) setValue(id PropertyID, v Value) {
	old := m.values[id]
	if old == v {
		return
	}
	if m.kind.Registry.Descriptor(id).dirties(old, v) {
		m.dirtyShader = true
	}
	m.values[id] = v
}

func (m *Material) SetBool(name string, b bool) error { return m.Set(name, Bool(b)) }
func (m *Material) SetInt(name string, i int) error { return m.Set(name, Int(i)) }
func (m *Material) SetFloat(name string, f float32) error { return m.Set(name, Float(f)) }
func (m *Material) SetVec2(name string, v mgl32.Vec2) error { return m.Set(name, Vec2(v)) }
func (m *Material) SetColour(name string, c mgl32.Vec3) error { return m.Set(name, Colour(c)) }
func (m *Material) SetStr(name string, s string) error { return m.Set(name, Str(s)) }
func (m *Material) SetTexture(name string, t *metadata.Texture) error { return m.Set(name, Texture(t)) }

func (m *Material) typed(name string, kind PropertyKind) (Value, error) {
	d, err := m.lookup(name, kind)
	if err != nil {
		return Value{}, err
	}
	return m.value(d.id), nil
}

func (m *Material) GetBool(name string) (bool, error) {
	v, err := m.typed(name, KindBool)
	return v.Bool(), err
}

func (m *Material) GetInt(name string) (int, error) {
	v, err := m.typed(name, KindInt)
	return v.Int(), err
}

func (m *Material) GetFloat(name string) (float32, error) {
	v, err := m.typed(name, KindFloat)
	return v.Float(), err
}

func (m *Material) GetVec2(name string) (mgl32.Vec2, error) {
	v, err := m.typed(name, KindVec2)
	return v.Vec2(), err
}

// GetColour returns a copy of the colour; changes go through SetColour.
func (m *Material) GetColour(name string) (mgl32.Vec3, error) {
	v, err := m.typed(name, KindColour)
	return v.Colour(), err
}

func (m *Material) GetStr(name string) (string, error) {
	v, err := m.typed(name, KindString)
	return v.Str(), err
}

func (m *Material) GetTexture(name string) (*metadata.Texture, error) {
	v, err := m.typed(name, KindTexture)
	return v.Texture(), err
}

// SetChunk overrides a named shader chunk. An empty source removes the override.
func (m *Material) SetChunk(name, source string) {
	if cur, ok := m.chunks[name]; ok && cur == source {
		return
	}
	if source == "" {
		if _, ok := m.chunks[name]; !ok {
			return
		}
		delete(m.chunks, name)
	} else {
		m.chunks[name] = source
	}
	m.chunksKey = encodeChunks(m.chunks)
	m.dirtyShader = true
}

func (m *Material) Chunks() map[string]string {
	out := make(map[string]string, len(m.chunks))
	for k, v := range m.chunks {
		out[k] = v
	}
	return out
}

// ClearChunks drops every chunk override.
func (m *Material) ClearChunks() {
	if len(m.chunks) == 0 {
		return
	}
	clear(m.chunks)
	m.chunksKey = ""
	m.dirtyShader = true
}

func encodeChunks(chunks map[string]string) string {
	if len(chunks) == 0 {
		return ""
	}
	names := make([]string, 0, len(chunks))
	for name := range chunks {
		names = append(names, name)
	}
	sort.Strings(names)
	var sb strings.Builder
	for _, name := range names {
		sb.WriteString(name)
		sb.WriteByte(0)
		sb.WriteString(chunks[name])
		sb.WriteByte(0)
	}
	return sb.String()
}

// DecodeChunks reverses the chunk encoding stored in shader options.
func DecodeChunks(key string) map[string]string {
	out := make(map[string]string)
	if key == "" {
		return out
	}
	parts := strings.Split(key, "\x00")
	for i := 0; i+1 < len(parts); i += 2 {
		out[parts[i]] = parts[i+1]
	}
	return out
}

// SetParameter binds a parameter directly. Parameters set this way are not
// tracked and survive UpdateUniforms.
func (m *Material) SetParameter(name string, data interface{}) {
	if p, ok := m.parameters[name]; ok {
		p.Data = data
		return
	}
	m.parameters[name] = &Parameter{Name: name, Data: data}
}

func (m *Material) GetParameter(name string) (*Parameter, bool) {
	p, ok := m.parameters[name]
	return p, ok
}

func (m *Material) DeleteParameter(name string) {
	delete(m.parameters, name)
}

// Parameters returns the bound parameter table.
func (m *Material) Parameters() map[string]*Parameter {
	return m.parameters
}

// ActiveParameters returns the sorted names emitted by the last UpdateUniforms.
func (m *Material) ActiveParameters() []string {
	names := make([]string, 0, len(m.activeParams))
	for name := range m.activeParams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// setParameter binds a parameter and records it as active for this pass.
func (m *Material) setParameter(name string, data interface{}) {
	m.SetParameter(name, data)
	m.scratchParams[name] = struct{}{}
}

func (m *Material) setUniformFloat(name string, f float32) {
	m.setParameter(name, f)
}

func (m *Material) setUniformVec(name string, components ...float32) {
	buf, ok := m.uniformCache[name]
	if !ok || len(buf) != len(components) {
		buf = make([]float32, len(components))
		m.uniformCache[name] = buf
	}
	copy(buf, components)
	m.setParameter(name, buf)
}

func (m *Material) setUniformColour(name string, c mgl32.Vec3) {
	m.setUniformVec(name, c[0], c[1], c[2])
}

// processParameters removes parameters that were active in the previous
// pass but not in this one, then swaps the two sets.
func (m *Material) processParameters() {
	for name := range m.activeParams {
		if _, ok := m.scratchParams[name]; !ok {
			delete(m.parameters, name)
		}
	}
	m.activeParams, m.scratchParams = m.scratchParams, m.activeParams
	clear(m.scratchParams)
}

// UpdateUniforms recomputes the material's shader parameters. It never
// touches the dirty shader flag.
func (m *Material) UpdateUniforms(scene *metadata.Scene) {
	if m.kind.UpdateUniforms != nil {
		m.kind.UpdateUniforms(m, scene)
	}
	m.processParameters()
}
