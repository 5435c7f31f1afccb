package metadata

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

type UniformType int

const (
	UniformTypeFloat UniformType = iota
	UniformTypeVec2
	UniformTypeVec3
	UniformTypeVec4
	UniformTypeMat3
	UniformTypeMat4
)

/** @brief A single entry of a uniform buffer layout. */
type UniformFormat struct {
	Name  string
	Type  UniformType
	Count uint32
}

/** @brief Layout of a uniform buffer, such as the per-view buffer. */
type UniformBufferFormat struct {
	Uniforms []UniformFormat
}

// Key encodes the layout. Two formats with the same key produce the same
// shader declarations. Names are quoted so they cannot run into the
// separators.
func (f *UniformBufferFormat) Key() string {
	if f == nil {
		return ""
	}
	var sb strings.Builder
	for _, u := range f.Uniforms {
		sb.WriteString(strconv.Quote(u.Name))
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(int(u.Type)))
		sb.WriteByte(':')
		sb.WriteString(strconv.FormatUint(uint64(u.Count), 10))
		sb.WriteByte(';')
	}
	return sb.String()
}

type BindGroupEntryType int

const (
	BindGroupEntryUniformBuffer BindGroupEntryType = iota
	BindGroupEntryTexture
	BindGroupEntryStorageBuffer
)

type BindGroupEntry struct {
	Name string
	Type BindGroupEntryType
}

/** @brief Layout of a bind group. */
type BindGroupFormat struct {
	Name    string
	Entries []BindGroupEntry
}

func (f *BindGroupFormat) Key() string {
	if f == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(strconv.Quote(f.Name))
	for _, e := range f.Entries {
		sb.WriteByte(';')
		sb.WriteString(strconv.Quote(e.Name))
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(int(e.Type)))
	}
	return sb.String()
}

/**
 * @brief GPU side binding of resources for one view. Must be destroyed
 * explicitly.
 */
type BindGroup struct {
	ID        uint32
	Format    *BindGroupFormat
	destroyed bool
	// Invoked once on Destroy, used by the backend to free the handle.
	OnDestroy    func(*BindGroup)
	InternalData interface{}
}

func NewBindGroup(id uint32, format *BindGroupFormat) *BindGroup {
	return &BindGroup{ID: id, Format: format}
}

// Destroy releases the bind group. Calling it again is a no-op.
func (bg *BindGroup) Destroy() {
	if bg.destroyed {
		return
	}
	bg.destroyed = true
	if bg.OnDestroy != nil {
		bg.OnDestroy(bg)
	}
	bg.InternalData = nil
}

func (bg *BindGroup) IsDestroyed() bool {
	return bg.destroyed
}

/**
 * @brief Context that changes how generated code is processed for a
 * backend: the view uniform buffer and bind group layouts.
 */
type ShaderProcessingOptions struct {
	ViewUniformFormat   *UniformBufferFormat
	ViewBindGroupFormat *BindGroupFormat
}

// Key is the cache key contribution of the processing context.
func (o ShaderProcessingOptions) Key() string {
	return o.ViewUniformFormat.Key() + "#" + o.ViewBindGroupFormat.Key()
}

/**
 * @brief A generated shader program.
 */
type Program struct {
	ID             uuid.UUID
	Family         string
	Name           string
	VertexSource   string
	FragmentSource string
	/** @brief Backend compiled handle. */
	InternalData interface{}
}

func NewProgram(family, name, vertex, fragment string) *Program {
	return &Program{
		ID:             uuid.New(),
		Family:         family,
		Name:           name,
		VertexSource:   vertex,
		FragmentSource: fragment,
	}
}
