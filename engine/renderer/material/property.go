package material

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
)

// PropertyID indexes a property inside the value table of a material kind.
type PropertyID int

// DirtyPredicate decides whether changing a property from old to new can
// change generated shader code.
type DirtyPredicate func(old, new Value) bool

// Getter post-processes a stored value on read.
type Getter func(m *Material, stored Value) Value

/**
 * @brief Metadata for one material property. Immutable once registered.
 */
type PropertyDescriptor struct {
	Name string
	Kind PropertyKind
	/** @brief Constructs the default value. Called once per material. */
	Default func() Value
	/** @brief nil means every change dirties the shader. */
	DirtiesShader DirtyPredicate
	/** @brief Optional custom getter. */
	Getter Getter

	id PropertyID
}

func (d *PropertyDescriptor) ID() PropertyID {
	return d.id
}

func (d *PropertyDescriptor) dirties(old, new Value) bool {
	if d.DirtiesShader == nil {
		return true
	}
	return d.DirtiesShader(old, new)
}

/**
 * @brief The fixed table of properties of one material kind. Built once,
 * then shared read-only by every material of that kind.
 */
type Registry struct {
	Kind        string
	descriptors []*PropertyDescriptor
	// A lookup table for property name->id
	lookup map[string]PropertyID
}

func NewRegistry(kind string) *Registry {
	return &Registry{
		Kind:   kind,
		lookup: make(map[string]PropertyID),
	}
}

// DefineProperty registers a property and returns its id. Registering the
// same name twice is a programming error and panics.
func (r *Registry) DefineProperty(d PropertyDescriptor) PropertyID {
	if _, ok := r.lookup[d.Name]; ok {
		err := fmt.Errorf("%w: %s.%s", core.ErrDuplicateProperty, r.Kind, d.Name)
		core.LogError(err.Error())
		panic(err)
	}
	if d.Default == nil {
		panic(fmt.Errorf("property %s.%s has no default value", r.Kind, d.Name))
	}
	if def := d.Default(); def.Kind() != d.Kind {
		panic(fmt.Errorf("%w: %s.%s default is %s, declared %s", core.ErrPropertyKind, r.Kind, d.Name, def.Kind(), d.Kind))
	}
	desc := d
	desc.id = PropertyID(len(r.descriptors))
	r.descriptors = append(r.descriptors, &desc)
	r.lookup[d.Name] = desc.id
	return desc.id
}

func (r *Registry) Lookup(name string) (*PropertyDescriptor, bool) {
	id, ok := r.lookup[name]
	if !ok {
		return nil, false
	}
	return r.descriptors[id], true
}

func (r *Registry) Descriptor(id PropertyID) *PropertyDescriptor {
	return r.descriptors[id]
}

func (r *Registry) Len() int {
	return len(r.descriptors)
}

// Descriptors returns the table in registration order.
func (r *Registry) Descriptors() []*PropertyDescriptor {
	return r.descriptors
}

// Defaults builds a fresh value table.
func (r *Registry) Defaults() []Value {
	values := make([]Value, len(r.descriptors))
	for i, d := range r.descriptors {
		values[i] = d.Default()
	}
	return values
}
