package material

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefinePropertyAssignsSequentialIDs(t *testing.T) {
	r := NewRegistry("test")
	a := r.DefineProperty(PropertyDescriptor{Name: "a", Kind: KindFloat, Default: constant(Float(1))})
	b := r.DefineProperty(PropertyDescriptor{Name: "b", Kind: KindBool, Default: constant(Bool(true))})

	assert.Equal(t, PropertyID(0), a)
	assert.Equal(t, PropertyID(1), b)
	assert.Equal(t, 2, r.Len())

	d, ok := r.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, b, d.ID())

	defaults := r.Defaults()
	assert.Equal(t, Float(1), defaults[a])
	assert.Equal(t, Bool(true), defaults[b])
}

func TestDefinePropertyTwicePanics(t *testing.T) {
	r := NewRegistry("test")
	r.DefineProperty(PropertyDescriptor{Name: "a", Kind: KindFloat, Default: constant(Float(1))})

	defer func() {
		rec := recover()
		require.NotNil(t, rec)
		err, ok := rec.(error)
		require.True(t, ok)
		assert.True(t, errors.Is(err, core.ErrDuplicateProperty))
	}()
	r.DefineProperty(PropertyDescriptor{Name: "a", Kind: KindFloat, Default: constant(Float(2))})
}

func TestDefinePropertyRejectsMismatchedDefault(t *testing.T) {
	r := NewRegistry("test")
	assert.Panics(t, func() {
		r.DefineProperty(PropertyDescriptor{Name: "a", Kind: KindColour, Default: constant(Float(1))})
	})
}

func TestStandardKindIsRegisteredOnce(t *testing.T) {
	k1 := StandardKind()
	k2 := StandardKind()
	assert.Same(t, k1, k2)

	_, ok := k1.Registry.Lookup("diffuseMapTiling")
	assert.True(t, ok)
	_, ok = k1.Registry.Lookup("normalVertexColor")
	assert.False(t, ok, "normal maps have no vertex colour property")
}
