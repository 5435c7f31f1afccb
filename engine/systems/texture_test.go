package systems

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextureSystemCreateAndAcquire(t *testing.T) {
	ts, err := NewTextureSystem(&TextureSystemConfig{MaxTextureCount: 4})
	require.NoError(t, err)

	sky, err := ts.Create(metadata.TextureConfig{Name: "sky", Type: "rgbm", Format: "rgba8", Cubemap: true})
	require.NoError(t, err)
	assert.Equal(t, metadata.TextureTypeRGBM, sky.Type)
	assert.True(t, sky.Cubemap)

	_, err = ts.Create(metadata.TextureConfig{Name: "sky"})
	assert.Error(t, err)
	_, err = ts.Create(metadata.TextureConfig{Name: "bad", Format: "bgr"})
	assert.Error(t, err)

	got, err := ts.Acquire("sky", false)
	require.NoError(t, err)
	assert.Same(t, sky, got)

	lazy, err := ts.Acquire("bricks", true)
	require.NoError(t, err)
	assert.Equal(t, metadata.TextureFormatRGBA8, lazy.Format)

	def, err := ts.Acquire(metadata.DEFAULT_TEXTURE_NAME, false)
	require.NoError(t, err)
	assert.Same(t, ts.GetDefaultTexture(), def)
}

func TestTextureSystemRelease(t *testing.T) {
	ts, err := NewTextureSystem(&TextureSystemConfig{MaxTextureCount: 4})
	require.NoError(t, err)

	tex, err := ts.Acquire("bricks", true)
	require.NoError(t, err)
	_, err = ts.Acquire("bricks", true)
	require.NoError(t, err)

	ts.Release("bricks")
	_, err = ts.Get("bricks")
	require.NoError(t, err)

	ts.Release("bricks")
	_, err = ts.Get("bricks")
	assert.True(t, errors.Is(err, core.ErrUnknownTexture))
	assert.Equal(t, metadata.InvalidID, tex.ID)

	// Not auto released: stays registered.
	_, err = ts.Create(metadata.TextureConfig{Name: "atlas"})
	require.NoError(t, err)
	_, err = ts.Acquire("atlas", false)
	require.NoError(t, err)
	ts.Release("atlas")
	_, err = ts.Get("atlas")
	assert.NoError(t, err)
}

func TestTextureSystemCapacity(t *testing.T) {
	ts, err := NewTextureSystem(&TextureSystemConfig{MaxTextureCount: 1})
	require.NoError(t, err)
	_, err = ts.Acquire("a", true)
	require.NoError(t, err)
	_, err = ts.Acquire("b", true)
	assert.Error(t, err)
}
