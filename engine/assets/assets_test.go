package assets

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetManagerIndexesAndLoads(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "materials"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "materials", "wood.toml"), []byte(`name = "wood"`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wood_diffuse.glsl"), []byte("void getAlbedo() {}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("ignored"), 0o644))

	am, err := NewAssetManager()
	require.NoError(t, err)
	defer am.Shutdown()
	require.NoError(t, am.Initialize(dir, false))

	info, ok := am.Lookup("wood", metadata.ResourceTypeMaterial)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "materials", "wood.toml"), info.Path)
	_, ok = am.Lookup("readme", metadata.ResourceTypeNone)
	assert.False(t, ok)

	res, err := am.LoadAsset("wood", metadata.ResourceTypeMaterial, nil)
	require.NoError(t, err)
	assert.Equal(t, "wood", res.Name)
	assert.False(t, mustLookup(t, am, "wood").LastLoaded.IsZero())

	res, err = am.LoadAsset("wood_diffuse", metadata.ResourceTypeChunk, nil)
	require.NoError(t, err)
	assert.Equal(t, "void getAlbedo() {}\n", res.Data)

	_, err = am.LoadAsset("stone", metadata.ResourceTypeMaterial, nil)
	assert.Error(t, err)
}

func mustLookup(t *testing.T, am *AssetManager, name string) AssetInfo {
	t.Helper()
	info, ok := am.Lookup(name, metadata.ResourceTypeMaterial)
	require.True(t, ok)
	return info
}

func TestAssetManagerForwardsWatchEvents(t *testing.T) {
	dir := t.TempDir()
	am, err := NewAssetManager()
	require.NoError(t, err)
	defer am.Shutdown()
	require.NoError(t, am.Initialize(dir, true))

	bus := core.NewEventBus()
	changed := make(map[string]bool)
	bus.Register(core.EventCodeAssetChanged, t, func(code core.SystemEventCode, sender, listener interface{}, data core.EventContext) bool {
		changed[data.Name] = true
		return true
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "stone.toml"), []byte(`name = "stone"`), 0o644))

	assert.Eventually(t, func() bool {
		am.DrainEvents(bus)
		return changed["stone"]
	}, 5*time.Second, 20*time.Millisecond)

	_, ok := am.Lookup("stone", metadata.ResourceTypeMaterial)
	assert.True(t, ok)
}

func TestAssetManagerDrainIsNonBlocking(t *testing.T) {
	am, err := NewAssetManager()
	require.NoError(t, err)
	defer am.Shutdown()
	assert.Equal(t, 0, am.DrainEvents(core.NewEventBus()))

	am.forward(AssetEvent{Name: "gone", Type: metadata.ResourceTypeChunk, Removed: true})
	bus := core.NewEventBus()
	removed := ""
	bus.Register(core.EventCodeAssetRemoved, t, func(code core.SystemEventCode, sender, listener interface{}, data core.EventContext) bool {
		removed = data.Name
		return true
	})
	assert.Equal(t, 1, am.DrainEvents(bus))
	assert.Equal(t, "gone", removed)
}
