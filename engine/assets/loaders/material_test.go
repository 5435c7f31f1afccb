package loaders

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMaterialConfig(t *testing.T) {
	cfg, err := ParseMaterialConfig([]byte(`
name = "metal"
blend_type = "normal"

[colours]
diffuse = [0.5, 0.5, 0.5]

[flags]
useMetalness = true

[maps.normal]
texture = "metal_normal"
uv = 1

[environment]
env_atlas = "studio"
`))
	require.NoError(t, err)
	assert.Equal(t, "metal", cfg.Name)
	assert.Equal(t, metadata.DefaultProgramFamily, cfg.Shader)
	assert.Equal(t, "normal", cfg.BlendType)
	assert.Equal(t, []float32{0.5, 0.5, 0.5}, cfg.Colours["diffuse"])
	assert.True(t, cfg.Flags["useMetalness"])
	assert.Equal(t, uint32(1), cfg.Maps["normal"].UV)
	assert.Equal(t, "studio", cfg.Environment["env_atlas"])
}

func TestParseMaterialConfigRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"missing name", `shader = "standard"`},
		{"unknown key", "name = \"a\"\nglow = 1"},
		{"bad shading model", "name = \"a\"\nshading_model = \"toon\""},
		{"short colour", "name = \"a\"\n[colours]\ndiffuse = [1.0, 1.0]"},
		{"colour out of range", "name = \"a\"\n[colours]\ndiffuse = [1.0, 2.0, 1.0]"},
		{"shininess out of range", "name = \"a\"\n[floats]\nshininess = 150.0"},
		{"unknown slot", "name = \"a\"\n[maps.bogus]\ntexture = \"t\""},
		{"texture path", "name = \"a\"\n[maps.diffuse]\ntexture = \"textures/t\""},
		{"tiling size", "name = \"a\"\n[maps.diffuse]\ntexture = \"t\"\ntiling = [1.0]"},
		{"unknown environment", "name = \"a\"\n[environment]\nprobe = \"t\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMaterialConfig([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoaders(t *testing.T) {
	dir := t.TempDir()
	matPath := filepath.Join(dir, "wood.toml")
	require.NoError(t, os.WriteFile(matPath, []byte(`name = "wood"`), 0o644))
	chunkPath := filepath.Join(dir, "wood_diffuse.glsl")
	require.NoError(t, os.WriteFile(chunkPath, []byte("void getAlbedo() {}\n"), 0o644))
	emptyPath := filepath.Join(dir, "empty.glsl")
	require.NoError(t, os.WriteFile(emptyPath, []byte("  \n"), 0o644))

	res, err := (&MaterialLoader{}).Load(matPath, metadata.ResourceTypeMaterial, nil)
	require.NoError(t, err)
	assert.Equal(t, "wood", res.Data.(*metadata.MaterialConfig).Name)

	res, err = (&ChunkLoader{}).Load(chunkPath, metadata.ResourceTypeChunk, nil)
	require.NoError(t, err)
	assert.Equal(t, "wood_diffuse", res.Name)
	assert.Equal(t, "void getAlbedo() {}\n", res.Data)

	_, err = (&ChunkLoader{}).Load(emptyPath, metadata.ResourceTypeChunk, nil)
	assert.Error(t, err)
}
