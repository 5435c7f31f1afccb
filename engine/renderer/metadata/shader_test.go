package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUniformBufferFormatKey(t *testing.T) {
	plain := &UniformBufferFormat{Uniforms: []UniformFormat{
		{Name: "a", Type: UniformTypeFloat, Count: 1},
		{Name: "b", Type: UniformTypeVec3, Count: 1},
	}}
	same := &UniformBufferFormat{Uniforms: append([]UniformFormat(nil), plain.Uniforms...)}
	assert.Equal(t, plain.Key(), same.Key())

	// A name carrying the separators must not read as two uniforms.
	joined := &UniformBufferFormat{Uniforms: []UniformFormat{
		{Name: "a:0:1;b", Type: UniformTypeVec3, Count: 1},
	}}
	assert.NotEqual(t, plain.Key(), joined.Key())

	var none *UniformBufferFormat
	assert.Empty(t, none.Key())
}

func TestBindGroupFormatKey(t *testing.T) {
	two := &BindGroupFormat{Name: "view", Entries: []BindGroupEntry{
		{Name: "ub_view", Type: BindGroupEntryUniformBuffer},
		{Name: "tex", Type: BindGroupEntryTexture},
	}}
	one := &BindGroupFormat{Name: "view", Entries: []BindGroupEntry{
		{Name: "ub_view:0;tex", Type: BindGroupEntryTexture},
	}}
	assert.NotEqual(t, two.Key(), one.Key())

	renamed := &BindGroupFormat{Name: "view;ub_view:0", Entries: []BindGroupEntry{
		{Name: "tex", Type: BindGroupEntryTexture},
	}}
	assert.NotEqual(t, two.Key(), renamed.Key())

	processing := ShaderProcessingOptions{ViewBindGroupFormat: two}
	assert.NotEqual(t, processing.Key(), ShaderProcessingOptions{ViewBindGroupFormat: one}.Key())
}
