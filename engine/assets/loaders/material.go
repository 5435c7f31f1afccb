package loaders

import (
	"bytes"
	"fmt"
	stdmath "math"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/prism/engine/renderer/material"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// MaxUVSet is the highest uv set index a material file may reference.
const MaxUVSet = 7

type MaterialLoader struct{}

func (ml *MaterialLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	mCfg, err := ParseMaterialConfig(data)
	if err != nil {
		return nil, fmt.Errorf("material file '%s': %w", path, err)
	}
	return &metadata.Resource{
		Name:     mCfg.Name,
		Type:     assetType,
		FullPath: path,
		DataSize: uint64(len(data)),
		Data:     mCfg,
	}, nil
}

// ParseMaterialConfig decodes a TOML material file. Unknown keys are errors.
func ParseMaterialConfig(data []byte) (*metadata.MaterialConfig, error) {
	materialConfig := &metadata.MaterialConfig{}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(materialConfig); err != nil {
		return nil, err
	}
	if materialConfig.Shader == "" {
		materialConfig.Shader = metadata.DefaultProgramFamily
	}
	// Perform validation
	if err := validateMaterial(materialConfig); err != nil {
		return nil, err
	}
	return materialConfig, nil
}

func validateMaterial(cfg *metadata.MaterialConfig) error {
	if cfg.Name == "" {
		return fmt.Errorf("material name is required")
	}

	switch cfg.ShadingModel {
	case "", "phong", "blinn":
	default:
		return fmt.Errorf("invalid shading_model '%s'", cfg.ShadingModel)
	}
	switch cfg.FresnelModel {
	case "", "none", "schlick":
	default:
		return fmt.Errorf("invalid fresnel_model '%s'", cfg.FresnelModel)
	}
	switch cfg.BlendType {
	case "", "none", "normal", "additive", "premultiplied":
	default:
		return fmt.Errorf("invalid blend_type '%s'", cfg.BlendType)
	}

	// Check that colour values are within [0.0, 1.0] range
	for name, c := range cfg.Colours {
		if len(c) != 3 {
			return fmt.Errorf("colour '%s' needs 3 values, got %d", name, len(c))
		}
		for _, v := range c {
			if !inRange(v) {
				return fmt.Errorf("colour '%s' values must be between 0.0 and 1.0", name)
			}
		}
	}

	for name, f := range cfg.Floats {
		if stdmath.IsNaN(float64(f)) || stdmath.IsInf(float64(f), 0) {
			return fmt.Errorf("float '%s' must be finite", name)
		}
		switch name {
		case "shininess":
			if f < 0 || f > 100 {
				return fmt.Errorf("shininess must be between 0 and 100")
			}
		case "opacity", "alphaTest", "metalness", "clearCoat", "refraction":
			if !inRange(f) {
				return fmt.Errorf("%s must be between 0.0 and 1.0", name)
			}
		}
	}

	for slotName, m := range cfg.Maps {
		if _, ok := material.SlotByName(slotName); !ok {
			return fmt.Errorf("unknown texture slot '%s'", slotName)
		}
		if !isValidTextureName(m.Texture) {
			return fmt.Errorf("invalid %s map texture name: '%s'", slotName, m.Texture)
		}
		if m.UV > MaxUVSet {
			return fmt.Errorf("%s map uv set %d is above %d", slotName, m.UV, MaxUVSet)
		}
		if len(m.Tiling) != 0 && len(m.Tiling) != 2 {
			return fmt.Errorf("%s map tiling needs 2 values", slotName)
		}
		if len(m.Offset) != 0 && len(m.Offset) != 2 {
			return fmt.Errorf("%s map offset needs 2 values", slotName)
		}
	}

	for key, tex := range cfg.Environment {
		switch key {
		case "cube_map", "sphere_map", "env_atlas":
		default:
			return fmt.Errorf("unknown environment texture '%s'", key)
		}
		if !isValidTextureName(tex) {
			return fmt.Errorf("invalid %s texture name: '%s'", key, tex)
		}
	}

	for chunk, asset := range cfg.Chunks {
		if chunk == "" || asset == "" {
			return fmt.Errorf("chunk overrides need a chunk name and an asset name")
		}
	}
	return nil
}

// Check if a float32 value is within [0.0, 1.0]
func inRange(value float32) bool {
	return value >= 0.0 && value <= 1.0
}

// Texture names are plain identifiers, not paths.
func isValidTextureName(name string) bool {
	return len(name) > 0 && !strings.ContainsAny(name, "/\\ \t")
}

func (ml *MaterialLoader) Unload(*metadata.Resource) error {
	return nil
}
