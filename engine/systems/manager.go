package systems

import (
	"github.com/spaghettifunk/prism/engine/assets"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/programs"
)

/** @brief Limits used when creating the systems. */
type SystemManagerConfig struct {
	MaxCameraCount   uint16
	MaxTextureCount  uint32
	MaxMaterialCount uint32
	MaxProgramCount  uint32
}

type SystemManager struct {
	CameraSystem   *CameraSystem
	MaterialSystem *MaterialSystem
	ShaderSystem   *ShaderSystem
	TextureSystem  *TextureSystem
}

/**
 * @brief Creates every system in dependency order and registers the
 * built-in program families. The asset manager may be nil, in which case
 * materials can only be created from in-memory configs.
 */
func NewSystemManager(config *SystemManagerConfig, am *assets.AssetManager, events *core.EventBus, metrics *core.Metrics) (*SystemManager, error) {
	cs, err := NewCameraSystem(&CameraSystemConfig{
		MaxCameraCount: config.MaxCameraCount,
	})
	if err != nil {
		return nil, err
	}
	ts, err := NewTextureSystem(&TextureSystemConfig{
		MaxTextureCount: config.MaxTextureCount,
	})
	if err != nil {
		return nil, err
	}
	ssys, err := NewShaderSystem(&ShaderSystemConfig{
		MaxProgramCount: config.MaxProgramCount,
	}, metrics, events)
	if err != nil {
		return nil, err
	}
	if err := ssys.Register(programs.StandardFamily, programs.NewStandardGenerator()); err != nil {
		return nil, err
	}
	ms, err := NewMaterialSystem(&MaterialSystemConfig{
		MaxMaterialCount: config.MaxMaterialCount,
	}, ts, am, events)
	if err != nil {
		return nil, err
	}
	return &SystemManager{
		CameraSystem:   cs,
		TextureSystem:  ts,
		ShaderSystem:   ssys,
		MaterialSystem: ms,
	}, nil
}

func (sm *SystemManager) Shutdown() error {
	if err := sm.MaterialSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.ShaderSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.TextureSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.CameraSystem.Shutdown(); err != nil {
		return err
	}
	return nil
}
