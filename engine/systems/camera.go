package systems

import (
	"fmt"
	"sort"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/components"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type CameraSystem struct {
	Config  *CameraSystemConfig
	Lookup  map[string]uint16
	Cameras []*components.CameraLookup
	// A default, non-registered camera that always exists as a fallback.
	DefaultCamera *components.Camera
}

/** @brief The camera system configuration. */
type CameraSystemConfig struct {
	/**
	 * @brief NOTE: The maximum number of cameras that can be managed by
	 * the system.
	 */
	MaxCameraCount uint16
}

/**
 * @brief Initializes the camera system.
 *
 * @param config The configuration for this system.
 * @return The system, or an error if the configuration is invalid.
 */
func NewCameraSystem(config *CameraSystemConfig) (*CameraSystem, error) {
	if config.MaxCameraCount == 0 {
		err := fmt.Errorf("func NewCameraSystem - config.MaxCameraCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	cs := &CameraSystem{
		Config:  config,
		Cameras: make([]*components.CameraLookup, config.MaxCameraCount),
		Lookup:  make(map[string]uint16, config.MaxCameraCount),
	}
	// Invalidate all cameras in the array.
	for i := uint16(0); i < cs.Config.MaxCameraCount; i++ {
		cs.Cameras[i] = &components.CameraLookup{
			ID:             metadata.InvalidIDUint16,
			ReferenceCount: 0,
		}
	}
	// Setup default camera.
	cs.DefaultCamera = components.NewCamera(components.DEFAULT_CAMERA_NAME)
	return cs, nil
}

/**
 * @brief Shuts down the camera system.
 */
func (cs *CameraSystem) Shutdown() error {
	for _, l := range cs.Cameras {
		l.Camera = nil
		l.ID = metadata.InvalidIDUint16
		l.ReferenceCount = 0
	}
	clear(cs.Lookup)
	return nil
}

/**
 * @brief Acquires a pointer to a camera by name.
 * If one is not found, a new one is created and retuned.
 * Internal reference counter is incremented.
 *
 * @param name The name of the camera to acquire.
 * @return A pointer to a camera, or an error if no slot is free.
 */
func (cs *CameraSystem) Acquire(name string) (*components.Camera, error) {
	if name == components.DEFAULT_CAMERA_NAME {
		return cs.DefaultCamera, nil
	}
	id, ok := cs.Lookup[name]
	if !ok {
		id = metadata.InvalidIDUint16
		// Find free slot
		for i := uint16(0); i < cs.Config.MaxCameraCount; i++ {
			if cs.Cameras[i].ID == metadata.InvalidIDUint16 {
				id = i
				break
			}
		}
		if id == metadata.InvalidIDUint16 {
			err := fmt.Errorf("func Acquire failed to acquire new slot for camera '%s'. Adjust camera system config to allow more", name)
			core.LogError(err.Error())
			return nil, err
		}

		// Create/register the new camera.
		core.LogDebug("Creating new camera named '%s'...", name)
		camera := components.NewCamera(name)
		camera.ID = uint32(id)
		cs.Cameras[id].Camera = camera
		cs.Cameras[id].ID = id

		// Update the hashtable.
		cs.Lookup[name] = id
	}
	cs.Cameras[id].ReferenceCount++
	return cs.Cameras[id].Camera, nil
}

/**
 * @brief Releases a camera with the given name. Internal reference
 * counter is decremented. If this reaches 0, the camera is reset,
 * and the slot is usable by a new camera.
 *
 * @param name The name of the camera to release.
 */
func (cs *CameraSystem) Release(name string) {
	if name == components.DEFAULT_CAMERA_NAME {
		core.LogDebug("Cannot release default camera. Nothing was done.")
		return
	}
	id, ok := cs.Lookup[name]
	if !ok {
		core.LogWarn("CameraSystem Release failed lookup for '%s'. Nothing was done.", name)
		return
	}
	// Decrement the reference count, and reset the camera if the counter reaches 0.
	cs.Cameras[id].ReferenceCount--
	if cs.Cameras[id].ReferenceCount < 1 {
		cs.Cameras[id].Camera.Reset()
		cs.Cameras[id].Camera = nil
		cs.Cameras[id].ID = metadata.InvalidIDUint16
		delete(cs.Lookup, name)
	}
}

// Get returns an acquired camera without changing its reference count.
func (cs *CameraSystem) Get(name string) (*components.Camera, error) {
	if name == components.DEFAULT_CAMERA_NAME {
		return cs.DefaultCamera, nil
	}
	id, ok := cs.Lookup[name]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", core.ErrUnknownCamera, name)
	}
	return cs.Cameras[id].Camera, nil
}

/**
 * @brief Returns every acquired camera ordered by priority, ties broken by
 * slot. The default camera is not included.
 */
func (cs *CameraSystem) Active() []*components.Camera {
	cameras := make([]*components.Camera, 0, len(cs.Lookup))
	for _, l := range cs.Cameras {
		if l.ID != metadata.InvalidIDUint16 && l.Camera != nil {
			cameras = append(cameras, l.Camera)
		}
	}
	sort.SliceStable(cameras, func(i, j int) bool {
		return cameras[i].Priority < cameras[j].Priority
	})
	return cameras
}

/**
 * @brief Gets a pointer to the default camera.
 *
 * @return A pointer to the default camera.
 */
func (cs *CameraSystem) GetDefault() *components.Camera {
	return cs.DefaultCamera
}
