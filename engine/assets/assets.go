package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/prism/engine/assets/loaders"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// Size of the buffered event channel between the watcher and the frame thread.
const eventBufferSize = 64

type AssetInfo struct {
	Name       string
	Path       string
	Type       metadata.ResourceType
	LastLoaded time.Time
}

type assetKey struct {
	name string
	kind metadata.ResourceType
}

// AssetEvent is emitted when an indexed asset is created, written or removed.
type AssetEvent struct {
	Name    string
	Path    string
	Type    metadata.ResourceType
	Removed bool
}

/**
 * @brief Indexes material and chunk files under the assets directory and
 * watches it for changes. The watcher goroutine only updates the index and
 * forwards events; DrainEvents hands them to the event bus on the caller's
 * thread.
 */
type AssetManager struct {
	assets  map[assetKey]AssetInfo
	loaders map[metadata.ResourceType]Loader

	mutex sync.RWMutex

	done      chan struct{}
	closeOnce sync.Once
	fsnotify  *fsnotify.Watcher
	events    chan AssetEvent
}

func NewAssetManager() (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	am := &AssetManager{
		assets:   make(map[assetKey]AssetInfo),
		loaders:  make(map[metadata.ResourceType]Loader),
		fsnotify: fsWatch,
		events:   make(chan AssetEvent, eventBufferSize),
		done:     make(chan struct{}),
	}
	// Register loaders
	am.registerLoader(metadata.ResourceTypeMaterial, &loaders.MaterialLoader{})
	am.registerLoader(metadata.ResourceTypeChunk, &loaders.ChunkLoader{})
	return am, nil
}

// Initialize indexes the assets directory. With watch set, changes are
// tracked until Shutdown.
func (am *AssetManager) Initialize(assetsDir string, watch bool) error {
	if err := am.indexRecursive(assetsDir, watch); err != nil {
		return err
	}
	if watch {
		go am.start()
	}
	return nil
}

func (am *AssetManager) Shutdown() error {
	var err error
	am.closeOnce.Do(func() {
		close(am.done)
		err = am.fsnotify.Close()
	})
	return err
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType metadata.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

// Lookup returns the indexed asset of a type by name.
func (am *AssetManager) Lookup(name string, resourceType metadata.ResourceType) (AssetInfo, bool) {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	info, ok := am.assets[assetKey{name, resourceType}]
	return info, ok
}

// Load an asset using the appropriate loader
func (am *AssetManager) LoadAsset(name string, resourceType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	key := assetKey{name, resourceType}
	am.mutex.Lock()
	asset, exists := am.assets[key]
	if exists {
		// Update the loaded time
		asset.LastLoaded = time.Now()
		am.assets[key] = asset
	}
	am.mutex.Unlock()
	if !exists {
		return nil, fmt.Errorf("%s asset not found: %s", resourceType, name)
	}

	loader, loaderExists := am.loaders[asset.Type]
	if !loaderExists {
		return nil, fmt.Errorf("no loader registered for asset type: %s", asset.Type)
	}
	return loader.Load(asset.Path, resourceType, params)
}

func (am *AssetManager) UnloadAsset(asset *metadata.Resource) error {
	loader, ok := am.loaders[asset.Type]
	if !ok {
		return nil
	}
	return loader.Unload(asset)
}

// Events returns the channel asset events are forwarded on.
func (am *AssetManager) Events() <-chan AssetEvent {
	return am.events
}

/**
 * @brief Fires every pending asset event on the bus without blocking.
 *
 * @return The number of events fired.
 */
func (am *AssetManager) DrainEvents(bus *core.EventBus) int {
	count := 0
	for {
		select {
		case e := <-am.events:
			code := core.EventCodeAssetChanged
			if e.Removed {
				code = core.EventCodeAssetRemoved
			}
			bus.Fire(code, am, core.EventContext{Name: e.Name, Data: e.Type})
			count++
		default:
			return count
		}
	}
}

func (am *AssetManager) start() {
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			am.handleWatchEvent(e)

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(err.Error())

		case <-am.done:
			return
		}
	}
}

func (am *AssetManager) handleWatchEvent(e fsnotify.Event) {
	s, err := os.Stat(e.Name)
	if err == nil && s != nil && s.IsDir() {
		if e.Op&fsnotify.Create != 0 {
			if err := am.indexRecursive(e.Name, true); err != nil {
				core.LogError(err.Error())
			}
		}
		return
	}
	// Handle create or modify events
	if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
		if info, ok := am.handleFileEvent(e.Name); ok {
			am.forward(AssetEvent{Name: info.Name, Path: info.Path, Type: info.Type})
		}
	}
	// Can't stat a deleted directory, so just pretend that it's always a directory and
	// try to remove from the watch list.
	if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		if info, ok := am.removeAsset(e.Name); ok {
			am.forward(AssetEvent{Name: info.Name, Path: info.Path, Type: info.Type, Removed: true})
		}
		_ = am.fsnotify.Remove(e.Name)
	}
}

func (am *AssetManager) forward(e AssetEvent) {
	select {
	case am.events <- e:
	default:
		core.LogWarn("asset event queue full, dropping event for '%s'", e.Path)
	}
}

// indexRecursive indexes every file under the given directory and, when
// watch is set, adds the directories to the watch list.
func (am *AssetManager) indexRecursive(path string, watch bool) error {
	select {
	case <-am.done:
		return errors.New("asset manager already closed")
	default:
	}
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if watch {
				return am.fsnotify.Add(walkPath)
			}
			return nil
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

// Handle the creation or modification of a file
func (am *AssetManager) handleFileEvent(path string) (AssetInfo, bool) {
	assetType := metadata.ResourceTypeFromPath(path)
	if assetType == metadata.ResourceTypeNone {
		return AssetInfo{}, false
	}
	info := AssetInfo{
		Name: metadata.ResourceName(path),
		Path: path,
		Type: assetType,
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	key := assetKey{info.Name, assetType}
	if prev, ok := am.assets[key]; ok && prev.Path != path {
		core.LogWarn("asset '%s' at '%s' shadows '%s'", info.Name, path, prev.Path)
	}
	am.assets[key] = info
	return info, true
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) (AssetInfo, bool) {
	assetType := metadata.ResourceTypeFromPath(path)
	if assetType == metadata.ResourceTypeNone {
		return AssetInfo{}, false
	}
	key := assetKey{metadata.ResourceName(path), assetType}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	info, ok := am.assets[key]
	if !ok || info.Path != path {
		return AssetInfo{}, false
	}
	delete(am.assets, key)
	return info, true
}
