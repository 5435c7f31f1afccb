package systems

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type TextureSystemConfig struct {
	/** @brief The maximum number of textures that can be registered at once. */
	MaxTextureCount uint32
}

/**
 * @brief Registry of texture handles by name. Pixel data is owned by the
 * backend; the system only tracks the properties materials and shaders read.
 */
type TextureSystem struct {
	Config               *TextureSystemConfig
	DefaultTexture       *metadata.Texture
	DefaultNormalTexture *metadata.Texture
	// Hashtable for texture lookups.
	RegisteredTextureTable map[string]*metadata.TextureReference
	// Registered textures by handle.
	textures map[uint32]*metadata.Texture
	ids      *core.IdentifierPool
}

func NewTextureSystem(config *TextureSystemConfig) (*TextureSystem, error) {
	if config.MaxTextureCount == 0 {
		err := fmt.Errorf("func NewTextureSystem - config.MaxTextureCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}

	ts := &TextureSystem{
		Config:                 config,
		RegisteredTextureTable: make(map[string]*metadata.TextureReference),
		textures:               make(map[uint32]*metadata.Texture),
		ids:                    core.NewIdentifierPool(int(config.MaxTextureCount)),
	}

	// Create default textures for use in the system.
	ts.DefaultTexture = &metadata.Texture{
		ID:     metadata.InvalidID,
		Name:   metadata.DEFAULT_TEXTURE_NAME,
		Format: metadata.TextureFormatRGBA8,
		Width:  256,
		Height: 256,
	}
	ts.DefaultNormalTexture = &metadata.Texture{
		ID:     metadata.InvalidID,
		Name:   metadata.DEFAULT_NORMAL_TEXTURE_NAME,
		Format: metadata.TextureFormatRGBA8,
		Width:  1,
		Height: 1,
	}
	return ts, nil
}

func (ts *TextureSystem) Shutdown() error {
	for id, t := range ts.textures {
		t.ID = metadata.InvalidID
		t.Generation = metadata.InvalidID
		t.InternalData = nil
		delete(ts.textures, id)
	}
	clear(ts.RegisteredTextureTable)
	return nil
}

/**
 * @brief Registers a texture described by the configuration. The texture is
 * not reference counted until acquired.
 */
func (ts *TextureSystem) Create(config metadata.TextureConfig) (*metadata.Texture, error) {
	if config.Name == "" {
		err := fmt.Errorf("func Create - texture name cannot be empty")
		core.LogError(err.Error())
		return nil, err
	}
	if _, ok := ts.RegisteredTextureTable[config.Name]; ok || ts.isDefault(config.Name) {
		err := fmt.Errorf("func Create - texture '%s' already exists", config.Name)
		core.LogError(err.Error())
		return nil, err
	}
	textureType, ok := metadata.ParseTextureType(config.Type)
	if !ok {
		err := fmt.Errorf("func Create - texture '%s' has unknown type '%s'", config.Name, config.Type)
		core.LogError(err.Error())
		return nil, err
	}
	format, ok := metadata.ParseTextureFormat(config.Format)
	if !ok {
		err := fmt.Errorf("func Create - texture '%s' has unknown format '%s'", config.Name, config.Format)
		core.LogError(err.Error())
		return nil, err
	}

	t := &metadata.Texture{
		Name:            config.Name,
		Type:            textureType,
		Format:          format,
		Cubemap:         config.Cubemap,
		FixCubemapSeams: config.FixCubemapSeams,
		Width:           config.Width,
		Height:          config.Height,
	}
	if err := ts.register(t, false); err != nil {
		return nil, err
	}
	return t, nil
}

func (ts *TextureSystem) isDefault(name string) bool {
	return name == metadata.DEFAULT_TEXTURE_NAME || name == metadata.DEFAULT_NORMAL_TEXTURE_NAME
}

func (ts *TextureSystem) register(t *metadata.Texture, autoRelease bool) error {
	if uint32(len(ts.textures)) >= ts.Config.MaxTextureCount {
		err := fmt.Errorf("texture system cannot hold anymore textures. Adjust configuration to allow more")
		core.LogError(err.Error())
		return err
	}
	t.ID = ts.ids.Acquire(t)
	ts.textures[t.ID] = t
	ts.RegisteredTextureTable[t.Name] = &metadata.TextureReference{
		Handle:      t.ID,
		AutoRelease: autoRelease,
	}
	return nil
}

/**
 * @brief Acquires a texture by name, incrementing its reference count. A
 * name that was never registered gets a plain rgba8 handle.
 */
func (ts *TextureSystem) Acquire(name string, autoRelease bool) (*metadata.Texture, error) {
	switch name {
	case metadata.DEFAULT_TEXTURE_NAME:
		return ts.DefaultTexture, nil
	case metadata.DEFAULT_NORMAL_TEXTURE_NAME:
		return ts.DefaultNormalTexture, nil
	case "":
		err := fmt.Errorf("func Acquire - texture name cannot be empty")
		core.LogError(err.Error())
		return nil, err
	}

	ref, ok := ts.RegisteredTextureTable[name]
	if !ok {
		core.LogDebug("creating texture handle '%s'", name)
		t := &metadata.Texture{Name: name, Format: metadata.TextureFormatRGBA8}
		if err := ts.register(t, autoRelease); err != nil {
			return nil, err
		}
		ref = ts.RegisteredTextureTable[name]
	} else if ref.ReferenceCount == 0 {
		ref.AutoRelease = autoRelease
	}
	ref.ReferenceCount++
	return ts.textures[ref.Handle], nil
}

/**
 * @brief Releases a texture. An auto released texture is unregistered when
 * its reference count reaches zero.
 */
func (ts *TextureSystem) Release(name string) {
	if ts.isDefault(name) {
		return
	}
	ref, ok := ts.RegisteredTextureTable[name]
	if !ok {
		core.LogWarn("tried to release non-existent texture: '%s'", name)
		return
	}
	if ref.ReferenceCount == 0 {
		core.LogWarn("tried to release texture '%s' with no references", name)
		return
	}
	ref.ReferenceCount--
	if ref.ReferenceCount > 0 || !ref.AutoRelease {
		return
	}

	t := ts.textures[ref.Handle]
	delete(ts.textures, ref.Handle)
	delete(ts.RegisteredTextureTable, name)
	if err := ts.ids.Release(ref.Handle); err != nil {
		core.LogError(err.Error())
	}
	t.ID = metadata.InvalidID
	t.Generation = metadata.InvalidID
	core.LogDebug("texture '%s' released", name)
}

// Get returns a registered texture without touching its reference count.
func (ts *TextureSystem) Get(name string) (*metadata.Texture, error) {
	if name == metadata.DEFAULT_TEXTURE_NAME {
		return ts.DefaultTexture, nil
	}
	if name == metadata.DEFAULT_NORMAL_TEXTURE_NAME {
		return ts.DefaultNormalTexture, nil
	}
	ref, ok := ts.RegisteredTextureTable[name]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", core.ErrUnknownTexture, name)
	}
	return ts.textures[ref.Handle], nil
}

func (ts *TextureSystem) SetInternal(texture *metadata.Texture, internalData interface{}) bool {
	if texture != nil {
		texture.InternalData = internalData
		texture.Generation++
		return true
	}
	return false
}

func (ts *TextureSystem) GetDefaultTexture() *metadata.Texture {
	return ts.DefaultTexture
}

func (ts *TextureSystem) GetDefaultNormalTexture() *metadata.Texture {
	return ts.DefaultNormalTexture
}
