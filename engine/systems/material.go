package systems

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/prism/engine/assets"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/material"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

/** @brief The configuration for the material system. */
type MaterialSystemConfig struct {
	/** @brief The maximum number of loaded materials. */
	MaxMaterialCount uint32
}

type materialEntry struct {
	material *material.Material
	config   *metadata.MaterialConfig
	textures []string
}

/**
 * @brief Owns every material created from files or configs. Materials are
 * reference counted by name; values from configs always go through the
 * material setters so shader dirty tracking stays exact.
 */
type MaterialSystem struct {
	Config          *MaterialSystemConfig
	DefaultMaterial *material.Material
	// Hashtable for material lookups.
	RegisteredMaterialTable map[string]*metadata.MaterialReference

	materials map[uint32]*materialEntry
	ids       *core.IdentifierPool
	// sub systems
	textureSystem *TextureSystem
	assetManager  *assets.AssetManager
	events        *core.EventBus
}

func NewMaterialSystem(config *MaterialSystemConfig, ts *TextureSystem, am *assets.AssetManager, events *core.EventBus) (*MaterialSystem, error) {
	if config.MaxMaterialCount == 0 {
		err := fmt.Errorf("func NewMaterialSystem - config.MaxMaterialCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	if ts == nil {
		err := fmt.Errorf("func NewMaterialSystem - a texture system is required")
		core.LogError(err.Error())
		return nil, err
	}

	ms := &MaterialSystem{
		Config:                  config,
		RegisteredMaterialTable: make(map[string]*metadata.MaterialReference),
		materials:               make(map[uint32]*materialEntry),
		ids:                     core.NewIdentifierPool(int(config.MaxMaterialCount)),
		textureSystem:           ts,
		assetManager:            am,
		events:                  events,
	}

	ms.DefaultMaterial = material.NewStandardMaterial(metadata.DefaultMaterialName)
	ms.DefaultMaterial.ID = metadata.InvalidID
	ms.DefaultMaterial.Family = metadata.DefaultProgramFamily

	if events != nil {
		events.Register(core.EventCodeAssetChanged, ms, ms.onAssetChanged)
		events.Register(core.EventCodeProgramsInvalidated, ms, ms.onProgramsInvalidated)
	}
	return ms, nil
}

func (ms *MaterialSystem) Shutdown() error {
	if ms.events != nil {
		ms.events.Unregister(core.EventCodeAssetChanged, ms)
		ms.events.Unregister(core.EventCodeProgramsInvalidated, ms)
	}
	for id, e := range ms.materials {
		ms.releaseTextures(e.textures)
		e.material.ID = metadata.InvalidID
		delete(ms.materials, id)
	}
	clear(ms.RegisteredMaterialTable)
	return nil
}

/**
 * @brief Acquires a material by name, loading its file through the asset
 * manager on first use. The reference count is incremented.
 */
func (ms *MaterialSystem) Acquire(name string) (*material.Material, error) {
	if name == metadata.DefaultMaterialName {
		return ms.DefaultMaterial, nil
	}
	if m, ok := ms.acquireExisting(name); ok {
		return m, nil
	}
	cfg, err := ms.loadConfig(name)
	if err != nil {
		return nil, err
	}
	return ms.AcquireFromConfig(cfg)
}

/**
 * @brief Acquires a material from an in-memory configuration. If a
 * material of that name exists it is returned as is.
 */
func (ms *MaterialSystem) AcquireFromConfig(cfg *metadata.MaterialConfig) (*material.Material, error) {
	if cfg.Name == metadata.DefaultMaterialName {
		return ms.DefaultMaterial, nil
	}
	if m, ok := ms.acquireExisting(cfg.Name); ok {
		return m, nil
	}
	if uint32(len(ms.materials)) >= ms.Config.MaxMaterialCount {
		err := fmt.Errorf("material system cannot hold anymore materials. Adjust configuration to allow more")
		core.LogError(err.Error())
		return nil, err
	}

	m := material.NewStandardMaterial(cfg.Name)
	entry := &materialEntry{material: m}
	if err := ms.apply(entry, cfg); err != nil {
		return nil, err
	}
	m.ID = ms.ids.Acquire(m)
	ms.materials[m.ID] = entry
	ms.RegisteredMaterialTable[cfg.Name] = &metadata.MaterialReference{
		ReferenceCount: 1,
		Handle:         m.ID,
		AutoRelease:    cfg.AutoRelease,
	}
	core.LogDebug("material '%s' created with id %d", cfg.Name, m.ID)
	return m, nil
}

func (ms *MaterialSystem) acquireExisting(name string) (*material.Material, bool) {
	ref, ok := ms.RegisteredMaterialTable[name]
	if !ok {
		return nil, false
	}
	ref.ReferenceCount++
	return ms.materials[ref.Handle].material, true
}

func (ms *MaterialSystem) loadConfig(name string) (*metadata.MaterialConfig, error) {
	if ms.assetManager == nil {
		err := fmt.Errorf("%w: '%s' (no asset manager)", core.ErrUnknownMaterial, name)
		core.LogError(err.Error())
		return nil, err
	}
	res, err := ms.assetManager.LoadAsset(name, metadata.ResourceTypeMaterial, nil)
	if err != nil {
		err = fmt.Errorf("%w: '%s': %s", core.ErrUnknownMaterial, name, err.Error())
		core.LogError(err.Error())
		return nil, err
	}
	cfg, ok := res.Data.(*metadata.MaterialConfig)
	if !ok {
		err := fmt.Errorf("failed to type cast resource data to `*metadata.MaterialConfig`")
		core.LogError(err.Error())
		return nil, err
	}
	return cfg, nil
}

/**
 * @brief Releases a material. An auto released material is destroyed when
 * its reference count reaches zero.
 */
func (ms *MaterialSystem) Release(name string) {
	if name == metadata.DefaultMaterialName {
		return
	}
	ref, ok := ms.RegisteredMaterialTable[name]
	if !ok {
		core.LogWarn("tried to release non-existent material: '%s'", name)
		return
	}
	if ref.ReferenceCount == 0 {
		core.LogWarn("tried to release material '%s' with no references", name)
		return
	}
	ref.ReferenceCount--
	if ref.ReferenceCount > 0 || !ref.AutoRelease {
		return
	}

	entry := ms.materials[ref.Handle]
	ms.releaseTextures(entry.textures)
	delete(ms.materials, ref.Handle)
	delete(ms.RegisteredMaterialTable, name)
	if err := ms.ids.Release(ref.Handle); err != nil {
		core.LogError(err.Error())
	}
	entry.material.ID = metadata.InvalidID
	core.LogDebug("material '%s' released", name)
}

// Get returns a registered material without touching its reference count.
func (ms *MaterialSystem) Get(name string) (*material.Material, error) {
	if name == metadata.DefaultMaterialName {
		return ms.DefaultMaterial, nil
	}
	ref, ok := ms.RegisteredMaterialTable[name]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", core.ErrUnknownMaterial, name)
	}
	return ms.materials[ref.Handle].material, nil
}

// Materials returns every registered material plus the default one, ordered by id.
func (ms *MaterialSystem) Materials() []*material.Material {
	out := make([]*material.Material, 0, len(ms.materials)+1)
	out = append(out, ms.DefaultMaterial)
	ids := make([]uint32, 0, len(ms.materials))
	for id := range ms.materials {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		out = append(out, ms.materials[id].material)
	}
	return out
}

/**
 * @brief Applies a configuration to a registered material. Properties the
 * configuration omits return to their defaults.
 */
func (ms *MaterialSystem) ApplyConfig(name string, cfg *metadata.MaterialConfig) error {
	ref, ok := ms.RegisteredMaterialTable[name]
	if !ok {
		err := fmt.Errorf("%w: '%s'", core.ErrUnknownMaterial, name)
		core.LogError(err.Error())
		return err
	}
	return ms.apply(ms.materials[ref.Handle], cfg)
}

func (ms *MaterialSystem) apply(entry *materialEntry, cfg *metadata.MaterialConfig) error {
	m := entry.material
	registry := m.Kind().Registry

	// Start from the defaults so removed keys are reset, then overlay the
	// config. Every value is written once, through Set.
	targets := registry.Defaults()
	var acquired []string
	fail := func(err error) error {
		ms.releaseTextures(acquired)
		err = fmt.Errorf("material '%s': %w", cfg.Name, err)
		core.LogError(err.Error())
		return err
	}
	put := func(name string, v material.Value) error {
		d, ok := registry.Lookup(name)
		if !ok {
			return fmt.Errorf("%w: %s", core.ErrUnknownProperty, name)
		}
		if d.Kind != v.Kind() {
			return fmt.Errorf("%w: %s is %s, config gives %s", core.ErrPropertyKind, name, d.Kind, v.Kind())
		}
		targets[d.ID()] = v
		return nil
	}
	texture := func(name string) (*metadata.Texture, error) {
		t, err := ms.textureSystem.Acquire(name, true)
		if err != nil {
			return nil, err
		}
		acquired = append(acquired, name)
		return t, nil
	}

	shading, ok := shadingModels[cfg.ShadingModel]
	if !ok {
		return fail(fmt.Errorf("invalid shading model '%s'", cfg.ShadingModel))
	}
	fresnel, ok := fresnelModels[cfg.FresnelModel]
	if !ok {
		return fail(fmt.Errorf("invalid fresnel model '%s'", cfg.FresnelModel))
	}
	blend, ok := blendTypes[cfg.BlendType]
	if !ok {
		return fail(fmt.Errorf("invalid blend type '%s'", cfg.BlendType))
	}
	_ = put("shadingModel", material.Int(int(shading)))
	_ = put("fresnelModel", material.Int(int(fresnel)))
	_ = put("blendType", material.Int(int(blend)))
	for name, c := range cfg.Colours {
		if len(c) != 3 {
			return fail(fmt.Errorf("colour '%s' needs 3 values", name))
		}
		if err := put(name, material.Colour(mgl32.Vec3{c[0], c[1], c[2]})); err != nil {
			return fail(err)
		}
	}
	for name, f := range cfg.Floats {
		if err := put(name, material.Float(f)); err != nil {
			return fail(err)
		}
	}
	for name, b := range cfg.Flags {
		if err := put(name, material.Bool(b)); err != nil {
			return fail(err)
		}
	}
	for slotName, mc := range cfg.Maps {
		slot, ok := material.SlotByName(slotName)
		if !ok {
			return fail(fmt.Errorf("%w: texture slot %s", core.ErrUnknownProperty, slotName))
		}
		tex, err := texture(mc.Texture)
		if err != nil {
			return fail(err)
		}
		_ = put(slot.MapName(), material.Texture(tex))
		if mc.Channel != "" {
			_ = put(slot.ChannelName(), material.Str(mc.Channel))
		}
		_ = put(slot.UVName(), material.Int(int(mc.UV)))
		if len(mc.Tiling) == 2 {
			_ = put(slot.TilingName(), material.Vec2(mgl32.Vec2{mc.Tiling[0], mc.Tiling[1]}))
		}
		if len(mc.Offset) == 2 {
			_ = put(slot.OffsetName(), material.Vec2(mgl32.Vec2{mc.Offset[0], mc.Offset[1]}))
		}
		_ = put(slot.RotationName(), material.Float(mc.Rotation))
		if mc.VertexColor {
			if !slot.HasVertexColor() {
				return fail(fmt.Errorf("%w: %s has no vertex colour", core.ErrUnknownProperty, slotName))
			}
			_ = put(slot.VertexColorName(), material.Bool(true))
		}
	}
	for key, texName := range cfg.Environment {
		prop, ok := environmentProperties[key]
		if !ok {
			return fail(fmt.Errorf("%w: environment %s", core.ErrUnknownProperty, key))
		}
		tex, err := texture(texName)
		if err != nil {
			return fail(err)
		}
		_ = put(prop, material.Texture(tex))
	}

	chunks := make(map[string]string, len(cfg.Chunks))
	for chunk, assetName := range cfg.Chunks {
		src, err := ms.loadChunk(assetName)
		if err != nil {
			return fail(err)
		}
		chunks[chunk] = src
	}

	// Everything resolved, now write.
	for i, d := range registry.Descriptors() {
		if err := m.Set(d.Name, targets[i]); err != nil {
			return fail(err)
		}
	}
	for name := range m.Chunks() {
		if _, ok := chunks[name]; !ok {
			m.SetChunk(name, "")
		}
	}
	for name, src := range chunks {
		m.SetChunk(name, src)
	}
	family := cfg.Shader
	if family == "" {
		family = metadata.DefaultProgramFamily
	}
	if m.Family != family {
		m.Family = family
		m.MarkShaderDirty()
	}

	ms.releaseTextures(entry.textures)
	entry.textures = acquired
	entry.config = cfg
	return nil
}

func (ms *MaterialSystem) loadChunk(assetName string) (string, error) {
	if ms.assetManager == nil {
		return "", fmt.Errorf("chunk '%s' requested without an asset manager", assetName)
	}
	res, err := ms.assetManager.LoadAsset(assetName, metadata.ResourceTypeChunk, nil)
	if err != nil {
		return "", err
	}
	src, ok := res.Data.(string)
	if !ok {
		return "", fmt.Errorf("failed to type cast chunk '%s' data to string", assetName)
	}
	return src, nil
}

func (ms *MaterialSystem) releaseTextures(names []string) {
	for _, name := range names {
		ms.textureSystem.Release(name)
	}
}

// Reload reapplies the material file of a registered material.
func (ms *MaterialSystem) Reload(name string) error {
	cfg, err := ms.loadConfig(name)
	if err != nil {
		return err
	}
	if cfg.Name != name {
		err := fmt.Errorf("material file '%s' now declares name '%s'", name, cfg.Name)
		core.LogError(err.Error())
		return err
	}
	if err := ms.ApplyConfig(name, cfg); err != nil {
		return err
	}
	core.LogInfo("material '%s' reloaded", name)
	if ms.events != nil {
		ms.events.Fire(core.EventCodeMaterialReloaded, ms, core.EventContext{Name: name})
	}
	return nil
}

func (ms *MaterialSystem) usesChunk(e *materialEntry, assetName string) bool {
	if e.config == nil {
		return false
	}
	for _, a := range e.config.Chunks {
		if a == assetName {
			return true
		}
	}
	return false
}

func (ms *MaterialSystem) onAssetChanged(code core.SystemEventCode, sender, listener interface{}, data core.EventContext) bool {
	kind, ok := data.Data.(metadata.ResourceType)
	if !ok {
		return false
	}
	var names []string
	switch kind {
	case metadata.ResourceTypeMaterial:
		if _, ok := ms.RegisteredMaterialTable[data.Name]; ok {
			names = append(names, data.Name)
		}
	case metadata.ResourceTypeChunk:
		for name, ref := range ms.RegisteredMaterialTable {
			if ms.usesChunk(ms.materials[ref.Handle], data.Name) {
				names = append(names, name)
			}
		}
		sort.Strings(names)
	}
	for _, name := range names {
		// A broken file keeps the previous values; the error is already logged.
		if err := ms.Reload(name); err != nil {
			core.LogWarn("keeping previous state of material '%s'", name)
		}
	}
	return false
}

func (ms *MaterialSystem) onProgramsInvalidated(code core.SystemEventCode, sender, listener interface{}, data core.EventContext) bool {
	for _, m := range ms.Materials() {
		if m.Family == data.Name {
			m.MarkShaderDirty()
		}
	}
	return false
}

var shadingModels = map[string]material.ShadingModel{
	"":      material.ShadingBlinn,
	"phong": material.ShadingPhong,
	"blinn": material.ShadingBlinn,
}

var fresnelModels = map[string]material.FresnelModel{
	"":        material.FresnelSchlick,
	"none":    material.FresnelNone,
	"schlick": material.FresnelSchlick,
}

var blendTypes = map[string]material.BlendType{
	"":              material.BlendNone,
	"none":          material.BlendNone,
	"normal":        material.BlendNormal,
	"additive":      material.BlendAdditive,
	"premultiplied": material.BlendPremultiplied,
}

var environmentProperties = map[string]string{
	"cube_map":   "cubeMap",
	"sphere_map": "sphereMap",
	"env_atlas":  "envAtlas",
}
