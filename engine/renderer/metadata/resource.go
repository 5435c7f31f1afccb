package metadata

import "path/filepath"

/** @brief Pre-defined resource types. */
type ResourceType int

const (
	ResourceTypeNone ResourceType = iota
	/** @brief Material resource type, a .toml material file. */
	ResourceTypeMaterial
	/** @brief Shader chunk resource type, a .glsl source file. */
	ResourceTypeChunk
)

func (t ResourceType) String() string {
	switch t {
	case ResourceTypeMaterial:
		return "material"
	case ResourceTypeChunk:
		return "chunk"
	default:
		return "none"
	}
}

// ResourceTypeFromPath maps a file extension to its resource type.
func ResourceTypeFromPath(path string) ResourceType {
	switch filepath.Ext(path) {
	case ".toml":
		return ResourceTypeMaterial
	case ".glsl":
		return ResourceTypeChunk
	default:
		return ResourceTypeNone
	}
}

// ResourceName is the name an asset is referenced by: its file name
// without extension.
func ResourceName(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}

/** @brief A generic structure for a resource. */
type Resource struct {
	/** @brief The name of the resource. */
	Name string
	/** @brief The type of the resource. */
	Type ResourceType
	/** @brief The full file path of the resource. */
	FullPath string
	/** @brief The size of the resource data in bytes. */
	DataSize uint64
	/** @brief The resource data. */
	Data interface{}
}
