package loaders

import (
	"fmt"
	"os"
	"strings"

	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// ChunkLoader reads a shader chunk override from a .glsl file.
type ChunkLoader struct{}

func (cl *ChunkLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, fmt.Errorf("chunk file '%s' is empty", path)
	}
	return &metadata.Resource{
		Name:     metadata.ResourceName(path),
		Type:     assetType,
		FullPath: path,
		DataSize: uint64(len(data)),
		Data:     string(data),
	}, nil
}

func (cl *ChunkLoader) Unload(*metadata.Resource) error {
	return nil
}
