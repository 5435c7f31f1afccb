package composition

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// lightClusterCache hands out one LightClusters per distinct local light
// set. Rebuilt with the composition.
type lightClusterCache struct {
	empty   *metadata.LightClusters
	byKey   map[string]*metadata.LightClusters
	entries []*metadata.LightClusters
}

func newLightClusterCache() *lightClusterCache {
	empty := &metadata.LightClusters{ID: 0}
	return &lightClusterCache{
		empty:   empty,
		byKey:   make(map[string]*metadata.LightClusters),
		entries: []*metadata.LightClusters{empty},
	}
}

func (c *lightClusterCache) reset() {
	clear(c.byKey)
	for i := 1; i < len(c.entries); i++ {
		c.entries[i] = nil
	}
	c.entries = c.entries[:1]
}

// forLayer returns the clusters for the layer's enabled local lights.
func (c *lightClusterCache) forLayer(layer *metadata.Layer) *metadata.LightClusters {
	local := layer.LocalLights()
	if len(local) == 0 {
		return c.empty
	}
	key := localLightsKey(local)
	if clusters, ok := c.byKey[key]; ok {
		return clusters
	}
	clusters := &metadata.LightClusters{
		ID:     uint32(len(c.entries)),
		Lights: local,
	}
	c.byKey[key] = clusters
	c.entries = append(c.entries, clusters)
	return clusters
}

func (c *lightClusterCache) count() int {
	return len(c.entries)
}

// localLightsKey identifies a light set independent of order.
func localLightsKey(lights []*metadata.Light) string {
	ids := make([]string, len(lights))
	for i, l := range lights {
		ids[i] = fmt.Sprintf("%p", l)
	}
	sort.Strings(ids)
	return strings.Join(ids, ",")
}
