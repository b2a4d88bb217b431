// Package inspect derives the facts the composition engine needs from a
// module definition's geometry: a local bounding box and the connectors
// encoded as named scene markers.
package inspect

import (
	"sync"

	"github.com/chazu/prefab/pkg/composition"
	"github.com/chazu/prefab/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Result is the outcome of inspecting one definition.
type Result struct {
	Bounds     *sdf.Box3 // nil when the definition has no usable size
	Connectors []composition.ConnectorDef
}

// Inspector builds module volumes through a geometry kernel. Results are
// cached per definition.
type Inspector struct {
	kernel kernel.Kernel

	mu    sync.Mutex
	cache map[*composition.Definition]Result
}

// New returns an Inspector backed by k.
func New(k kernel.Kernel) *Inspector {
	return &Inspector{kernel: k, cache: make(map[*composition.Definition]Result)}
}

// Inspect returns the local bounds and marker connectors for def.
func (i *Inspector) Inspect(def *composition.Definition) Result {
	i.mu.Lock()
	defer i.mu.Unlock()

	if r, ok := i.cache[def]; ok {
		return r
	}
	r := Result{
		Bounds:     i.bounds(def.Geometry),
		Connectors: ConnectorsFromMarkers(def.Geometry.Markers),
	}
	i.cache[def] = r
	return r
}

// bounds models the geometry as a box of its size, applies the authoring
// rotation, then recenters it on X and Z with its base at y = 0.
func (i *Inspector) bounds(g composition.Geometry) *sdf.Box3 {
	if g.Size.X <= 0 || g.Size.Y <= 0 || g.Size.Z <= 0 {
		return nil
	}
	solid := i.kernel.Box(g.Size.X, g.Size.Y, g.Size.Z)
	if g.Rotation != (v3.Vec{}) {
		solid = i.kernel.Rotate(solid, g.Rotation.X, g.Rotation.Y, g.Rotation.Z)
	}
	min, max := solid.BoundingBox()
	solid = i.kernel.Translate(solid, -(min[0]+max[0])/2, -min[1], -(min[2]+max[2])/2)

	min, max = solid.BoundingBox()
	return &sdf.Box3{
		Min: v3.Vec{X: min[0], Y: min[1], Z: min[2]},
		Max: v3.Vec{X: max[0], Y: max[1], Z: max[2]},
	}
}
