// Package tessellate builds massing meshes for a composition: one mesh
// per placed module, shaped by its bounding volume and world transform.
package tessellate

import (
	"fmt"
	"math"
	"runtime"

	"github.com/chazu/prefab/pkg/composition"
	"github.com/chazu/prefab/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	"golang.org/x/sync/errgroup"
)

const radToDeg = 180 / math.Pi

// Tessellate produces one mesh per module with known bounds, in the
// composition's module order. Modules without bounds, and volumes too
// thin for the kernel's resolution, are skipped. Modules are meshed in
// parallel, so k must be safe for concurrent use. The composition is not
// modified.
func Tessellate(c *composition.Composition, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if c == nil {
		return nil, nil
	}

	modules := c.Modules()
	meshes := make([]*kernel.Mesh, len(modules))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, m := range modules {
		local, ok := m.LocalBounds()
		if !ok {
			continue
		}
		id := m.ID
		solid := solidFor(k, local, m)
		g.Go(func() error {
			mesh, err := k.ToMesh(solid)
			if err != nil {
				return fmt.Errorf("tessellate: module %s: %w", id, err)
			}
			mesh.ModuleID = id
			meshes[i] = mesh
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := meshes[:0]
	for _, mesh := range meshes {
		if mesh != nil && !mesh.IsEmpty() {
			out = append(out, mesh)
		}
	}
	return out, nil
}

// solidFor places a box matching local at the module's world transform.
// Rotation is applied before translation, as for world bounds.
func solidFor(k kernel.Kernel, local sdf.Box3, m *composition.Module) kernel.Solid {
	size := local.Size()
	center := local.Center()
	s := k.Translate(k.Box(size.X, size.Y, size.Z), center.X, center.Y, center.Z)

	if r := m.Rotation(); r.X != 0 || r.Y != 0 || r.Z != 0 {
		s = k.Rotate(s, r.X*radToDeg, r.Y*radToDeg, r.Z*radToDeg)
	}
	if p := m.Position(); p.X != 0 || p.Y != 0 || p.Z != 0 {
		s = k.Translate(s, p.X, p.Y, p.Z)
	}
	return s
}
