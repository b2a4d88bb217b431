package snap

import (
	"math"

	"github.com/chazu/prefab/pkg/composition"
	"github.com/chazu/prefab/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// face is one side of a module's local bounding box as seen from a
// connector.
type face struct {
	normal   v3.Vec
	dist     float64 // connector distance to the face plane
	extent   float64 // box size along the normal
	cardinal bool    // horizontal face (+-X, +-Z)
}

func facesAround(size, lo, hi, p v3.Vec) [6]face {
	return [6]face{
		{normal: geom.UnitX, dist: math.Abs(hi.X - p.X), extent: size.X, cardinal: true},
		{normal: geom.UnitX.Neg(), dist: math.Abs(p.X - lo.X), extent: size.X, cardinal: true},
		{normal: geom.UnitY, dist: math.Abs(hi.Y - p.Y), extent: size.Y},
		{normal: geom.UnitY.Neg(), dist: math.Abs(p.Y - lo.Y), extent: size.Y},
		{normal: geom.UnitZ, dist: math.Abs(hi.Z - p.Z), extent: size.Z, cardinal: true},
		{normal: geom.UnitZ.Neg(), dist: math.Abs(p.Z - lo.Z), extent: size.Z, cardinal: true},
	}
}

// localDirections returns the outward normals for c in module space, or
// false when the module bounds cannot decide. A connector that sits about
// as close to several faces as to its nearest one expands into the
// cardinal normals in that band, or all four when none of them are.
func (s *Manager) localDirections(m *composition.Module, c *composition.Connector) ([]v3.Vec, bool) {
	b, ok := m.LocalBounds()
	if !ok {
		return nil, false
	}
	size := b.Max.Sub(b.Min)
	minExtent := math.Inf(1)
	for _, e := range []float64{size.X, size.Y, size.Z} {
		if e > 0 && e < minExtent {
			minExtent = e
		}
	}
	if math.IsInf(minExtent, 1) {
		return nil, false
	}

	faces := facesAround(size, b.Min, b.Max, c.Def.Position)
	nearest := 0
	for i := 1; i < len(faces); i++ {
		if faces[i].dist < faces[nearest].dist {
			nearest = i
		}
	}

	band := s.opts.AmbiguityRatio * minExtent
	ambiguous := false
	for i, f := range faces {
		if i != nearest && f.dist-faces[nearest].dist <= band {
			ambiguous = true
			break
		}
	}

	if ambiguous {
		var dirs []v3.Vec
		for _, f := range faces {
			if f.cardinal && f.dist-faces[nearest].dist <= band {
				dirs = append(dirs, f.normal)
			}
		}
		if len(dirs) == 0 {
			for _, f := range faces {
				if f.cardinal {
					dirs = append(dirs, f.normal)
				}
			}
		}
		return dirs, true
	}

	f := faces[nearest]
	if f.dist > s.opts.FaceToleranceRatio*f.extent {
		return nil, false
	}
	return []v3.Vec{f.normal}, true
}

// Directions returns the world-space outward directions of connector c on
// module m. Without a decisive face the connector's own +Z, rotated by the
// module and connector rotations, is used.
func (s *Manager) Directions(m *composition.Module, c *composition.Connector) []v3.Vec {
	local, ok := s.localDirections(m, c)
	if !ok {
		return []v3.Vec{geom.Rotate(m.ConnectorWorldQuat(c), geom.UnitZ)}
	}
	q := m.Quat()
	out := make([]v3.Vec, len(local))
	for i, d := range local {
		out[i] = geom.Rotate(q, d)
	}
	return out
}
