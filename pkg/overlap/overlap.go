// Package overlap detects intersections between placed modules using
// world-aligned boxes around their rotated local bounds, and resolves
// placement conflicts by nudging modules outward.
package overlap

import (
	"slices"

	"github.com/chazu/prefab/pkg/composition"
	"github.com/chazu/prefab/pkg/geom"
	"github.com/deadsy/sdfx/sdf"
)

// CalculateWorldBoundingBox transforms the eight corners of m's local box by
// its current rotation and position and returns their per-axis extent.
// Modules without registered geometry report false.
func CalculateWorldBoundingBox(m *composition.Module) (sdf.Box3, bool) {
	local, ok := m.LocalBounds()
	if !ok {
		return sdf.Box3{}, false
	}
	return geom.TransformBox(local, m.Transform()), true
}

// DoBoxesOverlap reports whether a and b overlap by more than epsilon on
// all three axes. Exactly touching faces do not overlap at epsilon = 0.
func DoBoxesOverlap(a, b sdf.Box3, epsilon float64) bool {
	return geom.BoxesOverlap(a, b, epsilon)
}

// HasBlockingOverlap reports whether m overlaps any candidate other than
// itself and the ignored ids.
func HasBlockingOverlap(m *composition.Module, candidates []*composition.Module, epsilon float64, ignore ...string) bool {
	mb, ok := m.WorldBounds()
	if !ok {
		return false
	}
	for _, other := range candidates {
		if other.ID == m.ID || slices.Contains(ignore, other.ID) {
			continue
		}
		ob, ok := other.WorldBounds()
		if !ok {
			continue
		}
		if DoBoxesOverlap(mb, ob, epsilon) {
			return true
		}
	}
	return false
}

// FindOverlapping returns the candidates that m overlaps.
func FindOverlapping(m *composition.Module, candidates []*composition.Module, epsilon float64) []*composition.Module {
	mb, ok := m.WorldBounds()
	if !ok {
		return nil
	}
	var out []*composition.Module
	for _, other := range candidates {
		if other.ID == m.ID {
			continue
		}
		if ob, ok := other.WorldBounds(); ok && DoBoxesOverlap(mb, ob, epsilon) {
			out = append(out, other)
		}
	}
	return out
}
