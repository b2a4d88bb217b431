// Package kernel defines the abstract geometry kernel used to derive module
// volumes from catalog geometry. Implementations wrap a solid modeling
// library behind this interface so the rest of the system never depends on
// one directly.
package kernel

// Solid is an opaque handle to a geometry kernel solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel builds, transforms and tessellates solids.
type Kernel interface {
	// Box returns a box of the given size centered on the origin.
	Box(x, y, z float64) Solid

	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// ToMesh tessellates a solid into triangles.
	ToMesh(s Solid) (*Mesh, error)
}

// Size returns the extent of a solid's bounding box.
func Size(s Solid) [3]float64 {
	min, max := s.BoundingBox()
	return [3]float64{max[0] - min[0], max[1] - min[1], max[2] - min[2]}
}
