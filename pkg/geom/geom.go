// Package geom holds the small amount of 3D math shared by the composition
// engine: Euler/quaternion conversion, vector rotation and axis-aligned box
// helpers. Vectors and boxes are sdfx types; rotations are gonum quaternions.
package geom

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/num/quat"
)

// Transform is a world placement: a position plus an XYZ Euler rotation in
// radians.
type Transform struct {
	Position v3.Vec
	Rotation v3.Vec
}

// Axis unit vectors.
var (
	UnitX = v3.Vec{X: 1}
	UnitY = v3.Vec{Y: 1}
	UnitZ = v3.Vec{Z: 1}
)

// ---------------------------------------------------------------------------
// Rotation
// ---------------------------------------------------------------------------

// Identity is the identity rotation.
var Identity = quat.Number{Real: 1}

func axisAngle(axis v3.Vec, angle float64) quat.Number {
	s, c := math.Sincos(angle / 2)
	return quat.Number{Real: c, Imag: axis.X * s, Jmag: axis.Y * s, Kmag: axis.Z * s}
}

// FromEuler converts XYZ Euler angles (radians) to a unit quaternion.
// The X rotation is outermost, so the result applies Z, then Y, then X
// to a vector.
func FromEuler(e v3.Vec) quat.Number {
	if e.X == 0 && e.Y == 0 && e.Z == 0 {
		return Identity
	}
	q := quat.Mul(axisAngle(UnitX, e.X), axisAngle(UnitY, e.Y))
	return quat.Mul(q, axisAngle(UnitZ, e.Z))
}

// ToEuler converts a unit quaternion back to XYZ Euler angles (radians).
// Near gimbal lock the Z angle is reported as zero.
func ToEuler(q quat.Number) v3.Vec {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag

	m11 := 1 - 2*(y*y+z*z)
	m12 := 2 * (x*y - w*z)
	m13 := 2 * (x*z + w*y)
	m22 := 1 - 2*(x*x+z*z)
	m23 := 2 * (y*z - w*x)
	m32 := 2 * (y*z + w*x)
	m33 := 1 - 2*(x*x+y*y)

	var e v3.Vec
	e.Y = math.Asin(clamp(m13, -1, 1))
	if math.Abs(m13) < 0.9999999 {
		e.X = math.Atan2(-m23, m33)
		e.Z = math.Atan2(-m12, m11)
	} else {
		e.X = math.Atan2(m32, m22)
	}
	return e
}

// Rotate applies the unit quaternion q to v.
func Rotate(q quat.Number, v v3.Vec) v3.Vec {
	p := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	r := quat.Mul(quat.Mul(q, p), quat.Conj(q))
	return v3.Vec{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}

// Apply rotates p by the transform's rotation and then translates it.
func (t Transform) Apply(p v3.Vec) v3.Vec {
	return Rotate(FromEuler(t.Rotation), p).Add(t.Position)
}

// NormalizeAngle wraps a to the interval (-pi, pi].
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	} else if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

// ---------------------------------------------------------------------------
// Boxes
// ---------------------------------------------------------------------------

// TransformBox rotates the eight corners of a local box, translates them and
// returns the world-aligned box enclosing the result. The result is loose for
// rotations that are not multiples of a quarter turn.
func TransformBox(b sdf.Box3, t Transform) sdf.Box3 {
	q := FromEuler(t.Rotation)
	min := v3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	max := v3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for i := 0; i < 8; i++ {
		c := v3.Vec{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z}
		if i&1 != 0 {
			c.X = b.Max.X
		}
		if i&2 != 0 {
			c.Y = b.Max.Y
		}
		if i&4 != 0 {
			c.Z = b.Max.Z
		}
		w := Rotate(q, c).Add(t.Position)
		min = min.Min(w)
		max = max.Max(w)
	}
	return sdf.Box3{Min: min, Max: max}
}

// BoxesOverlap reports whether a and b overlap by more than eps on every
// axis. Boxes whose faces touch exactly do not overlap at eps = 0.
func BoxesOverlap(a, b sdf.Box3, eps float64) bool {
	return a.Min.X < b.Max.X-eps && a.Max.X > b.Min.X+eps &&
		a.Min.Y < b.Max.Y-eps && a.Max.Y > b.Min.Y+eps &&
		a.Min.Z < b.Max.Z-eps && a.Max.Z > b.Min.Z+eps
}

// BoxesIntersect reports whether a and b share any point, touching faces
// included.
func BoxesIntersect(a, b sdf.Box3) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y &&
		a.Min.Z <= b.Max.Z && a.Max.Z >= b.Min.Z
}

// Expand grows b by d on every side.
func Expand(b sdf.Box3, d float64) sdf.Box3 {
	v := v3.Vec{X: d, Y: d, Z: d}
	return sdf.Box3{Min: b.Min.Sub(v), Max: b.Max.Add(v)}
}

// DistanceSq returns the squared distance between a and b.
func DistanceSq(a, b v3.Vec) float64 {
	return a.Sub(b).Length2()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
