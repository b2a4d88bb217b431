package geom

import (
	"math"
	"testing"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

const tol = 1e-9

func vecNear(a, b v3.Vec, eps float64) bool {
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps && math.Abs(a.Z-b.Z) < eps
}

func TestRotateQuarterTurns(t *testing.T) {
	tests := []struct {
		name  string
		euler v3.Vec
		in    v3.Vec
		want  v3.Vec
	}{
		{"identity", v3.Vec{}, v3.Vec{X: 1, Y: 2, Z: 3}, v3.Vec{X: 1, Y: 2, Z: 3}},
		{"y quarter", v3.Vec{Y: math.Pi / 2}, v3.Vec{X: 1}, v3.Vec{Z: -1}},
		{"x quarter", v3.Vec{X: math.Pi / 2}, v3.Vec{Y: 1}, v3.Vec{Z: 1}},
		{"z quarter", v3.Vec{Z: math.Pi / 2}, v3.Vec{X: 1}, v3.Vec{Y: 1}},
		{"y half", v3.Vec{Y: math.Pi}, v3.Vec{X: 1, Z: 1}, v3.Vec{X: -1, Z: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rotate(FromEuler(tt.euler), tt.in)
			if !vecNear(got, tt.want, tol) {
				t.Errorf("Rotate(%v, %v) = %v, want %v", tt.euler, tt.in, got, tt.want)
			}
		})
	}
}

func TestEulerOrderAppliesZFirst(t *testing.T) {
	// X then Z extrinsic equals Z then X intrinsic: +X -> +Y (Z) -> +Z (X).
	got := Rotate(FromEuler(v3.Vec{X: math.Pi / 2, Z: math.Pi / 2}), v3.Vec{X: 1})
	if !vecNear(got, v3.Vec{Z: 1}, tol) {
		t.Errorf("got %v, want (0,0,1)", got)
	}
}

func TestEulerRoundTrip(t *testing.T) {
	angles := []v3.Vec{
		{},
		{X: 0.3, Y: -0.4, Z: 1.2},
		{Y: math.Pi / 2 * 0.99},
		{X: -2.1, Y: 0.2, Z: 0.7},
	}
	for _, e := range angles {
		got := ToEuler(FromEuler(e))
		if !vecNear(got, e, 1e-7) {
			t.Errorf("round trip %v -> %v", e, got)
		}
	}
}

func TestNormalizeAngle(t *testing.T) {
	if got := NormalizeAngle(3 * math.Pi / 2); math.Abs(got+math.Pi/2) > tol {
		t.Errorf("NormalizeAngle(3pi/2) = %f", got)
	}
	if got := NormalizeAngle(-math.Pi); math.Abs(got-math.Pi) > tol {
		t.Errorf("NormalizeAngle(-pi) = %f", got)
	}
	if got := NormalizeAngle(2 * math.Pi); math.Abs(got) > tol {
		t.Errorf("NormalizeAngle(2pi) = %f", got)
	}
}

func TestTransformBox(t *testing.T) {
	local := sdf.Box3{Min: v3.Vec{X: -2, Y: 0, Z: -1}, Max: v3.Vec{X: 2, Y: 3, Z: 1}}

	got := TransformBox(local, Transform{Position: v3.Vec{X: 10}})
	if !vecNear(got.Min, v3.Vec{X: 8, Y: 0, Z: -1}, tol) || !vecNear(got.Max, v3.Vec{X: 12, Y: 3, Z: 1}, tol) {
		t.Errorf("translated box = %v", got)
	}

	// A quarter turn about Y swaps the X and Z extents.
	got = TransformBox(local, Transform{Rotation: v3.Vec{Y: math.Pi / 2}})
	if !vecNear(got.Min, v3.Vec{X: -1, Y: 0, Z: -2}, tol) || !vecNear(got.Max, v3.Vec{X: 1, Y: 3, Z: 2}, tol) {
		t.Errorf("rotated box = %v", got)
	}

	// An eighth turn produces a loose enclosing box.
	unit := sdf.Box3{Min: v3.Vec{X: -1, Y: -1, Z: -1}, Max: v3.Vec{X: 1, Y: 1, Z: 1}}
	got = TransformBox(unit, Transform{Rotation: v3.Vec{Y: math.Pi / 4}})
	if math.Abs(got.Max.X-math.Sqrt2) > tol {
		t.Errorf("eighth turn max X = %f, want %f", got.Max.X, math.Sqrt2)
	}
}

func TestBoxesOverlap(t *testing.T) {
	a := sdf.Box3{Min: v3.Vec{X: 0, Y: 0, Z: 0}, Max: v3.Vec{X: 1, Y: 1, Z: 1}}
	tests := []struct {
		name string
		b    sdf.Box3
		eps  float64
		want bool
	}{
		{"touching faces", sdf.Box3{Min: v3.Vec{X: 1}, Max: v3.Vec{X: 2, Y: 1, Z: 1}}, 0, false},
		{"intersecting", sdf.Box3{Min: v3.Vec{X: 0.5}, Max: v3.Vec{X: 1.5, Y: 1, Z: 1}}, 0, true},
		{"shallow within eps", sdf.Box3{Min: v3.Vec{X: 0.99}, Max: v3.Vec{X: 2, Y: 1, Z: 1}}, 0.02, false},
		{"separated", sdf.Box3{Min: v3.Vec{X: 3}, Max: v3.Vec{X: 4, Y: 1, Z: 1}}, 0, false},
		{"contained", sdf.Box3{Min: v3.Vec{X: 0.2, Y: 0.2, Z: 0.2}, Max: v3.Vec{X: 0.8, Y: 0.8, Z: 0.8}}, 0, true},
		{"stacked on top", sdf.Box3{Min: v3.Vec{Y: 1}, Max: v3.Vec{X: 1, Y: 2, Z: 1}}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BoxesOverlap(a, tt.b, tt.eps); got != tt.want {
				t.Errorf("BoxesOverlap = %v, want %v", got, tt.want)
			}
			if got := BoxesOverlap(tt.b, a, tt.eps); got != tt.want {
				t.Errorf("BoxesOverlap (swapped) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBoxesIntersectIncludesTouching(t *testing.T) {
	a := sdf.Box3{Max: v3.Vec{X: 1, Y: 1, Z: 1}}
	b := sdf.Box3{Min: v3.Vec{X: 1}, Max: v3.Vec{X: 2, Y: 1, Z: 1}}
	if !BoxesIntersect(a, b) {
		t.Error("touching boxes do not intersect")
	}
	b = sdf.Box3{Min: v3.Vec{X: 1.01}, Max: v3.Vec{X: 2, Y: 1, Z: 1}}
	if BoxesIntersect(a, b) {
		t.Error("separated boxes intersect")
	}
}

func TestExpand(t *testing.T) {
	b := Expand(sdf.Box3{Max: v3.Vec{X: 1, Y: 1, Z: 1}}, 0.5)
	if !vecNear(b.Min, v3.Vec{X: -0.5, Y: -0.5, Z: -0.5}, tol) || !vecNear(b.Max, v3.Vec{X: 1.5, Y: 1.5, Z: 1.5}, tol) {
		t.Errorf("Expand = %v", b)
	}
}
