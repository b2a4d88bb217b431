package design

import (
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

func TestDragCoalescesMoves(t *testing.T) {
	c := newController(t)
	m := mustCreate(t, c, "cube", v3.Vec{})
	frames := &ManualFrames{}

	d, ok := c.BeginDrag(m.ID, frames)
	if !ok {
		t.Fatal("BeginDrag failed")
	}
	for i := 1; i <= 5; i++ {
		d.Move(v3.Vec{Z: float64(i)})
	}
	if frames.Pending() != 1 {
		t.Fatalf("scheduled %d frames, want 1", frames.Pending())
	}
	if n := frames.Run(); n != 1 {
		t.Errorf("ran %d frames", n)
	}
	if !vecNear(m.Position(), v3.Vec{Z: 5}) {
		t.Errorf("position = %v, want last target", m.Position())
	}

	d.Move(v3.Vec{Z: 6})
	if frames.Pending() != 1 {
		t.Error("next frame not scheduled")
	}
	if !d.End() {
		t.Fatal("gesture not recorded")
	}
	if !vecNear(m.Position(), v3.Vec{Z: 6}) {
		t.Errorf("End did not flush the pending move: %v", m.Position())
	}
	frames.Run()
	if !vecNear(m.Position(), v3.Vec{Z: 6}) {
		t.Error("stale frame ran after End")
	}

	if u, _ := c.History().Depth(); u != 2 {
		t.Errorf("undo depth = %d, want create + drag", u)
	}
	c.Undo()
	if got := c.Composition().Module(m.ID).Position(); !vecNear(got, v3.Vec{}) {
		t.Errorf("undo left module at %v", got)
	}
}

func TestDragCommitsWithinDistance(t *testing.T) {
	c := newController(t)
	mustCreate(t, c, "cube", v3.Vec{})
	b := mustCreate(t, c, "cube", v3.Vec{X: 3})
	frames := &ManualFrames{}

	d, _ := c.BeginDrag(b.ID, frames)
	d.Move(v3.Vec{X: 1.04})
	frames.Run()
	if !d.Locked() {
		t.Fatal("drag did not lock on commit")
	}
	if !near(b.Position().X, 1) || c.Composition().Graph().Len() != 1 {
		t.Fatalf("after commit: x=%v, connections=%d", b.Position().X, c.Composition().Graph().Len())
	}

	d.Move(v3.Vec{X: 8})
	if frames.Pending() != 0 {
		t.Error("locked drag scheduled work")
	}
	d.End()
	if !near(b.Position().X, 1) {
		t.Errorf("locked drag moved to %v", b.Position())
	}

	c.Undo()
	if got := c.Composition().Module(b.ID).Position().X; !near(got, 3) {
		t.Errorf("undo restored x=%v, want 3", got)
	}
	if c.Composition().Graph().Len() != 0 {
		t.Error("undo kept the connection")
	}
}

func TestDragMagnetThenCommitOnEnd(t *testing.T) {
	c := newController(t)
	mustCreate(t, c, "cube", v3.Vec{})
	b := mustCreate(t, c, "cube", v3.Vec{X: 3})
	frames := &ManualFrames{}

	d, _ := c.BeginDrag(b.ID, frames)
	d.Move(v3.Vec{X: 1.2})
	frames.Run()
	if d.Locked() || c.Composition().Graph().Len() != 0 {
		t.Fatal("committed outside the commit distance")
	}
	if !near(b.Position().X, 1.1) {
		t.Errorf("magnet position = %v, want 1.1", b.Position().X)
	}

	d.End()
	if !near(b.Position().X, 1) || c.Composition().Graph().Len() != 1 {
		t.Errorf("End did not commit: x=%v", b.Position().X)
	}
}

func TestDragWithoutMovementJoinsNothing(t *testing.T) {
	tests := []struct {
		name  string
		moves []v3.Vec
	}{
		{"press and release", nil},
		{"move to the current position", []v3.Vec{{X: 1.2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newController(t)
			mustCreate(t, c, "cube", v3.Vec{})
			b := mustCreate(t, c, "cube", v3.Vec{X: 1.2})
			frames := &ManualFrames{}

			d, _ := c.BeginDrag(b.ID, frames)
			for _, m := range tt.moves {
				d.Move(m)
			}
			frames.Run()
			if d.End() {
				t.Error("gesture without movement recorded")
			}
			if n := c.Composition().Graph().Len(); n != 0 {
				t.Errorf("connections = %d, want 0", n)
			}
			if !vecNear(b.Position(), v3.Vec{X: 1.2}) {
				t.Errorf("position = %v, want unchanged", b.Position())
			}
			if u, _ := c.History().Depth(); u != 2 {
				t.Errorf("undo depth = %d, want the two creates", u)
			}
		})
	}
}

func TestDragWithoutCandidate(t *testing.T) {
	c := newController(t)
	mustCreate(t, c, "cube", v3.Vec{})
	b := mustCreate(t, c, "cube", v3.Vec{X: 3})
	frames := &ManualFrames{}

	d, _ := c.BeginDrag(b.ID, frames)
	d.Move(v3.Vec{X: 4})
	d.End()
	if !near(b.Position().X, 4) || c.Composition().Graph().Len() != 0 {
		t.Errorf("x=%v connections=%d", b.Position().X, c.Composition().Graph().Len())
	}
}

func TestDragRotation(t *testing.T) {
	c := newController(t)
	a, b, _ := chain(t, c)
	frames := &ManualFrames{}

	d, _ := c.BeginDrag(b.ID, frames)
	if d.CanRotate() || d.Rotate(1) {
		t.Error("connected module rotated during drag")
	}
	d.End()

	c.Disjoin(a.ID)
	d, _ = c.BeginDrag(a.ID, frames)
	if !d.CanRotate() || !d.Rotate(1) {
		t.Error("free module could not rotate during drag")
	}
	d.End()

	if _, ok := c.BeginDrag("module_99", frames); ok {
		t.Error("drag on unknown module")
	}
}
