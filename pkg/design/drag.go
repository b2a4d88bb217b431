package design

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// FrameScheduler runs fn once at the next frame.
type FrameScheduler interface {
	Schedule(fn func())
}

// ManualFrames queues scheduled work until Run is called. Tests and the
// command line drive drags with it.
type ManualFrames struct {
	queue []func()
}

// Schedule queues fn.
func (f *ManualFrames) Schedule(fn func()) { f.queue = append(f.queue, fn) }

// Pending returns the number of queued callbacks.
func (f *ManualFrames) Pending() int { return len(f.queue) }

// Run executes queued callbacks, including any they schedule, and returns
// how many ran.
func (f *ManualFrames) Run() int {
	n := 0
	for len(f.queue) > 0 {
		fn := f.queue[0]
		f.queue = f.queue[1:]
		fn()
		n++
	}
	return n
}

// Drag is one pointer gesture on a module. Pointer moves are coalesced so
// that at most one evaluation runs per frame, and the whole gesture lands
// in history as a single entry.
type Drag struct {
	c      *Controller
	id     string
	frames FrameScheduler

	canRotate bool
	pending   *v3.Vec
	scheduled bool
	locked    bool
	ended     bool
	// moved is set once a flush actually displaced the module.
	moved     bool
}

// BeginDrag starts dragging module id. Modules connected to it move with
// it. Rotation is only allowed when the module was free when the drag
// began.
func (c *Controller) BeginDrag(id string, frames FrameScheduler) (*Drag, bool) {
	if c.comp.Module(id) == nil {
		return nil, false
	}
	c.history.BeginInteraction()
	return &Drag{
		c:         c,
		id:        id,
		frames:    frames,
		canRotate: len(c.comp.Graph().ForModule(id)) == 0,
	}, true
}

// ModuleID returns the dragged module.
func (d *Drag) ModuleID() string { return d.id }

// CanRotate reports whether the dragged module may be rotated.
func (d *Drag) CanRotate() bool { return d.canRotate }

// Locked reports whether the drag joined a connector and stopped
// following the pointer.
func (d *Drag) Locked() bool { return d.locked }

// Move sets the pointer target. Only the latest target of a frame is
// evaluated.
func (d *Drag) Move(target v3.Vec) {
	if d.ended || d.locked {
		return
	}
	d.pending = &target
	if d.scheduled {
		return
	}
	d.scheduled = true
	d.frames.Schedule(func() { d.flush(false) })
}

// Rotate turns the dragged module by quarter turns if it may rotate.
func (d *Drag) Rotate(turns int) bool {
	if d.ended || !d.canRotate {
		return false
	}
	if !d.c.RotateQuarter(d.id, turns) {
		return false
	}
	d.moved = true
	return true
}

func (d *Drag) flush(commit bool) {
	d.scheduled = false
	if d.ended || d.locked {
		d.pending = nil
		return
	}
	changed := false
	if d.pending != nil {
		if m := d.c.comp.Module(d.id); m != nil {
			before := m.Position()
			d.c.MoveGroup(d.id, *d.pending, false)
			changed = m.Position() != before
		}
		d.pending = nil
	}
	if changed {
		d.moved = true
	}
	// A press and release without movement must not join anything.
	if !changed && !(commit && d.moved) {
		return
	}
	res := d.c.TrySnap(d.id, SnapOptions{
		Commit:       commit,
		CommitWithin: d.c.cfg.SnapCommitDistance,
		Magnet:       true,
	})
	if res.Committed {
		d.locked = true
	}
}

// End applies any pending move, joins the best snap candidate if one is in
// range and closes the gesture. A gesture that never moved the module
// joins nothing. It reports whether the gesture changed
// the composition.
func (d *Drag) End() bool {
	if d.ended {
		return false
	}
	d.flush(true)
	d.ended = true
	return d.c.history.EndInteraction()
}
