// Package history provides snapshot-based undo and redo for a composition.
// Each recorded action stores the state before it; continuous gestures are
// bracketed so that a whole drag produces a single entry.
package history

import (
	"github.com/chazu/prefab/pkg/composition"
	"github.com/google/uuid"
)

// DefaultLimit is the undo depth used when none is configured.
const DefaultLimit = 100

// DefinitionSource resolves module definitions by id when state is
// restored. A catalog satisfies it.
type DefinitionSource interface {
	Definition(id string) (*composition.Definition, bool)
}

// History holds bounded undo and redo stacks for one composition.
type History struct {
	comp  *composition.Composition
	defs  DefinitionSource
	limit int

	undo []Snapshot
	redo []Snapshot

	interacting bool
	gestureFrom Snapshot
}

// New returns a History for comp. A limit below one selects DefaultLimit.
func New(comp *composition.Composition, defs DefinitionSource, limit int) *History {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &History{comp: comp, defs: defs, limit: limit}
}

// CanUndo reports whether Undo would change state.
func (h *History) CanUndo() bool { return !h.interacting && len(h.undo) > 0 }

// CanRedo reports whether Redo would change state.
func (h *History) CanRedo() bool { return !h.interacting && len(h.redo) > 0 }

// Depth returns the sizes of the undo and redo stacks.
func (h *History) Depth() (undo, redo int) { return len(h.undo), len(h.redo) }

// UndoID returns the id of the entry Undo would restore.
func (h *History) UndoID() (uuid.UUID, bool) { return top(h.undo) }

// RedoID returns the id of the entry Redo would restore.
func (h *History) RedoID() (uuid.UUID, bool) { return top(h.redo) }

func top(stack []Snapshot) (uuid.UUID, bool) {
	if len(stack) == 0 {
		return uuid.Nil, false
	}
	return stack[len(stack)-1].ID, true
}

// Interacting reports whether a gesture is open.
func (h *History) Interacting() bool { return h.interacting }

// Clear drops all entries.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}

func (h *History) push(stack []Snapshot, s Snapshot) []Snapshot {
	if len(stack) >= h.limit {
		stack = append(stack[:0], stack[len(stack)-h.limit+1:]...)
	}
	return append(stack, s)
}

// Record runs mutate and, if the composition changed, stores the prior
// state for undo and clears redo. Inside an open gesture the change is
// folded into the gesture's entry. It reports whether an entry was added.
func (h *History) Record(mutate func()) bool {
	if h.interacting {
		mutate()
		return false
	}
	before := Capture(h.comp)
	mutate()
	after := Capture(h.comp)
	if before.Equal(after) {
		return false
	}
	h.undo = h.push(h.undo, before)
	h.redo = nil
	return true
}

// BeginInteraction opens a gesture. Calling it again before
// EndInteraction has no effect.
func (h *History) BeginInteraction() {
	if h.interacting {
		return
	}
	h.interacting = true
	h.gestureFrom = Capture(h.comp)
}

// EndInteraction closes the gesture and records its net effect as one
// entry. It reports whether an entry was added.
func (h *History) EndInteraction() bool {
	if !h.interacting {
		return false
	}
	h.interacting = false
	from := h.gestureFrom
	h.gestureFrom = Snapshot{}
	if from.Equal(Capture(h.comp)) {
		return false
	}
	h.undo = h.push(h.undo, from)
	h.redo = nil
	return true
}

// Undo restores the most recent entry. It does nothing during a gesture or
// when there is nothing to undo.
func (h *History) Undo() bool {
	if h.interacting || len(h.undo) == 0 {
		return false
	}
	prev := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = h.push(h.redo, Capture(h.comp))
	h.restore(prev)
	return true
}

// Redo reapplies the most recently undone entry.
func (h *History) Redo() bool {
	if h.interacting || len(h.redo) == 0 {
		return false
	}
	next := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = h.push(h.undo, Capture(h.comp))
	h.restore(next)
	return true
}

// Revert restores the most recent entry and discards it without making it
// redoable. It is used to roll back a batch that failed part way.
func (h *History) Revert() bool {
	if h.interacting || len(h.undo) == 0 {
		return false
	}
	prev := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.restore(prev)
	return true
}

// restore rebuilds the composition from s. Modules whose definition is no
// longer available are dropped along with their connections, and
// occupancy is derived from the surviving connections.
func (h *History) restore(s Snapshot) {
	modules := make([]*composition.Module, 0, len(s.Modules))
	byID := make(map[string]*composition.Module, len(s.Modules))
	for _, ms := range s.Modules {
		def, ok := h.defs.Definition(ms.DefinitionID)
		if !ok {
			continue
		}
		defs := make([]composition.ConnectorDef, len(ms.Connectors))
		for i, cs := range ms.Connectors {
			defs[i] = cs.Def
		}
		m := composition.NewModule(ms.ID, def)
		m.Restore(ms.Transform, ms.LocalBounds, defs)
		modules = append(modules, m)
		byID[m.ID] = m
	}

	conns := make([]composition.Connection, 0, len(s.Connections))
	for _, c := range s.Connections {
		from, to := byID[c.FromModuleID], byID[c.ToModuleID]
		if from == nil || to == nil {
			continue
		}
		fc, tc := from.Connector(c.FromNodeID), to.Connector(c.ToNodeID)
		if fc == nil || tc == nil || fc.Occupied || tc.Occupied {
			continue
		}
		fc.Occupied = true
		tc.Occupied = true
		conns = append(conns, c)
	}

	h.comp.Reset(modules, conns, s.Selected, s.NextID)
}
