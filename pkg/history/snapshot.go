package history

import (
	"slices"

	"github.com/chazu/prefab/pkg/composition"
	"github.com/chazu/prefab/pkg/geom"
	"github.com/deadsy/sdfx/sdf"
	"github.com/google/uuid"
)

// ConnectorState records one connector of a module.
type ConnectorState struct {
	Def      composition.ConnectorDef
	Occupied bool
}

// ModuleState records one module.
type ModuleState struct {
	ID           string
	DefinitionID string
	Transform    geom.Transform
	LocalBounds  *sdf.Box3
	Connectors   []ConnectorState
}

func (m ModuleState) equal(o ModuleState) bool {
	if m.ID != o.ID || m.DefinitionID != o.DefinitionID || m.Transform != o.Transform {
		return false
	}
	if (m.LocalBounds == nil) != (o.LocalBounds == nil) {
		return false
	}
	if m.LocalBounds != nil && *m.LocalBounds != *o.LocalBounds {
		return false
	}
	return slices.EqualFunc(m.Connectors, o.Connectors, func(a, b ConnectorState) bool {
		return a.Occupied == b.Occupied && a.Def.Equal(b.Def)
	})
}

// Snapshot is a full copy of a composition's state. Modules are sorted by
// id and connections are in canonical order, so equal states produce
// equal snapshots.
type Snapshot struct {
	ID          uuid.UUID
	Modules     []ModuleState
	Connections []composition.Connection
	Selected    string
	NextID      uint64
}

// Capture records the current state of c.
func Capture(c *composition.Composition) Snapshot {
	s := Snapshot{
		ID:          uuid.New(),
		Connections: c.Graph().All(),
		Selected:    c.Selected(),
		NextID:      c.NextID(),
	}
	for _, m := range c.Modules() {
		ms := ModuleState{
			ID:        m.ID,
			Transform: m.Transform(),
		}
		if m.Definition != nil {
			ms.DefinitionID = m.Definition.ID
		}
		if b, ok := m.LocalBounds(); ok {
			ms.LocalBounds = &b
		}
		for _, conn := range m.Connectors {
			def := conn.Def
			def.CompatibleWith = slices.Clone(def.CompatibleWith)
			ms.Connectors = append(ms.Connectors, ConnectorState{Def: def, Occupied: conn.Occupied})
		}
		s.Modules = append(s.Modules, ms)
	}
	return s
}

// Equal compares two snapshots by value. The snapshot id and the module id
// counter are ignored.
func (s Snapshot) Equal(o Snapshot) bool {
	return s.Selected == o.Selected &&
		slices.Equal(s.Connections, o.Connections) &&
		slices.EqualFunc(s.Modules, o.Modules, ModuleState.equal)
}
