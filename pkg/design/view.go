package design

import (
	"github.com/chazu/prefab/pkg/composition"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Vec3 is a JSON friendly vector.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func toVec3(v v3.Vec) Vec3 { return Vec3{X: v.X, Y: v.Y, Z: v.Z} }

// Vec returns v as an sdfx vector.
func (v Vec3) Vec() v3.Vec { return v3.Vec{X: v.X, Y: v.Y, Z: v.Z} }

// BoxView is an axis-aligned box.
type BoxView struct {
	Min Vec3 `json:"min"`
	Max Vec3 `json:"max"`
}

// ConnectorView is a connector in world space.
type ConnectorView struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Position Vec3   `json:"position"`
	Rotation Vec3   `json:"rotation"`
	Occupied bool   `json:"occupied"`
}

// ModuleView is a placed module.
type ModuleView struct {
	ID         string          `json:"id"`
	Definition string          `json:"definition"`
	Name       string          `json:"name"`
	Position   Vec3            `json:"position"`
	Rotation   Vec3            `json:"rotation"`
	Bounds     *BoxView        `json:"bounds,omitempty"`
	Connectors []ConnectorView `json:"connectors"`
}

// ConnectionView is one connection record.
type ConnectionView struct {
	FromModule string `json:"fromModule"`
	FromNode   string `json:"fromNode"`
	ToModule   string `json:"toModule"`
	ToNode     string `json:"toNode"`
}

// TotalsView sums module metrics.
type TotalsView struct {
	Modules int     `json:"modules"`
	Beds    float64 `json:"beds"`
	Baths   float64 `json:"baths"`
	Sqft    float64 `json:"sqft"`
	Cost    float64 `json:"cost"`
}

// State is everything a front end needs to draw the composition.
type State struct {
	Version     uint64           `json:"version"`
	Modules     []ModuleView     `json:"modules"`
	Connections []ConnectionView `json:"connections"`
	Selected    string           `json:"selected,omitempty"`
	Totals      TotalsView       `json:"totals"`
	CanUndo     bool             `json:"canUndo"`
	CanRedo     bool             `json:"canRedo"`
	UndoID      string           `json:"undoId,omitempty"` // entry Undo would restore
	RedoID      string           `json:"redoId,omitempty"`
}

// State returns a view of the current composition.
func (c *Controller) State() State {
	s := State{
		Version:     c.comp.Version(),
		Modules:     []ModuleView{},
		Connections: []ConnectionView{},
		Selected:    c.comp.Selected(),
		CanUndo:     c.history.CanUndo(),
		CanRedo:     c.history.CanRedo(),
	}
	if id, ok := c.history.UndoID(); ok {
		s.UndoID = id.String()
	}
	if id, ok := c.history.RedoID(); ok {
		s.RedoID = id.String()
	}
	for _, m := range c.comp.Modules() {
		s.Modules = append(s.Modules, moduleView(m))
	}
	for _, conn := range c.comp.Graph().All() {
		s.Connections = append(s.Connections, ConnectionView{
			FromModule: conn.FromModuleID,
			FromNode:   conn.FromNodeID,
			ToModule:   conn.ToModuleID,
			ToNode:     conn.ToNodeID,
		})
	}
	t := c.comp.Totals()
	s.Totals = TotalsView{Modules: t.Modules, Beds: t.Beds, Baths: t.Baths, Sqft: t.Sqft, Cost: t.Cost}
	return s
}

func moduleView(m *composition.Module) ModuleView {
	v := ModuleView{
		ID:         m.ID,
		Position:   toVec3(m.Position()),
		Rotation:   toVec3(m.Rotation()),
		Connectors: make([]ConnectorView, 0, len(m.Connectors)),
	}
	if m.Definition != nil {
		v.Definition = m.Definition.ID
		v.Name = m.Definition.Name
	}
	if b, ok := m.WorldBounds(); ok {
		v.Bounds = &BoxView{Min: toVec3(b.Min), Max: toVec3(b.Max)}
	}
	for _, conn := range m.Connectors {
		v.Connectors = append(v.Connectors, ConnectorView{
			ID:       conn.ID(),
			Type:     string(conn.Def.Type),
			Position: toVec3(m.ConnectorWorldPosition(conn)),
			Rotation: toVec3(m.ConnectorWorldRotation(conn)),
			Occupied: conn.Occupied,
		})
	}
	return v
}
