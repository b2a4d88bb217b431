package composition

import (
	"github.com/chazu/prefab/pkg/geom"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/num/quat"
)

// Module is a placed instance of a Definition.
type Module struct {
	ID         string
	Definition *Definition
	Connectors []*Connector

	transform geom.Transform
	version   uint64

	localBounds *sdf.Box3
	registered  bool

	worldBounds sdf.Box3
	worldValid  bool
	worldAt     uint64
}

// NewModule creates a module with the given id. Connectors are copied from
// the definition; geometry is attached later through RegisterGeometry.
func NewModule(id string, def *Definition) *Module {
	m := &Module{ID: id, Definition: def}
	m.setConnectors(def.Connectors)
	return m
}

func (m *Module) setConnectors(defs []ConnectorDef) {
	m.Connectors = make([]*Connector, 0, len(defs))
	for _, d := range defs {
		m.Connectors = append(m.Connectors, &Connector{ModuleID: m.ID, Def: d})
	}
}

// RegisterGeometry attaches the result of geometry inspection. It runs at
// most once per module; later calls are ignored. Inspected connectors are
// used only when the definition declares none.
func (m *Module) RegisterGeometry(bounds *sdf.Box3, connectors []ConnectorDef) {
	if m.registered {
		return
	}
	m.registered = true
	if bounds != nil {
		b := *bounds
		m.localBounds = &b
	}
	m.worldValid = false
	if len(m.Connectors) == 0 {
		m.setConnectors(connectors)
	}
}

// Restore rebuilds a module's state from recorded values. Connector
// occupancy starts cleared.
func (m *Module) Restore(t geom.Transform, bounds *sdf.Box3, connectors []ConnectorDef) {
	m.transform = t
	m.version++
	m.localBounds = nil
	if bounds != nil {
		b := *bounds
		m.localBounds = &b
	}
	m.registered = true
	m.worldValid = false
	m.setConnectors(connectors)
}

// Transform returns the current placement.
func (m *Module) Transform() geom.Transform { return m.transform }

// Position returns the world position.
func (m *Module) Position() v3.Vec { return m.transform.Position }

// Rotation returns the XYZ Euler rotation in radians.
func (m *Module) Rotation() v3.Vec { return m.transform.Rotation }

// TransformVersion increases each time the position or rotation changes.
func (m *Module) TransformVersion() uint64 { return m.version }

// Quat returns the module rotation as a quaternion.
func (m *Module) Quat() quat.Number { return geom.FromEuler(m.transform.Rotation) }

// SetPosition moves the module. Writing the current value is a no-op and
// reports false.
func (m *Module) SetPosition(p v3.Vec) bool {
	if m.transform.Position == p {
		return false
	}
	m.transform.Position = p
	m.touch()
	return true
}

// SetRotation sets the XYZ Euler rotation. Writing the current value is a
// no-op and reports false.
func (m *Module) SetRotation(r v3.Vec) bool {
	if m.transform.Rotation == r {
		return false
	}
	m.transform.Rotation = r
	m.touch()
	return true
}

// Translate moves the module by d.
func (m *Module) Translate(d v3.Vec) bool {
	return m.SetPosition(m.transform.Position.Add(d))
}

func (m *Module) touch() {
	m.version++
	m.worldValid = false
}

// LocalBounds returns the module-space bounding box, if geometry has been
// registered with one.
func (m *Module) LocalBounds() (sdf.Box3, bool) {
	if m.localBounds == nil {
		return sdf.Box3{}, false
	}
	return *m.localBounds, true
}

// WorldBounds returns the world-aligned box around the rotated local box.
// The value is recomputed lazily after any transform change.
func (m *Module) WorldBounds() (sdf.Box3, bool) {
	if m.localBounds == nil {
		return sdf.Box3{}, false
	}
	if !m.worldValid || m.worldAt != m.version {
		m.worldBounds = geom.TransformBox(*m.localBounds, m.transform)
		m.worldAt = m.version
		m.worldValid = true
	}
	return m.worldBounds, true
}

// cachedWorldBounds exposes the cache without refreshing it.
func (m *Module) cachedWorldBounds() (sdf.Box3, bool) {
	if !m.worldValid || m.worldAt != m.version {
		return sdf.Box3{}, false
	}
	return m.worldBounds, true
}

// Connector returns the connector with the given definition id, or nil.
func (m *Module) Connector(id string) *Connector {
	for _, c := range m.Connectors {
		if c.Def.ID == id {
			return c
		}
	}
	return nil
}

// ConnectorWorldPosition returns c's position in world space. The value is
// memoized on the connector until the module's transform changes.
func (m *Module) ConnectorWorldPosition(c *Connector) v3.Vec {
	if c.cacheValid && c.cacheVersion == m.version {
		return c.cachePos
	}
	c.cachePos = m.transform.Apply(c.Def.Position)
	c.cacheVersion = m.version
	c.cacheValid = true
	return c.cachePos
}

// ConnectorWorldRotation composes the module rotation with the connector's
// local rotation and returns XYZ Euler angles.
func (m *Module) ConnectorWorldRotation(c *Connector) v3.Vec {
	return geom.ToEuler(m.ConnectorWorldQuat(c))
}

// ConnectorWorldQuat is ConnectorWorldRotation as a quaternion.
func (m *Module) ConnectorWorldQuat(c *Connector) quat.Number {
	return quat.Mul(m.Quat(), geom.FromEuler(c.Def.Rotation))
}
