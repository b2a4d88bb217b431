package composition

import (
	"fmt"
	"sort"
)

// EventType names a kind of composition change.
type EventType int

const (
	EventModuleAdded EventType = iota
	EventModuleRemoved
	EventTransformChanged
	EventConnectionsChanged
	EventSelectionChanged
	EventRestored
)

func (t EventType) String() string {
	switch t {
	case EventModuleAdded:
		return "module-added"
	case EventModuleRemoved:
		return "module-removed"
	case EventTransformChanged:
		return "transform-changed"
	case EventConnectionsChanged:
		return "connections-changed"
	case EventSelectionChanged:
		return "selection-changed"
	case EventRestored:
		return "restored"
	default:
		return fmt.Sprintf("EventType(%d)", int(t))
	}
}

// Event describes a single change. ModuleID is empty for composition-wide
// events.
type Event struct {
	Type     EventType
	ModuleID string
	Version  uint64
}

// Listener receives composition events synchronously.
type Listener func(Event)

// Composition is the set of placed modules and the connections between them.
type Composition struct {
	modules  map[string]*Module
	graph    *ConnectionGraph
	nodes    *NodeManager
	selected string
	nextID   uint64
	version  uint64

	listeners map[EventType][]Listener
}

// New returns an empty composition.
func New() *Composition {
	c := &Composition{
		modules:   make(map[string]*Module),
		graph:     NewConnectionGraph(),
		listeners: make(map[EventType][]Listener),
	}
	c.nodes = &NodeManager{comp: c}
	return c
}

// On registers l for events of type t.
func (c *Composition) On(t EventType, l Listener) {
	c.listeners[t] = append(c.listeners[t], l)
}

// Notify bumps the composition version and delivers an event to listeners.
func (c *Composition) Notify(t EventType, moduleID string) {
	c.version++
	ev := Event{Type: t, ModuleID: moduleID, Version: c.version}
	for _, l := range c.listeners[t] {
		l(ev)
	}
}

// Version returns a counter that increases with every notified change.
func (c *Composition) Version() uint64 { return c.version }

// Graph returns the connection graph.
func (c *Composition) Graph() *ConnectionGraph { return c.graph }

// Nodes returns the node manager bound to this composition.
func (c *Composition) Nodes() *NodeManager { return c.nodes }

// NextID returns the counter used for the next module id.
func (c *Composition) NextID() uint64 { return c.nextID }

// AddModule instantiates def with a fresh id and adds it.
func (c *Composition) AddModule(def *Definition) *Module {
	id := fmt.Sprintf("module_%d", c.nextID)
	c.nextID++
	m := NewModule(id, def)
	c.modules[id] = m
	c.Notify(EventModuleAdded, id)
	return m
}

// RemoveModule severs the module's connections and removes it. Unknown ids
// report false.
func (c *Composition) RemoveModule(id string) bool {
	if _, ok := c.modules[id]; !ok {
		return false
	}
	c.nodes.DisjointModule(id)
	delete(c.modules, id)
	if c.selected == id {
		c.selected = ""
		c.Notify(EventSelectionChanged, "")
	}
	c.Notify(EventModuleRemoved, id)
	return true
}

// Module returns the module with the given id, or nil.
func (c *Composition) Module(id string) *Module {
	return c.modules[id]
}

// Modules returns every module sorted by id.
func (c *Composition) Modules() []*Module {
	out := make([]*Module, 0, len(c.modules))
	for _, m := range c.modules {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of modules.
func (c *Composition) Len() int { return len(c.modules) }

// FindConnector resolves a connector by module and connector id.
func (c *Composition) FindConnector(moduleID, nodeID string) *Connector {
	m := c.modules[moduleID]
	if m == nil {
		return nil
	}
	return m.Connector(nodeID)
}

// Selected returns the selected module id. The id may name a module that
// no longer exists.
func (c *Composition) Selected() string { return c.selected }

// SelectedModule returns the selected module, or nil if nothing is selected
// or the selection is stale.
func (c *Composition) SelectedModule() *Module {
	if c.selected == "" {
		return nil
	}
	return c.modules[c.selected]
}

// Select sets the selection. An empty id clears it.
func (c *Composition) Select(id string) {
	if c.selected == id {
		return
	}
	c.selected = id
	c.Notify(EventSelectionChanged, id)
}

// Reset replaces the whole state. It is used when restoring history.
func (c *Composition) Reset(modules []*Module, conns []Connection, selected string, nextID uint64) {
	c.modules = make(map[string]*Module, len(modules))
	for _, m := range modules {
		c.modules[m.ID] = m
	}
	c.graph.Replace(conns)
	c.selected = selected
	c.nextID = nextID
	c.Notify(EventRestored, "")
}

// Totals sums the metrics and base cost of every module.
type Totals struct {
	Modules int
	Beds    float64
	Baths   float64
	Sqft    float64
	Cost    float64
}

// Totals returns the summed metrics of all modules.
func (c *Composition) Totals() Totals {
	t := Totals{Modules: len(c.modules)}
	for _, m := range c.modules {
		if m.Definition == nil {
			continue
		}
		t.Beds += m.Definition.Metrics.Beds
		t.Baths += m.Definition.Metrics.Baths
		t.Sqft += m.Definition.Metrics.Sqft
		t.Cost += m.Definition.BaseCost
	}
	return t
}
