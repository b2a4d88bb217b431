package composition

import "sort"

// NodeManager is the only path that creates or destroys connections. It
// keeps connector occupancy in step with the connection graph.
type NodeManager struct {
	comp *Composition
}

// FreeConnectors returns every unoccupied connector, ordered by module id.
func (n *NodeManager) FreeConnectors() []*Connector {
	var out []*Connector
	for _, m := range n.comp.Modules() {
		for _, c := range m.Connectors {
			if !c.Occupied {
				out = append(out, c)
			}
		}
	}
	return out
}

// MarkOccupied connects a and b. It reports true only when a new record was
// added. Connecting a connector to itself or to one on the same module,
// connecting an occupied connector, or connecting incompatible types fails
// without changing state. Repeating an existing connection is idempotent.
func (n *NodeManager) MarkOccupied(a, b *Connector) bool {
	if a == nil || b == nil || a == b {
		return false
	}
	if a.ModuleID == b.ModuleID {
		return false
	}
	if n.comp.Module(a.ModuleID) == nil || n.comp.Module(b.ModuleID) == nil {
		return false
	}

	g := n.comp.graph
	if g.Linked(a.ModuleID, a.Def.ID, b.ModuleID, b.Def.ID) {
		a.Occupied = true
		b.Occupied = true
		return false
	}
	if a.Occupied || b.Occupied {
		return false
	}
	if !Compatible(a, b) {
		return false
	}

	if !g.Add(Connection{
		FromModuleID: a.ModuleID,
		FromNodeID:   a.Def.ID,
		ToModuleID:   b.ModuleID,
		ToNodeID:     b.Def.ID,
	}) {
		return false
	}
	a.Occupied = true
	b.Occupied = true
	n.comp.Notify(EventConnectionsChanged, a.ModuleID)
	return true
}

// DisjointModule removes every connection touching moduleID, frees the
// connectors on both ends, and returns the other modules that lost a
// connection, sorted by id.
func (n *NodeManager) DisjointModule(moduleID string) []string {
	removed := n.comp.graph.RemoveForModule(moduleID)
	if len(removed) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var others []string
	for _, conn := range removed {
		if c := n.comp.FindConnector(conn.FromModuleID, conn.FromNodeID); c != nil {
			c.Occupied = false
		}
		if c := n.comp.FindConnector(conn.ToModuleID, conn.ToNodeID); c != nil {
			c.Occupied = false
		}
		other := conn.Other(moduleID)
		if !seen[other] {
			seen[other] = true
			others = append(others, other)
		}
	}
	sort.Strings(others)
	n.comp.Notify(EventConnectionsChanged, moduleID)
	return others
}
