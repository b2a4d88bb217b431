package composition

import "sort"

// Connection links one connector to another. It is undirected; the graph
// stores each pair once.
type Connection struct {
	FromModuleID string
	FromNodeID   string
	ToModuleID   string
	ToNodeID     string
}

// Touches reports whether either end belongs to moduleID.
func (c Connection) Touches(moduleID string) bool {
	return c.FromModuleID == moduleID || c.ToModuleID == moduleID
}

// Involves reports whether one end is the given connector.
func (c Connection) Involves(moduleID, nodeID string) bool {
	return (c.FromModuleID == moduleID && c.FromNodeID == nodeID) ||
		(c.ToModuleID == moduleID && c.ToNodeID == nodeID)
}

// Other returns the module id on the far side from moduleID.
func (c Connection) Other(moduleID string) string {
	if c.FromModuleID == moduleID {
		return c.ToModuleID
	}
	return c.FromModuleID
}

// connKey identifies an unordered connector pair.
type connKey struct {
	loModule, loNode string
	hiModule, hiNode string
}

// makeConnKey orders the two ends canonically so that a->b and b->a map to
// the same key.
func makeConnKey(aModule, aNode, bModule, bNode string) connKey {
	if aModule < bModule || (aModule == bModule && aNode <= bNode) {
		return connKey{loModule: aModule, loNode: aNode, hiModule: bModule, hiNode: bNode}
	}
	return connKey{loModule: bModule, loNode: bNode, hiModule: aModule, hiNode: aNode}
}

func (c Connection) key() connKey {
	return makeConnKey(c.FromModuleID, c.FromNodeID, c.ToModuleID, c.ToNodeID)
}

// Less orders connections canonically, for deterministic listings.
func (c Connection) Less(o Connection) bool {
	a, b := c.key(), o.key()
	if a.loModule != b.loModule {
		return a.loModule < b.loModule
	}
	if a.loNode != b.loNode {
		return a.loNode < b.loNode
	}
	if a.hiModule != b.hiModule {
		return a.hiModule < b.hiModule
	}
	return a.hiNode < b.hiNode
}

// ConnectionGraph stores connection records and answers connectivity
// queries. Version increases on every mutation.
type ConnectionGraph struct {
	conns   []Connection
	index   map[connKey]int
	version uint64
}

// NewConnectionGraph returns an empty graph.
func NewConnectionGraph() *ConnectionGraph {
	return &ConnectionGraph{index: make(map[connKey]int)}
}

// Version returns the mutation counter.
func (g *ConnectionGraph) Version() uint64 { return g.version }

// Len returns the number of records.
func (g *ConnectionGraph) Len() int { return len(g.conns) }

// Add stores c. Records joining a module to itself and duplicates of an
// existing pair are rejected.
func (g *ConnectionGraph) Add(c Connection) bool {
	if c.FromModuleID == c.ToModuleID {
		return false
	}
	k := c.key()
	if _, exists := g.index[k]; exists {
		return false
	}
	g.index[k] = len(g.conns)
	g.conns = append(g.conns, c)
	g.version++
	return true
}

// Linked reports whether the two connectors are joined to each other.
func (g *ConnectionGraph) Linked(aModule, aNode, bModule, bNode string) bool {
	_, ok := g.index[makeConnKey(aModule, aNode, bModule, bNode)]
	return ok
}

// RemoveForModule deletes and returns every record touching moduleID.
func (g *ConnectionGraph) RemoveForModule(moduleID string) []Connection {
	var removed []Connection
	kept := g.conns[:0]
	for _, c := range g.conns {
		if c.Touches(moduleID) {
			removed = append(removed, c)
			continue
		}
		kept = append(kept, c)
	}
	if len(removed) == 0 {
		return nil
	}
	g.conns = kept
	g.reindex()
	g.version++
	return removed
}

// ForModule returns the records touching moduleID.
func (g *ConnectionGraph) ForModule(moduleID string) []Connection {
	var out []Connection
	for _, c := range g.conns {
		if c.Touches(moduleID) {
			out = append(out, c)
		}
	}
	return out
}

// CountFor returns how many records reference the given connector.
func (g *ConnectionGraph) CountFor(moduleID, nodeID string) int {
	n := 0
	for _, c := range g.conns {
		if c.Involves(moduleID, nodeID) {
			n++
		}
	}
	return n
}

// All returns a copy of every record in canonical order.
func (g *ConnectionGraph) All() []Connection {
	out := make([]Connection, len(g.conns))
	copy(out, g.conns)
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Replace discards every record and installs list. Self links and
// duplicates in list are skipped.
func (g *ConnectionGraph) Replace(list []Connection) {
	g.conns = g.conns[:0]
	g.index = make(map[connKey]int, len(list))
	for _, c := range list {
		if c.FromModuleID == c.ToModuleID {
			continue
		}
		k := c.key()
		if _, dup := g.index[k]; dup {
			continue
		}
		g.index[k] = len(g.conns)
		g.conns = append(g.conns, c)
	}
	g.version++
}

func (g *ConnectionGraph) reindex() {
	g.index = make(map[connKey]int, len(g.conns))
	for i, c := range g.conns {
		g.index[c.key()] = i
	}
}

// ConnectedModuleIDs returns the connected component containing seed,
// seed included, sorted by id. Each record is followed in both directions.
func (g *ConnectionGraph) ConnectedModuleIDs(seed string) []string {
	adj := make(map[string][]string)
	for _, c := range g.conns {
		adj[c.FromModuleID] = append(adj[c.FromModuleID], c.ToModuleID)
		adj[c.ToModuleID] = append(adj[c.ToModuleID], c.FromModuleID)
	}

	visited := map[string]bool{seed: true}
	queue := []string{seed}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adj[cur] {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}

	out := make([]string, 0, len(visited))
	for id := range visited {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
