package composition

import v3 "github.com/deadsy/sdfx/vec/v3"

// Connector is a module's attachment point. ModuleID is a lookup key, not
// ownership; the module holds the connector.
type Connector struct {
	ModuleID string
	Def      ConnectorDef
	Occupied bool

	cachePos     v3.Vec
	cacheVersion uint64
	cacheValid   bool
}

// ID returns the connector's definition id.
func (c *Connector) ID() string { return c.Def.ID }

// Compatible reports whether a and b accept each other's type.
func Compatible(a, b *Connector) bool {
	return a.Def.Accepts(b.Def.Type) && b.Def.Accepts(a.Def.Type)
}
