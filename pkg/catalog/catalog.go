// Package catalog holds the module definitions a composition can be built
// from. Definitions are registered once and shared by pointer with every
// instance.
package catalog

import (
	"fmt"
	"sort"
	"sync"

	"github.com/chazu/prefab/pkg/composition"
)

// Catalog is a registry of module definitions. It is safe for concurrent
// use.
type Catalog struct {
	mu    sync.RWMutex
	defs  map[string]*composition.Definition
	order []string
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{defs: make(map[string]*composition.Definition)}
}

// Register adds def. Definitions need a unique, non-empty id.
func (c *Catalog) Register(def *composition.Definition) error {
	if def == nil || def.ID == "" {
		return fmt.Errorf("catalog: definition has no id")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.defs[def.ID]; exists {
		return fmt.Errorf("catalog: duplicate definition %q", def.ID)
	}
	c.defs[def.ID] = def
	c.order = append(c.order, def.ID)
	return nil
}

// Remove deletes a definition. Placed instances keep their pointer, but
// history restores will no longer find it.
func (c *Catalog) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.defs[id]; !ok {
		return false
	}
	delete(c.defs, id)
	for i, o := range c.order {
		if o == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// Definition looks up a definition by id.
func (c *Catalog) Definition(id string) (*composition.Definition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	def, ok := c.defs[id]
	return def, ok
}

// List returns definitions in registration order.
func (c *Catalog) List() []*composition.Definition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*composition.Definition, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.defs[id])
	}
	return out
}

// IDs returns the registered ids sorted alphabetically.
func (c *Catalog) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.defs))
	for id := range c.defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of definitions.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.defs)
}
