// Package design is the editing surface over a composition. A Controller
// owns the composition together with its catalog, geometry inspector,
// history, snap search and placement resolver, and exposes the operations
// an editor performs: create, move, rotate, snap, disjoin, undo and redo.
//
// Controllers are not safe for concurrent use; callers serialize access.
package design

import (
	"log/slog"
	"math"

	"github.com/chazu/prefab/pkg/catalog"
	"github.com/chazu/prefab/pkg/composition"
	"github.com/chazu/prefab/pkg/config"
	"github.com/chazu/prefab/pkg/geom"
	"github.com/chazu/prefab/pkg/history"
	"github.com/chazu/prefab/pkg/inspect"
	sdfxkernel "github.com/chazu/prefab/pkg/kernel/sdfx"
	"github.com/chazu/prefab/pkg/logging"
	"github.com/chazu/prefab/pkg/overlap"
	"github.com/chazu/prefab/pkg/snap"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Controller coordinates edits to one composition.
type Controller struct {
	cfg      config.Config
	catalog  *catalog.Catalog
	inspect  *inspect.Inspector
	comp     *composition.Composition
	history  *history.History
	snapper  *snap.Manager
	resolver overlap.Resolver
	log      *slog.Logger
}

// New returns a controller with an empty composition. A nil catalog is
// replaced by the built-in defaults, a nil inspector by one backed by the
// sdfx kernel, and a nil logger discards output.
func New(cfg config.Config, cat *catalog.Catalog, insp *inspect.Inspector, log *slog.Logger) *Controller {
	if cat == nil {
		cat = catalog.Defaults()
	}
	if insp == nil {
		insp = inspect.New(sdfxkernel.New())
	}
	if log == nil {
		log = logging.Discard()
	}
	comp := composition.New()
	c := &Controller{
		cfg:      cfg,
		catalog:  cat,
		inspect:  insp,
		comp:     comp,
		history:  history.New(comp, cat, cfg.HistoryLimit),
		snapper:  snap.NewManager(cfg.SnapOptions()),
		resolver: cfg.Resolver(),
		log:      log,
	}
	count := func(composition.Event) { Modules.Set(float64(comp.Len())) }
	comp.On(composition.EventModuleAdded, count)
	comp.On(composition.EventModuleRemoved, count)
	comp.On(composition.EventRestored, count)
	return c
}

// Composition returns the edited composition.
func (c *Controller) Composition() *composition.Composition { return c.comp }

// History returns the undo history.
func (c *Controller) History() *history.History { return c.history }

// Catalog returns the definition catalog.
func (c *Controller) Catalog() *catalog.Catalog { return c.catalog }

// Config returns the controller settings.
func (c *Controller) Config() config.Config { return c.cfg }

// CreateModule places a new instance of the named definition near at and
// selects it. The module is pushed clear of existing modules.
func (c *Controller) CreateModule(defID string, at v3.Vec) (string, bool) {
	def, ok := c.catalog.Definition(defID)
	if !ok {
		c.log.Info("create: unknown definition", "definition", defID)
		return "", false
	}
	var id string
	c.history.Record(func() {
		m := c.addModule(def, geom.Transform{Position: at})
		c.comp.Select(m.ID)
		id = m.ID
	})
	c.log.Debug("module created", "module", id, "definition", defID)
	return id, true
}

func (c *Controller) addModule(def *composition.Definition, t geom.Transform) *composition.Module {
	m := c.comp.AddModule(def)
	r := c.inspect.Inspect(def)
	m.RegisterGeometry(r.Bounds, r.Connectors)
	m.SetPosition(t.Position)
	m.SetRotation(t.Rotation)
	c.place(m)
	return m
}

// place resolves m against every other module.
func (c *Controller) place(m *composition.Module) {
	tries, ok := c.resolver.Resolve(m, c.comp.Modules())
	switch {
	case !ok:
		Placements.WithLabelValues("exhausted").Inc()
		c.log.Info("placement exhausted", "module", m.ID, "tries", tries)
	case tries > 0:
		Placements.WithLabelValues("moved").Inc()
		c.log.Debug("placement moved module", "module", m.ID, "tries", tries)
	default:
		Placements.WithLabelValues("clear").Inc()
	}
	c.comp.Notify(composition.EventTransformChanged, m.ID)
}

// RemoveModule deletes a module and its connections.
func (c *Controller) RemoveModule(id string) bool {
	if c.comp.Module(id) == nil {
		return false
	}
	c.history.Record(func() { c.comp.RemoveModule(id) })
	c.log.Debug("module removed", "module", id)
	return true
}

// MoveResult reports what a group move touched.
type MoveResult struct {
	Moved        []string `json:"moved"`        // modules translated, sorted
	Disconnected []string `json:"disconnected"` // former neighbours when detaching, sorted
}

// MoveGroup moves module id to target and carries every module connected
// to it along by the same offset. With detach the module is first cut
// loose and moves alone.
func (c *Controller) MoveGroup(id string, target v3.Vec, detach bool) MoveResult {
	m := c.comp.Module(id)
	if m == nil {
		return MoveResult{}
	}
	var res MoveResult
	c.history.Record(func() {
		if detach {
			res.Disconnected = c.comp.Nodes().DisjointModule(id)
		}
		res.Moved = c.translateGroup(id, target.Sub(m.Position()))
	})
	return res
}

// translateGroup moves id and everything connected to it by delta and
// returns the moved ids.
func (c *Controller) translateGroup(id string, delta v3.Vec) []string {
	group := c.comp.Graph().ConnectedModuleIDs(id)
	if delta == (v3.Vec{}) {
		return group
	}
	for _, gid := range group {
		if gm := c.comp.Module(gid); gm != nil && gm.Translate(delta) {
			c.comp.Notify(composition.EventTransformChanged, gid)
		}
	}
	return group
}

// RotateModule sets a module's rotation. Connected modules cannot be
// rotated.
func (c *Controller) RotateModule(id string, rot v3.Vec) bool {
	m := c.comp.Module(id)
	if m == nil {
		return false
	}
	if len(c.comp.Graph().ForModule(id)) > 0 {
		c.log.Info("rotate: module is connected", "module", id)
		return false
	}
	var changed bool
	c.history.Record(func() { changed = c.rotate(m, rot) })
	return changed
}

func (c *Controller) rotate(m *composition.Module, rot v3.Vec) bool {
	if !m.SetRotation(rot) {
		return false
	}
	c.comp.Notify(composition.EventTransformChanged, m.ID)
	return true
}

func quarterTurn(r v3.Vec, turns int) v3.Vec {
	r.Y = geom.NormalizeAngle(r.Y + float64(turns)*math.Pi/2)
	return r
}

// RotateQuarter turns a free module by quarter turns about the vertical
// axis.
func (c *Controller) RotateQuarter(id string, turns int) bool {
	m := c.comp.Module(id)
	if m == nil {
		return false
	}
	return c.RotateModule(id, quarterTurn(m.Rotation(), turns))
}

// Disjoin cuts every connection of a module, pushes it clear of its
// neighbours if needed and returns the modules it was connected to.
func (c *Controller) Disjoin(id string) []string {
	m := c.comp.Module(id)
	if m == nil {
		return nil
	}
	var others []string
	c.history.Record(func() {
		others = c.comp.Nodes().DisjointModule(id)
		if len(others) > 0 {
			c.place(m)
		}
	})
	c.log.Debug("module disjoined", "module", id, "neighbours", others)
	return others
}

// Select selects a module. An empty id clears the selection.
func (c *Controller) Select(id string) bool {
	if id != "" && c.comp.Module(id) == nil {
		return false
	}
	c.history.Record(func() { c.comp.Select(id) })
	return true
}

// Undo reverts the last recorded action.
func (c *Controller) Undo() bool {
	id, _ := c.history.UndoID()
	if !c.history.Undo() {
		return false
	}
	HistoryOperations.WithLabelValues("undo").Inc()
	c.log.Debug("undo", "entry", id)
	return true
}

// Redo reapplies the last undone action.
func (c *Controller) Redo() bool {
	id, _ := c.history.RedoID()
	if !c.history.Redo() {
		return false
	}
	HistoryOperations.WithLabelValues("redo").Inc()
	c.log.Debug("redo", "entry", id)
	return true
}

// Totals returns the summed metrics and cost of the composition.
func (c *Controller) Totals() composition.Totals { return c.comp.Totals() }

// Validate checks the composition's internal consistency.
func (c *Controller) Validate() []composition.ValidationError { return c.comp.Validate() }
