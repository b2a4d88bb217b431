package design

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/chazu/prefab/pkg/catalog"
	"github.com/chazu/prefab/pkg/composition"
	"github.com/chazu/prefab/pkg/config"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c := catalog.New()
	defs := []*composition.Definition{
		{
			ID:   "cube",
			Name: "Cube",
			Geometry: composition.Geometry{
				Size: v3.Vec{X: 1, Y: 1, Z: 1},
				Markers: []composition.Marker{
					{Name: "Node_WALL_east", Position: v3.Vec{X: 0.5, Y: 0.5}},
					{Name: "Node_WALL_west", Position: v3.Vec{X: -0.5, Y: 0.5}},
				},
			},
			Metrics:  composition.Metrics{Beds: 1, Baths: 0.5, Sqft: 100},
			BaseCost: 1000,
		},
		{
			ID:       "slab",
			Geometry: composition.Geometry{Size: v3.Vec{X: 0.02, Y: 1, Z: 1}},
		},
	}
	for _, d := range defs {
		if err := c.Register(d); err != nil {
			t.Fatal(err)
		}
	}
	return c
}

func newController(t *testing.T) *Controller {
	t.Helper()
	return New(config.Default(), testCatalog(t), nil, nil)
}

func mustCreate(t *testing.T, c *Controller, def string, at v3.Vec) *composition.Module {
	t.Helper()
	id, ok := c.CreateModule(def, at)
	if !ok {
		t.Fatalf("CreateModule(%s) failed", def)
	}
	return c.Composition().Module(id)
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func vecNear(a, b v3.Vec) bool { return a.Sub(b).Length() < 1e-9 }

func TestCreateModule(t *testing.T) {
	c := newController(t)
	a := mustCreate(t, c, "cube", v3.Vec{})
	b := mustCreate(t, c, "cube", v3.Vec{})

	if a.ID != "module_0" || b.ID != "module_1" {
		t.Errorf("ids = %s, %s", a.ID, b.ID)
	}
	// Stacked on a: pushed out along +X by the footprint plus one step.
	if !vecNear(b.Position(), v3.Vec{X: 1.5}) {
		t.Errorf("second module at %v, want (1.5,0,0)", b.Position())
	}
	if c.Composition().Selected() != b.ID {
		t.Errorf("selected = %q", c.Composition().Selected())
	}
	if len(a.Connectors) != 2 || a.Connector("east") == nil {
		t.Errorf("connectors from markers = %d", len(a.Connectors))
	}
	if u, _ := c.History().Depth(); u != 2 {
		t.Errorf("undo depth = %d, want 2", u)
	}
	if got := testutil.ToFloat64(Modules); got != 2 {
		t.Errorf("modules gauge = %v, want 2", got)
	}

	tot := c.Totals()
	if tot.Modules != 2 || tot.Beds != 2 || tot.Baths != 1 || tot.Sqft != 200 || tot.Cost != 2000 {
		t.Errorf("totals = %+v", tot)
	}

	if _, ok := c.CreateModule("castle", v3.Vec{}); ok {
		t.Error("unknown definition created")
	}
}

func TestDeterministicSnap(t *testing.T) {
	c := newController(t)
	a := mustCreate(t, c, "cube", v3.Vec{})
	b := mustCreate(t, c, "cube", v3.Vec{X: 1.05})
	if !near(b.Position().X, 1.05) {
		t.Fatalf("b placed at %v", b.Position())
	}

	res := c.TrySnap(b.ID, SnapOptions{Commit: true})
	if !res.Found || !res.Committed {
		t.Fatalf("snap result = %+v", res)
	}
	if !near(res.Distance, 0.05) {
		t.Errorf("distance = %v, want 0.05", res.Distance)
	}
	gap := b.ConnectorWorldPosition(b.Connector("west")).Sub(a.ConnectorWorldPosition(a.Connector("east")))
	if gap.Length() > 1e-9 {
		t.Errorf("gap after commit = %v", gap)
	}
	if c.Composition().Graph().Len() != 1 {
		t.Errorf("connections = %d, want 1", c.Composition().Graph().Len())
	}
	if !a.Connector("east").Occupied || !b.Connector("west").Occupied {
		t.Error("joined connectors not occupied")
	}

	others := c.Disjoin(b.ID)
	if len(others) != 1 || others[0] != a.ID {
		t.Errorf("Disjoin = %v", others)
	}
	if a.Connector("east").Occupied || b.Connector("west").Occupied {
		t.Error("connectors still occupied after disjoin")
	}
	if c.Composition().Graph().Len() != 0 {
		t.Error("connection survived disjoin")
	}
	// Touching faces do not count as overlap, so b stays put.
	if !near(b.Position().X, 1) {
		t.Errorf("b moved to %v after disjoin", b.Position())
	}
	if errs := c.Validate(); len(errs) != 0 {
		t.Errorf("validation: %v", errs)
	}
}

func TestTrySnapPreviewAndMagnet(t *testing.T) {
	c := newController(t)
	mustCreate(t, c, "cube", v3.Vec{})
	b := mustCreate(t, c, "cube", v3.Vec{X: 1.05})
	depth, _ := c.History().Depth()

	res := c.TrySnap(b.ID, SnapOptions{})
	if !res.Found || res.Committed {
		t.Fatalf("preview result = %+v", res)
	}
	if !near(b.Position().X, 1.05) {
		t.Error("preview moved the module")
	}
	if u, _ := c.History().Depth(); u != depth {
		t.Error("preview was recorded")
	}

	res = c.TrySnap(b.ID, SnapOptions{Magnet: true})
	if res.Committed {
		t.Fatal("magnet committed")
	}
	if !near(b.Position().X, 1.025) {
		t.Errorf("magnet position = %v, want 1.025", b.Position().X)
	}
	if c.Composition().Graph().Len() != 0 {
		t.Error("magnet created a connection")
	}

	res = c.TrySnap(b.ID, SnapOptions{CommitWithin: 0.05})
	if !res.Committed {
		t.Errorf("gap %v within commit distance not joined", res.Distance)
	}
}

func TestTrySnapExclude(t *testing.T) {
	c := newController(t)
	a := mustCreate(t, c, "cube", v3.Vec{})
	b := mustCreate(t, c, "cube", v3.Vec{X: 1.05})

	if res := c.TrySnap(b.ID, SnapOptions{Commit: true, Exclude: []string{a.ID}}); res.Found {
		t.Errorf("excluded target snapped: %+v", res)
	}
}

func TestTrySnapBlocked(t *testing.T) {
	c := newController(t)
	mustCreate(t, c, "cube", v3.Vec{})
	slab := mustCreate(t, c, "slab", v3.Vec{X: 0.53})
	b := mustCreate(t, c, "cube", v3.Vec{X: 1.05})
	if !near(slab.Position().X, 0.53) || !near(b.Position().X, 1.05) {
		t.Fatalf("setup moved modules: slab %v, b %v", slab.Position(), b.Position())
	}

	res := c.TrySnap(b.ID, SnapOptions{Commit: true})
	if res.Found {
		t.Fatalf("snap into an occupied gap accepted: %+v", res)
	}
	if !near(b.Position().X, 1.05) {
		t.Errorf("rejected trial left b at %v", b.Position())
	}
}

// chain builds a-b-c joined east to west.
func chain(t *testing.T, c *Controller) (a, b, cc *composition.Module) {
	t.Helper()
	ids, err := c.ApplyTemplate(Template{Steps: []Step{
		{Kind: StepPlace, Alias: "a", Definition: "cube"},
		{Kind: StepPlace, Alias: "b", Definition: "cube", Position: v3.Vec{X: 5}},
		{Kind: StepPlace, Alias: "c", Definition: "cube", Position: v3.Vec{X: 10}},
		{Kind: StepConnect, Alias: "a", Node: "east", Other: "b", OtherNode: "west"},
		{Kind: StepConnect, Alias: "b", Node: "east", Other: "c", OtherNode: "west"},
	}})
	if err != nil {
		t.Fatalf("ApplyTemplate: %v", err)
	}
	comp := c.Composition()
	return comp.Module(ids["a"]), comp.Module(ids["b"]), comp.Module(ids["c"])
}

func TestMoveGroup(t *testing.T) {
	c := newController(t)
	a, b, cc := chain(t, c)
	if !near(b.Position().X, 1) || !near(cc.Position().X, 2) {
		t.Fatalf("chain at %v, %v", b.Position(), cc.Position())
	}

	res := c.MoveGroup(a.ID, v3.Vec{Z: 10}, false)
	if strings.Join(res.Moved, ",") != strings.Join([]string{a.ID, b.ID, cc.ID}, ",") {
		t.Errorf("moved = %v", res.Moved)
	}
	for _, m := range []*composition.Module{a, b, cc} {
		if !near(m.Position().Z, 10) {
			t.Errorf("%s at %v, want z=10", m.ID, m.Position())
		}
	}

	res = c.MoveGroup(b.ID, v3.Vec{X: 1, Z: 20}, true)
	if strings.Join(res.Disconnected, ",") != a.ID+","+cc.ID {
		t.Errorf("disconnected = %v", res.Disconnected)
	}
	if len(res.Moved) != 1 || !near(a.Position().Z, 10) || !near(b.Position().Z, 20) {
		t.Errorf("detached move touched the group: %v", res.Moved)
	}
	if c.Composition().Graph().Len() != 0 {
		t.Errorf("connections = %d", c.Composition().Graph().Len())
	}

	if res := c.MoveGroup("module_99", v3.Vec{}, false); len(res.Moved) != 0 {
		t.Error("unknown module moved")
	}
}

func TestRotate(t *testing.T) {
	c := newController(t)
	a, b, _ := chain(t, c)

	if c.RotateModule(b.ID, v3.Vec{Y: 1}) {
		t.Error("connected module rotated")
	}
	c.Disjoin(a.ID)
	if !c.RotateQuarter(a.ID, 1) {
		t.Fatal("free module did not rotate")
	}
	if !near(a.Rotation().Y, math.Pi/2) {
		t.Errorf("rotation = %v", a.Rotation())
	}
	if c.RotateModule(a.ID, a.Rotation()) {
		t.Error("unchanged rotation reported")
	}
	c.RotateQuarter(a.ID, 3)
	if !near(a.Rotation().Y, 0) {
		t.Errorf("four quarter turns left %v", a.Rotation().Y)
	}
}

func TestUndoRedo(t *testing.T) {
	c := newController(t)
	mustCreate(t, c, "cube", v3.Vec{})
	b := mustCreate(t, c, "cube", v3.Vec{X: 1.05})
	c.TrySnap(b.ID, SnapOptions{Commit: true})

	if !c.Undo() {
		t.Fatal("undo failed")
	}
	comp := c.Composition()
	if comp.Graph().Len() != 0 || !near(comp.Module(b.ID).Position().X, 1.05) {
		t.Error("undo did not restore the unsnapped state")
	}
	if !c.Redo() {
		t.Fatal("redo failed")
	}
	if comp.Graph().Len() != 1 || !near(comp.Module(b.ID).Position().X, 1) {
		t.Error("redo did not restore the snap")
	}
	if c.Redo() {
		t.Error("redo past the end")
	}
	if errs := c.Validate(); len(errs) != 0 {
		t.Errorf("validation: %v", errs)
	}
}

func TestStateCarriesEntryIDs(t *testing.T) {
	c := newController(t)
	if s := c.State(); s.UndoID != "" || s.RedoID != "" {
		t.Fatalf("fresh state ids = %q/%q", s.UndoID, s.RedoID)
	}
	mustCreate(t, c, "cube", v3.Vec{})
	mustCreate(t, c, "cube", v3.Vec{X: 3})

	before := c.State()
	if before.UndoID == "" || before.RedoID != "" {
		t.Fatalf("ids = %q/%q", before.UndoID, before.RedoID)
	}
	c.Undo()
	after := c.State()
	if after.UndoID == "" || after.UndoID == before.UndoID {
		t.Errorf("undo id did not move down the stack: %q", after.UndoID)
	}
	if after.RedoID == "" {
		t.Error("no redo id after undo")
	}

	data, err := json.Marshal(after)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"redoId":"`+after.RedoID+`"`) {
		t.Errorf("json missing redo id: %s", data)
	}
}

func TestSelectAndRemove(t *testing.T) {
	c := newController(t)
	a := mustCreate(t, c, "cube", v3.Vec{})
	if c.Select("nope") {
		t.Error("selected unknown module")
	}
	if !c.Select("") || c.Composition().Selected() != "" {
		t.Error("clearing selection failed")
	}
	c.Select(a.ID)
	if !c.RemoveModule(a.ID) {
		t.Fatal("remove failed")
	}
	if c.Composition().Selected() != "" || c.Composition().Len() != 0 {
		t.Error("remove left state behind")
	}
	if c.RemoveModule(a.ID) {
		t.Error("second remove succeeded")
	}
}

func TestState(t *testing.T) {
	c := newController(t)
	chain(t, c)

	s := c.State()
	if len(s.Modules) != 3 || len(s.Connections) != 2 || !s.CanUndo || s.CanRedo {
		t.Fatalf("state = %+v", s)
	}
	if s.Modules[0].Bounds == nil || s.Modules[0].Definition != "cube" {
		t.Errorf("module view = %+v", s.Modules[0])
	}
	if s.Totals.Modules != 3 || s.Totals.Cost != 3000 {
		t.Errorf("totals = %+v", s.Totals)
	}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"canUndo":true`, `"fromModule"`, `"occupied":true`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("json missing %s", key)
		}
	}
}
