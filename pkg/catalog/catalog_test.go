package catalog

import (
	"strings"
	"testing"

	"github.com/chazu/prefab/pkg/composition"
)

func TestRegister(t *testing.T) {
	c := New()
	if err := c.Register(&composition.Definition{ID: "a"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := c.Register(&composition.Definition{ID: "a"}); err == nil {
		t.Error("duplicate id accepted")
	}
	if err := c.Register(&composition.Definition{}); err == nil {
		t.Error("empty id accepted")
	}
	if err := c.Register(nil); err == nil {
		t.Error("nil definition accepted")
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestListKeepsOrder(t *testing.T) {
	c := New()
	for _, id := range []string{"zeta", "alpha", "mid"} {
		if err := c.Register(&composition.Definition{ID: id}); err != nil {
			t.Fatal(err)
		}
	}
	var got []string
	for _, d := range c.List() {
		got = append(got, d.ID)
	}
	if strings.Join(got, ",") != "zeta,alpha,mid" {
		t.Errorf("List order = %v", got)
	}
	if strings.Join(c.IDs(), ",") != "alpha,mid,zeta" {
		t.Errorf("IDs = %v", c.IDs())
	}

	if !c.Remove("alpha") {
		t.Fatal("Remove failed")
	}
	if c.Remove("alpha") {
		t.Error("second Remove succeeded")
	}
	if _, ok := c.Definition("alpha"); ok {
		t.Error("removed definition still found")
	}
	if len(c.List()) != 2 {
		t.Errorf("List after remove = %d entries", len(c.List()))
	}
}

func TestDefaults(t *testing.T) {
	c := Defaults()
	tests := []struct {
		id    string
		beds  float64
		baths float64
		sqft  float64
		cost  float64
	}{
		{"dwelling", 1, 1, 900, 120000},
		{"annex", 0, 0.5, 250, 60000},
		{"lifestyle", 0, 0.5, 250, 60000},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			def, ok := c.Definition(tt.id)
			if !ok {
				t.Fatalf("%s missing", tt.id)
			}
			m := def.Metrics
			if m.Beds != tt.beds || m.Baths != tt.baths || m.Sqft != tt.sqft || def.BaseCost != tt.cost {
				t.Errorf("metrics = %+v cost %v", m, def.BaseCost)
			}
			if len(def.Geometry.Markers) < 4 {
				t.Errorf("markers = %d, want at least 4", len(def.Geometry.Markers))
			}
		})
	}
}

const sample = `
modules:
  - id: cabin
    name: Cabin
    geometry:
      size: [4, 3, 4]
      markers:
        - {name: Node_WALL_east, position: [2, 1.5, 0]}
    connectors:
      - id: porch
        type: DOOR
        position: [0, 1, 2]
        compatible_with: [DOOR, WALL]
      - id: side
        position: [-2, 1.5, 0]
    metrics: {beds: 1, baths: 1, sqft: 320}
    base_cost: 45000
  - id: shed
`

func TestLoad(t *testing.T) {
	c, err := Load(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}

	cabin, _ := c.Definition("cabin")
	if cabin.Geometry.Size.X != 4 || len(cabin.Geometry.Markers) != 1 {
		t.Errorf("geometry = %+v", cabin.Geometry)
	}
	if len(cabin.Connectors) != 2 {
		t.Fatalf("connectors = %d", len(cabin.Connectors))
	}
	porch := cabin.Connectors[0]
	if porch.Type != composition.NodeDoor || !porch.Accepts(composition.NodeWall) {
		t.Errorf("porch = %+v", porch)
	}
	side := cabin.Connectors[1]
	if side.Type != composition.NodeWall || len(side.CompatibleWith) != 1 || !side.Accepts(composition.NodeWall) {
		t.Errorf("side = %+v", side)
	}
	if cabin.BaseCost != 45000 || cabin.Metrics.Sqft != 320 {
		t.Errorf("cabin metrics = %+v %v", cabin.Metrics, cabin.BaseCost)
	}

	shed, _ := c.Definition("shed")
	if shed.Name != "shed" {
		t.Errorf("shed name = %q, want id fallback", shed.Name)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"missing id", "modules:\n  - name: x\n"},
		{"duplicate module", "modules:\n  - id: a\n  - id: a\n"},
		{"unknown type", "modules:\n  - id: a\n    connectors:\n      - {id: n, type: WINDOW}\n"},
		{"duplicate connector", "modules:\n  - id: a\n    connectors:\n      - {id: n}\n      - {id: n}\n"},
		{"unknown field", "modules:\n  - id: a\n    colour: red\n"},
		{"bad yaml", "modules: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(strings.NewReader(tt.src)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoadEmpty(t *testing.T) {
	c, err := Load(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d", c.Len())
	}
}
