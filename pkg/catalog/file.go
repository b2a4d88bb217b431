package catalog

import (
	"fmt"
	"io"
	"os"

	"github.com/chazu/prefab/pkg/composition"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gopkg.in/yaml.v3"
)

// fileVec is a vector written as a three-element sequence.
type fileVec [3]float64

func (v fileVec) vec() v3.Vec { return v3.Vec{X: v[0], Y: v[1], Z: v[2]} }

type fileMarker struct {
	Name     string  `yaml:"name"`
	Position fileVec `yaml:"position"`
	Rotation fileVec `yaml:"rotation"`
}

type fileConnector struct {
	ID             string   `yaml:"id"`
	Type           string   `yaml:"type"`
	Position       fileVec  `yaml:"position"`
	Rotation       fileVec  `yaml:"rotation"`
	CompatibleWith []string `yaml:"compatible_with"`
}

type fileModule struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Geometry    struct {
		Path     string       `yaml:"path"`
		Size     fileVec      `yaml:"size"`
		Rotation fileVec      `yaml:"rotation"`
		Markers  []fileMarker `yaml:"markers"`
	} `yaml:"geometry"`
	Connectors []fileConnector `yaml:"connectors"`
	Metrics    struct {
		Beds  float64 `yaml:"beds"`
		Baths float64 `yaml:"baths"`
		Sqft  float64 `yaml:"sqft"`
	} `yaml:"metrics"`
	BaseCost float64 `yaml:"base_cost"`
}

type file struct {
	Modules []fileModule `yaml:"modules"`
}

// Load reads a YAML catalog.
//
//	modules:
//	  - id: annex
//	    geometry:
//	      size: [5, 3, 4.6]
//	      markers:
//	        - {name: Node_WALL_east, position: [2.5, 1.5, 0]}
//	    metrics: {beds: 0, baths: 0.5, sqft: 250}
//	    base_cost: 60000
func Load(r io.Reader) (*Catalog, error) {
	var f file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}

	c := New()
	for i, fm := range f.Modules {
		def, err := fm.definition()
		if err != nil {
			return nil, fmt.Errorf("catalog: module %d: %w", i, err)
		}
		if err := c.Register(def); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// LoadFile reads a YAML catalog from path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

func (fm fileModule) definition() (*composition.Definition, error) {
	if fm.ID == "" {
		return nil, fmt.Errorf("missing id")
	}
	def := &composition.Definition{
		ID:          fm.ID,
		Name:        fm.Name,
		Description: fm.Description,
		Geometry: composition.Geometry{
			Path:     fm.Geometry.Path,
			Size:     fm.Geometry.Size.vec(),
			Rotation: fm.Geometry.Rotation.vec(),
		},
		Metrics: composition.Metrics{
			Beds:  fm.Metrics.Beds,
			Baths: fm.Metrics.Baths,
			Sqft:  fm.Metrics.Sqft,
		},
		BaseCost: fm.BaseCost,
	}
	if def.Name == "" {
		def.Name = fm.ID
	}
	for _, mk := range fm.Geometry.Markers {
		def.Geometry.Markers = append(def.Geometry.Markers, composition.Marker{
			Name:     mk.Name,
			Position: mk.Position.vec(),
			Rotation: mk.Rotation.vec(),
		})
	}

	seen := make(map[string]bool)
	for _, fc := range fm.Connectors {
		if fc.ID == "" {
			return nil, fmt.Errorf("connector without id")
		}
		if seen[fc.ID] {
			return nil, fmt.Errorf("duplicate connector %q", fc.ID)
		}
		seen[fc.ID] = true

		typ, err := parseNodeType(fc.Type)
		if err != nil {
			return nil, fmt.Errorf("connector %q: %w", fc.ID, err)
		}
		cd := composition.ConnectorDef{
			ID:       fc.ID,
			Position: fc.Position.vec(),
			Rotation: fc.Rotation.vec(),
			Type:     typ,
		}
		if len(fc.CompatibleWith) == 0 {
			cd.CompatibleWith = []composition.NodeType{typ}
		}
		for _, s := range fc.CompatibleWith {
			t, err := parseNodeType(s)
			if err != nil {
				return nil, fmt.Errorf("connector %q: compatible_with: %w", fc.ID, err)
			}
			cd.CompatibleWith = append(cd.CompatibleWith, t)
		}
		def.Connectors = append(def.Connectors, cd)
	}
	return def, nil
}

func parseNodeType(s string) (composition.NodeType, error) {
	if s == "" {
		return composition.NodeWall, nil
	}
	for _, t := range composition.SupportedNodeTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown connector type %q", s)
}
