package catalog

import (
	"github.com/chazu/prefab/pkg/composition"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// wallMarkers places one WALL marker at mid-height on each side of a box
// of the given footprint.
func wallMarkers(size v3.Vec) []composition.Marker {
	hx, hy, hz := size.X/2, size.Y/2, size.Z/2
	return []composition.Marker{
		{Name: "Node_WALL_east", Position: v3.Vec{X: hx, Y: hy}},
		{Name: "Node_WALL_west", Position: v3.Vec{X: -hx, Y: hy}},
		{Name: "Node_WALL_north", Position: v3.Vec{Y: hy, Z: -hz}},
		{Name: "Node_WALL_south", Position: v3.Vec{Y: hy, Z: hz}},
	}
}

// Defaults returns the built-in catalog: a full dwelling and two small
// companion units.
func Defaults() *Catalog {
	dwelling := v3.Vec{X: 10, Y: 3, Z: 8.4}
	small := v3.Vec{X: 5, Y: 3, Z: 4.6}

	lifestyle := wallMarkers(small)
	lifestyle = append(lifestyle, composition.Marker{
		Name:     "Node_DOOR_entry",
		Position: v3.Vec{X: 1.25, Y: 1.1, Z: small.Z / 2},
	})

	c := New()
	for _, def := range []*composition.Definition{
		{
			ID:          "dwelling",
			Name:        "Dwelling",
			Description: "One bedroom home with kitchen and bath.",
			Geometry:    composition.Geometry{Path: "models/dwelling.glb", Size: dwelling, Markers: wallMarkers(dwelling)},
			Metrics:     composition.Metrics{Beds: 1, Baths: 1, Sqft: 900},
			BaseCost:    120000,
		},
		{
			ID:          "annex",
			Name:        "Annex",
			Description: "Bedroom or office annex with a half bath.",
			Geometry:    composition.Geometry{Path: "models/annex.glb", Size: small, Markers: wallMarkers(small)},
			Metrics:     composition.Metrics{Baths: 0.5, Sqft: 250},
			BaseCost:    60000,
		},
		{
			ID:          "lifestyle",
			Name:        "Lifestyle",
			Description: "Flexible studio with its own entry.",
			Geometry:    composition.Geometry{Path: "models/lifestyle.glb", Size: small, Markers: lifestyle},
			Metrics:     composition.Metrics{Baths: 0.5, Sqft: 250},
			BaseCost:    60000,
		},
	} {
		// ids are fixed above and cannot collide
		_ = c.Register(def)
	}
	return c
}
