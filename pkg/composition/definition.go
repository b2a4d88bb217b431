package composition

import (
	"slices"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// NodeType is the kind of attachment a connector offers.
type NodeType string

const (
	NodeWall NodeType = "WALL"
	NodeDoor NodeType = "DOOR"
	NodeRoof NodeType = "ROOF"
)

// SupportedNodeTypes lists the connector types recognised in scene markers.
var SupportedNodeTypes = []NodeType{NodeWall, NodeDoor, NodeRoof}

// ConnectorDef describes one attachment point in module-local space.
type ConnectorDef struct {
	ID             string
	Position       v3.Vec
	Rotation       v3.Vec // XYZ Euler, radians
	Type           NodeType
	CompatibleWith []NodeType
}

// Accepts reports whether this connector accepts a partner of type t.
func (d ConnectorDef) Accepts(t NodeType) bool {
	return slices.Contains(d.CompatibleWith, t)
}

// Equal compares two definitions by value.
func (d ConnectorDef) Equal(o ConnectorDef) bool {
	return d.ID == o.ID && d.Position == o.Position && d.Rotation == o.Rotation &&
		d.Type == o.Type && slices.Equal(d.CompatibleWith, o.CompatibleWith)
}

// Metrics are the living-space figures a module contributes to totals.
type Metrics struct {
	Beds  float64
	Baths float64
	Sqft  float64
}

// Marker is a named node in a module's scene graph. Markers whose names
// follow the Node_<TYPE>_<id> convention become connectors.
type Marker struct {
	Name     string
	Position v3.Vec
	Rotation v3.Vec
}

// Geometry references a module's asset and the facts the engine needs from
// it. Size is the model's extent; Rotation (degrees) corrects the asset's
// authoring orientation.
type Geometry struct {
	Path     string
	Size     v3.Vec
	Rotation v3.Vec
	Markers  []Marker
}

// Definition is an immutable catalog entry. Instances share it by pointer.
type Definition struct {
	ID          string
	Name        string
	Description string
	Geometry    Geometry
	Connectors  []ConnectorDef
	Metrics     Metrics
	BaseCost    float64
}
