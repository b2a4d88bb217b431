package inspect

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/chazu/prefab/pkg/composition"
)

// Marker is the connector information encoded in a scene node name.
type Marker struct {
	Type composition.NodeType
	ID   string
}

// legacyMarker matches the old numbered form, e.g. Node3.
var legacyMarker = regexp.MustCompile(`(?i)^Node(\d+)$`)

// ParseMarker decodes a scene node name. Recognised forms are
// Node_<TYPE>_<id>, Node_<id> and the legacy Node<digits>. Only the
// "Node" prefix of the first segment is checked, so NodeA_1 is WALL "1".
// Unknown or missing types default to WALL.
func ParseMarker(name string) (Marker, bool) {
	parts := strings.Split(name, "_")
	if strings.HasPrefix(name, "Node") && len(parts) >= 2 {
		typ := composition.NodeWall
		idParts := parts[1:]
		if len(parts) >= 3 {
			if t, ok := nodeType(parts[1]); ok {
				typ = t
			}
			idParts = parts[2:]
		}
		if id := strings.Join(idParts, "_"); id != "" {
			return Marker{Type: typ, ID: id}, true
		}
	}

	if m := legacyMarker.FindStringSubmatch(name); m != nil {
		return Marker{Type: composition.NodeWall, ID: m[1]}, true
	}
	return Marker{}, false
}

func nodeType(token string) (composition.NodeType, bool) {
	t := composition.NodeType(strings.ToUpper(token))
	for _, s := range composition.SupportedNodeTypes {
		if s == t {
			return t, true
		}
	}
	return "", false
}

// ConnectorsFromMarkers converts scene markers into connector definitions.
// Names that are not markers are skipped. Repeated ids get a numeric
// suffix in order of appearance; each connector accepts its own type.
func ConnectorsFromMarkers(markers []composition.Marker) []composition.ConnectorDef {
	seen := make(map[string]int)
	var out []composition.ConnectorDef
	for _, mk := range markers {
		parsed, ok := ParseMarker(mk.Name)
		if !ok {
			continue
		}
		id := parsed.ID
		if n := seen[parsed.ID]; n > 0 {
			id = fmt.Sprintf("%s_%d", parsed.ID, n)
		}
		seen[parsed.ID]++
		out = append(out, composition.ConnectorDef{
			ID:             id,
			Position:       mk.Position,
			Rotation:       mk.Rotation,
			Type:           parsed.Type,
			CompatibleWith: []composition.NodeType{parsed.Type},
		})
	}
	return out
}
