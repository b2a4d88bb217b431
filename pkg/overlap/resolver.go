package overlap

import (
	"math"

	"github.com/chazu/prefab/pkg/composition"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Resolver moves a module off its neighbours after creation or detachment.
type Resolver struct {
	Step           float64 // minimum offset unit
	Tries          int     // maximum number of trial positions
	StackTolerance float64 // positions closer than this on every axis count as stacked
	Epsilon        float64 // overlap epsilon
}

// cardinals are tried in turn at each ring.
var cardinals = [4]v3.Vec{{X: 1}, {X: -1}, {Z: 1}, {Z: -1}}

// Blocked reports whether m overlaps another module or sits on top of one.
func (r Resolver) Blocked(m *composition.Module, others []*composition.Module) bool {
	if HasBlockingOverlap(m, others, r.Epsilon) {
		return true
	}
	p := m.Position()
	for _, o := range others {
		if o.ID == m.ID {
			continue
		}
		d := o.Position().Sub(p).Abs()
		if d.X < r.StackTolerance && d.Y < r.StackTolerance && d.Z < r.StackTolerance {
			return true
		}
	}
	return false
}

// Spacing returns the distance between successive trial positions:
// the module's larger footprint side plus one step.
func (r Resolver) Spacing(m *composition.Module) float64 {
	b, ok := CalculateWorldBoundingBox(m)
	if !ok {
		return r.Step
	}
	size := b.Max.Sub(b.Min)
	return math.Max(math.Max(size.X, size.Z), r.Step) + r.Step
}

// Resolve walks m outward along +X, -X, +Z and -Z at growing multiples of
// Spacing until it is clear. It returns the number of positions tried and
// whether a clear one was found. When every attempt fails the module stays
// at the last position tried.
func (r Resolver) Resolve(m *composition.Module, others []*composition.Module) (int, bool) {
	if !r.Blocked(m, others) {
		return 0, true
	}
	start := m.Position()
	spacing := r.Spacing(m)
	for i := 0; i < r.Tries; i++ {
		ring := float64(i/len(cardinals) + 1)
		m.SetPosition(start.Add(cardinals[i%len(cardinals)].MulScalar(spacing * ring)))
		if !r.Blocked(m, others) {
			return i + 1, true
		}
	}
	return r.Tries, false
}
