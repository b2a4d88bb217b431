// Package snap searches for compatible, facing connector pairs between a
// moving module and its neighbours and computes the translation that joins
// them.
package snap

import (
	"sort"

	"github.com/chazu/prefab/pkg/composition"
	"github.com/chazu/prefab/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Options tune the candidate search.
type Options struct {
	Threshold          float64 // maximum connector distance
	FacingTolerance    float64 // directions face each other when dot <= -(1 - tol)
	FaceToleranceRatio float64 // nearest face must be within ratio * extent
	AmbiguityRatio     float64 // faces within ratio * smallest extent of the nearest are ambiguous
}

// DefaultOptions returns the search settings used by the editor.
func DefaultOptions() Options {
	return Options{
		Threshold:          0.3,
		FacingTolerance:    0.05,
		FaceToleranceRatio: 0.2,
		AmbiguityRatio:     0.2,
	}
}

// Candidate is a possible join between a connector on the moving module
// and one on another module.
type Candidate struct {
	SourceModule *composition.Module
	Source       *composition.Connector
	TargetModule *composition.Module
	Target       *composition.Connector
	SourcePos    v3.Vec
	TargetPos    v3.Vec
	DistanceSq   float64
}

// Offset is the translation that brings the source onto the target.
func (c Candidate) Offset() v3.Vec {
	return c.TargetPos.Sub(c.SourcePos)
}

// Manager runs snap searches.
type Manager struct {
	opts Options
}

// NewManager returns a Manager with the given options.
func NewManager(opts Options) *Manager {
	return &Manager{opts: opts}
}

// Options returns the manager's settings.
func (s *Manager) Options() Options { return s.opts }

// FindCandidates returns every viable join between the free connectors of
// moving and the free connectors of others, nearest first. Modules whose
// bounds, grown by the threshold, miss the moving module are skipped
// before any connector work.
func (s *Manager) FindCandidates(moving *composition.Module, others []*composition.Module) []Candidate {
	thr := s.opts.Threshold
	thrSq := thr * thr
	movingBounds, hasBounds := moving.WorldBounds()

	type source struct {
		conn *composition.Connector
		pos  v3.Vec
		dirs []v3.Vec
	}
	var sources []source
	for _, c := range moving.Connectors {
		if c.Occupied {
			continue
		}
		sources = append(sources, source{conn: c, pos: moving.ConnectorWorldPosition(c)})
	}
	if len(sources) == 0 {
		return nil
	}

	var out []Candidate
	for _, target := range others {
		if target.ID == moving.ID {
			continue
		}
		if hasBounds {
			if tb, ok := target.WorldBounds(); ok && !geom.BoxesIntersect(geom.Expand(tb, thr), movingBounds) {
				continue
			}
		}

		for _, tc := range target.Connectors {
			if tc.Occupied {
				continue
			}
			tpos := target.ConnectorWorldPosition(tc)
			var tdirs []v3.Vec

			for i := range sources {
				src := &sources[i]
				if !composition.Compatible(src.conn, tc) {
					continue
				}
				d := geom.DistanceSq(src.pos, tpos)
				if d > thrSq {
					continue
				}
				if src.dirs == nil {
					src.dirs = s.Directions(moving, src.conn)
				}
				if tdirs == nil {
					tdirs = s.Directions(target, tc)
				}
				if !s.facing(src.dirs, tdirs) {
					continue
				}
				out = append(out, Candidate{
					SourceModule: moving,
					Source:       src.conn,
					TargetModule: target,
					Target:       tc,
					SourcePos:    src.pos,
					TargetPos:    tpos,
					DistanceSq:   d,
				})
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceSq < out[j].DistanceSq })
	return out
}

// facing reports whether any pairing of the two direction sets is
// anti-parallel within tolerance.
func (s *Manager) facing(a, b []v3.Vec) bool {
	limit := -(1 - s.opts.FacingTolerance)
	for _, da := range a {
		for _, db := range b {
			if da.Dot(db) <= limit {
				return true
			}
		}
	}
	return false
}

// ComputeSnapTransform returns the module position that places the source
// connector exactly on the target connector.
func ComputeSnapTransform(base, sourcePos, targetPos v3.Vec) v3.Vec {
	return base.Add(targetPos.Sub(sourcePos))
}

// MagnetPosition pulls base toward the candidate's join by strength, a
// fraction between 0 and 1.
func MagnetPosition(base v3.Vec, c Candidate, strength float64) v3.Vec {
	return base.Add(c.Offset().MulScalar(strength))
}
