package design

import (
	"math"
	"slices"

	"github.com/chazu/prefab/pkg/composition"
	"github.com/chazu/prefab/pkg/overlap"
	"github.com/chazu/prefab/pkg/snap"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// SnapOptions select what TrySnap does with the best candidate. With
// neither Commit nor Magnet set, and no candidate within CommitWithin, the
// search is a preview and nothing changes.
type SnapOptions struct {
	Commit       bool     // join the best candidate regardless of distance
	CommitWithin float64  // join when the gap is at most this
	Magnet       bool     // otherwise pull the group part way toward it
	Exclude      []string // modules not to snap to
}

// SnapResult describes the outcome of TrySnap.
type SnapResult struct {
	Found     bool
	Committed bool
	Candidate snap.Candidate
	Distance  float64 // gap before any movement
}

// TrySnap searches for the nearest viable join between a free connector of
// module id and a free connector on a module outside its group. A
// candidate is viable when the whole group, translated onto it, does not
// overlap anything except the candidate's target.
func (c *Controller) TrySnap(id string, opts SnapOptions) SnapResult {
	var res SnapResult
	c.history.Record(func() { res = c.trySnap(id, opts) })
	return res
}

func (c *Controller) trySnap(id string, opts SnapOptions) SnapResult {
	m := c.comp.Module(id)
	if m == nil {
		return SnapResult{}
	}
	group := c.comp.Graph().ConnectedModuleIDs(id)

	var targets, rest []*composition.Module
	for _, o := range c.comp.Modules() {
		if slices.Contains(group, o.ID) {
			continue
		}
		rest = append(rest, o)
		if !slices.Contains(opts.Exclude, o.ID) {
			targets = append(targets, o)
		}
	}

	cands := c.snapper.FindCandidates(m, targets)
	if len(cands) == 0 {
		SnapAttempts.WithLabelValues("none").Inc()
		return SnapResult{}
	}
	cand, ok := c.firstClear(group, rest, cands)
	if !ok {
		SnapAttempts.WithLabelValues("blocked").Inc()
		return SnapResult{}
	}

	res := SnapResult{Found: true, Candidate: cand, Distance: math.Sqrt(cand.DistanceSq)}
	switch {
	case opts.Commit || (opts.CommitWithin > 0 && res.Distance <= opts.CommitWithin):
		c.translateGroup(id, cand.Offset())
		res.Committed = c.comp.Nodes().MarkOccupied(cand.Source, cand.Target)
		SnapAttempts.WithLabelValues("commit").Inc()
		c.log.Debug("snap committed",
			"module", id, "node", cand.Source.ID(),
			"target", cand.TargetModule.ID, "target_node", cand.Target.ID())
	case opts.Magnet:
		pull := snap.MagnetPosition(v3.Vec{}, cand, c.cfg.MagnetStrength)
		c.translateGroup(id, pull)
		SnapAttempts.WithLabelValues("magnet").Inc()
	default:
		SnapAttempts.WithLabelValues("preview").Inc()
	}
	return res
}

// firstClear returns the first candidate whose translation leaves every
// group member clear of rest, ignoring the candidate's own target. Group
// positions are restored exactly after each trial.
func (c *Controller) firstClear(group []string, rest []*composition.Module, cands []snap.Candidate) (snap.Candidate, bool) {
	members := make([]*composition.Module, 0, len(group))
	start := make([]v3.Vec, 0, len(group))
	for _, gid := range group {
		if gm := c.comp.Module(gid); gm != nil {
			members = append(members, gm)
			start = append(start, gm.Position())
		}
	}
	reset := func() {
		for i, gm := range members {
			gm.SetPosition(start[i])
		}
	}
	defer reset()

	eps := c.resolver.Epsilon
	for _, cand := range cands {
		offset := cand.Offset()
		blocked := false
		for i, gm := range members {
			gm.SetPosition(start[i].Add(offset))
			if overlap.HasBlockingOverlap(gm, rest, eps, cand.TargetModule.ID) {
				blocked = true
			}
		}
		reset()
		if !blocked {
			return cand, true
		}
	}
	return snap.Candidate{}, false
}
