package composition

import (
	"fmt"
	"math"

	"github.com/chazu/prefab/pkg/geom"
)

// ValidationSeverity indicates whether a finding is an invariant violation
// or merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // invariant violated
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	ModuleID string // empty if composition-level
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	if e.ModuleID == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] module %s: %s", e.Severity, e.ModuleID, e.Message)
}

// Validate checks the composition's invariants and returns every finding.
// An empty result means the composition is consistent. It never mutates
// state, not even caches.
func (c *Composition) Validate() []ValidationError {
	var errs []ValidationError
	errs = append(errs, c.validateReferences()...)
	errs = append(errs, c.validateOccupancy()...)
	errs = append(errs, c.validateBounds()...)
	errs = append(errs, c.validateSelection()...)
	return errs
}

// validateReferences checks that every record names existing modules and
// connectors and never links a module to itself.
func (c *Composition) validateReferences() []ValidationError {
	var errs []ValidationError
	for _, conn := range c.graph.All() {
		if conn.FromModuleID == conn.ToModuleID {
			errs = append(errs, ValidationError{
				ModuleID: conn.FromModuleID,
				Message:  fmt.Sprintf("connection %s-%s links the module to itself", conn.FromNodeID, conn.ToNodeID),
				Severity: SeverityError,
			})
		}
		for _, end := range [][2]string{{conn.FromModuleID, conn.FromNodeID}, {conn.ToModuleID, conn.ToNodeID}} {
			m := c.modules[end[0]]
			if m == nil {
				errs = append(errs, ValidationError{
					ModuleID: end[0],
					Message:  "connection references a missing module",
					Severity: SeverityError,
				})
				continue
			}
			if m.Connector(end[1]) == nil {
				errs = append(errs, ValidationError{
					ModuleID: end[0],
					Message:  fmt.Sprintf("connection references missing connector %q", end[1]),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// validateOccupancy checks that a connector is occupied iff exactly one
// record references it.
func (c *Composition) validateOccupancy() []ValidationError {
	var errs []ValidationError
	for _, m := range c.Modules() {
		for _, conn := range m.Connectors {
			n := c.graph.CountFor(m.ID, conn.Def.ID)
			switch {
			case n > 1:
				errs = append(errs, ValidationError{
					ModuleID: m.ID,
					Message:  fmt.Sprintf("connector %q is referenced by %d connections", conn.Def.ID, n),
					Severity: SeverityError,
				})
			case conn.Occupied && n == 0:
				errs = append(errs, ValidationError{
					ModuleID: m.ID,
					Message:  fmt.Sprintf("connector %q is occupied but unconnected", conn.Def.ID),
					Severity: SeverityError,
				})
			case !conn.Occupied && n == 1:
				errs = append(errs, ValidationError{
					ModuleID: m.ID,
					Message:  fmt.Sprintf("connector %q is connected but not occupied", conn.Def.ID),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// validateBounds compares each module's cached world bounds against a fresh
// computation.
func (c *Composition) validateBounds() []ValidationError {
	const eps = 1e-9
	var errs []ValidationError
	for _, m := range c.Modules() {
		local, ok := m.LocalBounds()
		if !ok {
			continue
		}
		cached, ok := m.cachedWorldBounds()
		if !ok {
			continue
		}
		fresh := geom.TransformBox(local, m.Transform())
		d := cached.Min.Sub(fresh.Min).Abs().Add(cached.Max.Sub(fresh.Max).Abs())
		if math.Max(d.X, math.Max(d.Y, d.Z)) > eps {
			errs = append(errs, ValidationError{
				ModuleID: m.ID,
				Message:  "cached world bounds are stale",
				Severity: SeverityError,
			})
		}
	}
	return errs
}

func (c *Composition) validateSelection() []ValidationError {
	if c.selected == "" || c.modules[c.selected] != nil {
		return nil
	}
	return []ValidationError{{
		ModuleID: c.selected,
		Message:  "selection refers to a removed module",
		Severity: SeverityWarning,
	}}
}
