package design

import (
	"errors"
	"fmt"
	"slices"

	"github.com/chazu/prefab/pkg/composition"
	"github.com/chazu/prefab/pkg/geom"
	"github.com/chazu/prefab/pkg/snap"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

var (
	ErrUnknownDefinition = errors.New("unknown definition")
	ErrUnknownAlias      = errors.New("unknown alias")
	ErrDuplicateAlias    = errors.New("duplicate alias")
	ErrUnknownConnector  = errors.New("unknown connector")
	ErrConnectRejected   = errors.New("connection rejected")
	ErrNoSnap            = errors.New("no snap candidate")
	ErrInteracting       = errors.New("gesture in progress")
)

// StepKind names a template step.
type StepKind int

const (
	StepPlace StepKind = iota
	StepConnect
	StepSnap
	StepRotate
	StepSelect
	StepDisjoin
)

func (k StepKind) String() string {
	switch k {
	case StepPlace:
		return "place"
	case StepConnect:
		return "connect"
	case StepSnap:
		return "snap"
	case StepRotate:
		return "rotate"
	case StepSelect:
		return "select"
	case StepDisjoin:
		return "disjoin"
	default:
		return fmt.Sprintf("StepKind(%d)", int(k))
	}
}

// Step is one instruction of a template. Which fields matter depends on
// Kind.
type Step struct {
	Kind StepKind
	Line int // source line, when the step came from a script

	Alias      string // module the step acts on
	Definition string // StepPlace
	Position   v3.Vec // StepPlace
	Rotation   v3.Vec // StepPlace, radians
	Turns      int    // StepRotate

	Node      string // StepConnect: connector on Alias
	Other     string // StepConnect: module joined to
	OtherNode string // StepConnect: connector on Other
}

// Template is an ordered list of steps applied as one action.
type Template struct {
	Steps []Step
}

// StepError reports the step that stopped a template.
type StepError struct {
	Index int
	Step  Step
	Err   error
}

func (e *StepError) Error() string {
	if e.Step.Line > 0 {
		return fmt.Sprintf("design: step %d (%s, line %d): %v", e.Index, e.Step.Kind, e.Step.Line, e.Err)
	}
	return fmt.Sprintf("design: step %d (%s): %v", e.Index, e.Step.Kind, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// ApplyTemplate runs every step as a single undoable action and returns the
// module id bound to each alias. If a step fails, everything the template
// did is rolled back. Templates are refused while a gesture is open.
func (c *Controller) ApplyTemplate(t Template) (map[string]string, error) {
	if c.history.Interacting() {
		return nil, fmt.Errorf("design: apply template: %w", ErrInteracting)
	}
	aliases := make(map[string]string)
	var stepErr error
	recorded := c.history.Record(func() {
		for i, s := range t.Steps {
			if err := c.applyStep(s, aliases); err != nil {
				stepErr = &StepError{Index: i, Step: s, Err: err}
				return
			}
		}
	})
	if stepErr != nil {
		if recorded {
			c.history.Revert()
		}
		c.log.Info("template rejected", "error", stepErr)
		return nil, stepErr
	}
	c.log.Debug("template applied", "steps", len(t.Steps), "modules", len(aliases))
	return aliases, nil
}

func (c *Controller) applyStep(s Step, aliases map[string]string) error {
	if s.Kind == StepPlace {
		def, ok := c.catalog.Definition(s.Definition)
		if !ok {
			return fmt.Errorf("%w %q", ErrUnknownDefinition, s.Definition)
		}
		if s.Alias != "" {
			if _, dup := aliases[s.Alias]; dup {
				return fmt.Errorf("%w %q", ErrDuplicateAlias, s.Alias)
			}
		}
		m := c.addModule(def, geom.Transform{Position: s.Position, Rotation: s.Rotation})
		if s.Alias != "" {
			aliases[s.Alias] = m.ID
		}
		return nil
	}

	m, err := c.resolveAlias(s.Alias, aliases)
	if err != nil {
		return err
	}

	switch s.Kind {
	case StepConnect:
		return c.connect(m, s, aliases)
	case StepSnap:
		if res := c.trySnap(m.ID, SnapOptions{Commit: true}); !res.Committed {
			return fmt.Errorf("%w for %q", ErrNoSnap, s.Alias)
		}
	case StepRotate:
		if len(c.comp.Graph().ForModule(m.ID)) > 0 {
			return fmt.Errorf("%q is connected and cannot rotate", s.Alias)
		}
		c.rotate(m, quarterTurn(m.Rotation(), s.Turns))
	case StepSelect:
		c.comp.Select(m.ID)
	case StepDisjoin:
		if len(c.comp.Nodes().DisjointModule(m.ID)) > 0 {
			c.place(m)
		}
	default:
		return fmt.Errorf("unknown step kind %d", int(s.Kind))
	}
	return nil
}

func (c *Controller) resolveAlias(alias string, aliases map[string]string) (*composition.Module, error) {
	id, ok := aliases[alias]
	if !ok {
		// plain module ids work too
		id = alias
	}
	m := c.comp.Module(id)
	if m == nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownAlias, alias)
	}
	return m, nil
}

// connect moves the group of Other so that its connector lands on the
// connector of Alias, then records the connection. Modules already in the
// same group are joined where they stand.
func (c *Controller) connect(a *composition.Module, s Step, aliases map[string]string) error {
	b, err := c.resolveAlias(s.Other, aliases)
	if err != nil {
		return err
	}
	ac, bc := a.Connector(s.Node), b.Connector(s.OtherNode)
	if ac == nil {
		return fmt.Errorf("%w %q on %q", ErrUnknownConnector, s.Node, s.Alias)
	}
	if bc == nil {
		return fmt.Errorf("%w %q on %q", ErrUnknownConnector, s.OtherNode, s.Other)
	}
	if !composition.Compatible(ac, bc) || ac.Occupied || bc.Occupied || a.ID == b.ID {
		return fmt.Errorf("%w: %s.%s to %s.%s", ErrConnectRejected, s.Alias, s.Node, s.Other, s.OtherNode)
	}

	if !slices.Contains(c.comp.Graph().ConnectedModuleIDs(a.ID), b.ID) {
		pos := snap.ComputeSnapTransform(b.Position(), b.ConnectorWorldPosition(bc), a.ConnectorWorldPosition(ac))
		c.translateGroup(b.ID, pos.Sub(b.Position()))
	}
	if !c.comp.Nodes().MarkOccupied(ac, bc) {
		return fmt.Errorf("%w: %s.%s to %s.%s", ErrConnectRejected, s.Alias, s.Node, s.Other, s.OtherNode)
	}
	return nil
}
