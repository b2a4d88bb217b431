package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chazu/prefab/pkg/catalog"
	"github.com/chazu/prefab/pkg/config"
	"github.com/chazu/prefab/pkg/design"
	"github.com/chazu/prefab/pkg/kernel"
	"github.com/chazu/prefab/pkg/kernel/sdfx"
	"github.com/chazu/prefab/pkg/logging"
	"github.com/chazu/prefab/pkg/script"
	"github.com/chazu/prefab/pkg/tessellate"
	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// stateEvent is emitted to the frontend with the new State after every
// change.
const stateEvent = "prefab:state"

// frameInterval approximates one display frame.
const frameInterval = 16 * time.Millisecond

// colorPalette assigns each catalog definition a distinct massing color.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App is the Wails backend. It exposes methods to the frontend via bindings
// and serializes every call onto one controller.
type App struct {
	ctx context.Context
	log *slog.Logger

	mu     sync.Mutex
	ctrl   *design.Controller
	eval   *script.Evaluator
	kernel kernel.Kernel
	drag   *design.Drag
	frames design.FrameScheduler
}

// DefinitionData describes a catalog entry for the module picker.
type DefinitionData struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Beds        float64 `json:"beds"`
	Baths       float64 `json:"baths"`
	Sqft        float64 `json:"sqft"`
	Cost        float64 `json:"cost"`
}

// MeshData is the JSON-serializable massing mesh sent to the frontend.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	ModuleID string    `json:"moduleId"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable script error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is returned by Evaluate.
type EvalResult struct {
	Modules map[string]string `json:"modules"`
	Errors  []EvalErrorData   `json:"errors"`
}

// NewApp creates an App editing an empty composition.
func NewApp(cfg config.Config, cat *catalog.Catalog, log *slog.Logger) *App {
	if log == nil {
		log = logging.Discard()
	}
	a := &App{
		log:    log,
		ctrl:   design.New(cfg, cat, nil, log),
		eval:   script.New(cfg.EvalTimeout),
		kernel: sdfx.New(),
	}
	a.frames = timerFrames{app: a}
	return a
}

// startup is called by Wails on app startup. The context is kept for
// runtime calls.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// timerFrames runs scheduled work on a timer, holding the app lock.
type timerFrames struct {
	app *App
}

func (f timerFrames) Schedule(fn func()) {
	time.AfterFunc(frameInterval, func() {
		f.app.mu.Lock()
		fn()
		f.app.mu.Unlock()
		f.app.emitState()
	})
}

func (a *App) emitState() {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, stateEvent, a.State())
}

// update runs fn under the lock and then publishes the new state.
func (a *App) update(fn func()) {
	a.mu.Lock()
	fn()
	a.mu.Unlock()
	a.emitState()
}

// Catalog lists the module definitions that can be placed.
func (a *App) Catalog() []DefinitionData {
	a.mu.Lock()
	defer a.mu.Unlock()
	defs := a.ctrl.Catalog().List()
	out := make([]DefinitionData, 0, len(defs))
	for _, d := range defs {
		out = append(out, DefinitionData{
			ID:          d.ID,
			Name:        d.Name,
			Description: d.Description,
			Beds:        d.Metrics.Beds,
			Baths:       d.Metrics.Baths,
			Sqft:        d.Metrics.Sqft,
			Cost:        d.BaseCost,
		})
	}
	return out
}

// State returns the current composition.
func (a *App) State() design.State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ctrl.State()
}

// CreateModule places a module of the given definition near at.
func (a *App) CreateModule(definition string, at design.Vec3) (string, error) {
	var id string
	var ok bool
	a.update(func() { id, ok = a.ctrl.CreateModule(definition, at.Vec()) })
	if !ok {
		return "", fmt.Errorf("unknown definition %q", definition)
	}
	return id, nil
}

// RemoveModule deletes a module.
func (a *App) RemoveModule(id string) error {
	var ok bool
	a.update(func() { ok = a.ctrl.RemoveModule(id) })
	if !ok {
		return fmt.Errorf("unknown module %q", id)
	}
	return nil
}

// MoveModule moves a module and its connected group to a position.
func (a *App) MoveModule(id string, to design.Vec3, detach bool) design.MoveResult {
	var res design.MoveResult
	a.update(func() { res = a.ctrl.MoveGroup(id, to.Vec(), detach) })
	return res
}

// RotateModule turns a free module by quarter turns.
func (a *App) RotateModule(id string, turns int) error {
	var ok bool
	a.update(func() {
		if a.drag != nil && a.drag.ModuleID() == id {
			ok = a.drag.Rotate(turns)
			return
		}
		ok = a.ctrl.RotateQuarter(id, turns)
	})
	if !ok {
		return errors.New("module cannot rotate")
	}
	return nil
}

// BeginDrag starts a drag gesture. Any drag still open is ended first.
func (a *App) BeginDrag(id string) error {
	var ok bool
	a.update(func() {
		if a.drag != nil {
			a.drag.End()
		}
		a.drag, ok = a.ctrl.BeginDrag(id, a.frames)
	})
	if !ok {
		return fmt.Errorf("unknown module %q", id)
	}
	return nil
}

// DragTo moves the dragged module toward a pointer position. Moves are
// evaluated at most once per frame.
func (a *App) DragTo(to design.Vec3) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.drag != nil {
		a.drag.Move(to.Vec())
	}
}

// EndDrag finishes the gesture, committing a snap if one is in range. It
// reports whether the composition changed.
func (a *App) EndDrag() bool {
	var changed bool
	a.update(func() {
		if a.drag == nil {
			return
		}
		changed = a.drag.End()
		a.drag = nil
	})
	return changed
}

// Disjoin disconnects a module and returns its former neighbours.
func (a *App) Disjoin(id string) []string {
	var others []string
	a.update(func() { others = a.ctrl.Disjoin(id) })
	return others
}

// Select selects a module; an empty id clears the selection.
func (a *App) Select(id string) error {
	var ok bool
	a.update(func() { ok = a.ctrl.Select(id) })
	if !ok {
		return fmt.Errorf("unknown module %q", id)
	}
	return nil
}

// Undo reverts the last action.
func (a *App) Undo() bool {
	var ok bool
	a.update(func() { ok = a.ctrl.Undo() })
	return ok
}

// Redo reapplies the last undone action.
func (a *App) Redo() bool {
	var ok bool
	a.update(func() { ok = a.ctrl.Redo() })
	return ok
}

// Evaluate runs a layout script and applies it as one undoable action.
// An open drag is ended first.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{Modules: map[string]string{}, Errors: []EvalErrorData{}}

	tmpl, evalErrs, err := a.eval.Evaluate(source)
	if err != nil {
		a.log.Warn("evaluate failed", "error", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return result
	}

	a.update(func() {
		if a.drag != nil {
			a.drag.End()
			a.drag = nil
		}
		ids, err := a.ctrl.ApplyTemplate(*tmpl)
		if err != nil {
			var se *design.StepError
			line := 0
			if errors.As(err, &se) {
				line = se.Step.Line
			}
			result.Errors = append(result.Errors, EvalErrorData{Line: line, Message: err.Error()})
			return
		}
		result.Modules = ids
	})
	return result
}

// Massing tessellates every placed module for the 3D viewport. Modules of
// the same definition share a color.
func (a *App) Massing() ([]MeshData, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	meshes, err := tessellate.Tessellate(a.ctrl.Composition(), a.kernel)
	if err != nil {
		a.log.Error("tessellation failed", "error", err)
		return nil, err
	}
	colors := make(map[string]string)
	for i, d := range a.ctrl.Catalog().List() {
		colors[d.ID] = colorPalette[i%len(colorPalette)]
	}

	out := make([]MeshData, 0, len(meshes))
	for _, m := range meshes {
		color := colorPalette[0]
		if mod := a.ctrl.Composition().Module(m.ModuleID); mod != nil && mod.Definition != nil {
			if c, ok := colors[mod.Definition.ID]; ok {
				color = c
			}
		}
		out = append(out, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			ModuleID: m.ModuleID,
			Color:    color,
		})
	}
	return out, nil
}
