package script

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/prefab/pkg/design"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// sexpModule is the value returned by (module ...): a handle on a placed
// module by alias.
type sexpModule struct {
	alias string
}

func (m *sexpModule) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(module %q)", m.alias)
}
func (m *sexpModule) Type() *zygo.RegisteredType { return nil }

type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// kwArgs splits an argument list into keyword and positional arguments.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

func parseArgs(args []zygo.Sexp) kwArgs {
	pa := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			pa.positional = append(pa.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			pa.kw[name] = args[i+1]
			i++
		} else {
			pa.kw[name] = zygo.SexpNull
		}
	}
	return pa
}

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toInt(s zygo.Sexp) (int, error) {
	f, err := toFloat64(s)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("expected whole number, got %g", f)
	}
	return int(f), nil
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toAlias accepts a module handle or a string naming an alias or module id.
func toAlias(s zygo.Sexp) (string, error) {
	switch v := s.(type) {
	case *sexpModule:
		return v.alias, nil
	case *zygo.SexpStr:
		if v.S == "" {
			return "", fmt.Errorf("empty module name")
		}
		return v.S, nil
	}
	return "", fmt.Errorf("expected module, got %T (%s)", s, s.SexpString(nil))
}

// builder accumulates template steps while a script runs.
type builder struct {
	steps   []design.Step
	aliases map[string]bool
	anon    int
}

func newBuilder() *builder {
	return &builder{aliases: make(map[string]bool)}
}

func (b *builder) add(s design.Step) { b.steps = append(b.steps, s) }

// register installs the layout builtins. Source must have gone through
// preprocess so that keywords arrive as marked strings.
func (b *builder) register(env *zygo.Zlisp) {

	// (vec3 x y z)
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var xyz [3]float64
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %c: %w", "xyz"[i], err)
			}
			xyz[i] = f
		}
		return &sexpVec3{vec: v3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}}, nil
	})

	// (module "dwelling" :at (vec3 0 0 0) :rotate (vec3 0 90 0) :as "home")
	// Rotation is in degrees.
	env.AddFunction("module", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("module requires a definition id")
		}
		def, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("module: definition: %w", err)
		}
		step := design.Step{Kind: design.StepPlace, Definition: def}

		if v, ok := pa.kw["at"]; ok {
			if step.Position, err = toVec3(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("module: at: %w", err)
			}
		}
		if v, ok := pa.kw["rotate"]; ok {
			deg, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("module: rotate: %w", err)
			}
			step.Rotation = deg.MulScalar(math.Pi / 180)
		}
		if v, ok := pa.kw["as"]; ok {
			if step.Alias, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("module: as: %w", err)
			}
			if step.Alias == "" {
				return zygo.SexpNull, fmt.Errorf("module: as: empty alias")
			}
		} else {
			b.anon++
			step.Alias = fmt.Sprintf("%s-%d", def, b.anon)
		}
		if b.aliases[step.Alias] {
			return zygo.SexpNull, fmt.Errorf("module: alias %q already used", step.Alias)
		}
		b.aliases[step.Alias] = true

		b.add(step)
		return &sexpModule{alias: step.Alias}, nil
	})

	// (connect home "east" annex "west")
	// The second module's group moves so the two connectors meet.
	env.AddFunction("connect", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 4 {
			return zygo.SexpNull, fmt.Errorf("connect requires module, node, module, node; got %d arguments", len(args))
		}
		a, err := toAlias(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("connect: first module: %w", err)
		}
		an, err := toString(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("connect: first node: %w", err)
		}
		o, err := toAlias(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("connect: second module: %w", err)
		}
		on, err := toString(args[3])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("connect: second node: %w", err)
		}
		b.add(design.Step{Kind: design.StepConnect, Alias: a, Node: an, Other: o, OtherNode: on})
		return &sexpModule{alias: a}, nil
	})

	// (rotate home 1) turns a free module by quarter turns.
	env.AddFunction("rotate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("rotate requires a module and a number of quarter turns")
		}
		a, err := toAlias(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: %w", err)
		}
		turns, err := toInt(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: turns: %w", err)
		}
		b.add(design.Step{Kind: design.StepRotate, Alias: a, Turns: turns})
		return &sexpModule{alias: a}, nil
	})

	// (snap m), (select m) and (disjoin m) take a single module.
	for fn, kind := range map[string]design.StepKind{
		"snap":    design.StepSnap,
		"select":  design.StepSelect,
		"disjoin": design.StepDisjoin,
	} {
		env.AddFunction(fn, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 1 {
				return zygo.SexpNull, fmt.Errorf("%s requires exactly one module", name)
			}
			a, err := toAlias(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			b.add(design.Step{Kind: kind, Alias: a})
			return &sexpModule{alias: a}, nil
		})
	}
}
