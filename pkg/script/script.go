// Package script evaluates prefab layout scripts. A script is a zygomys
// program whose builtins describe module placements and connections; the
// result is a design.Template that a controller applies as one action.
package script

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/prefab/pkg/design"
	zygo "github.com/glycerine/zygomys/zygo"
)

// DefaultTimeout bounds a single evaluation when none is configured.
const DefaultTimeout = 5 * time.Second

// EvalError is a problem in the script itself: a parse error, an unknown
// symbol or a builtin rejecting its arguments.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Evaluator runs scripts in fresh sandboxes. It is safe for concurrent
// use; when evaluations overlap only the newest result is returned.
type Evaluator struct {
	timeout time.Duration

	mu         sync.Mutex
	generation uint64
}

// New returns an Evaluator. A timeout of zero selects DefaultTimeout.
func New(timeout time.Duration) *Evaluator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Evaluator{timeout: timeout}
}

// Evaluate runs source and returns the template it describes.
//
// Problems in the script are returned as EvalErrors with a nil template.
// The error result is reserved for evaluations that did not finish:
// timeouts, panics, or a newer evaluation superseding this one.
func (e *Evaluator) Evaluate(source string) (*design.Template, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("script: panic during evaluation: %v", r)}
			}
		}()
		tmpl, evalErrs := evaluate(source)
		ch <- evalResult{template: tmpl, errors: evalErrs}
	}()

	return waitWithTimeout(ch, gen, e.timeout, &e.mu, &e.generation)
}

func evaluate(source string) (*design.Template, []EvalError) {
	if strings.TrimSpace(source) == "" {
		return &design.Template{}, nil
	}

	env := zygo.NewZlispSandbox()
	defer env.Stop()

	b := newBuilder()
	b.register(env)

	if err := env.LoadString(preprocess(source)); err != nil {
		return nil, parseZygomysError(err)
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err)
	}
	return &design.Template{Steps: b.steps}, nil
}

var (
	linePattern      = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)
	linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)
)

// parseZygomysError extracts a line number from a zygomys error when the
// message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
