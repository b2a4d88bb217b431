package script

import (
	"fmt"
	"sync"
	"time"

	"github.com/chazu/prefab/pkg/design"
)

type evalResult struct {
	template *design.Template
	errors   []EvalError
	err      error
}

// waitWithTimeout waits for the evaluation behind ch. A result whose
// generation is no longer current is discarded. On timeout the evaluating
// goroutine keeps running and its result is dropped when it arrives.
func waitWithTimeout(
	ch <-chan evalResult,
	gen uint64,
	timeout time.Duration,
	mu *sync.Mutex,
	currentGen *uint64,
) (*design.Template, []EvalError, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		mu.Lock()
		current := *currentGen
		mu.Unlock()
		if gen != current {
			return nil, nil, fmt.Errorf("script: evaluation superseded by newer request")
		}
		return res.template, res.errors, res.err

	case <-timer.C:
		return nil, nil, fmt.Errorf("script: evaluation timed out after %s", timeout)
	}
}
