// Package engine evaluates shatter scene scripts. It wraps zygomys in a
// sandboxed environment and produces a scene.Description from user source.
//
// A script is a handful of setter calls over the default description:
//
//	(seed 42)
//	(explosion :count 30 :force 3 :radius 1.2)
//	(complexity :min 5 :max 8)
//	(settle :stop-min 800 :jitter-chance 0.04)
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/chazu/shatter/pkg/scene"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error, a runtime error in user code, or a description
// that fails validation.
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

// Engine wraps the zygomys interpreter.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64
}

// NewEngine creates a new Engine instance.
func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate runs source over the default description.
func (e *Engine) Evaluate(source string) (*scene.Description, []EvalError, error) {
	return e.EvaluateWith(scene.DefaultDescription(), source)
}

// EvaluateWith runs source over base and returns the resulting description.
//
// Return semantics:
//   - On success: returns description + nil errors + nil error
//   - On parse/eval/validation failure: returns nil + eval errors + nil error
//   - On fatal failure (timeout, panic, superseded): returns nil + nil + error
func (e *Engine) EvaluateWith(base scene.Description, source string) (*scene.Description, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		d, evalErrs, err := e.evaluate(base, source)
		ch <- evalResult{desc: d, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(base scene.Description, source string) (*scene.Description, []EvalError, error) {
	desc := base

	// Empty source is a valid program that changes nothing.
	if strings.TrimSpace(source) == "" {
		return &desc, nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, &desc)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}

	if err := desc.Validate(); err != nil {
		return nil, []EvalError{{Message: err.Error()}}, nil
	}
	return &desc, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values,
// pulling out a line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
