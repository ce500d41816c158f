package expr

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/juju/errors"
)

// DefaultTimeout is the limit for a single evaluation when none is given.
const DefaultTimeout = 2 * time.Second

// Resolver returns the current value of a referenced property.
type Resolver func(object, property string) (float64, error)

// Error is a parse or runtime error in expression source.
type Error struct {
	Line    int
	Message string
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Evaluator runs expressions in fresh sandboxes. It is safe for concurrent
// use.
//
// A zygomys sandbox cannot be interrupted, so an evaluation that times out
// keeps its goroutine until the expression returns; Stray counts them.
type Evaluator struct {
	timeout time.Duration
	stray   atomic.Int64
}

// NewEvaluator returns an evaluator bounding every evaluation by timeout.
func NewEvaluator(timeout time.Duration) *Evaluator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Evaluator{timeout: timeout}
}

// Timeout returns the evaluation limit.
func (ev *Evaluator) Timeout() time.Duration { return ev.timeout }

// Stray returns the number of timed-out evaluations still running.
func (ev *Evaluator) Stray() int64 { return ev.stray.Load() }

type evalResult struct {
	value float64
	err   error
}

// Evaluation states.
const (
	evalRunning int32 = iota
	evalDone
	evalAbandoned
)

// Eval resolves the references of e and evaluates it to a number.
func (ev *Evaluator) Eval(e *Expr, resolve Resolver) (float64, error) {
	values := make(map[Ref]float64, len(e.refs))
	for _, r := range e.refs {
		v, err := resolve(r.Object, r.Property)
		if err != nil {
			return 0, errors.Annotatef(err, "resolving %s", r)
		}
		values[r] = v
	}
	return ev.evaluate(func() (float64, error) { return run(e.code, values) })
}

// evaluate runs compute on its own goroutine and waits at most the timeout
// for it.
func (ev *Evaluator) evaluate(compute func() (float64, error)) (float64, error) {
	var state atomic.Int32
	ch := make(chan evalResult, 1)
	go func() {
		var res evalResult
		defer func() {
			if r := recover(); r != nil {
				res = evalResult{err: errors.Errorf("panic during evaluation: %v", r)}
			}
			if !state.CompareAndSwap(evalRunning, evalDone) {
				ev.stray.Add(-1)
				logger.Debugf("abandoned evaluation finished")
			}
			ch <- res
		}()
		v, err := compute()
		res = evalResult{value: v, err: err}
	}()
	return ev.waitWithTimeout(ch, &state)
}

// waitWithTimeout waits for the result on ch. On timeout the evaluation is
// marked abandoned unless it completed in the meantime; its late result
// lands in the buffered channel and is dropped.
func (ev *Evaluator) waitWithTimeout(ch <-chan evalResult, state *atomic.Int32) (float64, error) {
	timer := time.NewTimer(ev.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		return res.value, res.err
	case <-timer.C:
		if !state.CompareAndSwap(evalRunning, evalAbandoned) {
			res := <-ch
			return res.value, res.err
		}
		n := ev.stray.Add(1)
		logger.Warningf("evaluation timed out after %s, %d still running", ev.timeout, n)
		return 0, errors.Errorf("evaluation timed out after %s", ev.timeout)
	}
}

func run(code string, values map[Ref]float64) (float64, error) {
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	env.AddFunction("ref", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, errors.Errorf("ref requires an object and a property, got %d arguments", len(args))
		}
		obj, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, errors.Annotate(err, "ref: object")
		}
		prop, err := toString(args[1])
		if err != nil {
			return zygo.SexpNull, errors.Annotate(err, "ref: property")
		}
		v, ok := values[Ref{Object: obj, Property: prop}]
		if !ok {
			return zygo.SexpNull, errors.Errorf("ref: %s.%s is not a literal reference", obj, prop)
		}
		return &zygo.SexpFloat{Val: v}, nil
	})

	if err := env.LoadString(code); err != nil {
		return 0, parseZygomysError(err)
	}
	res, err := env.Run()
	if err != nil {
		return 0, parseZygomysError(err)
	}
	v, err := toFloat64(res)
	if err != nil {
		return 0, errors.Annotate(err, "result")
	}
	return v, nil
}

// checkSyntax loads code into a throwaway sandbox without running it.
func checkSyntax(code string) error {
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	if err := env.LoadString(code); err != nil {
		return parseZygomysError(err)
	}
	return nil
}

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, errors.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", errors.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// linePattern matches zygomys messages like "Error on line N: ...".
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

func parseZygomysError(err error) error {
	msg := err.Error()
	if m := linePattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return &Error{Line: line, Message: strings.TrimSpace(m[2])}
	}
	return &Error{Message: strings.TrimSpace(msg)}
}
