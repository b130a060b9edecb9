package match

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sophialabs/sigtrace/internal/domain/check"
	"github.com/sophialabs/sigtrace/internal/domain/pattern"
	"github.com/sophialabs/sigtrace/internal/domain/signature"
	"github.com/sophialabs/sigtrace/internal/domain/trace"
)

const (
	defaultConcurrency = 8
	defaultTimeout     = 5 * time.Second
)

// Engine evaluates every applicable signature against a trace. Signatures
// are mutually independent, so evaluations run in parallel under a bounded
// worker limit; the only shared mutable state is the pattern compile cache,
// which is concurrent-safe. Runs hold no state between each other and may
// execute concurrently over different traces.
type Engine struct {
	version     string
	concurrency int
	timeout     time.Duration
	cache       *pattern.Cache
}

// NewEngine creates an engine for the given engine version. Non-positive
// concurrency or timeout values fall back to defaults.
func NewEngine(version string, concurrency int, timeout time.Duration) *Engine {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Engine{
		version:     version,
		concurrency: concurrency,
		timeout:     timeout,
		cache:       pattern.NewCache(),
	}
}

// Version returns the engine version used for applicability filtering.
func (e *Engine) Version() string { return e.version }

// Evaluate runs all applicable signatures from reg against t and returns
// the ordered result set. A single signature's failure — bad regex, panic,
// timeout — lands in the error record and never aborts the run. An empty
// registry yields an empty, non-error result set.
func (e *Engine) Evaluate(ctx context.Context, t *trace.Trace, reg *signature.Registry) (*ResultSet, error) {
	sigs, err := reg.Applicable(e.version)
	if err != nil {
		return nil, err
	}

	rs := &ResultSet{
		Signatures: []Match{},
		Errors:     make(map[string]string),
	}

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(e.concurrency)

	for _, sig := range sigs {
		sig := sig
		g.Go(func() error {
			verdict, evidence, evalErr := e.evaluateOne(ctx, t, sig)

			mu.Lock()
			defer mu.Unlock()
			if evalErr != nil {
				rs.Errors[sig.Meta.Name] = evalErr.Error()
				return nil
			}
			if verdict {
				rs.Signatures = append(rs.Signatures, newMatch(sig, evidence))
			}
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; failures land in rs.Errors

	sortMatches(rs.Signatures)
	if len(rs.Errors) == 0 {
		rs.Errors = nil
	}
	return rs, nil
}

// evaluateOne runs a single signature in isolation: fresh session, bounded
// execution budget, panics converted to errors.
func (e *Engine) evaluateOne(ctx context.Context, t *trace.Trace, sig *signature.Signature) (verdict bool, evidence []check.Evidence, err error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			verdict = false
			evidence = nil
			err = fmt.Errorf("evaluation panicked: %v", r)
		}
	}()

	session := check.NewSession(ctx, t, e.cache)
	ok, evalErr := sig.Eval(ctx, session)
	if evalErr != nil {
		if errors.Is(evalErr, context.DeadlineExceeded) {
			return false, nil, fmt.Errorf("evaluation timed out after %s", e.timeout)
		}
		return false, nil, evalErr
	}
	return ok, session.Evidence(), nil
}
