// Package replay executes resolved recipe steps against a browser driver,
// strictly in sequence, aborting on the first failure. Later steps assume
// the DOM state produced by earlier ones, so there is no reordering, no
// concurrency and no automatic retry; the remediation for a drifted page is
// re-recording.
package replay

import (
	"context"
	"fmt"
	"time"

	"github.com/snaprec/snaprec/driver"
	"github.com/snaprec/snaprec/log"
	"github.com/snaprec/snaprec/recipe"
)

// ElementNotFoundError reports a selector that did not resolve to an element
// within the engine's wait window.
type ElementNotFoundError struct {
	Selector string
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("no element found for selector %q", e.Selector)
}

const (
	// DefaultWaitTimeout bounds how long a click or fill waits for its
	// element to appear.
	DefaultWaitTimeout = 10 * time.Second

	defaultPollInterval = 100 * time.Millisecond
)

// Engine replays resolved steps against a driver.
type Engine struct {
	driver       driver.Driver
	logger       *log.Logger
	waitTimeout  time.Duration
	pollInterval time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithWaitTimeout sets the bounded wait window for element lookups.
func WithWaitTimeout(d time.Duration) Option {
	return func(e *Engine) { e.waitTimeout = d }
}

// WithPollInterval sets the delay between element lookup attempts.
func WithPollInterval(d time.Duration) Option {
	return func(e *Engine) { e.pollInterval = d }
}

// NewEngine returns an engine that replays against d.
func NewEngine(d driver.Driver, logger *log.Logger, opts ...Option) *Engine {
	e := &Engine{
		driver:       d,
		logger:       logger,
		waitTimeout:  DefaultWaitTimeout,
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes steps in order and reports the outcome. Malformed steps fail
// the run up front, before any driver call is made. After the first failing
// step the remaining sequence is abandoned; the result records which step
// failed and why.
func (e *Engine) Run(ctx context.Context, steps []recipe.Step) Result {
	res := Result{
		State:      StatePending,
		TotalSteps: len(steps),
		FailedStep: -1,
	}

	// Fail fast on malformed input, not mid-run with side effects already
	// applied to the page.
	for i, s := range steps {
		if err := s.Validate(); err != nil {
			return res.fail(i, s.Action, err)
		}
	}

	res.State = StateRunning
	for i, s := range steps {
		select {
		case <-ctx.Done():
			return res.fail(i, s.Action, ctx.Err())
		default:
		}

		e.logger.Infof("replay", "step %d/%d: %s", i+1, len(steps), describe(s))
		if err := e.runStep(ctx, s); err != nil {
			e.logger.Errorf("replay", "step %d/%d failed: %v", i+1, len(steps), err)
			return res.fail(i, s.Action, err)
		}
		res.Completed++
	}

	res.State = StateCompleted
	return res
}

func (e *Engine) runStep(ctx context.Context, s recipe.Step) error {
	switch s.Action {
	case recipe.ActionNavigate:
		return e.driver.Navigate(ctx, s.URL)
	case recipe.ActionClick:
		return e.withElement(ctx, s.Selector, func(ctx context.Context) (bool, error) {
			return e.driver.Click(ctx, s.Selector)
		})
	case recipe.ActionFill:
		return e.withElement(ctx, s.Selector, func(ctx context.Context) (bool, error) {
			return e.driver.Fill(ctx, s.Selector, s.Value)
		})
	case recipe.ActionWait:
		return e.driver.Sleep(ctx, time.Duration(s.Duration)*time.Millisecond)
	}
	// Unreachable: steps were validated before the run started.
	return &recipe.ValidationError{Reason: fmt.Sprintf("unknown action %q", s.Action)}
}

// withElement retries attempt until it reports the element present, the wait
// window closes, or the driver fails.
func (e *Engine) withElement(ctx context.Context, selector string, attempt func(context.Context) (bool, error)) error {
	deadline := time.Now().Add(e.waitTimeout)
	for {
		found, err := attempt(ctx)
		if err != nil {
			return err
		}
		if found {
			return nil
		}
		if time.Now().After(deadline) {
			return &ElementNotFoundError{Selector: selector}
		}
		e.logger.Debugf("replay", "element %q not present yet, retrying", selector)
		if err := e.driver.Sleep(ctx, e.pollInterval); err != nil {
			return err
		}
	}
}

func describe(s recipe.Step) string {
	switch s.Action {
	case recipe.ActionNavigate:
		return fmt.Sprintf("navigate %s", s.URL)
	case recipe.ActionClick:
		return fmt.Sprintf("click %s", s.Selector)
	case recipe.ActionFill:
		return fmt.Sprintf("fill %s", s.Selector)
	case recipe.ActionWait:
		return fmt.Sprintf("wait %dms", s.Duration)
	}
	return string(s.Action)
}
