package domains

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chromedp/cdproto/cdp"
	cdpr "github.com/chromedp/cdproto/runtime"
)

// Runtime exposes the CDP Runtime domain actions used by the driver.
type Runtime interface {
	Enable(ctx context.Context) error
	AddBinding(ctx context.Context, name string) error
	EvaluateBool(ctx context.Context, expr string) (bool, error)
}

var _ Runtime = &runtime{}

type runtime struct {
	exec cdp.Executor
}

// NewRuntime returns a new CDP Runtime domain wrapper.
func NewRuntime(exec cdp.Executor) Runtime {
	return &runtime{exec}
}

func (r *runtime) Enable(ctx context.Context) error {
	action := cdpr.Enable()
	if err := action.Do(cdp.WithExecutor(ctx, r.exec)); err != nil {
		return fmt.Errorf("enabling runtime CDP domain: %w", err)
	}

	return nil
}

func (r *runtime) AddBinding(ctx context.Context, name string) error {
	action := cdpr.AddBinding(name)
	if err := action.Do(cdp.WithExecutor(ctx, r.exec)); err != nil {
		return fmt.Errorf("adding binding %q: %w", name, err)
	}

	return nil
}

// EvaluateBool evaluates expr in the page and returns its boolean value.
func (r *runtime) EvaluateBool(ctx context.Context, expr string) (bool, error) {
	action := cdpr.Evaluate(expr).WithReturnByValue(true)

	remote, exception, err := action.Do(cdp.WithExecutor(ctx, r.exec))
	if err != nil {
		return false, fmt.Errorf("evaluating expression: %w", err)
	}
	if exception != nil {
		return false, fmt.Errorf("evaluating expression: %s", exception.Text)
	}
	if remote == nil || remote.Value == nil {
		return false, nil
	}

	var b bool
	if err := json.Unmarshal(remote.Value, &b); err != nil {
		return false, fmt.Errorf("expression did not yield a boolean: %w", err)
	}

	return b, nil
}
