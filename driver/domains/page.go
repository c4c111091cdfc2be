// Package domains wraps the CDP domain actions the driver needs behind
// small interfaces, keeping cdproto plumbing out of the driver logic.
package domains

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/cdp"
	cdpp "github.com/chromedp/cdproto/page"
)

// Page exposes the CDP Page domain actions used by the driver.
type Page interface {
	Enable(ctx context.Context) error
	Navigate(ctx context.Context, url string) (frameID string, err error)
	AddScriptToEvaluateOnNewDocument(ctx context.Context, source string) (id string, err error)
}

var _ Page = &page{}

type page struct {
	exec cdp.Executor
}

// NewPage returns a new CDP Page domain wrapper.
func NewPage(exec cdp.Executor) Page {
	return &page{exec}
}

func (p *page) Enable(ctx context.Context) error {
	action := cdpp.Enable()
	if err := action.Do(cdp.WithExecutor(ctx, p.exec)); err != nil {
		return fmt.Errorf("enabling page CDP domain: %w", err)
	}

	return nil
}

func (p *page) Navigate(ctx context.Context, url string) (string, error) {
	action := cdpp.Navigate(url)

	frameID, _, errorText, err := action.Do(cdp.WithExecutor(ctx, p.exec))
	if err != nil {
		return "", fmt.Errorf("%s at %q: %w", errorText, url, err)
	}
	// Network-level failures surface as errorText with a nil error.
	if errorText != "" {
		return "", fmt.Errorf("navigating to %q: %s", url, errorText)
	}

	return frameID.String(), nil
}

func (p *page) AddScriptToEvaluateOnNewDocument(ctx context.Context, source string) (string, error) {
	action := cdpp.AddScriptToEvaluateOnNewDocument(source)
	id, err := action.Do(cdp.WithExecutor(ctx, p.exec))
	if err != nil {
		return "", fmt.Errorf("installing init script: %w", err)
	}

	return string(id), nil
}
