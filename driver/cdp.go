package driver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/cdproto"
	cdpp "github.com/chromedp/cdproto/page"
	cdpr "github.com/chromedp/cdproto/runtime"
	"github.com/pkg/errors"

	"github.com/snaprec/snaprec/driver/domains"
	"github.com/snaprec/snaprec/driver/js"
	"github.com/snaprec/snaprec/log"
)

// Names of the bindings the capture script reports through.
const (
	clickBinding = "snaprecClick"
	inputBinding = "snaprecInput"
)

var (
	_ Driver      = &CDP{}
	_ EventSource = &CDP{}
)

// CDP drives a single browser page over the Chrome DevTools Protocol. It
// attaches to the websocket URL of an already-running page target
// (ws://host:port/devtools/page/<id>); launching and owning the browser
// process is the operator's business.
type CDP struct {
	logger *log.Logger
	client *client

	page    domains.Page
	runtime domains.Runtime
	browser domains.Browser
}

// Connect attaches to the page target at wsURL.
func Connect(ctx context.Context, wsURL string, logger *log.Logger) (*CDP, error) {
	c, err := connect(ctx, wsURL, logger)
	if err != nil {
		return nil, &Error{Op: "connect", Err: err}
	}
	d := &CDP{
		logger:  logger,
		client:  c,
		page:    domains.NewPage(c),
		runtime: domains.NewRuntime(c),
		browser: domains.NewBrowser(c),
	}

	if product, _, err := d.browser.GetVersion(ctx); err == nil {
		logger.Infof("cdp", "attached to %s", product)
	}

	return d, nil
}

// Close tears down the DevTools connection. The page keeps whatever state
// the last step left it in.
func (d *CDP) Close() error {
	return d.client.close()
}

// Navigate loads url in the page.
func (d *CDP) Navigate(ctx context.Context, url string) error {
	if _, err := d.page.Navigate(ctx, url); err != nil {
		return &Error{Op: "navigate", Err: err}
	}
	return nil
}

// Click clicks the element matching selector, reporting false when no
// element matches.
func (d *CDP) Click(ctx context.Context, selector string) (bool, error) {
	expr := fmt.Sprintf(`(() => {
		const el = document.querySelector(%s);
		if (!el) return false;
		el.click();
		return true;
	})()`, jsString(selector))

	found, err := d.runtime.EvaluateBool(ctx, expr)
	if err != nil {
		return false, &Error{Op: "click", Err: err}
	}
	return found, nil
}

// Fill writes value into the element matching selector, reporting false
// when no element matches. Input and change events are dispatched so the
// page reacts as it would to real typing.
func (d *CDP) Fill(ctx context.Context, selector, value string) (bool, error) {
	expr := fmt.Sprintf(`(() => {
		const el = document.querySelector(%s);
		if (!el) return false;
		el.focus();
		el.value = %s;
		el.dispatchEvent(new Event('input', { bubbles: true }));
		el.dispatchEvent(new Event('change', { bubbles: true }));
		return true;
	})()`, jsString(selector), jsString(value))

	found, err := d.runtime.EvaluateBool(ctx, expr)
	if err != nil {
		return false, &Error{Op: "fill", Err: err}
	}
	return found, nil
}

// Sleep blocks for dur or until ctx is done.
func (d *CDP) Sleep(ctx context.Context, dur time.Duration) error {
	t := time.NewTimer(dur)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StartCapture injects the capture script, registers its bindings and
// returns the stream of raw interaction events. The channel closes when ctx
// is done or the connection drops.
func (d *CDP) StartCapture(ctx context.Context) (<-chan RawEvent, error) {
	if err := d.page.Enable(ctx); err != nil {
		return nil, &Error{Op: "capture", Err: err}
	}
	if err := d.runtime.Enable(ctx); err != nil {
		return nil, &Error{Op: "capture", Err: err}
	}
	for _, binding := range []string{clickBinding, inputBinding} {
		if err := d.runtime.AddBinding(ctx, binding); err != nil {
			return nil, &Error{Op: "capture", Err: err}
		}
	}
	if _, err := d.page.AddScriptToEvaluateOnNewDocument(ctx, js.CaptureScript); err != nil {
		return nil, &Error{Op: "capture", Err: errors.Wrap(err, "injecting capture script")}
	}

	cdpEvents := d.client.watcher.subscribe(
		cdproto.EventRuntimeBindingCalled,
		cdproto.EventPageFrameNavigated,
	)

	events := make(chan RawEvent)
	go func() {
		defer close(events)
		for {
			select {
			case <-ctx.Done():
				return
			case <-d.client.done:
				return
			case evt := <-cdpEvents:
				raw, ok := d.translate(evt)
				if !ok {
					continue
				}
				select {
				case events <- raw:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return events, nil
}

// translate maps a CDP event to a raw capture event. Binding payloads are
// JSON documents produced by the capture script.
func (d *CDP) translate(evt *cdpEvent) (RawEvent, bool) {
	switch data := evt.Data.(type) {
	case *cdpr.EventBindingCalled:
		var payload struct {
			Selector string `json:"selector"`
			Text     string `json:"text"`
			Value    string `json:"value"`
		}
		if err := json.Unmarshal([]byte(data.Payload), &payload); err != nil {
			d.logger.Warnf("cdp", "ignoring malformed %s payload: %v", data.Name, err)
			return RawEvent{}, false
		}
		switch data.Name {
		case clickBinding:
			return RawEvent{
				Kind:     RawClick,
				Selector: payload.Selector,
				Text:     payload.Text,
				Time:     time.Now(),
			}, true
		case inputBinding:
			return RawEvent{
				Kind:     RawInput,
				Selector: payload.Selector,
				Value:    payload.Value,
				Time:     time.Now(),
			}, true
		}
		return RawEvent{}, false
	case *cdpp.EventFrameNavigated:
		// Subframe navigations (ads, embeds) are not part of the user's
		// flow.
		if data.Frame == nil || data.Frame.ParentID != "" {
			return RawEvent{}, false
		}
		return RawEvent{
			Kind: RawNavigate,
			URL:  data.Frame.URL,
			Time: time.Now(),
		}, true
	}
	return RawEvent{}, false
}

// jsString embeds s into a JS expression as a quoted string literal.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
