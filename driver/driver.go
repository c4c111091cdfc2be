// Package driver defines the browser-driver capability the replay engine
// and recorder depend on, plus an implementation speaking the Chrome
// DevTools Protocol over a websocket.
package driver

import (
	"context"
	"fmt"
	"time"
)

// Driver is the browser capability consumed by the replay engine. Click and
// Fill report whether the element was present; locating failures are
// distinct from browser-level errors.
type Driver interface {
	// Navigate loads url in the page.
	Navigate(ctx context.Context, url string) error

	// Click clicks the element matching selector. It returns false when no
	// element matches; the caller owns the retry/wait policy.
	Click(ctx context.Context, selector string) (found bool, err error)

	// Fill writes value into the element matching selector. Not-found
	// semantics are the same as Click's.
	Fill(ctx context.Context, selector, value string) (found bool, err error)

	// Sleep blocks for d or until ctx is done.
	Sleep(ctx context.Context, d time.Duration) error
}

// EventSource is implemented by drivers that can capture user interactions
// for recording. The returned channel is closed when capture stops.
type EventSource interface {
	StartCapture(ctx context.Context) (<-chan RawEvent, error)
}

// RawEventKind tags a captured browser event.
type RawEventKind string

const (
	RawNavigate RawEventKind = "navigate"
	RawClick    RawEventKind = "click"
	RawInput    RawEventKind = "input"
)

// RawEvent is one captured interaction as reported by the browser, before
// the recorder canonicalizes it into a recipe step.
type RawEvent struct {
	Kind     RawEventKind
	URL      string
	Selector string
	Text     string
	Value    string
	Time     time.Time
}

// Error wraps a lower-level browser failure, e.g. a navigation timeout or a
// dropped DevTools connection.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("driver: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
