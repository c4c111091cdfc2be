package driver

import (
	"context"
	"sync"

	"github.com/chromedp/cdproto"
)

// cdpEvent is a decoded CDP event as delivered to subscribers.
type cdpEvent struct {
	Name cdproto.MethodType
	Data interface{}
}

// watcher fans decoded CDP events out to subscribers. A slow subscriber
// drops events rather than stalling the receive loop.
type watcher struct {
	ctx    context.Context
	subsMu sync.RWMutex
	subs   map[cdproto.MethodType][]chan *cdpEvent
}

func newWatcher(ctx context.Context) *watcher {
	return &watcher{
		ctx:  ctx,
		subs: make(map[cdproto.MethodType][]chan *cdpEvent),
	}
}

// subscribe returns a channel receiving the given CDP events.
func (w *watcher) subscribe(events ...cdproto.MethodType) <-chan *cdpEvent {
	w.subsMu.Lock()
	defer w.subsMu.Unlock()
	ch := make(chan *cdpEvent, 16)
	for _, evt := range events {
		w.subs[evt] = append(w.subs[evt], ch)
	}
	return ch
}

func (w *watcher) notify(evt *cdpEvent) {
	w.subsMu.RLock()
	defer w.subsMu.RUnlock()
	for _, ch := range w.subs[evt.Name] {
		select {
		case ch <- evt:
		case <-w.ctx.Done():
			return
		default:
			// Subscriber is not keeping up; skip rather than block the
			// receive loop.
		}
	}
}
