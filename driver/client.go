package driver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/chromedp/cdproto"
	"github.com/chromedp/cdproto/cdp"
	"github.com/mailru/easyjson"

	"github.com/snaprec/snaprec/log"
)

var _ cdp.Executor = &client{}

// client manages CDP communication with one page target. Commands are
// correlated to their responses by message ID; everything without an ID is
// an event and goes to the watcher.
type client struct {
	ctx    context.Context
	logger *log.Logger

	conn    *conn
	wsURL   string
	msgID   int64
	writeMu sync.Mutex

	subsMu sync.Mutex
	subs   map[int64]chan *cdproto.Message

	watcher *watcher

	closeOnce sync.Once
	done      chan struct{}
}

// connect dials wsURL and starts the receive loop.
func connect(ctx context.Context, wsURL string, logger *log.Logger) (*client, error) {
	conn, err := dial(ctx, wsURL)
	if err != nil {
		return nil, err
	}
	c := &client{
		ctx:     ctx,
		logger:  logger,
		conn:    conn,
		wsURL:   wsURL,
		subs:    make(map[int64]chan *cdproto.Message),
		watcher: newWatcher(ctx),
		done:    make(chan struct{}),
	}
	logger.Infof("cdp", "established CDP connection to %q", wsURL)

	go c.recvLoop()

	return c, nil
}

func (c *client) close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.conn.close()
	})
	return err
}

// Execute implements cdp.Executor and performs a synchronous send and
// receive.
func (c *client) Execute(ctx context.Context, method string, params easyjson.Marshaler, res easyjson.Unmarshaler) error {
	c.logger.Debugf("cdp", "execute wsURL:%q method:%q", c.wsURL, method)

	id := atomic.AddInt64(&c.msgID, 1)
	recvCh := make(chan *cdproto.Message, 1)
	c.subsMu.Lock()
	c.subs[id] = recvCh
	c.subsMu.Unlock()
	defer func() {
		c.subsMu.Lock()
		delete(c.subs, id)
		c.subsMu.Unlock()
	}()

	var buf []byte
	if params != nil {
		var err error
		if buf, err = easyjson.Marshal(params); err != nil {
			return fmt.Errorf("encoding %q params: %w", method, err)
		}
	}
	msg := &cdproto.Message{
		ID:     id,
		Method: cdproto.MethodType(method),
		Params: buf,
	}

	c.writeMu.Lock()
	err := c.conn.writeMessage(msg)
	c.writeMu.Unlock()
	if err != nil {
		return err
	}

	select {
	case reply := <-recvCh:
		if reply.Error != nil {
			return reply.Error
		}
		if res != nil {
			return easyjson.Unmarshal(reply.Result, res)
		}
		return nil
	case <-c.done:
		return fmt.Errorf("%q: CDP connection closed", method)
	case <-ctx.Done():
		return ctx.Err()
	case <-c.ctx.Done():
		return c.ctx.Err()
	}
}

func (c *client) recvLoop() {
	// Unblocks pending Execute calls when the connection drops out from
	// under us.
	defer c.close() //nolint:errcheck

	for {
		msg, err := c.conn.readMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				if !errors.Is(err, net.ErrClosed) {
					c.logger.Errorf("cdp", "receive loop for %q: %v", c.wsURL, err)
				}
			}
			return
		}

		switch {
		case msg.Method != "":
			evt, err := cdproto.UnmarshalMessage(msg)
			if err != nil {
				c.logger.Debugf("cdp", "ignoring CDP event %q: %v", msg.Method, err)
				continue
			}
			c.watcher.notify(&cdpEvent{Name: msg.Method, Data: evt})
		case msg.ID > 0:
			c.subsMu.Lock()
			ch, ok := c.subs[msg.ID]
			c.subsMu.Unlock()
			if !ok {
				c.logger.Debugf("cdp", "dropping reply to unknown message ID %d", msg.ID)
				continue
			}
			select {
			case ch <- msg:
			case <-c.ctx.Done():
				return
			}
		default:
			c.logger.Warnf("cdp", "ignoring malformed CDP message (missing id and method): %#v", msg)
		}
	}
}
