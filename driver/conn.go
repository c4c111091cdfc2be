package driver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/chromedp/cdproto"
	"github.com/gorilla/websocket"
	"github.com/mailru/easyjson"
	"github.com/mailru/easyjson/jwriter"
	"github.com/oxtoacart/bpool"
)

// conn is the raw websocket transport for CDP messages.
type conn struct {
	ws   *websocket.Conn
	bufs *bpool.BufferPool
}

func dial(ctx context.Context, wsURL string) (*conn, error) {
	wd := &websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
		// DevTools frames can be large (full DOM snapshots and the like).
		ReadBufferSize:  1 << 20,
		WriteBufferSize: 1 << 20,
		Proxy:           http.ProxyFromEnvironment,
	}
	ws, _, err := wd.DialContext(ctx, wsURL, http.Header{})
	if err != nil {
		return nil, fmt.Errorf("dialing DevTools endpoint %q: %w", wsURL, err)
	}
	return &conn{
		ws:   ws,
		bufs: bpool.NewBufferPool(16),
	}, nil
}

func (c *conn) readMessage() (*cdproto.Message, error) {
	_, buf, err := c.ws.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("reading CDP message: %w", err)
	}
	var msg cdproto.Message
	if err := easyjson.Unmarshal(buf, &msg); err != nil {
		return nil, fmt.Errorf("decoding CDP message: %w", err)
	}
	return &msg, nil
}

func (c *conn) writeMessage(msg *cdproto.Message) error {
	var enc jwriter.Writer
	msg.MarshalEasyJSON(&enc)
	if err := enc.Error; err != nil {
		return fmt.Errorf("encoding CDP message %d: %w", msg.ID, err)
	}

	buf := c.bufs.Get()
	defer c.bufs.Put(buf)
	if _, err := enc.DumpTo(buf); err != nil {
		return fmt.Errorf("encoding CDP message %d: %w", msg.ID, err)
	}
	if err := c.ws.WriteMessage(websocket.TextMessage, buf.Bytes()); err != nil {
		return fmt.Errorf("writing CDP message %d: %w", msg.ID, err)
	}
	return nil
}

func (c *conn) close() error {
	return c.ws.Close()
}
