package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/emberdate/spark/internal/types"
)

const writeTimeout = 10 * time.Second

// ErrClosed is returned by Send after the connection has been closed.
var ErrClosed = errors.New("transport closed")

// Conn is a websocket-backed Transport. A single read loop decodes pushed
// events and fans them out to subscribers in delivery order.
type Conn struct {
	reg  *registry
	log  *zap.SugaredLogger
	ws   *websocket.Conn
	done chan struct{}

	writeMu sync.Mutex
	closed  bool
}

// Dial connects to the match channel websocket and starts the read loop.
func Dial(ctx context.Context, url string, log *zap.SugaredLogger) (*Conn, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	c := &Conn{
		reg:  newRegistry(),
		log:  log,
		ws:   ws,
		done: make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Send marshals the event and writes it on the socket. Writes are
// serialized; gorilla connections allow only one concurrent writer.
func (c *Conn) Send(ev types.Event) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return c.ws.WriteJSON(ev)
}

// On subscribes a handler for one event type.
func (c *Conn) On(t types.EventType, h Handler) func() {
	return c.reg.on(t, h)
}

// Close tears down the socket. Pending handlers finish; Send fails afterwards.
func (c *Conn) Close() error {
	c.writeMu.Lock()
	if c.closed {
		c.writeMu.Unlock()
		return nil
	}
	c.closed = true
	c.writeMu.Unlock()

	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeTimeout))
	err := c.ws.Close()
	<-c.done
	return err
}

// Done is closed once the read loop has exited.
func (c *Conn) Done() <-chan struct{} { return c.done }

func (c *Conn) readLoop() {
	defer close(c.done)
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			c.writeMu.Lock()
			closed := c.closed
			c.writeMu.Unlock()
			if !closed && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Warnw("read loop ended", "error", err)
			}
			return
		}
		var ev types.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			c.log.Warnw("dropping malformed event", "error", err)
			continue
		}
		if ev.Type == "" {
			continue
		}
		c.reg.dispatch(ev)
	}
}
