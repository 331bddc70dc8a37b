// Package console speaks to a remote command console over a websocket:
// JSON command frames go out, replies are matched back to pending calls by
// id, and unsolicited log frames are forwarded to the correlation bus as
// events. The wire vocabulary here is this module's own transport, not a
// protocol definition for any particular game server.
package console

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/gorilla/websocket"

	"github.com/goliatone/go-scenario/correlate"
)

// Logger is the minimal logging contract this package needs.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

type commandFrame struct {
	ID  int64  `json:"id"`
	Cmd string `json:"cmd"`
}

type serverFrame struct {
	ID       int64     `json:"id,omitempty"`
	Response string    `json:"response,omitempty"`
	Error    string    `json:"error,omitempty"`
	Log      string    `json:"log,omitempty"`
	Actor    string    `json:"actor,omitempty"`
	At       time.Time `json:"at,omitempty"`
}

// Client is one websocket console connection. Safe for sequential use by a
// single orchestrator; concurrent Exec calls are serialized per frame but
// resolve independently.
type Client struct {
	conn   *websocket.Conn
	bus    *correlate.Bus
	logger Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	nextID  int64
	pending map[int64]chan serverFrame
	closed  bool
	done    chan struct{}
}

// Option configures a Client.
type Option func(*Client)

// WithBus forwards unsolicited log frames into bus.
func WithBus(bus *correlate.Bus) Option {
	return func(c *Client) {
		c.bus = bus
	}
}

// WithLogger installs a logger for read-loop diagnostics.
func WithLogger(l Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// Dial connects to the console endpoint and starts the read loop.
func Dial(ctx context.Context, url string, opts ...Option) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryExternal, "console dial failed").
			WithTextCode("CONSOLE_DIAL_FAILED")
	}
	c := &Client{
		conn:    conn,
		pending: make(map[int64]chan serverFrame),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	go c.readLoop()
	return c, nil
}

// Exec sends one command and blocks until its reply, ctx cancellation, or
// connection loss.
func (c *Client) Exec(ctx context.Context, command string) (string, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return "", errors.New("console connection closed", errors.CategoryExternal).
			WithTextCode("CONSOLE_CLOSED")
	}
	c.nextID++
	id := c.nextID
	reply := make(chan serverFrame, 1)
	c.pending[id] = reply
	c.mu.Unlock()

	c.writeMu.Lock()
	err := c.conn.WriteJSON(commandFrame{ID: id, Cmd: command})
	c.writeMu.Unlock()
	if err != nil {
		c.forget(id)
		return "", errors.Wrap(err, errors.CategoryExternal, "console write failed").
			WithTextCode("CONSOLE_WRITE_FAILED")
	}

	select {
	case frame := <-reply:
		if frame.Error != "" {
			return "", errors.New(frame.Error, errors.CategoryExternal).
				WithTextCode("CONSOLE_COMMAND_REJECTED")
		}
		return frame.Response, nil
	case <-c.done:
		return "", errors.New("console connection lost", errors.CategoryExternal).
			WithTextCode("CONSOLE_CLOSED")
	case <-ctx.Done():
		c.forget(id)
		return "", ctx.Err()
	}
}

// Close tears the connection down and unblocks all pending calls.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	err := c.conn.Close()
	return err
}

func (c *Client) forget(id int64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *Client) readLoop() {
	defer func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		close(c.done)
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if c.logger != nil {
				c.logger.Info("console read loop ended: %v", err)
			}
			return
		}

		var frame serverFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			if c.logger != nil {
				c.logger.Error("console frame undecodable: %v", err)
			}
			continue
		}

		if frame.Log != "" {
			if c.bus != nil {
				c.bus.Publish(correlate.Event{
					Timestamp: frame.At,
					Message:   frame.Log,
					Actor:     frame.Actor,
				})
			}
			continue
		}

		c.mu.Lock()
		reply, ok := c.pending[frame.ID]
		if ok {
			delete(c.pending, frame.ID)
		}
		c.mu.Unlock()
		if ok {
			reply <- frame
		}
	}
}
