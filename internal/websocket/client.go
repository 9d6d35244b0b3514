package websocket

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/choreledger/internal/model"
)

const (
	sendBufferSize = 64
	pingInterval   = 30 * time.Second
	replayPage     = 200
)

// EventSource reads the committed event log for catch-up on connect.
type EventSource interface {
	Events(ctx context.Context, after int64, limit int) ([]model.Event, error)
}

// Client represents a single WebSocket connection.
type Client struct {
	hub  *Hub
	conn *ws.Conn
	send chan frame

	// names restricts delivery to these events; empty means all.
	names map[model.EventName]bool
	// src backs resync after the hub had to drop frames; nil disables it.
	src    EventSource
	lagged chan struct{}
	// floor is the seq the stream starts after, -1 until the first live
	// frame for a client that connected without a replay position.
	floor atomic.Int64
	// lastSeq is the highest seq written; frames at or below it were
	// already sent.
	lastSeq int64
}

// NewClient creates a Client tied to the given hub and connection.
func NewClient(hub *Hub, conn *ws.Conn, names []model.EventName) *Client {
	c := &Client{
		hub:  hub,
		conn: conn,
		send:   make(chan frame, sendBufferSize),
		lagged: make(chan struct{}, 1),
	}
	c.floor.Store(-1)
	if len(names) > 0 {
		c.names = make(map[model.EventName]bool, len(names))
		for _, n := range names {
			c.names[n] = true
		}
	}
	return c
}

func (c *Client) wants(name model.EventName) bool {
	return len(c.names) == 0 || c.names[name]
}

// offered records that the hub tried to hand the client a frame.
func (c *Client) offered(seq int64) {
	if seq > 0 {
		c.floor.CompareAndSwap(-1, seq-1)
	}
}

// lag asks the write loop to resync from the log. It reports false when the
// client has no log to resync from.
func (c *Client) lag() bool {
	if c.src == nil {
		return false
	}
	select {
	case c.lagged <- struct{}{}:
	default:
	}
	return true
}

// Run registers the client and streams events until the connection closes.
// With a non-negative after, logged events with a greater seq are replayed
// first. src, when set, is also used to resync if live frames were dropped.
func (c *Client) Run(ctx context.Context, src EventSource, after int64) {
	c.src = src
	if after >= 0 {
		c.floor.Store(after)
	}
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.readPump(ctx, cancel)
	if src != nil && after >= 0 {
		c.lastSeq = after
		if err := c.replay(ctx); err != nil {
			c.hub.logger.Debug("replay stopped", "error", err)
			return
		}
	}
	c.writePump(ctx)
}

// resync replays from the log everything the hub may have dropped.
func (c *Client) resync(ctx context.Context) error {
	if f := c.floor.Load(); f > c.lastSeq {
		c.lastSeq = f
	}
	return c.replay(ctx)
}

// replay writes every logged event after lastSeq, page by page.
func (c *Client) replay(ctx context.Context) error {
	for {
		events, err := c.src.Events(ctx, c.lastSeq, replayPage)
		if err != nil {
			return err
		}
		for _, e := range events {
			c.lastSeq = e.Seq
			if !c.wants(e.Name) {
				continue
			}
			data, err := json.Marshal(FromEvent(e))
			if err != nil {
				return err
			}
			if err := c.conn.Write(ctx, ws.MessageText, data); err != nil {
				return err
			}
		}
		if len(events) < replayPage {
			return nil
		}
	}
}

// readPump reads and discards all incoming messages. It cancels the client
// context on error (connection close), which triggers cleanup.
func (c *Client) readPump(ctx context.Context, cancel context.CancelFunc) {
	defer cancel()
	for {
		_, _, err := c.conn.Read(ctx)
		if err != nil {
			return
		}
	}
}

// writePump drains the send channel and writes messages to the WebSocket.
// It also sends periodic pings to detect stale connections.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case f, ok := <-c.send:
			if !ok {
				return
			}
			if f.seq != 0 && f.seq <= c.lastSeq {
				continue
			}
			if err := c.conn.Write(ctx, ws.MessageText, f.data); err != nil {
				return
			}
			if f.seq > c.lastSeq {
				c.lastSeq = f.seq
			}
		case <-c.lagged:
			if err := c.resync(ctx); err != nil {
				c.hub.logger.Debug("resync stopped", "error", err)
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
