package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	ws "github.com/coder/websocket"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
)

// Client represents a single chat connection.
type Client struct {
	hub     *Hub
	conn    *ws.Conn
	handler Handler
	logger  *slog.Logger
	send    chan []byte
}

// NewClient creates a Client tied to the given hub and connection.
func NewClient(hub *Hub, conn *ws.Conn, handler Handler, logger *slog.Logger) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		handler: handler,
		logger:  logger,
		send:    make(chan []byte, sendBufferSize),
	}
}

// Run registers the client, starts the write pump, and runs the read pump.
// It blocks until the connection is closed, then unregisters.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.writePump(ctx)
	c.readPump(ctx)
}

// readPump decodes incoming chat frames and queues the handler's
// replies on the send channel. It returns on error (connection close),
// which triggers cleanup.
func (c *Client) readPump(ctx context.Context) {
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			return
		}

		var in Inbound
		if err := json.Unmarshal(data, &in); err != nil {
			c.logger.Warn("malformed chat frame", "error", err)
			c.reply("Sorry, I couldn't read that message.")
			continue
		}
		if in.ChatID == 0 {
			in.ChatID = in.UserID
		}

		for _, text := range c.handler(in) {
			c.reply(text)
		}
	}
}

func (c *Client) reply(text string) {
	data, err := json.Marshal(Outbound{Text: text})
	if err != nil {
		c.logger.Error("marshal reply", "error", err)
		return
	}
	select {
	case c.send <- data:
	default:
		c.logger.Warn("reply dropped, client buffer full")
	}
}

// writePump drains the send channel and writes frames to the WebSocket.
// It also sends periodic pings to detect stale connections.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				// Hub closed the channel — connection is done
				return
			}
			if err := c.conn.Write(ctx, ws.MessageText, msg); err != nil {
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
