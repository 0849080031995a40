package websocket

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Clients only listen; any
	// inbound payload beyond a ping is unexpected.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client is the middleman between one websocket connection and the hub.
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	id         string
	remoteAddr string
	logger     *slog.Logger
}

// ServeWS upgrades an HTTP request to a websocket connection and registers
// the client with the hub.
func ServeWS(hub *Hub, w http.ResponseWriter, r *http.Request, logger *slog.Logger) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.New().String()

	client := &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, 256),
		id:         id,
		remoteAddr: r.RemoteAddr,
		logger: logger.With(
			slog.String("component", "websocket.client"),
			slog.String("client_id", id)),
	}

	hub.register <- client

	go client.writePump()
	go client.readPump()
	return nil
}

// readPump drains inbound frames so control messages are processed; the
// dashboard protocol is push-only.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("unexpected close", slog.String("error", err.Error()))
			}
			return
		}
	}
}

// writePump forwards hub messages to the peer and keeps the connection
// alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
