package ws

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/playmatatu/poolsim/internal/game"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096
	sendBufferSize = 64
)

// Sessions looks up running matches.
type Sessions interface {
	Get(id string) (*game.Session, error)
}

// Client is one socket watching a match. Snapshots arrive through the
// session subscription, events and errors through send.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	session *game.Session
	matchID string
	format  Format
	send    chan []byte
}

// HandleWebSocket streams a match to the caller: one snapshot frame per tick
// plus event frames, and accepts intents in the same encoding.
func (h *Hub) HandleWebSocket(sessions Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		format, err := ParseFormat(c.Query("format"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		session, err := sessions.Get(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[WS] Upgrade error: %v", err)
			return
		}

		client := &Client{
			hub:     h,
			conn:    conn,
			session: session,
			matchID: session.ID(),
			format:  format,
			send:    make(chan []byte, sendBufferSize),
		}
		if !h.add(client) {
			conn.Close()
			return
		}

		snaps, cancel := session.Subscribe()
		go client.writePump(snaps)
		go client.readPump(cancel)
	}
}

// readPump turns incoming frames into session intents.
func (c *Client) readPump(unsubscribe func()) {
	defer func() {
		unsubscribe()
		c.hub.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Read error in match %s: %v", c.matchID, err)
			}
			return
		}

		var in game.Intent
		if err := c.format.Unmarshal(data, &in); err != nil {
			c.sendError("invalid intent")
			continue
		}

		switch err := c.session.Submit(in); {
		case errors.Is(err, game.ErrIntentQueueFull):
			c.sendError("intent queue is full, slow down")
		case errors.Is(err, game.ErrSessionClosed):
			return
		case err != nil:
			c.sendError(err.Error())
		}
	}
}

// writePump writes snapshots, queued messages and pings to the connection.
func (c *Client) writePump(snaps <-chan game.Snapshot) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case snap, ok := <-snaps:
			if !ok {
				c.closeFrame("match closed")
				return
			}
			data, err := c.format.Marshal(Message{Type: MessageSnapshot, Snapshot: &snap})
			if err != nil {
				log.Printf("[WS] Error marshaling snapshot for match %s: %v", c.matchID, err)
				continue
			}
			if err := c.write(data); err != nil {
				return
			}

		case message, ok := <-c.send:
			if !ok {
				c.closeFrame("")
				return
			}
			if err := c.write(message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] Ping error in match %s: %v", c.matchID, err)
				return
			}
		}
	}
}

func (c *Client) write(data []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(c.format.frameType(), data); err != nil {
		log.Printf("[WS] Write error in match %s: %v", c.matchID, err)
		return err
	}
	return nil
}

// closeFrame is best effort; the connection may already be gone.
func (c *Client) closeFrame(reason string) {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason))
}

// sendError queues an error frame for this client only.
func (c *Client) sendError(message string) {
	data, err := c.format.Marshal(Message{Type: MessageError, Error: message})
	if err != nil {
		return
	}

	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if _, ok := c.hub.rooms[c.matchID][c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
