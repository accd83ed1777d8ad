package tracking

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"medtransport/internal/common/auth"
	"medtransport/internal/common/logger"
)

type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// Handler upgrades a dashboard connection and streams hub broadcasts to
// it. Callers must already be authenticated; only admins and reporters
// may watch the fleet.
func Handler(hub *Hub) http.HandlerFunc {
	log := logger.New("tracking")

	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := auth.ActorFromRequest(r)
		if !ok || actor.IsDriver() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error().Err(err).Msg("websocket upgrade failed")
			return
		}

		client := &Client{
			ID:   uuid.NewString(),
			Conn: conn,
			Send: make(chan []byte, 64),
		}
		hub.AddClient(client)
		log.Info().Str("client_id", client.ID).Str("user_id", actor.ID).Msg("dashboard client connected")

		go client.writePump()
		client.readPump(hub)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) readPump(hub *Hub) {
	defer func() {
		hub.RemoveClient(c.ID)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(512)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// The dashboard feed is one-way; inbound frames are drained only to
	// process control messages.
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
	}
}
