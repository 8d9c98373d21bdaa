package socket

import (
	"net/http"
	"time"

	"todoapi/pkg/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client is one feed subscriber.
type Client struct {
	Hub  *Hub
	Conn *websocket.Conn
	Addr string
	Send chan []byte
}

// ServeWs upgrades the request and subscribes the connection to hub. The
// client first receives a SNAPSHOT of the list handed over by snapshot, then
// every event published after it.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request, snapshot SnapshotFunc) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Sugar.Errorf("Websocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		Hub:  hub,
		Conn: conn,
		Addr: r.RemoteAddr,
		Send: make(chan []byte, sendBuffer),
	}

	if !client.Hub.subscribeClient(client, snapshot) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump discards inbound messages; it exists to notice the peer going away
// and to process pongs.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unsubscribeClient(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(512)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Sugar.Errorf("error: %v", err)
			}
			return
		}
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
				// The hub closed the channel.
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
