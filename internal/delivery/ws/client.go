package ws

import (
	"encoding/json"
	"sync"
	"time"

	"medicare-backend/internal/domain/entity"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 64
)

// Client is one live socket. All writes go through the send channel so only
// the writer goroutine touches the connection for output.
type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	send  chan []byte
	done  chan struct{}
	actor entity.Actor

	closeOnce sync.Once
}

func newClient(hub *Hub, conn *websocket.Conn, actor entity.Actor) *Client {
	return &Client{
		hub:   hub,
		conn:  conn,
		send:  make(chan []byte, sendBufferSize),
		done:  make(chan struct{}),
		actor: actor,
	}
}

// sendEvent queues an event for this client only
func (c *Client) sendEvent(event string, payload interface{}) {
	frame, err := json.Marshal(Envelope{Event: event, Data: payload})
	if err != nil {
		return
	}
	select {
	case c.send <- frame:
	default:
		c.closeSlow()
	}
}

// closeSlow tears the connection down when the client cannot drain its send
// buffer. The read loop then fails and the gateway runs the normal cleanup.
func (c *Client) closeSlow() {
	c.closeOnce.Do(func() {
		c.conn.Close()
	})
}

// writePump drains the send channel onto the wire and keeps the connection
// alive with pings
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case frame := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, nil)
			return
		}
	}
}
