package ws

import (
	"context"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/clinicore/clinic-scheduling/internal/feed"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Dashboards are served from another origin in dev.
		return true
	},
}

var knownTables = map[string]bool{
	"appointments":   true,
	"patients_queue": true,
}

// Handler upgrades a dashboard connection and streams feed events for the
// requested table, optionally filtered by doctor.
func (h *Hub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		table := r.URL.Query().Get("table")
		if !knownTables[table] {
			http.Error(w, "unknown table", http.StatusBadRequest)
			return
		}
		doctor := r.URL.Query().Get("doctor")

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		client := &Client{conn: conn, send: make(chan []byte, 64)}
		// The request context dies when this handler returns; the room
		// subscription has to outlive it.
		if err := h.join(context.Background(), table, doctor, client); err != nil {
			log.Printf("ws: subscribe failed for %s/%s: %v", table, doctor, err)
			_ = conn.Close()
			return
		}

		topic := feed.Topic(table, doctor)
		go client.writePump()
		go client.readPump(func() { h.leave(topic, client) })
	}
}

// readPump discards inbound frames and tears the client down on close.
func (c *Client) readPump(onClose func()) {
	defer func() {
		onClose()
		_ = c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			break
		}
	}
	_ = c.conn.Close()
}
