// Package ws pushes change-feed events to dashboard clients over WebSocket.
// Clients connect with a table and an optional doctor filter; each event on
// that topic is forwarded as JSON and the client re-reads the affected list.
package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/clinicore/clinic-scheduling/internal/feed"
)

type Client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub multiplexes feed subscriptions: one upstream subscription per
// (table, doctor) topic, fanned out to every connected dashboard.
type Hub struct {
	sub feed.Subscriber

	mu    sync.Mutex
	rooms map[string]*room
}

type room struct {
	topic   string
	clients map[*Client]struct{}
	stop    func()
}

func NewHub(sub feed.Subscriber) *Hub {
	return &Hub{
		sub:   sub,
		rooms: make(map[string]*room),
	}
}

func (h *Hub) join(ctx context.Context, table, doctor string, c *Client) error {
	topic := feed.Topic(table, doctor)

	h.mu.Lock()
	defer h.mu.Unlock()

	rm, ok := h.rooms[topic]
	if !ok {
		events, stop, err := h.sub.Subscribe(ctx, table, doctor)
		if err != nil {
			return err
		}
		rm = &room{
			topic:   topic,
			clients: make(map[*Client]struct{}),
			stop:    stop,
		}
		h.rooms[topic] = rm
		go h.pump(rm, events)
	}

	rm.clients[c] = struct{}{}
	return nil
}

func (h *Hub) leave(topic string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rm, ok := h.rooms[topic]
	if !ok {
		return
	}
	if _, ok := rm.clients[c]; ok {
		delete(rm.clients, c)
		close(c.send)
	}
	if len(rm.clients) == 0 {
		rm.stop()
		delete(h.rooms, topic)
	}
}

// pump forwards upstream feed events to every client in the room. Clients
// that cannot keep up are dropped rather than blocking the room.
func (h *Hub) pump(rm *room, events <-chan feed.Event) {
	for ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			log.Printf("ws: marshal event on %s: %v", rm.topic, err)
			continue
		}

		h.mu.Lock()
		for c := range rm.clients {
			select {
			case c.send <- data:
			default:
				delete(rm.clients, c)
				close(c.send)
			}
		}
		h.mu.Unlock()
	}
}
