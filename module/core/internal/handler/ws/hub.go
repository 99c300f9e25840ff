package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/nandanugg/geotrack/module/core/domain"
	"github.com/nandanugg/geotrack/module/core/internal/repository/publisher"
)

var _ publisher.EventPublisher = (*Hub)(nil)

// Hub keeps the connected WebSocket clients and fans crossing events out to
// them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run services the hub until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			log.Debug().Str("remote", c.remote()).Msg("websocket client registered")

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			log.Debug().Str("remote", c.remote()).Msg("websocket client unregistered")

		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					log.Warn().Str("remote", c.remote()).Msg("websocket client too slow, dropping")
					delete(h.clients, c)
					close(c.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

type message struct {
	Type    string                `json:"type"`
	Payload *domain.CrossingEvent `json:"payload"`
}

// PublishEvent queues e for every connected client.
func (h *Hub) PublishEvent(ctx context.Context, e *domain.CrossingEvent) error {
	if h.ClientCount() == 0 {
		return publisher.ErrNoSubscribers
	}

	body, err := json.Marshal(message{Type: "crossing", Payload: e})
	if err != nil {
		return fmt.Errorf("marshal crossing: %w", err)
	}

	select {
	case h.broadcast <- body:
		return nil
	case <-h.done:
		return publisher.ErrNoSubscribers
	case <-ctx.Done():
		return ctx.Err()
	}
}
