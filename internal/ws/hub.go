package ws

import (
	"context"
	"encoding/json"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"

	"go-marketplace-ledger/internal/model"
)

// Client is the subset of *websocket.Conn the hub writes to.
type Client interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type Hub struct {
	Clients    map[Client]bool
	Register   chan Client
	Unregister chan Client
	Broadcast  chan []byte
	logger     *zap.Logger
	done       chan struct{}
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		Clients:    make(map[Client]bool),
		Register:   make(chan Client),
		Unregister: make(chan Client),
		Broadcast:  make(chan []byte, 64),
		logger:     logger.Named("ws"),
		done:       make(chan struct{}),
	}
}

// Run owns Clients; everything else talks to it through the channels.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for conn := range h.Clients {
				conn.Close()
				delete(h.Clients, conn)
			}
			return

		case conn := <-h.Register:
			h.Clients[conn] = true
			h.logger.Debug("client connected", zap.Int("clients", len(h.Clients)))

		case conn := <-h.Unregister:
			if _, ok := h.Clients[conn]; ok {
				delete(h.Clients, conn)
				conn.Close()
			}

		case message := <-h.Broadcast:
			for conn := range h.Clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					delete(h.Clients, conn)
				}
			}
		}
	}
}

// Add registers c, or closes it if the hub has stopped.
func (h *Hub) Add(c Client) {
	select {
	case h.Register <- c:
	case <-h.done:
		c.Close()
	}
}

// Remove unregisters c; a no-op once the hub has stopped.
func (h *Hub) Remove(c Client) {
	select {
	case h.Unregister <- c:
	case <-h.done:
	}
}

// Done is closed once Run returns.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

type eventPayload struct {
	Type  string             `json:"type"`
	Event model.ProductEvent `json:"event"`
}

// Notify implements events.Observer. It never blocks the ledger: when the
// broadcast buffer is full the event is dropped for websocket clients.
func (h *Hub) Notify(_ context.Context, event model.ProductEvent) {
	msg, err := json.Marshal(eventPayload{Type: "product_event", Event: event})
	if err != nil {
		h.logger.Error("marshal event", zap.Error(err))
		return
	}
	select {
	case h.Broadcast <- msg:
	default:
		h.logger.Warn("broadcast buffer full, dropping event", zap.Uint64("id", event.ID))
	}
}
