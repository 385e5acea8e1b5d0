package ws

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

// Hub fans events out to every connected client. Services push through
// BroadcastJSON; the read side only tracks connect and disconnect.
type Hub struct {
	Clients    map[*websocket.Conn]bool
	Register   chan *websocket.Conn
	Unregister chan *websocket.Conn
	Broadcast  chan []byte
	logger     *zap.Logger
	mutex      sync.Mutex
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		Clients:    make(map[*websocket.Conn]bool),
		Register:   make(chan *websocket.Conn),
		Unregister: make(chan *websocket.Conn),
		Broadcast:  make(chan []byte, 64),
		logger:     logger,
	}
}

// Envelope is the wire shape of every pushed event.
type Envelope struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// BroadcastJSON wraps the payload in an envelope and queues it for all
// clients. Drops the event if the queue is full rather than blocking the
// caller; pushes are best-effort notifications, never state of record.
func (h *Hub) BroadcastJSON(event string, payload interface{}) {
	data, err := json.Marshal(Envelope{Event: event, Payload: payload})
	if err != nil {
		h.logger.Error("websocket payload marshal failed", zap.String("event", event), zap.Error(err))
		return
	}
	select {
	case h.Broadcast <- data:
	default:
		h.logger.Warn("websocket broadcast queue full, event dropped", zap.String("event", event))
	}
}

func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.Register:
			h.mutex.Lock()
			h.Clients[conn] = true
			h.mutex.Unlock()
			h.logger.Info("websocket client connected", zap.Int("clients", len(h.Clients)))

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.Clients[conn]; ok {
				delete(h.Clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn := range h.Clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					delete(h.Clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}
