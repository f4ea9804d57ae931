package websocket

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UnicastMessage struct {
	UserID  uuid.UUID
	Message []byte
}

// Hub maintains the set of active clients and routes each message to the
// connections of a single user.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Messages addressed to one user.
	unicast chan UnicastMessage

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Channel to signal termination
	stop     chan struct{}
	stopOnce sync.Once

	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		unicast:    make(chan UnicastMessage),
		register:   make(chan *Client),
		unregister: make(chan *Client),

		clients: make(map[*Client]bool),
		stop:    make(chan struct{}),
		logger:  logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.logger.Debug("client registered",
				zap.String("remote_addr", client.remoteAddr()),
				zap.String("user_id", client.userID.String()))
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.logger.Debug("client unregistered",
					zap.String("remote_addr", client.remoteAddr()),
					zap.String("user_id", client.userID.String()))
			}
		case msg := <-h.unicast:
			delivered := 0
			for client := range h.clients {
				if client.userID != msg.UserID {
					continue
				}
				select {
				case client.send <- msg.Message:
					delivered++
				default:
					// slow consumer; drop the connection
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.logger.Debug("unicast delivered",
				zap.String("user_id", msg.UserID.String()),
				zap.Int("connections", delivered))
		case <-h.stop:
			h.logger.Info("stopping websocket hub", zap.Int("clients", len(h.clients)))
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			return
		}
	}
}

// SendToUser pushes message to every open connection of userID
func (h *Hub) SendToUser(userID uuid.UUID, message []byte) {
	select {
	case h.unicast <- UnicastMessage{UserID: userID, Message: message}:
	case <-h.stop:
	}
}

func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)
	})
}
