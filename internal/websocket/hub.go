package websocket

import "github.com/rs/zerolog/log"

// Hub maintains the set of active clients and routes change events to them.
// Clients are keyed by the authenticated user that owns the connection, so an
// event about one user's data never reaches another user's browser.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// A map of user IDs to the set of their open connections.
	byUser map[string]map[*Client]bool

	// Inbound targeted events from the services.
	events chan userMessage
}

type userMessage struct {
	userID  string
	payload []byte
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		byUser:     make(map[string]map[*Client]bool),
		events:     make(chan userMessage, 64),
	}
}

// Run starts the Hub's message processing loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.clients[client] = true
			if h.byUser[client.UserID] == nil {
				h.byUser[client.UserID] = make(map[*Client]bool)
			}
			h.byUser[client.UserID][client] = true
			log.Info().Int("total_clients", len(h.clients)).Msg("Client connected")

		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				log.Info().Int("total_clients", len(h.clients)).Msg("Client disconnected")
			}

		case msg := <-h.events:
			for client := range h.byUser[msg.userID] {
				select {
				case client.Send <- msg.payload:
				default:
					h.drop(client)
				}
			}
		}
	}
}

// NotifyChange implements services.Notifier, pushing an entity-change event
// to every connection of one user. Never blocks: if the hub's event queue is
// full the event is dropped, since clients refetch on the next event anyway.
func (h *Hub) NotifyChange(userID, entity, action string) {
	payload := NewChangeMessage(entity, action)
	select {
	case h.events <- userMessage{userID: userID, payload: payload}:
	default:
		log.Warn().Str("entity", entity).Msg("Change event dropped, hub queue full")
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	if subs, ok := h.byUser[client.UserID]; ok {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.byUser, client.UserID)
		}
	}
	close(client.Send)
}
