// Package sse fans board events out to the clients streaming a team's
// event feed.
package sse

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/dimitrije/tandem-api/internal/metrics"
	"github.com/google/uuid"
)

const (
	EventTicketCreated = "ticket_created"
	EventTicketUpdated = "ticket_updated"
	EventTicketDeleted = "ticket_deleted"
	EventSprintCreated = "sprint_created"
	EventSprintStarted = "sprint_started"
	EventSprintClosed  = "sprint_closed"
	EventMemberJoined  = "member_joined"
	EventMemberLeft    = "member_left"
	EventPresence      = "presence_update"
)

// ClientBufferSize is the number of pending events a client may hold before
// new ones are dropped for it.
const ClientBufferSize = 64

type Event struct {
	Type   string    `json:"type"`
	TeamID uuid.UUID `json:"team_id"`
	Data   any       `json:"data,omitempty"`
}

type OnlineUser struct {
	UserID   uuid.UUID `json:"user_id"`
	UserName string    `json:"user_name"`
}

type PresenceData struct {
	OnlineUsers []OnlineUser `json:"online_users"`
}

type Client struct {
	ID       string
	UserID   uuid.UUID
	UserName string
	TeamID   uuid.UUID
	Send     chan []byte
}

func NewClient(teamID, userID uuid.UUID, userName string) *Client {
	return &Client{
		ID:       uuid.NewString(),
		UserID:   userID,
		UserName: userName,
		TeamID:   teamID,
		Send:     make(chan []byte, ClientBufferSize),
	}
}

type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan Event
	done       chan struct{}
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Event, 256),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until ctx is cancelled. All
// remaining clients are closed on return. Run must be called at most once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				delete(h.clients, id)
				close(client.Send)
			}
			metrics.EventClients.Set(0)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			metrics.EventClients.Inc()
			h.mu.Unlock()
			h.deliver(h.presence(client.TeamID))

		case client := <-h.unregister:
			h.mu.Lock()
			_, ok := h.clients[client.ID]
			if ok {
				delete(h.clients, client.ID)
				close(client.Send)
				metrics.EventClients.Dec()
			}
			h.mu.Unlock()
			if ok {
				h.deliver(h.presence(client.TeamID))
			}

		case event := <-h.broadcast:
			h.deliver(event)
		}
	}
}

// Register adds the client. After the hub stops the client's channel is
// closed straight away.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish queues an event for every client of the team. It never blocks the
// caller: when the queue is full the event is dropped.
func (h *Hub) Publish(teamID uuid.UUID, eventType string, data any) {
	select {
	case h.broadcast <- Event{Type: eventType, TeamID: teamID, Data: data}:
	default:
		metrics.DroppedEvents.Inc()
	}
}

// ClientCount returns the number of clients streaming the team's events.
func (h *Hub) ClientCount(teamID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, client := range h.clients {
		if client.TeamID == teamID {
			n++
		}
	}
	return n
}

func (h *Hub) deliver(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if client.TeamID != event.TeamID {
			continue
		}
		select {
		case client.Send <- data:
		default:
			metrics.DroppedEvents.Inc()
		}
	}
}

// presence lists the distinct users currently connected to a team.
func (h *Hub) presence(teamID uuid.UUID) Event {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[uuid.UUID]bool)
	online := []OnlineUser{}
	for _, client := range h.clients {
		if client.TeamID == teamID && !seen[client.UserID] {
			seen[client.UserID] = true
			online = append(online, OnlineUser{UserID: client.UserID, UserName: client.UserName})
		}
	}

	return Event{Type: EventPresence, TeamID: teamID, Data: PresenceData{OnlineUsers: online}}
}
