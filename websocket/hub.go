package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"safetrail/models"
)

// Hub fans live incident location updates out to connected watchers.
// Clients register for one incident and receive every ping recorded
// while they are connected. It implements
// interfaces.IncidentBroadcaster.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]bool // incidentID -> clients

	register   chan *Client
	unregister chan *Client
	broadcast  chan outboundMessage

	done chan struct{}
}

type outboundMessage struct {
	incidentID string
	payload    []byte
}

// wireMessage is the JSON frame pushed to watchers.
type wireMessage struct {
	Type       string              `json:"type"`
	IncidentID string              `json:"incidentId"`
	Ping       models.LocationPing `json:"ping"`
	SentAt     time.Time           `json:"sentAt"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan outboundMessage, 256),
		done:       make(chan struct{}),
	}
}

// Run processes hub events until Shutdown. Call it in its own
// goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.incidentID] == nil {
				h.clients[client.incidentID] = make(map[*Client]bool)
			}
			h.clients[client.incidentID][client] = true
			h.mu.Unlock()
			logrus.Debugf("Watcher connected to incident %s", client.incidentID)

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.incidentID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(h.clients, client.incidentID)
					}
				}
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients[message.incidentID] {
				select {
				case client.send <- message.payload:
				default:
					// Slow consumer, drop the frame.
				}
			}
			h.mu.RUnlock()

		case <-h.done:
			h.mu.Lock()
			for _, clients := range h.clients {
				for client := range clients {
					close(client.send)
				}
			}
			h.clients = make(map[string]map[*Client]bool)
			h.mu.Unlock()
			return
		}
	}
}

// Shutdown disconnects every watcher and stops the run loop.
func (h *Hub) Shutdown() {
	close(h.done)
}

// BroadcastLocationUpdate pushes one ping to every watcher of the
// incident.
func (h *Hub) BroadcastLocationUpdate(incidentID string, ping models.LocationPing) {
	payload, err := json.Marshal(wireMessage{
		Type:       "location_update",
		IncidentID: incidentID,
		Ping:       ping,
		SentAt:     time.Now(),
	})
	if err != nil {
		logrus.Errorf("Failed to encode location update: %v", err)
		return
	}

	select {
	case h.broadcast <- outboundMessage{incidentID: incidentID, payload: payload}:
	default:
		logrus.Warn("Websocket broadcast queue full, dropping location update")
	}
}
