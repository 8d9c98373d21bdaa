package socket

import (
	"context"
	"encoding/json"
	"sync"

	"todoapi/internal/activity/model"
	"todoapi/pkg/logger"
)

const broadcastQueueSize = 64

// SnapshotFunc calls fn with the current activity list. No event may be
// published while fn runs, so a store passes its read-locked list here.
type SnapshotFunc func(fn func([]model.Activity))

type registration struct {
	client   *Client
	snapshot SnapshotFunc
}

// Hub fans activity events out to every connected feed client. Run owns the
// client set; Publish only enqueues.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan model.ActivityEvent
	register   chan registration
	unregister chan *Client
	done       chan struct{}
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan model.ActivityEvent, broadcastQueueSize),
		register:   make(chan registration),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Publish queues evt for delivery. It never blocks; when the queue is full the
// event is dropped.
func (h *Hub) Publish(evt model.ActivityEvent) {
	select {
	case h.broadcast <- evt:
	default:
		logger.Sugar.Warnf("Broadcast queue full, dropping %s event", evt.Type)
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Run serves registrations and broadcasts until ctx is cancelled, then
// disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			return

		case reg := <-h.register:
			// Events queued before the snapshot are already part of it.
			reg.snapshot(func(activities []model.Activity) {
				h.drain()
				h.subscribe(reg.client, activities)
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				logger.Sugar.Debugf("Feed client disconnected from %s", client.Addr)
			}
			h.mu.Unlock()

		case evt := <-h.broadcast:
			h.deliver(evt)
		}
	}
}

// drain delivers every queued event to the current clients.
func (h *Hub) drain() {
	for {
		select {
		case evt := <-h.broadcast:
			h.deliver(evt)
		default:
			return
		}
	}
}

func (h *Hub) subscribe(client *Client, activities []model.Activity) {
	if activities == nil {
		activities = []model.Activity{}
	}
	initial, err := json.Marshal(model.ActivityEvent{Type: model.SnapshotEvent, Payload: activities})
	if err != nil {
		logger.Sugar.Errorf("Error marshalling snapshot: %v", err)
		close(client.Send)
		return
	}
	client.Send <- initial

	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()
	logger.Sugar.Debugf("Feed client connected from %s", client.Addr)
}

func (h *Hub) deliver(evt model.ActivityEvent) {
	payload, err := json.Marshal(evt)
	if err != nil {
		logger.Sugar.Errorf("Error marshalling %s event: %v", evt.Type, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		select {
		case client.Send <- payload:
		default:
			// The client is lagging; drop it rather than block the hub.
			logger.Sugar.Warnf("Client %s's send buffer is full. Disconnecting.", client.Addr)
			delete(h.clients, client)
			close(client.Send)
		}
	}
}

// subscribeClient hands c to Run, which sends the snapshot and adds c to the
// client set. It reports false once the hub has stopped.
func (h *Hub) subscribeClient(c *Client, snapshot SnapshotFunc) bool {
	select {
	case h.register <- registration{client: c, snapshot: snapshot}:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unsubscribeClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
