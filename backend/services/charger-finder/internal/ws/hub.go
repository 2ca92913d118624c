package ws

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"markev/backend/services/charger-finder/internal/metrics"
	"markev/backend/services/charger-finder/internal/models"
)

// Feed message types.
const (
	MessageSnapshot = "snapshot"
	MessageReseed   = "reseed"
)

// Message is the frame pushed to feed subscribers.
type Message struct {
	Event     string              `json:"event"`
	Chargers  []models.ChargerDTO `json:"chargers"`
	Timestamp time.Time           `json:"timestamp"`
}

// NewMessage builds a feed frame for chargers.
func NewMessage(kind string, chargers []models.Charger) Message {
	return Message{
		Event:     kind,
		Chargers:  models.ToDTOs(chargers),
		Timestamp: time.Now().UTC(),
	}
}

// Hub tracks live feed subscribers.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]*Subscriber
	logger      *zap.Logger
}

// NewHub builds an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subscribers: make(map[string]*Subscriber),
		logger:      logger,
	}
}

// Add registers a subscriber.
func (h *Hub) Add(sub *Subscriber) {
	h.mu.Lock()
	h.subscribers[sub.ID()] = sub
	count := len(h.subscribers)
	h.mu.Unlock()
	metrics.SetFeedSubscribers(count)
}

// Remove drops a subscriber.
func (h *Hub) Remove(id string) {
	h.mu.Lock()
	delete(h.subscribers, id)
	count := len(h.subscribers)
	h.mu.Unlock()
	metrics.SetFeedSubscribers(count)
}

// Len returns the number of connected subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Broadcast sends msg to every subscriber. Slow subscribers drop the frame.
func (h *Hub) Broadcast(msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to encode feed message", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subscribers {
		sub.Send(payload)
	}
}

// BroadcastReseed is suitable as a reseed callback.
func (h *Hub) BroadcastReseed(chargers []models.Charger) {
	h.Broadcast(NewMessage(MessageReseed, chargers))
}

// Close disconnects all subscribers.
func (h *Hub) Close() {
	h.mu.RLock()
	subs := make([]*Subscriber, 0, len(h.subscribers))
	for _, sub := range h.subscribers {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subs {
		sub.Close()
	}
}
