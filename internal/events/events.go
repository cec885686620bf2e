package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	EventCalendarLoaded      = "calendar_loaded"
	EventCalendarFetchFailed = "calendar_fetch_failed"
	EventSelectionCleared    = "selection_cleared"
	EventRecordsRejected     = "records_rejected"
)

// CalendarLoadedPayload summarizes a finished load.
type CalendarLoadedPayload struct {
	SessionID string `json:"session_id,omitempty"`
	Month     string `json:"month"`
	Room      string `json:"room,omitempty"`
	Source    string `json:"source"`
	Bookings  int    `json:"bookings"`
	Rooms     int    `json:"rooms"`
	MaxLanes  int    `json:"max_lanes"`
}

type FetchFailedPayload struct {
	SessionID string `json:"session_id,omitempty"`
	Month     string `json:"month"`
	Source    string `json:"source"`
	Error     string `json:"error"`
}

// SelectionClearedPayload is sent when the selected booking is no longer
// visible after a reload.
type SelectionClearedPayload struct {
	SessionID string `json:"session_id,omitempty"`
	BookingID string `json:"booking_id"`
}

type RecordsRejectedPayload struct {
	Source     string `json:"source"`
	Rejected   int    `json:"rejected"`
	Duplicates int    `json:"duplicates"`
}

// Event represents a lightweight domain event.
type Event struct {
	ID        string
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	all         []EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// SubscribeAll registers a handler for every event type.
func (b *EventBus) SubscribeAll(handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.all = append(b.all, handler)
}

// Publish notifies subscribers of the event type, then catch-all handlers.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	handlers = append(handlers, b.all...)
	b.mu.RUnlock()

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	event, err := NewJSONEvent(eventType, payload)
	if err != nil {
		return err
	}
	b.Publish(&event)
	return nil
}

// NewJSONEvent builds an Event with JSON payload for manual publishing.
func NewJSONEvent(eventType string, payload interface{}) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}

	return Event{ID: uuid.NewString(), Type: eventType, Payload: raw, CreatedAt: time.Now()}, nil
}
