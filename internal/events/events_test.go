package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus()

	var received *Event
	var callCount int

	bus.Subscribe(EventCalendarLoaded, func(event *Event) error {
		received = event
		callCount++
		return nil
	})

	err := bus.PublishJSON(EventCalendarLoaded, CalendarLoadedPayload{Month: "2024-03", Bookings: 4})
	require.NoError(t, err)

	assert.Equal(t, 1, callCount)
	require.NotNil(t, received)
	assert.Equal(t, EventCalendarLoaded, received.Type)
	assert.NotEmpty(t, received.ID)
	assert.False(t, received.CreatedAt.IsZero())

	var decoded CalendarLoadedPayload
	require.NoError(t, json.Unmarshal(received.Payload, &decoded))
	assert.Equal(t, "2024-03", decoded.Month)
	assert.Equal(t, 4, decoded.Bookings)
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	bus := NewEventBus()
	var typed, all int

	bus.Subscribe(EventSelectionCleared, func(_ *Event) error { typed++; return nil })
	bus.SubscribeAll(func(_ *Event) error { all++; return nil })

	bus.Publish(&Event{Type: EventSelectionCleared})
	bus.Publish(&Event{Type: EventRecordsRejected})

	assert.Equal(t, 1, typed)
	assert.Equal(t, 2, all)
}

func TestEventBusNoSubscribers(t *testing.T) {
	bus := NewEventBus()
	assert.NotPanics(t, func() { bus.Publish(&Event{Type: "unknown"}) })
	assert.NoError(t, bus.PublishJSON("unknown", nil))

	var nilBus *EventBus
	assert.NoError(t, nilBus.PublishJSON(EventCalendarLoaded, nil))
}

func TestNewJSONEvent(t *testing.T) {
	event, err := NewJSONEvent(EventCalendarFetchFailed, FetchFailedPayload{Source: "pms", Error: "http 502"})
	require.NoError(t, err)
	assert.Equal(t, EventCalendarFetchFailed, event.Type)
	assert.False(t, event.CreatedAt.IsZero())

	var decoded FetchFailedPayload
	require.NoError(t, json.Unmarshal(event.Payload, &decoded))
	assert.Equal(t, "http 502", decoded.Error)

	_, err = NewJSONEvent("bad", make(chan int))
	assert.Error(t, err)
}
