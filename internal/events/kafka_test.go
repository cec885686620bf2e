package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"occupancy/internal/config"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockWriter struct {
	mock.Mock
	sent []kafka.Message
}

func (m *mockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	m.sent = append(m.sent, msgs...)
	return m.Called(len(msgs)).Error(0)
}

func (m *mockWriter) Close() error {
	return m.Called().Error(0)
}

func TestKafkaSink(t *testing.T) {
	logger := zerolog.New(io.Discard)
	w := new(mockWriter)
	sink := newKafkaSink(w, &logger)

	bus := NewEventBus()
	sink.Attach(bus)

	w.On("WriteMessages", 1).Return(nil).Once()
	require.NoError(t, bus.PublishJSON(EventRecordsRejected, RecordsRejectedPayload{Source: "pms", Rejected: 2}))

	require.Len(t, w.sent, 1)
	msg := w.sent[0]
	assert.Equal(t, []byte(EventRecordsRejected), msg.Key)
	assert.Equal(t, "event_type", msg.Headers[0].Key)

	var env struct {
		ID      string                 `json:"id"`
		Type    string                 `json:"type"`
		Payload RecordsRejectedPayload `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	assert.NotEmpty(t, env.ID)
	assert.Equal(t, EventRecordsRejected, env.Type)
	assert.Equal(t, 2, env.Payload.Rejected)

	w.On("WriteMessages", 1).Return(errors.New("broker down")).Once()
	err := sink.Handle(&Event{Type: EventCalendarLoaded, Payload: []byte(`{}`)})
	assert.Error(t, err)

	w.On("Close").Return(nil).Once()
	assert.NoError(t, sink.Close())
	w.AssertExpectations(t)
}

func TestNewKafkaSink(t *testing.T) {
	logger := zerolog.New(io.Discard)
	sink := NewKafkaSink(config.KafkaConfig{Enabled: true, Brokers: []string{"localhost:9092"}, Topic: "occupancy.calendar"}, &logger)

	w, ok := sink.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "occupancy.calendar", w.Topic)
	assert.True(t, w.Async)
	assert.NoError(t, sink.Close())
}
