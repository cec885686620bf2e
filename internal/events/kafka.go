package events

import (
	"context"
	"encoding/json"
	"time"

	"occupancy/internal/config"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// envelope is the Kafka message value.
type envelope struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	CreatedAt time.Time       `json:"created_at"`
	Payload   json.RawMessage `json:"payload"`
}

// KafkaSink forwards bus events to a topic. The writer is asynchronous, so
// publishing never waits on the broker; delivery errors are only logged.
type KafkaSink struct {
	writer  messageWriter
	logger  *zerolog.Logger
	timeout time.Duration
}

func NewKafkaSink(cfg config.KafkaConfig, logger *zerolog.Logger) *KafkaSink {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warn().Err(err).Int("messages", len(messages)).Msg("kafka delivery failed")
			}
		},
	}
	return newKafkaSink(w, logger)
}

func newKafkaSink(w messageWriter, logger *zerolog.Logger) *KafkaSink {
	return &KafkaSink{writer: w, logger: logger, timeout: 5 * time.Second}
}

// Attach subscribes the sink to every event on the bus.
func (s *KafkaSink) Attach(bus *EventBus) {
	bus.SubscribeAll(s.Handle)
}

func (s *KafkaSink) Handle(event *Event) error {
	value, err := json.Marshal(envelope{
		ID:        event.ID,
		Type:      event.Type,
		CreatedAt: event.CreatedAt,
		Payload:   json.RawMessage(event.Payload),
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	err = s.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(event.Type),
		Value:   value,
		Headers: []kafka.Header{{Key: "event_type", Value: []byte(event.Type)}},
		Time:    event.CreatedAt,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("event_type", event.Type).Msg("kafka publish failed")
	}
	return err
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
