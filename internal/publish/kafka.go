package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/nhle/equipment-alerts/internal/model"
)

// writeTimeout is the maximum time to wait for a Kafka write operation.
const writeTimeout = 10 * time.Second

// messageWriter is the subset of *kafka.Writer used by Kafka.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Event is the JSON payload written for each notification.
type Event struct {
	NotificationID int64                  `json:"notification_id"`
	Kind           model.NotificationKind `json:"kind"`
	Priority       model.Priority         `json:"priority"`
	Title          string                 `json:"title"`
	Message        string                 `json:"message"`
	EquipmentID    *int64                 `json:"equipment_id,omitempty"`
	MaintenanceID  *int64                 `json:"maintenance_id,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
}

// Kafka publishes notifications to a topic, keyed by kind and subject so
// that every notification about one subject lands on the same partition.
type Kafka struct {
	writer messageWriter
	topic  string
	log    zerolog.Logger
}

// NewKafka creates a synchronous producer for the comma-separated broker list.
func NewKafka(brokers, topic string, log zerolog.Logger) (*Kafka, error) {
	brokerList := splitBrokers(brokers)
	if len(brokerList) == 0 {
		return nil, fmt.Errorf("kafka brokers must not be empty")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka topic must not be empty")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokerList...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: writeTimeout,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	log.Info().
		Strs("brokers", brokerList).
		Str("topic", topic).
		Msg("kafka publisher configured")

	return newKafka(writer, topic, log), nil
}

func newKafka(w messageWriter, topic string, log zerolog.Logger) *Kafka {
	return &Kafka{writer: w, topic: topic, log: log}
}

// Publish writes n to the topic and waits for the leader to acknowledge it.
func (k *Kafka) Publish(ctx context.Context, n model.Notification) error {
	msg, err := encode(n)
	if err != nil {
		return err
	}

	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing notification %d to %s: %w", n.ID, k.topic, err)
	}

	k.log.Debug().
		Int64("notification_id", n.ID).
		Str("kind", string(n.Kind)).
		Msg("notification published")
	return nil
}

// Close flushes and closes the underlying writer.
func (k *Kafka) Close() error {
	if err := k.writer.Close(); err != nil {
		return fmt.Errorf("closing kafka writer: %w", err)
	}
	return nil
}

// MessageKey returns the partition key for n.
func MessageKey(n model.Notification) string {
	return fmt.Sprintf("%s:%d", n.Kind, n.SubjectID())
}

func encode(n model.Notification) (kafka.Message, error) {
	payload, err := json.Marshal(Event{
		NotificationID: n.ID,
		Kind:           n.Kind,
		Priority:       n.Priority,
		Title:          n.Title,
		Message:        n.Message,
		EquipmentID:    n.EquipmentID,
		MaintenanceID:  n.MaintenanceID,
		CreatedAt:      n.CreatedAt.UTC(),
	})
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encoding notification %d: %w", n.ID, err)
	}

	return kafka.Message{
		Key:   []byte(MessageKey(n)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(n.Kind)},
			{Key: "priority", Value: []byte(n.Priority)},
			{Key: "notification_id", Value: []byte(strconv.FormatInt(n.ID, 10))},
		},
		Time: n.CreatedAt,
	}, nil
}

func splitBrokers(brokers string) []string {
	var out []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
