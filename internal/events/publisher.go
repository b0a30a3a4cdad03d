package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"example.com/exercisetracker/internal/domain"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events to a single topic keyed by user id.
type KafkaPublisher struct {
	writer messageWriter
	now    func() time.Time
}

// NewKafkaPublisher creates a KafkaPublisher for topic on brokers.
// Each write is attempted once and gives up after writeTimeout.
func NewKafkaPublisher(brokers []string, topic string, writeTimeout time.Duration) *KafkaPublisher {
	return newPublisher(newKafkaWriter(brokers, topic, writeTimeout))
}

func newKafkaWriter(brokers []string, topic string, writeTimeout time.Duration) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		Compression:            kafka.Snappy,
		AllowAutoTopicCreation: true,
		MaxAttempts:            1,
		BatchSize:              1,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           writeTimeout,
		ReadTimeout:            writeTimeout,
	}
}

func newPublisher(w messageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w, now: time.Now}
}

// PublishUserCreated implements domain.EventPublisher.
func (p *KafkaPublisher) PublishUserCreated(ctx context.Context, user domain.User) error {
	return p.write(ctx, domain.EventUserCreated, user.ID, UserCreated{
		UserID:     user.ID,
		Username:   user.Username,
		OccurredAt: p.now().UTC(),
	})
}

// PublishExerciseLogged implements domain.EventPublisher.
func (p *KafkaPublisher) PublishExerciseLogged(ctx context.Context, user domain.User, exercise domain.Exercise) error {
	return p.write(ctx, domain.EventExerciseLogged, user.ID, ExerciseLogged{
		ExerciseID:  exercise.ID,
		UserID:      user.ID,
		Username:    user.Username,
		Description: exercise.Description,
		Duration:    exercise.Duration,
		Date:        exercise.Date,
		OccurredAt:  p.now().UTC(),
	})
}

// Close flushes and releases the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func (p *KafkaPublisher) write(ctx context.Context, eventType, key string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(key),
		Value: body,
		Time:  p.now().UTC(),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	return nil
}

// NoopPublisher discards events. It is used when no brokers are configured.
type NoopPublisher struct{}

// PublishUserCreated implements domain.EventPublisher.
func (NoopPublisher) PublishUserCreated(context.Context, domain.User) error { return nil }

// PublishExerciseLogged implements domain.EventPublisher.
func (NoopPublisher) PublishExerciseLogged(context.Context, domain.User, domain.Exercise) error {
	return nil
}

// Close implements io.Closer.
func (NoopPublisher) Close() error { return nil }
