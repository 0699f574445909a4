package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Publisher defines the interface for publishing events to a stream.
type Publisher interface {
	// Publish adds an event to the stream and returns the Redis message ID.
	Publish(ctx context.Context, stream string, event ActivityEvent) (messageID string, err error)
}

// RedisPublisher implements Publisher using Redis Streams.
type RedisPublisher struct {
	client *redis.Client
	maxLen int64
	log    *logrus.Entry
}

// NewPublisher creates a Publisher backed by Redis Streams. The stream is
// trimmed to roughly maxLen entries; 0 disables trimming.
func NewPublisher(client *redis.Client, maxLen int64) Publisher {
	return &RedisPublisher{
		client: client,
		maxLen: maxLen,
		log:    logrus.WithField("component", "Publisher"),
	}
}

// Publish adds an event to the stream using XADD with an auto-generated ID.
func (p *RedisPublisher) Publish(ctx context.Context, stream string, event ActivityEvent) (string, error) {
	start := time.Now()
	fields := logrus.Fields{"stream": stream, "type": event.Type}

	values, err := event.ToMap()
	if err != nil {
		p.log.WithFields(fields).WithError(err).Error("Publish failed")
		return "", fmt.Errorf("serialize event: %w", err)
	}

	args := &redis.XAddArgs{Stream: stream, Values: values}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	messageID, err := p.client.XAdd(ctx, args).Result()
	if err != nil {
		p.log.WithFields(fields).WithError(err).Error("Publish failed")
		return "", fmt.Errorf("xadd to stream: %w", err)
	}

	p.log.WithFields(fields).WithFields(logrus.Fields{
		"msg_id":   messageID,
		"duration": time.Since(start),
	}).Debug("Published event")
	return messageID, nil
}

// Emitter publishes activity events best-effort: failures are logged, never
// returned. A nil Emitter or one without a Publisher drops events silently.
type Emitter struct {
	publisher Publisher
	log       *logrus.Entry
}

func NewEmitter(publisher Publisher) *Emitter {
	return &Emitter{publisher: publisher, log: logrus.WithField("component", "Emitter")}
}

func (e *Emitter) Emit(ctx context.Context, event ActivityEvent) {
	if e == nil || e.publisher == nil {
		return
	}
	if _, err := e.publisher.Publish(ctx, StreamActivity, event); err != nil {
		e.log.WithError(err).WithField("type", event.Type).Warn("Dropping activity event")
	}
}
