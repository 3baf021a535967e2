package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	portsrepo "github.com/Cheker-dimassi/banking-system-microservices/internal/core/ports/repositories"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/middleware"
	"github.com/redis/go-redis/v9"
)

// Event is the envelope written to the stream.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// streamAdder is the part of the redis client the publisher needs.
type streamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// RedisPublisher appends transaction events to a Redis stream.
type RedisPublisher struct {
	client streamAdder
	stream string
	now    func() time.Time
}

// Ensure RedisPublisher implements portsrepo.EventPublisher
var _ portsrepo.EventPublisher = (*RedisPublisher)(nil)

func NewRedisPublisher(client streamAdder, stream string) *RedisPublisher {
	return &RedisPublisher{client: client, stream: stream, now: time.Now}
}

func (p *RedisPublisher) Publish(ctx context.Context, eventType string, payload any) error {
	event := Event{
		Type:      eventType,
		Timestamp: p.now().UTC(),
		Data:      payload,
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"type":  eventType,
			"event": eventJSON,
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to publish event %s: %w", eventType, err)
	}

	middleware.GetLoggerFromCtx(ctx).Debug("Event published",
		slog.String("stream", p.stream),
		slog.String("type", eventType),
		slog.String("id", id))
	return nil
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	slog.Info("Connected to Redis", slog.String("addr", addr))
	return client, nil
}
