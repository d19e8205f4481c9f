package queue

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Streams are trimmed approximately to this many entries.
const defaultMaxLen = 100_000

type Producer interface {
	Publish(ctx context.Context, evt IngestedEvent) error
	Close() error
}

type redisProducer struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

func NewRedisProducer(client *redis.Client, stream string, logger *slog.Logger) Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisProducer{
		client: client,
		stream: stream,
		logger: logger,
	}
}

func (p *redisProducer) Publish(ctx context.Context, evt IngestedEvent) error {
	fields := map[string]any{
		"event_type":      string(EventTypeMessageIngested),
		"tenant_id":       strconv.FormatInt(evt.TenantID, 10),
		"contact_id":      strconv.FormatInt(evt.ContactID, 10),
		"conversation_id": strconv.FormatInt(evt.ConversationID, 10),
		"message_id":      strconv.FormatInt(evt.MessageID, 10),
		"priority":        evt.Priority,
		"unread_count":    evt.UnreadCount,
		"created":         strconv.FormatBool(evt.Created),
		"sent_at":         evt.SentAt.UTC().Format(time.RFC3339Nano),
	}

	if evt.UpstreamConversationID != "" {
		fields["upstream_conversation_id"] = evt.UpstreamConversationID
	}
	if evt.TraceID != nil && *evt.TraceID != "" {
		fields["trace_id"] = *evt.TraceID
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: defaultMaxLen,
		Approx: true,
		Values: fields,
	}).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	p.logger.DebugContext(ctx, "published message.ingested",
		"stream", p.stream,
		"conversation_id", evt.ConversationID,
		"message_id", evt.MessageID)
	return nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}

type noopProducer struct{}

// NewNoopProducer is used when no Redis URL is configured.
func NewNoopProducer() Producer {
	return noopProducer{}
}

func (noopProducer) Publish(context.Context, IngestedEvent) error { return nil }

func (noopProducer) Close() error { return nil }
