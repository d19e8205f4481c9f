package queue_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"

	"github.com/samuelbyalugaba/KenaAI-sub000/internal/queue"
)

var _ = Describe("Producer", func() {
	evt := queue.IngestedEvent{
		TenantID:       1,
		ContactID:      2,
		ConversationID: 3,
		MessageID:      4,
		Priority:       "urgent",
		UnreadCount:    1,
		Created:        true,
		SentAt:         time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}

	It("accepts everything when no Redis is configured", func() {
		p := queue.NewNoopProducer()
		Expect(p.Publish(context.Background(), evt)).To(Succeed())
		Expect(p.Close()).To(Succeed())
	})

	It("wraps XADD failures", func() {
		client := redis.NewClient(&redis.Options{
			Addr:        "127.0.0.1:1",
			DialTimeout: 200 * time.Millisecond,
			MaxRetries:  -1,
		})
		p := queue.NewRedisProducer(client, "conversation_events", nil)
		DeferCleanup(p.Close)

		err := p.Publish(context.Background(), evt)
		Expect(err).To(MatchError(ContainSubstring("publish event")))
	})
})
