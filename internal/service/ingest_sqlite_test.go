package service_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/samuelbyalugaba/KenaAI-sub000/common/id"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/classifier"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/model"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/service"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/store"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/store/sqlite"
)

var _ = Describe("IngestService on SQLite", func() {
	var (
		ctx      context.Context
		db       *sqlite.DB
		producer *mockProducer
		svc      service.IngestService
		tenantID int64
	)

	inbound := func(userID, text string) service.InboundEvent {
		return service.InboundEvent{
			Type:      service.EventTypeMessageCreated,
			Direction: service.DirectionIncoming,
			BotID:     "B1",
			UserID:    userID,
			Text:      text,
		}
	}

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		db, err = sqlite.Open(ctx, filepath.Join(GinkgoT().TempDir(), "ingest.db"))
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(db.Close)

		tenantID = id.New()
		Expect(db.CreateTenant(ctx, &model.Tenant{ID: tenantID, Name: "Acme", BotID: "B1"})).To(Succeed())

		producer = &mockProducer{}
		cls := classifier.WithFallback(classifier.NewKeyword(), model.PriorityNormal)
		svc = service.NewIngestService(db.Stores(), service.NewSQLiteTxRunner(db), cls, producer, service.IngestConfig{}, nil)
	})

	It("creates a conversation for a first message and bumps it on the next", func() {
		first := inbound("u1", "Help, urgent!")
		first.SentAt = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

		res1, err := svc.Ingest(ctx, first)
		Expect(err).NotTo(HaveOccurred())
		Expect(res1.ContactCreated).To(BeTrue())
		Expect(res1.ConversationCreated).To(BeTrue())
		Expect(res1.Conversation.UnreadCount).To(Equal(int32(1)))
		Expect(res1.Conversation.Priority).To(Equal(model.PriorityUrgent))
		Expect(res1.Conversation.Contact.Identity).To(Equal("u1@webchat.io"))

		second := inbound("u1", "Thanks, resolved")
		second.SentAt = first.SentAt.Add(time.Minute)

		res2, err := svc.Ingest(ctx, second)
		Expect(err).NotTo(HaveOccurred())
		Expect(res2.ContactCreated).To(BeFalse())
		Expect(res2.ConversationCreated).To(BeFalse())
		Expect(res2.Contact.ID).To(Equal(res1.Contact.ID))
		Expect(res2.Conversation.ID).To(Equal(res1.Conversation.ID))
		Expect(res2.Conversation.UnreadCount).To(Equal(int32(2)))
		Expect(res2.Conversation.Priority).To(Equal(model.PriorityLow))
		Expect(res2.Conversation.LastMessage).To(Equal("Thanks, resolved"))
		Expect(res2.Conversation.LastMessageAt).To(Equal(second.SentAt))

		msgs, err := db.Stores().Messages().ListByConversation(ctx, res1.Conversation.ID, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(msgs).To(HaveLen(2))
		Expect(msgs[0].Text).To(Equal("Help, urgent!"))
		Expect(msgs[1].Text).To(Equal("Thanks, resolved"))
		for _, m := range msgs {
			Expect(m.Sender.Kind).To(Equal(model.SenderKindContact))
			Expect(*m.Sender.ContactID).To(Equal(res1.Contact.ID))
		}

		Expect(producer.Events()).To(HaveLen(2))
	})

	It("keeps conversations of different users apart", func() {
		a, err := svc.Ingest(ctx, inbound("u1", "hello"))
		Expect(err).NotTo(HaveOccurred())
		b, err := svc.Ingest(ctx, inbound("u2", "hello"))
		Expect(err).NotTo(HaveOccurred())

		Expect(b.Contact.ID).NotTo(Equal(a.Contact.ID))
		Expect(b.Conversation.ID).NotTo(Equal(a.Conversation.ID))
		Expect(b.Conversation.UnreadCount).To(Equal(int32(1)))
	})

	It("writes nothing for echoes", func() {
		echo := inbound("u1", "Sure, on it")
		echo.Direction = service.DirectionOutgoing

		res, err := svc.Ingest(ctx, echo)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Ignored).To(BeTrue())

		_, err = db.Stores().Contacts().GetByTenantAndIdentity(ctx, tenantID, "u1@webchat.io")
		Expect(err).To(MatchError(store.ErrNotFound))
		Expect(producer.Events()).To(BeEmpty())
	})

	It("deduplicates redeliveries of the same upstream event", func() {
		evt := inbound("u1", "Help, urgent!")
		evt.ExternalMessageID = "evt-1"

		first, err := svc.Ingest(ctx, evt)
		Expect(err).NotTo(HaveOccurred())
		Expect(first.Duplicate).To(BeFalse())

		again, err := svc.Ingest(ctx, evt)
		Expect(err).NotTo(HaveOccurred())
		Expect(again.Duplicate).To(BeTrue())
		Expect(again.Message.ID).To(Equal(first.Message.ID))
		Expect(again.Conversation.ID).To(Equal(first.Conversation.ID))
		Expect(again.Conversation.UnreadCount).To(Equal(int32(1)))

		msgs, err := db.Stores().Messages().ListByConversation(ctx, first.Conversation.ID, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(msgs).To(HaveLen(1))
		Expect(producer.Events()).To(HaveLen(1))
	})

	It("does not treat another user's event id as a redelivery", func() {
		a := inbound("u1", "hello")
		a.ExternalMessageID = "evt-1"
		b := inbound("u2", "hello too")
		b.ExternalMessageID = "evt-1"

		first, err := svc.Ingest(ctx, a)
		Expect(err).NotTo(HaveOccurred())
		second, err := svc.Ingest(ctx, b)
		Expect(err).NotTo(HaveOccurred())

		Expect(second.Duplicate).To(BeFalse())
		Expect(second.Conversation.ID).NotTo(Equal(first.Conversation.ID))
		Expect(second.Conversation.ContactID).To(Equal(second.Contact.ID))
		Expect(second.Message.ConversationID).To(Equal(second.Conversation.ID))

		msgs, err := db.Stores().Messages().ListByConversation(ctx, second.Conversation.ID, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(msgs).To(HaveLen(1))
		Expect(msgs[0].Text).To(Equal("hello too"))
		Expect(producer.Events()).To(HaveLen(2))
	})

	It("serializes concurrent first messages from one user", func() {
		const n = 12
		var (
			mu      sync.Mutex
			wg      sync.WaitGroup
			convIDs = map[int64]struct{}{}
			created int
		)
		for i := range n {
			wg.Add(1)
			go func(i int) {
				defer GinkgoRecover()
				defer wg.Done()
				res, err := svc.Ingest(ctx, inbound("u1", fmt.Sprintf("message %d", i)))
				Expect(err).NotTo(HaveOccurred())
				mu.Lock()
				convIDs[res.Conversation.ID] = struct{}{}
				if res.ConversationCreated {
					created++
				}
				mu.Unlock()
			}(i)
		}
		wg.Wait()

		Expect(convIDs).To(HaveLen(1))
		Expect(created).To(Equal(1))

		for convID := range convIDs {
			conv, err := db.Stores().Conversations().GetByID(ctx, convID)
			Expect(err).NotTo(HaveOccurred())
			Expect(conv.UnreadCount).To(Equal(int32(n)))

			msgs, err := db.Stores().Messages().ListByConversation(ctx, convID, 100)
			Expect(err).NotTo(HaveOccurred())
			Expect(msgs).To(HaveLen(n))
		}
	})
})
