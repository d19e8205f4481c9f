package service_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/samuelbyalugaba/KenaAI-sub000/internal/classifier"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/model"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/queue"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/service"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/store"
)

var _ = Describe("IngestService", func() {
	var (
		ctx      context.Context
		stores   *mockStores
		txRunner *mockTxRunner
		cls      *mockClassifier
		producer *mockProducer
		svc      service.IngestService
		tenant   *model.Tenant
		evt      service.InboundEvent
	)

	BeforeEach(func() {
		ctx = context.Background()
		stores = newMockStores()
		txRunner = &mockTxRunner{stores: stores}
		cls = &mockClassifier{}
		producer = &mockProducer{}
		svc = service.NewIngestService(stores, txRunner, cls, producer, service.IngestConfig{}, nil)

		tenant = &model.Tenant{ID: 7, Name: "Acme", BotID: "B1"}
		stores.tenants.getByBotIDFn = func(_ context.Context, botID string) (*model.Tenant, error) {
			if botID == "B1" {
				return tenant, nil
			}
			return nil, store.ErrNotFound
		}

		evt = service.InboundEvent{
			Type:      service.EventTypeMessageCreated,
			Direction: service.DirectionIncoming,
			BotID:     " B1 ",
			UserID:    "u1",
			Text:      "  Help, urgent!  ",
			SentAt:    time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		}
	})

	It("ignores echoes without touching the stores", func() {
		evt.Direction = service.DirectionOutgoing

		res, err := svc.Ingest(ctx, evt)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Ignored).To(BeTrue())
		Expect(res.Stage).To(Equal(service.StageIgnored))
		Expect(stores.tenants.calls).To(BeZero())
		Expect(txRunner.calls).To(BeZero())
		Expect(cls.calls).To(BeZero())
		Expect(producer.Events()).To(BeEmpty())
	})

	It("rejects an invalid event before resolving the tenant", func() {
		evt.UserID = "   "

		_, err := svc.Ingest(ctx, evt)
		Expect(err).To(MatchError(service.ErrInvalidEvent))

		var ve *service.ValidationError
		Expect(errors.As(err, &ve)).To(BeTrue())
		Expect(ve.Field).To(Equal("userId"))

		var ie *service.IngestError
		Expect(errors.As(err, &ie)).To(BeTrue())
		Expect(ie.Stage).To(Equal(service.StageReceived))
		Expect(stores.tenants.calls).To(BeZero())
	})

	It("reports an unknown bot as ErrTenantNotFound", func() {
		evt.BotID = "unknown"

		_, err := svc.Ingest(ctx, evt)
		Expect(err).To(MatchError(service.ErrTenantNotFound))
		Expect(stores.contacts.getCalls).To(BeZero())
		Expect(txRunner.calls).To(BeZero())
	})

	It("creates contact, conversation and message for a first message", func() {
		cls.classifyFn = func(_ context.Context, text string) (classifier.Result, error) {
			Expect(text).To(Equal("Help, urgent!"))
			return classifier.Result{Priority: model.PriorityUrgent, Rationale: "matched urgent"}, nil
		}

		res, err := svc.Ingest(ctx, evt)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Stage).To(Equal(service.StageAcknowledged))
		Expect(res.ContactCreated).To(BeTrue())
		Expect(res.ConversationCreated).To(BeTrue())
		Expect(res.Priority).To(Equal(model.PriorityUrgent))

		Expect(res.Contact.Identity).To(Equal("u1@webchat.io"))
		Expect(res.Contact.Name).To(Equal("Visitor u1"))
		Expect(res.Contact.TenantID).To(Equal(tenant.ID))

		Expect(res.Conversation.ContactID).To(Equal(res.Contact.ID))
		Expect(res.Conversation.LastMessage).To(Equal("Help, urgent!"))
		Expect(res.Conversation.Channel).To(Equal(model.DefaultChannel))
		Expect(res.Conversation.UnreadCount).To(Equal(int32(1)))

		Expect(stores.messages.created).To(HaveLen(1))
		msg := stores.messages.created[0]
		Expect(msg.ConversationID).To(Equal(res.Conversation.ID))
		Expect(msg.Sender.Kind).To(Equal(model.SenderKindContact))
		Expect(*msg.Sender.ContactID).To(Equal(res.Contact.ID))
		Expect(msg.SentAt).To(Equal(evt.SentAt))
		Expect(msg.ExternalID).To(BeNil())

		events := producer.Events()
		Expect(events).To(HaveLen(1))
		Expect(events[0].ConversationID).To(Equal(res.Conversation.ID))
		Expect(events[0].MessageID).To(Equal(res.Message.ID))
		Expect(events[0].Priority).To(Equal("urgent"))
		Expect(events[0].Created).To(BeTrue())
	})

	It("reuses an existing contact", func() {
		existing := &model.Contact{ID: 99, TenantID: tenant.ID, Name: "Ada", Identity: "u1@webchat.io"}
		stores.contacts.getFn = func(_ context.Context, tenantID int64, identity string) (*model.Contact, error) {
			Expect(tenantID).To(Equal(tenant.ID))
			Expect(identity).To(Equal("u1@webchat.io"))
			return existing, nil
		}

		res, err := svc.Ingest(ctx, evt)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.ContactCreated).To(BeFalse())
		Expect(res.Contact).To(Equal(existing))
		Expect(stores.contacts.createCalls).To(BeZero())
	})

	It("uses the display name hint for new contacts", func() {
		evt.UserName = "Ada"

		res, err := svc.Ingest(ctx, evt)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Contact.Name).To(Equal("Ada"))
	})

	It("retries contact creation once after a conflict", func() {
		winner := &model.Contact{ID: 5, TenantID: tenant.ID, Identity: "u1@webchat.io"}
		stores.contacts.getFn = func(context.Context, int64, string) (*model.Contact, error) {
			if stores.contacts.getCalls == 1 {
				return nil, store.ErrNotFound
			}
			return winner, nil
		}
		stores.contacts.createOrGetFn = func(context.Context, *model.Contact) (*model.Contact, bool, error) {
			return nil, false, store.ErrConflict
		}

		res, err := svc.Ingest(ctx, evt)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Contact).To(Equal(winner))
		Expect(res.ContactCreated).To(BeFalse())
		Expect(stores.contacts.getCalls).To(Equal(2))
	})

	It("degrades to normal priority when the classifier fails", func() {
		cls.classifyFn = func(context.Context, string) (classifier.Result, error) {
			return classifier.Result{}, errors.New("model unavailable")
		}

		res, err := svc.Ingest(ctx, evt)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Priority).To(Equal(model.PriorityNormal))
		Expect(res.Degraded).To(BeTrue())
		Expect(res.Conversation.Priority).To(Equal(model.PriorityNormal))
	})

	It("retries the transaction once on a conversation conflict", func() {
		stores.conversations.upsertFn = func(_ context.Context, conv *model.Conversation) (*model.Conversation, bool, error) {
			if stores.conversations.upsertCalls == 1 {
				return nil, false, store.ErrConflict
			}
			winner := *conv
			winner.ID = 1234
			winner.UnreadCount = 2
			return &winner, false, nil
		}

		res, err := svc.Ingest(ctx, evt)
		Expect(err).NotTo(HaveOccurred())
		Expect(txRunner.calls).To(Equal(2))
		Expect(res.Conversation.ID).To(Equal(int64(1234)))
		Expect(res.ConversationCreated).To(BeFalse())
		Expect(res.Conversation.UnreadCount).To(Equal(int32(2)))
	})

	It("gives up after the retry and reports the stage", func() {
		stores.conversations.upsertFn = func(context.Context, *model.Conversation) (*model.Conversation, bool, error) {
			return nil, false, store.ErrConflict
		}

		_, err := svc.Ingest(ctx, evt)
		Expect(err).To(MatchError(store.ErrConflict))
		Expect(txRunner.calls).To(Equal(2))

		var ie *service.IngestError
		Expect(errors.As(err, &ie)).To(BeTrue())
		Expect(ie.Stage).To(Equal(service.StageClassified))
		Expect(producer.Events()).To(BeEmpty())
	})

	It("does not retry other store failures", func() {
		boom := errors.New("disk full")
		stores.messages.createFn = func(context.Context, *model.Message) (*model.Message, error) {
			return nil, boom
		}

		_, err := svc.Ingest(ctx, evt)
		Expect(err).To(MatchError(boom))
		Expect(txRunner.calls).To(Equal(1))

		var ie *service.IngestError
		Expect(errors.As(err, &ie)).To(BeTrue())
		Expect(ie.Stage).To(Equal(service.StageConversationUpserted))
	})

	It("returns the committed state for a redelivered message", func() {
		evt.ExternalMessageID = "evt-1"
		ext := "evt-1"
		committed := &model.Conversation{ID: 55, TenantID: tenant.ID, UnreadCount: 1, Priority: model.PriorityUrgent}
		existing := &model.Message{ID: 66, TenantID: tenant.ID, ConversationID: 55, ExternalID: &ext}

		stores.messages.createOrGetFn = func(_ context.Context, msg *model.Message) (*model.Message, bool, error) {
			Expect(*msg.ExternalID).To(Equal("evt-1"))
			return existing, false, nil
		}
		stores.conversations.getByIDFn = func(_ context.Context, id int64) (*model.Conversation, error) {
			Expect(id).To(Equal(int64(55)))
			return committed, nil
		}

		res, err := svc.Ingest(ctx, evt)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Duplicate).To(BeTrue())
		Expect(res.Conversation).To(Equal(committed))
		Expect(res.Message).To(Equal(existing))
		Expect(res.Priority).To(Equal(model.PriorityUrgent))
		Expect(txRunner.calls).To(Equal(1))
		Expect(producer.Events()).To(BeEmpty())
	})

	It("still acknowledges when publishing fails", func() {
		producer.publishFn = func(context.Context, queue.IngestedEvent) error {
			return errors.New("redis down")
		}

		res, err := svc.Ingest(ctx, evt)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Stage).To(Equal(service.StageAcknowledged))
		Expect(producer.Events()).To(HaveLen(1))
	})

	It("publishes even when the request context is cancelled after persisting", func() {
		cctx, cancel := context.WithCancel(ctx)
		publishErr := errors.New("not published")
		producer.publishFn = func(pctx context.Context, _ queue.IngestedEvent) error {
			publishErr = pctx.Err()
			return publishErr
		}
		stores.messages.createFn = func(_ context.Context, msg *model.Message) (*model.Message, error) {
			cancel()
			return msg, nil
		}

		res, err := svc.Ingest(cctx, evt)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Stage).To(Equal(service.StageAcknowledged))
		Expect(publishErr).NotTo(HaveOccurred())
	})

	It("defaults a missing sent time to now", func() {
		evt.SentAt = time.Time{}
		before := time.Now()

		res, err := svc.Ingest(ctx, evt)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Message.SentAt).To(BeTemporally(">=", before.Add(-time.Second)))
		Expect(res.Message.SentAt.Location()).To(Equal(time.UTC))
	})

	It("keeps the inbound channel on creation", func() {
		evt.Channel = "WhatsApp"

		res, err := svc.Ingest(ctx, evt)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Conversation.Channel).To(Equal("WhatsApp"))
	})
})

var _ = Describe("ContactIdentity", func() {
	DescribeTable("derives identities",
		func(userID, domain, want string) {
			Expect(service.ContactIdentity(userID, domain)).To(Equal(want))
		},
		Entry("plain", "u1", "webchat.io", "u1@webchat.io"),
		Entry("trimmed", "  u1 ", "webchat.io", "u1@webchat.io"),
		Entry("custom domain", "42", "example.com", "42@example.com"),
	)
})
