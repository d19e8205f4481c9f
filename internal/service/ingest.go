package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samuelbyalugaba/KenaAI-sub000/common/logger"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/classifier"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/metrics"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/model"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/queue"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/store"
)

const publishTimeout = 2 * time.Second

type IngestResult struct {
	Stage Stage

	// Ignored is set for echoes of the tenant's own messages. Nothing was
	// read or written.
	Ignored bool
	// Duplicate is set when the upstream event id was already stored. The
	// conversation is returned as committed by the original delivery.
	Duplicate bool

	Tenant       *model.Tenant
	Contact      *model.Contact
	Conversation *model.Conversation
	Message      *model.Message

	Priority            model.Priority
	Degraded            bool
	ContactCreated      bool
	ConversationCreated bool
}

type IngestService interface {
	Ingest(ctx context.Context, evt InboundEvent) (*IngestResult, error)
}

type IngestConfig struct {
	IdentityDomain string
}

type ingestService struct {
	stores     Stores
	txRunner   TxRunner
	resolver   EntityResolver
	classifier classifier.Classifier
	producer   queue.Producer
	logger     *slog.Logger
}

// NewIngestService wires the pipeline. cls is used as given; wrap it with
// classifier.WithFallback so classification failures degrade instead of
// failing the request.
func NewIngestService(stores Stores, txRunner TxRunner, cls classifier.Classifier, producer queue.Producer, cfg IngestConfig, logger *slog.Logger) IngestService {
	if logger == nil {
		logger = slog.Default()
	}
	if producer == nil {
		producer = queue.NewNoopProducer()
	}
	return &ingestService{
		stores:     stores,
		txRunner:   txRunner,
		resolver:   NewEntityResolver(stores.Tenants(), stores.Contacts(), cfg.IdentityDomain),
		classifier: cls,
		producer:   producer,
		logger:     logger,
	}
}

// errDuplicateMessage rolls back the conversation bump of a redelivery.
var errDuplicateMessage = errors.New("duplicate message")

func (s *ingestService) Ingest(ctx context.Context, evt InboundEvent) (*IngestResult, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "chatingest.service.ingest"})
	stage := StageReceived
	s.logger.DebugContext(ctx, "ingest stage", "stage", stage,
		"upstream_message_id", evt.ExternalMessageID,
		"upstream_conversation_id", evt.ExternalConversationID)

	if evt.IsEcho() {
		s.logger.DebugContext(ctx, "event ignored", "type", evt.Type, "direction", evt.Direction)
		return &IngestResult{Stage: StageIgnored, Ignored: true}, nil
	}
	if err := evt.Validate(); err != nil {
		return nil, &IngestError{Stage: stage, Err: err}
	}
	stage = s.advance(ctx, StageValidated)

	start := time.Now()
	defer func() {
		metrics.IngestDuration.Observe(time.Since(start).Seconds())
	}()

	botID := strings.TrimSpace(evt.BotID)
	ctx = logger.WithLogFields(ctx, logger.LogFields{BotID: &botID})

	tenant, err := s.resolver.ResolveTenant(ctx, botID)
	if err != nil {
		return nil, &IngestError{Stage: stage, Err: err}
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{TenantID: logger.Ptr(tenant.ID)})
	stage = s.advance(ctx, StageTenantResolved)

	contact, contactCreated, err := s.resolver.ResolveOrCreateContact(ctx, tenant.ID, evt.UserID, evt.UserName)
	if err != nil {
		return nil, &IngestError{Stage: stage, Err: err}
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{ContactID: logger.Ptr(contact.ID)})
	if contactCreated {
		s.logger.InfoContext(ctx, "contact created", "identity", contact.Identity)
	}
	stage = s.advance(ctx, StageContactResolved)

	externalID := strings.TrimSpace(evt.ExternalMessageID)
	if externalID != "" {
		conv, existing, err := s.findRedelivery(ctx, tenant.ID, contact.ID, externalID)
		if err != nil {
			return nil, &IngestError{Stage: stage, Err: err}
		}
		if existing != nil {
			return s.duplicate(ctx, tenant, contact, conv, existing, false), nil
		}
	}

	text := strings.TrimSpace(evt.Text)
	classified := s.classify(ctx, text)
	stage = s.advance(ctx, StageClassified)

	sentAt := evt.SentAt
	if sentAt.IsZero() {
		sentAt = time.Now()
	}
	sentAt = sentAt.UTC()

	var (
		conv        *model.Conversation
		msg         *model.Message
		convCreated bool
	)
	persist := func(sp StoreProvider) error {
		var err error
		conv, convCreated, err = NewConversationResolver(sp.Conversations()).ResolveOrUpdate(ctx, tenant, contact, ConversationUpdate{
			Text:     text,
			SentAt:   sentAt,
			Priority: classified.Priority,
			Channel:  strings.TrimSpace(evt.Channel),
		})
		if err != nil {
			return err
		}
		stage = StageConversationUpserted

		var created bool
		msg, created, err = NewMessageAppender(sp.Messages()).Append(ctx, conv, model.ContactSender(contact.ID), text, sentAt, externalID)
		if err != nil {
			return err
		}
		if !created {
			return errDuplicateMessage
		}
		stage = StageMessagePersisted
		return nil
	}

	sc := logger.StartSpan(ctx, "ingest.persist")
	err = s.withConflictRetry(sc.Context(), persist)
	sc.RecordError(err)
	sc.End()

	if errors.Is(err, errDuplicateMessage) {
		committed, err := s.stores.Conversations().GetByID(ctx, msg.ConversationID)
		if err != nil {
			return nil, &IngestError{Stage: StageMessagePersisted, Err: fmt.Errorf("fetching conversation of duplicate: %w", err)}
		}
		return s.duplicate(ctx, tenant, contact, committed, msg, classified.Degraded), nil
	}
	if err != nil {
		return nil, &IngestError{Stage: stage, Err: err}
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		ConversationID: logger.Ptr(conv.ID),
		MessageID:      logger.Ptr(msg.ID),
	})
	s.logger.DebugContext(ctx, "ingest stage", "stage", StageConversationUpserted, "created", convCreated, "unread_count", conv.UnreadCount)
	s.advance(ctx, StageMessagePersisted)

	s.publish(ctx, queue.IngestedEvent{
		TenantID:       tenant.ID,
		ContactID:      contact.ID,
		ConversationID: conv.ID,
		MessageID:      msg.ID,
		Priority:       string(conv.Priority),
		UnreadCount:    conv.UnreadCount,
		Created:        convCreated,
		SentAt:         msg.SentAt,
		TraceID:        evt.TraceID,

		UpstreamConversationID: strings.TrimSpace(evt.ExternalConversationID),
	})

	s.advance(ctx, StageAcknowledged)
	return &IngestResult{
		Stage:               StageAcknowledged,
		Tenant:              tenant,
		Contact:             contact,
		Conversation:        conv,
		Message:             msg,
		Priority:            classified.Priority,
		Degraded:            classified.Degraded,
		ContactCreated:      contactCreated,
		ConversationCreated: convCreated,
	}, nil
}

func (s *ingestService) advance(ctx context.Context, stage Stage) Stage {
	s.logger.DebugContext(ctx, "ingest stage", "stage", stage)
	return stage
}

// classify never fails the request. Errors other than those absorbed by
// the configured classifier degrade to normal priority here.
func (s *ingestService) classify(ctx context.Context, text string) classifier.Result {
	sc := logger.StartSpan(ctx, "ingest.classify")
	defer sc.End()

	res, err := s.classifier.Classify(sc.Context(), text)
	if err != nil {
		sc.RecordError(err)
		s.logger.WarnContext(ctx, "classification failed, using normal priority", "error", err)
		metrics.ClassifierDegradedTotal.Inc()
		return classifier.Result{Priority: model.PriorityNormal, Degraded: true}
	}

	sc.SetAttributes(
		attribute.String("priority", string(res.Priority)),
		attribute.Bool("degraded", res.Degraded),
	)
	s.logger.DebugContext(ctx, "message classified",
		"priority", res.Priority,
		"degraded", res.Degraded,
		"rationale", logger.Truncate(res.Rationale, 200))
	return res
}

// withConflictRetry runs fn in a transaction, retrying once in a fresh
// transaction when the store reports a uniqueness conflict.
func (s *ingestService) withConflictRetry(ctx context.Context, fn func(sp StoreProvider) error) error {
	for attempt := 1; ; attempt++ {
		err := s.txRunner.WithTx(ctx, fn)
		if err == nil || !errors.Is(err, store.ErrConflict) || attempt >= maxResolveAttempts {
			return err
		}
		metrics.StoreConflictsTotal.WithLabelValues("conversation").Inc()
		s.logger.DebugContext(ctx, "conversation upsert conflicted, retrying", "attempt", attempt)
	}
}

// findRedelivery returns the stored message when this contact's
// conversation already holds externalID. Both results are nil otherwise.
func (s *ingestService) findRedelivery(ctx context.Context, tenantID, contactID int64, externalID string) (*model.Conversation, *model.Message, error) {
	conv, err := s.stores.Conversations().FindOpen(ctx, tenantID, contactID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("finding conversation: %w", err)
	}

	existing, err := s.stores.Messages().GetByExternalID(ctx, conv.ID, externalID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("finding message by external id: %w", err)
	}
	return conv, existing, nil
}

func (s *ingestService) duplicate(ctx context.Context, tenant *model.Tenant, contact *model.Contact, conv *model.Conversation, existing *model.Message, degraded bool) *IngestResult {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		ConversationID: logger.Ptr(conv.ID),
		MessageID:      logger.Ptr(existing.ID),
	})
	s.logger.InfoContext(ctx, "duplicate message deduped", "external_id", *existing.ExternalID)
	s.advance(ctx, StageAcknowledged)

	return &IngestResult{
		Stage:        StageAcknowledged,
		Duplicate:    true,
		Tenant:       tenant,
		Contact:      contact,
		Conversation: conv,
		Message:      existing,
		Priority:     conv.Priority,
		Degraded:     degraded,
	}
}

// publish is best effort and detached from request cancellation.
func (s *ingestService) publish(ctx context.Context, evt queue.IngestedEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.producer.Publish(ctx, evt); err != nil {
		metrics.PublishFailuresTotal.Inc()
		s.logger.WarnContext(ctx, "failed to publish message.ingested", "error", err)
	}
}
