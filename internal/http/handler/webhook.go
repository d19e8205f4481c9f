package handler

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.opentelemetry.io/otel/trace"

	"github.com/samuelbyalugaba/KenaAI-sub000/common/id"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/http/dto"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/metrics"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/service"
)

const maxWebhookBodyBytes = 1 << 20

type WebhookHandler struct {
	service service.IngestService
	now     func() time.Time
}

func NewWebhookHandler(service service.IngestService) *WebhookHandler {
	return &WebhookHandler{
		service: service,
		now:     time.Now,
	}
}

func (h *WebhookHandler) Receive(c *gin.Context) {
	ctx := c.Request.Context()
	receivedAt := h.now().UTC()

	req, err := parseWebhook(c)
	if err != nil {
		slog.DebugContext(ctx, "unreadable webhook payload", "error", err)
		metrics.WebhookRequestsTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	evt := req.Normalize(receivedAt)
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		traceID := spanCtx.TraceID().String()
		evt.TraceID = &traceID
	}

	result, err := h.service.Ingest(ctx, evt)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if result.Ignored {
		metrics.WebhookRequestsTotal.WithLabelValues(metrics.OutcomeIgnored).Inc()
		c.JSON(http.StatusOK, dto.WebhookResponse{Status: "ok", Ignored: true})
		return
	}

	outcome := metrics.OutcomeAccepted
	if result.Duplicate {
		outcome = metrics.OutcomeDuplicate
	}
	metrics.WebhookRequestsTotal.WithLabelValues(outcome).Inc()

	c.JSON(http.StatusOK, dto.WebhookResponse{
		Status:         "ok",
		ConversationID: id.Format(result.Conversation.ID),
		MessageID:      id.Format(result.Message.ID),
		Priority:       string(result.Conversation.Priority),
		UnreadCount:    result.Conversation.UnreadCount,
		Duplicate:      result.Duplicate,
	})
}

func (h *WebhookHandler) writeError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	var validationErr *service.ValidationError
	var ingestErr *service.IngestError
	stage := service.StageError
	if errors.As(err, &ingestErr) {
		stage = ingestErr.Stage
	}

	switch {
	case errors.As(err, &validationErr):
		slog.DebugContext(ctx, "rejected webhook event", "field", validationErr.Field)
		metrics.WebhookRequestsTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.Is(err, service.ErrTenantNotFound):
		slog.WarnContext(ctx, "webhook for unknown tenant", "stage", stage)
		metrics.WebhookRequestsTotal.WithLabelValues(metrics.OutcomeNotFound).Inc()
		c.JSON(http.StatusNotFound, gin.H{"error": "tenant not found"})
	default:
		slog.ErrorContext(ctx, "failed to ingest message", "error", err, "stage", stage)
		metrics.WebhookRequestsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to ingest message"})
	}
}

// parseWebhook picks the query shape when botId is in the query string or
// the body is empty, and the JSON shape otherwise.
func parseWebhook(c *gin.Context) (dto.WebhookRequest, error) {
	if c.Query("botId") == "" {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes)

		var b dto.WebhookBody
		err := c.ShouldBindBodyWith(&b, binding.JSON)
		if err == nil {
			return dto.WebhookRequest{Kind: dto.PayloadKindJSON, Body: &b}, nil
		}
		if !emptyBody(c) {
			return dto.WebhookRequest{}, err
		}
	}

	var q dto.WebhookQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return dto.WebhookRequest{}, err
	}
	return dto.WebhookRequest{Kind: dto.PayloadKindQuery, Query: &q}, nil
}

// emptyBody reports whether the body cached by ShouldBindBodyWith was
// blank. A body that could not be read is not cached and counts as
// non-empty.
func emptyBody(c *gin.Context) bool {
	raw, ok := c.Get(gin.BodyBytesKey)
	if !ok {
		return false
	}
	body, _ := raw.([]byte)
	return len(bytes.TrimSpace(body)) == 0
}
