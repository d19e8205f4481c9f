package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/samuelbyalugaba/KenaAI-sub000/common/llm"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/model"
)

const (
	DefaultTimeout = 5 * time.Second

	// Long messages are cut before being sent; urgency cues are almost
	// always near the start.
	maxPromptBytes = 4000
)

const systemPrompt = `You triage inbound customer support chat messages.
Assign exactly one priority:
- urgent: the customer is blocked, reports an outage or emergency, or explicitly asks for immediate help.
- high: something is broken or wrong, a refund or billing problem, a complaint.
- normal: questions and requests with no sign of urgency.
- low: thanks, acknowledgements, FYIs, or anything that needs no reply.
Respond with the priority and a one-sentence rationale.`

type llmResult struct {
	Priority  string `json:"priority" jsonschema:"enum=urgent,enum=high,enum=normal,enum=low"`
	Rationale string `json:"rationale"`
}

var llmResultSchema = llm.GenerateSchema[llmResult]()

type llmClassifier struct {
	client  llm.Client
	timeout time.Duration
}

// NewLLM returns a classifier that makes one structured call per message,
// bounded by timeout. A non-positive timeout uses DefaultTimeout.
func NewLLM(client llm.Client, timeout time.Duration) Classifier {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &llmClassifier{client: client, timeout: timeout}
}

func (c *llmClassifier) Classify(ctx context.Context, text string) (Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, ErrEmptyText
	}
	text = truncateUTF8(text, maxPromptBytes)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	var out llmResult
	resp, err := c.client.Chat(ctx, llm.Request{
		SystemPrompt: systemPrompt,
		UserPrompt:   text,
		SchemaName:   "message_priority",
		Schema:       llmResultSchema,
		MaxTokens:    128,
		Temperature:  llm.Temp(0),
	}, &out)
	if err != nil {
		return Result{}, fmt.Errorf("llm classify: %w", err)
	}

	priority, err := model.ParsePriority(out.Priority)
	if err != nil {
		return Result{}, fmt.Errorf("llm classify: %w", err)
	}

	slog.DebugContext(ctx, "message classified",
		"model", c.client.Model(),
		"priority", priority,
		"duration_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.PromptTokens,
		"completion_tokens", resp.CompletionTokens)

	return Result{Priority: priority, Rationale: out.Rationale}, nil
}

// truncateUTF8 cuts text to at most n bytes without splitting a rune.
func truncateUTF8(text string, n int) string {
	if len(text) <= n {
		return text
	}
	for n > 0 && !utf8.RuneStart(text[n]) {
		n--
	}
	return text[:n]
}
