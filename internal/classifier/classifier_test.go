package classifier_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/samuelbyalugaba/KenaAI-sub000/common/llm"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/classifier"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/model"
)

// fill decodes a canned JSON reply into the caller's result, the way a real
// client does.
func fill(reply string) func(context.Context, llm.Request, any) (*llm.Response, error) {
	return func(_ context.Context, _ llm.Request, result any) (*llm.Response, error) {
		return &llm.Response{PromptTokens: 10, CompletionTokens: 5}, json.Unmarshal([]byte(reply), result)
	}
}

var _ = Describe("Keyword classifier", func() {
	var c classifier.Classifier

	BeforeEach(func() {
		c = classifier.NewKeyword()
	})

	DescribeTable("priorities",
		func(text string, expected model.Priority) {
			res, err := c.Classify(context.Background(), text)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Priority).To(Equal(expected))
			Expect(res.Degraded).To(BeFalse())
		},
		Entry("urgent cue", "Help, urgent!", model.PriorityUrgent),
		Entry("asap", "need this ASAP", model.PriorityUrgent),
		Entry("emergency", "this is an emergency", model.PriorityUrgent),
		Entry("broken", "checkout is broken", model.PriorityHigh),
		Entry("not working with extra spaces", "login not   working", model.PriorityHigh),
		Entry("refund", "I want a refund", model.PriorityHigh),
		Entry("thanks", "Thanks, resolved", model.PriorityLow),
		Entry("fyi", "fyi the office is closed", model.PriorityLow),
		Entry("no rush", "no rush on this", model.PriorityLow),
		Entry("plain question", "what are your opening hours?", model.PriorityNormal),
		Entry("urgent beats high", "urgent: payment error", model.PriorityUrgent),
		Entry("word boundaries", "helpful errorless text", model.PriorityNormal),
	)

	It("rejects empty text", func() {
		_, err := c.Classify(context.Background(), "   ")
		Expect(err).To(MatchError(classifier.ErrEmptyText))
	})

	It("explains the match", func() {
		res, err := c.Classify(context.Background(), "REFUND please")
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Rationale).To(Equal("matched refund"))
	})
})

var _ = Describe("LLM classifier", func() {
	var client *mockLLMClient

	BeforeEach(func() {
		client = &mockLLMClient{}
	})

	It("parses the structured reply", func() {
		client.chatFn = fill(`{"priority":"HIGH","rationale":"billing problem"}`)
		c := classifier.NewLLM(client, time.Second)

		res, err := c.Classify(context.Background(), "I was charged twice")
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Priority).To(Equal(model.PriorityHigh))
		Expect(res.Rationale).To(Equal("billing problem"))

		Expect(client.requests).To(HaveLen(1))
		req := client.requests[0]
		Expect(req.UserPrompt).To(Equal("I was charged twice"))
		Expect(req.SchemaName).To(Equal("message_priority"))
		Expect(req.Schema).NotTo(BeNil())
		Expect(req.Temperature).NotTo(BeNil())
		Expect(*req.Temperature).To(BeZero())
	})

	It("cuts long messages without splitting runes", func() {
		client.chatFn = fill(`{"priority":"normal","rationale":"long"}`)
		c := classifier.NewLLM(client, time.Second)

		_, err := c.Classify(context.Background(), "a"+strings.Repeat("é", 3000))
		Expect(err).NotTo(HaveOccurred())

		prompt := client.requests[0].UserPrompt
		Expect(len(prompt)).To(BeNumerically("<=", 4000))
		Expect(len(prompt)).To(BeNumerically(">", 3990))
		Expect(utf8.ValidString(prompt)).To(BeTrue())
		Expect(prompt).To(HavePrefix("aé"))
	})

	It("never calls the model for empty text", func() {
		c := classifier.NewLLM(client, time.Second)

		_, err := c.Classify(context.Background(), "\n\t ")
		Expect(err).To(MatchError(classifier.ErrEmptyText))
		Expect(client.requests).To(BeEmpty())
	})

	It("rejects an unknown priority", func() {
		client.chatFn = fill(`{"priority":"critical","rationale":"?"}`)
		c := classifier.NewLLM(client, time.Second)

		_, err := c.Classify(context.Background(), "hello")
		Expect(err).To(HaveOccurred())
	})

	It("surfaces client errors", func() {
		client.chatFn = func(context.Context, llm.Request, any) (*llm.Response, error) {
			return nil, errors.New("503 service unavailable")
		}
		c := classifier.NewLLM(client, time.Second)

		_, err := c.Classify(context.Background(), "hello")
		Expect(err).To(MatchError(ContainSubstring("503")))
		Expect(client.requests).To(HaveLen(1))
	})

	It("bounds the call with its timeout", func() {
		client.chatFn = func(ctx context.Context, _ llm.Request, _ any) (*llm.Response, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		c := classifier.NewLLM(client, 20*time.Millisecond)

		start := time.Now()
		_, err := c.Classify(context.Background(), "hello")
		Expect(err).To(MatchError(context.DeadlineExceeded))
		Expect(time.Since(start)).To(BeNumerically("<", time.Second))
	})
})

var _ = Describe("WithFallback", func() {
	It("passes successful results through", func() {
		inner := &mockClassifier{classifyFn: func(context.Context, string) (classifier.Result, error) {
			return classifier.Result{Priority: model.PriorityUrgent}, nil
		}}
		c := classifier.WithFallback(inner, model.PriorityNormal)

		res, err := c.Classify(context.Background(), "help")
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Priority).To(Equal(model.PriorityUrgent))
		Expect(res.Degraded).To(BeFalse())
	})

	It("degrades to the default priority on failure", func() {
		inner := &mockClassifier{classifyFn: func(context.Context, string) (classifier.Result, error) {
			return classifier.Result{}, context.DeadlineExceeded
		}}
		c := classifier.WithFallback(inner, model.PriorityLow)

		res, err := c.Classify(context.Background(), "help")
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Priority).To(Equal(model.PriorityLow))
		Expect(res.Degraded).To(BeTrue())
		Expect(inner.calls).To(Equal(1))
	})

	It("keeps empty text a caller error", func() {
		c := classifier.WithFallback(classifier.NewKeyword(), model.PriorityNormal)

		_, err := c.Classify(context.Background(), "")
		Expect(err).To(MatchError(classifier.ErrEmptyText))
	})
})
