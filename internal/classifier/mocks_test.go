package classifier_test

import (
	"context"

	"github.com/samuelbyalugaba/KenaAI-sub000/common/llm"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/classifier"
)

type mockLLMClient struct {
	chatFn   func(ctx context.Context, req llm.Request, result any) (*llm.Response, error)
	requests []llm.Request
}

func (m *mockLLMClient) Chat(ctx context.Context, req llm.Request, result any) (*llm.Response, error) {
	m.requests = append(m.requests, req)
	if m.chatFn != nil {
		return m.chatFn(ctx, req, result)
	}
	return &llm.Response{}, nil
}

func (m *mockLLMClient) Model() string {
	return "mock-model"
}

type mockClassifier struct {
	classifyFn func(ctx context.Context, text string) (classifier.Result, error)
	calls      int
}

func (m *mockClassifier) Classify(ctx context.Context, text string) (classifier.Result, error) {
	m.calls++
	if m.classifyFn != nil {
		return m.classifyFn(ctx, text)
	}
	return classifier.Result{}, nil
}
