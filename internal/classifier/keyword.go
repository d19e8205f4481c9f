package classifier

import (
	"context"
	"regexp"
	"strings"

	"github.com/samuelbyalugaba/KenaAI-sub000/internal/model"
)

type keywordRule struct {
	priority model.Priority
	pattern  *regexp.Regexp
}

// Rules are checked in order; the first match wins.
var keywordRules = []keywordRule{
	{model.PriorityUrgent, wordsPattern("urgent", "asap", "emergency", "help")},
	{model.PriorityHigh, wordsPattern("problem", "error", "broken", "not working", "refund")},
	{model.PriorityLow, wordsPattern("thanks", "thank you", "resolved", "fyi", "no rush")},
}

func wordsPattern(words ...string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = strings.ReplaceAll(regexp.QuoteMeta(w), " ", `\s+`)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

type keywordClassifier struct{}

// NewKeyword returns a deterministic lexical classifier. It needs no network
// and is used when no LLM provider is configured.
func NewKeyword() Classifier {
	return keywordClassifier{}
}

func (keywordClassifier) Classify(_ context.Context, text string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, ErrEmptyText
	}

	for _, rule := range keywordRules {
		if m := rule.pattern.FindString(text); m != "" {
			return Result{Priority: rule.priority, Rationale: "matched " + strings.ToLower(m)}, nil
		}
	}
	return Result{Priority: model.PriorityNormal, Rationale: "no keyword matched"}, nil
}
