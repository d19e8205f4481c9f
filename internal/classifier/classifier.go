package classifier

import (
	"context"
	"errors"

	"github.com/samuelbyalugaba/KenaAI-sub000/internal/model"
)

// ErrEmptyText is returned for empty or whitespace-only input. Such text is
// never sent to a remote model.
var ErrEmptyText = errors.New("classifier: empty text")

type Result struct {
	Priority model.Priority
	// Rationale is for logs only; it is never persisted.
	Rationale string
	// Degraded is set when Priority is a fallback rather than a classification.
	Degraded bool
}

// Classifier maps a message body to a priority.
type Classifier interface {
	Classify(ctx context.Context, text string) (Result, error)
}
