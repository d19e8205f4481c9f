package classifier

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samuelbyalugaba/KenaAI-sub000/internal/metrics"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/model"
)

type fallbackClassifier struct {
	next     Classifier
	fallback model.Priority
}

// WithFallback wraps c so that any failure yields the fallback priority with
// Degraded set. ErrEmptyText is still returned; it is a caller error.
func WithFallback(c Classifier, fallback model.Priority) Classifier {
	return &fallbackClassifier{next: c, fallback: fallback}
}

func (f *fallbackClassifier) Classify(ctx context.Context, text string) (Result, error) {
	res, err := f.next.Classify(ctx, text)
	if err == nil {
		metrics.ClassificationsTotal.WithLabelValues(string(res.Priority)).Inc()
		return res, nil
	}
	if errors.Is(err, ErrEmptyText) {
		return Result{}, err
	}

	slog.WarnContext(ctx, "classifier unavailable, using default priority",
		"error", err,
		"default_priority", f.fallback)
	metrics.ClassifierDegradedTotal.Inc()
	metrics.ClassificationsTotal.WithLabelValues(string(f.fallback)).Inc()

	return Result{Priority: f.fallback, Degraded: true}, nil
}
