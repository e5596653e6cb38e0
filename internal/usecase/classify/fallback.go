// Package classify assigns one of six query types to a user question.
// The LLM classifier is tried first and a deterministic rule-based
// classifier takes over on failure.
package classify

import (
	"context"

	"go.uber.org/zap"

	"github.com/belljun3395/okchat/internal/domain/query"
	"github.com/belljun3395/okchat/internal/metrics"
)

// FallbackClassifier tries primary and, on error, classifies with fallback.
type FallbackClassifier struct {
	primary  Classifier
	fallback Classifier
	logger   *zap.Logger
}

// WithFallback composes two classifiers.
func WithFallback(primary, fallback Classifier, logger *zap.Logger) *FallbackClassifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackClassifier{primary: primary, fallback: fallback, logger: logger}
}

// Classify never fails as long as the fallback never fails.
func (c *FallbackClassifier) Classify(ctx context.Context, q string) (query.Analysis, error) {
	a, err := c.primary.Classify(ctx, q)
	if err == nil {
		return a, nil
	}

	c.logger.Warn("Query classification failed, using rule-based fallback", zap.Error(err))
	metrics.ExtractionFallbacksTotal.WithLabelValues("classification").Inc()
	return c.fallback.Classify(ctx, q)
}
