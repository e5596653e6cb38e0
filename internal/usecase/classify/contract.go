package classify

import (
	"context"

	"github.com/belljun3395/okchat/internal/domain"
	"github.com/belljun3395/okchat/internal/domain/query"
)

// Classifier assigns a query type to a user question.
type Classifier interface {
	Classify(ctx context.Context, q string) (query.Analysis, error)
}

// ChatModel runs a single-shot completion.
type ChatModel interface {
	Complete(ctx context.Context, req domain.ChatRequest) (domain.ChatResult, error)
}

// Prompts renders the classification prompt.
type Prompts interface {
	Classification(query string) (string, error)
}
