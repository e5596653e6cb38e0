package extraction

import (
	"context"

	"github.com/belljun3395/okchat/internal/domain"
	"github.com/belljun3395/okchat/internal/prompt"
)

// ChatModel runs a single-shot completion.
type ChatModel interface {
	Complete(ctx context.Context, req domain.ChatRequest) (domain.ChatResult, error)
}

// Prompts renders extraction prompts.
type Prompts interface {
	Extraction(facet prompt.Facet, query string) (string, error)
}
