package search

import (
	"context"

	"github.com/belljun3395/okchat/internal/domain/document"
	"github.com/belljun3395/okchat/internal/domain/search/strategy"
)

// Index runs one strategy query and returns hits in rank order.
type Index interface {
	Search(ctx context.Context, s strategy.Strategy, q strategy.Query) ([]document.Result, error)
}
