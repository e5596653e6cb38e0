// Package permission enforces per-user document access on fused search results.
// Every path that cannot prove access yields an empty list.
package permission

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/belljun3395/okchat/internal/domain"
	"github.com/belljun3395/okchat/internal/domain/document"
	"github.com/belljun3395/okchat/internal/metrics"
)

// Oracle decides which results a user may read.
type Oracle interface {
	FilterByUserEmail(ctx context.Context, results []document.Result, email string) ([]document.Result, error)
}

// Config controls anonymous access.
type Config struct {
	// AllowAnonymous passes results through unfiltered when no email is known.
	AllowAnonymous bool
}

// Filter applies the oracle to a result list.
type Filter struct {
	oracle Oracle
	cfg    Config
	logger *zap.Logger
}

// New creates a permission filter.
func New(oracle Oracle, cfg Config, logger *zap.Logger) *Filter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Filter{oracle: oracle, cfg: cfg, logger: logger}
}

// ShouldExecute reports whether the filter must run. Without an email it still
// runs (and denies everything) unless anonymous callers are allowed.
func (f *Filter) ShouldExecute(results []document.Result, email string) bool {
	if len(results) == 0 {
		return false
	}
	return strings.TrimSpace(email) != "" || !f.cfg.AllowAnonymous
}

// Apply returns the readable subset of results. The output never contains a
// result absent from the input.
func (f *Filter) Apply(ctx context.Context, results []document.Result, email string) []document.Result {
	if len(results) == 0 {
		return results
	}
	email = strings.TrimSpace(email)
	if email == "" {
		if f.cfg.AllowAnonymous {
			return results
		}
		f.deny("anonymous", len(results))
		f.logger.Warn("Permission filter denied anonymous request", zap.Int("results", len(results)))
		return []document.Result{}
	}

	allowed, err := f.oracle.FilterByUserEmail(ctx, results, email)
	if err != nil {
		reason := "oracle_error"
		if errors.Is(err, domain.ErrUnknownUser) {
			reason = "unknown_user"
		}
		f.deny(reason, len(results))
		f.logger.Warn("Permission oracle rejected request",
			zap.String("email", email),
			zap.String("reason", reason),
			zap.Error(err),
		)
		return []document.Result{}
	}

	allowed = subsetOf(results, allowed)
	f.deny("denied", len(results)-len(allowed))
	return allowed
}

func (f *Filter) deny(reason string, n int) {
	if n > 0 {
		metrics.PermissionFilteredTotal.WithLabelValues(reason).Add(float64(n))
	}
}

// subsetOf drops any result of out whose id is not in in, and duplicates.
func subsetOf(in, out []document.Result) []document.Result {
	known := make(map[string]struct{}, len(in))
	for _, r := range in {
		known[r.ID()] = struct{}{}
	}
	kept := make([]document.Result, 0, len(out))
	for _, r := range out {
		if _, ok := known[r.ID()]; ok {
			kept = append(kept, r)
			delete(known, r.ID())
		}
	}
	return kept
}
