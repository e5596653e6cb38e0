// Package permission reads per-user path rules from Redis and filters
// search hits by them.
//
// Rules live in one hash per user, keyed "<prefix><email>":
//
//	HSET okchat:perm:alice@example.com "Engineering" READ "Engineering > Infra" DENY
//
// A field is a path prefix made of " > "-separated segments ("*" matches every
// path). The longest matching prefix decides; a document no rule covers is denied.
package permission

import (
	"context"
	"fmt"
	"strings"

	"github.com/belljun3395/okchat/internal/domain"
	"github.com/belljun3395/okchat/internal/domain/document"
)

// Access values stored in rule hashes.
const (
	AccessRead = "READ"
	AccessDeny = "DENY"
)

// wildcard matches every path with the lowest precedence.
const wildcard = "*"

// store is the consumer interface for permission lookup (ISP).
type store interface {
	HGetAll(ctx context.Context, key string) (map[string]string, error)
}

// Oracle implements usecase/permission.Oracle.
type Oracle struct {
	store     store
	keyPrefix string
}

// NewOracle creates a Redis-backed permission oracle.
func NewOracle(s store, keyPrefix string) *Oracle {
	return &Oracle{store: s, keyPrefix: keyPrefix}
}

type rule struct {
	segments []string
	allow    bool
}

// FilterByUserEmail returns the subset of results the user may read, in input order.
// A user with no rules yields ErrUnknownUser; a lookup failure yields ErrPermissionOracle.
func (o *Oracle) FilterByUserEmail(
	ctx context.Context, results []document.Result, email string,
) ([]document.Result, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("%w: empty email", domain.ErrUnknownUser)
	}

	fields, err := o.store.HGetAll(ctx, o.keyPrefix+email)
	if err != nil {
		return nil, fmt.Errorf("%w: load rules for %s: %w", domain.ErrPermissionOracle, email, err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownUser, email)
	}

	rules := parseRules(fields)
	allowed := make([]document.Result, 0, len(results))
	for _, r := range results {
		if canRead(rules, splitPath(r.Path())) {
			allowed = append(allowed, r)
		}
	}
	return allowed, nil
}

func parseRules(fields map[string]string) []rule {
	rules := make([]rule, 0, len(fields))
	for prefix, access := range fields {
		var allow bool
		switch strings.ToUpper(strings.TrimSpace(access)) {
		case AccessRead:
			allow = true
		case AccessDeny:
			allow = false
		default:
			continue // unknown values grant nothing
		}
		var segs []string
		if strings.TrimSpace(prefix) != wildcard {
			segs = splitPath(prefix)
		}
		rules = append(rules, rule{segments: segs, allow: allow})
	}
	return rules
}

// canRead applies the longest matching rule. On equal length DENY wins.
func canRead(rules []rule, path []string) bool {
	best := -1
	allow := false
	for _, r := range rules {
		if !hasPrefix(path, r.segments) {
			continue
		}
		n := len(r.segments)
		if n > best || (n == best && !r.allow) {
			best = n
			allow = r.allow
		}
	}
	return best >= 0 && allow
}

func hasPrefix(path, prefix []string) bool {
	if len(prefix) > len(path) {
		return false
	}
	for i := range prefix {
		if !strings.EqualFold(path[i], prefix[i]) {
			return false
		}
	}
	return true
}

func splitPath(p string) []string {
	parts := strings.Split(p, ">")
	out := parts[:0]
	for _, s := range parts {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
