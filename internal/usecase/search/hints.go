package search

import (
	"strings"

	"github.com/belljun3395/okchat/internal/domain/query"
)

// typePathHints are path fragments implied by a query type.
var typePathHints = map[query.Type][]string{
	query.MeetingRecords: {"회의록", "회의", "meeting", "minutes"},
	query.ProjectStatus:  {"프로젝트", "project", "현황", "status"},
	query.HowTo:          {"가이드", "guide", "매뉴얼", "manual", "how-to"},
}

// PathHints combines the type-implied fragments with the extracted location
// facet, deduplicated case-insensitively.
func PathHints(t query.Type, locations []string) []string {
	seen := make(map[string]struct{})
	var hints []string
	add := func(h string) {
		h = strings.TrimSpace(h)
		key := strings.ToLower(h)
		if h == "" {
			return
		}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		hints = append(hints, h)
	}
	for _, h := range typePathHints[t] {
		add(h)
	}
	for _, h := range locations {
		add(h)
	}
	return hints
}
