package extraction

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// listMarkerRe matches a leading "-", "*", "•" or "N." list marker.
var listMarkerRe = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s*`)

// ParseTerms splits an LLM reply into terms.
// A reply containing a comma is split on commas; otherwise a multi-line reply is split
// on newlines with list markers removed; otherwise the whole reply is one term.
// Terms are trimmed, terms shorter than minLen runes are dropped, duplicates are removed
// case-insensitively keeping the first casing, and at most maxCount terms are returned
// (maxCount <= 0 means no limit).
func ParseTerms(reply string, minLen, maxCount int) []string {
	var parts []string
	switch {
	case strings.Contains(reply, ","):
		parts = strings.Split(reply, ",")
	case strings.Contains(reply, "\n"):
		for _, line := range strings.Split(reply, "\n") {
			parts = append(parts, listMarkerRe.ReplaceAllString(line, ""))
		}
	default:
		parts = []string{reply}
	}

	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		term := strings.TrimSpace(p)
		if term == "" || utf8.RuneCountInString(term) < minLen {
			continue
		}
		key := strings.ToLower(term)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, term)
		if maxCount > 0 && len(out) == maxCount {
			break
		}
	}
	return out
}

// MergeTerms appends extra to base, skipping case-insensitive duplicates.
func MergeTerms(base, extra []string) []string {
	out := make([]string, 0, len(base)+len(extra))
	seen := make(map[string]struct{}, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, t := range list {
			key := strings.ToLower(t)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}
