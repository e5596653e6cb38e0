// Package date expands date expressions in a query into the spellings used by
// document titles: Korean, dashed, slashed, compact YYMM and English month.
package date

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	minYear = 1900
	maxYear = 2100
)

// strategicDays is the bounded sample of day keys emitted instead of every
// day in the month. The last day of the month is appended separately.
var strategicDays = []int{1, 7, 8, 14, 15, 21, 22, 28, 29}

var (
	koreanFullRe  = regexp.MustCompile(`(\d{4})\s*년\s*(\d{1,2})\s*월(?:\s*(\d{1,2})\s*일)?`)
	koreanShortRe = regexp.MustCompile(`(?:^|[^\d])(\d{2})\s*년\s*(\d{1,2})\s*월(?:\s*(\d{1,2})\s*일)?`)
	dashRe        = regexp.MustCompile(`(\d{4})-(\d{1,2})(?:-(\d{1,2}))?(?:[^\d]|$)`)
	slashRe       = regexp.MustCompile(`(\d{4})/(\d{1,2})(?:/(\d{1,2}))?(?:[^\d]|$)`)
	digitRunRe    = regexp.MustCompile(`\d+`)
	dayNumberRe   = regexp.MustCompile(`\d{1,2}\s*일`)

	patterns = []*regexp.Regexp{koreanFullRe, koreanShortRe, dashRe, slashRe}
)

// match is one recognized year-month, optionally with a day.
type match struct {
	year  int
	month time.Month
	day   int
}

// Extract returns the keyword variants for every date expression in text,
// in first-seen order without duplicates. When text names a specific day, or
// includeAllDays is set, strategic day-level keys are added per month.
func Extract(text string, includeAllDays bool) []string {
	matches := findMatches(text)
	if len(matches) == 0 {
		return nil
	}

	withDays := includeAllDays || mentionsDay(text)

	out := newOrderedSet()
	for _, m := range matches {
		out.add(monthVariants(m)...)
		if m.day > 0 {
			out.add(dayVariants(m.year, m.month, m.day)...)
		}
		if withDays {
			for _, d := range strategicDaysOf(m.year, m.month) {
				out.add(dayVariants(m.year, m.month, d)...)
			}
		}
	}
	return out.items
}

// ContainsDateExpression reports whether text contains any recognized date
// pattern, valid or not.
func ContainsDateExpression(text string) bool {
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return len(compactRuns(text)) > 0
}

// ParseTitleDate returns the first valid date found in a title. The day
// defaults to 1 when only a month is present.
func ParseTitleDate(title string) (time.Time, bool) {
	matches := findMatches(title)
	if len(matches) == 0 {
		return time.Time{}, false
	}
	m := matches[0]
	day := m.day
	if day == 0 {
		day = 1
	}
	return time.Date(m.year, m.month, day, 0, 0, 0, 0, time.UTC), true
}

// compactRuns returns standalone 4- or 6-digit runs (YYMM / YYMMDD) that are
// not part of a dashed, slashed or "YYYY년" expression.
func compactRuns(text string) []string {
	var out []string
	for _, loc := range digitRunRe.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		if n := end - start; n != 4 && n != 6 {
			continue
		}
		if start > 0 && strings.ContainsAny(text[start-1:start], "-/") {
			continue
		}
		rest := text[end:]
		if strings.HasPrefix(rest, "-") || strings.HasPrefix(rest, "/") ||
			strings.HasPrefix(strings.TrimLeft(rest, " "), "년") {
			continue
		}
		out = append(out, text[start:end])
	}
	return out
}

func mentionsDay(text string) bool {
	return dayNumberRe.MatchString(text) || strings.Contains(text, "일")
}

func findMatches(text string) []match {
	var out []match
	seen := make(map[match]bool)
	appendMatch := func(m match, ok bool) {
		if ok && !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}

	for _, g := range koreanFullRe.FindAllStringSubmatch(text, -1) {
		appendMatch(build(g[1], g[2], g[3], false))
	}
	for _, g := range koreanShortRe.FindAllStringSubmatch(text, -1) {
		appendMatch(build(g[1], g[2], g[3], true))
	}
	for _, g := range dashRe.FindAllStringSubmatch(text, -1) {
		appendMatch(build(g[1], g[2], g[3], false))
	}
	for _, g := range slashRe.FindAllStringSubmatch(text, -1) {
		appendMatch(build(g[1], g[2], g[3], false))
	}
	for _, digits := range compactRuns(text) {
		day := ""
		if len(digits) == 6 {
			day = digits[4:6]
		}
		appendMatch(build(digits[0:2], digits[2:4], day, true))
	}
	return out
}

// build validates one match. Out-of-calendar values are rejected.
func build(yearStr, monthStr, dayStr string, shortYear bool) (match, bool) {
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return match{}, false
	}
	if shortYear {
		year += 2000
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 || year < minYear || year > maxYear {
		return match{}, false
	}

	m := match{year: year, month: time.Month(month)}
	if dayStr != "" {
		day, err := strconv.Atoi(dayStr)
		if err != nil || day < 1 || day > daysIn(year, m.month) {
			return match{}, false
		}
		m.day = day
	}
	return m, true
}

// monthVariants lists the most distinct forms first; keyword search keeps only a few.
func monthVariants(m match) []string {
	yy := m.year % 100
	mm := int(m.month)
	return []string{
		fmt.Sprintf("%d년 %02d월", m.year, mm),
		fmt.Sprintf("%d-%02d", m.year, mm),
		fmt.Sprintf("%d년%02d월", m.year, mm),
		fmt.Sprintf("%d년 %d월", m.year, mm),
		fmt.Sprintf("%d/%02d", m.year, mm),
		fmt.Sprintf("%02d%02d", yy, mm),
		m.month.String(),
		fmt.Sprintf("%d월", mm),
	}
}

func dayVariants(year int, month time.Month, day int) []string {
	return []string{
		fmt.Sprintf("%02d%02d%02d", year%100, int(month), day),
		fmt.Sprintf("%d-%02d-%02d", year, int(month), day),
	}
}

func strategicDaysOf(year int, month time.Month) []int {
	last := daysIn(year, month)
	days := make([]int, 0, len(strategicDays)+1)
	for _, d := range strategicDays {
		if d < last {
			days = append(days, d)
		}
	}
	return append(days, last)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (s *orderedSet) add(values ...string) {
	for _, v := range values {
		if _, ok := s.seen[v]; ok {
			continue
		}
		s.seen[v] = struct{}{}
		s.items = append(s.items, v)
	}
}
