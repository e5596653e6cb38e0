package classify

import (
	"context"
	"strings"

	"github.com/belljun3395/okchat/internal/domain/query"
)

type rule struct {
	typ        query.Type
	confidence float64
	triggers   []string
}

// rules are checked in order; the first trigger substring that matches wins.
var rules = []rule{
	{query.MeetingRecords, 0.8, []string{"회의록", "회의", "미팅", "meeting", "minutes", "agenda", "안건"}},
	{query.ProjectStatus, 0.75, []string{"진행 상황", "진행상황", "현황", "진척", "상태", "status", "progress", "milestone"}},
	{query.HowTo, 0.75, []string{"방법", "어떻게", "가이드", "하는 법", "how to", "how do", "guide", "tutorial"}},
	{query.Information, 0.7, []string{"무엇", "뭐야", "정책", "정보", "알려", "what is", "what are", "policy", "information"}},
	{query.DocumentSearch, 0.7, []string{"문서", "파일", "찾아", "검색", "document", "file", "find", "search"}},
}

const generalConfidence = 0.5

// RuleBasedClassifier classifies by bilingual trigger words. It never fails.
type RuleBasedClassifier struct{}

// NewRuleBasedClassifier creates a rule-based classifier.
func NewRuleBasedClassifier() RuleBasedClassifier { return RuleBasedClassifier{} }

// Classify matches trigger words in priority order: meeting, status, how-to,
// information, document search, then general.
func (RuleBasedClassifier) Classify(_ context.Context, q string) (query.Analysis, error) {
	lower := strings.ToLower(q)
	for _, r := range rules {
		for _, trig := range r.triggers {
			if strings.Contains(lower, trig) {
				return query.NewAnalysis(r.typ, r.confidence, Tokens(q)), nil
			}
		}
	}
	return query.NewAnalysis(query.General, generalConfidence, Tokens(q)), nil
}
