package classify

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/belljun3395/okchat/internal/domain"
	"github.com/belljun3395/okchat/internal/domain/query"
)

const (
	defaultConfidence = 0.5
	aiTemperature     = 0.1
	aiMaxTokens       = 120
)

// AIClassifier classifies with the chat model and a TYPE/CONFIDENCE/REASONING reply.
type AIClassifier struct {
	llm     ChatModel
	prompts Prompts
}

// NewAIClassifier creates an LLM-backed classifier.
func NewAIClassifier(llm ChatModel, prompts Prompts) *AIClassifier {
	return &AIClassifier{llm: llm, prompts: prompts}
}

// Classify returns an error only when the prompt or the LLM call fails;
// an unparseable reply maps to GENERAL.
func (c *AIClassifier) Classify(ctx context.Context, q string) (query.Analysis, error) {
	text, err := c.prompts.Classification(q)
	if err != nil {
		return query.Analysis{}, fmt.Errorf("%w: render classification prompt: %w", domain.ErrExtractionFailed, err)
	}

	res, err := c.llm.Complete(ctx, domain.NewPromptRequest(text, aiTemperature, aiMaxTokens))
	if err != nil {
		return query.Analysis{}, fmt.Errorf("%w: classify: %w", domain.ErrExtractionFailed, err)
	}

	t, confidence := parseReply(res.Content)
	return query.NewAnalysis(t, confidence, Tokens(q)), nil
}

// parseReply reads the TYPE: and CONFIDENCE: lines.
func parseReply(reply string) (query.Type, float64) {
	t := query.General
	confidence := defaultConfidence

	sc := bufio.NewScanner(strings.NewReader(reply))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(strings.Trim(strings.TrimSpace(value), "*`\"'"))
		switch strings.ToUpper(strings.Trim(strings.TrimSpace(key), "*")) {
		case "TYPE":
			t = query.ParseType(value)
		case "CONFIDENCE":
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				confidence = f
			}
		}
	}
	return t, confidence
}

// Tokens returns the whitespace-separated words of q with at least two runes.
func Tokens(q string) []string {
	fields := strings.Fields(q)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) >= 2 {
			out = append(out, f)
		}
	}
	return out
}
