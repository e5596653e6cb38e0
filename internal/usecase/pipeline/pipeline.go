// Package pipeline orchestrates one chat request: analyze, search, fuse,
// permission filter, optional re-rank and context assembly, then prompt
// rendering for the chat model.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/belljun3395/okchat/internal/domain"
	"github.com/belljun3395/okchat/internal/domain/query"
	"github.com/belljun3395/okchat/internal/logger"
	"github.com/belljun3395/okchat/internal/metrics"
	"github.com/belljun3395/okchat/internal/usecase/assemble"
)

// Defaults for answer generation.
const (
	DefaultTimeout           = 60 * time.Second
	DefaultAnswerTemperature = 0.3
	DefaultAnswerMaxTokens   = 1024
)

// PromptRenderer renders the final prompt from the assembled context.
type PromptRenderer interface {
	RenderPrompt(t query.Type, c assemble.Context) (string, error)
}

// Config tunes the pipeline.
type Config struct {
	Timeout           time.Duration
	AnswerTemperature float32
	AnswerMaxTokens   int
}

// CompleteContext is the result of Run.
type CompleteContext struct {
	RequestID  string
	PromptText string
	Sources    []assemble.Source
	Question   string
	QueryType  query.Type
	Confidence float64
	Usage      domain.UsageSnapshot
}

// Answer is the result of Answer: the prompt plus the model's reply.
type Answer struct {
	CompleteContext
	Text string
}

// Pipeline runs the step list for each request. It holds no per-request state.
type Pipeline struct {
	steps    []Step
	renderer PromptRenderer
	chat     domain.ChatModel
	cfg      Config
	logger   *zap.Logger
}

// New creates a pipeline. chat may be nil when only prompts are needed.
func New(steps []Step, renderer PromptRenderer, chat domain.ChatModel, cfg Config, logger *zap.Logger) *Pipeline {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.AnswerMaxTokens <= 0 {
		cfg.AnswerMaxTokens = DefaultAnswerMaxTokens
	}
	if cfg.AnswerTemperature <= 0 {
		cfg.AnswerTemperature = DefaultAnswerTemperature
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{steps: steps, renderer: renderer, chat: chat, cfg: cfg, logger: logger}
}

// Run executes every step and renders the prompt. When no document survives,
// PromptText is the no-results prompt.
func (p *Pipeline) Run(ctx context.Context, in UserInput) (CompleteContext, error) {
	in.Query = strings.TrimSpace(in.Query)
	if in.Query == "" {
		return CompleteContext{}, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if in.RequestID == "" {
		in.RequestID = uuid.NewString()
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()
	ctx, usage := withUsage(ctx)
	log := p.logger.With(zap.String("request_id", in.RequestID))
	ctx = logger.ContextWithLogger(ctx, log)

	rc := NewRequestContext(in)
	for _, step := range p.steps {
		if !step.ShouldExecute(rc) {
			metrics.PipelineStepsSkippedTotal.WithLabelValues(step.Name).Inc()
			log.Debug("Pipeline step skipped", zap.String("step", step.Name))
			continue
		}

		start := time.Now()
		next, err := step.Execute(ctx, rc)
		metrics.PipelineStepDuration.WithLabelValues(step.Name).Observe(time.Since(start).Seconds())
		if err != nil {
			qt := rc.Analysis().Query.Type()
			metrics.PipelineRequestsTotal.WithLabelValues(typeLabel(qt), "error").Inc()
			log.Warn("Pipeline step failed", zap.String("step", step.Name), zap.Error(err))
			return CompleteContext{}, fmt.Errorf("step %s: %w", step.Name, err)
		}
		rc = next
	}

	a := rc.Analysis()
	asm := rc.Search().Context
	if asm.Question == "" {
		asm.Question = in.Query
	}
	promptText, err := p.renderer.RenderPrompt(a.Query.Type(), asm)
	if err != nil {
		metrics.PipelineRequestsTotal.WithLabelValues(typeLabel(a.Query.Type()), "error").Inc()
		return CompleteContext{}, fmt.Errorf("render prompt: %w", err)
	}

	status := "success"
	if !asm.HasDocuments() {
		status = "no_documents"
	}
	metrics.PipelineRequestsTotal.WithLabelValues(typeLabel(a.Query.Type()), status).Inc()
	log.Info("Pipeline completed",
		zap.String("query_type", typeLabel(a.Query.Type())),
		zap.Int("documents", len(asm.Sources)),
		zap.Bool("deep_think", in.DeepThink),
	)

	return CompleteContext{
		RequestID:  in.RequestID,
		PromptText: promptText,
		Sources:    asm.Sources,
		Question:   asm.Question,
		QueryType:  a.Query.Type(),
		Confidence: a.Query.Confidence(),
		Usage:      usage.Snapshot(),
	}, nil
}

// Answer runs the pipeline and sends the rendered prompt to the chat model.
func (p *Pipeline) Answer(ctx context.Context, in UserInput) (Answer, error) {
	if p.chat == nil {
		return Answer{}, fmt.Errorf("%w: no chat model configured", domain.ErrLLMProviderError)
	}
	ctx, usage := withUsage(ctx)

	cc, err := p.Run(ctx, in)
	if err != nil {
		return Answer{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()
	res, err := p.chat.Complete(ctx, domain.NewPromptRequest(cc.PromptText, p.cfg.AnswerTemperature, p.cfg.AnswerMaxTokens))
	if err != nil {
		return Answer{}, fmt.Errorf("generate answer: %w", err)
	}
	cc.Usage = usage.Snapshot()
	return Answer{CompleteContext: cc, Text: strings.TrimSpace(res.Content)}, nil
}

// withUsage reuses the caller's usage collector so Answer sees the tokens of Run.
func withUsage(ctx context.Context) (context.Context, *domain.RequestUsage) {
	if u := domain.UsageFromContext(ctx); u != nil {
		return ctx, u
	}
	return domain.NewContextWithUsage(ctx)
}

func typeLabel(t query.Type) string {
	if t == "" {
		return string(query.General)
	}
	return t.String()
}
