package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/belljun3395/okchat/internal/config"
	dbRedis "github.com/belljun3395/okchat/internal/db/redis"
	"github.com/belljun3395/okchat/internal/domain"
	logpkg "github.com/belljun3395/okchat/internal/logger"
	"github.com/belljun3395/okchat/internal/metrics"
	"github.com/belljun3395/okchat/internal/prompt"
	"github.com/belljun3395/okchat/internal/repository/embcache"
	permissionrepo "github.com/belljun3395/okchat/internal/repository/permission"
	searchrepo "github.com/belljun3395/okchat/internal/repository/search"
	openaiTransport "github.com/belljun3395/okchat/internal/transport/openai"
	"github.com/belljun3395/okchat/internal/usecase/assemble"
	"github.com/belljun3395/okchat/internal/usecase/classify"
	embeddinguc "github.com/belljun3395/okchat/internal/usecase/embedding"
	"github.com/belljun3395/okchat/internal/usecase/extraction"
	healthuc "github.com/belljun3395/okchat/internal/usecase/health"
	permissionuc "github.com/belljun3395/okchat/internal/usecase/permission"
	"github.com/belljun3395/okchat/internal/usecase/pipeline"
	"github.com/belljun3395/okchat/internal/usecase/rerank"
	"github.com/belljun3395/okchat/internal/usecase/resilience"
	searchuc "github.com/belljun3395/okchat/internal/usecase/search"
)

// app is the composition root shared by serve, ask and index.
type app struct {
	env      string
	cfg      config.Config
	logger   *zap.Logger
	store    *dbRedis.Store
	pipeline *pipeline.Pipeline
	health   *healthuc.Service
}

// newApp loads config, connects to Redis and wires the pipeline.
func newApp(cmd *cobra.Command) (*app, error) {
	env, _ := cmd.Flags().GetString("env")

	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("create database store: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}

	metrics.RegisterLLMMetrics()
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterPipelineMetrics()

	a := &app{env: env, cfg: cfg, logger: logger, store: store}
	if err := a.wire(); err != nil {
		store.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) close() {
	a.store.Close()
	_ = a.logger.Sync()
}

// wire builds the pipeline: providers -> resilience -> caches -> use cases.
func (a *app) wire() error {
	cfg := a.cfg
	logger := a.logger

	prompts, err := prompt.Default()
	if err != nil {
		return fmt.Errorf("load prompts: %w", err)
	}

	chatBase := openaiTransport.NewChatModel(&openaiTransport.Config{
		APIKey:   cfg.LLM.Chat.APIKey,
		BaseURL:  cfg.LLM.Chat.BaseURL,
		Model:    cfg.LLM.Chat.Model,
		Provider: cfg.LLM.Chat.Provider,
		Logger:   logger,
	})
	chat := resilience.WrapChatModel(chatBase,
		resilience.NewBreaker("llm", breakerConfig(cfg.Resilience.LLM), logger),
		resilience.NewLimiter("llm", cfg.Resilience.LLMRate.RPS, cfg.Resilience.LLMRate.Burst),
	)

	embBase := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.LLM.Embedding.APIKey,
		BaseURL:    cfg.LLM.Embedding.BaseURL,
		Model:      cfg.LLM.Embedding.Model,
		Dimensions: cfg.LLM.Embedding.Dimensions,
		Provider:   cfg.LLM.Embedding.Provider,
		Logger:     logger,
	})
	embedder, err := buildEmbedder(cfg, embBase, a.store, logger)
	if err != nil {
		return err
	}
	var queryEmbedder domain.Embedder = embedder
	if cfg.LLM.Embedding.QueryPrefix != "" {
		queryEmbedder = domain.NewInstructionEmbedder(embedder, cfg.LLM.Embedding.QueryPrefix)
	}

	index := resilience.WrapIndex(
		searchrepo.New(a.store, queryEmbedder, searchrepo.Config{
			IndexName: cfg.Search.IndexName,
			KeyPrefix: cfg.Search.ChunkPrefix,
			SpaceKeys: cfg.Search.SpaceKeys,
		}),
		resilience.NewBreaker("index", breakerConfig(cfg.Resilience.Index), logger),
	)

	assembler := assemble.New(assemble.Config{
		BaseURL:          cfg.RAG.WikiBaseURL,
		MaxDocuments:     cfg.RAG.MaxContextDocs,
		MinContentLength: cfg.RAG.MinContentLength,
	}, prompts)

	steps := pipeline.DefaultSteps(pipeline.Dependencies{
		Classifier: classify.WithFallback(
			classify.NewAIClassifier(chat, prompts), classify.NewRuleBasedClassifier(), logger),
		Extractors: pipeline.Extractors{
			Title:    extraction.New(extraction.TitleSpec(), chat, prompts, logger),
			Content:  extraction.New(extraction.ContentSpec(), chat, prompts, logger),
			Location: extraction.New(extraction.LocationSpec(), chat, prompts, logger),
			Keyword:  extraction.NewKeywordExtractor(chat, prompts, logger),
		},
		Searcher: searchuc.NewSearcher(index, searchuc.Config{
			MaxTerms:           cfg.Search.MaxTerms,
			ResultsPerStrategy: cfg.Search.ResultsPerStrategy,
		}, logger),
		Fusion: searchuc.NewFusion(cfg.RAGProperties().RRF),
		Permission: permissionuc.New(
			permissionrepo.NewOracle(a.store, cfg.Permission.RulePrefix),
			permissionuc.Config{AllowAnonymous: cfg.Permission.AllowAnonymous},
			logger,
		),
		Reranker:  rerank.New(embedder, rerank.Config{TopN: cfg.RAG.RerankTopN}, logger),
		Assembler: assembler,
	})

	a.pipeline = pipeline.New(steps, assembler, chat, pipeline.Config{
		Timeout:           time.Duration(cfg.Pipeline.TimeoutSec) * time.Second,
		AnswerTemperature: cfg.LLM.Chat.Temperature,
		AnswerMaxTokens:   cfg.LLM.Chat.MaxTokens,
	}, logger)

	a.health = healthuc.New(a.store, map[string]healthuc.ProviderChecker{
		"llm":       chatBase,
		"embedding": embBase,
	})
	return nil
}

// buildEmbedder assembles the decorator chain:
// OpenAI -> Instrumented -> Resilience -> Cached.
// The cache sits outermost so hits skip the breaker and the rate limiter.
func buildEmbedder(
	cfg config.Config, base domain.Embedder, store *dbRedis.Store, logger *zap.Logger,
) (domain.Embedder, error) {
	var embedder domain.Embedder = embeddinguc.NewInstrumentedEmbedder(
		base, cfg.LLM.Embedding.Provider, cfg.LLM.Embedding.Model, cfg.LLM.Embedding.MaxBatchSize, logger,
	)

	embedder = resilience.WrapEmbedder(embedder,
		resilience.NewBreaker("embedding", breakerConfig(cfg.Resilience.Embedding), logger),
		resilience.NewLimiter("embedding", cfg.Resilience.EmbeddingRate.RPS, cfg.Resilience.EmbeddingRate.Burst),
	)

	cached, err := embcache.New(embedder, store, embcache.Config{
		KeyPrefix:  cfg.Database.KeyPrefix + "emb:",
		Model:      cfg.LLM.Embedding.Model,
		MemorySize: cfg.LLM.Embedding.CacheSize,
		TTL:        time.Duration(cfg.LLM.Embedding.CacheTTLSec) * time.Second,
	}, metrics.EmbeddingCacheTotal, logger)
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}
	return cached, nil
}

func breakerConfig(c config.BreakerConfig) resilience.BreakerConfig {
	return resilience.BreakerConfig{
		FailureThreshold: c.FailureThreshold,
		MaxRequests:      c.MaxRequests,
		Interval:         time.Duration(c.IntervalSec) * time.Second,
		Timeout:          time.Duration(c.TimeoutSec) * time.Second,
	}
}
