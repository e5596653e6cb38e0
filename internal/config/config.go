// Package config loads per-environment YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/belljun3395/okchat/internal/domain"
)

// Config holds the okchat configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	LLM        LLMConfig        `yaml:"llm"`
	RAG        RAGConfig        `yaml:"rag"`
	Search     SearchConfig     `yaml:"search"`
	Permission PermissionConfig `yaml:"permission"`
	Resilience ResilienceConfig `yaml:"resilience"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Auth       AuthConfig       `yaml:"auth"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings. Empty disables auth.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds Redis connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	KeyPrefix        string   `yaml:"key_prefix"`
}

// LLMConfig holds the chat and embedding providers.
type LLMConfig struct {
	Chat      ChatConfig      `yaml:"chat"`
	Embedding EmbeddingConfig `yaml:"embedding"`
}

// ProviderConfig holds OpenAI-compatible endpoint settings.
type ProviderConfig struct {
	Provider string `yaml:"provider"` // metrics label, e.g. openai, azure, ollama
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
}

// ChatConfig holds chat model settings.
type ChatConfig struct {
	ProviderConfig `yaml:",inline"`
	Temperature    float32 `yaml:"temperature"`
	MaxTokens      int     `yaml:"max_tokens"`
}

// EmbeddingConfig holds embedding model and cache settings.
type EmbeddingConfig struct {
	ProviderConfig `yaml:",inline"`
	Dimensions     int    `yaml:"dimensions"`
	MaxBatchSize   int    `yaml:"max_batch_size"`
	CacheSize      int    `yaml:"cache_size"`    // in-process LRU entries
	CacheTTLSec    int    `yaml:"cache_ttl_sec"` // Redis TTL, 0 = no expiry
	QueryPrefix    string `yaml:"query_instruction"`
}

// RAGConfig holds rank fusion, re-rank and context assembly parameters.
type RAGConfig struct {
	RRFK             float64        `yaml:"rrf_k"`
	KeywordWeight    float64        `yaml:"keyword_weight"`
	TitleWeight      float64        `yaml:"title_weight"`
	ContentWeight    float64        `yaml:"content_weight"`
	PathWeight       float64        `yaml:"path_weight"`
	DateBoostFactor  float64        `yaml:"date_boost_factor"`
	PathBoostFactor  float64        `yaml:"path_boost_factor"`
	Chunking         ChunkingConfig `yaml:"chunking"`
	RerankTopN       int            `yaml:"rerank_top_n"`
	MaxContextDocs   int            `yaml:"max_context_docs"`
	MinContentLength int            `yaml:"min_content_length"`
	WikiBaseURL      string         `yaml:"wiki_base_url"`
}

// ChunkingConfig mirrors the ingestion chunking parameters.
type ChunkingConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

// SearchConfig holds index and per-strategy settings.
type SearchConfig struct {
	IndexName          string   `yaml:"index_name"`
	ChunkPrefix        string   `yaml:"chunk_prefix"`
	SpaceKeys          []string `yaml:"space_keys"`
	MaxTerms           int      `yaml:"max_terms"`
	ResultsPerStrategy int      `yaml:"results_per_strategy"`
	HNSWM              int      `yaml:"hnsw_m"`
	HNSWEFConstruct    int      `yaml:"hnsw_ef_construction"`
}

// PermissionConfig holds access control settings.
type PermissionConfig struct {
	AllowAnonymous bool   `yaml:"allow_anonymous"`
	RulePrefix     string `yaml:"rule_prefix"`
}

// BreakerConfig holds one circuit breaker.
type BreakerConfig struct {
	FailureThreshold uint32 `yaml:"failure_threshold"`
	MaxRequests      uint32 `yaml:"max_requests"`
	IntervalSec      int    `yaml:"interval_sec"`
	TimeoutSec       int    `yaml:"timeout_sec"`
}

// RateLimitConfig holds one token bucket. RPS 0 disables limiting.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// ResilienceConfig holds breakers and rate limits for outbound calls.
type ResilienceConfig struct {
	Index         BreakerConfig   `yaml:"index_breaker"`
	LLM           BreakerConfig   `yaml:"llm_breaker"`
	Embedding     BreakerConfig   `yaml:"embedding_breaker"`
	LLMRate       RateLimitConfig `yaml:"llm_rate_limit"`
	EmbeddingRate RateLimitConfig `yaml:"embedding_rate_limit"`
}

// PipelineConfig holds request-level settings.
type PipelineConfig struct {
	TimeoutSec int `yaml:"timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes YAML, expands ${VAR} references, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	setInt(&c.HTTP.ReadTimeoutSec, 10)
	setInt(&c.HTTP.WriteTimeoutSec, 120)
	setInt(&c.HTTP.ShutdownSec, 10)

	setInt(&c.Database.ReadinessTimeout, 10)
	setString(&c.Database.KeyPrefix, "okchat:")

	setString(&c.LLM.Chat.Provider, "openai")
	setString(&c.LLM.Chat.Model, "gpt-4o-mini")
	setInt(&c.LLM.Chat.MaxTokens, 1024)
	if c.LLM.Chat.Temperature <= 0 {
		c.LLM.Chat.Temperature = 0.3
	}
	setString(&c.LLM.Embedding.Provider, c.LLM.Chat.Provider)
	setString(&c.LLM.Embedding.Model, "text-embedding-3-small")
	setInt(&c.LLM.Embedding.Dimensions, 1536)
	setInt(&c.LLM.Embedding.MaxBatchSize, 256)
	setInt(&c.LLM.Embedding.CacheSize, 1024)
	setString(&c.LLM.Embedding.APIKey, c.LLM.Chat.APIKey)
	setString(&c.LLM.Embedding.BaseURL, c.LLM.Chat.BaseURL)

	def := domain.DefaultRAGProperties()
	setFloat(&c.RAG.RRFK, def.RRF.K)
	setFloat(&c.RAG.KeywordWeight, def.RRF.KeywordWeight)
	setFloat(&c.RAG.TitleWeight, def.RRF.TitleWeight)
	setFloat(&c.RAG.ContentWeight, def.RRF.ContentWeight)
	setFloat(&c.RAG.PathWeight, def.RRF.PathWeight)
	setFloat(&c.RAG.DateBoostFactor, def.RRF.DateBoostFactor)
	setFloat(&c.RAG.PathBoostFactor, def.RRF.PathBoostFactor)
	setInt(&c.RAG.Chunking.Size, def.Chunking.Size)
	setInt(&c.RAG.Chunking.Overlap, def.Chunking.Overlap)
	setInt(&c.RAG.RerankTopN, 10)
	setInt(&c.RAG.MaxContextDocs, 20)
	setInt(&c.RAG.MinContentLength, 100)

	setString(&c.Search.IndexName, "okchat-chunks")
	setString(&c.Search.ChunkPrefix, c.Database.KeyPrefix+"chunk:")
	setInt(&c.Search.MaxTerms, 5)
	setInt(&c.Search.ResultsPerStrategy, 20)
	setInt(&c.Search.HNSWM, 16)
	setInt(&c.Search.HNSWEFConstruct, 200)

	setString(&c.Permission.RulePrefix, c.Database.KeyPrefix+"perm:")

	for _, b := range []*BreakerConfig{&c.Resilience.Index, &c.Resilience.LLM, &c.Resilience.Embedding} {
		if b.FailureThreshold == 0 {
			b.FailureThreshold = 5
		}
		if b.MaxRequests == 0 {
			b.MaxRequests = 1
		}
		setInt(&b.IntervalSec, 60)
		setInt(&b.TimeoutSec, 30)
	}

	setInt(&c.Pipeline.TimeoutSec, 60)
}

// RAGProperties converts the rag section to domain properties.
func (c *Config) RAGProperties() domain.RAGProperties {
	return domain.RAGProperties{
		RRF: domain.RRFProperties{
			K:               c.RAG.RRFK,
			KeywordWeight:   c.RAG.KeywordWeight,
			TitleWeight:     c.RAG.TitleWeight,
			ContentWeight:   c.RAG.ContentWeight,
			PathWeight:      c.RAG.PathWeight,
			DateBoostFactor: c.RAG.DateBoostFactor,
			PathBoostFactor: c.RAG.PathBoostFactor,
		},
		Chunking: domain.ChunkingProperties{Size: c.RAG.Chunking.Size, Overlap: c.RAG.Chunking.Overlap},
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	var errs []error
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port))
	}
	if len(c.Database.Addrs) == 0 {
		errs = append(errs, errors.New("database.addrs is required"))
	}
	if c.LLM.Embedding.Dimensions <= 0 {
		errs = append(errs, fmt.Errorf("llm.embedding.dimensions must be > 0, got %d", c.LLM.Embedding.Dimensions))
	}
	if err := c.RAGProperties().RRF.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("rag: %w", err))
	}
	if c.RAG.Chunking.Overlap >= c.RAG.Chunking.Size {
		errs = append(errs, fmt.Errorf("rag.chunking.overlap (%d) must be < size (%d)",
			c.RAG.Chunking.Overlap, c.RAG.Chunking.Size))
	}
	for name, r := range map[string]RateLimitConfig{
		"llm_rate_limit":       c.Resilience.LLMRate,
		"embedding_rate_limit": c.Resilience.EmbeddingRate,
	} {
		if r.RPS < 0 || r.Burst < 0 {
			errs = append(errs, fmt.Errorf("resilience.%s must not be negative", name))
		}
	}
	return errors.Join(errs...)
}

func setInt(v *int, def int) {
	if *v <= 0 {
		*v = def
	}
}

func setFloat(v *float64, def float64) {
	if *v == 0 {
		*v = def
	}
}

func setString(v *string, def string) {
	if *v == "" {
		*v = def
	}
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
