package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing database addrs")
	}
	if !strings.Contains(err.Error(), "database.addrs is required") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_JoinsErrors(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 70000
	cfg.Database.Addrs = nil
	cfg.RAG.Chunking.Overlap = cfg.RAG.Chunking.Size

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	for _, want := range []string{"http.port", "database.addrs", "rag.chunking.overlap"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q missing %q", msg, want)
		}
	}
}

func TestValidate_NegativeRateLimit(t *testing.T) {
	cfg := validConfig()
	cfg.Resilience.LLMRate.RPS = -1

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative rps")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()

	if cfg.Database.KeyPrefix != "okchat:" {
		t.Errorf("key prefix = %q", cfg.Database.KeyPrefix)
	}
	if cfg.Search.ChunkPrefix != "okchat:chunk:" {
		t.Errorf("chunk prefix = %q", cfg.Search.ChunkPrefix)
	}
	if cfg.Permission.RulePrefix != "okchat:perm:" {
		t.Errorf("rule prefix = %q", cfg.Permission.RulePrefix)
	}
	if cfg.RAG.RRFK != 60 || cfg.RAG.PathWeight != 3.0 {
		t.Errorf("rrf defaults = k %v path %v", cfg.RAG.RRFK, cfg.RAG.PathWeight)
	}
	if cfg.Resilience.LLM.FailureThreshold != 5 || cfg.Resilience.Index.TimeoutSec != 30 {
		t.Errorf("breaker defaults = %+v", cfg.Resilience.LLM)
	}
	if cfg.Pipeline.TimeoutSec != 60 {
		t.Errorf("pipeline timeout = %d", cfg.Pipeline.TimeoutSec)
	}
}

func TestApplyDefaults_EmbeddingInheritsChatEndpoint(t *testing.T) {
	cfg := Config{
		LLM: LLMConfig{Chat: ChatConfig{ProviderConfig: ProviderConfig{
			Provider: "ollama",
			APIKey:   "k",
			BaseURL:  "http://localhost:11434/v1",
		}}},
	}
	cfg.ApplyDefaults()

	e := cfg.LLM.Embedding
	if e.Provider != "ollama" || e.APIKey != "k" || e.BaseURL != "http://localhost:11434/v1" {
		t.Errorf("embedding = %+v", e.ProviderConfig)
	}
}

func TestParse(t *testing.T) {
	t.Setenv("OKCHAT_TEST_KEY", "secret")

	cfg, err := Parse([]byte(`
http:
  port: 9090
database:
  addrs: ["${OKCHAT_TEST_ADDR:-redis:6379}"]
llm:
  chat:
    api_key: ${OKCHAT_TEST_KEY}
    model: gpt-4o
rag:
  title_weight: 2.0
permission:
  allow_anonymous: true
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("port = %d", cfg.HTTP.Port)
	}
	if len(cfg.Database.Addrs) != 1 || cfg.Database.Addrs[0] != "redis:6379" {
		t.Errorf("addrs = %v", cfg.Database.Addrs)
	}
	if cfg.LLM.Chat.APIKey != "secret" || cfg.LLM.Chat.Model != "gpt-4o" {
		t.Errorf("chat = %+v", cfg.LLM.Chat)
	}
	if got := cfg.RAGProperties().RRF.TitleWeight; got != 2.0 {
		t.Errorf("title weight = %v", got)
	}
	if !cfg.Permission.AllowAnonymous {
		t.Error("allow_anonymous should be true")
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := Parse([]byte("http:\n  port: 8080\n")); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("OKCHAT_SET", "v")

	got := string(expandEnvVars([]byte("a=${OKCHAT_SET} b=${OKCHAT_UNSET:-d} c=${OKCHAT_UNSET}")))
	if got != "a=v b=d c=" {
		t.Errorf("got %q", got)
	}
}
