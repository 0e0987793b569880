package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Retrieval modes supported by the RAG engine.
const (
	RetrievalSemantic = "semantic"
	RetrievalHybrid   = "hybrid"
)

// Config holds bot configuration read from environment variables.
type Config struct {
	TelegramAPIBase string
	PollTimeout     int
	SleepSeconds    int

	OpenAIAPIKey        string
	OpenAIBaseURL       string
	Model               string
	QueryTransformModel string
	EmbeddingModel      string
	RequestTimeout      int

	SystemPrompt         string
	QueryTransformPrompt string

	MaxHistoryTurns int
	ShowSources     bool

	AgentMode         bool
	AgentSystemPrompt string
	AgentMaxSteps     int
	CBRAPIBase        string

	DataDir        string
	PromptsDir     string
	IndexDBPath    string
	RetrievalMode  string
	RetrieverK     int
	BM25K          int
	SemanticWeight float64
	BM25Weight     float64
}

// Load reads bot configuration from environment variables and validates it.
func Load() (Config, error) {
	telegramToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	if telegramToken == "" {
		return Config{}, fmt.Errorf("TELEGRAM_BOT_TOKEN is required in environment")
	}
	openaiKey := os.Getenv("OPENAI_API_KEY")
	if openaiKey == "" {
		return Config{}, fmt.Errorf("OPENAI_API_KEY is required in environment")
	}

	cfg := Config{
		TelegramAPIBase: fmt.Sprintf("https://api.telegram.org/bot%s", telegramToken),
		PollTimeout:     envIntOrDefault("TG_TIMEOUT", 30),
		SleepSeconds:    envIntOrDefault("TG_SLEEP_SECONDS", 1),

		OpenAIAPIKey:        openaiKey,
		OpenAIBaseURL:       envOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		Model:               envOrDefault("MODEL", "gpt-4o-mini"),
		QueryTransformModel: envOrDefault("MODEL_QUERY_TRANSFORM", "gpt-4o"),
		EmbeddingModel:      envOrDefault("EMBEDDING_MODEL", "text-embedding-3-large"),
		RequestTimeout:      envIntOrDefault("OPENAI_TIMEOUT_SECONDS", 120),

		MaxHistoryTurns: envIntOrDefault("MAX_HISTORY_MESSAGES", 10),
		ShowSources:     envBoolOrDefault("SHOW_SOURCES", false),

		AgentMode:     envBoolOrDefault("AGENT_MODE", false),
		AgentMaxSteps: envIntOrDefault("AGENT_MAX_STEPS", 8),
		CBRAPIBase:    envOrDefault("CBR_API_BASE", "https://www.cbr-xml-daily.ru"),

		DataDir:        envOrDefault("DATA_DIR", "data"),
		PromptsDir:     envOrDefault("PROMPTS_DIR", "prompts"),
		IndexDBPath:    envOrDefault("INDEX_DB_PATH", "state/index.db"),
		RetrievalMode:  envOrDefault("RETRIEVAL_MODE", RetrievalSemantic),
		RetrieverK:     envIntOrDefault("RETRIEVER_K", 3),
		BM25K:          envIntOrDefault("BM25_RETRIEVER_K", 10),
		SemanticWeight: envFloatOrDefault("ENSEMBLE_SEMANTIC_WEIGHT", 0.5),
		BM25Weight:     envFloatOrDefault("ENSEMBLE_BM25_WEIGHT", 0.5),
	}

	if cfg.MaxHistoryTurns < 1 {
		return Config{}, fmt.Errorf("MAX_HISTORY_MESSAGES must be >= 1, got %d", cfg.MaxHistoryTurns)
	}
	if cfg.RetrieverK < 1 {
		return Config{}, fmt.Errorf("RETRIEVER_K must be >= 1, got %d", cfg.RetrieverK)
	}
	if cfg.BM25K < 1 {
		return Config{}, fmt.Errorf("BM25_RETRIEVER_K must be >= 1, got %d", cfg.BM25K)
	}
	if cfg.RetrievalMode != RetrievalSemantic && cfg.RetrievalMode != RetrievalHybrid {
		return Config{}, fmt.Errorf("RETRIEVAL_MODE must be %q or %q, got %q",
			RetrievalSemantic, RetrievalHybrid, cfg.RetrievalMode)
	}

	var err error
	cfg.SystemPrompt, err = loadPrompt(
		cfg.PromptsDir,
		envOrDefault("CONVERSATION_SYSTEM_PROMPT_FILE", "conversation_system.txt"),
		"SYSTEM_PROMPT",
	)
	if err != nil {
		return Config{}, err
	}
	cfg.QueryTransformPrompt, err = loadPrompt(
		cfg.PromptsDir,
		envOrDefault("QUERY_TRANSFORM_PROMPT_FILE", "query_transform.txt"),
		"QUERY_TRANSFORM_PROMPT",
	)
	if err != nil {
		return Config{}, err
	}
	if cfg.AgentMode {
		if cfg.AgentMaxSteps < 1 {
			return Config{}, fmt.Errorf("AGENT_MAX_STEPS must be >= 1, got %d", cfg.AgentMaxSteps)
		}
		cfg.AgentSystemPrompt, err = loadPrompt(
			cfg.PromptsDir,
			envOrDefault("AGENT_SYSTEM_PROMPT_FILE", "agent_system.txt"),
			"AGENT_SYSTEM_PROMPT",
		)
		if err != nil {
			return Config{}, err
		}
	}

	return cfg, nil
}

// loadPrompt resolves a prompt text: the env var wins when set, otherwise
// the named file under promptsDir is read.
func loadPrompt(promptsDir, filename, envVar string) (string, error) {
	if v := os.Getenv(envVar); v != "" {
		return v, nil
	}
	path := filepath.Join(promptsDir, filename)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("prompt file not found: %s (set %s to override)", path, envVar)
	}
	return strings.TrimSpace(string(data)), nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envBoolOrDefault(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envFloatOrDefault(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
