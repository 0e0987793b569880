package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_BOT_TOKEN", "test-token")
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("SYSTEM_PROMPT", "You are a bank assistant.")
	t.Setenv("QUERY_TRANSFORM_PROMPT", "Rewrite the question as a search query.")
}

func TestLoad_RequiresTelegramToken(t *testing.T) {
	setupEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	_, err := Load()
	if err == nil {
		t.Fatal("expected missing token error")
	}
	if !strings.Contains(err.Error(), "TELEGRAM_BOT_TOKEN") {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestLoad_RequiresOpenAIKey(t *testing.T) {
	setupEnv(t)
	t.Setenv("OPENAI_API_KEY", "")
	_, err := Load()
	if err == nil {
		t.Fatal("expected missing key error")
	}
	if !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	setupEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.TelegramAPIBase != "https://api.telegram.org/bottest-token" {
		t.Fatalf("unexpected api base: %s", cfg.TelegramAPIBase)
	}
	if cfg.MaxHistoryTurns != 10 {
		t.Fatalf("unexpected history cap: %d", cfg.MaxHistoryTurns)
	}
	if cfg.RetrieverK != 3 {
		t.Fatalf("unexpected retriever k: %d", cfg.RetrieverK)
	}
	if cfg.RetrievalMode != RetrievalSemantic {
		t.Fatalf("unexpected retrieval mode: %s", cfg.RetrievalMode)
	}
	if cfg.SystemPrompt != "You are a bank assistant." {
		t.Fatalf("unexpected system prompt: %s", cfg.SystemPrompt)
	}
}

func TestLoad_RejectsHistoryCapBelowOne(t *testing.T) {
	setupEnv(t)
	t.Setenv("MAX_HISTORY_MESSAGES", "0")
	_, err := Load()
	if err == nil {
		t.Fatal("expected cap validation error")
	}
	if !strings.Contains(err.Error(), "MAX_HISTORY_MESSAGES") {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestLoad_RejectsUnknownRetrievalMode(t *testing.T) {
	setupEnv(t)
	t.Setenv("RETRIEVAL_MODE", "reranker")
	_, err := Load()
	if err == nil {
		t.Fatal("expected retrieval mode error")
	}
	if !strings.Contains(err.Error(), "RETRIEVAL_MODE") {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestLoad_ReadsPromptFromFile(t *testing.T) {
	setupEnv(t)
	t.Setenv("SYSTEM_PROMPT", "")
	dir := t.TempDir()
	t.Setenv("PROMPTS_DIR", dir)
	if err := os.WriteFile(filepath.Join(dir, "conversation_system.txt"), []byte("file prompt\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.SystemPrompt != "file prompt" {
		t.Fatalf("unexpected prompt: %q", cfg.SystemPrompt)
	}
}

func TestLoad_MissingPromptFileFails(t *testing.T) {
	setupEnv(t)
	t.Setenv("SYSTEM_PROMPT", "")
	t.Setenv("PROMPTS_DIR", t.TempDir())
	_, err := Load()
	if err == nil {
		t.Fatal("expected missing prompt file error")
	}
	if !strings.Contains(err.Error(), "prompt file not found") {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestLoad_SourcesAndAgentDefaults(t *testing.T) {
	setupEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.ShowSources {
		t.Fatal("sources display must default to off")
	}
	if cfg.AgentMode {
		t.Fatal("agent mode must default to off")
	}
	if cfg.AgentMaxSteps != 8 {
		t.Fatalf("unexpected agent step cap: %d", cfg.AgentMaxSteps)
	}
	if cfg.AgentSystemPrompt != "" {
		t.Fatalf("agent prompt must not load when agent mode is off: %q", cfg.AgentSystemPrompt)
	}
	if cfg.CBRAPIBase != "https://www.cbr-xml-daily.ru" {
		t.Fatalf("unexpected CBR base: %s", cfg.CBRAPIBase)
	}
}

func TestLoad_ShowSourcesEnabled(t *testing.T) {
	setupEnv(t)
	t.Setenv("SHOW_SOURCES", "true")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !cfg.ShowSources {
		t.Fatal("SHOW_SOURCES=true must enable sources display")
	}
}

func TestLoad_AgentModeLoadsPrompt(t *testing.T) {
	setupEnv(t)
	t.Setenv("AGENT_MODE", "true")
	t.Setenv("AGENT_SYSTEM_PROMPT", "Ты — банковский агент.")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.AgentSystemPrompt != "Ты — банковский агент." {
		t.Fatalf("unexpected agent prompt: %q", cfg.AgentSystemPrompt)
	}
}

func TestLoad_AgentModeMissingPromptFails(t *testing.T) {
	setupEnv(t)
	t.Setenv("AGENT_MODE", "true")
	t.Setenv("PROMPTS_DIR", t.TempDir())
	_, err := Load()
	if err == nil {
		t.Fatal("expected missing agent prompt error")
	}
	if !strings.Contains(err.Error(), "agent_system.txt") {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestLoad_AgentModeRejectsStepCapBelowOne(t *testing.T) {
	setupEnv(t)
	t.Setenv("AGENT_MODE", "true")
	t.Setenv("AGENT_SYSTEM_PROMPT", "prompt")
	t.Setenv("AGENT_MAX_STEPS", "0")
	_, err := Load()
	if err == nil {
		t.Fatal("expected step cap validation error")
	}
	if !strings.Contains(err.Error(), "AGENT_MAX_STEPS") {
		t.Fatalf("unexpected err: %v", err)
	}
}
