package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/stupiduntilnot/ragbot/internal/agent"
	"github.com/stupiduntilnot/ragbot/internal/bot"
	"github.com/stupiduntilnot/ragbot/internal/config"
	"github.com/stupiduntilnot/ragbot/internal/conversation"
	"github.com/stupiduntilnot/ragbot/internal/index"
	"github.com/stupiduntilnot/ragbot/internal/llm"
	"github.com/stupiduntilnot/ragbot/internal/rag"
	"github.com/stupiduntilnot/ragbot/internal/telegram"
	toolpkg "github.com/stupiduntilnot/ragbot/internal/tool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[bot] %v", err)
	}

	store, err := index.OpenStore(cfg.IndexDBPath)
	if err != nil {
		log.Fatalf("[bot] %v", err)
	}
	defer store.Close()

	client := llm.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.EmbeddingModel,
		time.Duration(cfg.RequestTimeout)*time.Second)

	engine := rag.NewEngine(client, client, rag.Options{
		Model:                cfg.Model,
		QueryTransformModel:  cfg.QueryTransformModel,
		AnswerPrompt:         cfg.SystemPrompt,
		QueryTransformPrompt: cfg.QueryTransformPrompt,
		RetrievalMode:        cfg.RetrievalMode,
		RetrieverK:           cfg.RetrieverK,
		BM25K:                cfg.BM25K,
		SemanticWeight:       cfg.SemanticWeight,
		BM25Weight:           cfg.BM25Weight,
	})

	// Reload the persisted index so a restart does not require /index.
	chunks, err := store.LoadAll()
	if err != nil {
		log.Fatalf("[bot] failed to load index: %v", err)
	}
	if len(chunks) > 0 {
		engine.SetChunks(chunks)
		log.Printf("[bot] loaded %d indexed documents from %s", len(chunks), cfg.IndexDBPath)
	} else {
		log.Printf("[bot] index is empty, use /index to build it")
	}

	var answerer bot.Answerer = engine
	if cfg.AgentMode {
		registry := toolpkg.NewRegistry()
		for _, t := range []toolpkg.Tool{
			toolpkg.NewRAGSearch(engine),
			toolpkg.NewLoanPayment(),
			toolpkg.NewDepositInterest(),
			toolpkg.NewPercentage(),
			toolpkg.NewExchangeRate(cfg.CBRAPIBase, time.Duration(cfg.RequestTimeout)*time.Second),
		} {
			if err := registry.Register(t); err != nil {
				log.Fatalf("[bot] failed to register tool: %v", err)
			}
		}
		answerer = agent.New(client, registry, agent.Options{
			Model:        cfg.Model,
			SystemPrompt: cfg.AgentSystemPrompt,
			MaxSteps:     cfg.AgentMaxSteps,
		})
	}

	conversations, err := conversation.NewStore(cfg.SystemPrompt, cfg.MaxHistoryTurns)
	if err != nil {
		log.Fatalf("[bot] %v", err)
	}
	indexer := index.NewIndexer(cfg.DataDir, client, store)
	tg := telegram.NewClient(cfg.TelegramAPIBase, time.Duration(cfg.PollTimeout+30)*time.Second)

	b := bot.New(tg, conversations, answerer, engine, indexer, cfg.ShowSources, cfg.PollTimeout, cfg.SleepSeconds)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("[bot] starting: model=%s retrieval=%s agent_mode=%t show_sources=%t history_cap=%d data_dir=%s",
		cfg.Model, cfg.RetrievalMode, cfg.AgentMode, cfg.ShowSources, cfg.MaxHistoryTurns, cfg.DataDir)

	if err := b.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("[bot] %v", err)
	}
	log.Printf("[bot] shutdown complete")
}
