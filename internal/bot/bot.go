package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/stupiduntilnot/ragbot/internal/conversation"
	"github.com/stupiduntilnot/ragbot/internal/index"
	"github.com/stupiduntilnot/ragbot/internal/messenger"
	"github.com/stupiduntilnot/ragbot/internal/rag"
)

// User-facing texts.
const (
	greetingText = "Привет! Я RAG-ассистент банка.\n\n" +
		"Я могу:\n" +
		"• Отвечать на вопросы по документам\n" +
		"• Помогать с информацией о кредитах и вкладах\n" +
		"• Поддерживать диалог с учетом контекста\n\n" +
		"Используйте /help для просмотра всех команд."

	helpText = "Доступные команды:\n" +
		"/start — начать новый диалог (сбросить историю)\n" +
		"/clear — сбросить историю диалога\n" +
		"/help — показать эту справку\n" +
		"/index — переиндексировать документы\n" +
		"/index_status — проверить статус индексации\n\n" +
		"Просто напишите вопрос по документам о кредитах и вкладах."

	clearedText       = "История диалога сброшена."
	textOnlyText      = "Извините, я работаю только с текстовыми сообщениями."
	indexStartedText  = "🚀 Запускаю переиндексацию в фоне. Сообщу, когда закончу."
	indexBusyText     = "🔄 Индексация уже выполняется, подождите завершения..."
	indexEmptyText    = "⚠️ Не найдено документов для индексации"
	notIndexedText    = "⚠️ Векторное хранилище не инициализировано. Пожалуйста, подождите или используйте /index для индексации."
	notInitializedTxt = "⚠️ Векторное хранилище не инициализировано"
	genericErrorText  = "Произошла ошибка при обработке вашего сообщения. " +
		"Попробуйте еще раз или используйте /start для начала нового диалога."
)

// Answerer produces a reply for a question given the prior dialogue, along
// with the document chunks the reply is attributed to. Implemented by the
// RAG engine and by the tool-calling agent.
type Answerer interface {
	Answer(ctx context.Context, history []conversation.Turn, question string) (string, []index.Chunk, error)
}

// Engine is the index-management surface the bot needs.
type Engine interface {
	SetChunks(chunks []index.Chunk)
	Ready() bool
	ChunkCount() int
}

// Reindexer rebuilds the document index.
type Reindexer interface {
	ReindexAll(ctx context.Context) ([]index.Chunk, error)
}

// Bot wires the messaging adapter, the conversation store and the
// answering backend together.
type Bot struct {
	messenger   messenger.Messenger
	store       *conversation.Store
	answerer    Answerer
	engine      Engine
	indexer     Reindexer
	showSources bool
	pollTimeout int
	sleep       time.Duration

	// indexing makes /index single-flight across chats.
	indexing sync.Mutex
}

// New creates a bot.
func New(m messenger.Messenger, store *conversation.Store, answerer Answerer, engine Engine, indexer Reindexer, showSources bool, pollTimeout, sleepSeconds int) *Bot {
	return &Bot{
		messenger:   m,
		store:       store,
		answerer:    answerer,
		engine:      engine,
		indexer:     indexer,
		showSources: showSources,
		pollTimeout: pollTimeout,
		sleep:       time.Duration(sleepSeconds) * time.Second,
	}
}

// handleMessage processes one inbound text message to completion. It is
// called from the per-chat dispatch queue, so for a given chat messages are
// handled strictly one at a time.
func (b *Bot) handleMessage(ctx context.Context, chatID int64, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if strings.HasPrefix(text, "/") {
		if b.handleCommand(ctx, chatID, text) {
			return
		}
	}
	b.handleQuestion(ctx, chatID, text)
}

// handleCommand returns false for unknown commands so they fall through to
// the question handler.
func (b *Bot) handleCommand(ctx context.Context, chatID int64, text string) bool {
	command := strings.ToLower(strings.Fields(text)[0])
	switch command {
	case "/start":
		log.Printf("[bot] chat %d started the bot", chatID)
		b.store.Clear(chatID)
		b.send(chatID, greetingText)
	case "/help":
		b.send(chatID, helpText)
	case "/clear":
		log.Printf("[bot] chat %d cleared history", chatID)
		b.store.Clear(chatID)
		b.send(chatID, clearedText)
	case "/index":
		b.handleIndex(ctx, chatID)
	case "/index_status":
		b.handleIndexStatus(chatID)
	default:
		return false
	}
	return true
}

// handleIndex kicks off reindexing in the background so the chat's queue is
// not blocked for the duration; a second /index while one is running gets
// the busy notice instead of a second embed pass.
func (b *Bot) handleIndex(ctx context.Context, chatID int64) {
	log.Printf("[bot] chat %d requested reindexing", chatID)
	if !b.indexing.TryLock() {
		b.send(chatID, indexBusyText)
		return
	}
	b.send(chatID, indexStartedText)

	go func() {
		defer b.indexing.Unlock()

		chunks, err := b.indexer.ReindexAll(ctx)
		if err != nil {
			log.Printf("[bot] reindexing failed: %v", err)
			b.send(chatID, fmt.Sprintf("❌ Ошибка при переиндексации: %v", err))
			return
		}
		if len(chunks) == 0 {
			b.send(chatID, indexEmptyText)
			return
		}
		b.engine.SetChunks(chunks)
		b.send(chatID, fmt.Sprintf("✅ Переиндексация завершена!\nПроиндексировано документов: %d", len(chunks)))
	}()
}

func (b *Bot) handleIndexStatus(chatID int64) {
	if !b.engine.Ready() {
		b.send(chatID, notInitializedTxt)
		return
	}
	b.send(chatID, fmt.Sprintf("📊 Статус индексации:\nСтатус: initialized\nКоличество документов: %d", b.engine.ChunkCount()))
}

// handleQuestion runs the RAG chain for a plain text question. History is
// mutated only after the model call succeeds, so a failed call leaves the
// chat's context intact and the user can simply retry.
func (b *Bot) handleQuestion(ctx context.Context, chatID int64, text string) {
	log.Printf("[bot] message from %d: %s", chatID, truncate(text, 100))

	if err := b.messenger.SendChatAction(chatID, "typing"); err != nil {
		log.Printf("[bot] failed to send typing action to %d: %v", chatID, err)
	}

	snapshot := b.store.GetOrCreate(chatID)
	history := snapshot[1:] // everything after the system turn

	answer, sources, err := b.answerer.Answer(ctx, history, text)
	switch {
	case errors.Is(err, rag.ErrNotIndexed):
		log.Printf("[bot] vector store not initialized for chat %d", chatID)
		b.send(chatID, notIndexedText)
		return
	case err != nil:
		log.Printf("[bot] error handling message for chat %d: %v", chatID, err)
		b.send(chatID, genericErrorText)
		return
	}

	// History keeps the bare answer; the sources line is display only.
	b.store.Append(chatID, conversation.RoleUser, text)
	b.store.Append(chatID, conversation.RoleAssistant, answer)

	reply := answer
	if b.showSources {
		if line := rag.FormatSources(sources); line != "" {
			reply = answer + "\n\n" + line
		}
	}
	b.send(chatID, reply)
}

func (b *Bot) send(chatID int64, text string) {
	if err := b.messenger.SendMessage(chatID, text); err != nil {
		log.Printf("[bot] failed to send message to %d: %v", chatID, err)
	}
}

func truncate(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}
