package rag

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/stupiduntilnot/ragbot/internal/conversation"
	"github.com/stupiduntilnot/ragbot/internal/index"
	"github.com/stupiduntilnot/ragbot/internal/llm"
)

// ErrNotIndexed is returned when answering is attempted before any
// documents have been indexed.
var ErrNotIndexed = errors.New("vector store is not initialized")

// Temperatures follow the original deployment: creative answering, more
// conservative query rewriting.
const (
	answerTemperature    = 0.9
	transformTemperature = 0.4
)

// Options configures the RAG engine.
type Options struct {
	Model                string
	QueryTransformModel  string
	AnswerPrompt         string // system prompt with a {context} slot
	QueryTransformPrompt string
	RetrievalMode        string
	RetrieverK           int
	BM25K                int
	SemanticWeight       float64
	BM25Weight           float64
}

// Engine answers questions over the indexed corpus with dialogue context.
// The chunk set is swappable at runtime (reindex command) and guarded for
// concurrent readers.
type Engine struct {
	provider llm.Provider
	embedder llm.Embedder
	opts     Options

	mu      sync.RWMutex
	chunks  []index.Chunk
	lexical map[string]index.Chunk
	bm25    *bm25Index
}

// NewEngine creates an engine with no chunks loaded.
func NewEngine(provider llm.Provider, embedder llm.Embedder, opts Options) *Engine {
	return &Engine{
		provider: provider,
		embedder: embedder,
		opts:     opts,
		lexical:  map[string]index.Chunk{},
	}
}

// SetChunks replaces the retrievable corpus, rebuilding the lexical and
// BM25 indexes.
func (e *Engine) SetChunks(chunks []index.Chunk) {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	bm25 := newBM25Index(texts)
	lexical := index.BuildLexicalIndex(chunks)

	e.mu.Lock()
	e.chunks = chunks
	e.lexical = lexical
	e.bm25 = bm25
	e.mu.Unlock()
}

// Ready reports whether any chunks are loaded.
func (e *Engine) Ready() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.chunks) > 0
}

// ChunkCount returns the size of the loaded corpus.
func (e *Engine) ChunkCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.chunks)
}

// Answer produces a reply for the user's question given the prior dialogue,
// along with the chunks the reply was grounded on (for source attribution).
// history is the past turns without the system turn; the question is NOT
// part of history, so a failed call leaves the caller's history untouched.
func (e *Engine) Answer(ctx context.Context, history []conversation.Turn, question string) (string, []index.Chunk, error) {
	question = strings.TrimSpace(question)

	// Exact lexical match against known Q&A pairs short-circuits the
	// whole chain.
	if question != "" {
		e.mu.RLock()
		hit, ok := e.lexical[index.NormalizeQuestion(question)]
		e.mu.RUnlock()
		if ok {
			log.Printf("[rag] lexical fallback used for query: %s", question)
			if hit.Answer != "" {
				return hit.Answer, nil, nil
			}
			return hit.Text, nil, nil
		}
	}

	if !e.Ready() {
		return "", nil, ErrNotIndexed
	}

	dialogue := make([]conversation.Turn, 0, len(history)+1)
	dialogue = append(dialogue, history...)
	dialogue = append(dialogue, conversation.Turn{Role: conversation.RoleUser, Content: question})

	searchQuery, err := e.transformQuery(ctx, dialogue)
	if err != nil {
		return "", nil, fmt.Errorf("query transformation failed: %w", err)
	}
	if searchQuery == "" {
		searchQuery = question
	}

	retrieved, err := e.retrieve(ctx, searchQuery)
	if err != nil {
		return "", nil, err
	}

	system := strings.ReplaceAll(e.opts.AnswerPrompt, "{context}", FormatChunks(retrieved))
	messages := make([]conversation.Turn, 0, 1+len(dialogue))
	messages = append(messages, conversation.Turn{Role: conversation.RoleSystem, Content: system})
	messages = append(messages, dialogue...)

	resp, err := e.provider.ChatCompletion(ctx, llm.ChatRequest{
		Model:       e.opts.Model,
		Temperature: answerTemperature,
		Messages:    messages,
	})
	if err != nil {
		return "", nil, err
	}
	return resp.Content, retrieved, nil
}

// Retrieve runs retrieval for a standalone query without the answering
// chain. Used by the agent's document-search tool.
func (e *Engine) Retrieve(ctx context.Context, query string) ([]index.Chunk, error) {
	if !e.Ready() {
		return nil, ErrNotIndexed
	}
	return e.retrieve(ctx, query)
}

// transformQuery rewrites the dialogue into a standalone retrieval query.
func (e *Engine) transformQuery(ctx context.Context, turns []conversation.Turn) (string, error) {
	messages := make([]conversation.Turn, 0, len(turns)+1)
	messages = append(messages, turns...)
	messages = append(messages, conversation.Turn{Role: conversation.RoleUser, Content: e.opts.QueryTransformPrompt})

	resp, err := e.provider.ChatCompletion(ctx, llm.ChatRequest{
		Model:       e.opts.QueryTransformModel,
		Temperature: transformTemperature,
		Messages:    messages,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Content), nil
}

func (e *Engine) retrieve(ctx context.Context, query string) ([]index.Chunk, error) {
	vectors, err := e.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	queryVec := vectors[0]

	e.mu.RLock()
	defer e.mu.RUnlock()

	semantic := semanticTopK(e.chunks, queryVec, e.opts.RetrieverK)

	var ranked []scored
	if e.opts.RetrievalMode == "hybrid" && e.bm25 != nil {
		lexical := e.bm25.topK(query, e.opts.BM25K)
		ranked = fuseRanked(
			[][]scored{semantic, lexical},
			[]float64{e.opts.SemanticWeight, e.opts.BM25Weight},
			e.opts.RetrieverK,
		)
	} else {
		ranked = semantic
	}

	out := make([]index.Chunk, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, e.chunks[r.chunk])
	}
	return out, nil
}

