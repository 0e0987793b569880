package llm

import (
	"context"

	"github.com/stupiduntilnot/ragbot/internal/conversation"
)

// CompletionResponse is the common response model for chat providers.
type CompletionResponse struct {
	Content      string
	InputTokens  int
	OutputTokens int
}

// ChatRequest is one chat completion call.
type ChatRequest struct {
	Model       string
	Temperature float64
	Messages    []conversation.Turn
}

// Provider is the chat model abstraction used by the bot and the RAG engine.
type Provider interface {
	ChatCompletion(ctx context.Context, req ChatRequest) (CompletionResponse, error)
}

// Embedder turns texts into embedding vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}
