package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stupiduntilnot/ragbot/internal/conversation"
)

func TestChatCompletion_SendsRolesAndParsesReply(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id":"cmpl-1","object":"chat.completion","model":"gpt-4o-mini",
			"choices":[{"index":0,"message":{"role":"assistant","content":"  ответ  "},"finish_reason":"stop"}],
			"usage":{"prompt_tokens":12,"completion_tokens":3,"total_tokens":15}
		}`)
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL, "text-embedding-3-large", 2*time.Second)
	resp, err := c.ChatCompletion(context.Background(), ChatRequest{
		Model:       "gpt-4o-mini",
		Temperature: 0.9,
		Messages: []conversation.Turn{
			{Role: conversation.RoleSystem, Content: "sys"},
			{Role: conversation.RoleUser, Content: "вопрос"},
			{Role: conversation.RoleAssistant, Content: "прошлый ответ"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "ответ", resp.Content)
	assert.Equal(t, 12, resp.InputTokens)
	assert.Equal(t, 3, resp.OutputTokens)

	msgs, ok := gotBody["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 3)
	first := msgs[0].(map[string]any)
	assert.Equal(t, "system", first["role"])
	assert.Equal(t, "gpt-4o-mini", gotBody["model"])
	assert.InDelta(t, 0.9, gotBody["temperature"], 0.001)
}

func TestChatCompletion_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"cmpl-2","object":"chat.completion","choices":[],"usage":{"prompt_tokens":5,"completion_tokens":0,"total_tokens":5}}`)
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL, "text-embedding-3-large", 2*time.Second)
	resp, err := c.ChatCompletion(context.Background(), ChatRequest{
		Model:    "gpt-4o-mini",
		Messages: []conversation.Turn{{Role: conversation.RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "(empty model response)", resp.Content)
	assert.Equal(t, 5, resp.InputTokens)
}

func TestChatCompletion_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL, "text-embedding-3-large", 2*time.Second)
	_, err := c.ChatCompletion(context.Background(), ChatRequest{
		Model:    "gpt-4o-mini",
		Messages: []conversation.Turn{{Role: conversation.RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat completion request failed")
}

func TestEmbed_OrdersVectorsByIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/embeddings") {
			http.NotFound(w, r)
			return
		}
		// Vectors deliberately out of order.
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"object":"list","model":"text-embedding-3-large",
			"data":[
				{"object":"embedding","index":1,"embedding":[0.3,0.4]},
				{"object":"embedding","index":0,"embedding":[0.1,0.2]}
			],
			"usage":{"prompt_tokens":8,"total_tokens":8}
		}`)
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL, "text-embedding-3-large", 2*time.Second)
	vectors, err := c.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float64{0.1, 0.2}, vectors[0])
	assert.Equal(t, []float64{0.3, 0.4}, vectors[1])
}

func TestEmbed_CountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"object":"list","data":[{"object":"embedding","index":0,"embedding":[0.1]}]}`)
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL, "text-embedding-3-large", 2*time.Second)
	_, err := c.Embed(context.Background(), []string{"a", "b"})
	require.Error(t, err)
}

func TestEmbed_NoInputs(t *testing.T) {
	c := NewClient("test-key", "http://127.0.0.1:1", "text-embedding-3-large", time.Second)
	vectors, err := c.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vectors)
}
