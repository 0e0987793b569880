package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/stupiduntilnot/ragbot/internal/conversation"
	"github.com/stupiduntilnot/ragbot/internal/index"
	"github.com/stupiduntilnot/ragbot/internal/llm"
	"github.com/stupiduntilnot/ragbot/internal/tool"
)

// reasonActTemperature keeps the loop's decisions stable while leaving
// answers natural.
const reasonActTemperature = 0.7

const emptyAnswerText = "Извините, не смог сформировать ответ. Попробуйте переформулировать вопрос."

// Options configures the agent.
type Options struct {
	Model        string
	SystemPrompt string
	MaxSteps     int
}

// Agent answers questions with a reason-and-act loop: the model decides
// which bank tools to call, reads their results, and produces the final
// reply. Sources are collected from document-search calls made while
// answering the current question.
type Agent struct {
	caller   llm.ToolCaller
	registry *tool.Registry
	runner   *tool.Runner
	opts     Options
}

// New creates an agent over the registered tools.
func New(caller llm.ToolCaller, registry *tool.Registry, opts Options) *Agent {
	if opts.MaxSteps < 1 {
		opts.MaxSteps = 8
	}
	return &Agent{
		caller:   caller,
		registry: registry,
		runner:   tool.NewRunner(registry),
		opts:     opts,
	}
}

// Answer runs the loop for one question. history is the prior dialogue
// without the system turn; the question is passed separately so a failed
// run leaves the caller's history untouched.
func (a *Agent) Answer(ctx context.Context, history []conversation.Turn, question string) (string, []index.Chunk, error) {
	messages := make([]llm.AgentMessage, 0, len(history)+2)
	messages = append(messages, llm.AgentMessage{Role: conversation.RoleSystem, Content: a.opts.SystemPrompt})
	for _, t := range history {
		messages = append(messages, llm.AgentMessage{Role: t.Role, Content: t.Content})
	}
	messages = append(messages, llm.AgentMessage{Role: conversation.RoleUser, Content: question})

	specs := a.registry.Specs()
	var sources []index.Chunk

	for step := 0; step < a.opts.MaxSteps; step++ {
		resp, err := a.caller.ToolChatCompletion(ctx, llm.ToolChatRequest{
			Model:       a.opts.Model,
			Temperature: reasonActTemperature,
			Messages:    messages,
			Tools:       specs,
		})
		if err != nil {
			return "", nil, err
		}

		if len(resp.ToolCalls) == 0 {
			answer := strings.TrimSpace(resp.Content)
			if answer == "" {
				log.Printf("[agent] model returned empty final answer")
				answer = emptyAnswerText
			}
			return answer, sources, nil
		}

		messages = append(messages, llm.AgentMessage{
			Role:      conversation.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})
		for _, tc := range resp.ToolCalls {
			log.Printf("[agent] tool call: %s %s", tc.Name, tc.Arguments)
			out := a.runner.RunOne(ctx, tool.Call{Name: tc.Name, Arguments: json.RawMessage(tc.Arguments)})
			if tc.Name == "rag_search" {
				sources = append(sources, parseSources(out)...)
			}
			messages = append(messages, llm.AgentMessage{
				Role:       llm.RoleTool,
				Content:    out,
				ToolCallID: tc.ID,
			})
		}
	}

	return "", nil, fmt.Errorf("agent gave no final answer within %d steps", a.opts.MaxSteps)
}

// parseSources extracts document metadata from a rag_search result so the
// bot can attribute the final reply.
func parseSources(out string) []index.Chunk {
	var result struct {
		Sources []tool.SourceRecord `json:"sources"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		log.Printf("[agent] failed to parse rag_search result: %v", err)
		return nil
	}
	chunks := make([]index.Chunk, 0, len(result.Sources))
	for _, s := range result.Sources {
		chunks = append(chunks, index.Chunk{Source: s.Source, Page: s.Page, Text: s.PageContent})
	}
	return chunks
}
