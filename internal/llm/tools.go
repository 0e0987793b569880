package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/shared"

	"github.com/stupiduntilnot/ragbot/internal/conversation"
	"github.com/stupiduntilnot/ragbot/internal/tool"
)

// RoleTool marks a tool-result message in an agent exchange.
const RoleTool = "tool"

// ToolCall is one function invocation requested by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// AgentMessage is one message in a tool-calling exchange. Assistant
// messages may carry ToolCalls; tool messages carry the ToolCallID they
// answer.
type AgentMessage struct {
	Role       string
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
}

// ToolChatRequest is one chat completion call with tools offered.
type ToolChatRequest struct {
	Model       string
	Temperature float64
	Messages    []AgentMessage
	Tools       []tool.Spec
}

// ToolChatResponse carries either a final text reply or the tool calls the
// model wants executed.
type ToolChatResponse struct {
	Content      string
	ToolCalls    []ToolCall
	InputTokens  int
	OutputTokens int
}

// ToolCaller is the chat model abstraction used by the agent loop.
type ToolCaller interface {
	ToolChatCompletion(ctx context.Context, req ToolChatRequest) (ToolChatResponse, error)
}

// ToolChatCompletion sends a tool-enabled chat completion request.
func (c *Client) ToolChatCompletion(ctx context.Context, req ToolChatRequest) (ToolChatResponse, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch {
		case m.Role == conversation.RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		case m.Role == RoleTool:
			messages = append(messages, openai.ToolMessage(m.Content, m.ToolCallID))
		case m.Role == conversation.RoleAssistant && len(m.ToolCalls) > 0:
			assistant := openai.ChatCompletionAssistantMessageParam{}
			if m.Content != "" {
				assistant.Content = openai.ChatCompletionAssistantMessageParamContentUnion{
					OfString: openai.String(m.Content),
				}
			}
			for _, tc := range m.ToolCalls {
				assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
					OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
						ID: tc.ID,
						Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
							Name:      tc.Name,
							Arguments: tc.Arguments,
						},
					},
				})
			}
			messages = append(messages, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})
		case m.Role == conversation.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: messages,
		Tools:    buildToolDefinitions(req.Tools),
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}

	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return ToolChatResponse{}, fmt.Errorf("chat completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return ToolChatResponse{}, fmt.Errorf("chat completion response has no choices")
	}

	msg := resp.Choices[0].Message
	out := ToolChatResponse{
		Content:      msg.Content,
		InputTokens:  int(resp.Usage.PromptTokens),
		OutputTokens: int(resp.Usage.CompletionTokens),
	}
	for _, tc := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return out, nil
}

// buildToolDefinitions converts tool specs into the function-tool JSON
// schema the chat completions API expects.
func buildToolDefinitions(specs []tool.Spec) []openai.ChatCompletionToolUnionParam {
	defs := make([]openai.ChatCompletionToolUnionParam, 0, len(specs))
	for _, spec := range specs {
		properties := map[string]any{}
		required := make([]string, 0)
		for _, p := range spec.Parameters {
			properties[p.Name] = map[string]any{
				"type":        p.Type,
				"description": p.Description,
			}
			if p.Required {
				required = append(required, p.Name)
			}
		}
		defs = append(defs, openai.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
			Name:        spec.Name,
			Description: openai.String(spec.Description),
			Parameters: shared.FunctionParameters{
				"type":       "object",
				"properties": properties,
				"required":   required,
			},
		}))
	}
	return defs
}
