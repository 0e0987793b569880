package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
)

// Call represents one tool invocation request from the model.
type Call struct {
	Name      string
	Arguments json.RawMessage
}

// Runner executes registered tools. Failures are folded into an error JSON
// payload so the model can read them and recover; the agent loop never
// aborts on a bad tool call.
type Runner struct {
	registry *Registry
}

func NewRunner(registry *Registry) *Runner {
	return &Runner{registry: registry}
}

func (r *Runner) RunOne(ctx context.Context, call Call) string {
	toolName := strings.TrimSpace(call.Name)
	t, ok := r.registry.Get(toolName)
	if !ok {
		log.Printf("[tool] unknown tool requested: %s", toolName)
		return errorJSON(fmt.Sprintf("неизвестный инструмент: %s", toolName))
	}

	out, err := t.Execute(ctx, call.Arguments)
	if err != nil {
		log.Printf("[tool] %s failed: %v", toolName, err)
		return errorJSON(fmt.Sprintf("Ошибка расчета: %v", err))
	}
	return out
}
