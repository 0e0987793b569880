package tool

import (
	"context"
	"encoding/json"
)

// Param describes one parameter of a tool's JSON argument object.
type Param struct {
	Name        string
	Type        string
	Description string
	Required    bool
}

// Spec is the model-facing description of a tool.
type Spec struct {
	Name        string
	Description string
	Parameters  []Param
}

// Tool is the common abstraction for all agent tools. Execute returns a
// JSON payload for the model to read.
type Tool interface {
	Name() string
	Spec() Spec
	Execute(ctx context.Context, raw json.RawMessage) (string, error)
}

// errorJSON wraps a human-readable failure so the model can recover
// instead of the whole agent turn failing.
func errorJSON(msg string) string {
	out, _ := json.Marshal(map[string]string{"error": msg})
	return string(out)
}
