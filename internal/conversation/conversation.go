package conversation

import "sync"

// Message roles recognized by the chat completions API.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one role-tagged message in a chat history.
type Turn struct {
	Role    string
	Content string
}

// History holds the ordered turns of a single chat. The first turn is always
// the system turn; the total length never exceeds the configured cap, and the
// system turn is never evicted to make room.
type History struct {
	mu    sync.Mutex
	turns []Turn
	cap   int
}

func newHistory(systemPrompt string, cap int) *History {
	return &History{
		turns: []Turn{{Role: RoleSystem, Content: systemPrompt}},
		cap:   cap,
	}
}

// append adds a turn and evicts the oldest non-system turns until the
// history fits the cap again. Relative order of retained turns is preserved.
func (h *History) append(role, content string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = append(h.turns, Turn{Role: role, Content: content})
	for len(h.turns) > h.cap {
		evicted := false
		for i, t := range h.turns {
			if t.Role != RoleSystem {
				h.turns = append(h.turns[:i], h.turns[i+1:]...)
				evicted = true
				break
			}
		}
		if !evicted {
			break
		}
	}
}

// reset replaces the history with a single system turn built from the
// given prompt.
func (h *History) reset(systemPrompt string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = []Turn{{Role: RoleSystem, Content: systemPrompt}}
}

// snapshot returns a copy of the full turn sequence.
func (h *History) snapshot() []Turn {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	return out
}
