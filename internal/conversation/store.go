package conversation

import (
	"fmt"
	"sync"
)

// Store keeps one History per chat identifier, in process memory only.
// Entries are created lazily on first use and live until the process exits.
//
// The store itself guards the chat map; each History guards its own turns,
// so handlers for different chats can run in parallel while reads and
// writes on a single chat's history never interleave.
type Store struct {
	mu           sync.RWMutex
	histories    map[int64]*History
	systemPrompt string
	maxTurns     int
}

// NewStore creates a store with the given system prompt and per-chat turn
// cap. The cap must be at least 1 so every history can hold its system turn.
func NewStore(systemPrompt string, maxTurns int) (*Store, error) {
	if maxTurns < 1 {
		return nil, fmt.Errorf("conversation cap must be >= 1, got %d", maxTurns)
	}
	return &Store{
		histories:    map[int64]*History{},
		systemPrompt: systemPrompt,
		maxTurns:     maxTurns,
	}, nil
}

func (s *Store) history(chatID int64) *History {
	s.mu.RLock()
	h, ok := s.histories[chatID]
	s.mu.RUnlock()
	if ok {
		return h
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.histories[chatID]; ok {
		return h
	}
	h = newHistory(s.systemPrompt, s.maxTurns)
	s.histories[chatID] = h
	return h
}

// GetOrCreate returns the current turns for the chat, initializing a fresh
// single-turn history (system turn only) when the chat is new. Idempotent.
func (s *Store) GetOrCreate(chatID int64) []Turn {
	return s.history(chatID).snapshot()
}

// Append records a new turn for the chat, evicting the oldest non-system
// turn when the cap would be exceeded. Content is stored as-is.
func (s *Store) Append(chatID int64, role, content string) {
	s.history(chatID).append(role, content)
}

// Clear resets the chat's history to a single system turn rebuilt from the
// currently configured system prompt.
func (s *Store) Clear(chatID int64) {
	s.history(chatID).reset(s.systemPrompt)
}

// Snapshot returns a copy of the chat's full turn sequence, in append order,
// with no truncation or filtering.
func (s *Store) Snapshot(chatID int64) []Turn {
	return s.history(chatID).snapshot()
}
