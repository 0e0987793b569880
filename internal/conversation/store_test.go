package conversation

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, cap int) *Store {
	t.Helper()
	s, err := NewStore("You are a helpful assistant.", cap)
	require.NoError(t, err)
	return s
}

func TestNewStore_RejectsCapBelowOne(t *testing.T) {
	_, err := NewStore("sys", 0)
	require.Error(t, err)
	_, err = NewStore("sys", -3)
	require.Error(t, err)
}

func TestGetOrCreate_InitializesWithSystemTurn(t *testing.T) {
	s := newTestStore(t, 10)
	turns := s.GetOrCreate(1)
	require.Len(t, turns, 1)
	assert.Equal(t, RoleSystem, turns[0].Role)
	assert.Equal(t, "You are a helpful assistant.", turns[0].Content)
}

func TestGetOrCreate_Idempotent(t *testing.T) {
	s := newTestStore(t, 10)
	first := s.GetOrCreate(42)
	second := s.GetOrCreate(42)
	assert.Equal(t, first, second)
}

func TestAppend_PreservesOrder(t *testing.T) {
	s := newTestStore(t, 10)
	s.Append(1, RoleUser, "q1")
	s.Append(1, RoleAssistant, "a1")
	s.Append(1, RoleUser, "q2")

	turns := s.Snapshot(1)
	require.Len(t, turns, 4)
	assert.Equal(t, Turn{Role: RoleSystem, Content: "You are a helpful assistant."}, turns[0])
	assert.Equal(t, Turn{Role: RoleUser, Content: "q1"}, turns[1])
	assert.Equal(t, Turn{Role: RoleAssistant, Content: "a1"}, turns[2])
	assert.Equal(t, Turn{Role: RoleUser, Content: "q2"}, turns[3])
}

func TestAppend_EvictsOldestNonSystemTurn(t *testing.T) {
	s := newTestStore(t, 3)
	s.Clear(1)
	s.Append(1, RoleUser, "hi")
	s.Append(1, RoleAssistant, "hello")
	s.Append(1, RoleUser, "bye")

	turns := s.Snapshot(1)
	require.Len(t, turns, 3)
	assert.Equal(t, RoleSystem, turns[0].Role)
	assert.Equal(t, Turn{Role: RoleAssistant, Content: "hello"}, turns[1])
	assert.Equal(t, Turn{Role: RoleUser, Content: "bye"}, turns[2])
}

func TestAppend_NeverExceedsCapAndKeepsSystemFirst(t *testing.T) {
	cap := 5
	s := newTestStore(t, cap)
	for i := 0; i < 20; i++ {
		s.Append(7, RoleUser, fmt.Sprintf("msg-%d", i))
	}
	turns := s.Snapshot(7)
	assert.LessOrEqual(t, len(turns), cap)
	assert.Equal(t, RoleSystem, turns[0].Role)
	// The retained turns are the most recent ones, still in append order.
	for i := 1; i < len(turns); i++ {
		assert.Equal(t, fmt.Sprintf("msg-%d", 20-len(turns)+i), turns[i].Content)
	}
}

func TestClear_ResetsToSingleSystemTurn(t *testing.T) {
	s := newTestStore(t, 10)
	s.Append(1, RoleUser, "hi")
	s.Append(1, RoleAssistant, "hello")
	s.Clear(1)

	turns := s.Snapshot(1)
	require.Len(t, turns, 1)
	assert.Equal(t, RoleSystem, turns[0].Role)
	assert.Equal(t, "You are a helpful assistant.", turns[0].Content)
}

func TestStore_ChatsDoNotShareState(t *testing.T) {
	s := newTestStore(t, 10)
	s.Append(1, RoleUser, "for chat one")
	turns := s.Snapshot(2)
	require.Len(t, turns, 1)
	assert.Equal(t, RoleSystem, turns[0].Role)
}

func TestStore_EmptyContentStoredAsIs(t *testing.T) {
	s := newTestStore(t, 10)
	s.Append(1, RoleUser, "")
	turns := s.Snapshot(1)
	require.Len(t, turns, 2)
	assert.Equal(t, "", turns[1].Content)
}

func TestSnapshot_ReturnsCopy(t *testing.T) {
	s := newTestStore(t, 10)
	s.Append(1, RoleUser, "hi")
	turns := s.Snapshot(1)
	turns[0].Content = "mutated"
	assert.Equal(t, "You are a helpful assistant.", s.Snapshot(1)[0].Content)
}

func TestStore_ConcurrentAppends(t *testing.T) {
	s := newTestStore(t, 6)
	var wg sync.WaitGroup
	for chat := int64(1); chat <= 8; chat++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				s.Append(id, RoleUser, fmt.Sprintf("chat-%d-msg-%d", id, i))
			}
		}(chat)
	}
	wg.Wait()

	for chat := int64(1); chat <= 8; chat++ {
		turns := s.Snapshot(chat)
		assert.LessOrEqual(t, len(turns), 6)
		assert.Equal(t, RoleSystem, turns[0].Role)
		for _, turn := range turns[1:] {
			assert.Contains(t, turn.Content, fmt.Sprintf("chat-%d-", chat))
		}
	}
}
