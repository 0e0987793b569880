package index

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	s := NewSplitter(100, 10)
	chunks := s.Split("Короткий текст про кредиты.")
	require.Len(t, chunks, 1)
	assert.Equal(t, "Короткий текст про кредиты.", chunks[0])
}

func TestSplit_EmptyText(t *testing.T) {
	s := NewSplitter(100, 10)
	assert.Nil(t, s.Split("   \n  "))
}

func TestSplit_PrefersParagraphBreaks(t *testing.T) {
	s := NewSplitter(30, 0)
	text := "Первый абзац про вклады.\n\nВторой абзац про кредиты."
	chunks := s.Split(text)
	require.Len(t, chunks, 2)
	assert.Equal(t, "Первый абзац про вклады.", chunks[0])
	assert.Equal(t, "Второй абзац про кредиты.", chunks[1])
}

func TestSplit_RespectsChunkSize(t *testing.T) {
	s := NewSplitter(50, 10)
	text := strings.Repeat("слово ", 200)
	chunks := s.Split(text)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 50)
	}
}

func TestSplit_OverlapCarriesContext(t *testing.T) {
	s := NewSplitter(20, 8)
	text := "aaaa bbbb cccc dddd eeee ffff gggg"
	chunks := s.Split(text)
	require.Greater(t, len(chunks), 1)
	// Each chunk after the first should start with a word seen at the end
	// of the previous chunk.
	for i := 1; i < len(chunks); i++ {
		firstWord := strings.Fields(chunks[i])[0]
		assert.Contains(t, chunks[i-1], firstWord)
	}
}

func TestSplit_HardSplitsUnbrokenText(t *testing.T) {
	s := NewSplitter(10, 0)
	text := strings.Repeat("ю", 25)
	chunks := s.Split(text)
	require.NotEmpty(t, chunks)
	total := 0
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 10)
		total += utf8.RuneCountInString(c)
	}
	assert.Equal(t, 25, total)
}

func TestSplit_CoversAllContent(t *testing.T) {
	s := NewSplitter(40, 0)
	text := "Условия кредита.\nСтавка 12 процентов.\nДосрочное погашение разрешено."
	chunks := s.Split(text)
	joined := strings.Join(chunks, "\n")
	for _, line := range strings.Split(text, "\n") {
		assert.Contains(t, joined, line)
	}
}
