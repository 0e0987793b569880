package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDataFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadQADocuments_JSON(t *testing.T) {
	dir := t.TempDir()
	writeDataFile(t, dir, "help.json", `[
		{"full_text":"Вопрос: Как открыть вклад?\nОтвет: Через приложение.","question":"Как открыть вклад?","answer":"Через приложение.","category":"вклады"},
		{"full_text":"","question":"пустой"},
		{"full_text":"Текст без вопроса."}
	]`)

	chunks, err := LoadQADocuments(dir)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "Как открыть вклад?", chunks[0].Question)
	assert.Equal(t, "Через приложение.", chunks[0].Answer)
	assert.NotEmpty(t, chunks[0].ID)
	assert.Equal(t, "", chunks[1].Question)
}

func TestLoadQADocuments_YAML(t *testing.T) {
	dir := t.TempDir()
	writeDataFile(t, dir, "help.yaml", `
- full_text: "Вопрос: Какая ставка по кредиту?\nОтвет: 12%."
  question: "Какая ставка по кредиту?"
  answer: "12%."
`)

	chunks, err := LoadQADocuments(dir)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Какая ставка по кредиту?", chunks[0].Question)
}

func TestLoadQADocuments_SkipsBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	writeDataFile(t, dir, "broken.json", `{not json`)
	writeDataFile(t, dir, "good.json", `[{"full_text":"ok","question":"q","answer":"a"}]`)

	chunks, err := LoadQADocuments(dir)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
}

func TestLoadQADocuments_MissingDir(t *testing.T) {
	chunks, err := LoadQADocuments(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Nil(t, chunks)
}

func TestNormalizeQuestion(t *testing.T) {
	assert.Equal(t, "как открыть вклад?", NormalizeQuestion("  Как открыть ВКЛАД?  "))
}

func TestBuildLexicalIndex(t *testing.T) {
	chunks := []Chunk{
		{ID: "1", Question: "Как открыть вклад?", Answer: "Через приложение."},
		{ID: "2", Text: "pdf chunk without question"},
	}
	idx := BuildLexicalIndex(chunks)
	require.Len(t, idx, 1)
	got, ok := idx["как открыть вклад?"]
	require.True(t, ok)
	assert.Equal(t, "1", got.ID)
}
