package rag

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/stupiduntilnot/ragbot/internal/index"
)

// noContextText is returned when retrieval found nothing.
const noContextText = "Нет доступной информации"

// FormatChunks renders retrieved chunks with their source metadata so the
// model (and a curious reader of the prompt) can see where each piece of
// context came from.
func FormatChunks(chunks []index.Chunk) string {
	if len(chunks) == 0 {
		return noContextText
	}

	parts := make([]string, 0, len(chunks))
	for i, c := range chunks {
		page := "N/A"
		if c.Page > 0 {
			page = strconv.Itoa(c.Page)
		}
		source := filepath.Base(c.Source)
		if source == "." || source == "" {
			source = "Unknown"
		}
		parts = append(parts, fmt.Sprintf("[Источник %d: %s, стр. %s]\n%s", i+1, source, page, c.Text))
	}
	return strings.Join(parts, "\n\n---\n\n")
}

// FormatSources renders a compact attribution line for a reply, grouping
// page numbers by file: "📚 Источники: file1.pdf (стр. 3, 5), file2.json".
// Returns "" when there is nothing to attribute.
func FormatSources(chunks []index.Chunk) string {
	if len(chunks) == 0 {
		return ""
	}

	var order []string
	pagesByFile := map[string][]int{}
	for _, c := range chunks {
		source := filepath.Base(c.Source)
		if source == "." || source == "" {
			source = "Unknown"
		}
		if _, seen := pagesByFile[source]; !seen {
			order = append(order, source)
			pagesByFile[source] = nil
		}
		if c.Page > 0 {
			pagesByFile[source] = append(pagesByFile[source], c.Page)
		}
	}

	parts := make([]string, 0, len(order))
	for _, source := range order {
		pages := pagesByFile[source]
		if len(pages) == 0 {
			parts = append(parts, source)
			continue
		}
		sort.Ints(pages)
		unique := make([]string, 0, len(pages))
		for i, p := range pages {
			if i > 0 && p == pages[i-1] {
				continue
			}
			unique = append(unique, strconv.Itoa(p))
		}
		parts = append(parts, fmt.Sprintf("%s (стр. %s)", source, strings.Join(unique, ", ")))
	}
	return "📚 Источники: " + strings.Join(parts, ", ")
}
