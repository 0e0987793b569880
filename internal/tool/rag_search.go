package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/stupiduntilnot/ragbot/internal/index"
)

// Searcher retrieves document chunks relevant to a query.
type Searcher interface {
	Retrieve(ctx context.Context, query string) ([]index.Chunk, error)
}

// RAGSearch exposes document retrieval to the agent. Output is a JSON
// object with a "sources" list; retrieval failures yield an empty list so
// the agent can still answer from its own knowledge.
type RAGSearch struct {
	searcher Searcher
}

func NewRAGSearch(searcher Searcher) *RAGSearch {
	return &RAGSearch{searcher: searcher}
}

func (t *RAGSearch) Name() string { return "rag_search" }

func (t *RAGSearch) Spec() Spec {
	return Spec{
		Name: t.Name(),
		Description: "Ищет информацию в документах банка (условия кредитов, вкладов и других " +
			"банковских продуктов). Возвращает JSON со списком источников: source — имя файла, " +
			"page — номер страницы (только для PDF), page_content — текст документа.",
		Parameters: []Param{
			{Name: "query", Type: "string", Description: "Поисковый запрос", Required: true},
		},
	}
}

// SourceRecord is one retrieved document in rag_search output.
type SourceRecord struct {
	Source      string `json:"source"`
	Page        int    `json:"page,omitempty"`
	PageContent string `json:"page_content"`
}

type searchResult struct {
	Sources []SourceRecord `json:"sources"`
}

func (t *RAGSearch) Execute(ctx context.Context, raw json.RawMessage) (string, error) {
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}

	result := searchResult{Sources: []SourceRecord{}}
	chunks, err := t.searcher.Retrieve(ctx, args.Query)
	if err != nil {
		log.Printf("[tool] rag_search failed: %v", err)
	}
	for _, c := range chunks {
		result.Sources = append(result.Sources, SourceRecord{
			Source:      c.Source,
			Page:        c.Page,
			PageContent: c.Text,
		})
	}

	out, err := json.Marshal(result)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
