package index

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
)

// embedBatchSize bounds how many texts go into one embeddings request.
const embedBatchSize = 64

// Embedder turns texts into embedding vectors. Declared locally so index
// does not import llm, which reaches index again via tool.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Indexer rebuilds the document index: load PDFs and Q&A files, split,
// embed, persist.
type Indexer struct {
	dataDir  string
	splitter *Splitter
	embedder Embedder
	store    *Store
}

// NewIndexer creates an indexer over dataDir using the original splitter
// parameters (1500-rune chunks, 150-rune overlap).
func NewIndexer(dataDir string, embedder Embedder, store *Store) *Indexer {
	return &Indexer{
		dataDir:  dataDir,
		splitter: NewSplitter(1500, 150),
		embedder: embedder,
		store:    store,
	}
}

// ReindexAll performs a full reindex and returns the indexed chunks.
// Returns no chunks (and no error) when the data directory holds nothing
// indexable.
func (ix *Indexer) ReindexAll(ctx context.Context) ([]Chunk, error) {
	log.Printf("[index] starting full reindexing")

	pages, err := LoadPDFDocuments(ix.dataDir)
	if err != nil {
		return nil, err
	}

	var chunks []Chunk
	for _, page := range pages {
		for _, text := range ix.splitter.Split(page.Text) {
			chunks = append(chunks, Chunk{
				ID:     uuid.NewString(),
				Source: page.Source,
				Page:   page.Page,
				Text:   text,
			})
		}
	}
	log.Printf("[index] split %d pages into %d chunks", len(pages), len(chunks))

	qaChunks, err := LoadQADocuments(ix.dataDir)
	if err != nil {
		return nil, err
	}
	chunks = append(chunks, qaChunks...)

	if len(chunks) == 0 {
		log.Printf("[index] no documents found to index")
		return nil, nil
	}

	if err := ix.embedAll(ctx, chunks); err != nil {
		return nil, err
	}

	if err := ix.store.Replace(chunks); err != nil {
		return nil, fmt.Errorf("failed to persist index: %w", err)
	}
	log.Printf("[index] reindexing completed, %d chunks stored", len(chunks))
	return chunks, nil
}

func (ix *Indexer) embedAll(ctx context.Context, chunks []Chunk) error {
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := min(start+embedBatchSize, len(chunks))
		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Text)
		}
		vectors, err := ix.embedder.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to embed chunks %d..%d: %w", start, end, err)
		}
		for i, v := range vectors {
			chunks[start+i].Embedding = v
		}
	}
	return nil
}
