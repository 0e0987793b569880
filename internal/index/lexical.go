package index

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// qaRecord is one question/answer entry in a JSON or YAML helpdesk export.
type qaRecord struct {
	FullText string `json:"full_text" yaml:"full_text"`
	URL      string `json:"url" yaml:"url"`
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
	Category string `json:"category" yaml:"category"`
}

// LoadQADocuments reads every *.json, *.yaml and *.yml file under dataDir
// and returns one chunk per Q&A pair. Files that do not parse are skipped
// with a log line rather than failing the whole reindex.
func LoadQADocuments(dataDir string) ([]Chunk, error) {
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		return nil, nil
	}

	var paths []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matched, err := filepath.Glob(filepath.Join(dataDir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to list %s files in %s: %w", pattern, dataDir, err)
		}
		paths = append(paths, matched...)
	}

	var chunks []Chunk
	for _, path := range paths {
		records, err := loadQAFile(path)
		if err != nil {
			log.Printf("[index] skipping %s: %v", filepath.Base(path), err)
			continue
		}
		for _, rec := range records {
			if rec.FullText == "" {
				continue
			}
			chunks = append(chunks, Chunk{
				ID:       uuid.NewString(),
				Source:   path,
				Text:     rec.FullText,
				Question: rec.Question,
				Answer:   rec.Answer,
			})
		}
		log.Printf("[index] loaded %d Q&A pairs from %s", len(records), filepath.Base(path))
	}
	return chunks, nil
}

func loadQAFile(path string) ([]qaRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var records []qaRecord
	if strings.HasSuffix(path, ".json") {
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("failed to parse json: %w", err)
		}
		return records, nil
	}
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	return records, nil
}

// NormalizeQuestion canonicalizes a question for exact lexical lookup.
func NormalizeQuestion(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// BuildLexicalIndex maps normalized questions to their Q&A chunks.
func BuildLexicalIndex(chunks []Chunk) map[string]Chunk {
	out := map[string]Chunk{}
	for _, c := range chunks {
		if c.Question == "" {
			continue
		}
		out[NormalizeQuestion(c.Question)] = c
	}
	return out
}
