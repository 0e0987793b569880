package index

import (
	"strings"
	"unicode/utf8"
)

// defaultSeparators is the separator hierarchy tried in order: paragraph
// breaks first, then lines, words, and finally single characters.
var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter breaks document text into overlapping chunks, preferring to cut
// on the coarsest separator that still yields pieces under the chunk size.
type Splitter struct {
	ChunkSize    int
	ChunkOverlap int
}

// NewSplitter creates a splitter; sizes are measured in runes.
func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1500
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 10
	}
	return &Splitter{ChunkSize: chunkSize, ChunkOverlap: chunkOverlap}
}

// Split returns the chunks of text, each at most ChunkSize runes, with
// adjacent chunks sharing up to ChunkOverlap runes of tail context.
func (s *Splitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return s.splitWith(text, defaultSeparators)
}

func (s *Splitter) splitWith(text string, separators []string) []string {
	sep := separators[len(separators)-1]
	var remaining []string
	for i, candidate := range separators {
		if candidate == "" || strings.Contains(text, candidate) {
			sep = candidate
			remaining = separators[i+1:]
			break
		}
	}

	var final []string
	var short []string
	for _, piece := range splitOn(text, sep) {
		if piece == "" {
			continue
		}
		if utf8.RuneCountInString(piece) < s.ChunkSize {
			short = append(short, piece)
			continue
		}
		if len(short) > 0 {
			final = append(final, s.merge(short, sep)...)
			short = nil
		}
		if len(remaining) == 0 {
			final = append(final, piece)
		} else {
			final = append(final, s.splitWith(piece, remaining)...)
		}
	}
	if len(short) > 0 {
		final = append(final, s.merge(short, sep)...)
	}
	return final
}

// merge recombines small pieces into chunks close to ChunkSize, carrying
// ChunkOverlap runes of trailing pieces into the next chunk.
func (s *Splitter) merge(pieces []string, sep string) []string {
	sepLen := utf8.RuneCountInString(sep)

	var chunks []string
	var current []string
	total := 0
	for _, piece := range pieces {
		pieceLen := utf8.RuneCountInString(piece)
		if len(current) > 0 && total+pieceLen+sepLen > s.ChunkSize {
			if chunk := strings.TrimSpace(strings.Join(current, sep)); chunk != "" {
				chunks = append(chunks, chunk)
			}
			for len(current) > 0 && (total > s.ChunkOverlap || total+pieceLen+sepLen > s.ChunkSize) {
				total -= utf8.RuneCountInString(current[0])
				if len(current) > 1 {
					total -= sepLen
				}
				current = current[1:]
			}
		}
		if len(current) > 0 {
			total += sepLen
		}
		current = append(current, piece)
		total += pieceLen
	}
	if chunk := strings.TrimSpace(strings.Join(current, sep)); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}

// splitOn splits text by sep; an empty separator splits into single runes.
func splitOn(text, sep string) []string {
	if sep == "" {
		out := make([]string, 0, utf8.RuneCountInString(text))
		for _, r := range text {
			out = append(out, string(r))
		}
		return out
	}
	return strings.Split(text, sep)
}
