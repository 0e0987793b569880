package rag

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// Okapi BM25 parameters, standard values.
const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

// bm25Index holds per-corpus statistics for BM25 scoring.
type bm25Index struct {
	docTerms  []map[string]int
	docLens   []int
	avgDocLen float64
	docFreq   map[string]int
}

// tokenize lowercases and splits on anything that is not a letter or digit.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func newBM25Index(texts []string) *bm25Index {
	idx := &bm25Index{
		docTerms: make([]map[string]int, len(texts)),
		docLens:  make([]int, len(texts)),
		docFreq:  map[string]int{},
	}
	totalLen := 0
	for i, text := range texts {
		terms := map[string]int{}
		tokens := tokenize(text)
		for _, tok := range tokens {
			terms[tok]++
		}
		idx.docTerms[i] = terms
		idx.docLens[i] = len(tokens)
		totalLen += len(tokens)
		for term := range terms {
			idx.docFreq[term]++
		}
	}
	if len(texts) > 0 {
		idx.avgDocLen = float64(totalLen) / float64(len(texts))
	}
	return idx
}

// topK ranks documents against the query by Okapi BM25.
func (idx *bm25Index) topK(query string, k int) []scored {
	queryTerms := tokenize(query)
	if len(queryTerms) == 0 || len(idx.docTerms) == 0 {
		return nil
	}

	n := float64(len(idx.docTerms))
	results := make([]scored, 0, len(idx.docTerms))
	for doc := range idx.docTerms {
		var score float64
		for _, term := range queryTerms {
			tf := float64(idx.docTerms[doc][term])
			if tf == 0 {
				continue
			}
			df := float64(idx.docFreq[term])
			idf := math.Log(1 + (n-df+0.5)/(df+0.5))
			docLen := float64(idx.docLens[doc])
			score += idf * (tf * (bm25K1 + 1)) /
				(tf + bm25K1*(1-bm25B+bm25B*docLen/idx.avgDocLen))
		}
		if score > 0 {
			results = append(results, scored{chunk: doc, score: score})
		}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].score > results[j].score })
	if len(results) > k {
		results = results[:k]
	}
	return results
}
