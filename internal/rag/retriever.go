package rag

import (
	"math"
	"sort"

	"github.com/stupiduntilnot/ragbot/internal/index"
)

// scored pairs a chunk index with a retrieval score.
type scored struct {
	chunk int
	score float64
}

// cosine returns the cosine similarity of two vectors, 0 for mismatched or
// zero-length vectors.
func cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// semanticTopK ranks chunks by cosine similarity against the query vector.
func semanticTopK(chunks []index.Chunk, query []float64, k int) []scored {
	results := make([]scored, 0, len(chunks))
	for i, c := range chunks {
		if len(c.Embedding) == 0 {
			continue
		}
		results = append(results, scored{chunk: i, score: cosine(query, c.Embedding)})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].score > results[j].score })
	if len(results) > k {
		results = results[:k]
	}
	return results
}

// rrfC is the reciprocal-rank-fusion smoothing constant.
const rrfC = 60

// fuseRanked merges ranked lists by weighted reciprocal rank.
func fuseRanked(lists [][]scored, weights []float64, k int) []scored {
	fusedScores := map[int]float64{}
	for li, list := range lists {
		for rank, item := range list {
			fusedScores[item.chunk] += weights[li] / float64(rank+1+rrfC)
		}
	}

	fused := make([]scored, 0, len(fusedScores))
	for chunk, score := range fusedScores {
		fused = append(fused, scored{chunk: chunk, score: score})
	}
	sort.SliceStable(fused, func(i, j int) bool {
		if fused[i].score != fused[j].score {
			return fused[i].score > fused[j].score
		}
		return fused[i].chunk < fused[j].chunk
	})
	if len(fused) > k {
		fused = fused[:k]
	}
	return fused
}
