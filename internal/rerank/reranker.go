package rerank

import (
	"sort"

	"github.com/dshills/jscontext-mcp/pkg/types"
)

// Options controls how many candidates are kept and how the two scores
// are weighted
type Options struct {
	TopN         int
	VectorWeight float64
	BM25Weight   float64
}

// DefaultOptions returns the weights used by the search service
func DefaultOptions() Options {
	return Options{
		TopN:         8,
		VectorWeight: 0.4,
		BM25Weight:   0.6,
	}
}

// Reranker blends similarity and BM25 scores over a candidate batch
type Reranker struct {
	tokenizer Tokenizer
	opts      Options
}

// New creates a Reranker using the default tokenizer, which degrades to
// RunTokenizer when the segmenter dictionary cannot be loaded
func New(opts Options) *Reranker {
	tok, _ := DefaultTokenizer()
	return NewWithTokenizer(tok, opts)
}

// NewWithTokenizer creates a Reranker with an explicit tokenizer
func NewWithTokenizer(tokenizer Tokenizer, opts Options) *Reranker {
	return &Reranker{tokenizer: tokenizer, opts: opts}
}

// Options returns the reranker's configuration
func (r *Reranker) Options() Options {
	return r.opts
}

// Rerank scores candidates against query and returns at most TopN of them,
// best first. Each returned candidate carries its original similarity in
// VectorScore, its normalized lexical score in BM25Score and the blend in
// Score. When there are no more than TopN candidates they are returned as
// given. A TopN of zero or less keeps every candidate.
func (r *Reranker) Rerank(query string, candidates []types.RerankCandidate) []types.RerankCandidate {
	if len(candidates) == 0 {
		return []types.RerankCandidate{}
	}
	topN := r.opts.TopN
	if topN > 0 && len(candidates) <= topN {
		return candidates
	}

	queryTokens := r.tokenizer.Tokenize(query)

	docTokens := make([][]string, len(candidates))
	total := 0
	for i, c := range candidates {
		docTokens[i] = r.tokenizer.Tokenize(c.Path + " " + c.Content)
		total += len(docTokens[i])
	}
	avgDocLen := float64(total) / float64(len(candidates))

	raw := make([]float64, len(candidates))
	for i, tokens := range docTokens {
		raw[i] = Score(queryTokens, tokens, avgDocLen)
	}
	norm := normalize(raw)

	scored := make([]types.RerankCandidate, len(candidates))
	for i, c := range candidates {
		c.VectorScore = c.Score
		c.BM25Score = norm[i]
		c.Score = r.opts.VectorWeight*c.VectorScore + r.opts.BM25Weight*c.BM25Score
		scored[i] = c
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topN > 0 && len(scored) > topN {
		scored = scored[:topN]
	}
	return scored
}

// Rerank is a convenience wrapper around a Reranker with the default
// tokenizer
func Rerank(query string, candidates []types.RerankCandidate, topN int, vectorWeight, bm25Weight float64) []types.RerankCandidate {
	return New(Options{TopN: topN, VectorWeight: vectorWeight, BM25Weight: bm25Weight}).Rerank(query, candidates)
}

// normalize min-max scales scores into [0,1]. A flat distribution maps
// every score to 0.5.
func normalize(scores []float64) []float64 {
	lo, hi := scores[0], scores[0]
	for _, s := range scores[1:] {
		lo = min(lo, s)
		hi = max(hi, s)
	}

	out := make([]float64, len(scores))
	for i, s := range scores {
		if hi > lo {
			out[i] = (s - lo) / (hi - lo)
		} else {
			out[i] = 0.5
		}
	}
	return out
}
