// Package rerank reorders retrieved candidates by blending their
// similarity score with a batch-local BM25 lexical score.
//
// Query and candidate text are segmented with a dictionary-backed
// segmenter, so contiguous CJK text splits into words, and camelCase
// identifiers contribute their sub-words as extra tokens:
//
//	r := rerank.New(rerank.Options{TopN: 5, VectorWeight: 0.4, BM25Weight: 0.6})
//	ranked := r.Rerank("科目数据从哪里获取", candidates)
//
// BM25 here has no corpus statistics. IDF is fixed at ln 2 and the average
// document length is taken from the batch being reranked, so scores are
// only comparable within one call.
package rerank
