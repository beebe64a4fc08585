// Package searcher implements code search over an indexed project,
// combining vector similarity, FTS5 keyword matching and hybrid reranking.
//
// The searcher provides three retrieval modes:
//   - Hybrid: union of vector and keyword candidates (default)
//   - Vector: semantic search using embeddings
//   - Keyword: FTS5 BM25 search only, no embedding provider required
//
// # Basic Usage
//
//	s, err := searcher.NewSearcher(store, emb, searcher.DefaultOptions())
//
//	resp, err := s.Search(ctx, searcher.SearchRequest{
//	    ProjectPath: "/path/to/project",
//	    Query:       "科目列表接口",
//	    Limit:       8,
//	})
//
//	for _, r := range resp.Results {
//	    fmt.Printf("[%d] %s:%d (%.2f)\n", r.Rank, r.FilePath, r.StartLine, r.RelevanceScore)
//	}
//
// # Candidates and Reranking
//
// Each retriever returns up to candidateFactor times the larger of Limit and
// TopK. In hybrid mode a chunk found by both keeps the higher of its two
// scores. When reranking is enabled and more candidates than Limit remain,
// they are reordered by rerank.Reranker, which blends the retrieval score
// with a batch-local BM25 score, and cut to Limit.
//
// # Caching
//
// Responses may be cached per request in an LRU keyed by an xxhash of the
// project and request. Entries expire after CacheTTL. The indexer's caller
// should call InvalidateProject after a run so stale results are dropped.
package searcher
