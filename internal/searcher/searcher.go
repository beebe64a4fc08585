package searcher

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/jscontext-mcp/internal/embedder"
	"github.com/dshills/jscontext-mcp/internal/logger"
	"github.com/dshills/jscontext-mcp/internal/rerank"
	"github.com/dshills/jscontext-mcp/internal/storage"
	"github.com/dshills/jscontext-mcp/pkg/types"
)

var (
	ErrEmptyQuery      = errors.New("query cannot be empty")
	ErrNotIndexed      = errors.New("project not indexed")
	ErrUnsupportedMode = errors.New("unsupported search mode")
	ErrNoEmbedder      = errors.New("vector search requires an embedding provider")
)

// SearchMode defines how candidates are retrieved
type SearchMode string

const (
	SearchModeHybrid  SearchMode = "hybrid"  // Union of vector and keyword candidates
	SearchModeVector  SearchMode = "vector"  // Vector similarity only
	SearchModeKeyword SearchMode = "keyword" // FTS5 BM25 only
)

// MaxLimit caps the number of results per request
const MaxLimit = 100

// candidateFactor sizes the retrieval pool relative to the result limit
const candidateFactor = 3

// SearchRequest contains parameters for a search operation
type SearchRequest struct {
	ProjectPath string
	Query       string
	Limit       int // Results returned (default: RerankTopN when reranking, else TopK)
	Mode        SearchMode
	Filters     *storage.SearchFilters
	Rerank      *bool // nil uses the searcher default
	UseCache    bool
}

// SearchResponse contains search results and metadata
type SearchResponse struct {
	Results       []types.SearchResult `json:"results"`
	TotalResults  int                  `json:"total_results"`
	SearchMode    SearchMode           `json:"search_mode"`
	Reranked      bool                 `json:"reranked"`
	Duration      time.Duration        `json:"duration_ns"`
	CacheHit      bool                 `json:"cache_hit"`
	VectorResults int                  `json:"vector_results"`
	TextResults   int                  `json:"text_results"`
}

// Options configures a Searcher
type Options struct {
	TopK          int
	RerankEnabled bool
	Rerank        rerank.Options
	CacheSize     int
	CacheTTL      time.Duration
}

// DefaultOptions mirrors the defaults of config.Config
func DefaultOptions() Options {
	return Options{
		TopK:          5,
		RerankEnabled: true,
		Rerank:        rerank.DefaultOptions(),
		CacheSize:     100,
		CacheTTL:      5 * time.Minute,
	}
}

// cacheEntry is a cached response with its owning project
type cacheEntry struct {
	projectID int64
	response  *SearchResponse
	expiresAt time.Time
}

// Searcher retrieves candidates from storage and reranks them
type Searcher struct {
	storage   storage.Storage
	embedder  embedder.Embedder // nil restricts search to keywords
	tokenizer rerank.Tokenizer
	opts      Options
	cache     *lru.Cache[uint64, *cacheEntry]

	tokenizerOnce sync.Once
}

// NewSearcher creates a new Searcher. emb may be nil.
func NewSearcher(store storage.Storage, emb embedder.Embedder, opts Options) (*Searcher, error) {
	if opts.TopK <= 0 {
		opts.TopK = DefaultOptions().TopK
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultOptions().CacheSize
	}
	cache, err := lru.New[uint64, *cacheEntry](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}

	return &Searcher{
		storage:  store,
		embedder: emb,
		opts:     opts,
		cache:    cache,
	}, nil
}

// WithTokenizer sets the tokenizer used for reranking. The default is
// rerank.DefaultTokenizer, loaded on first rerank.
func (s *Searcher) WithTokenizer(t rerank.Tokenizer) *Searcher {
	s.tokenizer = t
	return s
}

// Search performs a search based on the request parameters
func (s *Searcher) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	startTime := time.Now()

	if err := s.validateRequest(&req); err != nil {
		return nil, err
	}

	project, err := s.storage.GetProject(ctx, req.ProjectPath)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotIndexed, req.ProjectPath)
	}
	if err != nil {
		return nil, err
	}

	key := computeQueryHash(project.ID, req)
	if req.UseCache {
		if cached := s.checkCache(key); cached != nil {
			cached.CacheHit = true
			cached.Duration = time.Since(startTime)
			return cached, nil
		}
	}

	pool := max(req.Limit, s.opts.TopK) * candidateFactor
	var cands []candidate
	resp := &SearchResponse{SearchMode: req.Mode}

	switch req.Mode {
	case SearchModeVector:
		vr, err := s.vectorSearch(ctx, project.ID, req, pool)
		if err != nil {
			return nil, err
		}
		resp.VectorResults = len(vr)
		cands = merge(vr, nil)
	case SearchModeKeyword:
		tr, err := s.storage.SearchText(ctx, project.ID, req.Query, pool, req.Filters)
		if err != nil {
			return nil, err
		}
		resp.TextResults = len(tr)
		cands = merge(nil, tr)
	case SearchModeHybrid:
		vr, tr, err := s.hybridSearch(ctx, project.ID, req, pool)
		if err != nil {
			return nil, err
		}
		resp.VectorResults, resp.TextResults = len(vr), len(tr)
		cands = merge(vr, tr)
	}

	results, reranked, err := s.rank(ctx, req, cands)
	if err != nil {
		return nil, err
	}
	resp.Results = results
	resp.TotalResults = len(results)
	resp.Reranked = reranked
	resp.Duration = time.Since(startTime)

	if req.UseCache {
		s.storeInCache(key, project.ID, resp)
	}
	return resp, nil
}

func (s *Searcher) vectorSearch(ctx context.Context, projectID int64, req SearchRequest, pool int) ([]storage.VectorResult, error) {
	if s.embedder == nil {
		return nil, ErrNoEmbedder
	}
	embedding, err := s.embedder.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: req.Query})
	if err != nil {
		return nil, fmt.Errorf("failed to generate query embedding: %w", err)
	}
	return s.storage.SearchVector(ctx, projectID, embedding.Vector, pool, req.Filters)
}

// hybridSearch runs both retrievers concurrently. One side failing is
// tolerated; both failing is an error.
func (s *Searcher) hybridSearch(ctx context.Context, projectID int64, req SearchRequest, pool int) ([]storage.VectorResult, []storage.TextResult, error) {
	var (
		vectorResults      []storage.VectorResult
		textResults        []storage.TextResult
		vectorErr, textErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	if s.embedder != nil {
		g.Go(func() error {
			vectorResults, vectorErr = s.vectorSearch(gctx, projectID, req, pool)
			return nil
		})
	} else {
		vectorErr = ErrNoEmbedder
	}
	g.Go(func() error {
		textResults, textErr = s.storage.SearchText(gctx, projectID, req.Query, pool, req.Filters)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if vectorErr != nil && textErr != nil {
		return nil, nil, fmt.Errorf("both searches failed: vector=%w, text=%v", vectorErr, textErr)
	}

	log := logger.FromContext(ctx)
	if vectorErr != nil && !errors.Is(vectorErr, ErrNoEmbedder) {
		log.Warn("vector search failed, using keyword results", "error", vectorErr)
	}
	if textErr != nil {
		log.Warn("keyword search failed, using vector results", "error", textErr)
	}
	return vectorResults, textResults, nil
}

// candidate is one retrieved chunk with the scores of each retriever
type candidate struct {
	chunkID     int64
	score       float64
	vectorScore float64
	textScore   float64
}

// merge unions vector and keyword hits by chunk, keeping the higher score,
// ordered by score descending then chunk ID
func merge(vectorResults []storage.VectorResult, textResults []storage.TextResult) []candidate {
	byID := make(map[int64]*candidate, len(vectorResults)+len(textResults))
	for _, vr := range vectorResults {
		byID[vr.ChunkID] = &candidate{chunkID: vr.ChunkID, score: vr.SimilarityScore, vectorScore: vr.SimilarityScore}
	}
	for _, tr := range textResults {
		c, ok := byID[tr.ChunkID]
		if !ok {
			byID[tr.ChunkID] = &candidate{chunkID: tr.ChunkID, score: tr.BM25Score, textScore: tr.BM25Score}
			continue
		}
		c.textScore = tr.BM25Score
		c.score = max(c.score, tr.BM25Score)
	}

	out := make([]candidate, 0, len(byID))
	for _, c := range byID {
		out = append(out, *c)
	}
	sortCandidates(out)
	return out
}

func sortCandidates(cands []candidate) {
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].score != cands[j].score {
			return cands[i].score > cands[j].score
		}
		return cands[i].chunkID < cands[j].chunkID
	})
}

// rank loads chunk records, reranks when enabled and cuts to the limit
func (s *Searcher) rank(ctx context.Context, req SearchRequest, cands []candidate) ([]types.SearchResult, bool, error) {
	if len(cands) == 0 {
		return []types.SearchResult{}, false, nil
	}

	ids := make([]int64, len(cands))
	for i, c := range cands {
		ids[i] = c.chunkID
	}
	records, err := s.storage.GetChunkRecords(ctx, ids)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load chunks: %w", err)
	}

	rc := make([]types.RerankCandidate, 0, len(cands))
	for _, c := range cands {
		rec, ok := records[c.chunkID]
		if !ok {
			continue // deleted since retrieval
		}
		rc = append(rc, types.RerankCandidate{
			Path:        rec.FilePath,
			Content:     rec.Content,
			Score:       c.score,
			VectorScore: c.vectorScore,
			BM25Score:   c.textScore,
			ChunkID:     rec.ChunkKey,
			ChunkType:   rec.ChunkType,
			Names:       rec.Names,
			Module:      rec.Module,
			StartLine:   rec.StartLine,
			EndLine:     rec.EndLine,
		})
	}

	reranked := false
	if s.rerankEnabled(req) && len(rc) > req.Limit {
		opts := s.opts.Rerank
		opts.TopN = req.Limit
		rc = rerank.NewWithTokenizer(s.tokenizerOrDefault(ctx), opts).Rerank(req.Query, rc)
		reranked = true
	}
	if len(rc) > req.Limit {
		rc = rc[:req.Limit]
	}

	results := make([]types.SearchResult, len(rc))
	for i, c := range rc {
		results[i] = types.SearchResult{
			Rank:           i + 1,
			RelevanceScore: c.Score,
			VectorScore:    c.VectorScore,
			BM25Score:      c.BM25Score,
			ChunkID:        c.ChunkID,
			FilePath:       c.Path,
			Module:         c.Module,
			ChunkType:      c.ChunkType,
			Names:          c.Names,
			StartLine:      c.StartLine,
			EndLine:        c.EndLine,
			Content:        c.Content,
		}
	}
	return results, reranked, nil
}

func (s *Searcher) rerankEnabled(req SearchRequest) bool {
	if req.Rerank != nil {
		return *req.Rerank
	}
	return s.opts.RerankEnabled
}

// tokenizerOrDefault resolves the rerank tokenizer once. A dictionary
// load failure is logged and reranking continues on RunTokenizer.
func (s *Searcher) tokenizerOrDefault(ctx context.Context) rerank.Tokenizer {
	s.tokenizerOnce.Do(func() {
		if s.tokenizer != nil {
			return
		}
		tok, err := rerank.DefaultTokenizer()
		if err != nil {
			logger.FromContext(ctx).Warn("using run tokenizer for reranking", "error", err)
		}
		s.tokenizer = tok
	})
	return s.tokenizer
}

// validateRequest checks the request and fills in defaults
func (s *Searcher) validateRequest(req *SearchRequest) error {
	if strings.TrimSpace(req.Query) == "" {
		return ErrEmptyQuery
	}

	if req.Limit <= 0 {
		req.Limit = s.opts.TopK
		if s.rerankEnabled(*req) && s.opts.Rerank.TopN > 0 {
			req.Limit = s.opts.Rerank.TopN
		}
	}
	if req.Limit > MaxLimit {
		req.Limit = MaxLimit
	}

	switch req.Mode {
	case "":
		req.Mode = SearchModeHybrid
	case SearchModeHybrid, SearchModeKeyword:
	case SearchModeVector:
		if s.embedder == nil {
			return ErrNoEmbedder
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedMode, req.Mode)
	}
	return nil
}

// checkCache returns a copy of a live cached response, or nil
func (s *Searcher) checkCache(key uint64) *SearchResponse {
	entry, found := s.cache.Get(key)
	if !found {
		return nil
	}
	if time.Now().After(entry.expiresAt) {
		s.cache.Remove(key)
		return nil
	}
	return copySearchResponse(entry.response)
}

func (s *Searcher) storeInCache(key uint64, projectID int64, resp *SearchResponse) {
	ttl := s.opts.CacheTTL
	if ttl <= 0 {
		ttl = DefaultOptions().CacheTTL
	}
	s.cache.Add(key, &cacheEntry{
		projectID: projectID,
		response:  copySearchResponse(resp),
		expiresAt: time.Now().Add(ttl),
	})
}

// InvalidateProject drops every cached response for a project
func (s *Searcher) InvalidateProject(projectID int64) {
	for _, key := range s.cache.Keys() {
		if entry, ok := s.cache.Peek(key); ok && entry.projectID == projectID {
			s.cache.Remove(key)
		}
	}
}

// InvalidateCache drops the whole query cache
func (s *Searcher) InvalidateCache() {
	s.cache.Purge()
}

// copySearchResponse copies the result slice; SearchResult holds no pointers
func copySearchResponse(src *SearchResponse) *SearchResponse {
	if src == nil {
		return nil
	}
	dst := *src
	dst.Results = append([]types.SearchResult(nil), src.Results...)
	return &dst
}

// computeQueryHash keys the cache on everything that shapes a response
func computeQueryHash(projectID int64, req SearchRequest) uint64 {
	var data strings.Builder
	data.WriteString(strconv.FormatInt(projectID, 10))
	data.WriteString("|")
	data.WriteString(req.Query)
	data.WriteString("|")
	data.WriteString(string(req.Mode))
	data.WriteString("|")
	data.WriteString(strconv.Itoa(req.Limit))
	data.WriteString("|")
	if req.Rerank != nil {
		data.WriteString(strconv.FormatBool(*req.Rerank))
	}

	if req.Filters != nil {
		data.WriteString("|filters:")
		data.WriteString(strings.Join(req.Filters.ChunkTypes, ","))
		data.WriteString("|")
		data.WriteString(strings.Join(req.Filters.Modules, ","))
		data.WriteString("|")
		data.WriteString(req.Filters.FilePattern)
		data.WriteString("|")
		data.WriteString(strconv.FormatFloat(req.Filters.MinRelevance, 'f', 4, 64))
	}

	return xxhash.Sum64String(data.String())
}
