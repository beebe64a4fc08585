package storage

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// searchVector performs vector similarity search using cosine similarity
// computed in Go over every embedding that passes the SQL filters.
func searchVector(ctx context.Context, q querier, projectID int64, queryVector []float32, limit int, filters *SearchFilters) ([]VectorResult, error) {
	query := `
		SELECT
			c.id as chunk_id,
			f.file_path,
			e.vector
		FROM chunks c
		INNER JOIN embeddings e ON c.id = e.chunk_id
		INNER JOIN files f ON c.file_id = f.id
		WHERE f.project_id = ?
	`
	args := []interface{}{projectID}
	query, args = applyFilters(query, args, filters)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query embeddings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	candidates := make([]candidate, 0, 256)
	for rows.Next() {
		var chunkID int64
		var filePath string
		var vectorBlob []byte
		if err := rows.Scan(&chunkID, &filePath, &vectorBlob); err != nil {
			return nil, err
		}
		if !matchesFilePattern(filters, filePath) {
			continue
		}

		vector := deserializeVector(vectorBlob)
		if len(vector) != len(queryVector) {
			continue // Dimension mismatch, skip
		}

		similarity := cosineSimilarity(queryVector, vector)
		if filters != nil && filters.MinRelevance > 0 && similarity < filters.MinRelevance {
			continue
		}
		candidates = append(candidates, candidate{chunkID: chunkID, score: similarity})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sortCandidates(candidates)
	return buildVectorResults(candidates, limit), nil
}

// searchText performs BM25 full-text search using FTS5 over chunk content and names
func searchText(ctx context.Context, q querier, projectID int64, text string, limit int, filters *SearchFilters) ([]TextResult, error) {
	match := sanitizeFTSQuery(text)
	if match == "" {
		return []TextResult{}, nil
	}

	query := `
		SELECT
			c.id as chunk_id,
			f.file_path,
			bm25(chunks_fts) as score
		FROM chunks_fts
		INNER JOIN chunks c ON c.id = chunks_fts.rowid
		INNER JOIN files f ON c.file_id = f.id
		WHERE chunks_fts MATCH ? AND f.project_id = ?
	`
	args := []interface{}{match, projectID}
	query, args = applyFilters(query, args, filters)
	query += " ORDER BY score"

	// The glob filter runs in Go, so the SQL limit only applies without one
	if limit > 0 && (filters == nil || filters.FilePattern == "") {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute text search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := make([]TextResult, 0)
	for rows.Next() {
		var result TextResult
		var filePath string
		var raw float64
		if err := rows.Scan(&result.ChunkID, &filePath, &raw); err != nil {
			return nil, err
		}
		if !matchesFilePattern(filters, filePath) {
			continue
		}

		result.BM25Score = normalizeBM25(raw)
		if filters != nil && filters.MinRelevance > 0 && result.BM25Score < filters.MinRelevance {
			continue
		}
		results = append(results, result)
		if limit > 0 && len(results) == limit {
			break
		}
	}
	return results, rows.Err()
}

// applyFilters appends chunk type and module conditions to a WHERE clause
func applyFilters(query string, args []interface{}, filters *SearchFilters) (string, []interface{}) {
	if filters == nil {
		return query, args
	}

	if len(filters.ChunkTypes) > 0 {
		query += " AND c.chunk_type IN (" + placeholders(len(filters.ChunkTypes)) + ")"
		for _, t := range filters.ChunkTypes {
			args = append(args, t)
		}
	}

	if len(filters.Modules) > 0 {
		query += " AND f.module IN (" + placeholders(len(filters.Modules)) + ")"
		for _, m := range filters.Modules {
			args = append(args, m)
		}
	}

	return query, args
}

func matchesFilePattern(filters *SearchFilters, filePath string) bool {
	if filters == nil || filters.FilePattern == "" {
		return true
	}
	ok, err := doublestar.Match(filters.FilePattern, filePath)
	return err == nil && ok
}

// normalizeBM25 maps an FTS5 bm25() value (negative, lower is better) into [0, 1)
func normalizeBM25(raw float64) float64 {
	a := math.Abs(raw)
	return a / (1.0 + a)
}

// buildVectorResults creates VectorResult slice from candidates
func buildVectorResults(candidates []candidate, limit int) []VectorResult {
	// Non-positive limit returns all candidates
	if limit <= 0 || limit > len(candidates) {
		limit = len(candidates)
	}

	results := make([]VectorResult, limit)
	for i := 0; i < limit; i++ {
		results[i] = VectorResult{
			ChunkID:         candidates[i].chunkID,
			SimilarityScore: candidates[i].score,
		}
	}
	return results
}

// serializeVector converts a float32 slice to a byte blob (little-endian)
func serializeVector(vector []float32) []byte {
	blob := make([]byte, len(vector)*4)
	for i, v := range vector {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(v))
	}
	return blob
}

// deserializeVector converts a byte blob back to a float32 slice
func deserializeVector(blob []byte) []float32 {
	vector := make([]float32, len(blob)/4)
	for i := range vector {
		bits := binary.LittleEndian.Uint32(blob[i*4:])
		vector[i] = math.Float32frombits(bits)
	}
	return vector
}

// cosineSimilarity computes the cosine similarity between two vectors
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// candidate represents a chunk with its similarity score
type candidate struct {
	chunkID int64
	score   float64
}

// sortCandidates sorts candidates by score descending, chunk ID ascending on ties
func sortCandidates(candidates []candidate) {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].chunkID < candidates[j].chunkID
	})
}

var ftsTokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// sanitizeFTSQuery turns free text into an FTS5 expression of quoted terms
// joined by OR, so operators and syntax characters in the input are inert.
func sanitizeFTSQuery(query string) string {
	tokens := ftsTokenPattern.FindAllString(query, -1)
	if len(tokens) == 0 {
		return ""
	}
	quoted := make([]string, len(tokens))
	for i, tok := range tokens {
		quoted[i] = `"` + tok + `"`
	}
	return strings.Join(quoted, " OR ")
}

// SerializeVector encodes a vector the way the embeddings table stores it
func SerializeVector(vector []float32) []byte {
	return serializeVector(vector)
}

// DeserializeVector decodes a stored embedding blob
func DeserializeVector(blob []byte) []float32 {
	return deserializeVector(blob)
}

// CosineSimilarity is an exported helper for callers ranking vectors in memory
func CosineSimilarity(a, b []float32) float64 {
	return cosineSimilarity(a, b)
}
