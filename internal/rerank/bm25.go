package rerank

import "math"

// BM25 parameters
const (
	K1 = 1.5  // term frequency saturation
	B  = 0.75 // length normalization
)

// idf is fixed; no document frequencies are tracked across calls
var idf = math.Ln2

// TermFrequency counts each token in tokens
func TermFrequency(tokens []string) map[string]int {
	freq := make(map[string]int, len(tokens))
	for _, t := range tokens {
		freq[t]++
	}
	return freq
}

// Score computes the BM25 score of one document against the query tokens.
// avgDocLen is the mean token count of the batch the document belongs to.
// It returns 0 when either token list is empty.
func Score(queryTokens, docTokens []string, avgDocLen float64) float64 {
	if len(queryTokens) == 0 || len(docTokens) == 0 {
		return 0
	}
	if avgDocLen <= 0 {
		avgDocLen = float64(len(docTokens))
	}

	docLen := float64(len(docTokens))
	freq := TermFrequency(docTokens)

	score := 0.0
	for _, term := range queryTokens {
		tf := float64(freq[term])
		if tf == 0 {
			continue
		}
		score += idf * tf * (K1 + 1) / (tf + K1*(1-B+B*docLen/avgDocLen))
	}
	return score
}
