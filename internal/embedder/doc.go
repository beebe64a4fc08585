// Package embedder turns chunk embed text into vectors.
//
// Four providers implement Embedder:
//
//   - ollama: a local Ollama server, /api/embeddings, default model bge-m3
//   - openai: OpenAI /v1/embeddings
//   - jina: Jina AI, which speaks the same request format as OpenAI
//   - local: offline feature hashing with xxhash, no model required
//
// New picks one from the process configuration:
//
//	emb, err := embedder.New(cfg)
//	if err != nil {
//	    return err
//	}
//	defer emb.Close()
//
//	vectors, err := embedder.EmbedTexts(ctx, emb, texts, embedder.DefaultBatchSize)
//
// Remote calls are retried with exponential backoff; 4xx responses other
// than 429 fail immediately. Every provider consults an LRU Cache keyed by
// provider, model and the SHA-256 of the text before calling out.
//
// TokenCounter counts tokens with tiktoken for callers that want exact
// counts instead of the bytes/4 estimate.
package embedder
