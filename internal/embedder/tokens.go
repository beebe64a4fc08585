package embedder

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const defaultEncoding = "cl100k_base"

// TokenCounter counts model tokens with a tiktoken encoding
type TokenCounter struct {
	mu      sync.Mutex
	encoder *tiktoken.Tiktoken
}

// NewTokenCounter resolves an encoder for model, falling back to
// cl100k_base. Loading an encoding may download its BPE ranks on first use.
func NewTokenCounter(model string) (*TokenCounter, error) {
	if model != "" {
		if enc, err := tiktoken.EncodingForModel(model); err == nil {
			return &TokenCounter{encoder: enc}, nil
		}
	}
	enc, err := tiktoken.GetEncoding(defaultEncoding)
	if err != nil {
		return nil, fmt.Errorf("get default encoding: %w", err)
	}
	return &TokenCounter{encoder: enc}, nil
}

// Count returns the number of tokens in text. It is safe for concurrent use.
func (c *TokenCounter) Count(text string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.encoder.Encode(text, nil, nil))
}
