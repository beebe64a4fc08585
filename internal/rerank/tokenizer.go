package rerank

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/go-ego/gse"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// camelWord matches the sub-words of camelCase and PascalCase identifiers
var camelWord = regexp.MustCompile(`[A-Z][a-z]+|[a-z]+`)

// Tokenizer turns text into lowercase tokens for lexical scoring
type Tokenizer interface {
	Tokenize(text string) []string
}

// SegmentTokenizer segments mixed-script text with a gse dictionary
type SegmentTokenizer struct {
	seg *gse.Segmenter
}

// NewSegmentTokenizer loads the embedded gse dictionaries
func NewSegmentTokenizer() (*SegmentTokenizer, error) {
	seg, err := gse.New()
	if err != nil {
		return nil, err
	}
	return &SegmentTokenizer{seg: &seg}, nil
}

// Tokenize returns dictionary words longer than one character followed by
// the camelCase sub-words of text
func (t *SegmentTokenizer) Tokenize(text string) []string {
	return finish(t.seg.Cut(text, true), text)
}

// RunTokenizer splits text on anything that is not a letter or digit. It
// does not split contiguous CJK text and is used when no dictionary can be
// loaded.
type RunTokenizer struct{}

// Tokenize returns letter/digit runs longer than one character followed by
// the camelCase sub-words of text
func (RunTokenizer) Tokenize(text string) []string {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	return finish(words, text)
}

func finish(words []string, text string) []string {
	lower := cases.Lower(language.Und)

	tokens := make([]string, 0, len(words))
	for _, w := range words {
		w = lower.String(strings.TrimSpace(w))
		if utf8.RuneCountInString(w) > 1 && hasWordRune(w) {
			tokens = append(tokens, w)
		}
	}
	for _, w := range camelWord.FindAllString(text, -1) {
		if len(w) > 1 {
			tokens = append(tokens, strings.ToLower(w))
		}
	}
	return tokens
}

func hasWordRune(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

var (
	defaultOnce      sync.Once
	defaultTokenizer Tokenizer
	defaultErr       error
)

// DefaultTokenizer returns a process-wide SegmentTokenizer, loaded on first
// use. If the dictionary fails to load it returns RunTokenizer together
// with the load error; the tokenizer is usable either way.
func DefaultTokenizer() (Tokenizer, error) {
	defaultOnce.Do(func() {
		defaultTokenizer, defaultErr = loadTokenizer(NewSegmentTokenizer)
	})
	return defaultTokenizer, defaultErr
}

func loadTokenizer(load func() (*SegmentTokenizer, error)) (Tokenizer, error) {
	t, err := load()
	if err != nil {
		return RunTokenizer{}, fmt.Errorf("segmenter dictionary unavailable: %w", err)
	}
	return t, nil
}
