// Package cleaner strips comments, debug statements and lint directives from
// front-end source files and normalizes their whitespace.
package cleaner

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/dshills/jscontext-mcp/internal/scanner"
	"github.com/dshills/jscontext-mcp/pkg/types"
)

// Whole-line debug statements, matched case-insensitively
var debugPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*console\.(?:log|debug|info|warn|error|trace|dir|table|time|timeEnd|group|groupEnd|assert|count|clear)\s*\([^;]*\);?\s*$`),
	regexp.MustCompile(`(?i)^\s*debugger\s*;?\s*$`),
	regexp.MustCompile(`(?i)^\s*alert\s*\([^;]*\)\s*;?\s*$`),
}

// Lint, type-checker and marker directives, applied in multi-line mode
var lintPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)//\s*eslint-disable.*$`),
	regexp.MustCompile(`(?m)//\s*eslint-enable.*$`),
	regexp.MustCompile(`/\*\s*eslint-disable.*?\*/`),
	regexp.MustCompile(`(?m)//\s*@ts-ignore\s*$`),
	regexp.MustCompile(`(?m)//\s*@ts-nocheck\s*$`),
	regexp.MustCompile(`(?m)//\s*@ts-expect-error.*$`),
	regexp.MustCompile(`(?m)//\s*noinspection\s+.*$`),
	regexp.MustCompile(`(?m)//\s*prettier-ignore\s*$`),
	regexp.MustCompile(`(?m)//\s*TODO.*$`),
	regexp.MustCompile(`(?m)//\s*FIXME.*$`),
	regexp.MustCompile(`(?m)//\s*HACK.*$`),
	regexp.MustCompile(`(?m)//\s*XXX.*$`),
}

var blankRun = regexp.MustCompile(`\n{3,}`)

// Cleaner applies the configured cleaning stages to file content
type Cleaner struct {
	config types.PreprocessorConfig
}

// New creates a Cleaner for the given configuration
func New(config types.PreprocessorConfig) *Cleaner {
	return &Cleaner{config: config}
}

// Clean runs the enabled stages in order: comments, debug statements,
// lint directives, whitespace. ext is the file extension including the dot.
func (c *Cleaner) Clean(content, ext string) string {
	if c.config.RemoveComments {
		content = RemoveComments(content, ext)
	}
	if c.config.RemoveDebugStatements {
		content = RemoveDebugStatements(content)
	}
	if c.config.RemoveLintDirectives {
		content = RemoveLintDirectives(content)
	}
	if c.config.NormalizeWhitespace {
		content = NormalizeWhitespace(content)
	}
	return content
}

// IsStylesheet reports whether ext names a stylesheet language
func IsStylesheet(ext string) bool {
	switch strings.ToLower(ext) {
	case ".css", ".less", ".scss":
		return true
	}
	return false
}

// RemoveComments strips block comments and, except for stylesheets, line
// comments. Comment markers inside string literals are preserved.
func RemoveComments(content, ext string) string {
	if IsStylesheet(ext) {
		return scanner.StripBlockComments(content, false)
	}
	content = scanner.StripBlockComments(content, true)

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = scanner.StripLineComment(line)
	}
	return strings.Join(lines, "\n")
}

// RemoveDebugStatements drops lines that consist only of a debug call
func RemoveDebugStatements(content string) string {
	lines := strings.Split(content, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if !isDebugLine(line) {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func isDebugLine(line string) bool {
	for _, p := range debugPatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

// RemoveLintDirectives strips lint-control and marker comments
func RemoveLintDirectives(content string) string {
	for _, p := range lintPatterns {
		content = p.ReplaceAllString(content, "")
	}
	return content
}

// NormalizeWhitespace right-trims every line, collapses runs of three or
// more newlines to two and drops leading and trailing blank lines.
func NormalizeWhitespace(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRightFunc(line, unicode.IsSpace)
	}
	content = blankRun.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")

	lines = strings.Split(content, "\n")
	start, end := 0, len(lines)
	for start < end && lines[start] == "" {
		start++
	}
	for end > start && lines[end-1] == "" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}
