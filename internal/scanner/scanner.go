// Package scanner tracks string and template literals in JavaScript-like
// source so that comment markers and brackets inside literals are never
// treated as code.
//
// The scanner is a single linear pass over bytes with four states and an
// escape flag. All delimiters are ASCII, so stepping over the individual
// bytes of multi-byte UTF-8 sequences is safe.
//
// Literal state never survives a newline: callers start every line in
// Normal state. A template literal spanning several physical lines is
// therefore only tracked on its first line.
package scanner

import "strings"

// State is the literal state of the scanner
type State int

const (
	Normal State = iota
	InSingleQuote
	InDoubleQuote
	InTemplate
)

// Scanner is a finite-state literal tracker. The zero value is ready to use.
type Scanner struct {
	state  State
	escape bool
}

// State returns the current literal state
func (s *Scanner) State() State {
	return s.state
}

// InLiteral reports whether the scanner is inside a literal
func (s *Scanner) InLiteral() bool {
	return s.state != Normal
}

// Reset returns the scanner to Normal state
func (s *Scanner) Reset() {
	s.state = Normal
	s.escape = false
}

// Step consumes one byte and reports whether it belongs to a literal,
// opening and closing delimiters included. A byte following a backslash
// inside a literal is consumed without being interpreted.
func (s *Scanner) Step(c byte) bool {
	if s.state == Normal {
		switch c {
		case '\'':
			s.state = InSingleQuote
		case '"':
			s.state = InDoubleQuote
		case '`':
			s.state = InTemplate
		default:
			return false
		}
		return true
	}

	if s.escape {
		s.escape = false
		return true
	}
	if c == '\\' {
		s.escape = true
		return true
	}
	if c == s.delimiter() {
		s.state = Normal
	}
	return true
}

func (s *Scanner) delimiter() byte {
	switch s.state {
	case InSingleQuote:
		return '\''
	case InDoubleQuote:
		return '"'
	case InTemplate:
		return '`'
	}
	return 0
}

// Mask returns, for every byte of line, whether it lies inside a literal
func Mask(line string) []bool {
	var s Scanner
	mask := make([]bool, len(line))
	for i := 0; i < len(line); i++ {
		mask[i] = s.Step(line[i])
	}
	return mask
}

// StripLineComment cuts line at the first // that is outside a literal
func StripLineComment(line string) string {
	var s Scanner
	for i := 0; i < len(line); i++ {
		c := line[i]
		if !s.InLiteral() && c == '/' && i+1 < len(line) && line[i+1] == '/' {
			return line[:i]
		}
		s.Step(c)
	}
	return line
}

// Structural removes literals (delimiters included) and comments from line,
// leaving only the characters that carry code structure. An unterminated
// block comment discards the rest of the line.
func Structural(line string) string {
	var s Scanner
	var b strings.Builder
	b.Grow(len(line))

	for i := 0; i < len(line); i++ {
		c := line[i]
		if s.InLiteral() {
			s.Step(c)
			continue
		}
		if c == '/' && i+1 < len(line) {
			if line[i+1] == '/' {
				break
			}
			if line[i+1] == '*' {
				end := strings.Index(line[i+2:], "*/")
				if end < 0 {
					break
				}
				i += 2 + end + 1
				continue
			}
		}
		if s.Step(c) {
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// StripBlockComments removes every /* ... */ comment from text that does
// not start inside a literal, or inside a // comment when lineComments is
// set. Comments may span lines; literal state is reset at each newline.
// An unterminated block comment is left in place.
func StripBlockComments(text string, lineComments bool) string {
	var s Scanner
	var b strings.Builder
	b.Grow(len(text))
	inLineComment := false

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '\n':
			inLineComment = false
			s.Reset()
		case inLineComment:
		case s.InLiteral():
			s.Step(c)
		case lineComments && c == '/' && i+1 < len(text) && text[i+1] == '/':
			inLineComment = true
		case c == '/' && i+1 < len(text) && text[i+1] == '*':
			end := strings.Index(text[i+2:], "*/")
			if end < 0 {
				b.WriteString(text[i:])
				return b.String()
			}
			i += 2 + end + 1
			continue
		default:
			s.Step(c)
		}
		b.WriteByte(c)
	}
	return b.String()
}
