package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScannerStep(t *testing.T) {
	t.Run("tracks each delimiter independently", func(t *testing.T) {
		var s Scanner
		for _, c := range []byte(`"it's"`) {
			s.Step(c)
			if c == '\'' {
				assert.Equal(t, InDoubleQuote, s.State(), "single quote inside double quotes is content")
			}
		}
		assert.Equal(t, Normal, s.State())
	})

	t.Run("escaped delimiter does not close", func(t *testing.T) {
		var s Scanner
		for _, c := range []byte(`'a\'b`) {
			s.Step(c)
		}
		assert.True(t, s.InLiteral())
		s.Step('\'')
		assert.False(t, s.InLiteral())
	})

	t.Run("reset clears pending escape", func(t *testing.T) {
		var s Scanner
		s.Step('`')
		s.Step('\\')
		s.Reset()
		assert.Equal(t, Normal, s.State())
		assert.True(t, s.Step('"'))
		assert.Equal(t, InDoubleQuote, s.State())
	})
}

func TestMask(t *testing.T) {
	mask := Mask(`a"b"c`)
	assert.Equal(t, []bool{false, true, true, true, false}, mask)
}

func TestStripLineComment(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trailing comment", "x = 1; // note", "x = 1; "},
		{"url in double quotes", `const s = "http://x";`, `const s = "http://x";`},
		{"url in template", "const s = `//${a}`; // c", "const s = `//${a}`; "},
		{"escaped quote keeps literal open", `s = "a\"//b"; // c`, `s = "a\"//b"; `},
		{"whole line comment", "// gone", ""},
		{"no comment", "return a / b;", "return a / b;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripLineComment(tt.in))
		})
	}
}

func TestStructural(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"brace in string removed", `const s = "{"; {`, `const s = ; {`},
		{"line comment dropped", "if (a) { // }", "if (a) { "},
		{"inline block comment skipped", "f(/* ) */ x)", "f( x)"},
		{"unterminated block comment ends line", "a { /* }", "a { "},
		{"template braces removed", "x = `${a}`;", "x = ;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Structural(tt.in))
		})
	}
}

func TestStripBlockComments(t *testing.T) {
	t.Run("multi-line comment removed", func(t *testing.T) {
		in := "a();\n/* one\n two */\nb();"
		assert.Equal(t, "a();\n\nb();", StripBlockComments(in, true))
	})

	t.Run("comment marker inside literal kept", func(t *testing.T) {
		in := `const glob = "src/**/*.js"; /* x */`
		assert.Equal(t, `const glob = "src/**/*.js"; `, StripBlockComments(in, true))
	})

	t.Run("marker inside line comment ignored", func(t *testing.T) {
		in := "// see /* here\ncode();"
		assert.Equal(t, in, StripBlockComments(in, true))
	})

	t.Run("double slash is plain text without line comments", func(t *testing.T) {
		in := "url(http://x) /* c */"
		assert.Equal(t, "url(http://x) ", StripBlockComments(in, false))
		assert.Equal(t, in, StripBlockComments(in, true))
	})

	t.Run("unterminated comment left alone", func(t *testing.T) {
		in := "a(); /* open"
		assert.Equal(t, in, StripBlockComments(in, true))
	})

	t.Run("literal state resets at newline", func(t *testing.T) {
		in := "const s = 'open\n/* c */x"
		assert.Equal(t, "const s = 'open\nx", StripBlockComments(in, true))
	})
}
