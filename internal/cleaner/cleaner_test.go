package cleaner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dshills/jscontext-mcp/pkg/types"
)

func TestRemoveComments(t *testing.T) {
	t.Run("literal safety", func(t *testing.T) {
		inputs := []string{
			`const s = "http://x";`,
			`const glob = 'src/**/*.ts';`,
			"const tpl = `/* not a comment */ // nor this`;",
		}
		for _, in := range inputs {
			assert.Equal(t, in, RemoveComments(in, ".js"), in)
		}
	})

	t.Run("block and line comments removed", func(t *testing.T) {
		in := "/* header\n * docs\n */\nconst a = 1; // trailing\nconst b = 2;"
		assert.Equal(t, "\nconst a = 1; \nconst b = 2;", RemoveComments(in, ".ts"))
	})

	t.Run("stylesheets keep double slash", func(t *testing.T) {
		in := ".a { background: url(http://x/y.png); } /* c */"
		assert.Equal(t, ".a { background: url(http://x/y.png); } ", RemoveComments(in, ".less"))
	})
}

func TestRemoveDebugStatements(t *testing.T) {
	in := "a();\n  console.log('x', y);\nConsole.Warn(z)\ndebugger;\nalert(1)\nfoo(); console.log(1);\nb();"
	want := "a();\nfoo(); console.log(1);\nb();"
	assert.Equal(t, want, RemoveDebugStatements(in))
}

func TestRemoveLintDirectives(t *testing.T) {
	in := "// eslint-disable-next-line no-console\nx(); // TODO: fix\n/* eslint-disable */\n// @ts-ignore\ny();"
	want := "\nx(); \n\n\ny();"
	assert.Equal(t, want, RemoveLintDirectives(in))
}

func TestNormalizeWhitespace(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapse blank runs", "a\n\n\n\nb", "a\n\nb"},
		{"trim right", "a  \t\nb ", "a\nb"},
		{"drop leading and trailing blanks", "\n\n  \na\n\n", "a"},
		{"whitespace-only lines count as blank", "a\n  \n  \n  \nb", "a\n\nb"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeWhitespace(tt.in))
		})
	}
}

func TestCleanIdempotent(t *testing.T) {
	cfg := types.DefaultPreprocessorConfig()
	c := New(cfg)

	inputs := []string{
		"import React from 'react';\n\n\n\n// comment\nexport default function App() {\n  console.log('x');\n  return <div className=\"a\">{'//'}</div>; // jsx\n}\n\n\n",
		"/* a */ /* b */\n\n\n   \nconst url = \"http://example.com\"; /* c */\n",
		".a {\n  color: red; /* red */\n}\n\n\n\n.b { }\n",
		"  \n\t\nlet x = `multi\n// line`;\n",
		"// TODO: later\n// eslint-disable\nfoo();",
	}

	for _, in := range inputs {
		for _, ext := range []string{".js", ".css"} {
			once := c.Clean(in, ext)
			assert.Equal(t, once, c.Clean(once, ext), "input %q ext %s", in, ext)
		}
	}
}

func TestCleanStagesToggle(t *testing.T) {
	in := "// c\nconsole.log(1);\nx();\n\n\n"

	var cfg types.PreprocessorConfig
	assert.Equal(t, in, New(cfg).Clean(in, ".js"), "all stages off")

	cfg.RemoveComments = true
	assert.Equal(t, "\nconsole.log(1);\nx();\n\n\n", New(cfg).Clean(in, ".js"))

	cfg.RemoveDebugStatements = true
	cfg.NormalizeWhitespace = true
	assert.Equal(t, "x();", New(cfg).Clean(in, ".js"))
}

func TestIsStylesheet(t *testing.T) {
	assert.True(t, IsStylesheet(".css"))
	assert.True(t, IsStylesheet(".LESS"))
	assert.True(t, IsStylesheet(".scss"))
	assert.False(t, IsStylesheet(".vue"))
	assert.False(t, IsStylesheet(""))
}
