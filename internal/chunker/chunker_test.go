package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/jscontext-mcp/pkg/types"
)

func defaultChunker() *Chunker {
	return New(types.DefaultPreprocessorConfig())
}

func noMergeChunker() *Chunker {
	cfg := types.DefaultPreprocessorConfig()
	cfg.ChunkMinChars = 0
	return New(cfg)
}

func TestChunkSingleDefaultComponent(t *testing.T) {
	content := "export default function Foo(){ return <div/>; }"

	blocks := defaultChunker().Chunk(content, ".jsx")

	require.Len(t, blocks, 1)
	assert.Equal(t, types.ChunkComponent, blocks[0].Type)
	assert.Equal(t, "Foo", blocks[0].Name)
	assert.Equal(t, content, blocks[0].Content, "no header should be reinjected")
	assert.Equal(t, 1, blocks[0].StartLine)
	assert.Equal(t, 1, blocks[0].EndLine)
}

func TestChunkHeaderReinjection(t *testing.T) {
	content := `import React from 'react';
import { api } from '@/api';

export function loadUsers() {
  return api.get('/users');
}`

	blocks := defaultChunker().Chunk(content, ".js")

	require.Len(t, blocks, 1)
	header := "import React from 'react';\nimport { api } from '@/api';"
	assert.True(t, strings.HasPrefix(blocks[0].Content, header+"\n\nexport function loadUsers()"))
	assert.Equal(t, types.ChunkFunction, blocks[0].Type)
	assert.Equal(t, 4, blocks[0].StartLine)
	assert.Equal(t, 6, blocks[0].EndLine)
}

func TestChunkHeaderTruncatedAfterTwentyLines(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 25; i++ {
		b.WriteString("import m" + string(rune('a'+i)) + " from './m';\n")
	}
	b.WriteString("export function run() {\n  return 1;\n}")

	blocks := defaultChunker().Chunk(b.String(), ".ts")

	require.Len(t, blocks, 1)
	parts := strings.SplitN(blocks[0].Content, "\n\n", 2)
	require.Len(t, parts, 2)
	headerLines := strings.Split(parts[0], "\n")
	assert.Len(t, headerLines, MaxHeaderLines+1)
	assert.Equal(t, moreImportsMarker, headerLines[MaxHeaderLines])
	assert.Equal(t, 26, blocks[0].StartLine)
}

func TestChunkTypeBlocksSkipHeader(t *testing.T) {
	content := "import { X } from './x';\n\nexport interface Props {\n  x: X;\n}\n"

	blocks := noMergeChunker().Chunk(strings.TrimSpace(content), ".ts")

	require.Len(t, blocks, 1)
	assert.Equal(t, types.ChunkTypeDecl, blocks[0].Type)
	assert.Equal(t, "Props", blocks[0].Name)
	assert.True(t, strings.HasPrefix(blocks[0].Content, "export interface Props"))
}

func TestChunkLineCoverage(t *testing.T) {
	content := `import a from './a';
function one() {
  return 1;
}
const two = () => {
  return 2;
};
export class Three {
  run() {}
}
type Four = { x: number };`

	blocks := noMergeChunker().Chunk(content, ".ts")
	require.Len(t, blocks, 4)

	wantTypes := []types.ChunkType{types.ChunkFunction, types.ChunkFunction, types.ChunkClass, types.ChunkTypeDecl}
	for i, b := range blocks {
		assert.Equal(t, wantTypes[i], b.Type, "block %d", i)
	}

	// Body is lines 2..11; every line belongs to exactly one block, in order
	next := 2
	for _, b := range blocks {
		assert.LessOrEqual(t, b.StartLine, b.EndLine)
		assert.Equal(t, next, b.StartLine)
		next = b.EndLine + 1
	}
	assert.Equal(t, 12, next)
}

func TestChunkMergesSmallNeighbours(t *testing.T) {
	body := strings.Repeat("  doWork();\n", 30)
	content := "function a() {}\nfunction b() {}\nfunction c() {\n" + body + "}\nfunction d() {}"

	blocks := defaultChunker().Chunk(content, ".js")

	require.Len(t, blocks, 3)
	assert.Equal(t, types.ChunkModuleScope, blocks[0].Type)
	assert.Equal(t, "a, b", blocks[0].Name)
	assert.Equal(t, "function a() {}\n\nfunction b() {}", blocks[0].Content)
	assert.Equal(t, 1, blocks[0].StartLine)
	assert.Equal(t, 2, blocks[0].EndLine)

	assert.Equal(t, types.ChunkFunction, blocks[1].Type)
	assert.Equal(t, "c", blocks[1].Name)
	assert.Equal(t, 3, blocks[1].StartLine)
	assert.Equal(t, 34, blocks[1].EndLine)

	assert.Equal(t, "d", blocks[2].Name)
	assert.Equal(t, 35, blocks[2].StartLine)
}

func TestMergeSmallBlocksThreshold(t *testing.T) {
	const minChars, headerLen = 100, 30

	sizes := []int{10, 50, 300, 20, 20, 20, 500, 5, 69, 71, 1}
	blocks := make([]types.RawBlock, len(sizes))
	for i, n := range sizes {
		blocks[i] = types.RawBlock{
			Content:   strings.Repeat("x", n),
			Type:      types.ChunkFunction,
			StartLine: i + 1,
			EndLine:   i + 1,
			Name:      "f" + string(rune('a'+i)),
		}
	}

	merged := MergeSmallBlocks(blocks, minChars, headerLen)

	small := func(b types.RawBlock) bool { return len(b.Content)+headerLen < minChars }
	for i := 1; i < len(merged); i++ {
		assert.False(t, small(merged[i-1]) && small(merged[i]),
			"blocks %d and %d are both below the threshold", i-1, i)
	}

	// Ranges stay ordered and contiguous
	for i := 1; i < len(merged); i++ {
		assert.Equal(t, merged[i-1].EndLine+1, merged[i].StartLine)
	}
	assert.Equal(t, 1, merged[0].StartLine)
	assert.Equal(t, len(sizes), merged[len(merged)-1].EndLine)
}

func TestMergeSmallBlocksEmpty(t *testing.T) {
	assert.Empty(t, MergeSmallBlocks(nil, 200, 0))
}

func TestChunkSlidingWindowFallback(t *testing.T) {
	lines := make([]string, 120)
	for i := range lines {
		lines[i] = "value = value + 1;"
	}
	content := strings.Join(lines, "\n")

	blocks := defaultChunker().Chunk(content, ".js")

	require.Len(t, blocks, 3)
	want := [][2]int{{1, 50}, {48, 97}, {95, 120}}
	for i, b := range blocks {
		assert.Equal(t, types.ChunkModuleScope, b.Type)
		assert.Equal(t, "part_"+string(rune('0'+i)), b.Name)
		assert.Equal(t, want[i][0], b.StartLine)
		assert.Equal(t, want[i][1], b.EndLine)
	}
}

func TestChunkWholeFileWhenNoBoundaries(t *testing.T) {
	content := "setup();\nrun();"

	blocks := defaultChunker().Chunk(content, ".js")

	require.Len(t, blocks, 1)
	assert.Equal(t, types.ChunkModuleScope, blocks[0].Type)
	assert.Equal(t, content, blocks[0].Content)
	assert.Equal(t, 1, blocks[0].StartLine)
	assert.Equal(t, 2, blocks[0].EndLine)
}

func TestChunkStrategyNone(t *testing.T) {
	cfg := types.DefaultPreprocessorConfig()
	cfg.ChunkStrategy = types.StrategyNone
	content := "export function a() {}\nexport function b() {}"

	blocks := New(cfg).Chunk(content, ".js")

	require.Len(t, blocks, 1)
	assert.Equal(t, types.ChunkFile, blocks[0].Type)
	assert.Equal(t, content, blocks[0].Content)
	assert.Equal(t, 2, blocks[0].EndLine)
}

func TestChunkStylesheet(t *testing.T) {
	content := ".a {\n  color: red;\n}\n.b { color: blue; }"

	t.Run("one block per rule", func(t *testing.T) {
		blocks := noMergeChunker().Chunk(content, ".less")
		require.Len(t, blocks, 2)
		assert.Equal(t, types.ChunkStyle, blocks[0].Type)
		assert.Equal(t, 1, blocks[0].StartLine)
		assert.Equal(t, 3, blocks[0].EndLine)
		assert.Equal(t, ".b { color: blue; }", blocks[1].Content)
		assert.Empty(t, blocks[1].Name)
	})

	t.Run("small rules merge and keep style tag", func(t *testing.T) {
		blocks := defaultChunker().Chunk(content, ".css")
		require.Len(t, blocks, 1)
		assert.Equal(t, types.ChunkStyle, blocks[0].Type)
		assert.Equal(t, 1, blocks[0].StartLine)
		assert.Equal(t, 4, blocks[0].EndLine)
	})
}

// Top-level statements that are neither declarations nor exports are not
// part of any chunk.
func TestChunkDropsOrphanStatements(t *testing.T) {
	content := "function one() {\n  return 1;\n}\nsetup();\nfunction two() {\n  return 2;\n}"

	blocks := noMergeChunker().Chunk(content, ".js")

	require.Len(t, blocks, 2)
	assert.Equal(t, 3, blocks[0].EndLine)
	assert.Equal(t, 5, blocks[1].StartLine)
	for _, b := range blocks {
		assert.NotContains(t, b.Content, "setup();")
	}
}

func TestChunkBlockEndIgnoresLiteralsAndInnerArrows(t *testing.T) {
	content := `export function f() {
  const s = "}";
  const t = '{' + ` + "`}`" + `;
  return () => {
    return s;
  };
}`

	blocks := noMergeChunker().Chunk(content, ".js")

	require.Len(t, blocks, 1)
	assert.Equal(t, 1, blocks[0].StartLine)
	assert.Equal(t, 7, blocks[0].EndLine)
}

// A declaration that never opens a brace has no end of its own: it runs
// until the first brace of a later declaration closes, or to the end of the
// file. Like orphan statements this is a known heuristic gap.
func TestChunkDeclarationsWithoutBraces(t *testing.T) {
	t.Run("absorbs following declaration", func(t *testing.T) {
		content := "export const API = '/api';\nfunction load() {\n  return 1;\n}"

		blocks := noMergeChunker().Chunk(content, ".js")

		require.Len(t, blocks, 1)
		assert.Equal(t, types.ChunkComponent, blocks[0].Type)
		assert.Equal(t, "API", blocks[0].Name)
		assert.Equal(t, 1, blocks[0].StartLine)
		assert.Equal(t, 4, blocks[0].EndLine)
		assert.Contains(t, blocks[0].Content, "function load()")
	})

	t.Run("runs to end of file", func(t *testing.T) {
		content := "export const a = 1;\nexport const b = 2\nsetup();"

		blocks := noMergeChunker().Chunk(content, ".js")

		require.Len(t, blocks, 1)
		assert.Equal(t, types.ChunkModuleScope, blocks[0].Type)
		assert.Equal(t, "a", blocks[0].Name)
		assert.Equal(t, 3, blocks[0].EndLine)
	})
}

func TestChunkMultiLineImport(t *testing.T) {
	content := "import {\n  a,\n  b,\n} from './x';\nexport function f() {\n  return a + b;\n}"

	blocks := noMergeChunker().Chunk(content, ".js")

	require.Len(t, blocks, 1)
	assert.Equal(t, 5, blocks[0].StartLine)
	assert.True(t, strings.HasPrefix(blocks[0].Content, "import {\n  a,\n  b,\n} from './x';\n\n"))
}

func TestMatchBoundaryPriority(t *testing.T) {
	tests := []struct {
		line     string
		wantType types.ChunkType
		wantName string
	}{
		{"export default function App() {", types.ChunkComponent, "App"},
		{"export default async function load() {", types.ChunkFunction, "load"},
		{"export default class Store {", types.ChunkClass, "Store"},
		{"export function Button(props) {", types.ChunkComponent, "Button"},
		{"export async function fetchAll() {", types.ChunkFunction, "fetchAll"},
		{"export class Api {", types.ChunkClass, "Api"},
		{"export const Layout = ({ children }) => (", types.ChunkComponent, "Layout"},
		{"export const routes = [", types.ChunkModuleScope, "routes"},
		{"function Modal() {", types.ChunkComponent, "Modal"},
		{"async function save(x) {", types.ChunkFunction, "save"},
		{"class Cache {", types.ChunkClass, "Cache"},
		{"const Card = (props) => {", types.ChunkComponent, "Card"},
		{"const handle = async (e) => {", types.ChunkFunction, "handle"},
		{"const legacy = function () {", types.ChunkFunction, "legacy"},
		{"export type Props = {", types.ChunkTypeDecl, "Props"},
		{"interface State {", types.ChunkTypeDecl, "State"},
		{"export enum Color {", types.ChunkTypeDecl, "Color"},
		{"module.exports = {", types.ChunkModuleScope, ""},
		{"export * from './x';", types.ChunkModuleScope, ""},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			gotType, gotName, ok := matchBoundary(tt.line)
			require.True(t, ok)
			assert.Equal(t, tt.wantType, gotType)
			assert.Equal(t, tt.wantName, gotName)
		})
	}

	_, _, ok := matchBoundary("setup();")
	assert.False(t, ok)
}

func TestSplitHeader(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"no imports", "const a = 1;", 0},
		{"imports then blank", "import a from 'a';\n\nrun();", 2},
		{"require binding", "const x = require('x')\nrun();", 1},
		{"directive before imports", "'use strict';\nimport a from 'a';\nrun();", 2},
		{"directive alone", "'use client';\nrun();", 0},
		{"imports later in file are not a header", "run();\nimport a from 'a';", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitHeader(strings.Split(tt.content, "\n")))
		})
	}
}

func BenchmarkChunk(b *testing.B) {
	var sb strings.Builder
	sb.WriteString("import React from 'react';\nimport { api } from '@/api';\n\n")
	for i := 0; i < 50; i++ {
		sb.WriteString("export function handler() {\n  const s = \"{}\";\n  return api.get(s);\n}\n")
	}
	content := sb.String()
	c := defaultChunker()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Chunk(content, ".js")
	}
}
