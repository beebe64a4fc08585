package chunker

import (
	"regexp"
	"strings"

	"github.com/dshills/jscontext-mcp/internal/scanner"
	"github.com/dshills/jscontext-mcp/pkg/types"
)

// boundary is one row of the declaration table: a line matching pattern
// starts a block of the given type, named by the first capture group.
type boundary struct {
	pattern   *regexp.Regexp
	blockType types.ChunkType
}

// boundaries is evaluated top to bottom against the trimmed line; the
// first match wins. Uppercase-initial names are components.
var boundaries = []boundary{
	// export default function / class
	{regexp.MustCompile(`^export\s+default\s+(?:async\s+)?function\s+([A-Z]\w*)`), types.ChunkComponent},
	{regexp.MustCompile(`^export\s+default\s+(?:async\s+)?function\s+(\w+)`), types.ChunkFunction},
	{regexp.MustCompile(`^export\s+default\s+class\s+(\w+)`), types.ChunkClass},

	// export function / class
	{regexp.MustCompile(`^export\s+(?:async\s+)?function\s+([A-Z]\w*)`), types.ChunkComponent},
	{regexp.MustCompile(`^export\s+(?:async\s+)?function\s+(\w+)`), types.ChunkFunction},
	{regexp.MustCompile(`^export\s+(?:abstract\s+)?class\s+(\w+)`), types.ChunkClass},

	// export const / let / var
	{regexp.MustCompile(`^export\s+(?:const|let|var)\s+([A-Z]\w*)\s*[:=]`), types.ChunkComponent},
	{regexp.MustCompile(`^export\s+(?:const|let|var)\s+(\w+)\s*[:=]`), types.ChunkModuleScope},

	// bare function / class / const arrow
	{regexp.MustCompile(`^(?:async\s+)?function\s+([A-Z]\w*)\s*\(`), types.ChunkComponent},
	{regexp.MustCompile(`^(?:async\s+)?function\s+(\w+)\s*\(`), types.ChunkFunction},
	{regexp.MustCompile(`^(?:abstract\s+)?class\s+(\w+)`), types.ChunkClass},
	{regexp.MustCompile(`^(?:const|let|var)\s+([A-Z]\w*)\s*[:=]\s*(?:\([^)]*\)|[^=])*\s*=>\s*(?:\{|\()`), types.ChunkComponent},
	{regexp.MustCompile(`^(?:const|let|var)\s+(\w+)\s*[:=]\s*(?:async\s+)?(?:\([^)]*\)|[^=])*\s*=>\s*\{`), types.ChunkFunction},
	{regexp.MustCompile(`^(?:const|let|var)\s+(\w+)\s*[:=]\s*(?:async\s+)?function`), types.ChunkFunction},

	// interface / type / enum
	{regexp.MustCompile(`^export\s+(?:interface|type)\s+(\w+)`), types.ChunkTypeDecl},
	{regexp.MustCompile(`^(?:interface|type)\s+(\w+)`), types.ChunkTypeDecl},
	{regexp.MustCompile(`^(?:export\s+)?(?:declare\s+)?(?:const\s+)?enum\s+(\w+)`), types.ChunkTypeDecl},
}

// matchBoundary returns the block type and name for a declaration line
func matchBoundary(trimmed string) (types.ChunkType, string, bool) {
	for _, b := range boundaries {
		if m := b.pattern.FindStringSubmatch(trimmed); m != nil {
			return b.blockType, m[1], true
		}
	}
	if isExportLine(trimmed) {
		return types.ChunkModuleScope, "", true
	}
	return "", "", false
}

func isExportLine(trimmed string) bool {
	return strings.HasPrefix(trimmed, "export ") || strings.HasPrefix(trimmed, "module.exports")
}

// findBlocks walks body lines and returns one block per top-level
// declaration, with 0-based line indexes into body. Lines that neither
// start a declaration nor export anything are skipped.
func findBlocks(body []string) []types.RawBlock {
	var blocks []types.RawBlock

	for i := 0; i < len(body); {
		trimmed := strings.TrimSpace(body[i])
		if trimmed == "" {
			i++
			continue
		}

		blockType, name, ok := matchBoundary(trimmed)
		if !ok {
			i++
			continue
		}

		end := findBlockEnd(body, i)
		blocks = append(blocks, types.RawBlock{
			Content:   strings.Join(body[i:end+1], "\n"),
			Type:      blockType,
			StartLine: i,
			EndLine:   end,
			Name:      name,
		})
		i = end + 1
	}
	return blocks
}

// findBlockEnd tracks brace and paren depth over the structural text of
// each line, starting at start. The block closes on the first line where
// a brace has opened, brace depth is back to zero and paren depth is not
// positive. A declaration that never opens a brace runs to the last line.
func findBlockEnd(lines []string, start int) int {
	depth, parens := 0, 0
	opened := false

	for i := start; i < len(lines); i++ {
		structural := scanner.Structural(lines[i])
		for j := 0; j < len(structural); j++ {
			switch structural[j] {
			case '(':
				parens++
			case ')':
				parens--
			case '{':
				depth++
				opened = true
			case '}':
				depth--
			}
		}

		if opened && depth == 0 && parens <= 0 {
			return i
		}
	}
	return len(lines) - 1
}

