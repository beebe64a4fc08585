package chunker

import (
	"strings"

	"github.com/dshills/jscontext-mcp/pkg/types"
)

// MergeSmallBlocks folds adjacent blocks together while both the running
// block and the next one are shorter than minChars once headerLen is added.
// Merged blocks are retagged module_scope and their names joined with ", ".
func MergeSmallBlocks(blocks []types.RawBlock, minChars, headerLen int) []types.RawBlock {
	return mergeBlocks(blocks, minChars, headerLen, types.ChunkModuleScope)
}

func mergeBlocks(blocks []types.RawBlock, minChars, headerLen int, mergedType types.ChunkType) []types.RawBlock {
	if len(blocks) == 0 {
		return blocks
	}

	merged := make([]types.RawBlock, 0, len(blocks))
	acc := blocks[0]
	for _, next := range blocks[1:] {
		if len(acc.Content)+headerLen < minChars && len(next.Content)+headerLen < minChars {
			acc = joinBlocks(acc, next, mergedType)
			continue
		}
		merged = append(merged, acc)
		acc = next
	}
	return append(merged, acc)
}

func joinBlocks(a, b types.RawBlock, mergedType types.ChunkType) types.RawBlock {
	names := make([]string, 0, 2)
	for _, n := range []string{a.Name, b.Name} {
		if n != "" {
			names = append(names, n)
		}
	}
	return types.RawBlock{
		Content:   a.Content + "\n\n" + b.Content,
		Type:      mergedType,
		StartLine: a.StartLine,
		EndLine:   b.EndLine,
		Name:      strings.Join(names, ", "),
	}
}
