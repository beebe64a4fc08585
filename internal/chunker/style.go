package chunker

import (
	"strings"

	"github.com/dshills/jscontext-mcp/pkg/types"
)

// chunkStyle splits a stylesheet into rule blocks. A block ends when brace
// depth is back to zero on a line ending in "}". Small neighbours are
// merged by the same size rule as code blocks but keep the style tag.
func (c *Chunker) chunkStyle(lines []string) []types.RawBlock {
	var blocks []types.RawBlock
	depth := 0
	start := 0

	emit := func(end int) {
		content := strings.Join(lines[start:end+1], "\n")
		if strings.TrimSpace(content) != "" {
			blocks = append(blocks, types.RawBlock{
				Content:   content,
				Type:      types.ChunkStyle,
				StartLine: start + 1,
				EndLine:   end + 1,
			})
		}
		start = end + 1
	}

	for i, line := range lines {
		depth += strings.Count(line, "{") - strings.Count(line, "}")
		if depth == 0 && strings.HasSuffix(strings.TrimSpace(line), "}") {
			emit(i)
		}
	}
	if start < len(lines) {
		emit(len(lines) - 1)
	}

	return mergeBlocks(blocks, c.config.ChunkMinChars, 0, types.ChunkStyle)
}
