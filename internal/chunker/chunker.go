package chunker

import (
	"strconv"
	"strings"

	"github.com/dshills/jscontext-mcp/internal/cleaner"
	"github.com/dshills/jscontext-mcp/pkg/types"
)

const (
	// MaxHeaderLines caps how many header lines are reinjected into a chunk
	MaxHeaderLines = 20
	// WindowLines is the size of a sliding-window chunk
	WindowLines = 50

	moreImportsMarker = "// ... more imports"
)

// Chunker splits cleaned source text into boundary-aligned blocks
type Chunker struct {
	config types.PreprocessorConfig
}

// New creates a new Chunker instance
func New(config types.PreprocessorConfig) *Chunker {
	return &Chunker{config: config}
}

// Chunk splits content into ordered blocks. ext is the file extension
// including the dot and selects stylesheet handling. Line numbers in the
// result are 1-based against content.
func (c *Chunker) Chunk(content, ext string) []types.RawBlock {
	lines := strings.Split(content, "\n")

	if c.config.ChunkStrategy == types.StrategyNone {
		return []types.RawBlock{{
			Content:   content,
			Type:      types.ChunkFile,
			StartLine: 1,
			EndLine:   len(lines),
		}}
	}

	if cleaner.IsStylesheet(ext) {
		return c.chunkStyle(lines)
	}

	return c.chunkSemantic(content, lines)
}

func (c *Chunker) chunkSemantic(content string, lines []string) []types.RawBlock {
	headerEnd := splitHeader(lines)
	header := strings.TrimSpace(strings.Join(lines[:headerEnd], "\n"))

	// Body starts at its first non-blank line so that block indexes map
	// straight back onto content lines.
	bodyStart := headerEnd
	for bodyStart < len(lines) && strings.TrimSpace(lines[bodyStart]) == "" {
		bodyStart++
	}
	body := lines[bodyStart:]

	blocks := findBlocks(body)
	if len(blocks) == 0 {
		if len(content) > c.config.ChunkMaxChars {
			return slidingWindow(lines, c.config.ChunkOverlapLines)
		}
		return []types.RawBlock{{
			Content:   content,
			Type:      types.ChunkModuleScope,
			StartLine: 1,
			EndLine:   len(lines),
		}}
	}

	blocks = MergeSmallBlocks(blocks, c.config.ChunkMinChars, len(header))

	prefix := headerPrefix(header)
	for i := range blocks {
		b := &blocks[i]
		if prefix != "" && b.Type != types.ChunkImports && b.Type != types.ChunkTypeDecl {
			b.Content = prefix + "\n\n" + b.Content
		}
		b.StartLine += bodyStart + 1
		b.EndLine += bodyStart + 1
	}
	return blocks
}

// headerPrefix returns the header as reinjected into chunks, cut to
// MaxHeaderLines with a marker when longer.
func headerPrefix(header string) string {
	if header == "" {
		return ""
	}
	lines := strings.Split(header, "\n")
	if len(lines) <= MaxHeaderLines {
		return header
	}
	return strings.Join(lines[:MaxHeaderLines], "\n") + "\n" + moreImportsMarker
}

// slidingWindow cuts lines into fixed windows that overlap by overlap lines
func slidingWindow(lines []string, overlap int) []types.RawBlock {
	step := WindowLines - overlap
	if step < 1 {
		step = 1
	}

	var blocks []types.RawBlock
	for i, part := 0, 0; i < len(lines); part++ {
		end := min(i+WindowLines, len(lines))
		blocks = append(blocks, types.RawBlock{
			Content:   strings.Join(lines[i:end], "\n"),
			Type:      types.ChunkModuleScope,
			StartLine: i + 1,
			EndLine:   end,
			Name:      "part_" + strconv.Itoa(part),
		})
		if end >= len(lines) {
			break
		}
		i += step
	}
	return blocks
}
