package preprocessor

import (
	"strings"

	"github.com/dshills/jscontext-mcp/pkg/types"
)

// maxListed caps how many names each metadata line lists
const maxListed = 10

// BuildEmbedText assembles the canonical text that is sent for embedding:
// a file line, optional export/function/class/dependency lines, the chunk
// type, a blank line and the content verbatim.
func BuildEmbedText(chunk types.CodeChunk) string {
	parts := []string{"File: " + chunk.FilePath}

	appendList := func(label string, names []string) {
		if len(names) == 0 {
			return
		}
		if len(names) > maxListed {
			names = names[:maxListed]
		}
		parts = append(parts, label+": "+strings.Join(names, ", "))
	}
	appendList("Exports", chunk.Exports)
	appendList("Functions", chunk.Functions)
	appendList("Classes", chunk.Classes)
	appendList("Dependencies", chunk.Imports)

	parts = append(parts, "Type: "+string(chunk.ChunkType), "", chunk.Content)
	return strings.Join(parts, "\n")
}
