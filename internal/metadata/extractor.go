// Package metadata derives symbol lists (functions, classes, components,
// local imports, exports and type names) from raw front-end source text.
//
// Extraction is pattern based and runs on the uncleaned file. Every list is
// deduplicated and sorted, and is empty rather than nil when nothing matches.
package metadata

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/dshills/jscontext-mcp/pkg/types"
)

var (
	functionPatterns = compileAll(
		`(?m)(?:export\s+)?(?:async\s+)?function\s+(\w+)`,
		`(?m)(?:export\s+)?(?:const|let|var)\s+(\w+)\s*=\s*(?:async\s+)?\(?[^)]*\)?\s*=>`,
		`(?m)(?:export\s+)?(?:const|let|var)\s+(\w+)\s*=\s*function`,
	)

	classPatterns = compileAll(
		`(?m)(?:export\s+)?class\s+(\w+)`,
	)

	componentPatterns = compileAll(
		`(?m)(?:export\s+(?:default\s+)?)?(?:async\s+)?function\s+([A-Z]\w*)`,
		`(?m)(?:export\s+)?(?:const|let)\s+([A-Z]\w*)\s*[:=]`,
	)

	importPatterns = compileAll(
		`(?m)import\s+.*?\s+from\s+['"](.+?)['"]`,
		`(?m)import\s+['"](.+?)['"]`,
		`(?m)require\s*\(\s*['"](.+?)['"]\s*\)`,
	)

	exportPatterns = compileAll(
		`(?m)export\s+default\s+(?:function|class|const|let|var)?\s*(\w+)`,
		`(?m)export\s+(?:function|class|const|let|var)\s+(\w+)`,
	)

	exportListPattern = regexp.MustCompile(`export\s*\{([^}]+)\}`)

	typePatterns = compileAll(
		`(?m)(?:export\s+)?(?:interface|type)\s+(\w+)`,
		`(?m)(?:export\s+)?(?:const\s+)?enum\s+(\w+)`,
	)
)

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		out[i] = regexp.MustCompile(expr)
	}
	return out
}

// Extractor pulls symbol metadata out of source text
type Extractor struct {
	config types.PreprocessorConfig
}

// New creates an Extractor. When config.ExtractMetadata is false, Extract
// always returns empty lists.
func New(config types.PreprocessorConfig) *Extractor {
	return &Extractor{config: config}
}

// Extract returns the symbol lists found in content
func (e *Extractor) Extract(content string) types.Metadata {
	if !e.config.ExtractMetadata {
		return types.EmptyMetadata()
	}

	return types.Metadata{
		Functions:  collect(content, functionPatterns, nil),
		Classes:    collect(content, classPatterns, nil),
		Components: collect(content, componentPatterns, startsUpper),
		Imports:    collect(content, importPatterns, isLocalImport),
		Exports:    extractExports(content),
		Types:      collect(content, typePatterns, nil),
	}
}

// collect runs every pattern over content and gathers the first capture
// group of each match that passes keep.
func collect(content string, patterns []*regexp.Regexp, keep func(string) bool) []string {
	set := make(map[string]struct{})
	for _, p := range patterns {
		for _, m := range p.FindAllStringSubmatch(content, -1) {
			name := m[1]
			if name == "" || (keep != nil && !keep(name)) {
				continue
			}
			set[name] = struct{}{}
		}
	}
	return sortedKeys(set)
}

func extractExports(content string) []string {
	set := make(map[string]struct{})
	for _, name := range collect(content, exportPatterns, nil) {
		set[name] = struct{}{}
	}
	for _, m := range exportListPattern.FindAllStringSubmatch(content, -1) {
		for _, part := range strings.Split(m[1], ",") {
			if name := strings.TrimSpace(part); name != "" {
				set[name] = struct{}{}
			}
		}
	}
	return sortedKeys(set)
}

// isLocalImport keeps relative and alias-rooted specifiers ("./x", "@/x",
// "@scope/x") and drops bare package names.
func isLocalImport(source string) bool {
	return strings.HasPrefix(source, ".") || strings.HasPrefix(source, "@")
}

func startsUpper(name string) bool {
	for _, r := range name {
		return unicode.IsUpper(r)
	}
	return false
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
