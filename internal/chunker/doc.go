// Package chunker splits cleaned JavaScript, TypeScript and stylesheet
// source into boundary-aligned blocks.
//
// # Basic Usage
//
//	c := chunker.New(types.DefaultPreprocessorConfig())
//	for _, b := range c.Chunk(cleaned, ".tsx") {
//	    fmt.Printf("%s %s lines %d-%d\n", b.Type, b.Name, b.StartLine, b.EndLine)
//	}
//
// # Semantic Strategy
//
// The file is split into an import header and a body. The body is scanned
// line by line; a line matching a declaration pattern (export default,
// exported or bare function/class/arrow, interface, type, enum) starts a
// block, which runs until brace and paren depth return to zero. Depth is
// counted on structural text only, so braces inside strings, template
// literals and comments never close a block.
//
// Adjacent blocks that are both smaller than ChunkMinChars are merged into
// a module_scope block. The header, capped at MaxHeaderLines, is then
// prefixed to every block except imports and type blocks.
//
// A body without any declaration becomes a single module_scope block, or
// fixed windows of WindowLines lines when it exceeds ChunkMaxChars.
//
// Lines between blocks that start no declaration are not emitted.
//
// # Stylesheets
//
// .css, .less and .scss files are split into rule blocks by brace depth
// and merged by the same size rule, keeping the style type.
package chunker
