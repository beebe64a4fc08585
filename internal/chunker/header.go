package chunker

import "strings"

// splitHeader returns the number of leading lines that form the import
// header. The header must start at the top of the file; a directive
// prologue such as "use strict" may precede the imports. Blank lines
// inside the run are included, and an import statement that does not
// end on its own line pulls in the following lines until one does.
func splitHeader(lines []string) int {
	end := 0
	sawImport := false
	continued := false

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		if continued {
			end = i + 1
			continued = !statementClosed(trimmed)
			continue
		}

		if trimmed == "" {
			if end > 0 {
				end = i + 1
			}
			continue
		}

		if isImportLine(trimmed) {
			sawImport = true
			end = i + 1
			continued = !statementClosed(trimmed)
			continue
		}

		if !sawImport && isDirective(trimmed) {
			end = i + 1
			continue
		}
		break
	}

	if !sawImport {
		return 0
	}
	return end
}

func isImportLine(trimmed string) bool {
	return strings.HasPrefix(trimmed, "import ") ||
		strings.HasPrefix(trimmed, "import{") ||
		strings.HasPrefix(trimmed, "from ") ||
		strings.HasPrefix(trimmed, "require(") ||
		(isBinding(trimmed) && strings.Contains(trimmed, "require("))
}

func isBinding(trimmed string) bool {
	return strings.HasPrefix(trimmed, "const ") ||
		strings.HasPrefix(trimmed, "let ") ||
		strings.HasPrefix(trimmed, "var ")
}

func isDirective(trimmed string) bool {
	d := strings.TrimSuffix(trimmed, ";")
	return d == `'use strict'` || d == `"use strict"` ||
		d == `'use client'` || d == `"use client"`
}

// statementClosed reports whether an import line ends its statement
func statementClosed(trimmed string) bool {
	return strings.HasSuffix(trimmed, ";") ||
		strings.HasSuffix(trimmed, "'") ||
		strings.HasSuffix(trimmed, `"`) ||
		(strings.Contains(trimmed, "require(") && strings.HasSuffix(trimmed, ")"))
}
