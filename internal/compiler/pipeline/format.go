package pipeline

import (
	"fmt"
	"strings"
)

// FormatDiagnostic renders d against source the way a terminal compiler
// front-end does: the failing line with the line before and after it for
// context, and an arrow pointing at the message.
func FormatDiagnostic(source string, d Diagnostic) string {
	lines := strings.Split(source, "\n")

	var b strings.Builder
	fmt.Fprintf(&b, "%s error at %d:%d\n", strings.ToUpper(string(d.Stage)), d.Line, d.Column)

	start := d.Line - 1
	if start < 1 {
		start = 1
	}
	end := d.Line + 1
	if end > len(lines) {
		end = len(lines)
	}

	for n := start; n <= end; n++ {
		text := ""
		if n-1 < len(lines) {
			text = lines[n-1]
		}
		if n == d.Line {
			fmt.Fprintf(&b, "%4d | %s\n", n, text)
			fmt.Fprintf(&b, "     | %s^ %s\n", strings.Repeat(" ", max(d.Column-1, 0)), d.Message)
		} else {
			fmt.Fprintf(&b, "%4d | %s\n", n, text)
		}
	}

	return b.String()
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
