package mcp

import (
	"fmt"
	"strings"

	"github.com/EdibleTuber/void-mcp-server/internal/fsops"
)

func formatWrite(res *fsops.WriteResult) string {
	if res.Created {
		return "Created file: " + res.Rel
	}
	return "Updated file: " + res.Rel
}

func formatEdit(res *fsops.EditResult) string {
	return fmt.Sprintf("Successfully replaced %d occurrence(s) in %s", res.Replacements, res.Rel)
}

func formatList(res *fsops.ListResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Directory: %s\n\n", res.Rel)

	if len(res.Dirs) > 0 {
		b.WriteString("Directories:\n")
		for _, d := range res.Dirs {
			fmt.Fprintf(&b, "  %s\n", d)
		}
	}
	if len(res.Files) > 0 {
		b.WriteString("\nFiles:\n")
		for _, f := range res.Files {
			fmt.Fprintf(&b, "  %s (%d bytes)\n", f.Name, f.Size)
		}
	}
	if len(res.Dirs) == 0 && len(res.Files) == 0 {
		b.WriteString("(empty directory)\n")
	}
	return b.String()
}

func formatSearch(res *fsops.SearchResult) string {
	if len(res.Matches) == 0 {
		return fmt.Sprintf("No matches found for '%s'", res.Term)
	}
	lines := make([]string, len(res.Matches))
	for i, m := range res.Matches {
		lines[i] = fmt.Sprintf("%s:%d: %s", m.Rel, m.Line, m.Text)
	}
	out := strings.Join(lines, "\n")
	if res.Omitted > 0 {
		out += fmt.Sprintf("\n\n... and %d more results", res.Omitted)
	}
	return out
}
