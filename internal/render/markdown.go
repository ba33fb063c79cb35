// Package render formats search responses for human readers.
package render

import (
	"fmt"
	"strings"

	"github.com/young1lin/websearch-mcp/internal/models"
)

// Markdown renders a response as a bullet list of links, followed by the
// provider's synthesized answer as a quote when there is one.
func Markdown(resp *models.SearchResponse) string {
	var b strings.Builder

	if len(resp.Results) == 0 {
		b.WriteString("No results.\n")
	}
	for _, r := range resp.Results {
		title := r.Title
		if title == "" {
			title = r.Link
		}
		fmt.Fprintf(&b, "- [%s](%s)\n", escapeLinkText(title), r.Link)
		if r.Snippet != nil && strings.TrimSpace(*r.Snippet) != "" {
			fmt.Fprintf(&b, "  %s\n", oneLine(*r.Snippet))
		}
	}

	if answer := strings.TrimSpace(resp.AnswerText()); answer != "" {
		b.WriteString("\n")
		for _, line := range strings.Split(answer, "\n") {
			fmt.Fprintf(&b, "> %s\n", line)
		}
	}
	return b.String()
}

func escapeLinkText(s string) string {
	return strings.NewReplacer("[", `\[`, "]", `\]`).Replace(s)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
