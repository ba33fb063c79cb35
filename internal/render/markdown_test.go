package render

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/young1lin/websearch-mcp/internal/models"
)

func TestMarkdown(t *testing.T) {
	snippet := "first line\n  second   line"
	resp := &models.SearchResponse{
		Query: "q",
		Meta:  models.Meta{Provider: "tavily", Answer: json.RawMessage(`"42\nreally"`)},
		Results: []models.NormalizedResult{
			{Title: "Go [dev]", Link: "https://go.dev", Snippet: &snippet},
			{Link: "https://example.com"},
		},
	}

	want := "- [Go \\[dev\\]](https://go.dev)\n" +
		"  first line second line\n" +
		"- [https://example.com](https://example.com)\n" +
		"\n" +
		"> 42\n" +
		"> really\n"
	assert.Equal(t, want, Markdown(resp))
}

func TestMarkdown_NoResults(t *testing.T) {
	resp := &models.SearchResponse{Query: "q", Meta: models.Meta{Provider: "serpapi"}}
	assert.Equal(t, "No results.\n", Markdown(resp))
}

func TestMarkdown_StructuredAnswer(t *testing.T) {
	resp := &models.SearchResponse{
		Query:   "q",
		Meta:    models.Meta{Provider: "tavily", Answer: json.RawMessage(`{"text":"42"}`)},
		Results: []models.NormalizedResult{{Title: "A", Link: "http://a"}},
	}
	assert.Equal(t, "- [A](http://a)\n\n> {\"text\":\"42\"}\n", Markdown(resp))
}
