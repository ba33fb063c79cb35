package search

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/young1lin/websearch-mcp/internal/models"
)

// Normalize reduces a raw provider payload to the uniform response shape.
// Missing or mistyped fields produce empty or partial results, never errors,
// and results keep the provider's order.
func Normalize(req *models.SearchRequest, raw RawResult) *models.SearchResponse {
	resp := &models.SearchResponse{
		Query:   req.Query,
		Meta:    models.Meta{Provider: req.Provider.String()},
		Results: []models.NormalizedResult{},
	}

	data := gjson.ParseBytes(raw)
	switch req.Provider {
	case models.ProviderTavily:
		normalizeTavily(data, resp)
	case models.ProviderSerpAPI:
		normalizeSerpAPI(data, req.SerpAPI, resp)
	}
	return resp
}

func normalizeTavily(data gjson.Result, resp *models.SearchResponse) {
	results := data.Get("results")
	if results.IsArray() {
		for _, r := range results.Array() {
			link := firstTruthy(r.Get("url"), r.Get("link"))
			if !truthy(link) {
				continue
			}
			item := models.NormalizedResult{
				Title: firstTruthy(r.Get("title"), r.Get("url")).String(),
				Link:  link.String(),
			}
			if content := r.Get("content"); content.Type == gjson.String {
				item.Snippet = stringPtr(content.Str)
			}
			resp.Results = append(resp.Results, item)
		}
	}

	if answer := data.Get("answer"); truthy(answer) {
		resp.Answer = json.RawMessage(answer.Raw)
	}
}

func normalizeSerpAPI(data gjson.Result, opts models.SerpAPIOptions, resp *models.SearchResponse) {
	organic := data.Get("organic_results")
	if organic.IsArray() {
		for _, r := range organic.Array() {
			title, link := r.Get("title"), r.Get("link")
			if !truthy(title) || !truthy(link) {
				continue
			}
			item := models.NormalizedResult{Title: title.String(), Link: link.String()}
			if snippet := r.Get("snippet"); truthy(snippet) {
				item.Snippet = stringPtr(snippet.String())
			} else if words := r.Get("snippet_highlighted_words"); words.IsArray() {
				parts := make([]string, 0, len(words.Array()))
				for _, w := range words.Array() {
					parts = append(parts, w.String())
				}
				item.Snippet = stringPtr(strings.Join(parts, " "))
			}
			resp.Results = append(resp.Results, item)
		}
	}

	// Some engines answer with "items" instead of "organic_results".
	if items := data.Get("items"); len(resp.Results) == 0 && items.IsArray() {
		for _, r := range items.Array() {
			title, link := r.Get("title"), r.Get("link")
			if !truthy(title) || !truthy(link) {
				continue
			}
			item := models.NormalizedResult{Title: title.String(), Link: link.String()}
			if snippet := r.Get("snippet"); snippet.Exists() && snippet.Type != gjson.Null {
				item.Snippet = stringPtr(snippet.String())
			}
			resp.Results = append(resp.Results, item)
		}
	}

	engine := opts.Engine
	if engine == "" {
		engine = DefaultSerpAPIEngine
	}
	if e := data.Get("search_parameters.engine"); e.Exists() && e.Type != gjson.Null {
		engine = e.String()
	}
	resp.Engine = engine
	if opts.Location != "" {
		resp.Location = opts.Location
	}
}

// truthy mirrors JSON truthiness: null, false, 0 and "" are false.
func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.String:
		return r.Str != ""
	case gjson.Number:
		return r.Num != 0
	case gjson.True, gjson.JSON:
		return true
	default:
		return false
	}
}

func firstTruthy(candidates ...gjson.Result) gjson.Result {
	for _, c := range candidates {
		if truthy(c) {
			return c
		}
	}
	return gjson.Result{}
}

func stringPtr(s string) *string {
	return &s
}
