package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Provider identifies a search backend.
type Provider int

const (
	ProviderTavily Provider = iota
	ProviderSerpAPI
)

// Providers lists every supported backend in declaration order.
var Providers = []Provider{ProviderTavily, ProviderSerpAPI}

// ParseProvider resolves a provider name, case-insensitively.
func ParseProvider(name string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "tavily":
		return ProviderTavily, nil
	case "serpapi":
		return ProviderSerpAPI, nil
	default:
		return 0, fmt.Errorf("unknown provider: %q", name)
	}
}

// String returns the wire name used in tool arguments and responses.
func (p Provider) String() string {
	switch p {
	case ProviderTavily:
		return "tavily"
	case ProviderSerpAPI:
		return "serpapi"
	default:
		return fmt.Sprintf("provider(%d)", int(p))
	}
}

// DisplayName is the name used in provider error messages.
func (p Provider) DisplayName() string {
	switch p {
	case ProviderTavily:
		return "Tavily"
	case ProviderSerpAPI:
		return "SerpAPI"
	default:
		return p.String()
	}
}

// CredentialKey is the configuration key holding the provider's secret.
func (p Provider) CredentialKey() string {
	switch p {
	case ProviderTavily:
		return "TAVILY_API_KEY"
	case ProviderSerpAPI:
		return "SERPAPI_KEY"
	default:
		return ""
	}
}

// SearchDepth is the Tavily search depth.
type SearchDepth string

const (
	SearchDepthBasic    SearchDepth = "basic"
	SearchDepthAdvanced SearchDepth = "advanced"
)

// TavilyOptions holds Tavily-specific request shaping. Nil booleans and empty
// domain lists are left out of the outbound request.
type TavilyOptions struct {
	SearchDepth       SearchDepth
	IncludeRawContent *bool
	IncludeAnswer     *bool
	IncludeDomains    []string
	ExcludeDomains    []string
}

// SerpAPIOptions holds SerpAPI-specific request shaping.
type SerpAPIOptions struct {
	Engine   string
	Location string
}

// SearchRequest is a validated, provider-agnostic search request.
type SearchRequest struct {
	Query    string
	Provider Provider
	Num      int
	Tavily   TavilyOptions
	SerpAPI  SerpAPIOptions
}

// NormalizedResult is one search hit. Link is never empty. Title is always
// serialized and may be "" when a Tavily hit has a link but neither a title
// nor a url.
type NormalizedResult struct {
	Title   string  `json:"title"`
	Link    string  `json:"link"`
	Snippet *string `json:"snippet,omitempty"`
}

// Meta carries response metadata. It is embedded in SearchResponse so its
// keys serialize at the top level of the payload. Answer is the provider's
// answer value verbatim, whatever its JSON type.
type Meta struct {
	Provider string          `json:"provider"`
	Answer   json.RawMessage `json:"answer,omitempty"`
	Engine   string          `json:"engine,omitempty"`
	Location string          `json:"location,omitempty"`
}

// AnswerText returns the answer for display: the unquoted value of a JSON
// string, or the raw JSON of any other type.
func (m Meta) AnswerText() string {
	if len(m.Answer) == 0 {
		return ""
	}
	v := gjson.ParseBytes(m.Answer)
	if v.Type == gjson.String {
		return v.Str
	}
	return v.Raw
}

// SearchResponse is the uniform result returned for every provider.
type SearchResponse struct {
	Query string `json:"query"`
	Meta
	Results []NormalizedResult `json:"results"`
}
