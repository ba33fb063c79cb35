package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/young1lin/websearch-mcp/internal/models"
	"github.com/young1lin/websearch-mcp/pkg/logger"
)

const (
	DefaultTavilyURL        = "https://api.tavily.com/search"
	defaultTavilyMaxResults = 5
)

// TavilyClient implements Client against the Tavily search API.
type TavilyClient struct {
	endpoint string
	client   *http.Client
}

// NewTavilyClient creates a Tavily client. An empty endpoint uses the public API.
func NewTavilyClient(endpoint string, timeout time.Duration) *TavilyClient {
	if endpoint == "" {
		endpoint = DefaultTavilyURL
	}
	return &TavilyClient{
		endpoint: endpoint,
		client:   newHTTPClient(timeout),
	}
}

// Provider returns models.ProviderTavily.
func (c *TavilyClient) Provider() models.Provider {
	return models.ProviderTavily
}

// tavilySearchRequest is the POST body. Optional fields are only sent when set.
type tavilySearchRequest struct {
	APIKey            string             `json:"api_key"`
	Query             string             `json:"query"`
	MaxResults        int                `json:"max_results"`
	SearchDepth       models.SearchDepth `json:"search_depth"`
	IncludeAnswer     *bool              `json:"include_answer,omitempty"`
	IncludeRawContent *bool              `json:"include_raw_content,omitempty"`
	IncludeDomains    []string           `json:"include_domains,omitempty"`
	ExcludeDomains    []string           `json:"exclude_domains,omitempty"`
}

func newTavilySearchRequest(req *models.SearchRequest, apiKey string) tavilySearchRequest {
	body := tavilySearchRequest{
		APIKey:            apiKey,
		Query:             req.Query,
		MaxResults:        req.Num,
		SearchDepth:       req.Tavily.SearchDepth,
		IncludeAnswer:     req.Tavily.IncludeAnswer,
		IncludeRawContent: req.Tavily.IncludeRawContent,
		IncludeDomains:    req.Tavily.IncludeDomains,
		ExcludeDomains:    req.Tavily.ExcludeDomains,
	}
	if body.MaxResults == 0 {
		body.MaxResults = defaultTavilyMaxResults
	}
	if body.SearchDepth == "" {
		body.SearchDepth = models.SearchDepthBasic
	}
	return body
}

// Search performs a search query using Tavily
func (c *TavilyClient) Search(ctx context.Context, req *models.SearchRequest, apiKey string) (RawResult, error) {
	bodyBytes, err := json.Marshal(newTavilySearchRequest(req, apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	logger.FromContext(ctx).Debug("tavily search",
		zap.String("endpoint", c.endpoint),
		zap.String("query", req.Query),
		zap.Int("max_results", req.Num),
	)

	return do(ctx, c.client, models.ProviderTavily, httpReq)
}
