package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/young1lin/websearch-mcp/internal/models"
	"github.com/young1lin/websearch-mcp/pkg/logger"
)

const (
	DefaultSerpAPIURL     = "https://serpapi.com/search.json"
	DefaultSerpAPIEngine  = "google"
	defaultSerpAPIResults = 10
)

// SerpAPIClient implements Client against the SerpAPI search endpoint.
type SerpAPIClient struct {
	endpoint string
	client   *http.Client
}

// NewSerpAPIClient creates a SerpAPI client. An empty endpoint uses the public API.
func NewSerpAPIClient(endpoint string, timeout time.Duration) *SerpAPIClient {
	if endpoint == "" {
		endpoint = DefaultSerpAPIURL
	}
	return &SerpAPIClient{
		endpoint: endpoint,
		client:   newHTTPClient(timeout),
	}
}

// Provider returns models.ProviderSerpAPI.
func (c *SerpAPIClient) Provider() models.Provider {
	return models.ProviderSerpAPI
}

func serpAPIParams(req *models.SearchRequest, apiKey string) url.Values {
	engine := req.SerpAPI.Engine
	if engine == "" {
		engine = DefaultSerpAPIEngine
	}
	num := req.Num
	if num == 0 {
		num = defaultSerpAPIResults
	}

	params := url.Values{}
	params.Set("q", req.Query)
	params.Set("api_key", apiKey)
	params.Set("engine", engine)
	params.Set("num", strconv.Itoa(num))
	if req.SerpAPI.Location != "" {
		params.Set("location", req.SerpAPI.Location)
	}
	return params
}

// Search performs a search query using SerpAPI
func (c *SerpAPIClient) Search(ctx context.Context, req *models.SearchRequest, apiKey string) (RawResult, error) {
	endpoint, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	endpoint.RawQuery = serpAPIParams(req, apiKey).Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	logger.FromContext(ctx).Debug("serpapi search",
		zap.String("url", redactURL(endpoint.String())),
	)

	return do(ctx, c.client, models.ProviderSerpAPI, httpReq)
}
