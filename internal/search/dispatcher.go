package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/young1lin/websearch-mcp/internal/config"
	"github.com/young1lin/websearch-mcp/internal/models"
	"github.com/young1lin/websearch-mcp/pkg/logger"
)

const defaultNum = 10

// Credentials gives read access to provider secrets. It is consulted on
// every call and never cached.
type Credentials interface {
	APIKey(p models.Provider) string
}

// Recorder receives every successful search. Errors are logged and ignored.
type Recorder interface {
	Record(ctx context.Context, resp *models.SearchResponse) error
}

// ToolInput holds the web.search arguments after loose decoding. Zero values
// mean "not supplied"; the boolean flags are nil when absent so that an
// explicit false still reaches the provider.
type ToolInput struct {
	Query             string
	Provider          string
	Num               int
	SearchDepth       string
	IncludeRawContent *bool
	IncludeAnswer     *bool
	IncludeDomains    []string
	ExcludeDomains    []string
	Location          string
	Engine            string
}

// Result is the outcome of a dispatch that did not fail hard. Response is nil
// for soft failures; Text is always the payload to hand back to the caller.
type Result struct {
	Response *models.SearchResponse
	Text     string
}

// SoftFailure reports whether the result carries an explanation instead of results.
func (r *Result) SoftFailure() bool {
	return r.Response == nil
}

// Dispatcher validates tool input, picks a provider client and normalizes its
// response. It holds no per-call state and is safe for concurrent use.
type Dispatcher struct {
	creds           Credentials
	defaultProvider string
	clients         map[models.Provider]Client
	recorder        Recorder
}

// NewDispatcher creates a dispatcher. defaultProvider is used when the caller
// names none; an empty value means tavily.
func NewDispatcher(creds Credentials, defaultProvider string, clients ...Client) *Dispatcher {
	if strings.TrimSpace(defaultProvider) == "" {
		defaultProvider = models.ProviderTavily.String()
	}
	d := &Dispatcher{
		creds:           creds,
		defaultProvider: defaultProvider,
		clients:         make(map[models.Provider]Client, len(clients)),
	}
	for _, c := range clients {
		d.clients[c.Provider()] = c
	}
	return d
}

// NewDispatcherFromConfig wires both provider clients from configuration.
func NewDispatcherFromConfig(cfg *config.Config) *Dispatcher {
	timeout := time.Duration(cfg.Search.Timeout) * time.Second
	return NewDispatcher(cfg, cfg.Search.DefaultProvider,
		NewTavilyClient(cfg.Search.Tavily.BaseURL, timeout),
		NewSerpAPIClient(cfg.Search.SerpAPI.BaseURL, timeout),
	)
}

// SetRecorder attaches a search-history recorder.
func (d *Dispatcher) SetRecorder(r Recorder) {
	d.recorder = r
}

// prepare validates input and builds the provider request. A non-empty
// message means the call must end with that text as a soft failure.
func (d *Dispatcher) prepare(in ToolInput) (*models.SearchRequest, string) {
	query := strings.TrimSpace(in.Query)
	if query == "" {
		return nil, `Please provide a non-empty "query".`
	}

	name := in.Provider
	if strings.TrimSpace(name) == "" {
		name = d.defaultProvider
	}
	provider, err := models.ParseProvider(name)
	if err != nil {
		return nil, fmt.Sprintf(`Unknown provider: %s. Use "tavily" or "serpapi".`, name)
	}

	req := &models.SearchRequest{
		Query:    query,
		Provider: provider,
		Num:      in.Num,
	}
	if req.Num == 0 {
		req.Num = defaultNum
	}

	switch provider {
	case models.ProviderTavily:
		req.Tavily = models.TavilyOptions{
			SearchDepth:       models.SearchDepthBasic,
			IncludeRawContent: in.IncludeRawContent,
			IncludeAnswer:     in.IncludeAnswer,
			IncludeDomains:    nonEmpty(in.IncludeDomains),
			ExcludeDomains:    nonEmpty(in.ExcludeDomains),
		}
		if in.SearchDepth == string(models.SearchDepthAdvanced) {
			req.Tavily.SearchDepth = models.SearchDepthAdvanced
		}
	case models.ProviderSerpAPI:
		req.SerpAPI = models.SerpAPIOptions{
			Engine:   in.Engine,
			Location: in.Location,
		}
		if req.SerpAPI.Engine == "" {
			req.SerpAPI.Engine = DefaultSerpAPIEngine
		}
	}
	return req, ""
}

// Search runs one web.search invocation. Misconfiguration and bad input come
// back as a soft-failure Result with a nil error; provider and transport
// failures are returned as errors.
func (d *Dispatcher) Search(ctx context.Context, in ToolInput) (*Result, error) {
	log := logger.FromContext(ctx)

	req, msg := d.prepare(in)
	if msg != "" {
		log.Info("search rejected", zap.String("reason", msg))
		return &Result{Text: msg}, nil
	}

	apiKey := ""
	if d.creds != nil {
		apiKey = d.creds.APIKey(req.Provider)
	}
	if apiKey == "" {
		msg := fmt.Sprintf("Missing %s in environment.", req.Provider.CredentialKey())
		log.Warn("search rejected: missing credential", zap.String("provider", req.Provider.String()))
		return &Result{Text: msg}, nil
	}

	client, ok := d.clients[req.Provider]
	if !ok {
		return nil, fmt.Errorf("no client registered for provider %s", req.Provider)
	}

	start := time.Now()
	raw, err := client.Search(ctx, req, apiKey)
	if err != nil {
		log.Error("search failed",
			zap.String("provider", req.Provider.String()),
			zap.Error(err),
		)
		return nil, err
	}

	resp := Normalize(req, raw)
	log.Info("search completed",
		zap.String("provider", req.Provider.String()),
		zap.String("query", req.Query),
		zap.Int("result_count", len(resp.Results)),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	if d.recorder != nil {
		if err := d.recorder.Record(ctx, resp); err != nil {
			log.Warn("failed to record search history", zap.Error(err))
		}
	}

	text, err := FormatJSON(resp)
	if err != nil {
		return nil, err
	}
	return &Result{Response: resp, Text: text}, nil
}

// FormatJSON renders a response as the indented JSON tool payload.
func FormatJSON(resp *models.SearchResponse) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal response: %w", err)
	}
	return string(data), nil
}

func nonEmpty(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	return values
}
