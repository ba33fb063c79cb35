package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/young1lin/websearch-mcp/internal/models"
	"github.com/young1lin/websearch-mcp/pkg/logger"
)

// RawResult is a provider's undecoded JSON response body.
type RawResult []byte

// Client issues a single search against one provider.
type Client interface {
	Provider() models.Provider
	Search(ctx context.Context, req *models.SearchRequest, apiKey string) (RawResult, error)
}

// newHTTPClient returns the shared transport settings for provider clients.
// A zero timeout leaves the call bounded only by the caller's context.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// do sends req and returns the body of a successful JSON response. Non-2xx
// statuses become *ProviderHTTPError; no retries are attempted.
func do(ctx context.Context, client *http.Client, provider models.Provider, req *http.Request) (RawResult, error) {
	log := logger.FromContext(ctx)

	resp, err := client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = redactURL(urlErr.URL)
		}
		return nil, fmt.Errorf("%s request failed: %w", provider.DisplayName(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read response: %w", provider.DisplayName(), err)
	}

	log.Debug("provider response",
		zap.String("provider", provider.String()),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ProviderHTTPError{Provider: provider, Status: resp.StatusCode, Body: string(body)}
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%s: failed to parse response: invalid JSON", provider.DisplayName())
	}
	return RawResult(body), nil
}

// redactURL masks credential query parameters so a URL can be logged or
// returned to callers.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "[unparsable url]"
	}
	q := u.Query()
	if !q.Has("api_key") {
		return raw
	}
	q.Set("api_key", "REDACTED")
	u.RawQuery = q.Encode()
	return u.String()
}
