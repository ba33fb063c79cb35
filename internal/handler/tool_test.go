package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/young1lin/websearch-mcp/internal/config"
	"github.com/young1lin/websearch-mcp/internal/search"
)

func TestDecodeToolInput(t *testing.T) {
	t.Run("Typical arguments", func(t *testing.T) {
		in := DecodeToolInput(map[string]any{
			"query":             "golang",
			"provider":          "serpapi",
			"num":               float64(7),
			"searchDepth":       "advanced",
			"includeRawContent": true,
			"includeAnswer":     false,
			"includeDomains":    []any{"go.dev", 42},
			"location":          "Berlin",
			"engine":            "bing",
		})

		assert.Equal(t, search.ToolInput{
			Query:             "golang",
			Provider:          "serpapi",
			Num:               7,
			SearchDepth:       "advanced",
			IncludeRawContent: boolPtr(true),
			IncludeAnswer:     boolPtr(false),
			IncludeDomains:    []string{"go.dev", "42"},
			Location:          "Berlin",
			Engine:            "bing",
		}, in)
	})

	t.Run("Loose values", func(t *testing.T) {
		in := DecodeToolInput(map[string]any{
			"query":          float64(42),
			"provider":       "",
			"num":            "3",
			"includeAnswer":  "yes",
			"excludeDomains": "not-a-list",
			"engine":         nil,
		})

		assert.Equal(t, "42", in.Query)
		assert.Empty(t, in.Provider)
		assert.Equal(t, 3, in.Num)
		require.NotNil(t, in.IncludeAnswer)
		assert.True(t, *in.IncludeAnswer)
		assert.Nil(t, in.IncludeRawContent, "absent flags stay unset")
		assert.Nil(t, in.ExcludeDomains)
		assert.Empty(t, in.Engine)
	})

	t.Run("Falsy flags are kept", func(t *testing.T) {
		for _, v := range []any{false, "", float64(0), nil} {
			in := DecodeToolInput(map[string]any{"includeAnswer": v})
			require.NotNil(t, in.IncludeAnswer, "%v", v)
			assert.False(t, *in.IncludeAnswer, "%v", v)
		}
	})

	t.Run("Unusable num", func(t *testing.T) {
		for _, v := range []any{nil, "abc", float64(0), map[string]any{}} {
			assert.Equal(t, 0, DecodeToolInput(map[string]any{"num": v}).Num, "%v", v)
		}
	})

	t.Run("Nil arguments", func(t *testing.T) {
		assert.Equal(t, search.ToolInput{}, DecodeToolInput(nil))
	})
}

func boolPtr(b bool) *bool {
	return &b
}

func TestNewSearchTool(t *testing.T) {
	tool := NewSearchTool()

	assert.Equal(t, "web.search", tool.Name)
	assert.Equal(t, []string{"query"}, tool.InputSchema.Required)
	for _, name := range []string{"query", "provider", "num", "searchDepth", "includeRawContent",
		"includeAnswer", "includeDomains", "excludeDomains", "location", "engine"} {
		assert.Contains(t, tool.InputSchema.Properties, name)
	}
}

func textOf(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	switch c := result.Content[0].(type) {
	case mcp.TextContent:
		return c.Text
	case *mcp.TextContent:
		return c.Text
	default:
		t.Fatalf("unexpected content type %T", c)
		return ""
	}
}

func newInProcessClient(t *testing.T, cfg *config.Config) *client.Client {
	t.Helper()
	ctx := context.Background()

	c, err := client.NewInProcessClient(NewServer(search.NewDispatcherFromConfig(cfg), "test"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	require.NoError(t, c.Start(ctx))

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "test", Version: "0"}
	_, err = c.Initialize(ctx, initReq)
	require.NoError(t, err)
	return c
}

func callSearch(c *client.Client, args map[string]any) (*mcp.CallToolResult, error) {
	req := mcp.CallToolRequest{}
	req.Params.Name = ToolName
	req.Params.Arguments = args
	return c.CallTool(context.Background(), req)
}

func TestServer_ListTools(t *testing.T) {
	c := newInProcessClient(t, &config.Config{})

	tools, err := c.ListTools(context.Background(), mcp.ListToolsRequest{})
	require.NoError(t, err)
	require.Len(t, tools.Tools, 1)
	assert.Equal(t, ToolName, tools.Tools[0].Name)
}

func TestServer_UnknownToolIsProtocolError(t *testing.T) {
	c := newInProcessClient(t, &config.Config{})

	req := mcp.CallToolRequest{}
	req.Params.Name = "web.fetch"
	_, err := c.CallTool(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestServer_SoftFailure(t *testing.T) {
	c := newInProcessClient(t, &config.Config{})

	result, err := callSearch(c, map[string]any{"query": "coffee", "provider": "serpapi"})
	require.NoError(t, err)
	assert.Regexp(t, `Missing SERPAPI_KEY`, textOf(t, result))

	result, err = callSearch(c, map[string]any{"query": "  "})
	require.NoError(t, err)
	assert.Equal(t, `Please provide a non-empty "query".`, textOf(t, result))
}

func TestServer_Success(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"results":[{"title":"A","url":"http://a","content":"c"}],"answer":"42"}`)
	}))
	defer upstream.Close()

	cfg := &config.Config{}
	cfg.Search.Tavily = config.ProviderConfig{APIKey: "tvly", BaseURL: upstream.URL}
	c := newInProcessClient(t, cfg)

	result, err := callSearch(c, map[string]any{"query": " answer ", "num": 1})
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &payload))
	assert.Equal(t, "answer", payload["query"])
	assert.Equal(t, "tavily", payload["provider"])
	assert.Equal(t, "42", payload["answer"])
	assert.Equal(t, []any{map[string]any{"title": "A", "link": "http://a", "snippet": "c"}}, payload["results"])
}

func TestServer_ForwardsExplicitFalseFlags(t *testing.T) {
	bodies := make(chan map[string]any, 1)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		bodies <- body
		io.WriteString(w, `{"results":[]}`)
	}))
	defer upstream.Close()

	cfg := &config.Config{}
	cfg.Search.Tavily = config.ProviderConfig{APIKey: "tvly", BaseURL: upstream.URL}
	c := newInProcessClient(t, cfg)

	_, err := callSearch(c, map[string]any{"query": "q", "includeAnswer": false})
	require.NoError(t, err)

	body := <-bodies
	assert.Equal(t, false, body["include_answer"])
	assert.NotContains(t, body, "include_raw_content")
}

func TestServer_ProviderErrorIsProtocolError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, "internal failure")
	}))
	defer upstream.Close()

	cfg := &config.Config{}
	cfg.Search.Tavily = config.ProviderConfig{APIKey: "tvly", BaseURL: upstream.URL}
	c := newInProcessClient(t, cfg)

	_, err := callSearch(c, map[string]any{"query": "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Tavily error 500: internal failure")
}
