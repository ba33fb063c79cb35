package handler

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/young1lin/websearch-mcp/internal/search"
	"github.com/young1lin/websearch-mcp/pkg/logger"
)

const (
	ServerName = "web-mcp-server"
	ToolName   = "web.search"
)

// NewSearchTool describes the web.search tool and its input schema.
func NewSearchTool() mcp.Tool {
	return mcp.NewTool(ToolName,
		mcp.WithDescription("Search the web using Tavily (default) or SerpAPI. Returns results with title, link, and snippet/content."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query string"),
		),
		mcp.WithString("provider",
			mcp.Enum("tavily", "serpapi"),
			mcp.DefaultString("tavily"),
			mcp.Description("Which provider to use"),
		),
		mcp.WithNumber("num",
			mcp.Min(1),
			mcp.Max(20),
			mcp.Description("Number of results to return"),
		),
		mcp.WithString("searchDepth",
			mcp.Enum("basic", "advanced"),
			mcp.DefaultString("basic"),
			mcp.Description("Tavily search depth"),
		),
		mcp.WithBoolean("includeRawContent",
			mcp.Description("Tavily: include raw page content in results"),
		),
		mcp.WithBoolean("includeAnswer",
			mcp.Description("Tavily: ask Tavily to synthesize an answer"),
		),
		mcp.WithArray("includeDomains",
			mcp.Items(map[string]any{"type": "string"}),
			mcp.Description("Tavily: restrict to these domains"),
		),
		mcp.WithArray("excludeDomains",
			mcp.Items(map[string]any{"type": "string"}),
			mcp.Description("Tavily: exclude these domains"),
		),
		mcp.WithString("location",
			mcp.Description(`SerpAPI: geographic bias (e.g., "Austin, Texas, United States")`),
		),
		mcp.WithString("engine",
			mcp.DefaultString("google"),
			mcp.Description("SerpAPI: engine, e.g., google, bing, duckduckgo"),
		),
	)
}

// NewServer builds the MCP server exposing web.search backed by d.
func NewServer(d *search.Dispatcher, version string) *server.MCPServer {
	s := server.NewMCPServer(ServerName, version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	s.AddTool(NewSearchTool(), SearchHandler(d))
	return s
}

// SearchHandler adapts the dispatcher to an MCP tool handler. Soft failures
// become text results; provider errors surface as protocol errors.
func SearchHandler(d *search.Dispatcher) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		traceID := logger.TraceIDFromContext(ctx)
		if traceID == "" {
			traceID = uuid.New().String()[:16]
			ctx = logger.ContextWithTraceID(ctx, traceID)
		}
		log := logger.WithTraceID(traceID)
		log.Debug("tool call received", zap.String("tool", request.Params.Name))

		result, err := d.Search(ctx, DecodeToolInput(request.GetArguments()))
		if err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(result.Text), nil
	}
}

// DecodeToolInput converts loosely typed tool arguments. Values are coerced
// the way a dynamically typed client would expect: a supplied flag becomes its
// truthiness, numbers may arrive as strings, and scalars are stringified.
func DecodeToolInput(args map[string]any) search.ToolInput {
	in := search.ToolInput{
		Query:             stringArg(args["query"]),
		Num:               intArg(args["num"]),
		SearchDepth:       stringArg(args["searchDepth"]),
		IncludeRawContent: flagArg(args, "includeRawContent"),
		IncludeAnswer:     flagArg(args, "includeAnswer"),
		IncludeDomains:    stringSliceArg(args["includeDomains"]),
		ExcludeDomains:    stringSliceArg(args["excludeDomains"]),
	}
	if truthyArg(args["provider"]) {
		in.Provider = stringArg(args["provider"])
	}
	if truthyArg(args["location"]) {
		in.Location = stringArg(args["location"])
	}
	if truthyArg(args["engine"]) {
		in.Engine = stringArg(args["engine"])
	}
	return in
}

func stringArg(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// intArg returns 0 for absent, zero or unparsable values.
func intArg(v any) int {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		return t
	case int64:
		return int(t)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		f = parsed
	case bool:
		if t {
			return 1
		}
		return 0
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}

func truthyArg(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0 && !math.IsNaN(t)
	case int:
		return t != 0
	default:
		return true
	}
}

// flagArg is nil when key is absent and the value's truthiness otherwise.
func flagArg(args map[string]any, key string) *bool {
	v, ok := args[key]
	if !ok {
		return nil
	}
	b := truthyArg(v)
	return &b
}

func stringSliceArg(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, stringArg(item))
		}
		return out
	case []string:
		return t
	default:
		return nil
	}
}
