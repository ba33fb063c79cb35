package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/young1lin/websearch-mcp/internal/config"
	"github.com/young1lin/websearch-mcp/internal/models"
	"github.com/young1lin/websearch-mcp/pkg/logger"
)

// MCPPath is where the streamable HTTP transport is mounted.
const MCPPath = "/mcp"

// HTTPHandler serves the MCP endpoint plus health and provider status routes.
type HTTPHandler struct {
	config *config.Config
	mcp    http.Handler
}

// NewHTTPHandler wraps an MCP server in the streamable HTTP transport.
func NewHTTPHandler(cfg *config.Config, s *server.MCPServer) *HTTPHandler {
	streamable := server.NewStreamableHTTPServer(s,
		server.WithEndpointPath(MCPPath),
		server.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			return logger.ContextWithTraceID(ctx, requestTraceID(r))
		}),
	)
	return &HTTPHandler{config: cfg, mcp: streamable}
}

// ServeHTTP handles all HTTP requests
func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	traceID := requestTraceID(r)
	r.Header.Set("X-Trace-ID", traceID)
	w.Header().Set("X-Trace-ID", traceID)

	log := logger.WithTraceID(traceID)
	log.Info("request received",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("remote_addr", r.RemoteAddr),
	)

	switch r.URL.Path {
	case "/health":
		h.handleHealth(w)
	case "/providers":
		h.handleProviders(w)
	case MCPPath:
		h.mcp.ServeHTTP(w, r)
	default:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "Endpoint not found"})
	}

	log.Info("request completed",
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
}

// handleHealth handles health check requests
func (h *HTTPHandler) handleHealth(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	})
}

// handleProviders reports which providers have credentials, never the values.
func (h *HTTPHandler) handleProviders(w http.ResponseWriter) {
	configured := make(map[string]bool, len(models.Providers))
	for _, p := range models.Providers {
		configured[p.String()] = h.config.APIKey(p) != ""
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"providers": configured,
		"default":   h.config.Search.DefaultProvider,
	})
}

// requestTraceID returns the caller's trace ID or a new one.
func requestTraceID(r *http.Request) string {
	for _, header := range []string{"X-Trace-ID", "X-Request-ID", "X-Correlation-ID"} {
		if id := r.Header.Get(header); id != "" {
			return id
		}
	}
	return uuid.New().String()[:16]
}
