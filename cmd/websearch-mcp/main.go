package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/young1lin/websearch-mcp/internal/config"
	"github.com/young1lin/websearch-mcp/internal/handler"
	"github.com/young1lin/websearch-mcp/internal/search"
	"github.com/young1lin/websearch-mcp/internal/storage"
	"github.com/young1lin/websearch-mcp/pkg/logger"
)

var (
	Version   = "dev"
	BuildDate = "unknown"
)

var (
	cfgFile string
	useHTTP bool
	port    int
	showVer bool
)

var rootCmd = &cobra.Command{
	Use:   "websearch-mcp",
	Short: "Web search MCP server (Tavily / SerpAPI)",
	Long: `An MCP server exposing a single web.search tool. Queries are sent to
Tavily or SerpAPI and their responses are normalized into one result shape.

Without a subcommand the server runs over stdio.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVer {
			fmt.Printf("websearch-mcp %s (built %s)\n", Version, BuildDate)
			return nil
		}
		return runServe(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server over stdio, or over streamable HTTP with --http",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.Flags().BoolVarP(&showVer, "version", "v", false, "show version")
	serveCmd.Flags().BoolVar(&useHTTP, "http", false, "serve streamable HTTP instead of stdio")
	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP listen port (overrides config)")

	rootCmd.AddCommand(serveCmd, queryCmd, smokeCmd, historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads configuration, initializes logging and builds the
// dispatcher. The returned cleanup func must always be called.
func bootstrap() (*config.Config, *search.Dispatcher, func(), error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, func() {}, fmt.Errorf("error reading config: %w", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)

	d := search.NewDispatcherFromConfig(cfg)
	cleanup := func() { logger.Sync() }

	if cfg.History.Enabled {
		store, err := storage.NewHistoryStore(cfg.History.Path)
		if err != nil {
			logger.Warn("search history disabled", zap.Error(err))
		} else {
			d.SetRecorder(store)
			cleanup = func() {
				store.Close()
				logger.Sync()
			}
		}
	}
	return cfg, d, cleanup, nil
}

func runServe(ctx context.Context) error {
	cfg, d, cleanup, err := bootstrap()
	defer cleanup()
	if err != nil {
		return err
	}

	mcpServer := handler.NewServer(d, Version)

	logger.Info("starting server",
		zap.String("version", Version),
		zap.String("default_provider", cfg.Search.DefaultProvider),
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if useHTTP {
		if port > 0 {
			cfg.Server.Port = port
		}
		return serveHTTP(ctx, cfg, mcpServer)
	}

	stdio := server.NewStdioServer(mcpServer)
	stdio.SetErrorLogger(logger.StdLog("stdio"))
	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("server stopped")
	return nil
}

func serveHTTP(ctx context.Context, cfg *config.Config, mcpServer *server.MCPServer) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           handler.NewHTTPHandler(cfg, mcpServer),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("path", handler.MCPPath))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		return err
	}

	logger.Info("server stopped")
	return nil
}
