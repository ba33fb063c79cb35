package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"

	"github.com/young1lin/websearch-mcp/internal/handler"
)

var smokeOpts struct {
	query    string
	provider string
	timeout  time.Duration
}

var smokeCmd = &cobra.Command{
	Use:   "smoke",
	Short: "Start this binary as a stdio MCP server, list its tools and call web.search once",
	RunE: func(cmd *cobra.Command, args []string) error {
		exe, err := os.Executable()
		if err != nil {
			return fmt.Errorf("locate executable: %w", err)
		}
		serverArgs := []string{"serve"}
		if cfgFile != "" {
			serverArgs = append(serverArgs, "--config", cfgFile)
		}

		c, err := client.NewStdioMCPClient(exe, os.Environ(), serverArgs...)
		if err != nil {
			return fmt.Errorf("create stdio client: %w", err)
		}
		defer c.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), smokeOpts.timeout)
		defer cancel()

		initReq := mcp.InitializeRequest{}
		initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
		initReq.Params.ClientInfo = mcp.Implementation{Name: "websearch-mcp-smoke", Version: Version}
		if _, err := c.Initialize(ctx, initReq); err != nil {
			return fmt.Errorf("initialize: %w", err)
		}

		tools, err := c.ListTools(ctx, mcp.ListToolsRequest{})
		if err != nil {
			return fmt.Errorf("list tools: %w", err)
		}
		names := make([]string, 0, len(tools.Tools))
		for _, t := range tools.Tools {
			names = append(names, t.Name)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Tools:", names)
		if !containsString(names, handler.ToolName) {
			return fmt.Errorf("%s tool not found", handler.ToolName)
		}

		callReq := mcp.CallToolRequest{}
		callReq.Params.Name = handler.ToolName
		arguments := map[string]any{
			"query":             smokeOpts.query,
			"num":               3,
			"searchDepth":       "basic",
			"includeRawContent": false,
		}
		if smokeOpts.provider != "" {
			arguments["provider"] = smokeOpts.provider
		}
		callReq.Params.Arguments = arguments

		result, err := c.CallTool(ctx, callReq)
		if err != nil {
			return fmt.Errorf("call %s: %w", handler.ToolName, err)
		}

		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "Call result:")
		fmt.Fprintln(out, string(data))
		return nil
	},
}

func init() {
	smokeCmd.Flags().StringVarP(&smokeOpts.query, "query", "q", "latest AI research news", "query to send")
	smokeCmd.Flags().StringVar(&smokeOpts.provider, "provider", "", "provider to use (defaults to the server's default)")
	smokeCmd.Flags().DurationVar(&smokeOpts.timeout, "timeout", 60*time.Second, "overall timeout")
}

func containsString(items []string, want string) bool {
	for _, item := range items {
		if item == want {
			return true
		}
	}
	return false
}
