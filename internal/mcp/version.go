package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/stock-radar/internal/config"
)

// VersionTool returns the mcp.Tool definition for get_version.
func VersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get Stock Radar version and the configured model. Use this to verify connectivity."),
	)
}

// VersionToolHandler reports build info plus the active provider and model.
func VersionToolHandler(provider, model string) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		info := config.VersionInfo()
		info["provider"] = provider
		info["model"] = model
		return jsonResult(info), nil
	}
}
