// Package toolserver is a small MCP peer serving the reference capabilities:
// get_epoch_time, count_characters and get_weather.
package toolserver

import (
	"context"
	"encoding/json"

	"github.com/effective-security/xlog"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/petasbytes/mcp-agent/tools"
)

var logger = xlog.NewPackageLogger("github.com/petasbytes/mcp-agent/internal", "toolserver")

const (
	ServerName    = "custom-server"
	ServerVersion = "0.1.0"
)

// Definitions returns the reference tools in registration order. The MCP
// server lists them sorted by name.
func Definitions() []tools.ToolDefinition {
	return []tools.ToolDefinition{
		EpochTimeDefinition,
		CountCharactersDefinition,
		WeatherDefinition,
	}
}

// New returns an MCP server with defs registered, or the reference tools when
// defs is empty.
func New(defs ...tools.ToolDefinition) *mcp.Server {
	if len(defs) == 0 {
		defs = Definitions()
	}
	s := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, nil)
	for _, d := range defs {
		s.AddTool(&mcp.Tool{
			Name:        d.Name,
			Description: d.Description,
			InputSchema: d.InputSchema,
		}, handler(d))
	}
	return s
}

// ServeStdio serves the reference tools on stdin/stdout until ctx is done or
// the client disconnects.
func ServeStdio(ctx context.Context) error {
	return New().Run(ctx, &mcp.StdioTransport{})
}

// handler adapts a tool function to the SDK. Tool failures are reported as
// error results rather than protocol errors so the caller sees the message.
func handler(d tools.ToolDefinition) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.Params.Arguments
		if len(args) == 0 {
			args = json.RawMessage("{}")
		}
		result, err := d.Function(ctx, args)
		if err != nil {
			logger.KV(xlog.DEBUG, "event", "tool_error", "tool", d.Name, "err", err.Error())
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
				IsError: true,
			}, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: result}},
		}, nil
	}
}
