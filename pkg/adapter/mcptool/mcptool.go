// Package mcptool exposes GraphQL agent tools over the Model Context Protocol.
package mcptool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/saturnines/graphql-agent-tool/pkg/agenttool"
)

// Tool describes c as an MCP tool. Queries are annotated read-only and
// mutations destructive.
func Tool(c agenttool.Callable) (mcp.Tool, error) {
	schema, err := json.Marshal(c.InputSchema())
	if err != nil {
		return mcp.Tool{}, fmt.Errorf("encode input schema for %s: %w", c.Name(), err)
	}

	tool := mcp.NewToolWithRawSchema(c.Name(), c.Description(), schema)
	if k, ok := c.(interface{ Kind() agenttool.OperationKind }); ok {
		mutation := k.Kind() == agenttool.OperationMutation
		for _, opt := range []mcp.ToolOption{
			mcp.WithReadOnlyHintAnnotation(!mutation),
			mcp.WithDestructiveHintAnnotation(mutation),
			mcp.WithOpenWorldHintAnnotation(true),
		} {
			opt(&tool)
		}
	}
	return tool, nil
}

// Handler adapts c to an MCP tool handler. Tool failures are reported as
// error results, not protocol errors.
func Handler(c agenttool.Callable) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := json.Marshal(request.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		input, err := agenttool.DecodeInput(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		result, err := c.Invoke(ctx, input)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		text, err := agenttool.ResultText(result)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(text), nil
	}
}

// Register adds every tool to s.
func Register(s *server.MCPServer, tools ...agenttool.Callable) error {
	for _, c := range tools {
		tool, err := Tool(c)
		if err != nil {
			return err
		}
		s.AddTool(tool, Handler(c))
	}
	return nil
}

// NewServer builds an MCP server named name serving tools.
func NewServer(name, version string, tools ...agenttool.Callable) (*server.MCPServer, error) {
	s := server.NewMCPServer(name, version, server.WithToolCapabilities(false))
	if err := Register(s, tools...); err != nil {
		return nil, err
	}
	return s, nil
}
