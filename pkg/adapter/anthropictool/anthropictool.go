// Package anthropictool binds GraphQL agent tools to the Anthropic Messages API.
package anthropictool

import (
	"context"
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/saturnines/graphql-agent-tool/pkg/agenttool"
)

// Lookup finds a tool by name. *toolset.Registry satisfies it.
type Lookup interface {
	Get(name string) (agenttool.Callable, bool)
}

// ToolParam describes c in the form the Messages API expects.
func ToolParam(c agenttool.Callable) anthropic.ToolUnionParam {
	schema := c.InputSchema()
	return anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
		Name:        c.Name(),
		Description: anthropic.String(c.Description()),
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: schema.Properties,
			Required:   schema.Required,
		},
	}}
}

// Tools converts every tool for a MessageNewParams.Tools field.
func Tools(tools ...agenttool.Callable) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		out = append(out, ToolParam(t))
	}
	return out
}

// HandleToolUse runs the tool named by block and returns the tool_result to
// send back. Failures become error results so the model can see them.
func HandleToolUse(ctx context.Context, tools Lookup, block anthropic.ToolUseBlock) anthropic.ContentBlockParamUnion {
	tool, ok := tools.Get(block.Name)
	if !ok {
		return anthropic.NewToolResultBlock(block.ID, "tool not found", true)
	}

	input, err := agenttool.DecodeInput(json.RawMessage(block.JSON.Input.Raw()))
	if err != nil {
		return anthropic.NewToolResultBlock(block.ID, err.Error(), true)
	}

	result, err := tool.Invoke(ctx, input)
	if err != nil {
		return anthropic.NewToolResultBlock(block.ID, err.Error(), true)
	}

	content, err := agenttool.ResultText(result)
	if err != nil {
		return anthropic.NewToolResultBlock(block.ID, err.Error(), true)
	}
	return anthropic.NewToolResultBlock(block.ID, content, false)
}

// HandleMessage runs every tool_use block in msg, in order.
func HandleMessage(ctx context.Context, tools Lookup, msg *anthropic.Message) []anthropic.ContentBlockParamUnion {
	var results []anthropic.ContentBlockParamUnion
	for _, block := range msg.Content {
		if use, ok := block.AsAny().(anthropic.ToolUseBlock); ok {
			results = append(results, HandleToolUse(ctx, tools, use))
		}
	}
	return results
}
