package mcp

import (
	"encoding/json"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Tool name constants.
const (
	ToolNameParse    = "css_parse"
	ToolNameValidate = "css_validate"
	ToolNameGenerate = "css_generate"
	ToolNameMatch    = "css_match"
)

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: json.RawMessage(data)}, nil
}

// Tool description constants.
const (
	parseToolDescription = "Parse CSS into an abstract syntax tree. " +
		"Returns the tree as JSON; malformed parts are kept as Raw nodes."

	validateToolDescription = "Validate a CSS stylesheet against the CSS syntax dictionary. " +
		"Reports parse errors, unknown properties and at-rules with suggestions, and invalid values."

	generateToolDescription = "Print CSS in its shortest safe form, from a CSS source or from a tree returned by css_parse."

	matchToolDescription = "Match a CSS value against a property, a type or an ad hoc value definition syntax. " +
		"Returns the match tree or the mismatch details."
)
