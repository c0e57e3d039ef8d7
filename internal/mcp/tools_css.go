package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/csstree/internal/api"
)

func (s *Server) handleParse(_ context.Context, _ *mcpsdk.CallToolRequest, input api.ParseRequest) (*mcpsdk.CallToolResult, ToolOutput, error) {
	resp, err := s.service.Parse(input)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(resp)
}

func (s *Server) handleValidate(_ context.Context, _ *mcpsdk.CallToolRequest, input api.ValidateRequest) (*mcpsdk.CallToolResult, ToolOutput, error) {
	report, err := s.service.Validate(input)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(report)
}

func (s *Server) handleGenerate(_ context.Context, _ *mcpsdk.CallToolRequest, input api.GenerateRequest) (*mcpsdk.CallToolResult, ToolOutput, error) {
	resp, err := s.service.Generate(input)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(resp)
}

func (s *Server) handleMatch(_ context.Context, _ *mcpsdk.CallToolRequest, input api.MatchRequest) (*mcpsdk.CallToolResult, ToolOutput, error) {
	resp, err := s.service.Match(input)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(resp)
}
