package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hydroflow/hydroflow/internal/core/domain"
)

func (s *Server) registerTools() {
	s.server.AddTool(mcp.NewTool("query_knowledge_base",
		mcp.WithDescription("Answer a water treatment question using the indexed knowledge base"),
		mcp.WithString("query", mcp.Required(), mcp.Description("the question to answer")),
		mcp.WithNumber("top_k", mcp.Description("number of knowledge base chunks to retrieve")),
		mcp.WithString("use_case", mcp.Description("retrieval context, for example system_design or cost_estimation")),
	), s.handleQuery)

	s.server.AddTool(mcp.NewTool("generate_quotation",
		mcp.WithDescription("Generate a commercial quotation for a reverse osmosis system sized to the given water analysis"),
		mcp.WithNumber("capacity", mcp.Required(), mcp.Description("required permeate capacity in m3/h")),
		mcp.WithNumber("pressure", mcp.Description("feed pressure in bar")),
		mcp.WithString("client_name", mcp.Description("client the quotation is prepared for")),
		mcp.WithString("water_analysis", mcp.Description("feed water parameters as a JSON object")),
	), s.handleQuotation)
}

func (s *Server) handleQuery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := domain.QueryRequest{
		Query:   query,
		TopK:    request.GetInt("top_k", 0),
		UseCase: request.GetString("use_case", ""),
	}
	answer, err := s.queries.Answer(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(answer)
}

func (s *Server) handleQuotation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	capacity, err := request.RequireFloat("capacity")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := domain.QuotationRequest{
		Capacity:   capacity,
		Pressure:   request.GetFloat("pressure", 0),
		ClientName: request.GetString("client_name", ""),
	}
	if raw := request.GetString("water_analysis", ""); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.WaterAnalysis); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("water_analysis is not valid JSON: %v", err)), nil
		}
	}

	quotation, err := s.quotations.Generate(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(quotation)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(payload)), nil
}
