package mcpserver

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/fdatools/openfda-mcp/openfda"
)

var errNoSearchParams = errors.New("at least one search parameter is required")

func (s *Server) handleSearchDrugLabels(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if cursor := req.GetString("cursor", ""); cursor != "" {
		return s.continueSearch(ctx, toolSearchDrugLabels, cursor)
	}

	search := map[string]string{}
	if v := req.GetString("brand_name", ""); v != "" {
		search["openfda.brand_name"] = v
	}
	if v := req.GetString("generic_name", ""); v != "" {
		search["openfda.generic_name"] = v
	}
	if v := req.GetString("manufacturer", ""); v != "" {
		search["openfda.manufacturer_name"] = v
	}
	if v := req.GetString("indication", ""); v != "" {
		search["indications_and_usage"] = v
	}
	if len(search) == 0 {
		return s.toolError(toolSearchDrugLabels, errNoSearchParams), nil
	}

	result, err := s.fda.Search(ctx, openfda.SearchRequest{
		Endpoint: openfda.EndpointDrugLabel,
		Search:   search,
		Limit:    req.GetInt("limit", 5),
	})
	if err != nil {
		return s.toolError(toolSearchDrugLabels, err), nil
	}
	return s.toolJSON(toolSearchDrugLabels, result)
}

func (s *Server) handleSearchAdverseEvents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if cursor := req.GetString("cursor", ""); cursor != "" {
		return s.continueSearch(ctx, toolSearchAdverseEvents, cursor)
	}

	search := map[string]string{}
	if v := req.GetString("drug_name", ""); v != "" {
		search["patient.drug.medicinalproduct"] = v
	}
	if v := req.GetString("reaction", ""); v != "" {
		search["patient.reaction.reactionmeddrapt"] = v
	}
	if req.GetBool("serious_only", false) {
		search["serious"] = "1"
	}
	if len(search) == 0 {
		return s.toolError(toolSearchAdverseEvents, errNoSearchParams), nil
	}

	fdaReq := openfda.SearchRequest{
		Endpoint: openfda.EndpointDrugEvent,
		Search:   search,
		Limit:    req.GetInt("limit", 5),
	}
	if req.GetBool("count_by_reaction", false) {
		fdaReq.Count = "patient.reaction.reactionmeddrapt.exact"
	}

	result, err := s.fda.Search(ctx, fdaReq)
	if err != nil {
		return s.toolError(toolSearchAdverseEvents, err), nil
	}
	return s.toolJSON(toolSearchAdverseEvents, result)
}

func (s *Server) handleSearchDrugRecalls(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if cursor := req.GetString("cursor", ""); cursor != "" {
		return s.continueSearch(ctx, toolSearchDrugRecalls, cursor)
	}

	search := map[string]string{}
	if v := req.GetString("drug_name", ""); v != "" {
		search["product_description"] = v
	}
	if v := req.GetString("classification", ""); v != "" {
		search["classification"] = v
	}
	if v := req.GetString("status", ""); v != "" {
		search["status"] = v
	}
	if len(search) == 0 {
		return s.toolError(toolSearchDrugRecalls, errNoSearchParams), nil
	}

	result, err := s.fda.Search(ctx, openfda.SearchRequest{
		Endpoint: openfda.EndpointDrugEnforcement,
		Search:   search,
		Limit:    req.GetInt("limit", 5),
	})
	if err != nil {
		return s.toolError(toolSearchDrugRecalls, err), nil
	}
	return s.toolJSON(toolSearchDrugRecalls, result)
}

// continueSearch fetches the next page for any passthrough tool's cursor.
func (s *Server) continueSearch(ctx context.Context, tool, cursor string) (*mcp.CallToolResult, error) {
	result, err := s.fda.SearchByCursor(ctx, cursor)
	if err != nil {
		return s.toolError(tool, err), nil
	}
	return s.toolJSON(tool, result)
}
