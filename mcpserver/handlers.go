package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/fdatools/openfda-mcp/validation"
)

func (s *Server) handleSearchDrugProducts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	drugName, err := req.RequireString("drug_name")
	if err != nil {
		return s.toolError(toolSearchDrugProducts, err), nil
	}
	if err := validation.ValidateDrugName(drugName); err != nil {
		return s.toolError(toolSearchDrugProducts, err), nil
	}
	includeGenerics := req.GetBool("include_generics", true)

	result, err := s.query.SearchBrandAndGenericProducts(ctx, drugName, includeGenerics)
	if err != nil {
		return s.toolError(toolSearchDrugProducts, err), nil
	}
	return s.toolJSON(toolSearchDrugProducts, result)
}

func (s *Server) handleFindTherapeuticEquivalents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	drugName, err := req.RequireString("drug_name")
	if err != nil {
		return s.toolError(toolFindTherapeuticEquivalents, err), nil
	}
	if err := validation.ValidateDrugName(drugName); err != nil {
		return s.toolError(toolFindTherapeuticEquivalents, err), nil
	}

	result, err := s.query.FindTherapeuticEquivalents(ctx, drugName)
	if err != nil {
		return s.toolError(toolFindTherapeuticEquivalents, err), nil
	}
	return s.toolJSON(toolFindTherapeuticEquivalents, result)
}

func (s *Server) handleGetPatentsAndExclusivity(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawNumber, err := req.RequireString("application_number")
	if err != nil {
		return s.toolError(toolGetPatentsAndExclusivity, err), nil
	}
	applicationNumber, err := validation.ValidateApplicationNumber(rawNumber)
	if err != nil {
		return s.toolError(toolGetPatentsAndExclusivity, err), nil
	}

	result, err := s.query.GetPatentsAndExclusivity(ctx, applicationNumber)
	if err != nil {
		return s.toolError(toolGetPatentsAndExclusivity, err), nil
	}
	return s.toolJSON(toolGetPatentsAndExclusivity, result)
}

func (s *Server) handleForecastPatentCliff(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	drugName, err := req.RequireString("drug_name")
	if err != nil {
		return s.toolError(toolForecastPatentCliff, err), nil
	}
	if err := validation.ValidateDrugName(drugName); err != nil {
		return s.toolError(toolForecastPatentCliff, err), nil
	}
	yearsAhead := req.GetInt("years_ahead", 5)

	result, err := s.query.ForecastPatentCliff(ctx, drugName, yearsAhead)
	if err != nil {
		return s.toolError(toolForecastPatentCliff, err), nil
	}
	return s.toolJSON(toolForecastPatentCliff, result)
}

func (s *Server) handleSearchBiosimilars(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	drugName, err := req.RequireString("drug_name")
	if err != nil {
		return s.toolError(toolSearchBiosimilars, err), nil
	}
	if err := validation.ValidateDrugName(drugName); err != nil {
		return s.toolError(toolSearchBiosimilars, err), nil
	}

	result, err := s.query.SearchBiosimilars(ctx, drugName)
	if err != nil {
		return s.toolError(toolSearchBiosimilars, err), nil
	}
	return s.toolJSON(toolSearchBiosimilars, result)
}

func (s *Server) handleGetInterchangeableBiosimilars(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	referenceProduct, err := req.RequireString("reference_product")
	if err != nil {
		return s.toolError(toolGetInterchangeableBiosimilars, err), nil
	}
	if err := validation.ValidateDrugName(referenceProduct); err != nil {
		return s.toolError(toolGetInterchangeableBiosimilars, err), nil
	}

	result, err := s.query.GetInterchangeableBiosimilars(ctx, referenceProduct)
	if err != nil {
		return s.toolError(toolGetInterchangeableBiosimilars, err), nil
	}
	return s.toolJSON(toolGetInterchangeableBiosimilars, result)
}
