// Package mcpserver exposes the drug query service and the OpenFDA client as
// Model Context Protocol tools, resources and prompts.
package mcpserver

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/fdatools/openfda-mcp/interfaces"
	"github.com/fdatools/openfda-mcp/logging"
	"github.com/fdatools/openfda-mcp/metrics"
)

const serverName = "openfda-mcp"

const serverInstructions = `This server answers US drug intelligence questions from two data planes:

1. Orange Book / Purple Book analytics (built from FDA's own data files,
   downloaded and indexed locally): brand/generic product search, therapeutic
   equivalence, patents and exclusivity by application number, patent cliff
   forecasting, biosimilar and interchangeability lookups. The first such
   call after startup may take a minute while the data is downloaded and
   indexed.

2. OpenFDA passthrough (live api.fda.gov queries): drug labels, adverse
   event reports and enforcement/recall records. These tools page with an
   opaque cursor parameter.

Drug names are matched by prefix against ingredient, trade and applicant
names, so partial names like "ibupro" work. Application numbers are exact
six-digit keys.`

// Server owns the MCP protocol surface.
type Server struct {
	mcp       *server.MCPServer
	query     interfaces.DrugQuery
	fda       interfaces.FDAClient
	suggester *suggester
}

// New wires every tool, resource and prompt onto a fresh MCP server.
func New(version string, query interfaces.DrugQuery, fda interfaces.FDAClient) *Server {
	s := &Server{
		mcp: server.NewMCPServer(
			serverName,
			version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
			server.WithInstructions(serverInstructions),
		),
		query:     query,
		fda:       fda,
		suggester: newSuggester(query),
	}

	s.registerTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(searchDrugProductsSpec(), s.handleSearchDrugProducts)
	s.mcp.AddTool(findTherapeuticEquivalentsSpec(), s.handleFindTherapeuticEquivalents)
	s.mcp.AddTool(getPatentsAndExclusivitySpec(), s.handleGetPatentsAndExclusivity)
	s.mcp.AddTool(forecastPatentCliffSpec(), s.handleForecastPatentCliff)
	s.mcp.AddTool(searchBiosimilarsSpec(), s.handleSearchBiosimilars)
	s.mcp.AddTool(getInterchangeableBiosimilarsSpec(), s.handleGetInterchangeableBiosimilars)
	s.mcp.AddTool(searchDrugLabelsSpec(), s.handleSearchDrugLabels)
	s.mcp.AddTool(searchAdverseEventsSpec(), s.handleSearchAdverseEvents)
	s.mcp.AddTool(searchDrugRecallsSpec(), s.handleSearchDrugRecalls)
	s.mcp.AddTool(suggestDrugNamesSpec(), s.handleSuggestDrugNames)
}

// ServeStdio serves the MCP protocol over stdin/stdout. It blocks until the
// client disconnects. Nothing else may write to stdout while this runs.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// HTTPHandler returns the streamable HTTP transport for mounting on a
// router.
func (s *Server) HTTPHandler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcp)
}

// toolJSON marshals a tool result and counts the call as a success.
func (s *Server) toolJSON(tool string, payload any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		metrics.RecordToolCall(tool, "error")
		return nil, fmt.Errorf("failed to encode %s result: %w", tool, err)
	}
	metrics.RecordToolCall(tool, "success")
	return mcp.NewToolResultText(string(data)), nil
}

// toolError reports a failed call to the client as tool output, not as a
// protocol error, so the model can read it and adjust.
func (s *Server) toolError(tool string, err error) *mcp.CallToolResult {
	metrics.RecordToolCall(tool, "error")
	logging.Warn("Tool call failed", "tool", tool, "error", err)
	return mcp.NewToolResultError(err.Error())
}
