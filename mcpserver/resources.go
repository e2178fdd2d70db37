package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/fdatools/openfda-mcp/openfda"
)

const datasetsResourceURI = "openfda://datasets"

func (s *Server) registerResources() {
	datasets := mcp.NewResource(datasetsResourceURI,
		"OpenFDA drug datasets",
		mcp.WithResourceDescription("Catalog of the data sources this server answers from: the locally indexed Orange Book and Purple Book, and the live OpenFDA drug endpoints."),
		mcp.WithMIMEType("application/json"),
	)
	s.mcp.AddResource(datasets, s.readDatasetsResource)

	for _, endpoint := range openfda.Endpoints() {
		uri := fieldResourceURI(endpoint)
		resource := mcp.NewResource(uri,
			fmt.Sprintf("Searchable fields: %s", endpoint),
			mcp.WithResourceDescription(fmt.Sprintf("Field names accepted by the %s passthrough tools.", endpoint)),
			mcp.WithMIMEType("application/json"),
		)
		s.mcp.AddResource(resource, s.fieldsResourceReader(endpoint))
	}
}

// fieldResourceURI flattens an endpoint path into a resource URI, e.g.
// drug/label becomes openfda://fields/drug-label.
func fieldResourceURI(endpoint openfda.Endpoint) string {
	return "openfda://fields/" + strings.ReplaceAll(string(endpoint), "/", "-")
}

func (s *Server) readDatasetsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	type dataset struct {
		Name        string `json:"name"`
		Kind        string `json:"kind"`
		Description string `json:"description"`
		FieldsURI   string `json:"fieldsUri,omitempty"`
	}

	catalog := []dataset{
		{
			Name:        "orange-book",
			Kind:        "local",
			Description: "FDA Orange Book: approved drug products with therapeutic equivalence evaluations, patents and exclusivity. Downloaded and indexed locally; powers the product, equivalence and patent tools.",
		},
		{
			Name:        "purple-book",
			Kind:        "local",
			Description: "FDA Purple Book: licensed biological products including biosimilars and interchangeability status. Downloaded and indexed locally; powers the biosimilar tools.",
		},
	}
	for _, endpoint := range openfda.Endpoints() {
		catalog = append(catalog, dataset{
			Name:        string(endpoint),
			Kind:        "openfda",
			Description: fmt.Sprintf("Live api.fda.gov %s queries.", endpoint),
			FieldsURI:   fieldResourceURI(endpoint),
		})
	}

	payload, err := json.MarshalIndent(map[string]any{"datasets": catalog}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode dataset catalog: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      datasetsResourceURI,
			MIMEType: "application/json",
			Text:     string(payload),
		},
	}, nil
}

func (s *Server) fieldsResourceReader(endpoint openfda.Endpoint) func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		payload, err := json.MarshalIndent(map[string]any{
			"endpoint":         endpoint,
			"searchableFields": openfda.SearchableFields(endpoint),
		}, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode field list: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      fieldResourceURI(endpoint),
				MIMEType: "application/json",
				Text:     string(payload),
			},
		}, nil
	}
}
