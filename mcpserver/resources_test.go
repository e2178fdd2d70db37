package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/fdatools/openfda-mcp/openfda"
)

func TestFieldResourceURI(t *testing.T) {
	tests := []struct {
		endpoint openfda.Endpoint
		expected string
	}{
		{openfda.EndpointDrugLabel, "openfda://fields/drug-label"},
		{openfda.EndpointDrugEvent, "openfda://fields/drug-event"},
		{openfda.EndpointDrugEnforcement, "openfda://fields/drug-enforcement"},
		{openfda.EndpointDrugNDC, "openfda://fields/drug-ndc"},
	}

	for _, tt := range tests {
		if got := fieldResourceURI(tt.endpoint); got != tt.expected {
			t.Errorf("Expected %s, got %s", tt.expected, got)
		}
	}
}

func TestReadDatasetsResource(t *testing.T) {
	s := newHandlerTestServer(nil, nil)

	contents, err := s.readDatasetsResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("Resource read failed: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("Expected one content block, got %d", len(contents))
	}

	text, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("Expected text contents, got %T", contents[0])
	}
	if text.URI != datasetsResourceURI {
		t.Errorf("Expected URI %s, got %s", datasetsResourceURI, text.URI)
	}
	if text.MIMEType != "application/json" {
		t.Errorf("Expected JSON MIME type, got %s", text.MIMEType)
	}

	var decoded struct {
		Datasets []struct {
			Name      string `json:"name"`
			Kind      string `json:"kind"`
			FieldsURI string `json:"fieldsUri"`
		} `json:"datasets"`
	}
	if err := json.Unmarshal([]byte(text.Text), &decoded); err != nil {
		t.Fatalf("Failed to decode catalog: %v", err)
	}

	// Two local datasets plus one entry per OpenFDA endpoint
	expected := 2 + len(openfda.Endpoints())
	if len(decoded.Datasets) != expected {
		t.Fatalf("Expected %d datasets, got %d", expected, len(decoded.Datasets))
	}

	local, passthrough := 0, 0
	for _, d := range decoded.Datasets {
		switch d.Kind {
		case "local":
			local++
			if d.FieldsURI != "" {
				t.Errorf("Expected no fields URI for local dataset %s", d.Name)
			}
		case "openfda":
			passthrough++
			if d.FieldsURI != fieldResourceURI(openfda.Endpoint(d.Name)) {
				t.Errorf("Expected fields URI for %s, got %s", d.Name, d.FieldsURI)
			}
		default:
			t.Errorf("Unexpected dataset kind %q", d.Kind)
		}
	}
	if local != 2 || passthrough != len(openfda.Endpoints()) {
		t.Errorf("Expected 2 local and %d openfda datasets, got %d/%d",
			len(openfda.Endpoints()), local, passthrough)
	}
}

func TestFieldsResourceReader(t *testing.T) {
	s := newHandlerTestServer(nil, nil)

	reader := s.fieldsResourceReader(openfda.EndpointDrugNDC)
	contents, err := reader(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("Resource read failed: %v", err)
	}

	text, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("Expected text contents, got %T", contents[0])
	}
	if text.URI != "openfda://fields/drug-ndc" {
		t.Errorf("Expected the NDC fields URI, got %s", text.URI)
	}

	var decoded struct {
		Endpoint         string   `json:"endpoint"`
		SearchableFields []string `json:"searchableFields"`
	}
	if err := json.Unmarshal([]byte(text.Text), &decoded); err != nil {
		t.Fatalf("Failed to decode field list: %v", err)
	}
	if decoded.Endpoint != "drug/ndc" {
		t.Errorf("Expected endpoint drug/ndc, got %s", decoded.Endpoint)
	}
	if len(decoded.SearchableFields) != len(openfda.SearchableFields(openfda.EndpointDrugNDC)) {
		t.Errorf("Expected the full allowlist, got %v", decoded.SearchableFields)
	}
}
