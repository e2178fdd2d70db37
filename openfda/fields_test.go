package openfda

import (
	"errors"
	"testing"
)

func TestEndpoints(t *testing.T) {
	endpoints := Endpoints()

	expected := []Endpoint{EndpointDrugLabel, EndpointDrugEvent, EndpointDrugEnforcement, EndpointDrugNDC}
	if len(endpoints) != len(expected) {
		t.Fatalf("Expected %d endpoints, got %d", len(expected), len(endpoints))
	}
	for i, e := range expected {
		if endpoints[i] != e {
			t.Errorf("Expected endpoint %d to be %s, got %s", i, e, endpoints[i])
		}
	}
}

func TestValidateField(t *testing.T) {
	tests := []struct {
		name     string
		endpoint Endpoint
		field    string
		wantErr  bool
	}{
		{"label brand name", EndpointDrugLabel, "openfda.brand_name", false},
		{"label warnings", EndpointDrugLabel, "warnings", false},
		{"event reaction", EndpointDrugEvent, "patient.reaction.reactionmeddrapt", false},
		{"enforcement classification", EndpointDrugEnforcement, "classification", false},
		{"ndc labeler", EndpointDrugNDC, "labeler_name", false},
		{"field from another endpoint", EndpointDrugLabel, "classification", true},
		{"typo", EndpointDrugLabel, "openfda.brandname", true},
		{"empty field", EndpointDrugEvent, "", true},
		{"unknown endpoint", Endpoint("drug/unknown"), "warnings", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateField(tt.endpoint, tt.field)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidField) {
					t.Errorf("Expected ErrInvalidField, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Expected field to validate, got %v", err)
			}
		})
	}
}

func TestSearchableFields(t *testing.T) {
	fields := SearchableFields(EndpointDrugNDC)
	if len(fields) == 0 {
		t.Fatal("Expected fields for the NDC endpoint")
	}

	// Mutating the returned slice must not touch the allowlist
	fields[0] = "tampered"
	if err := ValidateField(EndpointDrugNDC, "tampered"); err == nil {
		t.Error("Expected the allowlist to be unaffected by caller mutation")
	}
	if err := ValidateField(EndpointDrugNDC, "brand_name"); err != nil {
		t.Errorf("Expected brand_name to remain valid, got %v", err)
	}
}

func TestSearchableFieldsUnknownEndpoint(t *testing.T) {
	if fields := SearchableFields(Endpoint("device/event")); fields != nil {
		t.Errorf("Expected nil for an unknown endpoint, got %v", fields)
	}
}
