package openfda

import (
	"errors"
	"fmt"
)

// Endpoint identifies one of the OpenFDA drug datasets.
type Endpoint string

const (
	EndpointDrugLabel       Endpoint = "drug/label"
	EndpointDrugEvent       Endpoint = "drug/event"
	EndpointDrugEnforcement Endpoint = "drug/enforcement"
	EndpointDrugNDC         Endpoint = "drug/ndc"
)

// ErrInvalidField reports a search, sort or count field that the endpoint
// does not support.
var ErrInvalidField = errors.New("invalid field")

// Endpoints lists the supported datasets in a stable order.
func Endpoints() []Endpoint {
	return []Endpoint{EndpointDrugLabel, EndpointDrugEvent, EndpointDrugEnforcement, EndpointDrugNDC}
}

// searchableFields is a compact allowlist per endpoint. It covers the fields
// the MCP tools expose, not the full OpenFDA schema. Unknown fields are
// rejected before a request is sent so typos surface as clear errors instead
// of empty result sets.
var searchableFields = map[Endpoint][]string{
	EndpointDrugLabel: {
		"openfda.brand_name",
		"openfda.generic_name",
		"openfda.manufacturer_name",
		"openfda.substance_name",
		"openfda.product_ndc",
		"openfda.route",
		"indications_and_usage",
		"warnings",
		"boxed_warning",
		"active_ingredient",
		"effective_time",
	},
	EndpointDrugEvent: {
		"patient.drug.medicinalproduct",
		"patient.drug.openfda.brand_name",
		"patient.drug.openfda.generic_name",
		"patient.drug.openfda.substance_name",
		"patient.reaction.reactionmeddrapt",
		"patient.reaction.reactionoutcome",
		"serious",
		"seriousnessdeath",
		"receivedate",
		"occurcountry",
	},
	EndpointDrugEnforcement: {
		"product_description",
		"reason_for_recall",
		"classification",
		"status",
		"recalling_firm",
		"recall_initiation_date",
		"report_date",
		"state",
		"distribution_pattern",
	},
	EndpointDrugNDC: {
		"brand_name",
		"generic_name",
		"labeler_name",
		"product_type",
		"route",
		"dosage_form",
		"marketing_category",
		"active_ingredients.name",
	},
}

// ValidateField checks that a field is searchable on an endpoint.
func ValidateField(endpoint Endpoint, field string) error {
	fields, ok := searchableFields[endpoint]
	if !ok {
		return fmt.Errorf("%w: unknown endpoint %q", ErrInvalidField, string(endpoint))
	}
	for _, f := range fields {
		if f == field {
			return nil
		}
	}
	return fmt.Errorf("%w: %q is not searchable on %s", ErrInvalidField, field, endpoint)
}

// SearchableFields returns the allowlisted fields for an endpoint, or nil for
// an unknown endpoint. The returned slice is a copy.
func SearchableFields(endpoint Endpoint) []string {
	fields, ok := searchableFields[endpoint]
	if !ok {
		return nil
	}
	out := make([]string, len(fields))
	copy(out, fields)
	return out
}
