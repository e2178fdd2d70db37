package mcpserver

import "github.com/mark3labs/mcp-go/mcp"

// Tool names double as metric labels.
const (
	toolSearchDrugProducts            = "search_drug_products"
	toolFindTherapeuticEquivalents    = "find_therapeutic_equivalents"
	toolGetPatentsAndExclusivity      = "get_patents_and_exclusivity"
	toolForecastPatentCliff           = "forecast_patent_cliff"
	toolSearchBiosimilars             = "search_biosimilars"
	toolGetInterchangeableBiosimilars = "get_interchangeable_biosimilars"
	toolSearchDrugLabels              = "search_drug_labels"
	toolSearchAdverseEvents           = "search_adverse_events"
	toolSearchDrugRecalls             = "search_drug_recalls"
	toolSuggestDrugNames              = "suggest_drug_names"
)

func searchDrugProductsSpec() mcp.Tool {
	return mcp.NewTool(toolSearchDrugProducts,
		mcp.WithDescription("Search FDA-approved drug products by name and partition the matches into brand products (new drug applications) and generics (abbreviated applications). Matches against ingredient, trade name and applicant name."),
		mcp.WithString("drug_name",
			mcp.Required(),
			mcp.Description("Drug name to search for, e.g. 'ibuprofen' or 'ADVIL'. Partial names match by prefix."),
		),
		mcp.WithBoolean("include_generics",
			mcp.DefaultBool(true),
			mcp.Description("Include generic products in the result. Defaults to true."),
		),
		mcp.WithTitleAnnotation("Search Drug Products"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}

func findTherapeuticEquivalentsSpec() mcp.Tool {
	return mcp.NewTool(toolFindTherapeuticEquivalents,
		mcp.WithDescription("Find the reference listed drug for a name and split its generics into AB-rated (FDA-substitutable) and non-AB-rated groups."),
		mcp.WithString("drug_name",
			mcp.Required(),
			mcp.Description("Brand or generic drug name to find equivalents for."),
		),
		mcp.WithTitleAnnotation("Find Therapeutic Equivalents"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}

func getPatentsAndExclusivitySpec() mcp.Tool {
	return mcp.NewTool(toolGetPatentsAndExclusivity,
		mcp.WithDescription("List every Orange Book patent and regulatory exclusivity grant filed against one FDA application number. The number is an exact key; use search_drug_products to find it first."),
		mcp.WithString("application_number",
			mcp.Required(),
			mcp.Description("FDA application number, e.g. '018989'. Up to six digits; shorter values are zero-padded."),
		),
		mcp.WithTitleAnnotation("Get Patents and Exclusivity"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}

func forecastPatentCliffSpec() mcp.Tool {
	return mcp.NewTool(toolForecastPatentCliff,
		mcp.WithDescription("Forecast when generic competition becomes possible for a brand drug: patent expiration range, earliest exclusivity expiration, the generic entry estimate and years until loss of exclusivity."),
		mcp.WithString("drug_name",
			mcp.Required(),
			mcp.Description("Brand drug name to forecast."),
		),
		mcp.WithNumber("years_ahead",
			mcp.DefaultNumber(5),
			mcp.Description("Forecast horizon in years, echoed back in the analysis. Defaults to 5."),
		),
		mcp.WithTitleAnnotation("Forecast Patent Cliff"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}

func searchBiosimilarsSpec() mcp.Tool {
	return mcp.NewTool(toolSearchBiosimilars,
		mcp.WithDescription("Search licensed biologics by name and identify the reference product and its candidate biosimilars from FDA's Purple Book."),
		mcp.WithString("drug_name",
			mcp.Required(),
			mcp.Description("Biologic proper name or proprietary name, e.g. 'adalimumab' or 'HUMIRA'."),
		),
		mcp.WithTitleAnnotation("Search Biosimilars"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}

func getInterchangeableBiosimilarsSpec() mcp.Tool {
	return mcp.NewTool(toolGetInterchangeableBiosimilars,
		mcp.WithDescription("Partition a reference biologic's biosimilars into those FDA has designated interchangeable (pharmacy-substitutable) and those that are similar but not interchangeable."),
		mcp.WithString("reference_product",
			mcp.Required(),
			mcp.Description("Name of the reference biologic product."),
		),
		mcp.WithTitleAnnotation("Get Interchangeable Biosimilars"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}

func searchDrugLabelsSpec() mcp.Tool {
	return mcp.NewTool(toolSearchDrugLabels,
		mcp.WithDescription("Search FDA drug product labeling (package inserts) on api.fda.gov. At least one search parameter is required unless a cursor is given."),
		mcp.WithString("brand_name",
			mcp.Description("Brand name to match, e.g. 'Ozempic'."),
		),
		mcp.WithString("generic_name",
			mcp.Description("Generic (established) name to match."),
		),
		mcp.WithString("manufacturer",
			mcp.Description("Manufacturer name to match."),
		),
		mcp.WithString("indication",
			mcp.Description("Free text matched against the indications-and-usage section."),
		),
		mcp.WithNumber("limit",
			mcp.DefaultNumber(5),
			mcp.Description("Results per page, 1-100. Defaults to 5."),
		),
		mcp.WithString("cursor",
			mcp.Description("Opaque cursor from a previous call to fetch the next page. Overrides the other parameters."),
		),
		mcp.WithTitleAnnotation("Search Drug Labels"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

func searchAdverseEventsSpec() mcp.Tool {
	return mcp.NewTool(toolSearchAdverseEvents,
		mcp.WithDescription("Search FAERS adverse event reports on api.fda.gov for a drug, optionally filtered to a reaction term or serious outcomes, or aggregated into reaction counts."),
		mcp.WithString("drug_name",
			mcp.Description("Drug name as reported, matched against the medicinal product field."),
		),
		mcp.WithString("reaction",
			mcp.Description("MedDRA reaction term to filter by, e.g. 'nausea'."),
		),
		mcp.WithBoolean("serious_only",
			mcp.DefaultBool(false),
			mcp.Description("Restrict to reports marked serious."),
		),
		mcp.WithBoolean("count_by_reaction",
			mcp.DefaultBool(false),
			mcp.Description("Return reaction term frequencies instead of individual reports."),
		),
		mcp.WithNumber("limit",
			mcp.DefaultNumber(5),
			mcp.Description("Results per page, 1-100. Defaults to 5."),
		),
		mcp.WithString("cursor",
			mcp.Description("Opaque cursor from a previous call to fetch the next page. Overrides the other parameters."),
		),
		mcp.WithTitleAnnotation("Search Adverse Events"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

func searchDrugRecallsSpec() mcp.Tool {
	return mcp.NewTool(toolSearchDrugRecalls,
		mcp.WithDescription("Search FDA drug enforcement (recall) records on api.fda.gov by product, recall classification or status."),
		mcp.WithString("drug_name",
			mcp.Description("Text matched against the recalled product description."),
		),
		mcp.WithString("classification",
			mcp.Description("Recall classification: 'Class I' (most serious), 'Class II' or 'Class III'."),
		),
		mcp.WithString("status",
			mcp.Description("Recall status, e.g. 'Ongoing' or 'Terminated'."),
		),
		mcp.WithNumber("limit",
			mcp.DefaultNumber(5),
			mcp.Description("Results per page, 1-100. Defaults to 5."),
		),
		mcp.WithString("cursor",
			mcp.Description("Opaque cursor from a previous call to fetch the next page. Overrides the other parameters."),
		),
		mcp.WithTitleAnnotation("Search Drug Recalls"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

func suggestDrugNamesSpec() mcp.Tool {
	return mcp.NewTool(toolSuggestDrugNames,
		mcp.WithDescription("Suggest drug name completions for a partial or misspelled name, drawn from common drug names and the ingredients in the local database. Useful before the search tools when the exact spelling is unknown."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Partial drug name, at least 2 characters."),
		),
		mcp.WithNumber("limit",
			mcp.DefaultNumber(10),
			mcp.Description("Maximum suggestions to return. Defaults to 10."),
		),
		mcp.WithTitleAnnotation("Suggest Drug Names"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}
