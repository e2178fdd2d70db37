package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	patentReview := mcp.NewPrompt("drug_patent_review",
		mcp.WithPromptDescription("Walk through a drug's patent and exclusivity position: approved products, protections on file, and the loss-of-exclusivity forecast."),
		mcp.WithArgument("drug_name",
			mcp.ArgumentDescription("Brand or generic drug name to review."),
			mcp.RequiredArgument(),
		),
	)
	s.mcp.AddPrompt(patentReview, s.handleDrugPatentReviewPrompt)

	biosimilarLandscape := mcp.NewPrompt("biosimilar_landscape",
		mcp.WithPromptDescription("Survey the biosimilar competition for a reference biologic, including interchangeability status and exclusivity dates."),
		mcp.WithArgument("reference_product",
			mcp.ArgumentDescription("Name of the reference biologic product."),
			mcp.RequiredArgument(),
		),
	)
	s.mcp.AddPrompt(biosimilarLandscape, s.handleBiosimilarLandscapePrompt)
}

func (s *Server) handleDrugPatentReviewPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	drugName := req.Params.Arguments["drug_name"]
	if drugName == "" {
		return nil, fmt.Errorf("drug_name argument is required")
	}

	text := fmt.Sprintf(`Review the patent and exclusivity position of %q.

1. Use search_drug_products to identify the approved brand products and any generics already on the market.
2. For the lead brand application, use get_patents_and_exclusivity to list every patent and exclusivity grant on file.
3. Use forecast_patent_cliff to get the expiration range and the generic entry estimate.
4. Summarize: what protections remain, when generic entry becomes legally possible, and how the estimate was derived (latest patent vs. earliest exclusivity). Note that listed patents can be challenged or extended, so present the estimate as an Orange Book reading, not legal advice.`, drugName)

	return mcp.NewGetPromptResult(
		fmt.Sprintf("Patent review: %s", drugName),
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
		},
	), nil
}

func (s *Server) handleBiosimilarLandscapePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	referenceProduct := req.Params.Arguments["reference_product"]
	if referenceProduct == "" {
		return nil, fmt.Errorf("reference_product argument is required")
	}

	text := fmt.Sprintf(`Survey the biosimilar landscape for %q.

1. Use search_biosimilars to find the reference product record and every licensed biosimilar.
2. Use get_interchangeable_biosimilars to separate interchangeable products (pharmacy-substitutable) from biosimilars that still require a prescriber switch.
3. For each biosimilar, note the applicant, licensure date and any exclusivity expiration in the record.
4. Summarize the competitive picture: how many biosimilars exist, which are interchangeable, and whether the reference product retains any exclusivity.`, referenceProduct)

	return mcp.NewGetPromptResult(
		fmt.Sprintf("Biosimilar landscape: %s", referenceProduct),
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
		},
	), nil
}
