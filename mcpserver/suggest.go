package mcpserver

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sahilm/fuzzy"

	"github.com/fdatools/openfda-mcp/interfaces"
)

var errQueryTooShort = errors.New("query must be at least 2 characters")

// commonDrugNames seeds name suggestions before the local database has been
// built. Uppercase to match the FDA data's spelling.
var commonDrugNames = []string{
	"ACETAMINOPHEN", "ADALIMUMAB", "ADVIL", "ALBUTEROL", "AMLODIPINE",
	"AMOXICILLIN", "APIXABAN", "ASPIRIN", "ATORVASTATIN", "AZITHROMYCIN",
	"BUPROPION", "CETIRIZINE", "CLOPIDOGREL", "DULOXETINE", "ELIQUIS",
	"EMPAGLIFLOZIN", "ESOMEPRAZOLE", "FLUOXETINE", "GABAPENTIN", "HUMIRA",
	"HYDROCHLOROTHIAZIDE", "IBUPROFEN", "INSULIN GLARGINE", "JARDIANCE",
	"KEYTRUDA", "LANTUS", "LEVOTHYROXINE", "LIPITOR", "LISINOPRIL",
	"LOSARTAN", "METFORMIN", "METOPROLOL", "MONTELUKAST", "NAPROXEN",
	"OMEPRAZOLE", "OZEMPIC", "PANTOPRAZOLE", "PEMBROLIZUMAB", "PREDNISONE",
	"ROSUVASTATIN", "SEMAGLUTIDE", "SERTRALINE", "SIMVASTATIN", "STELARA",
	"TRAZODONE", "TRULICITY", "USTEKINUMAB", "WARFARIN", "XARELTO",
	"ZOLOFT",
}

const ingredientSeedLimit = 5000

// suggester ranks drug names against a query. Its candidate list starts from
// a built-in set and is extended once with the database's distinct
// ingredients after the first successful build.
type suggester struct {
	query interfaces.DrugQuery

	mu       sync.Mutex
	names    []string
	enriched bool
}

func newSuggester(query interfaces.DrugQuery) *suggester {
	names := make([]string, len(commonDrugNames))
	copy(names, commonDrugNames)
	return &suggester{query: query, names: names}
}

// candidates returns the suggestion corpus, pulling ingredients from the
// database the first time it is available. A build is never triggered here:
// suggestions must stay fast even on a cold server.
func (sg *suggester) candidates(ctx context.Context) []string {
	sg.mu.Lock()
	defer sg.mu.Unlock()

	if !sg.enriched && sg.query.Ready() {
		ingredients, err := sg.query.KnownIngredients(ctx, ingredientSeedLimit)
		if err == nil && len(ingredients) > 0 {
			seen := make(map[string]bool, len(sg.names)+len(ingredients))
			for _, name := range sg.names {
				seen[name] = true
			}
			for _, ingredient := range ingredients {
				if !seen[ingredient] {
					sg.names = append(sg.names, ingredient)
					seen[ingredient] = true
				}
			}
			sg.enriched = true
		}
	}

	return sg.names
}

// suggest returns up to limit candidate names ranked by fuzzy match quality.
func (sg *suggester) suggest(ctx context.Context, query string, limit int) []string {
	matches := fuzzy.Find(strings.ToUpper(query), sg.candidates(ctx))
	if limit > len(matches) {
		limit = len(matches)
	}
	suggestions := make([]string, 0, limit)
	for _, match := range matches[:limit] {
		suggestions = append(suggestions, match.Str)
	}
	return suggestions
}

type suggestionResult struct {
	Query       string   `json:"query"`
	Suggestions []string `json:"suggestions"`
	FromLocalDB bool     `json:"fromLocalDatabase"`
}

func (s *Server) handleSuggestDrugNames(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return s.toolError(toolSuggestDrugNames, err), nil
	}
	if len(strings.TrimSpace(query)) < 2 {
		return s.toolError(toolSuggestDrugNames, errQueryTooShort), nil
	}
	limit := req.GetInt("limit", 10)
	if limit <= 0 {
		limit = 10
	}

	result := suggestionResult{
		Query:       query,
		Suggestions: s.suggester.suggest(ctx, query, limit),
		FromLocalDB: s.query.Ready(),
	}
	return s.toolJSON(toolSuggestDrugNames, result)
}
