package mcpserver

import (
	"context"
	"strings"
	"testing"
)

func TestSuggestMatchesPartialName(t *testing.T) {
	sg := newSuggester(&fakeDrugQuery{})

	suggestions := sg.suggest(context.Background(), "ibu", 10)
	if len(suggestions) != 1 || suggestions[0] != "IBUPROFEN" {
		t.Errorf("Expected [IBUPROFEN], got %v", suggestions)
	}
}

func TestSuggestIsCaseInsensitive(t *testing.T) {
	sg := newSuggester(&fakeDrugQuery{})

	suggestions := sg.suggest(context.Background(), "AdVi", 10)
	if len(suggestions) != 1 || suggestions[0] != "ADVIL" {
		t.Errorf("Expected [ADVIL], got %v", suggestions)
	}
}

func TestSuggestRespectsLimit(t *testing.T) {
	sg := newSuggester(&fakeDrugQuery{})

	all := sg.suggest(context.Background(), "se", 50)
	if len(all) < 3 {
		t.Fatalf("Expected several matches for 'se', got %v", all)
	}

	capped := sg.suggest(context.Background(), "se", 2)
	if len(capped) != 2 {
		t.Errorf("Expected 2 suggestions, got %d", len(capped))
	}
	// The limit trims the tail, the best matches stay
	if capped[0] != all[0] || capped[1] != all[1] {
		t.Errorf("Expected the top matches to survive the limit, got %v vs %v", capped, all[:2])
	}
}

func TestSuggestNoMatch(t *testing.T) {
	sg := newSuggester(&fakeDrugQuery{})

	if suggestions := sg.suggest(context.Background(), "qqxx", 10); len(suggestions) != 0 {
		t.Errorf("Expected no suggestions, got %v", suggestions)
	}
}

func TestSuggesterEnrichesOnceFromDatabase(t *testing.T) {
	query := &fakeDrugQuery{ready: true, ingredients: []string{"ZALTOPROFEN"}}
	sg := newSuggester(query)

	suggestions := sg.suggest(context.Background(), "zalto", 10)
	if len(suggestions) != 1 || suggestions[0] != "ZALTOPROFEN" {
		t.Errorf("Expected the database ingredient, got %v", suggestions)
	}
	if query.ingredientCalls != 1 {
		t.Fatalf("Expected one ingredient fetch, got %d", query.ingredientCalls)
	}

	sg.suggest(context.Background(), "zalto", 10)
	if query.ingredientCalls != 1 {
		t.Errorf("Expected the corpus to be fetched once, got %d fetches", query.ingredientCalls)
	}
}

func TestSuggesterSkipsDatabaseUntilReady(t *testing.T) {
	query := &fakeDrugQuery{ready: false, ingredients: []string{"ZALTOPROFEN"}}
	sg := newSuggester(query)

	if suggestions := sg.suggest(context.Background(), "zalto", 10); len(suggestions) != 0 {
		t.Errorf("Expected no database names before the build, got %v", suggestions)
	}
	if query.ingredientCalls != 0 {
		t.Errorf("Expected no ingredient fetch on a cold server, got %d", query.ingredientCalls)
	}
}

func TestSuggesterDeduplicatesIngredients(t *testing.T) {
	query := &fakeDrugQuery{ready: true, ingredients: []string{"ADVIL", "ZALTOPROFEN"}}
	sg := newSuggester(query)

	names := sg.candidates(context.Background())
	count := 0
	for _, name := range names {
		if name == "ADVIL" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("Expected ADVIL once in the corpus, got %d", count)
	}
}

func TestHandleSuggestDrugNames(t *testing.T) {
	query := &fakeDrugQuery{}
	s := newHandlerTestServer(query, nil)

	result, err := s.handleSuggestDrugNames(context.Background(), toolRequest(map[string]any{
		"query": "advi",
	}))
	if err != nil {
		t.Fatalf("Handler failed: %v", err)
	}

	var decoded suggestionResult
	decodeResult(t, result, &decoded)
	if decoded.Query != "advi" {
		t.Errorf("Expected the query echoed, got %q", decoded.Query)
	}
	if len(decoded.Suggestions) != 1 || decoded.Suggestions[0] != "ADVIL" {
		t.Errorf("Expected [ADVIL], got %v", decoded.Suggestions)
	}
	if decoded.FromLocalDB {
		t.Error("Expected fromLocalDatabase false before the build")
	}
}

func TestHandleSuggestDrugNamesReportsDatabaseState(t *testing.T) {
	query := &fakeDrugQuery{ready: true}
	s := newHandlerTestServer(query, nil)

	result, err := s.handleSuggestDrugNames(context.Background(), toolRequest(map[string]any{
		"query": "advi",
	}))
	if err != nil {
		t.Fatalf("Handler failed: %v", err)
	}

	var decoded suggestionResult
	decodeResult(t, result, &decoded)
	if !decoded.FromLocalDB {
		t.Error("Expected fromLocalDatabase true once the database is ready")
	}
}

func TestHandleSuggestDrugNamesTooShort(t *testing.T) {
	s := newHandlerTestServer(nil, nil)

	result, err := s.handleSuggestDrugNames(context.Background(), toolRequest(map[string]any{
		"query": " a ",
	}))
	if err != nil {
		t.Fatalf("Handler failed: %v", err)
	}
	if !result.IsError {
		t.Fatal("Expected IsError for a one-character query")
	}
	if !strings.Contains(resultText(t, result), "at least 2 characters") {
		t.Errorf("Expected the length requirement in the output, got %q", resultText(t, result))
	}
}

func TestHandleSuggestDrugNamesMissingQuery(t *testing.T) {
	s := newHandlerTestServer(nil, nil)

	result, err := s.handleSuggestDrugNames(context.Background(), toolRequest(nil))
	if err != nil {
		t.Fatalf("Handler failed: %v", err)
	}
	if !result.IsError {
		t.Error("Expected IsError for a missing query")
	}
}

func TestHandleSuggestDrugNamesLimit(t *testing.T) {
	s := newHandlerTestServer(nil, nil)

	result, err := s.handleSuggestDrugNames(context.Background(), toolRequest(map[string]any{
		"query": "se",
		"limit": float64(2),
	}))
	if err != nil {
		t.Fatalf("Handler failed: %v", err)
	}

	var decoded suggestionResult
	decodeResult(t, result, &decoded)
	if len(decoded.Suggestions) != 2 {
		t.Errorf("Expected 2 suggestions, got %v", decoded.Suggestions)
	}
}
