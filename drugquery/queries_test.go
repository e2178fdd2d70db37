package drugquery

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

// readyTestService builds the fixture database once and pins the clock so
// year calculations stay deterministic.
func readyTestService(t *testing.T) *Service {
	t.Helper()

	svc, _ := newTestService(t)
	if err := svc.EnsureReady(context.Background()); err != nil {
		t.Fatalf("EnsureReady failed: %v", err)
	}

	fixed := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	if err := os.Chtimes(svc.opts.StorePath, fixed, fixed); err != nil {
		t.Fatalf("Failed to pin file time: %v", err)
	}
	svc.now = func() time.Time { return fixed }
	return svc
}

func TestSearchBrandAndGenericProducts(t *testing.T) {
	svc := readyTestService(t)
	ctx := context.Background()

	result, err := svc.SearchBrandAndGenericProducts(ctx, "ibuprofen", true)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(result.BrandProducts) != 1 {
		t.Fatalf("Expected 1 brand product, got %d", len(result.BrandProducts))
	}
	if result.BrandProducts[0].TradeName != "ADVIL" {
		t.Errorf("Expected ADVIL, got %s", result.BrandProducts[0].TradeName)
	}
	if len(result.GenericProducts) != 2 {
		t.Errorf("Expected 2 generic products, got %d", len(result.GenericProducts))
	}
	if result.TotalCount != 3 {
		t.Errorf("Expected total count 3, got %d", result.TotalCount)
	}
}

func TestSearchBrandAndGenericProductsExcludingGenerics(t *testing.T) {
	svc := readyTestService(t)

	result, err := svc.SearchBrandAndGenericProducts(context.Background(), "ibuprofen", false)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(result.BrandProducts) != 1 {
		t.Errorf("Expected 1 brand product, got %d", len(result.BrandProducts))
	}
	if len(result.GenericProducts) != 0 {
		t.Errorf("Expected no generics when excluded, got %d", len(result.GenericProducts))
	}
	// The count covers only what is returned
	if result.TotalCount != 1 {
		t.Errorf("Expected total count 1, got %d", result.TotalCount)
	}
}

func TestSearchBrandAndGenericProductsNoMatch(t *testing.T) {
	svc := readyTestService(t)

	result, err := svc.SearchBrandAndGenericProducts(context.Background(), "atorvastatin", true)
	if err != nil {
		t.Fatalf("An empty search is a success, not an error: %v", err)
	}

	if result.BrandProducts == nil || result.GenericProducts == nil {
		t.Error("Result slices must be non-nil")
	}
	if result.TotalCount != 0 {
		t.Errorf("Expected total count 0, got %d", result.TotalCount)
	}
}

func TestFindTherapeuticEquivalents(t *testing.T) {
	svc := readyTestService(t)

	result, err := svc.FindTherapeuticEquivalents(context.Background(), "ibuprofen")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}

	if result.ReferenceListedDrug == nil {
		t.Fatal("Expected a reference listed drug")
	}
	if result.ReferenceListedDrug.TradeName != "ADVIL" {
		t.Errorf("Expected ADVIL as RLD, got %s", result.ReferenceListedDrug.TradeName)
	}

	if len(result.TERatedGenerics) != 1 {
		t.Fatalf("Expected 1 TE-rated generic, got %d", len(result.TERatedGenerics))
	}
	if result.TERatedGenerics[0].ApplNo != "074320" {
		t.Errorf("Expected the AB-rated generic, got %s", result.TERatedGenerics[0].ApplNo)
	}

	if len(result.NonTERatedGenerics) != 1 {
		t.Fatalf("Expected 1 non-TE-rated generic, got %d", len(result.NonTERatedGenerics))
	}
	if result.NonTERatedGenerics[0].ApplNo != "075000" {
		t.Errorf("Expected the BX-rated generic, got %s", result.NonTERatedGenerics[0].ApplNo)
	}
}

func TestFindTherapeuticEquivalentsBrandFallback(t *testing.T) {
	svc := readyTestService(t)

	// No ketoprofen product carries the RLD flag, the first brand stands in
	result, err := svc.FindTherapeuticEquivalents(context.Background(), "ketoprofen")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}

	if result.ReferenceListedDrug == nil {
		t.Fatal("Expected the brand fallback as reference")
	}
	if result.ReferenceListedDrug.TradeName != "ORUDIS" {
		t.Errorf("Expected ORUDIS fallback, got %s", result.ReferenceListedDrug.TradeName)
	}
	if len(result.TERatedGenerics) != 1 {
		t.Errorf("Expected 1 TE-rated generic, got %d", len(result.TERatedGenerics))
	}
}

func TestFindTherapeuticEquivalentsNoMatch(t *testing.T) {
	svc := readyTestService(t)

	result, err := svc.FindTherapeuticEquivalents(context.Background(), "atorvastatin")
	if err != nil {
		t.Fatalf("An empty search is a success, not an error: %v", err)
	}

	if result.ReferenceListedDrug != nil {
		t.Errorf("Expected no reference drug, got %+v", result.ReferenceListedDrug)
	}
	if result.TERatedGenerics == nil || result.NonTERatedGenerics == nil {
		t.Error("Result slices must be non-nil")
	}
}

func TestGetPatentsAndExclusivity(t *testing.T) {
	svc := readyTestService(t)

	result, err := svc.GetPatentsAndExclusivity(context.Background(), "018989")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}

	if result.Application == nil || result.Application.TradeName != "ADVIL" {
		t.Fatalf("Expected ADVIL application, got %+v", result.Application)
	}
	if len(result.Patents) != 2 {
		t.Errorf("Expected 2 patents, got %d", len(result.Patents))
	}
	if len(result.Exclusivity) != 1 {
		t.Errorf("Expected 1 exclusivity, got %d", len(result.Exclusivity))
	}
	if result.Exclusivity[0].ExclusivityCode != "NCE" {
		t.Errorf("Expected NCE exclusivity, got %s", result.Exclusivity[0].ExclusivityCode)
	}
}

func TestGetPatentsAndExclusivityNoProtections(t *testing.T) {
	svc := readyTestService(t)

	// The generic application exists but has nothing filed against it
	result, err := svc.GetPatentsAndExclusivity(context.Background(), "074320")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}

	if result.Application == nil {
		t.Fatal("Expected the application to resolve")
	}
	if result.Patents == nil || len(result.Patents) != 0 {
		t.Errorf("Expected empty non-nil patents, got %v", result.Patents)
	}
	if result.Exclusivity == nil || len(result.Exclusivity) != 0 {
		t.Errorf("Expected empty non-nil exclusivity, got %v", result.Exclusivity)
	}
}

func TestGetPatentsAndExclusivityUnknownApplication(t *testing.T) {
	svc := readyTestService(t)

	_, err := svc.GetPatentsAndExclusivity(context.Background(), "999999")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown application, got %v", err)
	}
}

func TestForecastPatentCliff(t *testing.T) {
	svc := readyTestService(t)

	forecast, err := svc.ForecastPatentCliff(context.Background(), "ibuprofen", 10)
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}

	if forecast.Drug == nil || forecast.Drug.TradeName != "ADVIL" {
		t.Fatalf("Expected ADVIL as the forecast subject, got %+v", forecast.Drug)
	}
	if len(forecast.Patents) != 2 || len(forecast.Exclusivity) != 1 {
		t.Errorf("Expected 2 patents and 1 exclusivity, got %d/%d",
			len(forecast.Patents), len(forecast.Exclusivity))
	}

	a := forecast.Analysis
	if a.YearsAhead != 10 {
		t.Errorf("Expected yearsAhead echoed as 10, got %d", a.YearsAhead)
	}
	if a.EarliestPatentExpiration == nil || *a.EarliestPatentExpiration != "Jan 1, 2027" {
		t.Errorf("Expected earliest patent Jan 1, 2027, got %v", a.EarliestPatentExpiration)
	}
	if a.LatestPatentExpiration == nil || *a.LatestPatentExpiration != "Jan 1, 2030" {
		t.Errorf("Expected latest patent Jan 1, 2030, got %v", a.LatestPatentExpiration)
	}
	if a.EarliestExclusivityExpiration == nil || *a.EarliestExclusivityExpiration != "Jan 1, 2028" {
		t.Errorf("Expected earliest exclusivity Jan 1, 2028, got %v", a.EarliestExclusivityExpiration)
	}

	// Entry is gated by the later of the patent estate and exclusivity
	if a.GenericEntryEstimate == nil || *a.GenericEntryEstimate != "Jan 1, 2030" {
		t.Errorf("Expected entry estimate Jan 1, 2030, got %v", a.GenericEntryEstimate)
	}
	// From the pinned clock 2026-08-25 to 2030-01-01
	if a.YearsUntilLossOfExclusivity == nil || *a.YearsUntilLossOfExclusivity != 3.4 {
		t.Errorf("Expected 3.4 years until loss of exclusivity, got %v", a.YearsUntilLossOfExclusivity)
	}
}

func TestForecastPatentCliffNoProtections(t *testing.T) {
	svc := readyTestService(t)

	// NAPROSYN is a brand with no patents or exclusivity on file
	forecast, err := svc.ForecastPatentCliff(context.Background(), "naproxen", 5)
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}

	a := forecast.Analysis
	if a.GenericEntryEstimate != nil {
		t.Errorf("Expected no entry estimate, got %v", *a.GenericEntryEstimate)
	}
	if a.YearsUntilLossOfExclusivity != nil {
		t.Errorf("Expected null years, got %v", *a.YearsUntilLossOfExclusivity)
	}
	if a.YearsAhead != 5 {
		t.Errorf("Expected yearsAhead echoed as 5, got %d", a.YearsAhead)
	}
}

func TestForecastPatentCliffNoBrand(t *testing.T) {
	svc := readyTestService(t)

	// "mylan" only matches a generic applicant
	_, err := svc.ForecastPatentCliff(context.Background(), "mylan", 10)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound when no brand matches, got %v", err)
	}
}

func TestSearchBiosimilars(t *testing.T) {
	svc := readyTestService(t)

	result, err := svc.SearchBiosimilars(context.Background(), "adalimumab")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if result.TotalCount != 3 {
		t.Errorf("Expected total count 3, got %d", result.TotalCount)
	}
	if result.ReferenceProduct == nil || result.ReferenceProduct.BLANumber != "125057" {
		t.Fatalf("Expected Humira as reference, got %+v", result.ReferenceProduct)
	}
	if len(result.Biosimilars) != 2 {
		t.Fatalf("Expected 2 biosimilars, got %d", len(result.Biosimilars))
	}
	for _, b := range result.Biosimilars {
		if b.BLANumber == "125057" {
			t.Error("Reference product must not appear in the biosimilar list")
		}
	}
}

func TestSearchBiosimilarsNoMatch(t *testing.T) {
	svc := readyTestService(t)

	result, err := svc.SearchBiosimilars(context.Background(), "etanercept")
	if err != nil {
		t.Fatalf("An empty search is a success, not an error: %v", err)
	}

	if result.ReferenceProduct != nil {
		t.Errorf("Expected no reference product, got %+v", result.ReferenceProduct)
	}
	if result.Biosimilars == nil || len(result.Biosimilars) != 0 {
		t.Errorf("Expected empty non-nil biosimilars, got %v", result.Biosimilars)
	}
	if result.TotalCount != 0 {
		t.Errorf("Expected total count 0, got %d", result.TotalCount)
	}
}

func TestGetInterchangeableBiosimilars(t *testing.T) {
	svc := readyTestService(t)

	result, err := svc.GetInterchangeableBiosimilars(context.Background(), "adalimumab")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}

	if result.ReferenceProduct == nil || result.ReferenceProduct.BLANumber != "125057" {
		t.Fatalf("Expected Humira as reference, got %+v", result.ReferenceProduct)
	}
	if len(result.InterchangeableBiosimilars) != 1 {
		t.Fatalf("Expected 1 interchangeable biosimilar, got %d", len(result.InterchangeableBiosimilars))
	}
	if result.InterchangeableBiosimilars[0].ProprietaryName != "Cyltezo" {
		t.Errorf("Expected Cyltezo, got %s", result.InterchangeableBiosimilars[0].ProprietaryName)
	}
	if len(result.SimilarButNotInterchange) != 1 {
		t.Fatalf("Expected 1 non-interchangeable biosimilar, got %d", len(result.SimilarButNotInterchange))
	}
	if result.SimilarButNotInterchange[0].ProprietaryName != "Amjevita" {
		t.Errorf("Expected Amjevita, got %s", result.SimilarButNotInterchange[0].ProprietaryName)
	}
}

func TestQueriesPropagateBuildFailure(t *testing.T) {
	svc, fetcher := newTestService(t)
	fetcher.fail = true

	if _, err := svc.SearchBrandAndGenericProducts(context.Background(), "ibuprofen", true); err == nil {
		t.Error("Expected the build failure to propagate to the query")
	}
}
