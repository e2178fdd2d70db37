package drugquery

import (
	"context"
	"fmt"
	"strings"

	"github.com/fdatools/openfda-mcp/orangebook/entities"
)

// teSubstitutableCodePrefix marks Orange Book TE codes that indicate
// FDA-determined substitutability.
const teSubstitutableCodePrefix = "AB"

// SearchBrandAndGenericProducts runs a full-text product search and splits
// matches into brand (new drug applications) and generic (abbreviated
// applications). Rows with other application types are dropped. totalCount
// covers only what is returned, so excluding generics shrinks it.
func (s *Service) SearchBrandAndGenericProducts(ctx context.Context, drugName string, includeGenerics bool) (*ProductSearchResult, error) {
	st, err := s.readyStore(ctx)
	if err != nil {
		return nil, err
	}

	products, err := st.SearchProducts(ctx, drugName, productSearchLimit)
	if err != nil {
		return nil, err
	}

	result := &ProductSearchResult{
		BrandProducts:   []entities.Product{},
		GenericProducts: []entities.Product{},
	}
	for _, p := range products {
		switch {
		case p.IsBrand():
			result.BrandProducts = append(result.BrandProducts, p)
		case p.IsGeneric() && includeGenerics:
			result.GenericProducts = append(result.GenericProducts, p)
		}
	}
	result.TotalCount = len(result.BrandProducts) + len(result.GenericProducts)
	return result, nil
}

// FindTherapeuticEquivalents resolves a drug name to its reference listed
// drug and partitions the generic matches by whether their TE code starts
// with "AB". If no product carries the RLD flag the first brand match stands
// in as the reference.
func (s *Service) FindTherapeuticEquivalents(ctx context.Context, drugName string) (*EquivalentsResult, error) {
	st, err := s.readyStore(ctx)
	if err != nil {
		return nil, err
	}

	products, err := st.SearchProducts(ctx, drugName, productSearchLimit)
	if err != nil {
		return nil, err
	}

	result := &EquivalentsResult{
		TERatedGenerics:    []entities.Product{},
		NonTERatedGenerics: []entities.Product{},
	}
	var firstBrand *entities.Product
	for i := range products {
		p := products[i]
		if result.ReferenceListedDrug == nil && strings.EqualFold(p.RLD, "Yes") {
			result.ReferenceListedDrug = &products[i]
		}
		if firstBrand == nil && p.IsBrand() {
			firstBrand = &products[i]
		}
		if !p.IsGeneric() {
			continue
		}
		if strings.HasPrefix(p.TECode, teSubstitutableCodePrefix) {
			result.TERatedGenerics = append(result.TERatedGenerics, p)
		} else {
			result.NonTERatedGenerics = append(result.NonTERatedGenerics, p)
		}
	}
	if result.ReferenceListedDrug == nil {
		result.ReferenceListedDrug = firstBrand
	}
	return result, nil
}

// GetPatentsAndExclusivity looks up an application by its number and returns
// every patent and exclusivity grant filed against it. The application number
// is treated as a precise key: zero matches is ErrNotFound, not an empty
// result. Patents and exclusivity are matched on application identity alone,
// ignoring product numbers, which mirrors FDA's own granularity.
func (s *Service) GetPatentsAndExclusivity(ctx context.Context, applicationNumber string) (*ApplicationProtections, error) {
	st, err := s.readyStore(ctx)
	if err != nil {
		return nil, err
	}

	product, err := st.ProductByApplNo(ctx, applicationNumber)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: no products under application number %s", ErrNotFound, applicationNumber)
	}

	patents, err := st.PatentsByApplication(ctx, product.ApplType, product.ApplNo)
	if err != nil {
		return nil, err
	}
	exclusivity, err := st.ExclusivitiesByApplication(ctx, product.ApplType, product.ApplNo)
	if err != nil {
		return nil, err
	}

	return &ApplicationProtections{
		Application: product,
		Patents:     patents,
		Exclusivity: exclusivity,
	}, nil
}

// ForecastPatentCliff resolves a drug name to its first brand product and
// estimates when generic entry becomes possible from that application's
// patents and exclusivity grants. yearsAhead is echoed back but does not
// bound the analysis.
func (s *Service) ForecastPatentCliff(ctx context.Context, drugName string, yearsAhead int) (*CliffForecast, error) {
	st, err := s.readyStore(ctx)
	if err != nil {
		return nil, err
	}

	products, err := st.SearchProducts(ctx, drugName, productSearchLimit)
	if err != nil {
		return nil, err
	}

	forecast := &CliffForecast{}
	for i := range products {
		if products[i].IsBrand() {
			forecast.Drug = &products[i]
			break
		}
	}
	if forecast.Drug == nil {
		return nil, fmt.Errorf("%w: no brand products match %q", ErrNotFound, drugName)
	}

	forecast.Patents, err = st.PatentsByApplication(ctx, forecast.Drug.ApplType, forecast.Drug.ApplNo)
	if err != nil {
		return nil, err
	}
	forecast.Exclusivity, err = st.ExclusivitiesByApplication(ctx, forecast.Drug.ApplType, forecast.Drug.ApplNo)
	if err != nil {
		return nil, err
	}

	forecast.Analysis = analyzeCliff(forecast.Patents, forecast.Exclusivity, yearsAhead, s.now())
	return forecast, nil
}

// SearchBiosimilars runs a full-text biologic search. The first match without
// the biosimilar flag is the reference product and everything else is a
// candidate biosimilar.
func (s *Service) SearchBiosimilars(ctx context.Context, drugName string) (*BiosimilarSearchResult, error) {
	st, err := s.readyStore(ctx)
	if err != nil {
		return nil, err
	}

	biologics, err := st.SearchBiologics(ctx, drugName, biologicSearchLimit)
	if err != nil {
		return nil, err
	}

	result := &BiosimilarSearchResult{
		Biosimilars: []entities.Biologic{},
		TotalCount:  len(biologics),
	}
	refIndex := -1
	for i := range biologics {
		if !biologics[i].Biosimilar {
			result.ReferenceProduct = &biologics[i]
			refIndex = i
			break
		}
	}
	for i := range biologics {
		if i == refIndex {
			continue
		}
		result.Biosimilars = append(result.Biosimilars, biologics[i])
	}
	return result, nil
}

// GetInterchangeableBiosimilars partitions a reference product's biosimilars
// by whether FDA has granted interchangeable status.
func (s *Service) GetInterchangeableBiosimilars(ctx context.Context, referenceProductName string) (*InterchangeabilityResult, error) {
	search, err := s.SearchBiosimilars(ctx, referenceProductName)
	if err != nil {
		return nil, err
	}

	result := &InterchangeabilityResult{
		ReferenceProduct:           search.ReferenceProduct,
		InterchangeableBiosimilars: []entities.Biologic{},
		SimilarButNotInterchange:   []entities.Biologic{},
	}
	for _, b := range search.Biosimilars {
		if b.Interchangeable {
			result.InterchangeableBiosimilars = append(result.InterchangeableBiosimilars, b)
		} else {
			result.SimilarButNotInterchange = append(result.SimilarButNotInterchange, b)
		}
	}
	return result, nil
}
