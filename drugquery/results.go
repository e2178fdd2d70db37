package drugquery

import "github.com/fdatools/openfda-mcp/orangebook/entities"

// Result shapes mirror what the MCP tools serialize. Nullable single-valued
// fields are pointers so they marshal to JSON null, and list fields are
// always non-nil so they marshal to [], never null.

// ProductSearchResult partitions a product search by application type.
type ProductSearchResult struct {
	BrandProducts   []entities.Product `json:"brandProducts"`
	GenericProducts []entities.Product `json:"genericProducts"`
	TotalCount      int                `json:"totalCount"`
}

// EquivalentsResult groups generics by substitutability against the
// reference listed drug.
type EquivalentsResult struct {
	ReferenceListedDrug *entities.Product  `json:"referenceListedDrug"`
	TERatedGenerics     []entities.Product `json:"teRatedGenerics"`
	NonTERatedGenerics  []entities.Product `json:"nonTeGenerics"`
}

// ApplicationProtections lists the patents and exclusivity grants attached to
// one application.
type ApplicationProtections struct {
	Application *entities.Product      `json:"application"`
	Patents     []entities.Patent      `json:"patents"`
	Exclusivity []entities.Exclusivity `json:"exclusivity"`
}

// CliffAnalysis summarizes when generic competition becomes possible for a
// drug. Date fields carry the source data's own date strings.
type CliffAnalysis struct {
	EarliestPatentExpiration      *string  `json:"earliestPatentExpiration"`
	LatestPatentExpiration        *string  `json:"latestPatentExpiration"`
	EarliestExclusivityExpiration *string  `json:"earliestExclusivityExpiration"`
	GenericEntryEstimate          *string  `json:"genericEntryEstimate"`
	YearsUntilLossOfExclusivity   *float64 `json:"yearsUntilLossOfExclusivity"`
	YearsAhead                    int      `json:"yearsAhead"`
}

// CliffForecast is the full patent cliff answer for one brand drug.
type CliffForecast struct {
	Drug        *entities.Product      `json:"drug"`
	Analysis    CliffAnalysis          `json:"patentCliffAnalysis"`
	Patents     []entities.Patent      `json:"patents"`
	Exclusivity []entities.Exclusivity `json:"exclusivity"`
}

// BiosimilarSearchResult holds the reference biologic and its candidate
// biosimilars from a name search.
type BiosimilarSearchResult struct {
	ReferenceProduct *entities.Biologic  `json:"referenceProduct"`
	Biosimilars      []entities.Biologic `json:"biosimilars"`
	TotalCount       int                 `json:"totalCount"`
}

// InterchangeabilityResult partitions a reference product's biosimilars by
// interchangeability status.
type InterchangeabilityResult struct {
	ReferenceProduct           *entities.Biologic  `json:"referenceProduct"`
	InterchangeableBiosimilars []entities.Biologic `json:"interchangeableBiosimilars"`
	SimilarButNotInterchange   []entities.Biologic `json:"similarButNotInterchangeable"`
}
