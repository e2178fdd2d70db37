// Package interfaces defines the contracts between the server's tool layer
// and the services behind it, so handlers can be tested against fakes.
package interfaces

import (
	"context"
	"time"

	"github.com/fdatools/openfda-mcp/drugquery"
	"github.com/fdatools/openfda-mcp/openfda"
	"github.com/fdatools/openfda-mcp/store"
)

// DrugQuery is the analytical query surface over the Orange Book and Purple
// Book database. Every query method triggers the download-and-build pipeline
// if the database is missing or stale.
type DrugQuery interface {
	// Lifecycle
	EnsureReady(ctx context.Context) error
	Ready() bool
	StoreAge() (time.Duration, error)
	Counts(ctx context.Context) (store.RecordCounts, error)
	Metadata(ctx context.Context) (map[string]string, error)
	KnownIngredients(ctx context.Context, limit int) ([]string, error)

	// Analytical operations
	SearchBrandAndGenericProducts(ctx context.Context, drugName string, includeGenerics bool) (*drugquery.ProductSearchResult, error)
	FindTherapeuticEquivalents(ctx context.Context, drugName string) (*drugquery.EquivalentsResult, error)
	GetPatentsAndExclusivity(ctx context.Context, applicationNumber string) (*drugquery.ApplicationProtections, error)
	ForecastPatentCliff(ctx context.Context, drugName string, yearsAhead int) (*drugquery.CliffForecast, error)
	SearchBiosimilars(ctx context.Context, drugName string) (*drugquery.BiosimilarSearchResult, error)
	GetInterchangeableBiosimilars(ctx context.Context, referenceProductName string) (*drugquery.InterchangeabilityResult, error)
}

// FDAClient is the OpenFDA passthrough surface used by the label, adverse
// event and recall tools.
type FDAClient interface {
	Search(ctx context.Context, req openfda.SearchRequest) (*openfda.SearchResponse, error)
	SearchByCursor(ctx context.Context, cursor string) (*openfda.SearchResponse, error)
}

// Scheduler defines the contract for background job scheduling.
type Scheduler interface {
	Start() error
	Stop()
}

// HealthChecker defines the contract for health check functionality.
type HealthChecker interface {
	// HealthCheck returns current system health status along with the
	// HTTP status code the /health endpoint should answer with
	HealthCheck(ctx context.Context) (status string, details map[string]any, httpStatus int)
}

// Conformance checks live here because the implementing packages sit below
// this one in the import graph.
var (
	_ DrugQuery = (*drugquery.Service)(nil)
	_ FDAClient = (*openfda.Client)(nil)
)
