// Package health reports the state of the drug database for the HTTP health
// endpoint.
package health

import (
	"context"
	"math"
	"net/http"
	"time"

	"github.com/fdatools/openfda-mcp/interfaces"
)

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	query            interfaces.DrugQuery
	maxStalenessDays int
}

// NewHealthChecker creates a new health checker with injected dependencies
func NewHealthChecker(query interfaces.DrugQuery, maxStalenessDays int) *HealthCheckerImpl {
	return &HealthCheckerImpl{
		query:            query,
		maxStalenessDays: maxStalenessDays,
	}
}

var _ interfaces.HealthChecker = (*HealthCheckerImpl)(nil)

// HealthCheck reports the database state for the /health HTTP endpoint.
// A missing database is "initializing" rather than unhealthy: the store is
// built lazily on first query, so an idle server without one is still
// serving correctly.
func (h *HealthCheckerImpl) HealthCheck(ctx context.Context) (status string, data map[string]any, httpStatus int) {
	data = map[string]any{
		"ready":                h.query.Ready(),
		"staleness_limit_days": h.maxStalenessDays,
	}

	if !h.query.Ready() {
		return "initializing", data, http.StatusOK
	}

	counts, err := h.query.Counts(ctx)
	if err != nil {
		data["error"] = err.Error()
		return "unhealthy", data, http.StatusServiceUnavailable
	}
	data["products"] = counts.Products
	data["patents"] = counts.Patents
	data["exclusivities"] = counts.Exclusivities
	data["biologics"] = counts.Biologics

	if meta, err := h.query.Metadata(ctx); err == nil {
		data["built_at"] = meta["built_at"]
		data["data_version"] = meta["data_version"]
	}

	age, err := h.query.StoreAge()
	if err != nil {
		data["error"] = err.Error()
		return "unhealthy", data, http.StatusServiceUnavailable
	}
	ageDays := age.Hours() / 24
	data["database_age_days"] = math.Round(ageDays*10) / 10

	// A stale database still serves; the next query triggers a rebuild.
	if ageDays > float64(h.maxStalenessDays) {
		return "stale", data, http.StatusOK
	}

	return "healthy", data, http.StatusOK
}

// CalculateNextRefreshCheck returns when the daily staleness check next runs.
func (h *HealthCheckerImpl) CalculateNextRefreshCheck() time.Time {
	now := time.Now()

	threeAM := time.Date(now.Year(), now.Month(), now.Day(), 3, 0, 0, 0, now.Location())
	if now.Before(threeAM) {
		return threeAM
	}
	return threeAM.AddDate(0, 0, 1)
}
