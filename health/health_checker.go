// Package health reports whether the served speclist is fresh enough to rely on.
package health

import (
	"math"
	"net/http"
	"time"

	"github.com/giygas/speclist/interfaces"
)

// Thresholds on the age of the served data
const (
	degradedAge       = 24 * time.Hour
	unhealthyAge      = 48 * time.Hour
	slowUpdateMinimum = 6 * time.Hour
)

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	dataStore interfaces.DataStore
	scheduler interfaces.Scheduler
}

// NewHealthChecker creates a new health checker. scheduler may be nil, in which
// case no next update is reported.
func NewHealthChecker(dataStore interfaces.DataStore, scheduler interfaces.Scheduler) interfaces.HealthChecker {
	return &HealthCheckerImpl{
		dataStore: dataStore,
		scheduler: scheduler,
	}
}

// HealthCheck returns the status, response data and HTTP status for /health
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	records := h.dataStore.GetRecords()
	stats := h.dataStore.GetStats()
	lastUpdate := h.dataStore.GetLastUpdated()
	isUpdating := h.dataStore.IsUpdating()

	dataAge := time.Since(lastUpdate)

	switch {
	case len(records) == 0:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case dataAge > unhealthyAge:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case dataAge > degradedAge:
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable

	case isUpdating && dataAge > slowUpdateMinimum:
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable

	default:
		status = "healthy"
		httpStatus = http.StatusOK
	}

	data = map[string]any{
		"last_update":    lastUpdate.Format(time.RFC3339),
		"data_age_hours": math.Round(dataAge.Hours()*10) / 10,
		"records":        len(records),
		"skipped_lines":  stats.SkippedLines,
		"is_updating":    isUpdating,
	}

	if h.scheduler != nil {
		if next := h.scheduler.NextUpdate(); !next.IsZero() {
			data["next_update"] = next.Format(time.RFC3339)
		}
	}

	return status, data, httpStatus
}
