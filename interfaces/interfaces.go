// Package interfaces defines the abstractions shared by the serve mode packages
// so handlers, health checks and the scheduler can be tested against mocks.
package interfaces

import (
	"context"
	"net/http"
	"time"

	"github.com/giygas/speclist/speclistparser"
	"github.com/giygas/speclist/speclistparser/entities"
)

// DataQualityReport summarizes issues found in a converted speclist
type DataQualityReport struct {
	DuplicateCodes           []string
	RecordsWithoutCommonName int
	RecordsWithSynonym       int
	KingdomCounts            map[string]int
}

// DataStore defines the contract for the in-memory record snapshot.
// Reads are lock-free; UpdateData swaps the whole snapshot at once.
type DataStore interface {
	GetRecords() []entities.Record
	GetRecordsMap() map[string]entities.Record
	GetStats() speclistparser.ParseStats
	GetCSVPath() string
	GetLastUpdated() time.Time
	IsUpdating() bool
	GetServerStartTime() time.Time

	UpdateData(records []entities.Record, recordsMap map[string]entities.Record,
		stats speclistparser.ParseStats, csvPath string)
	BeginUpdate() bool
	EndUpdate()
}

// Converter runs one fetch, parse and CSV write cycle
type Converter interface {
	Convert(ctx context.Context, onRecord func(entities.Record)) (*speclistparser.Result, error)
}

// Scheduler manages automated data refreshes
type Scheduler interface {
	Start() error
	Stop()
	NextUpdate() time.Time
}

// HTTPHandler defines the API endpoints served by the router
type HTTPHandler interface {
	ServeAllSpecies(w http.ResponseWriter, r *http.Request)
	ServePagedSpecies(w http.ResponseWriter, r *http.Request)
	FindSpeciesByCode(w http.ResponseWriter, r *http.Request)
	FindSpeciesByKingdom(w http.ResponseWriter, r *http.Request)
	FindSpeciesByTaxonNode(w http.ResponseWriter, r *http.Request)
	SearchSpecies(w http.ResponseWriter, r *http.Request)
	ExportCSV(w http.ResponseWriter, r *http.Request)
	HealthCheck(w http.ResponseWriter, r *http.Request)
}

// HealthChecker reports the health of the served data
type HealthChecker interface {
	HealthCheck() (status string, details map[string]any, httpStatus int)
}

// DataValidator validates converted data and user input reaching the API
type DataValidator interface {
	// ReportDataQuality generates a data quality report for a set of records
	ReportDataQuality(records []entities.Record) *DataQualityReport

	// ValidateInput validates free text search terms
	ValidateInput(input string) error

	// ValidateCode validates and normalizes a species code
	ValidateCode(input string) (string, error)

	// ValidateKingdom validates and normalizes a kingdom code
	ValidateKingdom(input string) (string, error)

	// ValidateTaxonNode validates a taxonomy node identifier
	ValidateTaxonNode(input string) (string, error)
}
