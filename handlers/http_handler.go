// Package handlers provides the HTTP handlers of the speclist API.
// Handlers read the current snapshot from an injected DataStore and validate
// path parameters before touching it.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/giygas/speclist/interfaces"
	"github.com/giygas/speclist/logging"
	"github.com/giygas/speclist/speclistparser/entities"
	"github.com/go-chi/chi/v5"
)

// Compile-time check to ensure HTTPHandlerImpl implements HTTPHandler
var _ interfaces.HTTPHandler = (*HTTPHandlerImpl)(nil)

const pageSize = 10

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	dataStore     interfaces.DataStore
	validator     interfaces.DataValidator
	healthChecker interfaces.HealthChecker
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(dataStore interfaces.DataStore, validator interfaces.DataValidator,
	healthChecker interfaces.HealthChecker) interfaces.HTTPHandler {
	return &HTTPHandlerImpl{
		dataStore:     dataStore,
		validator:     validator,
		healthChecker: healthChecker,
	}
}

// PagedResponse is the body of /species/page/{pageNumber}
type PagedResponse struct {
	Data       []entities.Record `json:"data"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalItems int               `json:"totalItems"`
	MaxPage    int               `json:"maxPage"`
}

// HealthResponse defines the structure for consistent JSON ordering
type HealthResponse struct {
	Status string         `json:"status"`
	Data   map[string]any `json:"data"`
	System map[string]any `json:"system"`
}

// RespondWithJSON writes a JSON response
func (h *HTTPHandlerImpl) RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Last-Modified", h.lastModified())
	w.WriteHeader(code)
	if _, err := w.Write(data); err != nil {
		logging.Warn("Failed to write response", "error", err)
	}
}

// RespondWithError writes a JSON error response
func (h *HTTPHandlerImpl) RespondWithError(w http.ResponseWriter, code int, message string) {
	errorResponse := map[string]any{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	}
	h.RespondWithJSON(w, code, errorResponse)
}

// lastModified is the time of the last refresh, or now when there was none
func (h *HTTPHandlerImpl) lastModified() string {
	lastUpdated := h.dataStore.GetLastUpdated()
	if lastUpdated.IsZero() {
		lastUpdated = time.Now()
	}
	return lastUpdated.UTC().Format(http.TimeFormat)
}

// formatUptimeHuman formats duration into a human-readable string
func formatUptimeHuman(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string

	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", seconds))

	return strings.Join(parts, " ")
}

// ServeAllSpecies returns every record
func (h *HTTPHandlerImpl) ServeAllSpecies(w http.ResponseWriter, r *http.Request) {
	h.RespondWithJSON(w, http.StatusOK, h.dataStore.GetRecords())
}

// ServePagedSpecies returns one page of records
func (h *HTTPHandlerImpl) ServePagedSpecies(w http.ResponseWriter, r *http.Request) {
	pageNumber := chi.URLParam(r, "pageNumber")
	page, err := strconv.Atoi(pageNumber)
	if err != nil || page < 1 {
		logging.Warn("Unusual user input", "pageNumber", pageNumber)
		h.RespondWithError(w, http.StatusBadRequest, "Invalid page number")
		return
	}

	records := h.dataStore.GetRecords()
	start := (page - 1) * pageSize
	if start >= len(records) {
		h.RespondWithError(w, http.StatusNotFound, "Page not found")
		return
	}
	end := min(start+pageSize, len(records))

	totalItems := len(records)
	h.RespondWithJSON(w, http.StatusOK, PagedResponse{
		Data:       records[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		MaxPage:    (totalItems + pageSize - 1) / pageSize,
	})
}

// FindSpeciesByCode returns the record with the given code
func (h *HTTPHandlerImpl) FindSpeciesByCode(w http.ResponseWriter, r *http.Request) {
	code, err := h.validator.ValidateCode(chi.URLParam(r, "code"))
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	record, exists := h.dataStore.GetRecordsMap()[code]
	if !exists {
		h.RespondWithError(w, http.StatusNotFound, "Species not found")
		return
	}

	h.RespondWithJSON(w, http.StatusOK, record)
}

// FindSpeciesByKingdom returns all records of a kingdom
func (h *HTTPHandlerImpl) FindSpeciesByKingdom(w http.ResponseWriter, r *http.Request) {
	kingdom, err := h.validator.ValidateKingdom(chi.URLParam(r, "kingdom"))
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	results := []entities.Record{}
	for _, record := range h.dataStore.GetRecords() {
		if record.Kingdom == kingdom {
			results = append(results, record)
		}
	}

	h.RespondWithJSON(w, http.StatusOK, results)
}

// FindSpeciesByTaxonNode returns the records attached to a taxonomy node
func (h *HTTPHandlerImpl) FindSpeciesByTaxonNode(w http.ResponseWriter, r *http.Request) {
	node, err := h.validator.ValidateTaxonNode(chi.URLParam(r, "taxonNode"))
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	var results []entities.Record
	for _, record := range h.dataStore.GetRecords() {
		if record.TaxonNode == node {
			results = append(results, record)
		}
	}

	if len(results) == 0 {
		h.RespondWithError(w, http.StatusNotFound, "No species found for this taxon node")
		return
	}

	h.RespondWithJSON(w, http.StatusOK, results)
}

// SearchSpecies matches scientific names, common names and synonyms (case-insensitive substring)
func (h *HTTPHandlerImpl) SearchSpecies(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.validator.ValidateInput(name); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	term := strings.ToLower(name)
	results := []entities.Record{}
	for _, record := range h.dataStore.GetRecords() {
		if strings.Contains(strings.ToLower(record.ScientificName), term) ||
			strings.Contains(strings.ToLower(record.CommonName), term) ||
			strings.Contains(strings.ToLower(record.Synonym), term) {
			results = append(results, record)
		}
	}

	// Always 200, empty array when nothing matches
	h.RespondWithJSON(w, http.StatusOK, results)
}

// ExportCSV serves the CSV written by the last refresh
func (h *HTTPHandlerImpl) ExportCSV(w http.ResponseWriter, r *http.Request) {
	path := h.dataStore.GetCSVPath()
	if path == "" {
		h.RespondWithError(w, http.StatusServiceUnavailable, "No export available yet")
		return
	}

	file, err := os.Open(path)
	if err != nil {
		logging.Error("Failed to open csv export", "path", path, "error", err)
		h.RespondWithError(w, http.StatusServiceUnavailable, "Export unavailable")
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("Failed to close csv export", "path", path, "error", err)
		}
	}()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="speclist.csv"`)
	http.ServeContent(w, r, "speclist.csv", h.dataStore.GetLastUpdated(), file)
}

// HealthCheck reports data freshness and process information
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, data, httpStatus := h.healthChecker.HealthCheck()

	system := map[string]any{}
	if start := h.dataStore.GetServerStartTime(); !start.IsZero() {
		uptime := time.Since(start)
		system["uptime"] = formatUptimeHuman(uptime)
		system["uptime_seconds"] = uptime.Seconds()
	}

	h.RespondWithJSON(w, httpStatus, HealthResponse{
		Status: status,
		Data:   data,
		System: system,
	})
}
