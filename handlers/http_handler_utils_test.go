package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/giygas/speclist/interfaces"
	"github.com/giygas/speclist/speclistparser"
	"github.com/giygas/speclist/speclistparser/entities"
	"github.com/giygas/speclist/validation"
	"github.com/go-chi/chi/v5"
)

// ============================================================================
// TEST DATA FACTORY
// ============================================================================

// TestDataFactory creates consistent test data across all tests
type TestDataFactory struct{}

func NewTestDataFactory() *TestDataFactory {
	return &TestDataFactory{}
}

// SampleRecords returns a small realistic speclist
func (f *TestDataFactory) SampleRecords() []entities.Record {
	return []entities.Record{
		{Code: "AADNV", Kingdom: "V", TaxonNode: "648330", ScientificName: "Aedes albopictus densovirus", CommonName: "AalDNV"},
		{Code: "AAV2", Kingdom: "V", TaxonNode: "10804", ScientificName: "Adeno-associated virus 2", CommonName: "AAV"},
		{Code: "ABAGR", Kingdom: "E", TaxonNode: "404104", ScientificName: "Abalistes stellaris", CommonName: "Starry triggerfish"},
		{Code: "ABDAC", Kingdom: "E", TaxonNode: "515833", ScientificName: "Abdopus aculeatus", CommonName: "Algae octopus", Synonym: "Octopus aculeatus"},
		{Code: "ABIAL", Kingdom: "E", TaxonNode: "45372", ScientificName: "Abies alba", CommonName: "Silver fir"},
		{Code: "ARCFU", Kingdom: "A", TaxonNode: "2234", ScientificName: "Archaeoglobus fulgidus"},
	}
}

// CreateRecords creates count generated records
func (f *TestDataFactory) CreateRecords(count int) []entities.Record {
	records := make([]entities.Record, count)
	for i := range count {
		records[i] = entities.Record{
			Code:           fmt.Sprintf("T%04d", i),
			Kingdom:        entities.KingdomEukaryota,
			TaxonNode:      fmt.Sprintf("%d", i+1),
			ScientificName: fmt.Sprintf("Testus species %d", i),
		}
	}
	return records
}

// ============================================================================
// MOCKS
// ============================================================================

// MockDataStore implements interfaces.DataStore for handler tests
type MockDataStore struct {
	records     []entities.Record
	recordsMap  map[string]entities.Record
	stats       speclistparser.ParseStats
	csvPath     string
	lastUpdated time.Time
	startTime   time.Time
	updating    bool
}

func (m *MockDataStore) GetRecords() []entities.Record             { return m.records }
func (m *MockDataStore) GetRecordsMap() map[string]entities.Record { return m.recordsMap }
func (m *MockDataStore) GetStats() speclistparser.ParseStats       { return m.stats }
func (m *MockDataStore) GetCSVPath() string                        { return m.csvPath }
func (m *MockDataStore) GetLastUpdated() time.Time                 { return m.lastUpdated }
func (m *MockDataStore) IsUpdating() bool                          { return m.updating }
func (m *MockDataStore) GetServerStartTime() time.Time             { return m.startTime }
func (m *MockDataStore) BeginUpdate() bool                         { return true }
func (m *MockDataStore) EndUpdate()                                {}

func (m *MockDataStore) UpdateData(records []entities.Record, recordsMap map[string]entities.Record,
	stats speclistparser.ParseStats, csvPath string) {
	m.records = records
	m.recordsMap = recordsMap
	m.stats = stats
	m.csvPath = csvPath
	m.lastUpdated = time.Now()
}

// MockDataStoreBuilder provides fluent interface for building mock data stores
type MockDataStoreBuilder struct {
	mock *MockDataStore
}

func NewMockDataStoreBuilder() *MockDataStoreBuilder {
	return &MockDataStoreBuilder{
		mock: &MockDataStore{
			records:     []entities.Record{},
			recordsMap:  make(map[string]entities.Record),
			lastUpdated: time.Now(),
		},
	}
}

func (b *MockDataStoreBuilder) WithRecords(records []entities.Record) *MockDataStoreBuilder {
	b.mock.records = records
	b.mock.recordsMap = make(map[string]entities.Record, len(records))
	for _, record := range records {
		b.mock.recordsMap[record.Code] = record
	}
	return b
}

func (b *MockDataStoreBuilder) WithCSVPath(path string) *MockDataStoreBuilder {
	b.mock.csvPath = path
	return b
}

func (b *MockDataStoreBuilder) WithLastUpdated(lastUpdated time.Time) *MockDataStoreBuilder {
	b.mock.lastUpdated = lastUpdated
	return b
}

func (b *MockDataStoreBuilder) WithServerStartTime(start time.Time) *MockDataStoreBuilder {
	b.mock.startTime = start
	return b
}

func (b *MockDataStoreBuilder) Build() *MockDataStore {
	return b.mock
}

// MockDataValidator delegates to the real validator unless an input error is set
type MockDataValidator struct {
	interfaces.DataValidator
	validateInputError error
	inputCalls         int
}

func (m *MockDataValidator) ValidateInput(input string) error {
	m.inputCalls++
	if m.validateInputError != nil {
		return m.validateInputError
	}
	return m.DataValidator.ValidateInput(input)
}

// MockDataValidatorBuilder provides fluent interface for building mock validators
type MockDataValidatorBuilder struct {
	mock *MockDataValidator
}

func NewMockDataValidatorBuilder() *MockDataValidatorBuilder {
	return &MockDataValidatorBuilder{
		mock: &MockDataValidator{DataValidator: validation.NewDataValidator()},
	}
}

func (b *MockDataValidatorBuilder) WithInputError(err error) *MockDataValidatorBuilder {
	b.mock.validateInputError = err
	return b
}

func (b *MockDataValidatorBuilder) Build() *MockDataValidator {
	return b.mock
}

// MockHealthChecker returns a fixed health result
type MockHealthChecker struct {
	status     string
	data       map[string]any
	httpStatus int
}

func (m *MockHealthChecker) HealthCheck() (string, map[string]any, int) {
	return m.status, m.data, m.httpStatus
}

func newTestHandler(store interfaces.DataStore) *HTTPHandlerImpl {
	return NewHTTPHandler(store, NewMockDataValidatorBuilder().Build(),
		&MockHealthChecker{status: "healthy", data: map[string]any{}, httpStatus: http.StatusOK}).(*HTTPHandlerImpl)
}

// ============================================================================
// HTTP TEST UTILITIES
// ============================================================================

// HTTPTestHelper provides utilities for HTTP handler testing
type HTTPTestHelper struct {
	t *testing.T
}

func NewHTTPTestHelper(t *testing.T) *HTTPTestHelper {
	return &HTTPTestHelper{t: t}
}

// ExecuteRequest executes an HTTP handler with given chi URL parameters
func (h *HTTPTestHelper) ExecuteRequest(handler http.HandlerFunc, method, path string, urlParams map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)

	if len(urlParams) > 0 {
		rctx := chi.NewRouteContext()
		for key, value := range urlParams {
			rctx.URLParams.Add(key, value)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

// AssertJSONResponse asserts that response contains valid JSON with expected status
func (h *HTTPTestHelper) AssertJSONResponse(resp *httptest.ResponseRecorder, expectedStatus int, target any) {
	h.t.Helper()

	if resp.Code != expectedStatus {
		h.t.Errorf("Expected status %d, got %d", expectedStatus, resp.Code)
	}

	if err := json.Unmarshal(resp.Body.Bytes(), target); err != nil {
		h.t.Errorf("Response should be valid JSON, got error: %v", err)
	}
}

// AssertErrorResponse asserts that response contains an error with expected status
func (h *HTTPTestHelper) AssertErrorResponse(resp *httptest.ResponseRecorder, expectedStatus int) {
	h.t.Helper()

	if resp.Code != expectedStatus {
		h.t.Errorf("Expected status %d, got %d", expectedStatus, resp.Code)
	}

	var errorResp map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &errorResp); err != nil {
		h.t.Errorf("Error response should be valid JSON, got error: %v", err)
	}

	for _, field := range []string{"error", "message", "code"} {
		if _, ok := errorResp[field]; !ok {
			h.t.Errorf("Error response should have %s field", field)
		}
	}
}
