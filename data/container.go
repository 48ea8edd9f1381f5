// Package data provides the thread-safe record store used in serve mode.
// The DataContainer keeps the last converted speclist behind atomic values so
// readers never block while a refresh swaps in a new snapshot.
package data

import (
	"sync/atomic"
	"time"

	"github.com/giygas/speclist/interfaces"
	"github.com/giygas/speclist/logging"
	"github.com/giygas/speclist/speclistparser"
	"github.com/giygas/speclist/speclistparser/entities"
)

// Compile-time check to ensure DataContainer implements DataStore
var _ interfaces.DataStore = (*DataContainer)(nil)

// snapshot is swapped as a whole so records, map and stats always agree
type snapshot struct {
	records    []entities.Record
	recordsMap map[string]entities.Record
	stats      speclistparser.ParseStats
	csvPath    string
}

// DataContainer holds the current snapshot with atomic pointers for zero-downtime updates
type DataContainer struct {
	current         atomic.Pointer[snapshot]
	lastUpdated     atomic.Value // time.Time
	updating        atomic.Bool
	serverStartTime atomic.Value // time.Time
}

// NewDataContainer creates a new DataContainer with empty data
func NewDataContainer() *DataContainer {
	dc := &DataContainer{}
	dc.current.Store(&snapshot{
		records:    make([]entities.Record, 0),
		recordsMap: make(map[string]entities.Record),
	})
	dc.lastUpdated.Store(time.Time{})
	dc.serverStartTime.Store(time.Time{})
	return dc
}

func (dc *DataContainer) load() *snapshot {
	if s := dc.current.Load(); s != nil {
		return s
	}
	logging.Warn("Record snapshot is empty")
	return &snapshot{records: []entities.Record{}, recordsMap: map[string]entities.Record{}}
}

// GetRecords returns the records in speclist order
func (dc *DataContainer) GetRecords() []entities.Record {
	return dc.load().records
}

// GetRecordsMap returns the records keyed by code for O(1) lookups
func (dc *DataContainer) GetRecordsMap() map[string]entities.Record {
	return dc.load().recordsMap
}

// GetStats returns the parse statistics of the last refresh
func (dc *DataContainer) GetStats() speclistparser.ParseStats {
	return dc.load().stats
}

// GetCSVPath returns the CSV written by the last refresh
func (dc *DataContainer) GetCSVPath() string {
	return dc.load().csvPath
}

// GetLastUpdated returns the timestamp of the last data update
func (dc *DataContainer) GetLastUpdated() time.Time {
	if v := dc.lastUpdated.Load(); v != nil {
		if lastUpdated, ok := v.(time.Time); ok {
			return lastUpdated
		}
	}

	logging.Warn("Could not get the last updated value")
	return time.Time{}
}

// IsUpdating returns true if a data update is currently in progress
func (dc *DataContainer) IsUpdating() bool {
	return dc.updating.Load()
}

// SetServerStartTime sets the server start time
func (dc *DataContainer) SetServerStartTime(startTime time.Time) {
	dc.serverStartTime.Store(startTime)
}

// GetServerStartTime returns the server start time
func (dc *DataContainer) GetServerStartTime() time.Time {
	if v := dc.serverStartTime.Load(); v != nil {
		if startTime, ok := v.(time.Time); ok {
			return startTime
		}
	}

	logging.Warn("Could not get the server start time value")
	return time.Time{}
}

// UpdateData atomically replaces the snapshot
func (dc *DataContainer) UpdateData(records []entities.Record, recordsMap map[string]entities.Record,
	stats speclistparser.ParseStats, csvPath string) {

	dc.current.Store(&snapshot{
		records:    records,
		recordsMap: recordsMap,
		stats:      stats,
		csvPath:    csvPath,
	})
	dc.lastUpdated.Store(time.Now())
}

// BeginUpdate marks the start of a data update operation.
// Returns false if another update is in progress.
func (dc *DataContainer) BeginUpdate() bool {
	return dc.updating.CompareAndSwap(false, true)
}

// EndUpdate marks the end of a data update operation
func (dc *DataContainer) EndUpdate() {
	dc.updating.Store(false)
}
