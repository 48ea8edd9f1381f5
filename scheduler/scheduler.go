// Package scheduler refreshes the served speclist on a schedule. It runs one
// conversion at start, then re-runs it at the configured times of day and swaps
// the result into the data store.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/giygas/speclist/interfaces"
	"github.com/giygas/speclist/logging"
	"github.com/giygas/speclist/speclistparser/entities"
	"github.com/giygas/speclist/validation"
	"github.com/go-co-op/gocron"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

const (
	staleDataThreshold = 25 * time.Hour
	monitorInterval    = time.Hour
)

// Scheduler handles data refreshes and staleness monitoring
type Scheduler struct {
	dataStore   interfaces.DataStore
	converter   interfaces.Converter
	validator   interfaces.DataValidator
	updateTimes string
	timeout     time.Duration
	scheduler   *gocron.Scheduler
	job         *gocron.Job
	stop        chan struct{}
}

// NewScheduler creates a scheduler refreshing at updateTimes ("HH:MM;HH:MM").
// timeout bounds a single refresh.
func NewScheduler(dataStore interfaces.DataStore, converter interfaces.Converter, updateTimes string, timeout time.Duration) *Scheduler {
	return &Scheduler{
		dataStore:   dataStore,
		converter:   converter,
		validator:   validation.NewDataValidator(),
		updateTimes: updateTimes,
		timeout:     timeout,
		scheduler:   gocron.NewScheduler(time.Local),
		stop:        make(chan struct{}),
	}
}

// Start performs the initial refresh, then schedules the following ones
func (s *Scheduler) Start() error {
	if err := s.updateData(); err != nil {
		logging.Error("Failed to perform initial data load", "error", err)
		return fmt.Errorf("initial data load failed: %w", err)
	}

	job, err := s.scheduler.Every(1).Days().At(s.updateTimes).Do(func() {
		if err := s.updateData(); err != nil {
			logging.Error("Failed to update data", "error", err)
		}
	})
	if err != nil {
		logging.Error("Failed to schedule updates", "error", err)
		return fmt.Errorf("failed to schedule updates: %w", err)
	}
	s.job = job

	s.scheduler.StartAsync()
	s.startHealthMonitoring()

	logging.Info("Scheduled speclist updates", "at", s.updateTimes, "next", s.NextUpdate().Format(time.RFC3339))
	return nil
}

// Stop stops the scheduler and the staleness monitor
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
}

// NextUpdate returns the next scheduled refresh, zero before Start
func (s *Scheduler) NextUpdate() time.Time {
	if s.job == nil {
		return time.Time{}
	}
	return s.job.NextRun()
}

// updateData runs one conversion and swaps the records into the data store
func (s *Scheduler) updateData() error {
	if !s.dataStore.BeginUpdate() {
		logging.Info("Update already in progress, skipping...")
		return nil
	}
	defer s.dataStore.EndUpdate()

	logging.Info("Starting speclist update", "at", time.Now().Format(time.RFC3339))
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	var records []entities.Record
	result, err := s.converter.Convert(ctx, func(record entities.Record) {
		records = append(records, record)
	})
	if err != nil {
		return fmt.Errorf("failed to convert speclist: %w", err)
	}

	recordsMap := make(map[string]entities.Record, len(records))
	for _, record := range records {
		recordsMap[record.Code] = record
	}

	report := s.validator.ReportDataQuality(records)
	if len(report.DuplicateCodes) > 0 {
		logging.Warn("Duplicate species codes detected, the last entry wins",
			"total", len(report.DuplicateCodes),
			"codes", report.DuplicateCodes,
		)
	}
	logging.Debug("Speclist data quality",
		"without_common_name", report.RecordsWithoutCommonName,
		"with_synonym", report.RecordsWithSynonym,
		"kingdoms", report.KingdomCounts,
	)

	s.dataStore.UpdateData(records, recordsMap, result.Stats, result.OutputPath)

	logging.Info("Speclist update completed", "duration", time.Since(start).String(), "records_count", len(records))
	return nil
}

// startHealthMonitoring warns when the data has not been refreshed for too long
func (s *Scheduler) startHealthMonitoring() {
	go func() {
		ticker := time.NewTicker(monitorInterval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				lastUpdate := s.dataStore.GetLastUpdated()
				if time.Since(lastUpdate) > staleDataThreshold {
					logging.Warn("Speclist hasn't been updated in over 25 hours", "last_update", lastUpdate.Format(time.RFC3339))
				}
			}
		}
	}()
}
