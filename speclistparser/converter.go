package speclistparser

import (
	"context"
	"fmt"
	"time"

	"github.com/giygas/speclist/logging"
	"github.com/giygas/speclist/metrics"
	"github.com/giygas/speclist/speclistparser/entities"
)

// ConverterConfig holds the inputs of a conversion run
type ConverterConfig struct {
	SourceURL    string
	SourcePath   string
	OutputPath   string
	FetchTimeout time.Duration
	// SkipFetch parses an existing SourcePath without downloading it
	SkipFetch bool
	// Parser defaults to NewParser()
	Parser *Parser
}

// Result describes a completed conversion
type Result struct {
	Records       int
	Stats         ParseStats
	OutputPath    string
	FetchDuration time.Duration
	ParseDuration time.Duration
}

// Converter fetches the speclist and writes it as CSV
type Converter struct {
	cfg     ConverterConfig
	fetcher *Fetcher
	parser  *Parser
}

// NewConverter creates a converter
func NewConverter(cfg ConverterConfig) *Converter {
	parser := cfg.Parser
	if parser == nil {
		parser = NewParser()
	}

	return &Converter{
		cfg:     cfg,
		fetcher: NewFetcher(cfg.SourceURL, cfg.SourcePath, cfg.FetchTimeout),
		parser:  parser,
	}
}

// Convert runs fetch then parse. onRecord, when set, receives every record written.
// The first error aborts the run.
func (c *Converter) Convert(ctx context.Context, onRecord func(entities.Record)) (*Result, error) {
	result := &Result{OutputPath: c.cfg.OutputPath}

	if !c.cfg.SkipFetch {
		start := time.Now()
		if err := c.fetcher.Fetch(ctx); err != nil {
			metrics.FailuresTotal.WithLabelValues(metrics.StageFetch).Inc()
			return nil, err
		}
		result.FetchDuration = time.Since(start)
		metrics.StageDuration.WithLabelValues(metrics.StageFetch).Observe(result.FetchDuration.Seconds())
	} else {
		logging.Info("Skipping download, parsing local speclist", "path", c.cfg.SourcePath)
	}

	start := time.Now()
	records, err := WriteCSVFile(
		c.cfg.OutputPath,
		c.parser.Columns(),
		c.parser.RecordsFromFile(c.cfg.SourcePath, &result.Stats),
		onRecord,
	)
	if err != nil {
		metrics.FailuresTotal.WithLabelValues(metrics.StageParse).Inc()
		return nil, fmt.Errorf("failed to convert %s: %w", c.cfg.SourcePath, err)
	}
	result.ParseDuration = time.Since(start)
	result.Records = records

	c.observe(result)
	return result, nil
}

func (c *Converter) observe(result *Result) {
	stats := result.Stats

	metrics.StageDuration.WithLabelValues(metrics.StageParse).Observe(result.ParseDuration.Seconds())
	metrics.RecordsTotal.Add(float64(result.Records))
	metrics.LinesTotal.WithLabelValues(metrics.LinePrimary).Add(float64(stats.PrimaryLines))
	metrics.LinesTotal.WithLabelValues(metrics.LineSecondary).Add(float64(stats.SecondaryLines))
	metrics.LinesTotal.WithLabelValues(metrics.LineOrphanSecondary).Add(float64(stats.OrphanSecondaryLines))
	metrics.LinesTotal.WithLabelValues(metrics.LineSkipped).Add(float64(stats.SkippedLines))
	metrics.LastSuccessTimestamp.SetToCurrentTime()

	// Header and footer prose always produce skipped lines
	if stats.SkippedLines > 0 || stats.OrphanSecondaryLines > 0 {
		logging.Info("Speclist skip statistics",
			"skipped_lines", stats.SkippedLines,
			"orphan_secondary_lines", stats.OrphanSecondaryLines,
			"total_lines", stats.Lines,
			"records_parsed", stats.Records)
	}

	logging.Info("Speclist conversion completed",
		"records_count", result.Records,
		"output", result.OutputPath,
		"parse_duration", result.ParseDuration.String())
}
