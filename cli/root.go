// Package cli holds the speclist commands. The root command converts the
// UniProt species list to CSV once; serve keeps it refreshed behind an HTTP API.
package cli

import (
	"context"
	"fmt"

	"github.com/giygas/speclist/config"
	"github.com/giygas/speclist/logging"
	"github.com/giygas/speclist/metrics"
	"github.com/giygas/speclist/speclistparser"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "speclist",
	Short: "Convert the UniProt species list to CSV",
	Long: `speclist downloads the UniProt controlled vocabulary of species
(speclist.txt) and writes one CSV row per species code.

Configuration comes from the environment and an optional .env file.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, closeLogs, err := setup()
		if err != nil {
			return err
		}
		defer closeLogs()

		return runConvert(cmd.Context(), cfg)
	},
}

// Execute runs the command line and returns the process exit code
func Execute() int {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logging.Error("speclist failed", "error", err)
		return 1
	}
	return 0
}

// setup loads the configuration and initializes logging from it
func setup() (*config.Config, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	service := logging.InitLoggerWithConfig(cfg)
	closeLogs := func() {
		if err := service.Close(); err != nil {
			logging.Warn("Failed to close log file", "error", err)
		}
	}
	return cfg, closeLogs, nil
}

// newConverter maps the configuration onto a converter
func newConverter(cfg *config.Config) *speclistparser.Converter {
	return speclistparser.NewConverter(speclistparser.ConverterConfig{
		SourceURL:    cfg.SpeclistURL,
		SourcePath:   cfg.SpeclistPath,
		OutputPath:   cfg.SpeclistCSVPath,
		FetchTimeout: cfg.FetchTimeout,
		SkipFetch:    cfg.SkipFetch,
	})
}

// runConvert performs a single fetch and conversion
func runConvert(ctx context.Context, cfg *config.Config) error {
	result, err := newConverter(cfg).Convert(ctx, nil)
	// Failures are exported too, the textfile collector reads the failure counters
	writeMetricsTextfile(cfg)
	if err != nil {
		return err
	}

	logging.Info(fmt.Sprintf("Created %s with %d records", result.OutputPath, result.Records),
		"fetch_duration", result.FetchDuration.String(),
		"parse_duration", result.ParseDuration.String())
	return nil
}

func writeMetricsTextfile(cfg *config.Config) {
	if cfg.MetricsTextfile == "" {
		return
	}
	if err := metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
		logging.Warn("Failed to write metrics textfile", "path", cfg.MetricsTextfile, "error", err)
	}
}
