package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog"

	"txn-classifier/internal/app"
	"txn-classifier/internal/config"
	"txn-classifier/internal/domain"
	"txn-classifier/internal/logger"
	"txn-classifier/internal/usecase"
)

type summary struct {
	RunID    string                `json:"run_id"`
	Metrics  domain.DerivedMetrics `json:"metrics"`
	ByType   []domain.GroupTotal   `json:"by_type"`
	Pairs    int                   `json:"pairs"`
	Warnings []domain.Warning      `json:"warnings"`
}

func main() {
	// Define command-line flags
	configPath := flag.String("config", "config.yaml", "Path to the YAML config file; environment variables are used when it does not exist")
	csvFiles := flag.String("csv", "", "Comma-separated list of transaction CSV files")
	sheetID := flag.String("sheet", "", "Google Sheets spreadsheet id to read transactions from")
	sheetRange := flag.String("range", "", "A1 range of the transactions sheet")
	overridesDB := flag.String("overrides", "", "Path to the SQLite manual override database")
	startDateStr := flag.String("start", "", "Start date (YYYY-MM-DD), optional")
	endDateStr := flag.String("end", "", "End date (YYYY-MM-DD), optional")
	format := flag.String("format", "json", "Output format: json (full report) or summary")
	flag.Parse()

	cfg, err := config.LoadOrEnv(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	applyFlags(cfg, *csvFiles, *sheetID, *sheetRange, *overridesDB)

	log, err := logger.New(logger.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}

	if !cfg.HasSource() {
		fmt.Fprintln(os.Stderr, "Error: a transaction source is required (-csv, -sheet or the config file).")
		flag.Usage()
		os.Exit(1)
	}
	if *format != "json" && *format != "summary" {
		fmt.Fprintf(os.Stderr, "Error: unknown format %q\n", *format)
		os.Exit(1)
	}

	tf, err := parseTimeframe(*startDateStr, *endDateStr, cfg.Rules.Location())
	if err != nil {
		log.Fatal().Err(err).Msg("invalid timeframe")
	}

	if err := run(cfg, tf, *format, log); err != nil {
		log.Fatal().Err(err).Msg("classification failed")
	}
}

func run(cfg *config.Config, tf usecase.Timeframe, format string, log zerolog.Logger) error {
	ctx := context.Background()

	// --- Dependency Injection (Wiring the application) ---
	components, err := app.Build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer components.Close()

	// --- Execute the Usecase ---
	report, err := components.Dashboard.Build(ctx, tf, nil)
	if err != nil {
		return err
	}

	// --- Present the Output ---
	var out interface{} = report
	if format == "summary" {
		out = summary{
			RunID:    report.RunID,
			Metrics:  report.Metrics,
			ByType:   report.ByType,
			Pairs:    len(report.Pairs),
			Warnings: report.Warnings,
		}
	}
	output, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to generate JSON report: %w", err)
	}

	fmt.Println(string(output))
	return nil
}

// applyFlags lets command-line flags override the loaded configuration.
func applyFlags(cfg *config.Config, csvFiles, sheetID, sheetRange, overridesDB string) {
	if csvFiles != "" {
		cfg.Sources.CSVPaths = nil
		for _, path := range strings.Split(csvFiles, ",") {
			if path = strings.TrimSpace(path); path != "" {
				cfg.Sources.CSVPaths = append(cfg.Sources.CSVPaths, path)
			}
		}
	}
	if sheetID != "" {
		cfg.Sources.Sheets.SpreadsheetID = sheetID
	}
	if sheetRange != "" {
		cfg.Sources.Sheets.Range = sheetRange
	}
	if overridesDB != "" {
		cfg.Overrides.DatabasePath = overridesDB
	}
}

func parseTimeframe(start, end string, loc *time.Location) (usecase.Timeframe, error) {
	var tf usecase.Timeframe
	var err error
	if start != "" {
		if tf.Start, err = time.ParseInLocation("2006-01-02", start, loc); err != nil {
			return tf, fmt.Errorf("error parsing start date: %w", err)
		}
	}
	if end != "" {
		if tf.End, err = time.ParseInLocation("2006-01-02", end, loc); err != nil {
			return tf, fmt.Errorf("error parsing end date: %w", err)
		}
	}
	return tf, nil
}
