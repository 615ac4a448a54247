// Command analyze runs one analysis over a workbook and prints the
// report as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"finsight/internal/config"
	"finsight/internal/infrastructure"
	"finsight/internal/services"
	"finsight/internal/validation"
)

func main() {
	in := flag.String("in", "", "workbook to analyze (.xlsx, .xls or .csv)")
	horizon := flag.Int("horizon", 0, "risk projection horizon in periods (0 uses the configured default)")
	pretty := flag.Bool("pretty", true, "indent the JSON output")
	flag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "usage: analyze -in <workbook> [-horizon n]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Logging on stderr keeps stdout clean for the report
	logCfg := cfg.Logging
	logCfg.Output = "stderr"
	logCfg.Format = "text"
	logger, err := infrastructure.InitializeLogger(logCfg)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}

	fileValidator := validation.NewFileValidator(logger)
	if err := fileValidator.ValidateWorkbookFile(*in); err != nil {
		logger.Error("Workbook validation failed", "error", err)
		os.Exit(1)
	}

	service := services.NewAnalysisServiceWithLogger(cfg, logger)
	report, err := service.Analyze(context.Background(), *in, *horizon)
	if err != nil {
		logger.Error("Analysis failed", "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(report); err != nil {
		logger.Error("Failed to encode report", "error", err)
		os.Exit(1)
	}
}
