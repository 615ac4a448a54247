package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"finsight/internal/analysis"
	"finsight/internal/config"
	"finsight/internal/forecast"
	"finsight/internal/insights"
	"finsight/internal/risk"
	"finsight/internal/workbook"
	"finsight/pkg/contracts/domain"
)

var (
	analysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "finsight",
		Name:      "analyses_total",
		Help:      "Completed analysis requests by outcome.",
	}, []string{"status", "mode"})

	analysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "finsight",
		Name:      "analysis_duration_seconds",
		Help:      "Wall time of one analysis request.",
		Buckets:   prometheus.DefBuckets,
	})

	analysisWarnings = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "finsight",
		Name:      "analysis_warnings",
		Help:      "Recovered data-quality warnings per analysis.",
		Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
	})
)

// AnalysisService runs the full pipeline for one uploaded workbook:
// load, resolve, compute, detect, project, forecast, generate insights.
// It is stateless across requests; the outlier model is created and fitted
// per call.
type AnalysisService struct {
	cfg    *config.Config
	loader *workbook.Loader
	logger *slog.Logger
}

// NewAnalysisService creates an analysis service using the default logger
func NewAnalysisService(cfg *config.Config) *AnalysisService {
	return NewAnalysisServiceWithLogger(cfg, slog.Default())
}

// NewAnalysisServiceWithLogger creates an analysis service with a specific logger
func NewAnalysisServiceWithLogger(cfg *config.Config, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		cfg:    cfg,
		loader: workbook.NewLoader(logger),
		logger: logger,
	}
}

// Analyze loads the workbook at path and produces the full report. Horizon
// is clamped to the configured range; zero selects the default. Only a
// load failure aborts; every downstream issue is recovered into the
// report's warnings list.
func (s *AnalysisService) Analyze(ctx context.Context, path string, horizon int) (*domain.AnalysisReport, error) {
	tracer := otel.Tracer("analysis-service")
	start := time.Now()

	horizon = s.clampHorizon(horizon)

	ctx, span := tracer.Start(ctx, "analysis_service.analyze",
		trace.WithAttributes(
			attribute.String("workbook.path", path),
			attribute.Int("analysis.horizon", horizon),
		),
	)
	defer span.End()

	ds, err := s.loader.Load(path)
	if err != nil {
		analysesTotal.WithLabelValues("load_failed", "none").Inc()
		span.RecordError(err)
		s.logger.ErrorContext(ctx, "workbook load failed",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("analyze %s: %w", path, err)
	}
	span.SetAttributes(attribute.String("workbook.mode", string(ds.Mode)))

	report := s.analyzeDataset(ctx, ds, horizon)
	report.ID = uuid.New().String()
	report.GeneratedAt = time.Now().UTC()

	elapsed := time.Since(start)
	analysesTotal.WithLabelValues("ok", string(ds.Mode)).Inc()
	analysisDuration.Observe(elapsed.Seconds())
	analysisWarnings.Observe(float64(len(report.Warnings)))

	s.logger.InfoContext(ctx, "analysis completed",
		slog.String("report_id", report.ID),
		slog.String("mode", string(ds.Mode)),
		slog.String("company", report.Company.Name),
		slog.String("risk", string(report.Risk.Final)),
		slog.Int("warnings", len(report.Warnings)),
		slog.Duration("elapsed", elapsed))
	return report, nil
}

// analyzeDataset runs every computation stage over an already loaded
// dataset, accumulating warnings as it goes.
func (s *AnalysisService) analyzeDataset(ctx context.Context, ds workbook.Dataset, horizon int) *domain.AnalysisReport {
	warnings := &analysis.Warnings{}

	totals := analysis.ComputeTotals(ds, warnings)
	analyzer := analysis.NewAnalyzer(ds, totals, warnings, s.logger)

	detector := risk.NewDetector(risk.NewIsolationForest(s.cfg.Analysis.Contamination), s.logger)
	verdict := detector.Detect(totals, warnings)
	projection := detector.ProjectFuture(totals, horizon)

	report := &domain.AnalysisReport{
		Company:    analyzer.Company(),
		Snapshot:   analyzer.Snapshot(),
		Totals:     totals.Map(),
		Horizontal: analyzer.Horizontal(),
		Vertical:   analyzer.Vertical(),
		Ratios:     analyzer.Ratios(),
		BreakEven:  analyzer.BreakEven(),
		Risk:       verdict,
		Projection: projection,
	}

	report.Forecast = s.forecastSeries(ctx, totals, warnings)
	report.Insights = insights.Generate(insights.Input{
		Totals:     totals,
		Ratios:     report.Ratios,
		Horizontal: report.Horizontal,
		Risk:       report.Risk,
		Projection: report.Projection,
	})
	report.Warnings = warnings.List()
	return report
}

// forecastSeries projects revenue and total cost over the configured
// number of years. A fit failure leaves the forecast absent and records a
// warning.
func (s *AnalysisService) forecastSeries(ctx context.Context, totals analysis.Totals, w *analysis.Warnings) *domain.Forecast {
	revenue := []float64{totals.Revenue.Prior, totals.Revenue.Current}
	costs := []float64{
		totals.CostOfSales.Prior + totals.OperatingExpenses.Prior,
		totals.CostOfSales.Current + totals.OperatingExpenses.Current,
	}

	fc, err := forecast.Forecast(revenue, costs, s.cfg.Analysis.ForecastYears)
	if err != nil {
		if errors.Is(err, forecast.ErrInsufficientData) {
			w.Addf("forecast", "forecast skipped: %v", err)
		} else {
			w.Addf("forecast", "forecast failed: %v", err)
		}
		s.logger.WarnContext(ctx, "forecast skipped", slog.String("error", err.Error()))
		return nil
	}
	return fc
}

func (s *AnalysisService) clampHorizon(horizon int) int {
	if horizon < 1 {
		return s.cfg.Analysis.DefaultHorizon
	}
	if horizon > s.cfg.Analysis.MaxHorizon {
		return s.cfg.Analysis.MaxHorizon
	}
	return horizon
}
