package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsight/internal/config"
	"finsight/pkg/contracts/domain"
)

const consolidatedCSV = `Company name,ACME Trading
Business type,Retail
Currency,USD

Item,Prior period,Current period
Total sales,100000,120000
Other income,2000,3000
Cost of sales,40000,45000
Operating expenses,30000,33000
Financial expenses,5000,5500
Taxes,4000,6000

Cash and banks,8000,12000
Accounts receivable,6000,7000
Inventory,10000,11000
Fixed assets,50000,48000
Short-term debt,9000,10000
Long-term debt,20000,18000
Capital,30000,30000
Retained earnings,15000,20000

Unit selling price,100
Unit variable cost,60
Monthly fixed costs,4000
Monthly units sold,150
`

func testConfig() *config.Config {
	return &config.Config{
		Analysis: config.AnalysisConfig{
			Contamination:  0.15,
			DefaultHorizon: 3,
			MaxHorizon:     10,
			ForecastYears:  3,
		},
		Upload: config.UploadConfig{MaxFileSize: 10 << 20},
	}
}

func writeWorkbookCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "statements.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestAnalyzeFullPipeline(t *testing.T) {
	svc := NewAnalysisService(testConfig())
	path := writeWorkbookCSV(t, consolidatedCSV)

	report, err := svc.Analyze(context.Background(), path, 0)
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.False(t, report.GeneratedAt.IsZero())
	assert.Equal(t, "ACME Trading", report.Company.Name)
	assert.Equal(t, "Retail", report.Company.BusinessType)
	assert.Equal(t, "USD", report.Company.Currency)

	assert.InDelta(t, 123000, report.Totals["total_revenue_current"], 1e-9)
	assert.InDelta(t, 33500, report.Totals["net_income_current"], 1e-9)

	require.Len(t, report.Horizontal, 7)
	require.NotNil(t, report.Vertical)
	assert.Len(t, report.Ratios, 5)

	require.NotNil(t, report.BreakEven)
	assert.InDelta(t, 100, report.BreakEven.BreakEvenUnits, 1e-9)

	assert.Equal(t, domain.RiskLow, report.Risk.Final)
	assert.Equal(t, domain.ModelNormal, report.Risk.ModelLabel)
	// Default horizon applies when the request does not pick one.
	assert.Len(t, report.Projection, 3)

	require.NotNil(t, report.Forecast)
	assert.Equal(t, 3, report.Forecast.Horizon)
	require.Len(t, report.Forecast.Revenue, 3)
	assert.Greater(t, report.Forecast.Revenue[2], report.Forecast.Revenue[0])

	assert.NotEmpty(t, report.Insights.Summary)
	assert.NotNil(t, report.Warnings)
}

func TestAnalyzeSparseWorkbookRecoversWithWarnings(t *testing.T) {
	svc := NewAnalysisService(testConfig())
	path := writeWorkbookCSV(t, "Item,Prior period,Current period\nTotal sales,100000,120000\n")

	report, err := svc.Analyze(context.Background(), path, 2)
	require.NoError(t, err)

	// Missing line items default to zero and surface as warnings instead
	// of failing the analysis.
	assert.NotEmpty(t, report.Warnings)
	assert.Nil(t, report.BreakEven)
	assert.InDelta(t, 120000, report.Totals["total_revenue_current"], 1e-9)
	assert.Len(t, report.Projection, 2)
	assert.Equal(t, "Not available", report.Company.Name)
}

func TestAnalyzeLoadFailure(t *testing.T) {
	svc := NewAnalysisService(testConfig())

	_, err := svc.Analyze(context.Background(), filepath.Join(t.TempDir(), "missing.csv"), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analyze")
}

func TestClampHorizon(t *testing.T) {
	svc := NewAnalysisService(testConfig())

	tests := []struct {
		name    string
		horizon int
		want    int
	}{
		{name: "zero picks default", horizon: 0, want: 3},
		{name: "negative picks default", horizon: -5, want: 3},
		{name: "in range passes through", horizon: 7, want: 7},
		{name: "above max clamps", horizon: 25, want: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.clampHorizon(tt.horizon))
		})
	}
}
