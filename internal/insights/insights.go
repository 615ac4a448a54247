// Package insights turns the computed analysis figures into short
// human-readable findings and recommendations.
package insights

import (
	"fmt"
	"strings"

	"finsight/internal/analysis"
	"finsight/pkg/contracts/domain"
)

// Margin and balance-sheet thresholds for the finding rules, expressed in
// percent where the matching ratio is.
const (
	lowMarginPct      = 10
	healthyMarginPct  = 30
	highLeveragePct   = 70
	minCurrentRatio   = 1
	noFindingsSummary = "No significant findings. The analyzed figures are within expected ranges."
)

// Input bundles the computed report sections the generator reads.
type Input struct {
	Totals     analysis.Totals
	Ratios     map[string]float64
	Horizontal []domain.HorizontalEntry
	Risk       domain.RiskVerdict
	Projection []domain.ProjectedPeriod
}

// Generate applies the finding rules in a fixed order and derives the
// deduplicated recommendation list and the summary sentence.
func Generate(in Input) domain.Insights {
	var findings []domain.Finding
	var recs []string

	addRec := func(r string) {
		for _, existing := range recs {
			if existing == r {
				return
			}
		}
		recs = append(recs, r)
	}

	if margin, ok := in.Ratios[analysis.RatioOperatingMargin]; ok {
		switch {
		case margin < lowMarginPct:
			findings = append(findings, domain.Finding{
				Title:  "Very low operating margin",
				Detail: fmt.Sprintf("Operating margin is %.1f%%, below the %d%% floor considered sustainable.", margin, lowMarginPct),
			})
			addRec("Review pricing and the cost structure to restore the operating margin.")
		case margin > healthyMarginPct:
			findings = append(findings, domain.Finding{
				Title:  "Healthy operating margin",
				Detail: fmt.Sprintf("Operating margin is %.1f%%, comfortably above %d%%.", margin, healthyMarginPct),
			})
		}
	}

	totalCosts := in.Totals.CostOfSales.Current + in.Totals.OperatingExpenses.Current +
		in.Totals.FinancialExpenses.Current + in.Totals.Taxes.Current
	if totalCosts > in.Totals.Revenue.Current {
		findings = append(findings, domain.Finding{
			Title:  "Costs exceed revenue",
			Detail: fmt.Sprintf("Total costs of %.2f exceed revenue of %.2f, the period closes at a loss.", totalCosts, in.Totals.Revenue.Current),
		})
		addRec("Cut discretionary spending and renegotiate supplier terms until costs fall below revenue.")
	}

	if cr, ok := in.Ratios[analysis.RatioCurrentRatio]; ok && cr < minCurrentRatio {
		findings = append(findings, domain.Finding{
			Title:  "Tight liquidity",
			Detail: fmt.Sprintf("Current ratio is %.2f, short-term obligations exceed liquid assets.", cr),
		})
		addRec("Build a cash buffer or refinance short-term debt into longer maturities.")
	}

	if lev, ok := in.Ratios[analysis.RatioLeverage]; ok && lev > highLeveragePct {
		findings = append(findings, domain.Finding{
			Title:  "High leverage",
			Detail: fmt.Sprintf("Liabilities fund %.1f%% of assets, above the %d%% threshold.", lev, highLeveragePct),
		})
		addRec("Prioritize debt reduction before taking on new obligations.")
	}

	for _, entry := range in.Horizontal {
		if entry.Concept == analysis.ItemTotalSales && entry.VarianceAbs < 0 {
			findings = append(findings, domain.Finding{
				Title:  "Declining revenue",
				Detail: fmt.Sprintf("Sales fell %.2f (%.1f%%) versus the prior period.", -entry.VarianceAbs, entry.VariancePct),
			})
			addRec("Investigate the sales decline: channel performance, pricing and customer retention.")
			break
		}
	}

	for _, p := range in.Projection {
		if p.Risk == domain.ProjectedRiskHigh {
			findings = append(findings, domain.Finding{
				Title:  "Elevated projected risk",
				Detail: fmt.Sprintf("Period +%d projects an anomaly probability of %.0f%%.", p.Offset, p.AnomalyProbability*100),
			})
			addRec("Plan corrective measures now, the current trend leads into high-risk territory.")
			break
		}
	}

	if in.Risk.ModelLabel == domain.ModelAnomalous {
		findings = append(findings, domain.Finding{
			Title:  "Statistical anomaly",
			Detail: "The combined financial profile deviates from the pattern the outlier model considers normal.",
		})
		addRec("Verify the source figures, an anomalous profile often hides a data entry error.")
	}

	return domain.Insights{
		Summary:         summarize(findings),
		Findings:        findings,
		Recommendations: recs,
	}
}

// summarize joins the first four finding titles into one sentence.
func summarize(findings []domain.Finding) string {
	if len(findings) == 0 {
		return noFindingsSummary
	}
	titles := make([]string, 0, 4)
	for _, f := range findings {
		titles = append(titles, f.Title)
		if len(titles) == 4 {
			break
		}
	}
	return "Key observations: " + strings.Join(titles, "; ") + "."
}
