package risk

import (
	"log/slog"
	"math"

	"finsight/internal/analysis"
	"finsight/pkg/contracts/domain"
)

// Projected probability thresholds.
const (
	probHighThreshold   = 0.7
	probMediumThreshold = 0.3
)

// Detector fuses the deterministic rule engine with the statistical
// outlier model. The model is fitted per request on the analyzed
// statement's feature vector, so one Detector serves exactly one dataset.
type Detector struct {
	model  OutlierModel
	logger *slog.Logger
	fitted bool
}

// NewDetector wires a detector around the given outlier model.
func NewDetector(model OutlierModel, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{model: model, logger: logger}
}

// Detect evaluates the rule engine and the outlier model on the derived
// feature vector and fuses them into a final verdict. A model fit failure
// is recovered: the verdict falls back to a heuristic score (the revenue
// growth ratio) with a NORMAL label, and a warning is recorded.
func (d *Detector) Detect(totals analysis.Totals, w *analysis.Warnings) domain.RiskVerdict {
	features := NewFeatures(totals)
	ruleRes := EvaluateRules(features)

	verdict := domain.RiskVerdict{
		RuleLevel:  ruleRes.Level,
		Alerts:     ruleRes.Alerts,
		ModelLabel: domain.ModelNormal,
		Confidence: domain.ConfidenceModel,
		Features:   features.Map(),
	}

	vec := features.Vector()
	if err := d.model.Fit([][]float64{vec}); err != nil {
		d.logger.Warn("outlier model fit failed, using heuristic score", "error", err)
		w.Addf("risk", "outlier model fit failed (%v), risk score is heuristic", err)
		verdict.ModelScore = features.RevenueGrowth
		verdict.Confidence = domain.ConfidenceHeuristic
	} else {
		d.fitted = true
		verdict.ModelScore = d.model.Score(vec)
		if !d.model.Predict(vec) {
			verdict.ModelLabel = domain.ModelAnomalous
		}
	}

	verdict.Final = fuse(verdict.RuleLevel, verdict.ModelLabel)
	d.logger.Info("risk verdict",
		slog.String("rule_level", string(verdict.RuleLevel)),
		slog.String("model_label", string(verdict.ModelLabel)),
		slog.String("final", string(verdict.Final)),
		slog.Float64("model_score", verdict.ModelScore))
	return verdict
}

// fuse combines the rule level with the model label. Either signal alone
// escalates to HIGH; the rules alone can hold the verdict at MEDIUM.
func fuse(rule domain.RiskLevel, label domain.ModelLabel) domain.RiskLevel {
	switch {
	case rule == domain.RiskHigh || label == domain.ModelAnomalous:
		return domain.RiskHigh
	case rule == domain.RiskMedium:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}

// ProjectFuture extrapolates the core aggregates linearly over the
// horizon, rebuilds the feature vector for each projected period, and
// scores it against the model fitted by Detect. Capital structure is held
// at its current values. Before a successful fit every period scores
// probability 0.
func (d *Detector) ProjectFuture(totals analysis.Totals, horizon int) []domain.ProjectedPeriod {
	if horizon < 1 {
		return []domain.ProjectedPeriod{}
	}

	periods := make([]domain.ProjectedPeriod, 0, horizon)
	for offset := 1; offset <= horizon; offset++ {
		step := float64(offset)
		predRevenue := extrapolate(totals.Revenue, step)
		predIncome := extrapolate(totals.NetIncome, step)
		predAssets := extrapolate(totals.Assets, step)

		features := projectedFeatures(totals, predRevenue, predIncome)

		prob := 0.0
		if d.fitted {
			prob = anomalyProbability(d.model.Score(features.Vector()))
		}

		periods = append(periods, domain.ProjectedPeriod{
			Offset: offset,
			Predicted: map[string]float64{
				"total_revenue": predRevenue,
				"net_income":    predIncome,
				"total_assets":  predAssets,
			},
			AnomalyProbability: prob,
			Risk:               projectedRisk(prob),
		})
	}
	return periods
}

// extrapolate continues the two-period trend: value = current + slope*step
// with slope = current - prior.
func extrapolate(v analysis.PeriodValues, step float64) float64 {
	return v.Current + (v.Current-v.Prior)*step
}

// projectedFeatures derives the feature vector of a future period. Growth
// is measured against the last observed period, profit growth is unknowable
// without a projected prior and stays 0, and liabilities, equity and
// current assets are held at their current values.
func projectedFeatures(totals analysis.Totals, predRevenue, predIncome float64) Features {
	f := Features{
		RevenueGrowth:    (predRevenue - totals.Revenue.Current) / (totals.Revenue.Current + epsilon),
		RevenueCurrent:   predRevenue,
		NetIncomeCurrent: predIncome,
	}
	if predRevenue != 0 {
		f.NetMargin = predIncome / (predRevenue + epsilon)
	}
	if totals.Equity.Current != 0 {
		f.Leverage = totals.Liabilities.Current / (totals.Equity.Current + epsilon)
	}
	if totals.Liabilities.Current != 0 {
		f.Liquidity = totals.CurrentAssets.Current / (totals.Liabilities.Current + epsilon)
	}
	return f.sanitized()
}

// anomalyProbability maps a decision-function score to [0, 1]. Negative
// scores (anomalous side) approach 1, positive scores approach 0.
func anomalyProbability(score float64) float64 {
	p := -score / (1 + math.Abs(score))
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

func projectedRisk(prob float64) string {
	switch {
	case prob > probHighThreshold:
		return domain.ProjectedRiskHigh
	case prob > probMediumThreshold:
		return domain.ProjectedRiskMedium
	default:
		return domain.ProjectedRiskLow
	}
}
