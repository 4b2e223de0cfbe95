package workflow

import (
	"fmt"
	"strings"

	"asset-report/internal/models"
	"asset-report/internal/utils"
)

// Score bands shared by the analyzer and the synthesizer fallbacks
const (
	BandExcellent = "excellent"
	BandGood      = "good"
	BandFair      = "fair"
	BandPoor      = "poor"
)

// BandFor maps a 0..100 score onto a qualitative band
func BandFor(score float64) string {
	switch {
	case score >= 80:
		return BandExcellent
	case score >= 60:
		return BandGood
	case score >= 40:
		return BandFair
	default:
		return BandPoor
	}
}

// SeverityFor is the inverse of the band: a healthy portfolio has low severity
func SeverityFor(score float64) models.Severity {
	switch {
	case score >= 60:
		return models.SeverityLow
	case score >= 40:
		return models.SeverityMedium
	default:
		return models.SeverityHigh
	}
}

// RatingFor grades a 0..100 score
func RatingFor(score float64) models.Rating {
	switch {
	case score >= 90:
		return models.RatingAPlus
	case score >= 80:
		return models.RatingA
	case score >= 70:
		return models.RatingBPlus
	case score >= 60:
		return models.RatingB
	case score >= 40:
		return models.RatingC
	default:
		return models.RatingD
	}
}

// OverallScore averages the scores of the asset classes the user actually holds
func OverallScore(fixed *models.FixedAssetSnapshot, virtual *models.VirtualAssetSnapshot) float64 {
	var sum float64
	var n int
	if fixed != nil && fixed.InUseCount+fixed.IdleCount > 0 {
		sum += fixed.HealthScore
		n++
	}
	if virtual != nil && virtual.ActiveCount > 0 {
		sum += virtual.EfficiencyScore
		n++
	}
	if n == 0 {
		return 0
	}
	return utils.Round2(sum / float64(n))
}

// FallbackAnalysis derives the integrated analysis from the numeric scores alone
func FallbackAnalysis(fixed *models.FixedAssetSnapshot, virtual *models.VirtualAssetSnapshot) *models.IntegratedAnalysis {
	score := OverallScore(fixed, virtual)
	band := BandFor(score)
	a := &models.IntegratedAnalysis{
		Source:       models.SourceFallback,
		OverallScore: score,
		Band:         band,
	}

	if fixed != nil && fixed.InUseCount+fixed.IdleCount > 0 {
		if fixed.HealthScore >= 60 {
			a.Strengths = append(a.Strengths, fmt.Sprintf("Fixed assets are in %s shape (health %.1f).", BandFor(fixed.HealthScore), fixed.HealthScore))
		}
		if fixed.UsageRate >= 70 {
			a.Strengths = append(a.Strengths, fmt.Sprintf("%.0f%% of held fixed assets are in active use.", fixed.UsageRate))
		}
		if fixed.IncomeReturnRate >= 5 {
			a.Strengths = append(a.Strengths, fmt.Sprintf("Fixed assets returned %.1f%% of their purchase value as income.", fixed.IncomeReturnRate))
		}
		if fixed.DepreciationRate >= 40 {
			a.Risks = append(a.Risks, fmt.Sprintf("Fixed assets have lost %.1f%% of their purchase value.", fixed.DepreciationRate))
			a.Suggestions = append(a.Suggestions, "Review heavily depreciated items and consider selling or replacing them.")
		}
		if fixed.IdleCount > 0 && fixed.UsageRate < 50 {
			a.Risks = append(a.Risks, fmt.Sprintf("%d fixed assets sit idle.", fixed.IdleCount))
			a.Suggestions = append(a.Suggestions, "Put idle fixed assets back to use, rent them out, or sell them.")
		}
	}

	if virtual != nil && virtual.ActiveCount > 0 {
		if virtual.EfficiencyScore >= 60 {
			a.Strengths = append(a.Strengths, fmt.Sprintf("Subscriptions are used efficiently (efficiency %.1f).", virtual.EfficiencyScore))
		}
		if virtual.WasteRate >= 20 {
			a.Risks = append(a.Risks, fmt.Sprintf("%d active subscriptions are barely used, costing %s.", virtual.WastedCount, virtual.WastedCost.StringFixed(2)))
			a.Suggestions = append(a.Suggestions, "Cancel or downgrade subscriptions that are rarely used.")
		}
		if virtual.ExpiringSoonCount > 0 {
			a.Risks = append(a.Risks, fmt.Sprintf("%d subscriptions expire within %d days.", virtual.ExpiringSoonCount, expiringSoonDays))
			a.Suggestions = append(a.Suggestions, "Decide which expiring subscriptions are worth renewing before they lapse.")
		}
	}

	if len(a.Strengths) == 0 {
		a.Strengths = []string{"No standout strengths this period."}
	}
	if len(a.Risks) == 0 {
		a.Risks = []string{"No significant risks detected."}
	}
	a.Suggestions = append(a.Suggestions, "Keep recording asset usage and income to sharpen future reports.")
	a.Summary = fmt.Sprintf("Overall asset score is %.1f, which is %s. %d strengths and %d risks were identified.",
		score, band, countReal(a.Strengths, "No standout"), countReal(a.Risks, "No significant"))
	return a
}

// FallbackConclusion turns the analysis into a graded conclusion
func FallbackConclusion(st *State) *models.QualitativeConclusion {
	analysis := st.Analysis
	if analysis == nil {
		analysis = FallbackAnalysis(st.Fixed, st.Virtual)
	}
	score := analysis.OverallScore

	c := &models.QualitativeConclusion{
		Source:    models.SourceFallback,
		Rating:    RatingFor(score),
		Severity:  SeverityFor(score),
		Strengths: append([]string(nil), analysis.Strengths...),
		Risks:     append([]string(nil), analysis.Risks...),
		Actions:   append([]string(nil), analysis.Suggestions...),
	}

	if st.Fixed != nil {
		c.Findings = append(c.Findings, fmt.Sprintf("Fixed asset health is %.1f (%s) across %d assets.",
			st.Fixed.HealthScore, BandFor(st.Fixed.HealthScore), st.Fixed.TotalCount))
	}
	if st.Virtual != nil {
		c.Findings = append(c.Findings, fmt.Sprintf("Virtual asset efficiency is %.1f (%s) across %d subscriptions.",
			st.Virtual.EfficiencyScore, BandFor(st.Virtual.EfficiencyScore), st.Virtual.TotalCount))
	}
	if cmp := st.Comparison; cmp != nil {
		c.Findings = append(c.Findings, fmt.Sprintf("Fixed asset book value trend is %s and subscription spend trend is %s compared with %s.",
			cmp.Fixed.Trend, cmp.Virtual.Trend, cmp.PriorWindow))
	}
	if len(c.Findings) == 0 {
		c.Findings = []string{fmt.Sprintf("Overall asset score is %.1f.", score)}
	}
	return c
}

// FallbackNarrative writes a plain executive summary and outlook from the
// structured results
func FallbackNarrative(st *State) *models.Narrative {
	var summary strings.Builder
	score := 0.0
	band := BandPoor
	if st.Analysis != nil {
		score = st.Analysis.OverallScore
		band = st.Analysis.Band
	}
	fmt.Fprintf(&summary, "Over the %s period %s to %s your assets scored %.1f overall, which is %s.",
		st.Task.Kind, utils.FormatDate(st.Task.Window.Start), utils.FormatDate(st.Task.Window.End), score, band)
	if st.Conclusion != nil {
		fmt.Fprintf(&summary, " The period is rated %s with %s severity.", st.Conclusion.Rating, st.Conclusion.Severity)
	}
	if st.Fixed != nil && st.Virtual != nil {
		fmt.Fprintf(&summary, " You hold %d fixed assets worth %s and %d virtual assets costing %s.",
			st.Fixed.TotalCount, st.Fixed.TotalCurrentValue.StringFixed(2),
			st.Virtual.TotalCount, st.Virtual.TotalCost.StringFixed(2))
	}

	outlook := "Keep the current routine and revisit the action plan next period."
	if st.Conclusion != nil && len(st.Conclusion.Actions) > 0 {
		outlook = fmt.Sprintf("The most valuable next step: %s", st.Conclusion.Actions[0])
	}
	return &models.Narrative{
		Source:           models.SourceFallback,
		ExecutiveSummary: summary.String(),
		Outlook:          outlook,
	}
}

func countReal(items []string, placeholderPrefix string) int {
	if len(items) == 1 && strings.HasPrefix(items[0], placeholderPrefix) {
		return 0
	}
	return len(items)
}
