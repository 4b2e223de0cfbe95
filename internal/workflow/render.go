package workflow

import (
	"fmt"
	"strings"

	"asset-report/internal/models"
	"asset-report/internal/utils"
)

// Section titles the renderer emits
const (
	SectionExecutiveSummary   = "Executive Summary"
	SectionFixedAssets        = "Fixed Assets"
	SectionVirtualAssets      = "Virtual Assets"
	SectionPeriodComparison   = "Period Comparison"
	SectionIntegratedAnalysis = "Integrated Analysis"
	SectionConclusion         = "Conclusion"
	SectionActionPlan         = "Action Plan"
	SectionOutlook            = "Outlook"
)

// Render lays the state out as a Markdown report. It is pure: the same state
// always renders the same document. Only the comparison and narrative blocks
// are optional.
func Render(st *State) (string, error) {
	switch {
	case st.Fixed == nil:
		return "", fmt.Errorf("fixed asset snapshot is missing")
	case st.Virtual == nil:
		return "", fmt.Errorf("virtual asset snapshot is missing")
	case st.Analysis == nil:
		return "", fmt.Errorf("integrated analysis is missing")
	case st.Conclusion == nil:
		return "", fmt.Errorf("conclusion is missing")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s Asset Report\n\n", titleCase(string(st.Task.Kind)))
	fmt.Fprintf(&b, "**Period:** %s to %s | **Overall score:** %.1f (%s) | **Rating:** %s\n\n",
		utils.FormatDate(st.Task.Window.Start), utils.FormatDate(st.Task.Window.End),
		st.Analysis.OverallScore, st.Analysis.Band, st.Conclusion.Rating)

	if st.Narrative != nil && strings.TrimSpace(st.Narrative.ExecutiveSummary) != "" {
		section(&b, SectionExecutiveSummary)
		b.WriteString(strings.TrimSpace(st.Narrative.ExecutiveSummary))
		b.WriteString("\n\n")
	}

	renderFixed(&b, st.Fixed)
	renderVirtual(&b, st.Virtual)
	if st.Comparison != nil {
		renderComparison(&b, st.Comparison)
	}

	section(&b, SectionIntegratedAnalysis)
	b.WriteString(strings.TrimSpace(st.Analysis.Summary))
	b.WriteString("\n\n")
	list(&b, "Strengths", st.Analysis.Strengths)
	list(&b, "Risks", st.Analysis.Risks)

	section(&b, SectionConclusion)
	fmt.Fprintf(&b, "Rated **%s** with **%s** severity.\n\n", st.Conclusion.Rating, st.Conclusion.Severity)
	list(&b, "Key findings", st.Conclusion.Findings)
	list(&b, "Risks to watch", st.Conclusion.Risks)

	section(&b, SectionActionPlan)
	for i, action := range st.Conclusion.Actions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, action)
	}
	b.WriteString("\n")

	if st.Narrative != nil && strings.TrimSpace(st.Narrative.Outlook) != "" {
		section(&b, SectionOutlook)
		b.WriteString(strings.TrimSpace(st.Narrative.Outlook))
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n", nil
}

func renderFixed(b *strings.Builder, f *models.FixedAssetSnapshot) {
	section(b, SectionFixedAssets)
	fmt.Fprintf(b, "Health score **%.1f** (%s).\n\n", f.HealthScore, BandFor(f.HealthScore))
	fmt.Fprintf(b, "- Assets: %d total, %d in use, %d idle, %d disposed\n", f.TotalCount, f.InUseCount, f.IdleCount, f.DisposedCount)
	fmt.Fprintf(b, "- Purchase value: %s, current value: %s\n", f.TotalPurchaseValue.StringFixed(2), f.TotalCurrentValue.StringFixed(2))
	fmt.Fprintf(b, "- Depreciation: %s (%.2f%%)\n", f.TotalDepreciation.StringFixed(2), f.DepreciationRate)
	fmt.Fprintf(b, "- Income: %s (%.2f%% return)\n", f.TotalIncome.StringFixed(2), f.IncomeReturnRate)
	fmt.Fprintf(b, "- Usage rate: %.2f%%\n\n", f.UsageRate)
	categoryTable(b, "Current value", f.Categories)
}

func renderVirtual(b *strings.Builder, v *models.VirtualAssetSnapshot) {
	section(b, SectionVirtualAssets)
	fmt.Fprintf(b, "Efficiency score **%.1f** (%s).\n\n", v.EfficiencyScore, BandFor(v.EfficiencyScore))
	fmt.Fprintf(b, "- Items: %d total, %d active, %d expired, %d expiring soon\n", v.TotalCount, v.ActiveCount, v.ExpiredCount, v.ExpiringSoonCount)
	fmt.Fprintf(b, "- Spend: %s total, %s active\n", v.TotalCost.StringFixed(2), v.ActiveCost.StringFixed(2))
	fmt.Fprintf(b, "- Utilization: %.2f%%, waste rate: %.2f%% (%d items, %s)\n", v.UtilizationRate, v.WasteRate, v.WastedCount, v.WastedCost.StringFixed(2))
	fmt.Fprintf(b, "- Income: %s\n\n", v.TotalIncome.StringFixed(2))
	categoryTable(b, "Cost", v.Categories)
}

func renderComparison(b *strings.Builder, c *models.ComparisonAnalysis) {
	section(b, SectionPeriodComparison)
	fmt.Fprintf(b, "Compared with %s to %s.\n\n", utils.FormatDate(c.PriorWindow.Start), utils.FormatDate(c.PriorWindow.End))
	b.WriteString("| Measure | Previous | Current | Change | Trend |\n")
	b.WriteString("|---|---|---|---|---|\n")
	comparisonRow(b, "Fixed asset book value", c.Fixed)
	comparisonRow(b, "Active subscription spend", c.Virtual)
	comparisonRow(b, "Income", c.Income)
	b.WriteString("\n")
}

func comparisonRow(b *strings.Builder, label string, c models.ClassComparison) {
	change := "n/a"
	if c.GrowthRate != nil {
		change = fmt.Sprintf("%+.2f%%", *c.GrowthRate)
	}
	fmt.Fprintf(b, "| %s | %s | %s | %s | %s |\n", label, c.Previous.StringFixed(2), c.Current.StringFixed(2), change, c.Trend)
}

func categoryTable(b *strings.Builder, valueLabel string, categories []models.CategoryStat) {
	if len(categories) == 0 {
		return
	}
	fmt.Fprintf(b, "| Category | Count | %s |\n", valueLabel)
	b.WriteString("|---|---|---|\n")
	for _, c := range categories {
		fmt.Fprintf(b, "| %s | %d | %s |\n", c.Category, c.Count, c.Value.StringFixed(2))
	}
	b.WriteString("\n")
}

func section(b *strings.Builder, title string) {
	fmt.Fprintf(b, "## %s\n\n", title)
}

func list(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "**%s:**\n\n", label)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}

func titleCase(s string) string {
	if s == "" {
		return "Asset"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
