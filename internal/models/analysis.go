package models

import "github.com/shopspring/decimal"

// AnalysisSource records whether a result came from the LLM or the rule-based fallback
type AnalysisSource string

const (
	SourceLLM      AnalysisSource = "llm"
	SourceFallback AnalysisSource = "fallback"
)

// Rating is the ordinal overall grade of a conclusion
type Rating string

const (
	RatingAPlus Rating = "A+"
	RatingA     Rating = "A"
	RatingBPlus Rating = "B+"
	RatingB     Rating = "B"
	RatingC     Rating = "C"
	RatingD     Rating = "D"
)

// Severity of the risks found in a conclusion
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Trend is a coarse direction label for period-over-period change
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendFlat Trend = "flat"
)

// IntegratedAnalysis is the cross-cutting qualitative view of both snapshots
type IntegratedAnalysis struct {
	Source       AnalysisSource `json:"source"`
	OverallScore float64        `json:"overallScore"`
	Band         string         `json:"band"` // excellent, good, fair, poor
	Summary      string         `json:"summary"`
	Strengths    []string       `json:"strengths"`
	Risks        []string       `json:"risks"`
	Suggestions  []string       `json:"suggestions"`
}

// ClassComparison compares one asset class across two windows
type ClassComparison struct {
	Current    decimal.Decimal `json:"current"`
	Previous   decimal.Decimal `json:"previous"`
	GrowthRate *float64        `json:"growthRate,omitempty"` // nil when previous is zero
	Trend      Trend           `json:"trend"`
	ScoreDelta float64         `json:"scoreDelta"`
}

// ComparisonAnalysis compares the report window with the prior equal-length window
type ComparisonAnalysis struct {
	PriorWindow Window          `json:"priorWindow"`
	Fixed       ClassComparison `json:"fixed"`
	Virtual     ClassComparison `json:"virtual"`
	Income      ClassComparison `json:"income"`
}

// QualitativeConclusion is the single structured verdict of a report
type QualitativeConclusion struct {
	Source    AnalysisSource `json:"source"`
	Rating    Rating         `json:"rating"`
	Severity  Severity       `json:"severity"`
	Findings  []string       `json:"findings"`
	Strengths []string       `json:"strengths"`
	Risks     []string       `json:"risks"`
	Actions   []string       `json:"actions"` // Ordered by priority, highest first
}

// Narrative is the prose wrapped around the structured report
type Narrative struct {
	Source           AnalysisSource `json:"source"`
	ExecutiveSummary string         `json:"executiveSummary"`
	Outlook          string         `json:"outlook"`
}

// QualityScore is the evaluator's rubric result
type QualityScore struct {
	Accuracy     float64 `json:"accuracy" bson:"accuracy"`
	Completeness float64 `json:"completeness" bson:"completeness"`
	Structure    float64 `json:"structure" bson:"structure"`
	Total        float64 `json:"total" bson:"total"`
}
