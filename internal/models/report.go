package models

import "time"

// ReportStatus is the lifecycle state of a persisted report
type ReportStatus string

const (
	ReportStatusGenerating ReportStatus = "generating"
	ReportStatusCompleted  ReportStatus = "completed"
	ReportStatusFailed     ReportStatus = "failed"
)

// IsTerminal reports whether the report can no longer change
func (s ReportStatus) IsTerminal() bool {
	return s == ReportStatusCompleted || s == ReportStatusFailed
}

// TraceStatus is the outcome of one stage execution
type TraceStatus string

const (
	TraceCompleted TraceStatus = "completed"
	TraceSkipped   TraceStatus = "skipped"
	TraceFailed    TraceStatus = "failed"
)

// TraceEntry is one line of the execution audit trail
type TraceEntry struct {
	Stage     string      `json:"stage" bson:"stage"`
	Timestamp time.Time   `json:"timestamp" bson:"timestamp"`
	Status    TraceStatus `json:"status" bson:"status"`
	Detail    string      `json:"detail" bson:"detail"`
}

// ExecutionTrace is the append-only, ordered audit trail of one run
type ExecutionTrace []TraceEntry

// Last returns the most recent entry, or false when the trace is empty
func (t ExecutionTrace) Last() (TraceEntry, bool) {
	if len(t) == 0 {
		return TraceEntry{}, false
	}
	return t[len(t)-1], true
}

// WorkflowMetadata summarizes how a report was produced
type WorkflowMetadata struct {
	QualityScore *QualityScore `json:"qualityScore,omitempty" bson:"qualityScore,omitempty"`
	RetryCount   int           `json:"retryCount" bson:"retryCount"`
	CurrentStage string        `json:"currentStage" bson:"currentStage"`
	StartTime    time.Time     `json:"startTime" bson:"startTime"`
	EndTime      *time.Time    `json:"endTime,omitempty" bson:"endTime,omitempty"`
}

// Report is the persisted result of one workflow run
type Report struct {
	ID               string           `json:"id" bson:"_id"`
	UserID           string           `json:"userId" bson:"userId"`
	Kind             ReportKind       `json:"kind" bson:"kind"`
	PeriodStart      string           `json:"periodStart" bson:"periodStart"` // YYYY-MM-DD
	PeriodEnd        string           `json:"periodEnd" bson:"periodEnd"`     // YYYY-MM-DD
	Status           ReportStatus     `json:"status" bson:"status"`
	Content          string           `json:"content" bson:"content"`
	Summary          string           `json:"summary" bson:"summary"`
	ExecutionTrace   ExecutionTrace   `json:"executionTrace" bson:"executionTrace"`
	WorkflowMetadata WorkflowMetadata `json:"workflowMetadata" bson:"workflowMetadata"`
	ErrorMessage     *string          `json:"errorMessage,omitempty" bson:"errorMessage,omitempty"`
	GeneratedAt      *time.Time       `json:"generatedAt,omitempty" bson:"generatedAt,omitempty"`
	CreatedAt        time.Time        `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt" bson:"updatedAt"`
}
