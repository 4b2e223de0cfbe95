package workflow

import (
	"strings"
	"time"
	"unicode/utf8"

	"asset-report/internal/models"
	"asset-report/internal/utils"
)

// summaryLimit caps the stored report summary, in runes
const summaryLimit = 280

// State is owned by exactly one engine run. Each stage fills its own slot;
// a nil slot means the stage has not produced output (or chose not to).
type State struct {
	Task models.TaskContext

	Fixed      *models.FixedAssetSnapshot
	Virtual    *models.VirtualAssetSnapshot
	Analysis   *models.IntegratedAnalysis
	Comparison *models.ComparisonAnalysis // nil when the prior window had no data
	Conclusion *models.QualitativeConclusion
	Narrative  *models.Narrative // nil when the narrative step degraded
	Content    string
	Quality    *models.QualityScore

	RetryCount int
	Stage      Stage
	Trace      models.ExecutionTrace
	StartTime  time.Time
	EndTime    time.Time
	Err        *StageError
}

// NewState prepares the state for a fresh run of task
func NewState(task models.TaskContext, start time.Time) *State {
	return &State{
		Task:      task,
		StartTime: start,
		Trace:     models.ExecutionTrace{},
	}
}

func (s *State) appendTrace(stage Stage, status models.TraceStatus, detail string, at time.Time) {
	s.Trace = append(s.Trace, models.TraceEntry{
		Stage:     stage.String(),
		Timestamp: at,
		Status:    status,
		Detail:    detail,
	})
	s.Stage = stage
}

// Status maps the run position onto the persisted report lifecycle
func (s *State) Status() models.ReportStatus {
	switch {
	case s.Stage == StageFail || s.Err != nil:
		return models.ReportStatusFailed
	case s.Stage == StageSave:
		return models.ReportStatusCompleted
	default:
		return models.ReportStatusGenerating
	}
}

// Metadata summarizes the run for the report record
func (s *State) Metadata() models.WorkflowMetadata {
	meta := models.WorkflowMetadata{
		RetryCount:   s.RetryCount,
		CurrentStage: s.Stage.String(),
		StartTime:    s.StartTime,
	}
	if s.Quality != nil {
		q := *s.Quality
		meta.QualityScore = &q
	}
	if !s.EndTime.IsZero() {
		end := s.EndTime
		meta.EndTime = &end
	}
	return meta
}

// Summary is the short teaser stored next to the content: the first
// paragraph of the executive summary, or the analysis summary without one.
func (s *State) Summary() string {
	var text string
	switch {
	case s.Narrative != nil && strings.TrimSpace(s.Narrative.ExecutiveSummary) != "":
		text = s.Narrative.ExecutiveSummary
	case s.Analysis != nil:
		text = s.Analysis.Summary
	}
	text = strings.TrimSpace(text)
	if i := strings.Index(text, "\n\n"); i >= 0 {
		text = strings.TrimSpace(text[:i])
	}
	return truncateRunes(text, summaryLimit)
}

func truncateRunes(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:limit-1])) + "…"
}

// Report projects the state onto the persisted record. The trace is copied
// so the sink never aliases the engine's slice.
func (s *State) Report() *models.Report {
	trace := make(models.ExecutionTrace, len(s.Trace))
	copy(trace, s.Trace)

	report := &models.Report{
		ID:               s.Task.ReportID,
		UserID:           s.Task.UserID,
		Kind:             s.Task.Kind,
		Status:           s.Status(),
		Content:          s.Content,
		ExecutionTrace:   trace,
		WorkflowMetadata: s.Metadata(),
	}
	if !s.Task.Window.Start.IsZero() {
		report.PeriodStart = utils.FormatDate(s.Task.Window.Start)
		report.PeriodEnd = utils.FormatDate(s.Task.Window.End)
	}
	if report.Status == models.ReportStatusCompleted {
		report.Summary = s.Summary()
		generated := s.EndTime
		report.GeneratedAt = &generated
	}
	if s.Err != nil {
		msg := s.Err.Error()
		report.ErrorMessage = &msg
	}
	return report
}
