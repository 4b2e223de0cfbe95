package models

// GenerateReportRequest represents the request to generate a report
type GenerateReportRequest struct {
	UserID     string   `json:"userId" binding:"required"`
	Kind       string   `json:"kind" binding:"required,oneof=weekly monthly yearly custom"`
	StartDate  string   `json:"startDate" binding:"required"` // YYYY-MM-DD
	EndDate    string   `json:"endDate" binding:"required"`   // YYYY-MM-DD
	FocusAreas []string `json:"focusAreas,omitempty"`
	APIKey     string   `json:"apiKey,omitempty"` // Optional provider key; server default is used when empty
	Model      string   `json:"model,omitempty"`
}

// TaskResponse represents the response when a report has been enqueued
type TaskResponse struct {
	ReportID string `json:"reportId"`
	Status   string `json:"status"`
}

// StatusResponse represents the response when checking report status
type StatusResponse struct {
	ReportID         string           `json:"reportId"`
	Status           string           `json:"status"` // "generating", "completed", "failed"
	CurrentStage     string           `json:"currentStage,omitempty"`
	Report           *Report          `json:"report,omitempty"`
	ExecutionTrace   ExecutionTrace   `json:"executionTrace,omitempty"`
	WorkflowMetadata WorkflowMetadata `json:"workflowMetadata"`
	Error            string           `json:"error,omitempty"`
}

// ScheduleOptInRequest subscribes a user to periodic reports
type ScheduleOptInRequest struct {
	UserID string `json:"userId" binding:"required"`
	Kind   string `json:"kind" binding:"required,oneof=weekly monthly yearly"`
	Email  string `json:"email" binding:"omitempty,email"`
}

// ScheduleOptOutRequest removes a periodic report subscription
type ScheduleOptOutRequest struct {
	UserID string `json:"userId" binding:"required"`
	Kind   string `json:"kind" binding:"required,oneof=weekly monthly yearly"`
}
