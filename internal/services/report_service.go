package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"asset-report/internal/config"
	"asset-report/internal/database"
	"asset-report/internal/models"
	"asset-report/internal/utils"
	"asset-report/internal/workflow"
)

var (
	ErrInvalidRequest = errors.New("invalid report request")
	ErrReportNotFound = database.ErrReportNotFound
	ErrReportNotReady = errors.New("report is not completed")
)

// ReportRepository is the part of the report store the service needs.
// *database.MongoDBClient satisfies it.
type ReportRepository interface {
	CreateReport(ctx context.Context, report *models.Report) error
	GetReport(ctx context.Context, reportID string) (*models.Report, error)
	Fail(ctx context.Context, report *models.Report) error
}

// ReportQueue accepts report jobs. *TaskService satisfies it.
type ReportQueue interface {
	Submit(job Job) error
	InFlight(reportID string) bool
}

// ReportService turns API requests into queued workflow runs and serves
// their results
type ReportService struct {
	store         ReportRepository
	queue         ReportQueue
	pdf           *PDFService
	defaultAPIKey string
	defaultModel  string
	now           func() time.Time
}

// NewReportService creates a new report service. The OpenAI key in cfg is
// used for requests that do not bring their own.
func NewReportService(store ReportRepository, queue ReportQueue, pdf *PDFService, cfg config.OpenAIConfig) *ReportService {
	return &ReportService{
		store:         store,
		queue:         queue,
		pdf:           pdf,
		defaultAPIKey: cfg.APIKey,
		defaultModel:  cfg.Model,
		now:           time.Now,
	}
}

// Enqueue validates the request, stores a generating record and queues the run.
// onDone may be nil.
func (s *ReportService) Enqueue(ctx context.Context, request models.GenerateReportRequest, onDone func(*workflow.State, error)) (*models.Report, error) {
	return s.enqueue(ctx, utils.GenerateUUID(), request, onDone)
}

func (s *ReportService) enqueue(ctx context.Context, reportID string, request models.GenerateReportRequest, onDone func(*workflow.State, error)) (*models.Report, error) {
	task, err := s.buildTask(reportID, request)
	if err != nil {
		return nil, err
	}
	if s.queue.InFlight(reportID) {
		return nil, ErrDuplicateReport
	}

	now := s.now()
	report := &models.Report{
		ID:          reportID,
		UserID:      task.UserID,
		Kind:        task.Kind,
		PeriodStart: utils.FormatDate(task.Window.Start),
		PeriodEnd:   utils.FormatDate(task.Window.End),
		Status:      models.ReportStatusGenerating,
		WorkflowMetadata: models.WorkflowMetadata{
			CurrentStage: "queued",
			StartTime:    now,
		},
	}
	if err := s.store.CreateReport(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to create report record: %w", err)
	}

	if err := s.queue.Submit(Job{Task: task, OnDone: onDone}); err != nil {
		// The record must not stay generating forever
		msg := fmt.Sprintf("report could not be queued: %v", err)
		report.Status = models.ReportStatusFailed
		report.ErrorMessage = &msg
		if failErr := s.store.Fail(ctx, report); failErr != nil {
			log.Printf("WARNING: Failed to mark unqueued report %s as failed: %v", reportID, failErr)
		}
		return nil, fmt.Errorf("failed to queue report %s: %w", reportID, err)
	}

	log.Printf("Queued %s report %s for user %s (%s)", task.Kind, reportID, task.UserID, task.Window)
	return report, nil
}

func (s *ReportService) buildTask(reportID string, request models.GenerateReportRequest) (models.TaskContext, error) {
	userID := strings.TrimSpace(request.UserID)
	if userID == "" {
		return models.TaskContext{}, fmt.Errorf("%w: userId is required", ErrInvalidRequest)
	}
	kind, err := models.ParseReportKind(request.Kind)
	if err != nil {
		return models.TaskContext{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	window, err := models.NewWindow(request.StartDate, request.EndDate)
	if err != nil {
		return models.TaskContext{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	credential := request.APIKey
	if credential == "" {
		credential = s.defaultAPIKey
	}
	model := request.Model
	if model == "" {
		model = s.defaultModel
	}

	return models.TaskContext{
		ReportID:   reportID,
		UserID:     userID,
		Kind:       kind,
		Window:     window,
		FocusAreas: request.FocusAreas,
		Credential: credential,
		Model:      model,
	}, nil
}

// GetReport loads a report by id
func (s *ReportService) GetReport(ctx context.Context, reportID string) (*models.Report, error) {
	return s.store.GetReport(ctx, reportID)
}

// Status reports the progress of a run. The full report is included once completed.
func (s *ReportService) Status(ctx context.Context, reportID string) (*models.StatusResponse, error) {
	report, err := s.store.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}

	resp := &models.StatusResponse{
		ReportID:         report.ID,
		Status:           string(report.Status),
		CurrentStage:     report.WorkflowMetadata.CurrentStage,
		ExecutionTrace:   report.ExecutionTrace,
		WorkflowMetadata: report.WorkflowMetadata,
	}
	switch report.Status {
	case models.ReportStatusCompleted:
		resp.Report = report
	case models.ReportStatusFailed:
		if report.ErrorMessage != nil {
			resp.Error = *report.ErrorMessage
		}
	}
	return resp, nil
}

// ExportPDF renders a completed report as PDF
func (s *ReportService) ExportPDF(ctx context.Context, reportID string) ([]byte, *models.Report, error) {
	report, err := s.store.GetReport(ctx, reportID)
	if err != nil {
		return nil, nil, err
	}
	if report.Status != models.ReportStatusCompleted {
		return nil, report, fmt.Errorf("report %s is %s: %w", reportID, report.Status, ErrReportNotReady)
	}

	data, err := s.pdf.GenerateReportPDF(report)
	if err != nil {
		return nil, report, fmt.Errorf("failed to export report %s: %w", reportID, err)
	}
	return data, report, nil
}
