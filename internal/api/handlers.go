package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"asset-report/internal/models"
	"asset-report/internal/services"
	"asset-report/internal/workflow"

	"github.com/gin-gonic/gin"
)

// Pinger checks a backing store for the health endpoint
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers contains all HTTP handlers
type Handlers struct {
	reportService   *services.ReportService
	scheduleService *services.ScheduleService // nil when scheduling is disabled
	store           Pinger
}

// NewHandlers creates a new handlers instance
func NewHandlers(reportService *services.ReportService, scheduleService *services.ScheduleService, store Pinger) *Handlers {
	return &Handlers{
		reportService:   reportService,
		scheduleService: scheduleService,
		store:           store,
	}
}

// GenerateReportHandler handles POST /api/reports/generate
func (h *Handlers) GenerateReportHandler(c *gin.Context) {
	var req models.GenerateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.reportService.Enqueue(c.Request.Context(), req, nil)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	// Return report ID immediately; the workflow runs in the background
	c.JSON(http.StatusAccepted, models.TaskResponse{
		ReportID: report.ID,
		Status:   string(report.Status),
	})
}

// GetReportStatusHandler handles GET /api/reports/status/:reportId
func (h *Handlers) GetReportStatusHandler(c *gin.Context) {
	reportID := c.Param("reportId")
	if reportID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reportId is required"})
		return
	}

	resp, err := h.reportService.Status(c.Request.Context(), reportID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetReportPDFHandler handles GET /api/reports/:reportId/pdf
func (h *Handlers) GetReportPDFHandler(c *gin.Context) {
	reportID := c.Param("reportId")

	data, report, err := h.reportService.ExportPDF(c.Request.Context(), reportID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, services.ReportFilename(report)))
	c.Data(http.StatusOK, "application/pdf", data)
}

// GetWorkflowGraphHandler handles GET /api/workflow/graph. ?format=mermaid
// returns a Mermaid flowchart instead of JSON.
func (h *Handlers) GetWorkflowGraphHandler(c *gin.Context) {
	graph := workflow.DescribeGraph()
	switch c.DefaultQuery("format", "json") {
	case "json":
		c.JSON(http.StatusOK, graph)
	case "mermaid":
		c.String(http.StatusOK, graph.Mermaid())
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be json or mermaid"})
	}
}

// OptInScheduleHandler handles POST /api/reports/schedule/opt-in
func (h *Handlers) OptInScheduleHandler(c *gin.Context) {
	var req models.ScheduleOptInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if h.scheduleService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "report scheduling is disabled"})
		return
	}

	if err := h.scheduleService.OptIn(c.Request.Context(), req); err != nil {
		c.JSON(statusFor(err), gin.H{"error": fmt.Sprintf("failed to opt in: %v", err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Successfully opted in to %s reports", req.Kind),
		"userId":  req.UserID,
		"kind":    req.Kind,
	})
}

// OptOutScheduleHandler handles POST /api/reports/schedule/opt-out
func (h *Handlers) OptOutScheduleHandler(c *gin.Context) {
	var req models.ScheduleOptOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if h.scheduleService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "report scheduling is disabled"})
		return
	}

	removed, err := h.scheduleService.OptOut(c.Request.Context(), req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": fmt.Sprintf("failed to opt out: %v", err)})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "no subscription found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Successfully opted out of %s reports", req.Kind),
		"userId":  req.UserID,
		"kind":    req.Kind,
	})
}

// HealthHandler handles GET /health
func (h *Handlers) HealthHandler(c *gin.Context) {
	if h.store != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			log.Printf("WARNING: Health check failed: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// statusFor maps service errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrReportNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrDuplicateReport), errors.Is(err, services.ErrReportNotReady):
		return http.StatusConflict
	case errors.Is(err, services.ErrQueueFull), errors.Is(err, services.ErrPoolClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
