package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"asset-report/internal/database"
	"asset-report/internal/models"
	"asset-report/internal/utils"
	"asset-report/internal/workflow"

	"github.com/robfig/cron/v3"
)

// Cron specs with seconds precision: second minute hour day month weekday
var scheduleSpecs = map[models.ReportKind]string{
	models.ReportKindWeekly:  "0 0 1 * * 1", // Monday 01:00, covers the previous Monday-Sunday
	models.ReportKindMonthly: "0 0 1 1 * *", // 1st of the month 01:00, covers the previous month
	models.ReportKindYearly:  "0 0 1 1 1 *", // January 1st 01:00, covers the previous year
}

// SubscriptionStore persists periodic report opt-ins.
// *database.MongoDBClient satisfies it.
type SubscriptionStore interface {
	AddSubscription(ctx context.Context, sub database.Subscription) error
	RemoveSubscription(ctx context.Context, userID string, kind models.ReportKind) (bool, error)
	ListSubscriptions(ctx context.Context, kind models.ReportKind) ([]database.Subscription, error)
	MarkTriggered(ctx context.Context, userID string, kind models.ReportKind, at time.Time) error
}

// Mailer delivers finished reports. *EmailService satisfies it.
type Mailer interface {
	Enabled() bool
	SendReportEmail(toEmail string, report *models.Report, pdfData []byte) error
}

// ScheduleService enqueues periodic reports for subscribed users and emails
// the results
type ScheduleService struct {
	reports *ReportService
	subs    SubscriptionStore
	pdf     *PDFService
	mailer  Mailer
	cron    *cron.Cron
	timeout time.Duration
}

// NewScheduleService creates a new schedule service. mailer may be nil.
func NewScheduleService(reports *ReportService, subs SubscriptionStore, pdf *PDFService, mailer Mailer) *ScheduleService {
	return &ScheduleService{
		reports: reports,
		subs:    subs,
		pdf:     pdf,
		mailer:  mailer,
		cron:    cron.New(cron.WithSeconds()),
		timeout: 30 * time.Second,
	}
}

// Start registers one cron entry per report kind and starts the scheduler
func (s *ScheduleService) Start() error {
	for _, kind := range []models.ReportKind{models.ReportKindWeekly, models.ReportKindMonthly, models.ReportKindYearly} {
		kind := kind
		spec := scheduleSpecs[kind]
		_, err := s.cron.AddFunc(spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
			defer cancel()
			if _, err := s.RunKind(ctx, kind, time.Now()); err != nil {
				log.Printf("ERROR: Scheduled %s reports failed: %v", kind, err)
			}
		})
		if err != nil {
			return fmt.Errorf("failed to schedule %s reports: %w", kind, err)
		}
		log.Printf("Scheduled %s reports with schedule: %s", kind, spec)
	}

	s.cron.Start()
	log.Println("Report cron scheduler started")
	return nil
}

// Stop stops the cron scheduler and waits for a running trigger to return
func (s *ScheduleService) Stop() {
	<-s.cron.Stop().Done()
	log.Println("Report cron scheduler stopped")
}

// OptIn subscribes a user to periodic reports of one kind
func (s *ScheduleService) OptIn(ctx context.Context, req models.ScheduleOptInRequest) error {
	kind, err := scheduledKind(req.Kind)
	if err != nil {
		return err
	}
	if req.Email != "" && !s.emailEnabled() {
		log.Printf("WARNING: User %s opted in with an email but email delivery is not configured", req.UserID)
	}
	return s.subs.AddSubscription(ctx, database.Subscription{
		UserID:    req.UserID,
		Kind:      kind,
		Email:     req.Email,
		OptedInAt: time.Now(),
	})
}

// OptOut removes a subscription and reports whether one existed
func (s *ScheduleService) OptOut(ctx context.Context, req models.ScheduleOptOutRequest) (bool, error) {
	kind, err := scheduledKind(req.Kind)
	if err != nil {
		return false, err
	}
	return s.subs.RemoveSubscription(ctx, req.UserID, kind)
}

// RunKind enqueues the previous complete period for every subscriber of kind
// and returns how many reports were queued
func (s *ScheduleService) RunKind(ctx context.Context, kind models.ReportKind, now time.Time) (int, error) {
	subs, err := s.subs.ListSubscriptions(ctx, kind)
	if err != nil {
		return 0, err
	}
	window, err := PreviousPeriod(kind, now)
	if err != nil {
		return 0, err
	}

	log.Printf("Enqueuing %d %s reports for %s", len(subs), kind, window)
	queued := 0
	for _, sub := range subs {
		sub := sub
		request := models.GenerateReportRequest{
			UserID:    sub.UserID,
			Kind:      string(kind),
			StartDate: utils.FormatDate(window.Start),
			EndDate:   utils.FormatDate(window.End),
		}
		reportID := ScheduledReportID(sub.UserID, kind, window)

		if _, err := s.reports.enqueue(ctx, reportID, request, s.deliver(sub)); err != nil {
			log.Printf("WARNING: Failed to enqueue scheduled %s report for user %s: %v", kind, sub.UserID, err)
			continue
		}
		queued++
		if err := s.subs.MarkTriggered(ctx, sub.UserID, kind, now); err != nil {
			log.Printf("WARNING: Failed to mark subscription of user %s triggered: %v", sub.UserID, err)
		}
	}
	return queued, nil
}

// deliver emails the finished report to the subscriber, when possible
func (s *ScheduleService) deliver(sub database.Subscription) func(*workflow.State, error) {
	return func(state *workflow.State, runErr error) {
		if sub.Email == "" || !s.emailEnabled() || state == nil {
			return
		}
		report := state.Report()
		if report.Status != models.ReportStatusCompleted {
			log.Printf("WARNING: Scheduled report %s for user %s did not complete, no email sent", report.ID, sub.UserID)
			return
		}

		pdfData, err := s.pdf.GenerateReportPDF(report)
		if err != nil {
			log.Printf("WARNING: Failed to generate PDF for report %s: %v, continuing without PDF", report.ID, err)
			pdfData = nil
		}
		if err := s.mailer.SendReportEmail(sub.Email, report, pdfData); err != nil {
			log.Printf("ERROR: Failed to send report email to %s for report %s: %v", sub.Email, report.ID, err)
			return
		}
		log.Printf("Successfully sent report %s to %s", report.ID, sub.Email)
	}
}

func (s *ScheduleService) emailEnabled() bool {
	return s.mailer != nil && s.mailer.Enabled()
}

func scheduledKind(raw string) (models.ReportKind, error) {
	kind, err := models.ParseReportKind(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if _, ok := scheduleSpecs[kind]; !ok {
		return "", fmt.Errorf("%w: %s reports cannot be scheduled", ErrInvalidRequest, kind)
	}
	return kind, nil
}

// PreviousPeriod is the last complete calendar period of kind before now
func PreviousPeriod(kind models.ReportKind, now time.Time) (models.Window, error) {
	now = now.UTC()
	var start, end time.Time
	switch kind {
	case models.ReportKindWeekly:
		start, end = utils.CalculateWeekRange(now.AddDate(0, 0, -7))
	case models.ReportKindMonthly:
		firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		start, end = utils.CalculateMonthRange(firstOfMonth.AddDate(0, 0, -1))
	case models.ReportKindYearly:
		start, end = utils.CalculateYearRange(time.Date(now.Year()-1, time.June, 1, 0, 0, 0, 0, time.UTC))
	default:
		return models.Window{}, fmt.Errorf("%s reports have no fixed period", kind)
	}
	return models.Window{Start: start, End: end}, nil
}

// ScheduledReportID is deterministic so a period is never queued twice for a user
func ScheduledReportID(userID string, kind models.ReportKind, window models.Window) string {
	return fmt.Sprintf("%s-%s-%s", kind, utils.FormatDate(window.Start), userID)
}
