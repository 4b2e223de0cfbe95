package services

import (
	"testing"

	"asset-report/internal/config"
	"asset-report/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestEmailServiceDisabledWithoutConfig(t *testing.T) {
	svc := NewEmailService(config.EmailConfig{APIKey: "SG.key"})
	assert.Nil(t, svc)
	assert.False(t, svc.Enabled())
	assert.Error(t, svc.SendReportEmail("user@example.com", &models.Report{}, nil))

	svc = NewEmailService(config.EmailConfig{APIKey: "SG.key", FromEmail: "reports@example.com", FromName: "Asset Reports"})
	assert.True(t, svc.Enabled())
}

func TestReportEmailContent(t *testing.T) {
	report := &models.Report{
		Kind:        models.ReportKindMonthly,
		PeriodStart: "2026-02-01",
		PeriodEnd:   "2026-02-28",
		Summary:     "Assets <held> steady.",
	}

	assert.Equal(t, "Monthly Asset Report - 2026-02-01 to 2026-02-28", reportEmailSubject(report))
	assert.Equal(t, "monthly-asset-report-2026-02-01.pdf", ReportFilename(report))

	htmlBody := buildReportEmailHTML(report)
	assert.Contains(t, htmlBody, "Assets &lt;held&gt; steady.")
	assert.Contains(t, htmlBody, "<strong>2026-02-01</strong>")

	textBody := buildReportEmailText(report)
	assert.Contains(t, textBody, "Summary:\nAssets <held> steady.")

	report.Summary = ""
	assert.NotContains(t, buildReportEmailText(report), "Summary:")
}
