package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html"
	"strings"

	"asset-report/internal/config"
	"asset-report/internal/models"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailService handles email sending via SendGrid
type EmailService struct {
	fromEmail string
	fromName  string
	client    *sendgrid.Client
}

// NewEmailService creates a new email service. It returns nil when SendGrid
// is not configured, and a nil service reports itself disabled.
func NewEmailService(cfg config.EmailConfig) *EmailService {
	if cfg.APIKey == "" || cfg.FromEmail == "" {
		return nil
	}
	return &EmailService{
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		client:    sendgrid.NewSendClient(cfg.APIKey),
	}
}

// Enabled reports whether emails can be sent
func (s *EmailService) Enabled() bool {
	return s != nil && s.client != nil
}

// SendReportEmail sends a completed report with its PDF attached
func (s *EmailService) SendReportEmail(toEmail string, report *models.Report, pdfData []byte) error {
	if !s.Enabled() {
		return fmt.Errorf("email delivery is not configured")
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail("", toEmail)
	message := mail.NewSingleEmail(from, reportEmailSubject(report), to,
		buildReportEmailText(report), buildReportEmailHTML(report))

	if len(pdfData) > 0 {
		attachment := mail.NewAttachment()
		attachment.SetContent(base64.StdEncoding.EncodeToString(pdfData))
		attachment.SetType("application/pdf")
		attachment.SetFilename(ReportFilename(report))
		attachment.SetDisposition("attachment")
		message.AddAttachment(attachment)
	}

	response, err := s.client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email via SendGrid: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("SendGrid API error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

func reportEmailSubject(report *models.Report) string {
	return fmt.Sprintf("%s Asset Report - %s to %s", kindTitle(report.Kind), report.PeriodStart, report.PeriodEnd)
}

// ReportFilename is shared by the email attachment and the PDF download
func ReportFilename(report *models.Report) string {
	return fmt.Sprintf("%s-asset-report-%s.pdf", report.Kind, report.PeriodStart)
}

func kindTitle(kind models.ReportKind) string {
	k := string(kind)
	if k == "" {
		return ""
	}
	return strings.ToUpper(k[:1]) + k[1:]
}

// buildReportEmailHTML builds the HTML content for the report email
func buildReportEmailHTML(report *models.Report) string {
	var b bytes.Buffer

	b.WriteString(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #0066cc; color: white; padding: 20px; border-radius: 8px 8px 0 0; }
        .content { background-color: #f8f9fa; padding: 20px; border-radius: 0 0 8px 8px; }
        .summary-box { background-color: white; padding: 15px; border-radius: 5px; margin: 15px 0; border-left: 4px solid #0066cc; }
        .footer { text-align: center; color: #666; font-size: 12px; margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; }
    </style>
</head>
<body>
    <div class="header">
        <h1 style="margin: 0;">` + kindTitle(report.Kind) + ` Asset Report</h1>
    </div>
    <div class="content">
        <p>Hello,</p>
        <p>Your asset report for <strong>` + report.PeriodStart + `</strong> to <strong>` + report.PeriodEnd + `</strong> is ready.</p>`)

	if report.Summary != "" {
		b.WriteString(`
        <div class="summary-box">
            <h3 style="margin-top: 0; color: #0066cc;">Summary</h3>
            <p>` + html.EscapeString(report.Summary) + `</p>
        </div>`)
	}

	b.WriteString(`
        <p>The complete report is attached as a PDF document.</p>
    </div>
    <div class="footer">
        <p>This is an automated email. Please do not reply.</p>
    </div>
</body>
</html>`)

	return b.String()
}

// buildReportEmailText builds the plain text content for the report email
func buildReportEmailText(report *models.Report) string {
	var b bytes.Buffer

	fmt.Fprintf(&b, "%s Asset Report\n\nHello,\n\nYour asset report for %s to %s is ready.\n\n",
		kindTitle(report.Kind), report.PeriodStart, report.PeriodEnd)
	if report.Summary != "" {
		fmt.Fprintf(&b, "Summary:\n%s\n\n", report.Summary)
	}
	b.WriteString("The complete report is attached as a PDF document.\n\n---\nThis is an automated email. Please do not reply.")

	return b.String()
}
