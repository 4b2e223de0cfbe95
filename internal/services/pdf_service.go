package services

import (
	"bytes"
	"fmt"
	"strings"

	"asset-report/internal/models"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// Page geometry in mm (A4 portrait, 15mm side margins)
const (
	pdfLeft       = 15.0
	pdfTextWidth  = 180.0
	pdfLineHeight = 5.0
)

// PDFService renders completed reports as PDF documents
type PDFService struct {
	markdown goldmark.Markdown
}

// NewPDFService creates a new PDF service
func NewPDFService() *PDFService {
	return &PDFService{
		markdown: goldmark.New(goldmark.WithExtensions(extension.Table)),
	}
}

// GenerateReportPDF lays out the report's Markdown content
func (s *PDFService) GenerateReportPDF(report *models.Report) ([]byte, error) {
	if report == nil || strings.TrimSpace(report.Content) == "" {
		return nil, fmt.Errorf("invalid report data")
	}

	// Create PDF document (A4, portrait)
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfLeft, 20, pdfLeft)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("{nb}")
	tr := pdf.UnicodeTranslatorFromDescriptor("") // Core fonts are cp1252

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "", 9)
		pdf.SetTextColor(108, 117, 125) // Gray
		pdf.SetX(pdfLeft)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	source := []byte(report.Content)
	doc := s.markdown.Parser().Parse(text.NewReader(source))
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			title := tr(inlineText(node, source))
			switch node.Level {
			case 1:
				s.addTitle(pdf, title, report)
			case 2:
				s.addHeader(pdf, title)
			default:
				s.addSubheader(pdf, title)
			}
		case *ast.Paragraph:
			s.addParagraph(pdf, tr(inlineText(node, source)))
		case *ast.List:
			s.addList(pdf, node, source, tr)
		case *east.Table:
			s.addTable(pdf, tableRows(node, source), tr)
		case *ast.ThematicBreak:
			pdf.Ln(4)
		}
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to lay out PDF: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *PDFService) addTitle(pdf *gofpdf.Fpdf, title string, report *models.Report) {
	pdf.SetFont("Arial", "B", 22)
	pdf.SetTextColor(0, 102, 204) // Blue
	pdf.CellFormat(0, 14, title, "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.SetTextColor(108, 117, 125) // Gray
	subtitle := fmt.Sprintf("%s to %s", report.PeriodStart, report.PeriodEnd)
	if report.GeneratedAt != nil {
		subtitle += fmt.Sprintf(" | Generated: %s", report.GeneratedAt.Format("2006-01-02"))
	}
	pdf.CellFormat(0, 8, subtitle, "", 1, "C", false, 0, "")
	pdf.Ln(4)
}

// addHeader adds a section header with a rule underneath
func (s *PDFService) addHeader(pdf *gofpdf.Fpdf, title string) {
	// Keep headers off the bottom of a page
	if pdf.GetY() > 250 {
		pdf.AddPage()
	}
	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 15)
	pdf.SetTextColor(33, 37, 41) // Dark gray
	pdf.CellFormat(0, 9, title, "", 1, "L", false, 0, "")

	pdf.SetLineWidth(0.5)
	pdf.SetDrawColor(0, 102, 204) // Blue
	pdf.Line(pdfLeft, pdf.GetY(), pdfLeft+pdfTextWidth, pdf.GetY())
	pdf.Ln(4)
}

func (s *PDFService) addSubheader(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 11)
	pdf.SetTextColor(33, 37, 41)
	pdf.CellFormat(0, 7, title, "", 1, "L", false, 0, "")
}

func (s *PDFService) addParagraph(pdf *gofpdf.Fpdf, body string) {
	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(33, 37, 41)
	pdf.MultiCell(pdfTextWidth, pdfLineHeight, body, "", "L", false)
	pdf.Ln(2)
}

func (s *PDFService) addList(pdf *gofpdf.Fpdf, list *ast.List, source []byte, tr func(string) string) {
	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(33, 37, 41)

	number := list.Start
	if number == 0 {
		number = 1
	}
	indent := 6.0
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		marker := "-"
		if list.IsOrdered() {
			marker = fmt.Sprintf("%d.", number)
			number++
		}
		pdf.SetX(pdfLeft)
		pdf.CellFormat(indent, pdfLineHeight, marker, "", 0, "L", false, 0, "")
		pdf.MultiCell(pdfTextWidth-indent, pdfLineHeight, tr(inlineText(item, source)), "", "L", false)
	}
	pdf.Ln(2)
}

// addTable draws a bordered table with a blue header row and equal column widths
func (s *PDFService) addTable(pdf *gofpdf.Fpdf, rows [][]string, tr func(string) string) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return
	}
	colWidth := pdfTextWidth / float64(len(rows[0]))
	rowHeight := 7.0

	pdf.SetDrawColor(222, 226, 230)
	pdf.SetLineWidth(0.2)
	for i, row := range rows {
		if i == 0 {
			pdf.SetFillColor(0, 102, 204)   // Blue background
			pdf.SetTextColor(255, 255, 255) // White text
			pdf.SetFont("Arial", "B", 9)
		} else {
			// Alternate row colors
			if i%2 == 1 {
				pdf.SetFillColor(255, 255, 255)
			} else {
				pdf.SetFillColor(248, 249, 250)
			}
			pdf.SetTextColor(33, 37, 41)
			pdf.SetFont("Arial", "", 9)
		}

		pdf.SetX(pdfLeft)
		for j := range rows[0] {
			cell := ""
			if j < len(row) {
				cell = tr(row[j])
			}
			align := "L"
			if j > 0 {
				align = "R"
			}
			pdf.CellFormat(colWidth, rowHeight, cell, "1", 0, align, true, 0, "")
		}
		pdf.Ln(rowHeight)
	}
	pdf.Ln(4)
}

// inlineText flattens the literal text under n. Soft line breaks become spaces.
func inlineText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(buf.String())
}

// tableRows returns the header row followed by the body rows
func tableRows(table *east.Table, source []byte) [][]string {
	var rows [][]string
	for r := table.FirstChild(); r != nil; r = r.NextSibling() {
		var row []string
		for c := r.FirstChild(); c != nil; c = c.NextSibling() {
			row = append(row, inlineText(c, source))
		}
		rows = append(rows, row)
	}
	return rows
}
