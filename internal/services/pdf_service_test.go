package services

import (
	"bytes"
	"testing"
	"time"

	"asset-report/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

const sampleContent = `# Weekly Asset Report

**Period:** 2026-03-02 to 2026-03-08 | **Overall score:** 72.0 (good) | **Rating:** B+

## Executive Summary

Your assets held their value this week…

## Period Comparison

| Metric | Previous | Current | Change | Trend |
| --- | --- | --- | --- | --- |
| Fixed asset book value | 2760.00 | 2300.00 | -16.67% | down |

## Action Plan

1. Sell the bike
2. Cancel the gym
`

func TestGenerateReportPDF(t *testing.T) {
	generated := time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)
	report := &models.Report{
		ID:          "r1",
		PeriodStart: "2026-03-02",
		PeriodEnd:   "2026-03-08",
		Status:      models.ReportStatusCompleted,
		Content:     sampleContent,
		GeneratedAt: &generated,
	}

	data, err := NewPDFService().GenerateReportPDF(report)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestGenerateReportPDFRejectsEmptyContent(t *testing.T) {
	svc := NewPDFService()
	_, err := svc.GenerateReportPDF(nil)
	assert.Error(t, err)
	_, err = svc.GenerateReportPDF(&models.Report{Content: "  "})
	assert.Error(t, err)
}

func TestTableRows(t *testing.T) {
	svc := NewPDFService()
	source := []byte(sampleContent)
	doc := svc.markdown.Parser().Parse(text.NewReader(source))

	var table *east.Table
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if tbl, ok := n.(*east.Table); ok {
			table = tbl
		}
	}
	require.NotNil(t, table)

	rows := tableRows(table, source)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Metric", "Previous", "Current", "Change", "Trend"}, rows[0])
	assert.Equal(t, []string{"Fixed asset book value", "2760.00", "2300.00", "-16.67%", "down"}, rows[1])
}
