package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"asset-report/internal/models"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryAssets struct {
	fixed   []models.FixedAssetRecord
	virtual []models.VirtualAssetRecord
	income  []models.IncomeRecord
	err     error
}

func (m *memoryAssets) QueryFixedAssets(ctx context.Context, userID string, window models.Window) ([]models.FixedAssetRecord, error) {
	return m.fixed, m.err
}

func (m *memoryAssets) QueryVirtualAssets(ctx context.Context, userID string, window models.Window) ([]models.VirtualAssetRecord, error) {
	return m.virtual, nil
}

func (m *memoryAssets) QueryIncome(ctx context.Context, userID string, window models.Window) ([]models.IncomeRecord, error) {
	return m.income, nil
}

func TestPrintAssetData(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	window, err := models.NewWindow("2026-02-01", "2026-02-28")
	require.NoError(t, err)

	store := &memoryAssets{}
	for i := 0; i < 12; i++ {
		store.fixed = append(store.fixed, models.FixedAssetRecord{
			ID:            fmt.Sprintf("f%d", i),
			Name:          fmt.Sprintf("Laptop %d", i),
			Category:      "electronics",
			PurchasePrice: decimal.NewFromInt(1000),
			CurrentValue:  decimal.NewFromInt(800),
			PurchaseDate:  time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			Status:        models.FixedStatusInUse,
		})
	}
	store.virtual = []models.VirtualAssetRecord{{
		ID: "v1", Name: "Gym", Category: "membership", Cost: decimal.NewFromInt(40),
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Status: models.VirtualStatusActive,
		UsageCount: 1, ExpectedUsage: 8,
	}}

	var out bytes.Buffer
	require.NoError(t, printAssetData(context.Background(), &out, store, "u1", window))

	text := out.String()
	assert.Contains(t, text, "=== Asset data for u1 over 2026-02-01..2026-02-28 ===")
	assert.Contains(t, text, "Found 12 records")
	assert.Contains(t, text, "[10] Laptop 9")
	assert.NotContains(t, text, "[11]")
	assert.Contains(t, text, "... and 2 more records")
	assert.Contains(t, text, "Gym (membership) cost 40.00, no expiry, active, used 1/8")
	assert.Contains(t, text, "Fixed: 12 assets, value 9600.00")
	assert.NotContains(t, text, "WARNING")
}

func TestPrintAssetDataEmptyAndErrors(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	window, err := models.NewWindow("2026-02-01", "2026-02-28")
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, printAssetData(context.Background(), &out, &memoryAssets{}, "nobody", window))
	assert.Contains(t, out.String(), "WARNING: No data found")

	err = printAssetData(context.Background(), &bytes.Buffer{}, &memoryAssets{err: errors.New("db down")}, "u1", window)
	assert.ErrorContains(t, err, "query fixed assets: db down")
}

type memoryReportList struct {
	reports []models.Report
	limit   int64
}

func (m *memoryReportList) ListReports(ctx context.Context, userID string, limit int64) ([]models.Report, error) {
	m.limit = limit
	return m.reports, nil
}

func TestPrintReports(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	msg := "quality 55.00 below threshold 70.00 after 2 retries"
	lister := &memoryReportList{reports: []models.Report{
		{ID: "r1", Kind: models.ReportKindWeekly, PeriodStart: "2026-03-02", PeriodEnd: "2026-03-08", Status: models.ReportStatusCompleted,
			WorkflowMetadata: models.WorkflowMetadata{QualityScore: &models.QualityScore{Total: 84.5}}},
		{ID: "r2", Kind: models.ReportKindMonthly, PeriodStart: "2026-02-01", PeriodEnd: "2026-02-28", Status: models.ReportStatusFailed, ErrorMessage: &msg},
	}}

	var out bytes.Buffer
	require.NoError(t, printReports(context.Background(), &out, lister, "u1", 5))
	assert.Equal(t, int64(5), lister.limit)
	assert.Contains(t, out.String(), "r1  weekly   2026-03-02..2026-03-08  completed  quality 84.50")
	assert.Contains(t, out.String(), msg)

	out.Reset()
	require.NoError(t, printReports(context.Background(), &out, &memoryReportList{}, "u2", 5))
	assert.Equal(t, "No reports found for user u2\n", out.String())
}
