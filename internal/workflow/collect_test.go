package workflow

import (
	"context"
	"errors"
	"testing"

	"asset-report/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectFixed(t *testing.T) {
	store := newFakeStore()
	seedCurrentWindow(store)

	snap, err := CollectFixed(context.Background(), store, "user-1", testWindow(t))
	require.NoError(t, err)

	assert.Equal(t, 3, snap.TotalCount)
	assert.Equal(t, 1, snap.InUseCount)
	assert.Equal(t, 1, snap.IdleCount)
	assert.Equal(t, 1, snap.DisposedCount)
	assert.True(t, snap.TotalPurchaseValue.Equal(money("2300")))
	assert.True(t, snap.TotalCurrentValue.Equal(money("1700")))
	assert.True(t, snap.TotalDepreciation.Equal(money("600")))
	assert.True(t, snap.TotalIncome.Equal(money("120")))
	assert.InDelta(t, 26.09, snap.DepreciationRate, 0.001)
	assert.InDelta(t, 5.22, snap.IncomeReturnRate, 0.001)
	assert.InDelta(t, 50, snap.UsageRate, 0.001)
	// 100 - 26.09 + 5.22/2 + 0
	assert.InDelta(t, 76.52, snap.HealthScore, 0.001)

	require.Len(t, snap.Categories, 2)
	assert.Equal(t, "electronics", snap.Categories[0].Category)
	assert.True(t, snap.Categories[0].Value.Equal(money("1200")))
	assert.Equal(t, "vehicle", snap.Categories[1].Category)
}

func TestCollectVirtual(t *testing.T) {
	store := newFakeStore()
	seedCurrentWindow(store)

	snap, err := CollectVirtual(context.Background(), store, "user-1", testWindow(t))
	require.NoError(t, err)

	assert.Equal(t, 3, snap.TotalCount)
	assert.Equal(t, 2, snap.ActiveCount)
	assert.Equal(t, 1, snap.ExpiredCount)
	assert.Equal(t, 1, snap.ExpiringSoonCount)
	assert.Equal(t, 1, snap.WastedCount)
	assert.True(t, snap.TotalCost.Equal(money("60")))
	assert.True(t, snap.ActiveCost.Equal(money("55")))
	assert.True(t, snap.WastedCost.Equal(money("40")))
	assert.True(t, snap.TotalIncome.IsZero())
	// (1 + 1/12) / 2
	assert.InDelta(t, 54.17, snap.UtilizationRate, 0.001)
	assert.InDelta(t, 50, snap.WasteRate, 0.001)
	assert.Equal(t, 0.0, snap.EfficiencyScore)
	require.Len(t, snap.Categories, 3)
	assert.Equal(t, "health", snap.Categories[0].Category)
}

func TestCollectEmptyWindow(t *testing.T) {
	store := newFakeStore()

	fixed, err := CollectFixed(context.Background(), store, "user-1", testWindow(t))
	require.NoError(t, err)
	assert.True(t, fixed.IsEmpty())
	assert.Equal(t, 0.0, fixed.HealthScore)
	assert.Equal(t, 0.0, fixed.DepreciationRate)

	virtual, err := CollectVirtual(context.Background(), store, "user-1", testWindow(t))
	require.NoError(t, err)
	assert.True(t, virtual.IsEmpty())
	assert.Equal(t, 0.0, virtual.EfficiencyScore)
}

func TestCollectPropagatesStoreErrors(t *testing.T) {
	store := newFakeStore()
	store.fixedErr["2026-03-02"] = errors.New("boom")
	store.virtualErr["2026-03-02"] = errors.New("boom")

	_, err := CollectFixed(context.Background(), store, "user-1", testWindow(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to query fixed assets")

	_, err = CollectVirtual(context.Background(), store, "user-1", testWindow(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to query virtual assets")
}

func TestFixedHealthScoreBounds(t *testing.T) {
	tests := []struct {
		name string
		snap models.FixedAssetSnapshot
		want float64
	}{
		{
			name: "brand new, fully used, earning",
			snap: models.FixedAssetSnapshot{InUseCount: 2, DepreciationRate: 0, IncomeReturnRate: 40, UsageRate: 100},
			want: 100,
		},
		{
			name: "depreciation penalty capped at 60",
			snap: models.FixedAssetSnapshot{InUseCount: 1, IdleCount: 1, DepreciationRate: 95, UsageRate: 50},
			want: 40,
		},
		{
			name: "all idle",
			snap: models.FixedAssetSnapshot{IdleCount: 3, DepreciationRate: 20, UsageRate: 0},
			want: 70,
		},
		{
			name: "nothing held",
			snap: models.FixedAssetSnapshot{DisposedCount: 2},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, FixedHealthScore(&tt.snap), 0.001)
		})
	}
}

func TestVirtualEfficiencyScore(t *testing.T) {
	tests := []struct {
		name string
		snap models.VirtualAssetSnapshot
		want float64
	}{
		{"fully used", models.VirtualAssetSnapshot{ActiveCount: 2, UtilizationRate: 100}, 100},
		{"waste doubles", models.VirtualAssetSnapshot{ActiveCount: 4, UtilizationRate: 80, WasteRate: 10}, 60},
		{"expiry penalty capped", models.VirtualAssetSnapshot{ActiveCount: 9, UtilizationRate: 90, ExpiringSoonCount: 9}, 70},
		{"clamped at zero", models.VirtualAssetSnapshot{ActiveCount: 1, UtilizationRate: 10, WasteRate: 100}, 0},
		{"no active items", models.VirtualAssetSnapshot{TotalCount: 2}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, VirtualEfficiencyScore(&tt.snap), 0.001)
		})
	}
}
