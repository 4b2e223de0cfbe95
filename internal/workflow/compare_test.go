package workflow

import (
	"testing"

	"asset-report/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrowthRate(t *testing.T) {
	rate := GrowthRate(money("110"), money("100"))
	require.NotNil(t, rate)
	assert.InDelta(t, 10, *rate, 0.001)

	rate = GrowthRate(money("50"), money("200"))
	require.NotNil(t, rate)
	assert.InDelta(t, -75, *rate, 0.001)

	assert.Nil(t, GrowthRate(money("10"), money("0")))
}

func TestTrendOf(t *testing.T) {
	small := 0.5
	up := 4.0
	down := -1.5

	assert.Equal(t, models.TrendFlat, TrendOf(money("100.5"), money("100"), &small, 1))
	assert.Equal(t, models.TrendUp, TrendOf(money("104"), money("100"), &up, 1))
	assert.Equal(t, models.TrendDown, TrendOf(money("98.5"), money("100"), &down, 1))
	assert.Equal(t, models.TrendFlat, TrendOf(money("104"), money("100"), &up, 5))
	assert.Equal(t, models.TrendUp, TrendOf(money("1"), money("0"), nil, 1))
	assert.Equal(t, models.TrendFlat, TrendOf(money("0"), money("0"), nil, 1))
}

func TestCompareUsesScoreDeltas(t *testing.T) {
	fixed := &models.FixedAssetSnapshot{TotalPurchaseValue: money("900"), HealthScore: 70, TotalIncome: money("10")}
	prevFixed := &models.FixedAssetSnapshot{TotalPurchaseValue: money("1000"), HealthScore: 75.5}
	virtual := &models.VirtualAssetSnapshot{ActiveCost: money("30"), EfficiencyScore: 80, TotalIncome: money("10")}
	prevVirtual := &models.VirtualAssetSnapshot{ActiveCost: money("30"), EfficiencyScore: 60, TotalIncome: money("40")}

	prior, err := models.NewWindow("2026-02-01", "2026-02-28")
	require.NoError(t, err)

	cmp := Compare(fixed, virtual, prevFixed, prevVirtual, prior, 1)
	assert.Equal(t, prior, cmp.PriorWindow)
	assert.InDelta(t, -10, *cmp.Fixed.GrowthRate, 0.001)
	assert.Equal(t, models.TrendDown, cmp.Fixed.Trend)
	assert.InDelta(t, -5.5, cmp.Fixed.ScoreDelta, 0.001)
	assert.InDelta(t, 0, *cmp.Virtual.GrowthRate, 0.001)
	assert.Equal(t, models.TrendFlat, cmp.Virtual.Trend)
	assert.InDelta(t, 20, cmp.Virtual.ScoreDelta, 0.001)
	assert.InDelta(t, -50, *cmp.Income.GrowthRate, 0.001)
	assert.Equal(t, models.TrendDown, cmp.Income.Trend)
}

func TestCompareFixedIgnoresCurrentValue(t *testing.T) {
	// Same holdings in both windows; only the current value differs
	fixed := &models.FixedAssetSnapshot{TotalPurchaseValue: money("1000"), TotalCurrentValue: money("700")}
	prevFixed := &models.FixedAssetSnapshot{TotalPurchaseValue: money("1000"), TotalCurrentValue: money("1000")}
	virtual := &models.VirtualAssetSnapshot{}

	prior, err := models.NewWindow("2026-02-01", "2026-02-28")
	require.NoError(t, err)

	cmp := Compare(fixed, virtual, prevFixed, virtual, prior, 1)
	require.NotNil(t, cmp.Fixed.GrowthRate)
	assert.InDelta(t, 0, *cmp.Fixed.GrowthRate, 0.001)
	assert.Equal(t, models.TrendFlat, cmp.Fixed.Trend)
	assert.True(t, cmp.Fixed.Current.Equal(money("1000")))
}
