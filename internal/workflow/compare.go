package workflow

import (
	"context"

	"asset-report/internal/models"
	"asset-report/internal/utils"

	"github.com/shopspring/decimal"
)

func (e *Engine) compare(ctx context.Context, st *State) StageOutcome {
	prior := st.Task.Window.Prior()

	sctx, cancel := e.storeContext(ctx)
	defer cancel()

	prevFixed, err := CollectFixed(sctx, e.store, st.Task.UserID, prior)
	if err != nil {
		return failed(newStageError(CollectionError, StageCompare, err))
	}
	prevVirtual, err := CollectVirtual(sctx, e.store, st.Task.UserID, prior)
	if err != nil {
		return failed(newStageError(CollectionError, StageCompare, err))
	}

	if prevFixed.IsEmpty() && prevVirtual.IsEmpty() {
		return skipped(nil, "no data for prior window %s", prior)
	}

	st.Comparison = Compare(st.Fixed, st.Virtual, prevFixed, prevVirtual, prior, e.cfg.TrendDeadZone)
	return completed("fixed %s, virtual %s versus %s", st.Comparison.Fixed.Trend, st.Comparison.Virtual.Trend, prior)
}

// Compare builds the period-over-period view. Fixed assets are compared on
// purchase value, virtual assets on active spend, income on the combined total.
// The asset store keeps only today's current value, so a prior window sees
// the same depreciation as the current one and current value would only move
// with acquisitions and disposals while reading as a valuation trend.
func Compare(
	fixed *models.FixedAssetSnapshot,
	virtual *models.VirtualAssetSnapshot,
	prevFixed *models.FixedAssetSnapshot,
	prevVirtual *models.VirtualAssetSnapshot,
	prior models.Window,
	deadZone float64,
) *models.ComparisonAnalysis {
	return &models.ComparisonAnalysis{
		PriorWindow: prior,
		Fixed: compareClass(fixed.TotalPurchaseValue, prevFixed.TotalPurchaseValue, deadZone,
			fixed.HealthScore-prevFixed.HealthScore),
		Virtual: compareClass(virtual.ActiveCost, prevVirtual.ActiveCost, deadZone,
			virtual.EfficiencyScore-prevVirtual.EfficiencyScore),
		Income: compareClass(fixed.TotalIncome.Add(virtual.TotalIncome),
			prevFixed.TotalIncome.Add(prevVirtual.TotalIncome), deadZone, 0),
	}
}

func compareClass(current, previous decimal.Decimal, deadZone, scoreDelta float64) models.ClassComparison {
	growth := GrowthRate(current, previous)
	return models.ClassComparison{
		Current:    current,
		Previous:   previous,
		GrowthRate: growth,
		Trend:      TrendOf(current, previous, growth, deadZone),
		ScoreDelta: utils.Round2(scoreDelta),
	}
}

// GrowthRate is (current-previous)/previous*100, or nil when previous is zero
func GrowthRate(current, previous decimal.Decimal) *float64 {
	if previous.IsZero() {
		return nil
	}
	rate := current.Sub(previous).Div(previous.Abs()).Mul(hundred).Round(2).InexactFloat64()
	return &rate
}

// TrendOf labels a change, treating |growth| <= deadZone percent as flat.
// Without a growth rate the sign of the change decides.
func TrendOf(current, previous decimal.Decimal, growth *float64, deadZone float64) models.Trend {
	if growth == nil {
		switch current.Cmp(previous) {
		case 1:
			return models.TrendUp
		case -1:
			return models.TrendDown
		default:
			return models.TrendFlat
		}
	}
	switch {
	case *growth > deadZone:
		return models.TrendUp
	case *growth < -deadZone:
		return models.TrendDown
	default:
		return models.TrendFlat
	}
}
