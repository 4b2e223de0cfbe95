package workflow

import (
	"context"
	"fmt"
	"sort"
	"time"

	"asset-report/internal/models"
	"asset-report/internal/utils"

	"github.com/shopspring/decimal"
)

const (
	// expiringSoonDays is how far past the window end a subscription may expire
	// and still be flagged
	expiringSoonDays = 30
	// wasteUtilization is the per-item utilization below which an active
	// virtual asset counts as wasted
	wasteUtilization = 0.2
)

var hundred = decimal.NewFromInt(100)

// AssetStore is the read-only view of the bookkeeping data. Implementations
// return fixed assets owned by the end of the window, virtual assets whose
// term overlaps it, and income dated inside it.
type AssetStore interface {
	QueryFixedAssets(ctx context.Context, userID string, window models.Window) ([]models.FixedAssetRecord, error)
	QueryVirtualAssets(ctx context.Context, userID string, window models.Window) ([]models.VirtualAssetRecord, error)
	QueryIncome(ctx context.Context, userID string, window models.Window) ([]models.IncomeRecord, error)
}

// CollectFixed aggregates the user's fixed assets over window
func CollectFixed(ctx context.Context, store AssetStore, userID string, window models.Window) (*models.FixedAssetSnapshot, error) {
	records, err := store.QueryFixedAssets(ctx, userID, window)
	if err != nil {
		return nil, fmt.Errorf("failed to query fixed assets: %w", err)
	}
	income, err := store.QueryIncome(ctx, userID, window)
	if err != nil {
		return nil, fmt.Errorf("failed to query income: %w", err)
	}

	snap := &models.FixedAssetSnapshot{}
	categories := make(map[string]*models.CategoryStat)

	for _, r := range records {
		snap.TotalCount++
		switch r.Status {
		case models.FixedStatusDisposed:
			snap.DisposedCount++
			continue
		case models.FixedStatusInUse:
			snap.InUseCount++
		default:
			snap.IdleCount++
		}
		snap.TotalPurchaseValue = snap.TotalPurchaseValue.Add(r.PurchasePrice)
		snap.TotalCurrentValue = snap.TotalCurrentValue.Add(r.CurrentValue)
		addCategory(categories, r.Category, r.CurrentValue)
	}
	snap.TotalDepreciation = snap.TotalPurchaseValue.Sub(snap.TotalCurrentValue)
	snap.TotalIncome = sumIncome(income, "fixed")

	snap.DepreciationRate = percentOf(snap.TotalDepreciation, snap.TotalPurchaseValue)
	snap.IncomeReturnRate = percentOf(snap.TotalIncome, snap.TotalPurchaseValue)
	if held := snap.InUseCount + snap.IdleCount; held > 0 {
		snap.UsageRate = utils.Round2(float64(snap.InUseCount) / float64(held) * 100)
	}
	snap.HealthScore = FixedHealthScore(snap)
	snap.Categories = sortedCategories(categories)
	return snap, nil
}

// FixedHealthScore scores a fixed snapshot on 0..100. A snapshot holding no
// assets scores 0.
func FixedHealthScore(snap *models.FixedAssetSnapshot) float64 {
	if snap == nil || snap.InUseCount+snap.IdleCount == 0 {
		return 0
	}
	depreciationPenalty := minFloat(snap.DepreciationRate, 60)
	incomeBonus := minFloat(snap.IncomeReturnRate/2, 15)
	usageBonus := (snap.UsageRate - 50) * 0.2
	return utils.Round2(utils.Clamp(100-depreciationPenalty+incomeBonus+usageBonus, 0, 100))
}

// CollectVirtual aggregates the user's subscriptions and digital goods over window
func CollectVirtual(ctx context.Context, store AssetStore, userID string, window models.Window) (*models.VirtualAssetSnapshot, error) {
	records, err := store.QueryVirtualAssets(ctx, userID, window)
	if err != nil {
		return nil, fmt.Errorf("failed to query virtual assets: %w", err)
	}
	income, err := store.QueryIncome(ctx, userID, window)
	if err != nil {
		return nil, fmt.Errorf("failed to query income: %w", err)
	}

	snap := &models.VirtualAssetSnapshot{}
	categories := make(map[string]*models.CategoryStat)
	soonLimit := utils.StartOfDay(window.End).AddDate(0, 0, expiringSoonDays)
	var utilizationSum float64

	for _, r := range records {
		snap.TotalCount++
		snap.TotalCost = snap.TotalCost.Add(r.Cost)
		addCategory(categories, r.Category, r.Cost)

		if r.Status != models.VirtualStatusActive {
			if r.Status == models.VirtualStatusExpired {
				snap.ExpiredCount++
			}
			continue
		}

		snap.ActiveCount++
		snap.ActiveCost = snap.ActiveCost.Add(r.Cost)

		u := itemUtilization(r)
		utilizationSum += u
		if u < wasteUtilization {
			snap.WastedCount++
			snap.WastedCost = snap.WastedCost.Add(r.Cost)
		}
		if r.ExpiryDate != nil && expiresBetween(*r.ExpiryDate, window.End, soonLimit) {
			snap.ExpiringSoonCount++
		}
	}
	snap.TotalIncome = sumIncome(income, "virtual")

	if snap.ActiveCount > 0 {
		snap.UtilizationRate = utils.Round2(utilizationSum / float64(snap.ActiveCount) * 100)
		snap.WasteRate = utils.Round2(float64(snap.WastedCount) / float64(snap.ActiveCount) * 100)
	}
	snap.EfficiencyScore = VirtualEfficiencyScore(snap)
	snap.Categories = sortedCategories(categories)
	return snap, nil
}

// VirtualEfficiencyScore scores a virtual snapshot on 0..100. A snapshot
// without active items scores 0.
func VirtualEfficiencyScore(snap *models.VirtualAssetSnapshot) float64 {
	if snap == nil || snap.ActiveCount == 0 {
		return 0
	}
	expiryPenalty := minFloat(5*float64(snap.ExpiringSoonCount), 20)
	return utils.Round2(utils.Clamp(snap.UtilizationRate-2*snap.WasteRate-expiryPenalty, 0, 100))
}

// itemUtilization is usage over plan, capped at 1. Unplanned items count as
// fully used once touched.
func itemUtilization(r models.VirtualAssetRecord) float64 {
	if r.ExpectedUsage <= 0 {
		if r.UsageCount > 0 {
			return 1
		}
		return 0
	}
	return minFloat(float64(r.UsageCount)/float64(r.ExpectedUsage), 1)
}

func expiresBetween(expiry, from, to time.Time) bool {
	d := utils.StartOfDay(expiry)
	return !d.Before(utils.StartOfDay(from)) && !d.After(to)
}

func sumIncome(records []models.IncomeRecord, kind string) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		if r.AssetKind == kind {
			total = total.Add(r.Amount)
		}
	}
	return total
}

// percentOf returns part/whole*100 rounded to two places, 0 for an empty whole
func percentOf(part, whole decimal.Decimal) float64 {
	if whole.IsZero() {
		return 0
	}
	return part.Div(whole).Mul(hundred).Round(2).InexactFloat64()
}

func addCategory(categories map[string]*models.CategoryStat, name string, value decimal.Decimal) {
	if name == "" {
		name = "uncategorized"
	}
	stat, ok := categories[name]
	if !ok {
		stat = &models.CategoryStat{Category: name}
		categories[name] = stat
	}
	stat.Count++
	stat.Value = stat.Value.Add(value)
}

// sortedCategories orders by value, largest first, then by name
func sortedCategories(categories map[string]*models.CategoryStat) []models.CategoryStat {
	out := make([]models.CategoryStat, 0, len(categories))
	for _, stat := range categories {
		out = append(out, *stat)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Value.Cmp(out[j].Value); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
