package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Fixed asset status values as stored by the bookkeeping application
const (
	FixedStatusInUse    = "in_use"
	FixedStatusIdle     = "idle"
	FixedStatusDisposed = "disposed"
)

// Virtual asset status values
const (
	VirtualStatusActive    = "active"
	VirtualStatusExpired   = "expired"
	VirtualStatusCancelled = "cancelled"
)

// FixedAssetRecord is one physical asset row from the asset store
type FixedAssetRecord struct {
	ID            string
	Name          string
	Category      string
	PurchasePrice decimal.Decimal
	CurrentValue  decimal.Decimal
	PurchaseDate  time.Time
	Status        string
}

// VirtualAssetRecord is one subscription, membership or digital good
type VirtualAssetRecord struct {
	ID            string
	Name          string
	Category      string
	Cost          decimal.Decimal
	StartDate     time.Time
	ExpiryDate    *time.Time // nil means no expiry
	Status        string
	UsageCount    int // Recorded uses inside the window
	ExpectedUsage int // Uses the owner planned for the window
}

// IncomeRecord is income attributed to an asset
type IncomeRecord struct {
	ID        string
	AssetID   string
	AssetKind string // "fixed" or "virtual"
	Amount    decimal.Decimal
	Date      time.Time
	Source    string
}

// CategoryStat is one row of a categorical breakdown
type CategoryStat struct {
	Category string          `json:"category"`
	Count    int             `json:"count"`
	Value    decimal.Decimal `json:"value"`
}

// FixedAssetSnapshot aggregates a user's fixed assets over a window
type FixedAssetSnapshot struct {
	TotalCount         int             `json:"totalCount"`
	InUseCount         int             `json:"inUseCount"`
	IdleCount          int             `json:"idleCount"`
	DisposedCount      int             `json:"disposedCount"`
	TotalPurchaseValue decimal.Decimal `json:"totalPurchaseValue"`
	TotalCurrentValue  decimal.Decimal `json:"totalCurrentValue"`
	TotalDepreciation  decimal.Decimal `json:"totalDepreciation"`
	TotalIncome        decimal.Decimal `json:"totalIncome"`
	DepreciationRate   float64         `json:"depreciationRate"` // Percent of purchase value lost
	IncomeReturnRate   float64         `json:"incomeReturnRate"` // Income as percent of purchase value
	UsageRate          float64         `json:"usageRate"`        // In-use share of non-disposed assets, percent
	HealthScore        float64         `json:"healthScore"`
	Categories         []CategoryStat  `json:"categories"`
}

// IsEmpty reports whether the window had no fixed-asset activity at all
func (s *FixedAssetSnapshot) IsEmpty() bool {
	return s == nil || (s.TotalCount == 0 && s.TotalIncome.IsZero())
}

// VirtualAssetSnapshot aggregates a user's virtual assets over a window
type VirtualAssetSnapshot struct {
	TotalCount        int             `json:"totalCount"`
	ActiveCount       int             `json:"activeCount"`
	ExpiredCount      int             `json:"expiredCount"`
	ExpiringSoonCount int             `json:"expiringSoonCount"`
	WastedCount       int             `json:"wastedCount"`
	TotalCost         decimal.Decimal `json:"totalCost"`
	ActiveCost        decimal.Decimal `json:"activeCost"`
	WastedCost        decimal.Decimal `json:"wastedCost"`
	TotalIncome       decimal.Decimal `json:"totalIncome"`
	UtilizationRate   float64         `json:"utilizationRate"` // Mean usage/expected of active assets, percent
	WasteRate         float64         `json:"wasteRate"`       // Share of active assets barely used, percent
	EfficiencyScore   float64         `json:"efficiencyScore"`
	Categories        []CategoryStat  `json:"categories"`
}

// IsEmpty reports whether the window had no virtual-asset activity at all
func (s *VirtualAssetSnapshot) IsEmpty() bool {
	return s == nil || (s.TotalCount == 0 && s.TotalIncome.IsZero())
}
