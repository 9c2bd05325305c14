// Package domain contains the core data model shared by every engine module.
// The domain layer is pure: no infrastructure dependencies, no I/O.
package domain

import "time"

// AssetType distinguishes tradable holdings from illiquid ones (real estate,
// private loans). Illiquid assets are excluded from drift-driven trading.
type AssetType string

const (
	// AssetTypeLiquid marks holdings that can be traded to rebalance.
	AssetTypeLiquid AssetType = "LIQUID"
	// AssetTypeIlliquid marks holdings that cannot (real estate, deposits with lockup).
	AssetTypeIlliquid AssetType = "ILLIQUID"
)

// AssetCategory is the closed set of categories every asset maps into.
type AssetCategory string

const (
	CategoryCash       AssetCategory = "cash"
	CategoryBond       AssetCategory = "bond"
	CategoryLargeCap   AssetCategory = "large_cap"
	CategoryRealEstate AssetCategory = "realestate"
	CategoryBitcoin    AssetCategory = "bitcoin"
	CategoryAltcoin    AssetCategory = "altcoin"
	CategoryGold       AssetCategory = "gold"
	CategoryCommodity  AssetCategory = "commodity"
)

// AllCategories lists every category in canonical order.
// Used to iterate deterministically over category maps.
var AllCategories = []AssetCategory{
	CategoryCash,
	CategoryBond,
	CategoryLargeCap,
	CategoryRealEstate,
	CategoryBitcoin,
	CategoryAltcoin,
	CategoryGold,
	CategoryCommodity,
}

// Valid reports whether c is one of the enumerated categories.
func (c AssetCategory) Valid() bool {
	for _, cat := range AllCategories {
		if c == cat {
			return true
		}
	}
	return false
}

// TradeAction is the action emitted per category by the drift calculator.
type TradeAction string

const (
	ActionBuy  TradeAction = "BUY"
	ActionSell TradeAction = "SELL"
	ActionHold TradeAction = "HOLD"
)

// Asset is a single holding as supplied by the caller. The engine only
// reads assets; it never mutates them. Optional fields are pointers so
// "not provided" is distinguishable from zero.
type Asset struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Ticker           string     `json:"ticker,omitempty"`
	CurrentValue     float64    `json:"current_value"`
	Quantity         *float64   `json:"quantity,omitempty"`
	AvgPrice         *float64   `json:"avg_price,omitempty"`
	CurrentPrice     *float64   `json:"current_price,omitempty"`
	CostBasis        *float64   `json:"cost_basis,omitempty"`
	PurchaseDate     *time.Time `json:"purchase_date,omitempty"`
	TargetAllocation float64    `json:"target_allocation"`
	AssetType        AssetType  `json:"asset_type"`
	DebtAmount       *float64   `json:"debt_amount,omitempty"`
	CustomTaxRate    *float64   `json:"custom_tax_rate,omitempty"`
}

// UnrealizedReturn returns the fractional gain or loss implied by the
// average purchase price and current price, and whether both were provided.
func (a Asset) UnrealizedReturn() (float64, bool) {
	if a.AvgPrice == nil || a.CurrentPrice == nil || *a.AvgPrice <= 0 {
		return 0, false
	}
	return (*a.CurrentPrice - *a.AvgPrice) / *a.AvgPrice, true
}

// TargetAllocations maps categories to target weights in percent.
// Weights are percentage points (0-100), not fractions.
type TargetAllocations map[AssetCategory]float64
