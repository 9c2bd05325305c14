package tax

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/jimmyjeon420-png/baln-sub000/internal/domain"
)

// Settings selects the jurisdiction and optional per-call overrides for an
// impact calculation.
type Settings struct {
	CountryCode  string   `json:"country_code"`
	RateOverride *float64 `json:"rate_override,omitempty"`
	FeeOverride  *float64 `json:"fee_override,omitempty"`
}

// Impact is the estimated cost of selling part of one holding.
type Impact struct {
	SellAmount        float64 `json:"sell_amount"`
	ProportionalBasis float64 `json:"proportional_basis"`
	Gain              float64 `json:"gain"`
	TaxRate           float64 `json:"tax_rate"`
	TaxAmount         float64 `json:"tax_amount"`
	FeeAmount         float64 `json:"fee_amount"`
	NetProceeds       float64 `json:"net_proceeds"`
	NetBenefit        float64 `json:"net_benefit"`
	HoldingPeriodDays int     `json:"holding_period_days,omitempty"`
	Currency          string  `json:"currency"`
}

// Calculator estimates tax impacts against an injected country table.
type Calculator struct {
	profiles map[string]CountryTaxProfile
	log      zerolog.Logger
}

// NewCalculator creates a tax calculator over the given profile table.
func NewCalculator(profiles []CountryTaxProfile, log zerolog.Logger) *Calculator {
	byCode := make(map[string]CountryTaxProfile, len(profiles))
	for _, p := range profiles {
		byCode[p.Code] = p
	}
	return &Calculator{
		profiles: byCode,
		log:      log.With().Str("service", "tax").Logger(),
	}
}

// NewDefaultCalculator creates a calculator over the built-in table.
func NewDefaultCalculator(log zerolog.Logger) *Calculator {
	return NewCalculator(DefaultCountryProfiles(), log)
}

// Profile returns the profile for a country code.
func (c *Calculator) Profile(code string) (CountryTaxProfile, bool) {
	p, ok := c.profiles[code]
	return p, ok
}

// Impact estimates the cost of selling sellAmount out of one holding.
//
// Cost basis is allocated proportionally: sellAmount / currentValue *
// costBasis. Losses are never taxed. The effective rate resolves as:
// per-asset override, then per-call override, then the country default.
//
// An unknown country code is a programmer error and returns an error.
// Every numeric edge case (missing cost basis, zero sell amount, zero
// current value) resolves to a zeroed result with net proceeds equal to
// the sell amount.
func (c *Calculator) Impact(asset domain.Asset, sellAmount float64, settings Settings) (Impact, error) {
	profile, ok := c.profiles[settings.CountryCode]
	if !ok {
		return Impact{}, fmt.Errorf("unknown country code %q", settings.CountryCode)
	}

	result := Impact{
		SellAmount:  sellAmount,
		NetProceeds: sellAmount,
		Currency:    profile.Currency,
	}
	if asset.PurchaseDate != nil {
		days := int(time.Since(*asset.PurchaseDate).Hours() / 24)
		if days > 0 {
			result.HoldingPeriodDays = days
		}
	}

	if sellAmount <= 0 || asset.CostBasis == nil || asset.CurrentValue <= 0 {
		return result, nil
	}

	rate := profile.CapitalGainsTaxRate
	if settings.RateOverride != nil {
		rate = *settings.RateOverride
	}
	if asset.CustomTaxRate != nil {
		rate = *asset.CustomTaxRate
	}
	feeRate := profile.TradeFeePercent
	if settings.FeeOverride != nil {
		feeRate = *settings.FeeOverride
	}

	proportionalBasis := sellAmount / asset.CurrentValue * *asset.CostBasis
	gain := sellAmount - proportionalBasis
	taxAmount := math.Max(0, gain) * rate
	feeAmount := sellAmount * feeRate
	netProceeds := sellAmount - taxAmount - feeAmount

	result.ProportionalBasis = proportionalBasis
	result.Gain = gain
	result.TaxRate = rate
	result.TaxAmount = taxAmount
	result.FeeAmount = feeAmount
	result.NetProceeds = netProceeds
	result.NetBenefit = netProceeds - proportionalBasis

	return result, nil
}
