package health

import (
	"fmt"
	"math"

	"github.com/jimmyjeon420-png/baln-sub000/internal/domain"
)

// Real estate bonus constants. The bonus rewards a moderate real estate
// share financed conservatively (low loan-to-value). It is added on top of
// the 6-factor total and can never push the total past 100.
const (
	// MaxRealEstateBonus caps the bonus.
	MaxRealEstateBonus = 10.0

	// Moderate share band: real estate between these fractions of total
	// net assets earns the share bonus.
	reShareBandLow  = 0.05
	reShareBandHigh = 0.35

	reShareBonus = 6.0 // bonus for a share inside the band

	// LTV tiers: debt / current value.
	reLTVConservative = 0.40
	reLTVModerate     = 0.60

	reLTVBonusConservative = 4.0
	reLTVBonusModerate     = 2.0
)

// RealEstateBonus is the result of the real estate diversification bonus.
type RealEstateBonus struct {
	Bonus  float64 `json:"bonus"`
	Reason string  `json:"reason"`
}

// RealEstateDiversificationBonus rewards a moderate real estate share with
// conservative leverage.
//
// Args:
//
//	realEstateAssets: holdings classified as real estate
//	totalNetAssets: total portfolio value including illiquid assets
//
// Returns:
//
//	Bonus in [0, MaxRealEstateBonus] with a human-readable reason.
func (e *Engine) RealEstateDiversificationBonus(realEstateAssets []domain.Asset, totalNetAssets float64) RealEstateBonus {
	if totalNetAssets <= 0 || len(realEstateAssets) == 0 {
		return RealEstateBonus{Reason: "No real estate holdings."}
	}

	totalValue := 0.0
	totalDebt := 0.0
	for _, asset := range realEstateAssets {
		totalValue += asset.CurrentValue
		if asset.DebtAmount != nil {
			totalDebt += *asset.DebtAmount
		}
	}
	if totalValue <= 0 {
		return RealEstateBonus{Reason: "Real estate holdings carry no value."}
	}

	share := totalValue / totalNetAssets
	ltv := totalDebt / totalValue

	bonus := 0.0
	if share >= reShareBandLow && share <= reShareBandHigh {
		bonus += reShareBonus
	}
	switch {
	case ltv < reLTVConservative:
		bonus += reLTVBonusConservative
	case ltv < reLTVModerate:
		bonus += reLTVBonusModerate
	}
	bonus = math.Min(MaxRealEstateBonus, bonus)

	reason := fmt.Sprintf("Real estate is %s of net assets at %s LTV.", pct(share*100), pct(ltv*100))
	switch {
	case share > reShareBandHigh:
		reason = fmt.Sprintf("Real estate share (%s) is too large to earn a diversification bonus.", pct(share*100))
	case share < reShareBandLow:
		reason = fmt.Sprintf("Real estate share (%s) is too small to move diversification.", pct(share*100))
	case ltv >= reLTVModerate:
		reason = fmt.Sprintf("Real estate LTV (%s) is high; the bonus is reduced.", pct(ltv*100))
	}

	return RealEstateBonus{Bonus: bonus, Reason: reason}
}
