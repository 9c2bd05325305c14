// Package drift compares current category weights against a target
// allocation and emits BUY/SELL/HOLD rebalancing actions.
package drift

import (
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/jimmyjeon420-png/baln-sub000/internal/domain"
	"github.com/jimmyjeon420-png/baln-sub000/internal/modules/classification"
)

// DefaultTolerancePP is the drift band, in percentage points, inside which
// a category is left alone (HOLD).
const DefaultTolerancePP = 0.5

// Item is the rebalancing action for one category.
type Item struct {
	Category     domain.AssetCategory `json:"category"`
	Action       domain.TradeAction   `json:"action"`
	CurrentValue float64              `json:"current_value"`
	TargetValue  float64              `json:"target_value"`
	CurrentPct   float64              `json:"current_pct"`
	TargetPct    float64              `json:"target_pct"`
	Amount       float64              `json:"amount"`
	Percentage   float64              `json:"percentage"`
}

// Calculator derives per-category rebalancing actions.
type Calculator struct {
	classifier  *classification.Classifier
	tolerancePP float64
	log         zerolog.Logger
}

// NewCalculator creates a drift calculator. A non-positive tolerance falls
// back to DefaultTolerancePP.
func NewCalculator(classifier *classification.Classifier, tolerancePP float64, log zerolog.Logger) *Calculator {
	if tolerancePP <= 0 {
		tolerancePP = DefaultTolerancePP
	}
	return &Calculator{
		classifier:  classifier,
		tolerancePP: tolerancePP,
		log:         log.With().Str("service", "drift").Logger(),
	}
}

// Calculate compares current category weights against the target.
//
// For every category present in the portfolio or the target:
//
//	currentPct = categoryValue / totalValue * 100
//	targetPct  = target[category]
//	HOLD when |currentPct - targetPct| <= tolerance, otherwise BUY/SELL
//	with amount = |targetValue - currentValue| rounded to 2 decimals.
//
// A non-positive totalValue returns an empty result rather than NaN.
// Items are sorted by drift magnitude descending, then category, so the
// output is deterministic.
func (c *Calculator) Calculate(assets []domain.Asset, totalValue float64, target domain.TargetAllocations) []Item {
	if totalValue <= 0 {
		c.log.Debug().Msg("Non-positive total value, returning empty drift result")
		return []Item{}
	}

	values := c.classifier.CategoryValues(assets)

	items := make([]Item, 0, len(domain.AllCategories))
	for _, cat := range domain.AllCategories {
		currentValue, hasValue := values[cat]
		targetPct, hasTarget := target[cat]
		if !hasValue && !hasTarget {
			continue
		}

		currentPct := currentValue / totalValue * 100
		targetValue := targetPct / 100 * totalValue
		diff := currentPct - targetPct

		action := domain.ActionHold
		if math.Abs(diff) > c.tolerancePP {
			if diff > 0 {
				action = domain.ActionSell
			} else {
				action = domain.ActionBuy
			}
		}

		items = append(items, Item{
			Category:     cat,
			Action:       action,
			CurrentValue: round2(currentValue),
			TargetValue:  round2(targetValue),
			CurrentPct:   currentPct,
			TargetPct:    targetPct,
			Amount:       round2(math.Abs(targetValue - currentValue)),
			Percentage:   math.Abs(diff),
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Percentage != items[j].Percentage {
			return items[i].Percentage > items[j].Percentage
		}
		return items[i].Category < items[j].Category
	})

	return items
}

// round2 rounds to 2 decimal places
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
