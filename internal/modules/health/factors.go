package health

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/jimmyjeon420-png/baln-sub000/internal/domain"
	"github.com/jimmyjeon420-png/baln-sub000/internal/modules/classification"
	"github.com/jimmyjeon420-png/baln-sub000/internal/modules/correlation"
)

// Factor labels and icons as rendered by the client.
const (
	labelAllocation    = "Allocation Drift"
	labelConcentration = "Concentration"
	labelCorrelation   = "Correlation"
	labelVolatility    = "Volatility Exposure"
	labelDownside      = "Downside Risk"
	labelTaxEfficiency = "Tax Efficiency"

	iconAllocation    = "target"
	iconConcentration = "pie-chart"
	iconCorrelation   = "git-merge"
	iconVolatility    = "activity"
	iconDownside      = "trending-down"
	iconTaxEfficiency = "receipt"

	commentNoValue = "No portfolio value available."
)

// Factor scoring constants.
const (
	// allocationDriftSlope converts total drift (percentage points) into a
	// score penalty. 50pp of total drift zeroes the factor.
	allocationDriftSlope = 2.0

	// minHHI is the HHI of a perfectly equal spread over all categories;
	// used to normalize concentration so "equal everything" scores 100.
	// 8 categories -> 1/8.
	minHHI = 0.125

	// correlationPenaltySlope converts average pairwise correlation into a
	// score penalty. An average of ~0.67 zeroes the factor.
	correlationPenaltySlope = 150.0

	// Tax efficiency scoring: start from a neutral base, reward harvestable
	// loss share, penalize unrealized gain share that would be taxed on a
	// rebalancing sale.
	taxEfficiencyBase  = 70.0
	lossHarvestSlope   = 150.0
	gainConcentrSlope  = 100.0
	largeGainThreshold = 0.30 // gain share above which the comment warns about the tax bill
)

// categoryVolatility ranks categories by historical volatility; the
// volatility factor penalizes value held in the high end of this table.
var categoryVolatility = map[domain.AssetCategory]float64{
	domain.CategoryBitcoin:    1.00,
	domain.CategoryAltcoin:    1.00,
	domain.CategoryCommodity:  0.60,
	domain.CategoryLargeCap:   0.50,
	domain.CategoryGold:       0.35,
	domain.CategoryRealEstate: 0.30,
	domain.CategoryBond:       0.10,
	domain.CategoryCash:       0.00,
}

// allocationFactor penalizes the total absolute drift between current and
// target category weights: sum(|current% - target%|) / 2.
func (e *Engine) allocationFactor(weights map[domain.AssetCategory]float64, target domain.TargetAllocations) FactorResult {
	totalDrift := 0.0
	for _, cat := range domain.AllCategories {
		currentPct := weights[cat] * 100
		targetPct := target[cat]
		totalDrift += math.Abs(currentPct - targetPct)
	}
	totalDrift /= 2

	score := clampScore(100 - totalDrift*allocationDriftSlope)

	comment := fmt.Sprintf("Total drift from target is %s.", pct(totalDrift))
	if totalDrift <= 5 {
		comment = "Allocation closely tracks the target."
	}

	return FactorResult{
		Label:   labelAllocation,
		Icon:    iconAllocation,
		Score:   round1(score),
		Weight:  WeightAllocation,
		Comment: comment,
	}
}

// concentrationFactor scores the Herfindahl-Hirschman Index over category
// weights, normalized so an equal spread scores 100 and a single-category
// portfolio scores 0.
func (e *Engine) concentrationFactor(weights map[domain.AssetCategory]float64) FactorResult {
	squares := make([]float64, 0, len(weights))
	for _, w := range weights {
		squares = append(squares, w*w)
	}
	hhi := floats.Sum(squares)

	score := 0.0
	if hhi < 1 {
		score = clampScore((1 - hhi) / (1 - minHHI) * 100)
	}

	comment := fmt.Sprintf("HHI %.2f across %d categories.", hhi, len(weights))
	if hhi >= 0.5 {
		comment = fmt.Sprintf("Heavily concentrated (HHI %.2f). Spread across more categories.", hhi)
	}

	return FactorResult{
		Label:   labelConcentration,
		Icon:    iconConcentration,
		Score:   round1(score),
		Weight:  WeightConcentration,
		Comment: comment,
	}
}

// correlationFactor penalizes portfolios whose categories move together.
func (e *Engine) correlationFactor(weights map[domain.AssetCategory]float64) FactorResult {
	present := make(map[domain.AssetCategory]bool, len(weights))
	for cat, w := range weights {
		if w > 0 {
			present[cat] = true
		}
	}

	avg := e.corr.AveragePairwiseCorrelation(present)
	score := clampScore(100 - avg*correlationPenaltySlope)

	return FactorResult{
		Label:   labelCorrelation,
		Icon:    iconCorrelation,
		Score:   round1(score),
		Weight:  WeightCorrelation,
		Comment: fmt.Sprintf("Average pairwise correlation %.2f (%s).", avg, correlation.DiversificationLabel(avg)),
	}
}

// volatilityFactor penalizes the share of value held in historically
// high-volatility categories.
func (e *Engine) volatilityFactor(weights map[domain.AssetCategory]float64) FactorResult {
	exposure := 0.0
	cryptoShare := 0.0
	for cat, w := range weights {
		exposure += categoryVolatility[cat] * w
		if cat == domain.CategoryBitcoin || cat == domain.CategoryAltcoin {
			cryptoShare += w
		}
	}

	score := clampScore(100 * (1 - exposure))

	comment := fmt.Sprintf("Volatility-weighted exposure is %s of the portfolio.", pct(exposure*100))
	if cryptoShare > 0.20 {
		comment = fmt.Sprintf("Crypto is %s of the portfolio; expect large swings.", pct(cryptoShare*100))
	}

	return FactorResult{
		Label:   labelVolatility,
		Icon:    iconVolatility,
		Score:   round1(score),
		Weight:  WeightVolatility,
		Comment: comment,
	}
}

// downsideFactor penalizes value-weighted unrealized losses, scaled by how
// close the average loss sits to the stop-loss threshold.
func (e *Engine) downsideFactor(assets []domain.Asset, totalValue float64) FactorResult {
	weightedLoss := 0.0
	nearStopLoss := 0
	for _, asset := range assets {
		ret, ok := asset.UnrealizedReturn()
		if !ok || ret >= 0 {
			continue
		}
		share := asset.CurrentValue / totalValue
		weightedLoss += math.Abs(ret) * share
		if math.Abs(ret) >= e.cfg.StopLossThreshold*0.7 {
			nearStopLoss++
		}
	}

	// A portfolio-wide weighted loss equal to the stop-loss threshold
	// zeroes the factor.
	score := clampScore(100 - weightedLoss/e.cfg.StopLossThreshold*100)

	comment := "No meaningful unrealized losses."
	if weightedLoss > 0 {
		comment = fmt.Sprintf("Value-weighted unrealized loss is %s.", pct(weightedLoss*100))
	}
	if nearStopLoss > 0 {
		comment = fmt.Sprintf("%d position(s) approaching the %s stop-loss threshold.", nearStopLoss, pct(e.cfg.StopLossThreshold*100))
	}

	return FactorResult{
		Label:   labelDownside,
		Icon:    iconDownside,
		Score:   round1(score),
		Weight:  WeightDownside,
		Comment: comment,
	}
}

// taxEfficiencyFactor rewards harvestable unrealized losses and penalizes
// concentrated unrealized gains that would trigger a large tax bill if
// sold to rebalance.
func (e *Engine) taxEfficiencyFactor(assets []domain.Asset, totalValue float64) FactorResult {
	lossShare := 0.0
	gainShare := 0.0
	for _, asset := range assets {
		ret, ok := asset.UnrealizedReturn()
		if !ok {
			continue
		}
		share := asset.CurrentValue / totalValue
		if ret < 0 {
			lossShare += math.Abs(ret) * share
		} else {
			gainShare += ret * share
		}
	}

	score := clampScore(taxEfficiencyBase + lossShare*lossHarvestSlope - gainShare*gainConcentrSlope)

	comment := "Unrealized gains and losses are balanced for tax purposes."
	if gainShare > largeGainThreshold {
		comment = fmt.Sprintf("Large unrealized gains (%s weighted); rebalancing sales would trigger a sizable tax bill.", pct(gainShare*100))
	} else if lossShare > 0.02 {
		comment = fmt.Sprintf("Harvestable losses available (%s weighted).", pct(lossShare*100))
	}

	return FactorResult{
		Label:   labelTaxEfficiency,
		Icon:    iconTaxEfficiency,
		Score:   round1(score),
		Weight:  WeightTaxEfficiency,
		Comment: comment,
	}
}

// realEstateAssets filters the holdings classified as real estate.
func realEstateAssets(c *classification.Classifier, assets []domain.Asset) []domain.Asset {
	var out []domain.Asset
	for _, asset := range assets {
		if c.Classify(asset) == domain.CategoryRealEstate {
			out = append(out, asset)
		}
	}
	return out
}
