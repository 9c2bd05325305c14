package health

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jimmyjeon420-png/baln-sub000/internal/domain"
	"github.com/jimmyjeon420-png/baln-sub000/internal/modules/classification"
	"github.com/jimmyjeon420-png/baln-sub000/internal/modules/correlation"
	"github.com/jimmyjeon420-png/baln-sub000/pkg/logger"
)

func newTestEngine() *Engine {
	return NewEngine(classification.NewDefault(), correlation.NewDefault(), Config{}, logger.Quiet())
}

func TestFactorWeightsSumToOne(t *testing.T) {
	sum := WeightAllocation + WeightConcentration + WeightCorrelation +
		WeightVolatility + WeightDownside + WeightTaxEfficiency
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestDefaultTargetAllocationsSumTo100(t *testing.T) {
	sum := 0.0
	for _, pct := range DefaultTargetAllocations {
		sum += pct
	}
	assert.InDelta(t, 100.0, sum, 1e-9)
}

func TestEngine_Score_NeutralOnEmptyPortfolio(t *testing.T) {
	e := newTestEngine()

	for _, result := range []Result{
		e.Score(nil, 0, nil),
		e.Score(nil, 1000, nil),
		e.Score([]domain.Asset{{Name: "Cash", CurrentValue: 100}}, -5, nil),
	} {
		assert.Equal(t, 0, result.TotalScore)
		assert.Equal(t, "D", result.Grade)
		assert.Len(t, result.Factors, 6)
		for _, f := range result.Factors {
			assert.Zero(t, f.Score)
		}
	}
}

func TestEngine_Score_BoundsAndGrade(t *testing.T) {
	e := newTestEngine()

	// A portfolio exactly on the default target with no price history.
	assets := []domain.Asset{
		{Name: "KODEX 200", Ticker: "069500", CurrentValue: 400},
		{Name: "Treasury bond ETF", Ticker: "TLT", CurrentValue: 200},
		{Name: "CMA deposit", CurrentValue: 150},
		{Name: "Apartment", AssetType: domain.AssetTypeIlliquid, CurrentValue: 100},
		{Name: "Gold ETF", Ticker: "GOLD", CurrentValue: 50},
		{Name: "Bitcoin", Ticker: "BTC", CurrentValue: 50},
		{Name: "WTI oil ETF", Ticker: "OIL", CurrentValue: 30},
		{Name: "Ethereum", Ticker: "ETH", CurrentValue: 20},
	}
	result := e.Score(assets, 1000, nil)

	assert.GreaterOrEqual(t, result.TotalScore, 0)
	assert.LessOrEqual(t, result.TotalScore, 100)
	assert.Len(t, result.Factors, 6)
	assert.Contains(t, []string{"S", "A", "B", "C", "D"}, result.Grade)
	assert.NotEmpty(t, result.Summary)

	// On-target diversified portfolio must grade well.
	assert.GreaterOrEqual(t, result.TotalScore, GradeBMin)

	// Allocation drift is zero when weights match the default target.
	assert.Equal(t, 100.0, result.Factors[0].Score)
}

func TestEngine_Score_ConcentratedScoresWorse(t *testing.T) {
	e := newTestEngine()

	concentrated := []domain.Asset{{Name: "Bitcoin", Ticker: "BTC", CurrentValue: 1000}}
	diversified := []domain.Asset{
		{Name: "KODEX 200", Ticker: "069500", CurrentValue: 400},
		{Name: "Treasury bond", Ticker: "TLT", CurrentValue: 300},
		{Name: "Cash deposit", CurrentValue: 300},
	}

	lo := e.Score(concentrated, 1000, nil)
	hi := e.Score(diversified, 1000, nil)
	assert.Greater(t, hi.TotalScore, lo.TotalScore)
}

func TestEngine_Score_NeverMutatesAssets(t *testing.T) {
	e := newTestEngine()
	debt := 100.0
	assets := []domain.Asset{
		{Name: "Apartment", AssetType: domain.AssetTypeIlliquid, CurrentValue: 500, DebtAmount: &debt},
		{Name: "Cash", CurrentValue: 500},
	}
	before := make([]domain.Asset, len(assets))
	copy(before, assets)

	_ = e.Score(assets, 1000, nil)
	assert.Equal(t, before, assets)
}

func TestGradeFor(t *testing.T) {
	tests := []struct {
		total int
		grade string
	}{
		{100, "S"},
		{90, "S"},
		{89, "A"},
		{75, "A"},
		{74, "B"},
		{60, "B"},
		{59, "C"},
		{40, "C"},
		{39, "D"},
		{0, "D"},
	}
	for _, tt := range tests {
		grade, color := gradeFor(tt.total)
		assert.Equal(t, tt.grade, grade, "total %d", tt.total)
		assert.NotEmpty(t, color)
	}
}

func TestEngine_AllocationFactor(t *testing.T) {
	e := newTestEngine()

	t.Run("zero drift scores 100", func(t *testing.T) {
		weights := map[domain.AssetCategory]float64{
			domain.CategoryCash:     0.5,
			domain.CategoryLargeCap: 0.5,
		}
		target := domain.TargetAllocations{
			domain.CategoryCash:     50,
			domain.CategoryLargeCap: 50,
		}
		f := e.allocationFactor(weights, target)
		assert.Equal(t, 100.0, f.Score)
	})

	t.Run("full drift scores 0", func(t *testing.T) {
		weights := map[domain.AssetCategory]float64{domain.CategoryBitcoin: 1.0}
		target := domain.TargetAllocations{domain.CategoryCash: 100}
		// Total drift = (100 + 100) / 2 = 100pp, slope 2 -> -100.
		f := e.allocationFactor(weights, target)
		assert.Equal(t, 0.0, f.Score)
	})
}

func TestEngine_ConcentrationFactor(t *testing.T) {
	e := newTestEngine()

	t.Run("single category scores 0", func(t *testing.T) {
		f := e.concentrationFactor(map[domain.AssetCategory]float64{domain.CategoryBitcoin: 1.0})
		assert.Equal(t, 0.0, f.Score)
	})

	t.Run("equal spread scores 100", func(t *testing.T) {
		weights := make(map[domain.AssetCategory]float64, len(domain.AllCategories))
		for _, cat := range domain.AllCategories {
			weights[cat] = 1.0 / float64(len(domain.AllCategories))
		}
		f := e.concentrationFactor(weights)
		assert.InDelta(t, 100.0, f.Score, 0.1)
	})
}

func TestEngine_DownsideFactor(t *testing.T) {
	e := newTestEngine()

	t.Run("no losses scores 100", func(t *testing.T) {
		avg, cur := 100.0, 120.0
		assets := []domain.Asset{
			{Name: "Apple", Ticker: "AAPL", CurrentValue: 1000, AvgPrice: &avg, CurrentPrice: &cur},
		}
		f := e.downsideFactor(assets, 1000)
		assert.Equal(t, 100.0, f.Score)
	})

	t.Run("whole portfolio at stop loss scores 0", func(t *testing.T) {
		avg, cur := 100.0, 85.0 // -15%, the default stop-loss threshold
		assets := []domain.Asset{
			{Name: "Apple", Ticker: "AAPL", CurrentValue: 1000, AvgPrice: &avg, CurrentPrice: &cur},
		}
		f := e.downsideFactor(assets, 1000)
		assert.InDelta(t, 0.0, f.Score, 0.1)
	})

	t.Run("missing price history is neutral", func(t *testing.T) {
		assets := []domain.Asset{{Name: "Apple", Ticker: "AAPL", CurrentValue: 1000}}
		f := e.downsideFactor(assets, 1000)
		assert.Equal(t, 100.0, f.Score)
	})
}

func TestEngine_VolatilityFactor(t *testing.T) {
	e := newTestEngine()

	t.Run("all cash scores 100", func(t *testing.T) {
		f := e.volatilityFactor(map[domain.AssetCategory]float64{domain.CategoryCash: 1.0})
		assert.Equal(t, 100.0, f.Score)
	})

	t.Run("all crypto scores 0", func(t *testing.T) {
		f := e.volatilityFactor(map[domain.AssetCategory]float64{domain.CategoryBitcoin: 1.0})
		assert.Equal(t, 0.0, f.Score)
	})
}

func TestEngine_RealEstateBonus(t *testing.T) {
	e := newTestEngine()

	t.Run("no holdings", func(t *testing.T) {
		b := e.RealEstateDiversificationBonus(nil, 1000)
		assert.Zero(t, b.Bonus)
	})

	t.Run("moderate share with no debt earns the cap", func(t *testing.T) {
		assets := []domain.Asset{{Name: "Apartment", CurrentValue: 200}}
		b := e.RealEstateDiversificationBonus(assets, 1000)
		assert.Equal(t, MaxRealEstateBonus, b.Bonus)
	})

	t.Run("moderate share with moderate leverage", func(t *testing.T) {
		debt := 100.0 // LTV 0.5
		assets := []domain.Asset{{Name: "Apartment", CurrentValue: 200, DebtAmount: &debt}}
		b := e.RealEstateDiversificationBonus(assets, 1000)
		assert.Equal(t, 8.0, b.Bonus)
	})

	t.Run("oversized share earns only the leverage bonus", func(t *testing.T) {
		assets := []domain.Asset{{Name: "Apartment", CurrentValue: 500}}
		b := e.RealEstateDiversificationBonus(assets, 1000)
		assert.Equal(t, 4.0, b.Bonus)
	})

	t.Run("high leverage earns nothing extra", func(t *testing.T) {
		debt := 160.0 // LTV 0.8
		assets := []domain.Asset{{Name: "Apartment", CurrentValue: 200, DebtAmount: &debt}}
		b := e.RealEstateDiversificationBonus(assets, 1000)
		assert.Equal(t, reShareBonus, b.Bonus)
	})
}

func TestEngine_Score_BonusNeverExceeds100(t *testing.T) {
	e := newTestEngine()

	// On-target portfolio including a bonus-earning real estate position.
	assets := []domain.Asset{
		{Name: "KODEX 200", Ticker: "069500", CurrentValue: 400},
		{Name: "Treasury bond ETF", Ticker: "TLT", CurrentValue: 200},
		{Name: "CMA deposit", CurrentValue: 150},
		{Name: "Apartment", AssetType: domain.AssetTypeIlliquid, CurrentValue: 100},
		{Name: "Gold ETF", Ticker: "GOLD", CurrentValue: 50},
		{Name: "Bitcoin", Ticker: "BTC", CurrentValue: 50},
		{Name: "WTI oil ETF", Ticker: "OIL", CurrentValue: 30},
		{Name: "Ethereum", Ticker: "ETH", CurrentValue: 20},
	}
	result := e.Score(assets, 1000, nil)
	assert.LessOrEqual(t, result.TotalScore, 100)
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 1.5, round1(1.45))
	assert.Equal(t, 1.4, round1(1.44))
	assert.True(t, math.Abs(round1(99.99)-100.0) < 1e-9)
}
