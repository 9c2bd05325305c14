// Package health computes the 6-factor portfolio health score.
//
// The engine combines allocation drift, concentration, correlation,
// volatility exposure, downside risk and tax efficiency into a single
// 0-100 score with a letter grade. Every factor is a pure function of the
// holdings snapshot; the engine holds no state between calls.
package health

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/jimmyjeon420-png/baln-sub000/internal/domain"
	"github.com/jimmyjeon420-png/baln-sub000/internal/modules/classification"
	"github.com/jimmyjeon420-png/baln-sub000/internal/modules/correlation"
)

// Factor weights. Must sum to 1.0 (verified by tests).
const (
	WeightAllocation    = 0.25
	WeightConcentration = 0.20
	WeightCorrelation   = 0.15
	WeightVolatility    = 0.15
	WeightDownside      = 0.15
	WeightTaxEfficiency = 0.10
)

// Grade cut points on the 0-100 total score.
const (
	GradeSMin = 90
	GradeAMin = 75
	GradeBMin = 60
	GradeCMin = 40
)

// Grade colors (hex, as rendered by the client).
const (
	colorGradeS = "#22c55e"
	colorGradeA = "#84cc16"
	colorGradeB = "#eab308"
	colorGradeC = "#f97316"
	colorGradeD = "#ef4444"
)

// DefaultStopLossThreshold is the loss fraction at which a position is
// considered fully at risk by the downside factor.
const DefaultStopLossThreshold = 0.15

// DefaultTargetAllocations is the built-in target used when the caller
// supplies none. Percentage points, summing to 100.
var DefaultTargetAllocations = domain.TargetAllocations{
	domain.CategoryLargeCap:   40,
	domain.CategoryBond:       20,
	domain.CategoryCash:       15,
	domain.CategoryRealEstate: 10,
	domain.CategoryGold:       5,
	domain.CategoryBitcoin:    5,
	domain.CategoryCommodity:  3,
	domain.CategoryAltcoin:    2,
}

// FactorResult is one scored factor with its contribution weight.
type FactorResult struct {
	Label   string  `json:"label"`
	Icon    string  `json:"icon"`
	Score   float64 `json:"score"`
	Weight  float64 `json:"weight"`
	Comment string  `json:"comment"`
}

// Result is the complete health score breakdown. It is recomputed from
// scratch on every call and never persisted by the engine.
type Result struct {
	TotalScore int            `json:"total_score"`
	Grade      string         `json:"grade"`
	GradeColor string         `json:"grade_color"`
	Summary    string         `json:"summary"`
	Factors    []FactorResult `json:"factors"`
}

// Config holds the tunable knobs of the engine. Zero values fall back to
// the package defaults so tests can override a single knob.
type Config struct {
	DefaultTarget     domain.TargetAllocations
	StopLossThreshold float64
}

// Engine computes health scores. Safe for concurrent use: all methods are
// read-only over injected configuration.
type Engine struct {
	classifier *classification.Classifier
	corr       *correlation.Model
	cfg        Config
	log        zerolog.Logger
}

// NewEngine creates a health score engine.
func NewEngine(classifier *classification.Classifier, corr *correlation.Model, cfg Config, log zerolog.Logger) *Engine {
	if cfg.DefaultTarget == nil {
		cfg.DefaultTarget = DefaultTargetAllocations
	}
	if cfg.StopLossThreshold <= 0 {
		cfg.StopLossThreshold = DefaultStopLossThreshold
	}
	return &Engine{
		classifier: classifier,
		corr:       corr,
		cfg:        cfg,
		log:        log.With().Str("service", "health").Logger(),
	}
}

// Score computes the 6-factor health score for a holdings snapshot.
//
// Args:
//
//	assets: holdings snapshot (never mutated)
//	totalValue: trusted total portfolio value; a non-positive total yields
//	            a neutral zero result instead of dividing by zero
//	target: per-category target weights in percentage points; nil or empty
//	        falls back to the configured default allocation
//
// Returns:
//
//	Result with the weighted total (including the real estate
//	diversification bonus, capped at 100), grade and factor breakdown.
func (e *Engine) Score(assets []domain.Asset, totalValue float64, target domain.TargetAllocations) Result {
	if totalValue <= 0 || len(assets) == 0 {
		return neutralResult()
	}
	if len(target) == 0 {
		target = e.cfg.DefaultTarget
	}

	weights := e.classifier.CategoryWeights(assets, totalValue)

	factors := []FactorResult{
		e.allocationFactor(weights, target),
		e.concentrationFactor(weights),
		e.correlationFactor(weights),
		e.volatilityFactor(weights),
		e.downsideFactor(assets, totalValue),
		e.taxEfficiencyFactor(assets, totalValue),
	}

	weighted := 0.0
	for _, f := range factors {
		weighted += f.Score * f.Weight
	}

	bonus := e.RealEstateDiversificationBonus(realEstateAssets(e.classifier, assets), totalValue)
	total := int(math.Round(math.Min(100, weighted+bonus.Bonus)))

	grade, color := gradeFor(total)

	e.log.Debug().
		Int("total_score", total).
		Str("grade", grade).
		Float64("re_bonus", bonus.Bonus).
		Msg("Computed health score")

	return Result{
		TotalScore: total,
		Grade:      grade,
		GradeColor: color,
		Summary:    summaryFor(grade),
		Factors:    factors,
	}
}

// neutralResult is returned when there is nothing to score. It carries the
// lowest grade but zero factor scores so the client renders an empty state
// rather than an error.
func neutralResult() Result {
	factors := []FactorResult{
		{Label: labelAllocation, Icon: iconAllocation, Weight: WeightAllocation, Comment: commentNoValue},
		{Label: labelConcentration, Icon: iconConcentration, Weight: WeightConcentration, Comment: commentNoValue},
		{Label: labelCorrelation, Icon: iconCorrelation, Weight: WeightCorrelation, Comment: commentNoValue},
		{Label: labelVolatility, Icon: iconVolatility, Weight: WeightVolatility, Comment: commentNoValue},
		{Label: labelDownside, Icon: iconDownside, Weight: WeightDownside, Comment: commentNoValue},
		{Label: labelTaxEfficiency, Icon: iconTaxEfficiency, Weight: WeightTaxEfficiency, Comment: commentNoValue},
	}
	return Result{
		TotalScore: 0,
		Grade:      "D",
		GradeColor: colorGradeD,
		Summary:    "Portfolio has no value to score yet.",
		Factors:    factors,
	}
}

func gradeFor(total int) (string, string) {
	switch {
	case total >= GradeSMin:
		return "S", colorGradeS
	case total >= GradeAMin:
		return "A", colorGradeA
	case total >= GradeBMin:
		return "B", colorGradeB
	case total >= GradeCMin:
		return "C", colorGradeC
	default:
		return "D", colorGradeD
	}
}

func summaryFor(grade string) string {
	switch grade {
	case "S":
		return "Outstanding portfolio health. Stay the course."
	case "A":
		return "Strong portfolio health with minor drift to watch."
	case "B":
		return "Decent shape, but a few factors need attention."
	case "C":
		return "Meaningful imbalances. Consider rebalancing soon."
	default:
		return "Portfolio health is poor. A rebalance is strongly advised."
	}
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

func clampScore(f float64) float64 {
	return math.Max(0, math.Min(100, f))
}

func pct(f float64) string {
	return fmt.Sprintf("%.1f%%", f)
}
