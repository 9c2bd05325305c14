// Package correlation provides the static category correlation table and
// the portfolio diversification summary derived from it.
package correlation

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/jimmyjeon420-png/baln-sub000/internal/domain"
)

// Diversification label thresholds over the average pairwise correlation.
const (
	ExcellentThreshold = 0.15
	GoodThreshold      = 0.35
)

// Diversification labels.
const (
	LabelExcellent        = "excellent"
	LabelGood             = "good"
	LabelNeedsImprovement = "needs improvement"
)

type pairKey struct {
	a, b domain.AssetCategory
}

// Model is the category-to-category correlation lookup. The canonical
// coefficients are supplied once as an upper triangle; the symmetric
// closure and unit diagonal are derived at construction so there is a
// single source of truth for corr(a,b) == corr(b,a).
type Model struct {
	coeffs map[pairKey]float64
}

// Coefficient is one canonical upper-triangle entry.
type Coefficient struct {
	A, B  domain.AssetCategory
	Value float64
}

// DefaultCoefficients returns the built-in long-run correlation estimates
// between asset categories. Values outside [-1, 1] are clamped by New.
func DefaultCoefficients() []Coefficient {
	return []Coefficient{
		{domain.CategoryCash, domain.CategoryBond, 0.20},
		{domain.CategoryCash, domain.CategoryLargeCap, -0.05},
		{domain.CategoryCash, domain.CategoryRealEstate, 0.00},
		{domain.CategoryCash, domain.CategoryBitcoin, -0.05},
		{domain.CategoryCash, domain.CategoryAltcoin, -0.05},
		{domain.CategoryCash, domain.CategoryGold, 0.05},
		{domain.CategoryCash, domain.CategoryCommodity, -0.05},
		{domain.CategoryBond, domain.CategoryLargeCap, 0.10},
		{domain.CategoryBond, domain.CategoryRealEstate, 0.25},
		{domain.CategoryBond, domain.CategoryBitcoin, 0.05},
		{domain.CategoryBond, domain.CategoryAltcoin, 0.05},
		{domain.CategoryBond, domain.CategoryGold, 0.30},
		{domain.CategoryBond, domain.CategoryCommodity, 0.00},
		{domain.CategoryLargeCap, domain.CategoryRealEstate, 0.45},
		{domain.CategoryLargeCap, domain.CategoryBitcoin, 0.50},
		{domain.CategoryLargeCap, domain.CategoryAltcoin, 0.55},
		{domain.CategoryLargeCap, domain.CategoryGold, 0.10},
		{domain.CategoryLargeCap, domain.CategoryCommodity, 0.35},
		{domain.CategoryRealEstate, domain.CategoryBitcoin, 0.20},
		{domain.CategoryRealEstate, domain.CategoryAltcoin, 0.20},
		{domain.CategoryRealEstate, domain.CategoryGold, 0.15},
		{domain.CategoryRealEstate, domain.CategoryCommodity, 0.25},
		{domain.CategoryBitcoin, domain.CategoryAltcoin, 0.85},
		{domain.CategoryBitcoin, domain.CategoryGold, 0.10},
		{domain.CategoryBitcoin, domain.CategoryCommodity, 0.15},
		{domain.CategoryAltcoin, domain.CategoryGold, 0.05},
		{domain.CategoryAltcoin, domain.CategoryCommodity, 0.15},
		{domain.CategoryGold, domain.CategoryCommodity, 0.40},
	}
}

// New builds a model from canonical coefficients. Both orientations of each
// pair are stored so lookups never depend on argument order.
func New(coefficients []Coefficient) *Model {
	m := &Model{coeffs: make(map[pairKey]float64, len(coefficients)*2)}
	for _, c := range coefficients {
		v := clamp(c.Value, -1, 1)
		m.coeffs[pairKey{c.A, c.B}] = v
		m.coeffs[pairKey{c.B, c.A}] = v
	}
	return m
}

// NewDefault builds a model from the built-in coefficient table.
func NewDefault() *Model {
	return New(DefaultCoefficients())
}

// Corr returns the correlation coefficient between two categories.
// The diagonal is always 1.0; unknown pairs return 0.
func (m *Model) Corr(a, b domain.AssetCategory) float64 {
	if a == b {
		return 1.0
	}
	return m.coeffs[pairKey{a, b}]
}

// AveragePairwiseCorrelation computes the mean coefficient over all
// unordered pairs of distinct categories present in the portfolio.
// Returns 0 when fewer than two categories are present.
func (m *Model) AveragePairwiseCorrelation(categories map[domain.AssetCategory]bool) float64 {
	present := make([]domain.AssetCategory, 0, len(categories))
	for cat, ok := range categories {
		if ok {
			present = append(present, cat)
		}
	}
	if len(present) < 2 {
		return 0
	}
	// Deterministic pair enumeration.
	sort.Slice(present, func(i, j int) bool { return present[i] < present[j] })

	pairs := make([]float64, 0, len(present)*(len(present)-1)/2)
	for i := 0; i < len(present); i++ {
		for j := i + 1; j < len(present); j++ {
			pairs = append(pairs, m.Corr(present[i], present[j]))
		}
	}
	return stat.Mean(pairs, nil)
}

// DiversificationLabel maps an average pairwise correlation to a
// human-readable quality label.
func DiversificationLabel(avgCorrelation float64) string {
	switch {
	case avgCorrelation < ExcellentThreshold:
		return LabelExcellent
	case avgCorrelation < GoodThreshold:
		return LabelGood
	default:
		return LabelNeedsImprovement
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
