// Package classification maps free-text asset names and tickers to the
// closed category set used by every downstream scorer.
package classification

import (
	"strings"

	"github.com/jimmyjeon420-png/baln-sub000/internal/domain"
)

// Rule matches an asset against a category by keyword. Rules are evaluated
// in order; the first match wins.
type Rule struct {
	Category domain.AssetCategory
	Keywords []string
}

// Classifier assigns exactly one category to every asset. Classification is
// total and deterministic: it never fails and the same (name, ticker,
// asset type) always yields the same category.
//
// The heuristic is substring matching over user-entered text, which can
// guess wrong for ambiguous tickers. A more robust design would capture an
// explicit category at asset-creation time; until the client does that,
// the rule table is injected so callers can tighten it.
type Classifier struct {
	rules    []Rule
	fallback domain.AssetCategory
}

// DefaultFallbackCategory is assigned when no rule matches. Unmatched
// tickers are overwhelmingly listed equities.
const DefaultFallbackCategory = domain.CategoryLargeCap

// DefaultRules returns the built-in rule table. Order matters: more
// specific asset classes are matched before the broad equity keywords.
func DefaultRules() []Rule {
	return []Rule{
		{domain.CategoryBitcoin, []string{"bitcoin", "btc", "비트코인"}},
		{domain.CategoryAltcoin, []string{"ethereum", "eth", "altcoin", "xrp", "solana", "sol", "doge", "ada", "coin", "이더리움", "알트"}},
		// Single-character Korean keywords are avoided: "금" alone would
		// also match "예금" (deposit) and "현금" (cash).
		{domain.CategoryGold, []string{"gold", "xau", "골드", "금현물", "금 etf"}},
		{domain.CategoryCommodity, []string{"oil", "silver", "commodity", "wti", "copper", "원자재", "실버"}},
		{domain.CategoryBond, []string{"bond", "treasury", "tlt", "채권", "국채"}},
		{domain.CategoryCash, []string{"cash", "deposit", "mmf", "cma", "현금", "예금", "적금"}},
		{domain.CategoryRealEstate, []string{"real estate", "reit", "apartment", "부동산", "아파트", "오피스텔"}},
	}
}

// New creates a classifier with the given rule table. An empty table means
// everything falls through to the fallback category.
func New(rules []Rule) *Classifier {
	return &Classifier{rules: rules, fallback: DefaultFallbackCategory}
}

// NewDefault creates a classifier with the built-in rule table.
func NewDefault() *Classifier {
	return New(DefaultRules())
}

// Classify maps one asset to one category.
//
// Precedence:
//  1. Illiquid assets are real estate regardless of text.
//  2. First keyword rule matching ticker or name (case-insensitive).
//  3. Fallback category.
func (c *Classifier) Classify(asset domain.Asset) domain.AssetCategory {
	if asset.AssetType == domain.AssetTypeIlliquid {
		return domain.CategoryRealEstate
	}

	ticker := strings.ToLower(strings.TrimSpace(asset.Ticker))
	name := strings.ToLower(strings.TrimSpace(asset.Name))

	for _, rule := range c.rules {
		for _, kw := range rule.Keywords {
			if kw == "" {
				continue
			}
			if ticker != "" && strings.Contains(ticker, kw) {
				return rule.Category
			}
			if name != "" && strings.Contains(name, kw) {
				return rule.Category
			}
		}
	}

	return c.fallback
}

// CategoryValues aggregates asset values per category. Categories with no
// assets are absent from the result.
func (c *Classifier) CategoryValues(assets []domain.Asset) map[domain.AssetCategory]float64 {
	values := make(map[domain.AssetCategory]float64)
	for _, asset := range assets {
		values[c.Classify(asset)] += asset.CurrentValue
	}
	return values
}

// CategoryWeights returns per-category weights as fractions of totalValue.
// Returns an empty map when totalValue is not positive.
func (c *Classifier) CategoryWeights(assets []domain.Asset, totalValue float64) map[domain.AssetCategory]float64 {
	weights := make(map[domain.AssetCategory]float64)
	if totalValue <= 0 {
		return weights
	}
	for category, value := range c.CategoryValues(assets) {
		weights[category] = value / totalValue
	}
	return weights
}
