// Package validation sanitizes numbers coming back from the generative
// model and the OCR import pipeline. Nothing an external model produces is
// trusted: scores are clamped, enums re-derived, and totals checked against
// the caller's own numbers. Corrections are never silent: every fix is
// surfaced as a warning or a review flag so the client can ask the user.
package validation

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/jimmyjeon420-png/baln-sub000/internal/domain"
)

// RiskLevel is the qualitative level paired with the composite risk score.
type RiskLevel string

const (
	RiskSafe    RiskLevel = "SAFE"
	RiskCaution RiskLevel = "CAUTION"
	RiskDanger  RiskLevel = "DANGER"
)

// Risk level thresholds over the composite score (higher = safer).
const (
	riskSafeMin    = 70.0
	riskCautionMin = 40.0
)

// PortfolioAction is one AI-recommended action on a ticker.
type PortfolioAction struct {
	Ticker string             `json:"ticker"`
	Action domain.TradeAction `json:"action"`
	Reason string             `json:"reason,omitempty"`
}

// RiskAnalysisResult is the externally produced analysis object, as parsed
// from the model's JSON. Field values are arbitrary until validated.
type RiskAnalysisResult struct {
	OverallScore float64            `json:"overall_score"`
	RiskLevel    RiskLevel          `json:"risk_level"`
	SubScores    map[string]float64 `json:"sub_scores"`
	TotalValue   float64            `json:"total_value"`
	Advice       []string           `json:"advice"`
	Alerts       []string           `json:"alerts"`
	Actions      []PortfolioAction  `json:"actions"`
}

// Result reports what the validator did. IsValid is true only when no
// corrections were needed.
type Result struct {
	IsValid   bool     `json:"is_valid"`
	Warnings  []string `json:"warnings"`
	Corrected bool     `json:"corrected"`
}

// Config holds the validator's empirically chosen bands. They are named
// and overridable rather than hard-coded because no derivation exists for
// them; zero values fall back to the defaults.
type Config struct {
	// TotalValueBandPct is the relative deviation beyond which the AI's
	// reported portfolio total is replaced with the caller's trusted one.
	TotalValueBandPct float64
	// MaxAdviceItems caps the advice and alert lists.
	MaxAdviceItems int
	// HoldingsTolerance is the aggregate relative error allowed when
	// validating parsed holdings.
	HoldingsTolerance float64
}

// Default bands.
const (
	DefaultTotalValueBandPct = 0.50
	DefaultMaxAdviceItems    = 5
	DefaultHoldingsTolerance = 0.05
)

// DefaultConfig returns the default validator configuration.
func DefaultConfig() Config {
	return Config{
		TotalValueBandPct: DefaultTotalValueBandPct,
		MaxAdviceItems:    DefaultMaxAdviceItems,
		HoldingsTolerance: DefaultHoldingsTolerance,
	}
}

// Validator bounds-checks and auto-corrects external analysis objects.
type Validator struct {
	cfg Config
	log zerolog.Logger
}

// New creates a validator. Zero config fields fall back to defaults.
func New(cfg Config, log zerolog.Logger) *Validator {
	if cfg.TotalValueBandPct <= 0 {
		cfg.TotalValueBandPct = DefaultTotalValueBandPct
	}
	if cfg.MaxAdviceItems <= 0 {
		cfg.MaxAdviceItems = DefaultMaxAdviceItems
	}
	if cfg.HoldingsTolerance <= 0 {
		cfg.HoldingsTolerance = DefaultHoldingsTolerance
	}
	return &Validator{
		cfg: cfg,
		log: log.With().Str("service", "validation").Logger(),
	}
}

// riskSubScoreKeys is the fixed list of sub-scores the model is asked to
// produce. Only these keys are clamped; unknown keys pass through.
var riskSubScoreKeys = []string{"concentration", "volatility", "liquidity", "correlation"}

// ValidateRiskAnalysis sanitizes an AI-produced risk analysis against the
// caller's trusted portfolio total.
//
// Corrections, each recorded as a warning:
//   - composite and sub-scores clamped to [0, 100]
//   - risk level re-derived from the (possibly clamped) composite when it
//     is not a valid enum value or the composite was clamped
//   - reported total replaced when it deviates from trustedTotal by more
//     than the configured band
//   - advice and alert lists truncated to the configured maximum
//   - duplicate action tickers dropped (first occurrence wins) and
//     actions with an invalid action enum removed
//
// The input is never mutated; a corrected copy is returned. Re-running on
// that copy yields IsValid=true, Corrected=false.
func (v *Validator) ValidateRiskAnalysis(in RiskAnalysisResult, trustedTotal float64) (RiskAnalysisResult, Result) {
	out := copyRiskAnalysis(in)
	var warnings []string

	if clamped := clamp01x100(out.OverallScore); clamped != out.OverallScore {
		warnings = append(warnings, fmt.Sprintf("overall score %.1f out of range, clamped to %.1f", out.OverallScore, clamped))
		out.OverallScore = clamped
	}

	derived := deriveRiskLevel(out.OverallScore)
	if !validRiskLevel(out.RiskLevel) {
		warnings = append(warnings, fmt.Sprintf("risk level %q is not a recognized level, derived %q from score", out.RiskLevel, derived))
		out.RiskLevel = derived
	} else if out.RiskLevel != derived && len(warnings) > 0 {
		// The composite was clamped; keep the level consistent with it.
		warnings = append(warnings, fmt.Sprintf("risk level %q inconsistent with clamped score, derived %q", out.RiskLevel, derived))
		out.RiskLevel = derived
	}

	for _, key := range riskSubScoreKeys {
		score, ok := out.SubScores[key]
		if !ok {
			continue
		}
		if clamped := clamp01x100(score); clamped != score {
			warnings = append(warnings, fmt.Sprintf("sub-score %q %.1f out of range, clamped to %.1f", key, score, clamped))
			out.SubScores[key] = clamped
		}
	}

	if trustedTotal > 0 && out.TotalValue > 0 {
		deviation := math.Abs(out.TotalValue-trustedTotal) / trustedTotal
		if deviation > v.cfg.TotalValueBandPct {
			warnings = append(warnings, fmt.Sprintf("reported total %.0f deviates %.0f%% from trusted total %.0f, replaced", out.TotalValue, deviation*100, trustedTotal))
			out.TotalValue = trustedTotal
		}
	}

	if len(out.Advice) > v.cfg.MaxAdviceItems {
		warnings = append(warnings, fmt.Sprintf("advice list truncated from %d to %d items", len(out.Advice), v.cfg.MaxAdviceItems))
		out.Advice = out.Advice[:v.cfg.MaxAdviceItems]
	}
	if len(out.Alerts) > v.cfg.MaxAdviceItems {
		warnings = append(warnings, fmt.Sprintf("alert list truncated from %d to %d items", len(out.Alerts), v.cfg.MaxAdviceItems))
		out.Alerts = out.Alerts[:v.cfg.MaxAdviceItems]
	}

	out.Actions, warnings = sanitizeActions(out.Actions, warnings)

	corrected := len(warnings) > 0
	if corrected {
		v.log.Debug().Int("corrections", len(warnings)).Msg("Sanitized AI risk analysis")
	}

	return out, Result{
		IsValid:   !corrected,
		Warnings:  warnings,
		Corrected: corrected,
	}
}

// sanitizeActions drops entries with an invalid action enum and keeps only
// the first occurrence per ticker.
func sanitizeActions(actions []PortfolioAction, warnings []string) ([]PortfolioAction, []string) {
	if len(actions) == 0 {
		return actions, warnings
	}
	seen := make(map[string]bool, len(actions))
	kept := make([]PortfolioAction, 0, len(actions))
	for _, a := range actions {
		switch a.Action {
		case domain.ActionBuy, domain.ActionSell, domain.ActionHold:
		default:
			warnings = append(warnings, fmt.Sprintf("dropped action with invalid verb %q for %q", a.Action, a.Ticker))
			continue
		}
		if seen[a.Ticker] {
			warnings = append(warnings, fmt.Sprintf("dropped duplicate action for %q", a.Ticker))
			continue
		}
		seen[a.Ticker] = true
		kept = append(kept, a)
	}
	return kept, warnings
}

func deriveRiskLevel(score float64) RiskLevel {
	switch {
	case score >= riskSafeMin:
		return RiskSafe
	case score >= riskCautionMin:
		return RiskCaution
	default:
		return RiskDanger
	}
}

func validRiskLevel(level RiskLevel) bool {
	switch level {
	case RiskSafe, RiskCaution, RiskDanger:
		return true
	}
	return false
}

func clamp01x100(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func copyRiskAnalysis(in RiskAnalysisResult) RiskAnalysisResult {
	out := in
	out.SubScores = make(map[string]float64, len(in.SubScores))
	for k, v := range in.SubScores {
		out.SubScores[k] = v
	}
	out.Advice = append([]string(nil), in.Advice...)
	out.Alerts = append([]string(nil), in.Alerts...)
	out.Actions = append([]PortfolioAction(nil), in.Actions...)
	return out
}
