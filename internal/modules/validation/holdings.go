package validation

import (
	"fmt"
	"math"
)

// ParsedAsset is one holding row as parsed by the OCR/AI import pipeline.
// Amount is a quantity; Price is a per-unit price; TotalValue is the line
// total when the source document carried one (0 when absent).
type ParsedAsset struct {
	Ticker      string  `json:"ticker"`
	Amount      float64 `json:"amount"`
	Price       float64 `json:"price"`
	TotalValue  float64 `json:"total_value,omitempty"`
	NeedsReview bool    `json:"needs_review"`
}

// HoldingsResult is the outcome of validating a parsed holdings batch.
type HoldingsResult struct {
	CorrectedAssets []ParsedAsset `json:"corrected_assets"`
	IsValid         bool          `json:"is_valid"`
	TotalCalculated float64       `json:"total_calculated"`
	ErrorMessage    string        `json:"error_message,omitempty"`
	Warnings        []string      `json:"warnings,omitempty"`
}

// priceMatchesLineTotal is the relative band within which a parsed price
// is considered equal to the record's own line total, the signature of
// the price/total confusion failure mode.
const priceMatchesLineTotal = 0.01

// ValidateParsedHoldings corrects the classic OCR/AI unit confusion where
// a parsed "price" is actually a line total, then checks the batch
// against the caller's trusted portfolio total.
//
// Per record (quantity > 1, positive price, trustedTotal > 0):
//   - amount*price exceeding the trusted total: the price field held the
//     line total; price becomes price/amount.
//   - amount*price exceeding half the trusted total while the record
//     carries an explicit line total that the price matches: price
//     becomes totalValue/amount. Requiring the explicit line total keeps
//     the corrector idempotent: an already-corrected price no longer
//     matches the line total.
//
// Corrected records are flagged NeedsReview so the client can ask the
// user instead of silently trusting the fix. Records with quantity 0 are
// passed through untouched; a non-positive trusted total skips correction
// entirely and fails validation.
//
// After correction the batch is valid when the aggregate relative error
// |sum(amount*price) - trustedTotal| / trustedTotal is within tolerance
// (non-positive tolerance falls back to the configured default).
func (v *Validator) ValidateParsedHoldings(records []ParsedAsset, trustedTotal float64, tolerance float64) HoldingsResult {
	if tolerance <= 0 {
		tolerance = v.cfg.HoldingsTolerance
	}

	corrected := append([]ParsedAsset(nil), records...)
	var warnings []string

	if trustedTotal > 0 {
		for i := range corrected {
			rec := &corrected[i]
			if rec.Amount <= 0 || rec.Price <= 0 {
				continue
			}
			if rec.Amount <= 1 {
				continue
			}

			lineTotal := rec.Amount * rec.Price
			switch {
			case lineTotal > trustedTotal:
				fixed := rec.Price / rec.Amount
				warnings = append(warnings, fmt.Sprintf("%s: price %.0f looks like a line total (%.0f x %.0f exceeds trusted total %.0f), corrected to %.0f",
					rec.Ticker, rec.Price, rec.Amount, rec.Price, trustedTotal, fixed))
				rec.Price = fixed
				rec.NeedsReview = true
			case rec.TotalValue > 0 &&
				lineTotal > trustedTotal*0.5 &&
				math.Abs(rec.Price-rec.TotalValue) <= rec.TotalValue*priceMatchesLineTotal:
				fixed := rec.TotalValue / rec.Amount
				warnings = append(warnings, fmt.Sprintf("%s: price %.0f equals the line total %.0f, corrected to %.0f",
					rec.Ticker, rec.Price, rec.TotalValue, fixed))
				rec.Price = fixed
				rec.NeedsReview = true
			}
		}
	}

	totalCalculated := 0.0
	for _, rec := range corrected {
		if rec.Amount > 0 && rec.Price > 0 {
			totalCalculated += rec.Amount * rec.Price
		}
	}

	result := HoldingsResult{
		CorrectedAssets: corrected,
		TotalCalculated: totalCalculated,
		Warnings:        warnings,
	}

	if trustedTotal <= 0 {
		result.ErrorMessage = "trusted total unavailable, cannot validate parsed holdings"
		return result
	}

	relErr := math.Abs(totalCalculated-trustedTotal) / trustedTotal
	if relErr <= tolerance {
		result.IsValid = true
	} else {
		result.ErrorMessage = fmt.Sprintf("parsed holdings total %.0f deviates %.1f%% from trusted total %.0f (tolerance %.1f%%)",
			totalCalculated, relErr*100, trustedTotal, tolerance*100)
	}

	if len(warnings) > 0 {
		v.log.Debug().Int("corrections", len(warnings)).Bool("valid", result.IsValid).Msg("Corrected parsed holdings")
	}

	return result
}
