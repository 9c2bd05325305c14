package tax

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jimmyjeon420-png/baln-sub000/internal/domain"
	"github.com/jimmyjeon420-png/baln-sub000/pkg/logger"
)

func ptr(f float64) *float64 { return &f }

func TestCalculator_Impact_UnknownCountry(t *testing.T) {
	c := NewDefaultCalculator(logger.Quiet())
	_, err := c.Impact(domain.Asset{}, 1000, Settings{CountryCode: "ZZ"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown country code")
}

func TestCalculator_Impact_EdgeCases(t *testing.T) {
	c := NewDefaultCalculator(logger.Quiet())

	tests := []struct {
		name       string
		asset      domain.Asset
		sellAmount float64
	}{
		{
			name:       "zero sell amount",
			asset:      domain.Asset{CurrentValue: 1000, CostBasis: ptr(800.0)},
			sellAmount: 0,
		},
		{
			name:       "missing cost basis",
			asset:      domain.Asset{CurrentValue: 1000},
			sellAmount: 500,
		},
		{
			name:       "zero current value",
			asset:      domain.Asset{CostBasis: ptr(800.0)},
			sellAmount: 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			impact, err := c.Impact(tt.asset, tt.sellAmount, Settings{CountryCode: "KR"})
			require.NoError(t, err)
			assert.Zero(t, impact.TaxAmount)
			assert.Zero(t, impact.FeeAmount)
			assert.Equal(t, tt.sellAmount, impact.NetProceeds)
		})
	}
}

func TestCalculator_Impact_ProportionalBasis(t *testing.T) {
	c := NewDefaultCalculator(logger.Quiet())

	asset := domain.Asset{
		CurrentValue: 2000,
		CostBasis:    ptr(1000.0),
	}

	// Selling half the position carries half the basis.
	impact, err := c.Impact(asset, 1000, Settings{CountryCode: "KR"})
	require.NoError(t, err)

	assert.InDelta(t, 500.0, impact.ProportionalBasis, 1e-9)
	assert.InDelta(t, 500.0, impact.Gain, 1e-9)
	assert.InDelta(t, 0.22, impact.TaxRate, 1e-9)
	assert.InDelta(t, 110.0, impact.TaxAmount, 1e-9)
	assert.InDelta(t, 1000*0.00015, impact.FeeAmount, 1e-9)
	assert.InDelta(t, 1000-110-0.15, impact.NetProceeds, 1e-9)
	assert.Equal(t, "KRW", impact.Currency)
}

func TestCalculator_Impact_LossNeverTaxed(t *testing.T) {
	c := NewDefaultCalculator(logger.Quiet())

	asset := domain.Asset{
		CurrentValue: 1000,
		CostBasis:    ptr(2000.0),
	}
	impact, err := c.Impact(asset, 1000, Settings{CountryCode: "US"})
	require.NoError(t, err)

	assert.InDelta(t, -1000.0, impact.Gain, 1e-9)
	assert.Zero(t, impact.TaxAmount)
	assert.Greater(t, impact.FeeAmount, 0.0, "fees still apply on a loss sale")
}

func TestCalculator_Impact_RatePrecedence(t *testing.T) {
	c := NewDefaultCalculator(logger.Quiet())
	asset := domain.Asset{CurrentValue: 1000, CostBasis: ptr(0.0)}

	t.Run("country default", func(t *testing.T) {
		impact, err := c.Impact(asset, 1000, Settings{CountryCode: "DE"})
		require.NoError(t, err)
		assert.InDelta(t, 0.26375, impact.TaxRate, 1e-9)
	})

	t.Run("per-call override beats country default", func(t *testing.T) {
		impact, err := c.Impact(asset, 1000, Settings{CountryCode: "DE", RateOverride: ptr(0.10)})
		require.NoError(t, err)
		assert.InDelta(t, 0.10, impact.TaxRate, 1e-9)
	})

	t.Run("per-asset override beats everything", func(t *testing.T) {
		withCustom := asset
		withCustom.CustomTaxRate = ptr(0.05)
		impact, err := c.Impact(withCustom, 1000, Settings{CountryCode: "DE", RateOverride: ptr(0.10)})
		require.NoError(t, err)
		assert.InDelta(t, 0.05, impact.TaxRate, 1e-9)
	})

	t.Run("fee override", func(t *testing.T) {
		impact, err := c.Impact(asset, 1000, Settings{CountryCode: "DE", FeeOverride: ptr(0.01)})
		require.NoError(t, err)
		assert.InDelta(t, 10.0, impact.FeeAmount, 1e-9)
	})
}

func TestCalculator_Impact_HoldingPeriod(t *testing.T) {
	c := NewDefaultCalculator(logger.Quiet())
	purchased := time.Now().AddDate(0, 0, -400)

	impact, err := c.Impact(domain.Asset{PurchaseDate: &purchased}, 0, Settings{CountryCode: "KR"})
	require.NoError(t, err)
	assert.InDelta(t, 400, impact.HoldingPeriodDays, 1)
}

func TestDefaultCountryProfiles_Complete(t *testing.T) {
	profiles := DefaultCountryProfiles()
	assert.Len(t, profiles, 11)

	seen := make(map[string]bool)
	for _, p := range profiles {
		assert.NotEmpty(t, p.Code)
		assert.NotEmpty(t, p.Currency)
		assert.GreaterOrEqual(t, p.CapitalGainsTaxRate, 0.0)
		assert.Less(t, p.CapitalGainsTaxRate, 1.0)
		assert.False(t, seen[p.Code], "duplicate country code %s", p.Code)
		seen[p.Code] = true
	}
	assert.True(t, seen["KR"])
	assert.True(t, seen["US"])
}
