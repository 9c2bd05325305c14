package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jimmyjeon420-png/baln-sub000/internal/database"
	"github.com/jimmyjeon420-png/baln-sub000/internal/domain"
	"github.com/jimmyjeon420-png/baln-sub000/internal/modules/classification"
	"github.com/jimmyjeon420-png/baln-sub000/internal/modules/correlation"
	"github.com/jimmyjeon420-png/baln-sub000/internal/modules/drift"
	"github.com/jimmyjeon420-png/baln-sub000/internal/modules/health"
	"github.com/jimmyjeon420-png/baln-sub000/internal/modules/settings"
	"github.com/jimmyjeon420-png/baln-sub000/internal/modules/tax"
	"github.com/jimmyjeon420-png/baln-sub000/internal/modules/validation"
	"github.com/jimmyjeon420-png/baln-sub000/pkg/logger"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	log := logger.Quiet()

	db, err := database.New(database.Config{
		Path: filepath.Join(t.TempDir(), "config.db"),
		Name: "config",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo, err := settings.NewRepository(db.Conn(), log)
	require.NoError(t, err)

	classifier := classification.NewDefault()
	corr := correlation.NewDefault()

	return New(Config{
		Port:      0,
		Log:       log,
		Health:    health.NewEngine(classifier, corr, health.Config{}, log),
		Drift:     drift.NewCalculator(classifier, 0, log),
		Tax:       tax.NewDefaultCalculator(log),
		Validator: validation.New(validation.DefaultConfig(), log),
		Settings:  repo,
		DevMode:   true,
	})
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealthCheck(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/api/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestHandlePortfolioScore(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/portfolio/score", portfolioRequest{
		Assets: []domain.Asset{
			{Name: "CMA deposit", CurrentValue: 400},
			{Name: "Apple", Ticker: "AAPL", CurrentValue: 600},
		},
		TotalValue: 1000,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result health.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Len(t, result.Factors, 6)
	assert.Contains(t, []string{"S", "A", "B", "C", "D"}, result.Grade)
}

func TestHandlePortfolioScore_BadJSON(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/portfolio/score", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}

func TestHandlePortfolioDrift(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/portfolio/drift", portfolioRequest{
		Assets:     []domain.Asset{{Name: "CMA deposit", CurrentValue: 1000}},
		TotalValue: 1000,
		Target: domain.TargetAllocations{
			domain.CategoryCash: 50,
			domain.CategoryGold: 50,
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Items []drift.Item `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 2)
	assert.Equal(t, domain.ActionSell, resp.Items[0].Action)
	assert.Equal(t, domain.ActionBuy, resp.Items[1].Action)
}

func TestHandleTaxImpact(t *testing.T) {
	srv := newTestServer(t)

	basis := 500_000.0
	rec := doJSON(t, srv, http.MethodPost, "/api/tax/impact", taxImpactRequest{
		Asset:      domain.Asset{CurrentValue: 1_000_000, CostBasis: &basis},
		SellAmount: 1_000_000,
		Settings:   tax.Settings{CountryCode: "KR"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var impact tax.Impact
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &impact))
	assert.InDelta(t, 500_000.0, impact.Gain, 1e-6)
	assert.Equal(t, "KRW", impact.Currency)
}

func TestHandleTaxImpact_DefaultCountryFromSettings(t *testing.T) {
	srv := newTestServer(t)
	require.NoError(t, srv.settings.Set("tax_country", "US"))

	rec := doJSON(t, srv, http.MethodPost, "/api/tax/impact", taxImpactRequest{
		Asset:      domain.Asset{CurrentValue: 1000},
		SellAmount: 100,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var impact tax.Impact
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &impact))
	assert.Equal(t, "USD", impact.Currency)
}

func TestHandleTaxImpact_UnknownCountry(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/tax/impact", taxImpactRequest{
		Asset:      domain.Asset{CurrentValue: 1000},
		SellAmount: 100,
		Settings:   tax.Settings{CountryCode: "ZZ"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleTaxEstimate(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/tax/estimate", taxEstimateRequest{
		Ticker:       "005930",
		SellAmount:   10_000_000,
		AvgPrice:     60_000,
		CurrentPrice: 75_000,
		Quantity:     200,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var est tax.Estimate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &est))
	assert.Equal(t, tax.TickerKRStock, est.TickerClass)
	assert.Equal(t, 18_000.0, est.TransactionTax)
	assert.Equal(t, 1_499.0, est.BrokerageFee)
}

func TestHandleValidateRisk(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/ai/validate-risk", validateRiskRequest{
		Analysis: validation.RiskAnalysisResult{
			OverallScore: 150,
			RiskLevel:    "EXTREME",
			TotalValue:   10_000_000,
		},
		TrustedTotal: 10_000_000,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Analysis   validation.RiskAnalysisResult `json:"analysis"`
		Validation validation.Result             `json:"validation"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 100.0, resp.Analysis.OverallScore)
	assert.Equal(t, validation.RiskSafe, resp.Analysis.RiskLevel)
	assert.False(t, resp.Validation.IsValid)
}

func TestHandleValidateHoldings(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/ai/validate-holdings", validateHoldingsRequest{
		Records: []validation.ParsedAsset{
			{Ticker: "APT", Amount: 10, Price: 50_000_000},
			{Ticker: "CASH", Amount: 1, Price: 5_000_000},
		},
		TrustedTotal: 55_000_000,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result validation.HoldingsResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.IsValid)
	assert.Equal(t, 5_000_000.0, result.CorrectedAssets[0].Price)
	assert.True(t, result.CorrectedAssets[0].NeedsReview)
}

func TestTargetPresetRoutes(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/settings/targets", saveTargetRequest{
		Name: "conservative",
		Targets: domain.TargetAllocations{
			domain.CategoryCash: 60,
			domain.CategoryBond: 40,
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created["id"])

	rec = doJSON(t, srv, http.MethodGet, "/api/settings/targets", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listed struct {
		Presets []settings.TargetPreset `json:"presets"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed.Presets, 1)
	assert.Equal(t, "conservative", listed.Presets[0].Name)

	rec = doJSON(t, srv, http.MethodDelete, "/api/settings/targets/"+created["id"], nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/settings/targets", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Empty(t, listed.Presets)
}

func TestTargetPresetRoutes_Validation(t *testing.T) {
	srv := newTestServer(t)

	t.Run("missing name", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/settings/targets", saveTargetRequest{
			Targets: domain.TargetAllocations{domain.CategoryCash: 100},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown category", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/settings/targets", saveTargetRequest{
			Name:    "broken",
			Targets: domain.TargetAllocations{"stonks": 100},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
