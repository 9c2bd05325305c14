package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jimmyjeon420-png/baln-sub000/internal/domain"
	"github.com/jimmyjeon420-png/baln-sub000/internal/modules/tax"
	"github.com/jimmyjeon420-png/baln-sub000/internal/modules/validation"
)

// handleHealthCheck handles health check requests
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "baln",
	})
}

type portfolioRequest struct {
	Assets     []domain.Asset           `json:"assets"`
	TotalValue float64                  `json:"total_value"`
	Target     domain.TargetAllocations `json:"target,omitempty"`
}

// handlePortfolioScore computes the health score for a holdings snapshot.
func (s *Server) handlePortfolioScore(w http.ResponseWriter, r *http.Request) {
	var req portfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result := s.health.Score(req.Assets, req.TotalValue, req.Target)
	s.writeJSON(w, http.StatusOK, result)
}

// handlePortfolioDrift computes per-category rebalancing actions.
func (s *Server) handlePortfolioDrift(w http.ResponseWriter, r *http.Request) {
	var req portfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items := s.drift.Calculate(req.Assets, req.TotalValue, req.Target)
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
	})
}

type taxImpactRequest struct {
	Asset      domain.Asset `json:"asset"`
	SellAmount float64      `json:"sell_amount"`
	Settings   tax.Settings `json:"settings"`
}

// handleTaxImpact estimates the tax cost of selling part of one holding.
func (s *Server) handleTaxImpact(w http.ResponseWriter, r *http.Request) {
	var req taxImpactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Settings.CountryCode == "" {
		req.Settings.CountryCode = s.settings.Get("tax_country", "KR")
	}

	impact, err := s.tax.Impact(req.Asset, req.SellAmount, req.Settings)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, impact)
}

type taxEstimateRequest struct {
	Ticker       string  `json:"ticker"`
	SellAmount   float64 `json:"sell_amount"`
	AvgPrice     float64 `json:"avg_price"`
	CurrentPrice float64 `json:"current_price"`
	Quantity     float64 `json:"quantity"`
}

// handleTaxEstimate estimates taxes and fees from the ticker shape alone.
func (s *Server) handleTaxEstimate(w http.ResponseWriter, r *http.Request) {
	var req taxEstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	est := tax.EstimateSale(req.Ticker, req.SellAmount, req.AvgPrice, req.CurrentPrice, req.Quantity)
	s.writeJSON(w, http.StatusOK, est)
}

type validateRiskRequest struct {
	Analysis     validation.RiskAnalysisResult `json:"analysis"`
	TrustedTotal float64                       `json:"trusted_total"`
}

// handleValidateRisk sanitizes an AI-produced risk analysis.
func (s *Server) handleValidateRisk(w http.ResponseWriter, r *http.Request) {
	var req validateRiskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	analysis, result := s.validator.ValidateRiskAnalysis(req.Analysis, req.TrustedTotal)
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"analysis":   analysis,
		"validation": result,
	})
}

type validateHoldingsRequest struct {
	Records      []validation.ParsedAsset `json:"records"`
	TrustedTotal float64                  `json:"trusted_total"`
	Tolerance    float64                  `json:"tolerance,omitempty"`
}

// handleValidateHoldings corrects parsed holdings against a trusted total.
func (s *Server) handleValidateHoldings(w http.ResponseWriter, r *http.Request) {
	var req validateHoldingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result := s.validator.ValidateParsedHoldings(req.Records, req.TrustedTotal, req.Tolerance)
	s.writeJSON(w, http.StatusOK, result)
}

// handleListTargets returns all saved target allocation presets.
func (s *Server) handleListTargets(w http.ResponseWriter, r *http.Request) {
	presets, err := s.settings.ListTargetPresets()
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list target presets")
		s.writeError(w, http.StatusInternalServerError, "failed to list target presets")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"presets": presets,
	})
}

type saveTargetRequest struct {
	Name    string                   `json:"name"`
	Targets domain.TargetAllocations `json:"targets"`
}

// handleSaveTarget stores a named target allocation preset.
func (s *Server) handleSaveTarget(w http.ResponseWriter, r *http.Request) {
	var req saveTargetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || len(req.Targets) == 0 {
		s.writeError(w, http.StatusBadRequest, "name and targets are required")
		return
	}
	for cat := range req.Targets {
		if !cat.Valid() {
			s.writeError(w, http.StatusBadRequest, "unknown category "+string(cat))
			return
		}
	}

	id, err := s.settings.SaveTargetPreset(req.Name, req.Targets)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to save target preset")
		s.writeError(w, http.StatusInternalServerError, "failed to save target preset")
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// handleDeleteTarget removes a saved preset.
func (s *Server) handleDeleteTarget(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.settings.DeleteTargetPreset(id); err != nil {
		s.log.Error().Err(err).Msg("Failed to delete target preset")
		s.writeError(w, http.StatusInternalServerError, "failed to delete target preset")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
