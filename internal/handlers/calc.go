package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/XavierBriggs/fortuna/services/stake-calculator/internal/calculator"
	"github.com/XavierBriggs/fortuna/services/stake-calculator/internal/empirical"
	"github.com/XavierBriggs/fortuna/services/stake-calculator/internal/metrics"
	"github.com/XavierBriggs/fortuna/services/stake-calculator/internal/view"
	"github.com/XavierBriggs/fortuna/services/stake-calculator/pkg/models"
)

// defaultEmpiricalProb is assumed when an empirical request carries no probability
const defaultEmpiricalProb = 0.5

// ConvertOdds converts the american query parameter to decimal odds
func (h *Handler) ConvertOdds(w http.ResponseWriter, r *http.Request) {
	american, err := strconv.ParseFloat(strings.TrimSpace(r.URL.Query().Get("american")), 64)
	if err != nil {
		metrics.RecordOddsConversion(false)
		respondError(w, http.StatusBadRequest, "american must be a number")
		return
	}

	decimalOdds, err := calculator.AmericanToDecimal(american)
	if err != nil {
		metrics.RecordOddsConversion(false)
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	implied, _ := calculator.ImpliedProbability(decimalOdds)

	metrics.RecordOddsConversion(true)
	respondJSON(w, http.StatusOK, models.OddsConversion{
		American: american,
		Decimal:  decimalOdds,
		Implied:  implied,
	})
}

// Derive recomputes the form's display values from its current state
func (h *Handler) Derive(w http.ResponseWriter, r *http.Request) {
	var state view.ViewState
	if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	display := view.Derive(state, h.defaults)
	if display.Kind != "" {
		metrics.RecordStakeCalculation(display.Kind, display.Reason)
	}
	respondJSON(w, http.StatusOK, display)
}

// Calculate returns a stake recommendation for decimal odds and a probability.
// Unusable input yields a zero no-bet rather than an error status.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCalcRequest(r)
	if err != nil {
		h.logger.WithError(err).Debug("Unusable calc request")
	}
	if err != nil || req.Odds == nil || req.Prob == nil {
		respondJSON(w, http.StatusOK, models.CalcResponse{
			Kind:   string(calculator.KindNoBet),
			Reason: "invalid_request",
		})
		return
	}

	kelly := calculator.KellyRequest{
		Bankroll:       h.defaults.Bankroll,
		CapFraction:    h.defaults.CapFraction,
		DecimalOdds:    float64(*req.Odds),
		WinProbability: float64(*req.Prob),
		MinStake:       h.defaults.MinStake,
	}
	if req.Bankroll != nil {
		kelly.Bankroll = float64(*req.Bankroll)
	}
	if req.CapFraction != nil {
		kelly.CapFraction = float64(*req.CapFraction)
	}

	resp := models.CalcResponse{}

	// Sport or bet type opts in to the empirical adjustment
	if h.empirical != nil && (req.Sport != "" || req.BetType != "") {
		info, err := h.empirical.Info(r.Context(), empirical.Query{
			Sport:   req.Sport,
			BetType: req.BetType,
			Prob:    kelly.WinProbability,
		})
		if err != nil {
			h.logger.WithError(err).WithFields(logrus.Fields{
				"sport":    req.Sport,
				"bet_type": req.BetType,
			}).Warn("Empirical adjustment unavailable, using supplied probability")
		} else {
			kelly.WinProbability = info.Adjusted
			resp.Empirical = info
		}
	}

	rec := calculator.RecommendStake(kelly)
	metrics.RecordStakeCalculation(string(rec.Kind), string(rec.Reason))

	prob := kelly.WinProbability
	resp.Recommended = rec.Amount
	resp.Kind = string(rec.Kind)
	resp.Reason = string(rec.Reason)
	resp.Probability = &prob

	respondJSON(w, http.StatusOK, resp)
}

// EmpiricalInfo returns the empirical probability adjustment for a sport and bet type
func (h *Handler) EmpiricalInfo(w http.ResponseWriter, r *http.Request) {
	if h.empirical == nil {
		respondError(w, http.StatusServiceUnavailable, "empirical info is not configured")
		return
	}

	var req models.EmpiricalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	prob := defaultEmpiricalProb
	if s := strings.TrimSpace(string(req.Prob)); s != "" {
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "prob must be a number")
			return
		}
		prob = parsed
	}

	info, err := h.empirical.Info(r.Context(), empirical.Query{
		Sport:   req.Sport,
		BetType: req.BetType,
		Prob:    prob,
	})
	if err != nil {
		if errors.Is(err, empirical.ErrInvalidProbability) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.WithError(err).Warn("Empirical lookup failed")
		respondError(w, http.StatusBadGateway, "empirical lookup failed")
		return
	}

	respondJSON(w, http.StatusOK, info)
}

// decodeCalcRequest accepts a JSON body or form-encoded fields
func decodeCalcRequest(r *http.Request) (*models.CalcRequest, error) {
	var req models.CalcRequest

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, fmt.Errorf("invalid JSON body: %w", err)
		}
		return &req, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("invalid form body: %w", err)
	}
	fields := map[string]**models.FlexFloat{
		"odds":         &req.Odds,
		"prob":         &req.Prob,
		"bankroll":     &req.Bankroll,
		"cap_fraction": &req.CapFraction,
	}
	for key, dst := range fields {
		raw := strings.TrimSpace(r.PostForm.Get(key))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		f := models.FlexFloat(v)
		*dst = &f
	}
	req.Sport = strings.TrimSpace(r.PostForm.Get("sport"))
	req.BetType = strings.TrimSpace(r.PostForm.Get("bet_type"))
	return &req, nil
}
