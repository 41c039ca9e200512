// Package view turns raw form values into display values and bet slips.
// It holds no state; handlers pass the current form values in on every call.
package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/XavierBriggs/fortuna/services/stake-calculator/internal/calculator"
	"github.com/XavierBriggs/fortuna/services/stake-calculator/pkg/models"
)

// Placeholder is shown wherever a value cannot be derived from the input
const Placeholder = "—"

// NoBetLabel is shown in place of a stake when no bet is recommended
const NoBetLabel = "No bet"

// ViewState is the current content of the calculator form
type ViewState struct {
	AmericanOdds string `json:"american_odds"`
	Probability  string `json:"probability"`
	Bankroll     string `json:"bankroll"`
	CapFraction  string `json:"cap_fraction"`
	Sport        string `json:"sport"`
	BetType      string `json:"bet_type"`
	Seq          uint64 `json:"seq"`
}

// Defaults fill in bankroll settings the form leaves blank
type Defaults struct {
	Bankroll    float64
	CapFraction float64
	MinStake    float64
}

// Display holds the derived values written back to the form
type Display struct {
	Seq              uint64   `json:"seq"`
	DecimalOdds      string   `json:"decimal_odds"`
	Stake            string   `json:"stake"`
	Kind             string   `json:"kind,omitempty"`
	Reason           string   `json:"reason,omitempty"`
	DecimalOddsValue *float64 `json:"decimal_odds_value,omitempty"`
	StakeValue       *float64 `json:"stake_value,omitempty"`
}

// Derive computes the display for a form state
func Derive(state ViewState, d Defaults) Display {
	out := Display{Seq: state.Seq, DecimalOdds: Placeholder, Stake: Placeholder}

	american, ok := parseNumber(state.AmericanOdds)
	if !ok {
		return out
	}
	decimalOdds, err := calculator.AmericanToDecimal(american)
	if err != nil {
		return out
	}
	out.DecimalOdds = fmt.Sprintf("%.4f", decimalOdds)
	out.DecimalOddsValue = &decimalOdds

	prob, ok := parseNumber(state.Probability)
	if !ok {
		return out
	}
	bankroll, ok := numberOr(state.Bankroll, d.Bankroll)
	if !ok {
		return out
	}
	capFraction, ok := numberOr(state.CapFraction, d.CapFraction)
	if !ok {
		return out
	}

	rec := calculator.RecommendStake(calculator.KellyRequest{
		Bankroll:       bankroll,
		CapFraction:    capFraction,
		DecimalOdds:    decimalOdds,
		WinProbability: prob,
		MinStake:       d.MinStake,
	})
	out.Kind = string(rec.Kind)
	out.Reason = string(rec.Reason)

	if !rec.IsBet() {
		out.Stake = NoBetLabel
		return out
	}
	stake := rec.Amount
	out.Stake = fmt.Sprintf("%.2f", stake)
	out.StakeValue = &stake
	return out
}

// EmpiricalDisplay is the formatted form of an empirical info response
type EmpiricalDisplay struct {
	Empirical     string `json:"empirical"`
	Adjusted      string `json:"adjusted"`
	Alpha         string `json:"alpha"`
	MatchingCount string `json:"matching_count"`
}

// FormatEmpirical formats an empirical info response for display. A nil info shows placeholders.
func FormatEmpirical(info *models.EmpiricalInfo) EmpiricalDisplay {
	if info == nil {
		return EmpiricalDisplay{Placeholder, Placeholder, Placeholder, Placeholder}
	}

	out := EmpiricalDisplay{
		Empirical:     Placeholder,
		Adjusted:      fmt.Sprintf("%.3f", info.Adjusted),
		Alpha:         fmt.Sprintf("%.2f", info.Alpha),
		MatchingCount: strconv.Itoa(info.MatchingCount),
	}
	if info.Empirical != nil {
		out.Empirical = fmt.Sprintf("%.3f", *info.Empirical)
	}
	return out
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func numberOr(s string, fallback float64) (float64, bool) {
	if strings.TrimSpace(s) == "" {
		return fallback, true
	}
	return parseNumber(s)
}
