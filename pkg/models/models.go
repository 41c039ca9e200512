package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FlexFloat decodes from either a JSON number or a numeric string
type FlexFloat float64

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return err
		}
		*f = FlexFloat(v)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = FlexFloat(v)
	return nil
}

// NumericString decodes from either a JSON string or a JSON number, keeping the text.
// It encodes as a string.
type NumericString string

// UnmarshalJSON implements json.Unmarshaler
func (n *NumericString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*n = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumericString(s)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*n = NumericString(num.String())
	return nil
}

// CalcRequest is the request for a stake recommendation
type CalcRequest struct {
	Odds        *FlexFloat `json:"odds"` // Decimal odds
	Prob        *FlexFloat `json:"prob"` // Estimated win probability (0-1)
	Bankroll    *FlexFloat `json:"bankroll"`
	CapFraction *FlexFloat `json:"cap_fraction"`
	Sport       string     `json:"sport"`    // Optional, enables empirical adjustment
	BetType     string     `json:"bet_type"` // Optional, enables empirical adjustment
}

// CalcResponse is the stake recommendation returned by /api/calc
type CalcResponse struct {
	Recommended float64        `json:"recommended"`
	Kind        string         `json:"kind"`
	Reason      string         `json:"reason,omitempty"`
	Probability *float64       `json:"probability,omitempty"` // Probability actually used
	Empirical   *EmpiricalInfo `json:"empirical_info,omitempty"`
}

// EmpiricalRequest is the wire request for empirical probability info
type EmpiricalRequest struct {
	Sport   string        `json:"sport"`
	BetType string        `json:"bet_type"`
	Prob    NumericString `json:"prob"`
}

// EmpiricalInfo is the wire response for empirical probability info
type EmpiricalInfo struct {
	Empirical     *float64 `json:"empirical"` // Null when no settled bets match
	Adjusted      float64  `json:"adjusted"`
	Alpha         float64  `json:"alpha"`
	MatchingCount int      `json:"matching_count"`
}

// OddsConversion is the response of the odds conversion endpoint
type OddsConversion struct {
	American float64 `json:"american"`
	Decimal  float64 `json:"decimal"`
	Implied  float64 `json:"implied_probability"`
}
