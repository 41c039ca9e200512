package calculator

import (
	"math"

	"github.com/shopspring/decimal"
)

// Kind tags a stake recommendation
type Kind string

const (
	KindNoBet       Kind = "no_bet"
	KindRecommended Kind = "recommended"
)

// Reason explains why no bet was recommended
type Reason string

const (
	ReasonNone               Reason = ""
	ReasonInvalidOdds        Reason = "invalid_odds"
	ReasonInvalidProbability Reason = "invalid_probability"
	ReasonInvalidBankroll    Reason = "invalid_bankroll"
	ReasonInvalidCap         Reason = "invalid_cap"
	ReasonNoPayout           Reason = "no_payout"
	ReasonNegativeEdge       Reason = "negative_edge"
	ReasonNoCapacity         Reason = "no_capacity"
)

// DefaultMinStake is the smallest stake ever recommended, in currency units
const DefaultMinStake = 0.10

// round rounds a float to 2 decimal places
func round(val float64) float64 {
	return roundTo(val, 2)
}

// roundTo rounds half away from zero to the given number of decimal places.
// Non-finite values are returned unchanged.
func roundTo(val float64, places int32) float64 {
	if !finite(val) {
		return val
	}
	f, _ := decimal.NewFromFloat(val).Round(places).Float64()
	return f
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
