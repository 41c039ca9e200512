package empirical

import (
	"math"
	"time"
)

// Params controls how a user probability is blended with settled-bet history
type Params struct {
	Alpha   float64 // Trust in the user's estimate, 0..1
	TauDays float64 // Recency time constant for exponential weighting
	MinProb float64
	MaxProb float64
}

// DefaultParams returns the stock blending parameters
func DefaultParams() Params {
	return Params{
		Alpha:   0.6,
		TauDays: 30.0,
		MinProb: 0.5,
		MaxProb: 0.95,
	}
}

// Summary is the recency-weighted record of matching settled bets
type Summary struct {
	Count        int
	WeightSum    float64
	WeightedWins float64
	NetProfit    float64 // Unweighted
}

// Empirical returns the weighted win rate, or false when nothing matched
func (s Summary) Empirical() (float64, bool) {
	if s.WeightSum <= 0 {
		return 0, false
	}
	return s.WeightedWins / s.WeightSum, true
}

// Summarize weights each bet by exp(-age/tau), age measured from closedAt to now in days
func Summarize(bets []SettledBet, now time.Time, tauDays float64) Summary {
	var s Summary
	for _, b := range bets {
		closedAt := b.ClosedAt
		if closedAt.IsZero() {
			closedAt = now
		}
		ageDays := math.Max(0, now.Sub(closedAt).Hours()/24.0)

		weight := math.Exp(-ageDays / tauDays)
		s.Count++
		s.NetProfit += b.Profit()
		s.WeightSum += weight
		if b.Won() {
			s.WeightedWins += weight
		}
	}
	return s
}

// Adjust blends prob with the empirical win rate and clamps to [MinProb, MaxProb]
func (p Params) Adjust(prob float64, s Summary) float64 {
	adjusted := prob
	if empirical, ok := s.Empirical(); ok {
		adjusted = p.Alpha*prob + (1.0-p.Alpha)*empirical
	}

	adjusted = math.Max(adjusted, p.MinProb)
	adjusted = math.Min(adjusted, p.MaxProb)
	return adjusted
}
