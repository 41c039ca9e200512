package calculator

// KellyRequest holds the inputs of a single stake recommendation
type KellyRequest struct {
	Bankroll       float64
	CapFraction    float64 // maximum share of bankroll on one bet, 0..1
	DecimalOdds    float64
	WinProbability float64
	MinStake       float64 // floor for a recommended stake; DefaultMinStake when zero
}

// Recommendation is the outcome of RecommendStake. Amount is zero for KindNoBet.
type Recommendation struct {
	Kind          Kind    `json:"kind"`
	Amount        float64 `json:"amount"`
	Reason        Reason  `json:"reason,omitempty"`
	KellyFraction float64 `json:"kelly_fraction"`
	minStake      float64
}

// IsBet reports whether a stake was recommended
func (r Recommendation) IsBet() bool {
	return r.Kind == KindRecommended
}

// Legacy returns the stake as a bare number with the minimum stake applied
// unconditionally, so every no-bet collapses to the floor value.
func (r Recommendation) Legacy() float64 {
	if r.Kind == KindNoBet {
		return round(r.minStake)
	}
	return r.Amount
}

// RecommendStake sizes a bet with full Kelly capped at CapFraction of the bankroll.
// Invalid input never errors; it yields a no-bet with a reason.
func RecommendStake(req KellyRequest) Recommendation {
	minStake := req.MinStake
	if minStake <= 0 {
		minStake = DefaultMinStake
	}
	noBet := func(reason Reason) Recommendation {
		return Recommendation{Kind: KindNoBet, Reason: reason, minStake: minStake}
	}

	o, p := req.DecimalOdds, req.WinProbability
	if !finite(o) || o <= 0 {
		return noBet(ReasonInvalidOdds)
	}
	if !finite(p) || p <= 0 || p >= 1 {
		return noBet(ReasonInvalidProbability)
	}
	if !finite(req.Bankroll) || req.Bankroll < 0 {
		return noBet(ReasonInvalidBankroll)
	}
	if !finite(req.CapFraction) || req.CapFraction < 0 || req.CapFraction > 1 {
		return noBet(ReasonInvalidCap)
	}

	// Net odds
	b := o - 1.0
	if b <= 0 {
		return noBet(ReasonNoPayout)
	}

	q := 1.0 - p
	kellyPct := (b*p - q) / b
	if kellyPct <= 0 {
		return noBet(ReasonNegativeEdge)
	}

	rawStake := kellyPct * req.Bankroll
	maxStake := req.CapFraction * req.Bankroll
	recommended := min(rawStake, maxStake)
	if recommended <= 0 {
		rec := noBet(ReasonNoCapacity)
		rec.KellyFraction = kellyPct
		return rec
	}

	// Never suggest less than the minimum unit
	recommended = max(recommended, minStake)

	return Recommendation{
		Kind:          KindRecommended,
		Amount:        round(recommended),
		KellyFraction: kellyPct,
		minStake:      minStake,
	}
}
