package calculator

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrZeroOdds is returned for American odds of 0, which have no decimal equivalent
	ErrZeroOdds = errors.New("invalid American odds: cannot be 0")
	// ErrNonFiniteOdds is returned for NaN or infinite odds
	ErrNonFiniteOdds = errors.New("invalid odds: not a finite number")
)

// AmericanToDecimal converts American odds to decimal odds rounded to 4 places
// American +150 → Decimal 2.5000
// American -150 → Decimal 1.6667
func AmericanToDecimal(american float64) (float64, error) {
	if !finite(american) {
		return 0, ErrNonFiniteOdds
	}
	if american == 0 {
		return 0, ErrZeroOdds
	}

	decimalOdds := 100.0/math.Abs(american) + 1.0
	if american > 0 {
		decimalOdds = american/100.0 + 1.0
	}
	// Tiny negative odds overflow
	if !finite(decimalOdds) {
		return 0, ErrNonFiniteOdds
	}
	return roundTo(decimalOdds, 4), nil
}

// DecimalToAmerican converts decimal odds to American odds
// Decimal 2.50 → American +150
// Decimal 1.67 → American -149.25
func DecimalToAmerican(decimalOdds float64) (float64, error) {
	if !finite(decimalOdds) || decimalOdds <= 1.0 {
		return 0, fmt.Errorf("invalid decimal odds %v: must be > 1", decimalOdds)
	}

	american := -100.0 / (decimalOdds - 1.0)
	if decimalOdds >= 2.0 {
		american = (decimalOdds - 1.0) * 100.0
	}
	if !finite(american) {
		return 0, ErrNonFiniteOdds
	}
	return round(american), nil
}

// ImpliedProbability returns the break-even win probability of decimal odds
func ImpliedProbability(decimalOdds float64) (float64, error) {
	if !finite(decimalOdds) || decimalOdds <= 0 {
		return 0, fmt.Errorf("invalid decimal odds %v: must be > 0", decimalOdds)
	}
	return 1.0 / decimalOdds, nil
}
