package view

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BetTypes lists the bet types offered by the form
var BetTypes = []string{"Moneyline", "Spread", "Over", "Under", "Player"}

// DefaultBetType is used when the form omits a bet type
const DefaultBetType = "Moneyline"

// eventStartLayout is what a datetime-local input submits
const eventStartLayout = "2006-01-02T15:04"

// SlipForm is the raw bet submission
type SlipForm struct {
	Name       string `form:"name" validate:"required"`
	Odds       string `form:"odds" validate:"required,numeric"`
	Prob       string `form:"prob" validate:"required,numeric"`
	Stake      string `form:"stake" validate:"required,numeric"`
	Sport      string `form:"sport"`
	BetType    string `form:"bet_type" validate:"omitempty,bettype"`
	EventStart string `form:"eventstart"`
}

// SlipFormFromValues reads a submission from posted form values
func SlipFormFromValues(v url.Values) SlipForm {
	get := func(key string) string { return strings.TrimSpace(v.Get(key)) }
	return SlipForm{
		Name:       get("name"),
		Odds:       get("odds"),
		Prob:       get("prob"),
		Stake:      get("stake"),
		Sport:      get("sport"),
		BetType:    get("bet_type"),
		EventStart: get("eventstart"),
	}
}

// BetSlip is an accepted bet submission
type BetSlip struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Odds            float64    `json:"odds"` // Decimal odds
	Prob            float64    `json:"prob"`
	Stake           float64    `json:"stake"`
	Sport           string     `json:"sport"`
	BetType         string     `json:"bet_type"`
	EventStart      *time.Time `json:"eventstart,omitempty"`
	PotentialProfit float64    `json:"potential_profit"`
	SubmittedAt     time.Time  `json:"submitted_at"`
}

// SlipError lists the fields that stopped a submission
type SlipError struct {
	Missing []string
	Invalid []string
}

func (e *SlipError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid "+strings.Join(e.Invalid, ", "))
	}
	return "bet slip rejected: " + strings.Join(parts, "; ")
}

func (e *SlipError) add(field, tag string) {
	if tag == "required" {
		e.Missing = append(e.Missing, field)
		return
	}
	e.Invalid = append(e.Invalid, field)
}

func (e *SlipError) empty() bool {
	return len(e.Missing) == 0 && len(e.Invalid) == 0
}

// SlipValidator validates bet submissions
type SlipValidator struct {
	validator *validator.Validate
	now       func() time.Time
}

// NewSlipValidator creates a validator that reports fields by their form names
func NewSlipValidator() *SlipValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("form")
	})
	v.RegisterValidation("bettype", func(fl validator.FieldLevel) bool {
		for _, t := range BetTypes {
			if strings.EqualFold(t, fl.Field().String()) {
				return true
			}
		}
		return false
	})
	return &SlipValidator{validator: v, now: time.Now}
}

// Validate checks a submission and builds the slip. It returns a *SlipError when fields
// are missing or malformed.
func (sv *SlipValidator) Validate(form SlipForm) (*BetSlip, error) {
	slipErr := &SlipError{}

	if err := sv.validator.Struct(form); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return nil, fmt.Errorf("validation failed: %w", err)
		}
		for _, fe := range validationErrors {
			slipErr.add(fe.Field(), fe.Tag())
		}
		return nil, slipErr
	}

	odds, _ := strconv.ParseFloat(form.Odds, 64)
	prob, _ := strconv.ParseFloat(form.Prob, 64)
	stake, _ := strconv.ParseFloat(form.Stake, 64)

	if odds <= 1 {
		slipErr.add("odds", "gt")
	}
	if prob <= 0 || prob >= 1 {
		slipErr.add("prob", "range")
	}
	if stake <= 0 {
		slipErr.add("stake", "gt")
	}

	var eventStart *time.Time
	if form.EventStart != "" {
		ts, err := parseEventStart(form.EventStart)
		if err != nil {
			slipErr.add("eventstart", "datetime")
		} else {
			eventStart = &ts
		}
	}

	if !slipErr.empty() {
		return nil, slipErr
	}

	return &BetSlip{
		ID:              uuid.New(),
		Name:            form.Name,
		Odds:            odds,
		Prob:            prob,
		Stake:           stake,
		Sport:           form.Sport,
		BetType:         canonicalBetType(form.BetType),
		EventStart:      eventStart,
		PotentialProfit: potentialProfit(stake, odds),
		SubmittedAt:     sv.now().UTC(),
	}, nil
}

func parseEventStart(s string) (time.Time, error) {
	if ts, err := time.Parse(eventStartLayout, s); err == nil {
		return ts, nil
	}
	return time.Parse(time.RFC3339, s)
}

func canonicalBetType(s string) string {
	for _, t := range BetTypes {
		if strings.EqualFold(t, s) {
			return t
		}
	}
	return DefaultBetType
}

// potentialProfit is stake*(odds-1) rounded to cents
func potentialProfit(stake, odds float64) float64 {
	profit := decimal.NewFromFloat(stake).Mul(decimal.NewFromFloat(odds).Sub(decimal.NewFromInt(1)))
	f, _ := profit.Round(2).Float64()
	return f
}
