package empirical

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/XavierBriggs/fortuna/services/stake-calculator/internal/calculator"
)

// Outcome is the result of a settled bet
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
)

// SettledBet is a closed bet with a known outcome
type SettledBet struct {
	Name         string    `yaml:"name"`
	Sport        string    `yaml:"sport"`
	BetType      string    `yaml:"bet_type"`
	Odds         float64   `yaml:"odds"`          // Decimal odds
	AmericanOdds *float64  `yaml:"american_odds"` // Used when odds is absent
	Prob         float64   `yaml:"prob"`
	Stake        float64   `yaml:"stake"`
	Outcome      Outcome   `yaml:"outcome"`
	ClosedAt     time.Time `yaml:"closed_at"`
}

// Won reports whether the bet was a winner
func (b SettledBet) Won() bool {
	return b.Outcome == OutcomeWin
}

// Profit returns the settled profit, stake*(odds-1) on a win and -stake on a loss
func (b SettledBet) Profit() float64 {
	if b.Won() {
		return b.Stake * (b.Odds - 1.0)
	}
	return -b.Stake
}

// History provides settled bets for a sport and bet type
type History interface {
	Matching(sport, betType string) []SettledBet
}

// MemoryHistory is a read-only in-memory History
type MemoryHistory struct {
	bets []SettledBet
}

// NewMemoryHistory creates a history over the given bets
func NewMemoryHistory(bets []SettledBet) *MemoryHistory {
	return &MemoryHistory{bets: bets}
}

// Matching returns bets whose sport and bet type equal the given ones, ignoring case
func (h *MemoryHistory) Matching(sport, betType string) []SettledBet {
	sport, betType = normalize(sport), normalize(betType)

	var out []SettledBet
	for _, b := range h.bets {
		if normalize(b.Sport) == sport && normalize(b.BetType) == betType {
			out = append(out, b)
		}
	}
	return out
}

// Len returns the number of settled bets held
func (h *MemoryHistory) Len() int {
	return len(h.bets)
}

type historyFile struct {
	Bets []SettledBet `yaml:"bets"`
}

// LoadHistory reads a YAML snapshot of settled bets. An empty path yields an empty history.
func LoadHistory(path string) (*MemoryHistory, error) {
	if path == "" {
		return NewMemoryHistory(nil), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	var file historyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse history file: %w", err)
	}

	for i := range file.Bets {
		if err := normalizeBet(&file.Bets[i]); err != nil {
			return nil, fmt.Errorf("history bet %d (%s): %w", i+1, file.Bets[i].Name, err)
		}
	}

	return NewMemoryHistory(file.Bets), nil
}

func normalizeBet(b *SettledBet) error {
	if b.Odds == 0 && b.AmericanOdds != nil {
		decimalOdds, err := calculator.AmericanToDecimal(*b.AmericanOdds)
		if err != nil {
			return err
		}
		b.Odds = decimalOdds
	}
	if b.Odds <= 1.0 {
		return fmt.Errorf("decimal odds must be > 1, got %v", b.Odds)
	}

	// Anything other than an explicit win settles as a loss
	if Outcome(strings.ToLower(string(b.Outcome))) == OutcomeWin {
		b.Outcome = OutcomeWin
	} else {
		b.Outcome = OutcomeLoss
	}
	return nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
