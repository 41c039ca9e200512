package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/XavierBriggs/fortuna/services/stake-calculator/internal/calculator"
	"github.com/XavierBriggs/fortuna/services/stake-calculator/internal/empirical"
	"github.com/XavierBriggs/fortuna/services/stake-calculator/internal/view"
)

type quoteOptions struct {
	American     string
	Prob         float64
	Bankroll     float64
	CapFraction  float64
	Sport        string
	BetType      string
	EmpiricalURL string
}

var quoteOpts quoteOptions

func init() {
	f := quoteCmd.Flags()
	f.StringVar(&quoteOpts.American, "odds", "", "American odds, e.g. -150 or +200")
	f.Float64Var(&quoteOpts.Prob, "prob", 0, "Estimated win probability (0-1)")
	f.Float64Var(&quoteOpts.Bankroll, "bankroll", 0, "Bankroll (default from config)")
	f.Float64Var(&quoteOpts.CapFraction, "cap", 0, "Maximum share of bankroll per bet (default from config)")
	f.StringVar(&quoteOpts.Sport, "sport", "", "Sport, enables the empirical adjustment")
	f.StringVar(&quoteOpts.BetType, "bet-type", "", "Bet type, enables the empirical adjustment")
	f.StringVar(&quoteOpts.EmpiricalURL, "empirical-url", "", "Remote empirical info endpoint")
	_ = quoteCmd.MarkFlagRequired("odds")
	_ = quoteCmd.MarkFlagRequired("prob")
}

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Print the recommended stake for one bet",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults := defaultsFrom(cfg)
		if cmd.Flags().Changed("bankroll") {
			defaults.Bankroll = quoteOpts.Bankroll
		}
		if cmd.Flags().Changed("cap") {
			defaults.CapFraction = quoteOpts.CapFraction
		}

		var source empirical.Source
		if quoteOpts.Sport != "" || quoteOpts.BetType != "" {
			empCfg := cfg.Empirical
			if quoteOpts.EmpiricalURL != "" {
				empCfg.RemoteURL = quoteOpts.EmpiricalURL
			}
			src, closeSource, err := newSource(empCfg, log)
			if err != nil {
				return err
			}
			defer closeSource()
			source = src
		}

		return runQuote(cmd.Context(), cmd.OutOrStdout(), quoteOpts, defaults, source)
	},
}

// runQuote writes a stake quote to out. A nil source skips the empirical adjustment.
func runQuote(ctx context.Context, out io.Writer, opts quoteOptions, defaults view.Defaults, source empirical.Source) error {
	american, err := strconv.ParseFloat(strings.TrimSpace(opts.American), 64)
	if err != nil {
		return fmt.Errorf("odds must be a number: %w", err)
	}
	decimalOdds, err := calculator.AmericanToDecimal(american)
	if err != nil {
		return err
	}
	implied, _ := calculator.ImpliedProbability(decimalOdds)

	fmt.Fprintf(out, "Decimal odds:      %.4f\n", decimalOdds)
	fmt.Fprintf(out, "Implied prob:      %.3f\n", implied)

	prob := opts.Prob
	if source != nil {
		info, err := source.Info(ctx, empirical.Query{Sport: opts.Sport, BetType: opts.BetType, Prob: prob})
		if err != nil {
			fmt.Fprintf(out, "Empirical:         unavailable (%v)\n", err)
		} else {
			d := view.FormatEmpirical(info)
			fmt.Fprintf(out, "Empirical:         %s over %s bets, alpha %s\n", d.Empirical, d.MatchingCount, d.Alpha)
			prob = info.Adjusted
		}
	}
	fmt.Fprintf(out, "Probability used:  %.3f\n", prob)

	rec := calculator.RecommendStake(calculator.KellyRequest{
		Bankroll:       defaults.Bankroll,
		CapFraction:    defaults.CapFraction,
		DecimalOdds:    decimalOdds,
		WinProbability: prob,
		MinStake:       defaults.MinStake,
	})
	if !rec.IsBet() {
		fmt.Fprintf(out, "Stake:             %s (%s)\n", view.NoBetLabel, rec.Reason)
		return nil
	}
	fmt.Fprintf(out, "Kelly fraction:    %.4f\n", rec.KellyFraction)
	fmt.Fprintf(out, "Stake:             %.2f\n", rec.Amount)
	return nil
}
