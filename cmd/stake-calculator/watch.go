package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/XavierBriggs/fortuna/services/stake-calculator/internal/empirical"
	"github.com/XavierBriggs/fortuna/services/stake-calculator/internal/view"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Recompute the stake for each line read from stdin",
	Long: `Each input line is "american_odds probability [sport [bet_type]]". The derived
stake is printed at once; empirical info for lines naming a sport or bet type is
printed when it resolves, unless a newer line has replaced it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		source, closeSource, err := newSource(cfg.Empirical, log)
		if err != nil {
			return err
		}
		defer closeSource()

		return runWatch(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), defaultsFrom(cfg), empirical.NewTracker(source))
	},
}

// runWatch treats every line as a new form state. Stale empirical replies are dropped.
func runWatch(ctx context.Context, in io.Reader, out io.Writer, defaults view.Defaults, tracker *empirical.Tracker) error {
	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		seq uint64
	)
	printf := func(format string, args ...interface{}) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(out, format, args...)
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		seq++

		state := view.ViewState{AmericanOdds: fields[0], Seq: seq}
		if len(fields) > 1 {
			state.Probability = fields[1]
		}
		if len(fields) > 2 {
			state.Sport = fields[2]
		}
		if len(fields) > 3 {
			state.BetType = strings.Join(fields[3:], " ")
		}

		d := view.Derive(state, defaults)
		printf("[%d] decimal=%s stake=%s\n", d.Seq, d.DecimalOdds, d.Stake)

		prob, ok := parseProb(state.Probability)
		if !ok || (state.Sport == "" && state.BetType == "") {
			// The newest state has no empirical query; drop any reply still in flight
			tracker.Invalidate()
			continue
		}

		// Numbers are issued in line order; only the wait runs concurrently
		lookupSeq, lookupCtx := tracker.Issue(ctx)
		q := empirical.Query{Sport: state.Sport, BetType: state.BetType, Prob: prob}

		wg.Add(1)
		go func(line uint64) {
			defer wg.Done()
			info, err := tracker.Resolve(lookupCtx, lookupSeq, q)
			switch {
			case errors.Is(err, empirical.ErrSuperseded):
				return
			case err != nil:
				printf("[%d] empirical unavailable: %v\n", line, err)
			default:
				e := view.FormatEmpirical(info)
				printf("[%d] empirical=%s adjusted=%s matching=%s\n", line, e.Empirical, e.Adjusted, e.MatchingCount)
			}
		}(seq)
	}

	wg.Wait()
	return scanner.Err()
}

func parseProb(s string) (float64, bool) {
	p, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return p, true
}
