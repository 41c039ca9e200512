package empirical

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XavierBriggs/fortuna/services/stake-calculator/internal/logger"
)

type countingHistory struct {
	*MemoryHistory
	calls int
}

func (h *countingHistory) Matching(sport, betType string) []SettledBet {
	h.calls++
	return h.MemoryHistory.Matching(sport, betType)
}

func newTestService(t *testing.T, ttl time.Duration) (*Service, *countingHistory) {
	t.Helper()

	h, err := LoadHistory("testdata/history.yaml")
	require.NoError(t, err)

	history := &countingHistory{MemoryHistory: h}
	svc := NewService(history, DefaultParams(), ttl, logger.Discard())
	svc.now = func() time.Time { return refNow }
	return svc, history
}

func TestServiceInfo(t *testing.T) {
	svc, _ := newTestService(t, 0)

	info, err := svc.Info(context.Background(), Query{Sport: "NBA", BetType: "Moneyline", Prob: 0.6})
	require.NoError(t, err)

	w1 := math.Exp(-1.0 / 30.0)
	w2 := math.Exp(-31.0 / 30.0)
	empirical := w1 / (w1 + w2)

	require.NotNil(t, info.Empirical)
	assert.InDelta(t, empirical, *info.Empirical, 1e-9)
	assert.InDelta(t, 0.6*0.6+0.4*empirical, info.Adjusted, 1e-9)
	assert.Equal(t, 0.6, info.Alpha)
	assert.Equal(t, 2, info.MatchingCount)
}

func TestServiceInfoWithoutHistory(t *testing.T) {
	svc, _ := newTestService(t, 0)

	info, err := svc.Info(context.Background(), Query{Sport: "NHL", BetType: "Moneyline", Prob: 0.7})
	require.NoError(t, err)

	assert.Nil(t, info.Empirical)
	assert.InDelta(t, 0.7, info.Adjusted, 1e-9)
	assert.Zero(t, info.MatchingCount)
}

func TestServiceInfoInvalidProbability(t *testing.T) {
	svc, _ := newTestService(t, 0)

	for _, p := range []float64{-0.1, 1.2, math.NaN()} {
		_, err := svc.Info(context.Background(), Query{Sport: "NBA", BetType: "Moneyline", Prob: p})
		assert.ErrorIs(t, err, ErrInvalidProbability)
	}
}

func TestServiceCachesSummaries(t *testing.T) {
	svc, history := newTestService(t, time.Minute)
	ctx := context.Background()

	_, err := svc.Info(ctx, Query{Sport: "NBA", BetType: "Moneyline", Prob: 0.6})
	require.NoError(t, err)
	_, err = svc.Info(ctx, Query{Sport: "nba", BetType: "moneyline", Prob: 0.55})
	require.NoError(t, err)
	assert.Equal(t, 1, history.calls)

	_, err = svc.Info(ctx, Query{Sport: "NBA", BetType: "Spread", Prob: 0.55})
	require.NoError(t, err)
	assert.Equal(t, 2, history.calls)
}

func TestServiceCancelledContext(t *testing.T) {
	svc, _ := newTestService(t, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Info(ctx, Query{Sport: "NBA", BetType: "Moneyline", Prob: 0.6})
	assert.ErrorIs(t, err, context.Canceled)
}
