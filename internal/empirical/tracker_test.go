package empirical

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XavierBriggs/fortuna/services/stake-calculator/pkg/models"
)

// gatedSource blocks each query until its gate is released. Queries are keyed by BetType.
type gatedSource struct {
	started chan string
	gates   map[string]chan struct{}
	// ignoreCancel makes the source answer even after its context is cancelled
	ignoreCancel bool
	fail         map[string]error
}

func newGatedSource(keys ...string) *gatedSource {
	s := &gatedSource{
		started: make(chan string, len(keys)),
		gates:   make(map[string]chan struct{}),
		fail:    make(map[string]error),
	}
	for _, k := range keys {
		s.gates[k] = make(chan struct{})
	}
	return s
}

func (s *gatedSource) Info(ctx context.Context, q Query) (*models.EmpiricalInfo, error) {
	s.started <- q.BetType
	gate := s.gates[q.BetType]
	if s.ignoreCancel {
		<-gate
	} else {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := s.fail[q.BetType]; err != nil {
		return nil, err
	}
	return &models.EmpiricalInfo{Adjusted: q.Prob, MatchingCount: len(q.BetType)}, nil
}

type lookupResult struct {
	info *models.EmpiricalInfo
	seq  uint64
	err  error
}

func lookupAsync(tr *Tracker, q Query) <-chan lookupResult {
	out := make(chan lookupResult, 1)
	go func() {
		info, seq, err := tr.Lookup(context.Background(), q)
		out <- lookupResult{info, seq, err}
	}()
	return out
}

func TestTrackerAppliesLatest(t *testing.T) {
	src := newGatedSource("a")
	tr := NewTracker(src)

	close(src.gates["a"])
	info, seq, err := tr.Lookup(context.Background(), Query{BetType: "a", Prob: 0.6})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), seq)
	assert.Equal(t, 0.6, info.Adjusted)

	current, currentSeq := tr.Current()
	assert.Same(t, info, current)
	assert.Equal(t, uint64(1), currentSeq)
}

func TestTrackerCancelsSupersededLookup(t *testing.T) {
	src := newGatedSource("first", "second")
	tr := NewTracker(src)

	first := lookupAsync(tr, Query{BetType: "first", Prob: 0.51})
	<-src.started

	second := lookupAsync(tr, Query{BetType: "second", Prob: 0.52})
	<-src.started

	// The first lookup's context is cancelled as soon as the second is issued
	r1 := <-first
	assert.ErrorIs(t, r1.err, ErrSuperseded)
	assert.Equal(t, uint64(1), r1.seq)

	close(src.gates["second"])
	r2 := <-second
	require.NoError(t, r2.err)
	assert.Equal(t, uint64(2), r2.seq)

	current, seq := tr.Current()
	assert.Equal(t, 0.52, current.Adjusted)
	assert.Equal(t, uint64(2), seq)
}

func TestTrackerDiscardsOutOfOrderResponse(t *testing.T) {
	src := newGatedSource("old", "new")
	src.ignoreCancel = true
	tr := NewTracker(src)

	old := lookupAsync(tr, Query{BetType: "old", Prob: 0.51})
	<-src.started
	newer := lookupAsync(tr, Query{BetType: "new", Prob: 0.58})
	<-src.started

	// Newest resolves first, the stale one afterwards
	close(src.gates["new"])
	require.NoError(t, (<-newer).err)

	close(src.gates["old"])
	assert.ErrorIs(t, (<-old).err, ErrSuperseded)

	current, seq := tr.Current()
	assert.Equal(t, 0.58, current.Adjusted)
	assert.Equal(t, uint64(2), seq)
	assert.Equal(t, uint64(2), tr.Issued())
}

func TestTrackerFailureKeepsPreviousValue(t *testing.T) {
	src := newGatedSource("ok", "broken")
	src.fail["broken"] = errors.New("connection refused")
	tr := NewTracker(src)

	close(src.gates["ok"])
	_, _, err := tr.Lookup(context.Background(), Query{BetType: "ok", Prob: 0.6})
	require.NoError(t, err)

	close(src.gates["broken"])
	_, seq, err := tr.Lookup(context.Background(), Query{BetType: "broken", Prob: 0.7})
	assert.Error(t, err)
	assert.Equal(t, uint64(2), seq)

	current, currentSeq := tr.Current()
	assert.Equal(t, 0.6, current.Adjusted)
	assert.Equal(t, uint64(1), currentSeq)
}

func TestTrackerIssueOrderDecidesLatest(t *testing.T) {
	src := newGatedSource("old", "new")
	tr := NewTracker(src)

	oldSeq, oldCtx := tr.Issue(context.Background())
	newSeq, newCtx := tr.Issue(context.Background())
	assert.Less(t, oldSeq, newSeq)
	assert.Error(t, oldCtx.Err(), "issuing a newer number cancels the older context")

	// Resolve the newer one first; the older one's goroutine may start later
	close(src.gates["new"])
	info, err := tr.Resolve(newCtx, newSeq, Query{BetType: "new", Prob: 0.72})
	require.NoError(t, err)
	assert.Equal(t, 0.72, info.Adjusted)

	close(src.gates["old"])
	_, err = tr.Resolve(oldCtx, oldSeq, Query{BetType: "old", Prob: 0.61})
	assert.ErrorIs(t, err, ErrSuperseded)

	current, seq := tr.Current()
	assert.Equal(t, 0.72, current.Adjusted)
	assert.Equal(t, newSeq, seq)
}

func TestTrackerInvalidateDropsInFlight(t *testing.T) {
	src := newGatedSource("a")
	src.ignoreCancel = true
	tr := NewTracker(src)

	pending := lookupAsync(tr, Query{BetType: "a", Prob: 0.6})
	<-src.started

	assert.Equal(t, uint64(2), tr.Invalidate())

	close(src.gates["a"])
	assert.ErrorIs(t, (<-pending).err, ErrSuperseded)

	current, seq := tr.Current()
	assert.Nil(t, current)
	assert.Zero(t, seq)
}
