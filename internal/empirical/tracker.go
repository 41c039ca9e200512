package empirical

import (
	"context"
	"errors"
	"sync"

	"github.com/XavierBriggs/fortuna/services/stake-calculator/internal/metrics"
	"github.com/XavierBriggs/fortuna/services/stake-calculator/pkg/models"
)

// ErrSuperseded is returned for a lookup whose result arrived after a newer lookup was issued
var ErrSuperseded = errors.New("empirical lookup superseded by a newer query")

// Tracker applies only the most recently issued lookup. Issuing a lookup cancels the one in flight.
type Tracker struct {
	source Source

	mu         sync.Mutex
	issued     uint64
	cancel     context.CancelFunc
	current    *models.EmpiricalInfo
	currentSeq uint64
}

// NewTracker creates a tracker over source
func NewTracker(source Source) *Tracker {
	return &Tracker{source: source}
}

// Lookup issues a new query and resolves it. It returns the info and its sequence number when
// it is still the latest query once it resolves. Failed or superseded lookups leave Current unchanged.
func (t *Tracker) Lookup(ctx context.Context, q Query) (*models.EmpiricalInfo, uint64, error) {
	seq, ctx := t.Issue(ctx)
	info, err := t.Resolve(ctx, seq, q)
	return info, seq, err
}

// Issue reserves the next sequence number and cancels the lookup in flight. The returned
// context is cancelled once a newer number is issued. Callers that order queries themselves
// must call Issue in that order and may Resolve concurrently.
func (t *Tracker) Issue(ctx context.Context) (uint64, context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.issued++
	if t.cancel != nil {
		t.cancel()
	}
	ctx, t.cancel = context.WithCancel(ctx)
	return t.issued, ctx
}

// Invalidate supersedes every outstanding lookup without issuing a query
func (t *Tracker) Invalidate() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.issued++
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	return t.issued
}

// Resolve runs the query for an issued sequence number. It returns ErrSuperseded when a
// newer number was issued before the source answered.
func (t *Tracker) Resolve(ctx context.Context, seq uint64, q Query) (*models.EmpiricalInfo, error) {
	info, err := t.source.Info(ctx, q)

	t.mu.Lock()
	defer t.mu.Unlock()

	if seq != t.issued {
		metrics.EmpiricalLookupsTotal.WithLabelValues("tracker", "stale").Inc()
		return nil, ErrSuperseded
	}

	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}

	if err != nil {
		return nil, err
	}

	t.current = info
	t.currentSeq = seq
	return info, nil
}

// Current returns the last applied info and its sequence number
func (t *Tracker) Current() (*models.EmpiricalInfo, uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current, t.currentSeq
}

// Issued returns the sequence number of the latest issued lookup
func (t *Tracker) Issued() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.issued
}
