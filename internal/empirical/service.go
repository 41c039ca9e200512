// Package empirical adjusts a user's win probability with settled-bet history and
// provides the client side of the empirical info endpoint.
package empirical

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/XavierBriggs/fortuna/services/stake-calculator/internal/metrics"
	"github.com/XavierBriggs/fortuna/services/stake-calculator/pkg/models"
)

// ErrInvalidProbability is returned for probabilities outside [0, 1]
var ErrInvalidProbability = errors.New("probability must be between 0 and 1")

// Query asks for the empirical adjustment of one probability estimate
type Query struct {
	Sport   string
	BetType string
	Prob    float64
}

// Source answers empirical info queries
type Source interface {
	Info(ctx context.Context, q Query) (*models.EmpiricalInfo, error)
}

// Service computes empirical info from a local History
type Service struct {
	history History
	params  Params
	cache   *cache.Cache
	ttl     time.Duration
	now     func() time.Time
	logger  *logrus.Logger
}

// NewService creates a service. A ttl of zero disables the summary cache.
func NewService(history History, params Params, ttl time.Duration, logger *logrus.Logger) *Service {
	s := &Service{
		history: history,
		params:  params,
		ttl:     ttl,
		now:     time.Now,
		logger:  logger,
	}
	if ttl > 0 {
		s.cache = cache.New(ttl, ttl*2)
	}
	return s
}

// Params returns the blending parameters in use
func (s *Service) Params() Params {
	return s.params
}

// Info blends q.Prob with the recency-weighted win rate of matching settled bets
func (s *Service) Info(ctx context.Context, q Query) (*models.EmpiricalInfo, error) {
	start := time.Now()

	if math.IsNaN(q.Prob) || q.Prob < 0 || q.Prob > 1 {
		metrics.RecordEmpiricalLookup("local", "invalid", time.Since(start))
		return nil, fmt.Errorf("%w: %v", ErrInvalidProbability, q.Prob)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summary := s.summary(q.Sport, q.BetType)
	info := &models.EmpiricalInfo{
		Adjusted:      s.params.Adjust(q.Prob, summary),
		Alpha:         s.params.Alpha,
		MatchingCount: summary.Count,
	}
	if empirical, ok := summary.Empirical(); ok {
		info.Empirical = &empirical
	}

	s.logger.WithFields(logrus.Fields{
		"sport":          q.Sport,
		"bet_type":       q.BetType,
		"prob":           q.Prob,
		"adjusted":       info.Adjusted,
		"matching_count": summary.Count,
		"net_profit":     summary.NetProfit,
	}).Debug("Empirical info computed")

	metrics.RecordEmpiricalLookup("local", "ok", time.Since(start))
	return info, nil
}

func (s *Service) summary(sport, betType string) Summary {
	key := normalize(sport) + "|" + normalize(betType)

	if s.cache != nil {
		if cached, found := s.cache.Get(key); found {
			if summary, ok := cached.(Summary); ok {
				metrics.RecordCache(true)
				return summary
			}
		}
		metrics.RecordCache(false)
	}

	summary := Summarize(s.history.Matching(sport, betType), s.now(), s.params.TauDays)
	if s.cache != nil {
		s.cache.Set(key, summary, s.ttl)
	}
	return summary
}
