package empirical

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/XavierBriggs/fortuna/services/stake-calculator/internal/metrics"
	"github.com/XavierBriggs/fortuna/services/stake-calculator/pkg/models"
)

// ErrUnavailable is returned when the remote empirical endpoint cannot be reached
var ErrUnavailable = errors.New("empirical service unavailable")

// ClientConfig holds configuration for the remote empirical client
type ClientConfig struct {
	URL          string // Full endpoint URL, e.g. http://host:8084/api/empirical_info
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	RateLimit    float64 // requests per second
}

// Client queries a remote empirical info endpoint
type Client struct {
	client  *retryablehttp.Client
	limiter *rate.Limiter
	url     string
	logger  *logrus.Logger
}

// NewClient creates a new empirical client
func NewClient(cfg ClientConfig, logger *logrus.Logger) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.RetryMax = cfg.RetryMax
	if cfg.RetryWaitMin > 0 {
		retryClient.RetryWaitMin = cfg.RetryWaitMin
	}
	if cfg.RetryWaitMax > 0 {
		retryClient.RetryWaitMax = cfg.RetryWaitMax
	}
	retryClient.CheckRetry = retryPolicy
	retryClient.Logger = nil

	limit := rate.Limit(cfg.RateLimit)
	if cfg.RateLimit <= 0 {
		limit = rate.Inf
	}

	return &Client{
		client:  retryClient,
		limiter: rate.NewLimiter(limit, 1),
		url:     cfg.URL,
		logger:  logger,
	}
}

// Info posts the query to the remote endpoint
func (c *Client) Info(ctx context.Context, q Query) (*models.EmpiricalInfo, error) {
	start := time.Now()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	body, err := json.Marshal(models.EmpiricalRequest{
		Sport:   q.Sport,
		BetType: q.BetType,
		Prob:    models.NumericString(strconv.FormatFloat(q.Prob, 'f', -1, 64)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.RecordEmpiricalLookup("remote", "network", time.Since(start))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		metrics.RecordEmpiricalLookup("remote", "http_error", time.Since(start))
		return nil, fmt.Errorf("empirical request failed with status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var info models.EmpiricalInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		metrics.RecordEmpiricalLookup("remote", "decode", time.Since(start))
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"sport":    q.Sport,
		"bet_type": q.BetType,
		"duration": time.Since(start),
	}).Debug("Empirical info fetched")

	metrics.RecordEmpiricalLookup("remote", "ok", time.Since(start))
	return &info, nil
}

// Close releases idle connections
func (c *Client) Close() {
	c.client.HTTPClient.CloseIdleConnections()
}

// retryPolicy retries network errors, 429 and 5xx, and never a cancelled request
func retryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return true, err
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return true, nil
	}
	return false, nil
}
