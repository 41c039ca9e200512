package empirical

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XavierBriggs/fortuna/services/stake-calculator/internal/logger"
)

func newTestClient(url string, retryMax int) *Client {
	return NewClient(ClientConfig{
		URL:          url,
		Timeout:      2 * time.Second,
		RetryMax:     retryMax,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: 5 * time.Millisecond,
	}, logger.Discard())
}

func TestClientInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		// prob travels as a string
		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "NBA", req["sport"])
		assert.Equal(t, "Spread", req["bet_type"])
		assert.Equal(t, "0.55", req["prob"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"empirical":0.5,"adjusted":0.53,"alpha":0.6,"matching_count":12}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0)
	defer client.Close()

	info, err := client.Info(context.Background(), Query{Sport: "NBA", BetType: "Spread", Prob: 0.55})
	require.NoError(t, err)
	require.NotNil(t, info.Empirical)
	assert.Equal(t, 0.5, *info.Empirical)
	assert.Equal(t, 0.53, info.Adjusted)
	assert.Equal(t, 12, info.MatchingCount)
}

func TestClientNullEmpirical(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"empirical":null,"adjusted":0.6,"alpha":0.6,"matching_count":0}`))
	}))
	defer server.Close()

	info, err := newTestClient(server.URL, 0).Info(context.Background(), Query{Prob: 0.6})
	require.NoError(t, err)
	assert.Nil(t, info.Empirical)
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"empirical":0.4,"adjusted":0.5,"alpha":0.6,"matching_count":3}`))
	}))
	defer server.Close()

	info, err := newTestClient(server.URL, 2).Info(context.Background(), Query{Prob: 0.5})
	require.NoError(t, err)
	assert.Equal(t, 3, info.MatchingCount)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClientNoRetryByDefault(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, 0).Info(context.Background(), Query{Prob: 0.5})
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClientClientError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid prob"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, 3).Info(context.Background(), Query{Prob: 0.5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Contains(t, err.Error(), "invalid prob")
}

func TestClientUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := newTestClient(url, 0).Info(context.Background(), Query{Prob: 0.5})
	assert.ErrorIs(t, err, ErrUnavailable)
}
