package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordStakeCalculation(t *testing.T) {
	before := testutil.ToFloat64(StakeCalculationsTotal.WithLabelValues("no_bet", "negative_edge"))
	RecordStakeCalculation("no_bet", "negative_edge")
	after := testutil.ToFloat64(StakeCalculationsTotal.WithLabelValues("no_bet", "negative_edge"))
	assert.Equal(t, before+1, after)

	before = testutil.ToFloat64(StakeCalculationsTotal.WithLabelValues("recommended", "none"))
	RecordStakeCalculation("recommended", "")
	assert.Equal(t, before+1, testutil.ToFloat64(StakeCalculationsTotal.WithLabelValues("recommended", "none")))
}

func TestRecordFlags(t *testing.T) {
	before := testutil.ToFloat64(BetSlipsTotal.WithLabelValues("rejected"))
	RecordBetSlip(false)
	assert.Equal(t, before+1, testutil.ToFloat64(BetSlipsTotal.WithLabelValues("rejected")))

	before = testutil.ToFloat64(EmpiricalCacheTotal.WithLabelValues("hit"))
	RecordCache(true)
	assert.Equal(t, before+1, testutil.ToFloat64(EmpiricalCacheTotal.WithLabelValues("hit")))

	before = testutil.ToFloat64(OddsConversionsTotal.WithLabelValues("invalid"))
	RecordOddsConversion(false)
	assert.Equal(t, before+1, testutil.ToFloat64(OddsConversionsTotal.WithLabelValues("invalid")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	RecordEmpiricalLookup("local", "ok", 5*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "stake_calculator_empirical_lookups_total")
	assert.Contains(t, rec.Body.String(), "stake_calculator_empirical_lookup_duration_seconds")
}
