package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordStatusTransition(t *testing.T) {
	before := testutil.ToFloat64(statusTransitions.WithLabelValues("Pending", "Approved"))
	RecordStatusTransition("Pending", "Approved")
	after := testutil.ToFloat64(statusTransitions.WithLabelValues("Pending", "Approved"))
	assert.Equal(t, before+1, after)
}

func TestRequestStartedRecordsRequest(t *testing.T) {
	done := RequestStarted()
	assert.Equal(t, float64(1), testutil.ToFloat64(httpInFlight))
	done(http.MethodGet, "/api/v1/scholarships", http.StatusOK)

	assert.Equal(t, float64(0), testutil.ToFloat64(httpInFlight))
	assert.Equal(t, float64(1), testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/v1/scholarships", "200")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	RecordUpload("stored")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "scholarhub_requirements_uploads_total")
}
