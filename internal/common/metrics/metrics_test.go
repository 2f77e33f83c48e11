package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/cars/:id", "404"))

	ObserveRequest("GET", "/api/cars/:id", 404, 15*time.Millisecond)

	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/cars/:id", "404"))
	assert.Equal(t, before+1, after)
	assert.Equal(t, 1, testutil.CollectAndCount(HTTPRequestDuration, "http_request_duration_seconds"))
}
