package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObservePaste(t *testing.T) {
	parsed := testutil.ToFloat64(PasteRowsParsed)
	dropped := testutil.ToFloat64(PasteRowsDropped)
	headers := testutil.ToFloat64(PasteHeadersSkipped)

	ObservePaste(3, 1, true)
	ObservePaste(2, 0, false)

	assert.Equal(t, parsed+5, testutil.ToFloat64(PasteRowsParsed))
	assert.Equal(t, dropped+1, testutil.ToFloat64(PasteRowsDropped))
	assert.Equal(t, headers+1, testutil.ToFloat64(PasteHeadersSkipped))
}

func TestObserveTracker(t *testing.T) {
	ok := TrackerRequests.WithLabelValues("list_cases", "ok")
	before := testutil.ToFloat64(ok)

	ObserveTracker("list_cases", "ok", 120*time.Millisecond)
	ObserveTracker("list_cases", "http_404", 5*time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(ok))
	assert.Equal(t, 1.0, testutil.ToFloat64(TrackerRequests.WithLabelValues("list_cases", "http_404")))
	assert.Equal(t, 1, testutil.CollectAndCount(TrackerRequestDuration, "casedesk_tracker_request_duration_seconds"))
}
