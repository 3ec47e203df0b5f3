package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	m := New()

	m.CacheLookup(CacheHit)
	m.CacheLookup(CacheHit)
	m.CacheLookup(CacheMiss)
	m.UpstreamFetch(FetchSuccess)
	m.SessionRequest(RequestOK)
	m.SessionsReturned(3)

	if got := testutil.ToFloat64(m.CacheLookups.WithLabelValues(CacheHit)); got != 2 {
		t.Errorf("Expected 2 cache hits, got %v", got)
	}
	if got := testutil.ToFloat64(m.CacheLookups.WithLabelValues(CacheMiss)); got != 1 {
		t.Errorf("Expected 1 cache miss, got %v", got)
	}
	if got := testutil.ToFloat64(m.UpstreamFetches.WithLabelValues(FetchSuccess)); got != 1 {
		t.Errorf("Expected 1 upstream fetch, got %v", got)
	}
	if got := testutil.ToFloat64(m.SessionRequests.WithLabelValues(RequestOK)); got != 1 {
		t.Errorf("Expected 1 ok request, got %v", got)
	}
	if got := testutil.CollectAndCount(m.SessionsServed); got != 1 {
		t.Errorf("Expected sessions histogram to be collected, got %d", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.UpstreamFetch(FetchError)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `ims_sessions_upstream_fetches_total{result="error"} 1`) {
		t.Errorf("Expected upstream fetch counter in exposition, got:\n%s", body)
	}
}
