package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_RouteLabelsAndUnmatched(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.GET("/contents/:id", func(c *gin.Context) { c.String(http.StatusOK, "hello") })

	baseOK := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/contents/:id", "200"))
	base404 := testutil.ToFloat64(httpReqs.WithLabelValues("GET", unmatchedRoute, "404"))

	serve(r, httptest.NewRequest(http.MethodGet, "/contents/1", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/contents/2", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/nope/123", nil))

	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/contents/:id", "200")); got != baseOK+2 {
		t.Fatalf("route counter = %v, want %v", got, baseOK+2)
	}
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", unmatchedRoute, "404")); got != base404+1 {
		t.Fatalf("unmatched counter = %v, want %v", got, base404+1)
	}
	if n := testutil.CollectAndCount(httpLat, "http_request_duration_seconds"); n == 0 {
		t.Fatal("latency histogram empty")
	}
	if got := testutil.ToFloat64(httpInflight); got != 0 {
		t.Fatalf("inflight = %v after requests", got)
	}
}

func TestStreamOpened(t *testing.T) {
	open := testutil.ToFloat64(sseStreams)
	done := testutil.ToFloat64(sseOutcomes.WithLabelValues("done"))

	end := StreamOpened()
	if got := testutil.ToFloat64(sseStreams); got != open+1 {
		t.Fatalf("open streams = %v", got)
	}
	end("done")
	if got := testutil.ToFloat64(sseStreams); got != open {
		t.Fatalf("open streams after end = %v", got)
	}
	if got := testutil.ToFloat64(sseOutcomes.WithLabelValues("done")); got != done+1 {
		t.Fatalf("done outcomes = %v", got)
	}
}
