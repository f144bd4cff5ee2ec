package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func scrape(m *Metrics) string {
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return rec.Body.String()
}

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()
	m.IncRequest("/api/ask")
	m.IncRequest("/api/ask")
	m.IncRequest("/api/vapi/webhook")
	m.IncAnswer()
	m.IncFailure("retrieve")
	m.IncRejected()

	body := scrape(m)
	for _, want := range []string{
		`support_requests_total{route="/api/ask"} 2`,
		`support_requests_total{route="/api/vapi/webhook"} 1`,
		`support_answers_total 1`,
		`support_pipeline_failures_total{stage="retrieve"} 1`,
		`support_rejected_requests_total 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in exposition:\n%s", want, body)
		}
	}
}

func TestMetrics_InFlight(t *testing.T) {
	m := NewMetrics()

	done := m.RequestStarted()
	if body := scrape(m); !strings.Contains(body, "support_requests_in_flight 1") {
		t.Errorf("expected one request in flight:\n%s", body)
	}

	done()
	body := scrape(m)
	if !strings.Contains(body, "support_requests_in_flight 0") {
		t.Errorf("expected zero requests in flight:\n%s", body)
	}
	if !strings.Contains(body, "support_answer_duration_seconds_count 1") {
		t.Errorf("expected one latency observation:\n%s", body)
	}
	// A sub-second test observation lands in every default bucket.
	if !strings.Contains(body, `support_answer_duration_seconds_bucket{le="30"} 1`) {
		t.Errorf("expected observation in the widest bucket:\n%s", body)
	}
	if !strings.Contains(body, `support_answer_duration_seconds_bucket{le="+Inf"} 1`) {
		t.Errorf("expected observation in the +Inf bucket:\n%s", body)
	}
}

func TestMetrics_ExpositionFormat(t *testing.T) {
	m := NewMetrics()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("unexpected content type %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "# TYPE support_answer_duration_seconds histogram") {
		t.Errorf("expected histogram TYPE line:\n%s", rec.Body.String())
	}
}
