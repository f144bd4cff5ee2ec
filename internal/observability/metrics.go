package observability

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"
)

// Metrics collects the service's request and pipeline counters. Exposition is
// Prometheus text format without pulling in a client library.
type Metrics struct {
	mu sync.Mutex

	requestsTotal  map[string]float64 // by route
	answersTotal   float64
	failuresTotal  map[string]float64 // by pipeline stage
	rejectedTotal  float64            // client-input errors, never hit the pipeline
	inFlight       float64
	latencyBuckets []float64
	latencyCounts  []uint64
	latencySum     float64
	latencyCount   uint64
}

// NewMetrics creates a Metrics collector with default latency buckets.
func NewMetrics() *Metrics {
	buckets := []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}
	return &Metrics{
		requestsTotal:  make(map[string]float64),
		failuresTotal:  make(map[string]float64),
		latencyBuckets: buckets,
		latencyCounts:  make([]uint64, len(buckets)),
	}
}

// IncRequest counts an inbound request on the given route.
func (m *Metrics) IncRequest(route string) {
	m.mu.Lock()
	m.requestsTotal[route]++
	m.mu.Unlock()
}

// IncAnswer counts a successfully produced answer.
func (m *Metrics) IncAnswer() {
	m.mu.Lock()
	m.answersTotal++
	m.mu.Unlock()
}

// IncFailure counts a pipeline failure by stage.
func (m *Metrics) IncFailure(stage string) {
	m.mu.Lock()
	m.failuresTotal[stage]++
	m.mu.Unlock()
}

// IncRejected counts a request rejected before reaching the pipeline.
func (m *Metrics) IncRejected() {
	m.mu.Lock()
	m.rejectedTotal++
	m.mu.Unlock()
}

// RequestStarted marks a request in flight; the returned func ends it and
// records the answer latency.
func (m *Metrics) RequestStarted() func() {
	m.mu.Lock()
	m.inFlight++
	m.mu.Unlock()

	start := time.Now()
	return func() {
		elapsed := time.Since(start).Seconds()
		m.mu.Lock()
		m.inFlight--
		m.latencySum += elapsed
		m.latencyCount++
		for i, bound := range m.latencyBuckets {
			if elapsed <= bound {
				m.latencyCounts[i]++
			}
		}
		m.mu.Unlock()
	}
}

// Handler returns an HTTP handler exposing the metrics.
func (m *Metrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		m.write(w)
	})
}

func (m *Metrics) write(w io.Writer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fmt.Fprintln(w, "# TYPE support_requests_total counter")
	for _, route := range sortedKeys(m.requestsTotal) {
		fmt.Fprintf(w, "support_requests_total{route=%q} %g\n", route, m.requestsTotal[route])
	}

	fmt.Fprintln(w, "# TYPE support_answers_total counter")
	fmt.Fprintf(w, "support_answers_total %g\n", m.answersTotal)

	fmt.Fprintln(w, "# TYPE support_pipeline_failures_total counter")
	for _, stage := range sortedKeys(m.failuresTotal) {
		fmt.Fprintf(w, "support_pipeline_failures_total{stage=%q} %g\n", stage, m.failuresTotal[stage])
	}

	fmt.Fprintln(w, "# TYPE support_rejected_requests_total counter")
	fmt.Fprintf(w, "support_rejected_requests_total %g\n", m.rejectedTotal)

	fmt.Fprintln(w, "# TYPE support_requests_in_flight gauge")
	fmt.Fprintf(w, "support_requests_in_flight %g\n", m.inFlight)

	fmt.Fprintln(w, "# TYPE support_answer_duration_seconds histogram")
	// latencyCounts is already cumulative: an observation lands in every
	// bucket whose bound it fits under.
	for i, bound := range m.latencyBuckets {
		fmt.Fprintf(w, "support_answer_duration_seconds_bucket{le=%q} %d\n", fmt.Sprintf("%g", bound), m.latencyCounts[i])
	}
	fmt.Fprintf(w, "support_answer_duration_seconds_bucket{le=\"+Inf\"} %d\n", m.latencyCount)
	fmt.Fprintf(w, "support_answer_duration_seconds_sum %g\n", m.latencySum)
	fmt.Fprintf(w, "support_answer_duration_seconds_count %d\n", m.latencyCount)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
