// metrics/metrics.go
package metrics

import (
	"net/http"

	"github.com/dalemusser/libgate/entry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Recorder owns a private registry with the gate's counters and the HTTP
// client instrumentation. It implements entry.Observer.
type Recorder struct {
	reg *prometheus.Registry

	submissions *prometheus.CounterVec
	librarian   prometheus.Counter

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New builds a Recorder. withRuntime adds the Go and process collectors,
// which tests leave off to keep output deterministic.
func New(withRuntime bool) *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "libgate_submissions_total",
			Help: "Patron email submissions by result.",
		}, []string{"result"}),
		librarian: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "libgate_librarian_entries_total",
			Help: "Librarian mode activations.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "libgate_http_requests_total",
			Help: "Outgoing HTTP requests by status code and method.",
		}, []string{"code", "method"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "libgate_http_request_duration_seconds",
			Help: "Duration of outgoing HTTP requests, including redirect hops.",
			// buckets in seconds
			Buckets: []float64{0.01, 0.1, 0.3, 1.2, 5},
		}, []string{"code", "method"}),
	}

	r.reg.MustRegister(r.submissions, r.librarian, r.requests, r.duration)
	if withRuntime {
		r.reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return r
}

// ObserveSubmission counts one finished patron submission.
func (r *Recorder) ObserveSubmission(res entry.Result) {
	r.submissions.WithLabelValues(string(res)).Inc()
}

// ObserveLibrarianEntry counts one librarian activation.
func (r *Recorder) ObserveLibrarianEntry() {
	r.librarian.Inc()
}

// InstrumentTransport wraps next (http.DefaultTransport when nil) with
// request counting and latency.
func (r *Recorder) InstrumentTransport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return promhttp.InstrumentRoundTripperCounter(r.requests,
		promhttp.InstrumentRoundTripperDuration(r.duration, next))
}

// WriteTextfile writes all metrics to path in Prometheus text format, for
// pickup by a node_exporter textfile collector. Empty path is a no-op.
func (r *Recorder) WriteTextfile(path string, logger *zap.Logger) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return err
	}
	if logger != nil {
		logger.Info("metrics written", zap.String("file", path))
	}
	return nil
}

var _ entry.Observer = (*Recorder)(nil)
