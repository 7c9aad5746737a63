package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Response paths recorded on chat metrics.
const (
	PathDirect  = "direct"
	PathSearch  = "search"
	PathApology = "apology"
)

// ChatMetrics exposes counters/histograms for the chat request flow.
type ChatMetrics struct {
	requestsTotal      *prometheus.CounterVec
	searchTotal        *prometheus.CounterVec
	optimizerFallbacks prometheus.Counter
	upstreamErrors     *prometheus.CounterVec
	framesSkipped      prometheus.Counter
	completionLatency  *prometheus.HistogramVec
}

func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aly",
			Subsystem: "chat",
			Name:      "requests_total",
			Help:      "Chat requests by focus mode and response path",
		}, []string{"focus_mode", "path"}),
		searchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aly",
			Subsystem: "chat",
			Name:      "search_total",
			Help:      "Web search attempts by outcome",
		}, []string{"status"}),
		optimizerFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aly",
			Subsystem: "chat",
			Name:      "optimizer_fallback_total",
			Help:      "Query optimizations that fell back to the raw user query",
		}),
		upstreamErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aly",
			Subsystem: "chat",
			Name:      "upstream_errors_total",
			Help:      "Completion provider failures by HTTP status",
		}, []string{"status"}),
		framesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aly",
			Subsystem: "chat",
			Name:      "stream_frames_skipped_total",
			Help:      "Malformed stream frames dropped while decoding",
		}),
		completionLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "aly",
			Subsystem: "chat",
			Name:      "completion_duration_seconds",
			Help:      "Time from request start to end of the streamed answer",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"path"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.searchTotal, m.optimizerFallbacks, m.upstreamErrors, m.framesSkipped, m.completionLatency)
	return m
}

func (m *ChatMetrics) ObserveRequest(focusMode, path string) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(focusMode, path).Inc()
}

// ObserveSearch records ok, empty or failed.
func (m *ChatMetrics) ObserveSearch(status string) {
	if m == nil {
		return
	}
	m.searchTotal.WithLabelValues(status).Inc()
}

func (m *ChatMetrics) ObserveOptimizerFallback() {
	if m == nil {
		return
	}
	m.optimizerFallbacks.Inc()
}

func (m *ChatMetrics) ObserveUpstreamError(status int) {
	if m == nil {
		return
	}
	m.upstreamErrors.WithLabelValues(statusLabel(status)).Inc()
}

func (m *ChatMetrics) ObserveFrameSkipped() {
	if m == nil {
		return
	}
	m.framesSkipped.Inc()
}

func (m *ChatMetrics) ObserveCompletion(path string, seconds float64) {
	if m == nil {
		return
	}
	m.completionLatency.WithLabelValues(path).Observe(seconds)
}

func statusLabel(status int) string {
	if status <= 0 {
		return "transport"
	}
	return strconv.Itoa(status)
}
