package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API
// and the request lifecycle.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	submittedTotal  *prometheus.CounterVec
	resolvedTotal   *prometheus.CounterVec
	chatSendTotal   *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	submittedTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "change_requests_submitted_total",
		Help: "Schedule-change requests submitted, by type",
	}, []string{"type"})

	resolvedTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "change_requests_resolved_total",
		Help: "Schedule-change requests resolved, by outcome",
	}, []string{"status"})

	chatSendTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_messages_sent_total",
		Help: "Chat notifications delivered, by result",
	}, []string{"result"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, submittedTotal, resolvedTotal, chatSendTotal, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		submittedTotal:  submittedTotal,
		resolvedTotal:   resolvedTotal,
		chatSendTotal:   chatSendTotal,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// CountSubmitted increments the submission counter for a request type.
func (m *MetricsService) CountSubmitted(requestType string) {
	if m == nil {
		return
	}
	m.submittedTotal.WithLabelValues(requestType).Inc()
}

// CountResolved increments the resolution counter for an outcome.
func (m *MetricsService) CountResolved(status string) {
	if m == nil {
		return
	}
	m.resolvedTotal.WithLabelValues(status).Inc()
}

// CountChatSend increments the chat delivery counter.
func (m *MetricsService) CountChatSend(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.chatSendTotal.WithLabelValues(result).Inc()
}
