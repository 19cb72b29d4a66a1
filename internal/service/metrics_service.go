package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService owns the Prometheus registry for the timetable API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	generationRuns     *prometheus.CounterVec
	generationDuration prometheus.Histogram
	cellsFilled        prometheus.Gauge
	cellsUnfilled      prometheus.Gauge
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

	generationRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_generation_runs_total",
		Help: "Generation runs by outcome",
	}, []string{"outcome"})

	generationDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "timetable_generation_duration_seconds",
		Help:    "Wall time of a full generation run",
		Buckets: prometheus.DefBuckets,
	})

	cellsFilled := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "timetable_cells_filled",
		Help: "Cells committed by the most recent generation run",
	})

	cellsUnfilled := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "timetable_cells_unfilled",
		Help: "Cells left empty by the most recent generation run",
	})

	registry.MustRegister(requestDuration, requestTotal, generationRuns, generationDuration, cellsFilled, cellsUnfilled)

	return &MetricsService{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		generationRuns:     generationRuns,
		generationDuration: generationDuration,
		cellsFilled:        cellsFilled,
		cellsUnfilled:      cellsUnfilled,
	}
}

// Handler exposes the /metrics scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records one served request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, strconv.Itoa(status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// ObserveGeneration records one generation run's outcome and fill counts.
func (s *MetricsService) ObserveGeneration(outcome string, duration time.Duration, filled, unfilled int) {
	s.generationRuns.WithLabelValues(outcome).Inc()
	s.generationDuration.Observe(duration.Seconds())
	s.cellsFilled.Set(float64(filled))
	s.cellsUnfilled.Set(float64(unfilled))
}
