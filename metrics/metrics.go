// Package metrics exposes Prometheus instrumentation for contact storage
// and the HTTP API.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"contactbook/contact"
)

const (
	outcomeOK    = "ok"
	outcomeError = "error"
)

type Metrics struct {
	storeOps      *prometheus.CounterVec
	storeDuration *prometheus.HistogramVec

	totalRequests   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		storeOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contact_store_operations_total",
				Help: "Total number of contact storage operations",
			},
			[]string{"op", "outcome"},
		),
		storeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "contact_store_operation_duration_seconds",
				Help:    "Contact storage operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		totalRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "code"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
	}

	reg.MustRegister(m.storeOps, m.storeDuration, m.totalRequests, m.requestDuration)
	return m
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func (m *Metrics) observeStore(op string, start time.Time, err error) {
	outcome := outcomeOK
	if err != nil {
		outcome = outcomeError
	}
	m.storeOps.WithLabelValues(op, outcome).Inc()
	m.storeDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// Repository wraps next so every storage call is counted and timed.
func (m *Metrics) Repository(next contact.Repository) contact.Repository {
	return &instrumentedRepository{next: next, m: m}
}

type instrumentedRepository struct {
	next contact.Repository
	m    *Metrics
}

func (r *instrumentedRepository) AllContacts(ctx context.Context) ([]contact.Contact, error) {
	start := time.Now()
	contacts, err := r.next.AllContacts(ctx)
	r.m.observeStore("load", start, err)
	return contacts, err
}

func (r *instrumentedRepository) CreateContact(ctx context.Context, c contact.Contact) (contact.Contact, error) {
	start := time.Now()
	stored, err := r.next.CreateContact(ctx, c)
	r.m.observeStore("create", start, err)
	return stored, err
}

func (r *instrumentedRepository) DeleteContact(ctx context.Context, target contact.Contact, remaining []contact.Contact) error {
	start := time.Now()
	err := r.next.DeleteContact(ctx, target, remaining)
	r.m.observeStore("delete", start, err)
	return err
}

// Middleware records request count and latency per route template.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				// let the error handler write the status before it is read
				c.Error(err)
			}

			endpoint := c.Path()
			if endpoint == "" {
				endpoint = c.Request().URL.Path
			}
			method := c.Request().Method
			code := strconv.Itoa(c.Response().Status)

			m.totalRequests.WithLabelValues(method, endpoint, code).Inc()
			m.requestDuration.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}
