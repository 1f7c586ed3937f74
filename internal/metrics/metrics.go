// Package metrics holds the prometheus collectors of the site.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is a set of collectors bound to one registry.
type Metrics struct {
	registry *prometheus.Registry

	PageViews        *prometheus.CounterVec
	PreloaderStarts  *prometheus.CounterVec
	PreloaderDone    prometheus.Counter
	ContactMessages  *prometheus.CounterVec
	TransitionPlans  prometheus.Counter
	SessionAPIErrors *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		PageViews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portfolio",
			Name:      "page_views_total",
			Help:      "Rendered pages by canonical route.",
		}, []string{"route"}),
		PreloaderStarts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portfolio",
			Name:      "preloader_starts_total",
			Help:      "Home page loads by preloader variant.",
		}, []string{"variant"}),
		PreloaderDone: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "portfolio",
			Name:      "preloader_completions_total",
			Help:      "Preloader sequences reported complete by the browser.",
		}),
		ContactMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portfolio",
			Name:      "contact_messages_total",
			Help:      "Contact form submissions by outcome.",
		}, []string{"outcome"}),
		TransitionPlans: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "portfolio",
			Name:      "transition_plan_requests_total",
			Help:      "Requests for the transition choreography.",
		}),
		SessionAPIErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portfolio",
			Name:      "session_storage_errors_total",
			Help:      "Visit flag storage failures by operation.",
		}, []string{"op"}),
	}
	reg.MustRegister(
		m.PageViews,
		m.PreloaderStarts,
		m.PreloaderDone,
		m.ContactMessages,
		m.TransitionPlans,
		m.SessionAPIErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
