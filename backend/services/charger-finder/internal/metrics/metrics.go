package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var queriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "chargers",
	Name:      "queries_total",
	Help:      "Charger queries by kind and data source.",
}, []string{"kind", "source"})

var fallbackTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "chargers",
	Name:      "fallback_total",
	Help:      "Queries answered from the fallback catalog, by reason.",
}, []string{"kind", "reason"})

var repositoryErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "chargers",
	Name:      "repository_errors_total",
	Help:      "Failed repository calls by operation.",
}, []string{"operation"})

var authEvents = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "auth",
	Name:      "events_total",
	Help:      "Register and login attempts by outcome.",
}, []string{"action", "outcome"})

var feedSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "chargers",
	Name:      "feed_subscribers",
	Help:      "Open live feed connections.",
})

func ObserveQuery(kind, source string) {
	if len(kind) == 0 || len(source) == 0 {
		return
	}
	queriesTotal.With(prometheus.Labels{"kind": kind, "source": source}).Inc()
}

func ObserveFallback(kind, reason string) {
	if len(kind) == 0 || len(reason) == 0 {
		return
	}
	fallbackTotal.With(prometheus.Labels{"kind": kind, "reason": reason}).Inc()
}

func ObserveRepositoryError(operation string) {
	if len(operation) == 0 {
		return
	}
	repositoryErrors.With(prometheus.Labels{"operation": operation}).Inc()
}

func ObserveAuth(action, outcome string) {
	if len(action) == 0 || len(outcome) == 0 {
		return
	}
	authEvents.With(prometheus.Labels{"action": action, "outcome": outcome}).Inc()
}

func SetFeedSubscribers(count int) {
	feedSubscribers.Set(float64(count))
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
