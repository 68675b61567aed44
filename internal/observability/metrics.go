package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bloglist_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// LoginAttempts counts logins by outcome ("success", "failure").
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bloglist_login_attempts_total",
		Help: "Total number of login attempts by outcome",
	}, []string{"outcome"})

	// Registrations counts user registrations by outcome.
	Registrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bloglist_registrations_total",
		Help: "Total number of user registrations by outcome",
	}, []string{"outcome"})

	// BlogEvents counts blog mutations by event type.
	BlogEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bloglist_blog_events_total",
		Help: "Total number of blog mutations by event type",
	}, []string{"event"})

	// CacheLookups counts cache reads by result ("hit", "miss", "stale_fill").
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bloglist_cache_lookups_total",
		Help: "Total number of cache lookups by result",
	}, []string{"result"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// Outcome maps an error to the label used by the outcome counters.
func Outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
