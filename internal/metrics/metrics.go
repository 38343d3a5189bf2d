// Package metrics defines the Prometheus collectors for paybot.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "paybot"

// CommandsTotal counts handled chat commands.
// Labels:
//   - command: "start", "help", "paymo", "average" or "unknown"
//   - outcome: "ok", "rejected", "config_error", "data_error", "fetch_error", "error"
var CommandsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "commands_total",
		Help:      "Total number of chat commands handled, by command and outcome.",
	},
	[]string{"command", "outcome"},
)

// PaymoRequestDuration measures Paymo API round trips.
// Labels:
//   - endpoint: "me" or "entries"
//   - status: HTTP status code, or "error" on transport failure
var PaymoRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "paymo_request_duration_seconds",
		Help:      "Duration of Paymo API requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"endpoint", "status"},
)

// EntriesFetchedTotal counts time entries returned by Paymo.
var EntriesFetchedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "entries_fetched_total",
		Help:      "Total number of time entries fetched from Paymo.",
	},
)

// UserCacheTotal counts user-id cache lookups.
// Label:
//   - result: "hit", "miss" or "error"
var UserCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "user_cache_total",
		Help:      "Total number of user-id cache lookups, by result.",
	},
	[]string{"result"},
)
