package highlight

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var eventsProcessed = promauto.NewCounter(prometheus.CounterOpts{
	Name: "highlight_events_processed",
	Help: "Number of moderation events processed by the engine",
})

var decisionsDenied = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "highlight_decisions_denied",
	Help: "Number of stick events denied by the eligibility pipeline",
}, []string{"reason"})

var highlightsPublished = promauto.NewCounter(prometheus.CounterOpts{
	Name: "highlight_crossposts_published",
	Help: "Number of highlights successfully crossposted to the feed",
})

var highlightsFailed = promauto.NewCounter(prometheus.CounterOpts{
	Name: "highlight_crossposts_failed",
	Help: "Number of admitted highlights whose crosspost failed",
})
