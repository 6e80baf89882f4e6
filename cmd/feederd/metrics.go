package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("feederd")

var eventsReceived = promauto.NewCounter(prometheus.CounterOpts{
	Name: "feederd_events_received",
	Help: "Number of mod-action events received from the stream or webhook",
})

var eventsFailed = promauto.NewCounter(prometheus.CounterOpts{
	Name: "feederd_events_failed",
	Help: "Number of mod-action events whose processing failed",
})

var currentSeq = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "feederd_current_seq",
	Help: "Current sequence number",
})
