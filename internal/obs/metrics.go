// Copyright 2025 James Ross
package obs

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	EventsEmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "emit_events_emitted_total",
		Help: "Total number of events handed to the emitter",
	}, []string{"adapter"})
	EventsDelivered = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "emit_events_delivered_total",
		Help: "Total number of events successfully delivered by an adapter",
	}, []string{"adapter"})
	EventsRequeued = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "emit_events_requeued_total",
		Help: "Total number of events requeued after a transient adapter error",
	}, []string{"adapter"})
	EventsDropped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "emit_events_dropped_total",
		Help: "Total number of events dropped after a permanent adapter error or queue overflow",
	}, []string{"adapter", "reason"})
	DeliveryDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "emit_delivery_duration_seconds",
		Help:    "Histogram of adapter emit call durations",
		Buckets: prometheus.DefBuckets,
	}, []string{"adapter"})
	QueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "emit_queue_depth",
		Help: "Current number of items waiting in the worker queue",
	})
	AdapterHealth = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "emit_adapter_health_state",
		Help: "0 Closed (healthy), 1 HalfOpen (probing), 2 Open (unhealthy)",
	}, []string{"adapter"})
	AdapterReopens = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "emit_adapter_reopens_total",
		Help: "Count of times an adapter was reopened after a closed error",
	}, []string{"adapter"})
	WorkersActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "emit_workers_active",
		Help: "Number of active worker goroutines",
	})
)

func init() {
	prometheus.MustRegister(EventsEmitted, EventsDelivered, EventsRequeued, EventsDropped,
		DeliveryDuration, QueueDepth, AdapterHealth, AdapterReopens, WorkersActive)
}
