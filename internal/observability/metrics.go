// Package observability provides Prometheus metrics and OpenTelemetry tracing.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"operation"})

	// EmailDeliveries counts outbound emails by result (sent, failed, dropped).
	EmailDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_email_deliveries_total",
		Help: "Outbound email attempts by result",
	}, []string{"result"})

	// MailQueueDepth is the number of emails waiting for a worker.
	MailQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "inkwell_mail_queue_depth",
		Help: "Emails queued for delivery",
	})

	// CounterMaintenanceFailures counts denormalized counter updates that failed and were skipped.
	CounterMaintenanceFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_counter_maintenance_failures_total",
		Help: "Denormalized counter updates that failed, by counter",
	}, []string{"counter"})

	// DomainEvents counts published domain events by name.
	DomainEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_domain_events_total",
		Help: "Domain events published, by event",
	}, []string{"event"})

	// EventHandlerPanics counts recovered panics in event handlers.
	EventHandlerPanics = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_event_handler_panics_total",
		Help: "Recovered panics in domain event handlers, by event",
	}, []string{"event"})

	// WebSocketConnections is the gauge of open realtime connections.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "inkwell_websocket_connections",
		Help: "Number of active WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped because a client's buffer was full or closed.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"reason"})

	// MediaUploads counts image uploads by kind and result.
	MediaUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_media_uploads_total",
		Help: "Image uploads by kind and result",
	}, []string{"kind", "result"})
)
