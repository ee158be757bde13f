package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "agenthub_"

// Contact sources.
const (
	SourceRegister  = "register"
	SourceHeartbeat = "heartbeat"
	SourceMetrics   = "metrics"
	SourcePorts     = "ports"
	SourceSoftware  = "software"
)

var (
	registerOnce sync.Once

	commandsSubmitted    prometheus.Counter
	commandsDelivered    prometheus.Counter
	commandResults       *prometheus.CounterVec
	agentContacts        *prometheus.CounterVec
	validationRejections *prometheus.CounterVec
	requestDuration      *prometheus.HistogramVec
)

// Gauges reads live sizes from the stores.
type Gauges struct {
	QueuedCommands   func() int
	RegisteredAgents func() int
}

// Init registers the collectors with the default registry. Later calls are
// no-ops.
func Init(g Gauges) {
	registerOnce.Do(func() {
		commandsSubmitted = prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "commands_submitted_total",
			Help: "Commands accepted for dispatch",
		})
		commandsDelivered = prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "commands_delivered_total",
			Help: "Commands drained by agent polls",
		})
		commandResults = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricPrefix + "command_results_total",
			Help: "Command results reported by agents, by status",
		}, []string{"status"})
		agentContacts = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricPrefix + "agent_contacts_total",
			Help: "Agent contacts that refreshed a heartbeat, by source",
		}, []string{"source"})
		validationRejections = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricPrefix + "validation_rejections_total",
			Help: "Requests rejected for missing required fields, by operation",
		}, []string{"operation"})
		requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    metricPrefix + "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"})

		prometheus.MustRegister(
			commandsSubmitted,
			commandsDelivered,
			commandResults,
			agentContacts,
			validationRejections,
			requestDuration,
		)

		if g.QueuedCommands != nil {
			prometheus.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Name: metricPrefix + "queued_commands",
				Help: "Commands waiting in agent queues",
			}, func() float64 { return float64(g.QueuedCommands()) }))
		}
		if g.RegisteredAgents != nil {
			prometheus.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Name: metricPrefix + "registered_agents",
				Help: "Agents known to the registry",
			}, func() float64 { return float64(g.RegisteredAgents()) }))
		}
	})
}

func IncCommandSubmitted() {
	if commandsSubmitted != nil {
		commandsSubmitted.Inc()
	}
}

func AddCommandsDelivered(n int) {
	if commandsDelivered != nil && n > 0 {
		commandsDelivered.Add(float64(n))
	}
}

func IncCommandResult(status string) {
	if status == "" {
		status = "unknown"
	}
	if commandResults != nil {
		commandResults.WithLabelValues(status).Inc()
	}
}

func IncAgentContact(source string) {
	if agentContacts != nil {
		agentContacts.WithLabelValues(source).Inc()
	}
}

func IncValidationRejection(operation string) {
	if validationRejections != nil {
		validationRejections.WithLabelValues(operation).Inc()
	}
}

func ObserveRequest(method, route, status string, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	if requestDuration != nil {
		requestDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
	}
}
