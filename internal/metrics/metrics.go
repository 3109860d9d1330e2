package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "zima"
)

var (
	// RegisteredClients tracks hardware nodes in the brain's registry
	RegisteredClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "registered_clients",
			Help:      "Number of hardware nodes currently registered",
		},
	)

	// ClientsSwept counts registrations removed for inactivity
	ClientsSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clients_swept_total",
			Help:      "Total number of inactive clients removed from the registry",
		},
	)

	// FunctionCalls counts functions forwarded to hardware nodes
	FunctionCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "function_calls_total",
			Help:      "Total number of functions forwarded to hardware nodes",
		},
		[]string{"function", "status"}, // status: success/error
	)

	// ChatRequests counts generated replies by outcome
	ChatRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_requests_total",
			Help:      "Total number of chat requests answered",
		},
		[]string{"mode"}, // llm/local/error
	)

	// Dispenses counts pill dispense pulses per slot
	Dispenses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispenses_total",
			Help:      "Total number of dispense pulses",
		},
		[]string{"slot"},
	)

	// PickupChecks counts pill pickup checks by outcome
	PickupChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pickup_checks_total",
			Help:      "Total number of pill pickup checks",
		},
		[]string{"taken"},
	)

	// Notifications counts caregiver notifications by outcome
	Notifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Total number of caregiver notifications",
		},
		[]string{"priority", "status"}, // status: sent/failed/dropped
	)

	// BrainConnected is 1 while the hardware node can reach the brain node
	BrainConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "brain_connected",
			Help:      "Whether the brain node answered the last heartbeat",
		},
	)

	// HTTPRequests counts served requests by method and status code
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests served",
		},
		[]string{"method", "code"},
	)

	// HostUsage tracks sampled host resource usage
	HostUsage = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "host_usage",
			Help:      "Sampled host resource usage",
		},
		[]string{"resource"}, // cpu/memory/disk in percent, uptime in seconds
	)
)

// RecordFunctionCall records the outcome of a forwarded function.
func RecordFunctionCall(function string, success bool) {
	FunctionCalls.WithLabelValues(function, status(success, "success", "error")).Inc()
}

// RecordNotification records a notification as sent, failed or dropped.
func RecordNotification(priority, outcome string) {
	Notifications.WithLabelValues(priority, outcome).Inc()
}

// RecordHTTPRequest records a served request.
func RecordHTTPRequest(method string, code int) {
	HTTPRequests.WithLabelValues(method, strconv.Itoa(code)).Inc()
}

// RecordPickup records a pickup check.
func RecordPickup(taken bool) {
	PickupChecks.WithLabelValues(status(taken, "true", "false")).Inc()
}

// SetBrainConnected mirrors the connection monitor's state.
func SetBrainConnected(connected bool) {
	if connected {
		BrainConnected.Set(1)
		return
	}
	BrainConnected.Set(0)
}

// Handler serves the default registry for /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

func status(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}
