package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	natsRoutingJobsReceivedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sms_routing",
			Name:      "nats_jobs_received_total",
			Help:      "Total NATS routing jobs received.",
		},
		[]string{"subject"},
	)

	routingRecipientsRoutedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sms_routing",
			Name:      "recipients_routed_total",
			Help:      "Total recipients assigned to a gateway by the rule engine.",
		},
		[]string{"gateway"},
	)

	routingDecisionDurationHist = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "sms_routing",
			Name:      "decision_duration_seconds",
			Help:      "Duration of one routing pass over a recipient pool.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	senderIDChecksCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sms_routing",
			Name:      "sender_id_checks_total",
			Help:      "Total sender-id restriction checks.",
		},
		[]string{"result"}, // "allowed" or "denied"
	)

	dispatchResultsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sms_routing",
			Name:      "dispatch_results_total",
			Help:      "Total per-gateway dispatch outcomes.",
		},
		[]string{"gateway", "status"}, // e.g. status: "success", "error_send", "error_no_gateway"
	)
)
