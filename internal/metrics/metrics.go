// Package metrics holds the Prometheus instrumentation for the radio
// link monitor and the HTTP endpoint that serves it.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StatusMessagesTotal counts decoded status messages received by kind.
	StatusMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rlmon_status_messages_total",
			Help: "Total number of decoded radio status messages received",
		},
		[]string{"kind"},
	)

	// StatusMessagesDiscardedTotal counts legacy-kind messages dropped after
	// the primary kind has been locked in.
	StatusMessagesDiscardedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rlmon_status_messages_discarded_total",
			Help: "Total number of legacy radio status messages discarded after primary lock",
		},
	)

	// IdentityAdvisoriesTotal counts emitted identity-mismatch advisories
	// (post-throttle, i.e. actually logged).
	IdentityAdvisoriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rlmon_identity_advisories_total",
			Help: "Total number of identity-mismatch advisories emitted",
		},
	)

	// ReportsPublishedTotal counts status reports handed to each sink.
	ReportsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rlmon_reports_published_total",
			Help: "Total number of radio status reports published",
		},
		[]string{"sink"},
	)

	// ReportErrorsTotal counts publish failures by sink.
	ReportErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rlmon_report_errors_total",
			Help: "Total number of radio status report publish failures",
		},
		[]string{"sink"},
	)

	// HealthStatus tracks the current health classification per diagnostic
	// task (0=ok, 1=warning, 2=critical).
	HealthStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rlmon_health_status",
			Help: "Current health status per diagnostic task (0=ok, 1=warning, 2=critical)",
		},
		[]string{"task"},
	)
)
