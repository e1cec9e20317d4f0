// Package metrics declares the portal's Prometheus metrics. They register
// with the default registry on import; echoprometheus serves them on
// /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ecivil"

// ── Auth ──────────────────────────────────────────────────────────────────────

// AuthOperationsTotal counts auth operations.
// Labels:
//   - operation: login, register, logout, forgot_password
//   - result: "ok" or the failure kind (invalid_credentials, registration_failed, reset_failed, busy, error)
var AuthOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_operations_total",
		Help:      "Total number of auth operations by operation and result.",
	},
	[]string{"operation", "result"},
)

// AuthOperationDuration measures auth operations end to end, including the
// identity backend and the session store.
var AuthOperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "auth_operation_duration_seconds",
		Help:      "Duration of auth operations.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation"},
)

// ── Gate ──────────────────────────────────────────────────────────────────────

// GateDecisionsTotal counts route authorization outcomes.
// Labels:
//   - group: the role prefix being guarded (citizen, agent, admin)
//   - outcome: render, redirect_login, redirect_role_home, redirect_landing
var GateDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_decisions_total",
		Help:      "Total number of route authorization decisions.",
	},
	[]string{"group", "outcome"},
)

// ── Sessions ──────────────────────────────────────────────────────────────────

// SessionsLive is the number of client sessions held in memory.
var SessionsLive = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sessions_live",
		Help:      "Number of client sessions currently held in memory.",
	},
)

// SessionsRestoredTotal counts session restores.
// Label:
//   - result: "signed_in", "signed_out" or "failed" (store unreadable, retried later)
var SessionsRestoredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_restored_total",
		Help:      "Total number of client sessions restored from the session store.",
	},
	[]string{"result"},
)

// ── Audit ─────────────────────────────────────────────────────────────────────

// AuditEventsTotal counts audit events by delivery result (stored, failed, dropped).
var AuditEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_total",
		Help:      "Total number of auth audit events by delivery result.",
	},
	[]string{"result"},
)

// AuditQueueDepth tracks pending events per dispatcher worker.
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
