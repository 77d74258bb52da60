// Package metrics defines the Prometheus metrics of the authentication
// service. All metrics are registered with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sessionauth"

// Variant labels name the authentication scheme that produced a measurement.
const (
	VariantBasic       = "basic_auth"
	VariantSession     = "session_auth"
	VariantUserService = "user_service"
)

const (
	ResultSuccess       = "success"
	ResultUnknownUser   = "unknown_user"
	ResultWrongPassword = "wrong_password"
	ResultMissingInput  = "missing_input"
)

const (
	DecisionAllowed      = "allowed"
	DecisionSkipped      = "skipped"
	DecisionUnauthorized = "unauthorized"
	DecisionForbidden    = "forbidden"
)

const (
	ResetStageIssued    = "issued"
	ResetStageCompleted = "completed"
	ResetStageRejected  = "rejected"
)

// LoginAttemptsTotal counts login attempts.
// Labels:
//   - variant: basic_auth, session_auth or user_service
//   - result: success, unknown_user, wrong_password or missing_input
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by variant and result.",
	},
	[]string{"variant", "result"},
)

var SessionsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_created_total",
		Help:      "Total number of sessions created.",
	},
	[]string{"variant"},
)

var SessionsDestroyedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_destroyed_total",
		Help:      "Total number of sessions destroyed.",
	},
	[]string{"variant"},
)

// AuthDecisionsTotal counts boundary decisions on protected routes.
// Label:
//   - decision: allowed, skipped (excluded path), unauthorized (401) or forbidden (403)
var AuthDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_decisions_total",
		Help:      "Total number of authentication decisions on protected routes.",
	},
	[]string{"decision"},
)

var PasswordResetsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "password_resets_total",
		Help:      "Total number of password reset operations, by stage.",
	},
	[]string{"stage"},
)

var UsersRegisteredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_registered_total",
		Help:      "Total number of registered users.",
	},
)
