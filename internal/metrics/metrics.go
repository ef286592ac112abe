package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Authentication results used as label values.
const (
	AuthResultSuccess            = "success"
	AuthResultInvalidCredentials = "invalid_credentials"
	AuthResultLocked             = "locked"
)

var (
	// AuthAttemptsTotal counts login attempts by outcome.
	AuthAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "genrelab_auth_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"result"},
	)

	// AccountLockoutsTotal counts lockout windows opened.
	AccountLockoutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "genrelab_account_lockouts_total",
			Help: "Total number of accounts locked after repeated failures",
		},
	)

	// AuthorizationFailuresTotal counts rejected bearer tokens.
	AuthorizationFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "genrelab_authorization_failures_total",
			Help: "Total number of rejected session tokens",
		},
	)

	// EvaluationsTotal counts persisted model evaluations.
	EvaluationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "genrelab_evaluations_total",
			Help: "Total number of model evaluations computed",
		},
	)
)
