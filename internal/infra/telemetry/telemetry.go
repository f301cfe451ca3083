package telemetry

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Auth event names recorded by AuthMetrics.
const (
	EventSignup         = "signup"
	EventLogin          = "login"
	EventForgotPassword = "forgot_password"
	EventVerifyOTP      = "verify_otp"
	EventResetPassword  = "reset_password"
	EventCurrentUser    = "current_user"
)

// Outcomes recorded by AuthMetrics.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// AuthMetrics counts authentication events by outcome.
type AuthMetrics struct {
	events *prometheus.CounterVec
}

// NewAuthMetrics registers the auth counters on reg. A nil reg uses the default registerer.
// Registering twice on the same registerer reuses the existing collector.
func NewAuthMetrics(reg prometheus.Registerer) *AuthMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "finance",
		Subsystem: "auth",
		Name:      "events_total",
		Help:      "Authentication events partitioned by event and outcome.",
	}, []string{"event", "outcome"})

	if err := reg.Register(events); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				events = existing
			}
		} else {
			panic(err)
		}
	}

	return &AuthMetrics{events: events}
}

// Observe increments the counter for event and outcome. Safe on a nil receiver.
func (m *AuthMetrics) Observe(event, outcome string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(event, outcome).Inc()
}

// Counter exposes the underlying collector for assertions.
func (m *AuthMetrics) Counter() *prometheus.CounterVec {
	if m == nil {
		return nil
	}
	return m.events
}
