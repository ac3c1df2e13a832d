package api

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
)

// Observer receives callbacks from the onboarding core for logging and
// metrics.
//
// Implementations should be fast and non-blocking; heavy work should be done
// asynchronously so as not to delay state transitions.
type Observer interface {
	// OnStepStatusChanged is called after a step's status transition has been
	// applied. prev is the status before the transition.
	OnStepStatusChanged(ctx context.Context, state StepState, prev Status)

	// OnRouteChanged is called when the navigator emits a navigation command,
	// i.e. when the computed target route differs from the current one.
	OnRouteChanged(ctx context.Context, from, to Route)

	// OnSessionChanged is called after login, registration, restore of a
	// persisted session, or logout.
	OnSessionChanged(ctx context.Context, session Session)

	// OnOTPTransition is called on every OTP sub-flow state change.
	OnOTPTransition(ctx context.Context, from, to OTPStatus)
}

// NoopObserver is an Observer that does nothing.
// It is used as the default when no observer is configured.
type NoopObserver struct{}

func (NoopObserver) OnStepStatusChanged(ctx context.Context, state StepState, prev Status) {}
func (NoopObserver) OnRouteChanged(ctx context.Context, from, to Route)                    {}
func (NoopObserver) OnSessionChanged(ctx context.Context, session Session)                 {}
func (NoopObserver) OnOTPTransition(ctx context.Context, from, to OTPStatus)               {}

// CompositeObserver fans out events to multiple observers.
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver creates an Observer that forwards events to each
// non-nil observer in obs.
func NewCompositeObserver(obs ...Observer) Observer {
	filtered := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeObserver{observers: filtered}
}

func (c *CompositeObserver) OnStepStatusChanged(ctx context.Context, state StepState, prev Status) {
	for _, o := range c.observers {
		o.OnStepStatusChanged(ctx, state, prev)
	}
}

func (c *CompositeObserver) OnRouteChanged(ctx context.Context, from, to Route) {
	for _, o := range c.observers {
		o.OnRouteChanged(ctx, from, to)
	}
}

func (c *CompositeObserver) OnSessionChanged(ctx context.Context, session Session) {
	for _, o := range c.observers {
		o.OnSessionChanged(ctx, session)
	}
}

func (c *CompositeObserver) OnOTPTransition(ctx context.Context, from, to OTPStatus) {
	for _, o := range c.observers {
		o.OnOTPTransition(ctx, from, to)
	}
}

// LoggingObserver writes structured logs using zap.
type LoggingObserver struct {
	Logger *zap.Logger
}

// NewLoggingObserver creates an Observer that logs onboarding lifecycle
// events with the provided zap.Logger. If logger is nil, zap.NewNop()
// is used.
func NewLoggingObserver(logger *zap.Logger) Observer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnStepStatusChanged(ctx context.Context, state StepState, prev Status) {
	fields := []zap.Field{
		zap.String("step", string(state.Step)),
		zap.String("from", string(prev)),
		zap.String("to", string(state.Status)),
	}
	if state.Status == StatusFailed {
		fields = append(fields, zap.String("reason", state.Reason))
		o.Logger.Error("step_failed", fields...)
		return
	}
	o.Logger.Info("step_status_changed", fields...)
}

func (o *LoggingObserver) OnRouteChanged(ctx context.Context, from, to Route) {
	o.Logger.Info("route_changed",
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
}

func (o *LoggingObserver) OnSessionChanged(ctx context.Context, session Session) {
	o.Logger.Info("session_changed",
		zap.Bool("authenticated", session.Authenticated()),
		zap.String("user_id", session.User.ID),
	)
}

func (o *LoggingObserver) OnOTPTransition(ctx context.Context, from, to OTPStatus) {
	o.Logger.Debug("otp_transition",
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
}

// BasicMetrics collects simple counters for onboarding activity.
// It implements Observer, and can be combined with LoggingObserver via
// NewCompositeObserver.
type BasicMetrics struct {
	NoopObserver

	stepsSubmitted atomic.Int64
	stepsFailed    atomic.Int64
	navigations    atomic.Int64
	logins         atomic.Int64
	logouts        atomic.Int64
}

// BasicMetricsSnapshot is an immutable snapshot of BasicMetrics.
type BasicMetricsSnapshot struct {
	StepsSubmitted int64
	StepsFailed    int64
	Navigations    int64
	Logins         int64
	Logouts        int64
}

func (m *BasicMetrics) OnStepStatusChanged(ctx context.Context, state StepState, prev Status) {
	switch state.Status {
	case StatusSubmitted:
		m.stepsSubmitted.Add(1)
	case StatusFailed:
		m.stepsFailed.Add(1)
	}
}

func (m *BasicMetrics) OnRouteChanged(ctx context.Context, from, to Route) {
	m.navigations.Add(1)
}

func (m *BasicMetrics) OnSessionChanged(ctx context.Context, session Session) {
	if session.Authenticated() {
		m.logins.Add(1)
	} else {
		m.logouts.Add(1)
	}
}

// Snapshot returns a snapshot of the current metrics.
func (m *BasicMetrics) Snapshot() BasicMetricsSnapshot {
	return BasicMetricsSnapshot{
		StepsSubmitted: m.stepsSubmitted.Load(),
		StepsFailed:    m.stepsFailed.Load(),
		Navigations:    m.navigations.Load(),
		Logins:         m.logins.Load(),
		Logouts:        m.logouts.Load(),
	}
}
