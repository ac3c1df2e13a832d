package api

import (
	"errors"
	"time"
)

// Status represents the lifecycle state of an onboarding step.
type Status string

const (
	StatusIdle      Status = "IDLE"
	StatusPending   Status = "PENDING"
	StatusSubmitted Status = "SUBMITTED"
	StatusFailed    Status = "FAILED"
)

// Step identifies one onboarding step with independent submit tracking.
type Step string

const (
	StepAddress       Step = "address"
	StepVerification  Step = "verification"
	StepProfession    Step = "profession"
	StepProfileUpdate Step = "profileUpdate"
)

// Steps returns all onboarding steps in their fixed priority order.
// The flow controller evaluates steps in exactly this order, so the
// slice must never be reordered.
func Steps() []Step {
	return []Step{StepAddress, StepVerification, StepProfession, StepProfileUpdate}
}

// Route identifies the screen a consumer should display next.
type Route string

const (
	RouteLogin            Route = "login"
	RouteRegister         Route = "register"
	RouteCommunityAddress Route = "communityAddress"
	RouteVerification     Route = "verification"
	RouteProfession       Route = "profession"
	RouteProfileUpdate    Route = "profileUpdate"
	RouteHome             Route = "home"
)

// RouteForStep maps each onboarding step to the screen that collects it.
func RouteForStep(step Step) Route {
	switch step {
	case StepAddress:
		return RouteCommunityAddress
	case StepVerification:
		return RouteVerification
	case StepProfession:
		return RouteProfession
	case StepProfileUpdate:
		return RouteProfileUpdate
	default:
		return RouteHome
	}
}

// StepState holds the submission state of a single onboarding step.
// It is mutated only by the step's owning submission workflow.
type StepState struct {
	Step   Step
	Status Status

	// Reason carries a human-readable failure message when Status is
	// StatusFailed. Empty otherwise.
	Reason string

	// Payload is the form data of the last successful submission, retained
	// for display. Nil until the step reaches StatusSubmitted.
	Payload StepPayload

	UpdatedAt time.Time
}

// Submitted reports whether the step has reached its terminal state.
func (s StepState) Submitted() bool {
	return s.Status == StatusSubmitted
}

// Snapshot is an immutable view of the onboarding state at a point in time.
// The flow controller is a pure function over a Snapshot, which is what makes
// routing decisions testable independent of any UI.
type Snapshot struct {
	Session Session
	Steps   map[Step]StepState
}

// StepStatus returns the status of the given step, defaulting to StatusIdle
// for steps the snapshot has no record of.
func (s Snapshot) StepStatus(step Step) Status {
	if st, ok := s.Steps[step]; ok {
		return st.Status
	}
	return StatusIdle
}

// Sentinel errors returned by submission workflows before any network call.
var (
	// ErrAlreadySubmitted is returned when submit is invoked on a step that
	// has already reached StatusSubmitted. The step state is not touched.
	ErrAlreadySubmitted = errors.New("step already submitted")

	// ErrSubmissionInFlight is returned when submit is invoked while a
	// previous submission of the same step is still pending.
	ErrSubmissionInFlight = errors.New("step submission already in flight")
)

// OTPStatus represents the state of the registration OTP sub-flow.
type OTPStatus string

const (
	OTPNotRequested OTPStatus = "NOT_REQUESTED"
	OTPRequested    OTPStatus = "REQUESTED"
	OTPVerifying    OTPStatus = "VERIFYING"
	OTPVerified     OTPStatus = "VERIFIED"
)

// OTPState is a snapshot of the OTP sub-flow.
type OTPState struct {
	Status OTPStatus

	// OTPDetailsID is the opaque token issued by the backend when an OTP is
	// requested. A verification attempt is valid only while it is non-empty.
	OTPDetailsID string

	// Reason carries the last error message surfaced by the sub-flow.
	Reason string
}
