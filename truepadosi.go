package truepadosi

import (
	"github.com/devesh-qurilo/truepadosi/internal/flow"
	"github.com/devesh-qurilo/truepadosi/pkg/api"
)

// Re-export key types so users don't need to dig into pkg/api.

type (
	Status    = api.Status
	Step      = api.Step
	Route     = api.Route
	StepState = api.StepState
	Snapshot  = api.Snapshot
	Session   = api.Session
	User      = api.User
	OTPStatus = api.OTPStatus
	OTPState  = api.OTPState

	StepPayload         = api.StepPayload
	AddressPayload      = api.AddressPayload
	VerificationPayload = api.VerificationPayload
	Document            = api.Document
	ProfessionPayload   = api.ProfessionPayload
	ProfilePayload      = api.ProfilePayload
	RegistrationPayload = api.RegistrationPayload
	Credentials         = api.Credentials

	ValidationError = api.ValidationError
	NetworkError    = api.NetworkError
	SessionError    = api.SessionError

	AuthAPI       = api.AuthAPI
	StepAPI       = api.StepAPI
	FeedAPI       = api.FeedAPI
	SecureStorage = api.SecureStorage
	PincodeLookup = api.PincodeLookup

	Observer          = api.Observer
	NoopObserver      = api.NoopObserver
	CompositeObserver = api.CompositeObserver
	LoggingObserver   = api.LoggingObserver
	BasicMetrics      = api.BasicMetrics
)

// Re-export common observer helpers.

var (
	NewLoggingObserver   = api.NewLoggingObserver
	NewCompositeObserver = api.NewCompositeObserver
)

// Re-export step status values for convenience.

const (
	StatusIdle      = api.StatusIdle
	StatusPending   = api.StatusPending
	StatusSubmitted = api.StatusSubmitted
	StatusFailed    = api.StatusFailed
)

// Re-export step identifiers.

const (
	StepAddress       = api.StepAddress
	StepVerification  = api.StepVerification
	StepProfession    = api.StepProfession
	StepProfileUpdate = api.StepProfileUpdate
)

// Re-export route identifiers.

const (
	RouteLogin            = api.RouteLogin
	RouteRegister         = api.RouteRegister
	RouteCommunityAddress = api.RouteCommunityAddress
	RouteVerification     = api.RouteVerification
	RouteProfession       = api.RouteProfession
	RouteProfileUpdate    = api.RouteProfileUpdate
	RouteHome             = api.RouteHome
)

// Re-export accepted gender values.

const (
	GenderMale   = api.GenderMale
	GenderFemale = api.GenderFemale
	GenderOther  = api.GenderOther
)

// Re-export OTP sub-flow states.

const (
	OTPNotRequested = api.OTPNotRequested
	OTPRequested    = api.OTPRequested
	OTPVerifying    = api.OTPVerifying
	OTPVerified     = api.OTPVerified
)

// Re-export sentinel errors.

var (
	ErrAlreadySubmitted   = api.ErrAlreadySubmitted
	ErrSubmissionInFlight = api.ErrSubmissionInFlight
)

// NextRoute computes the single next required screen for a snapshot. It is
// pure and deterministic; see internal/flow for the priority order.
func NextRoute(snap Snapshot) Route {
	return flow.NextRoute(snap)
}

// Steps returns the onboarding steps in their fixed priority order.
func Steps() []Step {
	return api.Steps()
}
