// Package otp implements the registration OTP sub-flow: the two-phase
// request/verify state machine layered on the registration step.
package otp

import (
	"context"
	"regexp"
	"sync"

	"github.com/devesh-qurilo/truepadosi/internal/session"
	"github.com/devesh-qurilo/truepadosi/pkg/api"
)

var codeRe = regexp.MustCompile(`^\d{4}$`)

// Flow is the OTP sub-flow state machine:
//
//	NotRequested -> Requested(otpDetailsID) -> Verifying -> Verified
//	                      ^                        |
//	                      +---- verify failure ----+
//
// Verified is terminal. Reset returns to NotRequested from any state,
// discarding the in-flight otpDetailsID.
type Flow struct {
	auth     api.AuthAPI
	sessions *session.Store
	observer api.Observer

	// generation invalidates in-flight attempts: a network resolution may
	// only apply its transition if no Reset (or newer Request) happened
	// since the attempt began.
	mu         sync.Mutex
	state      api.OTPState
	generation uint64
}

// NewFlow creates the sub-flow over the auth collaborator and session store.
func NewFlow(auth api.AuthAPI, sessions *session.Store, obs api.Observer) *Flow {
	if obs == nil {
		obs = api.NoopObserver{}
	}
	return &Flow{
		auth:     auth,
		sessions: sessions,
		observer: obs,
		state:    api.OTPState{Status: api.OTPNotRequested},
	}
}

// State returns a snapshot of the sub-flow.
func (f *Flow) State() api.OTPState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Request asks the backend to deliver an OTP. Allowed from NotRequested and
// from Requested — re-requesting replaces the previous otpDetailsID, which
// invalidates any code sent earlier, and supersedes any request still in
// flight. On failure the flow stays (or returns to) NotRequested with the
// error surfaced.
func (f *Flow) Request(ctx context.Context, phoneNumber, email string) error {
	if phoneNumber == "" || email == "" {
		return api.NewValidationError("otp", "phone number and email are required")
	}

	f.mu.Lock()
	if f.state.Status == api.OTPVerifying || f.state.Status == api.OTPVerified {
		status := f.state.Status
		f.mu.Unlock()
		return api.NewValidationError("otp", "cannot request an OTP in state "+string(status))
	}
	f.generation++
	gen := f.generation
	f.mu.Unlock()

	detailsID, err := f.auth.SendOTP(ctx, phoneNumber, email)
	if err != nil {
		f.apply(ctx, gen, api.OTPState{Status: api.OTPNotRequested, Reason: api.Reason(err)})
		return err
	}

	f.apply(ctx, gen, api.OTPState{Status: api.OTPRequested, OTPDetailsID: detailsID})
	return nil
}

// Verify finalizes registration with the code the user entered. It is
// allowed only from Requested; the code must be exactly 4 digits and the
// otpDetailsID non-empty, otherwise the attempt is rejected locally without
// a network call.
//
// On backend success the session store adopts the returned session (the
// user becomes authenticated) and the flow reaches Verified. On backend
// failure the flow returns to Requested with the same otpDetailsID so the
// user can retry the code or request a fresh OTP. A Reset issued while the
// call is in flight wins either way: the late resolution is discarded and
// the flow stays at NotRequested.
func (f *Flow) Verify(ctx context.Context, code string, reg api.RegistrationPayload) error {
	if !codeRe.MatchString(code) {
		return api.NewValidationError("otp", "OTP must be 4 digits")
	}
	if err := reg.Validate(); err != nil {
		return err
	}

	f.mu.Lock()
	if f.state.Status != api.OTPRequested {
		status := f.state.Status
		f.mu.Unlock()
		return api.NewValidationError("otp", "no OTP requested (state "+string(status)+")")
	}
	detailsID := f.state.OTPDetailsID
	if detailsID == "" {
		// Should not occur: Requested always carries a details ID. Reject
		// locally so a stale-token verification can never reach the network.
		f.mu.Unlock()
		return api.NewValidationError("otp", "missing OTP details; request a new code")
	}
	gen := f.generation
	prev := f.state.Status
	f.state = api.OTPState{Status: api.OTPVerifying, OTPDetailsID: detailsID}
	f.mu.Unlock()
	f.observer.OnOTPTransition(ctx, prev, api.OTPVerifying)

	sess, err := f.auth.Register(ctx, reg, code, detailsID)
	if err != nil {
		f.apply(ctx, gen, api.OTPState{
			Status:       api.OTPRequested,
			OTPDetailsID: detailsID,
			Reason:       api.Reason(err),
		})
		return err
	}

	if !f.current(gen) {
		// The flow was reset while the call was in flight; the discarded
		// otpDetailsID must not resurface. Registration may have completed
		// server-side, in which case the user logs in normally.
		return nil
	}

	if err := f.sessions.Adopt(ctx, sess); err != nil {
		// Registration succeeded server-side but the session could not be
		// persisted. Surface the error; the user can log in normally.
		f.apply(ctx, gen, api.OTPState{
			Status:       api.OTPRequested,
			OTPDetailsID: detailsID,
			Reason:       api.Reason(err),
		})
		return err
	}

	f.apply(ctx, gen, api.OTPState{Status: api.OTPVerified})
	return nil
}

// Reset unconditionally returns the flow to NotRequested, discarding any
// in-flight otpDetailsID and invalidating any request or verification still
// on the wire. Consumers call it on screen focus, cancel, and navigation
// away so stale-token verification attempts are impossible.
func (f *Flow) Reset(ctx context.Context) {
	f.mu.Lock()
	f.generation++
	prev := f.state.Status
	f.state = api.OTPState{Status: api.OTPNotRequested}
	f.mu.Unlock()

	if prev != api.OTPNotRequested {
		f.observer.OnOTPTransition(ctx, prev, api.OTPNotRequested)
	}
}

// apply installs next if the attempt that began at generation gen is still
// the live one. A stale attempt's transition is dropped.
func (f *Flow) apply(ctx context.Context, gen uint64, next api.OTPState) {
	f.mu.Lock()
	if f.generation != gen {
		f.mu.Unlock()
		return
	}
	prev := f.state.Status
	f.state = next
	f.mu.Unlock()

	if prev != next.Status {
		f.observer.OnOTPTransition(ctx, prev, next.Status)
	}
}

// current reports whether the attempt that began at generation gen is still
// the live one.
func (f *Flow) current(gen uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.generation == gen
}
