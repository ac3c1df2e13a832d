package otp

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/devesh-qurilo/truepadosi/internal/persistence"
	"github.com/devesh-qurilo/truepadosi/internal/session"
	"github.com/devesh-qurilo/truepadosi/internal/state"
	"github.com/devesh-qurilo/truepadosi/pkg/api"
)

// fakeAuth scripts the auth collaborator and counts network calls. The
// one-shot hooks run while a call is "on the wire", letting tests interleave
// flow operations with an in-flight request.
type fakeAuth struct {
	mu            sync.Mutex
	sendCalls     int
	registerCalls int

	sendDetailsID string
	sendQueue     []string // overrides sendDetailsID while non-empty
	sendErr       error
	registerSess  api.Session
	registerErr   error

	sendHook     func()
	registerHook func()

	lastCode      string
	lastDetailsID string
}

func (f *fakeAuth) SendOTP(ctx context.Context, phoneNumber, email string) (string, error) {
	f.mu.Lock()
	f.sendCalls++
	id := f.sendDetailsID
	if len(f.sendQueue) > 0 {
		id = f.sendQueue[0]
		f.sendQueue = f.sendQueue[1:]
	}
	err := f.sendErr
	hook := f.sendHook
	f.sendHook = nil
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	return id, err
}

func (f *fakeAuth) Register(ctx context.Context, reg api.RegistrationPayload, code, otpDetailsID string) (api.Session, error) {
	f.mu.Lock()
	f.registerCalls++
	f.lastCode = code
	f.lastDetailsID = otpDetailsID
	sess, err := f.registerSess, f.registerErr
	hook := f.registerHook
	f.registerHook = nil
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	return sess, err
}

func (f *fakeAuth) Login(ctx context.Context, creds api.Credentials) (api.Session, error) {
	return api.Session{}, api.NewSessionError("not implemented")
}

func validRegistration() api.RegistrationPayload {
	return api.RegistrationPayload{
		FirstName:       "Asha",
		LastName:        "Verma",
		Email:           "asha@example.com",
		PhoneNumber:     "9876543210",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	}
}

func newFlow(t *testing.T, auth *fakeAuth) (*Flow, *state.Container) {
	t.Helper()
	container := state.NewContainer()
	sessions := session.NewStore(container, persistence.NewMemoryStorage(), auth)
	return NewFlow(auth, sessions, nil), container
}

func TestRequestAndVerifyHappyPath(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	auth := &fakeAuth{
		sendDetailsID: "details-1",
		registerSess:  api.Session{User: api.User{ID: "u-1"}, Token: "tok-1"},
	}
	flow, container := newFlow(t, auth)

	require.Equal(t, api.OTPNotRequested, flow.State().Status)

	require.NoError(t, flow.Request(ctx, "9876543210", "asha@example.com"))
	st := flow.State()
	require.Equal(t, api.OTPRequested, st.Status)
	require.Equal(t, "details-1", st.OTPDetailsID)

	require.NoError(t, flow.Verify(ctx, "1234", validRegistration()))
	require.Equal(t, api.OTPVerified, flow.State().Status)
	require.Equal(t, "1234", auth.lastCode)
	require.Equal(t, "details-1", auth.lastDetailsID)

	// The registered session was adopted.
	require.True(t, container.Session().Authenticated())
	require.Equal(t, "tok-1", container.Session().Token)
}

func TestRequestRejectsMissingContact(t *testing.T) {
	t.Parallel()

	auth := &fakeAuth{sendDetailsID: "details-1"}
	flow, _ := newFlow(t, auth)

	require.True(t, api.IsValidationError(flow.Request(context.Background(), "", "asha@example.com")))
	require.True(t, api.IsValidationError(flow.Request(context.Background(), "9876543210", "")))
	require.Zero(t, auth.sendCalls)
}

func TestRequestFailureStaysNotRequested(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	auth := &fakeAuth{sendErr: &api.NetworkError{StatusCode: 503, Message: "otp provider down"}}
	flow, _ := newFlow(t, auth)

	err := flow.Request(ctx, "9876543210", "asha@example.com")
	require.True(t, api.IsNetworkError(err))

	st := flow.State()
	require.Equal(t, api.OTPNotRequested, st.Status)
	require.Equal(t, "otp provider down", st.Reason)
	require.Empty(t, st.OTPDetailsID)
}

func TestRerequestReplacesDetailsID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	auth := &fakeAuth{sendDetailsID: "details-1"}
	flow, _ := newFlow(t, auth)

	require.NoError(t, flow.Request(ctx, "9876543210", "asha@example.com"))

	auth.mu.Lock()
	auth.sendDetailsID = "details-2"
	auth.mu.Unlock()

	require.NoError(t, flow.Request(ctx, "9876543210", "asha@example.com"))
	require.Equal(t, "details-2", flow.State().OTPDetailsID)
	require.Equal(t, 2, auth.sendCalls)
}

func TestVerifyRejectsBadCodeLocally(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	// The backend issues a non-numeric details ID; the code rule still holds.
	auth := &fakeAuth{sendDetailsID: "abc123"}
	flow, _ := newFlow(t, auth)

	require.NoError(t, flow.Request(ctx, "9876543210", "asha@example.com"))

	for _, code := range []string{"", "12", "12345", "12a4"} {
		err := flow.Verify(ctx, code, validRegistration())
		require.True(t, api.IsValidationError(err), "code %q", code)
	}
	require.Zero(t, auth.registerCalls, "invalid codes must never reach the network")
	require.Equal(t, api.OTPRequested, flow.State().Status)
}

func TestVerifyRequiresRequestedState(t *testing.T) {
	t.Parallel()

	auth := &fakeAuth{}
	flow, _ := newFlow(t, auth)

	err := flow.Verify(context.Background(), "1234", validRegistration())
	require.True(t, api.IsValidationError(err))
	require.Zero(t, auth.registerCalls)
}

func TestVerifyBackendRejectReturnsToRequested(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	auth := &fakeAuth{
		sendDetailsID: "details-1",
		registerErr:   &api.NetworkError{StatusCode: 400, Message: "incorrect OTP"},
	}
	flow, container := newFlow(t, auth)

	require.NoError(t, flow.Request(ctx, "9876543210", "asha@example.com"))

	err := flow.Verify(ctx, "1234", validRegistration())
	require.True(t, api.IsNetworkError(err))

	// Same details ID survives so the user can retry the code.
	st := flow.State()
	require.Equal(t, api.OTPRequested, st.Status)
	require.Equal(t, "details-1", st.OTPDetailsID)
	require.Equal(t, "incorrect OTP", st.Reason)
	require.False(t, container.Session().Authenticated())

	// Retry with the right scripted outcome.
	auth.mu.Lock()
	auth.registerErr = nil
	auth.registerSess = api.Session{User: api.User{ID: "u-1"}, Token: "tok-1"}
	auth.mu.Unlock()

	require.NoError(t, flow.Verify(ctx, "5678", validRegistration()))
	require.Equal(t, api.OTPVerified, flow.State().Status)
}

func TestResetDiscardsDetailsID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	auth := &fakeAuth{sendDetailsID: "details-1"}
	flow, _ := newFlow(t, auth)

	require.NoError(t, flow.Request(ctx, "9876543210", "asha@example.com"))
	flow.Reset(ctx)

	st := flow.State()
	require.Equal(t, api.OTPNotRequested, st.Status)
	require.Empty(t, st.OTPDetailsID)

	// After a reset, verification is rejected locally.
	err := flow.Verify(ctx, "1234", validRegistration())
	require.True(t, api.IsValidationError(err))
	require.Zero(t, auth.registerCalls)
}

func TestResetDuringVerifyDiscardsLateFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	auth := &fakeAuth{
		sendDetailsID: "details-1",
		registerErr:   &api.NetworkError{StatusCode: 400, Message: "incorrect OTP"},
	}
	flow, container := newFlow(t, auth)
	auth.registerHook = func() { flow.Reset(ctx) }

	require.NoError(t, flow.Request(ctx, "9876543210", "asha@example.com"))

	// The user navigates away while the verification is on the wire; the
	// late failure must not resurrect the discarded details ID.
	err := flow.Verify(ctx, "1234", validRegistration())
	require.True(t, api.IsNetworkError(err))

	st := flow.State()
	require.Equal(t, api.OTPNotRequested, st.Status)
	require.Empty(t, st.OTPDetailsID)
	require.Empty(t, st.Reason)
	require.False(t, container.Session().Authenticated())

	// A fresh Verify is rejected locally, without a network call.
	require.True(t, api.IsValidationError(flow.Verify(ctx, "1234", validRegistration())))
	require.Equal(t, 1, auth.registerCalls)
}

func TestResetDuringVerifyDiscardsLateSuccess(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	auth := &fakeAuth{
		sendDetailsID: "details-1",
		registerSess:  api.Session{User: api.User{ID: "u-1"}, Token: "tok-1"},
	}
	flow, container := newFlow(t, auth)
	auth.registerHook = func() { flow.Reset(ctx) }

	require.NoError(t, flow.Request(ctx, "9876543210", "asha@example.com"))
	require.NoError(t, flow.Verify(ctx, "1234", validRegistration()))

	// The reset wins: no Verified state, no adopted session.
	require.Equal(t, api.OTPNotRequested, flow.State().Status)
	require.False(t, container.Session().Authenticated())
}

func TestRerequestSupersedesInFlightRequest(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	auth := &fakeAuth{sendQueue: []string{"details-1", "details-2"}}
	flow, _ := newFlow(t, auth)

	// While the first request is on the wire, the user taps "resend": the
	// newer request's details ID must win no matter which response lands
	// last.
	auth.sendHook = func() {
		require.NoError(t, flow.Request(ctx, "9876543210", "asha@example.com"))
	}
	require.NoError(t, flow.Request(ctx, "9876543210", "asha@example.com"))

	st := flow.State()
	require.Equal(t, api.OTPRequested, st.Status)
	require.Equal(t, "details-2", st.OTPDetailsID)
	require.Equal(t, 2, auth.sendCalls)
}

func TestResetDuringRequestDiscardsLateDetails(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	auth := &fakeAuth{sendDetailsID: "details-1"}
	flow, _ := newFlow(t, auth)
	auth.sendHook = func() { flow.Reset(ctx) }

	require.NoError(t, flow.Request(ctx, "9876543210", "asha@example.com"))

	st := flow.State()
	require.Equal(t, api.OTPNotRequested, st.Status)
	require.Empty(t, st.OTPDetailsID)
}

func TestObserverSeesTransitions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	auth := &fakeAuth{
		sendDetailsID: "details-1",
		registerSess:  api.Session{User: api.User{ID: "u-1"}, Token: "tok-1"},
	}

	var (
		mu          sync.Mutex
		transitions [][2]api.OTPStatus
	)
	obs := observerFunc(func(from, to api.OTPStatus) {
		mu.Lock()
		transitions = append(transitions, [2]api.OTPStatus{from, to})
		mu.Unlock()
	})

	container := state.NewContainer()
	sessions := session.NewStore(container, persistence.NewMemoryStorage(), auth)
	flow := NewFlow(auth, sessions, obs)

	require.NoError(t, flow.Request(ctx, "9876543210", "asha@example.com"))
	require.NoError(t, flow.Verify(ctx, "1234", validRegistration()))

	require.Equal(t, [][2]api.OTPStatus{
		{api.OTPNotRequested, api.OTPRequested},
		{api.OTPRequested, api.OTPVerifying},
		{api.OTPVerifying, api.OTPVerified},
	}, transitions)
}

// observerFunc adapts a function to the OTP half of api.Observer.
type observerFunc func(from, to api.OTPStatus)

func (f observerFunc) OnStepStatusChanged(context.Context, api.StepState, api.Status) {}
func (f observerFunc) OnRouteChanged(context.Context, api.Route, api.Route)           {}
func (f observerFunc) OnSessionChanged(context.Context, api.Session)                  {}
func (f observerFunc) OnOTPTransition(ctx context.Context, from, to api.OTPStatus) {
	f(from, to)
}
