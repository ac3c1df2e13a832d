package truepadosi

import (
	"context"
	"errors"
	"fmt"

	"github.com/devesh-qurilo/truepadosi/internal/feed"
	"github.com/devesh-qurilo/truepadosi/internal/flow"
	"github.com/devesh-qurilo/truepadosi/internal/otp"
	"github.com/devesh-qurilo/truepadosi/internal/session"
	"github.com/devesh-qurilo/truepadosi/internal/state"
	"github.com/devesh-qurilo/truepadosi/internal/steps"
	"github.com/devesh-qurilo/truepadosi/pkg/api"
)

// Collaborators are the external systems the core drives. All fields except
// Pincode and Feed are required.
type Collaborators struct {
	Auth    api.AuthAPI
	Steps   api.StepAPI
	Storage api.SecureStorage

	// Feed is optional; Client.Feed returns nil without it.
	Feed api.FeedAPI

	// Pincode is optional; PincodeSuggestions returns nothing without it.
	Pincode api.PincodeLookup
}

// Client bundles the whole onboarding core: state container, session
// store, one workflow per step, the OTP sub-flow, the navigator, and the
// feed service. It is safe for use from a single UI event loop; internal
// state is additionally lock-protected so background completions cannot
// race screen reads.
type Client struct {
	container *state.Container
	sessions  *session.Store
	workflows map[api.Step]*steps.Workflow
	otp       *otp.Flow
	nav       *flow.Navigator
	feed      *feed.Service
	pincode   api.PincodeLookup
}

// NewClient wires a Client over the given collaborators. Observers receive
// every state transition; pass none for a silent core.
func NewClient(c Collaborators, obs ...api.Observer) (*Client, error) {
	if c.Auth == nil || c.Steps == nil || c.Storage == nil {
		return nil, errors.New("truepadosi: Auth, Steps and Storage collaborators are required")
	}

	container := state.NewContainer(obs...)
	sessions := session.NewStore(container, c.Storage, c.Auth)

	stepAPI := c.Steps
	workflows := map[api.Step]*steps.Workflow{
		api.StepAddress: steps.NewWorkflow(api.StepAddress, container,
			func(ctx context.Context, p api.StepPayload, token string) error {
				ap, ok := p.(api.AddressPayload)
				if !ok {
					return api.NewValidationError("address", "unsupported payload type")
				}
				return stepAPI.SubmitAddress(ctx, ap, token)
			}),
		api.StepVerification: steps.NewWorkflow(api.StepVerification, container,
			func(ctx context.Context, p api.StepPayload, token string) error {
				vp, ok := p.(api.VerificationPayload)
				if !ok {
					return api.NewValidationError("verification", "unsupported payload type")
				}
				return stepAPI.SubmitVerification(ctx, vp, token)
			}),
		api.StepProfession: steps.NewWorkflow(api.StepProfession, container,
			func(ctx context.Context, p api.StepPayload, token string) error {
				pp, ok := p.(api.ProfessionPayload)
				if !ok {
					return api.NewValidationError("profession", "unsupported payload type")
				}
				return stepAPI.SubmitProfession(ctx, pp, token)
			}),
		api.StepProfileUpdate: steps.NewWorkflow(api.StepProfileUpdate, container,
			func(ctx context.Context, p api.StepPayload, token string) error {
				pp, ok := p.(api.ProfilePayload)
				if !ok {
					return api.NewValidationError("profileUpdate", "unsupported payload type")
				}
				return stepAPI.UpdateProfile(ctx, pp, token)
			}),
	}

	cl := &Client{
		container: container,
		sessions:  sessions,
		workflows: workflows,
		otp:       otp.NewFlow(c.Auth, sessions, container.Observer()),
		nav:       flow.NewNavigator(container.Observer()),
		pincode:   c.Pincode,
	}
	if c.Feed != nil {
		cl.feed = feed.NewService(c.Feed, sessions)
	}
	return cl, nil
}

// --- Session ---

// Restore loads a persisted session, if any. Call once at process start.
func (c *Client) Restore(ctx context.Context) (api.Session, error) {
	return c.sessions.Restore(ctx)
}

// Login authenticates with credentials and persists the session.
func (c *Client) Login(ctx context.Context, creds api.Credentials) (api.Session, error) {
	return c.sessions.Login(ctx, creds)
}

// Logout clears the session and resets all onboarding state. It never
// fails from the caller's perspective.
func (c *Client) Logout(ctx context.Context) {
	for _, w := range c.workflows {
		w.Invalidate()
	}
	c.otp.Reset(ctx)
	c.sessions.Logout(ctx)
	c.container.ResetSteps(ctx)
	c.nav.Reset()
}

// Session returns the current session.
func (c *Client) Session() api.Session {
	return c.sessions.Current()
}

// --- OTP sub-flow ---

// RequestOTP starts (or restarts) the registration OTP exchange.
func (c *Client) RequestOTP(ctx context.Context, phoneNumber, email string) error {
	return c.otp.Request(ctx, phoneNumber, email)
}

// VerifyOTP finalizes registration with the entered code. On success the
// user is authenticated.
func (c *Client) VerifyOTP(ctx context.Context, code string, reg api.RegistrationPayload) error {
	return c.otp.Verify(ctx, code, reg)
}

// ResetOTP returns the sub-flow to NotRequested. Call on registration
// screen focus, cancel, and navigation away.
func (c *Client) ResetOTP(ctx context.Context) {
	c.otp.Reset(ctx)
}

// OTPState returns a snapshot of the OTP sub-flow.
func (c *Client) OTPState() api.OTPState {
	return c.otp.State()
}

// --- Step submissions ---

// Submit dispatches a payload to its owning step workflow. Payloads may be
// passed by value or by pointer; anything else is rejected locally before
// any state transition.
func (c *Client) Submit(ctx context.Context, payload api.StepPayload) error {
	if payload == nil {
		return api.NewValidationError("payload", "payload is required")
	}
	normalized, err := normalizePayload(payload)
	if err != nil {
		return err
	}
	w, ok := c.workflows[normalized.Step()]
	if !ok {
		return api.NewValidationError("payload", fmt.Sprintf("unknown step %q", normalized.Step()))
	}
	return w.Submit(ctx, normalized)
}

// normalizePayload reduces a payload to its canonical value form. Pointer
// forms satisfy StepPayload too (the payload methods have value receivers),
// so they are dereferenced here; unknown implementations are rejected so a
// workflow's backend call can never see a type it cannot handle.
func normalizePayload(p api.StepPayload) (api.StepPayload, error) {
	switch v := p.(type) {
	case api.AddressPayload, api.VerificationPayload, api.ProfessionPayload, api.ProfilePayload:
		return p, nil
	case *api.AddressPayload:
		if v == nil {
			return nil, api.NewValidationError("payload", "payload is required")
		}
		return *v, nil
	case *api.VerificationPayload:
		if v == nil {
			return nil, api.NewValidationError("payload", "payload is required")
		}
		return *v, nil
	case *api.ProfessionPayload:
		if v == nil {
			return nil, api.NewValidationError("payload", "payload is required")
		}
		return *v, nil
	case *api.ProfilePayload:
		if v == nil {
			return nil, api.NewValidationError("payload", "payload is required")
		}
		return *v, nil
	default:
		return nil, api.NewValidationError("payload", fmt.Sprintf("unsupported payload type %T", p))
	}
}

// StepState returns the current state of a step.
func (c *Client) StepState(step api.Step) api.StepState {
	w, ok := c.workflows[step]
	if !ok {
		return api.StepState{Step: step, Status: api.StatusIdle}
	}
	return w.State()
}

// MarkStepSubmitted records a server-reported completion flag without a
// submission, e.g. when the backend says a restored session already
// finished a step.
func (c *Client) MarkStepSubmitted(ctx context.Context, step api.Step) {
	if w, ok := c.workflows[step]; ok {
		w.MarkSubmitted(ctx)
	}
}

// --- Routing ---

// Snapshot returns an immutable view of the current onboarding state.
func (c *Client) Snapshot() api.Snapshot {
	return c.container.Snapshot()
}

// NextRoute computes the next required screen without touching the
// navigation latch.
func (c *Client) NextRoute() api.Route {
	return flow.NextRoute(c.container.Snapshot())
}

// Navigate evaluates the navigator against the current state. It returns
// the target route and whether the consumer should actually navigate;
// navigate is false when the target is already the current screen.
func (c *Client) Navigate(ctx context.Context) (api.Route, bool) {
	return c.nav.Evaluate(ctx, c.container.Snapshot())
}

// --- Helpers ---

// PincodeSuggestions returns postal codes for a city, best-effort: lookup
// errors and empty results yield nil so the form falls back to manual
// entry.
func (c *Client) PincodeSuggestions(ctx context.Context, city string) []string {
	if c.pincode == nil {
		return nil
	}
	codes, err := c.pincode.Lookup(ctx, city)
	if err != nil {
		return nil
	}
	return codes
}

// Feed returns the social feed service, or nil when no FeedAPI
// collaborator was configured.
func (c *Client) Feed() *feed.Service {
	return c.feed
}
