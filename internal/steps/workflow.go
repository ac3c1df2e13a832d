// Package steps implements the per-step submission workflows: the status
// gate, client-side validation, the single network call per attempt, and
// the terminal Submitted law.
package steps

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/devesh-qurilo/truepadosi/internal/state"
	"github.com/devesh-qurilo/truepadosi/pkg/api"
)

// SubmitFunc performs the backend call for one step kind. Implementations
// attach the token and translate transport failures into the api error
// taxonomy.
type SubmitFunc func(ctx context.Context, payload api.StepPayload, token string) error

// Workflow owns the submission lifecycle of exactly one onboarding step.
// It is the only component that mutates that step's state.
type Workflow struct {
	step      api.Step
	container *state.Container
	submit    SubmitFunc

	// generation invalidates in-flight attempts: an attempt may only apply
	// its terminal transition if no Invalidate happened since it began.
	mu         sync.Mutex
	generation uint64
}

// NewWorkflow creates the workflow for one step.
func NewWorkflow(step api.Step, container *state.Container, submit SubmitFunc) *Workflow {
	return &Workflow{
		step:      step,
		container: container,
		submit:    submit,
	}
}

// Step returns the step this workflow owns.
func (w *Workflow) Step() api.Step { return w.step }

// State returns the current state of the owned step.
func (w *Workflow) State() api.StepState {
	return w.container.StepState(w.step)
}

// Submit runs one submission attempt.
//
// Gate: callable only while the step is Idle or Failed. A Submitted step is
// terminal — the call is rejected locally with ErrAlreadySubmitted, no
// network call, no state change. A Pending step rejects with
// ErrSubmissionInFlight so the same step can never have two concurrent
// calls in flight.
//
// Validation failures surface synchronously and leave the status untouched
// (Pending is never entered). Exactly one network call is made per accepted
// invocation; there are no automatic retries — a Failed step is retried
// only by the user calling Submit again.
func (w *Workflow) Submit(ctx context.Context, payload api.StepPayload) error {
	if payload == nil {
		return api.NewValidationError(string(w.step), "payload is required")
	}
	if payload.Step() != w.step {
		return api.NewValidationError(string(w.step),
			fmt.Sprintf("payload belongs to step %q", payload.Step()))
	}

	if err := gateError(w.State().Status); err != nil {
		return err
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	token := w.container.Session().Token
	if token == "" {
		return api.NewSessionError("not authenticated; log in before submitting " + string(w.step))
	}

	gen, err := w.begin(ctx)
	if err != nil {
		return err
	}

	attemptCtx := api.WithRequestID(ctx, uuid.NewString())
	err = w.submit(attemptCtx, payload, token)

	if !w.current(gen) {
		// The workflow was invalidated (logout, teardown) while the call was
		// in flight. The late resolution must not touch state.
		return err
	}

	if err != nil {
		w.container.SetStepState(ctx, api.StepState{
			Step:   w.step,
			Status: api.StatusFailed,
			Reason: api.Reason(err),
		})
		return err
	}

	w.container.SetStepState(ctx, api.StepState{
		Step:    w.step,
		Status:  api.StatusSubmitted,
		Payload: payload,
	})
	return nil
}

// MarkSubmitted records that the backend already considers this step
// complete, e.g. when the server reports completion flags on session
// restore. It never regresses a Submitted step and bypasses validation —
// there is no payload to validate.
func (w *Workflow) MarkSubmitted(ctx context.Context) {
	if w.State().Submitted() {
		return
	}
	w.container.SetStepState(ctx, api.StepState{
		Step:   w.step,
		Status: api.StatusSubmitted,
	})
}

// Invalidate discards any in-flight attempt: its eventual resolution will
// not be applied. Called on logout and client teardown.
func (w *Workflow) Invalidate() {
	w.mu.Lock()
	w.generation++
	w.mu.Unlock()
}

// gateError maps a step status to the local rejection for a submit attempt,
// or nil when submission is allowed.
func gateError(status api.Status) error {
	switch status {
	case api.StatusSubmitted:
		return api.ErrAlreadySubmitted
	case api.StatusPending:
		return api.ErrSubmissionInFlight
	default:
		return nil
	}
}

// begin atomically re-checks the gate, transitions to Pending, and returns
// the generation the attempt belongs to. The atomic re-check closes the
// window between the read-only gate in Submit and Pending entry.
func (w *Workflow) begin(ctx context.Context) (uint64, error) {
	w.mu.Lock()
	if err := gateError(w.container.StepState(w.step).Status); err != nil {
		w.mu.Unlock()
		return 0, err
	}
	gen := w.generation
	w.container.SetStepState(ctx, api.StepState{
		Step:   w.step,
		Status: api.StatusPending,
	})
	w.mu.Unlock()
	return gen, nil
}

// current reports whether the attempt that started at generation gen is
// still the live one.
func (w *Workflow) current(gen uint64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.generation == gen
}
