// Package state provides the injectable state container backing the
// onboarding core: typed get/set for the session and the per-step
// completion registry, with change notification through the Observer.
package state

import (
	"context"
	"sync"
	"time"

	"github.com/devesh-qurilo/truepadosi/pkg/api"
)

// Container is a goroutine-safe holder of the session and the four step
// states. Workflows mutate exactly their own step; the flow controller only
// ever reads an immutable Snapshot.
type Container struct {
	mu       sync.RWMutex
	session  api.Session
	steps    map[api.Step]api.StepState
	observer api.Observer

	now func() time.Time
}

// NewContainer creates a Container with all steps at StatusIdle and an
// unauthenticated session. Events are fanned out to the given observers.
func NewContainer(obs ...api.Observer) *Container {
	steps := make(map[api.Step]api.StepState, len(api.Steps()))
	for _, step := range api.Steps() {
		steps[step] = api.StepState{Step: step, Status: api.StatusIdle}
	}
	return &Container{
		steps:    steps,
		observer: api.NewCompositeObserver(obs...),
		now:      time.Now,
	}
}

// Observer returns the composite observer registered on this container.
func (c *Container) Observer() api.Observer {
	return c.observer
}

// Snapshot returns an immutable copy of the current state.
func (c *Container) Snapshot() api.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	steps := make(map[api.Step]api.StepState, len(c.steps))
	for k, v := range c.steps {
		steps[k] = v
	}
	return api.Snapshot{
		Session: c.session,
		Steps:   steps,
	}
}

// Session returns the current session.
func (c *Container) Session() api.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// SetSession replaces the session and notifies observers.
func (c *Container) SetSession(ctx context.Context, s api.Session) {
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()

	c.observer.OnSessionChanged(ctx, s)
}

// ClearSession resets the session to unauthenticated and notifies observers.
func (c *Container) ClearSession(ctx context.Context) {
	c.SetSession(ctx, api.Session{})
}

// StepState returns the state of the given step.
func (c *Container) StepState(step api.Step) api.StepState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.steps[step]
}

// SetStepState applies a step transition and notifies observers.
// UpdatedAt is stamped by the container.
func (c *Container) SetStepState(ctx context.Context, st api.StepState) {
	c.mu.Lock()
	prev := c.steps[st.Step].Status
	st.UpdatedAt = c.now()
	c.steps[st.Step] = st
	c.mu.Unlock()

	c.observer.OnStepStatusChanged(ctx, st, prev)
}

// ResetSteps returns every step to StatusIdle. Used on logout so a freshly
// authenticated user starts the flow from scratch.
func (c *Container) ResetSteps(ctx context.Context) {
	for _, step := range api.Steps() {
		c.mu.Lock()
		prev := c.steps[step].Status
		st := api.StepState{Step: step, Status: api.StatusIdle, UpdatedAt: c.now()}
		c.steps[step] = st
		c.mu.Unlock()

		if prev != api.StatusIdle {
			c.observer.OnStepStatusChanged(ctx, st, prev)
		}
	}
}
