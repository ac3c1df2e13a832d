// Package flow implements the onboarding flow controller: the pure routing
// decision over a state snapshot, and the Navigator that turns routing
// decisions into at-most-one navigation command per state transition.
package flow

import (
	"context"
	"sync"

	"github.com/devesh-qurilo/truepadosi/pkg/api"
)

// NextRoute computes the single screen the user must visit next.
//
// It is a pure function: deterministic for a given snapshot, no side
// effects. Unauthenticated sessions route to login; otherwise steps are
// evaluated in their fixed priority order and the first one not yet
// submitted wins. When all steps are submitted the flow is complete and
// the user lands on home.
func NextRoute(snap api.Snapshot) api.Route {
	if !snap.Session.Authenticated() {
		return api.RouteLogin
	}
	for _, step := range api.Steps() {
		if snap.StepStatus(step) != api.StatusSubmitted {
			return api.RouteForStep(step)
		}
	}
	return api.RouteHome
}

// Navigator converts routing decisions into navigation commands. It emits a
// command only when the computed target differs from the route currently
// displayed, so re-evaluations after unrelated state changes are no-ops and
// duplicate pushes cannot occur. The latch resets automatically the moment
// the computed target changes.
type Navigator struct {
	mu       sync.Mutex
	current  api.Route
	observer api.Observer
}

// NewNavigator creates a Navigator with no current route; the first
// evaluation always emits a command.
func NewNavigator(obs api.Observer) *Navigator {
	if obs == nil {
		obs = api.NoopObserver{}
	}
	return &Navigator{observer: obs}
}

// Current returns the route the navigator last emitted.
func (n *Navigator) Current() api.Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Evaluate computes the target route for the snapshot and reports whether
// the consumer should navigate. navigate is false when the target equals
// the current route.
func (n *Navigator) Evaluate(ctx context.Context, snap api.Snapshot) (target api.Route, navigate bool) {
	target = NextRoute(snap)

	n.mu.Lock()
	from := n.current
	if target == from {
		n.mu.Unlock()
		return target, false
	}
	n.current = target
	n.mu.Unlock()

	n.observer.OnRouteChanged(ctx, from, target)
	return target, true
}

// Reset forgets the current route, forcing the next Evaluate to emit.
// Used when the consumer tears down its screen stack (e.g. on restart).
func (n *Navigator) Reset() {
	n.mu.Lock()
	n.current = ""
	n.mu.Unlock()
}
