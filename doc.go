// Package truepadosi provides the onboarding and feed core of the TruePadosi
// client: the multi-step signup flow (registration with OTP verification,
// community address, identity verification, profession, profile completion)
// and the decision logic that routes a user to the single screen they must
// complete next.
//
// The package is UI-agnostic. Screens are thin I/O wrappers: they read
// state, render it, and call back into the core on user action. Everything
// with invariants lives here and is testable without a UI.
//
// # Core Concepts
//
//  1. Client
//  2. Flow controller / Navigator
//  3. Step submission workflows
//  4. OTP sub-flow
//  5. Session store
//
// # Client
//
// Client bundles the state container, session store, the four step
// workflows, the OTP sub-flow, the navigator and the feed service over a
// set of injected collaborators (backend APIs, secure storage, pincode
// lookup). Collaborators are interfaces; production code wires the REST
// implementations via Open, tests inject fakes.
//
// # Flow controller
//
// NextRoute is a pure function from a state snapshot to the next required
// screen: unauthenticated users go to login, authenticated users go to the
// first step not yet submitted (address, verification, profession, profile
// update — in that fixed order), and users with all steps submitted go
// home. The Navigator wraps it with a delta check so a screen issues at
// most one navigation per actual state transition; re-evaluating the same
// state never causes duplicate pushes.
//
// # Step workflows
//
// Each onboarding step has an owning workflow enforcing the submission
// lifecycle: Idle or Failed states accept a submit, payloads are validated
// client-side before any network call, a Pending step blocks concurrent
// duplicates, success is terminal (Submitted never regresses), and failures
// carry a human-readable reason and are retryable by the user.
//
// # OTP sub-flow
//
// Registration is finalized through a two-phase OTP exchange: request a
// code, then verify it together with the registration form. Verification
// is rejected locally unless a code of exactly 4 digits and a live
// otpDetailsID are present. Resetting the sub-flow (on screen focus or
// cancel) always discards the in-flight otpDetailsID.
//
// # Session store
//
// The session (user + token) is persisted through the SecureStorage
// collaborator and restored once at process start, which is what makes the
// onboarding flow resumable across restarts. Logout clears local state
// even when the persistence layer fails.
//
// For a runnable end-to-end walkthrough, see examples/onboarding.
package truepadosi
