// Package api defines the public contract of the onboarding core: step and
// route identifiers, session and payload types, the error taxonomy, the
// collaborator interfaces the core consumes (backend APIs, secure storage,
// pincode lookup), and the Observer used for logging and metrics.
//
// Implementations live under internal/; most users import the root
// truepadosi package, which re-exports everything defined here.
package api
