package api

import "context"

type requestIDKey struct{}

// WithRequestID returns a context carrying a client-generated request ID.
// Submission workflows tag every attempt with a fresh ID; HTTP collaborators
// forward it as the X-Request-ID header so a failed attempt can be matched
// against backend logs.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext extracts the request ID set by WithRequestID, or ""
// if none is present.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
