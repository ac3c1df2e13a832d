// Package session implements the session store: login, logout, and restore
// of a persisted session over the SecureStorage collaborator.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/devesh-qurilo/truepadosi/internal/state"
	"github.com/devesh-qurilo/truepadosi/pkg/api"
)

// Storage keys. These match what the backend clients have always used, so
// sessions persisted by older builds keep restoring.
const (
	keyAuthToken = "authToken"
	keyUserData  = "userData"
)

// Store owns the session half of the state container. It is the only
// component that mutates the session.
type Store struct {
	container *state.Container
	storage   api.SecureStorage
	auth      api.AuthAPI

	now func() time.Time
}

// NewStore creates a session store over the given collaborators.
func NewStore(container *state.Container, storage api.SecureStorage, auth api.AuthAPI) *Store {
	return &Store{
		container: container,
		storage:   storage,
		auth:      auth,
		now:       time.Now,
	}
}

// Current returns the session held by the container.
func (s *Store) Current() api.Session {
	return s.container.Session()
}

// Restore loads a persisted session, if any. It is called once at process
// start. A missing token yields an unauthenticated session with no error.
// A token that is a JWT with an expiry in the past is discarded rather than
// restored, so the user is routed to login instead of looping on
// SessionError rejections.
func (s *Store) Restore(ctx context.Context) (api.Session, error) {
	token, err := s.storage.GetItem(ctx, keyAuthToken)
	if err != nil {
		return api.Session{}, fmt.Errorf("restore session: %w", err)
	}
	if token == "" {
		return api.Session{}, nil
	}

	if s.tokenExpired(token) {
		// Best effort cleanup; an expired token is unusable either way.
		_ = s.storage.RemoveItem(ctx, keyAuthToken)
		_ = s.storage.RemoveItem(ctx, keyUserData)
		return api.Session{}, nil
	}

	var user api.User
	raw, err := s.storage.GetItem(ctx, keyUserData)
	if err != nil {
		return api.Session{}, fmt.Errorf("restore session: %w", err)
	}
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			return api.Session{}, fmt.Errorf("restore session: decode user: %w", err)
		}
	}

	sess := api.Session{User: user, Token: token}
	s.container.SetSession(ctx, sess)
	return sess, nil
}

// Login exchanges credentials for a session, persists it, and publishes it
// to the container. On any failure the prior session state is left
// untouched.
func (s *Store) Login(ctx context.Context, creds api.Credentials) (api.Session, error) {
	if err := creds.Validate(); err != nil {
		return api.Session{}, err
	}

	sess, err := s.auth.Login(ctx, creds)
	if err != nil {
		return api.Session{}, err
	}

	if err := s.Adopt(ctx, sess); err != nil {
		return api.Session{}, err
	}
	return sess, nil
}

// Adopt persists and publishes a session obtained elsewhere (login or
// OTP-verified registration). Persistence happens before the session
// becomes visible.
func (s *Store) Adopt(ctx context.Context, sess api.Session) error {
	if !sess.Authenticated() {
		return api.NewSessionError("cannot adopt a session without a token")
	}

	userJSON, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("persist session: encode user: %w", err)
	}
	if err := s.storage.SetItem(ctx, keyAuthToken, sess.Token); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	if err := s.storage.SetItem(ctx, keyUserData, string(userJSON)); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	s.container.SetSession(ctx, sess)
	return nil
}

// Logout clears the session. Local state is cleared regardless of
// persistence-layer failures: from the user's perspective logout never
// fails, so storage errors are dropped rather than retried.
func (s *Store) Logout(ctx context.Context) {
	_ = s.storage.RemoveItem(ctx, keyAuthToken)
	_ = s.storage.RemoveItem(ctx, keyUserData)
	s.container.ClearSession(ctx)
}

// tokenExpired reports whether token is a JWT whose exp claim is in the
// past. Opaque (non-JWT) tokens and JWTs without an expiry are treated as
// live; only the backend can judge those.
func (s *Store) tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(s.now())
}
