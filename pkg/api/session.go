package api

// User is the identity returned by the backend on login or registration.
type User struct {
	ID          string `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

// Session holds the authentication token and user identity. A zero Session
// is unauthenticated.
//
// Invariant: Authenticated() is true exactly when Token is non-empty; the
// session store never produces a token without a user or vice versa.
type Session struct {
	User  User
	Token string
}

// Authenticated reports whether the session carries an auth token.
func (s Session) Authenticated() bool {
	return s.Token != ""
}
