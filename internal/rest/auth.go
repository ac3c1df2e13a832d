package rest

import (
	"context"
	"net/http"

	"github.com/devesh-qurilo/truepadosi/pkg/api"
)

// Ensure Client implements the collaborator interface.
var _ api.AuthAPI = (*Client)(nil)

// SendOTP calls POST /auth/sendotp. The backend returns the opaque details
// ID in the "Details" field.
func (c *Client) SendOTP(ctx context.Context, phoneNumber, email string) (string, error) {
	body := map[string]string{
		"phoneNumber": phoneNumber,
		"email":       email,
	}
	var out struct {
		envelope
		Details string `json:"Details"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/sendotp", body, "", &out); err != nil {
		return "", err
	}
	if out.Details == "" {
		return "", &api.NetworkError{Message: "server did not return OTP details"}
	}
	return out.Details, nil
}

// registrationRequest is the signup body: the registration form plus the
// OTP code and details ID.
type registrationRequest struct {
	api.RegistrationPayload
	OTP          string `json:"otp"`
	OTPDetailsID string `json:"otpDetailsId"`
}

// sessionResponse is the shape shared by signup and login.
type sessionResponse struct {
	envelope
	User  api.User `json:"user"`
	Token string   `json:"token"`
}

func (r sessionResponse) session() api.Session {
	return api.Session{User: r.User, Token: r.Token}
}

// Register calls POST /auth/signup, finalizing a registration with the OTP
// code the user entered.
func (c *Client) Register(ctx context.Context, reg api.RegistrationPayload, code, otpDetailsID string) (api.Session, error) {
	body := registrationRequest{
		RegistrationPayload: reg,
		OTP:                 code,
		OTPDetailsID:        otpDetailsID,
	}
	var out sessionResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/signup", body, "", &out); err != nil {
		return api.Session{}, err
	}
	if out.Token == "" {
		return api.Session{}, &api.NetworkError{Message: "server did not return a token"}
	}
	return out.session(), nil
}

// Login calls POST /auth/login.
func (c *Client) Login(ctx context.Context, creds api.Credentials) (api.Session, error) {
	var out sessionResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", creds, "", &out); err != nil {
		return api.Session{}, err
	}
	if out.Token == "" {
		return api.Session{}, &api.NetworkError{Message: "server did not return a token"}
	}
	return out.session(), nil
}
