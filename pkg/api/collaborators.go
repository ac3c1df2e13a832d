package api

import "context"

// AuthAPI is the backend authentication collaborator.
type AuthAPI interface {
	// SendOTP asks the backend to deliver a one-time code to the given phone
	// and email. It returns the opaque otpDetailsID that must accompany the
	// eventual registration call.
	SendOTP(ctx context.Context, phoneNumber, email string) (otpDetailsID string, err error)

	// Register finalizes a registration with the OTP code the user entered.
	// On success the returned session carries the new user and token.
	Register(ctx context.Context, reg RegistrationPayload, code, otpDetailsID string) (Session, error)

	// Login exchanges credentials for a session.
	Login(ctx context.Context, creds Credentials) (Session, error)
}

// StepAPI is the backend collaborator for the four onboarding step
// submissions. Every call attaches the session's auth token.
type StepAPI interface {
	SubmitAddress(ctx context.Context, p AddressPayload, token string) error
	SubmitVerification(ctx context.Context, p VerificationPayload, token string) error
	SubmitProfession(ctx context.Context, p ProfessionPayload, token string) error
	UpdateProfile(ctx context.Context, p ProfilePayload, token string) error
}

// SecureStorage is the persistent key-value collaborator used for the auth
// token and serialized user data. GetItem returns "" with a nil error when
// the key is absent.
type SecureStorage interface {
	GetItem(ctx context.Context, key string) (string, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// PincodeLookup suggests postal codes for a city. It is best-effort: an
// empty result or an error must fall back to manual entry, never block the
// address form.
type PincodeLookup interface {
	Lookup(ctx context.Context, city string) ([]string, error)
}
