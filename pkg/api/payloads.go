package api

import (
	"regexp"
	"time"
)

// StepPayload is the tagged form data of one onboarding step. Payloads are
// validated at the workflow boundary, before any status transition or
// network call.
type StepPayload interface {
	// Step returns the onboarding step this payload belongs to.
	Step() Step

	// Validate checks the payload's step-specific rules. It returns a
	// *ValidationError describing the first violation, or nil.
	Validate() error
}

var (
	pincodeRe = regexp.MustCompile(`^\d{6}$`)
	emailRe   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// AddressPayload is the community address form.
type AddressPayload struct {
	Country string `json:"country"`
	State   string `json:"state"`
	City    string `json:"city"`
	Pincode string `json:"pincode"`
}

func (p AddressPayload) Step() Step { return StepAddress }

func (p AddressPayload) Validate() error {
	if p.State == "" {
		return NewValidationError("state", "state is required")
	}
	if p.City == "" {
		return NewValidationError("city", "city is required")
	}
	if p.Pincode == "" {
		return NewValidationError("pincode", "pincode is required")
	}
	if !pincodeRe.MatchString(p.Pincode) {
		return NewValidationError("pincode", "pincode must be a 6-digit number")
	}
	return nil
}

// Document is a binary attachment submitted with identity verification.
type Document struct {
	Name        string
	ContentType string
	Data        []byte
}

// VerificationPayload is the identity verification form.
type VerificationPayload struct {
	ByPostalCard bool
	Address      string
	Document     *Document
}

func (p VerificationPayload) Step() Step { return StepVerification }

func (p VerificationPayload) Validate() error {
	if p.Document == nil || len(p.Document.Data) == 0 {
		return NewValidationError("document", "a document must be uploaded")
	}
	if p.Address == "" {
		return NewValidationError("address", "address is required")
	}
	return nil
}

// ProfessionPayload is the profession form.
type ProfessionPayload struct {
	Profession   string  `json:"profession"`
	HourlyCharge float64 `json:"hourlyCharge"`
}

func (p ProfessionPayload) Step() Step { return StepProfession }

func (p ProfessionPayload) Validate() error {
	if p.Profession == "" {
		return NewValidationError("profession", "profession is required")
	}
	if p.HourlyCharge <= 0 {
		return NewValidationError("hourlyCharge", "hourly charge must be a positive number")
	}
	return nil
}

// Genders accepted by the profile form.
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"
)

// ProfilePayload is the profile completion form.
type ProfilePayload struct {
	Gender      string    `json:"gender"`
	DateOfBirth time.Time `json:"dateOfBirth"`
}

func (p ProfilePayload) Step() Step { return StepProfileUpdate }

func (p ProfilePayload) Validate() error {
	switch p.Gender {
	case GenderMale, GenderFemale, GenderOther:
	default:
		return NewValidationError("gender", "gender must be Male, Female or Other")
	}
	if p.DateOfBirth.IsZero() {
		return NewValidationError("dateOfBirth", "date of birth is required")
	}
	if !p.DateOfBirth.Before(time.Now()) {
		return NewValidationError("dateOfBirth", "date of birth must be in the past")
	}
	return nil
}

// RegistrationPayload is the signup form. It is submitted to the backend
// together with the OTP code and details ID by the OTP sub-flow.
type RegistrationPayload struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phoneNumber"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (p RegistrationPayload) Validate() error {
	if p.FirstName == "" || p.LastName == "" || p.Email == "" ||
		p.PhoneNumber == "" || p.Password == "" || p.ConfirmPassword == "" {
		return NewValidationError("registration", "all fields are required")
	}
	if !emailRe.MatchString(p.Email) {
		return NewValidationError("email", "invalid email address")
	}
	if len(p.Password) < 6 {
		return NewValidationError("password", "password must be at least 6 characters long")
	}
	if p.Password != p.ConfirmPassword {
		return NewValidationError("confirmPassword", "passwords do not match")
	}
	return nil
}

// Credentials is the login form.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c Credentials) Validate() error {
	if c.Email == "" {
		return NewValidationError("email", "email is required")
	}
	if !emailRe.MatchString(c.Email) {
		return NewValidationError("email", "invalid email address")
	}
	if c.Password == "" {
		return NewValidationError("password", "password is required")
	}
	return nil
}
