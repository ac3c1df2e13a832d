package rest

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/devesh-qurilo/truepadosi/pkg/api"
)

// Ensure Client implements the collaborator interface.
var _ api.StepAPI = (*Client)(nil)

// SubmitAddress calls PUT /auth/communityaddress.
func (c *Client) SubmitAddress(ctx context.Context, p api.AddressPayload, token string) error {
	return c.doJSON(ctx, http.MethodPut, "/auth/communityaddress", p, token, nil)
}

// SubmitVerification calls PUT /auth/verification as a multipart form: the
// postal-card flag and address as fields, the document as a file part.
func (c *Client) SubmitVerification(ctx context.Context, p api.VerificationPayload, token string) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("verificationByPostalCard", strconv.FormatBool(p.ByPostalCard)); err != nil {
		return fmt.Errorf("encode verification form: %w", err)
	}
	if err := mw.WriteField("address", p.Address); err != nil {
		return fmt.Errorf("encode verification form: %w", err)
	}

	if p.Document != nil {
		name := p.Document.Name
		if name == "" {
			name = fmt.Sprintf("document_%d.jpg", time.Now().UnixMilli())
		}
		part, err := mw.CreateFormFile("document", name)
		if err != nil {
			return fmt.Errorf("encode verification document: %w", err)
		}
		if _, err := part.Write(p.Document.Data); err != nil {
			return fmt.Errorf("encode verification document: %w", err)
		}
	}

	if err := mw.Close(); err != nil {
		return fmt.Errorf("encode verification form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/auth/verification", &buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req, token, nil)
}

// SubmitProfession calls PUT /auth/profession.
func (c *Client) SubmitProfession(ctx context.Context, p api.ProfessionPayload, token string) error {
	return c.doJSON(ctx, http.MethodPut, "/auth/profession", p, token, nil)
}

// UpdateProfile calls PUT /auth/profiledetails. The date of birth is sent
// as YYYY-MM-DD.
func (c *Client) UpdateProfile(ctx context.Context, p api.ProfilePayload, token string) error {
	body := map[string]string{
		"gender":      p.Gender,
		"dateOfBirth": p.DateOfBirth.Format("2006-01-02"),
	}
	return c.doJSON(ctx, http.MethodPut, "/auth/profiledetails", body, token, nil)
}
