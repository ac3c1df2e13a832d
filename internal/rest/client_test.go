package rest

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/devesh-qurilo/truepadosi/pkg/api"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, WithHTTPClient(srv.Client()))
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func TestLoginSuccess(t *testing.T) {
	t.Parallel()

	var gotBody map[string]string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		writeJSON(t, w, http.StatusOK, map[string]any{
			"success": true,
			"user":    map[string]string{"id": "u-1", "firstName": "Asha", "email": "asha@example.com"},
			"token":   "tok-1",
		})
	}))

	sess, err := client.Login(context.Background(), api.Credentials{
		Email:    "asha@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	require.Equal(t, "tok-1", sess.Token)
	require.Equal(t, "u-1", sess.User.ID)
	require.Equal(t, "asha@example.com", gotBody["email"])
	require.Equal(t, "secret1", gotBody["password"])
}

func TestLoginWithoutTokenIsNetworkError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"success": true})
	}))

	_, err := client.Login(context.Background(), api.Credentials{Email: "a@b.cd", Password: "x"})
	require.True(t, api.IsNetworkError(err))
}

func TestUnauthorizedMapsToSessionError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, map[string]any{
			"success": false,
			"message": "token expired",
		})
	}))

	err := client.SubmitProfession(context.Background(),
		api.ProfessionPayload{Profession: "Electrician", HourlyCharge: 100}, "stale-token")
	require.True(t, api.IsSessionError(err))
	require.Equal(t, "token expired", api.Reason(err))
}

func TestServerErrorMapsToNetworkError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"message": "database down",
		})
	}))

	err := client.SubmitAddress(context.Background(),
		api.AddressPayload{State: "Delhi", City: "New Delhi", Pincode: "110001"}, "tok-1")
	require.True(t, api.IsNetworkError(err))

	var nerr *api.NetworkError
	require.ErrorAs(t, err, &nerr)
	require.Equal(t, http.StatusInternalServerError, nerr.StatusCode)
	require.Equal(t, "database down", nerr.Message)
}

func TestSuccessFalseMapsToNetworkError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{
			"success": false,
			"message": "profession not recognised",
		})
	}))

	err := client.SubmitProfession(context.Background(),
		api.ProfessionPayload{Profession: "Electrician", HourlyCharge: 100}, "tok-1")
	require.True(t, api.IsNetworkError(err))
	require.Equal(t, "profession not recognised", api.Reason(err))
}

func TestUnreachableServerMapsToNetworkError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	client := NewClient(srv.URL, WithHTTPClient(srv.Client()))
	srv.Close()

	_, err := client.Login(context.Background(), api.Credentials{Email: "a@b.cd", Password: "x"})
	require.True(t, api.IsNetworkError(err))
	require.Equal(t, "server unreachable", api.Reason(err))
}

func TestSendOTPReturnsDetails(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/sendotp", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "9876543210", body["phoneNumber"])
		require.Equal(t, "asha@example.com", body["email"])

		writeJSON(t, w, http.StatusOK, map[string]any{
			"success": true,
			"Details": "details-1",
		})
	}))

	id, err := client.SendOTP(context.Background(), "9876543210", "asha@example.com")
	require.NoError(t, err)
	require.Equal(t, "details-1", id)
}

func TestSendOTPMissingDetailsIsNetworkError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"success": true})
	}))

	_, err := client.SendOTP(context.Background(), "9876543210", "asha@example.com")
	require.True(t, api.IsNetworkError(err))
}

func TestRegisterSendsOTPFields(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/signup", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "Asha", body["firstName"])
		require.Equal(t, "1234", body["otp"])
		require.Equal(t, "details-1", body["otpDetailsId"])

		writeJSON(t, w, http.StatusOK, map[string]any{
			"success": true,
			"user":    map[string]string{"id": "u-1"},
			"token":   "tok-1",
		})
	}))

	sess, err := client.Register(context.Background(), api.RegistrationPayload{
		FirstName:       "Asha",
		LastName:        "Verma",
		Email:           "asha@example.com",
		PhoneNumber:     "9876543210",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	}, "1234", "details-1")
	require.NoError(t, err)
	require.Equal(t, "tok-1", sess.Token)
}

func TestSubmitAddressSendsBearerToken(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/auth/communityaddress", r.URL.Path)
		require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "110001", body["pincode"])

		writeJSON(t, w, http.StatusOK, map[string]any{"success": true})
	}))

	err := client.SubmitAddress(context.Background(),
		api.AddressPayload{Country: "India", State: "Delhi", City: "New Delhi", Pincode: "110001"}, "tok-1")
	require.NoError(t, err)
}

func TestSubmitVerificationMultipart(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/auth/verification", r.URL.Path)

		mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		require.NoError(t, err)
		require.Equal(t, "multipart/form-data", mediaType)

		mr := multipart.NewReader(r.Body, params["boundary"])
		fields := map[string]string{}
		var fileName string
		var fileData []byte
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			data, err := io.ReadAll(part)
			require.NoError(t, err)
			if part.FileName() != "" {
				require.Equal(t, "document", part.FormName())
				fileName = part.FileName()
				fileData = data
				continue
			}
			fields[part.FormName()] = string(data)
		}

		require.Equal(t, "true", fields["verificationByPostalCard"])
		require.Equal(t, "42 Main St", fields["address"])
		require.Equal(t, "id.jpg", fileName)
		require.Equal(t, []byte{0xff, 0xd8, 0xff}, fileData)

		writeJSON(t, w, http.StatusOK, map[string]any{"success": true})
	}))

	err := client.SubmitVerification(context.Background(), api.VerificationPayload{
		ByPostalCard: true,
		Address:      "42 Main St",
		Document: &api.Document{
			Name:        "id.jpg",
			ContentType: "image/jpeg",
			Data:        []byte{0xff, 0xd8, 0xff},
		},
	}, "tok-1")
	require.NoError(t, err)
}

func TestUpdateProfileFormatsDateOfBirth(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/profiledetails", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "Female", body["gender"])
		require.Equal(t, "1990-03-14", body["dateOfBirth"])

		writeJSON(t, w, http.StatusOK, map[string]any{"success": true})
	}))

	err := client.UpdateProfile(context.Background(), api.ProfilePayload{
		Gender:      api.GenderFemale,
		DateOfBirth: mustDate(t, "1990-03-14"),
	}, "tok-1")
	require.NoError(t, err)
}

func TestRequestIDHeaderFromContext(t *testing.T) {
	t.Parallel()

	var gotID string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get("X-Request-ID")
		writeJSON(t, w, http.StatusOK, map[string]any{"success": true})
	}))

	ctx := api.WithRequestID(context.Background(), "req-42")
	err := client.SubmitProfession(ctx,
		api.ProfessionPayload{Profession: "Electrician", HourlyCharge: 100}, "tok-1")
	require.NoError(t, err)
	require.Equal(t, "req-42", gotID)
}
