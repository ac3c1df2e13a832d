package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/doyensec/safeurl"

	"github.com/devesh-qurilo/truepadosi/pkg/api"
)

// DefaultPincodeBaseURL is the public postal-code directory used by the
// address form.
const DefaultPincodeBaseURL = "https://api.postalpincode.in"

// PincodeClient suggests postal codes for a city via the public pincode
// directory. Lookups are best-effort by contract; callers must treat errors
// and empty results as "enter the pincode manually".
type PincodeClient struct {
	baseURL string
	http    *http.Client
}

// Ensure PincodeClient implements the collaborator interface.
var _ api.PincodeLookup = (*PincodeClient)(nil)

// PincodeOption customizes a PincodeClient.
type PincodeOption func(*PincodeClient)

// WithPincodeHTTPClient replaces the underlying HTTP client (tests).
func WithPincodeHTTPClient(hc *http.Client) PincodeOption {
	return func(c *PincodeClient) { c.http = hc }
}

// WithPincodeBaseURL points the client at a different directory host.
func WithPincodeBaseURL(base string) PincodeOption {
	return func(c *PincodeClient) { c.baseURL = strings.TrimRight(base, "/") }
}

// NewPincodeClient creates a PincodeClient with the SSRF-safe default
// transport.
func NewPincodeClient(opts ...PincodeOption) *PincodeClient {
	c := &PincodeClient{baseURL: DefaultPincodeBaseURL}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		cfg := safeurl.GetConfigBuilder().
			SetTimeout(10 * time.Second).
			SetAllowedSchemes("http", "https").
			SetAllowedPorts(80, 443).
			Build()
		c.http = safeurl.Client(cfg).Client
	}
	return c
}

// pincodeResponse mirrors the directory's response: an array with one entry
// per query, each listing post offices.
type pincodeResponse []struct {
	Status     string `json:"Status"`
	Message    string `json:"Message"`
	PostOffice []struct {
		Pincode string `json:"Pincode"`
	} `json:"PostOffice"`
}

// Lookup returns the distinct pincodes of the city's post offices, in the
// order the directory lists them.
func (c *PincodeClient) Lookup(ctx context.Context, city string) ([]string, error) {
	if city == "" {
		return nil, nil
	}

	u := c.baseURL + "/postoffice/" + url.PathEscape(city)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &api.NetworkError{Message: "pincode lookup failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &api.NetworkError{StatusCode: resp.StatusCode, Message: "pincode lookup failed"}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &api.NetworkError{Message: "pincode lookup failed", Err: err}
	}

	var decoded pincodeResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &api.NetworkError{Message: "pincode lookup returned malformed data", Err: err}
	}
	if len(decoded) == 0 || !strings.EqualFold(decoded[0].Status, "Success") {
		return nil, nil
	}

	seen := make(map[string]struct{})
	var codes []string
	for _, office := range decoded[0].PostOffice {
		if office.Pincode == "" {
			continue
		}
		if _, ok := seen[office.Pincode]; ok {
			continue
		}
		seen[office.Pincode] = struct{}{}
		codes = append(codes, office.Pincode)
	}
	return codes, nil
}
