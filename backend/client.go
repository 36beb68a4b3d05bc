// Package backend is a client of the faucet registration service. The aggregation
// only reads the list of deleted faucets; the write endpoint is offered to callers
// registering new faucets.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ClipFinance/faucet-lib/common/utils"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

const (
	// httpTimeout is the default HTTP request timeout.
	httpTimeout = 15 * time.Second

	// maxResponseBody is the maximum response body size to read (1 MB).
	maxResponseBody = 1 << 20

	deletedFaucetsPath = "/api/deleted-faucets"
	faucetMetadataPath = "/api/faucet-metadata"
)

// ErrUnexpectedStatus is returned when the service answers with a non 2xx status.
var ErrUnexpectedStatus = errors.New("unexpected response status")

// FaucetRegistration is the metadata saved when a faucet is created.
type FaucetRegistration struct {
	FaucetAddress string `json:"faucetAddress"`
	OwnerAddress  string `json:"ownerAddress"`
	ChainID       uint64 `json:"chainId"`
	FaucetType    string `json:"faucetType"`
	Name          string `json:"name,omitempty"`
	Description   string `json:"description,omitempty"`
	ImageURL      string `json:"imageUrl,omitempty"`
}

type deletedFaucetsResponse struct {
	DeletedAddresses []string `json:"deletedAddresses"`
}

// Client talks to the registration service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// ClientOptions configures the client.
type ClientOptions struct {
	// HTTPClient overrides the default HTTP client.
	HTTPClient *http.Client
	// RequestsPerSecond bounds the request rate, zero means 5.
	RequestsPerSecond float64
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, opts *ClientOptions) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("backend base url is required")
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: httpTimeout},
		limiter:    rate.NewLimiter(5, 5),
	}

	if opts != nil {
		if opts.HTTPClient != nil {
			c.httpClient = opts.HTTPClient
		}
		if opts.RequestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), int(opts.RequestsPerSecond)+1)
		}
	}

	return c, nil
}

// GetDeletedFaucets returns the normalized addresses of faucets removed by their owners.
// Invalid addresses in the response are skipped.
func (c *Client) GetDeletedFaucets(ctx context.Context) ([]string, error) {
	var body deletedFaucetsResponse
	if err := c.do(ctx, http.MethodGet, deletedFaucetsPath, nil, &body); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(body.DeletedAddresses))
	for _, address := range body.DeletedAddresses {
		if normalized := utils.NormalizeAddress(address); normalized != "" {
			out = append(out, normalized)
		}
	}
	return out, nil
}

// SaveFaucetMetadata registers a faucet with the service.
func (c *Client) SaveFaucetMetadata(ctx context.Context, registration FaucetRegistration) error {
	if utils.NormalizeAddress(registration.FaucetAddress) == "" {
		return errors.Errorf("invalid faucet address %q", registration.FaucetAddress)
	}
	return c.do(ctx, http.MethodPost, faucetMetadataPath, registration, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "rate limiter")
	}

	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "failed to encode request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return errors.Wrap(err, "failed to read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Wrapf(ErrUnexpectedStatus, "%s %s: %d %s", method, path, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrap(err, "failed to decode response")
	}
	return nil
}
