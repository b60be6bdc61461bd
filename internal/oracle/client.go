// Package oracle wraps the external verifiable-randomness service. The core
// consumes it through the Client interface: a pure fee quote plus a paid
// request that returns a correlation token. The randomness itself arrives
// later as an authenticated callback on the HTTP surface; this package only
// covers the outbound half.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client is the interface the core needs from the randomness oracle.
type Client interface {
	// QuoteFee returns the fee the oracle charges for a request with the
	// given callback gas budget. Pure query, no side effects.
	QuoteFee(ctx context.Context, callbackGas uint64) (int64, error)

	// RequestRandomness issues a paid randomness request and returns the
	// correlation token used to match the eventual callback.
	RequestRandomness(ctx context.Context, callbackGas uint64, feePaid int64) (string, error)
}

// HTTPClient talks to the oracle over its JSON HTTP API.
type HTTPClient struct {
	baseURL string
	secret  string
	client  *http.Client
}

// NewHTTPClient creates a client for the oracle at baseURL, authenticating
// with the shared secret.
func NewHTTPClient(baseURL, secret string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		secret:  secret,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *HTTPClient) QuoteFee(ctx context.Context, callbackGas uint64) (int64, error) {
	u := fmt.Sprintf("%s/v1/fee?callback_gas=%s", c.baseURL, url.QueryEscape(strconv.FormatUint(callbackGas, 10)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("X-Oracle-Key", c.secret)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("oracle fee quote: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("oracle fee quote: unexpected status %d", resp.StatusCode)
	}

	var out struct {
		Fee int64 `json:"fee"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("oracle fee quote: %w", err)
	}
	return out.Fee, nil
}

func (c *HTTPClient) RequestRandomness(ctx context.Context, callbackGas uint64, feePaid int64) (string, error) {
	body, err := json.Marshal(map[string]interface{}{
		"callback_gas": callbackGas,
		"fee_paid":     feePaid,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/request", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Oracle-Key", c.secret)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("oracle request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return "", fmt.Errorf("oracle request: unexpected status %d", resp.StatusCode)
	}

	var out struct {
		RequestID string `json:"request_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("oracle request: %w", err)
	}
	if out.RequestID == "" {
		return "", fmt.Errorf("oracle request: empty request id")
	}
	return out.RequestID, nil
}
