// Package paystack is a thin client for the two Paystack endpoints this
// service talks to: hosted-checkout initialization and verification by
// reference, plus the signature check for inbound webhook events.
package paystack

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	// StatusSuccess is the terminal transaction status reported by the
	// gateway for a completed charge.
	StatusSuccess = "success"

	// EventChargeSuccess is the webhook event name for a completed charge.
	EventChargeSuccess = "charge.success"

	// SignatureHeader carries the HMAC-SHA512 of a webhook body.
	SignatureHeader = "X-Paystack-Signature"
)

type Client struct {
	url    string
	secret string
	http   *http.Client
}

func New(url string, secret string, timeout time.Duration) *Client {
	return &Client{
		url:    url,
		secret: secret,
		http:   &http.Client{Timeout: timeout},
	}
}

// DeclinedError is returned when the gateway answered but declared the
// request failed. The message is the gateway's own and is relayed to
// clients verbatim.
type DeclinedError struct {
	Message string
}

func (e *DeclinedError) Error() string {
	return fmt.Sprintf("gateway declined: %s", e.Message)
}

type InitializeRequest struct {
	Email       string `json:"email"`
	Amount      int64  `json:"amount"`
	Reference   string `json:"reference"`
	CallbackURL string `json:"callback_url"`
}

type InitializeResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Initialize requests a hosted checkout session. The amount is in the
// currency's minor unit.
func (c *Client) Initialize(ctx context.Context, req InitializeRequest) (InitializeResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return InitializeResponse{}, fmt.Errorf("marshaling initialize request: %w", err)
	}

	env, err := c.do(ctx, http.MethodPost, "/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return InitializeResponse{}, err
	}

	var data InitializeResponse
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return InitializeResponse{}, fmt.Errorf("decoding initialize data: %w", err)
	}

	return data, nil
}

type Transaction struct {
	Status    string `json:"status"`
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"`
}

// Verify polls the gateway for the final status of the transaction
// identified by reference.
func (c *Client) Verify(ctx context.Context, reference string) (Transaction, error) {
	env, err := c.do(ctx, http.MethodGet, "/transaction/verify/"+reference, nil)
	if err != nil {
		return Transaction{}, err
	}

	var data Transaction
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return Transaction{}, fmt.Errorf("decoding verify data: %w", err)
	}

	return data, nil
}

func (c *Client) do(ctx context.Context, method, path string, body *bytes.Reader) (envelope, error) {
	var r *http.Request
	var err error
	if body != nil {
		r, err = http.NewRequestWithContext(ctx, method, c.url+path, body)
	} else {
		r, err = http.NewRequestWithContext(ctx, method, c.url+path, nil)
	}
	if err != nil {
		return envelope{}, fmt.Errorf("building gateway request: %w", err)
	}

	r.Header.Set("Authorization", "Bearer "+c.secret)
	r.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(r)
	if err != nil {
		return envelope{}, fmt.Errorf("calling gateway: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return envelope{}, fmt.Errorf("decoding gateway response: %w", err)
	}

	if !env.Status {
		return envelope{}, &DeclinedError{Message: env.Message}
	}

	return env, nil
}

// Event is the subset of a webhook payload this service acts on.
type Event struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
	} `json:"data"`
}

func ParseEvent(body []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return Event{}, fmt.Errorf("decoding webhook event: %w", err)
	}
	if ev.Event == "" {
		return Event{}, errors.New("webhook event has no event name")
	}
	return ev, nil
}

// ValidSignature reports whether signature is the hex HMAC-SHA512 of
// body under the gateway secret.
func ValidSignature(secret string, body []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Sign computes the hex HMAC-SHA512 of body. It exists for tests and
// for callers that need to produce signed payloads.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
