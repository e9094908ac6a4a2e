package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sxo6luxe/sxo6-backend/pkg/config"
	pkgerrors "github.com/sxo6luxe/sxo6-backend/pkg/errors"
)

const (
	defaultBaseURL             = "https://api.paystack.co"
	statusSuccess              = "success"
	responseBodyReadLimit int64 = 2048
)

var errSecretKeyRequired = errors.New("paystack secret key is required")

// Client wraps the Paystack transaction APIs used during checkout.
type Client struct {
	httpClient *http.Client
	baseURL    string
	secretKey  string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured Paystack base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds the Paystack client from configuration.
func NewClient(cfg config.PaystackConfig, opts ...Option) (*Client, error) {
	trimmedKey := strings.TrimSpace(cfg.SecretKey)
	if trimmedKey == "" {
		return nil, errSecretKeyRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := &Client{
		secretKey:  trimmedKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
	if trimmed := strings.TrimSpace(cfg.BaseURL); trimmed != "" {
		client.baseURL = trimmed
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: timeout}
	}
	if client.baseURL == "" {
		client.baseURL = defaultBaseURL
	}

	return client, nil
}

// InitializeRequest describes a transaction to open on Paystack.
type InitializeRequest struct {
	Email       string
	AmountNGN   decimal.Decimal
	Reference   string
	CallbackURL string
}

// InitializeResult holds the redirect data returned by Paystack.
type InitializeResult struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

// VerifyResult is the normalized outcome of a transaction verification.
type VerifyResult struct {
	Status        string
	AmountNGN     decimal.Decimal
	Currency      string
	Channel       string
	CustomerEmail string
	PaidAt        *time.Time
	Raw           json.RawMessage
}

// Succeeded reports whether Paystack confirmed the charge.
func (v *VerifyResult) Succeeded() bool {
	return v != nil && v.Status == statusSuccess
}

// Initialize opens a transaction and returns the hosted checkout URL.
// Paystack expects NGN amounts in kobo.
func (c *Client) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "paystack client not configured")
	}
	if strings.TrimSpace(req.Email) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer email is required")
	}
	if strings.TrimSpace(req.Reference) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction reference is required")
	}
	if !req.AmountNGN.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction amount must be positive")
	}

	payload, err := json.Marshal(struct {
		Email       string `json:"email"`
		Amount      int64  `json:"amount"`
		Reference   string `json:"reference"`
		Currency    string `json:"currency"`
		CallbackURL string `json:"callback_url,omitempty"`
	}{
		Email:       req.Email,
		Amount:      req.AmountNGN.Shift(2).Round(0).IntPart(),
		Reference:   req.Reference,
		Currency:    "NGN",
		CallbackURL: req.CallbackURL,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal initialize request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL("transaction/initialize"), bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build initialize request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute initialize request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodePayment, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "initialize request failed")
	}

	var apiResp struct {
		Status  bool   `json:"status"`
		Message string `json:"message"`
		Data    struct {
			AuthorizationURL string `json:"authorization_url"`
			AccessCode       string `json:"access_code"`
			Reference        string `json:"reference"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode initialize response")
	}
	if !apiResp.Status {
		return nil, pkgerrors.New(pkgerrors.CodePayment, fmt.Sprintf("paystack rejected transaction: %s", apiResp.Message))
	}

	return &InitializeResult{
		AuthorizationURL: apiResp.Data.AuthorizationURL,
		AccessCode:       apiResp.Data.AccessCode,
		Reference:        apiResp.Data.Reference,
	}, nil
}

// Verify fetches the final state of a transaction by reference. A declined or
// abandoned charge is returned as a non-success VerifyResult, not an error.
func (c *Client) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "paystack client not configured")
	}
	trimmed := strings.TrimSpace(reference)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction reference is required")
	}

	endpoint := fmt.Sprintf("%s/transaction/verify/%s", strings.TrimRight(c.baseURL, "/"), url.PathEscape(trimmed))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build verify request")
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute verify request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction reference not found")
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "verify request failed")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read verify response")
	}

	var apiResp struct {
		Status  bool   `json:"status"`
		Message string `json:"message"`
		Data    struct {
			Status   string          `json:"status"`
			Amount   int64           `json:"amount"`
			Currency string          `json:"currency"`
			Channel  string          `json:"channel"`
			PaidAt   string          `json:"paid_at"`
			Customer struct {
				Email string `json:"email"`
			} `json:"customer"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode verify response")
	}
	if !apiResp.Status {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("paystack verify failed: %s", apiResp.Message))
	}

	result := &VerifyResult{
		Status:        apiResp.Data.Status,
		AmountNGN:     decimal.New(apiResp.Data.Amount, -2),
		Currency:      apiResp.Data.Currency,
		Channel:       apiResp.Data.Channel,
		CustomerEmail: apiResp.Data.Customer.Email,
		Raw:           json.RawMessage(body),
	}
	if apiResp.Data.PaidAt != "" {
		if parsed, parseErr := time.Parse(time.RFC3339, apiResp.Data.PaidAt); parseErr == nil {
			result.PaidAt = &parsed
		}
	}

	return result, nil
}

func (c *Client) buildURL(path string) string {
	trimmed := strings.TrimRight(c.baseURL, "/")
	path = strings.TrimLeft(path, "/")
	return fmt.Sprintf("%s/%s", trimmed, path)
}
