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
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kofiasare/sewshop-backend/pkg/config"
	pkgerrors "github.com/kofiasare/sewshop-backend/pkg/errors"
	"github.com/kofiasare/sewshop-backend/pkg/logger"
)

const (
	defaultBaseURL           = "https://api.paystack.co"
	defaultTimeout           = 15 * time.Second
	responseBodyReadLimit    = 1 << 20
	transactionStatusSuccess = "success"
	signatureHeaderCanonical = "X-Paystack-Signature"
)

var (
	errSecretKeyRequired = errors.New("paystack secret key is required")
	errLoggerRequired    = errors.New("paystack logger is required")
)

// Client wraps the Paystack transaction APIs used for inline payments.
type Client struct {
	httpClient *http.Client
	baseURL    string
	secretKey  string
	logger     *logger.Logger
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

// WithBaseURL overrides the configured API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds the Paystack wrapper and validates the credentials.
func NewClient(cfg config.PaystackConfig, logg *logger.Logger, opts ...Option) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	secret := strings.TrimSpace(cfg.SecretKey)
	if secret == "" {
		return nil, errSecretKeyRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		secretKey:  secret,
		logger:     logg,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// InitializeInput carries the fields posted to /transaction/initialize.
type InitializeInput struct {
	Email       string
	AmountMinor int64
	Reference   string
	Currency    string
	CallbackURL string
}

// InitializeResult is the inline-popup handle returned by the provider.
type InitializeResult struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// VerifyResult is the settled state of a transaction by reference.
type VerifyResult struct {
	Reference       string     `json:"reference"`
	Status          string     `json:"status"`
	AmountMinor     int64      `json:"amount"`
	Currency        string     `json:"currency"`
	Channel         string     `json:"channel"`
	GatewayResponse string     `json:"gateway_response"`
	PaidAt          *time.Time `json:"paid_at"`
}

// Succeeded reports whether the provider settled the transaction.
func (v *VerifyResult) Succeeded() bool {
	return v != nil && v.Status == transactionStatusSuccess
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Initialize opens a provider transaction for the inline popup flow.
func (c *Client) Initialize(ctx context.Context, input InitializeInput) (*InitializeResult, error) {
	if strings.TrimSpace(input.Reference) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment reference is required")
	}
	if input.AmountMinor <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}

	payload := map[string]any{
		"email":     input.Email,
		"amount":    input.AmountMinor,
		"reference": input.Reference,
	}
	if input.Currency != "" {
		payload["currency"] = input.Currency
	}
	if input.CallbackURL != "" {
		payload["callback_url"] = input.CallbackURL
	}

	var result InitializeResult
	if err := c.do(ctx, http.MethodPost, "/transaction/initialize", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Verify fetches the authoritative state of a transaction by reference.
func (c *Client) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	trimmed := strings.TrimSpace(reference)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment reference is required")
	}

	var result VerifyResult
	path := "/transaction/verify/" + url.PathEscape(trimmed)
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ValidateWebhookSignature checks the HMAC-SHA512 hex digest Paystack sends in
// the X-Paystack-Signature header.
func (c *Client) ValidateWebhookSignature(body []byte, signature string) bool {
	if c == nil || strings.TrimSpace(signature) == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(c.secretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.TrimSpace(signature)))
}

// SignatureHeader names the webhook signature header.
func SignatureHeader() string {
	return signatureHeaderCanonical
}

func (c *Client) do(ctx context.Context, method, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode provider payload")
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build provider request")
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "call payment provider")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read provider response")
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode provider response")
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices || !env.Status {
		message := env.Message
		if message == "" {
			message = fmt.Sprintf("provider returned status %d", resp.StatusCode)
		}
		return pkgerrors.New(pkgerrors.CodePayment, message).WithDetails(map[string]any{
			"provider_status": resp.StatusCode,
		})
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode provider data")
		}
	}
	return nil
}
