package qpay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ganzorig/qpaygate/internal/domain/model"
)

var (
	// ErrAuthFailure indicates the token exchange failed or returned no token.
	ErrAuthFailure = errors.New("qpay: authentication failed")
	// ErrRequestFailure indicates a transport-level failure or a non-2xx
	// response on an authenticated call.
	ErrRequestFailure = errors.New("qpay: request failed")
	// ErrInvoiceCreationFailed indicates the provider answered without an
	// invoice identifier.
	ErrInvoiceCreationFailed = errors.New("qpay: invoice not created")
)

const (
	requestTimeout    = 30 * time.Second
	defaultAccessTTL  = time.Hour
	defaultRefreshTTL = 2 * time.Hour
)

// Client exposes operations against the QPay merchant API.
type Client interface {
	CreateInvoice(ctx context.Context, req InvoiceRequest) (*InvoiceResponse, error)
	CheckPayment(ctx context.Context, invoiceID string) (*PaymentCheckResponse, error)
}

// Credentials identify the merchant against the QPay API.
type Credentials struct {
	Username string
	Password string
}

// TokenResponse mirrors the /v2/auth/token payload.
type TokenResponse struct {
	AccessToken      string `json:"access_token"`
	ExpiresIn        int64  `json:"expires_in"`
	RefreshToken     string `json:"refresh_token"`
	RefreshExpiresIn int64  `json:"refresh_expires_in"`
}

// InvoiceRequest mirrors the /v2/invoice request body.
type InvoiceRequest struct {
	InvoiceCode         string  `json:"invoice_code"`
	SenderInvoiceNo     string  `json:"sender_invoice_no"`
	InvoiceReceiverCode string  `json:"invoice_receiver_code"`
	InvoiceDescription  string  `json:"invoice_description"`
	Amount              float64 `json:"amount"`
	CallbackURL         string  `json:"callback_url"`
}

// InvoiceResponse mirrors the /v2/invoice payload. Only InvoiceID is
// required; QR and deeplink fields default to empty values.
type InvoiceResponse struct {
	InvoiceID string           `json:"invoice_id"`
	QRImage   string           `json:"qr_image"`
	QRText    string           `json:"qr_text"`
	URLs      []model.Deeplink `json:"urls"`
}

// PaymentRow is a single settled payment matched against an invoice.
type PaymentRow struct {
	PaymentID     string  `json:"payment_id"`
	PaymentStatus string  `json:"payment_status"`
	Amount        float64 `json:"payment_amount"`
	PaymentDate   string  `json:"payment_date"`
}

// PaymentCheckResponse mirrors the /v2/payment/check payload.
// A non-empty Rows means the invoice is paid.
type PaymentCheckResponse struct {
	Count      int          `json:"count"`
	PaidAmount float64      `json:"paid_amount"`
	Rows       []PaymentRow `json:"rows"`
}

// Paid reports whether at least one payment matched the invoice.
func (r *PaymentCheckResponse) Paid() bool {
	return len(r.Rows) > 0
}

// HTTPClient implements Client via the QPay HTTP API, hiding token handling.
type HTTPClient struct {
	baseURL    *url.URL
	creds      Credentials
	tokens     *TokenCache
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPClient creates an HTTP QPay client with default timeout.
func NewHTTPClient(baseURL string, creds Credentials, tokens *TokenCache, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse qpay url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("qpay url must be absolute")
	}
	return &HTTPClient{
		baseURL: parsed,
		creds:   creds,
		tokens:  tokens,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}, nil
}

// CreateInvoice registers a payment invoice with the provider.
func (c *HTTPClient) CreateInvoice(ctx context.Context, req InvoiceRequest) (*InvoiceResponse, error) {
	var invoice InvoiceResponse
	if err := c.do(ctx, http.MethodPost, "/v2/invoice", req, &invoice); err != nil {
		return nil, err
	}
	if invoice.InvoiceID == "" {
		return nil, ErrInvoiceCreationFailed
	}
	return &invoice, nil
}

// CheckPayment queries payments settled against the invoice.
func (c *HTTPClient) CheckPayment(ctx context.Context, invoiceID string) (*PaymentCheckResponse, error) {
	body := map[string]string{
		"object_type": "INVOICE",
		"object_id":   invoiceID,
	}
	var result PaymentCheckResponse
	if err := c.do(ctx, http.MethodPost, "/v2/payment/check", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// authenticate returns a valid access token, exchanging credentials when the
// cache is empty or expired.
func (c *HTTPClient) authenticate(ctx context.Context) (string, error) {
	if token, ok := c.tokens.Access(); ok {
		return token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL.String()+"/v2/auth/token", nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthFailure, err)
	}
	req.SetBasicAuth(c.creds.Username, c.creds.Password)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.logger.Error("qpay token exchange failed", slog.Int("status", resp.StatusCode))
		return "", fmt.Errorf("%w: status %s", ErrAuthFailure, resp.Status)
	}

	var token TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthFailure, err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("%w: no access token in response", ErrAuthFailure)
	}

	c.tokens.StoreAccess(token.AccessToken, ttlOrDefault(token.ExpiresIn, defaultAccessTTL))
	if token.RefreshToken != "" {
		c.tokens.StoreRefresh(token.RefreshToken, ttlOrDefault(token.RefreshExpiresIn, defaultRefreshTTL))
	}

	return token.AccessToken, nil
}

func (c *HTTPClient) do(ctx context.Context, method, endpoint string, body, out any) error {
	token, err := c.authenticate(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrRequestFailure, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+endpoint, reader)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailure, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(resp.Body)
		c.logger.Error("qpay request failed",
			slog.String("endpoint", endpoint),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(raw)),
		)
		return fmt.Errorf("%w: status %s", ErrRequestFailure, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailure, err)
	}

	return nil
}

func ttlOrDefault(seconds int64, def time.Duration) time.Duration {
	if seconds <= 0 {
		return def
	}
	return time.Duration(seconds) * time.Second
}
