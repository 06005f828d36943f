package qpay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testCredentials() Credentials {
	return Credentials{Username: "merchant", Password: "secret"}
}

func TestNewHTTPClientValidatesURL(t *testing.T) {
	if _, err := NewHTTPClient("://bad-url", testCredentials(), NewTokenCache(), testLogger()); err == nil {
		t.Fatal("expected error for invalid url")
	}
	if _, err := NewHTTPClient("/relative", testCredentials(), NewTokenCache(), testLogger()); err == nil {
		t.Fatal("expected error for relative url")
	}
}

func TestCreateInvoiceExchangesTokenOnce(t *testing.T) {
	var tokenCalls, invoiceCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/auth/token":
			atomic.AddInt32(&tokenCalls, 1)
			user, pass, ok := r.BasicAuth()
			if !ok || user != "merchant" || pass != "secret" {
				t.Errorf("unexpected basic auth: %q %q", user, pass)
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token":       "tok",
				"expires_in":         3600,
				"refresh_token":      "ref",
				"refresh_expires_in": 7200,
			})
		case "/v2/invoice":
			atomic.AddInt32(&invoiceCalls, 1)
			if got := r.Header.Get("Authorization"); got != "Bearer tok" {
				t.Errorf("unexpected authorization header %q", got)
			}
			var req InvoiceRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			if req.Amount != 1000 {
				t.Errorf("unexpected amount %v", req.Amount)
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"invoice_id": "inv-1",
				"qr_image":   "aW1n",
				"qr_text":    "qr-payload",
				"urls": []map[string]string{
					{"name": "Khan bank", "logo": "https://qpay.mn/khan.png", "link": "khanbank://pay"},
				},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	cache := NewTokenCache()
	client, err := NewHTTPClient(srv.URL, testCredentials(), cache, testLogger())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	// Fresh client: exactly two outbound calls, token exchange then invoice.
	invoice, err := client.CreateInvoice(context.Background(), InvoiceRequest{Amount: 1000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if invoice.InvoiceID != "inv-1" || invoice.QRText != "qr-payload" {
		t.Fatalf("unexpected invoice %+v", invoice)
	}
	if len(invoice.URLs) != 1 || invoice.URLs[0].Name != "Khan bank" {
		t.Fatalf("unexpected deeplinks %+v", invoice.URLs)
	}
	if got := atomic.LoadInt32(&tokenCalls); got != 1 {
		t.Fatalf("expected 1 token exchange, got %d", got)
	}
	if got := atomic.LoadInt32(&invoiceCalls); got != 1 {
		t.Fatalf("expected 1 invoice call, got %d", got)
	}
	if tok, ok := cache.Access(); !ok || tok != "tok" {
		t.Fatalf("expected access token cached, got %q ok=%v", tok, ok)
	}
	if ref, ok := cache.Refresh(); !ok || ref != "ref" {
		t.Fatalf("expected refresh token cached, got %q ok=%v", ref, ok)
	}

	// Cached token: a second invoice triggers exactly one more call.
	if _, err := client.CreateInvoice(context.Background(), InvoiceRequest{Amount: 1000}); err != nil {
		t.Fatalf("unexpected error on second invoice: %v", err)
	}
	if got := atomic.LoadInt32(&tokenCalls); got != 1 {
		t.Fatalf("expected token exchange to be reused, got %d calls", got)
	}
	if got := atomic.LoadInt32(&invoiceCalls); got != 2 {
		t.Fatalf("expected 2 invoice calls, got %d", got)
	}
}

func TestAuthenticateFailures(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "missing access token",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]any{"expires_in": 3600})
			},
		},
		{
			name: "unauthorized",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]any{"error": "INVALID_CREDENTIALS"})
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("not-json"))
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			client, err := NewHTTPClient(srv.URL, testCredentials(), NewTokenCache(), testLogger())
			if err != nil {
				t.Fatalf("failed to create client: %v", err)
			}

			_, err = client.CreateInvoice(context.Background(), InvoiceRequest{Amount: 10})
			if !errors.Is(err, ErrAuthFailure) {
				t.Fatalf("expected auth failure, got %v", err)
			}
		})
	}
}

func TestRequestFailureOnTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	cache := NewTokenCache()
	cache.StoreAccess("tok", time.Hour)

	client, err := NewHTTPClient(srv.URL, testCredentials(), cache, testLogger())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	_, err = client.CheckPayment(context.Background(), "inv-1")
	if !errors.Is(err, ErrRequestFailure) {
		t.Fatalf("expected request failure, got %v", err)
	}
}

func TestRequestFailureOnErrorStatus(t *testing.T) {
	// A 500 with a JSON body must never read as a valid-but-empty response.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "INTERNAL"})
	}))
	defer srv.Close()

	cache := NewTokenCache()
	cache.StoreAccess("tok", time.Hour)

	client, err := NewHTTPClient(srv.URL, testCredentials(), cache, testLogger())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	_, err = client.CheckPayment(context.Background(), "inv-1")
	if !errors.Is(err, ErrRequestFailure) {
		t.Fatalf("expected request failure, got %v", err)
	}
}

func TestCreateInvoiceRequiresInvoiceID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// QR and url data present but no identifier: creation failed.
		_ = json.NewEncoder(w).Encode(map[string]any{
			"qr_image": "aW1n",
			"qr_text":  "qr-payload",
			"urls":     []map[string]string{{"name": "Khan bank", "link": "khanbank://pay"}},
		})
	}))
	defer srv.Close()

	cache := NewTokenCache()
	cache.StoreAccess("tok", time.Hour)

	client, err := NewHTTPClient(srv.URL, testCredentials(), cache, testLogger())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	_, err = client.CreateInvoice(context.Background(), InvoiceRequest{Amount: 10})
	if !errors.Is(err, ErrInvoiceCreationFailed) {
		t.Fatalf("expected invoice creation failure, got %v", err)
	}
}

func TestCreateInvoiceDefaultsOptionalFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"invoice_id": "inv-2"})
	}))
	defer srv.Close()

	cache := NewTokenCache()
	cache.StoreAccess("tok", time.Hour)

	client, err := NewHTTPClient(srv.URL, testCredentials(), cache, testLogger())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	invoice, err := client.CreateInvoice(context.Background(), InvoiceRequest{Amount: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if invoice.QRImage != "" || invoice.QRText != "" || invoice.URLs != nil {
		t.Fatalf("expected optional fields to default empty, got %+v", invoice)
	}
}

func TestCheckPaymentMapsRows(t *testing.T) {
	responses := map[string]any{
		"inv-paid": map[string]any{
			"count":       1,
			"paid_amount": 1000.0,
			"rows": []map[string]any{
				{"payment_id": "p-1", "payment_status": "PAID", "payment_amount": 1000.0, "payment_date": "2025-01-01"},
			},
		},
		"inv-unpaid": map[string]any{"count": 0, "paid_amount": 0.0, "rows": []any{}},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["object_type"] != "INVOICE" {
			t.Errorf("unexpected object_type %q", body["object_type"])
		}
		_ = json.NewEncoder(w).Encode(responses[body["object_id"]])
	}))
	defer srv.Close()

	cache := NewTokenCache()
	cache.StoreAccess("tok", time.Hour)

	client, err := NewHTTPClient(srv.URL, testCredentials(), cache, testLogger())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	paid, err := client.CheckPayment(context.Background(), "inv-paid")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !paid.Paid() || len(paid.Rows) != 1 || paid.Rows[0].PaymentID != "p-1" {
		t.Fatalf("unexpected paid result %+v", paid)
	}

	unpaid, err := client.CheckPayment(context.Background(), "inv-unpaid")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if unpaid.Paid() {
		t.Fatalf("expected unpaid result, got %+v", unpaid)
	}
}
