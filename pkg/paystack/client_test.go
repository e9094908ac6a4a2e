package paystack

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/sxo6luxe/sxo6-backend/pkg/config"
	pkgerrors "github.com/sxo6luxe/sxo6-backend/pkg/errors"
)

func newTestClient(t *testing.T, rt roundTripFunc) *Client {
	t.Helper()
	client, err := NewClient(
		config.PaystackConfig{SecretKey: "sk_test_abc"},
		WithBaseURL("http://paystack.test"),
		WithHTTPClient(&http.Client{Transport: rt}),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestClientInitialize(t *testing.T) {
	const expectedURL = "http://paystack.test/transaction/initialize"
	respBody := `{"status":true,"message":"Authorization URL created","data":{"authorization_url":"https://checkout.paystack.com/abc","access_code":"abc","reference":"SXO6-1-XYZ"}}`

	var capturedURL string
	var capturedAuth string

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		capturedAuth = req.Header.Get("Authorization")

		bodyBytes, err := io.ReadAll(req.Body)
		if err != nil {
			t.Fatalf("read request body: %v", err)
		}
		var payload map[string]any
		if err := json.Unmarshal(bodyBytes, &payload); err != nil {
			t.Fatalf("unmarshal request body: %v", err)
		}
		if payload["amount"] != float64(24650000) {
			t.Fatalf("expected amount in kobo, got %v", payload["amount"])
		}
		if payload["currency"] != "NGN" {
			t.Fatalf("unexpected currency %v", payload["currency"])
		}

		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(respBody)),
			Header:     http.Header{},
		}, nil
	})

	client := newTestClient(t, rt)
	result, err := client.Initialize(context.Background(), InitializeRequest{
		Email:     "ada@example.com",
		AmountNGN: decimal.RequireFromString("246500.00"),
		Reference: "SXO6-1-XYZ",
	})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if capturedURL != expectedURL {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
	if capturedAuth != "Bearer sk_test_abc" {
		t.Fatalf("authorization header missing, got %q", capturedAuth)
	}
	if result.AuthorizationURL != "https://checkout.paystack.com/abc" {
		t.Fatalf("unexpected authorization url %q", result.AuthorizationURL)
	}
	if result.Reference != "SXO6-1-XYZ" {
		t.Fatalf("unexpected reference %q", result.Reference)
	}
}

func TestClientInitializeRejected(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"status":false,"message":"Invalid key"}`)),
			Header:     http.Header{},
		}, nil
	})

	client := newTestClient(t, rt)
	_, err := client.Initialize(context.Background(), InitializeRequest{
		Email:     "ada@example.com",
		AmountNGN: decimal.NewFromInt(100),
		Reference: "SXO6-1-XYZ",
	})
	if err == nil {
		t.Fatal("expected rejection error")
	}
	if !pkgerrors.IsCode(err, pkgerrors.CodePayment) {
		t.Fatalf("expected payment error code, got %v", err)
	}
}

func TestClientVerifySuccess(t *testing.T) {
	const expectedURL = "http://paystack.test/transaction/verify/SXO6-1-XYZ"
	respBody := `{"status":true,"message":"Verification successful","data":{"status":"success","amount":24650000,"currency":"NGN","channel":"card","paid_at":"2026-01-15T10:30:00Z","customer":{"email":"ada@example.com"}}}`

	var capturedURL string
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(respBody)),
			Header:     http.Header{},
		}, nil
	})

	client := newTestClient(t, rt)
	result, err := client.Verify(context.Background(), "SXO6-1-XYZ")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if capturedURL != expectedURL {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
	if !result.Succeeded() {
		t.Fatalf("expected success, got status %q", result.Status)
	}
	if !result.AmountNGN.Equal(decimal.RequireFromString("246500.00")) {
		t.Fatalf("expected amount 246500.00, got %s", result.AmountNGN)
	}
	if result.Channel != "card" {
		t.Fatalf("unexpected channel %q", result.Channel)
	}
	if result.PaidAt == nil {
		t.Fatal("expected paid_at to be parsed")
	}
	if result.CustomerEmail != "ada@example.com" {
		t.Fatalf("unexpected customer email %q", result.CustomerEmail)
	}
	if len(result.Raw) == 0 {
		t.Fatal("expected raw payload to be retained")
	}
}

func TestClientVerifyFailedCharge(t *testing.T) {
	respBody := `{"status":true,"message":"Verification successful","data":{"status":"failed","amount":24650000,"currency":"NGN","channel":"card","paid_at":"","customer":{"email":"ada@example.com"}}}`

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(respBody)),
			Header:     http.Header{},
		}, nil
	})

	client := newTestClient(t, rt)
	result, err := client.Verify(context.Background(), "SXO6-1-XYZ")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if result.Succeeded() {
		t.Fatal("failed charge must not report success")
	}
	if result.PaidAt != nil {
		t.Fatal("failed charge must not carry paid_at")
	}
}

func TestClientVerifyUnknownReference(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Body:       io.NopCloser(strings.NewReader(`{"status":false,"message":"Transaction reference not found"}`)),
			Header:     http.Header{},
		}, nil
	})

	client := newTestClient(t, rt)
	_, err := client.Verify(context.Background(), "SXO6-0-NOPE")
	if err == nil {
		t.Fatal("expected not found error")
	}
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found code, got %v", err)
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
