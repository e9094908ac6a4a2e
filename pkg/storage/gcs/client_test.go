package gcs

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestPublicURL(t *testing.T) {
	t.Parallel()

	client := &Client{defaultBucket: "sxo6-media"}
	got := client.PublicURL("/products/silk-shirt/main.png")
	want := "https://storage.googleapis.com/sxo6-media/products/silk-shirt/main.png"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestUploadRequiresObjectAndData(t *testing.T) {
	t.Parallel()

	client := &Client{
		defaultBucket: "sxo6-media",
		tokenSource:   &tokenSource{fetch: staticToken("tok")},
	}

	if _, err := client.Upload(context.Background(), "", "image/png", []byte("x")); err == nil {
		t.Fatal("expected error for missing object name")
	}
	if _, err := client.Upload(context.Background(), "products/a.png", "image/png", nil); err == nil {
		t.Fatal("expected error for empty data")
	}
}

func TestTokenSourceCachesUntilNearExpiry(t *testing.T) {
	t.Parallel()

	calls := 0
	ts := &tokenSource{
		fetch: func(ctx context.Context) (string, time.Time, error) {
			calls++
			return "tok", time.Now().Add(time.Hour), nil
		},
	}

	for i := 0; i < 3; i++ {
		token, err := ts.Token(context.Background())
		if err != nil {
			t.Fatalf("token: %v", err)
		}
		if token != "tok" {
			t.Fatalf("unexpected token %q", token)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one fetch, got %d", calls)
	}
}

func TestTokenSourceRefreshesExpired(t *testing.T) {
	t.Parallel()

	calls := 0
	ts := &tokenSource{
		fetch: func(ctx context.Context) (string, time.Time, error) {
			calls++
			return "tok", time.Now().Add(30 * time.Second), nil
		},
	}

	if _, err := ts.Token(context.Background()); err != nil {
		t.Fatalf("token: %v", err)
	}
	if _, err := ts.Token(context.Background()); err != nil {
		t.Fatalf("token: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected refetch within expiry margin, got %d calls", calls)
	}
}

func TestNewServiceAccountTokenSourceRejectsBadCreds(t *testing.T) {
	t.Parallel()

	if _, err := newServiceAccountTokenSource(nil, "{not json"); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := newServiceAccountTokenSource(nil, `{"client_email":"","private_key":""}`); err == nil {
		t.Fatal("expected invalid credentials error")
	}
	if _, err := newServiceAccountTokenSource(nil, `{"client_email":"a@b.c","private_key":"not-a-pem"}`); err == nil ||
		!strings.Contains(err.Error(), "private key") {
		t.Fatalf("expected private key error, got %v", err)
	}
}

func staticToken(token string) func(context.Context) (string, time.Time, error) {
	return func(ctx context.Context) (string, time.Time, error) {
		return token, time.Now().Add(time.Hour), nil
	}
}
