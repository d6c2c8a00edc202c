package admin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bobmcallan/dirkit/internal/auth"
)

// staticToken is a fixed TokenSource for tests.
type staticToken string

func (s staticToken) Token() string { return string(s) }

func TestDo_AttachesBearerToken(t *testing.T) {
	var capturedAuth []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedAuth = append(capturedAuth, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"users":[]}`))
	}))
	defer srv.Close()

	client := NewClient(staticToken("tok123"), WithBaseURL(srv.URL))

	client.FindUsers(context.Background())
	client.FindUser(context.Background(), map[string]string{"email": "a@x.com"})

	if len(capturedAuth) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(capturedAuth))
	}
	for i, got := range capturedAuth {
		if got != "Bearer tok123" {
			t.Errorf("request %d: Authorization = %q, want %q", i, got, "Bearer tok123")
		}
	}
}

func TestDo_NoTokenSendsNoAuthHeader(t *testing.T) {
	var capturedAuth string
	var hasAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedAuth = r.Header.Get("Authorization")
		_, hasAuth = r.Header["Authorization"]
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"users":[]}`))
	}))
	defer srv.Close()

	client := NewClient(nil, WithBaseURL(srv.URL))
	client.FindUsers(context.Background())

	if hasAuth {
		t.Errorf("expected no Authorization header without a token, got %q", capturedAuth)
	}
}

func TestDo_InvalidJSONIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>load balancer error</html>"))
	}))
	defer srv.Close()

	client := NewClient(staticToken("tok"), WithBaseURL(srv.URL))
	_, err := client.FindUsers(context.Background())
	if err == nil {
		t.Fatal("expected error on non-JSON response")
	}
}

func TestDo_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(staticToken("tok"), WithBaseURL(srv.URL), WithTimeout(100*time.Millisecond))
	_, err := client.FindUsers(context.Background())
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestClient_CarriesExchangedToken(t *testing.T) {
	// Token endpoint and directory endpoint wired together: the client
	// must carry exactly the token the exchange returned.
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok123","token_type":"Bearer"}`))
	}))
	defer tokenSrv.Close()

	var capturedAuth string
	dirSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"users":[{"primaryEmail":"a@x.com"}]}`))
	}))
	defer dirSrv.Close()

	authn, err := auth.NewAuthenticator(context.Background(), "id", "secret", "refresh", auth.WithTokenURL(tokenSrv.URL))
	if err != nil {
		t.Fatalf("NewAuthenticator failed: %v", err)
	}

	client := NewClient(authn, WithBaseURL(dirSrv.URL))
	user, err := client.FindUser(context.Background(), map[string]string{"email": "a@x.com"})
	if err != nil {
		t.Fatalf("FindUser failed: %v", err)
	}

	if capturedAuth != "Bearer tok123" {
		t.Errorf("Authorization = %q, want %q", capturedAuth, "Bearer tok123")
	}
	if user.PrimaryEmail != "a@x.com" {
		t.Errorf("PrimaryEmail = %q, want %q", user.PrimaryEmail, "a@x.com")
	}
}
