package login

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samvad-hq/login-probe/pkg/httpclient"
)

func TestEncodeCredentialsExactBody(t *testing.T) {
	raw, err := EncodeCredentials(Credentials{AuthData: "EdgeKing810", Password: "Test123*"})
	if err != nil {
		t.Fatalf("EncodeCredentials: %v", err)
	}
	if want := `{"auth_data":"EdgeKing810","password":"Test123*"}`; string(raw) != want {
		t.Fatalf("body = %s, want %s", raw, want)
	}
}

func TestEndpointTrimsTrailingSlash(t *testing.T) {
	cases := map[string]string{
		"http://127.0.0.1:8000":    "http://127.0.0.1:8000/login",
		"http://127.0.0.1:8000/":   "http://127.0.0.1:8000/login",
		" http://host/api// ":      "http://host/api/login",
		"http://127.0.0.1:8000/v1": "http://127.0.0.1:8000/v1/login",
	}
	for base, want := range cases {
		if got := Endpoint(base, loginPath); got != want {
			t.Fatalf("Endpoint(%q) = %q, want %q", base, got, want)
		}
	}
}

func TestLoginSendsExpectedRequest(t *testing.T) {
	var gotPath, gotAuth, gotType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		_, _ = w.Write([]byte(`{"token":"abc"}`))
	}))
	defer srv.Close()

	client := NewClient(httpclient.NewRestyClient(0), "")
	res, err := client.Login(context.Background(), srv.URL+"/", Credentials{AuthData: "EdgeKing810", Password: "Test123*"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if gotPath != "/login" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotAuth != "Bearer testing" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if gotType != "application/json" {
		t.Fatalf("Content-Type = %q", gotType)
	}
	if gotBody != `{"auth_data":"EdgeKing810","password":"Test123*"}` {
		t.Fatalf("body = %s", gotBody)
	}
	if res.StatusCode != http.StatusOK || string(res.Body) != `{"token":"abc"}` {
		t.Fatalf("unexpected result: %d %s", res.StatusCode, res.Body)
	}
}

func TestLoginDecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":200,"message":"Login Successful!","uid":"u-1","jwt":"a.b.c","user":{"id":"u-1"}}`))
	}))
	defer srv.Close()

	res, err := NewClient(nil, "testing").Login(context.Background(), srv.URL, Credentials{AuthData: "x", Password: "y"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	env := res.Envelope
	if env.Status != 200 || env.UID != "u-1" || env.JWT != "a.b.c" || !env.HasSession() {
		t.Fatalf("unexpected envelope: %#v", env)
	}
	if string(env.User) != `{"id":"u-1"}` {
		t.Fatalf("user = %s", env.User)
	}
}

func TestLoginNon2xxReturnsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	res, err := NewClient(nil, "").Login(context.Background(), srv.URL, Credentials{})
	if res != nil {
		t.Fatalf("expected no result on non-2xx")
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusUnauthorized || statusErr.Snippet != "nope" {
		t.Fatalf("unexpected status error: %#v", statusErr)
	}
}

func TestLoginUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	res, err := NewClient(nil, "").Login(context.Background(), url, Credentials{})
	if err == nil || res != nil {
		t.Fatalf("expected error and nil result, got %v / %v", res, err)
	}
}

func TestRefreshSendsUIDWithJWT(t *testing.T) {
	var gotPath, gotAuth, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		_, _ = w.Write([]byte(`{"status":200,"uid":"u-1","jwt":"new"}`))
	}))
	defer srv.Close()

	res, err := NewClient(nil, "testing").Refresh(context.Background(), srv.URL, "u-1", "old")
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if gotPath != "/login/jwt" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotAuth != "Bearer old" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if gotBody != `{"uid":"u-1"}` {
		t.Fatalf("body = %s", gotBody)
	}
	if res.Envelope.JWT != "new" {
		t.Fatalf("jwt = %q", res.Envelope.JWT)
	}
}

func TestRefreshRequiresSession(t *testing.T) {
	if _, err := NewClient(nil, "").Refresh(context.Background(), "http://127.0.0.1:1", "", "tok"); err == nil {
		t.Fatalf("expected error for missing uid")
	}
}

func TestDecodeEnvelopeRejectsNonObject(t *testing.T) {
	if _, err := DecodeEnvelope([]byte(`not json`)); err == nil {
		t.Fatalf("expected decode error")
	}
	if _, err := DecodeEnvelope(nil); err == nil {
		t.Fatalf("expected error for empty body")
	}
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(15 * time.Minute).Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, tokenClaims{
		UID:              "u-1",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)},
	})
	signed, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	got, ok := TokenExpiry(signed)
	if !ok {
		t.Fatalf("expected expiry")
	}
	if !got.Equal(exp) {
		t.Fatalf("expiry = %s, want %s", got, exp)
	}

	if _, ok := TokenExpiry("garbage"); ok {
		t.Fatalf("expected no expiry for malformed token")
	}
}
