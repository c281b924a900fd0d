package login

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/login-probe/pkg/httpclient"
)

const (
	// DefaultBearerToken is the placeholder token development servers accept on /login.
	DefaultBearerToken = "testing"

	loginPath   = "/login"
	refreshPath = "/login/jwt"
)

// Credentials is the /login request payload.
type Credentials struct {
	AuthData string `json:"auth_data"`
	Password string `json:"password"`
}

// refreshRequest is the /login/jwt request payload.
type refreshRequest struct {
	UID string `json:"uid"`
}

// Result captures a completed round trip with a 2xx status.
type Result struct {
	StatusCode int
	Body       []byte
	Envelope   Envelope
	Elapsed    time.Duration
}

// StatusError is returned when the server answers with a non-2xx status.
type StatusError = httpclient.StatusError

// Client issues login requests against a base URL.
type Client struct {
	http   httpclient.Client
	bearer string
}

// NewClient builds a Client. An empty bearer token falls back to DefaultBearerToken.
func NewClient(http httpclient.Client, bearerToken string) *Client {
	if http == nil {
		http = httpclient.NewRestyClient(0)
	}
	bearerToken = strings.TrimSpace(bearerToken)
	if bearerToken == "" {
		bearerToken = DefaultBearerToken
	}
	return &Client{http: http, bearer: bearerToken}
}

// EncodeCredentials returns the exact JSON body sent to /login.
func EncodeCredentials(creds Credentials) ([]byte, error) {
	return json.Marshal(creds)
}

// Endpoint joins baseURL and path, dropping trailing slashes from the base.
func Endpoint(baseURL, path string) string {
	return strings.TrimRight(strings.TrimSpace(baseURL), "/") + path
}

// Login posts creds to <baseURL>/login.
func (c *Client) Login(ctx context.Context, baseURL string, creds Credentials) (*Result, error) {
	body, err := EncodeCredentials(creds)
	if err != nil {
		return nil, fmt.Errorf("encode credentials: %w", err)
	}
	return c.post(ctx, Endpoint(baseURL, loginPath), c.bearer, body)
}

// Refresh exchanges a previously issued JWT for a new one via <baseURL>/login/jwt.
func (c *Client) Refresh(ctx context.Context, baseURL, uid, jwt string) (*Result, error) {
	if strings.TrimSpace(uid) == "" || strings.TrimSpace(jwt) == "" {
		return nil, errors.New("refresh requires uid and jwt")
	}
	body, err := json.Marshal(refreshRequest{UID: uid})
	if err != nil {
		return nil, fmt.Errorf("encode refresh request: %w", err)
	}
	return c.post(ctx, Endpoint(baseURL, refreshPath), jwt, body)
}

func (c *Client) post(ctx context.Context, url, token string, body []byte) (*Result, error) {
	headers := map[string]string{
		"Authorization": "Bearer " + token,
	}

	start := time.Now()
	resp, err := c.http.Post(ctx, url, headers, body)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", url, err)
	}
	elapsed := time.Since(start)

	if err := httpclient.CheckStatus(resp); err != nil {
		return nil, err
	}

	raw := resp.Body()
	env, _ := DecodeEnvelope(raw)
	return &Result{
		StatusCode: resp.StatusCode(),
		Body:       raw,
		Envelope:   env,
		Elapsed:    elapsed,
	}, nil
}
