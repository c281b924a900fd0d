package login

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Envelope is the JSON reply shape of the auth server. Every field is optional.
type Envelope struct {
	Status  int             `json:"status,omitempty"`
	Message string          `json:"message,omitempty"`
	UID     string          `json:"uid,omitempty"`
	JWT     string          `json:"jwt,omitempty"`
	User    json.RawMessage `json:"user,omitempty"`
}

// HasSession reports whether the reply carries a reusable session.
func (e Envelope) HasSession() bool {
	return e.UID != "" && e.JWT != ""
}

// DecodeEnvelope decodes body. Bodies that are not JSON objects yield an empty envelope and an error.
func DecodeEnvelope(body []byte) (Envelope, error) {
	var env Envelope
	if len(body) == 0 {
		return env, errors.New("empty body")
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}

type tokenClaims struct {
	UID string `json:"uid"`
	jwt.RegisteredClaims
}

// TokenExpiry reads the exp claim of token without verifying its signature.
func TokenExpiry(token string) (time.Time, bool) {
	claims := &tokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
