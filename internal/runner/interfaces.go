package runner

import (
	"context"

	"github.com/samvad-hq/login-probe/pkg/login"
	"github.com/samvad-hq/login-probe/pkg/publishers"
	"github.com/samvad-hq/login-probe/pkg/targets"
)

// Authenticator issues requests against one auth server.
type Authenticator interface {
	Login(ctx context.Context, baseURL string, creds login.Credentials) (*login.Result, error)
	Refresh(ctx context.Context, baseURL, uid, jwt string) (*login.Result, error)
}

// ClientFactory builds the Authenticator used for a target.
type ClientFactory func(t targets.Target) Authenticator

// EventPublisher publishes probe outcomes downstream.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}
