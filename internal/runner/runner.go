package runner

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/samvad-hq/login-probe/internal/logger"
	"github.com/samvad-hq/login-probe/internal/storage"
	"github.com/samvad-hq/login-probe/pkg/httpclient"
	"github.com/samvad-hq/login-probe/pkg/login"
	"github.com/samvad-hq/login-probe/pkg/publishers"
	"github.com/samvad-hq/login-probe/pkg/targets"
)

// Service runs login checks across targets and echoes response bodies to out.
type Service struct {
	clientFor ClientFactory
	sessions  storage.Store
	publisher EventPublisher
	out       io.Writer
	log       logger.Logger
}

// DefaultClientFactory builds a resty-backed login client honouring the target's bearer token and timeout.
func DefaultClientFactory(t targets.Target) Authenticator {
	return login.NewClient(httpclient.NewRestyClient(t.Timeout()), t.BearerToken)
}

// NewService wires a runner. Nil collaborators fall back to no-op implementations.
func NewService(clientFor ClientFactory, sessions storage.Store, pub EventPublisher, out io.Writer, log logger.Logger) *Service {
	if clientFor == nil {
		clientFor = DefaultClientFactory
	}
	if sessions == nil {
		sessions, _ = storage.NewStore("none", "", storage.Options{})
	}
	if out == nil {
		out = io.Discard
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	return &Service{
		clientFor: clientFor,
		sessions:  sessions,
		publisher: pub,
		out:       out,
		log:       log,
	}
}

// Run probes every target in order. Failures are joined; later targets still run.
func (s *Service) Run(ctx context.Context, list []targets.Target) error {
	if s == nil || s.clientFor == nil {
		return fmt.Errorf("runner service is not initialized")
	}
	if len(list) == 0 {
		return fmt.Errorf("no targets configured for probing")
	}

	errs := s.runAll(ctx, list)
	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (s *Service) runAll(ctx context.Context, list []targets.Target) []error {
	errs := make([]error, 0, len(list))

	for _, t := range list {
		if ctx.Err() != nil {
			break
		}
		if err := s.runTarget(ctx, t); err != nil {
			errs = append(errs, err)
			s.log.ErrorObj("target probe failed", "target_error", map[string]any{
				"target_id": t.ID,
				"error":     err.Error(),
			})
		}
	}

	return errs
}

func (s *Service) runTarget(ctx context.Context, t targets.Target) error {
	evt := publishers.NewEvent(t.ID, t.BaseURL, t.AuthData, t.Mode)

	res, err := s.issue(ctx, t)
	if err != nil {
		evt.Error = err.Error()
		var statusErr *login.StatusError
		if errors.As(err, &statusErr) {
			evt.HTTPStatus = statusErr.StatusCode
		}
		s.publish(ctx, evt)
		return fmt.Errorf("probe target %s: %w", t.ID, err)
	}

	if err := s.echo(res.Body); err != nil {
		return fmt.Errorf("write response for target %s: %w", t.ID, err)
	}

	evt.Succeeded = true
	evt.HTTPStatus = res.StatusCode
	evt.ServerStatus = res.Envelope.Status
	evt.Message = res.Envelope.Message
	evt.ElapsedMs = res.Elapsed.Milliseconds()

	s.log.InfoObj("target probe completed", "probe_result", map[string]any{
		"target_id":     t.ID,
		"mode":          t.Mode,
		"http_status":   res.StatusCode,
		"server_status": res.Envelope.Status,
		"elapsed_ms":    evt.ElapsedMs,
	})

	s.rememberSession(t, res.Envelope)
	s.publish(ctx, evt)
	return nil
}

func (s *Service) issue(ctx context.Context, t targets.Target) (*login.Result, error) {
	client := s.clientFor(t)

	switch t.Mode {
	case targets.ModeRefresh:
		sess, err := s.sessions.LoadSession(t.SessionKey())
		if err != nil {
			return nil, fmt.Errorf("load cached session: %w", err)
		}
		return client.Refresh(ctx, t.BaseURL, sess.UID, sess.JWT)
	default:
		return client.Login(ctx, t.BaseURL, login.Credentials{
			AuthData: t.AuthData,
			Password: t.Password,
		})
	}
}

// echo writes the raw body followed by a newline.
func (s *Service) echo(body []byte) error {
	if _, err := s.out.Write(body); err != nil {
		return err
	}
	_, err := io.WriteString(s.out, "\n")
	return err
}

func (s *Service) rememberSession(t targets.Target, env login.Envelope) {
	if !env.HasSession() {
		return
	}
	sess := storage.Session{TargetID: t.SessionKey(), UID: env.UID, JWT: env.JWT}
	if exp, ok := login.TokenExpiry(env.JWT); ok {
		sess.ExpiresAt = exp
	}
	if err := s.sessions.SaveSession(sess); err != nil {
		s.log.WarnObj("session cache write failed", "session_error", map[string]any{
			"target_id": t.ID,
			"error":     err.Error(),
		})
	}
}

func (s *Service) publish(ctx context.Context, evt publishers.Event) {
	if s.publisher == nil {
		return
	}
	delivered, err := s.publisher.Publish(ctx, evt)
	if err != nil {
		s.log.WarnObj("probe event publish failed", "publish_error", map[string]any{
			"target_id": evt.TargetID,
			"delivered": delivered,
			"error":     err.Error(),
		})
	}
}
