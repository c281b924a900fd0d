package publishers

import (
	"context"
	"errors"
	"fmt"

	"github.com/samvad-hq/login-probe/internal/logger"
)

// Publisher sends events to a downstream sink (SQS, SNS, Pub/Sub, HTTP).
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}

type builder func(ctx context.Context, cfg PublisherConfig, log logger.Logger) (Publisher, error)

var builders = map[string]builder{
	TypeHTTP:      newHTTPPublisher,
	TypeSQS:       newSQSPublisher,
	TypeSNS:       newSNSPublisher,
	TypeGCPPubSub: newGCPPubSubPublisher,
}

// Build creates a publisher per sink and returns them behind a Fanout.
// Publishers already created are closed when a later one fails.
func Build(ctx context.Context, sinks Sinks, log logger.Logger) (*Fanout, error) {
	if log == nil {
		log = &logger.NopLogger{}
	}

	pubs := make([]Publisher, 0, len(sinks))
	for _, cfg := range sinks {
		build, ok := builders[cfg.Type]
		if !ok {
			return nil, errors.Join(
				fmt.Errorf("no publisher registered for type %q", cfg.Type),
				NewFanout(pubs, log).Close(),
			)
		}
		pub, err := build(ctx, cfg, log)
		if err != nil {
			return nil, errors.Join(
				fmt.Errorf("build %s publisher[%s]: %w", cfg.Type, cfg.ID, err),
				NewFanout(pubs, log).Close(),
			)
		}
		pubs = append(pubs, pub)
	}
	return NewFanout(pubs, log), nil
}
