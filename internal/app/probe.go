package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/samvad-hq/login-probe/internal/config"
	"github.com/samvad-hq/login-probe/internal/logger"
	"github.com/samvad-hq/login-probe/internal/runner"
	"github.com/samvad-hq/login-probe/internal/storage"
	"github.com/samvad-hq/login-probe/pkg/publishers"
	"github.com/samvad-hq/login-probe/pkg/targets"
)

// Probe wires targets, the runner, the session store and publishers for one pass.
type Probe struct {
	cfg     *config.Config
	targets *targets.Registry
	fanout  *publishers.Fanout
	store   storage.Store
	runner  *runner.Service
	log     logger.Logger
}

// NewProbe builds a probe runtime. Response bodies are written to out (stdout when nil).
func NewProbe(ctx context.Context, cfg *config.Config, log logger.Logger, out io.Writer) (*Probe, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if out == nil {
		out = os.Stdout
	}

	targetReg, err := loadTargets(cfg)
	if err != nil {
		return nil, fmt.Errorf("load targets: %w", err)
	}
	targetList := targetReg.All()
	redacted := make([]targets.Target, 0, len(targetList))
	for _, t := range targetList {
		redacted = append(redacted, t.Redacted())
	}
	log.InfoObj("targets loaded", "targets_meta", map[string]any{
		"count":   len(redacted),
		"targets": redacted,
	})

	fanout, err := buildFanout(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		SessionTTL:      cfg.SessionTTL,
		CleanupInterval: cfg.StorageCleanup,
	})
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"session_ttl_seconds":      int(cfg.SessionTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanup.Seconds()),
	})

	return &Probe{
		cfg:     cfg,
		targets: targetReg,
		fanout:  fanout,
		store:   store,
		runner:  runner.NewService(runner.DefaultClientFactory, store, fanout, out, log),
		log:     log,
	}, nil
}

// loadTargets reads targets_file, or builds a single target from plain config.
func loadTargets(cfg *config.Config) (*targets.Registry, error) {
	if strings.TrimSpace(cfg.TargetsFile) != "" {
		return targets.LoadRegistry(cfg.TargetsFile)
	}
	return targets.NewRegistry(targets.Target{
		ID:             targets.DefaultID,
		BaseURL:        cfg.BaseURL,
		AuthData:       cfg.AuthData,
		Password:       cfg.Password,
		BearerToken:    cfg.BearerToken,
		Mode:           cfg.Mode,
		TimeoutSeconds: int(cfg.RequestTimeoutSeconds),
	})
}

// buildFanout returns an empty fanout when no publishers file is configured.
func buildFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*publishers.Fanout, error) {
	if strings.TrimSpace(cfg.PublishersFile) == "" {
		return publishers.NewFanout(nil, log), nil
	}

	sinks, err := publishers.LoadSinks(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers: %w", err)
	}

	enabled := sinks.Enabled()
	fanout, err := publishers.Build(ctx, enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"disabled":   len(sinks) - len(enabled),
		"publishers": summaries,
	})
	return fanout, nil
}

// Run probes every target once and releases resources.
func (p *Probe) Run(ctx context.Context) error {
	if p == nil || p.runner == nil {
		return fmt.Errorf("probe is not initialized")
	}
	defer p.close()

	list := p.targets.All()
	p.log.InfoObj("probe starting", "probe_state", map[string]any{
		"targets_count":    len(list),
		"publishers_count": p.fanout.Size(),
	})

	return p.runner.Run(ctx, list)
}

// close releases the store and publishers, logging any errors encountered.
func (p *Probe) close() {
	err := errors.Join(p.store.Close(), p.fanout.Close())
	if err != nil {
		p.log.ErrorObj("probe shutdown failed", "error", err)
	}
}
