package app

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/samvad-hq/login-probe/internal/config"
	"github.com/samvad-hq/login-probe/internal/logger"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		BaseURL:        baseURL,
		AuthData:       "EdgeKing810",
		Password:       "Test123*",
		BearerToken:    "testing",
		Mode:           config.ModeLogin,
		StorageType:    "none",
		SessionTTL:     time.Hour,
		StorageCleanup: time.Hour,
	}
}

func TestRunPrintsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"token":"abc"}`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	probe, err := NewProbe(context.Background(), testConfig(srv.URL), nil, &out)
	if err != nil {
		t.Fatalf("NewProbe: %v", err)
	}
	if err := probe.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.String() != "{\"token\":\"abc\"}\n" {
		t.Fatalf("stdout = %q", out.String())
	}
}

func TestRunWithTargetsAndPublishers(t *testing.T) {
	var hooks atomic.Int32
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hooks.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer hook.Close()

	auth := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":200,"uid":"u-1","jwt":"a.b.c"}`))
	}))
	defer auth.Close()

	dir := t.TempDir()
	targetsFile := filepath.Join(dir, "targets.yaml")
	publishersFile := filepath.Join(dir, "publishers.yaml")
	writeFile(t, targetsFile, "targets:\n  - id: one\n    base_url: "+auth.URL+"\n    auth_data: a\n    password: b\n  - id: two\n    base_url: "+auth.URL+"\n    auth_data: c\n    password: d\n")
	writeFile(t, publishersFile, "publishers:\n  - id: hook\n    type: http\n    http:\n      url: "+hook.URL+"\n")

	cfg := testConfig("")
	cfg.TargetsFile = targetsFile
	cfg.PublishersFile = publishersFile
	cfg.StorageType = "bbolt"
	cfg.BBoltPath = filepath.Join(dir, "sessions.db")

	var out bytes.Buffer
	probe, err := NewProbe(context.Background(), cfg, nil, &out)
	if err != nil {
		t.Fatalf("NewProbe: %v", err)
	}
	if err := probe.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := "{\"status\":200,\"uid\":\"u-1\",\"jwt\":\"a.b.c\"}\n"
	if out.String() != want+want {
		t.Fatalf("stdout = %q", out.String())
	}
	if hooks.Load() != 2 {
		t.Fatalf("expected 2 published events, got %d", hooks.Load())
	}
}

func TestNewRejectsBadStorage(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:8000")
	cfg.StorageType = "mongo"
	if _, err := NewProbe(context.Background(), cfg, nil, nil); err == nil {
		t.Fatalf("expected storage error")
	}
}

func TestNewLogsRedactedTargets(t *testing.T) {
	var logs bytes.Buffer
	if _, err := NewProbe(context.Background(), testConfig("http://127.0.0.1:8000"), logger.NewWriter(&logs, "info"), nil); err != nil {
		t.Fatalf("NewProbe: %v", err)
	}
	got := logs.String()
	if strings.Contains(got, "Test123*") || strings.Contains(got, `"bearer_token":"testing"`) {
		t.Fatalf("secrets leaked into logs: %s", got)
	}
	if !strings.Contains(got, `"password":"***"`) || !strings.Contains(got, `"auth_data":"EdgeKing810"`) {
		t.Fatalf("expected redacted target in logs: %s", got)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
