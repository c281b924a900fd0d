package targets

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadRegistryYAML(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "targets.yaml")
	content := `
targets:
  - id: local
    base_url: http://127.0.0.1:8000/
    auth_data: EdgeKing810
    password: Test123*
  - id: staging
    base_url: https://auth.staging.example.com
    mode: REFRESH
    timeout_seconds: 4
    session_target: local
`
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("write targets file: %v", err)
	}

	reg, err := LoadRegistry(file)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}

	all := reg.All()
	if len(all) != 2 || all[0].ID != "local" || all[1].ID != "staging" {
		t.Fatalf("unexpected targets order: %#v", all)
	}
	if all[0].Mode != ModeLogin {
		t.Fatalf("expected default mode login, got %q", all[0].Mode)
	}
	staging := all[1]
	if staging.Mode != ModeRefresh {
		t.Fatalf("mode = %q", staging.Mode)
	}
	if staging.SessionKey() != "local" || all[0].SessionKey() != "local" {
		t.Fatalf("unexpected session keys: %q / %q", staging.SessionKey(), all[0].SessionKey())
	}
	if staging.Timeout() != 4*time.Second {
		t.Fatalf("timeout = %s", staging.Timeout())
	}
}

func TestLoadRegistryJSON(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "targets.json")
	content := `{"targets":[{"id":"a","base_url":"http://a","auth_data":"u","password":"p"}]}`
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("write targets file: %v", err)
	}

	reg, err := LoadRegistry(file)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if got := reg.All(); len(got) != 1 || got[0].Timeout() != 0 {
		t.Fatalf("unexpected targets: %#v", got)
	}
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry(
		Target{ID: "a", BaseURL: "http://a", AuthData: "u", Password: "p"},
		Target{ID: " a ", BaseURL: "http://b", AuthData: "u", Password: "p"},
	)
	if err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestNewRegistryRequiresCredentialsForLogin(t *testing.T) {
	if _, err := NewRegistry(Target{ID: "a", BaseURL: "http://a"}); err == nil {
		t.Fatalf("expected missing credentials error")
	}
	if _, err := NewRegistry(Target{ID: "a", BaseURL: "http://a", Mode: ModeRefresh}); err != nil {
		t.Fatalf("refresh target without credentials should be valid: %v", err)
	}
}

func TestRedactedHidesSecrets(t *testing.T) {
	got := Target{ID: "local", Password: "secret", BearerToken: "testing"}.Redacted()
	if got.Password != "***" || got.BearerToken != "***" {
		t.Fatalf("secrets not masked: %#v", got)
	}
	if got.ID != "local" {
		t.Fatalf("id = %q", got.ID)
	}
}
