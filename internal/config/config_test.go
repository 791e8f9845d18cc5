package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

const validConfig = `
http:
  port: 8080
  public_host: voice.example.com
speech:
  api_key: dg-key
backend:
  api_key: oa-key
  model: gpt-4o
callers:
  directory_path: callers.yaml
`

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Speech.ListenModel != "nova-2" {
		t.Fatalf("expected default listen model, got %q", cfg.Speech.ListenModel)
	}
	if cfg.Orchestration.HistoryLimit != 10 {
		t.Fatalf("expected default history limit 10, got %d", cfg.Orchestration.HistoryLimit)
	}
	if cfg.GetBackendTimeout() != 60*time.Second {
		t.Fatalf("expected default backend timeout 60s, got %v", cfg.GetBackendTimeout())
	}
	if cfg.GetFrameDuration() != 20*time.Millisecond {
		t.Fatalf("expected default frame duration 20ms, got %v", cfg.GetFrameDuration())
	}
}

func TestLoadEnvOverridesSecrets(t *testing.T) {
	t.Setenv("DEEPGRAM_API_KEY", "dg-env")
	t.Setenv("OPENAI_API_KEY", "oa-env")

	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Speech.APIKey != "dg-env" || cfg.Backend.APIKey != "oa-env" {
		t.Fatalf("environment must override file secrets, got %q / %q",
			cfg.Speech.APIKey, cfg.Backend.APIKey)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"missing speech key", `
http:
  public_host: voice.example.com
backend:
  api_key: oa-key
callers:
  directory_path: callers.yaml
`},
		{"missing public host", `
speech:
  api_key: dg-key
backend:
  api_key: oa-key
callers:
  directory_path: callers.yaml
`},
		{"missing caller directory", `
http:
  public_host: voice.example.com
speech:
  api_key: dg-key
backend:
  api_key: oa-key
`},
		{"bad frame duration", `
http:
  public_host: voice.example.com
speech:
  api_key: dg-key
backend:
  api_key: oa-key
callers:
  directory_path: callers.yaml
orchestration:
  frame_duration_ms: 500
`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("DEEPGRAM_API_KEY", "")
			t.Setenv("OPENAI_API_KEY", "")
			if _, err := Load(writeConfig(t, tc.content)); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
